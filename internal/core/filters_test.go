package core

import (
	"testing"
)

func TestFilterChainIdentityAndOrder(t *testing.T) {
	var chain FilterChain
	if !chain.Allows(newIdentified("apple")) {
		t.Fatalf("empty chain must allow everything")
	}
	fruit := NewTypeFilter("apple")
	heavy := RequireProperty("weight")
	if !chain.Add(fruit) || !chain.Add(heavy) {
		t.Fatalf("expected both filters attached")
	}
	if chain.Add(fruit) {
		t.Fatalf("re-adding the same filter must be a no-op")
	}
	if !chain.Add(NewTypeFilter("apple")) {
		t.Fatalf("an equal but distinct filter is a different filter")
	}
	if chain.Len() != 3 {
		t.Fatalf("expected 3 filters, got %d", chain.Len())
	}

	apple := newIdentified("apple")
	if chain.Allows(apple) {
		t.Fatalf("apple without weight must be rejected")
	}
	apple.AddProperty("weight", 0.2)
	if !chain.Allows(apple) {
		t.Fatalf("apple with weight must be allowed")
	}
	if chain.Allows(newIdentified("sword")) {
		t.Fatalf("sword must be rejected by type filter")
	}

	if !chain.Remove(heavy) || chain.Remove(heavy) {
		t.Fatalf("remove should succeed once")
	}
	if got := chain.Filters(); len(got) != 2 || got[0] != Filter(fruit) {
		t.Fatalf("unexpected filters after remove: %v", got)
	}
}

func TestFilterFuncIsDistinctPerCall(t *testing.T) {
	var chain FilterChain
	fn := func(*Item) bool { return false }
	a, b := FilterFunc(fn), FilterFunc(fn)
	if !chain.Add(a) || !chain.Add(b) {
		t.Fatalf("wrapped funcs should be distinct filters")
	}
	if !chain.Remove(a) || chain.Len() != 1 {
		t.Fatalf("remove by identity failed")
	}
}

func TestRequirePropertyValue(t *testing.T) {
	f := RequirePropertyValue("color", "red")
	item := newIdentified("apple")
	if f.Allows(item) {
		t.Fatalf("missing property must be rejected")
	}
	item.AddProperty("color", "green")
	if f.Allows(item) {
		t.Fatalf("wrong value must be rejected")
	}
	item.AddProperty("color", "red")
	if !f.Allows(item) {
		t.Fatalf("matching value must be allowed")
	}
}

func TestExprFilter(t *testing.T) {
	logger, hook := quietLogger()
	cache, err := NewProgramCache(8)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	f, err := NewExprFilter(`type_id == "coin" && props.value > 10`, WithProgramCache(cache), WithFilterLogger(logger))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	coin := newIdentified("coin")
	coin.AddProperty("value", 25)
	if !f.Allows(coin) {
		t.Fatalf("valuable coin should pass")
	}
	coin.AddProperty("value", 5)
	if f.Allows(coin) {
		t.Fatalf("cheap coin should fail")
	}
	if f.Allows(newIdentified("apple")) {
		t.Fatalf("apple should fail")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected compiled program cached, len=%d", cache.Len())
	}
	again, err := NewExprFilter(`type_id == "coin" && props.value > 10`, WithProgramCache(cache))
	if err != nil || again.program != f.program {
		t.Fatalf("expected cached program reuse: %v", err)
	}
	if len(hook.Entries) != 0 {
		t.Fatalf("no evaluation should have failed, got %d log entries", len(hook.Entries))
	}

	if _, err := NewExprFilter(""); err == nil {
		t.Fatalf("empty expression must fail")
	}
	if _, err := NewExprFilter(`type_id +`); err == nil {
		t.Fatalf("syntax error must fail")
	}
}

func TestCELFilter(t *testing.T) {
	logger, hook := quietLogger()
	f, err := NewCELFilter(`type_id == "sword" && props["damage"] > 10`, WithFilterLogger(logger))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	sword := newIdentified("sword")
	sword.AddProperty("damage", 12)
	if !f.Allows(sword) {
		t.Fatalf("strong sword should pass")
	}
	if f.Allows(newIdentified("apple")) {
		t.Fatalf("apple should fail on type short-circuit")
	}
	blunt := newIdentified("sword")
	if f.Allows(blunt) {
		t.Fatalf("sword without damage should be rejected")
	}
	if len(hook.Entries) == 0 {
		t.Fatalf("expected evaluation failure to be logged")
	}

	if _, err := NewCELFilter(`type_id`); err == nil {
		t.Fatalf("non-bool expression must fail")
	}
	if _, err := NewCELFilter(`unknown_var == 1`); err == nil {
		t.Fatalf("undeclared variable must fail")
	}
}

func TestContainerFiltersApplyToFutureAdds(t *testing.T) {
	c := newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 3})
	apple := newIdentified("apple")
	if !c.Add(apple) {
		t.Fatalf("add before filter")
	}
	only := NewTypeFilter("sword")
	c.AddFilter(only)
	if c.Add(newIdentified("apple")) {
		t.Fatalf("apple should be rejected after filter attached")
	}
	if c.Count() != 1 || c.Items()[0] != apple {
		t.Fatalf("existing items must be untouched by new filters")
	}
	if !c.RemoveFilter(only) || len(c.Filters()) != 0 {
		t.Fatalf("filter not removed")
	}
	if !c.Add(newIdentified("apple")) {
		t.Fatalf("apple should pass once filter removed")
	}
}
