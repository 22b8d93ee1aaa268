package core

import (
	"reflect"
	"slices"
)

// Filter is an admission predicate over items.
type Filter interface {
	Allows(item *Item) bool
}

// FilterChain admits an item only if every attached filter accepts it.
// Filters are compared by identity, so attach pointers.
type FilterChain struct {
	filters []Filter
}

// Add attaches f. Attaching a filter that is already present is a no-op.
func (c *FilterChain) Add(f Filter) bool {
	if f == nil || c.index(f) >= 0 {
		return false
	}
	c.filters = append(c.filters, f)
	return true
}

// Remove detaches f if present.
func (c *FilterChain) Remove(f Filter) bool {
	i := c.index(f)
	if i < 0 {
		return false
	}
	c.filters = slices.Delete(c.filters, i, i+1)
	return true
}

// Allows evaluates every filter in attach order; an empty chain allows all.
func (c *FilterChain) Allows(item *Item) bool {
	for _, f := range c.filters {
		if !f.Allows(item) {
			return false
		}
	}
	return true
}

// Len returns the number of attached filters.
func (c *FilterChain) Len() int { return len(c.filters) }

// Filters returns the attached filters in attach order.
func (c *FilterChain) Filters() []Filter {
	return slices.Clone(c.filters)
}

func (c *FilterChain) index(f Filter) int {
	for i, existing := range c.filters {
		if sameFilter(existing, f) {
			return i
		}
	}
	return -1
}

// sameFilter compares two filters by identity without panicking on
// uncomparable dynamic types.
func sameFilter(a, b Filter) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil {
		return false
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

type funcFilter struct {
	fn func(*Item) bool
}

func (f *funcFilter) Allows(item *Item) bool { return f.fn(item) }

// FilterFunc wraps fn as a Filter. Each call returns a distinct filter.
func FilterFunc(fn func(*Item) bool) Filter {
	return &funcFilter{fn: fn}
}

// TypeFilter admits items whose type id is in its allow-list.
type TypeFilter struct {
	allowed map[string]struct{}
}

// NewTypeFilter builds a type allow-list filter.
func NewTypeFilter(typeIDs ...string) *TypeFilter {
	allowed := make(map[string]struct{}, len(typeIDs))
	for _, t := range typeIDs {
		allowed[t] = struct{}{}
	}
	return &TypeFilter{allowed: allowed}
}

// Allows implements Filter.
func (f *TypeFilter) Allows(item *Item) bool {
	_, ok := f.allowed[item.TypeID()]
	return ok
}

// PropertyFilter admits items carrying a property, optionally equal to a
// required value.
type PropertyFilter struct {
	Key   string
	Value any
	Match bool
}

// RequireProperty admits items that carry key with any value.
func RequireProperty(key string) *PropertyFilter {
	return &PropertyFilter{Key: key}
}

// RequirePropertyValue admits items whose key equals value.
func RequirePropertyValue(key string, value any) *PropertyFilter {
	return &PropertyFilter{Key: key, Value: value, Match: true}
}

// Allows implements Filter.
func (f *PropertyFilter) Allows(item *Item) bool {
	v, ok := item.Property(f.Key)
	if !ok {
		return false
	}
	if !f.Match {
		return true
	}
	return reflect.DeepEqual(v, f.Value)
}
