package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"inventorycore/internal/infra/persistence/memory"
	"inventorycore/pkg/domain"
)

func TestRegistryRootMembership(t *testing.T) {
	metrics := &countingMetrics{}
	reg := NewRegistry(nil, WithRegistryMetrics(metrics))
	a := newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 1}, WithRegistry(reg))
	b := newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 1}, WithRegistry(reg))
	reg.RegisterRoot(a)
	reg.RegisterRoot(nil)
	if roots := reg.Roots(); len(roots) != 2 || roots[0] != a || roots[1] != b {
		t.Fatalf("unexpected roots %v", roots)
	}
	if metrics.roots != 2 {
		t.Fatalf("gauge %d", metrics.roots)
	}
	nested := &Container{nested: true}
	reg.RegisterRoot(nested)
	if len(reg.Roots()) != 2 {
		t.Fatalf("nested containers must not become roots")
	}
	reg.UnregisterRoot(a)
	reg.UnregisterRoot(a)
	if roots := reg.Roots(); len(roots) != 1 || roots[0] != b || metrics.roots != 1 {
		t.Fatalf("unregister failed: %v", roots)
	}
}

func TestRegistrySaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	logger, _ := quietLogger()
	reg := NewRegistry(store, WithSaveKey("slot-1"), WithClock(func() time.Time { return stamp }), WithRegistryLogger(logger))

	c := newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 2}, WithRegistry(reg))
	c.Add(newIdentified("apple"))
	scene := newLive(t, ContainerConfig{TypeID: "shelf", SlotCount: 1, SceneElementName: "kitchen/shelf"}, WithRegistry(reg))
	scene.Add(newIdentified("coin"))

	saved, err := reg.SaveAll(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("expected 2 roots saved, got %d", len(saved))
	}
	if ok, _ := store.KeyExists(ctx, "slot-1"); !ok {
		t.Fatalf("world not written under save key")
	}
	world, err := domain.LoadJSON[domain.World](ctx, store, "slot-1")
	if err != nil || world.Version != domain.WorldVersion || !world.SavedAt.Equal(stamp) {
		t.Fatalf("unexpected world header %+v err=%v", world, err)
	}

	fresh := NewRegistry(store, WithSaveKey("slot-1"), WithRegistryLogger(logger))
	loaded, err := fresh.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != c.ID() || loaded[0].ItemCount() != 1 {
		t.Fatalf("unexpected loaded snapshots %+v", loaded)
	}
	snap, ok := fresh.FindSceneElement("kitchen/shelf")
	if !ok || snap.ID != scene.ID() {
		t.Fatalf("scene element not cached")
	}
	snap.Items[0].ID = "tampered"
	again, _ := fresh.FindSceneElement("kitchen/shelf")
	if again.Items[0].ID == "tampered" {
		t.Fatalf("FindSceneElement must return a copy")
	}
	if _, ok := fresh.FindSceneElement("garage"); ok {
		t.Fatalf("unknown scene element found")
	}

	fresh.Reset()
	if _, ok := fresh.FindSceneElement("kitchen/shelf"); ok || len(fresh.Roots()) != 0 {
		t.Fatalf("reset should clear cache and roots")
	}
}

func TestRegistryLoadAllWithoutSave(t *testing.T) {
	reg := NewRegistry(memory.NewStore())
	snaps, err := reg.LoadAll(context.Background())
	if err != nil || snaps != nil {
		t.Fatalf("missing world should load as empty: %v %v", snaps, err)
	}
	snaps, err = NewRegistry(nil).LoadAll(context.Background())
	if err != nil || snaps != nil {
		t.Fatalf("nil store should load as empty: %v %v", snaps, err)
	}
}

func TestRegistryLoadAllRejectsNewerVersion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	if err := domain.SaveJSON(ctx, store, DefaultSaveKey, domain.World{Version: domain.WorldVersion + 1}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := NewRegistry(store).LoadAll(ctx); !errors.Is(err, domain.ErrStructuralViolation) {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestRegistryLoadAllWarnsOnInvalidWorld(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	world := domain.World{Version: domain.WorldVersion, Containers: []domain.ContainerSnapshot{
		{ID: "dup", TypeID: "crate"},
		{ID: "dup", TypeID: "crate"},
	}}
	if err := domain.SaveJSON(ctx, store, DefaultSaveKey, world); err != nil {
		t.Fatalf("seed: %v", err)
	}
	logger, hook := quietLogger()
	snaps, err := NewRegistry(store, WithRegistryLogger(logger)).LoadAll(ctx)
	if err != nil || len(snaps) != 2 {
		t.Fatalf("validation issues must not fail the load: %v", err)
	}
	if !logged(hook, logrus.WarnLevel, "already used") {
		t.Fatalf("duplicate id should be logged")
	}
}

func TestRegistryLoadAllCachesSceneElementsOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	first := domain.World{Version: domain.WorldVersion, Containers: []domain.ContainerSnapshot{
		{ID: "s-1", TypeID: "shelf", IsSceneElement: true, SceneElementName: "shelf"},
	}}
	domain.SaveJSON(ctx, store, DefaultSaveKey, first)
	reg := NewRegistry(store)
	if _, err := reg.LoadAll(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	second := first
	second.Containers = []domain.ContainerSnapshot{{ID: "s-2", TypeID: "shelf", IsSceneElement: true, SceneElementName: "shelf"}}
	domain.SaveJSON(ctx, store, DefaultSaveKey, second)
	if _, err := reg.LoadAll(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if snap, _ := reg.FindSceneElement("shelf"); snap.ID != "s-1" {
		t.Fatalf("scene cache must be filled by the first load only, got %s", snap.ID)
	}
}

type failingStore struct{ memory.Store }

func (f *failingStore) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestRegistrySaveAllPropagatesStoreErrors(t *testing.T) {
	reg := NewRegistry(&failingStore{})
	newLive(t, ContainerConfig{TypeID: "crate", SlotCount: 1}, WithRegistry(reg))
	if _, err := reg.SaveAll(context.Background()); err == nil {
		t.Fatalf("expected save error")
	}
}
