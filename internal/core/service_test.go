package core

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/sirupsen/logrus"

	"inventorycore/internal/infra/persistence/memory"
	"inventorycore/pkg/domain"
)

func newWorldCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat := newTestCatalog(t)
	if err := cat.RegisterContainer("crate", ContainerFromConfig(ContainerConfig{SlotCount: 3})); err != nil {
		t.Fatalf("register crate: %v", err)
	}
	if err := cat.RegisterContainer("purse", ContainerFromConfig(ContainerConfig{SlotCount: 2, DefaultFillType: "coin"})); err != nil {
		t.Fatalf("register purse: %v", err)
	}
	return cat
}

func TestServiceSaveAndLoadWorld(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cat := newWorldCatalog(t)
	logger, _ := quietLogger()

	svc := NewService(NewRegistry(store, WithRegistryLogger(logger)), cat, WithServiceLogger(logger))
	crate, err := svc.Spawn("crate")
	if err != nil {
		t.Fatalf("spawn crate: %v", err)
	}
	crate.Add(newIdentified("sword"))
	purse, err := svc.Spawn("purse")
	if err != nil {
		t.Fatalf("spawn purse: %v", err)
	}
	if purse.Count() != 2 {
		t.Fatalf("purse should be filled with coins, got %d", purse.Count())
	}
	body := &fakeBody{pose: domain.IdentityTransform()}
	shelf := NewContainer(ContainerConfig{TypeID: "shelf", SlotCount: 1, SceneElementName: "hall/shelf"}, WithBody(body))
	if err := svc.Attach(shelf); err != nil {
		t.Fatalf("attach shelf: %v", err)
	}
	shelf.Add(newIdentified("apple"))
	body.pose = domain.NewTransform(mgl32.Vec3{0, 5, 0}, 0, mgl32.Vec3{0, 1, 0})

	saved, err := svc.SaveWorld(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("expected 3 roots, got %d", len(saved))
	}
	if got := saved[2].Transform; got == nil || !got.ApproxEqual(body.pose) {
		t.Fatalf("SaveWorld should sync root transforms from bodies: %+v", got)
	}

	next := NewService(NewRegistry(store, WithRegistryLogger(logger)), cat, WithServiceLogger(logger))
	restored, err := next.LoadWorld(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("scene elements are not respawned, expected 2 got %d", len(restored))
	}
	if restored[0].ID() != crate.ID() || restored[0].Count() != 1 {
		t.Fatalf("crate not restored")
	}
	if restored[1].ID() != purse.ID() || restored[1].Count() != 2 {
		t.Fatalf("purse should restore saved coins, not refill")
	}
	for i, coin := range restored[1].Items() {
		if coin.ID() != purse.Items()[i].ID() {
			t.Fatalf("restored coin %d has new identity", i)
		}
	}

	newBody := &fakeBody{pose: domain.IdentityTransform()}
	placed := NewContainer(ContainerConfig{TypeID: "shelf", SlotCount: 1, SceneElementName: "hall/shelf"}, WithBody(newBody))
	if err := next.Attach(placed); err != nil {
		t.Fatalf("attach placed shelf: %v", err)
	}
	if placed.ID() != shelf.ID() || placed.Count() != 1 || newBody.teleports != 1 {
		t.Fatalf("scene element should restore from the cached snapshot")
	}
	if len(next.Registry().Roots()) != 3 {
		t.Fatalf("expected 3 live roots after load, got %d", len(next.Registry().Roots()))
	}
}

func TestServiceLoadWorldSkipsUnknownContainerTypes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	world := domain.World{Version: domain.WorldVersion, Containers: []domain.ContainerSnapshot{
		{ID: "w-1", TypeID: "wagon"},
		{ID: "c-1", TypeID: "crate"},
	}}
	if err := domain.SaveJSON(ctx, store, DefaultSaveKey, world); err != nil {
		t.Fatalf("seed: %v", err)
	}
	logger, hook := quietLogger()
	svc := NewService(NewRegistry(store, WithRegistryLogger(logger)), newWorldCatalog(t), WithServiceLogger(logger))
	restored, err := svc.LoadWorld(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(restored) != 1 || restored[0].ID() != "c-1" {
		t.Fatalf("unexpected restore %v", restored)
	}
	if !logged(hook, logrus.WarnLevel, "lookup failed") {
		t.Fatalf("unknown container type should warn")
	}
}

func TestServiceSpawnUnknownType(t *testing.T) {
	svc := NewService(nil, newWorldCatalog(t))
	if _, err := svc.Spawn("wagon"); !errors.Is(err, domain.ErrLookupMiss) {
		t.Fatalf("expected lookup miss, got %v", err)
	}
	if _, err := NewService(nil, nil).Spawn("crate"); !errors.Is(err, domain.ErrLookupMiss) {
		t.Fatalf("expected lookup miss without factory, got %v", err)
	}
	if err := svc.Attach(nil); !errors.Is(err, domain.ErrStructuralViolation) {
		t.Fatalf("expected structural violation, got %v", err)
	}
}
