package main

import (
	"context"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"inventorycore/internal/core"
	"inventorycore/internal/scene"
	"inventorycore/pkg/domain"
)

// demoCatalog knows a chest with a keyed pouch inside its lid and a purse
// that comes filled with coins.
func demoCatalog() (*core.Catalog, error) {
	cat := core.NewCatalog()
	for _, typeID := range []string{"coin", "gem", "potion"} {
		if err := cat.RegisterItem(typeID, nil); err != nil {
			return nil, err
		}
	}
	if err := cat.RegisterContainer("chest", newDemoChest); err != nil {
		return nil, err
	}
	if err := cat.RegisterContainer("purse", core.ContainerFromConfig(core.ContainerConfig{
		SlotCount:       3,
		DefaultFillType: "coin",
	})); err != nil {
		return nil, err
	}
	return cat, nil
}

func newDemoChest() *core.Container {
	node := scene.NewNode("chest")
	lid := node.AddChild(scene.NewNode("lid"))
	pouch := lid.AddChild(scene.NewNode("pouch").WithKey("pouch"))
	pouch.SetContainer(core.NewContainer(core.ContainerConfig{TypeID: "pouch", SlotCount: 2}))
	chest := core.NewContainer(core.ContainerConfig{TypeID: "chest", SlotCount: 4, Anchors: core.GridAnchors(4, 0.4)},
		core.WithHost(node), core.WithBody(node))
	node.SetContainer(chest)
	node.MoveTo(domain.NewTransform(mgl32.Vec3{2, 0, -1}, mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	return chest
}

func seedWorld(ctx context.Context, svc *core.Service) ([]domain.ContainerSnapshot, error) {
	chest, err := svc.Spawn("chest")
	if err != nil {
		return nil, err
	}
	gem, err := svc.Factory().CreateItem("gem")
	if err != nil {
		return nil, err
	}
	gem.InitializeNew(nil)
	gem.AddProperty("carats", float32(1.5))
	gem.AddProperty("cut", "emerald")
	potion, err := svc.Factory().CreateItem("potion")
	if err != nil {
		return nil, err
	}
	potion.InitializeNew(nil)
	potion.AddProperty("charges", 3)
	for _, item := range []*core.Item{gem, potion} {
		if err := chest.TryAdd(item); err != nil {
			return nil, fmt.Errorf("seed chest: %w", err)
		}
	}
	if nested := chest.Nested(); len(nested) == 1 {
		coin, err := svc.Factory().CreateItem("coin")
		if err != nil {
			return nil, err
		}
		coin.InitializeNew(nil)
		if err := nested[0].TryAdd(coin); err != nil {
			return nil, fmt.Errorf("seed pouch: %w", err)
		}
	}
	if _, err := svc.Spawn("purse"); err != nil {
		return nil, err
	}
	return svc.SaveWorld(ctx)
}
