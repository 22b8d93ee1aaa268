package core

import (
	"fmt"
	"sort"
	"sync"

	"inventorycore/pkg/domain"
)

// ItemConstructor builds an unidentified item of a registered type.
type ItemConstructor func(typeID string) *Item

// ContainerConstructor builds an unconstructed container of a registered type.
type ContainerConstructor func() *Container

// Catalog is an ObjectFactory backed by explicit type registrations.
type Catalog struct {
	mu         sync.RWMutex
	items      map[string]ItemConstructor
	containers map[string]ContainerConstructor
}

var _ ObjectFactory = (*Catalog)(nil)

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		items:      make(map[string]ItemConstructor),
		containers: make(map[string]ContainerConstructor),
	}
}

// RegisterItem binds typeID to ctor. A nil ctor registers plain NewItem.
func (c *Catalog) RegisterItem(typeID string, ctor ItemConstructor) error {
	if typeID == "" {
		return fmt.Errorf("item type id required")
	}
	if ctor == nil {
		ctor = NewItem
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[typeID]; exists {
		return fmt.Errorf("item type %s already registered", typeID)
	}
	c.items[typeID] = ctor
	return nil
}

// RegisterContainer binds typeID to ctor.
func (c *Catalog) RegisterContainer(typeID string, ctor ContainerConstructor) error {
	if typeID == "" {
		return fmt.Errorf("container type id required")
	}
	if ctor == nil {
		return fmt.Errorf("container type %s: constructor required", typeID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.containers[typeID]; exists {
		return fmt.Errorf("container type %s already registered", typeID)
	}
	c.containers[typeID] = ctor
	return nil
}

// ContainerFromConfig returns a constructor building plain containers from cfg.
func ContainerFromConfig(cfg ContainerConfig, opts ...ContainerOption) ContainerConstructor {
	return func() *Container {
		copied := cfg
		copied.Anchors = append([]Anchor(nil), cfg.Anchors...)
		return NewContainer(copied, opts...)
	}
}

// CreateItem implements ObjectFactory.
func (c *Catalog) CreateItem(typeID string) (*Item, error) {
	c.mu.RLock()
	ctor, ok := c.items[typeID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: item type %q", domain.ErrLookupMiss, typeID)
	}
	item := ctor(typeID)
	if item == nil {
		return nil, fmt.Errorf("%w: item type %q constructor returned nil", domain.ErrLookupMiss, typeID)
	}
	if item.typeID == "" {
		item.typeID = typeID
	}
	return item, nil
}

// CreateContainer implements ObjectFactory.
func (c *Catalog) CreateContainer(typeID string) (*Container, error) {
	c.mu.RLock()
	ctor, ok := c.containers[typeID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: container type %q", domain.ErrLookupMiss, typeID)
	}
	container := ctor()
	if container == nil {
		return nil, fmt.Errorf("%w: container type %q constructor returned nil", domain.ErrLookupMiss, typeID)
	}
	if container.cfg.TypeID == "" {
		container.cfg.TypeID = typeID
	}
	return container, nil
}

// ItemTypes returns the registered item type ids in ascending order.
func (c *Catalog) ItemTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.items))
	for t := range c.items {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ContainerTypes returns the registered container type ids in ascending order.
func (c *Catalog) ContainerTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.containers))
	for t := range c.containers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
