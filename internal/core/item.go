package core

import (
	"fmt"

	"inventorycore/pkg/domain"
)

// Item is a discrete object stored in exactly one slot of one container at a
// time. It carries an identity, the factory type used to recreate it, and a
// typed property bag.
type Item struct {
	id     string
	typeID string
	props  domain.Properties
	owner  *Container
}

// NewItem returns an unidentified item of the given factory type. Call
// InitializeNew or RestoreFrom before storing it.
func NewItem(typeID string) *Item {
	return &Item{typeID: typeID, props: make(domain.Properties)}
}

// ID returns the item identity, empty until initialized or restored.
func (i *Item) ID() string { return i.id }

// TypeID returns the factory type identifier.
func (i *Item) TypeID() string { return i.typeID }

// Identified reports whether the item has received its identity.
func (i *Item) Identified() bool { return i.id != "" }

// Owner returns the container currently holding the item, or nil.
func (i *Item) Owner() *Container { return i.owner }

// InitializeNew assigns a fresh identity. A nil generator falls back to UUIDs.
// Calling it on an item that already has an identity is a programmer error.
func (i *Item) InitializeNew(ids IDGenerator) {
	if i.id != "" {
		panic(fmt.Errorf("%w: item %s already initialized", domain.ErrStructuralViolation, i.id))
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	i.id = ids.NewID()
}

// RestoreFrom copies identity and properties from a snapshot in place of
// InitializeNew.
func (i *Item) RestoreFrom(snap domain.ItemSnapshot) error {
	if i.id != "" {
		return fmt.Errorf("%w: item %s already has an identity", domain.ErrStructuralViolation, i.id)
	}
	if snap.ID == "" {
		return fmt.Errorf("%w: item snapshot without id", domain.ErrStructuralViolation)
	}
	if snap.TypeID != "" && i.typeID != "" && snap.TypeID != i.typeID {
		return fmt.Errorf("%w: item %s snapshot type %s does not match %s", domain.ErrStructuralViolation, snap.ID, snap.TypeID, i.typeID)
	}
	i.id = snap.ID
	if i.typeID == "" {
		i.typeID = snap.TypeID
	}
	i.props = snap.Properties.Clone()
	if i.props == nil {
		i.props = make(domain.Properties)
	}
	return nil
}

// AddProperty stores value under key, silently replacing any previous value.
func (i *Item) AddProperty(key string, value any) {
	if i.props == nil {
		i.props = make(domain.Properties)
	}
	i.props[key] = domain.CloneValue(value)
}

// RemoveProperty deletes key from the bag.
func (i *Item) RemoveProperty(key string) {
	delete(i.props, key)
}

// HasProperty reports whether key is present regardless of its type.
func (i *Item) HasProperty(key string) bool {
	_, ok := i.props[key]
	return ok
}

// Property returns a copy of the raw value stored under key.
func (i *Item) Property(key string) (any, bool) {
	v, ok := i.props[key]
	if !ok {
		return nil, false
	}
	return domain.CloneValue(v), true
}

// PropertyKeys returns the property keys in ascending order.
func (i *Item) PropertyKeys() []string {
	return i.props.Keys()
}

// Properties returns a detached copy of the property bag.
func (i *Item) Properties() domain.Properties {
	return i.props.Clone()
}

// ToSnapshot captures the item by value.
func (i *Item) ToSnapshot() domain.ItemSnapshot {
	return domain.ItemSnapshot{
		ID:         i.id,
		TypeID:     i.typeID,
		Properties: i.props.Clone(),
	}
}

// TryGetProperty returns the value stored under key when it holds a T. A
// missing key and a type mismatch both report false.
func TryGetProperty[T any](item *Item, key string) (T, bool) {
	var zero T
	if item == nil {
		return zero, false
	}
	raw, ok := item.props[key]
	if !ok {
		return zero, false
	}
	typed, ok := domain.CloneValue(raw).(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
