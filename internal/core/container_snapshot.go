package core

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"inventorycore/pkg/domain"
)

// ToSnapshot captures the container tree by value. Only a registered root
// carries a transform.
func (c *Container) ToSnapshot() (domain.ContainerSnapshot, error) {
	if !c.Initialized() {
		err := fmt.Errorf("%w: snapshot before Initialize", domain.ErrStructuralViolation)
		c.log().WithField("op", "snapshot").Error(err)
		return domain.ContainerSnapshot{}, err
	}
	snap := domain.ContainerSnapshot{
		ID:               c.id,
		TypeID:           c.cfg.TypeID,
		Key:              c.key,
		IsSceneElement:   c.IsSceneElement(),
		SceneElementName: c.cfg.SceneElementName,
	}
	if !c.nested && c.hasSaved {
		t := c.saved
		snap.Transform = &t
	}
	items := c.slots.Items()
	snap.Items = make([]domain.ItemSnapshot, 0, len(items))
	for _, item := range items {
		snap.Items = append(snap.Items, item.ToSnapshot())
	}
	snap.Nested = make([]domain.ContainerSnapshot, 0, len(c.children))
	for _, child := range c.children {
		cs, err := child.ToSnapshot()
		if err != nil {
			return domain.ContainerSnapshot{}, fmt.Errorf("snapshot nested %s: %w", child.cfg.TypeID, err)
		}
		snap.Nested = append(snap.Nested, cs)
	}
	return snap, nil
}

// RestoreFrom is the load path and replaces Register. It takes identity, the
// root transform, items and nested state from snap. Item type ids the factory
// cannot resolve are logged and skipped.
func (c *Container) RestoreFrom(snap domain.ContainerSnapshot, nested bool) error {
	if err := c.requireFresh("restore"); err != nil {
		return err
	}
	if snap.ID == "" {
		err := fmt.Errorf("%w: container snapshot of type %s has no id", domain.ErrStructuralViolation, snap.TypeID)
		c.log().WithField("op", "restore").Error(err)
		return err
	}
	c.id = snap.ID
	c.nested = nested
	if c.cfg.SceneElementName == "" && snap.IsSceneElement {
		c.cfg.SceneElementName = snap.SceneElementName
	}
	if c.key == "" {
		c.key = snap.Key
	}
	if !nested {
		c.restoreTransform(snap.Transform)
	}
	c.restoreItems(snap.Items)
	if err := c.restoreNested(snap.Nested); err != nil {
		return err
	}
	c.state = stateRegistered
	if !nested {
		c.registerRoot()
	}
	c.log().WithFields(logrus.Fields{"nested": nested, "items": c.Count()}).Debug("container restored")
	return nil
}

func (c *Container) restoreTransform(t *domain.Transform) {
	if t == nil {
		c.captureTransform()
		return
	}
	c.saved = *t
	c.hasSaved = true
	if c.body != nil {
		c.body.Teleport(*t)
	}
}

func (c *Container) restoreItems(items []domain.ItemSnapshot) {
	for _, is := range items {
		fields := logrus.Fields{"op": "restore", "item_id": is.ID, "item_type": is.TypeID}
		if c.collab.factory == nil {
			c.log().WithFields(fields).Warn("no object factory to restore item")
			continue
		}
		item, err := c.collab.factory.CreateItem(is.TypeID)
		if err != nil {
			c.log().WithFields(fields).WithError(err).Warn("item type lookup failed, skipping")
			continue
		}
		if err := item.RestoreFrom(is); err != nil {
			c.log().WithFields(fields).WithError(err).Warn("item restore failed, skipping")
			continue
		}
		if _, ok := c.slots.TryPush(item); !ok {
			c.log().WithFields(fields).Warn("snapshot holds more items than slots, dropping")
			continue
		}
		item.owner = c
	}
}

func (c *Container) restoreNested(snaps []domain.ContainerSnapshot) error {
	matched := matchNested(c.children, snaps)
	used := make([]bool, len(c.children))
	for i, snap := range snaps {
		idx := matched[i]
		if idx < 0 {
			c.log().WithFields(logrus.Fields{"op": "restore", "nested_id": snap.ID, "nested_key": snap.Key}).
				Warn("nested snapshot has no live counterpart, skipping")
			continue
		}
		child := c.children[idx]
		used[idx] = true
		if child.cfg.TypeID != snap.TypeID {
			c.log().WithFields(logrus.Fields{"op": "restore", "position": i, "snapshot_type": snap.TypeID, "live_type": child.cfg.TypeID}).
				Warn("nested match with mismatched type")
		}
		if err := child.RestoreFrom(snap, true); err != nil {
			return fmt.Errorf("restore nested %s: %w", snap.ID, err)
		}
	}
	var errs []error
	for i, child := range c.children {
		if used[i] {
			continue
		}
		if err := child.Register(true); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// matchNested maps each snapshot index to a live child index, or -1. A
// snapshot with a key binds to the live child carrying that key. The rest
// bind by position when that child is free and the keys do not conflict,
// otherwise to the first free live child without a key.
func matchNested(live []*Container, snaps []domain.ContainerSnapshot) []int {
	out := make([]int, len(snaps))
	taken := make([]bool, len(live))
	byKey := make(map[string]int, len(live))
	for i, child := range live {
		if child.key != "" {
			if _, dup := byKey[child.key]; !dup {
				byKey[child.key] = i
			}
		}
	}
	for i, snap := range snaps {
		out[i] = -1
		if snap.Key == "" {
			continue
		}
		if idx, ok := byKey[snap.Key]; ok && !taken[idx] {
			out[i] = idx
			taken[idx] = true
		}
	}
	for i, snap := range snaps {
		if out[i] >= 0 {
			continue
		}
		idx := -1
		if i < len(live) && !taken[i] && (snap.Key == "" || live[i].key == "") {
			idx = i
		} else {
			for j, child := range live {
				if !taken[j] && child.key == "" {
					idx = j
					break
				}
			}
		}
		if idx >= 0 {
			out[i] = idx
			taken[idx] = true
		}
	}
	return out
}
