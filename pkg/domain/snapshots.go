// Package domain defines the behavior-free snapshot model of the inventory
// engine, the persisted world document, and the contracts the engine expects
// from its persistence collaborators.
package domain

import "time"

// WorldVersion is the schema version stamped on every persisted world.
const WorldVersion = 1

// ItemSnapshot mirrors a live item: identity, factory type and property bag.
type ItemSnapshot struct {
	ID         string     `json:"id"`
	TypeID     string     `json:"type_id"`
	Properties Properties `json:"properties"`
}

// Clone returns a deep copy of the snapshot.
func (s ItemSnapshot) Clone() ItemSnapshot {
	s.Properties = s.Properties.Clone()
	return s
}

// ContainerSnapshot mirrors a live container. Items appear in slot order and
// nested containers in discovery order. Transform is only set on roots.
type ContainerSnapshot struct {
	ID               string              `json:"id"`
	TypeID           string              `json:"type_id"`
	Key              string              `json:"key,omitempty"`
	Transform        *Transform          `json:"transform,omitempty"`
	Items            []ItemSnapshot      `json:"items"`
	Nested           []ContainerSnapshot `json:"nested"`
	IsSceneElement   bool                `json:"is_scene_element"`
	SceneElementName string              `json:"scene_element_name,omitempty"`
}

// Clone returns a deep copy of the snapshot tree.
func (s ContainerSnapshot) Clone() ContainerSnapshot {
	if s.Transform != nil {
		t := *s.Transform
		s.Transform = &t
	}
	if s.Items != nil {
		items := make([]ItemSnapshot, len(s.Items))
		for i, item := range s.Items {
			items[i] = item.Clone()
		}
		s.Items = items
	}
	if s.Nested != nil {
		nested := make([]ContainerSnapshot, len(s.Nested))
		for i, child := range s.Nested {
			nested[i] = child.Clone()
		}
		s.Nested = nested
	}
	return s
}

// ItemCount returns the number of items held by this container and all of its
// nested containers.
func (s ContainerSnapshot) ItemCount() int {
	n := len(s.Items)
	for _, child := range s.Nested {
		n += child.ItemCount()
	}
	return n
}

// World is the single payload written to the persistent store: one list of
// root container snapshots.
type World struct {
	Version    int                 `json:"version"`
	SavedAt    time.Time           `json:"saved_at"`
	Containers []ContainerSnapshot `json:"containers"`
}

// SceneElements returns the roots flagged as scene elements keyed by name.
// Later entries win when two roots share a name.
func (w World) SceneElements() map[string]ContainerSnapshot {
	out := make(map[string]ContainerSnapshot)
	for _, c := range w.Containers {
		if c.IsSceneElement && c.SceneElementName != "" {
			out[c.SceneElementName] = c
		}
	}
	return out
}
