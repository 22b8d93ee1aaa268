package core

import "github.com/go-gl/mathgl/mgl32"

// Anchor is the placement reference of a slot, handed to the presenter when an
// item moves into it.
type Anchor struct {
	Index  int
	Offset mgl32.Vec3
}

// Slot pairs an anchor with its optional occupant.
type Slot struct {
	Anchor   Anchor
	occupant *Item
}

// Occupant returns the item held by the slot, or nil.
func (s Slot) Occupant() *Item { return s.occupant }

// SlotStack is a fixed-capacity run of slots filled strictly as a stack:
// occupied slots are always the prefix [0, count). Push targets count and pop
// targets count-1, so the most recently stored item comes out first.
type SlotStack struct {
	slots []Slot
	count int
}

// NewSlotStack allocates one slot per anchor. Anchor indices are rewritten to
// match slot positions.
func NewSlotStack(anchors []Anchor) *SlotStack {
	slots := make([]Slot, len(anchors))
	for i, a := range anchors {
		a.Index = i
		slots[i] = Slot{Anchor: a}
	}
	return &SlotStack{slots: slots}
}

// GridAnchors lays out n anchors along the x axis, spacing units apart.
func GridAnchors(n int, spacing float32) []Anchor {
	if n < 0 {
		n = 0
	}
	out := make([]Anchor, n)
	for i := range out {
		out[i] = Anchor{Index: i, Offset: mgl32.Vec3{float32(i) * spacing, 0, 0}}
	}
	return out
}

// Capacity returns the fixed slot count.
func (s *SlotStack) Capacity() int { return len(s.slots) }

// Count returns the number of occupied slots.
func (s *SlotStack) Count() int { return s.count }

// Full reports whether every slot is occupied.
func (s *SlotStack) Full() bool { return s.count == len(s.slots) }

// Empty reports whether no slot is occupied.
func (s *SlotStack) Empty() bool { return s.count == 0 }

// TryPush stores item in the next free slot and returns that slot's anchor.
func (s *SlotStack) TryPush(item *Item) (Anchor, bool) {
	if s.count == len(s.slots) {
		return Anchor{}, false
	}
	slot := &s.slots[s.count]
	slot.occupant = item
	s.count++
	return slot.Anchor, true
}

// TryPop clears and returns the last occupied slot.
func (s *SlotStack) TryPop() (*Item, bool) {
	if s.count == 0 {
		return nil, false
	}
	s.count--
	slot := &s.slots[s.count]
	item := slot.occupant
	slot.occupant = nil
	return item, true
}

// Peek returns the last occupied slot's item without removing it.
func (s *SlotStack) Peek() (*Item, bool) {
	if s.count == 0 {
		return nil, false
	}
	return s.slots[s.count-1].occupant, true
}

// Slot returns a copy of the slot at index i.
func (s *SlotStack) Slot(i int) (Slot, bool) {
	if i < 0 || i >= len(s.slots) {
		return Slot{}, false
	}
	return s.slots[i], true
}

// Items returns the occupants in slot order.
func (s *SlotStack) Items() []*Item {
	out := make([]*Item, s.count)
	for i := 0; i < s.count; i++ {
		out[i] = s.slots[i].occupant
	}
	return out
}
