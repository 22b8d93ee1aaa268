package core

// EventKind distinguishes container notifications.
type EventKind int

const (
	// ItemAdded is raised after an item lands in a slot.
	ItemAdded EventKind = iota + 1
	// ItemRemoved is raised after an item leaves its slot.
	ItemRemoved
)

func (k EventKind) String() string {
	switch k {
	case ItemAdded:
		return "item_added"
	case ItemRemoved:
		return "item_removed"
	default:
		return "unknown"
	}
}

// Event describes an item entering or leaving a container slot.
type Event struct {
	Kind      EventKind
	Container *Container
	Item      *Item
	Slot      int
}

type subscription struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for item notifications and returns a function that
// removes the subscription.
func (c *Container) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Container) emit(ev Event) {
	subs := append([]subscription(nil), c.subs...)
	for _, s := range subs {
		s.fn(ev)
	}
}
