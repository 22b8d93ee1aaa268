package core

import "inventorycore/pkg/domain"

// HostNode is the part of the host's object graph the engine walks once, at
// Initialize, to discover nested containers. Children must be returned in a
// stable order.
type HostNode interface {
	Children() []HostNode
	// Container returns the container carried by the node, or nil.
	Container() *Container
	// Key returns a stable local key used to match nested snapshots, or "".
	Key() string
}

// Body is the physical representation of a root container. Restoring a root
// teleports its body so simulated physics keeps a consistent pose.
type Body interface {
	Pose() domain.Transform
	Teleport(domain.Transform)
}

// Presenter plays a fire-and-forget transfer animation. Its outcome never
// affects Add or Remove.
type Presenter interface {
	Execute(item *Item, target Anchor)
}

// ObjectFactory materializes items and containers from type identifiers.
// Unknown type ids return an error wrapping domain.ErrLookupMiss.
type ObjectFactory interface {
	CreateItem(typeID string) (*Item, error)
	CreateContainer(typeID string) (*Container, error)
}

// discoverNested walks the children of root depth-first and collects the
// first container found on each branch. Containers below a found container
// belong to that container and are discovered by it.
func discoverNested(self *Container, root HostNode) []*Container {
	if root == nil {
		return nil
	}
	var out []*Container
	var walk func(HostNode)
	walk = func(n HostNode) {
		for _, child := range n.Children() {
			if child == nil {
				continue
			}
			if c := child.Container(); c != nil && c != self {
				if c.key == "" {
					c.key = child.Key()
				}
				out = append(out, c)
				continue
			}
			walk(child)
		}
	}
	walk(root)
	return out
}
