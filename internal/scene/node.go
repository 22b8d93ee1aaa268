// Package scene is a small in-memory scene graph that hosts containers: it
// supplies the object graph walked for nested discovery and the physical
// body a root container is posed through.
package scene

import (
	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

var (
	_ core.HostNode = (*Node)(nil)
	_ core.Body     = (*Node)(nil)
)

// Node is a named object in the scene. It may carry a container and any
// number of children.
type Node struct {
	Name      string
	key       string
	parent    *Node
	children  []*Node
	container *core.Container
	pose      domain.Transform
	teleports int
}

// NewNode returns a node at the identity pose.
func NewNode(name string) *Node {
	return &Node{Name: name, pose: domain.IdentityTransform()}
}

// AddChild attaches child, detaching it from any previous parent, and returns it.
func (n *Node) AddChild(child *Node) *Node {
	if child == nil || child == n {
		return child
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// RemoveChild detaches child.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Parent returns the parent node, nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// WithKey sets the stable key reported to nested matching and returns n.
func (n *Node) WithKey(key string) *Node {
	n.key = key
	return n
}

// SetContainer attaches c to the node.
func (n *Node) SetContainer(c *core.Container) { n.container = c }

// Children implements core.HostNode.
func (n *Node) Children() []core.HostNode {
	out := make([]core.HostNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Container implements core.HostNode.
func (n *Node) Container() *core.Container { return n.container }

// Key implements core.HostNode.
func (n *Node) Key() string { return n.key }

// Pose implements core.Body.
func (n *Node) Pose() domain.Transform { return n.pose }

// Teleport implements core.Body.
func (n *Node) Teleport(t domain.Transform) {
	n.pose = t
	n.teleports++
}

// MoveTo sets the pose without counting as a teleport, as the simulation would.
func (n *Node) MoveTo(t domain.Transform) { n.pose = t }

// Teleports returns how many times the node was teleported.
func (n *Node) Teleports() int { return n.teleports }

// Find returns the first node named name in depth-first order, including n.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}
