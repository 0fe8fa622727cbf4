package nodemat

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Node is a scene graph node. Nodes with a Mesh are drawn with Material.
type Node struct {
	Name     string
	Position Vector
	Rotation mgl64.Quat
	Scale    Vector
	// Transform, when set, replaces Position/Rotation/Scale.
	Transform *Matrix

	Mesh     *Mesh
	Material *Material
	// Authored is the material the mesh came with from its asset, kept so
	// bindings can be recomputed.
	Authored *Material

	Hidden   bool
	Children []*Node
}

// NewNode returns an empty group node.
func NewNode(name string) *Node {
	return &Node{Name: name, Rotation: mgl64.QuatIdent(), Scale: V(1, 1, 1)}
}

// NewMeshNode returns a node drawing mesh with material; material is also
// recorded as the authored one.
func NewMeshNode(name string, mesh *Mesh, material *Material) *Node {
	n := NewNode(name)
	n.Mesh = mesh
	n.Material = material
	n.Authored = material
	return n
}

func (n *Node) IsMesh() bool {
	return n.Mesh != nil
}

func (n *Node) Add(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Remove detaches child, reporting whether it was found.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
			return true
		}
	}
	return false
}

func (n *Node) SetPosition(x, y, z float64) {
	n.Position = V(x, y, z)
}

// Matrix is the node's local transform.
func (n *Node) Matrix() Matrix {
	if n.Transform != nil {
		return *n.Transform
	}
	return TRS(n.Position, n.Rotation, n.Scale)
}

// Walk visits n and its descendants depth first with their world matrices,
// parent being the world matrix of n's parent. Returning false skips a
// node's children.
func (n *Node) Walk(parent Matrix, fn func(node *Node, world Matrix) bool) {
	world := parent.Mul(n.Matrix())
	if !fn(n, world) {
		return
	}
	for _, c := range n.Children {
		c.Walk(world, fn)
	}
}

// Traverse visits every node below and including n.
func (n *Node) Traverse(fn func(node *Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Meshes lists mesh nodes in traversal order.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(c *Node) {
		if c.IsMesh() {
			out = append(out, c)
		}
	})
	return out
}

// Find returns the first node named name, or nil.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Traverse(func(c *Node) {
		if found == nil && c.Name == name {
			found = c
		}
	})
	return found
}

// BoundingBox is the box of all meshes below n, in n's parent space.
func (n *Node) BoundingBox() Box {
	var boxes []Box
	n.Walk(Identity(), func(c *Node, world Matrix) bool {
		if c.IsMesh() {
			boxes = append(boxes, c.Mesh.BoundingBox().Transform(world))
		}
		return true
	})
	return BoxForBoxes(boxes)
}
