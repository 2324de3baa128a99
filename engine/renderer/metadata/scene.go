package metadata

import (
	"github.com/spaghettifunk/configurator/engine/math"
)

// Node is an element of the scene graph. A node with a Mesh is pickable; a
// node without one only groups its children.
type Node struct {
	ID        string
	Name      string
	Transform *math.Transform
	Mesh      *Mesh
	Parent    *Node
	Children  []*Node
}

func NewNode(id, name string, transform *math.Transform) *Node {
	if transform == nil {
		transform = math.TransformCreate()
	}
	return &Node{ID: id, Name: name, Transform: transform}
}

// AddChild attaches child to n, including its transform chain.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	child.Transform.Parent = n.Transform
	n.Children = append(n.Children, child)
}

// Scene is a loaded model: a root node plus the source it came from.
type Scene struct {
	Name   string
	Source string
	Root   *Node
}

// Traverse visits n and all of its descendants, depth first.
func (n *Node) Traverse(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Traverse(fn)
	}
}

// Traverse visits every node of the scene.
func (s *Scene) Traverse(fn func(*Node)) {
	if s == nil {
		return
	}
	s.Root.Traverse(fn)
}

// TraverseMeshes visits every mesh of the scene.
func (s *Scene) TraverseMeshes(fn func(*Mesh)) {
	s.Traverse(func(n *Node) {
		if n.Mesh != nil {
			fn(n.Mesh)
		}
	})
}

// Meshes returns the meshes of the scene in traversal order.
func (s *Scene) Meshes() []*Mesh {
	var out []*Mesh
	s.TraverseMeshes(func(m *Mesh) {
		out = append(out, m)
	})
	return out
}

// FindMesh returns the mesh with the given id by walking the graph.
func (s *Scene) FindMesh(id string) *Mesh {
	var found *Mesh
	s.TraverseMeshes(func(m *Mesh) {
		if found == nil && m.UniqueID == id {
			found = m
		}
	})
	return found
}
