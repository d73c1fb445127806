package flock

import (
	"errors"

	"github.com/akmonengine/flock/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	DEFAULT_OCTREE_CAPACITY = 4
	// OCTREE_PADDING enlarges the initial bounding cube so no point sits on its upper faces
	OCTREE_PADDING = 0.1
	// MIN_OCTREE_HALF_EXTENT keeps the cube of a single point (or coincident points) non-empty
	MIN_OCTREE_HALF_EXTENT = 1.0
	// MAX_OCTREE_DEPTH stops subdivision; deeper leaves store any number of entries
	MAX_OCTREE_DEPTH = 16
)

// ErrEmptyOctree is returned when building an octree without items
var ErrEmptyOctree = errors.New("flock: cannot build an octree with no items")

// entry is an indexed item with its position at insertion time
type entry[T comparable] struct {
	item     T
	position mgl64.Vec3
}

type octNode[T comparable] struct {
	cube     actor.Cube
	depth    int
	entries  []entry[T]
	children *[8]*octNode[T]
}

// Octree indexes items by position for radius queries.
// Positions are captured on insertion: moving an item requires rebuilding the tree.
type Octree[T comparable] struct {
	root     *octNode[T]
	capacity int
	position func(T) mgl64.Vec3
	count    int
}

// NewOctree builds an octree over items, located by the position function.
// The root is the bounding cube of every position, enlarged by OCTREE_PADDING.
func NewOctree[T comparable](items []T, capacity int, position func(T) mgl64.Vec3) (*Octree[T], error) {
	if len(items) == 0 {
		return nil, ErrEmptyOctree
	}
	if capacity < 1 {
		capacity = DEFAULT_OCTREE_CAPACITY
	}

	positions := make([]mgl64.Vec3, len(items))
	for i, item := range items {
		positions[i] = position(item)
	}

	tree := &Octree[T]{
		root: &octNode[T]{
			cube: actor.AABBFromPoints(positions).BoundingCube(OCTREE_PADDING, MIN_OCTREE_HALF_EXTENT),
		},
		capacity: capacity,
		position: position,
	}

	for i, item := range items {
		tree.ExpandToFit(positions[i])
		tree.insertEntry(entry[T]{item: item, position: positions[i]})
	}

	return tree, nil
}

// Len returns the number of indexed items
func (t *Octree[T]) Len() int {
	return t.count
}

// Bounds returns the cube covered by the root
func (t *Octree[T]) Bounds() actor.Cube {
	return t.root.cube
}

// Insert indexes an item at its current position.
// It returns false when the position is outside the root: call ExpandToFit first.
func (t *Octree[T]) Insert(item T) bool {
	return t.insertEntry(entry[T]{item: item, position: t.position(item)})
}

func (t *Octree[T]) insertEntry(e entry[T]) bool {
	if !t.root.cube.ContainsPoint(e.position) {
		return false
	}
	t.root.insert(e, t.capacity)
	t.count++
	return true
}

// ExpandToFit doubles the root toward point until it contains it.
// Every indexed item is kept. Non-finite points are ignored.
func (t *Octree[T]) ExpandToFit(point mgl64.Vec3) {
	if !actor.Finite(point) {
		return
	}

	for !t.root.cube.ContainsPoint(point) {
		old := t.root
		t.root = &octNode[T]{cube: old.cube.GrowToward(point)}
		old.each(func(e entry[T]) {
			t.root.insert(e, t.capacity)
		})
	}
}

// Items returns every indexed item
func (t *Octree[T]) Items() []T {
	out := make([]T, 0, t.count)
	t.root.each(func(e entry[T]) {
		out = append(out, e.item)
	})
	return out
}

// QueryRadius returns the items within radius of center, boundary included
func (t *Octree[T]) QueryRadius(center mgl64.Vec3, radius float64) []T {
	if radius < 0 {
		return nil
	}
	var found []T
	t.root.query(center, radius, &found)
	return found
}

// QueryNeighbors returns the items within radius of item's position, item itself excluded.
// Other items sharing its exact position are still returned.
func (t *Octree[T]) QueryNeighbors(item T, radius float64) []T {
	found := t.QueryRadius(t.position(item), radius)

	n := 0
	for _, other := range found {
		if other != item {
			found[n] = other
			n++
		}
	}
	return found[:n]
}

func (n *octNode[T]) insert(e entry[T], capacity int) {
	if n.children == nil {
		if len(n.entries) < capacity || n.depth >= MAX_OCTREE_DEPTH {
			n.entries = append(n.entries, e)
			return
		}
		n.subdivide()
	}
	n.children[n.octantOf(e.position)].insert(e, capacity)
}

func (n *octNode[T]) subdivide() {
	var children [8]*octNode[T]
	for i := range children {
		children[i] = &octNode[T]{
			cube:  n.cube.Octant(i),
			depth: n.depth + 1,
		}
	}
	n.children = &children
}

// octantOf follows the bit layout of actor.Cube.Octant
func (n *octNode[T]) octantOf(p mgl64.Vec3) int {
	i := 0
	if p.X() >= n.cube.Center.X() {
		i |= 1
	}
	if p.Y() >= n.cube.Center.Y() {
		i |= 2
	}
	if p.Z() >= n.cube.Center.Z() {
		i |= 4
	}
	return i
}

func (n *octNode[T]) query(center mgl64.Vec3, radius float64, found *[]T) {
	if !n.cube.IntersectsSphere(center, radius) {
		return
	}

	for _, e := range n.entries {
		if e.position.Sub(center).Len() <= radius {
			*found = append(*found, e.item)
		}
	}

	if n.children != nil {
		for _, child := range n.children {
			child.query(center, radius, found)
		}
	}
}

func (n *octNode[T]) each(fn func(e entry[T])) {
	for _, e := range n.entries {
		fn(e)
	}
	if n.children != nil {
		for _, child := range n.children {
			child.each(fn)
		}
	}
}
