// Package spatial provides an octree over anything with an axis-aligned
// bounding box.
package spatial

import "github.com/inamate/vectorscene/internal/geom"

const (
	// DefaultCapacity is the number of items a node holds before it splits.
	DefaultCapacity = 8

	// maxDepth stops subdivision when many items share one point.
	maxDepth = 24
)

// Bounded is implemented by items stored in an Octree.
type Bounded interface {
	Bounds() geom.Box3
}

// Octree partitions a fixed region into eight children per node. It never
// rebalances; callers rebuild it when their items change.
type Octree[T Bounded] struct {
	region   geom.Box3
	capacity int
	depth    int
	items    []T
	children *[8]*Octree[T]
	divided  bool
}

// NewOctree creates an empty tree over region. Capacities below 1 fall back
// to DefaultCapacity.
func NewOctree[T Bounded](region geom.Box3, capacity int) *Octree[T] {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Octree[T]{region: region, capacity: capacity}
}

// Region returns the space covered by the root node.
func (o *Octree[T]) Region() geom.Box3 { return o.region }

// Insert adds item. It returns false when the item's bounds lie outside the
// node's region.
func (o *Octree[T]) Insert(item T) bool {
	b := item.Bounds()
	if !o.region.IntersectsWith(b) {
		return false
	}
	if !o.divided && (len(o.items) < o.capacity || o.depth >= maxDepth) {
		o.items = append(o.items, item)
		return true
	}
	if !o.divided {
		o.subdivide()
	}
	o.place(item, b)
	return true
}

// place stores an item in the single child that contains it, or at this
// node when it straddles a midpoint.
func (o *Octree[T]) place(item T, b geom.Box3) {
	if i := o.octant(b); i >= 0 && o.children[i].region.IntersectsWith(b) {
		o.children[i].Insert(item)
		return
	}
	o.items = append(o.items, item)
}

func (o *Octree[T]) subdivide() {
	mn, mx, mid := o.region.Min, o.region.Max, o.region.Center()
	var children [8]*Octree[T]
	for i := range children {
		lo, hi := mn, mid
		if i&1 != 0 {
			lo.X, hi.X = mid.X, mx.X
		}
		if i&2 != 0 {
			lo.Y, hi.Y = mid.Y, mx.Y
		}
		if i&4 != 0 {
			lo.Z, hi.Z = mid.Z, mx.Z
		}
		children[i] = &Octree[T]{
			region:   geom.Box3{Min: lo, Max: hi},
			capacity: o.capacity,
			depth:    o.depth + 1,
		}
	}
	o.children = &children
	o.divided = true

	existing := o.items
	o.items = nil
	for _, it := range existing {
		o.place(it, it.Bounds())
	}
}

// octant returns the child index that wholly contains b, or -1.
func (o *Octree[T]) octant(b geom.Box3) int {
	mid := o.region.Center()
	idx := 0
	for axis, bit := range [3]int{1, 2, 4} {
		lo, hi, m := component(b.Min, axis), component(b.Max, axis), component(mid, axis)
		switch {
		case lo >= m:
			idx |= bit
		case hi <= m:
		default:
			return -1
		}
	}
	return idx
}

func component(v geom.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Query returns every stored item whose bounds intersect region.
func (o *Octree[T]) Query(region geom.Box3) []T {
	var out []T
	o.query(region, &out)
	return out
}

func (o *Octree[T]) query(region geom.Box3, out *[]T) {
	if !o.region.IntersectsWith(region) {
		return
	}
	for _, it := range o.items {
		if region.IntersectsWith(it.Bounds()) {
			*out = append(*out, it)
		}
	}
	if o.divided {
		for _, c := range o.children {
			c.query(region, out)
		}
	}
}

// Clear drops all items and children.
func (o *Octree[T]) Clear() {
	o.items = nil
	o.children = nil
	o.divided = false
}

// Len returns the number of stored items.
func (o *Octree[T]) Len() int {
	n := len(o.items)
	if o.divided {
		for _, c := range o.children {
			n += c.Len()
		}
	}
	return n
}

// Depth returns the number of levels below and including this node.
func (o *Octree[T]) Depth() int {
	if !o.divided {
		return 1
	}
	d := 0
	for _, c := range o.children {
		d = max(d, c.Depth())
	}
	return d + 1
}
