package spatial

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/inamate/vectorscene/internal/geom"
)

type box struct {
	id int
	b  geom.Box3
}

func (b box) Bounds() geom.Box3 { return b.b }

func unit(x, y, z float64) geom.Box3 {
	return geom.NewBox3(geom.V3(x, y, z), geom.V3(x+1, y+1, z+1))
}

var world = geom.NewBox3(geom.V3(0, 0, 0), geom.V3(100, 100, 100))

func TestOctreeCorners(t *testing.T) {
	o := NewOctree[box](world, 1)
	o.Insert(box{1, unit(0, 0, 0)})
	o.Insert(box{2, unit(99, 0, 0)})
	o.Insert(box{3, unit(0, 99, 99)})

	if got := len(o.Query(world)); got != 3 {
		t.Errorf("Query(world) returned %d items, want 3", got)
	}
	empty := geom.NewBox3(geom.V3(90, 90, 90), geom.V3(100, 100, 100))
	if got := len(o.Query(empty)); got != 0 {
		t.Errorf("Query(empty corner) returned %d items, want 0", got)
	}
	if o.Depth() < 2 {
		t.Errorf("Depth() = %d, want a split tree", o.Depth())
	}
}

func TestOctreeInsertOutside(t *testing.T) {
	o := NewOctree[box](world, 0)
	if o.Insert(box{1, unit(200, 200, 200)}) {
		t.Error("Insert(outside) = true, want false")
	}
	if o.Len() != 0 {
		t.Errorf("Len() = %d, want 0", o.Len())
	}
}

func TestOctreeStraddlingItemStaysAtParent(t *testing.T) {
	o := NewOctree[box](world, 1)
	o.Insert(box{1, unit(10, 10, 10)})
	o.Insert(box{2, geom.NewBox3(geom.V3(40, 40, 40), geom.V3(60, 60, 60))})

	if len(o.items) != 1 || o.items[0].id != 2 {
		t.Errorf("root items = %v, want only the straddling box", o.items)
	}
	if o.Len() != 2 {
		t.Errorf("Len() = %d, want 2", o.Len())
	}
}

func TestOctreeSamePointTerminates(t *testing.T) {
	o := NewOctree[box](world, 1)
	p := geom.NewBox3(geom.V3(30, 30, 30), geom.V3(30, 30, 30))
	for i := range 10 {
		o.Insert(box{i, p})
	}
	if o.Len() != 10 {
		t.Errorf("Len() = %d, want 10", o.Len())
	}
	if d := o.Depth(); d > maxDepth+1 {
		t.Errorf("Depth() = %d, want at most %d", d, maxDepth+1)
	}
}

// randomBoxes stays inside world so that every item is reachable by
// region queries.
func randomBoxes(r *rand.Rand, n int) []box {
	out := make([]box, n)
	for i := range out {
		a := geom.V3(r.Float64()*85, r.Float64()*85, r.Float64()*85)
		s := geom.V3(r.Float64()*15, r.Float64()*15, r.Float64()*15)
		out[i] = box{i, geom.NewBox3(a, a.Add(s))}
	}
	return out
}

func ids(items []box) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.id
	}
	slices.Sort(out)
	return out
}

func TestOctreeQueryExact(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	items := randomBoxes(r, 300)

	for q := range 20 {
		a := geom.V3(r.Float64()*80, r.Float64()*80, r.Float64()*80)
		region := geom.NewBox3(a, a.Add(geom.V3(20, 20, 20)))

		var want []box
		for _, it := range items {
			if region.IntersectsWith(it.b) {
				want = append(want, it)
			}
		}

		for _, capacity := range []int{1, 2, 8, 64} {
			shuffled := slices.Clone(items)
			r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

			o := NewOctree[box](world, capacity)
			for _, it := range shuffled {
				o.Insert(it)
			}
			if got := ids(o.Query(region)); !slices.Equal(got, ids(want)) {
				t.Errorf("query %d capacity %d: got %d items, want %d", q, capacity, len(got), len(want))
			}
		}
	}
}

func TestOctreeClear(t *testing.T) {
	o := NewOctree[box](world, 1)
	for _, it := range randomBoxes(rand.New(rand.NewPCG(3, 4)), 20) {
		o.Insert(it)
	}
	o.Clear()
	if o.Len() != 0 || o.Depth() != 1 {
		t.Errorf("after Clear Len() = %d Depth() = %d, want 0 and 1", o.Len(), o.Depth())
	}
	if got := o.Query(world); len(got) != 0 {
		t.Errorf("Query after Clear = %v, want empty", got)
	}
}
