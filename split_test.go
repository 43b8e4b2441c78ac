package rtree

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitGroupBounds(t *testing.T) {
	configs := []struct{ min, max int }{
		{2, 4},
		{2, 5},
		{4, 8},
		{8, 16},
	}
	rnd := rand.New(rand.NewSource(1))

	for _, c := range configs {
		// both groups of a split must land in [min, max+1-min]
		lo, hi := c.min, c.max+1-c.min

		n := overflowLeaf(rnd, c.max+1)
		s := splitNode(n, lo, hi)
		assertGroup(t, n, lo, hi)
		assertGroup(t, s, lo, hi)
		assert.Equal(t, c.max+1, n.len()+s.len())

		for _, quadratic := range []bool{false, true} {
			g := newGuttmanIndex[float64, int](c.min, c.max, quadratic)
			n := overflowLeaf(rnd, c.max+1)
			s := g.splitNode(n)
			assertGroup(t, n, lo, hi)
			assertGroup(t, s, lo, hi)
			assert.Equal(t, c.max+1, n.len()+s.len())
		}
	}
}

func TestSplitSeparatesClusters(t *testing.T) {
	pts := []Point[float64]{{0, 0}, {1, 1}, {2, 0}, {100, 100}, {101, 99}}
	n := &node[float64, int]{leaf: true}
	for i, p := range pts {
		n.entries = append(n.entries, &Entry[float64, int]{shape: p, mbr: p.MBR(), value: i})
	}
	n.recomputeMBR()

	s := splitNode(n, 2, 3)
	a, b := n, s
	if a.mbr.Min[0] > b.mbr.Min[0] {
		a, b = b, a
	}
	assert.Equal(t, 3, a.len())
	assert.Equal(t, 2, b.len())
	assert.Less(t, a.mbr.Max[0], b.mbr.Min[0])
}

func TestSplitForReinsert(t *testing.T) {
	ix := newRStarIndex[float64, int](2, 4)
	assert.Equal(t, 3, ix.keep)
	assert.Equal(t, 2, ix.minK)
	assert.Equal(t, 3, ix.maxK)

	pts := []Point[float64]{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {83, 0}}
	n := &node[float64, int]{leaf: true}
	for i, p := range pts {
		n.entries = append(n.entries, &Entry[float64, int]{shape: p, mbr: p.MBR(), value: i})
	}
	n.recomputeMBR()

	shed := ix.splitForReinsert(n)
	vals := make([]int, 0, len(shed))
	for _, e := range shed {
		vals = append(vals, e.value)
	}
	// the span endpoints sit farthest from the center
	assert.ElementsMatch(t, []int{0, 4}, vals)
	assert.Equal(t, 3, n.len())
	assert.Equal(t, rect(Point[float64]{1, 0}, Point[float64]{3, 0}), n.mbr)
}

func TestChooseSubtree(t *testing.T) {
	a := &node[float64, int]{mbr: rect(Point[float64]{0, 0}, Point[float64]{10, 10}), leaf: true}
	b := &node[float64, int]{mbr: rect(Point[float64]{11.5, 0}, Point[float64]{22, 10}), leaf: true}
	c := &node[float64, int]{mbr: rect(Point[float64]{11, 0}, Point[float64]{12, 1}), leaf: true}
	e := &Entry[float64, int]{mbr: Point[float64]{11.2, 8}.MBR()}

	ix := newRStarIndex[float64, int](2, 8)

	// growing a toward the entry overlaps its siblings the least
	assert.Same(t, a, ix.chooseSubtree([]*node[float64, int]{a, b, c}, e))

	// one level up only area cost counts, and b is cheapest to grow
	ai := &node[float64, int]{mbr: a.mbr}
	bi := &node[float64, int]{mbr: b.mbr}
	ci := &node[float64, int]{mbr: c.mbr}
	assert.Same(t, bi, ix.chooseSubtree([]*node[float64, int]{ai, bi, ci}, e))

	g := newGuttmanIndex[float64, int](2, 8, true)
	assert.Same(t, b, g.chooseSubtree([]*node[float64, int]{a, b, c}, e))
}

func TestGuttmanSeeds(t *testing.T) {
	items := []*Entry[float64, int]{
		{mbr: rect(Point[float64]{0, 0}, Point[float64]{1, 1})},
		{mbr: rect(Point[float64]{1, 1}, Point[float64]{2, 2})},
		{mbr: rect(Point[float64]{50, 50}, Point[float64]{51, 51})},
	}
	s1, s2 := quadraticSeeds(items, entryMBR[float64, int])
	assert.Equal(t, 0, s1)
	assert.Equal(t, 2, s2)

	lin := []*Entry[float64, int]{
		{mbr: rect(Point[float64]{0, 0}, Point[float64]{1, 1})},
		{mbr: rect(Point[float64]{5, 0}, Point[float64]{6, 1})},
		{mbr: rect(Point[float64]{20, 0}, Point[float64]{21, 1})},
	}
	l1, l2 := linearSeeds(lin, entryMBR[float64, int])
	assert.Equal(t, 2, l1)
	assert.Equal(t, 0, l2)
}

func assertGroup(t *testing.T, n *node[float64, int], lo, hi int) {
	assert.GreaterOrEqual(t, n.len(), lo)
	assert.LessOrEqual(t, n.len(), hi)

	want := Rect[float64]{}
	for _, e := range n.entries {
		want.Expand(e.mbr)
	}
	assert.Equal(t, want, n.mbr)
}

func overflowLeaf(rnd *rand.Rand, count int) *node[float64, int] {
	n := &node[float64, int]{leaf: true}
	for i := 0; i < count; i++ {
		x, y := rnd.Float64()*100, rnd.Float64()*100
		mbr := rect(Point[float64]{x, y}, Point[float64]{x + rnd.Float64()*10, y + rnd.Float64()*10})
		n.entries = append(n.entries, &Entry[float64, int]{mbr: mbr, value: i})
	}
	n.recomputeMBR()
	return n
}
