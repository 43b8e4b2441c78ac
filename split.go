package rtree

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// insertIndex is the insertion strategy behind a tree. Implementations
// return the root, replaced when it had to be split.
type insertIndex[P constraints.Float, V any] interface {
	insertIntoRoot(root *node[P, V], e *Entry[P, V]) *node[P, V]
}

// splitRoot lifts the old root and its new sibling under a fresh one.
func splitRoot[P constraints.Float, V any](root, sibling *node[P, V]) *node[P, V] {
	mbr := root.mbr.Clone()
	mbr.Expand(sibling.mbr)
	return &node[P, V]{mbr: mbr, children: []*node[P, V]{root, sibling}}
}

// areaCost reports how much mbr must grow to take add, along with the
// grown and the current area for tie breaking.
func areaCost[P constraints.Float](mbr, add Rect[P]) (enl, grown, current P) {
	u := mbr.Clone()
	u.Expand(add)
	grown = u.Area()
	current = mbr.Area()
	return grown - current, grown, current
}

func entryMBR[P constraints.Float, V any](e *Entry[P, V]) Rect[P] {
	return e.mbr
}

func nodeMBR[P constraints.Float, V any](n *node[P, V]) Rect[P] {
	return n.mbr
}

// rstarIndex inserts with forced reinsertion and topological splits.
type rstarIndex[P constraints.Float, V any] struct {
	max  int
	keep int // entries kept by an overflowing leaf on reinsert
	minK int // smallest group a split may produce
	maxK int // largest first group, len minus minK
}

func newRStarIndex[P constraints.Float, V any](min, max int) *rstarIndex[P, V] {
	shed := int(float64(max) * reinsertFraction)
	if shed < 1 {
		shed = 1
	}
	return &rstarIndex[P, V]{
		max:  max,
		keep: max - shed,
		minK: min,
		maxK: max + 1 - min,
	}
}

func (ix *rstarIndex[P, V]) insertIntoRoot(root *node[P, V], e *Entry[P, V]) *node[P, V] {
	res := ix.insertInto(root, e, true, false)
	switch res.kind {
	case insertSplit:
		root = splitRoot(root, res.split)
	case insertReinsert:
		// one reinsertion pass per insert, overflows split from here
		for _, r := range res.reinsert {
			res = ix.insertInto(root, r, true, true)
			if res.kind == insertSplit {
				root = splitRoot(root, res.split)
			}
		}
	}
	return root
}

func (ix *rstarIndex[P, V]) insertInto(n *node[P, V], e *Entry[P, V], atRoot, forceSplit bool) insertResult[P, V] {
	n.mbr.Expand(e.mbr)
	if n.leaf {
		n.entries = append(n.entries, e)
	} else {
		res := ix.insertInto(ix.chooseSubtree(n.children, e), e, false, forceSplit)
		switch res.kind {
		case insertSplit:
			n.children = append(n.children, res.split)
		case insertReinsert:
			// entries left the subtree, tighten on the way up
			n.recomputeMBR()
			return res
		default:
			return res
		}
	}
	if n.len() > ix.max {
		return ix.overflow(n, atRoot, forceSplit)
	}
	return insertResult[P, V]{kind: insertOK}
}

func (ix *rstarIndex[P, V]) overflow(n *node[P, V], atRoot, forceSplit bool) insertResult[P, V] {
	if !atRoot && !forceSplit && n.leaf {
		return insertResult[P, V]{kind: insertReinsert, reinsert: ix.splitForReinsert(n)}
	}
	return insertResult[P, V]{kind: insertSplit, split: splitNode(n, ix.minK, ix.maxK)}
}

// splitForReinsert sheds the entries farthest from the node center,
// ordered near to far so reinsertion touches the close ones first.
func (ix *rstarIndex[P, V]) splitForReinsert(n *node[P, V]) []*Entry[P, V] {
	sort.Slice(n.entries, func(i, j int) bool {
		return centerDistance2(n.entries[i].mbr, n.mbr) < centerDistance2(n.entries[j].mbr, n.mbr)
	})
	shed := append([]*Entry[P, V](nil), n.entries[ix.keep:]...)
	n.entries = n.entries[:ix.keep]
	n.recomputeMBR()
	return shed
}

// chooseSubtree picks the child to take e. Children of leaves compete
// on overlap enlargement against their siblings, ties on area cost
// then area. Higher levels compete on area cost alone, ties on the
// grown area.
func (ix *rstarIndex[P, V]) chooseSubtree(level []*node[P, V], e *Entry[P, V]) *node[P, V] {
	if !level[0].leaf {
		var best *node[P, V]
		var bestEnl, bestGrown P
		for _, n := range level {
			enl, grown, _ := areaCost(n.mbr, e.mbr)
			if best == nil || enl < bestEnl || (enl == bestEnl && grown < bestGrown) {
				best, bestEnl, bestGrown = n, enl, grown
			}
		}
		return best
	}
	sort.Slice(level, func(i, j int) bool {
		enlI, _, curI := areaCost(level[i].mbr, e.mbr)
		enlJ, _, curJ := areaCost(level[j].mbr, e.mbr)
		if enlI != enlJ {
			return enlI < enlJ
		}
		return curI < curJ
	})
	cands := level
	if len(cands) > chooseSubtreeCap {
		cands = cands[:chooseSubtreeCap]
	}
	best := cands[0]
	bestOv := overlapCost(level, best, e.mbr)
	for _, n := range cands[1:] {
		if ov := overlapCost(level, n, e.mbr); ov < bestOv {
			best, bestOv = n, ov
		}
	}
	return best
}

// overlapCost is how much more of its siblings n would overlap after
// growing to take add.
func overlapCost[P constraints.Float, V any](level []*node[P, V], n *node[P, V], add Rect[P]) P {
	grown := n.mbr.Clone()
	grown.Expand(add)
	var cost P
	for _, sib := range level {
		if sib == n {
			continue
		}
		cost += grown.OverlapArea(sib.mbr) - n.mbr.OverlapArea(sib.mbr)
	}
	return cost
}

// splitNode divides an overflowing node along the best axis and cut,
// moving the tail group into the returned sibling.
func splitNode[P constraints.Float, V any](n *node[P, V], minK, maxK int) *node[P, V] {
	s := &node[P, V]{leaf: n.leaf}
	if n.leaf {
		cut := rstarCut(n.entries, entryMBR[P, V], minK, maxK)
		s.entries = append(s.entries, n.entries[cut:]...)
		n.entries = n.entries[:cut]
	} else {
		cut := rstarCut(n.children, nodeMBR[P, V], minK, maxK)
		s.children = append(s.children, n.children[cut:]...)
		n.children = n.children[:cut]
	}
	n.recomputeMBR()
	s.recomputeMBR()
	return s
}

// rstarCut picks the split axis by least margin sum, sorts items along
// it and returns the cut index of the best position.
func rstarCut[P constraints.Float, T any](items []T, mbrOf func(T) Rect[P], minK, maxK int) int {
	dim := mbrOf(items[0]).Dim()
	bestMargin := P(math.Inf(1))
	bestAxis, bestEdge, bestCut := 0, 0, minK
	for axis := 0; axis < dim; axis++ {
		margin, edge, cut := cutForAxis(items, mbrOf, axis, minK, maxK)
		if margin < bestMargin {
			bestMargin, bestAxis, bestEdge, bestCut = margin, axis, edge, cut
		}
	}
	sortByAxis(items, mbrOf, bestAxis, bestEdge)
	return bestCut
}

func sortByAxis[P constraints.Float, T any](items []T, mbrOf func(T) Rect[P], axis, edge int) {
	sort.Slice(items, func(i, j int) bool {
		if edge == 0 {
			return mbrOf(items[i]).Min[axis] < mbrOf(items[j]).Min[axis]
		}
		return mbrOf(items[i]).Max[axis] < mbrOf(items[j]).Max[axis]
	})
}

// cutForAxis sweeps every allowed cut under both edge orders of one
// axis. It returns the margin sum over all of them and the cut with
// the least group overlap, ties on combined area.
func cutForAxis[P constraints.Float, T any](items []T, mbrOf func(T) Rect[P], axis, minK, maxK int) (P, int, int) {
	var margin P
	bestOverlap := P(math.Inf(1))
	var bestArea P
	bestEdge, bestCut := 0, minK
	suffix := make([]Rect[P], len(items)+1)
	for edge := 0; edge < 2; edge++ {
		sortByAxis(items, mbrOf, axis, edge)
		suffix[len(items)] = Rect[P]{}
		for i := len(items) - 1; i >= 1; i-- {
			r := suffix[i+1].Clone()
			r.Expand(mbrOf(items[i]))
			suffix[i] = r
		}
		var group1 Rect[P]
		for i := 0; i < maxK; i++ {
			group1.Expand(mbrOf(items[i]))
			k := i + 1
			if k < minK {
				continue
			}
			group2 := suffix[k]
			margin += group1.Margin() + group2.Margin()
			overlap := group1.OverlapArea(group2)
			area := group1.Area() + group2.Area()
			if overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
				bestOverlap, bestArea, bestEdge, bestCut = overlap, area, edge, k
			}
		}
	}
	return margin, bestEdge, bestCut
}

// guttmanIndex inserts by least enlargement and splits from two seeds.
type guttmanIndex[P constraints.Float, V any] struct {
	min       int
	max       int
	quadratic bool
}

func newGuttmanIndex[P constraints.Float, V any](min, max int, quadratic bool) *guttmanIndex[P, V] {
	return &guttmanIndex[P, V]{min: min, max: max, quadratic: quadratic}
}

func (ix *guttmanIndex[P, V]) insertIntoRoot(root *node[P, V], e *Entry[P, V]) *node[P, V] {
	if res := ix.insertInto(root, e); res.kind == insertSplit {
		root = splitRoot(root, res.split)
	}
	return root
}

func (ix *guttmanIndex[P, V]) insertInto(n *node[P, V], e *Entry[P, V]) insertResult[P, V] {
	n.mbr.Expand(e.mbr)
	if n.leaf {
		n.entries = append(n.entries, e)
	} else {
		res := ix.insertInto(ix.chooseSubtree(n.children, e), e)
		if res.kind != insertSplit {
			return res
		}
		n.children = append(n.children, res.split)
	}
	if n.len() > ix.max {
		return insertResult[P, V]{kind: insertSplit, split: ix.splitNode(n)}
	}
	return insertResult[P, V]{kind: insertOK}
}

// least enlargement wins, ties go to the smaller grown node
func (ix *guttmanIndex[P, V]) chooseSubtree(level []*node[P, V], e *Entry[P, V]) *node[P, V] {
	var best *node[P, V]
	var bestEnl, bestGrown P
	for _, n := range level {
		enl, grown, _ := areaCost(n.mbr, e.mbr)
		if best == nil || enl < bestEnl || (enl == bestEnl && grown < bestGrown) {
			best, bestEnl, bestGrown = n, enl, grown
		}
	}
	return best
}

func (ix *guttmanIndex[P, V]) splitNode(n *node[P, V]) *node[P, V] {
	s := &node[P, V]{leaf: n.leaf}
	if n.leaf {
		n.entries, s.entries = seedSplit(n.entries, entryMBR[P, V], ix.min, ix.quadratic)
	} else {
		n.children, s.children = seedSplit(n.children, nodeMBR[P, V], ix.min, ix.quadratic)
	}
	n.recomputeMBR()
	s.recomputeMBR()
	return s
}

// seedSplit starts two groups from seeds and hands each remaining item
// to the group needing less enlargement. A group short on items takes
// everything left once it must to reach min.
func seedSplit[P constraints.Float, T any](items []T, mbrOf func(T) Rect[P], min int, quadratic bool) ([]T, []T) {
	var s1, s2 int
	if quadratic {
		s1, s2 = quadraticSeeds(items, mbrOf)
	} else {
		s1, s2 = linearSeeds(items, mbrOf)
	}
	g1 := []T{items[s1]}
	g2 := []T{items[s2]}
	m1 := mbrOf(items[s1]).Clone()
	m2 := mbrOf(items[s2]).Clone()
	rest := make([]T, 0, len(items)-2)
	for i, it := range items {
		if i != s1 && i != s2 {
			rest = append(rest, it)
		}
	}
	for len(rest) > 0 {
		if len(g1)+len(rest) == min {
			g1 = append(g1, rest...)
			break
		}
		if len(g2)+len(rest) == min {
			g2 = append(g2, rest...)
			break
		}
		next := 0
		if quadratic {
			// strongest preference first
			best := P(-1)
			for i, it := range rest {
				d1 := m1.Enlargement(mbrOf(it))
				d2 := m2.Enlargement(mbrOf(it))
				diff := d1 - d2
				if diff < 0 {
					diff = -diff
				}
				if diff > best {
					best, next = diff, i
				}
			}
		}
		it := rest[next]
		rest = append(rest[:next], rest[next+1:]...)
		d1 := m1.Enlargement(mbrOf(it))
		d2 := m2.Enlargement(mbrOf(it))
		take1 := d1 < d2
		if d1 == d2 {
			a1, a2 := m1.Area(), m2.Area()
			take1 = a1 < a2 || (a1 == a2 && len(g1) <= len(g2))
		}
		if take1 {
			g1 = append(g1, it)
			m1.Expand(mbrOf(it))
		} else {
			g2 = append(g2, it)
			m2.Expand(mbrOf(it))
		}
	}
	return g1, g2
}

// quadraticSeeds picks the pair wasting the most area when joined.
func quadraticSeeds[P constraints.Float, T any](items []T, mbrOf func(T) Rect[P]) (int, int) {
	s1, s2 := 0, 1
	worst := P(math.Inf(-1))
	for i := 0; i < len(items); i++ {
		mi := mbrOf(items[i])
		for j := i + 1; j < len(items); j++ {
			mj := mbrOf(items[j])
			u := mi.Clone()
			u.Expand(mj)
			waste := u.Area() - mi.Area() - mj.Area()
			if waste > worst {
				worst, s1, s2 = waste, i, j
			}
		}
	}
	return s1, s2
}

// linearSeeds picks the pair with the greatest separation, normalized
// by the level width on that axis.
func linearSeeds[P constraints.Float, T any](items []T, mbrOf func(T) Rect[P]) (int, int) {
	dim := mbrOf(items[0]).Dim()
	s1, s2 := 0, 1
	best := P(math.Inf(-1))
	for axis := 0; axis < dim; axis++ {
		highestLow, lowestHigh := 0, 0
		lo, hi := mbrOf(items[0]).Min[axis], mbrOf(items[0]).Max[axis]
		for i, it := range items {
			m := mbrOf(it)
			if m.Min[axis] > mbrOf(items[highestLow]).Min[axis] {
				highestLow = i
			}
			if m.Max[axis] < mbrOf(items[lowestHigh]).Max[axis] {
				lowestHigh = i
			}
			if m.Min[axis] < lo {
				lo = m.Min[axis]
			}
			if m.Max[axis] > hi {
				hi = m.Max[axis]
			}
		}
		if highestLow == lowestHigh {
			continue
		}
		width := hi - lo
		if width <= 0 {
			width = 1
		}
		sep := (mbrOf(items[highestLow]).Min[axis] - mbrOf(items[lowestHigh]).Max[axis]) / width
		if sep > best {
			best, s1, s2 = sep, highestLow, lowestHigh
		}
	}
	return s1, s2
}
