package rtree

import (
	"errors"

	"golang.org/x/exp/constraints"
)

const (
	// RStar splits by the topological sweep and reinserts on the
	// first leaf overflow of an insertion.
	RStar SplitPolicy = iota

	// Linear seeds groups by normalized separation.
	Linear

	// Quadratic seeds groups by the most wasteful pair.
	Quadratic
)

const (
	// share of an overflowing leaf shed on forced reinsert
	reinsertFraction = 0.30

	// candidates examined when choosing a subtree among leaves
	chooseSubtreeCap = 32
)

const (
	insertOK insertKind = iota
	insertSplit
	insertReinsert
)

var (
	ErrNoMoreEntries = errors.New("There are no more entries in the tree")
	ErrInvalidConfig = errors.New("Min children must be at least 2 and at most half of max children")
	ErrUnknownPolicy = errors.New("Unknown split policy")
	ErrBadCorners    = errors.New("Corners must share one nonzero dimension")
)

type (
	// SplitPolicy selects how an overflowing node is divided.
	SplitPolicy int

	insertKind int

	tree[P constraints.Float, V any] struct {
		root   *node[P, V]
		index  insertIndex[P, V]
		size   int
		min    int
		max    int
		locked bool
	}

	// Entry pairs a shape with its value. The shape and its cached
	// bounding rect never change after insertion, the value may.
	Entry[P constraints.Float, V any] struct {
		shape Shape[P]
		mbr   Rect[P]
		value V
	}

	// node is a leaf holding entries or an inner level holding child
	// nodes, mbr stays tight around the content either way.
	node[P constraints.Float, V any] struct {
		mbr      Rect[P]
		children []*node[P, V]
		entries  []*Entry[P, V]
		leaf     bool
	}

	// insertResult carries a split sibling or shed entries up the
	// recursion until somebody can deal with them.
	insertResult[P constraints.Float, V any] struct {
		kind     insertKind
		split    *node[P, V]
		reinsert []*Entry[P, V]
	}

	iterLevel[P constraints.Float, V any] struct {
		node *node[P, V]
		idx  int
	}
)

func (e *Entry[P, V]) Shape() Shape[P] {
	return e.shape
}

func (e *Entry[P, V]) Value() V {
	return e.value
}

// SetValue swaps the stored value without touching the shape.
func (e *Entry[P, V]) SetValue(v V) {
	e.value = v
}
