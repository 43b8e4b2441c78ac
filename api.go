package rtree

import "golang.org/x/exp/constraints"

type Tree[P constraints.Float, V any] interface {
	Insert(s Shape[P], v V)
	Remove(q Query[P]) int
	RemoveFunc(q Query[P], f func(V) bool) int
	Retain(q Query[P]) int
	Query(q Query[P]) Iterator[P, V]
	QueryMut(q Query[P]) MutIterator[P, V]
	Iterator() Iterator[P, V]
	Len() int
	IsEmpty() bool
	Clear()
}

type Iterator[P constraints.Float, V any] interface {
	HasNext() bool
	Next() (Shape[P], V, error)
}

// MutIterator walks matching entries and lets the caller edit values
// or mark entries for removal. It holds the tree locked until Close
// or an exhausting Next, whichever comes first.
type MutIterator[P constraints.Float, V any] interface {
	HasNext() bool
	Next() (*Entry[P, V], error)
	Remove()
	Close()
}

// Shape is anything the tree can index. The MBR must never change
// while the shape is stored.
type Shape[P constraints.Float] interface {
	MBR() Rect[P]
	Contains(p Point[P]) bool
	ContainsRect(r Rect[P]) bool
	ContainedBy(r Rect[P]) bool
	Overlaps(r Rect[P]) bool
}

// Query filters entries in two stages, a cheap bounding rect check
// while descending and an exact shape check at the leaves. AcceptMBR
// must accept every rect whose content could satisfy AcceptShape.
type Query[P constraints.Float] interface {
	AcceptMBR(mbr Rect[P]) bool
	AcceptShape(s Shape[P]) bool
}

// New returns an empty tree. Nodes hold between minChildren and
// maxChildren items, minChildren of at least 2 and at most half of
// maxChildren.
func New[P constraints.Float, V any](minChildren, maxChildren int, policy SplitPolicy) (Tree[P, V], error) {
	if minChildren < 2 || 2*minChildren > maxChildren {
		return nil, ErrInvalidConfig
	}
	t := &tree[P, V]{root: newLeaf[P, V](), min: minChildren, max: maxChildren}
	switch policy {
	case RStar:
		t.index = newRStarIndex[P, V](minChildren, maxChildren)
	case Linear, Quadratic:
		t.index = newGuttmanIndex[P, V](minChildren, maxChildren, policy == Quadratic)
	default:
		return nil, ErrUnknownPolicy
	}
	return t, nil
}
