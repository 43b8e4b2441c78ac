package rtree

import "golang.org/x/exp/constraints"

type (
	intersectsQuery[P constraints.Float] struct {
		rect Rect[P]
	}

	containsQuery[P constraints.Float] struct {
		rect Rect[P]
	}

	containedByQuery[P constraints.Float] struct {
		rect Rect[P]
	}

	containsPointQuery[P constraints.Float] struct {
		point Point[P]
	}

	allQuery[P constraints.Float] struct{}
)

// Intersects matches entries whose shape overlaps the rect.
func Intersects[P constraints.Float](r Rect[P]) Query[P] {
	return intersectsQuery[P]{rect: r}
}

// Contains matches entries whose shape fully covers the rect.
func Contains[P constraints.Float](r Rect[P]) Query[P] {
	return containsQuery[P]{rect: r}
}

// ContainedBy matches entries whose shape lies fully inside the rect.
func ContainedBy[P constraints.Float](r Rect[P]) Query[P] {
	return containedByQuery[P]{rect: r}
}

// ContainsPoint matches entries whose shape covers the point,
// boundaries included.
func ContainsPoint[P constraints.Float](p Point[P]) Query[P] {
	return containsPointQuery[P]{point: p}
}

// All matches every entry.
func All[P constraints.Float]() Query[P] {
	return allQuery[P]{}
}

func (q intersectsQuery[P]) AcceptMBR(mbr Rect[P]) bool {
	return mbr.intersects(q.rect)
}

func (q intersectsQuery[P]) AcceptShape(s Shape[P]) bool {
	return s.Overlaps(q.rect)
}

func (q containsQuery[P]) AcceptMBR(mbr Rect[P]) bool {
	// a shape covering the rect forces its branch mbr to cover it too
	return mbr.ContainsRect(q.rect)
}

func (q containsQuery[P]) AcceptShape(s Shape[P]) bool {
	return s.ContainsRect(q.rect)
}

func (q containedByQuery[P]) AcceptMBR(mbr Rect[P]) bool {
	return mbr.intersects(q.rect)
}

func (q containedByQuery[P]) AcceptShape(s Shape[P]) bool {
	return s.ContainedBy(q.rect)
}

func (q containsPointQuery[P]) AcceptMBR(mbr Rect[P]) bool {
	return mbr.Contains(q.point)
}

func (q containsPointQuery[P]) AcceptShape(s Shape[P]) bool {
	return s.Contains(q.point)
}

func (q allQuery[P]) AcceptMBR(Rect[P]) bool {
	return true
}

func (q allQuery[P]) AcceptShape(Shape[P]) bool {
	return true
}
