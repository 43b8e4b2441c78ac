package rtree

import (
	"golang.org/x/exp/constraints"
)

// A Point is a single coordinate in any number of dimensions.
type Point[P constraints.Float] []P

func (p Point[P]) MBR() Rect[P] {
	return Rect[P]{Min: p, Max: p}
}

func (p Point[P]) Contains(q Point[P]) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func (p Point[P]) ContainsRect(r Rect[P]) bool {
	// a point only holds a rect collapsed onto it
	return p.Contains(r.Min) && p.Contains(r.Max)
}

func (p Point[P]) ContainedBy(r Rect[P]) bool {
	return r.Contains(p)
}

func (p Point[P]) Overlaps(r Rect[P]) bool {
	return r.Contains(p)
}

// A Rect is an axis aligned box with Min[i] <= Max[i] on every axis.
// The zero Rect is empty and acts as the identity for Expand.
type Rect[P constraints.Float] struct {
	Min, Max Point[P]
}

// NewRect builds the box spanning two opposite corners, in any order.
func NewRect[P constraints.Float](a, b Point[P]) (Rect[P], error) {
	if len(a) == 0 || len(a) != len(b) {
		return Rect[P]{}, ErrBadCorners
	}
	lo := make(Point[P], len(a))
	hi := make(Point[P], len(a))
	for i := range a {
		lo[i], hi[i] = a[i], b[i]
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
	}
	return Rect[P]{Min: lo, Max: hi}, nil
}

func (r Rect[P]) Dim() int {
	return len(r.Min)
}

func (r Rect[P]) MBR() Rect[P] {
	return r
}

func (r Rect[P]) Area() P {
	if len(r.Min) == 0 {
		return 0
	}
	area := P(1)
	for i := range r.Min {
		area *= r.Max[i] - r.Min[i]
	}
	return area
}

// Margin is the sum of edge lengths over all axes.
func (r Rect[P]) Margin() P {
	var m P
	for i := range r.Min {
		m += r.Max[i] - r.Min[i]
	}
	return m
}

func (r Rect[P]) Contains(p Point[P]) bool {
	if len(r.Min) != len(p) {
		return false
	}
	for i := range p {
		if p[i] < r.Min[i] || p[i] > r.Max[i] {
			return false
		}
	}
	return true
}

func (r Rect[P]) ContainsRect(o Rect[P]) bool {
	if len(o.Min) == 0 || len(r.Min) != len(o.Min) {
		return false
	}
	for i := range r.Min {
		if o.Min[i] < r.Min[i] || o.Max[i] > r.Max[i] {
			return false
		}
	}
	return true
}

func (r Rect[P]) ContainedBy(o Rect[P]) bool {
	return o.ContainsRect(r)
}

// Overlaps reports whether r and o share interior on every axis.
// Touching edges do not count.
func (r Rect[P]) Overlaps(o Rect[P]) bool {
	if len(r.Min) == 0 || len(r.Min) != len(o.Min) {
		return false
	}
	for i := range r.Min {
		if r.Min[i] >= o.Max[i] || o.Min[i] >= r.Max[i] {
			return false
		}
	}
	return true
}

// intersects is the edge inclusive variant used when descending the
// tree, so entries sitting on a branch boundary are never skipped.
func (r Rect[P]) intersects(o Rect[P]) bool {
	if len(r.Min) != len(o.Min) {
		return false
	}
	for i := range r.Min {
		if r.Min[i] > o.Max[i] || o.Min[i] > r.Max[i] {
			return false
		}
	}
	return true
}

// OverlapArea is the area shared by r and o, 0 if they do not overlap.
func (r Rect[P]) OverlapArea(o Rect[P]) P {
	if len(r.Min) == 0 || len(r.Min) != len(o.Min) {
		return 0
	}
	area := P(1)
	for i := range r.Min {
		hi := r.Max[i]
		if o.Max[i] < hi {
			hi = o.Max[i]
		}
		lo := r.Min[i]
		if o.Min[i] > lo {
			lo = o.Min[i]
		}
		if hi <= lo {
			return 0
		}
		area *= hi - lo
	}
	return area
}

// Enlargement is the extra area needed for r to also cover o.
func (r Rect[P]) Enlargement(o Rect[P]) P {
	u := r.Clone()
	u.Expand(o)
	return u.Area() - r.Area()
}

// Expand grows r in place until it covers o. Expanding the zero Rect
// copies o into it.
func (r *Rect[P]) Expand(o Rect[P]) {
	if len(o.Min) == 0 {
		return
	}
	if len(r.Min) == 0 {
		r.Min = append(Point[P](nil), o.Min...)
		r.Max = append(Point[P](nil), o.Max...)
		return
	}
	for i := range r.Min {
		if o.Min[i] < r.Min[i] {
			r.Min[i] = o.Min[i]
		}
		if o.Max[i] > r.Max[i] {
			r.Max[i] = o.Max[i]
		}
	}
}

func (r Rect[P]) Clone() Rect[P] {
	if len(r.Min) == 0 {
		return Rect[P]{}
	}
	return Rect[P]{
		Min: append(Point[P](nil), r.Min...),
		Max: append(Point[P](nil), r.Max...),
	}
}

// squared distance between rect centers, callers only compare it
func centerDistance2[P constraints.Float](a, b Rect[P]) P {
	var d P
	for i := range a.Min {
		c := (a.Min[i]+a.Max[i])/2 - (b.Min[i]+b.Max[i])/2
		d += c * c
	}
	return d
}

// A LineSegment spans two endpoints of the same dimension.
type LineSegment[P constraints.Float] struct {
	A, B Point[P]
}

func NewLineSegment[P constraints.Float](a, b Point[P]) (LineSegment[P], error) {
	if len(a) == 0 || len(a) != len(b) {
		return LineSegment[P]{}, ErrBadCorners
	}
	return LineSegment[P]{A: a, B: b}, nil
}

func (l LineSegment[P]) MBR() Rect[P] {
	lo := make(Point[P], len(l.A))
	hi := make(Point[P], len(l.A))
	for i := range l.A {
		lo[i], hi[i] = l.A[i], l.B[i]
		if lo[i] > hi[i] {
			lo[i], hi[i] = hi[i], lo[i]
		}
	}
	return Rect[P]{Min: lo, Max: hi}
}

// Contains solves p = A + t*(B-A) and accepts a single t in [0, 1]
// shared by every axis.
func (l LineSegment[P]) Contains(p Point[P]) bool {
	if len(p) != len(l.A) {
		return false
	}
	t := P(-1)
	for i := range p {
		d := l.B[i] - l.A[i]
		if d == 0 {
			if p[i] != l.A[i] {
				return false
			}
			continue
		}
		ti := (p[i] - l.A[i]) / d
		if ti < 0 || ti > 1 {
			return false
		}
		if t >= 0 && ti != t {
			return false
		}
		t = ti
	}
	return true
}

func (l LineSegment[P]) ContainsRect(r Rect[P]) bool {
	// only a degenerate box can lie on a segment
	extended := 0
	for i := range r.Min {
		if r.Max[i] > r.Min[i] {
			extended++
		}
	}
	if extended > 1 {
		return false
	}
	return l.Contains(r.Min) && l.Contains(r.Max)
}

func (l LineSegment[P]) ContainedBy(r Rect[P]) bool {
	return r.Contains(l.A) && r.Contains(l.B)
}

// Overlaps clips the segment against the slab of r on each axis and
// keeps the surviving parameter window. Boundary contact counts.
func (l LineSegment[P]) Overlaps(r Rect[P]) bool {
	if len(r.Min) != len(l.A) {
		return false
	}
	tmin, tmax := P(0), P(1)
	for i := range l.A {
		d := l.B[i] - l.A[i]
		if d == 0 {
			if l.A[i] < r.Min[i] || l.A[i] > r.Max[i] {
				return false
			}
			continue
		}
		t1 := (r.Min[i] - l.A[i]) / d
		t2 := (r.Max[i] - l.A[i]) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return false
		}
	}
	return true
}
