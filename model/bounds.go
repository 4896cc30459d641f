package model

import (
	"math"

	"github.com/golang/geo/r3"
)

// BoundingBox is an axis-aligned box in world coordinates. A is the
// component-wise minimum corner and B the maximum.
type BoundingBox struct {
	A, B r3.Vector
}

// NewBoundingBox returns the smallest box enclosing points. With no points it
// returns the zero box at the origin.
func NewBoundingBox(points ...r3.Vector) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{A: points[0], B: points[0]}
	for _, p := range points[1:] {
		box = box.Extend(p)
	}
	return box
}

// boxAround returns the box centred at c with the given half extents.
func boxAround(c, half r3.Vector) BoundingBox {
	half = half.Abs()
	return BoundingBox{A: c.Sub(half), B: c.Add(half)}
}

// Extend grows the box to include p.
func (b BoundingBox) Extend(p r3.Vector) BoundingBox {
	return BoundingBox{
		A: r3.Vector{X: math.Min(b.A.X, p.X), Y: math.Min(b.A.Y, p.Y), Z: math.Min(b.A.Z, p.Z)},
		B: r3.Vector{X: math.Max(b.B.X, p.X), Y: math.Max(b.B.Y, p.Y), Z: math.Max(b.B.Z, p.Z)},
	}
}

// Union returns the smallest box enclosing both boxes.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return b.Extend(o.A).Extend(o.B)
}

// ContainsPoint reports whether p lies in the closed box.
func (b BoundingBox) ContainsPoint(p r3.Vector) bool {
	return p.X >= b.A.X && p.X <= b.B.X &&
		p.Y >= b.A.Y && p.Y <= b.B.Y &&
		p.Z >= b.A.Z && p.Z <= b.B.Z
}

// Contains reports whether o lies entirely within b (shared faces allowed).
func (b BoundingBox) Contains(o BoundingBox) bool {
	return b.ContainsPoint(o.A) && b.ContainsPoint(o.B)
}

// Intersects reports whether the closed boxes overlap; touching faces count.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.A.X <= o.B.X && o.A.X <= b.B.X &&
		b.A.Y <= o.B.Y && o.A.Y <= b.B.Y &&
		b.A.Z <= o.B.Z && o.A.Z <= b.B.Z
}

// Intersection returns the overlap of two boxes and whether it is non-empty.
func (b BoundingBox) Intersection(o BoundingBox) (BoundingBox, bool) {
	if !b.Intersects(o) {
		return BoundingBox{}, false
	}
	return BoundingBox{
		A: r3.Vector{X: math.Max(b.A.X, o.A.X), Y: math.Max(b.A.Y, o.A.Y), Z: math.Max(b.A.Z, o.A.Z)},
		B: r3.Vector{X: math.Min(b.B.X, o.B.X), Y: math.Min(b.B.Y, o.B.Y), Z: math.Min(b.B.Z, o.B.Z)},
	}, true
}

// Translate shifts the box by delta.
func (b BoundingBox) Translate(delta r3.Vector) BoundingBox {
	return BoundingBox{A: b.A.Add(delta), B: b.B.Add(delta)}
}

// Grow pads every side of the box by margin.
func (b BoundingBox) Grow(margin float64) BoundingBox {
	m := r3.Vector{X: margin, Y: margin, Z: margin}
	return BoundingBox{A: b.A.Sub(m), B: b.B.Add(m)}
}

// Size returns the edge lengths along each axis.
func (b BoundingBox) Size() r3.Vector {
	return b.B.Sub(b.A)
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() r3.Vector {
	return b.A.Add(b.B).Mul(0.5)
}

// Volume returns the box volume; flat boxes have volume zero.
func (b BoundingBox) Volume() float64 {
	s := b.Size()
	return s.X * s.Y * s.Z
}

// ApproxEqual compares corners within eps per component.
func (b BoundingBox) ApproxEqual(o BoundingBox, eps float64) bool {
	return within(b.A, o.A, eps) && within(b.B, o.B, eps)
}

func within(a, b r3.Vector, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}
