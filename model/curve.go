package model

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
)

// Point is a zero-extent shape located at its frame position.
type Point struct {
	placement
}

// NewPoint returns a point at the frame's position.
func NewPoint(frame Frame) Point {
	return Point{placement{frame}}
}

func (Point) Kind() Kind { return KindPoint }

func (p Point) BoundingBox() BoundingBox { return NewBoundingBox(p.frame.Position) }
func (p Point) Center() r3.Vector        { return p.frame.Position }

func (p Point) WithPosition(pos r3.Vector) Shape { p.frame.Position = pos; return p }
func (p Point) WithVelocity(v r3.Vector) Shape   { p.frame.Velocity = v; return p }
func (p Point) Translated(d r3.Vector) Shape     { p.frame = p.frame.Translated(d); return p }

// Segment is a straight line segment between two local endpoints.
type Segment struct {
	placement
	start, end r3.Vector
}

// NewSegment builds a segment. Coincident endpoints are allowed and describe
// a degenerate segment that behaves as a point.
func NewSegment(frame Frame, start, end r3.Vector) Segment {
	return Segment{placement: placement{frame}, start: start, end: end}
}

// NewWorldSegment builds a stationary segment directly from world endpoints.
func NewWorldSegment(start, end r3.Vector) Segment {
	return NewSegment(At(r3.Vector{}), start, end)
}

func (Segment) Kind() Kind { return KindSegment }

// Start returns the local start point.
func (s Segment) Start() r3.Vector { return s.start }

// End returns the local end point.
func (s Segment) End() r3.Vector { return s.end }

// WorldStart returns the start point in world coordinates.
func (s Segment) WorldStart() r3.Vector { return s.frame.ToWorld(s.start) }

// WorldEnd returns the end point in world coordinates.
func (s Segment) WorldEnd() r3.Vector { return s.frame.ToWorld(s.end) }

// Length returns the segment length.
func (s Segment) Length() float64 { return s.end.Sub(s.start).Norm() }

func (s Segment) BoundingBox() BoundingBox {
	return NewBoundingBox(s.WorldStart(), s.WorldEnd())
}

func (s Segment) Center() r3.Vector {
	return s.WorldStart().Add(s.WorldEnd()).Mul(0.5)
}

func (s Segment) WithPosition(pos r3.Vector) Shape { s.frame.Position = pos; return s }
func (s Segment) WithVelocity(v r3.Vector) Shape   { s.frame.Velocity = v; return s }
func (s Segment) Translated(d r3.Vector) Shape     { s.frame = s.frame.Translated(d); return s }

func validRadius(kind Kind, name string, r float64) error {
	if r < 0 || r != r {
		return errors.Wrapf(ErrInvalidShape, "%s %s must be >= 0, got %v", kind, name, r)
	}
	return nil
}
