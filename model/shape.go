// Package model defines the closed family of shapes the query engine reasons
// about. Shapes are immutable values: moving one produces a new value, so a
// shape can be shared across goroutines without locking.
package model

import (
	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
)

// ErrInvalidShape is returned by constructors given impossible geometry
// (negative radii, coincident anchors, non-planar faces).
var ErrInvalidShape = errors.New("invalid shape")

// Kind tags a shape variant.
type Kind int

const (
	KindPoint Kind = iota
	KindSegment
	KindCone
	KindCylinder
	KindPolyhedron
	KindSphere
	KindSpheroid
	KindEllipsoid

	// KindCount is the number of variants; valid kinds are [0, KindCount).
	KindCount
)

var kindNames = [...]string{
	KindPoint:      "point",
	KindSegment:    "segment",
	KindCone:       "cone",
	KindCylinder:   "cylinder",
	KindPolyhedron: "polyhedron",
	KindSphere:     "sphere",
	KindSpheroid:   "spheroid",
	KindEllipsoid:  "ellipsoid",
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Kinds lists every variant in tag order.
func Kinds() []Kind {
	out := make([]Kind, 0, KindCount)
	for k := Kind(0); k < KindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Shape is implemented by every variant in this package and by nothing else.
type Shape interface {
	Kind() Kind
	Frame() Frame
	Position() r3.Vector
	Velocity() r3.Vector

	// ToWorld maps a vector in the shape's local frame to world coordinates.
	ToWorld(local r3.Vector) r3.Vector
	// ToLocal is the inverse of ToWorld.
	ToLocal(world r3.Vector) r3.Vector

	// BoundingBox is recomputed from the current frame on every call.
	BoundingBox() BoundingBox
	// Center is the world-space centroid used by center-based metrics.
	Center() r3.Vector

	WithPosition(position r3.Vector) Shape
	WithVelocity(velocity r3.Vector) Shape
	// Translated returns a copy moved by delta; the receiver is unchanged.
	Translated(delta r3.Vector) Shape

	isShape()
}

// Solid is a shape with a defined volume.
type Solid interface {
	Shape
	Volume() float64
}

// Quadric is implemented by the sphere family. Principal returns the world
// semi-axis directions (orthonormal) and their radii.
type Quadric interface {
	Solid
	Principal() (axes [3]r3.Vector, radii [3]float64)
}

// IsMoving reports whether the shape carries a non-zero velocity.
func IsMoving(s Shape) bool {
	return s.Velocity() != (r3.Vector{})
}

// placement carries the frame shared by every variant.
type placement struct {
	frame Frame
}

func (p placement) Frame() Frame                      { return p.frame }
func (p placement) Position() r3.Vector               { return p.frame.Position }
func (p placement) Velocity() r3.Vector               { return p.frame.Velocity }
func (p placement) ToWorld(local r3.Vector) r3.Vector { return p.frame.ToWorld(local) }
func (p placement) ToLocal(world r3.Vector) r3.Vector { return p.frame.ToLocal(world) }
func (placement) isShape()                            {}
