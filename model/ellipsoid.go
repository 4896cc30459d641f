package model

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
)

var unitAxes = [3]r3.Vector{{X: 1}, {Y: 1}, {Z: 1}}

// Sphere is a ball of the given radius centred on its frame position.
type Sphere struct {
	placement
	radius float64
}

// NewSphere validates and builds a sphere.
func NewSphere(frame Frame, radius float64) (Sphere, error) {
	if err := validRadius(KindSphere, "radius", radius); err != nil {
		return Sphere{}, err
	}
	return Sphere{placement: placement{frame}, radius: radius}, nil
}

func (Sphere) Kind() Kind { return KindSphere }

// Radius returns the sphere radius (its major radius).
func (s Sphere) Radius() float64 { return s.radius }

func (s Sphere) Principal() ([3]r3.Vector, [3]float64) {
	return unitAxes, [3]float64{s.radius, s.radius, s.radius}
}

func (s Sphere) Volume() float64 { return 4 * math.Pi * s.radius * s.radius * s.radius / 3 }

func (s Sphere) BoundingBox() BoundingBox {
	return boxAround(s.frame.Position, r3.Vector{X: s.radius, Y: s.radius, Z: s.radius})
}

func (s Sphere) Center() r3.Vector { return s.frame.Position }

func (s Sphere) WithPosition(pos r3.Vector) Shape { s.frame.Position = pos; return s }
func (s Sphere) WithVelocity(v r3.Vector) Shape   { s.frame.Velocity = v; return s }
func (s Sphere) Translated(d r3.Vector) Shape     { s.frame = s.frame.Translated(d); return s }

// Spheroid is an ellipsoid of revolution. The local Axis carries MinorRadius;
// both remaining semi-axes equal MajorRadius. A MinorRadius larger than
// MajorRadius describes a prolate spheroid.
type Spheroid struct {
	placement
	majorRadius, minorRadius float64
	axis                     r3.Vector
}

// NewSpheroid validates and builds a spheroid.
func NewSpheroid(frame Frame, majorRadius, minorRadius float64, axis r3.Vector) (Spheroid, error) {
	if err := validRadius(KindSpheroid, "major radius", majorRadius); err != nil {
		return Spheroid{}, err
	}
	if err := validRadius(KindSpheroid, "minor radius", minorRadius); err != nil {
		return Spheroid{}, err
	}
	if axis.Norm2() == 0 {
		return Spheroid{}, errors.Wrap(ErrInvalidShape, "spheroid axis is zero")
	}
	return Spheroid{
		placement:   placement{frame},
		majorRadius: majorRadius,
		minorRadius: minorRadius,
		axis:        axis.Normalize(),
	}, nil
}

func (Spheroid) Kind() Kind { return KindSpheroid }

func (s Spheroid) MajorRadius() float64 { return s.majorRadius }
func (s Spheroid) MinorRadius() float64 { return s.minorRadius }

// IntermediateRadius equals MajorRadius for a spheroid.
func (s Spheroid) IntermediateRadius() float64 { return s.majorRadius }

// Axis returns the world symmetry axis.
func (s Spheroid) Axis() r3.Vector { return s.frame.Rotate(s.axis) }

func (s Spheroid) Principal() ([3]r3.Vector, [3]float64) {
	u := s.Axis()
	o := u.Ortho()
	return [3]r3.Vector{o, u.Cross(o), u}, [3]float64{s.majorRadius, s.majorRadius, s.minorRadius}
}

func (s Spheroid) Volume() float64 {
	return 4 * math.Pi * s.majorRadius * s.majorRadius * s.minorRadius / 3
}

func (s Spheroid) BoundingBox() BoundingBox { return quadricBox(s) }
func (s Spheroid) Center() r3.Vector        { return s.frame.Position }

func (s Spheroid) WithPosition(pos r3.Vector) Shape { s.frame.Position = pos; return s }
func (s Spheroid) WithVelocity(v r3.Vector) Shape   { s.frame.Velocity = v; return s }
func (s Spheroid) Translated(d r3.Vector) Shape     { s.frame = s.frame.Translated(d); return s }

// Ellipsoid is a triaxial ellipsoid with orthonormal local principal axes.
// By convention radii are ordered major, intermediate, minor.
type Ellipsoid struct {
	placement
	radii [3]float64
	axes  [3]r3.Vector
}

// NewEllipsoid validates and builds an ellipsoid. Axes are normalised and
// must be mutually orthogonal.
func NewEllipsoid(frame Frame, radii [3]float64, axes [3]r3.Vector) (Ellipsoid, error) {
	names := [3]string{"major radius", "intermediate radius", "minor radius"}
	for i, r := range radii {
		if err := validRadius(KindEllipsoid, names[i], r); err != nil {
			return Ellipsoid{}, err
		}
		if axes[i].Norm2() == 0 {
			return Ellipsoid{}, errors.Wrapf(ErrInvalidShape, "ellipsoid axis %d is zero", i)
		}
		axes[i] = axes[i].Normalize()
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if math.Abs(axes[i].Dot(axes[j])) > 1e-9 {
				return Ellipsoid{}, errors.Wrapf(ErrInvalidShape, "ellipsoid axes %d and %d are not orthogonal", i, j)
			}
		}
	}
	return Ellipsoid{placement: placement{frame}, radii: radii, axes: axes}, nil
}

// NewAlignedEllipsoid builds an ellipsoid whose axes follow local X, Y, Z.
func NewAlignedEllipsoid(frame Frame, major, intermediate, minor float64) (Ellipsoid, error) {
	return NewEllipsoid(frame, [3]float64{major, intermediate, minor}, unitAxes)
}

func (Ellipsoid) Kind() Kind { return KindEllipsoid }

func (e Ellipsoid) MajorRadius() float64        { return e.radii[0] }
func (e Ellipsoid) IntermediateRadius() float64 { return e.radii[1] }
func (e Ellipsoid) MinorRadius() float64        { return e.radii[2] }

func (e Ellipsoid) Principal() ([3]r3.Vector, [3]float64) {
	var axes [3]r3.Vector
	for i, a := range e.axes {
		axes[i] = e.frame.Rotate(a)
	}
	return axes, e.radii
}

func (e Ellipsoid) Volume() float64 {
	return 4 * math.Pi * e.radii[0] * e.radii[1] * e.radii[2] / 3
}

func (e Ellipsoid) BoundingBox() BoundingBox { return quadricBox(e) }
func (e Ellipsoid) Center() r3.Vector        { return e.frame.Position }

func (e Ellipsoid) WithPosition(pos r3.Vector) Shape { e.frame.Position = pos; return e }
func (e Ellipsoid) WithVelocity(v r3.Vector) Shape   { e.frame.Velocity = v; return e }
func (e Ellipsoid) Translated(d r3.Vector) Shape     { e.frame = e.frame.Translated(d); return e }

// quadricBox returns the exact box of an ellipsoid: along each world axis the
// half extent is the norm of the scaled principal components.
func quadricBox(q Quadric) BoundingBox {
	axes, radii := q.Principal()
	var half r3.Vector
	for i := range axes {
		a := axes[i].Mul(radii[i])
		half.X += a.X * a.X
		half.Y += a.Y * a.Y
		half.Z += a.Z * a.Z
	}
	half = r3.Vector{X: math.Sqrt(half.X), Y: math.Sqrt(half.Y), Z: math.Sqrt(half.Z)}
	return boxAround(q.Center(), half)
}
