package model

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// Disk is a flat circular cap in world coordinates. Normal is a unit vector.
type Disk struct {
	Center r3.Vector
	Normal r3.Vector
	Radius float64
}

// BoundingBox returns the exact axis-aligned box of the disk.
func (d Disk) BoundingBox() BoundingBox {
	half := r3.Vector{
		X: d.Radius * math.Sqrt(math.Max(0, 1-d.Normal.X*d.Normal.X)),
		Y: d.Radius * math.Sqrt(math.Max(0, 1-d.Normal.Y*d.Normal.Y)),
		Z: d.Radius * math.Sqrt(math.Max(0, 1-d.Normal.Z*d.Normal.Z)),
	}
	return boxAround(d.Center, half)
}

// Support returns the maximum of x·dir over every point x of the disk.
func (d Disk) Support(dir r3.Vector) float64 {
	perp := dir.Sub(d.Normal.Mul(dir.Dot(d.Normal)))
	return d.Center.Dot(dir) + d.Radius*perp.Norm()
}

// Farthest returns the disk point farthest from p.
func (d Disk) Farthest(p r3.Vector) r3.Vector {
	w := d.Center.Sub(p)
	inPlane := w.Sub(d.Normal.Mul(w.Dot(d.Normal)))
	if inPlane.Norm2() == 0 {
		// Every rim point is equally far.
		return d.Center.Add(d.Normal.Ortho().Mul(d.Radius))
	}
	return d.Center.Add(inPlane.Normalize().Mul(d.Radius))
}

// Cone is a right circular cone from an apex to a circular base.
type Cone struct {
	placement
	apex, baseCenter r3.Vector
	baseRadius       float64
}

// NewCone validates and builds a cone. Apex and base centre are local.
func NewCone(frame Frame, apex, baseCenter r3.Vector, baseRadius float64) (Cone, error) {
	if err := validRadius(KindCone, "base radius", baseRadius); err != nil {
		return Cone{}, err
	}
	if apex == baseCenter {
		return Cone{}, errors.Wrap(ErrInvalidShape, "cone apex and base centre coincide")
	}
	return Cone{placement: placement{frame}, apex: apex, baseCenter: baseCenter, baseRadius: baseRadius}, nil
}

func (Cone) Kind() Kind { return KindCone }

// Apex and BaseCenter are in local coordinates.
func (c Cone) Apex() r3.Vector       { return c.apex }
func (c Cone) BaseCenter() r3.Vector { return c.baseCenter }

func (c Cone) WorldApex() r3.Vector       { return c.frame.ToWorld(c.apex) }
func (c Cone) WorldBaseCenter() r3.Vector { return c.frame.ToWorld(c.baseCenter) }
func (c Cone) BaseRadius() float64        { return c.baseRadius }
func (c Cone) Height() float64            { return c.baseCenter.Sub(c.apex).Norm() }

// Axis returns the world unit vector from apex to base centre.
func (c Cone) Axis() r3.Vector {
	return c.frame.Rotate(c.baseCenter.Sub(c.apex)).Normalize()
}

// Angle returns the half-angle at the apex between the axis and the lateral
// surface.
func (c Cone) Angle() s1.Angle {
	return s1.Angle(math.Atan2(c.baseRadius, c.Height()))
}

// Base returns the base cap.
func (c Cone) Base() Disk {
	return Disk{Center: c.WorldBaseCenter(), Normal: c.Axis(), Radius: c.baseRadius}
}

func (c Cone) Volume() float64 {
	return math.Pi * c.baseRadius * c.baseRadius * c.Height() / 3
}

func (c Cone) BoundingBox() BoundingBox {
	return c.Base().BoundingBox().Extend(c.WorldApex())
}

func (c Cone) Center() r3.Vector {
	a := c.WorldApex()
	return a.Add(c.WorldBaseCenter().Sub(a).Mul(0.75))
}

func (c Cone) WithPosition(pos r3.Vector) Shape { c.frame.Position = pos; return c }
func (c Cone) WithVelocity(v r3.Vector) Shape   { c.frame.Velocity = v; return c }
func (c Cone) Translated(d r3.Vector) Shape     { c.frame = c.frame.Translated(d); return c }

// Cylinder is a right circular cylinder between two cap centres. When the
// radii differ it is a truncated cone.
type Cylinder struct {
	placement
	apexCenter, baseCenter r3.Vector
	apexRadius, baseRadius float64
}

// NewCylinder validates and builds a cylinder or frustum.
func NewCylinder(frame Frame, apexCenter, baseCenter r3.Vector, apexRadius, baseRadius float64) (Cylinder, error) {
	if err := validRadius(KindCylinder, "apex radius", apexRadius); err != nil {
		return Cylinder{}, err
	}
	if err := validRadius(KindCylinder, "base radius", baseRadius); err != nil {
		return Cylinder{}, err
	}
	if apexCenter == baseCenter {
		return Cylinder{}, errors.Wrap(ErrInvalidShape, "cylinder cap centres coincide")
	}
	return Cylinder{
		placement:  placement{frame},
		apexCenter: apexCenter,
		baseCenter: baseCenter,
		apexRadius: apexRadius,
		baseRadius: baseRadius,
	}, nil
}

func (Cylinder) Kind() Kind { return KindCylinder }

// ApexCenter and BaseCenter are in local coordinates.
func (c Cylinder) ApexCenter() r3.Vector { return c.apexCenter }
func (c Cylinder) BaseCenter() r3.Vector { return c.baseCenter }

func (c Cylinder) WorldApexCenter() r3.Vector { return c.frame.ToWorld(c.apexCenter) }
func (c Cylinder) WorldBaseCenter() r3.Vector { return c.frame.ToWorld(c.baseCenter) }
func (c Cylinder) ApexRadius() float64        { return c.apexRadius }
func (c Cylinder) BaseRadius() float64        { return c.baseRadius }
func (c Cylinder) Height() float64            { return c.baseCenter.Sub(c.apexCenter).Norm() }

// IsFrustum reports whether the two cap radii differ.
func (c Cylinder) IsFrustum() bool { return c.apexRadius != c.baseRadius }

// Axis returns the world unit vector from the apex cap to the base cap.
func (c Cylinder) Axis() r3.Vector {
	return c.frame.Rotate(c.baseCenter.Sub(c.apexCenter)).Normalize()
}

func (c Cylinder) ApexCap() Disk {
	return Disk{Center: c.WorldApexCenter(), Normal: c.Axis(), Radius: c.apexRadius}
}

func (c Cylinder) BaseCap() Disk {
	return Disk{Center: c.WorldBaseCenter(), Normal: c.Axis(), Radius: c.baseRadius}
}

func (c Cylinder) Volume() float64 {
	r, R := c.apexRadius, c.baseRadius
	return math.Pi * c.Height() * (R*R + R*r + r*r) / 3
}

func (c Cylinder) BoundingBox() BoundingBox {
	return c.ApexCap().BoundingBox().Union(c.BaseCap().BoundingBox())
}

func (c Cylinder) Center() r3.Vector {
	base, apex := c.WorldBaseCenter(), c.WorldApexCenter()
	R, r := c.baseRadius, c.apexRadius
	den := R*R + R*r + r*r
	if den == 0 {
		return base.Add(apex).Mul(0.5)
	}
	frac := (R*R + 2*R*r + 3*r*r) / (4 * den)
	return base.Add(apex.Sub(base).Mul(frac))
}

func (c Cylinder) WithPosition(pos r3.Vector) Shape { c.frame.Position = pos; return c }
func (c Cylinder) WithVelocity(v r3.Vector) Shape   { c.frame.Velocity = v; return c }
func (c Cylinder) Translated(d r3.Vector) Shape     { c.frame = c.frame.Translated(d); return c }
