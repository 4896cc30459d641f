package core

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

func pointOnPoint(e *Engine, s model.Shape, p r3.Vector) bool {
	return s.Position().Sub(p).Norm() <= e.cfg.Epsilon
}

func pointOnSegment(e *Engine, s model.Shape, p r3.Vector) bool {
	seg := s.(model.Segment)
	return onSegment(seg.WorldStart(), seg.WorldEnd(), p, e.cfg.Epsilon)
}

// pointInCone compares the angle between the axis and the apex-to-point
// vector against the half-angle, after truncation, and bounds the point
// between the apex and the base plane. The test runs in the cone's local
// frame so the operands stay near the origin.
func pointInCone(e *Engine, s model.Shape, p r3.Vector) bool {
	c := s.(model.Cone)
	apex := c.Apex()
	axis := c.BaseCenter().Sub(apex).Normalize()
	d := c.ToLocal(p).Sub(apex)
	if d.Norm() <= e.cfg.Epsilon {
		return true
	}
	t := d.Dot(axis)
	if t < -e.cfg.Epsilon || t > c.Height()+e.cfg.Epsilon {
		return false
	}
	return e.cfg.truncatedLE(d.Angle(axis).Radians(), c.Angle().Radians())
}

// pointInCylinder bounds the point between the cap planes, then compares its
// radial distance with the radius (straight cylinder) or its angle from the
// virtual apex with the flank angle (frustum). Like pointInCone it works in
// local coordinates.
func pointInCylinder(e *Engine, s model.Shape, p r3.Vector) bool {
	c := s.(model.Cylinder)
	apexCenter, h := c.ApexCenter(), c.Height()
	axis := c.BaseCenter().Sub(apexCenter).Normalize()
	local := c.ToLocal(p)
	d := local.Sub(apexCenter)
	t := d.Dot(axis)
	if t < -e.cfg.Epsilon || t > h+e.cfg.Epsilon {
		return false
	}
	if !c.IsFrustum() {
		radial := d.Sub(axis.Mul(t)).Norm()
		return e.cfg.truncatedLE(radial, c.ApexRadius())
	}

	rA, rB := c.ApexRadius(), c.BaseRadius()
	t0 := -rA * h / (rB - rA)
	vertex := apexCenter.Add(axis.Mul(t0))
	opening := axis
	if rB < rA {
		opening = axis.Mul(-1)
	}
	v := local.Sub(vertex)
	if v.Norm() <= e.cfg.Epsilon {
		return true
	}
	flank := math.Atan2(math.Abs(rB-rA), h)
	return e.cfg.truncatedLE(v.Angle(opening).Radians(), flank)
}

func pointInPolyhedron(e *Engine, s model.Shape, p r3.Vector) bool {
	return insideFaces(s.(model.Polyhedron).Faces(), p, e.cfg.Epsilon)
}

func pointInSphere(e *Engine, s model.Shape, p r3.Vector) bool {
	sp := s.(model.Sphere)
	return p.Sub(sp.Center()).Norm() <= sp.Radius()+e.cfg.Epsilon
}

func pointInQuadric(e *Engine, s model.Shape, p r3.Vector) bool {
	return quadricValue(s.(model.Quadric), p, e.cfg.Epsilon) <= 1+e.cfg.Epsilon
}

func (e *Engine) pointIn(s model.Shape, p r3.Vector) bool {
	return e.table.points[s.Kind()](e, s, p)
}

func (e *Engine) allPointsIn(s model.Shape, ps []r3.Vector) bool {
	for _, p := range ps {
		if !e.pointIn(s, p) {
			return false
		}
	}
	return true
}

// containsAllKeyPoints is exact whenever the child is the convex hull of its
// key points: points, segments and polyhedra inside a convex parent.
func containsAllKeyPoints(e *Engine, parent, child model.Shape) Result {
	return exact(e.allPointsIn(parent, keyPoints(child)))
}

func containsNothing(*Engine, model.Shape, model.Shape) Result {
	return exact(false)
}

// polyhedronContainsSolid checks the child's support value against every
// face plane.
func polyhedronContainsSolid(e *Engine, parent, child model.Shape) Result {
	for _, f := range parent.(model.Polyhedron).Faces() {
		n := f.Normal()
		if support(child, n)-f.Vertices()[0].Dot(n) > e.cfg.Epsilon {
			return exact(false)
		}
	}
	return exact(true)
}

func sphereContainsSolid(e *Engine, parent, child model.Shape) Result {
	sp := parent.(model.Sphere)
	far, _ := farthestFrom(child, sp.Center())
	return exact(far <= sp.Radius()+e.cfg.Epsilon)
}

// containsByBoundingBox settles negatives exactly: a key point outside the
// parent, or a child box escaping the parent box, rules containment out.
// Anything else is an approximate yes.
func containsByBoundingBox(e *Engine, parent, child model.Shape) Result {
	if !e.allPointsIn(parent, keyPoints(child)) {
		return exact(false)
	}
	if !parent.BoundingBox().Grow(e.cfg.Epsilon).Contains(child.BoundingBox()) {
		return exact(false)
	}
	return approximate(true)
}
