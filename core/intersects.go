package core

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

// pointMeets treats a point as intersecting whatever contains it.
func pointMeets(e *Engine, a, b model.Shape) Result {
	return exact(e.pointIn(b, a.Position()))
}

func segmentMeetsSegment(e *Engine, a, b model.Shape) Result {
	sa, sb := a.(model.Segment), b.(model.Segment)
	_, ok := segmentsMeet(sa.WorldStart(), sa.WorldEnd(), sb.WorldStart(), sb.WorldEnd(), e.cfg.Epsilon)
	return exact(ok)
}

func segmentMeetsPolyhedron(e *Engine, a, b model.Shape) Result {
	seg, poly := a.(model.Segment), b.(model.Polyhedron)
	start, end := seg.WorldStart(), seg.WorldEnd()
	faces := poly.Faces()
	if insideFaces(faces, start, e.cfg.Epsilon) || insideFaces(faces, end, e.cfg.Epsilon) {
		return exact(true)
	}
	for _, f := range faces {
		if segmentCrossesFace(start, end, f, e.cfg.Epsilon) {
			return exact(true)
		}
	}
	return exact(false)
}

// segmentMeetsQuadric maps the quadric onto the unit sphere, where the test
// reduces to the segment's closest approach to the origin.
func segmentMeetsQuadric(e *Engine, a, b model.Shape) Result {
	seg := a.(model.Segment)
	start, end := seg.WorldStart(), seg.WorldEnd()
	if sp, ok := b.(model.Sphere); ok {
		return exact(segmentReachesBall(start, end, sp.Center(), sp.Radius(), e.cfg.Epsilon))
	}
	q := b.(model.Quadric)
	toUnit, ok := toUnitSphere(q)
	if !ok {
		return overlapByBoundingBox(e, a, b)
	}
	return exact(segmentReachesBall(toUnit(start), toUnit(end), r3.Vector{}, 1, e.cfg.Epsilon))
}

// polyhedraOverlap runs the separating axis test over both face normal sets
// and every edge-pair cross product.
func polyhedraOverlap(e *Engine, a, b model.Shape) Result {
	pa, pb := a.(model.Polyhedron), b.(model.Polyhedron)
	va, vb := pa.Vertices(), pb.Vertices()

	var axes []r3.Vector
	for _, f := range pa.Faces() {
		axes = append(axes, f.Normal())
	}
	for _, f := range pb.Faces() {
		axes = append(axes, f.Normal())
	}
	for _, ea := range pa.Edges() {
		da := ea[1].Sub(ea[0])
		for _, eb := range pb.Edges() {
			db := eb[1].Sub(eb[0])
			if c := da.Cross(db); c.Norm() > e.cfg.Epsilon*da.Norm()*db.Norm() {
				axes = append(axes, c.Normalize())
			}
		}
	}

	for _, axis := range axes {
		minA, maxA := project(va, axis)
		minB, maxB := project(vb, axis)
		if maxA < minB-e.cfg.Epsilon || maxB < minA-e.cfg.Epsilon {
			return exact(false)
		}
	}
	return exact(true)
}

func project(vs []r3.Vector, axis r3.Vector) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		d := v.Dot(axis)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return lo, hi
}

// polyhedronMeetsSphere compares the sphere radius with the distance from its
// centre to the nearest point of the polyhedron.
func polyhedronMeetsSphere(e *Engine, a, b model.Shape) Result {
	poly, sp := a.(model.Polyhedron), b.(model.Sphere)
	c := sp.Center()
	faces := poly.Faces()
	if insideFaces(faces, c, e.cfg.Epsilon) {
		return exact(true)
	}
	for _, f := range faces {
		if faceDistance(f, c, e.cfg.Epsilon) <= sp.Radius()+e.cfg.Epsilon {
			return exact(true)
		}
	}
	return exact(false)
}

// spheresOverlap is strict: tangent spheres do not intersect.
func spheresOverlap(_ *Engine, a, b model.Shape) Result {
	sa, sb := a.(model.Sphere), b.(model.Sphere)
	return exact(sa.Center().Sub(sb.Center()).Norm() < sa.Radius()+sb.Radius())
}

// overlapByBoundingBox answers exactly when the boxes are disjoint or a key
// point of either shape lies in the other, and approximately otherwise.
func overlapByBoundingBox(e *Engine, a, b model.Shape) Result {
	if !a.BoundingBox().Intersects(b.BoundingBox()) {
		return exact(false)
	}
	for _, p := range keyPoints(a) {
		if e.pointIn(b, p) {
			return exact(true)
		}
	}
	for _, p := range keyPoints(b) {
		if e.pointIn(a, p) {
			return exact(true)
		}
	}
	return approximate(true)
}

// faceMeets reports whether the planar face touches s. It is exact for
// points, segments, polyhedra and spheres; other variants are tested with
// the face edges before falling back to bounding boxes.
func (e *Engine) faceMeets(f model.Face, s model.Shape) Result {
	eps := e.cfg.Epsilon
	switch v := s.(type) {
	case model.Point:
		p := v.Position()
		return exact(math.Abs(f.SignedDistance(p)) <= eps && pointInFace(f, p, eps))
	case model.Segment:
		return exact(segmentCrossesFace(v.WorldStart(), v.WorldEnd(), f, eps))
	case model.Sphere:
		return exact(faceDistance(f, v.Center(), eps) <= v.Radius()+eps)
	case model.Polyhedron:
		for _, edge := range f.Edges() {
			if segmentMeetsPolyhedron(e, model.NewWorldSegment(edge[0], edge[1]), v).Value {
				return exact(true)
			}
		}
		for _, edge := range v.Edges() {
			if segmentCrossesFace(edge[0], edge[1], f, eps) {
				return exact(true)
			}
		}
		return exact(false)
	}

	var edges []Result
	for _, edge := range f.Edges() {
		r := e.table.intersects[model.KindSegment][s.Kind()](e, model.NewWorldSegment(edge[0], edge[1]), s)
		if r.Value && r.IsExact() {
			return r
		}
		edges = append(edges, r)
	}
	box := model.NewBoundingBox(f.Vertices()...)
	if !box.Intersects(s.BoundingBox()) {
		return exact(false)
	}
	if e.pointIn(s, f.Centroid()) {
		return exact(true)
	}
	return anyOf(append(edges, approximate(true))...)
}
