package core

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/signalsfoundry/geoquery/model"
)

// closestOnSegment returns the point of segment [a, b] nearest to p.
func closestOnSegment(a, b, p r3.Vector) r3.Vector {
	v := b.Sub(a)
	den := v.Dot(v)
	if den == 0 {
		return a
	}

	// t minimises |a + t v - p|^2 over t, then clamps to the segment.
	t := p.Sub(a).Dot(v) / den
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(v.Mul(t))
}

// segmentReachesBall reports whether [a, b] passes within radius of center.
func segmentReachesBall(a, b, center r3.Vector, radius, eps float64) bool {
	return closestOnSegment(a, b, center).Sub(center).Norm() <= radius+eps
}

// onSegment reports whether p lies on [a, b] within eps.
func onSegment(a, b, p r3.Vector, eps float64) bool {
	ab := b.Sub(a)
	ap := p.Sub(a)
	length := ab.Norm()
	if length == 0 {
		return ap.Norm() <= eps
	}
	if ab.Cross(ap).Norm() > eps*length {
		return false
	}
	t := ap.Dot(ab)
	return t >= -eps*length && t <= length*length+eps*length
}

// segmentsMeet returns a common point of [p1, p2] and [q1, q2].
func segmentsMeet(p1, p2, q1, q2 r3.Vector, eps float64) (r3.Vector, bool) {
	d1 := p2.Sub(p1)
	d2 := q2.Sub(q1)
	switch {
	case d1.Norm2() == 0:
		return p1, onSegment(q1, q2, p1, eps)
	case d2.Norm2() == 0:
		return q1, onSegment(p1, p2, q1, eps)
	}

	w := q1.Sub(p1)
	cross := d1.Cross(d2)
	if cross.Norm() <= eps*d1.Norm()*d2.Norm() {
		// Parallel: only collinear segments can share a point.
		for _, c := range [][3]r3.Vector{{p1, p2, q1}, {p1, p2, q2}, {q1, q2, p1}, {q1, q2, p2}} {
			if onSegment(c[0], c[1], c[2], eps) {
				return c[2], true
			}
		}
		return r3.Vector{}, false
	}

	s := w.Cross(d2).Dot(cross) / cross.Norm2()
	x := p1.Add(d1.Mul(s))
	if onSegment(p1, p2, x, eps) && onSegment(q1, q2, x, eps) {
		return x, true
	}
	return r3.Vector{}, false
}

// faceRing projects a face onto its own plane as a closed XY ring.
func faceRing(f model.Face) (origin, tangent, binormal r3.Vector, ring []float64) {
	vs := f.Vertices()
	origin = vs[0]
	tangent, binormal = f.Basis()
	ring = make([]float64, 0, 2*(len(vs)+1))
	for _, v := range append(vs, vs[0]) {
		d := v.Sub(origin)
		ring = append(ring, d.Dot(tangent), d.Dot(binormal))
	}
	return origin, tangent, binormal, ring
}

// pointInFace reports whether p, assumed on the face plane, lies inside the
// polygon or on its boundary.
func pointInFace(f model.Face, p r3.Vector, eps float64) bool {
	origin, tangent, binormal, ring := faceRing(f)
	d := p.Sub(origin)
	if xy.IsPointInRing(geom.XY, geom.Coord{d.Dot(tangent), d.Dot(binormal)}, ring) {
		return true
	}
	for _, e := range f.Edges() {
		if onSegment(e[0], e[1], p, eps) {
			return true
		}
	}
	return false
}

// segmentCrossesFace reports whether [a, b] touches the face polygon.
func segmentCrossesFace(a, b r3.Vector, f model.Face, eps float64) bool {
	da, db := f.SignedDistance(a), f.SignedDistance(b)
	if math.Abs(da) <= eps && math.Abs(db) <= eps {
		if pointInFace(f, a, eps) || pointInFace(f, b, eps) {
			return true
		}
		for _, e := range f.Edges() {
			if _, ok := segmentsMeet(a, b, e[0], e[1], eps); ok {
				return true
			}
		}
		return false
	}
	if (da > eps && db > eps) || (da < -eps && db < -eps) {
		return false
	}

	x := a
	if math.Abs(da) > eps {
		x = b
		if math.Abs(db) > eps {
			x = a.Add(b.Sub(a).Mul(da / (da - db)))
		}
	}
	return pointInFace(f, x, eps)
}

// faceDistance returns the distance from p to the face polygon.
func faceDistance(f model.Face, p r3.Vector, eps float64) float64 {
	sd := f.SignedDistance(p)
	if foot := p.Sub(f.Normal().Mul(sd)); pointInFace(f, foot, eps) {
		return math.Abs(sd)
	}
	best := math.Inf(1)
	for _, e := range f.Edges() {
		best = math.Min(best, closestOnSegment(e[0], e[1], p).Sub(p).Norm())
	}
	return best
}

// insideFaces reports whether p lies behind every face.
func insideFaces(faces []model.Face, p r3.Vector, eps float64) bool {
	for _, f := range faces {
		if !f.IsBehind(p, eps) {
			return false
		}
	}
	return true
}

// quadricExtent returns the half-width of q along the unit direction dir.
func quadricExtent(q model.Quadric, dir r3.Vector) float64 {
	axes, radii := q.Principal()
	var sum float64
	for i := range axes {
		p := radii[i] * axes[i].Dot(dir)
		sum += p * p
	}
	return math.Sqrt(sum)
}

// quadricValue evaluates sum((d·u_i / r_i)^2) for d = p - centre. Points
// with a value at most one lie inside. Zero radii admit only points on the
// remaining axes.
func quadricValue(q model.Quadric, p r3.Vector, eps float64) float64 {
	axes, radii := q.Principal()
	d := p.Sub(q.Center())
	var sum float64
	for i := range axes {
		c := d.Dot(axes[i])
		if radii[i] == 0 {
			if math.Abs(c) > eps {
				return math.Inf(1)
			}
			continue
		}
		c /= radii[i]
		sum += c * c
	}
	return sum
}

// toUnitSphere maps world points into the frame where q is the unit sphere
// at the origin. It fails for degenerate quadrics.
func toUnitSphere(q model.Quadric) (func(r3.Vector) r3.Vector, bool) {
	axes, radii := q.Principal()
	for _, r := range radii {
		if r == 0 {
			return nil, false
		}
	}
	c := q.Center()
	return func(p r3.Vector) r3.Vector {
		d := p.Sub(c)
		return r3.Vector{
			X: d.Dot(axes[0]) / radii[0],
			Y: d.Dot(axes[1]) / radii[1],
			Z: d.Dot(axes[2]) / radii[2],
		}
	}, true
}

// support returns max(x·dir) over every point x of s.
func support(s model.Shape, dir r3.Vector) float64 {
	switch v := s.(type) {
	case model.Point:
		return v.Position().Dot(dir)
	case model.Segment:
		return math.Max(v.WorldStart().Dot(dir), v.WorldEnd().Dot(dir))
	case model.Cone:
		return math.Max(v.WorldApex().Dot(dir), v.Base().Support(dir))
	case model.Cylinder:
		return math.Max(v.ApexCap().Support(dir), v.BaseCap().Support(dir))
	case model.Polyhedron:
		best := math.Inf(-1)
		for _, p := range v.Vertices() {
			best = math.Max(best, p.Dot(dir))
		}
		return best
	case model.Quadric:
		n := dir.Norm()
		if n == 0 {
			return 0
		}
		return v.Center().Dot(dir) + n*quadricExtent(v, dir.Mul(1/n))
	}
	return math.Inf(1)
}

// farthestFrom returns the largest distance from p to a point of s, and false
// for variants without a closed form.
func farthestFrom(s model.Shape, p r3.Vector) (float64, bool) {
	switch v := s.(type) {
	case model.Point:
		return v.Position().Sub(p).Norm(), true
	case model.Segment:
		return math.Max(v.WorldStart().Sub(p).Norm(), v.WorldEnd().Sub(p).Norm()), true
	case model.Cone:
		return math.Max(v.WorldApex().Sub(p).Norm(), v.Base().Farthest(p).Sub(p).Norm()), true
	case model.Cylinder:
		return math.Max(v.ApexCap().Farthest(p).Sub(p).Norm(), v.BaseCap().Farthest(p).Sub(p).Norm()), true
	case model.Polyhedron:
		var best float64
		for _, q := range v.Vertices() {
			best = math.Max(best, q.Sub(p).Norm())
		}
		return best, true
	case model.Sphere:
		return v.Center().Sub(p).Norm() + v.Radius(), true
	}
	return 0, false
}

// keyPoints returns characteristic points of s that must lie inside any
// container of s: vertices, apex and cap centres, rim extremes and quadric
// axis extremes.
func keyPoints(s model.Shape) []r3.Vector {
	switch v := s.(type) {
	case model.Point:
		return []r3.Vector{v.Position()}
	case model.Segment:
		return []r3.Vector{v.WorldStart(), v.WorldEnd()}
	case model.Cone:
		return append([]r3.Vector{v.WorldApex()}, rimPoints(v.Base())...)
	case model.Cylinder:
		return append(rimPoints(v.ApexCap()), rimPoints(v.BaseCap())...)
	case model.Polyhedron:
		return v.Vertices()
	case model.Quadric:
		c := v.Center()
		axes, radii := v.Principal()
		out := []r3.Vector{c}
		for i := range axes {
			out = append(out, c.Add(axes[i].Mul(radii[i])), c.Sub(axes[i].Mul(radii[i])))
		}
		return out
	}
	return nil
}

// rimPoints returns the disk centre and four rim points.
func rimPoints(d model.Disk) []r3.Vector {
	u := d.Normal.Ortho()
	w := d.Normal.Cross(u)
	return []r3.Vector{
		d.Center,
		d.Center.Add(u.Mul(d.Radius)),
		d.Center.Sub(u.Mul(d.Radius)),
		d.Center.Add(w.Mul(d.Radius)),
		d.Center.Sub(w.Mul(d.Radius)),
	}
}
