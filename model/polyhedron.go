package model

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"
)

// planarTolerance bounds how far a face vertex may sit off the face plane,
// relative to the face size.
const planarTolerance = 1e-9

// Face is a convex planar polygon with a unit normal. Inside a Polyhedron the
// normal points outward.
type Face struct {
	vertices []r3.Vector
	normal   r3.Vector
}

// NewFace validates a vertex loop: at least three vertices, no zero-length
// edges, non-zero area and all vertices on one plane. The normal follows the
// right-hand rule.
func NewFace(vertices ...r3.Vector) (Face, error) {
	if len(vertices) < 3 {
		return Face{}, errors.Wrapf(ErrInvalidShape, "face needs at least 3 vertices, got %d", len(vertices))
	}
	for i, v := range vertices {
		if next := (i + 1) % len(vertices); v == vertices[next] {
			return Face{}, errors.Wrapf(ErrInvalidShape, "face vertices %d and %d coincide", i, next)
		}
	}
	n := newell(vertices)
	if n.Norm2() == 0 {
		return Face{}, errors.Wrap(ErrInvalidShape, "face has zero area")
	}
	unit := n.Normalize()
	scale := NewBoundingBox(vertices...).Size().Norm()
	for i, v := range vertices {
		if d := math.Abs(v.Sub(vertices[0]).Dot(unit)); d > planarTolerance*math.Max(1, scale) {
			return Face{}, errors.Wrapf(ErrInvalidShape, "face vertex %d is %g off the face plane", i, d)
		}
	}
	return Face{vertices: append([]r3.Vector(nil), vertices...), normal: unit}, nil
}

// newell returns the polygon normal scaled to twice its area.
func newell(vs []r3.Vector) r3.Vector {
	var n r3.Vector
	for i, vi := range vs {
		vj := vs[(i+1)%len(vs)]
		n.X += (vi.Y - vj.Y) * (vi.Z + vj.Z)
		n.Y += (vi.Z - vj.Z) * (vi.X + vj.X)
		n.Z += (vi.X - vj.X) * (vi.Y + vj.Y)
	}
	return n
}

// Vertices returns a copy of the vertex loop.
func (f Face) Vertices() []r3.Vector {
	return append([]r3.Vector(nil), f.vertices...)
}

func (f Face) Normal() r3.Vector { return f.normal }

// Area returns the polygon area.
func (f Face) Area() float64 { return newell(f.vertices).Norm() / 2 }

// Centroid returns the vertex mean.
func (f Face) Centroid() r3.Vector {
	var c r3.Vector
	for _, v := range f.vertices {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(f.vertices)))
}

// SignedDistance returns the distance from the face plane to p, positive on
// the side the normal points to.
func (f Face) SignedDistance(p r3.Vector) float64 {
	return p.Sub(f.vertices[0]).Dot(f.normal)
}

// IsBehind reports whether p lies on or behind the face plane within eps.
func (f Face) IsBehind(p r3.Vector, eps float64) bool {
	return f.SignedDistance(p) <= eps
}

// Basis returns an orthonormal tangent/binormal pair spanning the face plane.
// It depends only on the normal.
func (f Face) Basis() (tangent, binormal r3.Vector) {
	tangent = f.normal.Ortho()
	binormal = f.normal.Cross(tangent)
	return tangent, binormal
}

// Reversed returns the face with the opposite winding and normal.
func (f Face) Reversed() Face {
	vs := make([]r3.Vector, len(f.vertices))
	for i, v := range f.vertices {
		vs[len(vs)-1-i] = v
	}
	return Face{vertices: vs, normal: f.normal.Mul(-1)}
}

// Edges returns consecutive vertex pairs, closing the loop.
func (f Face) Edges() [][2]r3.Vector {
	out := make([][2]r3.Vector, len(f.vertices))
	for i, v := range f.vertices {
		out[i] = [2]r3.Vector{v, f.vertices[(i+1)%len(f.vertices)]}
	}
	return out
}

func (f Face) transformed(fr Frame) Face {
	vs := make([]r3.Vector, len(f.vertices))
	for i, v := range f.vertices {
		vs[i] = fr.ToWorld(v)
	}
	return Face{vertices: vs, normal: fr.Rotate(f.normal)}
}

// Polyhedron is a closed convex solid bounded by planar faces.
type Polyhedron struct {
	placement
	faces []Face
}

// NewPolyhedron builds a convex polyhedron from local faces. Faces are
// re-wound where needed so every normal points away from the vertex centroid.
func NewPolyhedron(frame Frame, faces []Face) (Polyhedron, error) {
	if len(faces) < 4 {
		return Polyhedron{}, errors.Wrapf(ErrInvalidShape, "polyhedron needs at least 4 faces, got %d", len(faces))
	}
	centroid := vertexMean(uniqueVertices(faces))
	oriented := make([]Face, len(faces))
	for i, f := range faces {
		if len(f.vertices) < 3 {
			return Polyhedron{}, errors.Wrapf(ErrInvalidShape, "polyhedron face %d is not initialised", i)
		}
		d := f.SignedDistance(centroid)
		switch {
		case math.Abs(d) <= planarTolerance:
			return Polyhedron{}, errors.Wrapf(ErrInvalidShape, "polyhedron is flat at face %d", i)
		case d > 0:
			f = f.Reversed()
		}
		oriented[i] = f
	}
	return Polyhedron{placement: placement{frame}, faces: oriented}, nil
}

// NewBox builds an axis-aligned (in the local frame) box centred on the frame
// origin.
func NewBox(frame Frame, size r3.Vector) (Polyhedron, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return Polyhedron{}, errors.Wrapf(ErrInvalidShape, "box size must be positive, got %v", size)
	}
	h := size.Mul(0.5)
	c := func(sx, sy, sz float64) r3.Vector { return r3.Vector{X: sx * h.X, Y: sy * h.Y, Z: sz * h.Z} }
	loops := [][]r3.Vector{
		{c(-1, -1, -1), c(-1, 1, -1), c(1, 1, -1), c(1, -1, -1)},
		{c(-1, -1, 1), c(1, -1, 1), c(1, 1, 1), c(-1, 1, 1)},
		{c(-1, -1, -1), c(1, -1, -1), c(1, -1, 1), c(-1, -1, 1)},
		{c(-1, 1, -1), c(-1, 1, 1), c(1, 1, 1), c(1, 1, -1)},
		{c(-1, -1, -1), c(-1, -1, 1), c(-1, 1, 1), c(-1, 1, -1)},
		{c(1, -1, -1), c(1, 1, -1), c(1, 1, 1), c(1, -1, 1)},
	}
	faces := make([]Face, 0, len(loops))
	for _, loop := range loops {
		f, err := NewFace(loop...)
		if err != nil {
			return Polyhedron{}, err
		}
		faces = append(faces, f)
	}
	return NewPolyhedron(frame, faces)
}

func (Polyhedron) Kind() Kind { return KindPolyhedron }

// Faces returns the faces in world coordinates.
func (p Polyhedron) Faces() []Face {
	out := make([]Face, len(p.faces))
	for i, f := range p.faces {
		out[i] = f.transformed(p.frame)
	}
	return out
}

// Vertices returns each distinct vertex once, in world coordinates.
func (p Polyhedron) Vertices() []r3.Vector {
	local := uniqueVertices(p.faces)
	for i, v := range local {
		local[i] = p.frame.ToWorld(v)
	}
	return local
}

// Edges returns each distinct edge once, in world coordinates.
func (p Polyhedron) Edges() [][2]r3.Vector {
	seen := make(map[[2]r3.Vector]bool)
	var out [][2]r3.Vector
	for _, f := range p.faces {
		for _, e := range f.Edges() {
			if seen[e] || seen[[2]r3.Vector{e[1], e[0]}] {
				continue
			}
			seen[e] = true
			out = append(out, [2]r3.Vector{p.frame.ToWorld(e[0]), p.frame.ToWorld(e[1])})
		}
	}
	return out
}

// Volume integrates over the outward faces (divergence theorem).
func (p Polyhedron) Volume() float64 {
	var v float64
	for _, f := range p.faces {
		v += f.vertices[0].Dot(newell(f.vertices))
	}
	return math.Abs(v) / 6
}

func (p Polyhedron) BoundingBox() BoundingBox {
	return NewBoundingBox(p.Vertices()...)
}

func (p Polyhedron) Center() r3.Vector {
	return vertexMean(p.Vertices())
}

func (p Polyhedron) WithPosition(pos r3.Vector) Shape { p.frame.Position = pos; return p }
func (p Polyhedron) WithVelocity(v r3.Vector) Shape   { p.frame.Velocity = v; return p }
func (p Polyhedron) Translated(d r3.Vector) Shape     { p.frame = p.frame.Translated(d); return p }

func uniqueVertices(faces []Face) []r3.Vector {
	seen := make(map[r3.Vector]bool)
	var out []r3.Vector
	for _, f := range faces {
		for _, v := range f.vertices {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func vertexMean(vs []r3.Vector) r3.Vector {
	if len(vs) == 0 {
		return r3.Vector{}
	}
	var c r3.Vector
	for _, v := range vs {
		c = c.Add(v)
	}
	return c.Mul(1 / float64(len(vs)))
}
