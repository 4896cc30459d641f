package core

import (
	"testing"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

func vec(x, y, z float64) r3.Vector { return r3.Vector{X: x, Y: y, Z: z} }

func newTestEngine() *Engine { return NewEngine(DefaultConfig()) }

func mustSphere(t testing.TB, c r3.Vector, r float64) model.Sphere {
	t.Helper()
	s, err := model.NewSphere(model.At(c), r)
	if err != nil {
		t.Fatalf("NewSphere: %v", err)
	}
	return s
}

func mustCone(t testing.TB, apex, base r3.Vector, r float64) model.Cone {
	t.Helper()
	c, err := model.NewCone(model.At(r3.Vector{}), apex, base, r)
	if err != nil {
		t.Fatalf("NewCone: %v", err)
	}
	return c
}

func mustCylinder(t testing.TB, apex, base r3.Vector, rApex, rBase float64) model.Cylinder {
	t.Helper()
	c, err := model.NewCylinder(model.At(r3.Vector{}), apex, base, rApex, rBase)
	if err != nil {
		t.Fatalf("NewCylinder: %v", err)
	}
	return c
}

func mustBox(t testing.TB, c, size r3.Vector) model.Polyhedron {
	t.Helper()
	p, err := model.NewBox(model.At(c), size)
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	return p
}

func mustSpheroid(t testing.TB, c r3.Vector, major, minor float64) model.Spheroid {
	t.Helper()
	s, err := model.NewSpheroid(model.At(c), major, minor, vec(0, 0, 1))
	if err != nil {
		t.Fatalf("NewSpheroid: %v", err)
	}
	return s
}

func mustEllipsoid(t testing.TB, c r3.Vector, a, b, cr float64) model.Ellipsoid {
	t.Helper()
	e, err := model.NewAlignedEllipsoid(model.At(c), a, b, cr)
	if err != nil {
		t.Fatalf("NewAlignedEllipsoid: %v", err)
	}
	return e
}

// earthFrame is a rotated frame at an ECEF-scale offset.
func earthFrame(offset r3.Vector) model.Frame {
	return model.At(vec(6371, 0, 0).Add(offset)).Rotated(0.7, vec(1, 2, 3))
}

// built fails the test on a constructor error; use as built(t)(model.NewX(...)).
func built(t testing.TB) func(model.Shape, error) model.Shape {
	return func(s model.Shape, err error) model.Shape {
		t.Helper()
		if err != nil {
			t.Fatalf("build shape: %v", err)
		}
		return s
	}
}

func point(p r3.Vector) model.Point { return model.NewPoint(model.At(p)) }

func segment(a, b r3.Vector) model.Segment { return model.NewWorldSegment(a, b) }

// sampleShapes returns one or more shapes of every variant, arranged so that
// some pairs overlap, some nest and some are far apart.
func sampleShapes(t testing.TB) []model.Shape {
	t.Helper()
	must := built(t)
	return []model.Shape{
		point(vec(0.2, 0.1, 0)),
		point(vec(9, 9, 9)),
		segment(vec(-2, 0, 0), vec(2, 0.5, 0.1)),
		segment(vec(5, 5, 5), vec(6, 6, 6)),
		mustCone(t, vec(0, 0, 2), vec(0, 0, -1), 1),
		mustCone(t, vec(4, 0, 0), vec(7, 0, 0), 0.5),
		mustCylinder(t, vec(0, 0, -1), vec(0, 0, 1), 0.5, 0.5),
		mustCylinder(t, vec(0.5, 0.5, -1), vec(0.5, 0.5, 1), 0.3, 0.8),
		mustBox(t, vec(0.5, 0, 0), vec(2, 2, 2)),
		mustBox(t, vec(-4, -4, -4), vec(1, 1, 1)),
		mustSphere(t, vec(0, 0, 0), 1),
		mustSphere(t, vec(1.5, 0, 0), 0.75),
		mustSpheroid(t, vec(0, 0.5, 0), 1.2, 0.6),
		mustEllipsoid(t, vec(0.3, -0.2, 0.1), 1.5, 1, 0.5),
		mustEllipsoid(t, vec(-20, 0, 0), 1, 0.8, 0.6),
		must(model.NewCylinder(earthFrame(vec(0, 0, 0)), vec(0, 0, 0), vec(0, 0, 3), 1.355681121399853, 1.355681121399853)),
		must(model.NewCylinder(earthFrame(vec(0, 10, 0)), vec(0, 0, 0), vec(0, 0, 2), 0.4, 1.1)),
		must(model.NewCone(earthFrame(vec(0, 20, 0)), vec(0, 0, 2), vec(0, 0, 0), 0.9)),
		must(model.NewBox(earthFrame(vec(0, 30, 0)), vec(1, 2, 3))),
	}
}
