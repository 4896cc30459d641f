package core

import (
	"math"
	"testing"
)

func TestIntersectionVolume_UnitSphereLens(t *testing.T) {
	e := newTestEngine()
	a := mustSphere(t, vec(0, 0, 0), 1)
	b := mustSphere(t, vec(1, 0, 0), 1)

	m, err := e.ClassifyIntersectionVolume(a, b)
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if want := 5 * math.Pi / 12; math.Abs(m.Value-want) > 1e-12 || !m.IsExact() {
		t.Fatalf("lens = %+v, want exact %v", m, want)
	}
}

func TestIntersectionVolume_NestedIsInnerVolume(t *testing.T) {
	e := newTestEngine()
	outer := mustSphere(t, vec(0, 0, 0), 3)
	inner := mustSphere(t, vec(0.5, 0, 0), 1)

	got, err := e.IntersectionVolume(outer, inner)
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if math.Abs(got-inner.Volume()) > 1e-12 {
		t.Fatalf("nested volume = %v, want %v", got, inner.Volume())
	}

	box := mustBox(t, vec(0, 0, 0), vec(4, 4, 4))
	ball := mustSphere(t, vec(0, 0, 0), 1)
	m, err := e.ClassifyIntersectionVolume(ball, box)
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if math.Abs(m.Value-ball.Volume()) > 1e-12 || m.Tier != TierExact {
		t.Fatalf("ball in box = %+v, want exact %v", m, ball.Volume())
	}
}

func TestIntersectionVolume_ZeroCases(t *testing.T) {
	e := newTestEngine()
	for _, tc := range []struct {
		name string
		got  func() (float64, error)
	}{
		{"disjoint spheres", func() (float64, error) {
			return e.IntersectionVolume(mustSphere(t, vec(0, 0, 0), 1), mustSphere(t, vec(5, 0, 0), 1))
		}},
		{"tangent spheres", func() (float64, error) {
			return e.IntersectionVolume(mustSphere(t, vec(0, 0, 0), 1), mustSphere(t, vec(2, 0, 0), 1))
		}},
		{"segment through sphere", func() (float64, error) {
			return e.IntersectionVolume(segment(vec(-2, 0, 0), vec(2, 0, 0)), mustSphere(t, vec(0, 0, 0), 1))
		}},
		{"point in box", func() (float64, error) {
			return e.IntersectionVolume(point(vec(0, 0, 0)), mustBox(t, vec(0, 0, 0), vec(1, 1, 1)))
		}},
	} {
		v, err := tc.got()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if v != 0 {
			t.Fatalf("%s: volume = %v, want 0", tc.name, v)
		}
	}
}

func TestIntersectionVolume_BoundingBoxIsCapped(t *testing.T) {
	e := newTestEngine()
	cone := mustCone(t, vec(0, 0, 2), vec(0, 0, -1), 1)
	el := mustEllipsoid(t, vec(0.5, 0, 0.5), 1, 1, 1.5)

	m, err := e.ClassifyIntersectionVolume(cone, el)
	if err != nil {
		t.Fatalf("volume: %v", err)
	}
	if m.Tier != TierBoundingBox {
		t.Fatalf("tier = %v, want bounding_box", m.Tier)
	}
	if limit := math.Min(cone.Volume(), el.Volume()); m.Value <= 0 || m.Value > limit {
		t.Fatalf("volume = %v, want in (0, %v]", m.Value, limit)
	}

	cfg := DefaultConfig()
	cfg.Approximations = RejectApproximations
	if _, err := NewEngine(cfg).IntersectionVolume(cone, el); err == nil {
		t.Fatalf("expected approximate volume to be rejected")
	}
}

func TestIntersectionVolume_ShrinksAsSpheresSeparate(t *testing.T) {
	e := newTestEngine()
	a := mustSphere(t, vec(0, 0, 0), 1)
	prev := math.Inf(1)
	for d := 0.0; d <= 2.0; d += 0.25 {
		v, err := e.IntersectionVolume(a, mustSphere(t, vec(d, 0, 0), 1))
		if err != nil {
			t.Fatalf("d=%v: %v", d, err)
		}
		if v > prev+1e-12 {
			t.Fatalf("volume grew from %v to %v at d=%v", prev, v, d)
		}
		if v > a.Volume()+1e-12 {
			t.Fatalf("volume %v exceeds sphere volume at d=%v", v, d)
		}
		prev = v
	}
}
