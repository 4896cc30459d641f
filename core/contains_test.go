package core

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

func TestContainsPoint_Cone(t *testing.T) {
	e := newTestEngine()
	// Apex at z=2, base of radius 1 at the origin: half-angle atan(1/2).
	cone := mustCone(t, vec(0, 0, 2), vec(0, 0, 0), 1)
	for _, tc := range []struct {
		name string
		p    r3.Vector
		want bool
	}{
		{"apex", vec(0, 0, 2), true},
		{"axis midpoint", vec(0, 0, 1), true},
		{"lateral surface", vec(0.5, 0, 1), true},
		{"just outside lateral", vec(0.5001, 0, 1), false},
		{"base rim", vec(0, 1, 0), true},
		{"below base", vec(0, 0, -0.01), false},
		{"above apex", vec(0, 0, 2.5), false},
	} {
		got, err := e.ContainsPoint(cone, tc.p)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: ContainsPoint = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestContainsPoint_CylinderAndFrustum(t *testing.T) {
	e := newTestEngine()
	cyl := mustCylinder(t, vec(0, 0, 0), vec(0, 0, 4), 1, 1)
	frustum := mustCylinder(t, vec(0, 0, 0), vec(0, 0, 4), 1, 2)

	for _, tc := range []struct {
		name  string
		shape model.Shape
		p     r3.Vector
		want  bool
	}{
		{"cylinder wall", cyl, vec(1, 0, 2), true},
		{"cylinder outside", cyl, vec(1.01, 0, 2), false},
		{"cylinder cap", cyl, vec(0.3, 0.3, 4), true},
		{"cylinder past cap", cyl, vec(0, 0, 4.01), false},
		{"frustum narrow end wall", frustum, vec(1, 0, 0), true},
		{"frustum mid wall", frustum, vec(0, 1.5, 2), true},
		{"frustum outside mid wall", frustum, vec(0, 1.6, 2), false},
		{"frustum wide end", frustum, vec(1.9, 0, 4), true},
	} {
		got, err := e.ContainsPoint(tc.shape, tc.p)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: ContainsPoint = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestContains_ReflexiveAtEarthScale(t *testing.T) {
	e := newTestEngine()
	must := built(t)
	for i := 0; i < 300; i++ {
		fi := float64(i)
		frame := model.At(vec(6371+0.37*fi, 12.5*fi, -3.1*fi)).
			Rotated(0.1*fi, vec(math.Sin(fi), math.Cos(0.7*fi), 1))
		// Step the radius through the tenth decimal place so the rim lands
		// on both sides of a truncation boundary.
		r := 1.355681121399853 + fi*3e-12
		for _, s := range []model.Shape{
			must(model.NewCylinder(frame, vec(0, 0, 0), vec(0, 0, 2.5), r, r)),
			must(model.NewCylinder(frame, vec(0, 0, 0), vec(0, 0, 2.5), r, r+0.7)),
			must(model.NewCone(frame, vec(0, 0, 2.5), vec(0, 0, 0), r)),
		} {
			ok, err := e.Contains(s, s)
			if err != nil {
				t.Fatalf("contains(%s, self) #%d: %v", s.Kind(), i, err)
			}
			if !ok {
				t.Fatalf("%s #%d at %v does not contain itself", s.Kind(), i, s.Position())
			}
		}
	}
}

func TestContainsPoint_RimAtEarthScale(t *testing.T) {
	e := newTestEngine()
	frame := model.At(vec(6371, 0, 0)).Rotated(0.7, vec(1, 2, 3))
	cyl := built(t)(model.NewCylinder(frame, vec(0, 0, 0), vec(0, 0, 3), 1.25, 1.25))
	for _, tc := range []struct {
		name  string
		local r3.Vector
		want  bool
	}{
		{"rim", vec(0, 1.25, 1), true},
		{"axis", vec(0, 0, 2), true},
		{"outside", vec(1.2501, 0, 1), false},
	} {
		got, err := e.ContainsPoint(cyl, cyl.ToWorld(tc.local))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: ContainsPoint = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestContainsPoint_Quadrics(t *testing.T) {
	e := newTestEngine()
	el := mustEllipsoid(t, vec(1, 1, 1), 3, 2, 1)
	if ok, _ := e.ContainsPoint(el, vec(4, 1, 1)); !ok {
		t.Fatalf("major vertex should be inside")
	}
	if ok, _ := e.ContainsPoint(el, vec(1, 1, 2.01)); ok {
		t.Fatalf("point past the minor radius should be outside")
	}
	sp := mustSpheroid(t, vec(0, 0, 0), 2, 1)
	if ok, _ := e.ContainsPoint(sp, vec(0, 0, 1)); !ok {
		t.Fatalf("pole should be inside")
	}
	if ok, _ := e.ContainsPoint(sp, vec(0, 0, 1.5)); ok {
		t.Fatalf("point above the pole should be outside")
	}
	if ok, _ := e.ContainsPoint(sp, vec(0, 2, 0)); !ok {
		t.Fatalf("equator should be inside")
	}
}

func TestContains_RotatedBox(t *testing.T) {
	e := newTestEngine()
	frame := model.At(vec(0, 0, 0)).Rotated(math.Pi/4, vec(0, 0, 1))
	box, err := model.NewBox(frame, vec(2, 2, 2))
	if err != nil {
		t.Fatalf("NewBox: %v", err)
	}
	// Rotated 45 degrees the box reaches sqrt(2) along the x axis.
	if ok, _ := e.ContainsPoint(box, vec(1.4, 0, 0)); !ok {
		t.Fatalf("point near the rotated corner should be inside")
	}
	if ok, _ := e.ContainsPoint(box, vec(0.9, 0.9, 0)); ok {
		t.Fatalf("unrotated corner region should be outside")
	}
}

func TestContains_ExactRules(t *testing.T) {
	e := newTestEngine()
	box := mustBox(t, vec(0, 0, 0), vec(4, 4, 4))

	for _, tc := range []struct {
		name          string
		parent, child model.Shape
		want          bool
	}{
		{"box holds sphere", box, mustSphere(t, vec(0, 0, 0), 2), true},
		{"box rejects sphere poking out", box, mustSphere(t, vec(0.5, 0, 0), 2), false},
		{"box holds cylinder", box, mustCylinder(t, vec(0, 0, -2), vec(0, 0, 2), 2, 2), true},
		{"box rejects tilted cone", box, mustCone(t, vec(0, 0, 0), vec(2, 2, 2), 0.5), false},
		{"box holds ellipsoid", box, mustEllipsoid(t, vec(0, 0, 0), 2, 1, 0.5), true},
		{"sphere holds cone", mustSphere(t, vec(0, 0, 0), 2), mustCone(t, vec(0, 0, 1), vec(0, 0, -1), 1), true},
		{"sphere rejects wide cone", mustSphere(t, vec(0, 0, 0), 2), mustCone(t, vec(0, 0, 1), vec(0, 0, -1), 2), false},
		{"sphere holds box", mustSphere(t, vec(0, 0, 0), 2), mustBox(t, vec(0, 0, 0), vec(2, 2, 2)), true},
		{"sphere rejects larger box", mustSphere(t, vec(0, 0, 0), 1.5), mustBox(t, vec(0, 0, 0), vec(2, 2, 2)), false},
		{"cone holds segment", mustCone(t, vec(0, 0, 2), vec(0, 0, 0), 1), segment(vec(0, 0, 0.1), vec(0, 0, 1.9)), true},
		{"segment holds sub-segment", segment(vec(0, 0, 0), vec(4, 0, 0)), segment(vec(1, 0, 0), vec(2, 0, 0)), true},
		{"segment rejects sphere", segment(vec(0, 0, 0), vec(4, 0, 0)), mustSphere(t, vec(1, 0, 0), 0.1), false},
	} {
		res, err := e.ClassifyContains(tc.parent, tc.child)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if res.Value != tc.want || !res.IsExact() {
			t.Fatalf("%s: got %+v, want exact %v", tc.name, res, tc.want)
		}
	}
}

func TestContains_BoundingBoxTier(t *testing.T) {
	e := newTestEngine()
	big := mustEllipsoid(t, vec(0, 0, 0), 5, 4, 3)
	small := mustSpheroid(t, vec(0, 0, 0), 1, 0.5)

	res, err := e.ClassifyContains(big, small)
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if !res.Value || res.Tier != TierBoundingBox {
		t.Fatalf("got %+v, want approximate true", res)
	}

	res, err = e.ClassifyContains(small, big)
	if err != nil {
		t.Fatalf("contains: %v", err)
	}
	if res.Value || !res.IsExact() {
		t.Fatalf("key points outside the parent rule containment out exactly, got %+v", res)
	}
}
