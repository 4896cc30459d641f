package kb

import (
	"math"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/signalsfoundry/geoquery/geodesy"
	"github.com/signalsfoundry/geoquery/model"
)

const sampleScenario = `{
  "shapes": [
    {"id": "ball", "kind": "sphere", "position": {"x": 1, "y": 2, "z": 3}, "radius": 2},
    {"id": "drone", "kind": "point", "position": {"x": 0, "y": 0, "z": 0}, "velocity": {"x": 1, "y": 0, "z": 0}},
    {"id": "wire", "kind": "segment", "start": {"x": -1, "y": 0, "z": 0}, "end": {"x": 1, "y": 0, "z": 0}},
    {"id": "beam", "kind": "cone", "apex": {"x": 0, "y": 0, "z": 5}, "base": {"x": 0, "y": 0, "z": 0}, "base_radius": 1},
    {"id": "silo", "kind": "cylinder", "apex": {"x": 0, "y": 0, "z": 0}, "base": {"x": 0, "y": 0, "z": 2}, "apex_radius": 1, "base_radius": 1},
    {"id": "crate", "kind": "box", "size": {"x": 1, "y": 2, "z": 3}},
    {"id": "planet", "kind": "spheroid", "radii": [2, 1]},
    {"id": "egg", "kind": "ellipsoid", "radii": [3, 2, 1]},
    {"id": "station", "kind": "point", "geodetic": {"lat_deg": 0, "lon_deg": 90, "alt_km": 0}},
    {"id": "iss", "kind": "sphere", "radius": 0.1, "tle": [
      "1 25544U 98067A   21275.59097222  .00000204  00000-0  10270-4 0  9990",
      "2 25544  51.6459 115.9059 0001817  61.3028  35.9198 15.49370953257760"
    ]}
  ]
}`

func TestLoadScenario(t *testing.T) {
	store := NewKnowledgeBase()
	sc, err := LoadScenario(store, nil, strings.NewReader(sampleScenario))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if len(sc.ShapeIDs) != 10 || store.Len() != 10 {
		t.Fatalf("loaded %d ids, store has %d, want 10", len(sc.ShapeIDs), store.Len())
	}

	kinds := map[string]model.Kind{
		"ball":   model.KindSphere,
		"drone":  model.KindPoint,
		"wire":   model.KindSegment,
		"beam":   model.KindCone,
		"silo":   model.KindCylinder,
		"crate":  model.KindPolyhedron,
		"planet": model.KindSpheroid,
		"egg":    model.KindEllipsoid,
	}
	for id, want := range kinds {
		s, err := store.GetShape(id)
		if err != nil {
			t.Fatalf("GetShape %s: %v", id, err)
		}
		if s.Kind() != want {
			t.Fatalf("%s kind = %v, want %v", id, s.Kind(), want)
		}
	}

	drone, _ := store.GetShape("drone")
	if !model.IsMoving(drone) {
		t.Fatalf("drone should carry its velocity")
	}
	station, _ := store.GetShape("station")
	if p := station.Position(); math.Abs(p.Y-geodesy.WGS84SemiMajorKm) > 1e-6 || math.Abs(p.X) > 1e-6 {
		t.Fatalf("station at %v, want on the +Y axis at the equatorial radius", p)
	}

	if l1, l2 := sc.TLE("iss", nil); l1 == "" || l2 == "" {
		t.Fatalf("iss TLE missing")
	}
	if l1, _ := sc.TLE("ball", nil); l1 != "" {
		t.Fatalf("ball should have no TLE")
	}
}

func TestLoadScenarioRejectsBadShapes(t *testing.T) {
	for name, body := range map[string]string{
		"unknown kind":     `{"shapes": [{"id": "x", "kind": "torus"}]}`,
		"negative radius":  `{"shapes": [{"id": "x", "kind": "sphere", "radius": -1}]}`,
		"segment no end":   `{"shapes": [{"id": "x", "kind": "segment", "start": {"x": 1}}]}`,
		"spheroid radii":   `{"shapes": [{"id": "x", "kind": "spheroid", "radii": [1]}]}`,
		"box without size": `{"shapes": [{"id": "x", "kind": "box"}]}`,
	} {
		_, err := LoadScenario(NewKnowledgeBase(), nil, strings.NewReader(body))
		if !errors.Is(err, model.ErrInvalidShape) {
			t.Fatalf("%s: got %v, want ErrInvalidShape", name, err)
		}
	}

	dup := `{"shapes": [{"id": "x", "kind": "point"}, {"id": "x", "kind": "point"}]}`
	if _, err := LoadScenario(NewKnowledgeBase(), nil, strings.NewReader(dup)); !errors.Is(err, ErrExists) {
		t.Fatalf("duplicate id: got %v, want ErrExists", err)
	}
	if _, err := LoadScenario(NewKnowledgeBase(), nil, strings.NewReader("{")); err == nil {
		t.Fatalf("expected decode error")
	}
}
