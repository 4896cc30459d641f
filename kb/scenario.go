package kb

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/geodesy"
	"github.com/signalsfoundry/geoquery/model"
)

// Scenario summarises what LoadScenario registered.
type Scenario struct {
	ShapeIDs []string
	// TLEs holds two-line elements for orbital shapes, keyed by shape ID.
	TLEs map[string][2]string
}

// TLE returns the TLE lines for id, or empty strings for non-orbital shapes.
// It matches core.TLEFetcher.
func (s *Scenario) TLE(id string, _ model.Shape) (string, string) {
	if s == nil {
		return "", ""
	}
	lines, ok := s.TLEs[id]
	if !ok {
		return "", ""
	}
	return lines[0], lines[1]
}

// internal JSON shapes, unexported so the format can evolve.
type scenarioJSON struct {
	Shapes []shapeJSON `json:"shapes"`
}

type shapeJSON struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`

	// Exactly one of Position or Geodetic places the frame.
	Position *vectorJSON   `json:"position"`
	Geodetic *geodeticJSON `json:"geodetic"`
	Velocity *vectorJSON   `json:"velocity"`

	Start *vectorJSON `json:"start"`
	End   *vectorJSON `json:"end"`

	Apex       *vectorJSON `json:"apex"`
	Base       *vectorJSON `json:"base"`
	ApexRadius float64     `json:"apex_radius"`
	BaseRadius float64     `json:"base_radius"`

	Size  *vectorJSON     `json:"size"`
	Faces [][]vectorJSON `json:"faces"`

	Radius float64     `json:"radius"`
	Radii  []float64   `json:"radii"`
	Axis   *vectorJSON `json:"axis"`

	TLE []string `json:"tle"`
}

type vectorJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v *vectorJSON) vec() r3.Vector {
	if v == nil {
		return r3.Vector{}
	}
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

type geodeticJSON struct {
	LatDeg float64 `json:"lat_deg"`
	LonDeg float64 `json:"lon_deg"`
	AltKm  float64 `json:"alt_km"`
}

// LoadScenario decodes a JSON shape list from r and registers every shape in
// store. Geodetic positions are converted with conv. Loading stops at the
// first invalid shape.
func LoadScenario(store *KnowledgeBase, conv geodesy.Converter, r io.Reader) (*Scenario, error) {
	if store == nil {
		return nil, errors.New("LoadScenario: store is nil")
	}
	if conv == nil {
		conv = geodesy.WGS84Converter{}
	}

	var payload scenarioJSON
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "LoadScenario: decode failed")
	}

	sc := &Scenario{
		ShapeIDs: make([]string, 0, len(payload.Shapes)),
		TLEs:     make(map[string][2]string),
	}
	for i, raw := range payload.Shapes {
		s, err := raw.build(conv)
		if err != nil {
			return nil, errors.Wrapf(err, "LoadScenario: shape %d (%q)", i, raw.ID)
		}
		if err := store.AddShape(raw.ID, s); err != nil {
			return nil, errors.Wrap(err, "LoadScenario")
		}
		sc.ShapeIDs = append(sc.ShapeIDs, raw.ID)
		switch len(raw.TLE) {
		case 0:
		case 2:
			sc.TLEs[raw.ID] = [2]string{raw.TLE[0], raw.TLE[1]}
		default:
			return nil, errors.Newf("LoadScenario: shape %q has %d TLE lines, want 2", raw.ID, len(raw.TLE))
		}
	}
	return sc, nil
}

func (j shapeJSON) frame(conv geodesy.Converter) model.Frame {
	pos := j.Position.vec()
	if j.Geodetic != nil {
		pos = conv.ToEuclidean(geodesy.FromDegrees(j.Geodetic.LatDeg, j.Geodetic.LonDeg, j.Geodetic.AltKm))
	}
	return model.Moving(pos, j.Velocity.vec())
}

func (j shapeJSON) build(conv geodesy.Converter) (model.Shape, error) {
	f := j.frame(conv)
	switch strings.ToLower(j.Kind) {
	case "point":
		return model.NewPoint(f), nil
	case "segment":
		if j.Start == nil || j.End == nil {
			return nil, errors.Wrap(model.ErrInvalidShape, "segment needs start and end")
		}
		return model.NewSegment(f, j.Start.vec(), j.End.vec()), nil
	case "cone":
		return model.NewCone(f, j.Apex.vec(), j.Base.vec(), j.BaseRadius)
	case "cylinder":
		return model.NewCylinder(f, j.Apex.vec(), j.Base.vec(), j.ApexRadius, j.BaseRadius)
	case "box":
		if j.Size == nil {
			return nil, errors.Wrap(model.ErrInvalidShape, "box needs size")
		}
		return model.NewBox(f, j.Size.vec())
	case "polyhedron":
		faces := make([]model.Face, 0, len(j.Faces))
		for i, loop := range j.Faces {
			vs := make([]r3.Vector, len(loop))
			for k := range loop {
				vs[k] = loop[k].vec()
			}
			face, err := model.NewFace(vs...)
			if err != nil {
				return nil, errors.Wrapf(err, "face %d", i)
			}
			faces = append(faces, face)
		}
		return model.NewPolyhedron(f, faces)
	case "sphere":
		return model.NewSphere(f, j.Radius)
	case "spheroid":
		if len(j.Radii) != 2 {
			return nil, errors.Wrapf(model.ErrInvalidShape, "spheroid needs 2 radii, got %d", len(j.Radii))
		}
		axis := r3.Vector{Z: 1}
		if j.Axis != nil {
			axis = j.Axis.vec()
		}
		return model.NewSpheroid(f, j.Radii[0], j.Radii[1], axis)
	case "ellipsoid":
		if len(j.Radii) != 3 {
			return nil, errors.Wrapf(model.ErrInvalidShape, "ellipsoid needs 3 radii, got %d", len(j.Radii))
		}
		return model.NewAlignedEllipsoid(f, j.Radii[0], j.Radii[1], j.Radii[2])
	default:
		return nil, errors.Wrapf(model.ErrInvalidShape, "unknown kind %q", j.Kind)
	}
}
