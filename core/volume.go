package core

import (
	"math"

	"github.com/signalsfoundry/geoquery/model"
)

// ClassifyIntersectionVolume returns the volume shared by two shapes:
//
//  1. shapes that do not intersect share nothing;
//  2. points and segments have no volume;
//  3. when one shape contains the other the inner volume is returned;
//  4. two spheres use the closed-form lens;
//  5. anything else uses the overlap of the bounding boxes, capped at the
//     smaller volume, and is tagged approximate.
func (e *Engine) ClassifyIntersectionVolume(a, b model.Shape) (Measure, error) {
	m, err := e.classifyVolume(a, b)
	e.record(OpIntersectionVolume, a, b, m.Tier, err)
	return m, err
}

// IntersectionVolume is ClassifyIntersectionVolume without the tier.
func (e *Engine) IntersectionVolume(a, b model.Shape) (float64, error) {
	m, err := e.ClassifyIntersectionVolume(a, b)
	return m.Value, err
}

func (e *Engine) classifyVolume(a, b model.Shape) (Measure, error) {
	if err := e.checkPair(OpIntersectionVolume, a, b); err != nil {
		return Measure{}, err
	}
	x, y := canonical(a, b)
	x, y = recenter(pairOrigin(x, y), x, y)

	meet, err := e.classifyIntersects(x, y)
	if err != nil {
		return Measure{}, err
	}
	if !meet.Value {
		return Measure{Value: 0, Tier: meet.Tier}, nil
	}
	if isCurve(x.Kind()) || isCurve(y.Kind()) {
		return Measure{Value: 0, Tier: TierExact}, nil
	}

	for _, p := range [][2]model.Shape{{x, y}, {y, x}} {
		outer, inner := p[0], p[1]
		in := e.table.contains[outer.Kind()][inner.Kind()](e, outer, inner)
		if !in.Value || e.admit(OpIntersectionVolume, outer, inner, in.Tier) != nil {
			continue
		}
		return Measure{Value: math.Min(volumeOf(inner), volumeOf(outer)), Tier: in.Tier}, nil
	}

	m := e.table.volume[x.Kind()][y.Kind()](e, x, y)
	if err := e.admit(OpIntersectionVolume, a, b, m.Tier); err != nil {
		return Measure{}, err
	}
	return m, nil
}

func volumeOf(s model.Shape) float64 {
	if solid, ok := s.(model.Solid); ok {
		return solid.Volume()
	}
	return 0
}

func zeroVolume(*Engine, model.Shape, model.Shape) Measure {
	return Measure{Value: 0, Tier: TierExact}
}

// sphereLens is the volume of the lens shared by two partially overlapping
// spheres at centre distance d.
func sphereLens(_ *Engine, a, b model.Shape) Measure {
	sa, sb := a.(model.Sphere), b.(model.Sphere)
	r1, r2 := sa.Radius(), sb.Radius()
	d := sa.Center().Sub(sb.Center()).Norm()
	switch {
	case d >= r1+r2:
		return Measure{Value: 0, Tier: TierExact}
	case d <= math.Abs(r1-r2):
		return Measure{Value: math.Min(sa.Volume(), sb.Volume()), Tier: TierExact}
	}
	sum, diff := r1+r2, r1-r2
	v := math.Pi * (sum - d) * (sum - d) * (d*d + 2*d*sum - 3*diff*diff) / (12 * d)
	return Measure{Value: v, Tier: TierExact}
}

func boundingBoxVolume(_ *Engine, a, b model.Shape) Measure {
	box, ok := a.BoundingBox().Intersection(b.BoundingBox())
	if !ok {
		return Measure{Value: 0, Tier: TierExact}
	}
	v := math.Min(box.Volume(), math.Min(volumeOf(a), volumeOf(b)))
	return Measure{Value: v, Tier: TierBoundingBox}
}
