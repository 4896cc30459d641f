package core

import (
	"math"
	"sort"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

// ClassifyWillIntersect reports whether moving, travelling at its velocity,
// meets stationary at any time in [0, horizon]. Horizon is in the same time
// unit as the velocity.
func (e *Engine) ClassifyWillIntersect(moving, stationary model.Shape, horizon float64) (Result, error) {
	res, err := e.classifyWillIntersect(moving, stationary, horizon)
	e.record(OpWillIntersect, moving, stationary, res.Tier, err)
	return res, err
}

// WillIntersect is ClassifyWillIntersect without the tier.
func (e *Engine) WillIntersect(moving, stationary model.Shape, horizon float64) (bool, error) {
	res, err := e.ClassifyWillIntersect(moving, stationary, horizon)
	return res.Value, err
}

// ClassifyWillIntersectRelative lifts the stationary requirement by moving a
// in the rest frame of b.
func (e *Engine) ClassifyWillIntersectRelative(a, b model.Shape, horizon float64) (Result, error) {
	if err := e.checkPair(OpWillIntersect, a, b); err != nil {
		e.record(OpWillIntersect, a, b, TierExact, err)
		return Result{}, err
	}
	rel := a.Velocity().Sub(b.Velocity())
	return e.ClassifyWillIntersect(a.WithVelocity(rel), b.WithVelocity(r3.Vector{}), horizon)
}

// WillIntersectRelative is ClassifyWillIntersectRelative without the tier.
func (e *Engine) WillIntersectRelative(a, b model.Shape, horizon float64) (bool, error) {
	res, err := e.ClassifyWillIntersectRelative(a, b, horizon)
	return res.Value, err
}

func (e *Engine) checkMotion(op string, moving, stationary model.Shape, horizon float64) error {
	if err := e.checkPair(op, moving, stationary); err != nil {
		return err
	}
	if horizon < 0 || math.IsNaN(horizon) || math.IsInf(horizon, 0) {
		return invalidArgument(op, "horizon %v is not a finite non-negative time", horizon)
	}
	if model.IsMoving(stationary) {
		return invalidArgument(op, "stationary %s has velocity %v", stationary.Kind(), stationary.Velocity())
	}
	return nil
}

func (e *Engine) classifyWillIntersect(moving, stationary model.Shape, horizon float64) (Result, error) {
	if err := e.checkMotion(OpWillIntersect, moving, stationary, horizon); err != nil {
		return Result{}, err
	}
	now, err := e.classifyIntersects(moving, stationary)
	if err != nil || now.Value {
		return now, err
	}
	v := moving.Velocity()
	if v.Norm2() == 0 || horizon == 0 {
		return now, nil
	}
	delta := v.Mul(horizon)

	var res Result
	switch m := moving.(type) {
	case model.Point:
		p := m.Position()
		return e.classifyIntersects(model.NewWorldSegment(p, p.Add(delta)), stationary)
	case model.Segment:
		res = e.sweptSegment(m, delta, stationary)
	case model.Sphere:
		if swept, ok := sweptSphere(e, m, delta, stationary); ok {
			return swept, nil
		}
		res = e.sweptBoxes(moving, stationary, v, horizon)
	default:
		res = e.sweptBoxes(moving, stationary, v, horizon)
	}
	if err := e.admit(OpWillIntersect, moving, stationary, res.Tier); err != nil {
		return Result{}, err
	}
	return res, nil
}

// sweptSegment tests the parallelogram swept by a translating segment. When
// the sweep is degenerate (motion along the segment) the swept edges are
// tested instead.
func (e *Engine) sweptSegment(s model.Segment, delta r3.Vector, stationary model.Shape) Result {
	a, b := s.WorldStart(), s.WorldEnd()
	a2, b2 := a.Add(delta), b.Add(delta)
	if face, err := model.NewFace(a, b, b2, a2); err == nil {
		return e.faceMeets(face, stationary)
	}
	rule := e.table.intersects[model.KindSegment][stationary.Kind()]
	return anyOf(
		rule(e, model.NewWorldSegment(a, a2), stationary),
		rule(e, model.NewWorldSegment(b, b2), stationary),
		rule(e, model.NewWorldSegment(a2, b2), stationary),
	)
}

// sweptSphere handles a sphere moving towards a point or sphere exactly by
// sweeping its centre against the target inflated by the moving radius.
func sweptSphere(e *Engine, m model.Sphere, delta r3.Vector, stationary model.Shape) (Result, bool) {
	c := m.Center()
	switch s := stationary.(type) {
	case model.Point:
		closest := closestOnSegment(c, c.Add(delta), s.Position())
		return exact(closest.Sub(s.Position()).Norm() <= m.Radius()+e.cfg.Epsilon), true
	case model.Sphere:
		closest := closestOnSegment(c, c.Add(delta), s.Center())
		return exact(closest.Sub(s.Center()).Norm() < m.Radius()+s.Radius()), true
	}
	return Result{}, false
}

// sweptBoxes finds, per axis, the time the moving box first reaches the
// stationary box and tests a translated copy of the moving shape at each
// candidate time. Boxes that never meet settle the answer exactly.
func (e *Engine) sweptBoxes(moving, stationary model.Shape, v r3.Vector, horizon float64) Result {
	mb := moving.BoundingBox()
	sb := stationary.BoundingBox().Grow(e.cfg.Epsilon)

	candidates := []float64{0}
	axes := [3][5]float64{
		{mb.A.X, mb.B.X, sb.A.X, sb.B.X, v.X},
		{mb.A.Y, mb.B.Y, sb.A.Y, sb.B.Y, v.Y},
		{mb.A.Z, mb.B.Z, sb.A.Z, sb.B.Z, v.Z},
	}
	for _, ax := range axes {
		lo, hi, slo, shi, speed := ax[0], ax[1], ax[2], ax[3], ax[4]
		var t float64
		switch {
		case speed > 0 && hi < slo:
			t = (slo - hi) / speed
		case speed < 0 && lo > shi:
			t = (shi - lo) / speed
		default:
			continue
		}
		if t <= horizon {
			candidates = append(candidates, t)
		}
	}
	sort.Float64s(candidates)

	for _, t := range candidates {
		shifted := moving.Translated(v.Mul(t))
		if !shifted.BoundingBox().Intersects(sb) {
			continue
		}
		at, _ := e.classifyIntersects(shifted, stationary)
		if at.Value && at.IsExact() {
			return at
		}
		return approximate(true)
	}
	return exact(false)
}
