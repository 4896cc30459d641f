package core

import (
	"github.com/signalsfoundry/geoquery/model"
)

// ClassifyRhumbLineIntersects projects moving along its constant-bearing
// course for horizon time units and reports whether it ends within the
// configured angular tolerance of stationary's centre, or intersects it
// already. Velocity is interpreted in ECEF km per time unit.
func (e *Engine) ClassifyRhumbLineIntersects(moving, stationary model.Shape, horizon float64) (Result, error) {
	res, err := e.classifyRhumb(moving, stationary, horizon)
	e.record(OpRhumbLineIntersects, moving, stationary, res.Tier, err)
	return res, err
}

// RhumbLineIntersects is ClassifyRhumbLineIntersects without the tier.
func (e *Engine) RhumbLineIntersects(moving, stationary model.Shape, horizon float64) (bool, error) {
	res, err := e.ClassifyRhumbLineIntersects(moving, stationary, horizon)
	return res.Value, err
}

func (e *Engine) classifyRhumb(moving, stationary model.Shape, horizon float64) (Result, error) {
	if err := e.checkMotion(OpRhumbLineIntersects, moving, stationary, horizon); err != nil {
		return Result{}, err
	}
	now, err := e.classifyIntersects(moving, stationary)
	if err != nil || now.Value {
		return now, err
	}

	start := e.conv.ToWGS84(moving.Center())
	next := e.conv.ToWGS84(moving.Center().Add(moving.Velocity()))
	target := e.conv.ToWGS84(stationary.Center())

	speed := start.RhumbLineDistance(next)
	projected := start.RhumbDestination(start.RhumbBearing(next), speed*horizon)
	return exact(projected.CentralAngle(target) <= e.cfg.RhumbTolerance), nil
}
