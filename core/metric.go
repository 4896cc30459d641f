package core

import (
	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/geodesy"
	"github.com/signalsfoundry/geoquery/model"
)

const (
	OpGreatCircleDistance = "great_circle_distance"
	OpRhumbLineDistance   = "rhumb_line_distance"
)

// Distances are measured between centres, not between nearest surface
// points.

// Distance returns the Euclidean distance between the centres of a and b.
func (e *Engine) Distance(a, b model.Shape) (float64, error) {
	err := e.checkPair(OpDistance, a, b)
	e.record(OpDistance, a, b, TierExact, err)
	if err != nil {
		return 0, err
	}
	return a.Center().Sub(b.Center()).Norm(), nil
}

// DistanceToPoint returns the Euclidean distance from the centre of s to v.
func (e *Engine) DistanceToPoint(s model.Shape, v r3.Vector) (float64, error) {
	err := e.checkShape(OpDistance, s)
	e.recordPoint(OpDistance, s, err)
	if err != nil {
		return 0, err
	}
	return s.Center().Sub(v).Norm(), nil
}

// GreatCircleDistance returns the geodesic distance in km between the
// centres of a and b, treated as ECEF positions.
func (e *Engine) GreatCircleDistance(a, b model.Shape, mode geodesy.DistanceMode) (float64, error) {
	err := e.checkPair(OpGreatCircleDistance, a, b)
	e.record(OpGreatCircleDistance, a, b, TierExact, err)
	if err != nil {
		return 0, err
	}
	return e.GreatCircleDistanceBetween(a.Center(), b.Center(), mode), nil
}

// GreatCircleDistanceToPoint measures from the centre of s to v.
func (e *Engine) GreatCircleDistanceToPoint(s model.Shape, v r3.Vector, mode geodesy.DistanceMode) (float64, error) {
	err := e.checkShape(OpGreatCircleDistance, s)
	e.recordPoint(OpGreatCircleDistance, s, err)
	if err != nil {
		return 0, err
	}
	return e.GreatCircleDistanceBetween(s.Center(), v, mode), nil
}

// GreatCircleDistanceBetween measures between two ECEF positions.
func (e *Engine) GreatCircleDistanceBetween(v, w r3.Vector, mode geodesy.DistanceMode) float64 {
	return e.conv.ToWGS84(v).GreatCircleDistance(e.conv.ToWGS84(w), mode)
}

// RhumbLineDistance returns the constant-bearing distance in km between the
// centres of a and b.
func (e *Engine) RhumbLineDistance(a, b model.Shape) (float64, error) {
	err := e.checkPair(OpRhumbLineDistance, a, b)
	e.record(OpRhumbLineDistance, a, b, TierExact, err)
	if err != nil {
		return 0, err
	}
	return e.RhumbLineDistanceBetween(a.Center(), b.Center()), nil
}

// RhumbLineDistanceToPoint measures from the centre of s to v.
func (e *Engine) RhumbLineDistanceToPoint(s model.Shape, v r3.Vector) (float64, error) {
	err := e.checkShape(OpRhumbLineDistance, s)
	e.recordPoint(OpRhumbLineDistance, s, err)
	if err != nil {
		return 0, err
	}
	return e.RhumbLineDistanceBetween(s.Center(), v), nil
}

// RhumbLineDistanceBetween measures between two ECEF positions.
func (e *Engine) RhumbLineDistanceBetween(v, w r3.Vector) float64 {
	return e.conv.ToWGS84(v).RhumbLineDistance(e.conv.ToWGS84(w))
}
