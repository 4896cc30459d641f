package core

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/model"
)

type (
	pointRule    func(e *Engine, s model.Shape, p r3.Vector) bool
	containsRule func(e *Engine, parent, child model.Shape) Result
	pairRule     func(e *Engine, a, b model.Shape) Result
	volumeRule   func(e *Engine, a, b model.Shape) Measure
)

// dispatcher holds one rule per ordered variant pair for every relation.
// Symmetric relations are registered once per unordered pair.
type dispatcher struct {
	points     [model.KindCount]pointRule
	contains   [model.KindCount][model.KindCount]containsRule
	intersects [model.KindCount][model.KindCount]pairRule
	volume     [model.KindCount][model.KindCount]volumeRule
}

func newDispatcher() *dispatcher {
	d := &dispatcher{}

	d.points[model.KindPoint] = pointOnPoint
	d.points[model.KindSegment] = pointOnSegment
	d.points[model.KindCone] = pointInCone
	d.points[model.KindCylinder] = pointInCylinder
	d.points[model.KindPolyhedron] = pointInPolyhedron
	d.points[model.KindSphere] = pointInSphere
	d.points[model.KindSpheroid] = pointInQuadric
	d.points[model.KindEllipsoid] = pointInQuadric

	for _, parent := range model.Kinds() {
		for _, child := range model.Kinds() {
			d.contains[parent][child] = containsRuleFor(parent, child)
		}
	}

	for _, a := range model.Kinds() {
		for _, b := range model.Kinds() {
			if b < a {
				continue
			}
			d.symmetric(a, b, intersectsRuleFor(a, b))
			d.symmetricVolume(a, b, volumeRuleFor(a, b))
		}
	}

	if err := d.validate(); err != nil {
		panic(err)
	}
	return d
}

// symmetric registers rule for (a, b) and its mirror for (b, a).
func (d *dispatcher) symmetric(a, b model.Kind, rule pairRule) {
	d.intersects[a][b] = rule
	if a != b {
		d.intersects[b][a] = func(e *Engine, x, y model.Shape) Result { return rule(e, y, x) }
	}
}

func (d *dispatcher) symmetricVolume(a, b model.Kind, rule volumeRule) {
	d.volume[a][b] = rule
	if a != b {
		d.volume[b][a] = func(e *Engine, x, y model.Shape) Measure { return rule(e, y, x) }
	}
}

// validate reports every variant pair that has no rule.
func (d *dispatcher) validate() error {
	var missing []string
	for _, a := range model.Kinds() {
		if d.points[a] == nil {
			missing = append(missing, fmt.Sprintf("point-in(%s)", a))
		}
		for _, b := range model.Kinds() {
			if d.contains[a][b] == nil {
				missing = append(missing, fmt.Sprintf("contains(%s, %s)", a, b))
			}
			if d.intersects[a][b] == nil {
				missing = append(missing, fmt.Sprintf("intersects(%s, %s)", a, b))
			}
			if d.volume[a][b] == nil {
				missing = append(missing, fmt.Sprintf("volume(%s, %s)", a, b))
			}
		}
	}
	if len(missing) > 0 {
		return errors.Newf("dispatch table incomplete: %s", strings.Join(missing, ", "))
	}
	return nil
}

func validKind(k model.Kind) bool { return k >= 0 && k < model.KindCount }

func isCurve(k model.Kind) bool { return k == model.KindPoint || k == model.KindSegment }

func isQuadric(k model.Kind) bool {
	return k == model.KindSphere || k == model.KindSpheroid || k == model.KindEllipsoid
}

func containsRuleFor(parent, child model.Kind) containsRule {
	switch {
	case isCurve(parent) && isCurve(child):
		return containsAllKeyPoints
	case isCurve(parent):
		return containsNothing
	case isCurve(child) || child == model.KindPolyhedron:
		// Solids are convex, so holding every vertex holds the hull.
		return containsAllKeyPoints
	case parent == model.KindPolyhedron:
		return polyhedronContainsSolid
	case parent == model.KindSphere && child != model.KindSpheroid && child != model.KindEllipsoid:
		return sphereContainsSolid
	default:
		return containsByBoundingBox
	}
}

func intersectsRuleFor(a, b model.Kind) pairRule {
	switch {
	case a == model.KindPoint:
		return pointMeets
	case a == model.KindSegment && b == model.KindSegment:
		return segmentMeetsSegment
	case a == model.KindSegment && b == model.KindPolyhedron:
		return segmentMeetsPolyhedron
	case a == model.KindSegment && isQuadric(b):
		return segmentMeetsQuadric
	case a == model.KindPolyhedron && b == model.KindPolyhedron:
		return polyhedraOverlap
	case a == model.KindPolyhedron && b == model.KindSphere:
		return polyhedronMeetsSphere
	case a == model.KindSphere && b == model.KindSphere:
		return spheresOverlap
	default:
		return overlapByBoundingBox
	}
}

func volumeRuleFor(a, b model.Kind) volumeRule {
	switch {
	case isCurve(a) || isCurve(b):
		return zeroVolume
	case a == model.KindSphere && b == model.KindSphere:
		return sphereLens
	default:
		return boundingBoxVolume
	}
}
