// Package core answers geometric questions about pairs of shapes:
// containment, intersection, distance, intersection volume and motion
// prediction. An Engine is immutable after construction and safe for
// concurrent use.
package core

import (
	"fmt"

	"github.com/golang/geo/r3"

	"github.com/signalsfoundry/geoquery/geodesy"
	"github.com/signalsfoundry/geoquery/model"
)

// Operation names used for query recording.
const (
	OpContains            = "contains"
	OpIntersects          = "intersects"
	OpIntersectionVolume  = "intersection_volume"
	OpWillIntersect       = "will_intersect"
	OpRhumbLineIntersects = "rhumb_line_intersects"
	OpDistance            = "distance"
)

// QueryRecorder observes every classified query. Implementations must be
// safe for concurrent use.
type QueryRecorder interface {
	RecordQuery(operation, pair, tier string, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordQuery(string, string, string, error) {}

// Engine evaluates predicates through per-relation dispatch tables.
type Engine struct {
	cfg      Config
	conv     geodesy.Converter
	recorder QueryRecorder
	table    *dispatcher
}

// Option configures an Engine.
type Option func(*Engine)

// WithConverter replaces the WGS-84 converter used by geodesic metrics and
// rhumb-line prediction.
func WithConverter(c geodesy.Converter) Option {
	return func(e *Engine) {
		if c != nil {
			e.conv = c
		}
	}
}

// WithRecorder installs a query recorder, typically a metrics collector.
func WithRecorder(r QueryRecorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewEngine builds an engine. Zero config fields take their defaults.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg.ApplyDefaults(),
		conv:     geodesy.WGS84Converter{},
		recorder: noopRecorder{},
		table:    newDispatcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Converter returns the geodetic converter in use.
func (e *Engine) Converter() geodesy.Converter { return e.conv }

func (e *Engine) record(op string, a, b model.Shape, tier Tier, err error) {
	pair := "invalid"
	if a != nil && b != nil {
		pair = fmt.Sprintf("%s/%s", a.Kind(), b.Kind())
	}
	e.recorder.RecordQuery(op, pair, tier.String(), err)
}

// recordPoint records a query between a shape and a bare world point.
func (e *Engine) recordPoint(op string, s model.Shape, err error) {
	pair := "invalid"
	if s != nil {
		pair = fmt.Sprintf("%s/%s", s.Kind(), model.KindPoint)
	}
	e.recorder.RecordQuery(op, pair, TierExact.String(), err)
}

// checkShape validates the operand of a shape-to-point query.
func (e *Engine) checkShape(op string, s model.Shape) error {
	if s == nil {
		return invalidArgument(op, "nil shape")
	}
	if !validKind(s.Kind()) {
		return unsupportedPair(op, s.Kind(), model.KindPoint)
	}
	return nil
}

// checkPair validates operands before a table lookup.
func (e *Engine) checkPair(op string, a, b model.Shape) error {
	if a == nil || b == nil {
		return invalidArgument(op, "nil shape")
	}
	if !validKind(a.Kind()) || !validKind(b.Kind()) {
		return unsupportedPair(op, a.Kind(), b.Kind())
	}
	return nil
}

// admit applies the approximation policy to a rule's answer.
func (e *Engine) admit(op string, a, b model.Shape, tier Tier) error {
	if tier == TierBoundingBox && e.cfg.Approximations == RejectApproximations {
		return unsupportedPair(op, a.Kind(), b.Kind())
	}
	return nil
}

// ClassifyContains reports whether child lies entirely within parent,
// boundary inclusive.
func (e *Engine) ClassifyContains(parent, child model.Shape) (Result, error) {
	res, err := e.classifyContains(parent, child)
	e.record(OpContains, parent, child, res.Tier, err)
	return res, err
}

func (e *Engine) classifyContains(parent, child model.Shape) (Result, error) {
	if err := e.checkPair(OpContains, parent, child); err != nil {
		return Result{}, err
	}
	parent, child = recenter(parent.Position(), parent, child)
	res := e.table.contains[parent.Kind()][child.Kind()](e, parent, child)
	if err := e.admit(OpContains, parent, child, res.Tier); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Contains is ClassifyContains without the tier.
func (e *Engine) Contains(parent, child model.Shape) (bool, error) {
	res, err := e.ClassifyContains(parent, child)
	return res.Value, err
}

// ContainsPoint reports whether the world point v lies in s, boundary
// inclusive. It is always exact.
func (e *Engine) ContainsPoint(s model.Shape, v r3.Vector) (bool, error) {
	err := e.checkShape(OpContains, s)
	e.recordPoint(OpContains, s, err)
	if err != nil {
		return false, err
	}
	origin := s.Position()
	return e.pointIn(s.Translated(origin.Mul(-1)), v.Sub(origin)), nil
}

// ClassifyIntersects reports whether a and b share at least one point. The
// answer does not depend on argument order.
func (e *Engine) ClassifyIntersects(a, b model.Shape) (Result, error) {
	res, err := e.classifyIntersects(a, b)
	e.record(OpIntersects, a, b, res.Tier, err)
	return res, err
}

func (e *Engine) classifyIntersects(a, b model.Shape) (Result, error) {
	if err := e.checkPair(OpIntersects, a, b); err != nil {
		return Result{}, err
	}
	x, y := canonical(a, b)
	x, y = recenter(pairOrigin(x, y), x, y)
	res := e.table.intersects[x.Kind()][y.Kind()](e, x, y)
	if err := e.admit(OpIntersects, a, b, res.Tier); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Intersects is ClassifyIntersects without the tier.
func (e *Engine) Intersects(a, b model.Shape) (bool, error) {
	res, err := e.ClassifyIntersects(a, b)
	return res.Value, err
}

// SegmentIntersection returns a point shared by two segments. Collinear
// overlapping segments report an endpoint of the overlap.
func (e *Engine) SegmentIntersection(a, b model.Segment) (r3.Vector, bool) {
	return segmentsMeet(a.WorldStart(), a.WorldEnd(), b.WorldStart(), b.WorldEnd(), e.cfg.Epsilon)
}

// canonical orders same-variant operands deterministically so symmetric
// rules see identical inputs whichever way they are called.
func canonical(a, b model.Shape) (model.Shape, model.Shape) {
	if a.Kind() != b.Kind() {
		return a, b
	}
	if c := a.Center().Cmp(b.Center()); c != 0 {
		return order(a, b, c)
	}
	ka, kb := keyPoints(a), keyPoints(b)
	for i := 0; i < len(ka) && i < len(kb); i++ {
		if c := ka[i].Cmp(kb[i]); c != 0 {
			return order(a, b, c)
		}
	}
	return order(a, b, len(ka)-len(kb))
}

// recenter moves both shapes by -origin. Containment and intersection are
// translation invariant, and near the origin the truncated comparisons see
// no cancellation error from ECEF-scale coordinates.
func recenter(origin r3.Vector, a, b model.Shape) (model.Shape, model.Shape) {
	if origin == (r3.Vector{}) {
		return a, b
	}
	delta := origin.Mul(-1)
	return a.Translated(delta), b.Translated(delta)
}

// pairOrigin picks the recentring origin independently of argument order.
func pairOrigin(a, b model.Shape) r3.Vector {
	if b.Kind() < a.Kind() {
		return b.Position()
	}
	return a.Position()
}

func order(a, b model.Shape, cmp int) (model.Shape, model.Shape) {
	if cmp > 0 {
		return b, a
	}
	return a, b
}
