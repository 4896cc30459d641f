// Package conflict scans a shape registry for pairs that intersect now or
// will intersect within a horizon.
package conflict

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/signalsfoundry/geoquery/core"
	"github.com/signalsfoundry/geoquery/internal/logging"
	"github.com/signalsfoundry/geoquery/kb"
)

const tracerName = "github.com/signalsfoundry/geoquery/conflict"

// Scan operation labels.
const (
	OpScan    = "current"
	OpPredict = "predicted"
)

// Store lists the shapes to check. *kb.KnowledgeBase satisfies it.
type Store interface {
	ListShapes() []kb.Record
}

// ScanRecorder receives per-scan metrics. *observability.QueryCollector
// satisfies it.
type ScanRecorder interface {
	ObserveScan(operation string, elapsed time.Duration, conflicts int)
	SetTrackedShapes(n int)
}

// Conflict is a pair of shapes that intersect now. A is always ordered
// before B.
type Conflict struct {
	A, B string
	Tier core.Tier
	// Volume is the shared volume; zero for curves. VolumeKnown is false
	// when the volume could not be answered under the approximation policy.
	Volume      core.Measure
	VolumeKnown bool
}

// Prediction is a pair of shapes that will intersect within Horizon seconds
// under their current velocities.
type Prediction struct {
	A, B    string
	Tier    core.Tier
	Horizon float64
}

// Detector evaluates every pair of registered shapes.
type Detector struct {
	engine  *core.Engine
	store   Store
	workers int
	log     logging.Logger
	metrics ScanRecorder
}

// Option configures a Detector.
type Option func(*Detector)

// WithWorkers bounds the number of pairs evaluated concurrently.
func WithWorkers(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithLogger sets the base logger; each scan adds its own scan_id.
func WithLogger(l logging.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMetrics installs a scan recorder.
func WithMetrics(m ScanRecorder) Option {
	return func(d *Detector) { d.metrics = m }
}

// NewDetector builds a detector over store.
func NewDetector(engine *core.Engine, store Store, opts ...Option) *Detector {
	d := &Detector{
		engine:  engine,
		store:   store,
		workers: runtime.GOMAXPROCS(0),
		log:     logging.Noop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type pair struct {
	a, b kb.Record
}

// pairs returns every unordered pair of records once, in ID order.
func pairs(recs []kb.Record) []pair {
	out := make([]pair, 0, len(recs)*(len(recs)-1)/2)
	for i := range recs {
		for j := i + 1; j < len(recs); j++ {
			out = append(out, pair{a: recs[i], b: recs[j]})
		}
	}
	return out
}

// Scan returns every currently intersecting pair sorted by IDs. Pairs the
// engine cannot answer under its approximation policy are skipped.
func (d *Detector) Scan(ctx context.Context) ([]Conflict, error) {
	var (
		mu  sync.Mutex
		out []Conflict
	)
	err := d.run(ctx, OpScan, func(ctx context.Context, log logging.Logger, p pair) error {
		res, err := d.engine.ClassifyIntersects(p.a.Shape, p.b.Shape)
		if err != nil || !res.Value {
			return err
		}
		c := Conflict{A: p.a.ID, B: p.b.ID, Tier: res.Tier}
		vol, err := d.engine.ClassifyIntersectionVolume(p.a.Shape, p.b.Shape)
		switch {
		case err == nil:
			c.Volume, c.VolumeKnown = vol, true
		case errors.Is(err, core.ErrUnsupportedShapePair):
			log.Debug(ctx, "intersection volume unavailable",
				logging.String("a", p.a.ID), logging.String("b", p.b.ID), logging.Err(err))
		default:
			return err
		}
		mu.Lock()
		out = append(out, c)
		mu.Unlock()
		return nil
	}, func() int { return len(out) })
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return lessPair(out[i].A, out[i].B, out[j].A, out[j].B) })
	return out, nil
}

// Predict returns every pair that intersects within horizon seconds, moving
// both shapes with their own velocities.
func (d *Detector) Predict(ctx context.Context, horizon float64) ([]Prediction, error) {
	if horizon < 0 || horizon != horizon {
		return nil, errors.Wrapf(core.ErrInvalidArgument, "prediction horizon %v", horizon)
	}
	var (
		mu  sync.Mutex
		out []Prediction
	)
	err := d.run(ctx, OpPredict, func(ctx context.Context, _ logging.Logger, p pair) error {
		res, err := d.engine.ClassifyWillIntersectRelative(p.a.Shape, p.b.Shape, horizon)
		if err != nil || !res.Value {
			return err
		}
		mu.Lock()
		out = append(out, Prediction{A: p.a.ID, B: p.b.ID, Tier: res.Tier, Horizon: horizon})
		mu.Unlock()
		return nil
	}, func() int { return len(out) })
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return lessPair(out[i].A, out[i].B, out[j].A, out[j].B) })
	return out, nil
}

type pairFunc func(ctx context.Context, log logging.Logger, p pair) error

// run evaluates fn over every pair with bounded concurrency inside a span.
// found is read after all workers have finished.
func (d *Detector) run(ctx context.Context, op string, fn pairFunc, found func() int) error {
	ctx, log := logging.WithScanLogger(ctx, d.log)
	ctx = logging.ContextWithLogger(ctx, log)
	ctx, span := otel.Tracer(tracerName).Start(ctx, "conflict."+op,
		trace.WithAttributes(
			attribute.String("scan_id", logging.ScanIDFromContext(ctx)),
			attribute.String("operation", op),
		))
	defer span.End()

	start := time.Now()
	recs := d.store.ListShapes()
	todo := pairs(recs)
	span.SetAttributes(attribute.Int("shapes", len(recs)), attribute.Int("pairs", len(todo)))

	var skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, p := range todo {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			err := fn(gctx, log, p)
			if errors.Is(err, core.ErrUnsupportedShapePair) {
				skipped.Add(1)
				return nil
			}
			return errors.Wrapf(err, "%s/%s", p.a.ID, p.b.ID)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn(ctx, "conflict scan aborted", logging.String("operation", op), logging.Err(err))
		return err
	}

	elapsed := time.Since(start)
	n := found()
	span.SetAttributes(attribute.Int("conflicts", n), attribute.Int64("skipped_pairs", skipped.Load()))
	if d.metrics != nil {
		d.metrics.SetTrackedShapes(len(recs))
		d.metrics.ObserveScan(op, elapsed, n)
	}
	log.Info(ctx, "conflict scan finished",
		logging.String("operation", op),
		logging.Int("shapes", len(recs)),
		logging.Int("pairs", len(todo)),
		logging.Int("conflicts", n),
		logging.Int("skipped_pairs", int(skipped.Load())),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

func lessPair(a1, b1, a2, b2 string) bool {
	if a1 != a2 {
		return a1 < a2
	}
	return b1 < b2
}
