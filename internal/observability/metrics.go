package observability

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/geoquery/core"
)

// Error reasons used for the geoquery_query_errors_total label.
const (
	ReasonUnsupportedShapePair = "unsupported_shape_pair"
	ReasonInvalidArgument      = "invalid_argument"
	ReasonOther                = "other"
)

// QueryCollector bundles Prometheus metrics for the query engine and the
// conflict detector. It implements core.QueryRecorder.
type QueryCollector struct {
	gatherer prometheus.Gatherer

	Queries       *prometheus.CounterVec
	QueryErrors   *prometheus.CounterVec
	ScanDurations *prometheus.HistogramVec
	TrackedShapes prometheus.Gauge
	Conflicts     *prometheus.GaugeVec
}

var _ core.QueryRecorder = (*QueryCollector)(nil)

// NewQueryCollector registers query metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewQueryCollector(reg prometheus.Registerer) (*QueryCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	queries, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoquery_queries_total",
		Help: "Answered geometric queries, labeled by operation, ordered shape kind pair, and answer tier.",
	}, []string{"operation", "pair", "tier"}), "geoquery_queries_total")
	if err != nil {
		return nil, err
	}

	queryErrors, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoquery_query_errors_total",
		Help: "Failed geometric queries, labeled by operation and reason.",
	}, []string{"operation", "reason"}), "geoquery_query_errors_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoquery_scan_duration_seconds",
		Help:    "Duration of conflict scans and predictions in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"}), "geoquery_scan_duration_seconds")
	if err != nil {
		return nil, err
	}

	tracked, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geoquery_tracked_shapes",
		Help: "Number of shapes in the registry at the last scan.",
	}), "geoquery_tracked_shapes")
	if err != nil {
		return nil, err
	}

	conflicts, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geoquery_conflicts",
		Help: "Conflicting pairs found by the last scan, labeled current or predicted.",
	}, []string{"kind"}), "geoquery_conflicts")
	if err != nil {
		return nil, err
	}

	return &QueryCollector{
		gatherer:      gatherer,
		Queries:       queries,
		QueryErrors:   queryErrors,
		ScanDurations: durations,
		TrackedShapes: tracked,
		Conflicts:     conflicts,
	}, nil
}

// RecordQuery counts one query outcome.
func (c *QueryCollector) RecordQuery(operation, pair, tier string, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.QueryErrors.WithLabelValues(operation, ErrorReason(err)).Inc()
		return
	}
	c.Queries.WithLabelValues(operation, pair, tier).Inc()
}

// ObserveScan records how long a conflict scan or prediction took and how
// many conflicts it found.
func (c *QueryCollector) ObserveScan(operation string, elapsed time.Duration, conflicts int) {
	if c == nil {
		return
	}
	c.ScanDurations.WithLabelValues(operation).Observe(elapsed.Seconds())
	c.Conflicts.WithLabelValues(operation).Set(float64(conflicts))
}

// SetTrackedShapes sets the registry size gauge.
func (c *QueryCollector) SetTrackedShapes(n int) {
	if c == nil {
		return
	}
	c.TrackedShapes.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *QueryCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// ErrorReason maps an engine error to a low-cardinality label value.
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, core.ErrUnsupportedShapePair):
		return ReasonUnsupportedShapePair
	case errors.Is(err, core.ErrInvalidArgument):
		return ReasonInvalidArgument
	default:
		return ReasonOther
	}
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, errors.Newf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, errors.Newf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, errors.Newf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, errors.Newf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
