package observability

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/geoquery/core"
	"github.com/signalsfoundry/geoquery/internal/logging"
)

const defaultOTLPEndpoint = "localhost:4317"

// TracingConfig governs how conflict-scan tracing is initialised.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Exporter    string // stdout | otlp
	Endpoint    string // used when Exporter == otlp
	SampleRatio float64

	// Output receives stdout exporter spans; nil means os.Stdout.
	Output io.Writer
	// Attributes are added to the trace resource, typically EngineAttributes.
	Attributes []attribute.KeyValue
}

// TracingConfigFromEnv reads GEOQUERY_TRACING_ENABLED,
// GEOQUERY_TRACING_EXPORTER, GEOQUERY_TRACING_SERVICE_NAME,
// GEOQUERY_TRACING_SAMPLE_RATIO and GEOQUERY_OTLP_ENDPOINT.
func TracingConfigFromEnv() TracingConfig {
	cfg := TracingConfig{
		Enabled:     strings.EqualFold(os.Getenv("GEOQUERY_TRACING_ENABLED"), "true"),
		ServiceName: envOr("GEOQUERY_TRACING_SERVICE_NAME", "geoquery"),
		Exporter:    strings.ToLower(envOr("GEOQUERY_TRACING_EXPORTER", "stdout")),
		Endpoint:    envOr("GEOQUERY_OTLP_ENDPOINT", defaultOTLPEndpoint),
		SampleRatio: 1,
	}
	if raw := os.Getenv("GEOQUERY_TRACING_SAMPLE_RATIO"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 && v <= 1 {
			cfg.SampleRatio = v
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EngineAttributes describes the engine tolerances so traces from runs with
// different precision or approximation policy can be told apart.
func EngineAttributes(cfg core.Config) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("geoquery.precision", cfg.Precision),
		attribute.Float64("geoquery.epsilon", cfg.Epsilon),
		attribute.String("geoquery.approximations", cfg.Approximations.String()),
		attribute.Float64("geoquery.rhumb_tolerance_deg", cfg.RhumbTolerance.Degrees()),
	}
}

// InitTracing installs the global tracer provider used by conflict scans and
// returns a shutdown function that flushes pending spans. Disabled tracing
// installs a noop provider.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		log.Info(ctx, "tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	tp, err := newTracerProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)

	log.Info(ctx, "tracing enabled",
		logging.String("exporter", cfg.Exporter),
		logging.String("service_name", cfg.ServiceName),
		logging.Float64("sample_ratio", cfg.SampleRatio),
	)
	return tp.Shutdown, nil
}

func newTracerProvider(ctx context.Context, cfg TracingConfig) (*sdktrace.TracerProvider, error) {
	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	attrs := append([]attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.namespace", "geoquery"),
	}, cfg.Attributes...)
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, errors.Wrap(err, "create trace resource")
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithSampler(samplerFor(cfg.SampleRatio)),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

// samplerFor keeps the sampling decision of a parent span and samples root
// spans, one per conflict scan, at ratio.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Exporter) {
	case "stdout", "":
		out := cfg.Output
		if out == nil {
			out = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithoutTimestamps())
	case "otlp", "otlpgrpc":
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		))
	default:
		return nil, errors.Newf("unsupported tracing exporter %q", cfg.Exporter)
	}
}

// ShutdownWithTimeout flushes tracing within five seconds, logging rather
// than returning a failure.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
