package core

import (
	"math"
	"testing"

	"github.com/golang/geo/s1"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{Precision: 40, Epsilon: math.NaN()}.ApplyDefaults()
	if cfg.Precision != maxPrecision {
		t.Fatalf("Precision = %d, want %d", cfg.Precision, maxPrecision)
	}
	if cfg.Epsilon != defaultEpsilon {
		t.Fatalf("Epsilon = %v, want %v", cfg.Epsilon, defaultEpsilon)
	}
	if cfg.RhumbTolerance != defaultRhumbTolerance {
		t.Fatalf("RhumbTolerance = %v, want %v", cfg.RhumbTolerance, defaultRhumbTolerance)
	}
	if got := (Config{}).ApplyDefaults(); got != DefaultConfig() {
		t.Fatalf("zero config defaults = %+v, want %+v", got, DefaultConfig())
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("GEOQUERY_PRECISION", "6")
	t.Setenv("GEOQUERY_EPSILON", "1e-6")
	t.Setenv("GEOQUERY_APPROXIMATIONS", "Reject")
	t.Setenv("GEOQUERY_RHUMB_TOLERANCE_DEG", "0.5")

	cfg := ConfigFromEnv()
	if cfg.Precision != 6 || cfg.Epsilon != 1e-6 || cfg.Approximations != RejectApproximations {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if math.Abs((cfg.RhumbTolerance - 0.5*s1.Degree).Degrees()) > 1e-12 {
		t.Fatalf("RhumbTolerance = %v, want 0.5 deg", cfg.RhumbTolerance.Degrees())
	}
}

func TestConfigFromEnv_IgnoresGarbage(t *testing.T) {
	t.Setenv("GEOQUERY_PRECISION", "many")
	t.Setenv("GEOQUERY_EPSILON", "")
	t.Setenv("GEOQUERY_APPROXIMATIONS", "sometimes")
	if got := ConfigFromEnv(); got != DefaultConfig() {
		t.Fatalf("garbage env produced %+v", got)
	}
}

func TestTruncated_Comparison(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.truncatedLE(0.46364760900080615, 0.4636476090008061) {
		t.Fatalf("values equal to 10 places should compare as equal")
	}
	if cfg.truncatedLE(0.4636476091, 0.4636476090) {
		t.Fatalf("difference at the 10th place must be visible")
	}
}
