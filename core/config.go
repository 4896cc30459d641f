package core

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/s1"
)

// ApproximationPolicy decides whether bounding-box approximations may stand
// in for exact geometry.
type ApproximationPolicy int

const (
	// AllowApproximations answers every supported pair, tagging approximate
	// answers with TierBoundingBox.
	AllowApproximations ApproximationPolicy = iota
	// RejectApproximations fails with ErrUnsupportedShapePair wherever only
	// an approximate answer is available.
	RejectApproximations
)

func (p ApproximationPolicy) String() string {
	if p == RejectApproximations {
		return "reject"
	}
	return "allow"
}

const (
	defaultPrecision = 10
	maxPrecision     = 15
	defaultEpsilon   = 1e-9
)

var defaultRhumbTolerance = 0.01 * s1.Degree

// Config holds the numeric tolerances used by every predicate.
type Config struct {
	// Precision is the number of decimal places kept when cone and cylinder
	// comparisons truncate their operands.
	Precision int
	// Epsilon is the absolute tolerance for plane, line and point tests.
	Epsilon float64
	// Approximations selects how bounding-box fallbacks are treated.
	Approximations ApproximationPolicy
	// RhumbTolerance is the angular error within which a projected rhumb-line
	// position counts as reaching its target.
	RhumbTolerance s1.Angle
}

// DefaultConfig returns the standard tolerances.
func DefaultConfig() Config {
	return Config{
		Precision:      defaultPrecision,
		Epsilon:        defaultEpsilon,
		Approximations: AllowApproximations,
		RhumbTolerance: defaultRhumbTolerance,
	}
}

// ApplyDefaults replaces zero or out-of-range fields with defaults.
func (c Config) ApplyDefaults() Config {
	if c.Precision <= 0 {
		c.Precision = defaultPrecision
	}
	if c.Precision > maxPrecision {
		c.Precision = maxPrecision
	}
	if c.Epsilon <= 0 || math.IsNaN(c.Epsilon) {
		c.Epsilon = defaultEpsilon
	}
	if c.RhumbTolerance <= 0 {
		c.RhumbTolerance = defaultRhumbTolerance
	}
	return c
}

// ConfigFromEnv reads GEOQUERY_PRECISION, GEOQUERY_EPSILON,
// GEOQUERY_APPROXIMATIONS (allow|reject) and GEOQUERY_RHUMB_TOLERANCE_DEG,
// falling back to defaults for unset or malformed values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if raw := os.Getenv("GEOQUERY_PRECISION"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.Precision = v
		}
	}
	if raw := os.Getenv("GEOQUERY_EPSILON"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Epsilon = v
		}
	}
	if strings.EqualFold(os.Getenv("GEOQUERY_APPROXIMATIONS"), "reject") {
		cfg.Approximations = RejectApproximations
	}
	if raw := os.Getenv("GEOQUERY_RHUMB_TOLERANCE_DEG"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.RhumbTolerance = s1.Angle(v) * s1.Degree
		}
	}
	return cfg.ApplyDefaults()
}

// truncate keeps Precision decimal places, rounding toward negative infinity.
func (c Config) truncate(v float64) float64 {
	return math.Floor(v * math.Pow10(c.Precision))
}

// truncatedLE compares a <= b after truncating both operands, which absorbs
// floating error below the configured precision.
func (c Config) truncatedLE(a, b float64) bool {
	return c.truncate(a) <= c.truncate(b)
}
