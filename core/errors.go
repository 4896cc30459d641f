package core

import (
	"github.com/cockroachdb/errors"

	"github.com/signalsfoundry/geoquery/model"
)

var (
	// ErrUnsupportedShapePair is returned when no rule, exact or approximate,
	// is available for a variant combination, or when the only available rule
	// is a bounding-box approximation and the engine rejects approximations.
	ErrUnsupportedShapePair = errors.New("unsupported shape pair")

	// ErrInvalidArgument is returned for negative horizons, a moving
	// "stationary" operand, or nil shapes.
	ErrInvalidArgument = errors.New("invalid argument")
)

func unsupportedPair(op string, a, b model.Kind) error {
	return errors.Wrapf(ErrUnsupportedShapePair, "%s(%s, %s)", op, a, b)
}

func invalidArgument(op, format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, "%s: "+format, append([]interface{}{op}, args...)...)
}
