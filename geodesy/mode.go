package geodesy

import "fmt"

type modeKind int

const (
	modeSeaLevel modeKind = iota
	modeAtAltitude
	modeCoordinateAltitude
)

// DistanceMode selects the radius used by great-circle formulas. The zero
// value is SeaLevel.
type DistanceMode struct {
	kind       modeKind
	altitudeKm float64
}

// SeaLevel measures on the ellipsoid surface.
func SeaLevel() DistanceMode { return DistanceMode{kind: modeSeaLevel} }

// AtAltitude measures on a shell km above the ellipsoid surface.
func AtAltitude(km float64) DistanceMode {
	return DistanceMode{kind: modeAtAltitude, altitudeKm: km}
}

// AtCoordinateAltitude measures on a shell at the mean altitude of the two
// coordinates being compared.
func AtCoordinateAltitude() DistanceMode { return DistanceMode{kind: modeCoordinateAltitude} }

// AltitudeKm returns the fixed altitude of an AtAltitude mode, else zero.
func (m DistanceMode) AltitudeKm() float64 { return m.altitudeKm }

func (m DistanceMode) String() string {
	switch m.kind {
	case modeAtAltitude:
		return fmt.Sprintf("at_altitude(%gkm)", m.altitudeKm)
	case modeCoordinateAltitude:
		return "at_coordinate_altitude"
	default:
		return "sea_level"
	}
}

// radius is the geocentric ellipsoid radius at the mid-latitude of a and b,
// raised by the altitude the mode implies.
func (m DistanceMode) radius(a, b GeodeticCoord) float64 {
	base := LocalRadius((a.Latitude + b.Latitude) / 2)
	switch m.kind {
	case modeAtAltitude:
		return base + m.altitudeKm
	case modeCoordinateAltitude:
		return base + (a.AltitudeKm+b.AltitudeKm)/2
	default:
		return base
	}
}
