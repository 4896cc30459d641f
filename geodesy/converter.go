package geodesy

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	satellite "github.com/joshuaferrara/go-satellite"
)

// Converter maps between the Euclidean frame used by shapes and geodetic
// coordinates.
type Converter interface {
	ToWGS84(v r3.Vector) GeodeticCoord
	ToEuclidean(c GeodeticCoord) r3.Vector
}

// WGS84Converter treats Euclidean vectors as ECEF positions in kilometres.
type WGS84Converter struct{}

var _ Converter = WGS84Converter{}

// ToWGS84 converts an ECEF position to geodetic coordinates. go-satellite's
// ECI conversion is used with a zero sidereal angle, which makes the ECI and
// ECEF frames coincide.
func (WGS84Converter) ToWGS84(v r3.Vector) GeodeticCoord {
	rho := math.Hypot(v.X, v.Y)
	if rho < 1e-9 {
		// On the polar axis the iterative solution divides by cos(lat).
		lat := s1.Angle(math.Copysign(math.Pi/2, v.Z))
		return GeodeticCoord{Latitude: lat, AltitudeKm: math.Abs(v.Z) - WGS84SemiMinorKm}
	}
	alt, _, ll := satellite.ECIToLLA(satellite.Vector3{X: v.X, Y: v.Y, Z: v.Z}, 0)
	return GeodeticCoord{
		Latitude:   s1.Angle(ll.Latitude),
		Longitude:  normalizeLongitude(s1.Angle(ll.Longitude)),
		AltitudeKm: alt,
	}
}

// ToEuclidean converts geodetic coordinates to an ECEF position in km.
func (WGS84Converter) ToEuclidean(c GeodeticCoord) r3.Vector {
	phi, lambda := c.Latitude.Radians(), c.Longitude.Radians()
	sinPhi := math.Sin(phi)
	n := WGS84SemiMajorKm / math.Sqrt(1-wgs84E2*sinPhi*sinPhi)
	return r3.Vector{
		X: (n + c.AltitudeKm) * math.Cos(phi) * math.Cos(lambda),
		Y: (n + c.AltitudeKm) * math.Cos(phi) * math.Sin(lambda),
		Z: (n*(1-wgs84E2) + c.AltitudeKm) * sinPhi,
	}
}
