// Package geodesy measures distances over the WGS-84 earth model and converts
// between Euclidean (ECEF, kilometres) vectors and geodetic coordinates.
package geodesy

import (
	"fmt"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	// EarthRadiusKm is the mean Earth radius.
	EarthRadiusKm = 6371.0

	// WGS84SemiMajorKm is the equatorial radius of the WGS-84 ellipsoid.
	WGS84SemiMajorKm = 6378.137
	// WGS84Flattening is the WGS-84 flattening.
	WGS84Flattening = 1 / 298.257223563
	// WGS84SemiMinorKm is the polar radius of the WGS-84 ellipsoid.
	WGS84SemiMinorKm = WGS84SemiMajorKm * (1 - WGS84Flattening)

	wgs84E2 = WGS84Flattening * (2 - WGS84Flattening)

	// poleEpsilon keeps Mercator-style terms finite at the poles.
	poleEpsilon = 1e-12
)

// GeodeticCoord is a WGS-84 geodetic position.
type GeodeticCoord struct {
	Latitude   s1.Angle
	Longitude  s1.Angle
	AltitudeKm float64
}

// FromDegrees builds a coordinate from degrees and an altitude in km.
func FromDegrees(latDeg, lngDeg, altitudeKm float64) GeodeticCoord {
	return GeodeticCoord{
		Latitude:   s1.Angle(latDeg) * s1.Degree,
		Longitude:  s1.Angle(lngDeg) * s1.Degree,
		AltitudeKm: altitudeKm,
	}
}

// LatLng drops the altitude.
func (c GeodeticCoord) LatLng() s2.LatLng {
	return s2.LatLng{Lat: c.Latitude, Lng: c.Longitude}
}

func (c GeodeticCoord) String() string {
	return fmt.Sprintf("(%.6f°, %.6f°, %.3f km)", c.Latitude.Degrees(), c.Longitude.Degrees(), c.AltitudeKm)
}

// CentralAngle returns the angle subtended at the earth's centre.
func (c GeodeticCoord) CentralAngle(o GeodeticCoord) s1.Angle {
	return c.LatLng().Distance(o.LatLng())
}

// GreatCircleDistance returns the shortest-path distance in km over a sphere
// whose radius is chosen by mode.
func (c GeodeticCoord) GreatCircleDistance(o GeodeticCoord, mode DistanceMode) float64 {
	return c.CentralAngle(o).Radians() * mode.radius(c, o)
}

// RhumbLineDistance returns the constant-bearing distance in km over the
// mean-radius sphere.
func (c GeodeticCoord) RhumbLineDistance(o GeodeticCoord) float64 {
	dPhi, q, dLambda := rhumbTerms(c, o)
	return math.Hypot(dPhi, q*dLambda) * EarthRadiusKm
}

// RhumbBearing returns the constant compass bearing from c to o, in [0, 2π).
func (c GeodeticCoord) RhumbBearing(o GeodeticCoord) s1.Angle {
	_, _, dLambda := rhumbTerms(c, o)
	dPsi := mercatorDelta(c.Latitude.Radians(), o.Latitude.Radians())
	return normalizeBearing(s1.Angle(math.Atan2(dLambda, dPsi)))
}

// RhumbDestination follows a rhumb line from c for distanceKm at bearing.
// Altitude is carried over unchanged.
func (c GeodeticCoord) RhumbDestination(bearing s1.Angle, distanceKm float64) GeodeticCoord {
	delta := distanceKm / EarthRadiusKm
	phi1 := c.Latitude.Radians()
	theta := bearing.Radians()

	dPhi := delta * math.Cos(theta)
	phi2 := phi1 + dPhi
	if math.Abs(phi2) > math.Pi/2 {
		// Crossing a pole folds the latitude back.
		phi2 = math.Copysign(math.Pi, phi2) - phi2
	}
	dPsi := mercatorDelta(phi1, phi2)
	q := math.Cos(phi1)
	if math.Abs(dPsi) > poleEpsilon {
		q = (phi2 - phi1) / dPsi
	}
	var dLambda float64
	if math.Abs(q) > poleEpsilon {
		dLambda = delta * math.Sin(theta) / q
	}
	return GeodeticCoord{
		Latitude:   s1.Angle(phi2),
		Longitude:  normalizeLongitude(c.Longitude + s1.Angle(dLambda)),
		AltitudeKm: c.AltitudeKm,
	}
}

// LocalRadius returns the geocentric radius of the WGS-84 ellipsoid at lat.
func LocalRadius(lat s1.Angle) float64 {
	a, b := WGS84SemiMajorKm, WGS84SemiMinorKm
	cos, sin := math.Cos(lat.Radians()), math.Sin(lat.Radians())
	num := (a*a*cos)*(a*a*cos) + (b*b*sin)*(b*b*sin)
	den := (a*cos)*(a*cos) + (b*sin)*(b*sin)
	return math.Sqrt(num / den)
}

// rhumbTerms returns Δφ, the stretch factor q and the wrapped Δλ.
func rhumbTerms(a, b GeodeticCoord) (dPhi, q, dLambda float64) {
	phi1, phi2 := a.Latitude.Radians(), b.Latitude.Radians()
	dPhi = phi2 - phi1
	dPsi := mercatorDelta(phi1, phi2)
	q = math.Cos(phi1)
	if math.Abs(dPsi) > poleEpsilon {
		q = dPhi / dPsi
	}
	dLambda = normalizeLongitude(b.Longitude - a.Longitude).Radians()
	return dPhi, q, dLambda
}

// mercatorDelta is the difference in isometric latitude between phi1 and phi2.
func mercatorDelta(phi1, phi2 float64) float64 {
	clamp := func(phi float64) float64 {
		limit := math.Pi/2 - poleEpsilon
		return math.Max(-limit, math.Min(limit, phi))
	}
	return math.Log(math.Tan(math.Pi/4+clamp(phi2)/2) / math.Tan(math.Pi/4+clamp(phi1)/2))
}

func normalizeLongitude(a s1.Angle) s1.Angle {
	r := math.Remainder(a.Radians(), 2*math.Pi)
	if r == -math.Pi {
		r = math.Pi
	}
	return s1.Angle(r)
}

func normalizeBearing(a s1.Angle) s1.Angle {
	r := math.Mod(a.Radians(), 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return s1.Angle(r)
}
