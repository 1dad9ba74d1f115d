// Package geo provides pure great-circle math over latitude/longitude pairs.
// All functions are deterministic and perform no I/O. Inputs are assumed to
// be valid coordinates; callers validate via domain.GeoPoint.Validate before
// invoking.
package geo

import (
	"math"

	"github.com/antu/logistics-system/internal/core/domain"
)

const (
	earthRadiusKm = 6371.0
	degToRad      = math.Pi / 180
)

// DistanceKm returns the haversine distance between two points in kilometers,
// rounded to 2 decimal places (half up). Identical points yield 0.
func DistanceKm(a, b domain.GeoPoint) float64 {
	return roundHalfUp(distanceKm(a, b), 2)
}

// DistanceMeters returns the unrounded haversine distance in meters.
func DistanceMeters(a, b domain.GeoPoint) float64 {
	return distanceKm(a, b) * 1000
}

// WithinRadius reports whether b lies within radiusMeters of a.
func WithinRadius(a, b domain.GeoPoint, radiusMeters float64) bool {
	return DistanceMeters(a, b) <= radiusMeters
}

// Bearing returns the initial great-circle bearing from a to b in degrees,
// normalized to [0, 360).
func Bearing(a, b domain.GeoPoint) float64 {
	lat1 := a.Latitude * degToRad
	lat2 := b.Latitude * degToRad
	dLon := (b.Longitude - a.Longitude) * degToRad

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) / degToRad
	return math.Mod(deg+360, 360)
}

// DistanceToRouteMeters returns the minimum distance in meters from point p
// to the polyline described by route. A single-waypoint route degenerates to
// the point distance. An empty route yields 0; callers treat a missing route
// as "deviation unavailable" before calling.
func DistanceToRouteMeters(p domain.GeoPoint, route domain.Route) float64 {
	switch len(route) {
	case 0:
		return 0
	case 1:
		return DistanceMeters(p, route[0])
	}

	min := math.Inf(1)
	for i := 1; i < len(route); i++ {
		if d := distanceToSegmentMeters(p, route[i-1], route[i]); d < min {
			min = d
		}
	}
	return min
}

func distanceKm(a, b domain.GeoPoint) float64 {
	dLat := (b.Latitude - a.Latitude) * degToRad
	dLon := (b.Longitude - a.Longitude) * degToRad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*degToRad)*math.Cos(b.Latitude*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// distanceToSegmentMeters computes the distance from p to the great-circle
// segment a-b, using the cross-track distance clamped to the segment's
// endpoints when the perpendicular foot falls outside it.
func distanceToSegmentMeters(p, a, b domain.GeoPoint) float64 {
	segmentKm := distanceKm(a, b)
	if segmentKm == 0 {
		return DistanceMeters(p, a)
	}

	d13 := distanceKm(a, p) / earthRadiusKm
	theta13 := Bearing(a, p) * degToRad
	theta12 := Bearing(a, b) * degToRad

	crossTrack := math.Asin(math.Sin(d13) * math.Sin(theta13-theta12))
	alongTrack := math.Acos(clamp(math.Cos(d13)/math.Cos(crossTrack), -1, 1)) * earthRadiusKm

	// Perpendicular foot before a or past b: nearest point is the endpoint.
	if math.Cos(theta13-theta12) < 0 {
		return DistanceMeters(p, a)
	}
	if alongTrack > segmentKm {
		return DistanceMeters(p, b)
	}
	return math.Abs(crossTrack) * earthRadiusKm * 1000
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundHalfUp rounds v to the given number of decimal places with ties going
// away from zero, matching how stored distances are quantized.
func roundHalfUp(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5) / scale
}
