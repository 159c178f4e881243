// Package geo provides geolocation utilities for distance estimation
// between patients and care providers.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used for great-circle distance.
const EarthRadiusKm = 6371.0

// Point is a geographic coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsZero reports whether the point is the (0,0) unknown-location sentinel.
// Provider and emergency records default to (0,0) when no coordinate was
// ever captured, so exact zero is reserved as "location unknown".
func (p Point) IsZero() bool {
	return p.Lat == 0 && p.Lng == 0
}

// DistanceKm returns the haversine great-circle distance in kilometers
// between two points.
//
// If either point is the (0,0) sentinel the function returns 0. Callers
// must treat a returned 0 as "distance unknown, do not penalize" rather
// than as co-location; the distance scorer maps 0 to a neutral mid score.
func DistanceKm(a, b Point) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}

	const rad = math.Pi / 180.0
	h := 0.5 - math.Cos((b.Lat-a.Lat)*rad)/2 +
		math.Cos(a.Lat*rad)*math.Cos(b.Lat*rad)*(1-math.Cos((b.Lng-a.Lng)*rad))/2
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}
