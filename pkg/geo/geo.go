// Package geo provides great-circle distance math for proximity search.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371

const (
	// MinRadiusKm and MaxRadiusKm bound the proximity search radius.
	MinRadiusKm = 1
	MaxRadiusKm = 200
)

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the haversine great-circle distance between a and b in
// kilometres. It is symmetric and returns 0 for identical points.
func Distance(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// ClampRadius bounds a requested search radius to [MinRadiusKm, MaxRadiusKm].
func ClampRadius(km float64) float64 {
	if km < MinRadiusKm {
		return MinRadiusKm
	}
	if km > MaxRadiusKm {
		return MaxRadiusKm
	}
	return km
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
