package geo_test

import (
	"math"
	"testing"

	"github.com/agriconnect-ug/agriconnect/pkg/geo"
)

var (
	kampala = geo.Point{Lat: 0.3476, Lng: 32.5825}
	mbale   = geo.Point{Lat: 1.0784, Lng: 34.1754}
	gulu    = geo.Point{Lat: 2.7746, Lng: 32.2990}
)

func TestDistanceIdenticalPointsIsZero(t *testing.T) {
	if d := geo.Distance(geo.Point{}, geo.Point{}); d != 0 {
		t.Errorf("expected 0 for origin to itself, got %f", d)
	}
	if d := geo.Distance(kampala, kampala); d != 0 {
		t.Errorf("expected 0 for Kampala to itself, got %f", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	ab := geo.Distance(kampala, mbale)
	ba := geo.Distance(mbale, kampala)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("distance not symmetric: %f vs %f", ab, ba)
	}
}

func TestDistanceKnownPairs(t *testing.T) {
	// Kampala–Mbale is roughly 195 km by great circle.
	if d := geo.Distance(kampala, mbale); d < 180 || d > 210 {
		t.Errorf("Kampala-Mbale distance out of range: %f", d)
	}
	// Kampala–Gulu is roughly 272 km.
	if d := geo.Distance(kampala, gulu); d < 255 || d > 290 {
		t.Errorf("Kampala-Gulu distance out of range: %f", d)
	}
}

func TestClampRadius(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 1},
		{-10, 1},
		{1, 1},
		{25, 25},
		{200, 200},
		{500, 200},
	}
	for _, c := range cases {
		if got := geo.ClampRadius(c.in); got != c.want {
			t.Errorf("ClampRadius(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
