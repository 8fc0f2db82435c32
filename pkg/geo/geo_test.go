package geo

import (
	"math"
	"testing"
)

func TestHaversineKM_ZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 4.6097, Lng: -74.0817}
	if got := HaversineKM(p, p); got != 0 {
		t.Fatalf("expected 0 distance, got %f", got)
	}
}

func TestHaversineKM_KnownDistance(t *testing.T) {
	// Bogota city center to the El Dorado airport area, roughly 12.5km.
	center := Point{Lat: 4.6097, Lng: -74.0817}
	airport := Point{Lat: 4.7016, Lng: -74.1469}

	got := HaversineKM(center, airport)
	if got < 12 || got > 13.5 {
		t.Fatalf("expected ~12.5km, got %f", got)
	}
}

func TestHaversineKM_Symmetric(t *testing.T) {
	a := Point{Lat: 4.60, Lng: -74.08}
	b := Point{Lat: 4.65, Lng: -74.10}

	ab := HaversineKM(a, b)
	ba := HaversineKM(b, a)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %f and %f", ab, ba)
	}
}
