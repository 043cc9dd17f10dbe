package geo

import (
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		point     Point
		precision int
		want      string
	}{
		{"seattle", Point{Lat: 47.6062, Lng: -122.3321}, 7, "c23nb62"},
		{"zero precision clamps to 1", Point{Lat: 47.6062, Lng: -122.3321}, 0, "c"},
		{"origin", Point{Lat: 0, Lng: 0}, 5, "s0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.point, tt.precision); got != tt.want {
				t.Errorf("Encode(%+v, %d) = %q, want %q", tt.point, tt.precision, got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	points := []Point{
		{Lat: 47.6062, Lng: -122.3321},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 40.4093, Lng: 49.8671},
	}

	for _, p := range points {
		hash := Encode(p, CacheKeyPrecision)
		decoded := Decode(hash)

		// Precision 7 cells are ~150m, so the decoded center should be
		// within a couple hundred meters of the original point.
		if HaversineDistanceMeters(p, decoded) > 300 {
			t.Errorf("round trip drifted too far: %+v -> %q -> %+v", p, hash, decoded)
		}
	}
}

func TestDecodeBoundsContainsOriginal(t *testing.T) {
	p := Point{Lat: 47.6062, Lng: -122.3321}
	hash := Encode(p, 6)

	bounds := DecodeBounds(hash)
	if !bounds.Contains(p) {
		t.Errorf("bounds %+v should contain original point %+v", bounds, p)
	}
}

func TestSameCellSameKey(t *testing.T) {
	// Two points a few meters apart share a precision-7 cache key.
	p1 := Point{Lat: 47.60620, Lng: -122.33210}
	p2 := Point{Lat: 47.60621, Lng: -122.33211}

	if Encode(p1, CacheKeyPrecision) != Encode(p2, CacheKeyPrecision) {
		t.Error("nearby points should share a cache-key cell")
	}
}
