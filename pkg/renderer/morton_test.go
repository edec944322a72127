package renderer

import (
	"image"
	"testing"
)

func TestMortonEncode(t *testing.T) {
	tests := []struct {
		x, y     uint32
		expected uint64
	}{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{2, 0, 4},
		{3, 3, 15},
		{0xffffffff, 0, 0x5555555555555555},
		{0, 0xffffffff, 0xaaaaaaaaaaaaaaaa},
	}

	for _, tt := range tests {
		if got := MortonEncode(tt.x, tt.y); got != tt.expected {
			t.Errorf("MortonEncode(%d, %d): expected %#x, got %#x", tt.x, tt.y, tt.expected, got)
		}
		x, y := MortonDecode(tt.expected)
		if x != tt.x || y != tt.y {
			t.Errorf("MortonDecode(%#x): expected (%d, %d), got (%d, %d)", tt.expected, tt.x, tt.y, x, y)
		}
	}
}

func TestMortonOrder(t *testing.T) {
	points := MortonOrder(image.Rect(10, 20, 14, 24))
	prefix := []image.Point{{10, 20}, {11, 20}, {10, 21}, {11, 21}, {12, 20}}
	for i, p := range prefix {
		if points[i] != p {
			t.Errorf("Point %d: expected %v, got %v", i, p, points[i])
		}
	}

	// Non power-of-two bounds still cover every point once
	bounds := image.Rect(0, 0, 5, 3)
	seen := map[image.Point]bool{}
	for _, p := range MortonOrder(bounds) {
		if !p.In(bounds) || seen[p] {
			t.Fatalf("Unexpected point %v", p)
		}
		seen[p] = true
	}
	if len(seen) != 15 {
		t.Errorf("Expected 15 points, got %d", len(seen))
	}
}
