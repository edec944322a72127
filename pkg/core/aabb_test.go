package core

import "testing"

func TestAABB_Hit(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		origin    Vec3
		direction Vec3
		expected  bool
	}{
		{"straight through", NewVec3(0, 0, -5), NewVec3(0, 0, 1), true},
		{"miss to the side", NewVec3(3, 0, -5), NewVec3(0, 0, 1), false},
		{"box behind origin", NewVec3(0, 0, 5), NewVec3(0, 0, 1), false},
		{"origin inside", NewVec3(0, 0, 0), NewVec3(1, 0, 0), true},
		{"axis parallel inside slab", NewVec3(0.5, 0.5, -5), NewVec3(0, 0, 1), true},
		{"axis parallel outside slab", NewVec3(1.5, 0.5, -5), NewVec3(0, 0, 1), false},
		{"diagonal", NewVec3(-5, -5, -5), NewVec3(1, 1, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := NewRay(tt.origin, tt.direction)
			if got := box.Hit(ray, 0, 1e9); got != tt.expected {
				t.Errorf("Expected hit=%t, got %t", tt.expected, got)
			}
		})
	}
}

func TestAABB_HitFlatBox(t *testing.T) {
	// Zero thickness along Y, as produced by axis-aligned triangles
	box := NewAABB(NewVec3(-1, 2, -1), NewVec3(1, 2, 1))
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	if !box.Hit(ray, 0, 1e9) {
		t.Error("Expected ray to hit a flat box head on")
	}
}

func TestAABB_HitRespectsTMax(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, 9), NewVec3(1, 1, 11))
	ray := NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, 1))
	if box.Hit(ray, 0, 5) {
		t.Error("Expected no hit when box starts beyond tMax")
	}
	if !box.Hit(ray, 0, 10) {
		t.Error("Expected hit when tMax reaches into the box")
	}
}

func TestAABB_UnionAndSurfaceArea(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(1, 1, 1), NewVec3(2, 2, 2))
	u := a.Union(b)
	if u.Min != NewVec3(0, 0, 0) || u.Max != NewVec3(2, 2, 2) {
		t.Errorf("Unexpected union %v", u)
	}
	if u.SurfaceArea() != 24 {
		t.Errorf("Expected surface area 24, got %f", u.SurfaceArea())
	}
	if EmptyAABB().Union(a) != a {
		t.Error("Expected union with empty box to be identity")
	}
	if EmptyAABB().SurfaceArea() != 0 {
		t.Error("Expected empty box to have zero surface area")
	}
}
