package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Intersection describes the nearest hit of a ray with a primitive
type Intersection struct {
	T         float64           // Distance along the ray
	Point     core.Vec3         // World-space hit point
	Normal    core.Vec3         // Unit outward surface normal (interpolated for smooth triangles)
	FrontFace bool              // Whether the ray arrived from the outward side
	Material  material.Material // Material at the hit
	U, V      float64           // Barycentric coordinates for triangle hits
}

// FacingNormal returns the normal flipped to face against the incoming ray
func (i Intersection) FacingNormal() core.Vec3 {
	if i.FrontFace {
		return i.Normal
	}
	return i.Normal.Negate()
}
