package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// planeEpsilon is the minimum hit distance on a plane, suppressing self-intersection
const planeEpsilon = 1e-4

// Plane is the infinite plane dot(Normal, p) + D = 0
type Plane struct {
	Normal   core.Vec3
	D        float64
	Material material.Material
}

// NewPlane creates a plane through point with the given normal
func NewPlane(point, normal core.Vec3, mat material.Material) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, D: -n.Dot(point), Material: mat}
}

// NewPlaneFromOffset creates a plane from a normal and signed offset d.
// The normal is normalized and d rescaled to match.
func NewPlaneFromOffset(normal core.Vec3, d float64, mat material.Material) Plane {
	length := normal.Length()
	if length == 0 {
		return Plane{Material: mat}
	}
	return Plane{Normal: normal.Multiply(1 / length), D: d / length, Material: mat}
}

// Hit solves t = -(d + n·o) / (n·dir)
func (p Plane) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	denom := p.Normal.Dot(ray.Direction)
	if !(math.Abs(denom) >= 1e-9) {
		return Intersection{}, false
	}

	t := -(p.D + p.Normal.Dot(ray.Origin)) / denom
	if !(t >= math.Max(tMin, planeEpsilon)) || t > tMax {
		return Intersection{}, false
	}

	return Intersection{
		T:         t,
		Point:     ray.At(t),
		Normal:    p.Normal,
		FrontFace: denom < 0,
		Material:  p.Material,
	}, true
}
