package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Sphere represents a sphere with center, radius and material
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) Sphere {
	return Sphere{Center: center, Radius: radius, Material: mat}
}

// Hit returns the nearest root of |o + t*d - c|² = r² inside (tMin, tMax)
func (s Sphere) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	a := ray.Direction.LengthSquared()
	if !(a > 0) || !(s.Radius > 0) {
		return Intersection{}, false
	}

	oc := s.Center.Subtract(ray.Origin)
	tca := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	// Origin outside and pointing away
	if c > 0 && tca < 0 {
		return Intersection{}, false
	}

	discriminant := tca*tca - a*c
	if !(discriminant >= 0) {
		return Intersection{}, false
	}
	sq := math.Sqrt(discriminant)

	t := (tca - sq) / a
	if t <= tMin || t > tMax {
		t = (tca + sq) / a
		if t <= tMin || t > tMax {
			return Intersection{}, false
		}
	}

	point := ray.At(t)
	normal := point.Subtract(s.Center).Multiply(1 / s.Radius)
	return Intersection{
		T:         t,
		Point:     point,
		Normal:    normal,
		FrontFace: ray.Direction.Dot(normal) < 0,
		Material:  s.Material,
	}, true
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s Sphere) BoundingBox() core.AABB {
	r := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}
