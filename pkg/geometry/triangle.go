package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

const triangleEpsilon = 1e-8

// Triangle represents a single triangle with optional per-vertex normals
type Triangle struct {
	P0, P1, P2       core.Vec3
	N0, N1, N2       core.Vec3 // Per-vertex normals, used when HasVertexNormals is set
	HasVertexNormals bool
	Material         material.Material
	Node             uint32 // Index of the BVH leaf holding this triangle

	normal core.Vec3 // Cached geometric normal
	bbox   core.AABB // Cached bounding box
}

// NewTriangle creates a flat-shaded triangle. The front face is counter-clockwise.
func NewTriangle(p0, p1, p2 core.Vec3, mat material.Material) Triangle {
	t := Triangle{P0: p0, P1: p1, P2: p2, Material: mat, Node: LeafSentinel}
	t.computeCache()
	return t
}

// NewSmoothTriangle creates a triangle whose shading normal is interpolated from n0, n1, n2
func NewSmoothTriangle(p0, p1, p2, n0, n1, n2 core.Vec3, mat material.Material) Triangle {
	t := NewTriangle(p0, p1, p2, mat)
	t.N0, t.N1, t.N2 = n0.Normalize(), n1.Normalize(), n2.Normalize()
	t.HasVertexNormals = true
	return t
}

func (t *Triangle) computeCache() {
	t.normal = t.P1.Subtract(t.P0).Cross(t.P2.Subtract(t.P0)).Normalize()
	t.bbox = core.NewAABBFromPoints(t.P0, t.P1, t.P2)
}

// Hit tests the triangle with the Möller-Trumbore algorithm. Opaque triangles
// reject hits on their back face.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	e1 := t.P1.Subtract(t.P0)
	e2 := t.P2.Subtract(t.P0)

	p := ray.Direction.Cross(e2)
	det := e1.Dot(p)

	// Parallel or degenerate
	if !(math.Abs(det) >= triangleEpsilon) {
		return Intersection{}, false
	}
	if det < triangleEpsilon && t.Material.IsOpaque() {
		return Intersection{}, false
	}

	invDet := 1.0 / det
	s := ray.Origin.Subtract(t.P0)
	u := s.Dot(p) * invDet
	if !(u >= 0 && u <= 1) {
		return Intersection{}, false
	}

	q := s.Cross(e1)
	v := ray.Direction.Dot(q) * invDet
	if !(v >= 0 && u+v <= 1) {
		return Intersection{}, false
	}

	dist := e2.Dot(q) * invDet
	if !(dist > math.Max(tMin, triangleEpsilon)) || dist > tMax {
		return Intersection{}, false
	}

	return Intersection{
		T:         dist,
		Point:     ray.At(dist),
		Normal:    t.shadingNormal(u, v),
		FrontFace: det > 0,
		Material:  t.Material,
		U:         u,
		V:         v,
	}, true
}

// shadingNormal interpolates vertex normals as (1-u-v)*n0 + u*n1 + v*n2
func (t *Triangle) shadingNormal(u, v float64) core.Vec3 {
	if !t.HasVertexNormals {
		return t.normal
	}
	n := t.N0.Multiply(1 - u - v).Add(t.N1.Multiply(u)).Add(t.N2.Multiply(v)).Normalize()
	if n.IsZero() {
		return t.normal
	}
	return n
}

// BoundingBox returns the cached bounding box
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Centroid returns the average of the three vertices
func (t *Triangle) Centroid() core.Vec3 {
	return t.P0.Add(t.P1).Add(t.P2).Multiply(1.0 / 3.0)
}

// Normal returns the geometric (front face) normal
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the surface area of the triangle
func (t *Triangle) Area() float64 {
	return 0.5 * t.P1.Subtract(t.P0).Cross(t.P2.Subtract(t.P0)).Length()
}

// SamplePoint returns a uniformly distributed point on the triangle
func (t *Triangle) SamplePoint(sample core.Vec2) core.Vec3 {
	return core.SampleTriangle(t.P0, t.P1, t.P2, sample)
}
