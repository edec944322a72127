package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ErrInvalidPrimitive is returned by Preprocess for primitives that can never be hit
var ErrInvalidPrimitive = errors.New("scene: invalid primitive")

var logger = log.New("scene")

// PointLight is an isotropic light with radiant intensity Intensity*Color
type PointLight struct {
	Position  core.Vec3
	Color     core.Vec3
	Intensity float64
}

// Radiant returns the light's intensity per color channel
func (l PointLight) Radiant() core.Vec3 {
	return l.Color.Multiply(l.Intensity)
}

// CameraPose is the viewpoint a scene suggests for rendering it
type CameraPose struct {
	Origin        core.Vec3
	Target        core.Vec3
	FocalDistance float64
	LensSize      float64
}

// DefaultCameraPose returns the pose used when a scene does not set one
func DefaultCameraPose() CameraPose {
	return CameraPose{
		Origin:        core.NewVec3(-1.6, 1.0, -1.3),
		Target:        core.NewVec3(0.7, 1.0, 0.6),
		FocalDistance: 20,
		LensSize:      0,
	}
}

// Scene owns every primitive and light. It must not be modified while a frame
// is being traced; replace it wholesale between frames instead.
type Scene struct {
	Name       string
	Spheres    []geometry.Sphere
	Planes     []geometry.Plane
	Triangles  []geometry.Triangle
	Lights     []PointLight
	Background core.Vec3
	Camera     CameraPose
	Strategy   geometry.SplitStrategy

	// Built by Preprocess
	BVH          *geometry.BVH
	emissive     []uint32 // Indices into BVH.Triangles
	emissiveArea float64
}

// New creates an empty scene with the default background and camera
func New(name string) *Scene {
	return &Scene{
		Name:       name,
		Background: core.NewVec3(0.5, 0.5, 1.0),
		Camera:     DefaultCameraPose(),
		Strategy:   geometry.SAH,
	}
}

// AddSphere adds a sphere
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.Spheres = append(s.Spheres, geometry.NewSphere(center, radius, mat))
}

// AddPlane adds a plane through point with the given normal
func (s *Scene) AddPlane(point, normal core.Vec3, mat material.Material) {
	s.Planes = append(s.Planes, geometry.NewPlane(point, normal, mat))
}

// AddTriangle adds a single triangle
func (s *Scene) AddTriangle(p0, p1, p2 core.Vec3, mat material.Material) {
	s.Triangles = append(s.Triangles, geometry.NewTriangle(p0, p1, p2, mat))
}

// AddMesh adds every triangle of mesh with a shared material
func (s *Scene) AddMesh(mesh *geometry.Mesh, mat material.Material) {
	s.Triangles = append(s.Triangles, mesh.Triangles(mat)...)
}

// AddPointLight adds a white point light
func (s *Scene) AddPointLight(position core.Vec3, intensity float64) {
	s.Lights = append(s.Lights, PointLight{Position: position, Color: core.NewVec3(1, 1, 1), Intensity: intensity})
}

// Preprocess validates primitives, builds the BVH over the triangles and
// indexes emissive triangles for light sampling. It must run again after
// any primitive is added.
func (s *Scene) Preprocess() error {
	for i, sphere := range s.Spheres {
		if !(sphere.Radius > 0) {
			return fmt.Errorf("%w: sphere %d has radius %v", ErrInvalidPrimitive, i, sphere.Radius)
		}
	}
	for i, plane := range s.Planes {
		if plane.Normal.IsZero() {
			return fmt.Errorf("%w: plane %d has no normal", ErrInvalidPrimitive, i)
		}
	}
	for i := range s.Triangles {
		if err := validateMaterial(s.Triangles[i].Material); err != nil {
			return fmt.Errorf("%w: triangle %d: %v", ErrInvalidPrimitive, i, err)
		}
	}

	s.BVH = geometry.NewBVH(s.Triangles, s.Strategy)

	s.emissive = s.emissive[:0]
	s.emissiveArea = 0
	for i := range s.BVH.Triangles {
		tri := &s.BVH.Triangles[i]
		if tri.Material.IsEmissive() && tri.Area() > 0 {
			s.emissive = append(s.emissive, uint32(i))
			s.emissiveArea += tri.Area()
		}
	}

	logger.Infof(
		"scene %q: %d spheres, %d planes, %d triangles (%d emissive), %d point lights, %d BVH nodes",
		s.Name, len(s.Spheres), len(s.Planes), len(s.Triangles), len(s.emissive), len(s.Lights), len(s.BVH.Nodes),
	)
	return nil
}

func validateMaterial(m material.Material) error {
	if m.Kind == material.Dielectric && (!(m.N1 > 0) || !(m.N2 > 0)) {
		return fmt.Errorf("dielectric with indices %v/%v", m.N1, m.N2)
	}
	return nil
}

// NearestIntersection returns the closest hit among spheres, planes and
// triangles. Degenerate rays never hit.
func (s *Scene) NearestIntersection(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool) {
	var closest geometry.Intersection
	hitAnything := false
	if ray.IsDegenerate() {
		return closest, false
	}

	for i := range s.Spheres {
		if hit, ok := s.Spheres[i].Hit(ray, tMin, tMax); ok {
			closest, hitAnything = hit, true
			tMax = hit.T
		}
	}
	for i := range s.Planes {
		if hit, ok := s.Planes[i].Hit(ray, tMin, tMax); ok {
			closest, hitAnything = hit, true
			tMax = hit.T
		}
	}

	var hit geometry.Intersection
	var ok bool
	if s.BVH != nil {
		hit, ok = s.BVH.Hit(ray, tMin, tMax)
	} else {
		hit, ok = geometry.BruteForceHit(s.Triangles, ray, tMin, tMax)
	}
	if ok {
		closest, hitAnything = hit, true
	}

	return closest, hitAnything
}

// Occluded reports whether anything blocks the ray inside (tMin, tMax).
// Emissive surfaces count as occluders.
func (s *Scene) Occluded(ray core.Ray, tMin, tMax float64) bool {
	if ray.IsDegenerate() {
		return false
	}
	for i := range s.Spheres {
		if _, ok := s.Spheres[i].Hit(ray, tMin, tMax); ok {
			return true
		}
	}
	for i := range s.Planes {
		if _, ok := s.Planes[i].Hit(ray, tMin, tMax); ok {
			return true
		}
	}
	if s.BVH != nil {
		return s.BVH.Occluded(ray, tMin, tMax)
	}
	_, ok := geometry.BruteForceHit(s.Triangles, ray, tMin, tMax)
	return ok
}

// EmissiveTriangleCount returns the number of triangles available for light sampling
func (s *Scene) EmissiveTriangleCount() int {
	return len(s.emissive)
}

// EmissiveTriangle returns the i-th emissive triangle
func (s *Scene) EmissiveTriangle(i int) *geometry.Triangle {
	return &s.BVH.Triangles[s.emissive[i]]
}

// EmissiveArea returns the total area of emissive triangles
func (s *Scene) EmissiveArea() float64 {
	return s.emissiveArea
}

// PrimitiveCount returns the total number of spheres, planes and triangles
func (s *Scene) PrimitiveCount() int {
	return len(s.Spheres) + len(s.Planes) + len(s.Triangles)
}

// Bounds returns the box around all finite primitives
func (s *Scene) Bounds() core.AABB {
	bounds := core.EmptyAABB()
	for _, sphere := range s.Spheres {
		bounds = bounds.Union(sphere.BoundingBox())
	}
	for i := range s.Triangles {
		bounds = bounds.Union(s.Triangles[i].BoundingBox())
	}
	return bounds
}

// Radius returns half the diagonal of Bounds, or zero for scenes without finite primitives
func (s *Scene) Radius() float64 {
	b := s.Bounds()
	if !b.IsValid() {
		return 0
	}
	r := b.Size().Length() / 2
	if math.IsInf(r, 0) {
		return 0
	}
	return r
}
