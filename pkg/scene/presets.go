package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewDefaultScene creates the two-plane scene with a conductor sphere, a
// dielectric sphere, a cube mesh and two point lights
func NewDefaultScene() *Scene {
	s := New("default")

	green := material.NewDiffuse(core.NewVec3(0.3, 1.0, 0.3))
	s.AddPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), green)
	s.AddPlane(core.NewVec3(0, 40, 0), core.NewVec3(0, -1, 0), green)

	s.AddSphere(core.NewVec3(0, 1, 0), 0.5, material.NewConductor(core.NewVec3(1.0, 0.0, 0.3), 0.3))
	s.AddSphere(core.NewVec3(3, 1, 0), 1.0, material.NewDielectric(core.NewVec3(0.7, 4.0, 0.2), 1.0, 1.21))

	cube := geometry.NewBoxMesh(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1)).
		Scale(0.5).
		Translate(core.NewVec3(-0.5, 1.0, 1.0))
	s.AddMesh(cube, material.NewDiffuse(core.NewVec3(0.0, 0.0, 1.0)))

	s.AddPointLight(core.NewVec3(1, 3, 4), 9)
	s.AddPointLight(core.NewVec3(1, 3, -4), 5)

	return s
}

// NewCornellScene creates a closed diffuse box lit by one small ceiling light.
// The front wall faces inward, so a camera outside it looks through its culled back face.
func NewCornellScene() *Scene {
	s := New("cornell")
	s.Background = core.NewVec3(0, 0, 0)
	s.Camera = CameraPose{
		Origin:        core.NewVec3(0, 1, -4),
		Target:        core.NewVec3(0, 1, 0),
		FocalDistance: 20,
	}

	white := material.NewDiffuse(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewDiffuse(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewVec3(0.12, 0.45, 0.15))
	light := material.NewEmissive(core.NewVec3(15, 15, 15))

	// Walls span x,z in [-1, 1] and y in [0, 2] with normals pointing inside
	walls := []struct {
		corner, u, v core.Vec3
		mat          material.Material
	}{
		{core.NewVec3(-1, 0, -1), core.NewVec3(0, 0, 2), core.NewVec3(2, 0, 0), white}, // floor
		{core.NewVec3(-1, 2, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), white}, // ceiling
		{core.NewVec3(-1, 0, 1), core.NewVec3(0, 2, 0), core.NewVec3(2, 0, 0), white},  // back
		{core.NewVec3(-1, 0, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), white}, // front
		{core.NewVec3(-1, 0, -1), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 2), red},   // left
		{core.NewVec3(1, 0, -1), core.NewVec3(0, 0, 2), core.NewVec3(0, 2, 0), green},  // right
	}
	for _, w := range walls {
		s.AddMesh(geometry.NewQuadMesh(w.corner, w.u, w.v), w.mat)
	}

	s.AddMesh(geometry.NewQuadMesh(core.NewVec3(-0.25, 1.98, -0.25), core.NewVec3(0.5, 0, 0), core.NewVec3(0, 0, 0.5)), light)

	s.AddSphere(core.NewVec3(-0.4, 0.4, 0.3), 0.4, material.NewGlass(1.5))
	s.AddSphere(core.NewVec3(0.45, 0.3, -0.2), 0.3, material.NewMirror(core.NewVec3(0.9, 0.9, 0.9)))

	return s
}

// NewLightOverSphereScene creates a single downward-facing emissive triangle
// above a diffuse sphere on a black background
func NewLightOverSphereScene() *Scene {
	s := New("light-over-sphere")
	s.Background = core.NewVec3(0, 0, 0)
	s.Camera = CameraPose{
		Origin:        core.NewVec3(0, 2, 4),
		Target:        core.NewVec3(0, 0, 0),
		FocalDistance: 20,
	}

	s.AddSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8)))
	s.AddTriangle(
		core.NewVec3(-1, 3, -1),
		core.NewVec3(1, 3, -1),
		core.NewVec3(0, 3, 1),
		material.NewEmissive(core.NewVec3(10, 10, 10)),
	)
	return s
}
