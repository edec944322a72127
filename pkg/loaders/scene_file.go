package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Vec3 is a JSON [x, y, z] triple
type Vec3 [3]float64

func (v Vec3) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type        string  `json:"type"` // conductor, dielectric or emissive
	Color       Vec3    `json:"color"`
	Specularity float64 `json:"specularity"`
	Absorbance  Vec3    `json:"absorbance"`
	N1          float64 `json:"n1"`
	N2          float64 `json:"n2"`
	Radiance    Vec3    `json:"radiance"`
}

// CameraSpec describes the suggested viewpoint
type CameraSpec struct {
	Origin        Vec3    `json:"origin"`
	Target        Vec3    `json:"target"`
	FocalDistance float64 `json:"focalDistance"`
	LensSize      float64 `json:"lensSize"`
}

// SphereSpec describes a sphere
type SphereSpec struct {
	Center   Vec3    `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// PlaneSpec describes a plane by point and normal, or by normal and offset when Point is absent
type PlaneSpec struct {
	Point    *Vec3   `json:"point"`
	Normal   Vec3    `json:"normal"`
	Offset   float64 `json:"offset"`
	Material string  `json:"material"`
}

// TriangleSpec describes a single counter-clockwise triangle
type TriangleSpec struct {
	Vertices [3]Vec3 `json:"vertices"`
	Material string  `json:"material"`
}

// QuadSpec describes a parallelogram with front face normal u × v
type QuadSpec struct {
	Corner   Vec3   `json:"corner"`
	U        Vec3   `json:"u"`
	V        Vec3   `json:"v"`
	Material string `json:"material"`
}

// BoxSpec describes an axis-aligned box
type BoxSpec struct {
	Center   Vec3   `json:"center"`
	HalfSize Vec3   `json:"halfSize"`
	Material string `json:"material"`
}

// MeshSpec describes an OBJ mesh. Transforms apply as scale, rotate (radians), translate.
// Without a material the OBJ's own library materials are used.
type MeshSpec struct {
	File      string  `json:"file"`
	Scale     float64 `json:"scale"`
	Rotate    Vec3    `json:"rotate"`
	Translate Vec3    `json:"translate"`
	Material  string  `json:"material"`
}

// LightSpec describes a point light
type LightSpec struct {
	Position  Vec3    `json:"position"`
	Intensity float64 `json:"intensity"`
	Color     *Vec3   `json:"color"`
}

// SceneFile is the JSON scene description
type SceneFile struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Background  *Vec3                   `json:"background"`
	Camera      *CameraSpec             `json:"camera"`
	BVH         string                  `json:"bvh"` // sah or median
	Materials   map[string]MaterialSpec `json:"materials"`
	Spheres     []SphereSpec            `json:"spheres"`
	Planes      []PlaneSpec             `json:"planes"`
	Triangles   []TriangleSpec          `json:"triangles"`
	Quads       []QuadSpec              `json:"quads"`
	Boxes       []BoxSpec               `json:"boxes"`
	Meshes      []MeshSpec              `json:"meshes"`
	Lights      []LightSpec             `json:"lights"`
}

// LoadSceneFile reads a JSON scene. Mesh paths resolve relative to the scene file.
func LoadSceneFile(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene %s: %w", path, err)
	}
	defer f.Close()

	s, err := LoadScene(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return s, nil
}

// LoadScene decodes a JSON scene from r. The returned scene is not preprocessed.
func LoadScene(r io.Reader, baseDir string) (*scene.Scene, error) {
	var file SceneFile
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return file.Build(baseDir)
}

// Build converts the description into a scene
func (f *SceneFile) Build(baseDir string) (*scene.Scene, error) {
	s := scene.New(f.Name)
	if f.Background != nil {
		s.Background = f.Background.vec()
	}
	if f.Camera != nil {
		s.Camera = scene.CameraPose{
			Origin:        f.Camera.Origin.vec(),
			Target:        f.Camera.Target.vec(),
			FocalDistance: f.Camera.FocalDistance,
			LensSize:      f.Camera.LensSize,
		}
		if s.Camera.FocalDistance == 0 {
			s.Camera.FocalDistance = scene.DefaultCameraPose().FocalDistance
		}
	}
	switch f.BVH {
	case "", "sah":
		s.Strategy = geometry.SAH
	case "median":
		s.Strategy = geometry.Median
	default:
		return nil, fmt.Errorf("unknown bvh strategy %q", f.BVH)
	}

	materials := make(map[string]material.Material, len(f.Materials))
	for name, spec := range f.Materials {
		m, err := spec.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
	}
	lookup := func(kind string, index int, name string) (material.Material, error) {
		m, ok := materials[name]
		if !ok {
			return material.Material{}, fmt.Errorf("%s %d: %w %q", kind, index, ErrUnknownMaterial, name)
		}
		return m, nil
	}

	for i, sp := range f.Spheres {
		m, err := lookup("sphere", i, sp.Material)
		if err != nil {
			return nil, err
		}
		s.AddSphere(sp.Center.vec(), sp.Radius, m)
	}

	for i, pl := range f.Planes {
		m, err := lookup("plane", i, pl.Material)
		if err != nil {
			return nil, err
		}
		if pl.Point != nil {
			s.AddPlane(pl.Point.vec(), pl.Normal.vec(), m)
		} else {
			s.Planes = append(s.Planes, geometry.NewPlaneFromOffset(pl.Normal.vec(), pl.Offset, m))
		}
	}

	for i, tr := range f.Triangles {
		m, err := lookup("triangle", i, tr.Material)
		if err != nil {
			return nil, err
		}
		s.AddTriangle(tr.Vertices[0].vec(), tr.Vertices[1].vec(), tr.Vertices[2].vec(), m)
	}

	for i, q := range f.Quads {
		m, err := lookup("quad", i, q.Material)
		if err != nil {
			return nil, err
		}
		s.AddMesh(geometry.NewQuadMesh(q.Corner.vec(), q.U.vec(), q.V.vec()), m)
	}

	for i, b := range f.Boxes {
		m, err := lookup("box", i, b.Material)
		if err != nil {
			return nil, err
		}
		s.AddMesh(geometry.NewBoxMesh(b.Center.vec(), b.HalfSize.vec()), m)
	}

	for i, ms := range f.Meshes {
		if err := addMesh(s, baseDir, i, ms, lookup); err != nil {
			return nil, err
		}
	}

	for _, l := range f.Lights {
		color := core.NewVec3(1, 1, 1)
		if l.Color != nil {
			color = l.Color.vec()
		}
		s.Lights = append(s.Lights, scene.PointLight{Position: l.Position.vec(), Color: color, Intensity: l.Intensity})
	}

	return s, nil
}

func addMesh(s *scene.Scene, baseDir string, index int, ms MeshSpec,
	lookup func(string, int, string) (material.Material, error)) error {
	path := ms.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	obj, err := LoadOBJFile(path)
	if err != nil {
		return fmt.Errorf("mesh %d: %w", index, err)
	}

	scale := ms.Scale
	if scale == 0 {
		scale = 1
	}
	obj.Mesh.Scale(scale).Rotate(ms.Rotate.vec()).Translate(ms.Translate.vec())

	fallback := material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8))
	override := false
	if ms.Material != "" {
		m, err := lookup("mesh", index, ms.Material)
		if err != nil {
			return err
		}
		fallback, override = m, true
	}

	s.Triangles = append(s.Triangles, obj.Triangles(fallback, override)...)
	return nil
}

func (spec MaterialSpec) build() (material.Material, error) {
	switch spec.Type {
	case "conductor", "":
		return material.NewConductor(spec.Color.vec(), spec.Specularity), nil
	case "dielectric":
		n1 := spec.N1
		if n1 == 0 {
			n1 = 1
		}
		if !(spec.N2 > 0) {
			return material.Material{}, fmt.Errorf("dielectric needs a positive n2, got %v", spec.N2)
		}
		return material.NewDielectric(spec.Absorbance.vec(), n1, spec.N2), nil
	case "emissive":
		return material.NewEmissive(spec.Radiance.vec()), nil
	default:
		return material.Material{}, fmt.Errorf("unknown material type %q", spec.Type)
	}
}
