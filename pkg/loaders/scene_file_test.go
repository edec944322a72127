package loaders

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

const sceneJSON = `{
  "name": "test",
  "background": [0, 0, 0],
  "camera": {"origin": [0, 1, 5], "target": [0, 0, 0]},
  "bvh": "median",
  "materials": {
    "white": {"type": "conductor", "color": [0.8, 0.8, 0.8]},
    "glass": {"type": "dielectric", "absorbance": [0.1, 0.2, 0.3], "n2": 1.5},
    "lamp":  {"type": "emissive", "radiance": [4, 4, 4]}
  },
  "spheres":   [{"center": [0, 0, 0], "radius": 1, "material": "glass"}],
  "planes":    [{"point": [0, -1, 0], "normal": [0, 1, 0], "material": "white"},
                {"normal": [0, -1, 0], "offset": 10, "material": "white"}],
  "triangles": [{"vertices": [[-1, 3, -1], [1, 3, -1], [0, 3, 1]], "material": "lamp"}],
  "quads":     [{"corner": [-1, 0, 2], "u": [2, 0, 0], "v": [0, 2, 0], "material": "white"}],
  "boxes":     [{"center": [3, 0, 0], "halfSize": [0.5, 0.5, 0.5], "material": "white"}],
  "meshes":    [{"file": "quad.obj", "scale": 2, "translate": [0, 0, -3], "material": "white"}],
  "lights":    [{"position": [1, 3, 4], "intensity": 9}]
}`

func writeSceneDir(t *testing.T, sceneText string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "scene.json"), []byte(sceneText), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(dir, "scene.json")
}

func TestLoadSceneFile(t *testing.T) {
	s, err := LoadSceneFile(writeSceneDir(t, sceneJSON))
	if err != nil {
		t.Fatalf("LoadSceneFile failed: %v", err)
	}

	if len(s.Spheres) != 1 || len(s.Planes) != 2 || len(s.Lights) != 1 {
		t.Fatalf("Unexpected primitive counts: %d spheres, %d planes, %d lights", len(s.Spheres), len(s.Planes), len(s.Lights))
	}
	// 1 triangle + 2 quad + 12 box + 2 mesh
	if len(s.Triangles) != 17 {
		t.Errorf("Expected 17 triangles, got %d", len(s.Triangles))
	}
	if s.Strategy != geometry.Median {
		t.Errorf("Expected median strategy")
	}
	if s.Camera.FocalDistance != 20 {
		t.Errorf("Expected default focal distance, got %f", s.Camera.FocalDistance)
	}
	if s.Spheres[0].Material.Kind != material.Dielectric || s.Spheres[0].Material.N1 != 1 {
		t.Errorf("Expected dielectric with default n1, got %+v", s.Spheres[0].Material)
	}
	if math.Abs(s.Planes[1].D-10) > 1e-12 {
		t.Errorf("Expected plane offset 10, got %f", s.Planes[1].D)
	}

	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if s.EmissiveTriangleCount() != 1 {
		t.Errorf("Expected 1 emissive triangle, got %d", s.EmissiveTriangleCount())
	}

	// The mesh quad was scaled by 2 and moved to z=-3
	ray := core.NewRay(core.NewVec3(1.5, 1.5, 1), core.NewVec3(0, 0, -1))
	hit, ok := s.NearestIntersection(ray, 0, math.Inf(1))
	if !ok || math.Abs(hit.Point.Z+3) > 1e-9 {
		t.Errorf("Expected hit on the transformed mesh, got %v %v", ok, hit.Point)
	}
}

func TestLoadScene_Errors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		target  error
		message string
	}{
		{"unknown material", `{"spheres": [{"center": [0,0,0], "radius": 1, "material": "nope"}]}`, ErrUnknownMaterial, "sphere 0"},
		{"unknown field", `{"spherez": []}`, nil, "unknown field"},
		{"bad material type", `{"materials": {"x": {"type": "velvet"}}}`, nil, "velvet"},
		{"bad strategy", `{"bvh": "octree"}`, nil, "octree"},
		{"missing mesh", `{"meshes": [{"file": "missing.obj"}]}`, nil, "mesh 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScene(strings.NewReader(tt.json), t.TempDir())
			if err == nil {
				t.Fatal("Expected an error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("Expected message containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}
