package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

var gray = material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))

func TestScene_EmptySceneNeverHits(t *testing.T) {
	s := New("empty")
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if _, ok := s.NearestIntersection(ray, 0, math.Inf(1)); ok {
		t.Error("Expected no hit in an empty scene")
	}
	if s.Occluded(ray, 0, math.Inf(1)) {
		t.Error("Expected no occlusion in an empty scene")
	}
	if s.EmissiveTriangleCount() != 0 {
		t.Error("Expected no emissive triangles")
	}
}

func TestScene_SinglePrimitiveType(t *testing.T) {
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))

	tests := []struct {
		name      string
		build     func(s *Scene)
		expectedT float64
	}{
		{"spheres only", func(s *Scene) {
			s.AddSphere(core.NewVec3(0, 0, 0), 1, gray)
		}, 4},
		{"planes only", func(s *Scene) {
			s.AddPlane(core.NewVec3(0, 0, -2), core.NewVec3(0, 0, 1), gray)
		}, 7},
		{"triangles only", func(s *Scene) {
			s.AddTriangle(core.NewVec3(-1, -1, 1), core.NewVec3(1, -1, 1), core.NewVec3(0, 1, 1), gray)
		}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.name)
			tt.build(s)
			if err := s.Preprocess(); err != nil {
				t.Fatalf("Preprocess failed: %v", err)
			}
			hit, ok := s.NearestIntersection(ray, 0, math.Inf(1))
			if !ok {
				t.Fatal("Expected a hit")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, hit.T)
			}
		})
	}
}

func TestScene_NearestAcrossTypes(t *testing.T) {
	s := New("mixed")
	s.AddPlane(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1), gray)
	s.AddSphere(core.NewVec3(0, 0, -2), 0.5, gray)
	s.AddTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0), gray)
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hit, ok := s.NearestIntersection(ray, 0, math.Inf(1))
	if !ok || math.Abs(hit.T-5) > 1e-9 {
		t.Errorf("Expected triangle at t=5, got %v %f", ok, hit.T)
	}

	// Start past the triangle
	ray = core.NewRay(core.NewVec3(0, 0, -0.5), core.NewVec3(0, 0, -1))
	hit, ok = s.NearestIntersection(ray, 0, math.Inf(1))
	if !ok || math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("Expected sphere at t=1, got %v %f", ok, hit.T)
	}
}

func TestScene_DegenerateRayNeverHits(t *testing.T) {
	s := NewCornellScene()
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 0)),
		core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(math.NaN(), 1, 0)),
		core.NewRay(core.NewVec3(math.Inf(1), 1, 0), core.NewVec3(0, 1, 0)),
	}
	for i, ray := range rays {
		if _, ok := s.NearestIntersection(ray, 0, math.Inf(1)); ok {
			t.Errorf("Ray %d: expected no hit", i)
		}
	}
}

func TestScene_PreprocessRejectsInvalidSphere(t *testing.T) {
	s := New("bad")
	s.AddSphere(core.NewVec3(0, 0, 0), 0, gray)
	if err := s.Preprocess(); !errors.Is(err, ErrInvalidPrimitive) {
		t.Errorf("Expected ErrInvalidPrimitive, got %v", err)
	}
}

func TestScene_EmissiveIndex(t *testing.T) {
	s := NewCornellScene()
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if s.EmissiveTriangleCount() != 2 {
		t.Fatalf("Expected 2 emissive triangles, got %d", s.EmissiveTriangleCount())
	}
	if math.Abs(s.EmissiveArea()-0.25) > 1e-12 {
		t.Errorf("Expected emissive area 0.25, got %f", s.EmissiveArea())
	}
	for i := 0; i < s.EmissiveTriangleCount(); i++ {
		if !s.EmissiveTriangle(i).Material.IsEmissive() {
			t.Errorf("Triangle %d is not emissive", i)
		}
	}
}

func TestScene_CornellIsClosed(t *testing.T) {
	s := NewCornellScene()
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}

	sampler := core.NewSeededSampler(1)
	origin := core.NewVec3(0, 1, 0)
	for i := 0; i < 500; i++ {
		dir := core.SampleUniformHemisphere(core.NewVec3(0, 1, 0), sampler.Get2D())
		if sampler.Get1D() < 0.5 {
			dir = dir.Negate()
		}
		if _, ok := s.NearestIntersection(core.NewRay(origin, dir), 1e-6, math.Inf(1)); !ok {
			t.Fatalf("Ray %v escaped the closed box", dir)
		}
	}
}

func TestPreset(t *testing.T) {
	for _, info := range ListPresets() {
		t.Run(info.ID, func(t *testing.T) {
			s, err := Preset(info.ID)
			if err != nil {
				t.Fatalf("Preset failed: %v", err)
			}
			if err := s.Preprocess(); err != nil {
				t.Fatalf("Preprocess failed: %v", err)
			}
			if s.PrimitiveCount() == 0 {
				t.Error("Expected primitives")
			}
		})
	}

	if _, err := Preset("missing"); !errors.Is(err, ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestListSceneFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"name": "Beta"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"description": "no name"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}

	infos, err := ListSceneFiles(dir)
	if err != nil {
		t.Fatalf("ListSceneFiles failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 scenes, got %d", len(infos))
	}
	if infos[0].DisplayName != "Beta" || infos[1].DisplayName != "a" {
		t.Errorf("Unexpected order %+v", infos)
	}

	infos, err = ListSceneFiles(filepath.Join(dir, "missing"))
	if err != nil || len(infos) != 0 {
		t.Errorf("Expected empty list for missing directory, got %v %v", infos, err)
	}
}
