package gpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

func TestLayout_Std140Sizes(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int
	}{
		{"Input", Input{}, 144},
		{"Sphere", Sphere{}, 32},
		{"Plane", Plane{}, 32},
		{"Triangle", Triangle{}, 112},
		{"Node", Node{}, 48},
		{"Material", Material{}, 64},
		{"Light", Light{}, 32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size := binary.Size(tt.value)
			if size != tt.expected {
				t.Errorf("Expected %d bytes, got %d", tt.expected, size)
			}
			if size%16 != 0 {
				t.Errorf("Expected a multiple of 16 bytes, got %d", size)
			}
		})
	}
}

func cornell(t *testing.T) (*scene.Scene, *renderer.Camera) {
	t.Helper()
	s := scene.NewCornellScene()
	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	return s, renderer.NewCamera(s.Camera, 64, 48)
}

func TestPack(t *testing.T) {
	s, camera := cornell(t)

	b, err := Pack(s, camera, 3)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	expectedCounts := [4]uint32{uint32(len(s.Spheres)), uint32(len(s.Planes)), uint32(len(s.BVH.Triangles)), uint32(len(s.BVH.Nodes))}
	if b.Input.Counts != expectedCounts {
		t.Errorf("Expected counts %v, got %v", expectedCounts, b.Input.Counts)
	}
	if b.Input.Frame != [4]uint32{3, 64, 48, uint32(len(s.Lights))} {
		t.Errorf("Unexpected frame block %v", b.Input.Frame)
	}

	emissive := 0
	for i, tri := range b.Triangles {
		if tri.Node != s.BVH.Triangles[i].Node {
			t.Errorf("Triangle %d: expected node %d, got %d", i, s.BVH.Triangles[i].Node, tri.Node)
		}
		if tri.Flags&FlagEmissive != 0 {
			emissive++
		}
		if int(tri.Material) >= len(b.Materials) {
			t.Fatalf("Triangle %d references missing material %d", i, tri.Material)
		}
	}
	if emissive != s.EmissiveTriangleCount() {
		t.Errorf("Expected %d emissive triangles, got %d", s.EmissiveTriangleCount(), emissive)
	}

	// Every distinct material is stored once
	seen := map[Material]bool{}
	for _, m := range b.Materials {
		if seen[m] {
			t.Errorf("Material %v stored twice", m)
		}
		seen[m] = true
	}
}

func TestPack_Errors(t *testing.T) {
	s := scene.NewCornellScene()
	camera := renderer.NewCamera(s.Camera, 8, 8)
	if _, err := Pack(s, camera, 1); !errors.Is(err, ErrNotPreprocessed) {
		t.Errorf("Expected ErrNotPreprocessed, got %v", err)
	}

	if err := s.Preprocess(); err != nil {
		t.Fatalf("Preprocess failed: %v", err)
	}
	if _, err := Pack(s, nil, 1); !errors.Is(err, renderer.ErrNoCamera) {
		t.Errorf("Expected ErrNoCamera, got %v", err)
	}
}

func TestNodes_ZipRoundTripTraversesLikeOriginal(t *testing.T) {
	s, camera := cornell(t)
	b, err := Pack(s, camera, 1)
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	var archive bytes.Buffer
	if err := b.WriteZip(&archive); err != nil {
		t.Fatalf("WriteZip failed: %v", err)
	}
	sections, err := ReadZip(archive.Bytes())
	if err != nil {
		t.Fatalf("ReadZip failed: %v", err)
	}

	packed, err := DecodeNodes(sections["nodes.bin"])
	if err != nil {
		t.Fatalf("DecodeNodes failed: %v", err)
	}
	if len(packed) != len(s.BVH.Nodes) {
		t.Fatalf("Expected %d nodes, got %d", len(s.BVH.Nodes), len(packed))
	}

	decoded := &geometry.BVH{Nodes: UnpackNodes(packed), Triangles: s.BVH.Triangles}
	for i, n := range decoded.Nodes {
		original := s.BVH.Nodes[i]
		if n.Entry != original.Entry || n.Exit != original.Exit || n.Shape != original.Shape {
			t.Fatalf("Node %d: links changed from %+v to %+v", i, original, n)
		}
		if n.Min.X > original.Min.X || n.Max.X < original.Max.X {
			t.Fatalf("Node %d: bounds shrank", i)
		}
	}

	random := rand.New(rand.NewSource(5))
	for i := 0; i < 2000; i++ {
		origin := core.NewVec3(random.Float64()*4-2, random.Float64()*2.5, random.Float64()*4-2)
		direction := core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
		ray := core.NewRay(origin, direction)

		want, wantOK := s.BVH.Hit(ray, 0, math.Inf(1))
		got, gotOK := decoded.Hit(ray, 0, math.Inf(1))
		if wantOK != gotOK || (wantOK && want.T != got.T) {
			t.Fatalf("Ray %d: expected (%v, %v), got (%v, %v)", i, wantOK, want.T, gotOK, got.T)
		}
	}

	input, err := DecodeInput(sections["input.bin"])
	if err != nil {
		t.Fatalf("DecodeInput failed: %v", err)
	}
	if input != b.Input {
		t.Errorf("Expected input %+v, got %+v", b.Input, input)
	}
}

func TestDecodeNodes_BadLength(t *testing.T) {
	if _, err := DecodeNodes(make([]byte, 47)); err == nil {
		t.Error("Expected error for a truncated nodes section")
	}
}

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		width, height int
		x, y          uint32
	}{
		{16, 16, 1, 1},
		{17, 16, 2, 1},
		{640, 360, 40, 23},
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		x, y := DispatchSize(tt.width, tt.height)
		if x != tt.x || y != tt.y {
			t.Errorf("DispatchSize(%d, %d): expected (%d, %d), got (%d, %d)", tt.width, tt.height, tt.x, tt.y, x, y)
		}
	}
}

func TestImageBytes_RoundTrip(t *testing.T) {
	img := renderer.NewHalfImage(3, 2)
	img.Set(0, 0, core.NewVec3(0.5, 1, 2))
	img.Set(2, 1, core.NewVec3(0.25, 0, 8))

	data := ImageBytes(img)
	if len(data) != 3*2*4*2 {
		t.Fatalf("Expected %d bytes, got %d", 48, len(data))
	}

	decoded, err := DecodeImage(data, 3, 2)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	for _, p := range [][2]int{{0, 0}, {2, 1}, {1, 1}} {
		if decoded.At(p[0], p[1]) != img.At(p[0], p[1]) {
			t.Errorf("Pixel %v: expected %v, got %v", p, img.At(p[0], p[1]), decoded.At(p[0], p[1]))
		}
	}

	if _, err := DecodeImage(data, 4, 2); err == nil {
		t.Error("Expected error for mismatched dimensions")
	}
}
