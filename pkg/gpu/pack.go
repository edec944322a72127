package gpu

import (
	"errors"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
	"golang.org/x/image/math/f32"
)

// ErrNotPreprocessed is returned by Pack for scenes without a BVH
var ErrNotPreprocessed = errors.New("gpu: scene has not been preprocessed")

// Buffers holds everything a compute dispatch needs for one frame
type Buffers struct {
	Input     Input
	Spheres   []Sphere
	Planes    []Plane
	Triangles []Triangle
	Nodes     []Node
	Materials []Material
	Lights    []Light
}

// Pack converts a preprocessed scene and camera into kernel buffers.
// Materials are deduplicated and referenced by index.
func Pack(s *scene.Scene, camera *renderer.Camera, frame int) (*Buffers, error) {
	if s.BVH == nil {
		return nil, ErrNotPreprocessed
	}
	if camera == nil {
		return nil, renderer.ErrNoCamera
	}

	b := &Buffers{}
	materials := map[material.Material]uint32{}
	materialIndex := func(m material.Material) uint32 {
		if i, ok := materials[m]; ok {
			return i
		}
		i := uint32(len(b.Materials))
		materials[m] = i
		b.Materials = append(b.Materials, packMaterial(m))
		return i
	}

	for _, sphere := range s.Spheres {
		b.Spheres = append(b.Spheres, Sphere{
			CenterRadius: vec4(sphere.Center, sphere.Radius),
			Material:     materialIndex(sphere.Material),
		})
	}
	for _, plane := range s.Planes {
		b.Planes = append(b.Planes, Plane{
			NormalOffset: vec4(plane.Normal, plane.D),
			Material:     materialIndex(plane.Material),
		})
	}
	for i := range s.BVH.Triangles {
		b.Triangles = append(b.Triangles, packTriangle(&s.BVH.Triangles[i], materialIndex))
	}
	b.Nodes = PackNodes(s.BVH.Nodes)
	for _, light := range s.Lights {
		b.Lights = append(b.Lights, Light{
			PositionIntensity: vec4(light.Position, light.Intensity),
			Color:             vec4(light.Color, 0),
		})
	}

	p1, p2, p3 := camera.Corners()
	b.Input = Input{
		Origin:     vec4(camera.Origin, camera.LensSize),
		P1:         vec4(p1, 0),
		P2:         vec4(p2, 0),
		P3:         vec4(p3, 0),
		Right:      vec4(camera.Right(), 0),
		Up:         vec4(camera.Up(), 0),
		Background: vec4(s.Background, 1),
		Counts: [4]uint32{
			uint32(len(b.Spheres)),
			uint32(len(b.Planes)),
			uint32(len(b.Triangles)),
			uint32(len(b.Nodes)),
		},
		Frame: [4]uint32{uint32(max(frame, 1)), uint32(camera.Width), uint32(camera.Height), uint32(len(b.Lights))},
	}

	return b, nil
}

// DispatchSize returns the work-group counts covering a width x height image
func DispatchSize(width, height int) (x, y uint32) {
	return uint32((width + LocalSize - 1) / LocalSize), uint32((height + LocalSize - 1) / LocalSize)
}

// PackNodes converts flat BVH nodes. Bounds are rounded outward so a box
// never shrinks at single precision.
func PackNodes(nodes []geometry.Node) []Node {
	packed := make([]Node, len(nodes))
	for i, n := range nodes {
		packed[i] = Node{
			Min:   f32.Vec4{roundDown(n.Min.X), roundDown(n.Min.Y), roundDown(n.Min.Z), 0},
			Max:   f32.Vec4{roundUp(n.Max.X), roundUp(n.Max.Y), roundUp(n.Max.Z), 0},
			Entry: n.Entry,
			Exit:  n.Exit,
			Shape: n.Shape,
		}
	}
	return packed
}

// UnpackNodes converts packed nodes back to flat BVH nodes
func UnpackNodes(packed []Node) []geometry.Node {
	nodes := make([]geometry.Node, len(packed))
	for i, n := range packed {
		nodes[i] = geometry.Node{
			Min:   core.NewVec3(float64(n.Min[0]), float64(n.Min[1]), float64(n.Min[2])),
			Max:   core.NewVec3(float64(n.Max[0]), float64(n.Max[1]), float64(n.Max[2])),
			Entry: n.Entry,
			Exit:  n.Exit,
			Shape: n.Shape,
		}
	}
	return nodes
}

func packTriangle(t *geometry.Triangle, materialIndex func(material.Material) uint32) Triangle {
	packed := Triangle{
		P0:       vec4(t.P0, 0),
		P1:       vec4(t.P1, 0),
		P2:       vec4(t.P2, 0),
		Material: materialIndex(t.Material),
		Node:     t.Node,
	}
	if t.HasVertexNormals {
		packed.N0, packed.N1, packed.N2 = vec4(t.N0, 0), vec4(t.N1, 0), vec4(t.N2, 0)
		packed.Flags |= FlagSmooth
	} else {
		n := vec4(t.Normal(), 0)
		packed.N0, packed.N1, packed.N2 = n, n, n
	}
	if t.Material.IsEmissive() {
		packed.Flags |= FlagEmissive
	}
	return packed
}

func packMaterial(m material.Material) Material {
	return Material{
		Color:      vec4(m.Color, m.Specularity),
		Absorbance: vec4(m.Absorbance, 0),
		Radiance:   vec4(m.Radiance, 0),
		Kind:       uint32(m.Kind),
		N1:         float32(m.N1),
		N2:         float32(m.N2),
	}
}

func vec4(v core.Vec3, w float64) f32.Vec4 {
	return f32.Vec4{float32(v.X), float32(v.Y), float32(v.Z), float32(w)}
}

func roundDown(x float64) float32 {
	f := float32(x)
	if float64(f) > x {
		f = math.Nextafter32(f, float32(math.Inf(-1)))
	}
	return f
}

func roundUp(x float64) float32 {
	f := float32(x)
	if float64(f) < x {
		f = math.Nextafter32(f, float32(math.Inf(1)))
	}
	return f
}
