package gpu

import "golang.org/x/image/math/f32"

// LocalSize is the edge of the 2D compute work-group
const LocalSize = 16

// All structs follow std140 rules: every member is a vec4 or a group of four
// 32-bit scalars, so each struct size is a multiple of 16 bytes.

// Input is the per-frame uniform block
type Input struct {
	Origin     f32.Vec4 // xyz camera origin, w lens size
	P1         f32.Vec4 // Top-left screen corner
	P2         f32.Vec4 // Top-right screen corner
	P3         f32.Vec4 // Bottom-left screen corner
	Right      f32.Vec4
	Up         f32.Vec4
	Background f32.Vec4
	Counts     [4]uint32 // spheres, planes, triangles, nodes
	Frame      [4]uint32 // frame number, width, height, point lights
}

// Sphere is a packed sphere
type Sphere struct {
	CenterRadius f32.Vec4
	Material     uint32
	_            [3]uint32
}

// Plane is a packed plane with n·p + d = 0
type Plane struct {
	NormalOffset f32.Vec4
	Material     uint32
	_            [3]uint32
}

// Triangle is a packed triangle in BVH leaf order
type Triangle struct {
	P0, P1, P2 f32.Vec4
	N0, N1, N2 f32.Vec4
	Material   uint32
	Node       uint32
	Flags      uint32
	_          uint32
}

// Triangle flags
const (
	FlagSmooth uint32 = 1 << iota
	FlagEmissive
)

// Node is a packed rope BVH node
type Node struct {
	Min   f32.Vec4
	Max   f32.Vec4
	Entry uint32
	Exit  uint32
	Shape uint32
	_     uint32
}

// Material is a packed material
type Material struct {
	Color      f32.Vec4 // rgb color, w specularity
	Absorbance f32.Vec4
	Radiance   f32.Vec4
	Kind       uint32
	N1         float32
	N2         float32
	_          uint32
}

// Light is a packed point light
type Light struct {
	PositionIntensity f32.Vec4
	Color             f32.Vec4
}
