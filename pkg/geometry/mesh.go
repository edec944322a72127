package geometry

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Mesh is an indexed triangle list. Normals, when present, are per-vertex and
// share the position indices.
type Mesh struct {
	Name      string
	Positions []core.Vec3
	Normals   []core.Vec3
	Indices   []int
}

// HasNormals reports whether every position has a vertex normal
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) > 0 && len(m.Normals) == len(m.Positions)
}

// TriangleCount returns the number of indexed triangles
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Translate moves every vertex by offset
func (m *Mesh) Translate(offset core.Vec3) *Mesh {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(offset)
	}
	return m
}

// Scale uniformly scales every vertex about the origin
func (m *Mesh) Scale(factor float64) *Mesh {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Multiply(factor)
	}
	return m
}

// Rotate applies Euler rotations in radians about X, then Y, then Z
func (m *Mesh) Rotate(angles core.Vec3) *Mesh {
	q := mgl64.AnglesToQuat(angles.Z, angles.Y, angles.X, mgl64.ZYX)
	rotate := func(v core.Vec3) core.Vec3 {
		r := q.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
		return core.NewVec3(r[0], r[1], r[2])
	}
	for i := range m.Positions {
		m.Positions[i] = rotate(m.Positions[i])
	}
	for i := range m.Normals {
		m.Normals[i] = rotate(m.Normals[i])
	}
	return m
}

// Bounds returns the bounding box of all vertices
func (m *Mesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.Positions...)
}

// Triangles expands the index list into triangles sharing one material.
// Index triples referencing missing vertices are skipped.
func (m *Mesh) Triangles(mat material.Material) []Triangle {
	smooth := m.HasNormals()
	triangles := make([]Triangle, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if !m.validIndex(a) || !m.validIndex(b) || !m.validIndex(c) {
			continue
		}
		if smooth {
			triangles = append(triangles, NewSmoothTriangle(
				m.Positions[a], m.Positions[b], m.Positions[c],
				m.Normals[a], m.Normals[b], m.Normals[c], mat))
		} else {
			triangles = append(triangles, NewTriangle(m.Positions[a], m.Positions[b], m.Positions[c], mat))
		}
	}
	return triangles
}

func (m *Mesh) validIndex(i int) bool {
	return i >= 0 && i < len(m.Positions)
}

// NewQuadMesh creates a parallelogram from a corner and two edges.
// The front face normal is u × v.
func NewQuadMesh(corner, u, v core.Vec3) *Mesh {
	return &Mesh{
		Name:      "quad",
		Positions: []core.Vec3{corner, corner.Add(u), corner.Add(u).Add(v), corner.Add(v)},
		Indices:   []int{0, 1, 2, 0, 2, 3},
	}
}

// NewBoxMesh creates an axis-aligned box from center and half extents with
// outward-facing triangles
func NewBoxMesh(center, halfSize core.Vec3) *Mesh {
	corners := []core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}
	for i := range corners {
		corners[i] = corners[i].MultiplyVec(halfSize).Add(center)
	}

	// Each face is a counter-clockwise quad seen from outside
	faces := [6][4]int{
		{4, 5, 6, 7}, // Z+
		{1, 0, 3, 2}, // Z-
		{5, 1, 2, 6}, // X+
		{0, 4, 7, 3}, // X-
		{3, 7, 6, 2}, // Y+
		{4, 0, 1, 5}, // Y-
	}

	mesh := &Mesh{Name: "box", Positions: corners}
	for _, f := range faces {
		mesh.Indices = append(mesh.Indices, f[0], f[1], f[2], f[0], f[2], f[3])
	}
	return mesh
}
