package loaders

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/udhos/gwob"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/log"
	"github.com/df07/go-pathtracer/pkg/material"
)

var (
	// ErrNoGeometry is returned for OBJ data without any triangle
	ErrNoGeometry = errors.New("loaders: no geometry")

	// ErrUnknownMaterial is returned when a scene element references an undefined material
	ErrUnknownMaterial = errors.New("loaders: unknown material")
)

var logger = log.New("loaders")

// OBJGroup is a run of triangles sharing a usemtl statement
type OBJGroup struct {
	Name     string
	Start    int // First index into Mesh.Indices
	Count    int // Number of indices
	Material *material.Material
}

// OBJ is a parsed Wavefront mesh with its material groups
type OBJ struct {
	Mesh   *geometry.Mesh
	Groups []OBJGroup
}

func parserOptions() *gwob.ObjParserOptions {
	return &gwob.ObjParserOptions{
		LogStats:      false,
		Logger:        func(msg string) { logger.Debug(msg) },
		IgnoreNormals: false,
	}
}

// ParseOBJ parses OBJ text. Material libraries are not resolved.
func ParseOBJ(name string, data []byte) (*OBJ, error) {
	obj, err := gwob.NewObjFromBuf(name, data, parserOptions())
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return convertOBJ(name, obj, nil)
}

// LoadOBJFile reads an OBJ file and its material library. A missing library
// leaves groups without materials.
func LoadOBJFile(path string) (*OBJ, error) {
	options := parserOptions()
	obj, err := gwob.NewObjFromFile(path, options)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	var lib *gwob.MaterialLib
	if obj.Mtllib != "" {
		mtlPath := obj.Mtllib
		if !filepath.IsAbs(mtlPath) {
			mtlPath = filepath.Join(filepath.Dir(path), mtlPath)
		}
		loaded, err := gwob.ReadMaterialLibFromFile(mtlPath, options)
		if err != nil {
			logger.Warningf("%s: material library %s: %v", path, mtlPath, err)
		} else {
			lib = &loaded
		}
	}

	return convertOBJ(path, obj, lib)
}

func convertOBJ(name string, obj *gwob.Obj, lib *gwob.MaterialLib) (*OBJ, error) {
	if len(obj.Indices) < 3 || obj.StrideSize == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoGeometry)
	}

	stride := obj.StrideSize / 4
	positionOffset := obj.StrideOffsetPosition / 4
	normalOffset := obj.StrideOffsetNormal / 4
	vertexCount := len(obj.Coord) / stride

	mesh := &geometry.Mesh{
		Name:      name,
		Positions: make([]core.Vec3, vertexCount),
		Indices:   make([]int, len(obj.Indices)),
	}
	if obj.NormCoordFound {
		mesh.Normals = make([]core.Vec3, vertexCount)
	}

	for i := 0; i < vertexCount; i++ {
		base := i * stride
		mesh.Positions[i] = core.NewVec3(
			obj.Coord64(base+positionOffset),
			obj.Coord64(base+positionOffset+1),
			obj.Coord64(base+positionOffset+2),
		)
		if obj.NormCoordFound {
			mesh.Normals[i] = core.NewVec3(
				obj.Coord64(base+normalOffset),
				obj.Coord64(base+normalOffset+1),
				obj.Coord64(base+normalOffset+2),
			)
		}
	}
	copy(mesh.Indices, obj.Indices)

	result := &OBJ{Mesh: mesh}
	for _, g := range obj.Groups {
		if g.IndexCount == 0 {
			continue
		}
		group := OBJGroup{Name: g.Name, Start: g.IndexBegin, Count: g.IndexCount}
		if lib != nil {
			if m, ok := lib.Lib[g.Usemtl]; ok {
				mat := material.NewConductor(
					core.NewVec3(float64(m.Kd[0]), float64(m.Kd[1]), float64(m.Kd[2])),
					float64(max(m.Ks[0], m.Ks[1], m.Ks[2])),
				)
				group.Material = &mat
			}
		}
		result.Groups = append(result.Groups, group)
	}

	logger.Debugf("%s: %d vertices, %d triangles, %d groups, normals=%t",
		name, vertexCount, mesh.TriangleCount(), len(result.Groups), obj.NormCoordFound)
	return result, nil
}

// Triangles expands the mesh using each group's library material, or
// fallback for groups without one. override applies fallback to every group.
func (o *OBJ) Triangles(fallback material.Material, override bool) []geometry.Triangle {
	if override || len(o.Groups) == 0 {
		return o.Mesh.Triangles(fallback)
	}

	triangles := make([]geometry.Triangle, 0, o.Mesh.TriangleCount())
	for _, g := range o.Groups {
		mat := fallback
		if g.Material != nil {
			mat = *g.Material
		}
		sub := &geometry.Mesh{
			Positions: o.Mesh.Positions,
			Normals:   o.Mesh.Normals,
			Indices:   o.Mesh.Indices[g.Start : g.Start+g.Count],
		}
		triangles = append(triangles, sub.Triangles(mat)...)
	}
	return triangles
}
