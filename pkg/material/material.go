package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Kind selects which variant of a Material is active
type Kind int

const (
	// Conductor reflects like a mirror with probability Specularity and is diffuse otherwise
	Conductor Kind = iota
	// Dielectric reflects and refracts with Fresnel weighting and absorbs inside the medium
	Dielectric
	// Emissive terminates the path and contributes Radiance
	Emissive
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case Conductor:
		return "conductor"
	case Dielectric:
		return "dielectric"
	case Emissive:
		return "emissive"
	default:
		return "unknown"
	}
}

// Material is a tagged variant. Only the fields belonging to Kind are meaningful.
type Material struct {
	Kind Kind

	// Conductor
	Color       core.Vec3 // Surface color, also used as the diffuse albedo
	Specularity float64   // Probability of a mirror bounce in [0, 1]

	// Dielectric
	Absorbance core.Vec3 // Beer-Lambert absorption coefficient per unit distance
	N1         float64   // Refractive index outside the surface
	N2         float64   // Refractive index inside the surface

	// Emissive
	Radiance core.Vec3
}

// NewConductor creates a conductor. Specularity is clamped to [0, 1].
func NewConductor(color core.Vec3, specularity float64) Material {
	return Material{
		Kind:        Conductor,
		Color:       color,
		Specularity: max(0, min(1, specularity)),
	}
}

// NewDiffuse creates a conductor that never reflects specularly
func NewDiffuse(albedo core.Vec3) Material {
	return NewConductor(albedo, 0)
}

// NewMirror creates a perfect mirror
func NewMirror(color core.Vec3) Material {
	return NewConductor(color, 1)
}

// NewDielectric creates a dielectric interface between media with indices n1 (outside) and n2 (inside)
func NewDielectric(absorbance core.Vec3, n1, n2 float64) Material {
	return Material{
		Kind:       Dielectric,
		Absorbance: absorbance,
		N1:         n1,
		N2:         n2,
	}
}

// NewGlass creates a clear dielectric with air outside
func NewGlass(ior float64) Material {
	return NewDielectric(core.NewVec3(0, 0, 0), 1.0, ior)
}

// NewEmissive creates a light-emitting material
func NewEmissive(radiance core.Vec3) Material {
	return Material{Kind: Emissive, Radiance: radiance}
}

// IsOpaque reports whether rays never pass through the surface.
// Opaque triangles are backface culled.
func (m Material) IsOpaque() bool {
	return m.Kind != Dielectric
}

// IsEmissive reports whether the material is a light source
func (m Material) IsEmissive() bool {
	return m.Kind == Emissive
}

// Emitted returns the radiance leaving the surface. Lights emit from their front face only.
func (m Material) Emitted(frontFace bool) core.Vec3 {
	if m.Kind != Emissive || !frontFace {
		return core.Vec3{}
	}
	return m.Radiance
}

// Flat is the single-struct material layout consumed by compute kernels
type Flat struct {
	Emissive     bool
	Reflectivity float64
	DiffuseColor core.Vec3
	IOR          float64
}

// Flat converts the variant into the kernel layout. Emissive materials carry
// their radiance in DiffuseColor; dielectrics carry n2/n1 as IOR.
func (m Material) Flat() Flat {
	switch m.Kind {
	case Emissive:
		return Flat{Emissive: true, DiffuseColor: m.Radiance}
	case Dielectric:
		ior := 1.0
		if m.N1 > 0 {
			ior = m.N2 / m.N1
		}
		return Flat{Reflectivity: SchlickR0(m.N1, m.N2), DiffuseColor: core.NewVec3(1, 1, 1), IOR: ior}
	default:
		return Flat{Reflectivity: m.Specularity, DiffuseColor: m.Color}
	}
}
