package integrator

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Integrator computes the radiance arriving along a camera ray
type Integrator interface {
	Radiance(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3
}

// DiffuseSampling selects how Lambertian bounces pick a direction
type DiffuseSampling int

const (
	// CosineSampling draws directions with density cosθ/π
	CosineSampling DiffuseSampling = iota
	// UniformSampling draws directions with density 1/(2π)
	UniformSampling
)

// String returns the strategy name
func (d DiffuseSampling) String() string {
	if d == UniformSampling {
		return "uniform"
	}
	return "cosine"
}

// ParseDiffuseSampling maps "cosine" or "uniform" to a DiffuseSampling
func ParseDiffuseSampling(name string) (DiffuseSampling, error) {
	switch name {
	case "cosine":
		return CosineSampling, nil
	case "uniform":
		return UniformSampling, nil
	}
	return CosineSampling, fmt.Errorf("integrator: unknown diffuse sampling %q", name)
}

// DielectricMode selects how dielectric surfaces split light
type DielectricMode int

const (
	// DielectricStochastic follows reflection with probability R and refraction otherwise
	DielectricStochastic DielectricMode = iota
	// DielectricSplit traces both branches weighted by R and 1-R
	DielectricSplit
)

// String returns the mode name
func (d DielectricMode) String() string {
	if d == DielectricSplit {
		return "split"
	}
	return "stochastic"
}

// ParseDielectricMode maps "stochastic" or "split" to a DielectricMode
func ParseDielectricMode(name string) (DielectricMode, error) {
	switch name {
	case "stochastic":
		return DielectricStochastic, nil
	case "split":
		return DielectricSplit, nil
	}
	return DielectricStochastic, fmt.Errorf("integrator: unknown dielectric mode %q", name)
}

// Config controls the path tracer
type Config struct {
	MaxDepth int // Maximum number of surface interactions per path

	NextEventEstimation bool // Sample emissive triangles at diffuse vertices
	PointLights         bool // Add direct lighting from scene point lights

	RussianRoulette           bool
	RussianRouletteMinBounces int     // Bounces before roulette may terminate a path
	SurvivalMin               float64 // Lower clamp of the survival probability
	SurvivalMax               float64 // Upper clamp of the survival probability

	DiffuseSampling DiffuseSampling
	DielectricMode  DielectricMode

	Bias float64 // Offset along the normal for spawned rays
}

// DefaultConfig returns the configuration used by the renderer
func DefaultConfig() Config {
	return Config{
		MaxDepth:                  5,
		NextEventEstimation:       true,
		PointLights:               true,
		RussianRoulette:           true,
		RussianRouletteMinBounces: 3,
		SurvivalMin:               0.05,
		SurvivalMax:               0.95,
		DiffuseSampling:           CosineSampling,
		DielectricMode:            DielectricStochastic,
		Bias:                      0.001,
	}
}
