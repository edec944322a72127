package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// PathTracer implements iterative unidirectional path tracing
type PathTracer struct {
	config Config
}

// NewPathTracer creates a path tracer
func NewPathTracer(config Config) *PathTracer {
	return &PathTracer{config: config}
}

// Config returns the tracer configuration
func (pt *PathTracer) Config() Config {
	return pt.config
}

// Radiance returns the radiance along ray. Samples that are NaN or infinite
// are discarded and count as zero.
func (pt *PathTracer) Radiance(ray core.Ray, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	radiance := pt.trace(ray, s, sampler, core.NewVec3(1, 1, 1), 0, true)
	if !radiance.IsFinite() {
		return core.Vec3{}
	}
	return radiance
}

// trace follows one path from ray. lastSpecular records whether the vertex
// that spawned ray was a delta bounce (or the camera).
func (pt *PathTracer) trace(ray core.Ray, s *scene.Scene, sampler core.Sampler, throughput core.Vec3, depth int, lastSpecular bool) core.Vec3 {
	var radiance core.Vec3

	for ; depth < pt.config.MaxDepth; depth++ {
		hit, ok := s.NearestIntersection(ray, 0, math.Inf(1))
		if !ok {
			return radiance.Add(throughput.MultiplyVec(s.Background))
		}

		direction := ray.Direction.Normalize()
		normal := hit.FacingNormal()
		mat := hit.Material

		switch mat.Kind {
		case material.Emissive:
			// With NEE, lights reached by a diffuse bounce were already counted
			if depth == 0 || lastSpecular || !pt.config.NextEventEstimation {
				radiance = radiance.Add(throughput.MultiplyVec(mat.Emitted(hit.FrontFace)))
			}
			return radiance

		case material.Conductor:
			if mat.Specularity > 0 && (mat.Specularity >= 1 || sampler.Get1D() < mat.Specularity) {
				throughput = throughput.MultiplyVec(mat.Color)
				ray = core.NewRay(hit.Point.Add(normal.Multiply(pt.config.Bias)), material.Reflect(direction, normal))
				lastSpecular = true
				break
			}

			radiance = radiance.Add(throughput.MultiplyVec(pt.directLighting(hit, normal, mat.Color, s, sampler)))

			scattered, weight := pt.sampleDiffuse(normal, mat.Color, sampler)
			throughput = throughput.MultiplyVec(weight)
			ray = core.NewRay(hit.Point.Add(normal.Multiply(pt.config.Bias)), scattered)
			lastSpecular = false

		case material.Dielectric:
			// The segment that just ended ran inside the medium
			if !hit.FrontFace {
				distance := hit.Point.Subtract(ray.Origin).Length()
				throughput = throughput.MultiplyVec(material.Transmittance(mat.Absorbance, distance))
			}

			reflectRay, refractRay, reflectance := pt.dielectricRays(hit, direction, normal, mat)

			if pt.config.DielectricMode == DielectricSplit {
				reflected := pt.trace(reflectRay, s, sampler, throughput.Multiply(reflectance), depth+1, true)
				radiance = radiance.Add(reflected)
				if reflectance < 1 {
					refracted := pt.trace(refractRay, s, sampler, throughput.Multiply(1-reflectance), depth+1, true)
					radiance = radiance.Add(refracted)
				}
				return radiance
			}

			if reflectance >= 1 || sampler.Get1D() < reflectance {
				ray = reflectRay
			} else {
				ray = refractRay
			}
			lastSpecular = true
		}

		if throughput.IsZero() {
			return radiance
		}

		if pt.config.RussianRoulette && depth+1 >= pt.config.RussianRouletteMinBounces {
			survival := math.Min(pt.config.SurvivalMax, math.Max(pt.config.SurvivalMin, throughput.MaxComponent()))
			if sampler.Get1D() >= survival {
				return radiance
			}
			throughput = throughput.Multiply(1 / survival)
		}
	}

	return radiance
}

// dielectricRays builds the reflected and refracted continuation rays and the
// Schlick reflectance. Total internal reflection forces reflectance to 1.
func (pt *PathTracer) dielectricRays(hit geometry.Intersection, direction, normal core.Vec3, mat material.Material) (core.Ray, core.Ray, float64) {
	n1, n2 := mat.N1, mat.N2
	if !hit.FrontFace {
		n1, n2 = n2, n1
	}

	offset := normal.Multiply(pt.config.Bias)
	reflectRay := core.NewRay(hit.Point.Add(offset), material.Reflect(direction, normal))

	refracted, ok := material.Refract(direction, normal, n1/n2)
	if !ok {
		return reflectRay, reflectRay, 1
	}

	cosTheta := -direction.Dot(normal)
	reflectance := material.Schlick(cosTheta, n1, n2)
	return reflectRay, core.NewRay(hit.Point.Subtract(offset), refracted), reflectance
}

// sampleDiffuse picks a Lambertian bounce and returns it with the throughput
// weight brdf*cosθ/pdf
func (pt *PathTracer) sampleDiffuse(normal, albedo core.Vec3, sampler core.Sampler) (core.Vec3, core.Vec3) {
	if pt.config.DiffuseSampling == UniformSampling {
		dir := core.SampleUniformHemisphere(normal, sampler.Get2D())
		// (albedo/π) * cosθ / (1/2π)
		return dir, albedo.Multiply(2 * math.Max(0, dir.Dot(normal)))
	}
	// (albedo/π) * cosθ / (cosθ/π)
	return core.SampleCosineHemisphere(normal, sampler.Get2D()), albedo
}
