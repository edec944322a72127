package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// directLighting estimates light arriving at a Lambertian vertex directly from
// point lights and, with next-event estimation, from one sampled emissive triangle
func (pt *PathTracer) directLighting(hit geometry.Intersection, normal, albedo core.Vec3, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	var direct core.Vec3
	origin := hit.Point.Add(normal.Multiply(pt.config.Bias))
	brdf := albedo.Multiply(1 / math.Pi)

	if pt.config.PointLights {
		for _, light := range s.Lights {
			direct = direct.Add(pt.pointLight(light, origin, normal, brdf, s))
		}
	}

	if pt.config.NextEventEstimation {
		direct = direct.Add(pt.sampleEmissiveTriangle(origin, normal, brdf, s, sampler))
	}

	return direct
}

// pointLight returns brdf * I * cosθ / d² when the light is visible
func (pt *PathTracer) pointLight(light scene.PointLight, origin, normal, brdf core.Vec3, s *scene.Scene) core.Vec3 {
	toLight := light.Position.Subtract(origin)
	distance2 := toLight.LengthSquared()
	if distance2 == 0 {
		return core.Vec3{}
	}
	distance := math.Sqrt(distance2)
	wi := toLight.Multiply(1 / distance)

	cosTheta := normal.Dot(wi)
	if cosTheta <= 0 {
		return core.Vec3{}
	}
	if s.Occluded(core.NewRay(origin, wi), 0, distance) {
		return core.Vec3{}
	}
	return brdf.MultiplyVec(light.Radiant()).Multiply(cosTheta / distance2)
}

// sampleEmissiveTriangle picks an emissive triangle uniformly, samples a point
// on it and weights the unoccluded emission by the inverse of the light pdf,
// where pdf = 1 / (count * solidAngle) and solidAngle = cosθ_light * area / d²
func (pt *PathTracer) sampleEmissiveTriangle(origin, normal, brdf core.Vec3, s *scene.Scene, sampler core.Sampler) core.Vec3 {
	count := s.EmissiveTriangleCount()
	if count == 0 {
		return core.Vec3{}
	}

	index := min(int(sampler.Get1D()*float64(count)), count-1)
	light := s.EmissiveTriangle(index)
	point := light.SamplePoint(sampler.Get2D())

	toLight := point.Subtract(origin)
	distance2 := toLight.LengthSquared()
	if distance2 == 0 {
		return core.Vec3{}
	}
	distance := math.Sqrt(distance2)
	wi := toLight.Multiply(1 / distance)

	cosSurface := normal.Dot(wi)
	cosLight := -wi.Dot(light.Normal())
	if cosSurface <= 0 || cosLight <= 0 {
		return core.Vec3{}
	}

	// Stop short of the light so it does not shadow itself
	if s.Occluded(core.NewRay(origin, wi), 0, distance*(1-1e-6)-pt.config.Bias) {
		return core.Vec3{}
	}

	solidAngle := cosLight * light.Area() / distance2
	emitted := light.Material.Emitted(true)
	return brdf.MultiplyVec(emitted).Multiply(cosSurface * solidAngle * float64(count))
}
