package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// SchlickR0 returns the reflectance at normal incidence, ((n1-n2)/(n1+n2))².
// The result is symmetric in n1 and n2.
func SchlickR0(n1, n2 float64) float64 {
	r0 := (n1 - n2) / (n1 + n2)
	return r0 * r0
}

// Schlick returns the Fresnel reflectance for light travelling from index n1 into n2,
// where cosTheta is the cosine between the incident direction and the surface normal.
// Total internal reflection returns 1.
func Schlick(cosTheta, n1, n2 float64) float64 {
	r0 := SchlickR0(n1, n2)
	cosTheta = math.Abs(cosTheta)
	cosX := cosTheta
	if n1 > n2 {
		// Use the transmitted angle going from dense to less dense media
		eta := n1 / n2
		sin2T := eta * eta * (1 - cosTheta*cosTheta)
		if sin2T > 1 {
			return 1
		}
		cosX = math.Sqrt(1 - sin2T)
	}
	x := 1 - cosX
	return r0 + (1-r0)*x*x*x*x*x
}

// Reflect mirrors d about n: d - 2*dot(d,n)*n
func Reflect(d, n core.Vec3) core.Vec3 {
	return d.Subtract(n.Multiply(2 * d.Dot(n)))
}

// Refract bends the unit direction d through a surface with unit normal n facing
// against d, using eta = n1/n2. ok is false on total internal reflection.
func Refract(d, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := -d.Dot(n)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return core.Vec3{}, false
	}
	return d.Multiply(eta).Add(n.Multiply(eta*cosI - math.Sqrt(k))), true
}

// Transmittance applies Beer-Lambert absorption over distance: exp(-absorbance*distance)
func Transmittance(absorbance core.Vec3, distance float64) core.Vec3 {
	return absorbance.Multiply(-distance).Exp()
}
