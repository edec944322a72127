package core

// Ray represents a ray with an origin and direction. The direction is not
// required to be normalized. InvDirection caches the component-wise reciprocal
// of the direction for slab tests.
type Ray struct {
	Origin       Vec3
	Direction    Vec3
	InvDirection Vec3
}

// NewRay creates a new ray and precomputes its inverse direction
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction, InvDirection: direction.Inverse()}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// IsDegenerate reports whether the ray cannot be traced (zero or non-finite direction)
func (r Ray) IsDegenerate() bool {
	return r.Direction.IsZero() || !r.Direction.IsFinite() || !r.Origin.IsFinite()
}
