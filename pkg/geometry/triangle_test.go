package geometry

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func toR3(v core.Vec3) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

// referenceBarycentric returns (w, u, v) of point p with respect to (p0, p1, p2)
// using signed sub-triangle areas.
func referenceBarycentric(p0, p1, p2, p core.Vec3) (w, u, v float64) {
	a, b, c, q := toR3(p0), toR3(p1), toR3(p2), toR3(p)
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	area := r3.Dot(n, n)
	u = r3.Dot(n, r3.Cross(r3.Sub(c, a), r3.Sub(q, a))) / -area
	v = r3.Dot(n, r3.Cross(r3.Sub(b, a), r3.Sub(q, a))) / area
	return 1 - u - v, u, v
}

func TestTriangle_Hit(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(-1, -1, 0),
		core.NewVec3(1, -1, 0),
		core.NewVec3(0, 1, 0),
		testDiffuse,
	)

	tests := []struct {
		name      string
		ray       core.Ray
		expectHit bool
	}{
		{"front face", core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), true},
		{"back face culled", core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)), false},
		{"outside edge", core.NewRay(core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1)), false},
		{"parallel", core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 0)), false},
		{"behind origin", core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)), false},
		{"nan direction", core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(math.NaN(), 0, -1)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := tri.Hit(tt.ray, 0, math.Inf(1))
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%t, got %t", tt.expectHit, ok)
			}
			if ok && math.Abs(hit.T-5) > 1e-9 {
				t.Errorf("Expected t=5, got %f", hit.T)
			}
		})
	}
}

func TestTriangle_DielectricHasNoBackfaceCulling(t *testing.T) {
	tri := NewTriangle(
		core.NewVec3(-1, -1, 0),
		core.NewVec3(1, -1, 0),
		core.NewVec3(0, 1, 0),
		material.NewGlass(1.5),
	)
	hit, ok := tri.Hit(core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)), 0, math.Inf(1))
	if !ok {
		t.Fatal("Expected dielectric triangle to be hit from behind")
	}
	if hit.FrontFace {
		t.Error("Expected back face hit")
	}
}

func TestTriangle_VertexNormalInterpolation(t *testing.T) {
	tri := NewSmoothTriangle(
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(1, 0, 1), core.NewVec3(0, 1, 1),
		testDiffuse,
	)

	hit, ok := tri.Hit(core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)), 0, math.Inf(1))
	if !ok {
		t.Fatal("Expected hit")
	}

	expected := core.NewVec3(0, 0, 1).Multiply(0.5).
		Add(core.NewVec3(1, 0, 1).Normalize().Multiply(0.25)).
		Add(core.NewVec3(0, 1, 1).Normalize().Multiply(0.25)).
		Normalize()
	if hit.Normal.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected interpolated normal %v, got %v", expected, hit.Normal)
	}
}

func TestTriangle_AgreesWithBarycentricReference(t *testing.T) {
	random := rand.New(rand.NewSource(5))
	randomPoint := func() core.Vec3 {
		return core.NewVec3(random.Float64()*4-2, random.Float64()*4-2, random.Float64()*4-2)
	}

	hits := 0
	for i := 0; i < 2000; i++ {
		tri := NewTriangle(randomPoint(), randomPoint(), randomPoint(), material.NewGlass(1.5))
		if tri.Area() < 1e-3 {
			continue
		}
		origin := randomPoint().Multiply(3)
		target := tri.SamplePoint(core.NewVec2(random.Float64(), random.Float64()))
		// Aim half the rays slightly off the triangle
		if i%2 == 1 {
			target = target.Add(randomPoint().Multiply(0.5))
		}
		ray := core.NewRay(origin, target.Subtract(origin))

		hit, ok := tri.Hit(ray, 0, math.Inf(1))

		// Intersect the supporting plane and classify the point
		n := tri.Normal()
		denom := n.Dot(ray.Direction)
		if math.Abs(denom) < 1e-4 {
			continue
		}
		tPlane := n.Dot(tri.P0.Subtract(origin)) / denom
		w, u, v := referenceBarycentric(tri.P0, tri.P1, tri.P2, ray.At(tPlane))
		const margin = 1e-7
		inside := tPlane > 0 && w >= margin && u >= margin && v >= margin
		outside := tPlane <= 0 || w < -margin || u < -margin || v < -margin

		switch {
		case inside && !ok:
			t.Fatalf("Ray %d: reference reports inside (w=%f u=%f v=%f) but no hit", i, w, u, v)
		case outside && ok:
			t.Fatalf("Ray %d: reference reports outside (w=%f u=%f v=%f) but hit", i, w, u, v)
		case ok:
			hits++
			if math.Abs(hit.U-u) > 1e-6 || math.Abs(hit.V-v) > 1e-6 {
				t.Fatalf("Ray %d: barycentric mismatch (%f, %f) vs (%f, %f)", i, hit.U, hit.V, u, v)
			}
			if math.Abs(hit.T-tPlane) > 1e-6*math.Max(1, tPlane) {
				t.Fatalf("Ray %d: distance mismatch %f vs %f", i, hit.T, tPlane)
			}
		}
	}

	if hits == 0 {
		t.Fatal("Expected some rays to hit")
	}
}

func TestTriangle_AreaAndBounds(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), testDiffuse)
	if tri.Area() != 2 {
		t.Errorf("Expected area 2, got %f", tri.Area())
	}
	box := tri.BoundingBox()
	if box.Min != core.NewVec3(0, 0, 0) || box.Max != core.NewVec3(2, 2, 0) {
		t.Errorf("Unexpected bounds %v", box)
	}
	if tri.Normal() != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected +Z normal, got %v", tri.Normal())
	}
}
