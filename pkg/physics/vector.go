// pkg/physics/vector.go

// Package physics provides the geometric primitives shared by the cloth
// simulation: 3D vector math built on mathgl, and the sphere collider with
// its segment intersection test.
package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Vec3 is the vector type used throughout the simulation. It aliases
// mgl32.Vec3, so callers get the full mathgl method set.
type Vec3 = mgl32.Vec3

// Reflect mirrors v about the unit normal n: v - 2(v·n)n.
func Reflect(v, n Vec3) Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Clamp01 clamps x into [0, 1].
func Clamp01(x float32) float32 {
	return mgl32.Clamp(x, 0, 1)
}

// Distance returns the distance between two points.
func Distance(a, b Vec3) float32 {
	d := b.Sub(a)
	return math32.Sqrt(d.Dot(d))
}
