// pkg/physics/sphere.go
package physics

import "github.com/chewxy/math32"

// Sphere is a rigid, immovable spherical collider.
type Sphere struct {
	Center Vec3
	Radius float32
}

// HitResult describes a segment/sphere intersection.
type HitResult struct {
	Hit    bool
	T      float32 // parametric position along the segment, in [0,1]
	Point  Vec3
	Normal Vec3 // outward surface normal at Point
}

// Contains reports whether the point lies inside the sphere.
func (s Sphere) Contains(p Vec3) bool {
	return Distance(s.Center, p) < s.Radius
}

// IntersectSegment tests the directed segment from start to end against the
// sphere inflated by the given offset. The first crossing along the segment
// is reported; a segment that starts inside the inflated sphere reports a
// hit at T = 0.
func (s Sphere) IntersectSegment(start, end Vec3, inflate float32) HitResult {
	radius := s.Radius + inflate
	dir := end.Sub(start)
	oc := start.Sub(s.Center)

	a := dir.Dot(dir)
	b := 2 * oc.Dot(dir)
	c := oc.Dot(oc) - radius*radius

	if a < 1e-12 {
		// Degenerate segment: only a containment test is possible.
		if c <= 0 {
			return HitResult{Hit: true, Point: start, Normal: s.normalAt(start)}
		}
		return HitResult{}
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return HitResult{}
	}

	t := (-b - math32.Sqrt(disc)) / (2 * a)
	if t < 0 {
		if c > 0 {
			return HitResult{} // sphere is entirely behind the segment
		}
		t = 0 // started inside the inflated sphere
	}
	if t > 1 {
		return HitResult{}
	}

	point := start.Add(dir.Mul(t))
	return HitResult{Hit: true, T: t, Point: point, Normal: s.normalAt(point)}
}

// normalAt returns the outward unit normal at a surface point. A point at
// the exact center falls back to straight up rather than dividing by zero.
func (s Sphere) normalAt(p Vec3) Vec3 {
	n := p.Sub(s.Center)
	if l := math32.Sqrt(n.Dot(n)); l > 1e-6 {
		return n.Mul(1 / l)
	}
	return Vec3{0, 1, 0}
}
