// pkg/physics/sphere_test.go
package physics

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestSphereIntersectSegment(t *testing.T) {
	sphere := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}

	tests := []struct {
		name    string
		start   Vec3
		end     Vec3
		inflate float32
		wantHit bool
	}{
		{
			name:    "head_on_through_center",
			start:   Vec3{0, 3, 0},
			end:     Vec3{0, -3, 0},
			wantHit: true,
		},
		{
			name:    "stops_short_of_sphere",
			start:   Vec3{0, 3, 0},
			end:     Vec3{0, 2, 0},
			wantHit: false,
		},
		{
			name:    "passes_well_clear",
			start:   Vec3{5, 3, 0},
			end:     Vec3{5, -3, 0},
			wantHit: false,
		},
		{
			name:    "moving_away_from_sphere",
			start:   Vec3{0, 2, 0},
			end:     Vec3{0, 5, 0},
			wantHit: false,
		},
		{
			name:    "inflation_catches_near_miss",
			start:   Vec3{1.02, 3, 0},
			end:     Vec3{1.02, -3, 0},
			inflate: 0.05,
			wantHit: true,
		},
		{
			name:    "no_inflation_same_path_misses",
			start:   Vec3{1.02, 3, 0},
			end:     Vec3{1.02, -3, 0},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sphere.IntersectSegment(tt.start, tt.end, tt.inflate)
			if result.Hit != tt.wantHit {
				t.Errorf("IntersectSegment() hit = %v, expected %v", result.Hit, tt.wantHit)
			}
		})
	}
}

func TestSphereIntersectSegmentHitPoint(t *testing.T) {
	sphere := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}

	// Falling straight down onto the sphere: the hit point must be on the
	// inflated surface and the normal must point back up the approach.
	result := sphere.IntersectSegment(Vec3{0, 3, 0}, Vec3{0, -3, 0}, 0.05)
	if !result.Hit {
		t.Fatal("expected a hit")
	}
	if !vecApproxEqual(result.Point, Vec3{0, 1.05, 0}, 1e-4) {
		t.Errorf("hit point = %v, expected (0, 1.05, 0)", result.Point)
	}
	if !vecApproxEqual(result.Normal, Vec3{0, 1, 0}, 1e-4) {
		t.Errorf("hit normal = %v, expected (0, 1, 0)", result.Normal)
	}
	if result.T < 0 || result.T > 1 {
		t.Errorf("hit T = %v, expected within [0,1]", result.T)
	}
}

func TestSphereIntersectSegmentStartInside(t *testing.T) {
	sphere := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}

	result := sphere.IntersectSegment(Vec3{0, 0.5, 0}, Vec3{0, -0.5, 0}, 0)
	if !result.Hit {
		t.Fatal("expected a hit for a segment starting inside the sphere")
	}
	if result.T != 0 {
		t.Errorf("hit T = %v, expected 0 for an inside start", result.T)
	}
}

func TestSphereIntersectSegmentDegenerate(t *testing.T) {
	sphere := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}

	// Zero-length segment inside and outside the sphere.
	inside := sphere.IntersectSegment(Vec3{0, 0.5, 0}, Vec3{0, 0.5, 0}, 0)
	if !inside.Hit {
		t.Error("stationary point inside the sphere should report a hit")
	}
	outside := sphere.IntersectSegment(Vec3{0, 5, 0}, Vec3{0, 5, 0}, 0)
	if outside.Hit {
		t.Error("stationary point outside the sphere should not report a hit")
	}
}

func TestSphereContains(t *testing.T) {
	sphere := Sphere{Center: Vec3{1, 1, 1}, Radius: 2}

	tests := []struct {
		name     string
		point    Vec3
		expected bool
	}{
		{name: "center", point: Vec3{1, 1, 1}, expected: true},
		{name: "inside", point: Vec3{2, 1, 1}, expected: true},
		{name: "outside", point: Vec3{4, 1, 1}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := sphere.Contains(tt.point); result != tt.expected {
				t.Errorf("Contains(%v) = %v, expected %v", tt.point, result, tt.expected)
			}
		})
	}
}

func TestHitNormalIsUnit(t *testing.T) {
	sphere := Sphere{Center: Vec3{2, -1, 3}, Radius: 1.5}

	result := sphere.IntersectSegment(Vec3{2, 5, 3}, Vec3{2, -1, 3}, 0.05)
	if !result.Hit {
		t.Fatal("expected a hit")
	}
	if math32.Abs(result.Normal.Len()-1) > 1e-4 {
		t.Errorf("normal length = %v, expected 1", result.Normal.Len())
	}
}
