// pkg/cloth/spring_test.go
package cloth

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

const forceEpsilon = 1e-5

func vecApproxEqual(a, b physics.Vec3, eps float32) bool {
	return math32.Abs(a.X()-b.X()) < eps &&
		math32.Abs(a.Y()-b.Y()) < eps &&
		math32.Abs(a.Z()-b.Z()) < eps
}

// Newton's third law: the force on a from spring a→b must be the exact
// negation of the force on b from spring b→a.
func TestSpringForceSymmetry(t *testing.T) {
	params := SpringParams{RestLength: 1, Stiffness: 50, Damping: 0.5}

	tests := []struct {
		name         string
		posA, posB   physics.Vec3
		velA, velB   physics.Vec3
	}{
		{
			name: "stretched_at_rest",
			posA: physics.Vec3{0, 0, 0}, posB: physics.Vec3{2, 0, 0},
		},
		{
			name: "compressed_at_rest",
			posA: physics.Vec3{0, 0, 0}, posB: physics.Vec3{0.5, 0, 0},
		},
		{
			name: "moving_apart",
			posA: physics.Vec3{0, 0, 0}, posB: physics.Vec3{1.5, 0, 0},
			velA: physics.Vec3{-1, 0, 0}, velB: physics.Vec3{1, 0, 0},
		},
		{
			name: "skew_pair_with_velocity",
			posA: physics.Vec3{1, 2, 3}, posB: physics.Vec3{-0.5, 1, 4},
			velA: physics.Vec3{0.3, -0.2, 1}, velB: physics.Vec3{-1, 0.4, 0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			onA := SpringForce(tt.posA, tt.posB, tt.velA, tt.velB, params)
			onB := SpringForce(tt.posB, tt.posA, tt.velB, tt.velA, params)
			if !vecApproxEqual(onA, onB.Mul(-1), forceEpsilon) {
				t.Errorf("force on a = %v, force on b = %v; not equal and opposite", onA, onB)
			}
		})
	}
}

func TestSpringForceZeroDistance(t *testing.T) {
	params := SpringParams{RestLength: 1, Stiffness: 100, Damping: 10}
	pos := physics.Vec3{1, 2, 3}

	// Coincident endpoints produce zero force no matter the velocities.
	force := SpringForce(pos, pos, physics.Vec3{5, 0, 0}, physics.Vec3{0, -5, 0}, params)
	if force != (physics.Vec3{}) {
		t.Errorf("coincident endpoints produced force %v, expected zero", force)
	}
}

func TestSpringForceAtRestLength(t *testing.T) {
	params := SpringParams{RestLength: 2, Stiffness: 100}

	force := SpringForce(physics.Vec3{0, 0, 0}, physics.Vec3{2, 0, 0}, physics.Vec3{}, physics.Vec3{}, params)
	if !vecApproxEqual(force, physics.Vec3{}, forceEpsilon) {
		t.Errorf("spring at rest length produced force %v, expected zero", force)
	}
}

func TestSpringForceLiesAlongAxis(t *testing.T) {
	params := SpringParams{RestLength: 1, Stiffness: 40, Damping: 2}

	posA := physics.Vec3{0, 0, 0}
	posB := physics.Vec3{0, 3, 0}
	// Velocity purely perpendicular to the spring axis must not contribute
	// damping: the force stays on the axis.
	force := SpringForce(posA, posB, physics.Vec3{1, 0, 0}, physics.Vec3{-2, 0, 0}, params)
	if math32.Abs(force.X()) > forceEpsilon || math32.Abs(force.Z()) > forceEpsilon {
		t.Errorf("force %v has off-axis components", force)
	}
}

func TestAccumulateSpringForcesInfluence(t *testing.T) {
	build := func(influence float32) *Cloth {
		c := New(2, 1, physics.Vec3{})
		// Stretch the grid so every spring carries force.
		for i := range c.Positions {
			c.Positions[i] = c.Positions[i].Mul(1.5)
		}
		params := testParams()
		for f := range params.Springs {
			params.Springs[f].Influence = influence
		}
		for i := 0; i < c.Grid.Count(); i++ {
			c.accumulateSpringForces(i, params)
		}
		return c
	}

	t.Run("zero_influence_disables_families", func(t *testing.T) {
		c := build(0)
		for i, f := range c.Forces {
			if f != (physics.Vec3{}) {
				t.Errorf("node %d accumulated %v with zero influence", i, f)
			}
		}
	})

	t.Run("influence_above_one_is_clamped", func(t *testing.T) {
		at1 := build(1)
		at5 := build(5)
		for i := range at1.Forces {
			if !vecApproxEqual(at1.Forces[i], at5.Forces[i], forceEpsilon) {
				t.Errorf("node %d: influence 5 gave %v, influence 1 gave %v", i, at5.Forces[i], at1.Forces[i])
			}
		}
	})
}

func TestAccumulateSpringForcesEdgeNodes(t *testing.T) {
	// A corner node has 2 parallel, 1 diagonal and (on a 3×3 grid) no
	// valid bending neighbors; out-of-grid offsets must contribute nothing
	// rather than fault.
	c := New(3, 1, physics.Vec3{})
	params := testParams()

	for i := 0; i < c.Grid.Count(); i++ {
		c.accumulateSpringForces(i, params)
	}

	// Flat grid at rest lengths: parallel springs are at rest, diagonal
	// and bending rest lengths match the layout, so no net force anywhere.
	for i, f := range c.Forces {
		if !vecApproxEqual(f, physics.Vec3{}, 1e-4) {
			t.Errorf("node %d accumulated %v on an undisturbed grid", i, f)
		}
	}
}
