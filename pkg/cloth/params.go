// pkg/cloth/params.go
package cloth

import "github.com/opd-ai/go-clothsim/pkg/physics"

const (
	// airDensity is the sea-level air density used by the drag law (kg/m³).
	airDensity = 1.225

	// springEpsilon is the coincidence threshold below which a spring pair
	// produces no force.
	springEpsilon = 1e-5

	// dragEpsilon guards the drag normalizations: the projected area
	// against a near-zero relative wind velocity, and the face normal
	// against a collapsed triangle.
	dragEpsilon = 1e-6

	// collisionOffset inflates collider radii so nodes come to rest
	// slightly above the visual surface.
	collisionOffset = 0.05
)

// gravity is the fixed acceleration applied to every unrestrained node.
var gravity = physics.Vec3{0, -9.81, 0}

// Integrator selects the integration scheme used by the step.
type Integrator int

const (
	// Euler moves position with the pre-step velocity, then updates
	// velocity (explicit symplectic Euler).
	Euler Integrator = iota
	// Leapfrog updates velocity first and moves position with the new
	// velocity, trading a half-step phase lag in the velocity readout for
	// better energy behavior.
	Leapfrog
)

// Family identifies one of the three spring families of the grid.
type Family int

const (
	// Parallel springs connect the 4-neighborhood, ±1 along a row or column.
	Parallel Family = iota
	// Diagonal springs connect the four ±1,±1 neighbors.
	Diagonal
	// Bending springs reach two cells along each diagonal, ±2,±2.
	Bending

	familyCount
)

// SpringParams holds one spring family's coefficients.
type SpringParams struct {
	RestLength float32
	Stiffness  float32
	Damping    float32
	// Influence scales the family's total force, clamped to [0,1] on use.
	// Zero removes the family without touching its rest parameters.
	Influence float32
}

// Params are the read-only inputs of one simulation step. Their lifecycle
// is owned by the caller; the step never mutates them. Mass must be
// positive and Dt finite, the step does not guard against either.
type Params struct {
	Mass        float32
	Restitution float32 // clamped to [0,1] on use
	Dt          float32
	Integrator  Integrator

	Wind          physics.Vec3
	WindInfluence float32 // clamped to [0,1] on use
	DragCoeff     float32

	Springs [familyCount]SpringParams

	// Workers bounds the fork-join pool; values <= 0 select one worker per
	// CPU.
	Workers int
}
