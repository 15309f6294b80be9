// pkg/cloth/spring.go
package cloth

import (
	"github.com/chewxy/math32"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// familyOffsets are the grid-coordinate offsets that define each spring
// family. Springs are derived from these on the fly against the grid
// dimension; no edge list is ever materialized. An offset that lands
// outside the grid contributes no force.
var familyOffsets = [familyCount][4][2]int{
	Parallel: {{1, 0}, {-1, 0}, {0, 1}, {0, -1}},
	Diagonal: {{1, 1}, {1, -1}, {-1, 1}, {-1, -1}},
	Bending:  {{2, 2}, {2, -2}, {-2, 2}, {-2, -2}},
}

// SpringForce computes the damped-spring force acting on node a from its
// neighbor b. Coincident endpoints produce no force regardless of the
// velocities; this sidesteps the division in the direction normalization.
func SpringForce(posA, posB, velA, velB physics.Vec3, p SpringParams) physics.Vec3 {
	delta := posB.Sub(posA)
	dist := math32.Sqrt(delta.Dot(delta))
	if dist < springEpsilon {
		return physics.Vec3{}
	}

	dir := delta.Mul(1 / dist)
	stretch := dist - p.RestLength
	springForce := -p.Stiffness * stretch
	// Relative velocity along the spring axis, measured from each end
	// rather than through an intermediate velocity difference.
	dampingForce := -p.Damping * (velB.Dot(dir) - velA.Dot(dir))

	return dir.Mul(springForce + dampingForce)
}

// accumulateSpringForces sums the spring forces of every valid neighbor of
// node i across the three families into the node's force accumulator. Each
// family total is scaled by its clamped influence before being added.
func (c *Cloth) accumulateSpringForces(i int, params *Params) {
	col, row := c.Grid.To2D(i)

	for family := Parallel; family < familyCount; family++ {
		sp := params.Springs[family]

		var total physics.Vec3
		for _, off := range familyOffsets[family] {
			ncol, nrow := col+off[0], row+off[1]
			if !c.Grid.Valid(ncol, nrow) {
				continue
			}
			j := c.Grid.To1D(ncol, nrow)
			total = total.Add(SpringForce(
				c.Positions[i], c.Positions[j],
				c.Velocities[i], c.Velocities[j],
				sp,
			))
		}

		c.Forces[i] = c.Forces[i].Add(total.Mul(physics.Clamp01(sp.Influence)))
	}
}
