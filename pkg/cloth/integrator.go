// pkg/cloth/integrator.go
package cloth

import "github.com/opd-ai/go-clothsim/pkg/physics"

// integrateNode advances one node by Dt and resolves collisions against the
// collider list, returning the number of colliders hit. Restrained nodes
// are frozen in place and skipped entirely.
func (c *Cloth) integrateNode(i int, params *Params, colliders []physics.Sphere) int {
	if c.Restrained[i] {
		return 0
	}

	accel := gravity.Add(c.Forces[i].Mul(1 / params.Mass))

	oldPos := c.Positions[i]
	pos := oldPos
	vel := c.Velocities[i]

	switch params.Integrator {
	case Leapfrog:
		vel = vel.Add(accel.Mul(params.Dt))
		pos = pos.Add(vel.Mul(params.Dt))
	default:
		pos = pos.Add(vel.Mul(params.Dt))
		vel = vel.Add(accel.Mul(params.Dt))
	}

	cor := physics.Clamp01(params.Restitution)
	hits := 0
	for _, sphere := range colliders {
		result := sphere.IntersectSegment(oldPos, pos, collisionOffset)
		if !result.Hit {
			continue
		}
		// Resolution is applied once per collider in iteration order; a
		// later hit overrides an earlier one. There is no time-of-impact
		// sorting, so overlapping colliders can resolve order-dependently.
		pos = result.Point
		vel = physics.Reflect(vel, result.Normal).Mul(cor)
		hits++
	}

	c.Positions[i] = pos
	c.Velocities[i] = vel
	return hits
}
