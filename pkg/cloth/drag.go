// pkg/cloth/drag.go
package cloth

import (
	"github.com/chewxy/math32"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// TriangleDrag computes the aerodynamic drag on one cloth triangle from the
// quadratic drag law. The relative velocity is the average of the three
// vertex velocities minus the ambient wind; the face normal orientation is
// whatever the supplied winding yields. The returned force is the whole
// triangle's; the caller distributes it across the vertices.
func TriangleDrag(p0, p1, p2, v0, v1, v2, wind physics.Vec3, dragCoeff float32) physics.Vec3 {
	relVel := v0.Add(v1).Add(v2).Mul(1.0 / 3.0).Sub(wind)

	cross := p1.Sub(p0).Cross(p2.Sub(p0))
	crossLen := cross.Len()
	if crossLen < dragEpsilon {
		// Collapsed triangle, no face for the wind to push on. Normalizing
		// here would manufacture a NaN normal.
		return physics.Vec3{}
	}
	area := 0.5 * crossLen
	normal := cross.Mul(1 / crossLen)

	speed := math32.Sqrt(relVel.Dot(relVel))
	crossSection := area * relVel.Dot(normal)
	if speed > dragEpsilon {
		// Projected area along the relative wind. Left unnormalized at
		// rest, where the division would blow up.
		crossSection /= speed
	}

	return normal.Mul(-0.5 * airDensity * speed * speed * dragCoeff * crossSection)
}

// accumulateDrag scatters triangle t's drag evenly across its three
// vertices into the given force buffer, scaled by the clamped wind
// influence.
func (c *Cloth) accumulateDrag(t int, params *Params, forces []physics.Vec3) {
	tri := c.Triangles[t]
	force := TriangleDrag(
		c.Positions[tri[0]], c.Positions[tri[1]], c.Positions[tri[2]],
		c.Velocities[tri[0]], c.Velocities[tri[1]], c.Velocities[tri[2]],
		params.Wind, params.DragCoeff,
	)

	share := force.Mul(1.0 / 3.0).Mul(physics.Clamp01(params.WindInfluence))
	for _, v := range tri {
		forces[v] = forces[v].Add(share)
	}
}
