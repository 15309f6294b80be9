// pkg/cloth/cloth.go

// Package cloth computes one discrete time step of a mass-spring cloth
// simulation: spring forces over three neighbor families, per-triangle
// aerodynamic drag, and integration with sphere collision resolution. The
// three stages run in strict order over the full node/triangle population,
// separated by hard barriers.
package cloth

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// Cloth holds the mutable node population of one cloth instance. Positions
// and velocities persist across steps and are mutated in place; the force
// accumulator is cleared at the top of every step by the orchestrator, and
// the stage kernels themselves only ever add to it.
type Cloth struct {
	Grid       Grid
	Positions  []physics.Vec3
	Velocities []physics.Vec3
	Forces     []physics.Vec3
	Restrained []bool

	// Triangles is the triangulated surface used by the drag stage. It is
	// fixed for the lifetime of the cloth; there is no remeshing.
	Triangles [][3]int

	// Per-worker scratch force buffers for the drag stage, whose writes
	// are not disjoint by node. Reused across steps.
	scratch [][]physics.Vec3
}

// StepStats reports what happened during one step.
type StepStats struct {
	// Collisions counts node/collider resolutions applied during the
	// integration stage.
	Collisions int
}

// New builds a dim×dim cloth laid out flat in the XZ plane, centered on
// origin with the given node spacing, and triangulates it with two
// triangles per grid cell. All nodes start unrestrained and at rest.
func New(dim int, spacing float32, origin physics.Vec3) *Cloth {
	grid := Grid{Dim: dim}
	count := grid.Count()

	c := &Cloth{
		Grid:       grid,
		Positions:  make([]physics.Vec3, count),
		Velocities: make([]physics.Vec3, count),
		Forces:     make([]physics.Vec3, count),
		Restrained: make([]bool, count),
	}

	half := float32(dim-1) * spacing / 2
	for i := 0; i < count; i++ {
		col, row := grid.To2D(i)
		c.Positions[i] = origin.Add(physics.Vec3{
			float32(col)*spacing - half,
			0,
			float32(row)*spacing - half,
		})
	}

	for row := 0; row < dim-1; row++ {
		for col := 0; col < dim-1; col++ {
			i := grid.To1D(col, row)
			right := grid.To1D(col+1, row)
			down := grid.To1D(col, row+1)
			downRight := grid.To1D(col+1, row+1)
			c.Triangles = append(c.Triangles,
				[3]int{i, down, right},
				[3]int{right, down, downRight},
			)
		}
	}

	return c
}

// Pin restrains the node at the given grid coordinate, excluding it from
// integration. Out-of-grid coordinates are ignored.
func (c *Cloth) Pin(col, row int) {
	if c.Grid.Valid(col, row) {
		c.Restrained[c.Grid.To1D(col, row)] = true
	}
}

// PinRow restrains every node of one grid row.
func (c *Cloth) PinRow(row int) {
	for col := 0; col < c.Grid.Dim; col++ {
		c.Pin(col, row)
	}
}

// PinCorners restrains the four corner nodes.
func (c *Cloth) PinCorners() {
	last := c.Grid.Dim - 1
	c.Pin(0, 0)
	c.Pin(last, 0)
	c.Pin(0, last)
	c.Pin(last, last)
}

// PinAll restrains every node.
func (c *Cloth) PinAll() {
	for i := range c.Restrained {
		c.Restrained[i] = true
	}
}

// ClearForces zeroes every node's force accumulator.
func (c *Cloth) ClearForces() {
	for i := range c.Forces {
		c.Forces[i] = physics.Vec3{}
	}
}

// Step advances the cloth by params.Dt against the given collider set:
// spring forces, then drag, then integration with collision resolution.
// Each stage fans out over a fork-join pool and fully completes before the
// next begins. Colliders are read-only for the duration of the step.
func (c *Cloth) Step(params *Params, colliders []physics.Sphere) StepStats {
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	c.ClearForces()

	// Stage 1: spring forces. Each node owns its accumulator, so chunked
	// writes are disjoint.
	parallelFor(c.Grid.Count(), workers, func(start, end int) {
		for i := start; i < end; i++ {
			c.accumulateSpringForces(i, params)
		}
	})

	// Stage 2: aerodynamic drag over triangles.
	c.stepDrag(params, workers)

	// Stage 3: integration and collision resolution.
	var collisions int64
	parallelFor(c.Grid.Count(), workers, func(start, end int) {
		hits := 0
		for i := start; i < end; i++ {
			hits += c.integrateNode(i, params, colliders)
		}
		if hits > 0 {
			atomic.AddInt64(&collisions, int64(hits))
		}
	})

	return StepStats{Collisions: int(collisions)}
}

// stepDrag runs the drag stage. Triangles sharing a node contend on its
// accumulator, so each worker scatters into a private scratch buffer and
// the buffers are reduced serially afterwards. Addition commutes, so the
// totals are independent of how the scatter phase interleaved.
func (c *Cloth) stepDrag(params *Params, workers int) {
	nTri := len(c.Triangles)
	if nTri == 0 {
		return
	}
	if workers > nTri {
		workers = nTri
	}

	if workers <= 1 {
		for t := 0; t < nTri; t++ {
			c.accumulateDrag(t, params, c.Forces)
		}
		return
	}

	c.ensureScratch(workers)

	chunk := (nTri + workers - 1) / workers
	var wg sync.WaitGroup
	used := 0
	for start := 0; start < nTri; start += chunk {
		end := start + chunk
		if end > nTri {
			end = nTri
		}
		buf := c.scratch[used]
		for i := range buf {
			buf[i] = physics.Vec3{}
		}
		used++

		wg.Add(1)
		go func(start, end int, buf []physics.Vec3) {
			defer wg.Done()
			for t := start; t < end; t++ {
				c.accumulateDrag(t, params, buf)
			}
		}(start, end, buf)
	}
	wg.Wait()

	for _, buf := range c.scratch[:used] {
		for i, f := range buf {
			c.Forces[i] = c.Forces[i].Add(f)
		}
	}
}

func (c *Cloth) ensureScratch(workers int) {
	for len(c.scratch) < workers {
		c.scratch = append(c.scratch, make([]physics.Vec3, c.Grid.Count()))
	}
}
