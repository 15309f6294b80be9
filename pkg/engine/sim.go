// pkg/engine/sim.go
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/opd-ai/go-clothsim/pkg/cloth"
	"github.com/opd-ai/go-clothsim/pkg/config"
	"github.com/opd-ai/go-clothsim/pkg/event"
	"github.com/opd-ai/go-clothsim/pkg/physics"
)

type SimStatus int

const (
	SimStatusIdle SimStatus = iota
	SimStatusRunning
	SimStatusStopped
)

// Simulation owns the cloth state, its parameters and the obstacle set,
// and advances them tick by tick. All state access goes through the
// state lock; Update holds it for the whole step so snapshots never see
// a half-integrated cloth.
type Simulation struct {
	Config    *config.SimConfig
	Cloth     *cloth.Cloth
	Params    *cloth.Params
	Colliders *ColliderManager
	EventBus  *event.Bus

	stateLock   sync.RWMutex
	status      SimStatus
	currentTick uint64
	lastUpdate  time.Time
}

// NewSimulation builds a simulation from a validated configuration:
// the cloth grid with its pinning mode applied, the step parameters and
// the configured colliders.
func NewSimulation(cfg *config.SimConfig) (*Simulation, error) {
	sim := &Simulation{
		Config:    cfg,
		Params:    cfg.StepParams(),
		Colliders: NewColliderManager(),
		EventBus:  event.NewEventBus(),
	}

	origin := physics.Vec3{cfg.Cloth.Origin[0], cfg.Cloth.Origin[1], cfg.Cloth.Origin[2]}
	sim.Cloth = cloth.New(cfg.Cloth.Dim, cfg.Cloth.Spacing, origin)

	switch cfg.Cloth.Pinning {
	case "row":
		sim.Cloth.PinRow(0)
	case "corners":
		sim.Cloth.PinCorners()
	case "all":
		sim.Cloth.PinAll()
	}

	for _, col := range cfg.Colliders {
		center := physics.Vec3{col.Center[0], col.Center[1], col.Center[2]}
		if _, err := sim.Colliders.Add(col.Name, center, col.Radius); err != nil {
			return nil, err
		}
	}

	return sim, nil
}

// Start marks the simulation active.
func (s *Simulation) Start() {
	s.stateLock.Lock()
	s.status = SimStatusRunning
	s.lastUpdate = time.Now()
	s.stateLock.Unlock()

	s.EventBus.Publish(&event.BaseEvent{
		EventType: event.SimulationStarted,
		Source:    s,
	})
}

// Stop halts the simulation. Update becomes a no-op afterwards.
func (s *Simulation) Stop() {
	s.stateLock.Lock()
	s.status = SimStatusStopped
	s.stateLock.Unlock()

	s.EventBus.Publish(&event.BaseEvent{
		EventType: event.SimulationStopped,
		Source:    s,
	})
}

// Status returns the current lifecycle state.
func (s *Simulation) Status() SimStatus {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.status
}

// CurrentTick returns the number of completed steps.
func (s *Simulation) CurrentTick() uint64 {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.currentTick
}

// LastUpdate returns when the most recent step completed.
func (s *Simulation) LastUpdate() time.Time {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()
	return s.lastUpdate
}

// Update advances the cloth by one time step and publishes the step and
// collision events. It does nothing unless the simulation is running.
func (s *Simulation) Update() {
	s.stateLock.Lock()
	if s.status != SimStatusRunning {
		s.stateLock.Unlock()
		return
	}

	colliders := s.Colliders.Snapshot()

	started := time.Now()
	stats := s.Cloth.Step(s.Params, colliders)
	duration := time.Since(started)

	s.currentTick++
	s.lastUpdate = time.Now()
	tick := s.currentTick
	s.stateLock.Unlock()

	s.EventBus.Publish(event.NewStepEvent(s, tick, duration, stats.Collisions))
	if stats.Collisions > 0 {
		s.EventBus.Publish(event.NewCollisionEvent(s, tick, stats.Collisions))
	}
}

// Run drives Update at the simulation's time step until the context is
// cancelled. It ticks at Dt wall-clock seconds so the simulation plays
// back in real time.
func (s *Simulation) Run(ctx context.Context) {
	interval := time.Duration(float64(s.Params.Dt) * float64(time.Second))
	if interval <= 0 {
		interval = time.Second / 60
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Start()
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-ticker.C:
			s.Update()
		}
	}
}

// AddCollider registers a sphere obstacle and publishes a collider event.
func (s *Simulation) AddCollider(name string, center physics.Vec3, radius float32) (string, error) {
	id, err := s.Colliders.Add(name, center, radius)
	if err != nil {
		return "", err
	}
	s.EventBus.Publish(event.NewColliderEvent(event.ColliderAdded, s, id))
	return id, nil
}

// MoveCollider repositions an obstacle; the new center is seen by the
// next step.
func (s *Simulation) MoveCollider(id string, center physics.Vec3) error {
	return s.Colliders.Move(id, center)
}

// RemoveCollider deletes an obstacle and publishes a collider event.
func (s *Simulation) RemoveCollider(id string) error {
	if err := s.Colliders.Remove(id); err != nil {
		return err
	}
	s.EventBus.Publish(event.NewColliderEvent(event.ColliderRemoved, s, id))
	return nil
}

// SnapshotState captures a consistent copy of the node positions for
// serialization. The returned slice is owned by the caller.
func (s *Simulation) SnapshotState() (tick uint64, positions []physics.Vec3) {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	positions = make([]physics.Vec3, len(s.Cloth.Positions))
	copy(positions, s.Cloth.Positions)
	return s.currentTick, positions
}
