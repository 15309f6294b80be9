// pkg/engine/colliders.go
package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// Collider is a sphere obstacle with a stable identity so clients can
// address it across moves.
type Collider struct {
	ID     string
	Name   string
	Sphere physics.Sphere
}

// ColliderManager owns the set of obstacles the cloth collides with.
// Mutations take effect between steps; Snapshot hands the step an
// immutable slice ordered by insertion, which fixes which collider wins
// when a node hits several in one step.
type ColliderManager struct {
	mu        sync.RWMutex
	colliders map[string]*Collider
	order     []string
}

// NewColliderManager creates an empty collider set
func NewColliderManager() *ColliderManager {
	return &ColliderManager{
		colliders: make(map[string]*Collider),
	}
}

// Add registers a new sphere collider and returns its generated ID.
func (m *ColliderManager) Add(name string, center physics.Vec3, radius float32) (string, error) {
	if radius <= 0 {
		return "", fmt.Errorf("collider radius must be positive, got %v", radius)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.colliders[id] = &Collider{
		ID:     id,
		Name:   name,
		Sphere: physics.Sphere{Center: center, Radius: radius},
	}
	m.order = append(m.order, id)
	return id, nil
}

// Move updates an existing collider's center.
func (m *ColliderManager) Move(id string, center physics.Vec3) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	collider, ok := m.colliders[id]
	if !ok {
		return fmt.Errorf("unknown collider %q", id)
	}
	collider.Sphere.Center = center
	return nil
}

// Remove deletes a collider. Removing an unknown ID is an error.
func (m *ColliderManager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.colliders[id]; !ok {
		return fmt.Errorf("unknown collider %q", id)
	}
	delete(m.colliders, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns a copy of the collider with the given ID.
func (m *ColliderManager) Get(id string) (Collider, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	collider, ok := m.colliders[id]
	if !ok {
		return Collider{}, false
	}
	return *collider, true
}

// Count returns the number of registered colliders.
func (m *ColliderManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.colliders)
}

// Snapshot returns the collider spheres in insertion order. The slice is
// a fresh copy and stays valid while the manager mutates.
func (m *ColliderManager) Snapshot() []physics.Sphere {
	m.mu.RLock()
	defer m.mu.RUnlock()

	spheres := make([]physics.Sphere, 0, len(m.order))
	for _, id := range m.order {
		spheres = append(spheres, m.colliders[id].Sphere)
	}
	return spheres
}

// List returns copies of all colliders in insertion order.
func (m *ColliderManager) List() []Collider {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]Collider, 0, len(m.order))
	for _, id := range m.order {
		list = append(list, *m.colliders[id])
	}
	return list
}
