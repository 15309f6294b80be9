// pkg/event/event.go
package event

import (
	"sync"
	"time"
)

// Type represents the type of event
type Type string

// Common event types
const (
	SimulationStarted  Type = "simulation_started"
	SimulationStopped  Type = "simulation_stopped"
	StepCompleted      Type = "step_completed"
	NodesCollided      Type = "nodes_collided"
	ColliderAdded      Type = "collider_added"
	ColliderRemoved    Type = "collider_removed"
	ClientConnected    Type = "client_connected"
	ClientDisconnected Type = "client_disconnected"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers, ok := b.handlers[event.GetType()]
	b.mu.RUnlock()

	if !ok {
		return
	}

	for _, handler := range handlers {
		handler(event)
	}
}

// StepEvent is published after every completed simulation step.
type StepEvent struct {
	BaseEvent
	Tick       uint64
	Duration   time.Duration
	Collisions int
}

// NewStepEvent creates a new step-completed event
func NewStepEvent(source interface{}, tick uint64, duration time.Duration, collisions int) *StepEvent {
	return &StepEvent{
		BaseEvent: BaseEvent{
			EventType: StepCompleted,
			Source:    source,
		},
		Tick:       tick,
		Duration:   duration,
		Collisions: collisions,
	}
}

// CollisionEvent is published when a step resolved at least one
// node/collider contact.
type CollisionEvent struct {
	BaseEvent
	Tick       uint64
	Collisions int
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, tick uint64, collisions int) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: NodesCollided,
			Source:    source,
		},
		Tick:       tick,
		Collisions: collisions,
	}
}

// ColliderEvent contains information about collider lifecycle changes
type ColliderEvent struct {
	BaseEvent
	ColliderID string
}

// NewColliderEvent creates a new collider event
func NewColliderEvent(eventType Type, source interface{}, colliderID string) *ColliderEvent {
	return &ColliderEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		ColliderID: colliderID,
	}
}
