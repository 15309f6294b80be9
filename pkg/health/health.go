// pkg/health/health.go

// Package health provides health check functionality for the cloth
// simulation server. It implements HTTP endpoints for liveness and
// readiness probes that are essential for production deployment and
// monitoring.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chewxy/math32"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// HealthCheck defines the interface for individual health checks.
// Each component can implement this interface to provide its health status.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks for the application.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a new health check with the health checker.
// If a check with the same name already exists, it will be replaced.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth executes all registered health checks and returns the
// aggregated status. The overall status is "healthy" only if all
// individual checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// LivenessHandler provides a simple liveness probe endpoint. It returns
// 200 OK if the application is running and able to handle requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{"status": "alive"}
	json.NewEncoder(w).Encode(response)
}

// ReadinessHandler provides a readiness probe endpoint that executes
// all health checks. It returns 200 OK if the application is ready to
// serve traffic, or 503 Service Unavailable if any health check fails.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")

	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	json.NewEncoder(w).Encode(health)
}

// SimulationHealthCheck verifies that the simulation loop is running
// and still producing ticks.
type SimulationHealthCheck struct {
	running      func() bool
	lastUpdate   func() time.Time
	staleTimeout time.Duration
}

// NewSimulationHealthCheck creates a health check for the simulation
// loop. The check fails when the simulation is stopped or when no step
// has completed within staleTimeout.
func NewSimulationHealthCheck(running func() bool, lastUpdate func() time.Time, staleTimeout time.Duration) *SimulationHealthCheck {
	return &SimulationHealthCheck{
		running:      running,
		lastUpdate:   lastUpdate,
		staleTimeout: staleTimeout,
	}
}

// Name returns the name of this health check.
func (s *SimulationHealthCheck) Name() string {
	return "simulation"
}

// Check verifies that the simulation is running and not stalled.
func (s *SimulationHealthCheck) Check(ctx context.Context) error {
	if !s.running() {
		return fmt.Errorf("simulation is not running")
	}
	if last := s.lastUpdate(); time.Since(last) > s.staleTimeout {
		return fmt.Errorf("simulation stalled, last step %v ago", time.Since(last).Round(time.Millisecond))
	}
	return nil
}

// ClothStateHealthCheck verifies that the cloth state has not diverged.
// An exploding integration shows up as NaN or infinite node positions
// long before anything else fails.
type ClothStateHealthCheck struct {
	positions func() []physics.Vec3
}

// NewClothStateHealthCheck creates a health check over the node
// positions returned by the given snapshot function.
func NewClothStateHealthCheck(positions func() []physics.Vec3) *ClothStateHealthCheck {
	return &ClothStateHealthCheck{positions: positions}
}

// Name returns the name of this health check.
func (c *ClothStateHealthCheck) Name() string {
	return "cloth_state"
}

// Check verifies that every node position is finite.
func (c *ClothStateHealthCheck) Check(ctx context.Context) error {
	for i, p := range c.positions() {
		for axis := 0; axis < 3; axis++ {
			v := p[axis]
			if math32.IsNaN(v) || math32.IsInf(v, 0) {
				return fmt.Errorf("node %d has non-finite position %v", i, p)
			}
		}
	}
	return nil
}

// NetworkHealthCheck verifies that the serving surface is active.
type NetworkHealthCheck struct {
	clientCount func() int
	maxClients  int
}

// NewNetworkHealthCheck creates a health check for the websocket
// server. It fails when the client count exceeds the configured limit,
// which indicates a registration leak.
func NewNetworkHealthCheck(clientCount func() int, maxClients int) *NetworkHealthCheck {
	return &NetworkHealthCheck{
		clientCount: clientCount,
		maxClients:  maxClients,
	}
}

// Name returns the name of this health check.
func (n *NetworkHealthCheck) Name() string {
	return "network"
}

// Check verifies that the client count is within bounds.
func (n *NetworkHealthCheck) Check(ctx context.Context) error {
	count := n.clientCount()
	if count < 0 || count > n.maxClients {
		return fmt.Errorf("client count %d outside [0, %d]", count, n.maxClients)
	}
	return nil
}
