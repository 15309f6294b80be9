// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"
)

// goroutineWarnFraction is the share of the goroutine budget above which
// readiness fails, before the hard limit starts refusing new client
// handlers outright.
const goroutineWarnFraction = 0.8

// ResourceHealthCheck exposes the manager's budgets to the health
// endpoint, so an operator sees heap or goroutine pressure before the
// server starts refusing viewers.
type ResourceHealthCheck struct {
	manager *ResourceManager
}

// NewResourceHealthCheck creates a health check over the given manager.
func NewResourceHealthCheck(manager *ResourceManager) *ResourceHealthCheck {
	return &ResourceHealthCheck{manager: manager}
}

// Name returns the name of this health check.
func (r *ResourceHealthCheck) Name() string {
	return "resource"
}

// Check fails when the heap is over budget or the goroutine population
// is close enough to its limit that new connections would be refused.
func (r *ResourceHealthCheck) Check(ctx context.Context) error {
	stats := r.manager.GetResourceStats()

	if stats.MemoryUsageMB > stats.MaxMemoryMB {
		return fmt.Errorf("heap usage %dMB exceeds budget %dMB",
			stats.MemoryUsageMB, stats.MaxMemoryMB)
	}

	threshold := int64(float64(stats.MaxGoroutines) * goroutineWarnFraction)
	if stats.GoroutineCount > threshold {
		return fmt.Errorf("goroutine count %d above warning threshold %d of budget %d",
			stats.GoroutineCount, threshold, stats.MaxGoroutines)
	}

	return nil
}
