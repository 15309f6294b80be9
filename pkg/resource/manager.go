// pkg/resource/manager.go

// Package resource bounds what the simulation server consumes. The server
// runs a small population of long-lived goroutines, the simulation loop,
// the snapshot broadcaster and one read loop per connected viewer; the
// manager tracks them, refuses new ones past the configured limit, watches
// heap usage against a budget and drains everything on shutdown.
package resource

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-clothsim/pkg/config"
	"github.com/opd-ai/go-clothsim/pkg/logging"
)

// ResourceManager enforces the CLOTHSIM_MAX_GOROUTINES and
// CLOTHSIM_MAX_MEMORY_MB budgets for the server process.
type ResourceManager struct {
	maxMemoryMB     int64
	maxGoroutines   int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration

	goroutines    atomic.Int64
	memoryUsageMB atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger *logging.Logger

	mu              sync.Mutex
	running         bool
	lastMemoryCheck time.Time
}

// NewResourceManager creates a manager from the environment configuration.
func NewResourceManager(envConfig *config.EnvironmentConfig) *ResourceManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &ResourceManager{
		maxMemoryMB:     envConfig.MaxMemoryMB,
		maxGoroutines:   int64(envConfig.MaxGoroutines),
		shutdownTimeout: envConfig.ShutdownTimeout,
		checkInterval:   envConfig.ResourceCheckInterval,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		logger:          logging.NewLogger(),
		lastMemoryCheck: time.Now(),
	}
}

// Start begins the periodic usage checks.
func (rm *ResourceManager) Start() error {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.running {
		return fmt.Errorf("resource manager already running")
	}
	rm.running = true

	go rm.monitoringLoop()

	rm.logger.Info(rm.ctx, "resource manager started",
		"max_memory_mb", rm.maxMemoryMB,
		"max_goroutines", rm.maxGoroutines,
		"check_interval", rm.checkInterval,
	)
	return nil
}

// StartGoroutine runs fn on a tracked goroutine. It refuses when the
// budget is spent, which keeps a leak in the client-handler population
// from crowding out the simulation loop. Panics in fn are recovered and
// logged so one broken handler does not take the server down.
func (rm *ResourceManager) StartGoroutine(ctx context.Context, name string, fn func(context.Context)) error {
	if current := rm.goroutines.Load(); current >= rm.maxGoroutines {
		rm.logger.Warn(ctx, "refusing goroutine, budget spent",
			"name", name,
			"current", current,
			"limit", rm.maxGoroutines,
		)
		return fmt.Errorf("goroutine budget spent: %d/%d", current, rm.maxGoroutines)
	}

	rm.goroutines.Add(1)
	go func() {
		defer rm.goroutines.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				rm.logger.Error(ctx, "tracked goroutine panicked",
					fmt.Errorf("panic: %v", r),
					"name", name,
				)
			}
		}()
		fn(ctx)
	}()

	return nil
}

// CheckMemoryUsage samples the heap and compares it against the budget.
func (rm *ResourceManager) CheckMemoryUsage() error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	currentMB := int64(m.Alloc / 1024 / 1024)
	rm.memoryUsageMB.Store(currentMB)

	rm.mu.Lock()
	rm.lastMemoryCheck = time.Now()
	rm.mu.Unlock()

	if currentMB > rm.maxMemoryMB {
		return fmt.Errorf("heap usage %dMB exceeds budget %dMB", currentMB, rm.maxMemoryMB)
	}
	return nil
}

// GetGoroutineCount returns the number of tracked goroutines.
func (rm *ResourceManager) GetGoroutineCount() int64 {
	return rm.goroutines.Load()
}

// GetMemoryUsage returns the last sampled heap usage in MB.
func (rm *ResourceManager) GetMemoryUsage() int64 {
	return rm.memoryUsageMB.Load()
}

// ResourceStats is a point-in-time usage snapshot for the health endpoint.
type ResourceStats struct {
	GoroutineCount  int64     `json:"goroutine_count"`
	MaxGoroutines   int64     `json:"max_goroutines"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// GetResourceStats returns the current usage against the budgets.
func (rm *ResourceManager) GetResourceStats() ResourceStats {
	rm.mu.Lock()
	lastCheck := rm.lastMemoryCheck
	rm.mu.Unlock()

	return ResourceStats{
		GoroutineCount:  rm.GetGoroutineCount(),
		MaxGoroutines:   rm.maxGoroutines,
		MemoryUsageMB:   rm.GetMemoryUsage(),
		MaxMemoryMB:     rm.maxMemoryMB,
		LastMemoryCheck: lastCheck,
	}
}

// Shutdown stops the monitoring loop and waits for the tracked goroutines
// to drain. The simulation loop and client handlers exit when their
// contexts are cancelled; this waits for them up to the configured
// shutdown timeout.
func (rm *ResourceManager) Shutdown(ctx context.Context) error {
	rm.mu.Lock()
	if !rm.running {
		rm.mu.Unlock()
		return nil
	}
	rm.running = false
	rm.mu.Unlock()

	rm.logger.Info(ctx, "resource manager shutting down")
	rm.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, rm.shutdownTimeout)
	defer cancel()

	select {
	case <-rm.done:
	case <-shutdownCtx.Done():
		rm.logger.Warn(ctx, "monitoring loop did not stop in time")
	}

	return rm.waitForGoroutines(shutdownCtx)
}

// waitForGoroutines polls the tracked count until it drains or the
// context expires.
func (rm *ResourceManager) waitForGoroutines(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		count := rm.GetGoroutineCount()
		if count == 0 {
			rm.logger.Info(ctx, "all tracked goroutines drained")
			return nil
		}

		select {
		case <-ticker.C:
			rm.logger.Debug(ctx, "waiting for goroutines to drain", "remaining", count)
		case <-ctx.Done():
			remaining := rm.GetGoroutineCount()
			rm.logger.Warn(ctx, "shutdown timeout with goroutines still running",
				"remaining", remaining,
			)
			return fmt.Errorf("shutdown timeout: %d goroutines still running", remaining)
		}
	}
}

// monitoringLoop samples usage at the configured interval until shutdown.
func (rm *ResourceManager) monitoringLoop() {
	defer close(rm.done)

	ticker := time.NewTicker(rm.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := rm.CheckMemoryUsage(); err != nil {
				rm.logger.Error(rm.ctx, "memory budget exceeded", err,
					"current_mb", rm.GetMemoryUsage(),
					"budget_mb", rm.maxMemoryMB,
				)
			}
			rm.logger.Debug(rm.ctx, "resource usage",
				"goroutines", rm.GetGoroutineCount(),
				"max_goroutines", rm.maxGoroutines,
				"memory_mb", rm.GetMemoryUsage(),
				"max_memory_mb", rm.maxMemoryMB,
			)
		case <-rm.ctx.Done():
			return
		}
	}
}
