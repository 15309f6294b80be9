package validation

import (
	"sync"
	"time"
)

// CommandLimiter caps how fast each connected viewer may send collider
// commands. Snapshots flow server to client unthrottled; this guards only
// the inbound path, so one runaway client cannot churn the collider set
// faster than the simulation consumes it or starve other clients' acks.
type CommandLimiter struct {
	mu        sync.Mutex
	capacity  float64
	window    time.Duration
	buckets   map[string]*commandBucket
	lastSweep time.Time
	now       func() time.Time
}

// commandBucket is one client's token balance. Tokens are fractional so
// refill accrues smoothly instead of in whole-window bursts.
type commandBucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewCommandLimiter allows each client capacity commands per window.
func NewCommandLimiter(capacity int, window time.Duration) *CommandLimiter {
	return &CommandLimiter{
		capacity:  float64(capacity),
		window:    window,
		buckets:   make(map[string]*commandBucket),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow consumes one token for the client, creating a full bucket on
// first sight. It returns false when the client is over its rate.
func (cl *CommandLimiter) Allow(clientID string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	cl.sweep(now)

	bucket, ok := cl.buckets[clientID]
	if !ok {
		bucket = &commandBucket{tokens: cl.capacity}
		cl.buckets[clientID] = bucket
	} else {
		elapsed := now.Sub(bucket.lastSeen)
		bucket.tokens += cl.capacity * float64(elapsed) / float64(cl.window)
		if bucket.tokens > cl.capacity {
			bucket.tokens = cl.capacity
		}
	}
	bucket.lastSeen = now

	if bucket.tokens < 1 {
		return false
	}
	bucket.tokens--
	return true
}

// sweep drops buckets idle for more than two windows, so clients that
// disconnected do not accumulate forever. Running it inline on Allow
// keeps the limiter goroutine-free.
func (cl *CommandLimiter) sweep(now time.Time) {
	if now.Sub(cl.lastSweep) < cl.window {
		return
	}
	cl.lastSweep = now

	cutoff := now.Add(-2 * cl.window)
	for id, bucket := range cl.buckets {
		if bucket.lastSeen.Before(cutoff) {
			delete(cl.buckets, id)
		}
	}
}

// Close drops all per-client state.
func (cl *CommandLimiter) Close() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.buckets = make(map[string]*commandBucket)
}
