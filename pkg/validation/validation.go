// Package validation provides input validation and rate limiting for
// client messages reaching the simulation server.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chewxy/math32"
)

// Message size and content limits
const (
	MaxMessageSize      = 16 * 1024 // 16KB max message
	MaxColliderNameLen  = 32
	MaxMessagesPerMin   = 120
	MaxColliderRadius   = 1000
	MaxCoordinateExtent = 1e6
)

// Collider names carry through to snapshots, so keep the character set
// tight.
var validColliderNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.]+$`)

// MessageValidator provides validation for inbound client messages
type MessageValidator struct {
	limiter *CommandLimiter
}

// NewMessageValidator creates a new message validator with per-client
// command rate limiting
func NewMessageValidator() *MessageValidator {
	return &MessageValidator{
		limiter: NewCommandLimiter(MaxMessagesPerMin, time.Minute),
	}
}

// Close releases the validator's per-client state
func (v *MessageValidator) Close() {
	if v.limiter != nil {
		v.limiter.Close()
	}
}

// ValidateMessage validates a raw message against size and format
// constraints and applies the per-client rate limit.
func (v *MessageValidator) ValidateMessage(data []byte, clientID string) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("message too large: %d bytes (max %d)", len(data), MaxMessageSize)
	}

	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON format")
	}

	if !v.limiter.Allow(clientID) {
		return fmt.Errorf("rate limit exceeded: max %d messages per minute", MaxMessagesPerMin)
	}

	return nil
}

// ValidateColliderName validates and normalizes a collider name. Empty
// names are allowed; the server generates IDs either way.
func ValidateColliderName(name string) (string, error) {
	if name == "" {
		return "", nil
	}

	if len(name) > MaxColliderNameLen {
		return "", fmt.Errorf("collider name too long: %d characters (max %d)", len(name), MaxColliderNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("collider name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("collider name cannot be only whitespace")
	}

	if !validColliderNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("collider name contains invalid characters (only alphanumeric, spaces, hyphens, underscores and dots allowed)")
	}

	return trimmed, nil
}

// ValidateRadius validates a collider radius.
func ValidateRadius(radius float32) error {
	if math32.IsNaN(radius) || math32.IsInf(radius, 0) {
		return fmt.Errorf("radius must be finite")
	}
	if radius <= 0 {
		return fmt.Errorf("radius must be positive: %v", radius)
	}
	if radius > MaxColliderRadius {
		return fmt.Errorf("radius too large: %v (max %v)", radius, float32(MaxColliderRadius))
	}
	return nil
}

// ValidateCenter validates a collider center position. Non-finite or
// absurdly distant coordinates would poison the collision tests.
func ValidateCenter(center [3]float32) error {
	for axis, v := range center {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return fmt.Errorf("center axis %d must be finite", axis)
		}
		if math32.Abs(v) > MaxCoordinateExtent {
			return fmt.Errorf("center axis %d out of range: %v (max %v)", axis, v, float32(MaxCoordinateExtent))
		}
	}
	return nil
}
