// pkg/logging/logger_test.go
package logging

import (
	"context"
	"errors"
	"testing"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if id := GetCorrelationID(ctx); id != "" {
		t.Errorf("empty context returned correlation ID %q", id)
	}

	ctx = WithCorrelationID(ctx, "abc123")
	if id := GetCorrelationID(ctx); id != "abc123" {
		t.Errorf("GetCorrelationID() = %q, expected abc123", id)
	}
}

func TestWithCorrelationIDGenerates(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	id := GetCorrelationID(ctx)
	if id == "" {
		t.Error("expected a generated correlation ID")
	}
	if len(id) != 16 {
		t.Errorf("generated ID %q has length %d, expected 16 hex characters", id, len(id))
	}
}

func TestGenerateCorrelationIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateCorrelationID()
		if seen[id] {
			t.Fatalf("duplicate correlation ID %q", id)
		}
		seen[id] = true
	}
}

func TestWrapError(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		context  string
		args     []any
		expected string
		wantNil  bool
	}{
		{
			name:     "plain_context",
			err:      base,
			context:  "loading config",
			expected: "loading config: boom",
		},
		{
			name:     "formatted_context",
			err:      base,
			context:  "step %d failed",
			args:     []any{7},
			expected: "step 7 failed: boom",
		},
		{
			name:    "nil_error_passes_through",
			err:     nil,
			context: "ignored",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapError(tt.err, tt.context, tt.args...)
			if tt.wantNil {
				if wrapped != nil {
					t.Errorf("WrapError(nil) = %v, expected nil", wrapped)
				}
				return
			}
			if wrapped.Error() != tt.expected {
				t.Errorf("WrapError() = %q, expected %q", wrapped.Error(), tt.expected)
			}
			if !errors.Is(wrapped, base) {
				t.Error("wrapped error lost the original")
			}
		})
	}
}
