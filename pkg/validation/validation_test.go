package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/chewxy/math32"
)

func TestValidateColliderName(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:  "valid simple name",
			input: "ball",
			want:  "ball",
		},
		{
			name:  "valid name with spaces",
			input: "big ball",
			want:  "big ball",
		},
		{
			name:  "valid name with hyphen and dot",
			input: "sphere-1.5",
			want:  "sphere-1.5",
		},
		{
			name:  "leading and trailing spaces trimmed",
			input: "  ball  ",
			want:  "ball",
		},
		{
			name:  "empty name allowed",
			input: "",
			want:  "",
		},
		{
			name:        "only whitespace",
			input:       "   ",
			wantErr:     true,
			errContains: "only whitespace",
		},
		{
			name:        "too long",
			input:       strings.Repeat("a", MaxColliderNameLen+1),
			wantErr:     true,
			errContains: "too long",
		},
		{
			name:        "invalid characters",
			input:       "ball<script>",
			wantErr:     true,
			errContains: "invalid characters",
		},
		{
			name:        "control characters",
			input:       "ball\x00",
			wantErr:     true,
			errContains: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateColliderName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateColliderName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ValidateColliderName(%q) = %q, expected %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateRadius(t *testing.T) {
	tests := []struct {
		name    string
		radius  float32
		wantErr bool
	}{
		{name: "valid", radius: 1.5},
		{name: "small_positive", radius: 0.001},
		{name: "zero", radius: 0, wantErr: true},
		{name: "negative", radius: -1, wantErr: true},
		{name: "too_large", radius: MaxColliderRadius + 1, wantErr: true},
		{name: "nan", radius: math32.NaN(), wantErr: true},
		{name: "inf", radius: math32.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRadius(tt.radius)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRadius(%v) error = %v, wantErr %v", tt.radius, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCenter(t *testing.T) {
	tests := []struct {
		name    string
		center  [3]float32
		wantErr bool
	}{
		{name: "origin", center: [3]float32{0, 0, 0}},
		{name: "typical", center: [3]float32{1.5, -3, 10}},
		{name: "nan_axis", center: [3]float32{0, math32.NaN(), 0}, wantErr: true},
		{name: "inf_axis", center: [3]float32{math32.Inf(-1), 0, 0}, wantErr: true},
		{name: "out_of_range", center: [3]float32{0, 0, 2e6}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCenter(tt.center)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCenter(%v) error = %v, wantErr %v", tt.center, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMessage(t *testing.T) {
	validator := NewMessageValidator()
	defer validator.Close()

	if err := validator.ValidateMessage([]byte(`{"type":"add_collider"}`), "client-1"); err != nil {
		t.Errorf("valid message rejected: %v", err)
	}

	if err := validator.ValidateMessage([]byte(`{not json`), "client-1"); err == nil {
		t.Error("expected an error for invalid JSON")
	}

	huge := []byte(`"` + strings.Repeat("x", MaxMessageSize) + `"`)
	if err := validator.ValidateMessage(huge, "client-1"); err == nil {
		t.Error("expected an error for an oversized message")
	}
}

func TestValidateMessageRateLimit(t *testing.T) {
	validator := NewMessageValidator()
	defer validator.Close()

	payload := []byte(`{"type":"move_collider"}`)
	for i := 0; i < MaxMessagesPerMin; i++ {
		if err := validator.ValidateMessage(payload, "spammer"); err != nil {
			t.Fatalf("message %d rejected early: %v", i, err)
		}
	}
	if err := validator.ValidateMessage(payload, "spammer"); err == nil {
		t.Error("expected the rate limit to trip")
	}

	// Other clients are unaffected.
	if err := validator.ValidateMessage(payload, "quiet"); err != nil {
		t.Errorf("other client rejected: %v", err)
	}
}

func TestCommandLimiterRefill(t *testing.T) {
	limiter := NewCommandLimiter(2, time.Minute)
	defer limiter.Close()

	current := time.Now()
	limiter.now = func() time.Time { return current }

	if !limiter.Allow("viewer") || !limiter.Allow("viewer") {
		t.Fatal("initial tokens not granted")
	}
	if limiter.Allow("viewer") {
		t.Fatal("third command allowed with an empty bucket")
	}

	// Half a window refills half the capacity, enough for one command.
	current = current.Add(30 * time.Second)
	if !limiter.Allow("viewer") {
		t.Error("bucket did not refill after half a window")
	}
	if limiter.Allow("viewer") {
		t.Error("refill granted more than the elapsed share")
	}
}

func TestCommandLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewCommandLimiter(5, time.Minute)
	defer limiter.Close()

	current := time.Now()
	limiter.now = func() time.Time { return current }

	limiter.Allow("gone")
	if len(limiter.buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(limiter.buckets))
	}

	// A client active three windows later triggers the sweep; the idle
	// one is dropped.
	current = current.Add(3 * time.Minute)
	limiter.Allow("active")

	if _, ok := limiter.buckets["gone"]; ok {
		t.Error("idle client bucket survived the sweep")
	}
	if _, ok := limiter.buckets["active"]; !ok {
		t.Error("active client bucket was swept")
	}
}
