// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chewxy/math32"

	"github.com/opd-ai/go-clothsim/pkg/cloth"
	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// SimConfig contains the full configuration of a cloth simulation run
type SimConfig struct {
	Cloth     ClothConfig      `json:"cloth"`
	Step      StepConfig       `json:"step"`
	Wind      WindConfig       `json:"wind"`
	Springs   SpringsConfig    `json:"springs"`
	Colliders []ColliderConfig `json:"colliders"`
	Network   NetworkConfig    `json:"network"`
}

// ClothConfig describes the node grid
type ClothConfig struct {
	Dim     int        `json:"dim"`
	Spacing float32    `json:"spacing"`
	Origin  [3]float32 `json:"origin"`
	// Pinning selects which nodes are restrained: "none", "row",
	// "corners" or "all".
	Pinning string `json:"pinning"`
}

// StepConfig contains the integration parameters
type StepConfig struct {
	Mass        float32 `json:"mass"`
	Restitution float32 `json:"restitution"`
	Dt          float32 `json:"dt"`
	// Integrator is "euler" or "leapfrog".
	Integrator string `json:"integrator"`
	// Workers bounds the step's fork-join pool; 0 selects one per CPU.
	Workers int `json:"workers"`
}

// WindConfig contains the aerodynamic drag parameters
type WindConfig struct {
	Velocity        [3]float32 `json:"velocity"`
	Influence       float32    `json:"influence"`
	DragCoefficient float32    `json:"dragCoefficient"`
}

// SpringConfig contains one spring family's coefficients
type SpringConfig struct {
	RestLength float32 `json:"restLength"`
	Stiffness  float32 `json:"stiffness"`
	Damping    float32 `json:"damping"`
	Influence  float32 `json:"influence"`
}

// SpringsConfig groups the three spring families
type SpringsConfig struct {
	Parallel SpringConfig `json:"parallel"`
	Diagonal SpringConfig `json:"diagonal"`
	Bending  SpringConfig `json:"bending"`
}

// ColliderConfig seeds one sphere collider
type ColliderConfig struct {
	Name   string     `json:"name"`
	Center [3]float32 `json:"center"`
	Radius float32    `json:"radius"`
}

// NetworkConfig contains the serving surface configuration
type NetworkConfig struct {
	ListenAddress string `json:"listenAddress"`
	// UpdateRate is how many state snapshots per second are broadcast.
	UpdateRate int `json:"updateRate"`
	MaxClients int `json:"maxClients"`
	HealthPort int `json:"healthPort"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*SimConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config SimConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *SimConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the constraints the step itself does not guard: the
// kernel treats positive mass and dt as caller-owned preconditions.
func (c *SimConfig) Validate() error {
	if c.Cloth.Dim < 1 {
		return fmt.Errorf("cloth dim must be at least 1, got %d", c.Cloth.Dim)
	}
	if c.Cloth.Spacing <= 0 {
		return fmt.Errorf("cloth spacing must be positive, got %v", c.Cloth.Spacing)
	}
	switch c.Cloth.Pinning {
	case "none", "row", "corners", "all":
	default:
		return fmt.Errorf("unknown pinning mode %q", c.Cloth.Pinning)
	}
	if c.Step.Mass <= 0 {
		return fmt.Errorf("node mass must be positive, got %v", c.Step.Mass)
	}
	if c.Step.Dt <= 0 {
		return fmt.Errorf("time step must be positive, got %v", c.Step.Dt)
	}
	switch c.Step.Integrator {
	case "euler", "leapfrog":
	default:
		return fmt.Errorf("unknown integrator %q", c.Step.Integrator)
	}
	for i, col := range c.Colliders {
		if col.Radius <= 0 {
			return fmt.Errorf("collider %d radius must be positive, got %v", i, col.Radius)
		}
	}
	if c.Network.UpdateRate < 1 {
		return fmt.Errorf("network update rate must be at least 1, got %d", c.Network.UpdateRate)
	}
	return nil
}

// StepParams converts the configuration into the kernel's parameter set.
func (c *SimConfig) StepParams() *cloth.Params {
	integrator := cloth.Euler
	if c.Step.Integrator == "leapfrog" {
		integrator = cloth.Leapfrog
	}

	toParams := func(s SpringConfig) cloth.SpringParams {
		return cloth.SpringParams{
			RestLength: s.RestLength,
			Stiffness:  s.Stiffness,
			Damping:    s.Damping,
			Influence:  s.Influence,
		}
	}

	params := &cloth.Params{
		Mass:          c.Step.Mass,
		Restitution:   c.Step.Restitution,
		Dt:            c.Step.Dt,
		Integrator:    integrator,
		Wind:          physics.Vec3{c.Wind.Velocity[0], c.Wind.Velocity[1], c.Wind.Velocity[2]},
		WindInfluence: c.Wind.Influence,
		DragCoeff:     c.Wind.DragCoefficient,
		Workers:       c.Step.Workers,
	}
	params.Springs[cloth.Parallel] = toParams(c.Springs.Parallel)
	params.Springs[cloth.Diagonal] = toParams(c.Springs.Diagonal)
	params.Springs[cloth.Bending] = toParams(c.Springs.Bending)
	return params
}

// DefaultConfig returns a default simulation configuration: a 32×32 cloth
// pinned along its top row, hanging over one sphere, with a light breeze.
func DefaultConfig() *SimConfig {
	const spacing = 0.25
	sqrt2 := math32.Sqrt(2)

	return &SimConfig{
		Cloth: ClothConfig{
			Dim:     32,
			Spacing: spacing,
			Origin:  [3]float32{0, 5, 0},
			Pinning: "row",
		},
		Step: StepConfig{
			Mass:        0.1,
			Restitution: 0.2,
			Dt:          1.0 / 60.0,
			Integrator:  "euler",
		},
		Wind: WindConfig{
			Velocity:        [3]float32{1.5, 0, 0.5},
			Influence:       1,
			DragCoefficient: 1.2,
		},
		Springs: SpringsConfig{
			Parallel: SpringConfig{RestLength: spacing, Stiffness: 80, Damping: 0.8, Influence: 1},
			Diagonal: SpringConfig{RestLength: spacing * sqrt2, Stiffness: 80, Damping: 0.8, Influence: 1},
			Bending:  SpringConfig{RestLength: 2 * spacing * sqrt2, Stiffness: 40, Damping: 0.4, Influence: 1},
		},
		Colliders: []ColliderConfig{
			{Name: "ball", Center: [3]float32{0, 2.5, 0}, Radius: 1.5},
		},
		Network: NetworkConfig{
			ListenAddress: ":8080",
			UpdateRate:    20,
			MaxClients:    16,
			HealthPort:    8081,
		},
	}
}
