// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-clothsim/pkg/logging"
	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// Frame is one renderable view of the simulation state.
type Frame struct {
	Tick      uint64
	Dim       int
	Positions []physics.Vec3
	Colliders []physics.Sphere
}

// Renderer draws simulation frames.
type Renderer interface {
	Render(frame Frame)
}

// NullRenderer is a Renderer that only logs, for headless runs.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{
		logger: logging.NewLogger(),
	}
}

// Render implements Renderer.
func (d *NullRenderer) Render(frame Frame) {
	d.logger.Debug(context.Background(), "Render called",
		"tick", frame.Tick,
		"nodes", len(frame.Positions),
		"colliders", len(frame.Colliders),
	)
}
