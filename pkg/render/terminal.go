// pkg/render/terminal.go
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/opd-ai/go-clothsim/pkg/physics"
)

// TerminalRenderer provides a simple ASCII-based rendering for
// terminals. It projects the world X/Y plane onto the character grid,
// so a hanging cloth is seen from the side.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float32
	centerPos physics.Vec3
	out       io.Writer
}

// NewTerminalRenderer creates a new terminal renderer with the
// specified dimensions. Scale is world units per character cell.
func NewTerminalRenderer(out io.Writer, width, height int, scale float32) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	return &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		out:    out,
	}
}

// SetCenter sets the world position mapped to the middle of the view.
func (r *TerminalRenderer) SetCenter(pos physics.Vec3) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to screen coordinates.
// World Y grows upward, screen rows grow downward.
func (r *TerminalRenderer) worldToScreen(pos physics.Vec3) (int, int) {
	screenX := int((pos.X()-r.centerPos.X())/r.scale) + r.width/2
	screenY := r.height/2 - int((pos.Y()-r.centerPos.Y())/r.scale)
	return screenX, screenY
}

func (r *TerminalRenderer) clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

func (r *TerminalRenderer) plot(x, y int, symbol rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = symbol
	}
}

// Render implements Renderer: cloth nodes as dots, collider centers as
// O with their radius marked along the horizontal axis.
func (r *TerminalRenderer) Render(frame Frame) {
	r.clear()

	for _, sphere := range frame.Colliders {
		cx, cy := r.worldToScreen(sphere.Center)
		r.plot(cx, cy, 'O')
		span := int(sphere.Radius / r.scale)
		for dx := -span; dx <= span; dx++ {
			if dx != 0 {
				r.plot(cx+dx, cy, 'o')
			}
		}
	}

	for _, pos := range frame.Positions {
		x, y := r.worldToScreen(pos)
		r.plot(x, y, '.')
	}

	r.present(frame.Tick)
}

func (r *TerminalRenderer) present(tick uint64) {
	// Clear terminal
	fmt.Fprint(r.out, "\033[H\033[2J")

	fmt.Fprintf(r.out, "tick %d\n", tick)
	fmt.Fprintln(r.out, "+"+strings.Repeat("-", r.width)+"+")
	for y := range r.buffer {
		fmt.Fprintln(r.out, "|"+string(r.buffer[y])+"|")
	}
	fmt.Fprintln(r.out, "+"+strings.Repeat("-", r.width)+"+")
}
