package render

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-hoverslam/pkg/guidance"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
	"github.com/opd-ai/go-hoverslam/pkg/world"
)

// Cell symbols.
const (
	symNose   = '^'
	symBody   = '|'
	symWreck  = 'x'
	symPlume  = '*'
	symRCSL   = '<'
	symRCSR   = '>'
	symGround = '='
)

// TerminalRenderer draws an ASCII view of the world. One cell covers scale
// world units in each direction.
type TerminalRenderer struct {
	width  int
	height int
	buffer [][]rune
	scale  float64
	out    io.Writer
	status string
	// ClearScreen emits the ANSI home/clear sequence before each frame.
	ClearScreen bool
}

// NewTerminalRenderer creates a renderer with a width×height cell buffer
// that writes frames to out.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	if scale <= 0 {
		scale = 1
	}

	return &TerminalRenderer{
		width:       width,
		height:      height,
		buffer:      buffer,
		scale:       scale,
		out:         out,
		ClearScreen: true,
	}
}

// worldToScreen converts world coordinates to a cell.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	return int(math.Floor(pos.X / r.scale)), int(math.Floor(pos.Y / r.scale))
}

func (r *TerminalRenderer) set(x, y int, c rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = c
	}
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
	r.status = ""
}

// Present implements Renderer.
func (r *TerminalRenderer) Present() {
	w := bufio.NewWriter(r.out)
	defer w.Flush()

	if r.ClearScreen {
		fmt.Fprint(w, "\033[H\033[2J")
	}

	border := "+" + strings.Repeat("-", r.width) + "+"
	fmt.Fprintln(w, border)
	for y := range r.buffer {
		fmt.Fprintln(w, "|"+string(r.buffer[y])+"|")
	}
	fmt.Fprintln(w, border)
	if r.status != "" {
		fmt.Fprintln(w, r.status)
	}
}

// RenderGround implements Renderer. The ground fills every row from groundY
// down.
func (r *TerminalRenderer) RenderGround(groundY, width float64) {
	_, top := r.worldToScreen(physics.Vector2D{Y: groundY})
	cols := int(math.Ceil(width / r.scale))
	for y := top; y < r.height; y++ {
		for x := 0; x < cols; x++ {
			r.set(x, y, symGround)
		}
	}
}

// RenderRocket implements Renderer. The body is drawn along its heading
// about its centre, nose first; lit engines add plume behind the tail and
// firing thrusters show beside the nose.
func (r *TerminalRenderer) RenderRocket(body world.BodyState) {
	rad := physics.Radians(body.Direction)
	// screen y grows down, so the nose direction flips sin
	axis := physics.Vector2D{X: math.Cos(rad), Y: -math.Sin(rad)}
	centre := physics.Vector2D{X: body.Position.X, Y: body.Position.Y + body.Height/2}
	nose := centre.Add(axis.Scale(body.Height / 2))

	cells := int(math.Max(1, math.Ceil(body.Height/r.scale)))
	fill := rune(symBody)
	if body.Status == rocket.Crashed {
		fill = symWreck
	}
	for i := 1; i < cells; i++ {
		p := nose.Sub(axis.Scale(float64(i) * r.scale))
		x, y := r.worldToScreen(p)
		r.set(x, y, fill)
	}
	nx, ny := r.worldToScreen(nose)
	if body.Status == rocket.Crashed {
		r.set(nx, ny, symWreck)
	} else {
		r.set(nx, ny, symNose)
	}

	lit := false
	for _, on := range body.Engines {
		lit = lit || on
	}
	if lit {
		tail := centre.Sub(axis.Scale(body.Height / 2))
		x, y := r.worldToScreen(tail)
		r.set(x, y, symPlume)
	}

	if body.RCS.Left {
		r.set(nx-1, ny, symRCSL)
	}
	if body.RCS.Right {
		r.set(nx+1, ny, symRCSR)
	}
}

// RenderTelemetry implements Renderer. It sets the status line printed
// under the frame.
func (r *TerminalRenderer) RenderTelemetry(t guidance.Telemetry) {
	impact := "--"
	if t.ImpactKnown {
		impact = fmt.Sprintf("%.2fs", t.ImpactTime)
	}
	burn := ""
	if t.ShouldBurn {
		burn = " BURN"
	}
	r.status = fmt.Sprintf("alt %7.1f  burn@ %7.1f  impact %s%s",
		t.Altitude, t.BurnAltitude, impact, burn)
}
