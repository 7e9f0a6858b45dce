// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-hoverslam/pkg/guidance"
	"github.com/opd-ai/go-hoverslam/pkg/logging"
	"github.com/opd-ai/go-hoverslam/pkg/world"
)

// Renderer draws one frame of the simulation. Calls between Clear and
// Present build the frame; Present shows it.
type Renderer interface {
	Clear()
	RenderGround(groundY, width float64)
	RenderRocket(body world.BodyState)
	RenderTelemetry(t guidance.Telemetry)
	Present()
}

// DrawFrame renders a full frame: ground, every body, then telemetry.
func DrawFrame(r Renderer, state world.State, width float64, t guidance.Telemetry) {
	r.Clear()
	r.RenderGround(state.GroundY, width)
	for _, b := range state.Bodies {
		r.RenderRocket(b)
	}
	r.RenderTelemetry(t)
	r.Present()
}

// NullRenderer logs each call at debug level and draws nothing.
type NullRenderer struct {
	logger *logging.Logger
}

// NewNullRenderer creates a NullRenderer. A nil logger discards output.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.logger.Debug(context.Background(), "Clear called")
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.logger.Debug(context.Background(), "Present called")
}

// RenderGround implements Renderer.
func (d *NullRenderer) RenderGround(groundY, width float64) {
	d.logger.Debug(context.Background(), "RenderGround called",
		"ground_y", groundY,
		"width", width,
	)
}

// RenderRocket implements Renderer.
func (d *NullRenderer) RenderRocket(body world.BodyState) {
	d.logger.Debug(context.Background(), "RenderRocket called",
		"rocket_id", body.ID,
		"x", body.Position.X,
		"y", body.Position.Y,
		"direction", body.Direction,
		"status", body.Status.String(),
	)
}

// RenderTelemetry implements Renderer.
func (d *NullRenderer) RenderTelemetry(t guidance.Telemetry) {
	d.logger.Debug(context.Background(), "RenderTelemetry called",
		"altitude", t.Altitude,
		"burn_altitude", t.BurnAltitude,
		"should_burn", t.ShouldBurn,
	)
}
