// pkg/render/renderer_test.go
package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/opd-ai/go-hoverslam/pkg/guidance"
	"github.com/opd-ai/go-hoverslam/pkg/logging"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
	"github.com/opd-ai/go-hoverslam/pkg/world"
)

func captureNull(f func(r *NullRenderer)) string {
	var buf bytes.Buffer
	f(NewNullRenderer(logging.NewLoggerWithOptions(&buf, "debug")))
	return buf.String()
}

func TestNullRenderer_LogsEachCall(t *testing.T) {
	tests := []struct {
		name     string
		call     func(r *NullRenderer)
		expected []string
	}{
		{
			name:     "Clear",
			call:     func(r *NullRenderer) { r.Clear() },
			expected: []string{"Clear called"},
		},
		{
			name:     "Present",
			call:     func(r *NullRenderer) { r.Present() },
			expected: []string{"Present called"},
		},
		{
			name:     "RenderGround",
			call:     func(r *NullRenderer) { r.RenderGround(650, 800) },
			expected: []string{"RenderGround called", `"ground_y":650`},
		},
		{
			name: "RenderRocket",
			call: func(r *NullRenderer) {
				r.RenderRocket(world.BodyState{
					ID:        7,
					Position:  physics.Vector2D{X: 400, Y: 150},
					Direction: 90,
					Status:    rocket.Landed,
				})
			},
			expected: []string{"RenderRocket called", `"rocket_id":7`, `"status":"landed"`},
		},
		{
			name: "RenderTelemetry",
			call: func(r *NullRenderer) {
				r.RenderTelemetry(guidance.Telemetry{Altitude: 120, ShouldBurn: true})
			},
			expected: []string{"RenderTelemetry called", `"should_burn":true`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureNull(tt.call)
			for _, want := range tt.expected {
				if !strings.Contains(output, want) {
					t.Errorf("expected log to contain %q, got: %s", want, output)
				}
			}
		})
	}
}

func TestNullRenderer_SilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	r := NewNullRenderer(logging.NewLoggerWithOptions(&buf, "info"))
	r.Clear()
	r.Present()
	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got: %s", buf.String())
	}
}

func TestNewNullRenderer_NilLogger(t *testing.T) {
	r := NewNullRenderer(nil)
	// must not panic
	r.Clear()
	r.RenderRocket(world.BodyState{})
	r.Present()
}

type recorder struct {
	calls []string
}

func (r *recorder) Clear() { r.calls = append(r.calls, "clear") }
func (r *recorder) RenderGround(float64, float64) { r.calls = append(r.calls, "ground") }
func (r *recorder) RenderRocket(world.BodyState) { r.calls = append(r.calls, "rocket") }
func (r *recorder) RenderTelemetry(guidance.Telemetry) { r.calls = append(r.calls, "telemetry") }
func (r *recorder) Present() { r.calls = append(r.calls, "present") }

func TestDrawFrame_CallOrder(t *testing.T) {
	rec := &recorder{}
	state := world.State{
		GroundY: 650,
		Bodies:  []world.BodyState{{ID: 1}, {ID: 2}},
	}

	DrawFrame(rec, state, 800, guidance.Telemetry{})

	want := []string{"clear", "ground", "rocket", "rocket", "telemetry", "present"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Errorf("expected calls %v, got %v", want, rec.calls)
	}
}
