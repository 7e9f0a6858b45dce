package engo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/opd-ai/go-hoverslam/pkg/rocket"
	"github.com/opd-ai/go-hoverslam/pkg/sim"
)

func TestLayoutHUD_BarFills(t *testing.T) {
	l := layoutHUD(HUDState{
		Altitude:      200,
		MaxAltitude:   400,
		BurnAltitude:  100,
		FuelFraction:  0.25,
		VerticalSpeed: -125,
		LateralSpeed:  500,
		MaxSpeed:      250,
	})

	tests := []struct {
		name string
		bar  bar
		fill float32
	}{
		{"altitude", l.altitude, 80},
		{"fuel", l.fuel, 40},
		{"vertical", l.vertical, 80},
		{"lateral", l.lateral, 160},
	}
	for _, tt := range tests {
		if !near(tt.bar.fill.H, tt.fill) {
			t.Errorf("%s fill height = %v, want %v", tt.name, tt.bar.fill.H, tt.fill)
		}
		// fills grow up from the bottom of the frame
		if !near(tt.bar.fill.Y+tt.bar.fill.H, tt.bar.frame.Y+tt.bar.frame.H) {
			t.Errorf("%s fill not anchored to the frame bottom: %+v in %+v", tt.name, tt.bar.fill, tt.bar.frame)
		}
	}

	if l.altitude.frame.X >= l.fuel.frame.X || l.fuel.frame.X >= l.vertical.frame.X {
		t.Error("expected bars laid out left to right")
	}

	// burn marker at a quarter of the altitude bar
	markerCentre := l.burnMarker.Y + l.burnMarker.H/2
	if !near(markerCentre, hudMargin+hudBarHeight*0.75) {
		t.Errorf("burn marker at %v, want %v", markerCentre, hudMargin+hudBarHeight*0.75)
	}
}

func TestLayoutHUD_Colours(t *testing.T) {
	calm := layoutHUD(HUDState{VerticalSpeed: 5, SafeSpeed: 10, MaxSpeed: 100, MaxAltitude: 1})
	if calm.altitude.color != hudFillColor || calm.vertical.color != hudFillColor {
		t.Error("expected fill colour while calm")
	}

	hot := layoutHUD(HUDState{VerticalSpeed: 50, SafeSpeed: 10, MaxSpeed: 100, ShouldBurn: true, MaxAltitude: 1})
	if hot.vertical.color != hudWarnColor {
		t.Error("expected warning colour above the landing speed")
	}
	if hot.altitude.color != burnMarkerColor {
		t.Error("expected burn colour while the guidance wants to burn")
	}
}

func TestLayoutHUD_StatusLamp(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name  string
		state HUDState
		show  bool
		want  any
	}{
		{name: "flying", state: HUDState{}, show: false},
		{name: "paused", state: HUDState{Paused: true}, show: true, want: rcsColor},
		{name: "landed", state: HUDState{Outcome: &yes, Paused: true}, show: true, want: hudFillColor},
		{name: "crashed", state: HUDState{Outcome: &no}, show: true, want: hudWarnColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := layoutHUD(tt.state)
			if l.showStatus != tt.show {
				t.Fatalf("showStatus = %v, want %v", l.showStatus, tt.show)
			}
			if tt.show && l.statusColor != tt.want {
				t.Errorf("status colour = %v, want %v", l.statusColor, tt.want)
			}
		})
	}
}

func TestFraction(t *testing.T) {
	tests := []struct {
		v, limit, want float64
	}{
		{50, 100, 0.5},
		{150, 100, 1},
		{-5, 100, 0},
		{5, 0, 0},
		{math.NaN(), 1, 0},
	}
	for _, tt := range tests {
		if got := fraction(tt.v, tt.limit); got != tt.want {
			t.Errorf("fraction(%v, %v) = %v, want %v", tt.v, tt.limit, got, tt.want)
		}
	}
}

func TestHUDSystem_UpdatePlacesSprites(t *testing.T) {
	state := HUDState{Altitude: 100, MaxAltitude: 400, FuelFraction: 1}
	hud := NewHUDSystem(func() HUDState { return state })

	hud.Update(0.016)

	if !near(hud.fills[0].Height, 40) {
		t.Errorf("altitude fill height = %v, want 40", hud.fills[0].Height)
	}
	if !near(hud.fills[1].Height, hudBarHeight) {
		t.Errorf("fuel fill height = %v, want %v", hud.fills[1].Height, hudBarHeight)
	}
	if !hud.status.Hidden {
		t.Error("expected status lamp hidden while flying")
	}

	state.Paused = true
	hud.Update(0.016)
	if hud.status.Hidden {
		t.Error("expected status lamp while paused")
	}
}

type fakeController struct {
	mode     sim.Mode
	input    rocket.ManualInput
	toggles  int
	starts   []sim.Mode
	restarts int
	err      error
}

func (f *fakeController) Mode() sim.Mode { return f.mode }
func (f *fakeController) SetManualInput(in rocket.ManualInput) { f.input = in }
func (f *fakeController) TogglePause() { f.toggles++ }
func (f *fakeController) Restart(context.Context) error {
	f.restarts++
	return f.err
}
func (f *fakeController) Start(_ context.Context, mode sim.Mode) error {
	f.starts = append(f.starts, mode)
	f.mode = mode
	return f.err
}

func TestInputSystem_ManualSignals(t *testing.T) {
	ctl := &fakeController{mode: sim.ModeManual}
	is := NewInputSystem(ctl, nil)

	is.apply(Controls{Thrust: true, RotateLeft: true})

	want := rocket.ManualInput{Throttle: true, RotateLeft: true}
	if ctl.input != want {
		t.Errorf("input = %+v, want %+v", ctl.input, want)
	}
}

func TestInputSystem_AutonomousIgnoresSteering(t *testing.T) {
	ctl := &fakeController{mode: sim.ModeAutonomous}
	is := NewInputSystem(ctl, nil)

	is.apply(Controls{Thrust: true, RotateRight: true})

	if ctl.input != (rocket.ManualInput{}) {
		t.Errorf("expected no manual input in autonomous mode, got %+v", ctl.input)
	}
}

func TestInputSystem_Commands(t *testing.T) {
	ctl := &fakeController{mode: sim.ModeAutonomous}
	is := NewInputSystem(ctl, nil)

	is.apply(Controls{Pause: true})
	is.apply(Controls{Restart: true})
	is.apply(Controls{SwitchMode: true})
	is.apply(Controls{SwitchMode: true, Restart: true})

	if ctl.toggles != 1 {
		t.Errorf("toggles = %d, want 1", ctl.toggles)
	}
	if ctl.restarts != 1 {
		t.Errorf("restarts = %d, want 1 (mode switch takes precedence)", ctl.restarts)
	}
	wantStarts := []sim.Mode{sim.ModeManual, sim.ModeAutonomous}
	if len(ctl.starts) != len(wantStarts) {
		t.Fatalf("starts = %v, want %v", ctl.starts, wantStarts)
	}
	for i := range wantStarts {
		if ctl.starts[i] != wantStarts[i] {
			t.Errorf("start %d = %v, want %v", i, ctl.starts[i], wantStarts[i])
		}
	}
}

func TestInputSystem_ErrorsAreLoggedNotFatal(t *testing.T) {
	ctl := &fakeController{mode: sim.ModeManual, err: errors.New("boom")}
	is := NewInputSystem(ctl, nil)

	// must not panic
	is.apply(Controls{Restart: true})
	is.apply(Controls{SwitchMode: true})
}

func TestInputSystem_Priority(t *testing.T) {
	is := NewInputSystem(&fakeController{}, nil)
	step := &stepSystem{}
	if is.Priority() <= step.Priority() {
		t.Error("input must run before the simulation step")
	}
}
