// pkg/render/engo/input.go
package engo

import (
	"context"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"

	"github.com/opd-ai/go-hoverslam/pkg/logging"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
	"github.com/opd-ai/go-hoverslam/pkg/sim"
)

// Button names.
const (
	buttonThrust      = "thrust"
	buttonRotateLeft  = "rotateLeft"
	buttonRotateRight = "rotateRight"
	buttonPause       = "pause"
	buttonRestart     = "restart"
	buttonMode        = "mode"
)

// Controls is one frame of sampled buttons.
type Controls struct {
	Thrust      bool
	RotateLeft  bool
	RotateRight bool
	Pause       bool // just pressed
	Restart     bool // just pressed
	SwitchMode  bool // just pressed
}

// ManualInput maps held buttons to pilot signals.
func (c Controls) ManualInput() rocket.ManualInput {
	return rocket.ManualInput{
		RotateLeft:  c.RotateLeft,
		RotateRight: c.RotateRight,
		Throttle:    c.Thrust,
	}
}

// Controller is the part of a session the input system drives.
type Controller interface {
	Mode() sim.Mode
	SetManualInput(in rocket.ManualInput)
	TogglePause()
	Start(ctx context.Context, mode sim.Mode) error
	Restart(ctx context.Context) error
}

// InputSystem turns keyboard state into pilot signals and session commands.
type InputSystem struct {
	session Controller
	logger  *logging.Logger
	sample  func() Controls
}

// NewInputSystem creates an input system reading engo's keyboard state.
func NewInputSystem(session Controller, logger *logging.Logger) *InputSystem {
	if logger == nil {
		logger = logging.Discard()
	}
	return &InputSystem{
		session: session,
		logger:  logger,
		sample:  readControls,
	}
}

// Priority runs input before the simulation step.
func (is *InputSystem) Priority() int { return 20 }

// Remove satisfies the ecs.System interface
func (is *InputSystem) Remove(basic ecs.BasicEntity) {}

// Update samples the keyboard and applies it.
func (is *InputSystem) Update(dt float32) {
	is.apply(is.sample())
}

func (is *InputSystem) apply(c Controls) {
	ctx := context.Background()

	if c.Pause {
		is.session.TogglePause()
	}
	if c.SwitchMode {
		next := sim.ModeManual
		if is.session.Mode() == sim.ModeManual {
			next = sim.ModeAutonomous
		}
		if err := is.session.Start(ctx, next); err != nil {
			is.logger.Error(ctx, "failed to switch mode", err, "mode", string(next))
		}
	} else if c.Restart {
		if err := is.session.Restart(ctx); err != nil {
			is.logger.Error(ctx, "failed to restart attempt", err)
		}
	}

	// the autonomous rocket ignores the keyboard
	if is.session.Mode() == sim.ModeManual {
		is.session.SetManualInput(c.ManualInput())
	}
}

func readControls() Controls {
	return Controls{
		Thrust:      engo.Input.Button(buttonThrust).Down(),
		RotateLeft:  engo.Input.Button(buttonRotateLeft).Down(),
		RotateRight: engo.Input.Button(buttonRotateRight).Down(),
		Pause:       engo.Input.Button(buttonPause).JustPressed(),
		Restart:     engo.Input.Button(buttonRestart).JustPressed(),
		SwitchMode:  engo.Input.Button(buttonMode).JustPressed(),
	}
}

// SetupInputBindings sets up the key bindings
func SetupInputBindings() {
	engo.Input.RegisterButton(buttonThrust, engo.KeyW, engo.KeyArrowUp)
	engo.Input.RegisterButton(buttonRotateLeft, engo.KeyA, engo.KeyArrowLeft)
	engo.Input.RegisterButton(buttonRotateRight, engo.KeyD, engo.KeyArrowRight)

	engo.Input.RegisterButton(buttonPause, engo.KeySpace)
	engo.Input.RegisterButton(buttonRestart, engo.KeyR)
	engo.Input.RegisterButton(buttonMode, engo.KeyM)
}
