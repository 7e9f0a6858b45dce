// pkg/render/engo/scene.go
package engo

import (
	"context"
	"math"

	"github.com/EngoEngine/ecs"
	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-hoverslam/pkg/logging"
	"github.com/opd-ai/go-hoverslam/pkg/render"
	"github.com/opd-ai/go-hoverslam/pkg/sim"
)

// maxFrameStep caps the simulated seconds per frame.
const maxFrameStep = 0.1

// SceneType is the engo scene name.
const SceneType = "HoverslamScene"

// Scene shows one session in an engo window.
type Scene struct {
	session *sim.Session
	logger  *logging.Logger
	mode    sim.Mode

	world    *ecs.World
	renderer *EngoRenderer
	input    *InputSystem
	hud      *HUDSystem
}

// NewScene creates a scene that starts an attempt in mode when set up.
func NewScene(session *sim.Session, mode sim.Mode, logger *logging.Logger) *Scene {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Scene{
		session: session,
		logger:  logger,
		mode:    mode,
	}
}

// Type returns the scene type (required by Engo)
func (scene *Scene) Type() string {
	return SceneType
}

// Preload is called before the scene starts (required by Engo)
func (scene *Scene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *Scene) Setup(u engo.Updater) {
	w, _ := u.(*ecs.World)
	scene.world = w

	common.SetBackground(skyColor)
	SetupInputBindings()

	rs := &common.RenderSystem{}
	w.AddSystem(rs)

	scene.renderer = NewEngoRenderer(w)
	if err := scene.renderer.Initialize(); err != nil {
		panic("Failed to initialize renderer: " + err.Error())
	}

	scene.input = NewInputSystem(scene.session, scene.logger)
	w.AddSystem(scene.input)
	w.AddSystem(&stepSystem{scene: scene})

	scene.hud = NewHUDSystem(scene.hudState)
	scene.hud.AddTo(rs)
	w.AddSystem(scene.hud)

	if err := scene.session.Start(context.Background(), scene.mode); err != nil {
		panic("Failed to start landing attempt: " + err.Error())
	}
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *Scene) Exit() {
	if err := scene.session.Close(); err != nil {
		scene.logger.Error(context.Background(), "failed to close session", err)
	}
}

// frame advances the session by dt seconds and redraws it.
func (scene *Scene) frame(dt float64) {
	scene.session.Tick(math.Min(dt, maxFrameStep))

	cfg := scene.session.Config()
	render.DrawFrame(scene.renderer,
		scene.session.World().Snapshot(),
		cfg.World.WindowWidth,
		scene.session.Telemetry())
}

func (scene *Scene) hudState() HUDState {
	cfg := scene.session.Config()
	tel := scene.renderer.Telemetry()
	s := HUDState{
		Altitude:     tel.Altitude,
		MaxAltitude:  cfg.Rocket.InitialAltitude - cfg.Rocket.Height,
		BurnAltitude: tel.BurnAltitude,
		ShouldBurn:   tel.ShouldBurn,
		MaxSpeed:     cfg.Rocket.MaxLateralSpeed,
		SafeSpeed:    cfg.Landing.MaxVelocity,
		Paused:       scene.session.Paused(),
	}
	if s.MaxSpeed <= 0 {
		s.MaxSpeed = math.Sqrt(2 * cfg.World.Gravity * s.MaxAltitude)
	}

	if r := scene.session.Rocket(); r != nil {
		if r.InitialFuel() > 0 {
			s.FuelFraction = r.Fuel() / r.InitialFuel()
		}
		s.VerticalSpeed = r.Velocity().Y
		s.LateralSpeed = r.Velocity().X
	}
	if sum, ok := scene.session.Summary(); ok {
		success := sum.Outcome.Success
		s.Outcome = &success
	}
	return s
}

// stepSystem runs the simulation once per engo frame.
type stepSystem struct {
	scene *Scene
}

// Priority runs after input and before the HUD.
func (s *stepSystem) Priority() int { return 10 }

// Remove satisfies the ecs.System interface
func (s *stepSystem) Remove(basic ecs.BasicEntity) {}

// Update satisfies the ecs.System interface
func (s *stepSystem) Update(dt float32) {
	s.scene.frame(float64(dt))
}

// Options are the window settings.
type Options struct {
	Title      string
	Fullscreen bool
	VSync      bool
}

// Run opens a window sized from the session config and blocks until it is
// closed.
func Run(session *sim.Session, mode sim.Mode, logger *logging.Logger, opts Options) {
	if opts.Title == "" {
		opts.Title = "Hoverslam"
	}
	cfg := session.Config()
	engo.Run(engo.RunOptions{
		Title:      opts.Title,
		Width:      int(cfg.World.WindowWidth),
		Height:     int(cfg.World.WindowHeight),
		Fullscreen: opts.Fullscreen,
		VSync:      opts.VSync,
	}, NewScene(session, mode, logger))
}
