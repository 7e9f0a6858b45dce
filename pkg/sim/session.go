// Package sim runs landing attempts: it launches a rocket into a world,
// steps it, and records the result once the rocket is down.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/opd-ai/go-hoverslam/pkg/config"
	"github.com/opd-ai/go-hoverslam/pkg/event"
	"github.com/opd-ai/go-hoverslam/pkg/flightlog"
	"github.com/opd-ai/go-hoverslam/pkg/guidance"
	"github.com/opd-ai/go-hoverslam/pkg/logging"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
	"github.com/opd-ai/go-hoverslam/pkg/world"
)

// Mode selects who flies the rocket.
type Mode string

const (
	ModeAutonomous Mode = "autonomous"
	ModeManual     Mode = "manual"
)

// ParseMode accepts "auto", "autonomous" or "manual".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "auto", string(ModeAutonomous):
		return ModeAutonomous, nil
	case string(ModeManual):
		return ModeManual, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

var (
	// ErrNotStarted is returned when running a session with no attempt.
	ErrNotStarted = errors.New("no landing attempt in progress")
	// ErrTimeout is returned by Run when the rocket is still flying at the
	// time limit.
	ErrTimeout = errors.New("landing attempt timed out")
	// ErrPaused is returned by Run on a paused session.
	ErrPaused = errors.New("session is paused")
)

// Summary is the result of one finished attempt.
type Summary struct {
	Outcome              rocket.Outcome
	FuelConsumedFraction float64
	FlightTime           float64
	Mode                 Mode
	CorrelationID        string
	LateralSpeed         float64
	// Aborted is set when the rocket was stopped before touching down.
	Aborted bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithStore records every finished attempt. The session does not close it.
func WithStore(store *flightlog.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithEventBus publishes attempt, engine and touchdown events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Session) { s.bus = bus }
}

// WithRand overrides the random source used for launch velocities.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// Session drives one world through successive landing attempts. It is not
// safe for concurrent use.
type Session struct {
	cfg      *config.Config
	world    *world.World
	bus      *event.Bus
	logger   *logging.Logger
	store    *flightlog.Store
	rng      *rand.Rand
	guidance guidance.Computer

	manual       *rocket.ManualPolicy
	manualRocket *rocket.Rocket
	rocket       *rocket.Rocket
	nextID       uint64

	mode       Mode
	ctx        context.Context
	attempts   int
	lateral    float64
	flightTime float64
	paused     bool
	finished   bool
	summary    Summary
}

// New builds a session from cfg. No attempt is started.
func New(cfg *config.Config, opts ...Option) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    cfg,
		manual: rocket.NewManualPolicy(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	s.logger = s.logger.WithComponent("sim")
	if s.bus == nil {
		s.bus = event.NewEventBus()
	}
	if s.rng == nil {
		seed := uint64(cfg.Simulation.Seed)
		if seed == 0 {
			seed = rand.Uint64()
		}
		s.rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	w, err := world.New(world.Config{
		Gravity: cfg.World.Gravity,
		GroundY: cfg.World.GroundY(),
		Criteria: world.LandingCriteria{
			MaxVelocity:       cfg.Landing.MaxVelocity,
			MaxAngleDeviation: cfg.Landing.MaxAngleDeviation,
		},
		Bus: s.bus,
	})
	if err != nil {
		return nil, logging.WrapError(err, "failed to create world")
	}
	s.world = w

	s.guidance = guidance.Computer{
		GroundY:           cfg.World.GroundY(),
		Gravity:           cfg.World.Gravity,
		SafetyMargin:      cfg.Guidance.SafetyMargin,
		VelocityThreshold: cfg.Guidance.VelocityThreshold,
	}

	return s, nil
}

// Close releases the world's metric registration.
func (s *Session) Close() error {
	return s.world.Close()
}

// Config returns the configuration the session was built with.
func (s *Session) Config() *config.Config { return s.cfg }

// World returns the simulated world.
func (s *Session) World() *world.World { return s.world }

// Bus returns the event bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// Rocket returns the rocket of the current attempt, or nil.
func (s *Session) Rocket() *rocket.Rocket { return s.rocket }

// Mode returns the mode of the current attempt.
func (s *Session) Mode() Mode { return s.mode }

// Attempts returns how many attempts have been started.
func (s *Session) Attempts() int { return s.attempts }

// FlightTime returns the seconds the current rocket has been airborne.
func (s *Session) FlightTime() float64 { return s.flightTime }

// Summary returns the result of the current attempt once it is over.
func (s *Session) Summary() (Summary, bool) { return s.summary, s.finished }

// Finished reports whether the current attempt has been classified.
func (s *Session) Finished() bool { return s.finished }

// Telemetry returns the guidance solution for the current rocket.
func (s *Session) Telemetry() guidance.Telemetry {
	if s.rocket == nil {
		return guidance.Telemetry{}
	}
	return s.guidance.Telemetry(s.rocket)
}

// Pause stops Tick from advancing the world.
func (s *Session) Pause() { s.paused = true }

// Resume undoes Pause.
func (s *Session) Resume() { s.paused = false }

// TogglePause flips the paused state.
func (s *Session) TogglePause() { s.paused = !s.paused }

// Paused reports whether the session is paused.
func (s *Session) Paused() bool { return s.paused }

// SetManualInput feeds pilot signals to the manual rocket for the next tick.
func (s *Session) SetManualInput(in rocket.ManualInput) {
	s.manual.SetInput(in)
}

// StartAutonomous launches a fresh rocket flown by the guidance computer.
func (s *Session) StartAutonomous(ctx context.Context) error {
	r := s.newRocket(rocket.NewAutonomousPolicy(s.guidance))
	return s.start(ctx, ModeAutonomous, r)
}

// StartManual relaunches the piloted rocket.
func (s *Session) StartManual(ctx context.Context) error {
	if s.manualRocket == nil {
		s.manualRocket = s.newRocket(s.manual)
	}
	s.manualRocket.Reset(s.spawnPoint(), s.cfg.Rocket.InitialFuel)
	return s.start(ctx, ModeManual, s.manualRocket)
}

// Start launches an attempt in the given mode.
func (s *Session) Start(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeAutonomous:
		return s.StartAutonomous(ctx)
	case ModeManual:
		return s.StartManual(ctx)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// Restart launches a new attempt in the current mode.
func (s *Session) Restart(ctx context.Context) error {
	if s.mode == "" {
		return ErrNotStarted
	}
	return s.Start(ctx, s.mode)
}

func (s *Session) newRocket(policy rocket.ControlPolicy) *rocket.Rocket {
	s.nextID++
	engines := make([]*rocket.Engine, 0, len(s.cfg.Rocket.Engines))
	for _, e := range s.cfg.Rocket.Engines {
		engines = append(engines, rocket.NewEngine(e.ThrustPower, e.FuelBurnRate))
	}
	return rocket.New(rocket.Options{
		ID:       s.nextID,
		Position: s.spawnPoint(),
		Fuel:     s.cfg.Rocket.InitialFuel,
		Height:   s.cfg.Rocket.Height,
		Engines:  engines,
		Attitude: rocket.AttitudeController{
			TurnRate:  s.cfg.Rocket.TurnRate,
			WrapError: s.cfg.Control.WrapHeadingError,
		},
		Policy: policy,
	})
}

func (s *Session) spawnPoint() physics.Vector2D {
	return physics.Vector2D{
		X: s.cfg.World.WindowWidth / 2,
		Y: s.cfg.World.GroundY() - s.cfg.Rocket.InitialAltitude,
	}
}

func (s *Session) start(ctx context.Context, mode Mode, r *rocket.Rocket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	limit := s.cfg.Rocket.MaxLateralSpeed
	s.lateral = s.rng.Float64()*limit*2 - limit
	r.SetVelocity(physics.Vector2D{X: s.lateral})

	s.world.Clear()
	s.world.Add(r)

	s.rocket = r
	s.mode = mode
	s.ctx = logging.WithCorrelationID(ctx, "")
	s.attempts++
	s.flightTime = 0
	s.finished = false
	s.summary = Summary{}

	s.logger.Info(s.ctx, "landing attempt started",
		"mode", string(mode),
		"attempt", s.attempts,
		"lateral_speed", s.lateral,
		"fuel", r.Fuel())
	s.bus.Publish(event.NewAttemptEvent(event.AttemptStarted, s,
		logging.GetCorrelationID(s.ctx), string(mode), false))

	return nil
}

// Tick advances the world by dt unless paused. When the rocket comes to rest
// the attempt is summarised, recorded and announced exactly once.
func (s *Session) Tick(dt float64) {
	if s.paused || s.rocket == nil {
		return
	}

	s.world.Tick(dt)
	if s.rocket.Airborne() {
		s.flightTime += dt
		return
	}
	if !s.finished {
		s.finish()
	}
}

// Abort stops the rocket in flight and finishes the attempt as a failure.
// Aborting a finished attempt does nothing.
func (s *Session) Abort(ctx context.Context) error {
	if s.rocket == nil {
		return ErrNotStarted
	}
	if s.finished {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.rocket.Stop()
	s.finish()
	return nil
}

func (s *Session) finish() {
	out, ok := s.world.Outcome()
	aborted := false
	if !ok {
		if s.rocket.Status() != rocket.Stopped {
			return
		}
		// halted without touchdown; there is no landing to classify
		aborted = true
		out = rocket.Outcome{
			Direction:     s.rocket.Direction(),
			FuelRemaining: s.rocket.Fuel(),
		}
	}

	consumed := 0.0
	if initial := s.rocket.InitialFuel(); initial > 0 {
		consumed = (initial - out.FuelRemaining) / initial
	}

	s.summary = Summary{
		Outcome:              out,
		FuelConsumedFraction: consumed,
		FlightTime:           s.flightTime,
		Mode:                 s.mode,
		CorrelationID:        logging.GetCorrelationID(s.ctx),
		LateralSpeed:         s.lateral,
		Aborted:              aborted,
	}
	s.finished = true

	s.logger.Info(s.ctx, "landing attempt finished",
		"success", out.Success,
		"aborted", aborted,
		"velocity", out.Velocity,
		"direction", out.Direction,
		"angle_deviation", out.AngleDeviation,
		"fuel_consumed", consumed,
		"flight_time", s.flightTime)

	if s.store != nil {
		if err := s.store.Save(s.ctx, s.record()); err != nil {
			s.logger.Error(s.ctx, "failed to record landing attempt", err)
		}
	}

	s.bus.Publish(event.NewAttemptEvent(event.AttemptFinished, s,
		s.summary.CorrelationID, string(s.mode), out.Success))
}

func (s *Session) record() *flightlog.FlightRecord {
	out := s.summary.Outcome
	return &flightlog.FlightRecord{
		CorrelationID:    s.summary.CorrelationID,
		Mode:             string(s.summary.Mode),
		Success:          out.Success,
		LandingVelocity:  out.Velocity,
		LandingDirection: out.Direction,
		AngleDeviation:   out.AngleDeviation,
		InitialFuel:      s.rocket.InitialFuel(),
		FuelRemaining:    out.FuelRemaining,
		FuelConsumed:     s.summary.FuelConsumedFraction,
		FlightTime:       s.summary.FlightTime,
		LateralSpeed:     s.summary.LateralSpeed,
		Aborted:          s.summary.Aborted,
		Seed:             s.cfg.Simulation.Seed,
	}
}

// Run steps the current attempt with a fixed step until it finishes, the
// simulated time exceeds maxDuration seconds, or ctx is cancelled.
func (s *Session) Run(ctx context.Context, step, maxDuration float64) (Summary, error) {
	if s.rocket == nil {
		return Summary{}, ErrNotStarted
	}
	if s.paused {
		return Summary{}, ErrPaused
	}
	if step <= 0 {
		return Summary{}, fmt.Errorf("step must be positive, got %v", step)
	}

	elapsed := 0.0
	for !s.finished {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		if maxDuration > 0 && elapsed >= maxDuration {
			s.logger.Warn(s.ctx, "landing attempt timed out", "elapsed", elapsed)
			return Summary{}, ErrTimeout
		}
		s.Tick(step)
		elapsed += step
	}
	return s.summary, nil
}
