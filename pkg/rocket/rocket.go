// Package rocket models a single vertically-landing rocket: its translational
// state, main engines, RCS attitude control and touchdown classification.
package rocket

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/opd-ai/go-hoverslam/pkg/event"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
)

// Rocket geometry and attitude defaults.
const (
	DefaultHeight = 100.0
	Upright       = 90.0
)

// Status is the lifecycle state of a rocket.
type Status int

const (
	Airborne Status = iota
	Landed
	Crashed
	// Stopped is a rocket halted by Stop without a touchdown classification.
	Stopped
)

func (s Status) String() string {
	switch s {
	case Airborne:
		return "airborne"
	case Landed:
		return "landed"
	case Crashed:
		return "crashed"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// LandingCriteria are the touchdown thresholds. A landing succeeds when the
// speed is strictly below MaxVelocity and the tilt from upright is at most
// MaxAngleDeviation degrees.
type LandingCriteria struct {
	MaxVelocity       float64
	MaxAngleDeviation float64
}

// DefaultLandingCriteria returns the stock thresholds.
func DefaultLandingCriteria() LandingCriteria {
	return LandingCriteria{MaxVelocity: 10, MaxAngleDeviation: 5}
}

// Accepts classifies a touchdown.
func (c LandingCriteria) Accepts(velocity, angleDeviation float64) bool {
	return velocity < c.MaxVelocity && angleDeviation <= c.MaxAngleDeviation
}

// Outcome is the touchdown record, captured at the instant of ground contact.
type Outcome struct {
	Success        bool
	Velocity       float64
	Direction      float64
	AngleDeviation float64
	FuelRemaining  float64
}

// Options configures a new Rocket. Zero values select the defaults.
type Options struct {
	ID       uint64
	Position physics.Vector2D
	Velocity physics.Vector2D
	Fuel     float64
	Height   float64
	Engines  []*Engine
	Attitude AttitudeController
	Policy   ControlPolicy
}

// Rocket is a single simulated body. All mutation happens inside Tick,
// Touchdown, Stop and Reset.
type Rocket struct {
	id          uint64
	body        physics.Body
	direction   float64
	fuel        float64
	initialFuel float64
	height      float64
	engines     []*Engine
	rcs         RCSState
	attitude    AttitudeController
	policy      ControlPolicy
	status      Status
	outcome     Outcome
	hasOutcome  bool
	bus         *event.Bus
}

// New creates an airborne, upright rocket.
func New(opts Options) *Rocket {
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if len(opts.Engines) == 0 {
		opts.Engines = []*Engine{DefaultEngine()}
	}
	switch {
	case opts.Attitude == AttitudeController{}:
		opts.Attitude = DefaultAttitude()
	case opts.Attitude.TurnRate <= 0:
		// keep the caller's wrapping choice
		opts.Attitude.TurnRate = DefaultTurnRate
	}

	return &Rocket{
		id: opts.ID,
		body: physics.Body{
			Position: opts.Position,
			Velocity: opts.Velocity,
		},
		direction:   Upright,
		fuel:        opts.Fuel,
		initialFuel: opts.Fuel,
		height:      opts.Height,
		engines:     opts.Engines,
		attitude:    opts.Attitude,
		policy:      opts.Policy,
		status:      Airborne,
	}
}

// ID returns the rocket identifier.
func (r *Rocket) ID() uint64 { return r.id }

// Position is the top-centre of the body in screen coordinates.
func (r *Rocket) Position() physics.Vector2D { return r.body.Position }

// Velocity returns the current velocity.
func (r *Rocket) Velocity() physics.Vector2D { return r.body.Velocity }

// Acceleration returns the constant acceleration applied each tick.
func (r *Rocket) Acceleration() physics.Vector2D { return r.body.Acceleration }

// Direction is the heading in degrees; 90 is upright.
func (r *Rocket) Direction() float64 { return r.direction }

// Fuel returns the remaining fuel.
func (r *Rocket) Fuel() float64 { return r.fuel }

// InitialFuel is the fuel loaded at construction or the last Reset.
func (r *Rocket) InitialFuel() float64 { return r.initialFuel }

// Height returns the body length.
func (r *Rocket) Height() float64 { return r.height }

// Bottom is the y coordinate of the rocket's lower edge.
func (r *Rocket) Bottom() float64 { return r.body.Position.Y + r.height }

// Status returns the lifecycle state.
func (r *Rocket) Status() Status { return r.status }

// Airborne reports whether the rocket is still flying.
func (r *Rocket) Airborne() bool { return r.status == Airborne }

// RCS returns the thruster state set by the last tick.
func (r *Rocket) RCS() RCSState { return r.rcs }

// Attitude returns the attitude controller.
func (r *Rocket) Attitude() AttitudeController { return r.attitude }

// Policy returns the control policy, which may be nil.
func (r *Rocket) Policy() ControlPolicy { return r.policy }

// Outcome returns the touchdown record once the rocket has touched down.
func (r *Rocket) Outcome() (Outcome, bool) { return r.outcome, r.hasOutcome }

// EngineStates returns the on/off state of each engine.
func (r *Rocket) EngineStates() []bool {
	states := make([]bool, len(r.engines))
	for i, e := range r.engines {
		states[i] = e.on
	}
	return states
}

// EngineThrusts returns the thrust power of each engine.
func (r *Rocket) EngineThrusts() []float64 {
	thrusts := make([]float64, len(r.engines))
	for i, e := range r.engines {
		thrusts[i] = e.ThrustPower
	}
	return thrusts
}

// TotalThrust is the combined thrust power of every engine.
func (r *Rocket) TotalThrust() float64 {
	return floats.Sum(r.EngineThrusts())
}

// EnginesOn reports whether any engine is firing.
func (r *Rocket) EnginesOn() bool {
	for _, e := range r.engines {
		if e.on {
			return true
		}
	}
	return false
}

// SetAcceleration sets the constant acceleration, normally gravity.
func (r *Rocket) SetAcceleration(a physics.Vector2D) { r.body.Acceleration = a }

// SetVelocity overrides the velocity, used to launch an attempt.
func (r *Rocket) SetVelocity(v physics.Vector2D) { r.body.Velocity = v }

// SetPolicy replaces the control policy.
func (r *Rocket) SetPolicy(p ControlPolicy) { r.policy = p }

// SetEventBus attaches a bus for engine events. A nil bus disables them.
func (r *Rocket) SetEventBus(bus *event.Bus) { r.bus = bus }

// Tick advances the rocket by dt seconds. It does nothing once the rocket
// has left the Airborne state.
func (r *Rocket) Tick(dt float64) {
	if r.status != Airborne {
		return
	}

	cmd := r.decide(dt)

	direction, rcs := r.attitude.Rotate(r.direction, cmd.TargetHeading, dt, cmd.AllowTurn)
	if !cmd.FireRCS {
		rcs = RCSState{}
	}
	r.direction = direction
	r.rcs = rcs

	r.applyThrust(cmd.Throttle, dt)
	physics.Integrate(&r.body, dt)
}

func (r *Rocket) decide(dt float64) Command {
	if r.policy == nil {
		return Command{TargetHeading: r.direction}
	}
	return r.policy.Decide(r, dt)
}

// applyThrust lights or cuts the engines and adds each lit engine's impulse.
func (r *Rocket) applyThrust(throttle bool, dt float64) {
	r.setEngines(throttle && r.fuel > 0)
	if !r.EnginesOn() {
		return
	}

	rad := physics.Radians(r.direction)
	cos, sin := math.Cos(rad), math.Sin(rad)
	for _, e := range r.engines {
		if !e.on {
			continue
		}
		r.body.Velocity.X += cos * e.ThrustPower * dt
		r.body.Velocity.Y -= sin * e.ThrustPower * dt
		r.fuel -= e.FuelBurnRate * dt
	}

	if r.fuel <= 0 {
		r.fuel = 0
		r.setEngines(false)
		r.publish(event.FuelExhausted)
	}
}

func (r *Rocket) setEngines(on bool) {
	wasOn := r.EnginesOn()
	for _, e := range r.engines {
		e.on = on
	}
	switch {
	case on && !wasOn:
		r.publish(event.EngineIgnition)
	case !on && wasOn:
		r.publish(event.EngineCutoff)
	}
}

func (r *Rocket) publish(t event.Type) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(event.NewRocketEvent(t, r, r.id, r.status.String(),
		r.body.Velocity.Magnitude(), r.direction, r.fuel))
}

// Touchdown classifies the landing from the state at the instant of contact
// and stops the rocket. Later calls return the first outcome unchanged.
func (r *Rocket) Touchdown(criteria LandingCriteria) Outcome {
	if r.hasOutcome {
		return r.outcome
	}

	speed := r.body.Velocity.Magnitude()
	deviation := math.Abs(physics.WrapDegrees(r.direction - Upright))
	r.outcome = Outcome{
		Success:        criteria.Accepts(speed, deviation),
		Velocity:       speed,
		Direction:      r.direction,
		AngleDeviation: deviation,
		FuelRemaining:  r.fuel,
	}
	r.hasOutcome = true

	r.Stop()
	if r.outcome.Success {
		r.status = Landed
	} else {
		r.status = Crashed
	}
	return r.outcome
}

// Stop grounds the rocket: engines and RCS off, velocity zero, upright.
func (r *Rocket) Stop() {
	r.setEngines(false)
	r.rcs = RCSState{}
	r.body.Velocity = physics.Vector2D{}
	r.direction = Upright
	if r.status == Airborne {
		r.status = Stopped
	}
}

// Reset puts the rocket back in the air at position with a fresh fuel load.
func (r *Rocket) Reset(position physics.Vector2D, fuel float64) {
	for _, e := range r.engines {
		e.on = false
	}
	r.rcs = RCSState{}
	r.body.Position = position
	r.body.Velocity = physics.Vector2D{}
	r.direction = Upright
	r.fuel = fuel
	r.initialFuel = fuel
	r.status = Airborne
	r.outcome = Outcome{}
	r.hasOutcome = false
	if r.policy != nil {
		r.policy.Reset()
	}
}
