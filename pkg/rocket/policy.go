package rocket

import (
	"github.com/opd-ai/go-hoverslam/pkg/guidance"
)

// Command is a policy's decision for one tick.
type Command struct {
	TargetHeading float64
	Throttle      bool
	AllowTurn     bool
	FireRCS       bool
}

// ControlPolicy decides throttle and heading once per tick. It is the only
// difference between an autonomous and a piloted rocket.
type ControlPolicy interface {
	Decide(r *Rocket, dt float64) Command
	Reset()
}

// AutonomousPolicy flies a suicide burn: it points retrograde while falling
// and lights the engines when the guidance computer says so.
type AutonomousPolicy struct {
	Guidance guidance.Computer
}

// NewAutonomousPolicy creates a policy backed by the given computer.
func NewAutonomousPolicy(c guidance.Computer) *AutonomousPolicy {
	return &AutonomousPolicy{Guidance: c}
}

// Decide implements ControlPolicy.
func (p *AutonomousPolicy) Decide(r *Rocket, dt float64) Command {
	v := r.Velocity()
	falling := v.Y > 0
	return Command{
		TargetHeading: v.Direction() - 180,
		Throttle:      p.Guidance.ShouldBurn(r),
		AllowTurn:     falling,
		FireRCS:       falling,
	}
}

// Reset implements ControlPolicy.
func (p *AutonomousPolicy) Reset() {}

// ManualInput is one frame of pilot signals.
type ManualInput struct {
	RotateLeft  bool // toward increasing heading
	RotateRight bool // toward decreasing heading
	Throttle    bool
}

// ManualPolicy maps pilot signals onto the same tick as the autonomous
// rocket.
type ManualPolicy struct {
	input ManualInput
}

// NewManualPolicy creates a policy with no signals held.
func NewManualPolicy() *ManualPolicy {
	return &ManualPolicy{}
}

// SetInput records the signals sampled for the next tick.
func (p *ManualPolicy) SetInput(in ManualInput) {
	p.input = in
}

// Input returns the signals currently held.
func (p *ManualPolicy) Input() ManualInput {
	return p.input
}

// Decide implements ControlPolicy. The target sits two seconds of rotation
// away so the rocket turns at the full rate while a key is held. When both
// rotate signals are held, rotate-right wins.
func (p *ManualPolicy) Decide(r *Rocket, dt float64) Command {
	target := r.Direction()
	lead := 2 * r.Attitude().TurnRate
	rotating := false

	if p.input.RotateLeft {
		target = r.Direction() + lead
		rotating = true
	}
	if p.input.RotateRight {
		target = r.Direction() - lead
		rotating = true
	}

	return Command{
		TargetHeading: target,
		Throttle:      p.input.Throttle,
		AllowTurn:     true,
		FireRCS:       rotating,
	}
}

// Reset implements ControlPolicy.
func (p *ManualPolicy) Reset() {
	p.input = ManualInput{}
}
