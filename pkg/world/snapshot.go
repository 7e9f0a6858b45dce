package world

import (
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
)

// State is a read-only copy of the world for renderers.
type State struct {
	Tick    uint64
	GroundY float64
	Gravity float64
	Bodies  []BodyState
}

// BodyState is a read-only copy of one rocket.
type BodyState struct {
	ID          uint64
	Position    physics.Vector2D
	Velocity    physics.Vector2D
	Direction   float64
	Height      float64
	Fuel        float64
	InitialFuel float64
	Status      rocket.Status
	Engines     []bool
	RCS         rocket.RCSState
	Primary     bool
}

// Snapshot copies the current state of every body.
func (w *World) Snapshot() State {
	bodies := make([]BodyState, 0, len(w.bodies))
	for _, r := range w.bodies {
		bodies = append(bodies, bodyState(r, r == w.primary))
	}
	return State{
		Tick:    w.ticks,
		GroundY: w.groundY,
		Gravity: w.gravity,
		Bodies:  bodies,
	}
}

func bodyState(r *rocket.Rocket, primary bool) BodyState {
	return BodyState{
		ID:          r.ID(),
		Position:    r.Position(),
		Velocity:    r.Velocity(),
		Direction:   r.Direction(),
		Height:      r.Height(),
		Fuel:        r.Fuel(),
		InitialFuel: r.InitialFuel(),
		Status:      r.Status(),
		Engines:     r.EngineStates(),
		RCS:         r.RCS(),
		Primary:     primary,
	}
}
