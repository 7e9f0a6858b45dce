// Package guidance predicts when a falling rocket must light its engines so
// that a continuous full-throttle burn cancels its vertical velocity at the
// ground.
package guidance

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/opd-ai/go-hoverslam/pkg/physics"
)

// Defaults used by the autonomous pilot.
const (
	DefaultSafetyMargin      = 5.0
	DefaultVelocityThreshold = 10.0
)

// Vehicle is the read-only view of a rocket that the guidance computer needs.
// Position is the top-centre of the body in screen coordinates.
type Vehicle interface {
	Position() physics.Vector2D
	Velocity() physics.Vector2D
	Direction() float64
	Height() float64
	EngineThrusts() []float64
	EnginesOn() bool
}

// Computer holds the environment constants. It keeps no state between calls
// and never owns the vehicle it is asked about.
type Computer struct {
	GroundY           float64
	Gravity           float64
	SafetyMargin      float64
	VelocityThreshold float64
}

// Telemetry is a HUD snapshot of the current guidance solution.
type Telemetry struct {
	Altitude     float64
	BurnAltitude float64
	ImpactTime   float64
	ImpactKnown  bool
	ShouldBurn   bool
}

// New returns a computer with the default margin and velocity threshold.
func New(groundY, gravity float64) Computer {
	return Computer{
		GroundY:           groundY,
		Gravity:           gravity,
		SafetyMargin:      DefaultSafetyMargin,
		VelocityThreshold: DefaultVelocityThreshold,
	}
}

// Altitude is the distance from the vehicle's bottom edge to the ground.
func (c Computer) Altitude(v Vehicle) float64 {
	return c.GroundY - (v.Position().Y + v.Height())
}

// TotalThrust is the combined thrust power of every engine, lit or not.
func (c Computer) TotalThrust(v Vehicle) float64 {
	return floats.Sum(v.EngineThrusts())
}

// thrustYAccel is the net upward acceleration a full burn would produce at
// the current attitude.
func (c Computer) thrustYAccel(v Vehicle) float64 {
	return c.TotalThrust(v)*math.Sin(physics.Radians(v.Direction())) - c.Gravity
}

// ImpactTime solves for the time until the bottom edge reaches the ground
// under the current constant acceleration. ok is false when the vehicle will
// never get there.
func (c Computer) ImpactTime(v Vehicle) (float64, bool) {
	aDown := c.Gravity
	if v.EnginesOn() {
		aDown -= c.TotalThrust(v) * math.Sin(physics.Radians(v.Direction()))
	}
	vy := v.Velocity().Y
	altitude := c.Altitude(v)

	if aDown == 0 {
		if vy <= 0 {
			return 0, false
		}
		return altitude / vy, true
	}

	roots, ok := physics.SolveQuadratic(0.5*aDown, vy, -altitude)
	if !ok {
		return 0, false
	}
	return roots[0], true
}

// BurnAltitude is the altitude at which a full burn started now would bring
// the vertical velocity to zero, padded by margin. It is zero when thrust
// cannot overcome gravity at the current attitude.
func (c Computer) BurnAltitude(v Vehicle, margin float64) float64 {
	a := c.thrustYAccel(v)
	if a <= 0 {
		return 0
	}
	vy := v.Velocity().Y
	t := math.Abs(vy / a)
	return -0.5*a*t*t + vy*t + margin
}

// ShouldBurn reports whether the engines must be lit this tick.
func (c Computer) ShouldBurn(v Vehicle) bool {
	if v.Velocity().Y <= c.VelocityThreshold {
		return false
	}
	return c.BurnAltitude(v, c.SafetyMargin) >= c.Altitude(v)
}

// Telemetry collects the current solution for display.
func (c Computer) Telemetry(v Vehicle) Telemetry {
	impact, known := c.ImpactTime(v)
	return Telemetry{
		Altitude:     c.Altitude(v),
		BurnAltitude: c.BurnAltitude(v, c.SafetyMargin),
		ImpactTime:   impact,
		ImpactKnown:  known,
		ShouldBurn:   c.ShouldBurn(v),
	}
}
