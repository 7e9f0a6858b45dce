package rocket

import (
	"math"

	"github.com/opd-ai/go-hoverslam/pkg/physics"
)

// DefaultTurnRate is the RCS rotation speed in degrees per second.
const DefaultTurnRate = 60.0

// RCSState holds the two reaction control thrusters. Left fires to rotate
// toward decreasing heading, Right toward increasing heading.
type RCSState struct {
	Left  bool
	Right bool
}

// Any reports whether either thruster is firing.
func (s RCSState) Any() bool {
	return s.Left || s.Right
}

// AttitudeController turns the rocket toward a target heading at a fixed
// rate. When WrapError is set the heading error takes the short way round;
// otherwise the raw difference is used.
type AttitudeController struct {
	TurnRate  float64
	WrapError bool
}

// DefaultAttitude returns a controller with the stock turn rate and wrapped
// heading error.
func DefaultAttitude() AttitudeController {
	return AttitudeController{TurnRate: DefaultTurnRate, WrapError: true}
}

// HeadingError is target minus direction, wrapped to (-180, 180] if enabled.
func (c AttitudeController) HeadingError(direction, target float64) float64 {
	e := target - direction
	if c.WrapError {
		e = physics.WrapDegrees(e)
	}
	return e
}

// Rotate advances direction toward target for one tick. An error within one
// tick's worth of rotation snaps to the target; larger errors rotate by
// TurnRate·dt only when allowTurn is set.
func (c AttitudeController) Rotate(direction, target, dt float64, allowTurn bool) (float64, RCSState) {
	e := c.HeadingError(direction, target)

	var rcs RCSState
	if allowTurn {
		rcs.Left = e < 0
		rcs.Right = e > 0
	}

	step := c.TurnRate * dt
	switch {
	case math.Abs(e) <= step:
		return direction + e, rcs
	case !allowTurn:
		return direction, rcs
	case e > 0:
		return direction + step, rcs
	default:
		return direction - step, rcs
	}
}
