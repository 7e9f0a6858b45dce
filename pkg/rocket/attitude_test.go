package rocket

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestAttitudeController_Rotate(t *testing.T) {
	tests := []struct {
		name      string
		wrap      bool
		direction float64
		target    float64
		allowTurn bool
		expected  float64
		rcs       RCSState
	}{
		{name: "on_target", wrap: true, direction: 90, target: 90, allowTurn: true, expected: 90},
		{name: "snap_within_step", wrap: true, direction: 90, target: 90.5, allowTurn: true, expected: 90.5, rcs: RCSState{Right: true}},
		{name: "snap_even_when_turn_disallowed", wrap: true, direction: 90, target: 89.5, allowTurn: false, expected: 89.5},
		{name: "turn_toward_increasing", wrap: true, direction: 90, target: 135, allowTurn: true, expected: 91, rcs: RCSState{Right: true}},
		{name: "turn_toward_decreasing", wrap: true, direction: 90, target: 45, allowTurn: true, expected: 89, rcs: RCSState{Left: true}},
		{name: "turn_disallowed", wrap: true, direction: 90, target: 135, allowTurn: false, expected: 90},
		{name: "wrapped_short_way", wrap: true, direction: 350, target: 10, allowTurn: true, expected: 351, rcs: RCSState{Right: true}},
		{name: "raw_long_way", wrap: false, direction: 350, target: 10, allowTurn: true, expected: 349, rcs: RCSState{Left: true}},
		{name: "wrapped_retrograde_target", wrap: true, direction: 90, target: -90, allowTurn: true, expected: 91, rcs: RCSState{Right: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := AttitudeController{TurnRate: 60, WrapError: tt.wrap}
			got, rcs := c.Rotate(tt.direction, tt.target, 1.0/60, tt.allowTurn)
			if !scalar.EqualWithinAbs(got, tt.expected, 1e-9) {
				t.Errorf("Rotate() direction = %v, want %v", got, tt.expected)
			}
			if rcs != tt.rcs {
				t.Errorf("Rotate() rcs = %+v, want %+v", rcs, tt.rcs)
			}
		})
	}
}

func TestAttitudeController_NeverOvershoots(t *testing.T) {
	c := DefaultAttitude()
	direction := 90.0
	for i := 0; i < 200; i++ {
		direction, _ = c.Rotate(direction, 120, 0.016, true)
		if direction > 120+1e-9 {
			t.Fatalf("tick %d overshot target: %v", i, direction)
		}
	}
	if !scalar.EqualWithinAbs(direction, 120, 1e-9) {
		t.Errorf("direction = %v, want 120 after converging", direction)
	}
}

func TestRCSState_Any(t *testing.T) {
	if (RCSState{}).Any() {
		t.Error("Any() = true for idle thrusters")
	}
	if !(RCSState{Left: true}).Any() || !(RCSState{Right: true}).Any() {
		t.Error("Any() = false with a thruster firing")
	}
}
