package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks that the configuration describes a flyable rocket.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.World.Gravity >= 0, "world.gravity must not be negative, got %v", c.World.Gravity)
	check(c.World.WindowWidth > 0, "world.windowWidth must be positive, got %v", c.World.WindowWidth)
	check(c.World.WindowHeight > 0, "world.windowHeight must be positive, got %v", c.World.WindowHeight)
	check(c.World.GroundHeight >= 0 && c.World.GroundHeight < c.World.WindowHeight,
		"world.groundHeight must be within the window, got %v", c.World.GroundHeight)

	check(c.Rocket.Height > 0, "rocket.height must be positive, got %v", c.Rocket.Height)
	// the manual pilot leads the heading by 2·turnRate, which must stay below a half turn
	check(c.Rocket.TurnRate > 0 && c.Rocket.TurnRate < 90,
		"rocket.turnRate must be in (0, 90), got %v", c.Rocket.TurnRate)
	check(c.Rocket.InitialFuel >= 0, "rocket.initialFuel must not be negative, got %v", c.Rocket.InitialFuel)
	check(c.Rocket.InitialAltitude > c.Rocket.Height,
		"rocket.initialAltitude must clear the rocket height, got %v", c.Rocket.InitialAltitude)
	check(c.Rocket.InitialAltitude <= c.World.GroundY(),
		"rocket.initialAltitude must fit in the window, got %v", c.Rocket.InitialAltitude)
	check(c.Rocket.MaxLateralSpeed >= 0, "rocket.maxLateralSpeed must not be negative, got %v", c.Rocket.MaxLateralSpeed)
	check(len(c.Rocket.Engines) > 0, "rocket.engines must list at least one engine")
	for i, e := range c.Rocket.Engines {
		check(e.ThrustPower > 0, "rocket.engines[%d].thrustPower must be positive, got %v", i, e.ThrustPower)
		check(e.FuelBurnRate >= 0, "rocket.engines[%d].fuelBurnRate must not be negative, got %v", i, e.FuelBurnRate)
	}

	check(c.Guidance.SafetyMargin >= 0, "guidance.safetyMargin must not be negative, got %v", c.Guidance.SafetyMargin)
	check(c.Guidance.VelocityThreshold >= 0, "guidance.velocityThreshold must not be negative, got %v", c.Guidance.VelocityThreshold)

	check(c.Landing.MaxVelocity > 0, "landing.maxVelocity must be positive, got %v", c.Landing.MaxVelocity)
	check(c.Landing.MaxAngleDeviation >= 0 && c.Landing.MaxAngleDeviation <= 180,
		"landing.maxAngleDeviation must be in [0, 180], got %v", c.Landing.MaxAngleDeviation)

	check(c.Simulation.TimeStep > 0, "simulation.timeStep must be positive, got %v", c.Simulation.TimeStep)
	check(c.Simulation.MaxDuration > 0, "simulation.maxDuration must be positive, got %v", c.Simulation.MaxDuration)
	check(c.Simulation.Attempts > 0, "simulation.attempts must be positive, got %v", c.Simulation.Attempts)

	return errors.Join(errs...)
}
