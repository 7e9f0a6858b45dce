package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 100.0, cfg.World.Gravity)
	assert.Equal(t, 650.0, cfg.World.GroundY())
	assert.Equal(t, 100.0, cfg.Rocket.Height)
	assert.Equal(t, 60.0, cfg.Rocket.TurnRate)
	assert.Equal(t, 10.0, cfg.Rocket.InitialFuel)
	assert.Equal(t, 500.0, cfg.Rocket.InitialAltitude)
	assert.Equal(t, 250.0, cfg.Rocket.MaxLateralSpeed)
	require.Len(t, cfg.Rocket.Engines, 1)
	assert.Equal(t, EngineConfig{ThrustPower: 200, FuelBurnRate: 1}, cfg.Rocket.Engines[0])
	assert.Equal(t, GuidanceConfig{SafetyMargin: 5, VelocityThreshold: 10}, cfg.Guidance)
	assert.Equal(t, LandingConfig{MaxVelocity: 10, MaxAngleDeviation: 5}, cfg.Landing)
	assert.True(t, cfg.Control.WrapHeadingError)
	assert.InDelta(t, 1.0/60.0, cfg.Simulation.TimeStep, 1e-12)
	assert.Equal(t, 1, cfg.Simulation.Attempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Record.Path)

	assert.NoError(t, cfg.Validate())
}

func TestDefault_MatchesBuiltin(t *testing.T) {
	assert.Equal(t, builtin(), Default())
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hoverslam.json")
	content := `{
		"world": { "gravity": 50 },
		"rocket": {
			"initialFuel": 25,
			"engines": [
				{ "thrustPower": 150, "fuelBurnRate": 0.5 },
				{ "thrustPower": 150, "fuelBurnRate": 0.5 }
			]
		},
		"control": { "wrapHeadingError": false },
		"log": { "level": "debug" }
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 50.0, cfg.World.Gravity)
	assert.Equal(t, 25.0, cfg.Rocket.InitialFuel)
	require.Len(t, cfg.Rocket.Engines, 2)
	assert.Equal(t, 150.0, cfg.Rocket.Engines[1].ThrustPower)
	assert.Equal(t, 0.5, cfg.Rocket.Engines[1].FuelBurnRate)
	assert.False(t, cfg.Control.WrapHeadingError)
	assert.Equal(t, "debug", cfg.Log.Level)

	// untouched keys keep their defaults
	assert.Equal(t, 60.0, cfg.Rocket.TurnRate)
	assert.Equal(t, 750.0, cfg.World.WindowHeight)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, builtin(), cfg)
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, builtin(), cfg)
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"world": `), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rocket": {"turnRate": -1}}`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "rocket.turnRate")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("HOVERSLAM_WORLD_GRAVITY", "9.81")
	t.Setenv("HOVERSLAM_ROCKET_INITIALFUEL", "42")
	t.Setenv("HOVERSLAM_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "hoverslam.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"world": {"gravity": 50}}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9.81, cfg.World.Gravity)
	assert.Equal(t, 42.0, cfg.Rocket.InitialFuel)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.json")
	cfg := Default()
	cfg.Rocket.InitialFuel = 33
	cfg.Record.Path = "flights.db"

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_Errors(t *testing.T) {
	assert.Error(t, Save(nil, filepath.Join(t.TempDir(), "x.json")))
	assert.Error(t, Save(Default(), filepath.Join(t.TempDir(), "missing", "dir", "x.json")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "negative_gravity", mutate: func(c *Config) { c.World.Gravity = -1 }, field: "world.gravity"},
		{name: "ground_outside_window", mutate: func(c *Config) { c.World.GroundHeight = 800 }, field: "world.groundHeight"},
		{name: "zero_height", mutate: func(c *Config) { c.Rocket.Height = 0 }, field: "rocket.height"},
		{name: "half_turn_lead", mutate: func(c *Config) { c.Rocket.TurnRate = 90 }, field: "rocket.turnRate"},
		{name: "negative_fuel", mutate: func(c *Config) { c.Rocket.InitialFuel = -1 }, field: "rocket.initialFuel"},
		{name: "spawn_above_window", mutate: func(c *Config) { c.Rocket.InitialAltitude = 700 }, field: "rocket.initialAltitude"},
		{name: "no_engines", mutate: func(c *Config) { c.Rocket.Engines = nil }, field: "rocket.engines"},
		{name: "dead_engine", mutate: func(c *Config) { c.Rocket.Engines[0].ThrustPower = 0 }, field: "rocket.engines[0].thrustPower"},
		{name: "zero_landing_speed", mutate: func(c *Config) { c.Landing.MaxVelocity = 0 }, field: "landing.maxVelocity"},
		{name: "zero_time_step", mutate: func(c *Config) { c.Simulation.TimeStep = 0 }, field: "simulation.timeStep"},
		{name: "no_attempts", mutate: func(c *Config) { c.Simulation.Attempts = 0 }, field: "simulation.attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := builtin()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
