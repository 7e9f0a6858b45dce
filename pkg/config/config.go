// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// HOVERSLAM_WORLD_GRAVITY or HOVERSLAM_ROCKET_INITIALFUEL.
const EnvPrefix = "HOVERSLAM"

// Config contains every tunable of a simulation run.
type Config struct {
	World      WorldConfig      `json:"world" mapstructure:"world"`
	Rocket     RocketConfig     `json:"rocket" mapstructure:"rocket"`
	Guidance   GuidanceConfig   `json:"guidance" mapstructure:"guidance"`
	Landing    LandingConfig    `json:"landing" mapstructure:"landing"`
	Control    ControlConfig    `json:"control" mapstructure:"control"`
	Simulation SimulationConfig `json:"simulation" mapstructure:"simulation"`
	Log        LogConfig        `json:"log" mapstructure:"log"`
	Record     RecordConfig     `json:"record" mapstructure:"record"`
}

// WorldConfig describes the play field. The ground line sits GroundHeight
// above the bottom of the window.
type WorldConfig struct {
	Gravity      float64 `json:"gravity" mapstructure:"gravity"`
	WindowWidth  float64 `json:"windowWidth" mapstructure:"windowWidth"`
	WindowHeight float64 `json:"windowHeight" mapstructure:"windowHeight"`
	GroundHeight float64 `json:"groundHeight" mapstructure:"groundHeight"`
}

// GroundY is the screen y coordinate of the ground line.
func (w WorldConfig) GroundY() float64 {
	return w.WindowHeight - w.GroundHeight
}

// RocketConfig describes the vehicle and how each attempt launches it.
// InitialAltitude is the height of the rocket's top edge above the ground.
type RocketConfig struct {
	Height          float64        `json:"height" mapstructure:"height"`
	TurnRate        float64        `json:"turnRate" mapstructure:"turnRate"`
	InitialFuel     float64        `json:"initialFuel" mapstructure:"initialFuel"`
	InitialAltitude float64        `json:"initialAltitude" mapstructure:"initialAltitude"`
	MaxLateralSpeed float64        `json:"maxLateralSpeed" mapstructure:"maxLateralSpeed"`
	Engines         []EngineConfig `json:"engines" mapstructure:"engines"`
}

// EngineConfig describes one main engine.
type EngineConfig struct {
	ThrustPower  float64 `json:"thrustPower" mapstructure:"thrustPower"`
	FuelBurnRate float64 `json:"fuelBurnRate" mapstructure:"fuelBurnRate"`
}

// GuidanceConfig tunes the autonomous pilot.
type GuidanceConfig struct {
	SafetyMargin      float64 `json:"safetyMargin" mapstructure:"safetyMargin"`
	VelocityThreshold float64 `json:"velocityThreshold" mapstructure:"velocityThreshold"`
}

// LandingConfig holds the touchdown thresholds.
type LandingConfig struct {
	MaxVelocity       float64 `json:"maxVelocity" mapstructure:"maxVelocity"`
	MaxAngleDeviation float64 `json:"maxAngleDeviation" mapstructure:"maxAngleDeviation"`
}

// ControlConfig selects attitude controller behaviour.
type ControlConfig struct {
	WrapHeadingError bool `json:"wrapHeadingError" mapstructure:"wrapHeadingError"`
}

// SimulationConfig drives the headless loop. Times are in seconds. A zero
// Seed draws a random one.
type SimulationConfig struct {
	TimeStep    float64 `json:"timeStep" mapstructure:"timeStep"`
	MaxDuration float64 `json:"maxDuration" mapstructure:"maxDuration"`
	Seed        int64   `json:"seed" mapstructure:"seed"`
	Attempts    int     `json:"attempts" mapstructure:"attempts"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// RecordConfig points at the flight log database. Empty disables recording.
type RecordConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("world.gravity", 100.0)
	v.SetDefault("world.windowWidth", 800.0)
	v.SetDefault("world.windowHeight", 750.0)
	v.SetDefault("world.groundHeight", 100.0)

	v.SetDefault("rocket.height", 100.0)
	v.SetDefault("rocket.turnRate", 60.0)
	v.SetDefault("rocket.initialFuel", 10.0)
	v.SetDefault("rocket.initialAltitude", 500.0)
	v.SetDefault("rocket.maxLateralSpeed", 250.0)
	v.SetDefault("rocket.engines", []map[string]interface{}{
		{"thrustPower": 200.0, "fuelBurnRate": 1.0},
	})

	v.SetDefault("guidance.safetyMargin", 5.0)
	v.SetDefault("guidance.velocityThreshold", 10.0)

	v.SetDefault("landing.maxVelocity", 10.0)
	v.SetDefault("landing.maxAngleDeviation", 5.0)

	v.SetDefault("control.wrapHeadingError", true)

	v.SetDefault("simulation.timeStep", 1.0/60.0)
	v.SetDefault("simulation.maxDuration", 60.0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.attempts", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("record.path", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration with environment overrides
// applied.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// defaults are static; only a malformed environment override lands here
		return builtin()
	}
	return cfg
}

// Load reads a JSON configuration file on top of the defaults. A missing
// file, or an empty path, yields the defaults. Environment variables
// override both.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration as indented JSON.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// builtin mirrors setDefaults without consulting the environment.
func builtin() *Config {
	return &Config{
		World: WorldConfig{Gravity: 100, WindowWidth: 800, WindowHeight: 750, GroundHeight: 100},
		Rocket: RocketConfig{
			Height:          100,
			TurnRate:        60,
			InitialFuel:     10,
			InitialAltitude: 500,
			MaxLateralSpeed: 250,
			Engines:         []EngineConfig{{ThrustPower: 200, FuelBurnRate: 1}},
		},
		Guidance:   GuidanceConfig{SafetyMargin: 5, VelocityThreshold: 10},
		Landing:    LandingConfig{MaxVelocity: 10, MaxAngleDeviation: 5},
		Control:    ControlConfig{WrapHeadingError: true},
		Simulation: SimulationConfig{TimeStep: 1.0 / 60.0, MaxDuration: 60, Attempts: 1},
		Log:        LogConfig{Level: "info"},
	}
}
