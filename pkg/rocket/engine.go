package rocket

// Engine defaults.
const (
	DefaultThrustPower  = 200.0
	DefaultFuelBurnRate = 1.0
)

// Engine is a main engine owned by exactly one Rocket. Its on/off state is
// changed only by the owning rocket's tick.
type Engine struct {
	ThrustPower  float64
	FuelBurnRate float64
	on           bool
}

// NewEngine creates an engine that starts switched off.
func NewEngine(thrustPower, fuelBurnRate float64) *Engine {
	return &Engine{
		ThrustPower:  thrustPower,
		FuelBurnRate: fuelBurnRate,
	}
}

// DefaultEngine returns an engine with the stock thrust and burn rate.
func DefaultEngine() *Engine {
	return NewEngine(DefaultThrustPower, DefaultFuelBurnRate)
}

// On reports whether the engine is firing.
func (e *Engine) On() bool {
	return e.on
}
