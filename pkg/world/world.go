// Package world integrates rockets against a flat ground under constant
// gravity and decides each landing exactly once.
package world

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/opd-ai/go-hoverslam/pkg/event"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
)

// LandingCriteria are the touchdown thresholds applied by the world.
type LandingCriteria = rocket.LandingCriteria

// Config holds the world constants.
type Config struct {
	Gravity  float64
	GroundY  float64
	Criteria LandingCriteria
	// Bus receives touchdown events and is handed to every added rocket.
	// It may be nil.
	Bus *event.Bus
}

// World owns the body list and the ground/gravity constants. It is not safe
// for concurrent use.
type World struct {
	gravity  float64
	groundY  float64
	criteria LandingCriteria
	bus      *event.Bus

	bodies  []*rocket.Rocket
	primary *rocket.Rocket
	ticks   uint64

	airborne     atomic.Int64
	tickCounter  metric.Int64Counter
	landings     metric.Int64Counter
	airborneObs  metric.Int64ObservableGauge
	registration metric.Registration
}

// New creates an empty world. Metrics go to the global OTel meter provider,
// which is a no-op unless an SDK has been installed.
func New(cfg Config) (*World, error) {
	w := &World{
		gravity:  cfg.Gravity,
		groundY:  cfg.GroundY,
		criteria: cfg.Criteria,
		bus:      cfg.Bus,
	}

	m := meter()

	var err error
	w.tickCounter, err = m.Int64Counter(
		"hoverslam.world.ticks",
		metric.WithDescription("Total world integration steps"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	w.landings, err = m.Int64Counter(
		"hoverslam.landings",
		metric.WithDescription("Touchdowns by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating landings counter: %w", err)
	}

	w.airborneObs, err = m.Int64ObservableGauge(
		"hoverslam.world.airborne",
		metric.WithDescription("Bodies still in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating airborne gauge: %w", err)
	}

	w.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(w.airborneObs, w.airborne.Load())
			return nil
		},
		w.airborneObs,
	)
	if err != nil {
		return nil, fmt.Errorf("registering airborne callback: %w", err)
	}

	return w, nil
}

// Close releases the metric callback.
func (w *World) Close() error {
	if w.registration == nil {
		return nil
	}
	return w.registration.Unregister()
}

// Gravity returns the downward acceleration.
func (w *World) Gravity() float64 { return w.gravity }

// GroundY returns the y coordinate of the ground line.
func (w *World) GroundY() float64 { return w.groundY }

// Criteria returns the landing thresholds.
func (w *World) Criteria() LandingCriteria { return w.criteria }

// Bus returns the event bus, which may be nil.
func (w *World) Bus() *event.Bus { return w.bus }

// Ticks returns the number of completed integration steps.
func (w *World) Ticks() uint64 { return w.ticks }

// Bodies returns the rockets in insertion order.
func (w *World) Bodies() []*rocket.Rocket { return w.bodies }

// Primary returns the rocket whose outcome the world reports.
func (w *World) Primary() *rocket.Rocket { return w.primary }

// Add puts r under this world's gravity. The first body added becomes the
// primary.
func (w *World) Add(r *rocket.Rocket) {
	r.SetAcceleration(physics.Vector2D{Y: w.gravity})
	if w.bus != nil {
		r.SetEventBus(w.bus)
	}
	w.bodies = append(w.bodies, r)
	if w.primary == nil {
		w.primary = r
	}
	w.countAirborne()
}

// SetPrimary selects the rocket whose outcome is reported. It must already
// have been added.
func (w *World) SetPrimary(r *rocket.Rocket) error {
	for _, b := range w.bodies {
		if b == r {
			w.primary = r
			return nil
		}
	}
	return fmt.Errorf("rocket %d is not in this world", r.ID())
}

// Clear removes every body.
func (w *World) Clear() {
	w.bodies = nil
	w.primary = nil
	w.airborne.Store(0)
}

// Tick advances every body by dt. Ground contact is checked before a body is
// ticked, so a rocket that reached the ground last tick is classified with
// the state it had on arrival.
func (w *World) Tick(dt float64) {
	ctx := context.Background()

	for _, r := range w.bodies {
		if r.Airborne() && r.Bottom() >= w.groundY {
			w.touchdown(ctx, r)
		}
	}
	for _, r := range w.bodies {
		r.Tick(dt)
	}

	w.ticks++
	w.countAirborne()
	w.tickCounter.Add(ctx, 1)
}

func (w *World) touchdown(ctx context.Context, r *rocket.Rocket) {
	out := r.Touchdown(w.criteria)

	label, t := "crashed", event.RocketCrashed
	if out.Success {
		label, t = "landed", event.RocketLanded
	}
	w.landings.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", label)))

	if w.bus != nil {
		w.bus.Publish(event.NewRocketEvent(t, w, r.ID(), r.Status().String(),
			out.Velocity, out.Direction, out.FuelRemaining))
	}
}

func (w *World) countAirborne() {
	var n int64
	for _, r := range w.bodies {
		if r.Airborne() {
			n++
		}
	}
	w.airborne.Store(n)
}

// Outcome returns the primary rocket's touchdown record once it exists.
func (w *World) Outcome() (rocket.Outcome, bool) {
	if w.primary == nil {
		return rocket.Outcome{}, false
	}
	return w.primary.Outcome()
}
