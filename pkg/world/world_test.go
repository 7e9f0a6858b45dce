package world

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/opd-ai/go-hoverslam/pkg/event"
	"github.com/opd-ai/go-hoverslam/pkg/physics"
	"github.com/opd-ai/go-hoverslam/pkg/rocket"
)

const groundY = 650.0

func newTestWorld(t *testing.T, bus *event.Bus) *World {
	t.Helper()
	w, err := New(Config{
		Gravity:  100,
		GroundY:  groundY,
		Criteria: rocket.DefaultLandingCriteria(),
		Bus:      bus,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// rocketAt returns an idle rocket whose bottom edge is altitude above ground.
func rocketAt(id uint64, altitude float64, velocity physics.Vector2D) *rocket.Rocket {
	return rocket.New(rocket.Options{
		ID:       id,
		Position: physics.Vector2D{X: 400, Y: groundY - altitude - rocket.DefaultHeight},
		Velocity: velocity,
		Fuel:     10,
	})
}

func TestWorld_AddAppliesGravityAndPrimary(t *testing.T) {
	w := newTestWorld(t, nil)
	a := rocketAt(1, 500, physics.Vector2D{})
	b := rocketAt(2, 500, physics.Vector2D{})

	w.Add(a)
	w.Add(b)

	if a.Acceleration() != (physics.Vector2D{Y: 100}) {
		t.Errorf("Acceleration() = %v, want gravity", a.Acceleration())
	}
	if w.Primary() != a {
		t.Error("first body added should be primary")
	}
	if err := w.SetPrimary(b); err != nil || w.Primary() != b {
		t.Errorf("SetPrimary() error = %v", err)
	}
	if err := w.SetPrimary(rocketAt(3, 0, physics.Vector2D{})); err == nil {
		t.Error("SetPrimary() accepted a rocket outside the world")
	}
}

func TestWorld_FreeFallFromAltitude(t *testing.T) {
	w := newTestWorld(t, nil)
	r := rocketAt(1, 500, physics.Vector2D{})
	w.Add(r)
	startY := r.Position().Y

	for i := 0; i < 1000; i++ {
		w.Tick(0.001)
	}

	if !scalar.EqualWithinAbs(r.Velocity().Y, 100, 1e-6) {
		t.Errorf("Velocity().Y = %v, want 100", r.Velocity().Y)
	}
	if dy := r.Position().Y - startY; !scalar.EqualWithinAbs(dy, 50, 0.1) {
		t.Errorf("fell %v, want ~50", dy)
	}
	if !r.Airborne() {
		t.Error("rocket touched down early")
	}
	if w.Ticks() != 1000 {
		t.Errorf("Ticks() = %d, want 1000", w.Ticks())
	}
}

func TestWorld_ContactCheckedBeforeTick(t *testing.T) {
	w := newTestWorld(t, nil)
	r := rocketAt(1, 0, physics.Vector2D{X: 3, Y: 4})
	w.Add(r)

	w.Tick(0.5)

	out, ok := w.Outcome()
	if !ok {
		t.Fatal("Outcome() not available after contact")
	}
	// gravity for this tick must not have been applied before classification
	if out.Velocity != 5 {
		t.Errorf("Outcome().Velocity = %v, want 5", out.Velocity)
	}
	if !out.Success {
		t.Errorf("Outcome() = %+v, want success", out)
	}
	if r.Velocity() != (physics.Vector2D{}) {
		t.Errorf("Velocity() = %v, want zero after touchdown", r.Velocity())
	}
}

func TestWorld_OvershootStillClassified(t *testing.T) {
	w := newTestWorld(t, nil)
	r := rocketAt(1, 1, physics.Vector2D{Y: 300})
	w.Add(r)

	w.Tick(0.1) // crosses the ground line
	if !r.Airborne() {
		t.Fatal("contact should only be detected on the next tick")
	}
	w.Tick(0.1)

	out, ok := w.Outcome()
	if !ok || out.Success {
		t.Errorf("Outcome() = %+v, %v, want crash", out, ok)
	}
	if r.Status() != rocket.Crashed {
		t.Errorf("Status() = %v, want crashed", r.Status())
	}
}

func TestWorld_OutcomePublishedOnce(t *testing.T) {
	bus := event.NewEventBus()
	var landed, crashed []*event.RocketEvent
	bus.Subscribe(event.RocketLanded, func(e event.Event) { landed = append(landed, e.(*event.RocketEvent)) })
	bus.Subscribe(event.RocketCrashed, func(e event.Event) { crashed = append(crashed, e.(*event.RocketEvent)) })

	w := newTestWorld(t, bus)
	soft := rocketAt(1, 0, physics.Vector2D{Y: 2})
	hard := rocketAt(2, 0, physics.Vector2D{Y: 80})
	w.Add(soft)
	w.Add(hard)

	for i := 0; i < 10; i++ {
		w.Tick(0.016)
	}

	if len(landed) != 1 || landed[0].RocketID != 1 {
		t.Errorf("landed events = %+v, want one for rocket 1", landed)
	}
	if len(crashed) != 1 || crashed[0].RocketID != 2 {
		t.Errorf("crashed events = %+v, want one for rocket 2", crashed)
	}
	if crashed[0].Velocity != 80 || crashed[0].Status != "crashed" {
		t.Errorf("crash event = %+v", crashed[0])
	}

	first, _ := w.Outcome()
	w.Tick(0.016)
	again, _ := w.Outcome()
	if first != again {
		t.Errorf("Outcome() changed from %+v to %+v", first, again)
	}
}

func TestWorld_NoOutcomeWithoutPrimary(t *testing.T) {
	w := newTestWorld(t, nil)
	if _, ok := w.Outcome(); ok {
		t.Error("Outcome() available on an empty world")
	}
	w.Tick(0.016)
}

func TestWorld_Clear(t *testing.T) {
	w := newTestWorld(t, nil)
	w.Add(rocketAt(1, 100, physics.Vector2D{}))
	w.Clear()

	if len(w.Bodies()) != 0 || w.Primary() != nil {
		t.Errorf("Clear() left bodies %v primary %v", w.Bodies(), w.Primary())
	}
	if _, ok := w.Outcome(); ok {
		t.Error("Outcome() survived Clear")
	}
}

func TestWorld_Snapshot(t *testing.T) {
	w := newTestWorld(t, nil)
	a := rocketAt(7, 300, physics.Vector2D{X: 12})
	b := rocketAt(8, 200, physics.Vector2D{})
	w.Add(a)
	w.Add(b)
	w.Tick(0.01)

	s := w.Snapshot()
	if s.GroundY != groundY || s.Gravity != 100 || s.Tick != 1 {
		t.Errorf("Snapshot() header = %+v", s)
	}
	if len(s.Bodies) != 2 {
		t.Fatalf("Snapshot() bodies = %d, want 2", len(s.Bodies))
	}
	if s.Bodies[0].ID != 7 || !s.Bodies[0].Primary || s.Bodies[1].Primary {
		t.Errorf("primary flags wrong: %+v", s.Bodies)
	}
	if s.Bodies[0].Position != a.Position() || s.Bodies[0].Status != rocket.Airborne {
		t.Errorf("body state = %+v", s.Bodies[0])
	}
	if len(s.Bodies[0].Engines) != 1 {
		t.Errorf("engine states = %v", s.Bodies[0].Engines)
	}
}
