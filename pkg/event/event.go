// pkg/event/event.go
package event

import (
	"sync"
)

// Type represents the type of event
type Type string

// Flight event types
const (
	AttemptStarted  Type = "attempt_started"
	AttemptFinished Type = "attempt_finished"
	EngineIgnition  Type = "engine_ignition"
	EngineCutoff    Type = "engine_cutoff"
	FuelExhausted   Type = "fuel_exhausted"
	RocketLanded    Type = "rocket_landed"
	RocketCrashed   Type = "rocket_crashed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it from the bus.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:   id,
		Type: eventType,
		Cancel: func() {
			b.unsubscribe(eventType, id)
		},
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	if b == nil || event == nil {
		return
	}

	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// Specific event implementations

// RocketEvent carries the rocket state at the moment of an engine or
// touchdown transition.
type RocketEvent struct {
	BaseEvent
	RocketID  uint64
	Status    string
	Velocity  float64
	Direction float64
	Fuel      float64
}

// NewRocketEvent creates a new rocket event
func NewRocketEvent(eventType Type, source interface{}, rocketID uint64, status string, velocity, direction, fuel float64) *RocketEvent {
	return &RocketEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		RocketID:  rocketID,
		Status:    status,
		Velocity:  velocity,
		Direction: direction,
		Fuel:      fuel,
	}
}

// AttemptEvent marks the start or end of a landing attempt.
type AttemptEvent struct {
	BaseEvent
	CorrelationID string
	Mode          string
	Success       bool
}

// NewAttemptEvent creates a new attempt event
func NewAttemptEvent(eventType Type, source interface{}, correlationID, mode string, success bool) *AttemptEvent {
	return &AttemptEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		CorrelationID: correlationID,
		Mode:          mode,
		Success:       success,
	}
}
