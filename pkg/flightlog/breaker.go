package flightlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-hoverslam/pkg/logging"
)

const (
	maxConsecutiveFailures = 5
	writeCooldown          = 30 * time.Second
)

// ErrWritesSuspended is reported by Ping while failed writes have tripped
// the breaker.
var ErrWritesSuspended = errors.New("flight log writes suspended")

// writeGuard fails writes fast after repeated failures.
type writeGuard struct {
	breaker *gobreaker.CircuitBreaker
	logger  *logging.Logger
}

func newWriteGuard(name string, log *logging.Logger, maxFails uint32, cooldown time.Duration) *writeGuard {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "flight log breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &writeGuard{
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  log,
	}
}

// execute runs op unless the breaker is open.
func (g *writeGuard) execute(ctx context.Context, op func() error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		return nil, op()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			g.logger.Debug(ctx, "flight log write skipped", "state", g.breaker.State().String())
		}
		return fmt.Errorf("circuit breaker: %w", err)
	}
	return nil
}

func (g *writeGuard) open() bool {
	return g.breaker.State() == gobreaker.StateOpen
}
