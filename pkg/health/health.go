// Package health serves liveness and readiness probes for long headless
// runs of the simulator.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"
)

// Check is one component probe.
type Check interface {
	// Name returns the unique name of this health check
	Name() string
	// Check returns an error if the component is unhealthy
	Check(ctx context.Context) error
}

// Status is the aggregated result served by the readiness probe.
type Status struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker manages and executes health checks.
type Checker struct {
	checks map[string]Check
	mu     sync.RWMutex
}

// NewChecker creates a checker with no checks.
func NewChecker() *Checker {
	return &Checker{
		checks: make(map[string]Check),
	}
}

// AddCheck registers a check, replacing any with the same name.
func (hc *Checker) AddCheck(check Check) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *Checker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every check. The overall status is "healthy" only if all
// of them pass.
func (hc *Checker) CheckHealth(ctx context.Context) Status {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := Status{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{
				Status:  "unhealthy",
				Message: err.Error(),
			}
		} else {
			status.Checks[name] = ComponentHealth{
				Status: "healthy",
			}
		}
	}

	return status
}

// LivenessHandler always answers 200 while the process is up.
func (hc *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs every check and answers 503 if any fails.
func (hc *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Handler serves /health and /ready.
func (hc *Checker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)
	return mux
}

// Pinger is anything that can confirm its backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck probes the flight log database.
type StoreCheck struct {
	store Pinger
}

// NewStoreCheck creates a probe for store.
func NewStoreCheck(store Pinger) *StoreCheck {
	return &StoreCheck{store: store}
}

// Name returns the name of this health check.
func (s *StoreCheck) Name() string {
	return "flightlog"
}

// Check pings the database.
func (s *StoreCheck) Check(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("flight log unreachable: %w", err)
	}
	return nil
}

// ProgressCheck fails when a batch of attempts has stopped advancing.
type ProgressCheck struct {
	completed func() int
	stallTime time.Duration
	now       func() time.Time

	mu       sync.Mutex
	last     int
	lastSeen time.Time
}

// NewProgressCheck watches completed, which must be safe to call from the
// probe goroutine. The batch is unhealthy once the count has not changed for
// stallTime.
func NewProgressCheck(completed func() int, stallTime time.Duration) *ProgressCheck {
	return &ProgressCheck{
		completed: completed,
		stallTime: stallTime,
		now:       time.Now,
		last:      -1,
	}
}

// Name returns the name of this health check.
func (p *ProgressCheck) Name() string {
	return "simulation"
}

// Check compares the completed count with the last one seen.
func (p *ProgressCheck) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	n := p.completed()
	if n != p.last {
		p.last = n
		p.lastSeen = now
		return nil
	}
	if stalled := now.Sub(p.lastSeen); stalled > p.stallTime {
		return fmt.Errorf("no attempt finished for %s (completed %d)", stalled.Round(time.Second), n)
	}
	return nil
}

// MemoryCheck implements Check for heap usage.
type MemoryCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryCheck creates a check against maxMemoryMB. A nil getMemoryUsage
// reads the Go heap.
func NewMemoryCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = heapMB
	}
	return &MemoryCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

func heapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}

// Name returns the name of this health check.
func (m *MemoryCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
