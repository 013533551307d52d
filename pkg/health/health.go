// Package health serves liveness and readiness probes for a running orrery
// on its debug listener.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Probe states reported in JSON bodies.
const (
	StatusAlive     = "alive"
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// DefaultTimeout bounds one readiness evaluation.
const DefaultTimeout = 5 * time.Second

// Check is one component's readiness test.
type Check interface {
	Name() string
	Check(ctx context.Context) error
}

type funcCheck struct {
	name string
	fn   func(ctx context.Context) error
}

func (f funcCheck) Name() string                    { return f.name }
func (f funcCheck) Check(ctx context.Context) error { return f.fn(ctx) }

// CheckFunc adapts fn to a Check called name.
func CheckFunc(name string, fn func(ctx context.Context) error) Check {
	return funcCheck{name: name, fn: fn}
}

// Result is the outcome of one check.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Elapsed string `json:"elapsed"`
}

// Report aggregates every registered check. Status is healthy only when
// all checks pass.
type Report struct {
	Status    string            `json:"status"`
	CheckedAt time.Time         `json:"checkedAt"`
	Checks    map[string]Result `json:"checks"`
}

// Healthy reports whether every check passed.
func (r Report) Healthy() bool {
	return r.Status == StatusHealthy
}

// Checker runs registered checks concurrently, each under the same
// deadline.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
	started time.Time
	now     func() time.Time
}

// NewChecker creates a checker. A non-positive timeout uses DefaultTimeout.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		checks:  make(map[string]Check),
		timeout: timeout,
		started: time.Now(),
		now:     time.Now,
	}
}

// Register adds checks, replacing any with the same name.
func (c *Checker) Register(checks ...Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, check := range checks {
		c.checks[check.Name()] = check
	}
}

// Unregister drops the named check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	delete(c.checks, name)
	c.mu.Unlock()
}

// Names returns the registered check names in order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run evaluates every check. A check that outlives the deadline is
// reported unhealthy with the context error.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make([]Check, 0, len(c.checks))
	for _, check := range c.checks {
		checks = append(checks, check)
	}
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	report := Report{
		Status:    StatusHealthy,
		CheckedAt: c.now(),
		Checks:    make(map[string]Result, len(checks)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, check := range checks {
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()
			res := run(ctx, check)
			mu.Lock()
			report.Checks[check.Name()] = res
			if res.Status != StatusHealthy {
				report.Status = StatusUnhealthy
			}
			mu.Unlock()
		}(check)
	}
	wg.Wait()

	return report
}

func run(ctx context.Context, check Check) Result {
	started := time.Now()
	done := make(chan error, 1)
	go func() { done <- check.Check(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	res := Result{Status: StatusHealthy, Elapsed: time.Since(started).Round(time.Microsecond).String()}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Message = err.Error()
	}
	return res
}

// LiveHandler answers 200 while the process can serve HTTP at all.
func (c *Checker) LiveHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": StatusAlive,
		"uptime": c.now().Sub(c.started).Round(time.Second).String(),
	})
}

// ReadyHandler answers 200 when every check passes and 503 otherwise.
func (c *Checker) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	report := c.Run(r.Context())
	code := http.StatusOK
	if !report.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// SimulationCheck fails when the simulation is stopped or has not
// completed a tick within the stall threshold.
type SimulationCheck struct {
	running    func() bool
	lastTick   func() time.Time
	stallAfter time.Duration
	now        func() time.Time
}

// NewSimulationCheck watches the simulation's liveness accessors. A
// non-positive stallAfter disables stall detection.
func NewSimulationCheck(running func() bool, lastTick func() time.Time, stallAfter time.Duration) *SimulationCheck {
	return &SimulationCheck{
		running:    running,
		lastTick:   lastTick,
		stallAfter: stallAfter,
		now:        time.Now,
	}
}

// Name implements Check.
func (s *SimulationCheck) Name() string {
	return "simulation"
}

// Check implements Check.
func (s *SimulationCheck) Check(ctx context.Context) error {
	if !s.running() {
		return fmt.Errorf("simulation is not running")
	}
	last := s.lastTick()
	if last.IsZero() {
		return fmt.Errorf("simulation has not ticked yet")
	}
	if idle := s.now().Sub(last); s.stallAfter > 0 && idle > s.stallAfter {
		return fmt.Errorf("simulation stalled: no tick for %s", idle.Round(time.Millisecond))
	}
	return nil
}

// MemoryCheck fails when usage, in MB, exceeds maxMB.
func MemoryCheck(maxMB int64, usage func() int64) Check {
	return CheckFunc("memory", func(context.Context) error {
		if mb := usage(); mb > maxMB {
			return fmt.Errorf("memory usage %dMB exceeds limit %dMB", mb, maxMB)
		}
		return nil
	})
}
