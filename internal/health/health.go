// Package health reduces a set of named liveness checks to one composite
// status. The aggregator itself never fails: check errors, timeouts, and
// panics all become status data.
package health

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/aibiz/agent-catalog/internal/catalog"
	"github.com/aibiz/agent-catalog/internal/metrics"
)

// Status is a single health state. Aggregation takes the worst status among
// all checks; the total order is Unhealthy > Degraded > Healthy.
type Status string

const (
	StatusHealthy   Status = "Healthy"
	StatusDegraded  Status = "Degraded"
	StatusUnhealthy Status = "Unhealthy"
)

var statusRank = map[Status]int{
	StatusHealthy:   0,
	StatusDegraded:  1,
	StatusUnhealthy: 2,
}

func worse(a, b Status) Status {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// ErrDegraded marks a check result that should surface as Degraded rather
// than Unhealthy (e.g. a soft dependency that is absent but not broken).
var ErrDegraded = errors.New("degraded")

// Checker is a single named health probe. A nil return means healthy; an
// error wrapping ErrDegraded means degraded; any other error means
// unhealthy. The context carries the per-check timeout.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// Report is the composite result of one aggregation pass.
type Report struct {
	Status Status            `json:"status"`
	Checks map[string]Status `json:"checks"`
}

// DefaultCheckTimeout bounds each individual check.
const DefaultCheckTimeout = 5 * time.Second

// Aggregator runs registered checks and reduces them to a Report.
type Aggregator struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]Checker
}

// NewAggregator returns an aggregator applying timeout to each check.
// A zero timeout uses DefaultCheckTimeout.
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Aggregator{
		timeout: timeout,
		checks:  make(map[string]Checker),
	}
}

// Register adds (or replaces) a named check.
func (a *Aggregator) Register(name string, c Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.checks[name] = c
}

// CheckHealth runs all registered checks concurrently and returns the
// composite report. It always produces a report: a check that errors, times
// out, or panics is recorded as Unhealthy for its name, never propagated.
func (a *Aggregator) CheckHealth(ctx context.Context) Report {
	a.mu.RLock()
	checks := make(map[string]Checker, len(a.checks))
	for name, c := range a.checks {
		checks[name] = c
	}
	a.mu.RUnlock()

	report := Report{
		Status: StatusHealthy,
		Checks: make(map[string]Status, len(checks)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for name, c := range checks {
		g.Go(func() error {
			status := a.runCheck(gctx, name, c)
			mu.Lock()
			report.Checks[name] = status
			report.Status = worse(report.Status, status)
			mu.Unlock()
			metrics.HealthCheckResults.WithLabelValues(name, string(status)).Inc()
			return nil
		})
	}
	_ = g.Wait()

	metrics.HealthStatus.Set(float64(statusRank[report.Status]))
	return report
}

// runCheck executes one check under its timeout, converting every failure
// mode to a status. The check runs in its own goroutine so a checker that
// ignores its context cannot stall the aggregation past the timeout.
func (a *Aggregator) runCheck(ctx context.Context, name string, c Checker) Status {
	checkCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("check panicked: %v", r)
			}
		}()
		done <- c.Check(checkCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-checkCtx.Done():
		log.Warn().Str("check", name).Dur("timeout", a.timeout).Msg("Health check timed out")
		return StatusUnhealthy
	}

	switch {
	case err == nil:
		return StatusHealthy
	case errors.Is(err, ErrDegraded):
		log.Warn().Str("check", name).Err(err).Msg("Health check degraded")
		return StatusDegraded
	default:
		log.Warn().Str("check", name).Err(err).Msg("Health check failed")
		return StatusUnhealthy
	}
}

// DatabaseCheck probes catalog store connectivity. A nil store reports
// degraded so the service can still start without storage in development.
func DatabaseCheck(store *catalog.Store) Checker {
	return CheckerFunc(func(ctx context.Context) error {
		if store == nil {
			return fmt.Errorf("%w: no catalog store configured", ErrDegraded)
		}
		return store.PingContext(ctx)
	})
}
