package health

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aibiz/agent-catalog/internal/catalog"
)

func healthyCheck() Checker {
	return CheckerFunc(func(ctx context.Context) error { return nil })
}

func failingCheck(err error) Checker {
	return CheckerFunc(func(ctx context.Context) error { return err })
}

func TestCheckHealth_AllHealthy(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("database", healthyCheck())
	agg.Register("cache", healthyCheck())

	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Checks["database"])
	assert.Equal(t, StatusHealthy, report.Checks["cache"])
}

func TestCheckHealth_WorstStatusWins(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("ok", healthyCheck())
	agg.Register("soft", failingCheck(fmt.Errorf("%w: optional dep missing", ErrDegraded)))

	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)

	agg.Register("broken", failingCheck(errors.New("connection refused")))
	report = agg.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Checks["ok"])
	assert.Equal(t, StatusDegraded, report.Checks["soft"])
	assert.Equal(t, StatusUnhealthy, report.Checks["broken"])
}

func TestCheckHealth_Timeout(t *testing.T) {
	agg := NewAggregator(50 * time.Millisecond)
	agg.Register("slow", CheckerFunc(func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}))

	start := time.Now()
	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Checks["slow"])
	assert.Less(t, time.Since(start), time.Second, "timed-out check must not stall the report")
}

func TestCheckHealth_IgnoresContextStillBounded(t *testing.T) {
	agg := NewAggregator(50 * time.Millisecond)
	// A misbehaving check that never looks at its context.
	agg.Register("stuck", CheckerFunc(func(ctx context.Context) error {
		time.Sleep(5 * time.Second)
		return nil
	}))

	start := time.Now()
	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCheckHealth_PanicBecomesUnhealthy(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("panicky", CheckerFunc(func(ctx context.Context) error {
		panic("boom")
	}))
	agg.Register("fine", healthyCheck())

	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Checks["panicky"])
	assert.Equal(t, StatusHealthy, report.Checks["fine"])
}

func TestCheckHealth_NoChecks(t *testing.T) {
	agg := NewAggregator(time.Second)
	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Empty(t, report.Checks)
}

func TestDatabaseCheck(t *testing.T) {
	store, err := catalog.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	agg := NewAggregator(time.Second)
	agg.Register("database", DatabaseCheck(store))

	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, StatusHealthy, report.Checks["database"])

	// Closed store: unreachable within the timeout → Unhealthy.
	_ = store.Close()
	report = agg.CheckHealth(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusUnhealthy, report.Checks["database"])
}

func TestDatabaseCheck_NilStoreDegraded(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("database", DatabaseCheck(nil))

	report := agg.CheckHealth(context.Background())
	assert.Equal(t, StatusDegraded, report.Status)
}

func TestWorseOrdering(t *testing.T) {
	assert.Equal(t, StatusUnhealthy, worse(StatusHealthy, StatusUnhealthy))
	assert.Equal(t, StatusUnhealthy, worse(StatusUnhealthy, StatusDegraded))
	assert.Equal(t, StatusDegraded, worse(StatusHealthy, StatusDegraded))
	assert.Equal(t, StatusHealthy, worse(StatusHealthy, StatusHealthy))
}
