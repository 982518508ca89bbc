package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorStopsOnCancel(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("ok", CheckerFunc(func(ctx context.Context) error { return nil }))

	m := NewMonitor(agg, MonitorConfig{Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after context cancellation")
	}
}

func TestMonitorTracksStatusChanges(t *testing.T) {
	agg := NewAggregator(time.Second)
	agg.Register("flaky", CheckerFunc(func(ctx context.Context) error {
		return errors.New("down")
	}))

	m := NewMonitor(agg, MonitorConfig{Interval: 10 * time.Millisecond})
	require.Equal(t, StatusHealthy, m.lastStatus)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	<-done

	assert.Equal(t, StatusUnhealthy, m.lastStatus)
}

func TestMonitorDefaultInterval(t *testing.T) {
	m := NewMonitor(NewAggregator(time.Second), MonitorConfig{})
	assert.Equal(t, 60*time.Second, m.cfg.Interval)
}
