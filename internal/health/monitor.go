package health

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// MonitorConfig holds health monitor settings.
type MonitorConfig struct {
	Interval time.Duration // how often to poll (default 60s)
}

// Monitor periodically runs the aggregator so composite status and metrics
// stay current between on-demand /health calls.
type Monitor struct {
	agg *Aggregator
	cfg MonitorConfig

	lastStatus Status
}

// NewMonitor creates a health monitor over agg.
func NewMonitor(agg *Aggregator, cfg MonitorConfig) *Monitor {
	if cfg.Interval == 0 {
		cfg.Interval = 60 * time.Second
	}
	return &Monitor{agg: agg, cfg: cfg, lastStatus: StatusHealthy}
}

// Run starts the polling loop. It blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	log.Info().Dur("interval", m.cfg.Interval).Msg("Health monitor started")

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Health monitor stopped")
			return
		case <-ticker.C:
			report := m.agg.CheckHealth(ctx)
			if report.Status != m.lastStatus {
				log.Warn().
					Str("from", string(m.lastStatus)).
					Str("to", string(report.Status)).
					Msg("Composite health status changed")
				m.lastStatus = report.Status
			}
		}
	}
}
