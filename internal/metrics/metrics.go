package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts agent registration attempts by outcome.
	RegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "registrations_total",
		Help:      "Total agent registration attempts by outcome.",
	}, []string{"outcome"})

	// QuotaDenialsTotal counts registrations denied by the tier quota.
	QuotaDenialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "quota_denials_total",
		Help:      "Total registrations denied by the free-tier quota.",
	})

	// HealthStatus reports the current composite health status
	// (0 healthy, 1 degraded, 2 unhealthy).
	HealthStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "catalog",
		Name:      "health_status",
		Help:      "Composite health status: 0 healthy, 1 degraded, 2 unhealthy.",
	})

	// HealthCheckResults counts individual health check outcomes.
	HealthCheckResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "catalog",
		Name:      "health_check_results_total",
		Help:      "Health check results by check name and status.",
	}, []string{"check", "status"})
)
