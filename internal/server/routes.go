package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aibiz/agent-catalog/internal/catalog"
	"github.com/aibiz/agent-catalog/internal/health"
	"github.com/aibiz/agent-catalog/internal/registration"
)

// Deps holds shared dependencies injected into HTTP handlers.
type Deps struct {
	Store        *catalog.Store
	Registration *registration.Service
	Health       *health.Aggregator
	Version      string
}

// RegisterRoutes wires all HTTP handlers onto the given ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps *Deps) {
	// Liveness / readiness / composite health are unauthenticated probes.
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/readyz", handleReadyz(deps.Store))
	mux.HandleFunc("/health", handleHealth(deps.Health))
	mux.HandleFunc("/version", handleVersion(deps.Version))

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/sponsors", handleSponsors(deps))
	mux.HandleFunc("/api/sponsors/", handleSponsorByID(deps))
	mux.HandleFunc("/api/agents", handleAgents(deps))
	mux.HandleFunc("/api/agents/", handleAgentByID(deps))
	mux.HandleFunc("/api/skills", handleSkills(deps))
}
