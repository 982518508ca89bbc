package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aibiz/agent-catalog/internal/catalog"
	"github.com/aibiz/agent-catalog/internal/health"
	"github.com/aibiz/agent-catalog/internal/registration"
)

// handleHealthz returns 200 "ok" unconditionally (liveness probe).
func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReadyz checks database connectivity (readiness probe).
func handleReadyz(store *catalog.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.PingContext(r.Context()); err != nil {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

// handleHealth runs the aggregator and writes the composite report.
// Healthy and Degraded map to 200, Unhealthy to 503.
func handleHealth(agg *health.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := agg.CheckHealth(r.Context())

		code := http.StatusOK
		if report.Status == health.StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	}
}

// handleVersion reports the running build.
func handleVersion(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": version})
	}
}

type createSponsorRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func handleSponsors(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createSponsorRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
				return
			}
			sponsor := &catalog.Sponsor{
				Email:       req.Email,
				DisplayName: req.DisplayName,
			}
			if err := deps.Store.CreateSponsor(r.Context(), sponsor); err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, sponsor)
		case http.MethodGet:
			sponsors, err := deps.Store.ListSponsors(r.Context())
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, sponsors)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		}
	}
}

func handleSponsorByID(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/sponsors/")
		if id == "" || strings.Contains(id, "/") {
			writeError(w, http.StatusNotFound, "not_found", "")
			return
		}

		switch r.Method {
		case http.MethodGet:
			sponsor, err := deps.Store.GetSponsor(r.Context(), id)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, sponsor)
		case http.MethodDelete:
			if err := deps.Store.DeleteSponsor(r.Context(), id); err != nil {
				writeStoreError(w, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		}
	}
}

type createAgentRequest struct {
	SponsorID   string `json:"sponsor_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func handleAgents(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createAgentRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
				return
			}
			agent, err := deps.Registration.CreateAgent(r.Context(), req.SponsorID, req.Name, req.Description)
			if err != nil {
				writeRegistrationError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, agent)
		case http.MethodGet:
			sponsorID := r.URL.Query().Get("sponsor")
			skill := r.URL.Query().Get("skill")

			var (
				agents []*catalog.AgentProfile
				err    error
			)
			switch {
			case skill != "":
				agents, err = deps.Store.ListAgentsBySkill(r.Context(), sponsorID, skill)
			case sponsorID != "":
				agents, err = deps.Store.ListAgentsBySponsor(r.Context(), sponsorID)
			default:
				writeError(w, http.StatusBadRequest, "invalid_input", "sponsor or skill query parameter required")
				return
			}
			if err != nil {
				writeStoreError(w, err)
				return
			}
			if agents == nil {
				agents = []*catalog.AgentProfile{}
			}
			writeJSON(w, http.StatusOK, agents)
		default:
			w.Header().Set("Allow", "GET, POST")
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		}
	}
}

type tagSkillRequest struct {
	Name string `json:"name"`
}

// handleAgentByID serves /api/agents/{id} and /api/agents/{id}/skills[/{name}].
func handleAgentByID(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/agents/")
		parts := strings.Split(rest, "/")

		switch {
		case len(parts) == 1 && parts[0] != "":
			handleAgentResource(deps, w, r, parts[0])
		case len(parts) >= 2 && parts[1] == "skills":
			skillName := ""
			if len(parts) == 3 {
				skillName = parts[2]
			}
			handleAgentSkills(deps, w, r, parts[0], skillName)
		default:
			writeError(w, http.StatusNotFound, "not_found", "")
		}
	}
}

func handleAgentResource(deps *Deps, w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		agent, err := deps.Store.GetAgent(r.Context(), id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	case http.MethodPut:
		var req catalog.AgentProfile
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
			return
		}
		req.ID = id
		agent, err := deps.Registration.UpdateAgent(r.Context(), &req)
		if err != nil {
			writeRegistrationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, agent)
	case http.MethodDelete:
		if err := deps.Store.DeleteAgent(r.Context(), id); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func handleAgentSkills(deps *Deps, w http.ResponseWriter, r *http.Request, agentID, skillName string) {
	switch {
	case r.Method == http.MethodPost && skillName == "":
		var req tagSkillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_input", "malformed JSON body")
			return
		}
		skill, err := deps.Registration.AddSkill(r.Context(), agentID, req.Name)
		if err != nil {
			writeRegistrationError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, skill)
	case r.Method == http.MethodGet && skillName == "":
		skills, err := deps.Store.ListAgentSkills(r.Context(), agentID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if skills == nil {
			skills = []*catalog.Skill{}
		}
		writeJSON(w, http.StatusOK, skills)
	case r.Method == http.MethodDelete && skillName != "":
		if err := deps.Registration.RemoveSkill(r.Context(), agentID, skillName); err != nil {
			writeRegistrationError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
	}
}

func handleSkills(deps *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
			return
		}
		skills, err := deps.Store.ListSkills(r.Context())
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if skills == nil {
			skills = []*catalog.Skill{}
		}
		writeJSON(w, http.StatusOK, skills)
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, errorResponse{Error: kind, Message: message})
}

// writeRegistrationError maps the registration error taxonomy to HTTP codes:
// business-rule violations get their specific kind; infrastructure failures
// surface as 503 so callers know a retry may help.
func writeRegistrationError(w http.ResponseWriter, err error) {
	switch {
	case registration.IsFreeTierLimit(err):
		writeError(w, http.StatusConflict, "free_tier_limit_exceeded", err.Error())
	case errors.Is(err, registration.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, registration.ErrSponsorNotFound):
		writeError(w, http.StatusNotFound, "sponsor_not_found", err.Error())
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request_canceled", "")
	default:
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "")
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "")
	case errors.Is(err, catalog.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, catalog.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
	default:
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", "")
	}
}
