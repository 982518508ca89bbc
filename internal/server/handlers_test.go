package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aibiz/agent-catalog/internal/catalog"
	"github.com/aibiz/agent-catalog/internal/health"
	"github.com/aibiz/agent-catalog/internal/registration"
)

func newTestDeps(t *testing.T) *Deps {
	t.Helper()
	store, err := catalog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	agg := health.NewAggregator(time.Second)
	agg.Register("database", health.DatabaseCheck(store))

	return &Deps{
		Store:        store,
		Registration: registration.NewService(store),
		Health:       agg,
		Version:      "test",
	}
}

func newTestMux(t *testing.T) (*http.ServeMux, *Deps) {
	t.Helper()
	deps := newTestDeps(t)
	mux := http.NewServeMux()
	RegisterRoutes(mux, deps)
	return mux, deps
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealthz(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHandleReadyz(t *testing.T) {
	mux, deps := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_ = deps.Store.Close()
	rec = doJSON(t, mux, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	mux, deps := newTestMux(t)

	rec := doJSON(t, mux, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report health.Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, health.StatusHealthy, report.Status)
	assert.Equal(t, health.StatusHealthy, report.Checks["database"])

	// Storage unreachable → Unhealthy, 503, but still a full report.
	_ = deps.Store.Close()
	rec = doJSON(t, mux, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, health.StatusUnhealthy, report.Status)
	assert.Equal(t, health.StatusUnhealthy, report.Checks["database"])
}

func TestHandleVersion(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/version", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "test", body["version"])
}

func TestSponsorValidationMapsTo400(t *testing.T) {
	mux, _ := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/sponsors", createSponsorRequest{
		Email:       "not-an-email",
		DisplayName: "X",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "invalid_input", errResp.Error)
}

func TestAgentQueryInvalidSkillMapsTo400(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/api/agents?skill=Not%20Valid%21", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "invalid_input", errResp.Error)
}

func TestRegistrationFlow(t *testing.T) {
	mux, _ := newTestMux(t)

	// Create a sponsor
	rec := doJSON(t, mux, http.MethodPost, "/api/sponsors", createSponsorRequest{
		Email:       "flow@example.com",
		DisplayName: "Flow Sponsor",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sponsor catalog.Sponsor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sponsor))
	require.NotEmpty(t, sponsor.ID)

	// First agent registers fine
	rec = doJSON(t, mux, http.MethodPost, "/api/agents", createAgentRequest{
		SponsorID: sponsor.ID,
		Name:      "Agent A",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var agent catalog.AgentProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&agent))
	assert.Equal(t, sponsor.ID, agent.SponsorID)

	// Second agent hits the free-tier quota
	rec = doJSON(t, mux, http.MethodPost, "/api/agents", createAgentRequest{
		SponsorID: sponsor.ID,
		Name:      "Agent B",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "free_tier_limit_exceeded", errResp.Error)

	// Error kinds are distinguishable
	rec = doJSON(t, mux, http.MethodPost, "/api/agents", createAgentRequest{
		SponsorID: sponsor.ID,
		Name:      "",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/api/agents", createAgentRequest{
		SponsorID: "3b2c9a0e-0000-4000-8000-000000000000",
		Name:      "Orphan",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDuplicateSponsorEmail(t *testing.T) {
	mux, _ := newTestMux(t)

	req := createSponsorRequest{Email: "dup@example.com", DisplayName: "One"}
	rec := doJSON(t, mux, http.MethodPost, "/api/sponsors", req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req.Email = "DUP@example.com"
	rec = doJSON(t, mux, http.MethodPost, "/api/sponsors", req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAgentSkillQuery(t *testing.T) {
	mux, deps := newTestMux(t)
	svc := deps.Registration

	rec := doJSON(t, mux, http.MethodPost, "/api/sponsors", createSponsorRequest{
		Email:       "query@example.com",
		DisplayName: "Query Sponsor",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sponsor catalog.Sponsor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sponsor))

	agent, err := svc.CreateAgent(t.Context(), sponsor.ID, "Tagged", "")
	require.NoError(t, err)

	rec = doJSON(t, mux, http.MethodPost, fmt.Sprintf("/api/agents/%s/skills", agent.ID), tagSkillRequest{Name: "devops"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, mux, http.MethodGet, "/api/agents?sponsor="+sponsor.ID+"&skill=devops", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var agents []*catalog.AgentProfile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&agents))
	require.Len(t, agents, 1)
	assert.Equal(t, agent.ID, agents[0].ID)

	// No match → empty list, not an error
	rec = doJSON(t, mux, http.MethodGet, "/api/agents?sponsor="+sponsor.ID+"&skill=nlp", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&agents))
	assert.Empty(t, agents)
}

func TestSponsorDeleteCascades(t *testing.T) {
	mux, deps := newTestMux(t)

	rec := doJSON(t, mux, http.MethodPost, "/api/sponsors", createSponsorRequest{
		Email:       "cascade@example.com",
		DisplayName: "Doomed",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var sponsor catalog.Sponsor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sponsor))

	agent, err := deps.Registration.CreateAgent(t.Context(), sponsor.ID, "Goner", "")
	require.NoError(t, err)

	rec = doJSON(t, mux, http.MethodDelete, "/api/sponsors/"+sponsor.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/api/agents/"+agent.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodDelete, "/api/sponsors", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
