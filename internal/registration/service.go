// Package registration orchestrates agent profile creation: input
// validation, quota evaluation, and the transactional insert that keeps the
// free-tier invariant under concurrent requests.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aibiz/agent-catalog/internal/catalog"
	"github.com/aibiz/agent-catalog/internal/logging"
	"github.com/aibiz/agent-catalog/internal/metrics"
	"github.com/aibiz/agent-catalog/internal/quota"
)

// Service creates and edits agent profiles on behalf of sponsors. It holds
// no mutable state of its own; the quota invariant is enforced by the
// store's transactional guarantees.
type Service struct {
	store *catalog.Store
	log   zerolog.Logger
}

// NewService returns a registration service backed by store.
func NewService(store *catalog.Store) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "registration").Logger(),
	}
}

// logger returns the service logger, tagged with the request ID when the
// HTTP middleware has stored one on the context.
func (s *Service) logger(ctx context.Context) zerolog.Logger {
	if id := logging.RequestIDFrom(ctx); id != "" {
		return s.log.With().Str("request_id", id).Logger()
	}
	return s.log
}

// CreateAgent registers a new agent profile for a sponsor.
//
// The count read, quota decision, and insert run in a single storage
// transaction, so two concurrent calls for the same free-tier sponsor can
// never both succeed. On any failure no row is written.
func (s *Service) CreateAgent(ctx context.Context, sponsorID, name, description string) (*catalog.AgentProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > catalog.MaxAgentNameLen {
		return nil, fmt.Errorf("%w: agent name must be 1-%d characters", ErrInvalidInput, catalog.MaxAgentNameLen)
	}
	if utf8.RuneCountInString(description) > catalog.MaxDescriptionLen {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, catalog.MaxDescriptionLen)
	}
	if _, err := uuid.Parse(sponsorID); err != nil {
		return nil, fmt.Errorf("%w: malformed sponsor id %q", ErrInvalidInput, sponsorID)
	}

	agent := &catalog.AgentProfile{
		SponsorID:   sponsorID,
		Name:        name,
		Description: description,
	}

	err := s.store.CreateAgentGuarded(ctx, agent, func(tier string, currentCount int) error {
		decision := quota.Decide(quota.Tier(tier), currentCount)
		if !decision.Allow {
			return &FreeTierLimitError{SponsorID: sponsorID, Limit: decision.Limit}
		}
		return nil
	})
	if err != nil {
		var limitErr *FreeTierLimitError
		switch {
		case errors.As(err, &limitErr):
			metrics.QuotaDenialsTotal.Inc()
			metrics.RegistrationsTotal.WithLabelValues("limit_exceeded").Inc()
			lg := s.logger(ctx)
			lg.Info().Str("sponsor_id", sponsorID).Msg("Registration denied by quota")
			return nil, err
		case errors.Is(err, catalog.ErrNotFound):
			metrics.RegistrationsTotal.WithLabelValues("sponsor_not_found").Inc()
			return nil, fmt.Errorf("%w: %s", ErrSponsorNotFound, sponsorID)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			metrics.RegistrationsTotal.WithLabelValues("canceled").Inc()
			return nil, err
		default:
			metrics.RegistrationsTotal.WithLabelValues("storage_error").Inc()
			lg := s.logger(ctx)
			lg.Error().Err(err).Str("sponsor_id", sponsorID).Msg("Registration failed")
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	lg := s.logger(ctx)
	lg.Info().
		Str("sponsor_id", sponsorID).
		Str("agent_id", agent.ID).
		Str("name", name).
		Msg("Agent registered")
	return agent, nil
}

// UpdateAgent edits an existing agent profile's mutable fields. The owning
// sponsor cannot be changed.
func (s *Service) UpdateAgent(ctx context.Context, agent *catalog.AgentProfile) (*catalog.AgentProfile, error) {
	if agent == nil || agent.ID == "" {
		return nil, fmt.Errorf("%w: missing agent id", ErrInvalidInput)
	}
	agent.Name = strings.TrimSpace(agent.Name)
	if agent.Name == "" || utf8.RuneCountInString(agent.Name) > catalog.MaxAgentNameLen {
		return nil, fmt.Errorf("%w: agent name must be 1-%d characters", ErrInvalidInput, catalog.MaxAgentNameLen)
	}
	if utf8.RuneCountInString(agent.Description) > catalog.MaxDescriptionLen {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, catalog.MaxDescriptionLen)
	}
	bounds := []struct {
		name  string
		value string
		max   int
	}{
		{"avatar_url", agent.AvatarURL, catalog.MaxURLLen},
		{"contact_endpoint", agent.ContactEndpoint, catalog.MaxURLLen},
		{"wallet_address", agent.WalletAddress, catalog.MaxWalletLen},
		{"availability", agent.Availability, catalog.MaxAvailabilityLen},
	}
	for _, b := range bounds {
		if utf8.RuneCountInString(b.value) > b.max {
			return nil, fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidInput, b.name, b.max)
		}
	}

	if err := s.store.UpdateAgent(ctx, agent); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return agent, nil
}

// AddSkill tags an agent with a skill, creating the skill on first use.
func (s *Service) AddSkill(ctx context.Context, agentID, skillName string) (*catalog.Skill, error) {
	if _, err := s.store.GetAgent(ctx, agentID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	normalized, err := catalog.NormalizeSkillName(skillName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	skill, err := s.store.EnsureSkill(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := s.store.AddAgentSkill(ctx, agentID, skill.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return skill, nil
}

// RemoveSkill removes a skill tag from an agent. The skill row itself stays
// in the vocabulary.
func (s *Service) RemoveSkill(ctx context.Context, agentID, skillName string) error {
	skill, err := s.store.GetSkillByName(ctx, skillName)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := s.store.RemoveAgentSkill(ctx, agentID, skill.ID); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
