package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// seedSkills is the fixed skill vocabulary installed on every startup.
var seedSkills = []string{
	"csharp", "python", "code-review", "nlp", "sql",
	"data-analysis", "devops", "docker", "api-design",
}

const seedSponsorEmail = "dev@aibiz.local"

type seedAgent struct {
	name            string
	description     string
	contactEndpoint string
	walletAddress   string
	availability    string
	skills          []string
}

var seedAgents = []seedAgent{
	{
		name:            "DotNet Reviewer",
		description:     "Reviews .NET / C# code for correctness, style, and architecture.",
		contactEndpoint: "https://agent1.example.com/mcp",
		walletAddress:   "0x0000000000000000000000000000000000000001",
		availability:    "24/7",
		skills:          []string{"csharp", "code-review", "api-design"},
	},
	{
		name:            "DataOps Analyst",
		description:     "Analyses datasets, writes SQL queries, creates reports.",
		contactEndpoint: "https://agent2.example.com/mcp",
		availability:    "business-hours",
		skills:          []string{"python", "sql", "data-analysis"},
	},
	{
		name:            "DevOps Helper",
		description:     "Writes Dockerfiles, CI pipelines, and infra-as-code.",
		contactEndpoint: "https://agent3.example.com/mcp",
		availability:    "on-demand",
		skills:          []string{"devops", "docker"},
	},
}

// Seed idempotently populates the skill vocabulary and a dev sponsor with
// three sample agents. Safe to call on every startup: skills are inserted
// with OR IGNORE and the sponsor block is skipped once the dev email exists.
//
// Sample agents are written at the store layer, below the quota policy; the
// dev sponsor deliberately holds more agents than the free tier allows so
// limit-exceeded paths are exercisable out of the box.
func (s *Store) Seed(ctx context.Context) error {
	for _, name := range seedSkills {
		if _, err := s.EnsureSkill(ctx, name); err != nil {
			return fmt.Errorf("seed skill %q: %w", name, err)
		}
	}

	if _, err := s.GetSponsorByEmail(ctx, seedSponsorEmail); err == nil {
		log.Debug().Str("email", seedSponsorEmail).Msg("Seed sponsor already present, skipping")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("check seed sponsor: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("dev-only-password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed credential: %w", err)
	}

	sponsor := &Sponsor{
		Email:         seedSponsorEmail,
		DisplayName:   "Dev Sponsor",
		PasswordHash:  string(hash),
		EmailVerified: true,
	}
	if err := s.CreateSponsor(ctx, sponsor); err != nil {
		return fmt.Errorf("seed sponsor: %w", err)
	}

	for _, sa := range seedAgents {
		agent := &AgentProfile{
			SponsorID:       sponsor.ID,
			Name:            sa.name,
			Description:     sa.description,
			ContactEndpoint: sa.contactEndpoint,
			WalletAddress:   sa.walletAddress,
			Availability:    sa.availability,
		}
		if err := s.CreateAgent(ctx, agent); err != nil {
			return fmt.Errorf("seed agent %q: %w", sa.name, err)
		}
		for _, skillName := range sa.skills {
			skill, err := s.GetSkillByName(ctx, skillName)
			if err != nil {
				return fmt.Errorf("seed agent %q skill %q: %w", sa.name, skillName, err)
			}
			if err := s.AddAgentSkill(ctx, agent.ID, skill.ID); err != nil {
				return fmt.Errorf("seed agent %q skill %q: %w", sa.name, skillName, err)
			}
		}
	}

	log.Info().
		Int("skills", len(seedSkills)).
		Int("agents", len(seedAgents)).
		Str("sponsor", seedSponsorEmail).
		Msg("Seeded catalog")
	return nil
}
