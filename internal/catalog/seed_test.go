package catalog

import (
	"context"
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := store.Seed(ctx); err != nil {
			t.Fatalf("Seed run #%d: %v", i+1, err)
		}
	}

	skills, err := store.ListSkills(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != len(seedSkills) {
		t.Errorf("skill count after double seed = %d, want %d", len(skills), len(seedSkills))
	}

	sponsor, err := store.GetSponsorByEmail(ctx, seedSponsorEmail)
	if err != nil {
		t.Fatalf("seed sponsor missing: %v", err)
	}
	if !sponsor.EmailVerified {
		t.Error("seed sponsor should be email-verified")
	}
	if sponsor.PasswordHash == "" {
		t.Error("seed sponsor should carry a hashed credential")
	}

	sponsors, err := store.ListSponsors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sponsors) != 1 {
		t.Errorf("sponsor count after double seed = %d, want 1", len(sponsors))
	}

	agents, err := store.ListAgentsBySponsor(ctx, sponsor.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != len(seedAgents) {
		t.Errorf("agent count after double seed = %d, want %d", len(agents), len(seedAgents))
	}

	// Spot-check a tagged agent
	devops, err := store.ListAgentsBySkill(ctx, sponsor.ID, "devops")
	if err != nil {
		t.Fatal(err)
	}
	if len(devops) != 1 || devops[0].Name != "DevOps Helper" {
		t.Errorf("devops skill query returned %d agents", len(devops))
	}
}
