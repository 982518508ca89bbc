package catalog

import "time"

// Tier values stored on sponsor rows. The tier→limit mapping lives in the
// quota package; the store only records the classification.
const (
	TierFree = "free"
	TierPro  = "pro"
)

// Field length bounds enforced before rows are written.
const (
	MaxEmailLen        = 320
	MaxDisplayNameLen  = 120
	MaxAgentNameLen    = 200
	MaxDescriptionLen  = 2000
	MaxURLLen          = 500
	MaxWalletLen       = 100
	MaxAvailabilityLen = 100
	MaxSkillNameLen    = 100
)

// Sponsor is an account holder that owns agent profiles.
type Sponsor struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	Tier          string    `json:"tier"`
	CreatedAt     time.Time `json:"created_at"`
}

// AgentProfile is a registered service entity owned by exactly one sponsor.
type AgentProfile struct {
	ID              string    `json:"id"`
	SponsorID       string    `json:"sponsor_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	ContactEndpoint string    `json:"contact_endpoint,omitempty"`
	WalletAddress   string    `json:"wallet_address,omitempty"`
	Availability    string    `json:"availability,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Skill is a normalized capability tag shared across agents
// (e.g. "python", "code-review", "devops").
type Skill struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AgentSkill links an agent profile to a skill. Rows exist only as a side
// effect of skill tagging and are removed when either side is deleted.
type AgentSkill struct {
	AgentProfileID string `json:"agent_profile_id"`
	SkillID        int    `json:"skill_id"`
}
