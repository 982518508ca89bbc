package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const agentColumns = `id, sponsor_id, name, description, avatar_url,
	contact_endpoint, wallet_address, availability, created_at, updated_at`

// QuotaCheck decides whether an agent insert may proceed given the owning
// sponsor's tier and current agent count. Returning a non-nil error aborts
// the insert and is surfaced to the caller unwrapped.
type QuotaCheck func(tier string, currentCount int) error

// CreateAgentGuarded inserts an agent profile after evaluating check against
// the sponsor's tier and current agent count. The existence check, count
// read, quota decision, and insert all run in one write transaction on the
// store's serialized writer connection, so no two concurrent calls for the
// same sponsor can both observe a count below the limit and both insert.
//
// Returns ErrNotFound when the sponsor does not exist, the check's own error
// when it denies, and exactly one durable row is written on success.
func (s *Store) CreateAgentGuarded(ctx context.Context, agent *AgentProfile, check QuotaCheck) error {
	if agent == nil {
		return fmt.Errorf("agent is nil")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create agent tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tier string
	err = tx.QueryRowContext(ctx, `SELECT tier FROM sponsors WHERE id = ?`, agent.SponsorID).Scan(&tier)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("sponsor %q: %w", agent.SponsorID, ErrNotFound)
		}
		return fmt.Errorf("read sponsor tier: %w", err)
	}

	var count int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_profiles WHERE sponsor_id = ?`, agent.SponsorID).Scan(&count)
	if err != nil {
		return fmt.Errorf("count sponsor agents: %w", err)
	}

	if err := check(tier, count); err != nil {
		return err
	}

	now := time.Now().UTC()
	if agent.ID == "" {
		agent.ID = uuid.NewString()
	}
	agent.CreatedAt = now
	agent.UpdatedAt = now

	if err := insertAgent(ctx, tx, agent); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create agent: %w", err)
	}
	return nil
}

// CreateAgent inserts an agent profile without a quota check. Used by the
// seeder; API callers always go through the registration service.
func (s *Store) CreateAgent(ctx context.Context, agent *AgentProfile) error {
	if agent == nil {
		return fmt.Errorf("agent is nil")
	}
	now := time.Now().UTC()
	if agent.ID == "" {
		agent.ID = uuid.NewString()
	}
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	agent.UpdatedAt = now
	return insertAgent(ctx, s.db, agent)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAgent(ctx context.Context, db execer, agent *AgentProfile) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO agent_profiles (`+agentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		agent.ID, agent.SponsorID, agent.Name, agent.Description, agent.AvatarURL,
		agent.ContactEndpoint, agent.WalletAddress, agent.Availability,
		agent.CreatedAt.Unix(), agent.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent profile by ID. Returns ErrNotFound if absent.
func (s *Store) GetAgent(ctx context.Context, id string) (*AgentProfile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+agentColumns+` FROM agent_profiles WHERE id = ?`, id)
	return scanAgent(row)
}

// ListAgentsBySponsor returns all agent profiles owned by a sponsor,
// oldest first.
func (s *Store) ListAgentsBySponsor(ctx context.Context, sponsorID string) ([]*AgentProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+agentColumns+` FROM agent_profiles
		WHERE sponsor_id = ? ORDER BY created_at, id`, sponsorID)
	if err != nil {
		return nil, fmt.Errorf("list agents by sponsor: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}

// CountAgentsBySponsor returns the number of agent profiles a sponsor owns.
func (s *Store) CountAgentsBySponsor(ctx context.Context, sponsorID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM agent_profiles WHERE sponsor_id = ?`, sponsorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count agents by sponsor: %w", err)
	}
	return count, nil
}

// UpdateAgent modifies an existing agent profile's mutable fields and
// refreshes its updated timestamp. The owning sponsor is immutable.
func (s *Store) UpdateAgent(ctx context.Context, agent *AgentProfile) error {
	if agent == nil {
		return fmt.Errorf("agent is nil")
	}
	agent.UpdatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		UPDATE agent_profiles SET
			name = ?, description = ?, avatar_url = ?, contact_endpoint = ?,
			wallet_address = ?, availability = ?, updated_at = ?
		WHERE id = ?`,
		agent.Name, agent.Description, agent.AvatarURL, agent.ContactEndpoint,
		agent.WalletAddress, agent.Availability, agent.UpdatedAt.Unix(),
		agent.ID,
	)
	if err != nil {
		return fmt.Errorf("update agent: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("agent %q: %w", agent.ID, ErrNotFound)
	}
	return nil
}

// DeleteAgent removes an agent profile; its skill associations go with it.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agent_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete agent: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("agent %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanAgent(sc scanner) (*AgentProfile, error) {
	var a AgentProfile
	var createdAt, updatedAt int64

	err := sc.Scan(
		&a.ID, &a.SponsorID, &a.Name, &a.Description, &a.AvatarURL,
		&a.ContactEndpoint, &a.WalletAddress, &a.Availability,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan agent: %w", err)
	}

	a.CreatedAt = time.Unix(createdAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &a, nil
}

func scanAgents(rows *sql.Rows) ([]*AgentProfile, error) {
	var agents []*AgentProfile
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
