package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var skillNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// NormalizeSkillName lowercases a skill name and converts spaces and
// underscores to hyphens. Returns an error when the result is not a valid
// kebab-case tag or exceeds the length bound.
func NormalizeSkillName(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)
	if normalized == "" || utf8.RuneCountInString(normalized) > MaxSkillNameLen || !skillNamePattern.MatchString(normalized) {
		return "", fmt.Errorf("%w: skill name %q", ErrInvalidInput, name)
	}
	return normalized, nil
}

// EnsureSkill returns the skill with the given name, creating it on first
// use. The name is normalized before lookup, so "Code Review" and
// "code-review" resolve to the same row.
func (s *Store) EnsureSkill(ctx context.Context, name string) (*Skill, error) {
	normalized, err := NormalizeSkillName(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO skills (name) VALUES (?)`, normalized); err != nil {
		return nil, fmt.Errorf("ensure skill: %w", err)
	}
	return s.GetSkillByName(ctx, normalized)
}

// GetSkillByName retrieves a skill by its normalized name.
func (s *Store) GetSkillByName(ctx context.Context, name string) (*Skill, error) {
	var sk Skill
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM skills WHERE name = ?`, name).Scan(&sk.ID, &sk.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("skill %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return &sk, nil
}

// CreateSkill inserts a skill with an already-normalized name. Returns
// ErrDuplicate when the name exists. EnsureSkill is the usual entry point;
// this exists for vocabulary management that must detect collisions.
func (s *Store) CreateSkill(ctx context.Context, name string) (*Skill, error) {
	normalized, err := NormalizeSkillName(name)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO skills (name) VALUES (?)`, normalized); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("skill %q: %w", normalized, ErrDuplicate)
		}
		return nil, fmt.Errorf("create skill: %w", err)
	}
	return s.GetSkillByName(ctx, normalized)
}

// ListSkills returns the full skill vocabulary in name order.
func (s *Store) ListSkills(ctx context.Context) ([]*Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM skills ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var skills []*Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Name); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, &sk)
	}
	return skills, rows.Err()
}

// DeleteSkill removes a skill from the vocabulary. Associations referencing
// it are removed by cascade; agents themselves are untouched.
func (s *Store) DeleteSkill(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("skill %d: %w", id, ErrNotFound)
	}
	return nil
}

// AddAgentSkill tags an agent with a skill. Idempotent: tagging an agent
// with a skill it already holds is a no-op.
func (s *Store) AddAgentSkill(ctx context.Context, agentID string, skillID int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO agent_skills (agent_profile_id, skill_id)
		VALUES (?, ?)`, agentID, skillID)
	if err != nil {
		return fmt.Errorf("add agent skill: %w", err)
	}
	return nil
}

// RemoveAgentSkill removes a skill tag from an agent.
func (s *Store) RemoveAgentSkill(ctx context.Context, agentID string, skillID int) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM agent_skills WHERE agent_profile_id = ? AND skill_id = ?`,
		agentID, skillID)
	if err != nil {
		return fmt.Errorf("remove agent skill: %w", err)
	}
	return nil
}

// ListAgentSkills returns the skills an agent is tagged with, in name order.
func (s *Store) ListAgentSkills(ctx context.Context, agentID string) ([]*Skill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sk.id, sk.name FROM skills sk
		JOIN agent_skills ask ON ask.skill_id = sk.id
		WHERE ask.agent_profile_id = ?
		ORDER BY sk.name`, agentID)
	if err != nil {
		return nil, fmt.Errorf("list agent skills: %w", err)
	}
	defer rows.Close()

	var skills []*Skill
	for rows.Next() {
		var sk Skill
		if err := rows.Scan(&sk.ID, &sk.Name); err != nil {
			return nil, fmt.Errorf("scan agent skill: %w", err)
		}
		skills = append(skills, &sk)
	}
	return skills, rows.Err()
}

// ListAgentsBySkill returns a sponsor's agents tagged with the given skill.
// An empty sponsorID searches across all sponsors.
func (s *Store) ListAgentsBySkill(ctx context.Context, sponsorID, skillName string) ([]*AgentProfile, error) {
	normalized, err := NormalizeSkillName(skillName)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + agentColumns + ` FROM agent_profiles
		WHERE id IN (
			SELECT ask.agent_profile_id FROM agent_skills ask
			JOIN skills sk ON sk.id = ask.skill_id
			WHERE sk.name = ?
		)`
	args := []any{normalized}
	if sponsorID != "" {
		query += ` AND sponsor_id = ?`
		args = append(args, sponsorID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list agents by skill: %w", err)
	}
	defer rows.Close()
	return scanAgents(rows)
}
