package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// CreateSponsor inserts a new sponsor row. The ID and creation timestamp are
// assigned here if unset. Returns ErrDuplicate when the email is already
// registered (case-insensitive).
func (s *Store) CreateSponsor(ctx context.Context, sp *Sponsor) error {
	if sp == nil {
		return fmt.Errorf("sponsor is nil")
	}
	if err := validateSponsor(sp); err != nil {
		return err
	}
	if sp.ID == "" {
		sp.ID = uuid.NewString()
	}
	if sp.Tier == "" {
		sp.Tier = TierFree
	}
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sponsors (id, email, display_name, password_hash, email_verified, tier, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.Email, sp.DisplayName, nullableString(sp.PasswordHash),
		boolToInt(sp.EmailVerified), sp.Tier, sp.CreatedAt.Unix(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sponsor email %q: %w", sp.Email, ErrDuplicate)
		}
		return fmt.Errorf("create sponsor: %w", err)
	}
	return nil
}

func validateSponsor(sp *Sponsor) error {
	email := strings.TrimSpace(sp.Email)
	if email == "" || utf8.RuneCountInString(email) > MaxEmailLen || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: sponsor email %q", ErrInvalidInput, sp.Email)
	}
	sp.Email = email
	if sp.DisplayName == "" || utf8.RuneCountInString(sp.DisplayName) > MaxDisplayNameLen {
		return fmt.Errorf("%w: sponsor display name", ErrInvalidInput)
	}
	return nil
}

// GetSponsor retrieves a sponsor by ID. Returns ErrNotFound if absent.
func (s *Store) GetSponsor(ctx context.Context, id string) (*Sponsor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, email_verified, tier, created_at
		FROM sponsors WHERE id = ?`, id)
	return scanSponsor(row)
}

// GetSponsorByEmail retrieves a sponsor by email, case-insensitively.
func (s *Store) GetSponsorByEmail(ctx context.Context, email string) (*Sponsor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, email_verified, tier, created_at
		FROM sponsors WHERE email = ?`, strings.TrimSpace(email))
	return scanSponsor(row)
}

// ListSponsors returns all sponsors, newest first.
func (s *Store) ListSponsors(ctx context.Context) ([]*Sponsor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, display_name, password_hash, email_verified, tier, created_at
		FROM sponsors ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	defer rows.Close()

	var sponsors []*Sponsor
	for rows.Next() {
		sp, err := scanSponsor(rows)
		if err != nil {
			return nil, err
		}
		sponsors = append(sponsors, sp)
	}
	return sponsors, rows.Err()
}

// DeleteSponsor removes a sponsor. Owned agent profiles and their skill
// associations are removed by cascade; shared skill rows are untouched.
func (s *Store) DeleteSponsor(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("sponsor %q: %w", id, ErrNotFound)
	}
	return nil
}

func scanSponsor(sc scanner) (*Sponsor, error) {
	var sp Sponsor
	var passwordHash sql.NullString
	var verified int
	var createdAt int64

	err := sc.Scan(&sp.ID, &sp.Email, &sp.DisplayName, &passwordHash, &verified, &sp.Tier, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan sponsor: %w", err)
	}

	sp.PasswordHash = passwordHash.String
	sp.EmailVerified = verified != 0
	sp.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sp, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
