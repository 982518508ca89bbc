package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Sentinel errors returned by store operations.
var (
	// ErrNotFound indicates the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness invariant would be violated
	// (sponsor email or skill name).
	ErrDuplicate = errors.New("duplicate")
	// ErrInvalidInput indicates a field failed validation before any write.
	ErrInvalidInput = errors.New("invalid input")
)

// Store provides durable relational storage for sponsors, agent profiles,
// skills, and the agent↔skill association, backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database in dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}

	dbPath := filepath.Join(dir, "catalog.db")
	dsn := dbPath + "?" + url.Values{
		"_pragma": []string{
			"busy_timeout(30000)",
			"journal_mode(WAL)",
			"synchronous(NORMAL)",
			"foreign_keys(1)",
		},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}
	// Single writer connection: transactions queue at the pool instead of
	// failing with SQLITE_BUSY under concurrent registrations.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sponsors (
		id             TEXT PRIMARY KEY,
		email          TEXT NOT NULL COLLATE NOCASE,
		display_name   TEXT NOT NULL,
		password_hash  TEXT,
		email_verified INTEGER NOT NULL DEFAULT 0,
		tier           TEXT NOT NULL DEFAULT 'free',
		created_at     INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_sponsors_email ON sponsors(email);

	CREATE TABLE IF NOT EXISTS agent_profiles (
		id               TEXT PRIMARY KEY,
		sponsor_id       TEXT NOT NULL REFERENCES sponsors(id) ON DELETE CASCADE,
		name             TEXT NOT NULL,
		description      TEXT NOT NULL DEFAULT '',
		avatar_url       TEXT NOT NULL DEFAULT '',
		contact_endpoint TEXT NOT NULL DEFAULT '',
		wallet_address   TEXT NOT NULL DEFAULT '',
		availability     TEXT NOT NULL DEFAULT '',
		created_at       INTEGER NOT NULL,
		updated_at       INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agent_profiles_sponsor ON agent_profiles(sponsor_id);

	CREATE TABLE IF NOT EXISTS skills (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_skills_name ON skills(name);

	CREATE TABLE IF NOT EXISTS agent_skills (
		agent_profile_id TEXT    NOT NULL REFERENCES agent_profiles(id) ON DELETE CASCADE,
		skill_id         INTEGER NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
		PRIMARY KEY (agent_profile_id, skill_id)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init catalog schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity (used for readiness probes).
func (s *Store) Ping() error {
	return s.db.Ping()
}

// PingContext checks database connectivity honoring the context deadline.
func (s *Store) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// scanner is an interface satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
