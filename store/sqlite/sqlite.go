/*
Package sqlite provides a SQLite-backed ProfileStore.

PURPOSE:
  Persists saved loan profiles (raw form inputs) so a user can come back to
  a loan, tweak it and recalculate. Computed schedules are never stored.

KEY TABLES:
  profiles: one row per saved profile, inputs kept verbatim in inputs_json

INDEXES:
  - idx_profiles_name: ListProfiles ordering

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, which also
  keeps ":memory:" databases alive across calls (each new connection to
  ":memory:" would otherwise see an empty database).

WAL MODE:
  File databases are opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./loans.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - store/store.go: ProfileStore interface
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrsagar28/loan-calculator-app/store"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements store.ProfileStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.ProfileStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		solve_for TEXT NOT NULL DEFAULT '',
		inputs_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_name
		ON profiles(name, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// PROFILES
// =============================================================================

// CreateProfile inserts a profile under a new UUID.
func (s *Store) CreateProfile(ctx context.Context, p store.Profile) (*store.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Truncate(time.Second)
	p.ID = uuid.NewString()
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, solve_for, inputs_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.SolveFor, p.InputsJSON, p.Version,
		now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile replaces name and inputs and bumps the version.
func (s *Store) UpdateProfile(ctx context.Context, p store.Profile) (*store.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET
			name = ?,
			solve_for = ?,
			inputs_json = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ?
	`, p.Name, p.SolveFor, p.InputsJSON, time.Now().UTC().Format(time.RFC3339), p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, store.ErrProfileNotFound
	}
	return s.getProfile(ctx, p.ID)
}

// GetProfile retrieves a profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getProfile(ctx, id)
}

func (s *Store) getProfile(ctx context.Context, id string) (*store.Profile, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, solve_for, inputs_json, version, created_at, updated_at FROM profiles WHERE id = ?",
		id,
	)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfiles returns all profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context) ([]store.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, solve_for, inputs_json, version, created_at, updated_at FROM profiles ORDER BY name, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []store.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// DeleteProfile removes a profile.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrProfileNotFound
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(sc scanner) (store.Profile, error) {
	var p store.Profile
	var createdAt, updatedAt string
	if err := sc.Scan(&p.ID, &p.Name, &p.SolveFor, &p.InputsJSON, &p.Version, &createdAt, &updatedAt); err != nil {
		return store.Profile{}, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return p, nil
}
