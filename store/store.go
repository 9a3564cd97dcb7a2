/*
Package store defines persistence for saved loan profiles.

PURPOSE:
  A profile is a named set of raw loan-form inputs (the JSON the form layer
  submits). Only inputs are stored; schedules are always recomputed, so a
  profile never goes stale when the engine changes.

KEY INTERFACES:
  ProfileStore: create, read, update, delete and list profiles

VERSIONING:
  Version starts at 1 and increments on every update.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - store/memory: in-memory for tests and dev

SEE ALSO:
  - factory/loan.go: the inputs format
  - api/handlers.go: profile endpoints
*/
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

var (
	// ErrProfileNotFound is returned when no profile has the requested ID.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInvalidProfile is returned when a profile fails validation.
	ErrInvalidProfile = errors.New("invalid profile")
)

// Profile is a saved set of loan inputs.
type Profile struct {
	ID         string
	Name       string
	SolveFor   string // rate | emi | tenure, denormalized for listing
	InputsJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the fields every implementation requires.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if !json.Valid([]byte(p.InputsJSON)) {
		return fmt.Errorf("%w: inputs are not valid JSON", ErrInvalidProfile)
	}
	return nil
}

// ProfileStore persists profiles.
type ProfileStore interface {
	// CreateProfile stores a new profile under a fresh ID and returns it
	// with ID, Version and timestamps set.
	CreateProfile(ctx context.Context, p Profile) (*Profile, error)

	// UpdateProfile replaces the name and inputs of an existing profile.
	// Returns ErrProfileNotFound if the ID is unknown.
	UpdateProfile(ctx context.Context, p Profile) (*Profile, error)

	// GetProfile returns ErrProfileNotFound if the ID is unknown.
	GetProfile(ctx context.Context, id string) (*Profile, error)

	// ListProfiles returns all profiles ordered by name.
	ListProfiles(ctx context.Context) ([]Profile, error)

	// DeleteProfile returns ErrProfileNotFound if the ID is unknown.
	DeleteProfile(ctx context.Context, id string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
