// Package memory provides an in-memory ProfileStore.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hrsagar28/loan-calculator-app/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu       sync.RWMutex
	profiles map[string]store.Profile
	now      func() time.Time
}

func New() *Store {
	return &Store{
		profiles: make(map[string]store.Profile),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (m *Store) CreateProfile(_ context.Context, p store.Profile) (*store.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	p.ID = uuid.NewString()
	p.Version = 1
	p.CreatedAt = now
	p.UpdatedAt = now
	m.profiles[p.ID] = p
	return &p, nil
}

func (m *Store) UpdateProfile(_ context.Context, p store.Profile) (*store.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.profiles[p.ID]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	existing.Name = p.Name
	existing.SolveFor = p.SolveFor
	existing.InputsJSON = p.InputsJSON
	existing.Version++
	existing.UpdatedAt = m.now()
	m.profiles[p.ID] = existing
	return &existing, nil
}

func (m *Store) GetProfile(_ context.Context, id string) (*store.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrProfileNotFound
	}
	return &p, nil
}

func (m *Store) ListProfiles(_ context.Context) ([]store.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]store.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Store) DeleteProfile(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[id]; !ok {
		return store.ErrProfileNotFound
	}
	delete(m.profiles, id)
	return nil
}

func (m *Store) Ping(context.Context) error { return nil }
