// Package storetest holds the behaviour every ProfileStore must share.
package storetest

import (
	"context"
	"testing"

	"github.com/hrsagar28/loan-calculator-app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homeLoanInputs = `{"solveFor":"emi","principal":"5000000","annualRatePercent":"8.5","tenureYears":"20"}`

// Run exercises a ProfileStore. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.ProfileStore) {
	ctx := context.Background()

	t.Run("CreateAssignsIdentity", func(t *testing.T) {
		// GIVEN: An empty store
		s := newStore(t)

		// WHEN: Creating a profile
		p, err := s.CreateProfile(ctx, store.Profile{Name: "Home loan", SolveFor: "emi", InputsJSON: homeLoanInputs})

		// THEN: It gets an ID, version 1 and timestamps
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, 1, p.Version)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)

		got, err := s.GetProfile(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("UpdateBumpsVersion", func(t *testing.T) {
		s := newStore(t)
		p, err := s.CreateProfile(ctx, store.Profile{Name: "Car", SolveFor: "emi", InputsJSON: homeLoanInputs})
		require.NoError(t, err)

		updated, err := s.UpdateProfile(ctx, store.Profile{
			ID:         p.ID,
			Name:       "Car (revised)",
			SolveFor:   "tenure",
			InputsJSON: `{"solveFor":"tenure"}`,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, "Car (revised)", updated.Name)
		assert.Equal(t, "tenure", updated.SolveFor)
		assert.Equal(t, `{"solveFor":"tenure"}`, updated.InputsJSON)
		assert.Equal(t, p.CreatedAt, updated.CreatedAt)
	})

	t.Run("UpdateUnknownProfile", func(t *testing.T) {
		s := newStore(t)
		_, err := s.UpdateProfile(ctx, store.Profile{ID: "missing", Name: "x", InputsJSON: "{}"})
		assert.ErrorIs(t, err, store.ErrProfileNotFound)
	})

	t.Run("GetUnknownProfile", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetProfile(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrProfileNotFound)
	})

	t.Run("ListOrderedByName", func(t *testing.T) {
		s := newStore(t)
		for _, name := range []string{"Personal", "Car", "Home"} {
			_, err := s.CreateProfile(ctx, store.Profile{Name: name, InputsJSON: "{}"})
			require.NoError(t, err)
		}

		list, err := s.ListProfiles(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Car", list[0].Name)
		assert.Equal(t, "Home", list[1].Name)
		assert.Equal(t, "Personal", list[2].Name)
	})

	t.Run("ListEmpty", func(t *testing.T) {
		s := newStore(t)
		list, err := s.ListProfiles(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		p, err := s.CreateProfile(ctx, store.Profile{Name: "Temp", InputsJSON: "{}"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteProfile(ctx, p.ID))

		_, err = s.GetProfile(ctx, p.ID)
		assert.ErrorIs(t, err, store.ErrProfileNotFound)
		assert.ErrorIs(t, s.DeleteProfile(ctx, p.ID), store.ErrProfileNotFound)
	})

	t.Run("RejectsInvalidProfiles", func(t *testing.T) {
		s := newStore(t)

		_, err := s.CreateProfile(ctx, store.Profile{Name: " ", InputsJSON: "{}"})
		assert.ErrorIs(t, err, store.ErrInvalidProfile)

		_, err = s.CreateProfile(ctx, store.Profile{Name: "Broken", InputsJSON: `{"solveFor":`})
		assert.ErrorIs(t, err, store.ErrInvalidProfile)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, newStore(t).Ping(ctx))
	})
}
