// Package storetest holds the behavioural contract every sessions.Store must satisfy.
package storetest

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/stretchr/testify/require"
)

var t0 = time.Unix(1_700_000_000, 0).UTC()

// RunContract runs the Store contract against fresh stores built by newStore
func RunContract(t *testing.T, newStore func(t *testing.T) sessions.Store) {
	t.Helper()

	tests := []struct {
		name string
		run  func(t *testing.T, store sessions.Store)
	}{
		{"store then lookup", storeThenLookup},
		{"lookup unknown token", lookupUnknown},
		{"store supersedes prior record", storeSupersedes},
		{"replace with current token", replaceCurrent},
		{"replace with stale token", replaceStale},
		{"replace without record", replaceMissing},
		{"delete by token", deleteByToken},
		{"delete all for principal", deleteAllForPrincipal},
		{"purge expired", purgeExpired},
		{"lookup does not filter expired", lookupExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, newStore(t))
		})
	}
}

func requireSameRecord(t *testing.T, want sessions.Record, got *sessions.Record) {
	t.Helper()
	require.NotNil(t, got)
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.PrincipalID, got.PrincipalID)
	require.Equal(t, want.Token, got.Token)
	require.Equal(t, want.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	require.Equal(t, want.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func storeThenLookup(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	rec := sessions.NewRecord("principal-1", "token-1", t0.Add(time.Hour), t0)
	require.NoError(t, store.Store(ctx, rec))

	got, err := store.Lookup(ctx, "token-1")
	require.NoError(t, err)
	requireSameRecord(t, rec, got)
}

func lookupUnknown(t *testing.T, store sessions.Store) {
	_, err := store.Lookup(context.Background(), "never-issued")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func storeSupersedes(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	first := sessions.NewRecord("principal-1", "token-1", t0.Add(time.Hour), t0)
	second := sessions.NewRecord("principal-1", "token-2", t0.Add(2*time.Hour), t0.Add(time.Minute))
	other := sessions.NewRecord("principal-2", "token-3", t0.Add(time.Hour), t0)

	require.NoError(t, store.Store(ctx, first))
	require.NoError(t, store.Store(ctx, other))
	require.NoError(t, store.Store(ctx, second))

	_, err := store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	got, err := store.Lookup(ctx, "token-2")
	require.NoError(t, err)
	requireSameRecord(t, second, got)

	got, err = store.Lookup(ctx, "token-3")
	require.NoError(t, err)
	requireSameRecord(t, other, got)
}

func replaceCurrent(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-1", "token-1", t0.Add(time.Hour), t0)))

	rotated := sessions.NewRecord("principal-1", "token-2", t0.Add(2*time.Hour), t0.Add(time.Minute))
	require.NoError(t, store.Replace(ctx, "token-1", rotated))

	_, err := store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	got, err := store.Lookup(ctx, "token-2")
	require.NoError(t, err)
	requireSameRecord(t, rotated, got)
}

func replaceStale(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	current := sessions.NewRecord("principal-1", "token-2", t0.Add(time.Hour), t0)
	require.NoError(t, store.Store(ctx, current))

	err := store.Replace(ctx, "token-1", sessions.NewRecord("principal-1", "token-3", t0.Add(time.Hour), t0))
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	got, err := store.Lookup(ctx, "token-2")
	require.NoError(t, err)
	requireSameRecord(t, current, got)

	_, err = store.Lookup(ctx, "token-3")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func replaceMissing(t *testing.T, store sessions.Store) {
	err := store.Replace(context.Background(), "token-1", sessions.NewRecord("principal-1", "token-2", t0.Add(time.Hour), t0))
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func deleteByToken(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-1", "token-1", t0.Add(time.Hour), t0)))

	require.NoError(t, store.DeleteByToken(ctx, "token-1"))
	require.NoError(t, store.DeleteByToken(ctx, "token-1"))

	_, err := store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func deleteAllForPrincipal(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-1", "token-1", t0.Add(time.Hour), t0)))
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-2", "token-2", t0.Add(time.Hour), t0)))

	require.NoError(t, store.DeleteAllForPrincipal(ctx, "principal-1"))
	require.NoError(t, store.DeleteAllForPrincipal(ctx, "principal-1"))
	require.NoError(t, store.DeleteAllForPrincipal(ctx, "never-logged-in"))

	_, err := store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)

	_, err = store.Lookup(ctx, "token-2")
	require.NoError(t, err)
}

func purgeExpired(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-1", "token-1", t0.Add(time.Minute), t0)))
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-2", "token-2", t0.Add(time.Hour), t0)))
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-3", "token-3", t0.Add(10*time.Minute), t0)))

	purged, err := store.PurgeExpired(ctx, t0.Add(30*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, purged)

	_, err = store.Lookup(ctx, "token-1")
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	_, err = store.Lookup(ctx, "token-2")
	require.NoError(t, err)

	purged, err = store.PurgeExpired(ctx, t0.Add(30*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 0, purged)
}

func lookupExpired(t *testing.T, store sessions.Store) {
	ctx := context.Background()
	rec := sessions.NewRecord("principal-1", "token-1", t0.Add(-time.Minute), t0.Add(-time.Hour))
	require.NoError(t, store.Store(ctx, rec))

	got, err := store.Lookup(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, got.Expired(t0))
}
