package sqlitestore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-auth/internal/database"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/sessions/sqlitestore"
	"github.com/jrsteele09/go-session-auth/sessions/storetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *sqlitestore.Store {
	t.Helper()

	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.MigrateSQLite(db))
	return sqlitestore.New(db)
}

func TestStore_Contract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) sessions.Store {
		return newStore(t)
	})
}

func TestStore_ConcurrentReplaceSingleWinner(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, store.Store(ctx, sessions.NewRecord("principal-1", "old", now.Add(time.Hour), now)))

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		losers  atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := sessions.NewRecord("principal-1", fmt.Sprintf("new-%d", i), now.Add(time.Hour), now)
			err := store.Replace(ctx, "old", rec)
			switch {
			case err == nil:
				winners.Add(1)
			case errors.Is(err, apperrors.ErrSessionNotFound):
				losers.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, winners.Load())
	require.EqualValues(t, 7, losers.Load())
}
