// Package pgstore implements sessions.Store on PostgreSQL.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/samber/oops"
)

// poolIface is the subset of *pgxpool.Pool used here, so tests can substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ sessions.Store = (*Store)(nil)

// Store keeps refresh session records in the refresh_sessions table
type Store struct {
	pool poolIface
}

func New(pool poolIface) *Store {
	return &Store{pool: pool}
}

const upsertSQL = `
INSERT INTO refresh_sessions (id, principal_id, token, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (principal_id) DO UPDATE SET
    id = EXCLUDED.id,
    token = EXCLUDED.token,
    expires_at = EXCLUDED.expires_at,
    created_at = EXCLUDED.created_at`

func (s *Store) Store(ctx context.Context, record sessions.Record) error {
	_, err := s.pool.Exec(ctx, upsertSQL,
		record.ID, record.PrincipalID, record.Token, record.ExpiresAt, record.CreatedAt)
	if err != nil {
		return oops.In("sessions").Code("SESSION_STORE_FAILED").With("principal_id", record.PrincipalID).Wrap(err)
	}
	return nil
}

const replaceSQL = `
UPDATE refresh_sessions
SET id = $1, token = $2, expires_at = $3, created_at = $4
WHERE principal_id = $5 AND token = $6`

func (s *Store) Replace(ctx context.Context, oldToken string, record sessions.Record) error {
	tag, err := s.pool.Exec(ctx, replaceSQL,
		record.ID, record.Token, record.ExpiresAt, record.CreatedAt, record.PrincipalID, oldToken)
	if err != nil {
		return oops.In("sessions").Code("SESSION_REPLACE_FAILED").With("principal_id", record.PrincipalID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.In("sessions").Code("SESSION_NOT_FOUND").With("principal_id", record.PrincipalID).Wrap(apperrors.ErrSessionNotFound)
	}
	return nil
}

const lookupSQL = `SELECT id, principal_id, token, expires_at, created_at FROM refresh_sessions WHERE token = $1`

func (s *Store) Lookup(ctx context.Context, token string) (*sessions.Record, error) {
	var record sessions.Record
	err := s.pool.QueryRow(ctx, lookupSQL, token).
		Scan(&record.ID, &record.PrincipalID, &record.Token, &record.ExpiresAt, &record.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.In("sessions").Code("SESSION_NOT_FOUND").Wrap(apperrors.ErrSessionNotFound)
	}
	if err != nil {
		return nil, oops.In("sessions").Code("SESSION_LOOKUP_FAILED").Wrap(err)
	}
	return &record, nil
}

func (s *Store) DeleteByToken(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM refresh_sessions WHERE token = $1`, token); err != nil {
		return oops.In("sessions").Code("SESSION_DELETE_FAILED").Wrap(err)
	}
	return nil
}

func (s *Store) DeleteAllForPrincipal(ctx context.Context, principalID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM refresh_sessions WHERE principal_id = $1`, principalID); err != nil {
		return oops.In("sessions").Code("SESSION_DELETE_FAILED").With("principal_id", principalID).Wrap(err)
	}
	return nil
}

func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM refresh_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, oops.In("sessions").Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	return tag.RowsAffected(), nil
}
