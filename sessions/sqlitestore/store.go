// Package sqlitestore implements sessions.Store on SQLite.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/samber/oops"
)

var _ sessions.Store = (*Store)(nil)

// Store keeps refresh session records in the refresh_sessions table.
// Timestamps are stored as unix milliseconds.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const upsertSQL = `
INSERT INTO refresh_sessions (id, principal_id, token, expires_at, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (principal_id) DO UPDATE SET
    id = excluded.id,
    token = excluded.token,
    expires_at = excluded.expires_at,
    created_at = excluded.created_at`

func (s *Store) Store(ctx context.Context, record sessions.Record) error {
	_, err := s.db.ExecContext(ctx, upsertSQL,
		record.ID, record.PrincipalID, record.Token,
		record.ExpiresAt.UnixMilli(), record.CreatedAt.UnixMilli())
	if err != nil {
		return oops.In("sessions").Code("SESSION_STORE_FAILED").With("principal_id", record.PrincipalID).Wrap(err)
	}
	return nil
}

const replaceSQL = `
UPDATE refresh_sessions
SET id = ?, token = ?, expires_at = ?, created_at = ?
WHERE principal_id = ? AND token = ?`

func (s *Store) Replace(ctx context.Context, oldToken string, record sessions.Record) error {
	result, err := s.db.ExecContext(ctx, replaceSQL,
		record.ID, record.Token, record.ExpiresAt.UnixMilli(), record.CreatedAt.UnixMilli(),
		record.PrincipalID, oldToken)
	if err != nil {
		return oops.In("sessions").Code("SESSION_REPLACE_FAILED").With("principal_id", record.PrincipalID).Wrap(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return oops.In("sessions").Code("SESSION_REPLACE_FAILED").With("principal_id", record.PrincipalID).Wrap(err)
	}
	if affected == 0 {
		return oops.In("sessions").Code("SESSION_NOT_FOUND").With("principal_id", record.PrincipalID).Wrap(apperrors.ErrSessionNotFound)
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, token string) (*sessions.Record, error) {
	var (
		record    sessions.Record
		expiresAt int64
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, principal_id, token, expires_at, created_at FROM refresh_sessions WHERE token = ?`,
		token,
	).Scan(&record.ID, &record.PrincipalID, &record.Token, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.In("sessions").Code("SESSION_NOT_FOUND").Wrap(apperrors.ErrSessionNotFound)
	}
	if err != nil {
		return nil, oops.In("sessions").Code("SESSION_LOOKUP_FAILED").Wrap(err)
	}

	record.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &record, nil
}

func (s *Store) DeleteByToken(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token = ?`, token); err != nil {
		return oops.In("sessions").Code("SESSION_DELETE_FAILED").Wrap(err)
	}
	return nil
}

func (s *Store) DeleteAllForPrincipal(ctx context.Context, principalID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE principal_id = ?`, principalID); err != nil {
		return oops.In("sessions").Code("SESSION_DELETE_FAILED").With("principal_id", principalID).Wrap(err)
	}
	return nil
}

func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE expires_at < ?`, now.UnixMilli())
	if err != nil {
		return 0, oops.In("sessions").Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	purged, err := result.RowsAffected()
	if err != nil {
		return 0, oops.In("sessions").Code("SESSION_PURGE_FAILED").Wrap(err)
	}
	return purged, nil
}
