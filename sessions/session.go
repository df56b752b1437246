package sessions

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is the durable representation of one outstanding refresh credential.
// Records are immutable values, a lifecycle transition builds a new one.
type Record struct {
	ID          string    // ULID, unique per issued record
	PrincipalID string    // Owning principal, at most one record each
	Token       string    // Opaque refresh credential
	ExpiresAt   time.Time // Refresh credential expiry
	CreatedAt   time.Time // Issue time of this record
}

// NewRecord builds the record for a freshly issued refresh credential
func NewRecord(principalID, token string, expiresAt, now time.Time) Record {
	return Record{
		ID:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		PrincipalID: principalID,
		Token:       token,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
	}
}

// Expired reports expiry < now
func (r Record) Expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

// Store persists the single outstanding refresh credential per principal.
//
// Store upserts keyed by principal id so a new record atomically supersedes any
// prior one. Replace swaps the record only while its token still equals oldToken,
// and returns errors.ErrSessionNotFound when it does not. Lookup returns
// errors.ErrSessionNotFound for unknown tokens and does not filter expired records.
// The delete operations are idempotent.
type Store interface {
	Store(ctx context.Context, record Record) error
	Replace(ctx context.Context, oldToken string, record Record) error
	Lookup(ctx context.Context, token string) (*Record, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteAllForPrincipal(ctx context.Context, principalID string) error
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
