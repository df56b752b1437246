// Package sqliterepo implements users.UserRepo on SQLite.
package sqliterepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/samber/oops"
)

var _ users.UserRepo = (*Repo)(nil)

// Repo keeps principals in the principals table, timestamps as unix milliseconds
type Repo struct {
	db *sql.DB
}

func New(db *sql.DB) *Repo {
	return &Repo{db: db}
}

const insertSQL = `
INSERT INTO principals (id, email, password_hash, name, role, birth_date, gender, address, phone_number, created_at, updated_at, deactivated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (email) DO NOTHING`

func (r *Repo) Create(ctx context.Context, user *users.User) error {
	result, err := r.db.ExecContext(ctx, insertSQL,
		user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role),
		user.BirthDate, user.Gender, user.Address, user.PhoneNumber,
		user.CreatedAt.UnixMilli(), user.UpdatedAt.UnixMilli(), nullableMillis(user.DeactivatedAt))
	if err != nil {
		return oops.In("users").Code("PRINCIPAL_CREATE_FAILED").Wrap(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return oops.In("users").Code("PRINCIPAL_CREATE_FAILED").Wrap(err)
	}
	if affected == 0 {
		return oops.In("users").Code("DUPLICATE_EMAIL").Wrap(apperrors.ErrDuplicateIdentity)
	}
	return nil
}

const updateSQL = `
UPDATE principals
SET email = ?, password_hash = ?, name = ?, role = ?, birth_date = ?, gender = ?, address = ?,
    phone_number = ?, updated_at = ?, deactivated_at = ?
WHERE id = ?`

func (r *Repo) Update(ctx context.Context, user *users.User) error {
	result, err := r.db.ExecContext(ctx, updateSQL,
		user.Email, user.PasswordHash, user.Name, string(user.Role),
		user.BirthDate, user.Gender, user.Address, user.PhoneNumber,
		user.UpdatedAt.UnixMilli(), nullableMillis(user.DeactivatedAt), user.ID)
	if err != nil {
		return oops.In("users").Code("PRINCIPAL_UPDATE_FAILED").With("id", user.ID).Wrap(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return oops.In("users").Code("PRINCIPAL_UPDATE_FAILED").With("id", user.ID).Wrap(err)
	}
	if affected == 0 {
		return oops.In("users").Code("PRINCIPAL_NOT_FOUND").With("id", user.ID).Wrap(apperrors.ErrNotFound)
	}
	return nil
}

const selectSQL = `
SELECT id, email, password_hash, name, role, birth_date, gender, address, phone_number, created_at, updated_at, deactivated_at
FROM principals`

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.get(ctx, selectSQL+` WHERE email = ?`, email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.get(ctx, selectSQL+` WHERE id = ?`, id)
}

func (r *Repo) get(ctx context.Context, query string, arg string) (*users.User, error) {
	var (
		user          users.User
		role          string
		createdAt     int64
		updatedAt     int64
		deactivatedAt sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &role,
		&user.BirthDate, &user.Gender, &user.Address, &user.PhoneNumber,
		&createdAt, &updatedAt, &deactivatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, oops.In("users").Code("PRINCIPAL_NOT_FOUND").Wrap(apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, oops.In("users").Code("PRINCIPAL_GET_FAILED").Wrap(err)
	}

	user.Role = users.Role(role)
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	user.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	if deactivatedAt.Valid {
		t := time.UnixMilli(deactivatedAt.Int64).UTC()
		user.DeactivatedAt = &t
	}
	return &user, nil
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
