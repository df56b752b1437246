// Package pgrepo implements users.UserRepo on PostgreSQL.
package pgrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/samber/oops"
)

// poolIface is the subset of *pgxpool.Pool used here, so tests can substitute pgxmock.
type poolIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ users.UserRepo = (*Repo)(nil)

type Repo struct {
	pool poolIface
}

func New(pool poolIface) *Repo {
	return &Repo{pool: pool}
}

const insertSQL = `
INSERT INTO principals (id, email, password_hash, name, role, birth_date, gender, address, phone_number, created_at, updated_at, deactivated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (email) DO NOTHING`

func (r *Repo) Create(ctx context.Context, user *users.User) error {
	tag, err := r.pool.Exec(ctx, insertSQL,
		user.ID, user.Email, user.PasswordHash, user.Name, string(user.Role),
		user.BirthDate, user.Gender, user.Address, user.PhoneNumber,
		user.CreatedAt, user.UpdatedAt, user.DeactivatedAt)
	if err != nil {
		return oops.In("users").Code("PRINCIPAL_CREATE_FAILED").Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.In("users").Code("DUPLICATE_EMAIL").Wrap(apperrors.ErrDuplicateIdentity)
	}
	return nil
}

const updateSQL = `
UPDATE principals
SET email = $1, password_hash = $2, name = $3, role = $4, birth_date = $5, gender = $6, address = $7,
    phone_number = $8, updated_at = $9, deactivated_at = $10
WHERE id = $11`

func (r *Repo) Update(ctx context.Context, user *users.User) error {
	tag, err := r.pool.Exec(ctx, updateSQL,
		user.Email, user.PasswordHash, user.Name, string(user.Role),
		user.BirthDate, user.Gender, user.Address, user.PhoneNumber,
		user.UpdatedAt, user.DeactivatedAt, user.ID)
	if err != nil {
		return oops.In("users").Code("PRINCIPAL_UPDATE_FAILED").With("id", user.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.In("users").Code("PRINCIPAL_NOT_FOUND").With("id", user.ID).Wrap(apperrors.ErrNotFound)
	}
	return nil
}

const selectSQL = `
SELECT id, email, password_hash, name, role, birth_date, gender, address, phone_number, created_at, updated_at, deactivated_at
FROM principals`

func (r *Repo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.get(ctx, selectSQL+` WHERE email = $1`, email)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.get(ctx, selectSQL+` WHERE id = $1`, id)
}

func (r *Repo) get(ctx context.Context, query string, arg string) (*users.User, error) {
	var (
		user users.User
		role string
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &role,
		&user.BirthDate, &user.Gender, &user.Address, &user.PhoneNumber,
		&user.CreatedAt, &user.UpdatedAt, &user.DeactivatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.In("users").Code("PRINCIPAL_NOT_FOUND").Wrap(apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, oops.In("users").Code("PRINCIPAL_GET_FAILED").Wrap(err)
	}
	user.Role = users.Role(role)
	return &user, nil
}
