package pgrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/jrsteele09/go-session-auth/users/pgrepo"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var principalCols = []string{
	"id", "email", "password_hash", "name", "role", "birth_date", "gender",
	"address", "phone_number", "created_at", "updated_at", "deactivated_at",
}

func setupMock(t *testing.T) (pgxmock.PgxPoolIface, *pgrepo.Repo) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, pgrepo.New(mock)
}

func testUser() *users.User {
	now := time.Unix(1_700_000_000, 0).UTC()
	return &users.User{
		ID:           "user-1",
		Email:        "john.doe@example.com",
		PasswordHash: "digest",
		Name:         "John Doe",
		Role:         users.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"inserted", 1, nil},
		{"email taken", 0, apperrors.ErrDuplicateIdentity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := setupMock(t)
			u := testUser()

			mock.ExpectExec(`(?s)INSERT INTO principals.*ON CONFLICT \(email\) DO NOTHING`).
				WithArgs(u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.BirthDate, u.Gender,
					u.Address, u.PhoneNumber, u.CreatedAt, u.UpdatedAt, u.DeactivatedAt).
				WillReturnResult(pgxmock.NewResult("INSERT", tt.affected))

			err := repo.Create(context.Background(), u)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetByEmail(t *testing.T) {
	mock, repo := setupMock(t)
	u := testUser()

	mock.ExpectQuery(`(?s)SELECT id, email.*FROM principals WHERE email = \$1`).
		WithArgs(u.Email).
		WillReturnRows(pgxmock.NewRows(principalCols).AddRow(
			u.ID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.BirthDate, u.Gender,
			u.Address, u.PhoneNumber, u.CreatedAt, u.UpdatedAt, u.DeactivatedAt))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestGetByID_NotFound(t *testing.T) {
	mock, repo := setupMock(t)

	mock.ExpectQuery(`FROM principals WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdate_NotFound(t *testing.T) {
	mock, repo := setupMock(t)
	u := testUser()

	mock.ExpectExec(`(?s)UPDATE principals.*WHERE id = \$11`).
		WithArgs(u.Email, u.PasswordHash, u.Name, string(u.Role), u.BirthDate, u.Gender,
			u.Address, u.PhoneNumber, u.UpdatedAt, u.DeactivatedAt, u.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.ErrorIs(t, repo.Update(context.Background(), u), apperrors.ErrNotFound)
}
