package users_test

import (
	"context"
	"strings"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
	fakeuserrepo "github.com/jrsteele09/go-session-auth/users/repofake"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testEmail    = "john.doe@example.com"
	testPassword = "Passw0rd!"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", testPassword, ""},
		{"too short", "Pa0!", "between 8 and 50"},
		{"too long", "Aa0!" + string(make([]byte, 60)), "between 8 and 50"},
		{"multibyte over 72 bytes", "Aa1!" + strings.Repeat("é", 40), "72 bytes"},
		{"multibyte within 72 bytes", "Aa1!" + strings.Repeat("é", 30), ""},
		{"no upper", "passw0rd!", "uppercase"},
		{"no lower", "PASSW0RD!", "lowercase"},
		{"no number", "Password!", "number"},
		{"no special", "Passw0rdd", "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, testEmail, users.NormalizeEmail("  John.Doe@Example.COM "))
}

func TestProfile_OmitsDigest(t *testing.T) {
	u := &users.User{ID: "u-1", Email: testEmail, PasswordHash: "digest", Name: "John", Role: users.RoleUser}
	p := u.Profile()
	require.Equal(t, "u-1", p.ID)
	require.Equal(t, users.RoleUser, p.Role)
	require.True(t, u.Active())

	now := time.Now()
	u.DeactivatedAt = &now
	require.False(t, u.Active())
}

func TestBcryptHasher(t *testing.T) {
	h := users.NewBcryptHasher(bcrypt.MinCost)
	digest, err := h.Hash(testPassword)
	require.NoError(t, err)
	require.NotEqual(t, testPassword, digest)
	require.True(t, h.Verify(testPassword, digest))
	require.False(t, h.Verify("wrong", digest))
}

func setupAuthenticator(t *testing.T) (*users.Authenticator, *fakeuserrepo.FakeUserRepo, users.Hasher) {
	t.Helper()
	repo := fakeuserrepo.NewFakeUserRepo()
	hasher := users.NewBcryptHasher(bcrypt.MinCost)
	a, err := users.NewAuthenticator(repo, hasher)
	require.NoError(t, err)
	return a, repo, hasher
}

func createUser(t *testing.T, repo users.UserRepo, hasher users.Hasher, email string) *users.User {
	t.Helper()
	digest, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	u := &users.User{Email: email, PasswordHash: digest, Name: "John", Role: users.RoleUser}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestAuthenticate_Success(t *testing.T) {
	a, repo, hasher := setupAuthenticator(t)
	created := createUser(t, repo, hasher, testEmail)

	u, err := a.Authenticate(context.Background(), " John.Doe@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, created.ID, u.ID)
}

func TestAuthenticate_NoEnumeration(t *testing.T) {
	a, repo, hasher := setupAuthenticator(t)
	createUser(t, repo, hasher, testEmail)

	_, wrongSecret := a.Authenticate(context.Background(), testEmail, "Wr0ng!pass")
	_, unknown := a.Authenticate(context.Background(), "nobody@example.com", testPassword)

	require.ErrorIs(t, wrongSecret, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknown, apperrors.ErrInvalidCredentials)
	require.Equal(t, wrongSecret.Error(), unknown.Error())
}

func TestAuthenticate_Deactivated(t *testing.T) {
	a, repo, hasher := setupAuthenticator(t)
	u := createUser(t, repo, hasher, testEmail)

	now := time.Now()
	u.DeactivatedAt = &now
	require.NoError(t, repo.Update(context.Background(), u))

	_, err := a.Authenticate(context.Background(), testEmail, testPassword)
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestNewAuthenticator_RequiresDeps(t *testing.T) {
	_, err := users.NewAuthenticator(nil, users.NewBcryptHasher(bcrypt.MinCost))
	require.Error(t, err)

	_, err = users.NewAuthenticator(fakeuserrepo.NewFakeUserRepo(), nil)
	require.Error(t, err)
}

func TestFakeUserRepo_Duplicate(t *testing.T) {
	repo := fakeuserrepo.NewFakeUserRepo()
	hasher := users.NewBcryptHasher(bcrypt.MinCost)
	createUser(t, repo, hasher, testEmail)

	err := repo.Create(context.Background(), &users.User{Email: testEmail})
	require.ErrorIs(t, err, apperrors.ErrDuplicateIdentity)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
