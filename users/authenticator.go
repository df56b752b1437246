package users

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
)

// CredentialVerifier matches an identifier and secret to a principal
type CredentialVerifier interface {
	Authenticate(ctx context.Context, identifier, secret string) (*User, error)
}

// Authenticator verifies credentials against a UserRepo with a Hasher.
// Unknown identifiers, wrong secrets and deactivated principals are all
// reported as ErrInvalidCredentials.
type Authenticator struct {
	repo      UserRepo
	hasher    Hasher
	decoyHash string
}

var _ CredentialVerifier = (*Authenticator)(nil)

func NewAuthenticator(repo UserRepo, hasher Hasher) (*Authenticator, error) {
	if repo == nil {
		return nil, errors.New("[NewAuthenticator] users repo is required")
	}
	if hasher == nil {
		return nil, errors.New("[NewAuthenticator] hasher is required")
	}

	// Compared against when the identifier is unknown so both paths cost one hash check
	decoy, err := hasher.Hash("decoy-secret-for-unknown-identifiers")
	if err != nil {
		return nil, fmt.Errorf("[NewAuthenticator] decoy hash: %w", err)
	}

	return &Authenticator{repo: repo, hasher: hasher, decoyHash: decoy}, nil
}

func (a *Authenticator) Authenticate(ctx context.Context, identifier, secret string) (*User, error) {
	user, err := a.repo.GetByEmail(ctx, NormalizeEmail(identifier))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			a.hasher.Verify(secret, a.decoyHash)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrapf(err, "[Authenticate] lookup principal")
	}

	if !a.hasher.Verify(secret, user.PasswordHash) || !user.Active() {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
