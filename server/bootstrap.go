package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/jrsteele09/go-session-auth/auth"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/rs/zerolog/log"
)

const DefaultAdminName = "System Administrator"

// InitialiseSystem creates the admin principal named by AUTH_ADMIN_EMAIL if it is
// not registered yet. Without AUTH_ADMIN_EMAIL there is nothing to do.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	adminEmail := s.config.GetAdminEmail()
	if adminEmail == "" {
		return nil
	}

	generatedPassword, err := s.bootstrapAdmin(ctx, adminEmail, s.config.GetAdminPassword())
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	if generatedPassword != "" {
		log.Warn().
			Str("email", users.NormalizeEmail(adminEmail)).
			Str("password", generatedPassword).
			Msg("admin created with a generated password, it will not be displayed again")
	}
	return nil
}

// bootstrapAdmin returns the generated password when it had to make one up, "" otherwise
func (s *Server) bootstrapAdmin(ctx context.Context, adminEmail, password string) (generatedPassword string, err error) {
	_, err = s.auth.Principal(ctx, adminEmail)
	switch {
	case err == nil:
		log.Info().Str("email", users.NormalizeEmail(adminEmail)).Msg("admin already exists")
		return "", nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return "", err
	}

	if password == "" {
		if generatedPassword, err = generatePassword(); err != nil {
			return "", err
		}
		password = generatedPassword
	}

	_, err = s.auth.Register(ctx, auth.SignupRequest{
		Email:           adminEmail,
		Password:        password,
		PasswordConfirm: password,
		Name:            DefaultAdminName,
	}, users.RoleAdmin)
	if errors.Is(err, apperrors.ErrDuplicateIdentity) {
		// Registered but deactivated
		return "", nil
	}
	if err != nil {
		return "", err
	}

	log.Info().Str("email", users.NormalizeEmail(adminEmail)).Msg("admin created")
	return generatedPassword, nil
}

// generatePassword returns a random secret that satisfies the strength rules
func generatePassword() (string, error) {
	passwordBytes := make([]byte, 18)
	if _, err := rand.Read(passwordBytes); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(passwordBytes) + "aZ7!", nil
}
