package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/sessions"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/jrsteele09/go-session-auth/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour

	bearerTokenType = "Bearer"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.UserRepo // Repository for principals
	Sessions sessions.Store // Repository for refresh session records
}

// Service orchestrates signup, login, refresh and logout on top of the
// token codec, the session store and the identity collaborators.
type Service struct {
	repos      Repos
	codec      *token.Codec
	hasher     users.Hasher
	verifier   users.CredentialVerifier
	accessTTL  time.Duration
	refreshTTL time.Duration
	nowTime    func() time.Time
	metrics    *Metrics
	logger     zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing). Defaults to the codec clock.
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithTokenTTL sets the access and refresh credential lifetimes
func WithTokenTTL(access, refresh time.Duration) ServiceOption {
	return func(s *Service) {
		s.accessTTL = access
		s.refreshTTL = refresh
	}
}

func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithHasher(hasher users.Hasher) ServiceOption {
	return func(s *Service) {
		s.hasher = hasher
	}
}

// WithAuthenticator replaces the credential verifier built from the users repo and hasher
func WithAuthenticator(verifier users.CredentialVerifier) ServiceOption {
	return func(s *Service) {
		s.verifier = verifier
	}
}

// NewService initializes a Service with required dependencies.
func NewService(repos Repos, codec *token.Codec, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions store is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] codec is required")
	}

	s := &Service{
		repos:      repos,
		codec:      codec,
		hasher:     users.NewBcryptHasher(0),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		nowTime:    codec.Now,
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.accessTTL < time.Second || s.refreshTTL < time.Second {
		return nil, errors.New("[NewService] token lifetimes must be at least one second")
	}

	if s.verifier == nil {
		verifier, err := users.NewAuthenticator(repos.Users, s.hasher)
		if err != nil {
			return nil, apperrors.Wrapf(err, "[NewService] authenticator")
		}
		s.verifier = verifier
	}
	return s, nil
}

// Signup registers a principal with the USER role and returns its public profile.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*users.Profile, error) {
	return s.Register(ctx, req, users.RoleUser)
}

// Register is Signup with an explicit role
func (s *Service) Register(ctx context.Context, req SignupRequest, role users.Role) (*users.Profile, error) {
	profile, err := s.register(ctx, req, role)
	s.metrics.RecordOperation("signup", err)
	return profile, err
}

func (s *Service) register(ctx context.Context, req SignupRequest, role users.Role) (*users.Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Password != req.PasswordConfirm {
		return nil, apperrors.ErrSecretMismatch
	}
	if !role.Valid() {
		return nil, apperrors.WithDetails(apperrors.ErrValidation, map[string]string{"role": "unknown role"})
	}

	email := users.NormalizeEmail(req.Email)
	_, err := s.repos.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.ErrDuplicateIdentity
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, apperrors.Wrapf(err, "[Signup] lookup principal")
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Signup] hash secret")
	}

	now := s.nowTime().UTC()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: digest,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		BirthDate:    req.BirthDate,
		Gender:       strings.ToUpper(req.Gender),
		Address:      strings.TrimSpace(req.Address),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// A concurrent signup for the same email loses here with ErrDuplicateIdentity
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrapf(err, "[Signup] create principal")
	}

	s.logger.Info().Str("principal_id", user.ID).Str("role", string(role)).Msg("principal registered")
	return user.Profile(), nil
}

// Login verifies credentials and starts a new session. The stored session
// supersedes any session from an earlier login of the same principal.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	result, err := s.login(ctx, req)
	s.metrics.RecordOperation("login", err)
	return result, err
}

func (s *Service) login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.verifier.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Login] authenticate")
	}

	pair, err := s.issue(ctx, user, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("principal_id", user.ID).Msg("login")
	return &LoginResult{
		TokenPair: *pair,
		Profile:   user.Profile(),
		LoginAt:   s.nowTime().UTC(),
	}, nil
}

// Refresh exchanges a refresh credential for a new pair. Rotation is single use,
// once it succeeds the presented credential is never accepted again.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	pair, err := s.refresh(ctx, req)
	s.metrics.RecordOperation("refresh", err)
	return pair, err
}

func (s *Service) refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	raw := strings.TrimSpace(req.RefreshToken)

	claims, err := s.codec.Decode(raw)
	if err != nil {
		if errors.Is(err, apperrors.ErrExpiredToken) && claims != nil && claims.Type == token.TypeRefresh {
			return nil, s.expireSession(ctx, raw)
		}
		return nil, err
	}
	if claims.Type != token.TypeRefresh {
		return nil, apperrors.ErrWrongTokenType
	}

	record, err := s.repos.Sessions.Lookup(ctx, raw)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Refresh] lookup session")
	}
	if record.Expired(s.nowTime()) {
		s.dropSession(ctx, raw)
		return nil, apperrors.ErrSessionExpired
	}

	user, err := s.repos.Users.GetByID(ctx, record.PrincipalID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.Wrapf(err, "[Refresh] load principal")
	}
	if err != nil || !user.Active() || user.Email != claims.Identifier() {
		if err := s.repos.Sessions.DeleteAllForPrincipal(ctx, record.PrincipalID); err != nil {
			return nil, apperrors.Wrapf(err, "[Refresh] revoke sessions")
		}
		return nil, apperrors.ErrSessionNotFound
	}

	// Replace loses to a concurrent rotation of the same token with ErrSessionNotFound
	return s.issue(ctx, user, raw)
}

// expireSession answers an expired refresh credential. A record that is already
// gone (logged out, rotated) reports ErrSessionNotFound, a live one is deleted.
func (s *Service) expireSession(ctx context.Context, raw string) error {
	if _, err := s.repos.Sessions.Lookup(ctx, raw); err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return apperrors.ErrSessionNotFound
		}
		return apperrors.Wrapf(err, "[Refresh] lookup session")
	}
	s.dropSession(ctx, raw)
	return apperrors.ErrSessionExpired
}

// Logout revokes every session of the principal. It is idempotent.
func (s *Service) Logout(ctx context.Context, principalID string) error {
	err := s.repos.Sessions.DeleteAllForPrincipal(ctx, principalID)
	if err != nil {
		err = apperrors.Wrapf(err, "[Logout] revoke sessions")
	} else {
		s.logger.Info().Str("principal_id", principalID).Msg("logout")
	}
	s.metrics.RecordOperation("logout", err)
	return err
}

// ChangeSecret re-verifies the current secret, stores the new digest and revokes all sessions
func (s *Service) ChangeSecret(ctx context.Context, principalID string, req ChangeSecretRequest) error {
	err := s.changeSecret(ctx, principalID, req)
	s.metrics.RecordOperation("change_secret", err)
	return err
}

func (s *Service) changeSecret(ctx context.Context, principalID string, req ChangeSecretRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.NewPassword != req.NewPasswordConfirm {
		return apperrors.ErrSecretMismatch
	}

	user, err := s.repos.Users.GetByID(ctx, principalID)
	if err != nil {
		return apperrors.Wrapf(err, "[ChangeSecret] load principal")
	}
	if !user.Active() || !s.hasher.Verify(req.CurrentPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	digest, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperrors.Wrapf(err, "[ChangeSecret] hash secret")
	}
	user.PasswordHash = digest
	user.UpdatedAt = s.nowTime().UTC()
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return apperrors.Wrapf(err, "[ChangeSecret] update principal")
	}

	if err := s.repos.Sessions.DeleteAllForPrincipal(ctx, principalID); err != nil {
		return apperrors.Wrapf(err, "[ChangeSecret] revoke sessions")
	}
	s.logger.Info().Str("principal_id", principalID).Msg("secret changed")
	return nil
}

// Deactivate soft-deletes the principal and revokes all sessions
func (s *Service) Deactivate(ctx context.Context, principalID string) error {
	err := s.deactivate(ctx, principalID)
	s.metrics.RecordOperation("deactivate", err)
	return err
}

func (s *Service) deactivate(ctx context.Context, principalID string) error {
	user, err := s.repos.Users.GetByID(ctx, principalID)
	if err != nil {
		return apperrors.Wrapf(err, "[Deactivate] load principal")
	}

	if user.Active() {
		now := s.nowTime().UTC()
		user.DeactivatedAt = &now
		user.UpdatedAt = now
		if err := s.repos.Users.Update(ctx, user); err != nil {
			return apperrors.Wrapf(err, "[Deactivate] update principal")
		}
	}

	if err := s.repos.Sessions.DeleteAllForPrincipal(ctx, principalID); err != nil {
		return apperrors.Wrapf(err, "[Deactivate] revoke sessions")
	}
	s.logger.Info().Str("principal_id", principalID).Msg("principal deactivated")
	return nil
}

// Principal resolves a credential identifier to an active principal
func (s *Service) Principal(ctx context.Context, identifier string) (*users.User, error) {
	user, err := s.repos.Users.GetByEmail(ctx, users.NormalizeEmail(identifier))
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Principal] lookup")
	}
	if !user.Active() {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

// Profile returns the public view of the principal behind identifier
func (s *Service) Profile(ctx context.Context, identifier string) (*users.Profile, error) {
	user, err := s.Principal(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

// PurgeExpired removes expired session records using the service clock
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.repos.Sessions.PurgeExpired(ctx, s.nowTime())
	if err != nil {
		err = apperrors.Wrapf(err, "[PurgeExpired] purge")
	}
	s.metrics.RecordOperation("purge", err)
	return purged, err
}

// issue mints a new pair for user and persists its refresh record. With an
// oldToken the record is swapped only if oldToken is still the current one.
func (s *Service) issue(ctx context.Context, user *users.User, oldToken string) (*TokenPair, error) {
	access, _, err := s.codec.Mint(user.Email, string(user.Role), token.TypeAccess, s.accessTTL)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[issue] mint access token")
	}
	refresh, refreshClaims, err := s.codec.Mint(user.Email, string(user.Role), token.TypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[issue] mint refresh token")
	}

	record := sessions.NewRecord(user.ID, refresh, refreshClaims.ExpiresAt.Time, s.nowTime())
	if oldToken == "" {
		err = s.repos.Sessions.Store(ctx, record)
	} else {
		err = s.repos.Sessions.Replace(ctx, oldToken, record)
	}
	if err != nil {
		return nil, apperrors.Wrapf(err, "[issue] store session")
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    bearerTokenType,
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

// dropSession removes the record behind an expired refresh credential.
// Failures are logged, the sweeper removes the record later.
func (s *Service) dropSession(ctx context.Context, raw string) {
	if err := s.repos.Sessions.DeleteByToken(ctx, raw); err != nil {
		s.logger.Warn().Err(err).Msg("delete expired session")
	}
}
