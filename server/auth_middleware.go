package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/go-session-auth/auth"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/token"
	"github.com/jrsteele09/go-session-auth/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyPrincipal stores the authenticated *Principal
	ContextKeyPrincipal ContextKey = "principal"
	// ContextKeyAuthFailure stores why a presented bearer credential was rejected
	ContextKeyAuthFailure ContextKey = "auth_failure"
)

// Authentication results, used as metric labels
const (
	authResultNone      = "none"
	authResultOK        = "ok"
	authResultMalformed = "malformed"
	authResultExpired   = "expired"
	authResultWrongType = "wrong_type"
)

// Principal is the identity an access credential speaks for, scoped to one request
type Principal struct {
	Identifier string
	Role       users.Role
}

// TokenDecoder verifies a credential and returns its claims
type TokenDecoder interface {
	Decode(raw string) (*token.Claims, error)
}

// RequestAuthenticator decodes the bearer access credential of each request.
// It never touches session storage, so revocation reaches access credentials
// only when they expire.
type RequestAuthenticator struct {
	decoder TokenDecoder
	metrics *auth.Metrics
}

func NewRequestAuthenticator(decoder TokenDecoder, metrics *auth.Metrics) (*RequestAuthenticator, error) {
	if decoder == nil {
		return nil, errors.New("[NewRequestAuthenticator] decoder is required")
	}
	return &RequestAuthenticator{decoder: decoder, metrics: metrics}, nil
}

// Authenticate returns the principal behind the request's bearer credential.
// A request without one yields a nil principal and a nil error.
func (a *RequestAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	raw, ok := bearerToken(r)
	if !ok {
		a.metrics.RecordAuthentication(authResultNone)
		return nil, nil
	}

	claims, err := a.decoder.Decode(raw)
	switch {
	case errors.Is(err, apperrors.ErrExpiredToken):
		a.metrics.RecordAuthentication(authResultExpired)
		return nil, apperrors.ErrExpiredToken
	case err != nil:
		a.metrics.RecordAuthentication(authResultMalformed)
		return nil, apperrors.ErrMalformedToken
	case claims.Type != token.TypeAccess:
		a.metrics.RecordAuthentication(authResultWrongType)
		return nil, apperrors.ErrWrongTokenType
	}

	a.metrics.RecordAuthentication(authResultOK)
	return &Principal{Identifier: claims.Identifier(), Role: users.Role(claims.Role)}, nil
}

// Middleware attaches the principal, or the failure, to the request context and
// always continues the chain. Rejecting unauthenticated access is left to RequireAuth.
func (a *RequestAuthenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.Authenticate(r)
		ctx := r.Context()
		switch {
		case err != nil:
			ctx = context.WithValue(ctx, ContextKeyAuthFailure, err)
		case principal != nil:
			ctx = context.WithValue(ctx, ContextKeyPrincipal, principal)
		}
		next(w, r.WithContext(ctx))
	}
}

// PrincipalFrom returns the authenticated principal of a request context
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(*Principal)
	return p, ok && p != nil
}

// AuthFailureFrom returns the recorded credential failure, or nil
func AuthFailureFrom(ctx context.Context) error {
	err, _ := ctx.Value(ContextKeyAuthFailure).(error)
	return err
}

// RequireAuth rejects requests without a principal. The response reports the
// recorded credential failure when there is one.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFrom(r.Context()); !ok {
				err := AuthFailureFrom(r.Context())
				if err == nil {
					err = apperrors.ErrUnauthorized
				}
				s.writeError(w, r, err)
				return
			}
			next(w, r)
		}
	}
}

// RequireRole rejects principals whose role is not one of roles.
// Should be chained after RequireAuth.
func (s *Server) RequireRole(roles ...users.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				s.writeError(w, r, apperrors.ErrUnauthorized)
				return
			}
			if !slices.Contains(roles, principal.Role) {
				s.writeError(w, r, apperrors.ErrForbidden)
				return
			}
			next(w, r)
		}
	}
}

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
