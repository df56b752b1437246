package server

import (
	"errors"
	"net/http"

	"github.com/jrsteele09/go-session-auth/auth"
	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
)

// SignupHandler registers a principal and answers 201 with its profile
func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.SignupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		profile, err := s.auth.Signup(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusCreated, "Signup successful", profile)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		result, err := s.auth.Login(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusOK, "Login successful", result)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.RefreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		pair, err := s.auth.Refresh(r.Context(), req)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusOK, "Token refreshed", pair)
	}
}

// LogoutHandler revokes the sessions of the authenticated principal. A principal
// that no longer exists has nothing to revoke, so it still succeeds.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
		case err != nil:
			s.writeError(w, r, err)
			return
		default:
			if err := s.auth.Logout(r.Context(), user.ID); err != nil {
				s.writeError(w, r, err)
				return
			}
		}
		s.writeSuccess(w, http.StatusOK, "Logout successful", nil)
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusOK, "Profile retrieved", user.Profile())
	}
}

func (s *Server) DeactivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.auth.Deactivate(r.Context(), user.ID); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusOK, "Account deactivated", nil)
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.ChangeSecretRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		user, err := s.currentUser(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := s.auth.ChangeSecret(r.Context(), user.ID, req); err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusOK, "Password changed, please log in again", nil)
	}
}

// PurgeResult is the payload of the purge endpoint
type PurgeResult struct {
	Purged int64 `json:"purged"`
}

func (s *Server) PurgeSessionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purged, err := s.auth.PurgeExpired(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeSuccess(w, http.StatusOK, "Expired sessions purged", PurgeResult{Purged: purged})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeSuccess(w, http.StatusOK, "ok", map[string]string{
			"app": s.config.GetAppName(),
			"env": s.env,
		})
	}
}

// currentUser resolves the request principal to its stored record
func (s *Server) currentUser(r *http.Request) (*users.User, error) {
	principal, ok := PrincipalFrom(r.Context())
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	return s.auth.Principal(r.Context(), principal.Identifier)
}
