package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-session-auth/internal/errors"
	"github.com/jrsteele09/go-session-auth/users"
)

func (s *Server) initRoutes() {
	// Session lifecycle
	s.RegisterRouteFunc("POST "+RouteAuthSignup, s.SignupHandler())
	s.RegisterRouteFunc("POST "+RouteAuthLogin, s.LoginHandler())
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, s.RefreshHandler())
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.RequireAuth()))

	// Authenticated principal
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.ProfileHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("DELETE "+RouteAuthMe, ChainMiddleware(s.DeactivateHandler(), s.RequireAuth()))
	s.RegisterRouteHandler("POST "+RouteAuthPassword, ChainMiddleware(s.ChangePasswordHandler(), s.RequireAuth()))

	// Admin routes
	s.RegisterRouteHandler("POST "+RouteAdminPurgeSessions, ChainMiddleware(s.PurgeSessionsHandler(), s.RequireAuth(), s.RequireRole(users.RoleAdmin)))

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics)

	s.RegisterRouteFunc("/", s.NotFoundHandler())
}

// NotFoundHandler answers every unrouted request with the error envelope
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, apperrors.ErrNotFound)
	}
}
