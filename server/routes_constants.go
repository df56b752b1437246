package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Session lifecycle
	RouteAuthSignup  = "/auth/signup"
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh"
	RouteAuthLogout  = "/auth/logout"

	// Auth Routes - Authenticated principal
	RouteAuthMe       = "/auth/me"
	RouteAuthPassword = "/auth/password"

	// Admin Routes
	RouteAdminPurgeSessions = "/admin/sessions/purge"

	// Operational Routes
	RouteHealth  = "/healthz"
	RouteMetrics = "/metrics"
)
