package constants

import "time"

const (
	// AuthCookieName carries the session token, httpOnly.
	AuthCookieName = "admin_token"

	// AuthTokenDuration is the session lifetime. Logout only clears the
	// cookie, a replayed token stays valid until this runs out.
	AuthTokenDuration = 24 * time.Hour
)

// Gate paths.
const (
	LoginPagePath     = "/admin"             // the only page reachable without a session
	DashboardPath     = "/admin/leaderboard" // landing page after login
	AuthAPIPathPrefix = "/api/auth/"
)
