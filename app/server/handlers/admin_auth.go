package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"school-site-console/app/server/constants"
	"school-site-console/app/server/jwt"
)

// authUser re-checks the session cookie inside the route. The gate already
// filtered most requests, but routes stay correct on their own, the gate's
// allow-list is not the only line.
func (a *App) authUser(c echo.Context, requireWriterRole bool) (*jwt.User, error, int) {
	cookie, err := c.Cookie(constants.AuthCookieName)
	if err != nil || cookie.Value == "" {
		return nil, fmt.Errorf("missing auth cookie"), http.StatusUnauthorized
	}

	jwtUser, err := a.jwt.ParseUser(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err), http.StatusUnauthorized
	}

	if requireWriterRole && !jwtUser.CanWrite() {
		return nil, fmt.Errorf("requires writer role"), http.StatusForbidden
	}

	return jwtUser, nil, http.StatusOK
}
