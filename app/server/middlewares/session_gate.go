package middlewares

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"

	"school-site-console/app/server/constants"
	"school-site-console/app/server/jwt"
)

// Static assets bypass the gate entirely.
var staticAssetPath = regexp.MustCompile(`\.(?:svg|png|jpg|jpeg|gif|webp|ico|css|js)$`)

// SessionGate enforces "every path needs a valid session except the
// allow-list". Browser navigations without one are sent to the login page
// with the original path preserved; API callers get a bare 401. A signed-in
// user hitting the login page is pushed forward to the dashboard so they do
// not loop through login again.
func SessionGate(j *jwt.JWT) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path

			if reqPath == "/healthz" || reqPath == "/favicon.ico" ||
				strings.HasPrefix(reqPath, "/static/") || staticAssetPath.MatchString(reqPath) {
				return next(c)
			}

			// Current session, if any. An invalid token counts as absent.
			var user *jwt.User
			if cookie, err := c.Cookie(constants.AuthCookieName); err == nil && cookie.Value != "" {
				user, _ = j.ParseUser(cookie.Value)
			}

			if reqPath == constants.LoginPagePath {
				if user != nil {
					return c.Redirect(http.StatusFound, constants.DashboardPath)
				}
				return next(c)
			}

			if strings.HasPrefix(reqPath, constants.AuthAPIPathPrefix) {
				return next(c)
			}

			if user == nil {
				if isNavigation(c.Request()) {
					q := url.Values{}
					q.Set("next", reqPath)
					return c.Redirect(http.StatusFound, constants.LoginPagePath+"?"+q.Encode())
				}
				return c.NoContent(http.StatusUnauthorized)
			}

			c.Set("user", user)

			return next(c)
		}
	}
}

func isNavigation(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}
