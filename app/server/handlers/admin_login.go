package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"school-site-console/app/server/constants"
	"school-site-console/app/server/jwt"
	"school-site-console/app/server/models"
)

type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type UserInfo struct {
	ID      uint   `json:"id"`
	LoginID string `json:"loginId"`
	Role    string `json:"role"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type MeResponse struct {
	Authenticated bool      `json:"authenticated"`
	User          *UserInfo `json:"user,omitempty"`
}

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	if req.LoginID == "" || req.Password == "" {
		return a.erMsg(c, http.StatusBadRequest, "login id and password are required")
	}

	var user models.User
	if err := a.db.WithContext(rctx).First(&user, "login_id = ?", req.LoginID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusUnauthorized)
		} else {
			a.l.Error("failed to find user", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	// Check password against the stored argon2id hash
	if match, _, err := argon2id.CheckHash(req.Password, user.Password); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	} else if !match {
		return a.er(c, http.StatusUnauthorized)
	}

	// Sign the session token
	expires := time.Now().Add(constants.AuthTokenDuration)
	token, err := a.jwt.SignToken(&jwt.User{
		ID:      user.ID,
		LoginID: user.LoginID,
		Role:    user.Role,
		Name:    user.Name,
		Email:   user.Email,
		Expires: expires.Unix(),
	})
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	a.setAuthCookie(c, token, expires)

	// Record the login time. The session is already issued, a failed write
	// here must not fail the login.
	now := time.Now()
	if err := a.db.WithContext(rctx).Model(&user).Update("last_login_at", &now).Error; err != nil {
		a.l.Warn("failed to update last login time", zap.Uint("id", user.ID), zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": &UserInfo{
			ID:      user.ID,
			LoginID: user.LoginID,
			Role:    user.Role,
			Name:    user.Name,
			Email:   user.Email,
		},
	})
}

func (a *App) AuthLogout(c echo.Context) error {
	// Logout is just cookie deletion, the token itself expires on its own
	c.SetCookie(&http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.isProd,
		MaxAge:   -1,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// AuthMe decodes the cookie without side effects.
func (a *App) AuthMe(c echo.Context) error {
	jwtUser, err, _ := a.authUser(c, false)
	if err != nil {
		return c.JSON(http.StatusOK, &MeResponse{Authenticated: false})
	}

	return c.JSON(http.StatusOK, &MeResponse{
		Authenticated: true,
		User: &UserInfo{
			ID:      jwtUser.ID,
			LoginID: jwtUser.LoginID,
			Role:    jwtUser.Role,
			Name:    jwtUser.Name,
			Email:   jwtUser.Email,
		},
	})
}

func (a *App) setAuthCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     constants.AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.isProd,
		Expires:  expires,
		MaxAge:   int(constants.AuthTokenDuration.Seconds()),
	})
}
