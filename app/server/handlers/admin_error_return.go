package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type ErrorMessage struct {
	Message string `json:"message"`
}

func (a *App) er(c echo.Context, statusCode int) error {
	return c.JSON(statusCode, &ErrorMessage{
		Message: http.StatusText(statusCode),
	})
}

// erMsg is for validation failures where the client shows the text directly.
func (a *App) erMsg(c echo.Context, statusCode int, msg string) error {
	return c.JSON(statusCode, &ErrorMessage{
		Message: msg,
	})
}
