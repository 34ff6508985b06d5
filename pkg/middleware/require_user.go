package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireUser rejects requests that carry no user id with 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if UserID(c) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Sign in to view your diagnosis history"})
			}
			return next(c)
		}
	}
}
