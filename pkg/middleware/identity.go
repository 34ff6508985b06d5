package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID = "X-User-Id"
	// DevUserID stands in for callers without an identity when auth is off.
	DevUserID = "U_DEV_DEFAULT"

	uidKey = "uid"
)

// Identity copies the caller's user id from X-User-Id into the context.
// With required=false a missing id becomes DevUserID, for local development.
// The session id a chat client sends is never used here.
func Identity(required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if len(uid) > 128 {
				uid = ""
			}
			if uid == "" && !required {
				uid = DevUserID
			}
			c.Set(uidKey, uid)
			return next(c)
		}
	}
}

// UserID returns the id stored by Identity, or "".
func UserID(c echo.Context) string {
	uid, _ := c.Get(uidKey).(string)
	return uid
}
