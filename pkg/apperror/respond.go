package apperror

import (
	"github.com/labstack/echo/v4"

	"cropdoc/pkg/logger"
)

// Respond writes err as {"error": message} with its mapped status. Errors
// outside the taxonomy show fallback and are logged with their detail.
func Respond(c echo.Context, err error, fallback string) error {
	status := Status(err)
	if status >= 500 {
		logger.FromContext(c.Request().Context()).Error("request failed", "error", err)
	}
	return c.JSON(status, map[string]string{"error": Message(err, fallback)})
}
