package middleware

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"cropdoc/pkg/logger"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an id and logs start and finish.
// The request-scoped logger is reachable through logger.FromContext.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := req.URL.Path
			skip := path == "/health"

			id := req.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(HeaderRequestID, id)

			log := slog.Default().With(
				"request_id", id,
				"method", req.Method,
				"path", path,
				"client_ip", c.RealIP(),
			)
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), log)))
			if !skip {
				log.Info("request started")
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}
			if skip {
				return nil
			}

			latency := time.Since(start)
			status := c.Response().Status
			log = log.With("status", status, "latency", latency.String(), "latency_ms", latency.Milliseconds())
			switch {
			case status >= 500:
				log.Error("request completed with server error")
			case status >= 400:
				log.Warn("request completed with client error")
			default:
				log.Info("request completed successfully")
			}
			return nil
		}
	}
}
