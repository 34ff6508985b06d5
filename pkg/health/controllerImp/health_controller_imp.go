package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cropdoc/pkg/health/controller"
)

var appStart = time.Now()

type HealthCtrl struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewHealthCtrl checks only what is configured; nil dependencies are skipped.
func NewHealthCtrl(db *gorm.DB, rdb *redis.Client) controller.HealthController {
	return &HealthCtrl{db: db, rdb: rdb}
}

type sub struct {
	OK       bool   `json:"ok"`
	Optional bool   `json:"optional,omitempty"`
	Err      string `json:"err,omitempty"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	checks := map[string]sub{}
	if h.db != nil {
		checks["database"] = pingDB(ctx, h.db)
	}
	if h.rdb != nil {
		// chat falls back to stateless replies without redis
		s := sub{OK: true, Optional: true}
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			s = sub{Optional: true, Err: "ping: " + err.Error()}
		}
		checks["redis"] = s
	}

	allOK, degraded := true, false
	for _, s := range checks {
		if s.OK {
			continue
		}
		if s.Optional {
			degraded = true
		} else {
			allOK = false
		}
	}
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": allOK, "degraded": degraded},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks":     checks,
		"time":       time.Now().Format(time.RFC3339),
	}
	return c.JSON(status, resp)
}

func pingDB(ctx context.Context, db *gorm.DB) sub {
	sqlDB, err := db.DB()
	if err != nil {
		return sub{Err: "db.DB(): " + err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return sub{Err: "ping: " + err.Error()}
	}
	return sub{OK: true}
}
