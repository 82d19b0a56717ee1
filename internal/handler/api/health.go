package api

import (
	"context"
	"net/http"
	"time"

	xhttp "TrendWatch/pkg/http"
	applogger "TrendWatch/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// HealthHandler serves /healthz.
type HealthHandler struct {
	db  Pinger
	log *applogger.Logger
}

func NewHealthHandler(db Pinger, l *applogger.Logger) *HealthHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &HealthHandler{db: db, log: l}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Health(ctx); err != nil {
		h.log.Warn("health check failed", applogger.Error(err))
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, map[string]string{"database": "down"})
	}
	return xhttp.SuccessResponse(c, map[string]string{"database": "up"})
}
