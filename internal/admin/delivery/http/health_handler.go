package http

import (
	"context"
	"net/http"
	"time"

	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	healthStatusOK       = "ok"
	healthStatusDegraded = "degraded"
)

// ReaderHealthChecker is the part of the article reader client checked by /healthz.
type ReaderHealthChecker interface {
	IsAvailable() bool
	HealthCheck(ctx context.Context) error
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Jina   string `json:"jina,omitempty"`
}

// HealthHandler reports service liveness and, when configured, article reader reachability.
type HealthHandler struct {
	reader  ReaderHealthChecker
	timeout time.Duration
	logger  *logger.Logger
}

// NewHealthHandler creates a new HealthHandler. reader may be nil.
func NewHealthHandler(reader ReaderHealthChecker, timeout time.Duration, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{reader: reader, timeout: timeout, logger: logger}
}

// RegisterRoutes registers /healthz outside the admin group.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

// Health always answers 200; a failing reader only degrades the status.
func (h *HealthHandler) Health(c echo.Context) error {
	resp := HealthResponse{Status: healthStatusOK}
	if h.reader == nil || !h.reader.IsAvailable() {
		return c.JSON(http.StatusOK, resp)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()
	if err := h.reader.HealthCheck(ctx); err != nil {
		h.logger.Warn("Jina reader health check failed", logger.ErrorField(err))
		resp.Status = healthStatusDegraded
		resp.Jina = err.Error()
		return c.JSON(http.StatusOK, resp)
	}
	resp.Jina = healthStatusOK
	return c.JSON(http.StatusOK, resp)
}
