package http

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups the admin API handlers.
type Handlers struct {
	Rankings *RankingHandler
	Tools    *ToolHandler
	News     *NewsHandler
	Jobs     *JobHandler
}

// Register mounts every handler under /api/admin behind the admin auth middleware.
func (h Handlers) Register(e *echo.Echo, apiKey string) *echo.Group {
	g := e.Group("/api/admin", AdminAuth(apiKey))
	h.Rankings.RegisterRoutes(g)
	h.Tools.RegisterRoutes(g)
	h.News.RegisterRoutes(g)
	h.Jobs.RegisterRoutes(g)
	return g
}
