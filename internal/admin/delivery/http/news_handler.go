package http

import (
	"net/http"
	"strconv"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewsHandler handles HTTP requests for news maintenance.
type NewsHandler struct {
	newsService service.NewsService
	logger      *logger.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsService service.NewsService, logger *logger.Logger) *NewsHandler {
	return &NewsHandler{newsService: newsService, logger: logger}
}

// RegisterRoutes registers the news routes to the Echo group.
func (h *NewsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/news", h.GetNews)
	g.POST("/news", h.PostNews)
	g.DELETE("/news", h.DeleteNews)
	g.POST("/news/analyze", h.AnalyzeNews)
}

// GetNews godoc
// @Summary Query news
// @Description Ingestion reports grouped by batch, storage status, or an article fetched through the reader.
// @Tags news
// @Produce  json
// @Param   action  query    string  false  "reports | status | fetch-article"  default(reports)
// @Param   days    query    int     false  "Days covered by reports"  default(30)
// @Param   url     query    string  false  "URL for fetch-article"
// @Success 200 {object} dto.NewsReportsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /news [get]
func (h *NewsHandler) GetNews(c echo.Context) error {
	ctx := c.Request().Context()
	action := c.QueryParam("action")
	if action == "" {
		action = dto.NewsActionReports
	}

	var (
		resp interface{}
		err  error
	)
	switch action {
	case dto.NewsActionReports:
		days := 0
		if raw := c.QueryParam("days"); raw != "" {
			if days, err = strconv.Atoi(raw); err != nil || days <= 0 {
				return errorJSON(c, http.StatusBadRequest, "Invalid days parameter")
			}
		}
		resp, err = h.newsService.Reports(ctx, days)
	case dto.NewsActionStatus:
		resp, err = h.newsService.Status(ctx)
	case dto.NewsActionFetchArticle:
		resp, err = h.newsService.FetchArticle(ctx, c.QueryParam("url"))
	default:
		return unknownAction(c, action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to query news", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PostNews godoc
// @Summary Run a news action
// @Description Queue an ingestion run, add an article by hand, roll back a batch or update article scores.
// @Tags news
// @Accept  json
// @Produce  json
// @Param   request  body    dto.NewsActionRequest   true    "ingest | manual-ingest | rollback | update-metrics"
// @Success 200 {object} dto.ManualIngestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /news [post]
func (h *NewsHandler) PostNews(c echo.Context) error {
	var req dto.NewsActionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	var (
		resp interface{}
		err  error
	)
	switch req.Action {
	case dto.NewsActionIngest:
		resp, err = h.newsService.Ingest(ctx)
	case dto.NewsActionManualIngest:
		resp, err = h.newsService.ManualIngest(ctx, req.ManualIngestRequest)
	case dto.NewsActionRollback:
		resp, err = h.newsService.Rollback(ctx, req.BatchID)
	case dto.NewsActionUpdateMetrics:
		resp, err = h.newsService.UpdateMetrics(ctx, req.UpdateMetricsRequest)
	default:
		return unknownAction(c, req.Action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to run news action", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteNews godoc
// @Summary Delete news
// @Description Delete a single article by id or every article of an ingestion batch.
// @Tags news
// @Produce  json
// @Param   id     query    string  false  "Article ID"
// @Param   batch  query    string  false  "Ingestion batch"
// @Success 200 {object} dto.DeleteNewsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /news [delete]
func (h *NewsHandler) DeleteNews(c echo.Context) error {
	ctx := c.Request().Context()
	id, batch := c.QueryParam("id"), c.QueryParam("batch")

	var (
		resp *dto.DeleteNewsResponse
		err  error
	)
	switch {
	case id != "":
		resp, err = h.newsService.DeleteArticle(ctx, id)
	case batch != "":
		resp, err = h.newsService.DeleteBatch(ctx, batch)
	default:
		return errorJSON(c, http.StatusBadRequest, "Either id or batch parameter is required")
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to delete news", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// AnalyzeNews godoc
// @Summary Analyze an article
// @Description Extract metric mentions, factor impacts and tool mentions from a URL or raw text, optionally storing it as an article.
// @Tags news
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AnalyzeNewsRequest   true    "Article to analyze"
// @Success 200 {object} dto.AnalyzeNewsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /news/analyze [post]
func (h *NewsHandler) AnalyzeNews(c echo.Context) error {
	var req dto.AnalyzeNewsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	resp, err := h.newsService.Analyze(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, "Failed to analyze article", err)
	}
	return c.JSON(http.StatusOK, resp)
}
