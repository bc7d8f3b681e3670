package http

import (
	"net/http"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RankingHandler handles HTTP requests for ranking periods.
type RankingHandler struct {
	rankingService service.RankingAdminService
	jobService     service.JobService
	logger         *logger.Logger
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(rankingService service.RankingAdminService, jobService service.JobService, logger *logger.Logger) *RankingHandler {
	return &RankingHandler{rankingService: rankingService, jobService: jobService, logger: logger}
}

// RegisterRoutes registers the ranking routes to the Echo group.
func (h *RankingHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/build-rankings-json", h.BuildRankings)
	g.POST("/preview-rankings-json", h.PreviewRankings)
	g.GET("/rankings", h.GetRankings)
	g.POST("/rankings", h.PostRankings)
	g.DELETE("/rankings", h.DeleteRankings)
}

// BuildRankings godoc
// @Summary Build rankings for a period
// @Description Compute, validate and store the rankings of a period. The period does not become current unless set_current is true.
// @Tags rankings
// @Accept  json
// @Produce  json
// @Param   request  body    dto.BuildRankingsRequest   true    "Build request"
// @Success 200 {object} dto.BuildRankingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /build-rankings-json [post]
func (h *RankingHandler) BuildRankings(c echo.Context) error {
	var req dto.BuildRankingsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	resp, err := h.rankingService.Build(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to build rankings", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PreviewRankings godoc
// @Summary Preview rankings for a period
// @Description Compute the rankings of a period and compare them with another period without storing anything.
// @Tags rankings
// @Accept  json
// @Produce  json
// @Param   request  body    dto.PreviewRankingsRequest   true    "Preview request"
// @Success 200 {object} dto.PreviewRankingsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /preview-rankings-json [post]
func (h *RankingHandler) PreviewRankings(c echo.Context) error {
	var req dto.PreviewRankingsRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	resp, err := h.rankingService.Preview(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to preview rankings", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetRankings godoc
// @Summary Query ranking periods
// @Description List periods, check stored data, return all periods or the current one, or report the progress of the scheduled ranking build.
// @Tags rankings
// @Produce  json
// @Param   action  query    string  false  "periods | check-data | all | current | progress"  default(periods)
// @Param   period  query    string  false  "Period for check-data"
// @Success 200 {object} dto.PeriodsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /rankings [get]
func (h *RankingHandler) GetRankings(c echo.Context) error {
	ctx := c.Request().Context()
	action := c.QueryParam("action")
	if action == "" {
		action = dto.RankingActionPeriods
	}

	var (
		resp interface{}
		err  error
	)
	switch action {
	case dto.RankingActionPeriods:
		resp, err = h.rankingService.ListPeriods(ctx)
	case dto.RankingActionCheckData:
		resp, err = h.rankingService.CheckData(ctx, c.QueryParam("period"))
	case dto.RankingActionAll:
		resp, err = h.rankingService.All(ctx)
	case dto.RankingActionCurrent:
		resp, err = h.rankingService.Current(ctx)
	case dto.RankingActionProgress:
		resp, err = h.jobService.BuildProgress(ctx)
	default:
		return unknownAction(c, action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to query rankings", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PostRankings godoc
// @Summary Change ranking periods
// @Description Set the current period, create a period (optionally copied from another) or sync the current period to the static rankings file.
// @Tags rankings
// @Accept  json
// @Produce  json
// @Param   request  body    dto.RankingsActionRequest   true    "set-current | create-period | sync-current"
// @Success 200 {object} dto.RankingsActionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /rankings [post]
func (h *RankingHandler) PostRankings(c echo.Context) error {
	var req dto.RankingsActionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	var (
		resp *dto.RankingsActionResponse
		err  error
	)
	switch req.Action {
	case dto.RankingActionSetCurrent:
		resp, err = h.rankingService.SetCurrent(ctx, req.Period)
	case dto.RankingActionCreatePeriod:
		resp, err = h.rankingService.CreatePeriod(ctx, req.Period, req.CopyFrom)
	case dto.RankingActionSyncCurrent:
		resp, err = h.rankingService.SyncCurrent(ctx)
	default:
		return unknownAction(c, req.Action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to update rankings", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteRankings godoc
// @Summary Delete a ranking period
// @Description Delete a stored period. The current period cannot be deleted.
// @Tags rankings
// @Produce  json
// @Param   period  query    string  true  "Period to delete"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /rankings [delete]
func (h *RankingHandler) DeleteRankings(c echo.Context) error {
	resp, err := h.rankingService.DeletePeriod(c.Request().Context(), c.QueryParam("period"))
	if err != nil {
		return respondError(c, h.logger, "Failed to delete ranking period", err)
	}
	return c.JSON(http.StatusOK, resp)
}
