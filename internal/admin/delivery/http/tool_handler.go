package http

import (
	"net/http"
	"strings"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ToolHandler handles HTTP requests for tool maintenance.
type ToolHandler struct {
	toolService service.ToolService
	logger      *logger.Logger
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(toolService service.ToolService, logger *logger.Logger) *ToolHandler {
	return &ToolHandler{toolService: toolService, logger: logger}
}

// RegisterRoutes registers the tool routes to the Echo group.
func (h *ToolHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/tools", h.GetTools)
	g.POST("/tools", h.PostTools)
	g.PUT("/tools", h.PutTools)
	g.DELETE("/tools", h.DeleteTool)
}

// GetTools godoc
// @Summary Query tools
// @Description List tools, check whether tools exist by slug or name, or list auto-generated tools.
// @Tags tools
// @Produce  json
// @Param   action  query    string  false  "list | check-exist | cleanup-auto"  default(list)
// @Param   status  query    string  false  "Status filter for list"
// @Param   tools   query    string  false  "Comma separated names for check-exist"
// @Success 200 {object} dto.ToolListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tools [get]
func (h *ToolHandler) GetTools(c echo.Context) error {
	ctx := c.Request().Context()
	action := c.QueryParam("action")
	if action == "" {
		action = dto.ToolActionList
	}

	var (
		resp interface{}
		err  error
	)
	switch action {
	case dto.ToolActionList:
		resp, err = h.toolService.List(ctx, c.QueryParam("status"))
	case dto.ToolActionCheckExist:
		names := c.QueryParam("tools")
		if strings.TrimSpace(names) == "" {
			return errorJSON(c, http.StatusBadRequest, "tools parameter is required")
		}
		resp, err = h.toolService.CheckExist(ctx, strings.Split(names, ","))
	case dto.ToolActionCleanupAuto:
		resp, err = h.toolService.FindAutoGenerated(ctx)
	default:
		return unknownAction(c, action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to query tools", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PostTools godoc
// @Summary Run a tool action
// @Description Delete tools, refresh display data, delete auto-generated tools or update company data.
// @Tags tools
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ToolsActionRequest   true    "delete | refresh-display | cleanup-auto | update-company"
// @Success 200 {object} dto.DeleteToolsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tools [post]
func (h *ToolHandler) PostTools(c echo.Context) error {
	var req dto.ToolsActionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	var (
		resp interface{}
		err  error
	)
	switch req.Action {
	case dto.ToolActionDelete:
		resp, err = h.toolService.DeleteTools(ctx, req.ToolIDs)
	case dto.ToolActionRefreshDisplay:
		resp, err = h.toolService.RefreshDisplay(ctx, req.ToolID)
	case dto.ToolActionCleanupAuto:
		resp, err = h.toolService.CleanupAuto(ctx)
	case dto.ToolActionUpdateCompany:
		resp, err = h.toolService.UpdateCompany(ctx, req.ToolID, req.CompanyData)
	default:
		return unknownAction(c, req.Action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to run tool action", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// PutTools godoc
// @Summary Run a bulk tool fix
// @Description Fill missing display names or missing company data for all tools.
// @Tags tools
// @Accept  json
// @Produce  json
// @Param   request  body    dto.ToolsActionRequest   true    "quick-fix-display | update-missing-company"
// @Success 200 {object} dto.BulkToolUpdateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tools [put]
func (h *ToolHandler) PutTools(c echo.Context) error {
	var req dto.ToolsActionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	ctx := c.Request().Context()
	var (
		resp *dto.BulkToolUpdateResponse
		err  error
	)
	switch req.Action {
	case dto.ToolActionQuickFixDisplay:
		resp, err = h.toolService.QuickFixDisplay(ctx)
	case dto.ToolActionUpdateMissingCompany:
		resp, err = h.toolService.UpdateMissingCompany(ctx)
	default:
		return unknownAction(c, req.Action)
	}
	if err != nil {
		return respondError(c, h.logger, "Failed to fix tools", err)
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteTool godoc
// @Summary Delete a tool
// @Description Delete a tool and remove it from news tool mentions.
// @Tags tools
// @Produce  json
// @Param   id  query    string  true  "Tool ID"
// @Success 200 {object} dto.ToolUpdateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /tools [delete]
func (h *ToolHandler) DeleteTool(c echo.Context) error {
	resp, err := h.toolService.DeleteTool(c.Request().Context(), c.QueryParam("id"))
	if err != nil {
		return respondError(c, h.logger, "Failed to delete tool", err)
	}
	return c.JSON(http.StatusOK, resp)
}
