package http

import (
	"net/http"
	"strconv"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
)

// JobHandler handles HTTP requests for jobs.
type JobHandler struct {
	jobService service.JobService
	logger     *logger.Logger
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService service.JobService, logger *logger.Logger) *JobHandler {
	return &JobHandler{jobService: jobService, logger: logger}
}

// RegisterRoutes registers the job routes to the Echo group.
func (h *JobHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/jobs", h.CreateJob)
	g.GET("/jobs", h.GetAllJobs)
	g.GET("/jobs/:id", h.GetJobByID)
	g.PUT("/jobs/:id", h.UpdateJob)
	g.DELETE("/jobs/:id", h.DeleteJob)
	g.POST("/jobs/:id/trigger", h.TriggerJob)
	g.GET("/jobs/:id/executions", h.GetJobExecutions)
	g.GET("/executions", h.GetRecentExecutions)
}

// CreateJob godoc
// @Summary Create a new job
// @Description Create a new job with schedules
// @Tags jobs
// @Accept  json
// @Produce  json
// @Param   job  body    dto.CreateJobRequest   true    "Job to create"
// @Success 201 {object} dto.JobResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c echo.Context) error {
	var req dto.CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	jobResponse, err := h.jobService.CreateJob(c.Request().Context(), &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to create job", err)
	}
	return c.JSON(http.StatusCreated, jobResponse)
}

// GetJobByID godoc
// @Summary Get a job by ID
// @Description Get a single job by its ID
// @Tags jobs
// @Produce  json
// @Param   id  path    int true    "Job ID"
// @Success 200 {object} dto.JobResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJobByID(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid job ID")
	}

	jobResponse, err := h.jobService.GetJobByID(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "Failed to get job", err)
	}
	return c.JSON(http.StatusOK, jobResponse)
}

// GetAllJobs godoc
// @Summary Get all jobs
// @Description Get all jobs
// @Tags jobs
// @Produce  json
// @Success 200 {array} dto.JobResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs [get]
func (h *JobHandler) GetAllJobs(c echo.Context) error {
	jobs, err := h.jobService.GetAllJobs(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get all jobs", logger.ErrorField(err))
		return errorJSON(c, http.StatusInternalServerError, "Failed to get jobs")
	}
	return c.JSON(http.StatusOK, jobs)
}

// UpdateJob godoc
// @Summary Update an existing job
// @Description Update an existing job with the given details
// @Tags jobs
// @Accept  json
// @Produce  json
// @Param   id  path    int true    "Job ID"
// @Param   job  body    dto.UpdateJobRequest   true    "Job to update"
// @Success 200 {object} dto.JobResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs/{id} [put]
func (h *JobHandler) UpdateJob(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid job ID")
	}

	var req dto.UpdateJobRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request payload")
	}

	jobResponse, err := h.jobService.UpdateJob(c.Request().Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, "Failed to update job", err)
	}
	return c.JSON(http.StatusOK, jobResponse)
}

// DeleteJob godoc
// @Summary Delete a job
// @Description Delete a job by its ID
// @Tags jobs
// @Produce  json
// @Param   id  path    int true    "Job ID"
// @Success 204 {object} nil
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid job ID")
	}

	if err := h.jobService.DeleteJob(c.Request().Context(), id); err != nil {
		return respondError(c, h.logger, "Failed to delete job", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// TriggerJob godoc
// @Summary Trigger a job
// @Description Queue an immediate execution of a job
// @Tags jobs
// @Produce  json
// @Param   id  path    int true    "Job ID"
// @Success 202 {object} dto.ExecutionHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs/{id}/trigger [post]
func (h *JobHandler) TriggerJob(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid job ID")
	}

	execution, err := h.jobService.TriggerJob(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "Failed to trigger job", err)
	}
	return c.JSON(http.StatusAccepted, execution)
}

// GetJobExecutions godoc
// @Summary Get executions of a job
// @Description Get the execution history of a job, newest first
// @Tags jobs
// @Produce  json
// @Param   id  path    int true    "Job ID"
// @Success 200 {array} dto.ExecutionHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /jobs/{id}/executions [get]
func (h *JobHandler) GetJobExecutions(c echo.Context) error {
	id, err := parseJobID(c)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid job ID")
	}

	executions, err := h.jobService.GetExecutions(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, "Failed to get job executions", err)
	}
	return c.JSON(http.StatusOK, executions)
}

// GetRecentExecutions godoc
// @Summary Get recent executions
// @Description Get the latest executions across all jobs
// @Tags jobs
// @Produce  json
// @Param   limit  query    int  false  "Maximum number of executions"  default(50)
// @Success 200 {array} dto.ExecutionHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /executions [get]
func (h *JobHandler) GetRecentExecutions(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
			return errorJSON(c, http.StatusBadRequest, "Invalid limit parameter")
		}
	}

	executions, err := h.jobService.GetRecentExecutions(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, h.logger, "Failed to get recent executions", err)
	}
	return c.JSON(http.StatusOK, executions)
}

func parseJobID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
