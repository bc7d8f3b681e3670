package http

import (
	"errors"
	"net/http"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, ranking.ErrInvalidPeriod),
		errors.Is(err, scoring.ErrUnknownVersion),
		errors.Is(err, repository.ErrCurrentPeriod):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, dto.ErrorResponse{Success: false, Error: message})
}

// respondError maps err to a status code. Server errors are logged.
func respondError(c echo.Context, log *logger.Logger, msg string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error(msg, logger.ErrorField(err), logger.StringField("path", c.Path()))
	}
	return errorJSON(c, status, err.Error())
}

func unknownAction(c echo.Context, action string) error {
	return errorJSON(c, http.StatusBadRequest, "Unknown action: "+action)
}
