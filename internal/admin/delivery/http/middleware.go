package http

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"ai-power-rankings/internal/admin/dto"
	"ai-power-rankings/pkg/common"
	"ai-power-rankings/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// AdminAuth accepts requests carrying apiKey in the admin session cookie or the admin key header.
// An empty apiKey rejects every request.
func AdminAuth(apiKey string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: fmt.Sprintf("header:%s,cookie:%s", common.AdminKeyHeader, common.AdminSessionCookie),
		Validator: func(key string, c echo.Context) (bool, error) {
			if apiKey == "" {
				return false, nil
			}
			return subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Success: false, Error: "Unauthorized"})
		},
	})
}

// RequestID assigns a request id and stores it in the request context for logging.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := logger.WithRequestID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	})
}

// RequestLogger logs every request through the application logger.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogMethod:  true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.DurationField("latency", v.Latency.Round(time.Millisecond)),
			}
			if v.Error != nil {
				log.Error("HTTP request failed", append(fields, logger.ErrorField(v.Error))...)
				return nil
			}
			log.InfoContext(c.Request().Context(), "HTTP request", fields...)
			return nil
		},
	})
}
