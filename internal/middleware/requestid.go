package middleware

import (
	"fleet-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := uuid.New().String()

		c.Request().Header.Set("X-Request-ID", requestID)
		c.Response().Header().Set("X-Request-ID", requestID)
		c.Set("request_id", requestID)

		// Request-scoped logger, also threaded into the request context
		// so the service layer logs with the same request ID.
		log := logger.GetLogger().With(zap.String("request_id", requestID))
		c.Set("logger", log)
		ctx := logger.WithContext(c.Request().Context(), log)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
