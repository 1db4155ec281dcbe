package handler

import (
	"errors"
	"net/http"

	"fleet-service/internal/service"
	"fleet-service/pkg/logger"
	"fleet-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError maps a service failure kind onto an HTTP response.
// Internal store errors are logged with full detail but the caller only
// ever sees the service-layer message.
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)

	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		log.Error("unexpected error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	status := http.StatusInternalServerError
	switch svcErr.Kind {
	case service.KindTenantUnresolved:
		// Onboarding not finished, not a bug. 412 tells the client to
		// complete company registration first.
		status = http.StatusPreconditionFailed
	case service.KindForbidden:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindInvalidLocationReference:
		prometheus.RecordValidationFailure()
		status = http.StatusUnprocessableEntity
	case service.KindDuplicateRegistration:
		status = http.StatusConflict
	case service.KindConflict:
		status = http.StatusConflict
	case service.KindAssociationSyncFailed:
		prometheus.RecordSyncFailure()
		status = http.StatusBadGateway
	case service.KindTimeout:
		status = http.StatusGatewayTimeout
	case service.KindInvalidArgument:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Warn("request rejected",
			zap.String("kind", string(svcErr.Kind)),
			zap.Strings("ids", svcErr.IDs),
			zap.Error(svcErr.Err))
	}

	body := echo.Map{"error": svcErr.Message, "kind": string(svcErr.Kind)}
	if len(svcErr.IDs) > 0 {
		body["ids"] = svcErr.IDs
	}
	return c.JSON(status, body)
}
