package handler

import (
	"net/http"
	"time"

	"fleet-service/internal/middleware"
	"fleet-service/internal/service"
	"fleet-service/pkg/logger"
	"fleet-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler exposes company onboarding over HTTP
type TenantHandler struct {
	tenants *service.TenantService
}

func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// Create handles POST /api/tenants
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	tenant, err := h.tenants.Create(c.Request().Context(), principalID, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tenant)
}

// Me handles GET /api/tenants/me
func (h *TenantHandler) Me(c echo.Context) error {
	prometheus.RecordTenantOperation("access")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	tenant, err := h.tenants.GetByOwner(c.Request().Context(), principalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tenant)
}
