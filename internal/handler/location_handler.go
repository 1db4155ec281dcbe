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

// LocationRequest defines the structure for location create/update
// requests. The headquarters flag is not accepted from clients.
type LocationRequest struct {
	Name             string `json:"name"`
	Address          string `json:"address"`
	City             string `json:"city"`
	IsPickupCapable  bool   `json:"is_pickup_capable"`
	IsDropoffCapable bool   `json:"is_dropoff_capable"`
}

// LocationHandler exposes location CRUD over HTTP
type LocationHandler struct {
	locations *service.LocationService
}

func NewLocationHandler(locations *service.LocationService) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// List handles GET /api/locations. Listing provisions the headquarters
// location as a side effect, so a fresh tenant always sees one entry.
func (h *LocationHandler) List(c echo.Context) error {
	prometheus.RecordLocationOperation("list")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	locations, err := h.locations.List(c.Request().Context(), principalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, locations)
}

// Create handles POST /api/locations
func (h *LocationHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordLocationOperation("create")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	location, err := h.locations.Create(c.Request().Context(), principalID, service.LocationInput{
		Name:             req.Name,
		Address:          req.Address,
		City:             req.City,
		IsPickupCapable:  req.IsPickupCapable,
		IsDropoffCapable: req.IsDropoffCapable,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, location)
}

// Update handles PUT /api/locations/:id
func (h *LocationHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordLocationOperation("update")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req LocationRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	location, err := h.locations.Update(c.Request().Context(), principalID, c.Param("id"), service.LocationInput{
		Name:             req.Name,
		Address:          req.Address,
		City:             req.City,
		IsPickupCapable:  req.IsPickupCapable,
		IsDropoffCapable: req.IsDropoffCapable,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, location)
}

// Delete handles DELETE /api/locations/:id (soft-deactivate)
func (h *LocationHandler) Delete(c echo.Context) error {
	prometheus.RecordLocationOperation("deactivate")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := h.locations.Deactivate(c.Request().Context(), principalID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "location deactivated"})
}
