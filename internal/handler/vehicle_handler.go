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

// VehicleRequest defines the structure for vehicle save requests. The
// location ID lists may contain the UI's "add new location" sentinel;
// the service layer filters those out before validation.
type VehicleRequest struct {
	RegistrationNumber string   `json:"registration_number"`
	Make               string   `json:"make"`
	Model              string   `json:"model"`
	Year               int      `json:"year"`
	Seats              int      `json:"seats"`
	Transmission       string   `json:"transmission"`
	PricePerDay        float64  `json:"price_per_day"`
	Status             string   `json:"status"`
	PickupLocationIDs  []string `json:"pickup_location_ids"`
	DropoffLocationIDs []string `json:"dropoff_location_ids"`
}

// VehicleHandler exposes vehicle CRUD over HTTP
type VehicleHandler struct {
	vehicles *service.VehicleService
}

func NewVehicleHandler(vehicles *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles}
}

// Save handles both POST /api/vehicles and PUT /api/vehicles/:id
func (h *VehicleHandler) Save(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordVehicleOperation("save")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req VehicleRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	vehicleID := c.Param("id")

	defer prometheus.TrackDBOperation("save_vehicle")(time.Now())

	details, err := h.vehicles.Save(c.Request().Context(), principalID, vehicleID, service.VehicleInput{
		RegistrationNumber: req.RegistrationNumber,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		Seats:              req.Seats,
		Transmission:       req.Transmission,
		PricePerDay:        req.PricePerDay,
		Status:             req.Status,
	}, req.PickupLocationIDs, req.DropoffLocationIDs)
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusOK
	if vehicleID == "" {
		status = http.StatusCreated
	}
	return c.JSON(status, details)
}

// Get handles GET /api/vehicles/:id
func (h *VehicleHandler) Get(c echo.Context) error {
	prometheus.RecordVehicleOperation("get")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	details, err := h.vehicles.Get(c.Request().Context(), principalID, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// List handles GET /api/vehicles
func (h *VehicleHandler) List(c echo.Context) error {
	prometheus.RecordVehicleOperation("list")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	vehicles, err := h.vehicles.List(c.Request().Context(), principalID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

// Delete handles DELETE /api/vehicles/:id
func (h *VehicleHandler) Delete(c echo.Context) error {
	prometheus.RecordVehicleOperation("delete")

	principalID, ok := middleware.PrincipalID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := h.vehicles.Delete(c.Request().Context(), principalID, c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "vehicle deleted"})
}
