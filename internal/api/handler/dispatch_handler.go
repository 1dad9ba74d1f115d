package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
)

// DriverLocationReader is the cache-side lookup for current driver positions.
type DriverLocationReader interface {
	GetLocation(ctx context.Context, driverID string) (*domain.DriverLocation, error)
}

// DispatchHandler serves driver matching, availability, and vehicle selection.
type DispatchHandler struct {
	dispatch   ports.DispatchService
	vehicles   ports.VehicleService
	driverRepo ports.DriverRepository
	cache      DriverLocationReader // optional
	log        zerolog.Logger
}

func NewDispatchHandler(
	dispatch ports.DispatchService,
	vehicles ports.VehicleService,
	driverRepo ports.DriverRepository,
	cache DriverLocationReader,
	log zerolog.Logger,
) *DispatchHandler {
	return &DispatchHandler{
		dispatch:   dispatch,
		vehicles:   vehicles,
		driverRepo: driverRepo,
		cache:      cache,
		log:        log,
	}
}

// NearestDriver handles POST /v1/dispatch/nearest-driver.
//
// @Summary      Find the closest eligible driver for a pickup
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      nearestDriverRequest  true  "Pickup origin and load"
// @Success      200   {object}  ports.NearestDriverResult
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/dispatch/nearest-driver [post]
func (h *DispatchHandler) NearestDriver(c echo.Context) error {
	var req nearestDriverRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.dispatch.FindNearest(c.Request().Context(), toFindNearestInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Availability handles GET /v1/drivers/:id/availability?weight_kg=25.
//
// @Summary      Check whether a driver can take a shipment
// @Tags         drivers
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true   "Driver ID"
// @Param        weight_kg  query     number  false  "Shipment weight"
// @Success      200  {object}  ports.Availability
// @Router       /v1/drivers/{id}/availability [get]
func (h *DispatchHandler) Availability(c echo.Context) error {
	weightKg, err := queryFloat(c, "weight_kg")
	if err != nil {
		return err
	}

	avail, err := h.dispatch.CheckAvailability(c.Request().Context(), c.Param("id"), weightKg)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, avail)
}

// Workload handles GET /v1/drivers/:id/workload.
//
// @Summary      Current assignment load for a driver
// @Tags         drivers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Driver ID"
// @Success      200  {object}  ports.Workload
// @Failure      404  {object}  errorResponse
// @Router       /v1/drivers/{id}/workload [get]
func (h *DispatchHandler) Workload(c echo.Context) error {
	w, err := h.dispatch.ActiveWorkload(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w)
}

// Location handles GET /v1/drivers/:id/location — cache first, database on miss.
//
// @Summary      Current position of a driver
// @Tags         drivers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Driver ID"
// @Success      200  {object}  driverLocationResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/drivers/{id}/location [get]
func (h *DispatchHandler) Location(c echo.Context) error {
	ctx := c.Request().Context()
	driverID := c.Param("id")

	if h.cache != nil {
		loc, err := h.cache.GetLocation(ctx, driverID)
		if err == nil {
			return c.JSON(http.StatusOK, driverLocationResponse{
				DriverID:  loc.DriverID,
				Location:  loc.Location,
				UpdatedAt: loc.UpdatedAt,
				Source:    "cache",
			})
		}
		// Misses and cache outages both fall through to the database.
		h.log.Debug().Err(err).Str("driver_id", driverID).Msg("location cache miss")
	}

	loc, err := h.driverRepo.FindLocation(ctx, driverID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, driverLocationResponse{
		DriverID:  loc.DriverID,
		Location:  loc.Location,
		UpdatedAt: loc.UpdatedAt,
		Source:    "database",
	})
}

// SelectVehicle handles POST /v1/dispatch/vehicle.
//
// @Summary      Select the best-fit vehicle for a load
// @Tags         dispatch
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      selectVehicleRequest  true  "Load weight and trip distance"
// @Success      200   {object}  domain.Vehicle
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/dispatch/vehicle [post]
func (h *DispatchHandler) SelectVehicle(c echo.Context) error {
	var req selectVehicleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	vehicle, err := h.vehicles.SelectOptimal(c.Request().Context(), req.WeightKg, req.DistanceKm)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vehicle)
}

// Maintenance handles GET /v1/vehicles/:id/maintenance.
//
// @Summary      Maintenance score for a vehicle
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  ports.MaintenanceReport
// @Failure      404  {object}  errorResponse
// @Router       /v1/vehicles/{id}/maintenance [get]
func (h *DispatchHandler) Maintenance(c echo.Context) error {
	report, err := h.vehicles.MaintenanceScore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// queryFloat parses an optional non-negative float query parameter.
func queryFloat(c echo.Context, name string) (float64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative number")
	}
	return parsed, nil
}
