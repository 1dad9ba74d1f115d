package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
	"github.com/antu/logistics-system/internal/core/service"
)

// AnalyticsHandler serves the read-only shipment tracking views.
type AnalyticsHandler struct {
	analytics ports.AnalyticsService
}

func NewAnalyticsHandler(analytics ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Summary handles GET /v1/shipments/:id/summary.
//
// @Summary      Composite tracking summary for a shipment
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  ports.TrackingSummary
// @Failure      404  {object}  errorResponse
// @Router       /v1/shipments/{id}/summary [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	summary, err := h.analytics.Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Distance handles GET /v1/shipments/:id/distance.
//
// @Summary      Total distance traveled over the tracking log
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  distanceResponse
// @Router       /v1/shipments/{id}/distance [get]
func (h *AnalyticsHandler) Distance(c echo.Context) error {
	id := c.Param("id")
	total, err := h.analytics.TotalDistanceTraveled(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, distanceResponse{ShipmentID: id, TotalDistanceKm: total})
}

// Speed handles GET /v1/shipments/:id/speed.
//
// @Summary      Pairwise speed statistics for a shipment
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  ports.SpeedStats
// @Router       /v1/shipments/{id}/speed [get]
func (h *AnalyticsHandler) Speed(c echo.Context) error {
	stats, err := h.analytics.AverageSpeed(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// Stops handles GET /v1/shipments/:id/stops?min_stop_minutes=5.
//
// @Summary      Detected idle intervals for a shipment
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string   true   "Shipment ID"
// @Param        min_stop_minutes  query     number   false  "Minimum idle duration (default 5)"
// @Success      200  {object}  stopsResponse
// @Failure      400  {object}  errorResponse
// @Router       /v1/shipments/{id}/stops [get]
func (h *AnalyticsHandler) Stops(c echo.Context) error {
	id := c.Param("id")
	minMinutes := 0.0
	if raw := c.QueryParam("min_stop_minutes"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "min_stop_minutes must be a non-negative number")
		}
		minMinutes = parsed
	}

	stops, err := h.analytics.DetectStops(c.Request().Context(), id, minMinutes)
	if err != nil {
		return err
	}
	if stops == nil {
		stops = []domain.Stop{}
	}

	reported := minMinutes
	if reported == 0 {
		reported = service.DefaultMinStopMinutes
	}
	return c.JSON(http.StatusOK, stopsResponse{
		ShipmentID:     id,
		MinStopMinutes: reported,
		Stops:          stops,
	})
}

// Anomalies handles GET /v1/shipments/:id/anomalies.
//
// @Summary      Sequence validation report for a shipment's tracking log
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  ports.SequenceReport
// @Router       /v1/shipments/{id}/anomalies [get]
func (h *AnalyticsHandler) Anomalies(c echo.Context) error {
	report, err := h.analytics.ValidateSequence(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// ETA handles GET /v1/shipments/:id/eta.
//
// @Summary      Arrival estimate for a shipment in motion
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Shipment ID"
// @Success      200  {object}  ports.ETAResult
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/shipments/{id}/eta [get]
func (h *AnalyticsHandler) ETA(c echo.Context) error {
	summary, err := h.analytics.Summary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if summary.ETA == nil {
		return echo.NewHTTPError(http.StatusConflict, "eta unavailable: shipment is not in motion or has no tracking data")
	}
	return c.JSON(http.StatusOK, summary.ETA)
}
