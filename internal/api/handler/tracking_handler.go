package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/antu/logistics-system/internal/core/ports"
)

// PingDispatcher is the interface the handler uses to enqueue pings for
// asynchronous ingestion.
type PingDispatcher interface {
	Enqueue(in ports.RecordPingInput)
	EnqueueBatch(pings []ports.RecordPingInput)
}

// TrackingHandler handles GPS ping ingestion.
type TrackingHandler struct {
	dispatcher PingDispatcher
	tracking   ports.TrackingService
}

// NewTrackingHandler creates a TrackingHandler. The dispatcher serves the
// async endpoints, the service the synchronous one.
func NewTrackingHandler(dispatcher PingDispatcher, tracking ports.TrackingService) *TrackingHandler {
	return &TrackingHandler{dispatcher: dispatcher, tracking: tracking}
}

// Receive handles POST /v1/tracking/pings — enqueues a single ping, returns 202.
//
// @Summary      Ingest a single GPS ping
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      pingRequest  true  "GPS ping"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tracking/pings [post]
func (h *TrackingHandler) Receive(c echo.Context) error {
	var req pingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	h.dispatcher.Enqueue(toPingInput(req))
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "ping accepted"})
}

// ReceiveBatch handles POST /v1/tracking/pings/batch — enqueues a batch of
// pings, returns 202. Per-shipment ordering within the batch is preserved.
//
// @Summary      Ingest a batch of GPS pings
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []pingRequest  true  "Array of GPS pings"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tracking/pings/batch [post]
func (h *TrackingHandler) ReceiveBatch(c echo.Context) error {
	var reqs []pingRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.RecordPingInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("ping[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toPingInput(req))
	}

	h.dispatcher.EnqueueBatch(inputs)
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "pings accepted",
		Count:   len(inputs),
	})
}

// ReceiveSync handles POST /v1/tracking/pings/sync — processes one ping
// inline and returns the persisted point with its deviation. Intended for
// integrations that need the write confirmed before responding to the driver.
//
// @Summary      Ingest a GPS ping synchronously
// @Tags         tracking
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      pingRequest  true  "GPS ping"
// @Success      201   {object}  pingResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/tracking/pings/sync [post]
func (h *TrackingHandler) ReceiveSync(c echo.Context) error {
	var req pingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.tracking.RecordPing(c.Request().Context(), toPingInput(req))
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	return c.JSON(status, pingResponse{
		Point:     result.Point,
		Deviation: result.Deviation,
		Duplicate: result.Duplicate,
	})
}
