package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
)

type stubDispatcher struct {
	enqueued []ports.RecordPingInput
}

func (d *stubDispatcher) Enqueue(in ports.RecordPingInput) {
	d.enqueued = append(d.enqueued, in)
}

func (d *stubDispatcher) EnqueueBatch(pings []ports.RecordPingInput) {
	d.enqueued = append(d.enqueued, pings...)
}

type stubTrackingService struct {
	recordFn func(ctx context.Context, in ports.RecordPingInput) (*ports.PingResult, error)
}

func (s *stubTrackingService) RecordPing(ctx context.Context, in ports.RecordPingInput) (*ports.PingResult, error) {
	return s.recordFn(ctx, in)
}

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestTrackingHandler_Receive_Enqueues(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewTrackingHandler(dispatcher, nil)

	body := `{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":-1.2921,"lon":36.8219},"speed_kmh":42.5}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/tracking/pings", body)

	if err := h.Receive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(dispatcher.enqueued) != 1 {
		t.Fatalf("expected 1 enqueued ping, got %d", len(dispatcher.enqueued))
	}

	in := dispatcher.enqueued[0]
	if in.ShipmentID != "shp_1" || in.Location.Latitude != -1.2921 {
		t.Errorf("unexpected input: %+v", in)
	}
	if in.SpeedKmh == nil || *in.SpeedKmh != 42.5 {
		t.Errorf("speed not carried through: %+v", in.SpeedKmh)
	}
}

func TestTrackingHandler_Receive_RejectsOutOfRangeCoordinate(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewTrackingHandler(dispatcher, nil)

	body := `{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":91,"lon":0}}`
	c, _ := newTestContext(t, http.MethodPost, "/v1/tracking/pings", body)

	err := h.Receive(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if len(dispatcher.enqueued) != 0 {
		t.Error("invalid ping must not be enqueued")
	}
}

func TestTrackingHandler_Receive_MissingShipmentID(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewTrackingHandler(dispatcher, nil)

	body := `{"driver_id":"drv_1","location":{"lat":0,"lon":0}}`
	c, _ := newTestContext(t, http.MethodPost, "/v1/tracking/pings", body)

	err := h.Receive(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
}

func TestTrackingHandler_ReceiveBatch(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := NewTrackingHandler(dispatcher, nil)

	body := `[
		{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":0,"lon":0.1}},
		{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":0,"lon":0.2}},
		{"driver_id":"drv_2","shipment_id":"shp_2","location":{"lat":0,"lon":0.3}}
	]`
	c, rec := newTestContext(t, http.MethodPost, "/v1/tracking/pings/batch", body)

	if err := h.ReceiveBatch(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var resp acceptedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 3 {
		t.Errorf("expected count 3, got %d", resp.Count)
	}
	// Batch order is preserved so per-shipment ordering survives ingestion.
	if dispatcher.enqueued[0].Location.Longitude != 0.1 || dispatcher.enqueued[1].Location.Longitude != 0.2 {
		t.Errorf("batch order not preserved: %+v", dispatcher.enqueued)
	}
}

func TestTrackingHandler_ReceiveBatch_Empty(t *testing.T) {
	h := NewTrackingHandler(&stubDispatcher{}, nil)
	c, _ := newTestContext(t, http.MethodPost, "/v1/tracking/pings/batch", `[]`)

	err := h.ReceiveBatch(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestTrackingHandler_ReceiveSync(t *testing.T) {
	stub := &stubTrackingService{
		recordFn: func(_ context.Context, in ports.RecordPingInput) (*ports.PingResult, error) {
			return &ports.PingResult{
				Point: &domain.TrackingPoint{
					ID:         "pt-0001",
					ShipmentID: in.ShipmentID,
					Location:   in.Location,
				},
				Deviation: &ports.Deviation{DistanceFromRouteMeters: 12.5, IsDeviated: false},
			}, nil
		},
	}
	h := NewTrackingHandler(&stubDispatcher{}, stub)

	body := `{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":0,"lon":0.1}}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/tracking/pings/sync", body)

	if err := h.ReceiveSync(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp pingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Point == nil || resp.Point.ID != "pt-0001" {
		t.Errorf("expected persisted point in response: %+v", resp)
	}
	if resp.Deviation == nil || resp.Deviation.DistanceFromRouteMeters != 12.5 {
		t.Errorf("expected deviation in response: %+v", resp.Deviation)
	}
}

func TestTrackingHandler_ReceiveSync_DuplicateReturns200(t *testing.T) {
	stub := &stubTrackingService{
		recordFn: func(_ context.Context, _ ports.RecordPingInput) (*ports.PingResult, error) {
			return &ports.PingResult{Duplicate: true}, nil
		},
	}
	h := NewTrackingHandler(&stubDispatcher{}, stub)

	body := `{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":0,"lon":0.1}}`
	c, rec := newTestContext(t, http.MethodPost, "/v1/tracking/pings/sync", body)

	if err := h.ReceiveSync(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for duplicate, got %d", rec.Code)
	}
}

func TestTrackingHandler_ReceiveSync_ServiceErrorPropagates(t *testing.T) {
	stub := &stubTrackingService{
		recordFn: func(_ context.Context, _ ports.RecordPingInput) (*ports.PingResult, error) {
			return nil, domain.ErrShipmentClosed
		},
	}
	h := NewTrackingHandler(&stubDispatcher{}, stub)

	body := `{"driver_id":"drv_1","shipment_id":"shp_1","location":{"lat":0,"lon":0.1}}`
	c, _ := newTestContext(t, http.MethodPost, "/v1/tracking/pings/sync", body)

	if err := h.ReceiveSync(c); err != domain.ErrShipmentClosed {
		t.Fatalf("domain errors must reach the error handler, got %v", err)
	}
}
