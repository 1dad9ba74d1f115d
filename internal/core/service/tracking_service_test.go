package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

type stubDeduper struct {
	seen  map[string]bool
	marks int
	err   error
}

func newStubDeduper() *stubDeduper {
	return &stubDeduper{seen: make(map[string]bool)}
}

func (d *stubDeduper) key(driverID, shipmentID string, ts time.Time) string {
	return fmt.Sprintf("%s:%s:%d", driverID, shipmentID, ts.Unix())
}

func (d *stubDeduper) IsDuplicate(_ context.Context, driverID, shipmentID string, ts time.Time) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	return d.seen[d.key(driverID, shipmentID, ts)], nil
}

func (d *stubDeduper) Mark(_ context.Context, driverID, shipmentID string, ts time.Time) error {
	d.seen[d.key(driverID, shipmentID, ts)] = true
	d.marks++
	return nil
}

func seedInTransitShipment(repo *stubShipmentRepo, id string, route domain.Route) *domain.Shipment {
	s := &domain.Shipment{
		ID:             id,
		TrackingNumber: "ANTU-20260815-TEST1",
		Origin:         domain.GeoPoint{Latitude: 0, Longitude: 0},
		Destination:    domain.GeoPoint{Latitude: 0, Longitude: 1},
		PlannedRoute:   route,
		Status:         domain.StatusInTransit,
		DriverID:       "drv_1",
		WeightKg:       12,
		CreatedAt:      time.Now().UTC(),
	}
	repo.shipments[id] = s
	return s
}

func newTrackingFixture(route domain.Route) (*stubShipmentRepo, *stubDriverRepo, *stubTrackingRepo, ports.TrackingService) {
	shipments := newStubShipmentRepo()
	drivers := newStubDriverRepo()
	tracking := newStubTrackingRepo()
	seedInTransitShipment(shipments, "shp_1", route)
	svc := NewTrackingService(shipments, drivers, tracking, nil, nil, 0, discardLogger)
	return shipments, drivers, tracking, svc
}

func TestRecordPing_AppendsPointAndUpsertsLocation(t *testing.T) {
	_, drivers, tracking, svc := newTrackingFixture(nil)

	recordedAt := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	result, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0.1, Longitude: 0.1},
		SpeedKmh:   floatPtr(35),
		RecordedAt: recordedAt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Point == nil || result.Point.ID == "" {
		t.Fatal("expected a persisted point with an id")
	}
	if len(tracking.points["shp_1"]) != 1 {
		t.Fatalf("expected 1 point in log, got %d", len(tracking.points["shp_1"]))
	}

	loc, ok := drivers.locations["drv_1"]
	if !ok {
		t.Fatal("expected driver location to be created on first ping")
	}
	if loc.Location.Latitude != 0.1 || !loc.UpdatedAt.Equal(recordedAt) {
		t.Errorf("location not updated from ping: %+v", loc)
	}
}

func TestRecordPing_NoPlannedRoute_DeviationUnavailable(t *testing.T) {
	_, _, _, svc := newTrackingFixture(nil)

	result, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0.5, Longitude: 0.5},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Unavailable, not zero.
	if result.Deviation != nil {
		t.Errorf("expected nil deviation without a planned route, got %+v", result.Deviation)
	}
}

func TestRecordPing_DeviationAgainstRoute(t *testing.T) {
	route := domain.Route{
		{Latitude: 0, Longitude: 0},
		{Latitude: 0, Longitude: 1},
	}
	_, _, _, svc := newTrackingFixture(route)

	onRoute, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0.5},
		RecordedAt: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if onRoute.Deviation == nil {
		t.Fatal("expected deviation metadata with a planned route")
	}
	if onRoute.Deviation.IsDeviated {
		t.Errorf("on-route ping flagged as deviated: %+v", onRoute.Deviation)
	}

	// ~222 m off the equatorial segment, past the 100 m threshold.
	offRoute, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0.002, Longitude: 0.5},
		RecordedAt: time.Date(2026, 8, 15, 10, 5, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !offRoute.Deviation.IsDeviated {
		t.Errorf("expected deviation flag for off-route ping, got %+v", offRoute.Deviation)
	}
	if offRoute.Deviation.DistanceFromRouteMeters < 150 || offRoute.Deviation.DistanceFromRouteMeters > 300 {
		t.Errorf("expected ~222m from route, got %v", offRoute.Deviation.DistanceFromRouteMeters)
	}
}

func TestRecordPing_InvalidCoordinateRejectedBeforeWrite(t *testing.T) {
	_, drivers, tracking, svc := newTrackingFixture(nil)

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 91, Longitude: 0},
	})
	if !errors.Is(err, domain.ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if len(tracking.points["shp_1"]) != 0 || drivers.upserts != 0 {
		t.Error("no state mutation may occur for an invalid ping")
	}
}

func TestRecordPing_NegativeSpeedRejected(t *testing.T) {
	_, _, _, svc := newTrackingFixture(nil)

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
		SpeedKmh:   floatPtr(-5),
	})
	if !errors.Is(err, domain.ErrInvalidSpeed) {
		t.Fatalf("expected ErrInvalidSpeed, got %v", err)
	}
}

func TestRecordPing_UnknownShipment(t *testing.T) {
	_, _, _, svc := newTrackingFixture(nil)

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_missing",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
	})
	if !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestRecordPing_TerminalShipmentRejected(t *testing.T) {
	shipments, _, tracking, svc := newTrackingFixture(nil)
	shipments.shipments["shp_1"].Status = domain.StatusDelivered

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
	})
	if !errors.Is(err, domain.ErrShipmentClosed) {
		t.Fatalf("expected ErrShipmentClosed, got %v", err)
	}
	if len(tracking.points["shp_1"]) != 0 {
		t.Error("terminal shipment must not accept points")
	}
}

func TestRecordPing_DelayedShipmentStillAcceptsPings(t *testing.T) {
	shipments, _, _, svc := newTrackingFixture(nil)
	shipments.shipments["shp_1"].Status = domain.StatusDelayed

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
	})
	if err != nil {
		t.Fatalf("delayed shipments remain trackable, got %v", err)
	}
}

func TestRecordPing_LastWriteWinsOnDriverLocation(t *testing.T) {
	_, drivers, _, svc := newTrackingFixture(nil)

	t0 := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	for i, lon := range []float64{0.1, 0.2, 0.3} {
		_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
			DriverID:   "drv_1",
			ShipmentID: "shp_1",
			Location:   domain.GeoPoint{Latitude: 0, Longitude: lon},
			RecordedAt: t0.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("ping %d: %v", i, err)
		}
	}

	loc := drivers.locations["drv_1"]
	if loc.Location.Longitude != 0.3 {
		t.Errorf("expected latest ping to win, got longitude %v", loc.Location.Longitude)
	}
	if drivers.upserts != 3 {
		t.Errorf("expected 3 upserts against a single snapshot, got %d", drivers.upserts)
	}
	if len(drivers.locations) != 1 {
		t.Errorf("a driver has exactly one location snapshot, got %d", len(drivers.locations))
	}
}

func TestRecordPing_DuplicateSkipped(t *testing.T) {
	shipments := newStubShipmentRepo()
	drivers := newStubDriverRepo()
	tracking := newStubTrackingRepo()
	dedup := newStubDeduper()
	seedInTransitShipment(shipments, "shp_1", nil)
	svc := NewTrackingService(shipments, drivers, tracking, dedup, nil, 0, discardLogger)

	in := ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0.1},
		RecordedAt: time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC),
	}

	first, err := svc.RecordPing(context.Background(), in)
	if err != nil {
		t.Fatalf("first ping: %v", err)
	}
	if first.Duplicate {
		t.Fatal("first ping must not be a duplicate")
	}

	second, err := svc.RecordPing(context.Background(), in)
	if err != nil {
		t.Fatalf("replayed ping: %v", err)
	}
	if !second.Duplicate {
		t.Error("replayed ping must be flagged as duplicate")
	}
	if len(tracking.points["shp_1"]) != 1 {
		t.Errorf("duplicate must not append, log has %d points", len(tracking.points["shp_1"]))
	}
}

func TestRecordPing_DedupFailureIsNonFatal(t *testing.T) {
	shipments := newStubShipmentRepo()
	drivers := newStubDriverRepo()
	tracking := newStubTrackingRepo()
	dedup := newStubDeduper()
	dedup.err = errors.New("redis down")
	seedInTransitShipment(shipments, "shp_1", nil)
	svc := NewTrackingService(shipments, drivers, tracking, dedup, nil, 0, discardLogger)

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
	})
	if err != nil {
		t.Fatalf("dedup outage must not block ingestion, got %v", err)
	}
	if len(tracking.points["shp_1"]) != 1 {
		t.Error("ping should have been processed despite dedup failure")
	}
}

func TestRecordPing_AppendFailureIsFatal(t *testing.T) {
	shipments := newStubShipmentRepo()
	drivers := newStubDriverRepo()
	tracking := newStubTrackingRepo()
	tracking.appendErr = errors.New("db unavailable")
	seedInTransitShipment(shipments, "shp_1", nil)
	svc := NewTrackingService(shipments, drivers, tracking, nil, nil, 0, discardLogger)

	_, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
	})
	if err == nil {
		t.Fatal("expected error when the log append fails")
	}
	if drivers.upserts != 0 {
		t.Error("location must not be updated when the append fails")
	}
}

func TestRecordPing_DefaultsRecordedAtToNow(t *testing.T) {
	shipments := newStubShipmentRepo()
	drivers := newStubDriverRepo()
	tracking := newStubTrackingRepo()
	seedInTransitShipment(shipments, "shp_1", nil)
	svc := NewTrackingService(shipments, drivers, tracking, nil, nil, 0, discardLogger).(*trackingService)

	fixed := time.Date(2026, 8, 15, 12, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	result, err := svc.RecordPing(context.Background(), ports.RecordPingInput{
		DriverID:   "drv_1",
		ShipmentID: "shp_1",
		Location:   domain.GeoPoint{Latitude: 0, Longitude: 0},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Point.RecordedAt.Equal(fixed) {
		t.Errorf("expected recorded_at %v, got %v", fixed, result.Point.RecordedAt)
	}
}
