package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/api/metrics"
	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/geo"
	"github.com/antu/logistics-system/internal/core/ports"
)

// DefaultDeviationThresholdMeters flags a ping as deviated when it sits
// farther than this from the planned route.
const DefaultDeviationThresholdMeters = 100.0

// PingDeduper abstracts the idempotency store (Redis).
type PingDeduper interface {
	IsDuplicate(ctx context.Context, driverID, shipmentID string, ts time.Time) (bool, error)
	Mark(ctx context.Context, driverID, shipmentID string, ts time.Time) error
}

// LocationCache mirrors the latest driver position into a hot store so
// read-heavy dispatch scans avoid the primary database.
type LocationCache interface {
	SetLocation(ctx context.Context, loc *domain.DriverLocation) error
}

type trackingService struct {
	shipmentRepo ports.ShipmentRepository
	driverRepo   ports.DriverRepository
	trackingRepo ports.TrackingRepository
	dedup        PingDeduper   // optional
	cache        LocationCache // optional
	thresholdM   float64
	log          zerolog.Logger
	now          func() time.Time
}

// NewTrackingService returns the TrackingService implementation. dedup and
// cache may be nil, in which case deduplication and location caching are
// skipped. thresholdMeters <= 0 falls back to the default.
func NewTrackingService(
	shipmentRepo ports.ShipmentRepository,
	driverRepo ports.DriverRepository,
	trackingRepo ports.TrackingRepository,
	dedup PingDeduper,
	cache LocationCache,
	thresholdMeters float64,
	log zerolog.Logger,
) ports.TrackingService {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultDeviationThresholdMeters
	}
	return &trackingService{
		shipmentRepo: shipmentRepo,
		driverRepo:   driverRepo,
		trackingRepo: trackingRepo,
		dedup:        dedup,
		cache:        cache,
		thresholdM:   thresholdMeters,
		log:          log,
		now:          time.Now,
	}
}

// RecordPing validates, deduplicates, and persists a single GPS ping:
// append to the shipment's tracking log, overwrite the driver's current
// location, and report deviation from the planned route.
func (s *trackingService) RecordPing(ctx context.Context, in ports.RecordPingInput) (*ports.PingResult, error) {
	// 1. Validate before any state mutation.
	if err := in.Location.Validate(); err != nil {
		metrics.PingsErrorsTotal.WithLabelValues("invalid_coordinate").Inc()
		return nil, fmt.Errorf("record ping: %w", err)
	}
	if in.SpeedKmh != nil && *in.SpeedKmh < 0 {
		metrics.PingsErrorsTotal.WithLabelValues("invalid_speed").Inc()
		return nil, fmt.Errorf("record ping: %w", domain.ErrInvalidSpeed)
	}

	recordedAt := in.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = s.now().UTC()
	}

	// 2. The shipment must exist and still be open for tracking.
	shipment, err := s.shipmentRepo.FindByID(ctx, in.ShipmentID)
	if err != nil {
		metrics.PingsErrorsTotal.WithLabelValues("shipment_not_found").Inc()
		return nil, fmt.Errorf("record ping: %w", err)
	}
	if shipment.Status.IsTerminal() {
		metrics.PingsErrorsTotal.WithLabelValues("shipment_closed").Inc()
		return nil, fmt.Errorf("record ping: %w (status %s)", domain.ErrShipmentClosed, shipment.Status)
	}

	// 3. Idempotency check — silently skip exact duplicates.
	if s.dedup != nil {
		isDup, dedupErr := s.dedup.IsDuplicate(ctx, in.DriverID, in.ShipmentID, recordedAt)
		if dedupErr != nil {
			s.log.Warn().Err(dedupErr).Str("shipment_id", in.ShipmentID).Msg("dedup check failed, processing anyway")
		} else if isDup {
			metrics.PingsDedupTotal.WithLabelValues("hit").Inc()
			s.log.Debug().Str("shipment_id", in.ShipmentID).Str("driver_id", in.DriverID).Msg("duplicate ping skipped")
			return &ports.PingResult{Duplicate: true}, nil
		} else {
			metrics.PingsDedupTotal.WithLabelValues("miss").Inc()
		}
	}

	// 4. Append the immutable point to the shipment's log.
	point := &domain.TrackingPoint{
		ShipmentID: in.ShipmentID,
		DriverID:   in.DriverID,
		Location:   in.Location,
		SpeedKmh:   in.SpeedKmh,
		Note:       in.Note,
		RecordedAt: recordedAt,
	}
	if err := s.trackingRepo.Append(ctx, point); err != nil {
		metrics.PingsErrorsTotal.WithLabelValues("append_failed").Inc()
		return nil, fmt.Errorf("record ping: append point: %w", err)
	}

	if s.dedup != nil {
		if markErr := s.dedup.Mark(ctx, in.DriverID, in.ShipmentID, recordedAt); markErr != nil {
			s.log.Warn().Err(markErr).Str("shipment_id", in.ShipmentID).Msg("failed to set dedup key")
		}
	}

	// 5. Overwrite the driver's current location, last write wins. The
	// persisted timestamp is the ping's recorded_at, not arrival time.
	loc := &domain.DriverLocation{
		DriverID:  in.DriverID,
		Location:  in.Location,
		UpdatedAt: recordedAt,
	}
	if err := s.driverRepo.UpsertLocation(ctx, loc); err != nil {
		metrics.PingsErrorsTotal.WithLabelValues("location_upsert_failed").Inc()
		return nil, fmt.Errorf("record ping: upsert driver location: %w", err)
	}
	if s.cache != nil {
		if cacheErr := s.cache.SetLocation(ctx, loc); cacheErr != nil {
			s.log.Warn().Err(cacheErr).Str("driver_id", in.DriverID).Msg("failed to cache driver location")
		}
	}

	// 6. Deviation against the planned route; unavailable when no route is set.
	deviation := deviationFromRoute(in.Location, shipment.PlannedRoute, s.thresholdM)

	deviatedLabel := "unknown"
	if deviation != nil {
		deviatedLabel = fmt.Sprintf("%t", deviation.IsDeviated)
	}
	metrics.PingsProcessedTotal.WithLabelValues(deviatedLabel).Inc()

	s.log.Info().
		Str("shipment_id", in.ShipmentID).
		Str("driver_id", in.DriverID).
		Float64("lat", in.Location.Latitude).
		Float64("lon", in.Location.Longitude).
		Msg("ping recorded")

	return &ports.PingResult{Point: point, Deviation: deviation}, nil
}

// deviationFromRoute computes the deviation metadata for a point, or nil
// when the shipment has no planned route.
func deviationFromRoute(p domain.GeoPoint, route domain.Route, thresholdM float64) *ports.Deviation {
	if len(route) == 0 {
		return nil
	}
	d := geo.DistanceToRouteMeters(p, route)
	return &ports.Deviation{
		DistanceFromRouteMeters: roundTo(d, 2),
		IsDeviated:              d > thresholdM,
	}
}
