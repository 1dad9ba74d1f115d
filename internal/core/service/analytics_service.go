package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/geo"
	"github.com/antu/logistics-system/internal/core/ports"
)

// DefaultMinStopMinutes is the idle duration under which a stationary pair
// is not reported as a stop.
const DefaultMinStopMinutes = 5.0

// stopRadiusKm is the movement ceiling for a pair to count as stationary.
const stopRadiusKm = 0.1

type analyticsService struct {
	shipmentRepo ports.ShipmentRepository
	trackingRepo ports.TrackingRepository
	estimator    *Estimator
	thresholdM   float64
	log          zerolog.Logger
}

// NewAnalyticsService returns the read-only analytics implementation over
// the ordered tracking log.
func NewAnalyticsService(
	shipmentRepo ports.ShipmentRepository,
	trackingRepo ports.TrackingRepository,
	estimator *Estimator,
	thresholdMeters float64,
	log zerolog.Logger,
) ports.AnalyticsService {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultDeviationThresholdMeters
	}
	return &analyticsService{
		shipmentRepo: shipmentRepo,
		trackingRepo: trackingRepo,
		estimator:    estimator,
		thresholdM:   thresholdMeters,
		log:          log,
	}
}

// TotalDistanceTraveled sums consecutive pairwise distances over the log.
// Zero or one point yields 0.
func (s *analyticsService) TotalDistanceTraveled(ctx context.Context, shipmentID string) (float64, error) {
	points, err := s.trackingRepo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return 0, fmt.Errorf("total distance: %w", err)
	}

	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.DistanceKm(points[i-1].Location, points[i].Location)
	}
	return roundTo(total, 2), nil
}

// RemainingDistance is the straight-line distance from the given position to
// the shipment's destination.
func (s *analyticsService) RemainingDistance(ctx context.Context, shipmentID string, current domain.GeoPoint) (float64, error) {
	if err := current.Validate(); err != nil {
		return 0, fmt.Errorf("remaining distance: %w", err)
	}
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return 0, fmt.Errorf("remaining distance: %w", err)
	}
	return geo.DistanceKm(current, shipment.Destination), nil
}

// AverageSpeed derives pairwise speeds over the log. Pairs with zero elapsed
// time are skipped; fewer than two points (or no usable pairs) yields an
// all-zero result flagged as insufficient.
func (s *analyticsService) AverageSpeed(ctx context.Context, shipmentID string) (*ports.SpeedStats, error) {
	points, err := s.trackingRepo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("average speed: %w", err)
	}
	return speedStats(points), nil
}

func speedStats(points []*domain.TrackingPoint) *ports.SpeedStats {
	stats := &ports.SpeedStats{}
	for _, p := range points {
		if p.SpeedKmh != nil {
			stats.RecordedSpeeds++
		}
	}
	if len(points) < 2 {
		stats.InsufficientData = true
		return stats
	}

	var speeds []float64
	for i := 1; i < len(points); i++ {
		hours := points[i].RecordedAt.Sub(points[i-1].RecordedAt).Hours()
		if hours <= 0 {
			continue
		}
		dist := geo.DistanceKm(points[i-1].Location, points[i].Location)
		speeds = append(speeds, dist/hours)
	}
	if len(speeds) == 0 {
		stats.InsufficientData = true
		return stats
	}

	var sum float64
	max, min := speeds[0], speeds[0]
	for _, v := range speeds {
		sum += v
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}

	stats.PairsUsed = len(speeds)
	stats.AverageKmh = roundTo(sum/float64(len(speeds)), 2)
	stats.MaxKmh = roundTo(max, 2)
	stats.MinKmh = roundTo(min, 2)
	return stats
}

// DetectStops reports every consecutive pair that moved less than 100 m over
// at least minStopMinutes. Adjacent qualifying pairs are not merged, so one
// long idle across several pings yields several overlapping entries.
func (s *analyticsService) DetectStops(ctx context.Context, shipmentID string, minStopMinutes float64) ([]domain.Stop, error) {
	if minStopMinutes <= 0 {
		minStopMinutes = DefaultMinStopMinutes
	}
	points, err := s.trackingRepo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("detect stops: %w", err)
	}

	var stops []domain.Stop
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]
		dist := geo.DistanceKm(prev.Location, curr.Location)
		minutes := curr.RecordedAt.Sub(prev.RecordedAt).Minutes()
		if dist >= stopRadiusKm || minutes < minStopMinutes {
			continue
		}

		note := prev.Note
		if note == "" {
			note = "unspecified stop"
		}
		stops = append(stops, domain.Stop{
			Location:        prev.Location,
			StartTime:       prev.RecordedAt,
			EndTime:         curr.RecordedAt,
			DurationMinutes: roundTo(minutes, 1),
			Note:            note,
		})
	}
	return stops, nil
}

// ValidateSequence scans the log for ordering and kinematic irregularities.
// It never fails on anomalous data; anomalies are the result.
func (s *analyticsService) ValidateSequence(ctx context.Context, shipmentID string) (*ports.SequenceReport, error) {
	points, err := s.trackingRepo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("validate sequence: %w", err)
	}

	anomalies := []domain.Anomaly{}
	for i := 1; i < len(points); i++ {
		prev, curr := points[i-1], points[i]

		if !curr.RecordedAt.After(prev.RecordedAt) {
			anomalies = append(anomalies, domain.Anomaly{
				Type:    domain.AnomalyTimeSequence,
				PointID: curr.ID,
				Message: "tracking point timestamp is not sequential",
			})
		}

		hours := curr.RecordedAt.Sub(prev.RecordedAt).Hours()
		if hours <= 0 {
			continue
		}
		speed := geo.DistanceKm(prev.Location, curr.Location) / hours
		if speed > domain.ImpossibleSpeedKmh {
			anomalies = append(anomalies, domain.Anomaly{
				Type:     domain.AnomalyImpossibleSpeed,
				PointID:  curr.ID,
				SpeedKmh: roundTo(speed, 2),
				Message:  fmt.Sprintf("impossible speed detected: %.0f km/h", speed),
			})
		}
	}

	return &ports.SequenceReport{
		Valid:         len(anomalies) == 0,
		Anomalies:     anomalies,
		PointsChecked: len(points),
	}, nil
}

// Summary assembles the composite tracking view for one shipment, including
// a nested ETA while the shipment is assigned or in transit.
func (s *analyticsService) Summary(ctx context.Context, shipmentID string) (*ports.TrackingSummary, error) {
	shipment, err := s.shipmentRepo.FindByID(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("tracking summary: %w", err)
	}
	points, err := s.trackingRepo.ListByShipment(ctx, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("tracking summary: %w", err)
	}

	summary := &ports.TrackingSummary{
		ShipmentID:          shipment.ID,
		TrackingNumber:      shipment.TrackingNumber,
		Status:              shipment.Status,
		Origin:              shipment.Origin,
		Destination:         shipment.Destination,
		OriginAddress:       shipment.OriginAddress,
		DestinationAddress:  shipment.DestinationAddress,
		EstimatedDistanceKm: shipment.EstimatedDistanceKm,
		PointCount:          len(points),
	}

	if len(points) == 0 {
		summary.Message = "no tracking data available yet"
		return summary, nil
	}

	latest := points[len(points)-1]
	summary.CurrentLocation = &ports.LatestPosition{
		Location:   latest.Location,
		RecordedAt: latest.RecordedAt,
		SpeedKmh:   latest.SpeedKmh,
	}
	summary.Deviation = deviationFromRoute(latest.Location, shipment.PlannedRoute, s.thresholdM)
	summary.Speed = speedStats(points)

	stops, err := s.DetectStops(ctx, shipmentID, DefaultMinStopMinutes)
	if err != nil {
		return nil, err
	}
	summary.StopsDetected = len(stops)

	if shipment.Status.InMotion() {
		eta, etaErr := s.estimator.EstimateArrival(latest.Location, shipment.Destination, latest.SpeedKmh)
		if etaErr != nil {
			// Stored points already passed validation; an ETA failure here
			// is logged and the summary served without it.
			s.log.Warn().Err(etaErr).Str("shipment_id", shipmentID).Msg("eta unavailable for summary")
		} else {
			summary.ETA = eta
		}
	}

	return summary, nil
}
