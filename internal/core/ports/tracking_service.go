package ports

import (
	"context"
	"time"

	"github.com/antu/logistics-system/internal/core/domain"
)

// RecordPingInput carries one GPS report submitted for a driver/shipment.
type RecordPingInput struct {
	DriverID   string
	ShipmentID string
	Location   domain.GeoPoint
	SpeedKmh   *float64 // optional observed speed
	Note       string
	RecordedAt time.Time // zero value = ingestion time
}

// Deviation describes how far a ping sits from the shipment's planned route.
type Deviation struct {
	DistanceFromRouteMeters float64 `json:"distance_from_route_meters"`
	IsDeviated              bool    `json:"is_deviated"`
}

// PingResult is returned by RecordPing. Deviation is nil when the shipment
// has no planned route (unavailable, not zero).
type PingResult struct {
	Point     *domain.TrackingPoint
	Deviation *Deviation
	// Duplicate is true when the exact ping was already processed and the
	// write was skipped.
	Duplicate bool
}

// TrackingService is the single write path into the tracking log.
type TrackingService interface {
	RecordPing(ctx context.Context, in RecordPingInput) (*PingResult, error)
}

// SpeedStats aggregates pairwise speeds over a shipment's tracking log.
type SpeedStats struct {
	AverageKmh float64 `json:"average_speed_kmh"`
	MaxKmh     float64 `json:"max_speed_kmh"`
	MinKmh     float64 `json:"min_speed_kmh"`
	// PairsUsed counts consecutive pairs with positive elapsed time.
	PairsUsed int `json:"pairs_used"`
	// RecordedSpeeds counts points that carried an observed speed.
	RecordedSpeeds int `json:"recorded_speeds"`
	// InsufficientData is set when fewer than two points exist.
	InsufficientData bool `json:"insufficient_data,omitempty"`
}

// SequenceReport is the outcome of validating a tracking log's ordering and
// kinematics. Anomalies are data, never errors.
type SequenceReport struct {
	Valid         bool             `json:"valid"`
	Anomalies     []domain.Anomaly `json:"anomalies"`
	PointsChecked int              `json:"points_checked"`
}

// ETAResult is the arrival estimate for a shipment in motion.
type ETAResult struct {
	RemainingKm  float64   `json:"remaining_distance_km"`
	SpeedUsedKmh float64   `json:"speed_used_kmh"`
	EtaMinutes   float64   `json:"estimated_time_minutes"`
	Eta          time.Time `json:"eta"`
}

// LatestPosition is the most recent tracking point in summary form.
type LatestPosition struct {
	Location   domain.GeoPoint `json:"location"`
	RecordedAt time.Time       `json:"recorded_at"`
	SpeedKmh   *float64        `json:"speed_kmh,omitempty"`
}

// TrackingSummary is the composite read model assembled for one shipment.
type TrackingSummary struct {
	ShipmentID          string                `json:"shipment_id"`
	TrackingNumber      string                `json:"tracking_number"`
	Status              domain.ShipmentStatus `json:"status"`
	Origin              domain.GeoPoint       `json:"origin"`
	Destination         domain.GeoPoint       `json:"destination"`
	OriginAddress       string                `json:"origin_address,omitempty"`
	DestinationAddress  string                `json:"destination_address,omitempty"`
	EstimatedDistanceKm float64               `json:"estimated_distance_km"`
	PointCount          int                   `json:"tracking_points_count"`
	CurrentLocation     *LatestPosition       `json:"current_location,omitempty"`
	Deviation           *Deviation            `json:"route_deviation,omitempty"`
	Speed               *SpeedStats           `json:"speed_info,omitempty"`
	StopsDetected       int                   `json:"stops_detected"`
	ETA                 *ETAResult            `json:"eta,omitempty"`
	// Message is set when no tracking data exists yet.
	Message string `json:"message,omitempty"`
}

// AnalyticsService derives read-only metrics from the ordered tracking log.
// All operations are idempotent: repeated calls without intervening writes
// yield identical results.
type AnalyticsService interface {
	TotalDistanceTraveled(ctx context.Context, shipmentID string) (float64, error)
	RemainingDistance(ctx context.Context, shipmentID string, current domain.GeoPoint) (float64, error)
	AverageSpeed(ctx context.Context, shipmentID string) (*SpeedStats, error)
	DetectStops(ctx context.Context, shipmentID string, minStopMinutes float64) ([]domain.Stop, error)
	ValidateSequence(ctx context.Context, shipmentID string) (*SequenceReport, error)
	Summary(ctx context.Context, shipmentID string) (*TrackingSummary, error)
}
