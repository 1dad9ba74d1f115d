package domain

import (
	"errors"
	"time"
)

var ErrInvalidSpeed = errors.New("speed must not be negative")

// TrackingPoint is one observed position of a shipment in transit. Points are
// append-only: once written they are never mutated or deleted, and consumers
// rely on the log being ordered by RecordedAt ascending.
type TrackingPoint struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	ShipmentID string    `json:"shipment_id" bson:"shipment_id"`
	DriverID   string    `json:"driver_id" bson:"driver_id"`
	Location   GeoPoint  `json:"location" bson:"location"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty" bson:"speed_kmh,omitempty"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at" bson:"recorded_at"`
}

// AnomalyType classifies a tracking-log irregularity. Anomalies are data
// returned by sequence validation, never errors.
type AnomalyType string

const (
	// AnomalyTimeSequence flags a point whose timestamp does not advance
	// past its predecessor.
	AnomalyTimeSequence AnomalyType = "time_sequence"
	// AnomalyImpossibleSpeed flags a consecutive pair implying a speed no
	// urban delivery vehicle reaches.
	AnomalyImpossibleSpeed AnomalyType = "impossible_speed"
)

// ImpossibleSpeedKmh is the threshold above which a computed pairwise speed
// is flagged as an anomaly.
const ImpossibleSpeedKmh = 150.0

// Anomaly describes a single irregularity found in a shipment's tracking log.
type Anomaly struct {
	Type     AnomalyType `json:"type"`
	PointID  string      `json:"point_id"`
	SpeedKmh float64     `json:"speed_kmh,omitempty"`
	Message  string      `json:"message"`
}

// Stop is a detected idle interval between two consecutive tracking points.
// Adjacent qualifying pairs are reported independently, so a driver idling
// across three or more pings produces one entry per pair.
type Stop struct {
	Location        GeoPoint  `json:"location"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes float64   `json:"duration_minutes"`
	Note            string    `json:"note"`
}
