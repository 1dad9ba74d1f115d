package handler

import (
	"time"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
)

type geoPointRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" validate:"min=-180,max=180"`
}

func (r geoPointRequest) toDomain() domain.GeoPoint {
	return domain.GeoPoint{Latitude: r.Lat, Longitude: r.Lon}
}

type pingRequest struct {
	DriverID   string          `json:"driver_id"   validate:"required"`
	ShipmentID string          `json:"shipment_id" validate:"required"`
	Location   geoPointRequest `json:"location"`
	SpeedKmh   *float64        `json:"speed_kmh,omitempty"`
	Note       string          `json:"note,omitempty"`
	// RecordedAt defaults to ingestion time when omitted.
	RecordedAt time.Time `json:"recorded_at,omitempty"`
}

func toPingInput(r pingRequest) ports.RecordPingInput {
	return ports.RecordPingInput{
		DriverID:   r.DriverID,
		ShipmentID: r.ShipmentID,
		Location:   r.Location.toDomain(),
		SpeedKmh:   r.SpeedKmh,
		Note:       r.Note,
		RecordedAt: r.RecordedAt,
	}
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type pingResponse struct {
	Point     *domain.TrackingPoint `json:"point,omitempty"`
	Deviation *ports.Deviation      `json:"route_deviation,omitempty"`
	Duplicate bool                  `json:"duplicate"`
}

type distanceResponse struct {
	ShipmentID      string  `json:"shipment_id"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

type stopsResponse struct {
	ShipmentID     string        `json:"shipment_id"`
	MinStopMinutes float64       `json:"min_stop_minutes"`
	Stops          []domain.Stop `json:"stops"`
}
