package handler

import (
	"time"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
)

type nearestDriverRequest struct {
	Origin        geoPointRequest `json:"origin"`
	WeightKg      float64         `json:"weight_kg" validate:"gt=0"`
	MaxDistanceKm float64         `json:"max_distance_km" validate:"min=0"`
}

func toFindNearestInput(r nearestDriverRequest) ports.FindNearestInput {
	return ports.FindNearestInput{
		Origin:        r.Origin.toDomain(),
		WeightKg:      r.WeightKg,
		MaxDistanceKm: r.MaxDistanceKm,
	}
}

type selectVehicleRequest struct {
	WeightKg   float64 `json:"weight_kg"   validate:"gt=0"`
	DistanceKm float64 `json:"distance_km" validate:"min=0"`
}

type driverLocationResponse struct {
	DriverID  string          `json:"driver_id"`
	Location  domain.GeoPoint `json:"location"`
	UpdatedAt time.Time       `json:"updated_at"`
	// Source is "cache" when served from the hot store, "database" otherwise.
	Source string `json:"source"`
}
