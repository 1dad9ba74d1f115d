package service

import (
	"fmt"
	"math"
	"time"

	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/geo"
	"github.com/antu/logistics-system/internal/core/ports"
)

// FallbackSpeedKmh is the assumed average urban delivery speed, used when no
// observed speed is available.
const FallbackSpeedKmh = 40.0

// handlingBufferMinutes pads door-to-door estimates for pickup and handoff.
const handlingBufferMinutes = 30

// Estimator computes arrival estimates from a position, a destination, and a
// speed. Pure apart from the clock, which is injectable for tests.
type Estimator struct {
	now func() time.Time
}

func NewEstimator() *Estimator {
	return &Estimator{now: time.Now}
}

// EstimateArrival returns the remaining distance, the speed used, and the
// projected arrival time. A nil or zero speed silently falls back to
// FallbackSpeedKmh; an explicitly negative speed is rejected.
func (e *Estimator) EstimateArrival(current, destination domain.GeoPoint, speedKmh *float64) (*ports.ETAResult, error) {
	if err := current.Validate(); err != nil {
		return nil, fmt.Errorf("estimate arrival: %w", err)
	}
	if err := destination.Validate(); err != nil {
		return nil, fmt.Errorf("estimate arrival: %w", err)
	}
	if speedKmh != nil && *speedKmh < 0 {
		return nil, fmt.Errorf("estimate arrival: %w", domain.ErrInvalidSpeed)
	}

	speedUsed := FallbackSpeedKmh
	if speedKmh != nil && *speedKmh > 0 {
		speedUsed = *speedKmh
	}

	remainingKm := geo.DistanceKm(current, destination)
	etaMinutes := roundTo(remainingKm/speedUsed*60, 1)

	return &ports.ETAResult{
		RemainingKm:  remainingKm,
		SpeedUsedKmh: roundTo(speedUsed, 2),
		EtaMinutes:   etaMinutes,
		Eta:          e.now().UTC().Add(time.Duration(etaMinutes * float64(time.Minute))),
	}, nil
}

// EstimateDeliveryMinutes is the coarse door-to-door estimate used at
// shipment creation: travel at the urban fallback speed plus a fixed
// handling buffer. Returns whole minutes.
func EstimateDeliveryMinutes(distanceKm float64) int {
	travelMinutes := distanceKm / FallbackSpeedKmh * 60
	return int(math.Floor(travelMinutes+handlingBufferMinutes + 0.5))
}

// roundTo rounds v to the given number of decimal places, half up.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Floor(v*scale+0.5) / scale
}
