package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/api/metrics"
	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/ports"
)

type vehicleService struct {
	vehicleRepo  ports.VehicleRepository
	shipmentRepo ports.ShipmentRepository
	log          zerolog.Logger
}

// NewVehicleService returns the VehicleService implementation.
func NewVehicleService(
	vehicleRepo ports.VehicleRepository,
	shipmentRepo ports.ShipmentRepository,
	log zerolog.Logger,
) ports.VehicleService {
	return &vehicleService{
		vehicleRepo:  vehicleRepo,
		shipmentRepo: shipmentRepo,
		log:          log,
	}
}

// preferredTypes maps a shipment's weight and distance onto the vehicle
// classes to try first: motorcycles for short light runs, vans/pickups for
// mid-range loads, trucks for everything heavy or far.
func preferredTypes(weightKg, distanceKm float64) []domain.VehicleType {
	switch {
	case distanceKm < 5 && weightKg < 10:
		return []domain.VehicleType{domain.VehicleMotorcycle}
	case distanceKm < 20 && weightKg < 500:
		return []domain.VehicleType{domain.VehicleVan, domain.VehiclePickup}
	default:
		return []domain.VehicleType{domain.VehicleTruck}
	}
}

// SelectOptimal picks the best-fit vehicle among active, available inventory
// with sufficient capacity. When no vehicle of the preferred class exists,
// the first suitable candidate wins regardless of class; candidates arrive
// in id order, so the fallback is deterministic.
func (s *vehicleService) SelectOptimal(ctx context.Context, weightKg, distanceKm float64) (*domain.Vehicle, error) {
	suitable, err := s.vehicleRepo.ListSuitable(ctx, weightKg)
	if err != nil {
		return nil, fmt.Errorf("select vehicle: %w", err)
	}
	if len(suitable) == 0 {
		metrics.VehicleSelectionsTotal.WithLabelValues("none_suitable").Inc()
		return nil, fmt.Errorf("select vehicle: %w", domain.ErrNoSuitableVehicle)
	}

	for _, preferred := range preferredTypes(weightKg, distanceKm) {
		for _, v := range suitable {
			if v.Type == preferred {
				metrics.VehicleSelectionsTotal.WithLabelValues("preferred").Inc()
				s.log.Info().Str("vehicle_id", v.ID).Str("type", string(v.Type)).Msg("vehicle selected")
				return v, nil
			}
		}
	}

	metrics.VehicleSelectionsTotal.WithLabelValues("fallback").Inc()
	fallback := suitable[0]
	s.log.Info().Str("vehicle_id", fallback.ID).Str("type", string(fallback.Type)).Msg("vehicle selected by fallback")
	return fallback, nil
}

// MaintenanceScore rates the vehicle's accumulated wear against its class
// service interval on a 0-100 scale, 100 meaning maintenance is due.
func (s *vehicleService) MaintenanceScore(ctx context.Context, vehicleID string) (*ports.MaintenanceReport, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("maintenance score: %w", err)
	}

	totalKm, err := s.shipmentRepo.DeliveredDistanceByVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("maintenance score: %w", err)
	}

	interval := vehicle.Type.MaintenanceIntervalKm()
	score := math.Min(100, totalKm/interval*100)

	var status, recommendation string
	switch {
	case score >= 90:
		status = "urgent"
		recommendation = fmt.Sprintf("maintenance urgently needed, %.0f km covered", totalKm)
	case score >= 70:
		status = "soon"
		recommendation = fmt.Sprintf("schedule maintenance soon, %.0f km covered", totalKm)
	case score >= 50:
		status = "watch"
		recommendation = fmt.Sprintf("monitor vehicle, %.0f km covered", totalKm)
	default:
		status = "good"
		recommendation = fmt.Sprintf("vehicle in good condition, %.0f km covered", totalKm)
	}

	return &ports.MaintenanceReport{
		Score:             roundTo(score, 2),
		Status:            status,
		TotalKm:           roundTo(totalKm, 2),
		NextMaintenanceKm: interval,
		Recommendation:    recommendation,
	}, nil
}
