package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/antu/logistics-system/internal/api/metrics"
	"github.com/antu/logistics-system/internal/core/domain"
	"github.com/antu/logistics-system/internal/core/geo"
	"github.com/antu/logistics-system/internal/core/ports"
)

// DefaultMaxSearchRadiusKm bounds the nearest-driver search when the caller
// does not supply a radius.
const DefaultMaxSearchRadiusKm = 50.0

type dispatchService struct {
	driverRepo   ports.DriverRepository
	shipmentRepo ports.ShipmentRepository
	vehicleRepo  ports.VehicleRepository
	log          zerolog.Logger
}

// NewDispatchService returns the DispatchService implementation.
func NewDispatchService(
	driverRepo ports.DriverRepository,
	shipmentRepo ports.ShipmentRepository,
	vehicleRepo ports.VehicleRepository,
	log zerolog.Logger,
) ports.DispatchService {
	return &dispatchService{
		driverRepo:   driverRepo,
		shipmentRepo: shipmentRepo,
		vehicleRepo:  vehicleRepo,
		log:          log,
	}
}

// FindNearest scans dispatchable drivers in id order and returns the closest
// eligible one within the search radius. Ties resolve to the first candidate
// encountered, which id ordering makes deterministic. This read is eventually
// consistent; the assignment transaction re-verifies with CheckAvailability.
func (s *dispatchService) FindNearest(ctx context.Context, in ports.FindNearestInput) (*ports.NearestDriverResult, error) {
	if err := in.Origin.Validate(); err != nil {
		return nil, fmt.Errorf("find nearest: %w", err)
	}
	maxKm := in.MaxDistanceKm
	if maxKm <= 0 {
		maxKm = DefaultMaxSearchRadiusKm
	}

	drivers, err := s.driverRepo.ListDispatchable(ctx)
	if err != nil {
		return nil, fmt.Errorf("find nearest: %w", err)
	}

	ids := make([]string, 0, len(drivers))
	for _, d := range drivers {
		ids = append(ids, d.ID)
	}
	locations, err := s.driverRepo.ListLocations(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find nearest: %w", err)
	}

	var best *ports.NearestDriverResult
	for _, driver := range drivers {
		loc, ok := locations[driver.ID]
		if !ok {
			continue // never pinged, position unknown
		}

		avail, err := s.eligibility(ctx, driver, in.WeightKg)
		if err != nil {
			return nil, fmt.Errorf("find nearest: %w", err)
		}
		if !avail.Available {
			continue
		}

		dist := geo.DistanceKm(loc.Location, in.Origin)
		if dist > maxKm {
			continue
		}
		if best == nil || dist < best.DistanceKm {
			best = &ports.NearestDriverResult{Driver: driver, DistanceKm: dist}
		}
	}

	if best == nil {
		metrics.DriverSearchesTotal.WithLabelValues("none_eligible").Inc()
		return nil, fmt.Errorf("find nearest: %w", domain.ErrNoEligibleDriver)
	}

	metrics.DriverSearchesTotal.WithLabelValues("matched").Inc()
	s.log.Info().
		Str("driver_id", best.Driver.ID).
		Float64("distance_km", best.DistanceKm).
		Msg("nearest driver matched")
	return best, nil
}

// CheckAvailability surfaces each eligibility condition individually. The
// first failing check short-circuits with its reason code; an unknown driver
// is a reason, not an error, so assignment flows can branch on the result.
func (s *dispatchService) CheckAvailability(ctx context.Context, driverID string, weightKg float64) (*ports.Availability, error) {
	driver, err := s.driverRepo.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, domain.ErrDriverNotFound) {
			return &ports.Availability{
				Available: false,
				Reason:    ports.ReasonDriverNotFound,
				Detail:    "driver does not exist",
			}, nil
		}
		return nil, fmt.Errorf("check availability: %w", err)
	}
	return s.eligibility(ctx, driver, weightKg)
}

// eligibility runs the ordered eligibility checks against an already-loaded
// driver: active, on duty, under the workload cap, and carrying a vehicle
// with enough capacity.
func (s *dispatchService) eligibility(ctx context.Context, driver *domain.Driver, weightKg float64) (*ports.Availability, error) {
	if !driver.IsActive {
		return &ports.Availability{
			Available: false,
			Reason:    ports.ReasonDriverInactive,
			Detail:    "driver is not active",
		}, nil
	}
	if driver.Status == domain.DriverOffDuty {
		return &ports.Availability{
			Available: false,
			Reason:    ports.ReasonDriverOffDuty,
			Detail:    "driver is off duty",
		}, nil
	}

	workload, err := s.workload(ctx, driver.ID)
	if err != nil {
		return nil, err
	}
	if !workload.CanAcceptMore {
		return &ports.Availability{
			Available:       false,
			Reason:          ports.ReasonWorkloadFull,
			Detail:          fmt.Sprintf("driver has maximum workload (%d active shipments)", workload.TotalActive),
			ActiveShipments: workload.TotalActive,
		}, nil
	}

	if driver.VehicleID == "" {
		return &ports.Availability{
			Available:       false,
			Reason:          ports.ReasonNoVehicle,
			Detail:          "driver has no vehicle assigned",
			ActiveShipments: workload.TotalActive,
		}, nil
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, driver.VehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) {
			return &ports.Availability{
				Available:       false,
				Reason:          ports.ReasonNoVehicle,
				Detail:          "assigned vehicle no longer exists",
				ActiveShipments: workload.TotalActive,
			}, nil
		}
		return nil, fmt.Errorf("check availability: %w", err)
	}
	if vehicle.CapacityKg < weightKg {
		return &ports.Availability{
			Available:       false,
			Reason:          ports.ReasonVehicleTooSmall,
			Detail:          fmt.Sprintf("vehicle capacity (%.0f kg) insufficient for shipment (%.0f kg)", vehicle.CapacityKg, weightKg),
			ActiveShipments: workload.TotalActive,
		}, nil
	}

	return &ports.Availability{
		Available:       true,
		Reason:          ports.ReasonAvailable,
		Detail:          "driver is available",
		ActiveShipments: workload.TotalActive,
	}, nil
}

// ActiveWorkload reports the driver's current assignment load. Unlike
// CheckAvailability, an unknown driver here is an error.
func (s *dispatchService) ActiveWorkload(ctx context.Context, driverID string) (*ports.Workload, error) {
	if _, err := s.driverRepo.FindByID(ctx, driverID); err != nil {
		return nil, fmt.Errorf("active workload: %w", err)
	}
	return s.workload(ctx, driverID)
}

func (s *dispatchService) workload(ctx context.Context, driverID string) (*ports.Workload, error) {
	shipments, err := s.shipmentRepo.ListActiveByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("active workload: %w", err)
	}

	w := &ports.Workload{}
	for _, sh := range shipments {
		switch sh.Status {
		case domain.StatusAssigned:
			w.Assigned++
		case domain.StatusInTransit:
			w.InTransit++
		}
		w.PendingDistanceKm += sh.EstimatedDistanceKm
	}
	w.TotalActive = w.Assigned + w.InTransit
	w.PendingDistanceKm = roundTo(w.PendingDistanceKm, 2)
	w.Status = workloadBand(w.TotalActive)
	w.CanAcceptMore = w.TotalActive < domain.MaxActiveShipments
	return w, nil
}

func workloadBand(totalActive int) ports.WorkloadStatus {
	switch {
	case totalActive == 0:
		return ports.WorkloadFree
	case totalActive <= 2:
		return ports.WorkloadLight
	case totalActive <= 5:
		return ports.WorkloadModerate
	default:
		return ports.WorkloadHeavy
	}
}
