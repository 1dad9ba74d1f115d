package ports

import (
	"context"

	"github.com/antu/logistics-system/internal/core/domain"
)

// FindNearestInput carries the search parameters for driver matching.
type FindNearestInput struct {
	Origin        domain.GeoPoint
	WeightKg      float64
	MaxDistanceKm float64 // zero = default radius (50 km)
}

// NearestDriverResult pairs the selected driver with their distance to the
// pickup origin.
type NearestDriverResult struct {
	Driver     *domain.Driver `json:"driver"`
	DistanceKm float64        `json:"distance_km"`
}

// Availability reason codes. The first failing eligibility check wins.
const (
	ReasonAvailable       = "available"
	ReasonDriverNotFound  = "driver_not_found"
	ReasonDriverInactive  = "driver_inactive"
	ReasonDriverOffDuty   = "driver_off_duty"
	ReasonWorkloadFull    = "workload_full"
	ReasonNoVehicle       = "no_vehicle_assigned"
	ReasonVehicleTooSmall = "vehicle_capacity_insufficient"
)

// Availability is the outcome of a per-driver eligibility check.
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
	// Detail is a human-readable explanation of the failing check.
	Detail          string `json:"detail,omitempty"`
	ActiveShipments int    `json:"active_shipments"`
}

// WorkloadStatus bands a driver's active shipment count.
type WorkloadStatus string

const (
	WorkloadFree     WorkloadStatus = "free"     // 0 active
	WorkloadLight    WorkloadStatus = "light"    // 1-2 active
	WorkloadModerate WorkloadStatus = "moderate" // 3-5 active
	WorkloadHeavy    WorkloadStatus = "heavy"    // >5 active
)

// Workload summarizes a driver's current assignment load.
type Workload struct {
	Assigned          int            `json:"assigned_shipments"`
	InTransit         int            `json:"in_transit_shipments"`
	TotalActive       int            `json:"total_active"`
	PendingDistanceKm float64        `json:"pending_distance_km"`
	Status            WorkloadStatus `json:"workload_status"`
	CanAcceptMore     bool           `json:"can_accept_more"`
}

// DispatchService matches shipments to drivers at assignment time. Reads are
// eventually consistent; callers re-run CheckAvailability inside the
// transaction that commits the assignment.
type DispatchService interface {
	// FindNearest returns the closest eligible driver within the search
	// radius, or domain.ErrNoEligibleDriver when none qualifies.
	FindNearest(ctx context.Context, in FindNearestInput) (*NearestDriverResult, error)
	CheckAvailability(ctx context.Context, driverID string, weightKg float64) (*Availability, error)
	ActiveWorkload(ctx context.Context, driverID string) (*Workload, error)
}

// MaintenanceReport scores a vehicle's wear against its service interval.
type MaintenanceReport struct {
	Score             float64 `json:"score"`
	Status            string  `json:"status"` // urgent | soon | watch | good
	TotalKm           float64 `json:"total_distance_km"`
	NextMaintenanceKm float64 `json:"next_maintenance_km"`
	Recommendation    string  `json:"recommendation"`
}

// VehicleService selects vehicles for shipments and tracks fleet wear.
type VehicleService interface {
	// SelectOptimal returns the best-fit available vehicle for the given
	// weight and distance, or domain.ErrNoSuitableVehicle.
	SelectOptimal(ctx context.Context, weightKg, distanceKm float64) (*domain.Vehicle, error)
	MaintenanceScore(ctx context.Context, vehicleID string) (*MaintenanceReport, error)
}
