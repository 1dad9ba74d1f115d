package ports

import (
	"context"

	"github.com/antu/logistics-system/internal/core/domain"
)

// ShipmentRepository defines persistence operations for shipments.
type ShipmentRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Shipment, error)
	// ListActiveByDriver returns the driver's assigned and in-transit
	// shipments, the set that counts toward the workload cap.
	ListActiveByDriver(ctx context.Context, driverID string) ([]*domain.Shipment, error)
	// DeliveredDistanceByVehicle sums estimated_distance_km over delivered
	// shipments carried by the given vehicle (cumulative wear input).
	DeliveredDistanceByVehicle(ctx context.Context, vehicleID string) (float64, error)
}

// DriverRepository defines persistence for drivers and their current
// location snapshots. Locations live in their own single-record-per-driver
// collection with upsert semantics; they are never historized.
type DriverRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Driver, error)
	// ListDispatchable returns active drivers whose status is available or
	// on_duty, ordered by id so candidate enumeration is deterministic.
	ListDispatchable(ctx context.Context) ([]*domain.Driver, error)
	// UpsertLocation overwrites the driver's current location, last write wins.
	UpsertLocation(ctx context.Context, loc *domain.DriverLocation) error
	FindLocation(ctx context.Context, driverID string) (*domain.DriverLocation, error)
	// ListLocations bulk-fetches current locations for the given drivers.
	// Drivers without a location snapshot are absent from the result.
	ListLocations(ctx context.Context, driverIDs []string) (map[string]*domain.DriverLocation, error)
}

// VehicleRepository defines persistence operations for vehicles.
type VehicleRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
	// ListSuitable returns active, available vehicles with capacity_kg >=
	// minCapacityKg, ordered by id.
	ListSuitable(ctx context.Context, minCapacityKg float64) ([]*domain.Vehicle, error)
}

// TrackingRepository is the append-only store for the tracking log.
type TrackingRepository interface {
	// Append persists a new tracking point. Points are immutable once written.
	Append(ctx context.Context, p *domain.TrackingPoint) error
	// ListByShipment returns the shipment's full log in append order, which
	// under normal operation is recorded_at ascending — the ordering every
	// analytics consumer relies on. Out-of-order appends are surfaced by
	// sequence validation, not reordered here.
	ListByShipment(ctx context.Context, shipmentID string) ([]*domain.TrackingPoint, error)
}
