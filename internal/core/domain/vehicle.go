package domain

import (
	"errors"
	"time"
)

// VehicleType classifies a vehicle by class.
type VehicleType string

const (
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleVan        VehicleType = "van"
	VehicleTruck      VehicleType = "truck"
	VehiclePickup     VehicleType = "pickup"
)

// VehicleStatus represents the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInUse       VehicleStatus = "in_use"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

var ErrVehicleNotFound = errors.New("vehicle not found")
var ErrNoSuitableVehicle = errors.New("no suitable vehicle available")

// maintenanceIntervalKm is the service interval per vehicle class.
var maintenanceIntervalKm = map[VehicleType]float64{
	VehicleMotorcycle: 3000,
	VehicleVan:        5000,
	VehicleTruck:      8000,
	VehiclePickup:     6000,
}

const defaultMaintenanceIntervalKm = 5000

// MaintenanceIntervalKm returns the service interval for the vehicle type.
func (t VehicleType) MaintenanceIntervalKm() float64 {
	if interval, ok := maintenanceIntervalKm[t]; ok {
		return interval
	}
	return defaultMaintenanceIntervalKm
}

// Vehicle models a delivery vehicle in the fleet.
type Vehicle struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	PlateNumber string        `json:"plate_number" bson:"plate_number"`
	Type        VehicleType   `json:"vehicle_type" bson:"vehicle_type"`
	Model       string        `json:"model,omitempty" bson:"model,omitempty"`
	CapacityKg  float64       `json:"capacity_kg" bson:"capacity_kg"`
	Status      VehicleStatus `json:"status" bson:"status"`
	IsActive    bool          `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

// Suitable reports whether the vehicle can be offered for a shipment of the
// given weight: active, available, and with enough capacity.
func (v *Vehicle) Suitable(weightKg float64) bool {
	return v.IsActive && v.Status == VehicleAvailable && v.CapacityKg >= weightKg
}
