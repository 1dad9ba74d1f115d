package domain

import (
	"errors"
	"time"
)

// DriverStatus represents a driver's duty state.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnDuty    DriverStatus = "on_duty"
	DriverOffDuty   DriverStatus = "off_duty"
)

var ErrDriverNotFound = errors.New("driver not found")
var ErrNoEligibleDriver = errors.New("no eligible driver within range")

// MaxActiveShipments is the workload cap: a driver may carry at most this
// many assigned + in-transit shipments at once.
const MaxActiveShipments = 5

// Driver models a delivery driver. The current position lives in a separate
// DriverLocation record, not on the driver itself.
type Driver struct {
	ID            string       `json:"id" bson:"_id,omitempty"`
	Name          string       `json:"name" bson:"name"`
	LicenseNumber string       `json:"license_number" bson:"license_number"`
	Status        DriverStatus `json:"status" bson:"status"`
	VehicleID     string       `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	IsActive      bool         `json:"is_active" bson:"is_active"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
}

// Dispatchable reports whether the driver can be considered for assignment
// at all: active and not off duty.
func (d *Driver) Dispatchable() bool {
	return d.IsActive && (d.Status == DriverAvailable || d.Status == DriverOnDuty)
}

// DriverLocation is the mutable current-position snapshot for one driver.
// Exactly one record per driver, created lazily on the first ping and
// overwritten on every subsequent one (last write wins).
type DriverLocation struct {
	DriverID  string    `json:"driver_id" bson:"_id"`
	Location  GeoPoint  `json:"location" bson:"location"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
