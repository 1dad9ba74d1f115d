package domain

import (
	"errors"
	"time"
)

// ShipmentStatus represents the lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusCreated   ShipmentStatus = "created"
	StatusAssigned  ShipmentStatus = "assigned"
	StatusInTransit ShipmentStatus = "in_transit"
	StatusDelivered ShipmentStatus = "delivered"
	StatusDelayed   ShipmentStatus = "delayed"
	StatusCancelled ShipmentStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[ShipmentStatus][]ShipmentStatus{
	StatusCreated:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusDelayed, StatusCancelled},
	StatusDelayed:   {StatusInTransit, StatusDelivered, StatusCancelled},
}

var ErrInvalidTransition = errors.New("invalid status transition")
var ErrShipmentNotFound = errors.New("shipment not found")
var ErrShipmentClosed = errors.New("shipment is in a terminal status")
var ErrRouteNotFound = errors.New("shipment has no planned route")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible. Pings for
// terminal shipments are rejected.
func (s ShipmentStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// InMotion reports whether an ETA is meaningful for the shipment.
func (s ShipmentStatus) InMotion() bool {
	return s == StatusAssigned || s == StatusInTransit
}

// Shipment is the core aggregate root.
type Shipment struct {
	ID                  string         `json:"id" bson:"_id,omitempty"`
	TrackingNumber      string         `json:"tracking_number" bson:"tracking_number"`
	Origin              GeoPoint       `json:"origin" bson:"origin"`
	Destination         GeoPoint       `json:"destination" bson:"destination"`
	OriginAddress       string         `json:"origin_address,omitempty" bson:"origin_address,omitempty"`
	DestinationAddress  string         `json:"destination_address,omitempty" bson:"destination_address,omitempty"`
	PlannedRoute        Route          `json:"planned_route,omitempty" bson:"planned_route,omitempty"`
	Status              ShipmentStatus `json:"status" bson:"status"`
	DriverID            string         `json:"driver_id,omitempty" bson:"driver_id,omitempty"`
	VehicleID           string         `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	WeightKg            float64        `json:"weight_kg" bson:"weight_kg"`
	EstimatedDistanceKm float64        `json:"estimated_distance_km" bson:"estimated_distance_km"`
	CreatedAt           time.Time      `json:"created_at" bson:"created_at"`
	AssignedAt          *time.Time     `json:"assigned_at,omitempty" bson:"assigned_at,omitempty"`
	DeliveredAt         *time.Time     `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
}
