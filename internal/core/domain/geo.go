package domain

import "errors"

var ErrInvalidCoordinate = errors.New("coordinate out of range")

// GeoPoint is an immutable geographic position. Compared by value, no identity.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" bson:"longitude"`
}

// Validate reports ErrInvalidCoordinate when the point lies outside the
// valid latitude [-90,90] or longitude [-180,180] range.
func (p GeoPoint) Validate() error {
	if p.Latitude < -90 || p.Latitude > 90 {
		return ErrInvalidCoordinate
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Route is a planned path as an ordered polyline of waypoints.
type Route []GeoPoint
