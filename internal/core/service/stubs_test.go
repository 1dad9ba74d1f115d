package service

import (
	"context"
	"fmt"

	"github.com/antu/logistics-system/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests
// ---------------------------------------------------------------------------

type stubShipmentRepo struct {
	shipments map[string]*domain.Shipment
	vehicleKm map[string]float64
	err       error // if set, every method returns this error
}

func newStubShipmentRepo() *stubShipmentRepo {
	return &stubShipmentRepo{
		shipments: make(map[string]*domain.Shipment),
		vehicleKm: make(map[string]float64),
	}
}

func (r *stubShipmentRepo) FindByID(_ context.Context, id string) (*domain.Shipment, error) {
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.shipments[id]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *stubShipmentRepo) ListActiveByDriver(_ context.Context, driverID string) ([]*domain.Shipment, error) {
	if r.err != nil {
		return nil, r.err
	}
	var active []*domain.Shipment
	for _, s := range r.shipments {
		if s.DriverID != driverID {
			continue
		}
		if s.Status == domain.StatusAssigned || s.Status == domain.StatusInTransit {
			clone := *s
			active = append(active, &clone)
		}
	}
	return active, nil
}

func (r *stubShipmentRepo) DeliveredDistanceByVehicle(_ context.Context, vehicleID string) (float64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.vehicleKm[vehicleID], nil
}

type stubDriverRepo struct {
	drivers   map[string]*domain.Driver
	order     []string // id order used by ListDispatchable
	locations map[string]*domain.DriverLocation
	upserts   int
}

func newStubDriverRepo() *stubDriverRepo {
	return &stubDriverRepo{
		drivers:   make(map[string]*domain.Driver),
		locations: make(map[string]*domain.DriverLocation),
	}
}

func (r *stubDriverRepo) add(d *domain.Driver) {
	r.drivers[d.ID] = d
	r.order = append(r.order, d.ID)
}

func (r *stubDriverRepo) FindByID(_ context.Context, id string) (*domain.Driver, error) {
	d, ok := r.drivers[id]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDriverRepo) ListDispatchable(_ context.Context) ([]*domain.Driver, error) {
	var out []*domain.Driver
	for _, id := range r.order {
		d := r.drivers[id]
		if d.Dispatchable() {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubDriverRepo) UpsertLocation(_ context.Context, loc *domain.DriverLocation) error {
	clone := *loc
	r.locations[loc.DriverID] = &clone
	r.upserts++
	return nil
}

func (r *stubDriverRepo) FindLocation(_ context.Context, driverID string) (*domain.DriverLocation, error) {
	loc, ok := r.locations[driverID]
	if !ok {
		return nil, domain.ErrDriverNotFound
	}
	clone := *loc
	return &clone, nil
}

func (r *stubDriverRepo) ListLocations(_ context.Context, driverIDs []string) (map[string]*domain.DriverLocation, error) {
	out := make(map[string]*domain.DriverLocation, len(driverIDs))
	for _, id := range driverIDs {
		if loc, ok := r.locations[id]; ok {
			clone := *loc
			out[id] = &clone
		}
	}
	return out, nil
}

type stubVehicleRepo struct {
	vehicles map[string]*domain.Vehicle
	order    []string
}

func newStubVehicleRepo() *stubVehicleRepo {
	return &stubVehicleRepo{vehicles: make(map[string]*domain.Vehicle)}
}

func (r *stubVehicleRepo) add(v *domain.Vehicle) {
	r.vehicles[v.ID] = v
	r.order = append(r.order, v.ID)
}

func (r *stubVehicleRepo) FindByID(_ context.Context, id string) (*domain.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.ErrVehicleNotFound
	}
	clone := *v
	return &clone, nil
}

func (r *stubVehicleRepo) ListSuitable(_ context.Context, minCapacityKg float64) ([]*domain.Vehicle, error) {
	var out []*domain.Vehicle
	for _, id := range r.order {
		v := r.vehicles[id]
		if v.Suitable(minCapacityKg) {
			clone := *v
			out = append(out, &clone)
		}
	}
	return out, nil
}

// stubTrackingRepo preserves append order, mirroring the real store.
type stubTrackingRepo struct {
	points    map[string][]*domain.TrackingPoint
	appendErr error
	seq       int
}

func newStubTrackingRepo() *stubTrackingRepo {
	return &stubTrackingRepo{points: make(map[string][]*domain.TrackingPoint)}
}

func (r *stubTrackingRepo) Append(_ context.Context, p *domain.TrackingPoint) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.seq++
	p.ID = fmt.Sprintf("pt-%04d", r.seq)
	clone := *p
	r.points[p.ShipmentID] = append(r.points[p.ShipmentID], &clone)
	return nil
}

func (r *stubTrackingRepo) ListByShipment(_ context.Context, shipmentID string) ([]*domain.TrackingPoint, error) {
	log := r.points[shipmentID]
	out := make([]*domain.TrackingPoint, 0, len(log))
	for _, p := range log {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func floatPtr(v float64) *float64 { return &v }
