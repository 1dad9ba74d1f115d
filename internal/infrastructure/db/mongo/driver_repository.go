package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/antu/logistics-system/internal/core/domain"
)

const (
	collectionDrivers         = "drivers"
	collectionDriverLocations = "driver_locations"
)

// DriverRepository persists drivers and their current-location snapshots.
// Locations live in a separate collection keyed by driver id, one document
// per driver, overwritten on every ping.
type DriverRepository struct {
	drivers   *mongo.Collection
	locations *mongo.Collection
}

func NewDriverRepository(db *mongo.Database) *DriverRepository {
	return &DriverRepository{
		drivers:   db.Collection(collectionDrivers),
		locations: db.Collection(collectionDriverLocations),
	}
}

// FindByID retrieves a driver by id.
func (r *DriverRepository) FindByID(ctx context.Context, id string) (*domain.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Driver
	err := r.drivers.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListDispatchable returns active drivers whose status is available or
// on_duty, sorted by id for deterministic candidate enumeration.
func (r *DriverRepository) ListDispatchable(ctx context.Context) ([]*domain.Driver, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"is_active": true,
		"status":    bson.M{"$in": []domain.DriverStatus{domain.DriverAvailable, domain.DriverOnDuty}},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.drivers.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []*domain.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// UpsertLocation overwrites the driver's current location. Last write wins.
func (r *DriverRepository) UpsertLocation(ctx context.Context, loc *domain.DriverLocation) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"location":   loc.Location,
		"updated_at": loc.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)
	_, err := r.locations.UpdateByID(ctx, loc.DriverID, update, opts)
	return err
}

// FindLocation retrieves the driver's current location snapshot.
func (r *DriverRepository) FindLocation(ctx context.Context, driverID string) (*domain.DriverLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var loc domain.DriverLocation
	err := r.locations.FindOne(ctx, bson.M{"_id": driverID}).Decode(&loc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDriverNotFound
		}
		return nil, err
	}
	return &loc, nil
}

// ListLocations bulk-fetches current locations for the given drivers.
// Drivers that never pinged are absent from the result.
func (r *DriverRepository) ListLocations(ctx context.Context, driverIDs []string) (map[string]*domain.DriverLocation, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.locations.Find(ctx, bson.M{"_id": bson.M{"$in": driverIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[string]*domain.DriverLocation, len(driverIDs))
	for cursor.Next(ctx) {
		var loc domain.DriverLocation
		if err := cursor.Decode(&loc); err != nil {
			return nil, err
		}
		out[loc.DriverID] = &loc
	}
	return out, cursor.Err()
}

// EnsureIndexes creates necessary indexes on the drivers collection. The
// locations collection is keyed by _id and needs none.
func (r *DriverRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "is_active", Value: 1}}},
	}
	_, err := r.drivers.Indexes().CreateMany(ctx, indexes)
	return err
}
