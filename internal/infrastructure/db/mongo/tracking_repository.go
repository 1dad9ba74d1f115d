package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/antu/logistics-system/internal/core/domain"
)

const collectionTrackingPoints = "tracking_points"

// TrackingRepository is the append-only store for tracking points. Documents
// are returned in insertion (_id) order, never re-sorted by recorded_at, so
// timestamp irregularities stay visible to sequence validation.
type TrackingRepository struct {
	col *mongo.Collection
}

func NewTrackingRepository(db *mongo.Database) *TrackingRepository {
	return &TrackingRepository{col: db.Collection(collectionTrackingPoints)}
}

// Append inserts a new tracking point and fills in its generated id.
func (r *TrackingRepository) Append(ctx context.Context, p *domain.TrackingPoint) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, p)
	return err
}

// ListByShipment returns the shipment's full log in insertion order.
func (r *TrackingRepository) ListByShipment(ctx context.Context, shipmentID string) ([]*domain.TrackingPoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"shipment_id": shipmentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var points []*domain.TrackingPoint
	if err := cursor.All(ctx, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// EnsureIndexes creates necessary indexes on the tracking collection.
func (r *TrackingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shipment_id", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "recorded_at", Value: -1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
