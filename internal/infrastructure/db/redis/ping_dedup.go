package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// PingDeduper provides idempotency checks for GPS pings backed by Redis.
// Key format: ping:<driver_id>:<shipment_id>:<unix_timestamp>
type PingDeduper struct {
	client *redis.Client
}

// NewPingDeduper creates a PingDeduper wrapping the given Redis client.
func NewPingDeduper(client *redis.Client) *PingDeduper {
	return &PingDeduper{client: client}
}

// IsDuplicate reports whether this exact ping has already been processed.
func (d *PingDeduper) IsDuplicate(ctx context.Context, driverID, shipmentID string, ts time.Time) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(driverID, shipmentID, ts)).Result()
	if err != nil {
		return false, fmt.Errorf("ping dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this ping has been processed (expires after dedupTTL).
func (d *PingDeduper) Mark(ctx context.Context, driverID, shipmentID string, ts time.Time) error {
	return d.client.Set(ctx, d.key(driverID, shipmentID, ts), "1", dedupTTL).Err()
}

func (d *PingDeduper) key(driverID, shipmentID string, ts time.Time) string {
	return fmt.Sprintf("ping:%s:%s:%d", driverID, shipmentID, ts.Unix())
}
