package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/antu/logistics-system/internal/core/domain"
)

const locationTTL = 15 * time.Minute

// ErrLocationNotCached is returned when no fresh snapshot exists for a driver.
var ErrLocationNotCached = errors.New("driver location not cached")

// LocationCache mirrors each driver's latest position into Redis with a short
// TTL. It is a read accelerator only; MongoDB remains the source of truth and
// a cache miss is never an application error.
type LocationCache struct {
	client *redis.Client
}

// NewLocationCache creates a LocationCache wrapping the given Redis client.
func NewLocationCache(client *redis.Client) *LocationCache {
	return &LocationCache{client: client}
}

// SetLocation stores the driver's current location snapshot.
func (c *LocationCache) SetLocation(ctx context.Context, loc *domain.DriverLocation) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("cache location: %w", err)
	}
	return c.client.Set(ctx, c.key(loc.DriverID), payload, locationTTL).Err()
}

// GetLocation retrieves the cached snapshot, or ErrLocationNotCached when the
// key is absent or expired.
func (c *LocationCache) GetLocation(ctx context.Context, driverID string) (*domain.DriverLocation, error) {
	payload, err := c.client.Get(ctx, c.key(driverID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLocationNotCached
		}
		return nil, fmt.Errorf("cached location: %w", err)
	}

	var loc domain.DriverLocation
	if err := json.Unmarshal(payload, &loc); err != nil {
		return nil, fmt.Errorf("cached location: %w", err)
	}
	return &loc, nil
}

func (c *LocationCache) key(driverID string) string {
	return "driver:location:" + driverID
}
