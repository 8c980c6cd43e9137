package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// StockCacheTTL is the time-to-live for cached stock levels. Kept short
	// because availability changes on every reservation and fulfilment.
	StockCacheTTL = 5 * time.Minute

	stockCacheKeyPrefix = "stock"
)

// CachedStockLevel is the denormalized stock read model stored in Redis.
// Fields are stored as a Redis hash. It carries the derived available
// quantity so readers never recompute it from reservations.
type CachedStockLevel struct {
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	ReservedQuantity  int       `json:"reserved_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	MinimumStockLevel int       `json:"minimum_stock_level"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// StockCache provides structured read/write operations for stock level
// cache entries. Key format: "stock:{sku}"
type StockCache struct {
	client *RedisClient
}

// NewStockCache creates a new StockCache backed by the given RedisClient.
func NewStockCache(r *RedisClient) *StockCache {
	return &StockCache{client: r}
}

// Get retrieves a cached stock level by SKU.
// Returns redis.Nil error when the key does not exist or has expired.
func (c *StockCache) Get(ctx context.Context, sku string) (*CachedStockLevel, error) {
	key := c.key(sku)
	vals, err := c.client.Client().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil // key not found
	}

	quantity, err := strconv.Atoi(vals["quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse quantity: %w", err)
	}
	reserved, err := strconv.Atoi(vals["reserved_quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse reserved_quantity: %w", err)
	}
	available, err := strconv.Atoi(vals["available_quantity"])
	if err != nil {
		return nil, fmt.Errorf("cache parse available_quantity: %w", err)
	}
	minimum, err := strconv.Atoi(vals["minimum_stock_level"])
	if err != nil {
		return nil, fmt.Errorf("cache parse minimum_stock_level: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}

	return &CachedStockLevel{
		SKU:               vals["sku"],
		Quantity:          quantity,
		ReservedQuantity:  reserved,
		AvailableQuantity: available,
		MinimumStockLevel: minimum,
		UpdatedAt:         updatedAt,
	}, nil
}

// Set writes a cached stock level as a Redis hash with a short TTL.
// Uses a pipeline to set all fields and the TTL atomically.
func (c *StockCache) Set(ctx context.Context, level *CachedStockLevel) error {
	key := c.key(level.SKU)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key,
		"sku", level.SKU,
		"quantity", strconv.Itoa(level.Quantity),
		"reserved_quantity", strconv.Itoa(level.ReservedQuantity),
		"available_quantity", strconv.Itoa(level.AvailableQuantity),
		"minimum_stock_level", strconv.Itoa(level.MinimumStockLevel),
		"updated_at", level.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, key, StockCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete removes a cached stock level. Called after every write to the
// underlying item so stale availability is never served.
func (c *StockCache) Delete(ctx context.Context, sku string) error {
	if err := c.client.Client().Del(ctx, c.key(sku)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// key builds the Redis key: "stock:{sku}"
func (c *StockCache) key(sku string) string {
	return fmt.Sprintf("%s:%s", stockCacheKeyPrefix, sku)
}
