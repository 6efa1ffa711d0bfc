package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"roadside-booking-api/internal/data"
	"roadside-booking-api/internal/metrics"
	"roadside-booking-api/internal/model"
)

const catalogKey = "catalog:services"

type Config struct {
	Addr     string
	Password string // optional
	DB       int    // optional
}

func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// CatalogBackend serves the service catalog from Redis and delegates every
// other call. A nil client disables caching.
type CatalogBackend struct {
	data.Backend
	rdb *redis.Client
	ttl time.Duration
}

func WrapCatalog(b data.Backend, rdb *redis.Client, ttl time.Duration) *CatalogBackend {
	return &CatalogBackend{Backend: b, rdb: rdb, ttl: ttl}
}

func (c *CatalogBackend) ListServices(ctx context.Context) ([]model.Service, error) {
	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, catalogKey).Bytes()
		if err == nil {
			var out []model.Service
			if err := json.Unmarshal(val, &out); err == nil {
				metrics.IncCatalogCache(true)
				return out, nil
			}
		}
	}
	metrics.IncCatalogCache(false)

	out, err := c.Backend.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		b, _ := json.Marshal(out)
		c.rdb.Set(ctx, catalogKey, b, c.ttl)
	}
	return out, nil
}

// InvalidateCatalog drops the cached catalog, e.g. after an operator edit.
func (c *CatalogBackend) InvalidateCatalog(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, catalogKey).Err()
}
