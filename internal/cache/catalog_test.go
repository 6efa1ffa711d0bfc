package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"roadside-booking-api/internal/cache"
	"roadside-booking-api/internal/data/datatest"
)

func TestCatalogPassthroughWithoutRedis(t *testing.T) {
	b := datatest.New()
	b.AddService("Towing")

	c := cache.WrapCatalog(b, nil, time.Minute)
	for i := 0; i < 2; i++ {
		out, err := c.ListServices(context.Background())
		if err != nil || len(out) != 1 {
			t.Fatalf("list: %v %v", out, err)
		}
	}
	if b.Calls["ListServices"] != 2 {
		t.Errorf("expected 2 backend calls, got %d", b.Calls["ListServices"])
	}
	if err := c.InvalidateCatalog(context.Background()); err != nil {
		t.Errorf("invalidate: %v", err)
	}
}

func TestCatalogCachedInRedis(t *testing.T) {
	_ = godotenv.Load("../../.env")
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb, err := cache.NewClient(ctx, cache.Config{Addr: addr})
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	b := datatest.New()
	b.AddService("Towing")
	c := cache.WrapCatalog(b, rdb, time.Minute)
	if err := c.InvalidateCatalog(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	t.Cleanup(func() { c.InvalidateCatalog(ctx) })

	for i := 0; i < 3; i++ {
		out, err := c.ListServices(ctx)
		if err != nil || len(out) != 1 || out[0].Name != "Towing" {
			t.Fatalf("list: %v %v", out, err)
		}
	}
	if b.Calls["ListServices"] != 1 {
		t.Errorf("expected 1 backend call, got %d", b.Calls["ListServices"])
	}
}
