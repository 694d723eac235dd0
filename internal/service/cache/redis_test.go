package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return NewRedis(client, "test:"+uuid.New().String()+":")
}

func TestRedisGetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	r := newTestRedis(t)

	if _, ok, err := r.Get(ctx, "all"); err != nil || ok {
		t.Fatalf("Get() on empty = %v, %v", ok, err)
	}

	if err := r.Set(ctx, "all", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := r.Get(ctx, "all")
	if err != nil || !ok || string(got) != "v1" {
		t.Fatalf("Get() = %q, %v, %v", got, ok, err)
	}

	if err := r.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, ok, _ := r.Get(ctx, "all"); ok {
		t.Error("Get() after Invalidate returned ok")
	}
}
