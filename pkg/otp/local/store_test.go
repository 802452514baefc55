package local

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/peyroll/registrar/pkg/clock"
	"github.com/peyroll/registrar/pkg/pgutil"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	pgutil.RequireDocker(t)
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("failed to parse redis url: %v", err)
	}
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()
	clk := clock.Real()
	store := NewRedisStore(client, clk)

	rec := Record{Email: "a@b.com", CodeHash: HashCode("123456"), ExpiresAt: clk.Now().Add(time.Minute)}
	if err := store.Save(ctx, "tok", rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Get(ctx, "tok")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Email != rec.Email || got.CodeHash != rec.CodeHash {
		t.Fatalf("Get() = %+v, want %+v", got, rec)
	}

	ttl, err := client.TTL(ctx, redisKeyPrefix+"tok").Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	if err := store.Delete(ctx, "tok"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRedisStore_RejectsExpiredRecord(t *testing.T) {
	store := NewRedisStore(nil, clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	rec := Record{ExpiresAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.Save(context.Background(), "tok", rec); err == nil {
		t.Fatal("expected error for expired record")
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	store := NewMemoryStore(clk)
	ctx := context.Background()

	_ = store.Save(ctx, "tok", Record{Email: "a@b.com", ExpiresAt: clk.Now().Add(time.Second)})
	if _, err := store.Get(ctx, "tok"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	clk.Advance(time.Second)
	if _, err := store.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}
