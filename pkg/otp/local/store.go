package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/peyroll/registrar/pkg/clock"
)

// ErrNotFound is returned for unknown or expired tokens.
var ErrNotFound = errors.New("verification token not found")

// Record is the stored half of an issued code.
type Record struct {
	Email     string    `json:"email"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store keeps issued codes by verification token.
type Store interface {
	Save(ctx context.Context, token string, rec Record) error
	Get(ctx context.Context, token string) (Record, error)
	Delete(ctx context.Context, token string) error
}

const redisKeyPrefix = "otp:"

// RedisStore keeps records in redis with a TTL matching the record expiry.
type RedisStore struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedisStore creates a RedisStore
func NewRedisStore(client *redis.Client, clk clock.Clock) *RedisStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &RedisStore{client: client, clock: clk}
}

// Save implements Store
func (s *RedisStore) Save(ctx context.Context, token string, rec Record) error {
	ttl := rec.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return fmt.Errorf("record for %s already expired", token)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+token, raw, ttl).Err(); err != nil {
		return fmt.Errorf("store otp record: %w", err)
	}
	return nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, token string) (Record, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load otp record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return rec, nil
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete otp record: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
	clock   clock.Clock
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(clk clock.Clock) *MemoryStore {
	if clk == nil {
		clk = clock.Real()
	}
	return &MemoryStore{records: make(map[string]Record), clock: clk}
}

// Save implements Store
func (s *MemoryStore) Save(_ context.Context, token string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[token] = rec
	return nil
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, token string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[token]
	if !ok {
		return Record{}, ErrNotFound
	}
	if !rec.ExpiresAt.After(s.clock.Now()) {
		delete(s.records, token)
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete implements Store
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, token)
	return nil
}
