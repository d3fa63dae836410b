// Package reportstore keeps analysis reports addressable by token between
// requests. The token is the only handle: there is no ambient "last report"
// state anywhere in the service.
package reportstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"trendd/internal/dormancy"
)

// ErrNotFound is returned when a token is unknown or expired.
var ErrNotFound = errors.New("report not found")

// Store holds reports for later retrieval by token.
type Store interface {
	Put(ctx context.Context, report *dormancy.Report) (string, error)
	Get(ctx context.Context, token string) (*dormancy.Report, error)
}

// MemoryStore keeps reports in process memory. Suitable for single-process
// deployments and tests.
type MemoryStore struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	report  *dormancy.Report
	expires time.Time
}

// NewMemoryStore creates an in-memory store with the given report TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

// Put stores a report under a fresh token.
func (s *MemoryStore) Put(_ context.Context, report *dormancy.Report) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[token] = memoryEntry{
		report:  report,
		expires: time.Now().Add(s.ttl),
	}

	// Drop anything already expired while we hold the lock.
	now := time.Now()
	for t, e := range s.entries {
		if e.expires.Before(now) {
			delete(s.entries, t)
		}
	}

	return token, nil
}

// Get retrieves a report by token.
func (s *MemoryStore) Get(_ context.Context, token string) (*dormancy.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok || e.expires.Before(time.Now()) {
		return nil, ErrNotFound
	}

	return e.report, nil
}

// RedisStore keeps JSON-serialized reports in Redis so multiple server
// processes can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(token string) string {
	return "trendd:report:" + token
}

// Put stores a report under a fresh token.
func (s *RedisStore) Put(ctx context.Context, report *dormancy.Report) (string, error) {
	token := uuid.NewString()

	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	if err := s.client.Set(ctx, redisKey(token), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}

	return token, nil
}

// Get retrieves a report by token.
func (s *RedisStore) Get(ctx context.Context, token string) (*dormancy.Report, error) {
	data, err := s.client.Get(ctx, redisKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}

	var report dormancy.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}

	return &report, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
