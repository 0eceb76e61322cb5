package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/pricekit/localprice/pkg/domain"
	"github.com/redis/go-redis/v9"
)

// locationKey is the fixed key the single location record lives under.
const locationKey = "location"

// RedisLocationStore implements cache.LocationStore on Redis, for
// deployments where the location cache should be shared across
// processes. The Redis expiry is a backstop; freshness is still
// decided by the resolver from ResolvedAt.
type RedisLocationStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisLocationStore creates a store from client options.
func NewRedisLocationStore(
	opt *redis.Options,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisLocationStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLocationStore{
		client: redis.NewClient(opt),
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *RedisLocationStore) key() string {
	return s.prefix + locationKey
}

// Load reads the stored record, or (nil, nil) when absent or corrupt.
func (s *RedisLocationStore) Load(ctx context.Context) (*domain.LocationRecord, error) {
	val, err := s.client.Get(ctx, s.key()).Result()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("location cache miss", "key", s.key())
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec domain.LocationRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		s.logger.Warn("discarding corrupt location cache", "key", s.key(), "error", err)
		return nil, nil
	}
	return &rec, nil
}

// Save overwrites the stored record.
func (s *RedisLocationStore) Save(ctx context.Context, rec *domain.LocationRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(), data, s.ttl).Err()
}

// Close releases the underlying client.
func (s *RedisLocationStore) Close() error {
	return s.client.Close()
}
