package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the configuration for the Redis store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	// Namespace prefixes every key written by the store.
	Namespace string `yaml:"namespace"`
}

// scanBatch is the COUNT hint used when scanning for prefix deletion.
const scanBatch = 256

// RedisStore persists query results in Redis as JSON.
type RedisStore struct {
	rdb        *redis.Client
	logger     zerolog.Logger
	ttl        time.Duration
	namespace  string
	ownsClient bool
}

// NewRedisStore connects to Redis and pings it before returning.
func NewRedisStore(ctx context.Context, cfg *RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Successfully connected to Redis.")

	return &RedisStore{
		rdb:        rdb,
		logger:     logger.With().Str("component", "RedisStore").Logger(),
		ttl:        cfg.TTL,
		namespace:  cfg.Namespace,
		ownsClient: true,
	}, nil
}

// Scoped returns a store sharing the same connection whose keys live under an
// additional namespace segment. Closing a scoped store leaves the connection open.
func (s *RedisStore) Scoped(namespace string) *RedisStore {
	return &RedisStore{
		rdb:       s.rdb,
		logger:    s.logger.With().Str("namespace", namespace).Logger(),
		ttl:       s.ttl,
		namespace: s.key(namespace),
	}
}

func (s *RedisStore) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return s.namespace + ":" + k
}

// Get returns the record for key, or ErrNotFound on a miss.
func (s *RedisStore) Get(ctx context.Context, key string) (Record, error) {
	redisKey := s.key(key)
	raw, err := s.rdb.Get(ctx, redisKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to get from redis: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.logger.Error().Err(err).Str("key", redisKey).Msg("Failed to unmarshal cached record.")
		return Record{}, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// Set stores rec under key with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key string, rec Record) error {
	redisKey := s.key(key)
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKey, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	s.logger.Debug().Str("key", redisKey).Msg("Stored query record in Redis.")
	return nil
}

// DeletePrefix removes every key under prefix using SCAN, so it never blocks
// the server the way KEYS would.
func (s *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	pattern := escapeGlob(s.key(prefix)) + "*"
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("failed to scan redis: %w", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete from redis: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.logger.Debug().Str("prefix", prefix).Int("deleted", deleted).Msg("Deleted query records from Redis.")
	return nil
}

// Close closes the Redis connection if this store opened it.
func (s *RedisStore) Close() error {
	if !s.ownsClient || s.rdb == nil {
		return nil
	}
	s.logger.Info().Msg("Closing Redis client connection...")
	return s.rdb.Close()
}

// escapeGlob escapes the characters Redis treats specially in MATCH patterns.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
