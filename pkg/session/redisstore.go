package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ALBERTOESCALARI/smartcal-frontend-sub001/pkg/config"
)

const keyNamespace = "smartcal:session"

// RedisStore is the shared-deployment durable store: several gateway
// instances can serve the same operator session.
type RedisStore struct {
	raw *redis.Client
}

// NewRedisStore bootstraps a Redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if r == nil || r.raw == nil {
		return errors.New("redis store not initialized")
	}
	return r.raw.Set(ctx, buildKey(key), value, 0).Err()
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if r == nil || r.raw == nil {
		return "", errors.New("redis store not initialized")
	}
	value, err := r.raw.Get(ctx, buildKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

func (r *RedisStore) Del(ctx context.Context, keys ...string) error {
	if r == nil || r.raw == nil {
		return errors.New("redis store not initialized")
	}
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, buildKey(key))
	}
	return r.raw.Del(ctx, namespaced...).Err()
}

// Ping verifies the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	if r == nil || r.raw == nil {
		return errors.New("redis store not initialized")
	}
	return r.raw.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (r *RedisStore) Close() error {
	if r == nil || r.raw == nil {
		return nil
	}
	return r.raw.Close()
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		if part == "" {
			continue
		}
		clean = append(clean, strings.TrimSpace(part))
	}
	return strings.Join(clean, ":")
}
