package localstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces draft keys in a shared Redis.
const DefaultRedisPrefix = "portal"

// Redis stores values under <prefix>:<key> with an optional expiry.
type Redis struct {
	r      redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis wraps an existing client. ttl of zero keeps values forever.
func NewRedis(r redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{r: r, prefix: prefix, ttl: ttl}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("localstore: connect to redis %s: %w", addr, err)
	}
	return client, nil
}

func (s *Redis) namespaced(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Read implements Store.
func (s *Redis) Read(ctx context.Context, key string) (string, bool, error) {
	val, err := s.r.Get(ctx, s.namespaced(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("localstore: read %s: %w", key, err)
	}
	return val, true, nil
}

// Write implements Store.
func (s *Redis) Write(ctx context.Context, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := s.r.Set(ctx, s.namespaced(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("localstore: write %s: %w", key, err)
	}
	return nil
}

// Remove implements Store.
func (s *Redis) Remove(ctx context.Context, key string) error {
	if err := s.r.Del(ctx, s.namespaced(key)).Err(); err != nil {
		return fmt.Errorf("localstore: remove %s: %w", key, err)
	}
	return nil
}

// Ping checks the server is reachable.
func (s *Redis) Ping(ctx context.Context) error {
	return s.r.Ping(ctx).Err()
}

var _ Store = (*Redis)(nil)
