package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions contains the connection settings for the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

const connectionTimeout = 5 * time.Second

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(opts RedisOptions) (*redis.Client, error) {
	// Accept redis://host:port as well as host:port.
	addr := opts.Addr
	if parsedURL, err := url.Parse(opts.Addr); err == nil && parsedURL.Scheme == "redis" {
		addr = parsedURL.Host
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

// RedisStore keeps one visitor's keys in Redis under landing:<visitor>:.
// It is bound to the context of the request that created it.
type RedisStore struct {
	client redis.UniversalClient
	ctx    context.Context
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns the store of a single visitor. ttl <= 0 disables
// expiry.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, visitorID string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ctx:    ctx,
		prefix: "landing:" + visitorID + ":",
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}

	val, err := s.client.Get(s.ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return val, true, nil
}

func (s *RedisStore) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(s.ctx, s.prefix+key, value, ttl).Err()
}

func (s *RedisStore) Remove(key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	return s.client.Del(s.ctx, s.prefix+key).Err()
}

// Keys scans the visitor namespace.
func (s *RedisStore) Keys() ([]string, error) {
	var keys []string

	iter := s.client.Scan(s.ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(s.ctx) {
		keys = append(keys, iter.Val()[len(s.prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.prefix, err)
	}
	return keys, nil
}
