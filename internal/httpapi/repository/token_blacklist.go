package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked session tokens until their natural expiry.
type TokenBlacklist interface {
	Add(ctx context.Context, token string) error
	Contains(ctx context.Context, token string) (bool, error)
}

type redisTokenBlacklist struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenBlacklist connects to Redis and returns a blacklist whose
// entries expire after ttl, the session token lifetime.
func NewRedisTokenBlacklist(addr, password string, ttl time.Duration) (TokenBlacklist, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisTokenBlacklist{client: rdb, ttl: ttl}, nil
}

func blacklistKey(token string) string {
	return "blacklist:token:" + token
}

func (b *redisTokenBlacklist) Add(ctx context.Context, token string) error {
	return b.client.Set(ctx, blacklistKey(token), "revoked", b.ttl).Err()
}

func (b *redisTokenBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
