package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/billmal071/pavilion/internal/config"
	"github.com/billmal071/pavilion/internal/library"
)

const keyPrefix = "pavilion:book:"

// Connect opens a redis client and checks it answers
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// BookCache stores books as JSON values with a TTL
type BookCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBookCache wraps a redis client
func NewBookCache(rdb *redis.Client, ttl time.Duration) *BookCache {
	return &BookCache{rdb: rdb, ttl: ttl}
}

func bookKey(id uint64) string {
	return keyPrefix + strconv.FormatUint(id, 10)
}

// GetBook returns the cached book, or nil on a miss
func (c *BookCache) GetBook(ctx context.Context, id uint64) (*library.Book, error) {
	data, err := c.rdb.Get(ctx, bookKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var b library.Book
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("corrupt cache entry %s: %w", bookKey(id), err)
	}
	return &b, nil
}

// SetBook stores a book until the TTL expires
func (c *BookCache) SetBook(ctx context.Context, b *library.Book) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, bookKey(b.ID), data, c.ttl).Err()
}

// Invalidate drops a cached book
func (c *BookCache) Invalidate(ctx context.Context, id uint64) error {
	return c.rdb.Del(ctx, bookKey(id)).Err()
}
