package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLUnread  = 1 * time.Minute  // unread counters (invalidated on send/read anyway)
	TTLSession = 30 * time.Minute // refresh-token sessions
	TTLShort   = 1 * time.Minute
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixUnread  = "unread:"
	PrefixSession = "session:"
	PrefixUser    = "user:"
)

// ErrCacheMiss is returned when a key does not exist
var ErrCacheMiss = errors.New("cache miss")

// Service is the Redis cache interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Unread counters, keyed per (user, chat)
	GetUnreadCount(ctx context.Context, userID, chatID string) (int64, error)
	SetUnreadCount(ctx context.Context, userID, chatID string, count int64) error
	InvalidateUnread(ctx context.Context, chatID string, userIDs ...string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func unreadKey(userID, chatID string) string {
	return fmt.Sprintf("%s%s:%s", PrefixUnread, userID, chatID)
}

func (c *redisCache) GetUnreadCount(ctx context.Context, userID, chatID string) (int64, error) {
	n, err := c.client.Get(ctx, unreadKey(userID, chatID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, err
	}
	return n, nil
}

func (c *redisCache) SetUnreadCount(ctx context.Context, userID, chatID string, count int64) error {
	return c.client.Set(ctx, unreadKey(userID, chatID), count, TTLUnread).Err()
}

// InvalidateUnread drops cached counters for the given members of a chat
func (c *redisCache) InvalidateUnread(ctx context.Context, chatID string, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, uid := range userIDs {
		keys = append(keys, unreadKey(uid, chatID))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
