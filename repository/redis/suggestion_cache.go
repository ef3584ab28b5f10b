package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskwise/repository"
)

type suggestionCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewSuggestionCache creates a Redis-backed cache for AI suggestions.
func NewSuggestionCache(client *redislib.Client, ttl time.Duration) repository.SuggestionCache {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &suggestionCache{
		client: client,
		prefix: "suggestion:",
		ttl:    ttl,
	}
}

func (c *suggestionCache) Get(ctx context.Context, key string) (string, bool, error) {
	result, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return result, true, nil
}

func (c *suggestionCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *suggestionCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}
