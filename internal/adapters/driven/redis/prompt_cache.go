package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PromptCache = (*PromptCache)(nil)

const promptCacheKey = "context:system_prompt"

// PromptCache implements driven.PromptCache using Redis.
// It is a lookaside in front of the durable prompt store: readers fill it
// after a miss, writers only invalidate.
type PromptCache struct {
	client *redis.Client
}

// NewPromptCache creates a new PromptCache
func NewPromptCache(client *redis.Client) *PromptCache {
	return &PromptCache{client: client}
}

// Get returns the cached prompt, or domain.ErrNotFound on a miss
func (c *PromptCache) Get(ctx context.Context) (string, error) {
	val, err := c.client.Get(ctx, promptCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read prompt cache: %w", err)
	}
	return val, nil
}

// Set stores the prompt with the given TTL
func (c *PromptCache) Set(ctx context.Context, prompt string, ttl time.Duration) error {
	if err := c.client.Set(ctx, promptCacheKey, prompt, ttl).Err(); err != nil {
		return fmt.Errorf("fill prompt cache: %w", err)
	}
	return nil
}

// Invalidate removes the cached prompt. Safe when nothing is cached.
func (c *PromptCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, promptCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate prompt cache: %w", err)
	}
	return nil
}
