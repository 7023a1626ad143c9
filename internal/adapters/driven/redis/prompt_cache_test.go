package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/harvora/context-core/internal/core/domain"
)

func setupPromptCache(t *testing.T) (*PromptCache, *miniredis.Miniredis, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})

	return NewPromptCache(client), mr, func() {
		client.Close()
		mr.Close()
	}
}

func TestPromptCache_MissReturnsNotFound(t *testing.T) {
	cache, _, cleanup := setupPromptCache(t)
	defer cleanup()

	_, err := cache.Get(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPromptCache_SetThenGet(t *testing.T) {
	cache, _, cleanup := setupPromptCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "cached prompt", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cache.Get(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "cached prompt" {
		t.Errorf("expected cached prompt, got %q", got)
	}
}

func TestPromptCache_EntryExpires(t *testing.T) {
	cache, mr, cleanup := setupPromptCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "cached prompt", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(time.Hour + time.Minute)

	_, err := cache.Get(ctx)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestPromptCache_Invalidate(t *testing.T) {
	cache, _, cleanup := setupPromptCache(t)
	defer cleanup()
	ctx := context.Background()

	if err := cache.Set(ctx, "cached prompt", time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := cache.Get(ctx)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after invalidation, got %v", err)
	}
}

func TestPromptCache_InvalidateWhenEmpty(t *testing.T) {
	cache, _, cleanup := setupPromptCache(t)
	defer cleanup()

	if err := cache.Invalidate(context.Background()); err != nil {
		t.Errorf("unexpected error invalidating empty cache: %v", err)
	}
}
