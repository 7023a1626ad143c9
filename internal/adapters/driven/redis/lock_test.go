package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, func() {
		client.Close()
		mr.Close()
	}
}

func TestLock_AcquireSuccess(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	acquired, err := lock.Acquire(ctx, "thread:abc", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire lock")
	}
}

func TestLock_AcquireAlreadyHeld(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	acquired, err := lock1.Acquire(ctx, "thread:abc", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected first instance to acquire")
	}

	acquired, err = lock2.Acquire(ctx, "thread:abc", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected second instance to fail")
	}
}

func TestLock_ReleaseThenReacquire(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "thread:abc", 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lock.Release(ctx, "thread:abc"); err != nil {
		t.Fatalf("unexpected error on release: %v", err)
	}

	acquired, err := lock.Acquire(ctx, "thread:abc", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire lock after release")
	}
}

func TestLock_ReleaseByDifferentOwnerIsIgnored(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if _, err := lock1.Acquire(ctx, "thread:abc", 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Release from a different owner must not actually release.
	if err := lock2.Release(ctx, "thread:abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired, err := lock2.Acquire(ctx, "thread:abc", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acquired {
		t.Error("expected lock to still be held by the first owner")
	}
}

func TestLock_ExtendRequiresOwnership(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock1 := NewLock(client)
	lock2 := NewLock(client)
	ctx := context.Background()

	if _, err := lock1.Acquire(ctx, "thread:abc", time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := lock1.Extend(ctx, "thread:abc", 10*time.Second); err != nil {
		t.Fatalf("unexpected error on extend: %v", err)
	}

	if err := lock2.Extend(ctx, "thread:abc", 10*time.Second); err == nil {
		t.Error("expected error when a different owner extends")
	}
}

func TestLock_IndependentNames(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	lock := NewLock(client)
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "thread:a", 10*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired, err := lock.Acquire(ctx, "thread:b", 10*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !acquired {
		t.Error("expected to acquire a different lock name")
	}
}
