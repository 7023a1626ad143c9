package driven

import (
	"context"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
)

// PromptStore persists the singleton system prompt (PostgreSQL).
type PromptStore interface {
	// Get retrieves the active prompt.
	// Returns domain.ErrNotFound when no prompt row exists.
	Get(ctx context.Context) (*domain.SystemPrompt, error)

	// Set replaces the active prompt (insert-or-update).
	Set(ctx context.Context, prompt string) error
}

// PromptCache is the fast lookaside in front of PromptStore (Redis).
// Entries carry a bounded TTL; writers invalidate, they never fill.
type PromptCache interface {
	// Get returns the cached prompt, or domain.ErrNotFound on a miss.
	Get(ctx context.Context) (string, error)

	// Set stores the prompt with the given TTL.
	Set(ctx context.Context, prompt string, ttl time.Duration) error

	// Invalidate removes the cached prompt. Safe when nothing is cached.
	Invalidate(ctx context.Context) error
}
