package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
	"github.com/harvora/context-core/internal/core/ports/driving"
)

// promptCacheTTL bounds how long a cached prompt may serve before being
// refetched from durable storage.
const promptCacheTTL = time.Hour

// Ensure promptService implements PromptService
var _ driving.PromptService = (*promptService)(nil)

// promptService resolves the system prompt through a cache-aside pattern:
// cache hit wins, misses fall through to the durable store, and the
// built-in default covers a store with no prompt row.
type promptService struct {
	store  driven.PromptStore
	cache  driven.PromptCache // may be nil when Redis is not configured
	logger *slog.Logger
}

// NewPromptService creates a new PromptService.
func NewPromptService(store driven.PromptStore, cache driven.PromptCache, logger *slog.Logger) driving.PromptService {
	if logger == nil {
		logger = slog.Default()
	}
	return &promptService{store: store, cache: cache, logger: logger}
}

// GetPrompt returns the active system prompt.
func (s *promptService) GetPrompt(ctx context.Context) (string, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("prompt cache read failed", "error", err)
		}
	}

	prompt := domain.DefaultSystemPrompt
	stored, err := s.store.Get(ctx)
	switch {
	case err == nil:
		prompt = stored.Prompt
	case errors.Is(err, domain.ErrNotFound):
		// No prompt configured yet, use the default.
	default:
		return "", fmt.Errorf("load system prompt: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, prompt, promptCacheTTL); err != nil {
			s.logger.Warn("prompt cache fill failed", "error", err)
		}
	}

	return prompt, nil
}

// SetPrompt replaces the active system prompt: write-through to durable
// storage first, then cache invalidation. The new value is never written
// into the cache directly so a write that is still propagating can not be
// served as current.
func (s *promptService) SetPrompt(ctx context.Context, prompt string) error {
	if prompt == "" {
		return domain.ErrInvalidInput
	}

	if err := s.store.Set(ctx, prompt); err != nil {
		return fmt.Errorf("persist system prompt: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			// The stale entry expires with its TTL; durability already won.
			s.logger.Warn("prompt cache invalidation failed", "error", err)
		}
	}

	return nil
}
