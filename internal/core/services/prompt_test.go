package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven/mocks"
)

func TestGetPrompt_DefaultWhenUnset(t *testing.T) {
	svc := NewPromptService(mocks.NewMockPromptStore(), nil, nil)

	prompt, err := svc.GetPrompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSystemPrompt, prompt)
}

func TestSetThenGet_ReturnsNewPrompt(t *testing.T) {
	store := mocks.NewMockPromptStore()
	cache := mocks.NewMockPromptCache()
	svc := NewPromptService(store, cache, nil)

	require.NoError(t, svc.SetPrompt(context.Background(), "You are a soil scientist. Context: {context}"))

	prompt, err := svc.GetPrompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "You are a soil scientist. Context: {context}", prompt)
}

func TestSetPrompt_RejectsEmpty(t *testing.T) {
	svc := NewPromptService(mocks.NewMockPromptStore(), nil, nil)
	err := svc.SetPrompt(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetPrompt_StoreFailureSkipsInvalidation(t *testing.T) {
	store := mocks.NewMockPromptStore()
	cache := mocks.NewMockPromptCache()
	svc := NewPromptService(store, cache, nil)

	// Warm the cache with the current value.
	require.NoError(t, svc.SetPrompt(context.Background(), "original"))
	_, err := svc.GetPrompt(context.Background())
	require.NoError(t, err)
	require.True(t, cache.Cached())

	store.SetFailSet(errors.New("db down"))
	err = svc.SetPrompt(context.Background(), "replacement")
	require.Error(t, err)

	// Durable write failed first, so the cached value was not touched.
	assert.True(t, cache.Cached())
	cached, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "original", cached)
}

func TestGetPrompt_FillsCacheOnMiss(t *testing.T) {
	store := mocks.NewMockPromptStore()
	cache := mocks.NewMockPromptCache()
	svc := NewPromptService(store, cache, nil)

	require.NoError(t, store.Set(context.Background(), "stored prompt"))

	prompt, err := svc.GetPrompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "stored prompt", prompt)
	assert.Equal(t, 1, cache.Sets())

	// Second read is served from cache, no extra fill.
	_, err = svc.GetPrompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Sets())
}

func TestSetPrompt_InvalidatesNeverFills(t *testing.T) {
	store := mocks.NewMockPromptStore()
	cache := mocks.NewMockPromptCache()
	svc := NewPromptService(store, cache, nil)

	require.NoError(t, svc.SetPrompt(context.Background(), "fresh prompt"))

	assert.Equal(t, 1, cache.Invalidates())
	assert.Equal(t, 0, cache.Sets(), "writes must not populate the cache")
	assert.False(t, cache.Cached())
}
