package parsers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven/mocks"
)

func TestRegistry_GetRegistered(t *testing.T) {
	r := NewRegistry()
	parser := mocks.NewMockParser("text/plain")
	r.Register(parser)

	got := r.Get("text/plain")
	require.NotNil(t, got)

	text, err := got.Parse(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestRegistry_GetUnknownReturnsNil(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("application/octet-stream"))
}

func TestRegistry_NormalisesMIMEType(t *testing.T) {
	r := NewRegistry()
	r.Register(mocks.NewMockParser("text/plain"))

	assert.NotNil(t, r.Get("TEXT/PLAIN"))
	assert.NotNil(t, r.Get("text/plain; charset=utf-8"))
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	first := mocks.NewMockParser("text/plain")
	second := mocks.NewMockParser("text/plain")
	r.Register(first)
	r.Register(second)

	assert.Same(t, second, r.Get("text/plain"))
}

func TestDefaultRegistry_CoversAllowedTypes(t *testing.T) {
	r := NewDefaultRegistry()
	for mimeType := range domain.AllowedMIMETypes {
		assert.NotNil(t, r.Get(mimeType), "no parser for %s", mimeType)
	}
}
