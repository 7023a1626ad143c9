// Package ai provides OpenAI-compatible model adapters via langchaingo.
// Any endpoint speaking the OpenAI wire protocol works, including local
// inference servers that ignore the API token.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = "text-embedding-3-small"

// modelDimensions maps known embedding models to their vector size.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	// BaseURL of the OpenAI-compatible API. Empty uses the provider default.
	BaseURL string

	// APIKey authenticates requests. Local services may accept any value.
	APIKey string

	// Model is the embedding model name.
	Model string

	// Dimensions overrides the vector size for models not in the known set.
	Dimensions int
}

// EmbeddingService implements driven.EmbeddingService using an
// OpenAI-compatible embeddings API.
type EmbeddingService struct {
	embedder   embeddings.Embedder
	model      string
	dimensions int
	logger     *slog.Logger
}

// NewEmbeddingService creates a new embedding service.
func NewEmbeddingService(cfg EmbeddingConfig, logger *slog.Logger) (*EmbeddingService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	opts := []openai.Option{
		openai.WithEmbeddingModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	token := cfg.APIKey
	if token == "" {
		// langchaingo requires a token even for unauthenticated endpoints
		token = "none"
	}
	opts = append(opts, openai.WithToken(token))

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	dims := cfg.Dimensions
	if dims <= 0 {
		if known, ok := modelDimensions[model]; ok {
			dims = known
		} else {
			dims = 1536
		}
	}

	return &EmbeddingService{
		embedder:   embedder,
		model:      model,
		dimensions: dims,
		logger:     logger.With("component", "embedding"),
	}, nil
}

// Embed generates embeddings for multiple texts, in input order.
func (s *EmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts: %w", len(texts), err)
	}
	return vectors, nil
}

// EmbedQuery generates an embedding for a search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return vector, nil
}

// Dimensions returns the embedding dimension size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// Model returns the model name being used.
func (s *EmbeddingService) Model() string {
	return s.model
}

// HealthCheck verifies the embedding service is available by embedding a
// trivial probe text.
func (s *EmbeddingService) HealthCheck(ctx context.Context) error {
	_, err := s.embedder.EmbedQuery(ctx, "ping")
	return err
}

// Close releases resources held by the embedding service.
func (s *EmbeddingService) Close() error {
	return nil
}
