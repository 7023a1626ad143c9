package driven

import (
	"context"

	"github.com/harvora/context-core/internal/core/domain"
)

// ToolDefinition describes a callable capability offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object describing the arguments.
	Parameters map[string]any
}

// ModelResponse is the outcome of one model invocation: either a direct
// answer or a request to run one or more tools.
type ModelResponse struct {
	Content   string
	ToolCalls []domain.ToolCall
}

// ChatModel provides language model completions for the chat orchestrator.
type ChatModel interface {
	// Generate invokes the model with a system prompt and ordered
	// conversation messages. When tools are supplied the model may
	// respond with tool calls instead of content.
	Generate(ctx context.Context, system string, messages []domain.Message, tools []ToolDefinition) (*ModelResponse, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the model service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the model client
	Close() error
}
