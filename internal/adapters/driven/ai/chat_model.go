package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChatModel = (*ChatModel)(nil)

// DefaultChatModel is used when no model is configured.
const DefaultChatModel = "gpt-4o-mini"

// ChatConfig holds chat provider configuration.
type ChatConfig struct {
	// BaseURL of the OpenAI-compatible API. Empty uses the provider default.
	BaseURL string

	// APIKey authenticates requests. Local services may accept any value.
	APIKey string

	// Model is the chat model name.
	Model string

	// Temperature for generation. Zero keeps answers grounded in context.
	Temperature float64
}

// ChatModel implements driven.ChatModel using an OpenAI-compatible chat API.
type ChatModel struct {
	client      llms.Model
	model       string
	temperature float64
	logger      *slog.Logger
}

// NewChatModel creates a new chat model client.
func NewChatModel(cfg ChatConfig, logger *slog.Logger) (*ChatModel, error) {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultChatModel
	}

	opts := []openai.Option{
		openai.WithModel(model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	token := cfg.APIKey
	if token == "" {
		token = "none"
	}
	opts = append(opts, openai.WithToken(token))

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create chat client: %w", err)
	}

	return &ChatModel{
		client:      client,
		model:       model,
		temperature: cfg.Temperature,
		logger:      logger.With("component", "chat-model"),
	}, nil
}

// Generate invokes the model with a system prompt and conversation messages.
// When tools are supplied the model may respond with tool calls instead of
// content.
func (m *ChatModel) Generate(ctx context.Context, system string, messages []domain.Message, tools []driven.ToolDefinition) (*driven.ModelResponse, error) {
	content := make([]llms.MessageContent, 0, len(messages)+1)
	if system != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	for _, msg := range messages {
		content = append(content, toMessageContent(msg))
	}

	opts := []llms.CallOption{llms.WithTemperature(m.temperature)}
	if len(tools) > 0 {
		opts = append(opts, llms.WithTools(toLLMTools(tools)))
	}

	resp, err := m.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	choice := resp.Choices[0]
	out := &driven.ModelResponse{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.FunctionCall.Name,
			Arguments: tc.FunctionCall.Arguments,
		})
	}
	return out, nil
}

// Model returns the model name being used.
func (m *ChatModel) Model() string {
	return m.model
}

// Ping verifies the model service is available with a minimal completion.
func (m *ChatModel) Ping(ctx context.Context) error {
	_, err := m.client.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, "ping")},
		llms.WithMaxTokens(1),
	)
	return err
}

// Close releases resources held by the model client.
func (m *ChatModel) Close() error {
	return nil
}

// toMessageContent converts a thread message to the langchaingo wire shape,
// including assistant tool-call requests and tool results.
func toMessageContent(msg domain.Message) llms.MessageContent {
	switch {
	case msg.Role == domain.RoleTool:
		return llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: msg.ToolCallID,
				Content:    msg.Content,
			}},
		}
	case msg.IsToolRequest():
		parts := make([]llms.ContentPart, 0, len(msg.ToolCalls)+1)
		if msg.Content != "" {
			parts = append(parts, llms.TextPart(msg.Content))
		}
		for _, tc := range msg.ToolCalls {
			parts = append(parts, llms.ToolCall{
				ID:   tc.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		return llms.MessageContent{Role: llms.ChatMessageTypeAI, Parts: parts}
	case msg.Role == domain.RoleAssistant:
		return llms.TextParts(llms.ChatMessageTypeAI, msg.Content)
	default:
		return llms.TextParts(llms.ChatMessageTypeHuman, msg.Content)
	}
}

func toLLMTools(tools []driven.ToolDefinition) []llms.Tool {
	out := make([]llms.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
