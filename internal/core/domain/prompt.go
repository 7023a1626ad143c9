package domain

import "time"

// DefaultSystemPrompt is used when the durable store holds no prompt row.
const DefaultSystemPrompt = `You are a helpful assistant that answers questions.

Follow these rules:
1. Make a tool call to get relevant context
2. If context is provided, use it to answer
3. If no context is relevant, say you don't know
4. Be concise and factual
5. For follow-up questions, maintain conversation context

Context: {context}`

// SystemPrompt is the singleton prompt configuration. Exactly one prompt is
// active at a time; the cache may lag the durable store only during a write's
// propagation window.
type SystemPrompt struct {
	Prompt    string    `json:"prompt"`
	UpdatedAt time.Time `json:"updated_at"`
}
