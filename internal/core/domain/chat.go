package domain

import "time"

// MessageRole identifies the author of a thread message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ToolCall is a model-initiated request to invoke a named capability
// before finalising an answer.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON-encoded
}

// Message is one turn element inside a conversation thread.
// Messages are strictly ordered; trimming for prompting never touches
// the durable history.
type Message struct {
	Role       MessageRole `json:"role"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`   // assistant tool-call requests
	ToolCallID string      `json:"tool_call_id,omitempty"` // set on tool results
	CreatedAt  time.Time   `json:"created_at"`
}

// IsToolRequest reports whether this is an assistant message that only
// requests tool execution (scaffolding, not conversational content).
func (m Message) IsToolRequest() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls) > 0
}

// UserMessage builds a user-authored message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, CreatedAt: time.Now().UTC()}
}

// AssistantMessage builds a plain assistant answer.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, CreatedAt: time.Now().UTC()}
}

// ToolMessage builds a tool-result message for a given call.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, CreatedAt: time.Now().UTC()}
}

// TrimMessages reduces a history to at most budget messages for prompting,
// preferring the most recent ones. The retained window always starts on a
// user message so a tool result or assistant reply is never sent without
// its preceding user turn. The system prompt is handled separately by the
// prompt builder and never counts against the budget.
func TrimMessages(messages []Message, budget int) []Message {
	if budget <= 0 || len(messages) <= budget {
		return alignOnUser(messages)
	}
	return alignOnUser(messages[len(messages)-budget:])
}

func alignOnUser(messages []Message) []Message {
	for i, m := range messages {
		if m.Role == RoleUser {
			return messages[i:]
		}
	}
	return nil
}
