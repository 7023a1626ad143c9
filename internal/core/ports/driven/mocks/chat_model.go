package mocks

import (
	"context"
	"sync"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// ModelCall records one Generate invocation for assertions.
type ModelCall struct {
	System   string
	Messages []domain.Message
	Tools    []driven.ToolDefinition
}

// MockChatModel is a scripted mock implementation of ChatModel for testing.
// Responses are consumed in order; running out of script is an error so a
// test that loops unexpectedly fails instead of hanging.
type MockChatModel struct {
	mu        sync.Mutex
	responses []*driven.ModelResponse
	errs      []error
	calls     []ModelCall
}

// NewMockChatModel creates a new MockChatModel
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Script appends a response to return from the next Generate call.
func (m *MockChatModel) Script(resp *driven.ModelResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	m.errs = append(m.errs, nil)
}

// ScriptError appends an error to return from the next Generate call.
func (m *MockChatModel) ScriptError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, nil)
	m.errs = append(m.errs, err)
}

func (m *MockChatModel) Generate(ctx context.Context, system string, messages []domain.Message, tools []driven.ToolDefinition) (*driven.ModelResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, ModelCall{
		System:   system,
		Messages: append([]domain.Message{}, messages...),
		Tools:    tools,
	})

	if len(m.responses) == 0 {
		return nil, context.Canceled
	}
	resp, err := m.responses[0], m.errs[0]
	m.responses = m.responses[1:]
	m.errs = m.errs[1:]
	return resp, err
}

func (m *MockChatModel) Model() string {
	return "mock-chat-model"
}

func (m *MockChatModel) Ping(ctx context.Context) error {
	return nil
}

func (m *MockChatModel) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockChatModel) Calls() []ModelCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ModelCall{}, m.calls...)
}
