package driving

import "context"

// ChatRequest is one conversational turn. ThreadID may be empty, in which
// case a new thread is started.
type ChatRequest struct {
	ThreadID string `json:"thread_id"`
	Question string `json:"question"`
}

// ChatResponse is the completed turn.
type ChatResponse struct {
	ThreadID   string `json:"thread_id"`
	Question   string `json:"question"`
	AIResponse string `json:"ai_response"`
}

// ChatService runs retrieval-augmented conversation turns.
type ChatService interface {
	// Ask processes one turn: loads thread memory, runs the orchestrator
	// and appends the completed turn. On failure the thread history is
	// left unmodified and domain.ErrChatTurn is returned.
	Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
