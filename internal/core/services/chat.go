package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
	"github.com/harvora/context-core/internal/core/ports/driving"
)

const (
	// threadLockTTL covers one full turn including model latency.
	threadLockTTL = 2 * time.Minute

	// threadLockRetryDelay is the poll interval while another instance
	// holds the thread lock.
	threadLockRetryDelay = 250 * time.Millisecond
)

// Ensure chatService implements ChatService
var _ driving.ChatService = (*chatService)(nil)

// chatService runs conversational turns. Turns on the same thread are
// serialized through a distributed lock so concurrent requests can not
// interleave their appends; memory is only written after a turn completes.
type chatService struct {
	threads      driven.ThreadStore
	prompts      driving.PromptService
	orchestrator *Orchestrator
	lock         driven.DistributedLock // may be nil for single-instance setups
	logger       *slog.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(
	threads driven.ThreadStore,
	prompts driving.PromptService,
	orchestrator *Orchestrator,
	lock driven.DistributedLock,
	logger *slog.Logger,
) driving.ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &chatService{
		threads:      threads,
		prompts:      prompts,
		orchestrator: orchestrator,
		lock:         lock,
		logger:       logger,
	}
}

// Ask processes one conversational turn. A failed turn leaves the thread
// history exactly as it was; the question is only persisted together with
// the messages that answered it.
func (s *chatService) Ask(ctx context.Context, req driving.ChatRequest) (*driving.ChatResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}

	threadID := req.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	if s.lock != nil {
		release, err := s.acquireThreadLock(ctx, threadID)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	history, err := s.threads.Messages(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("%w: load thread history: %v", domain.ErrChatTurn, err)
	}

	system, err := s.prompts.GetPrompt(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve system prompt: %v", domain.ErrChatTurn, err)
	}

	appended, err := s.orchestrator.RunTurn(ctx, system, history, question)
	if err != nil {
		s.logger.Error("chat turn failed", "thread_id", threadID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrChatTurn, err)
	}

	if err := s.threads.Append(ctx, threadID, appended...); err != nil {
		return nil, fmt.Errorf("%w: persist turn: %v", domain.ErrChatTurn, err)
	}

	answer := ""
	for i := len(appended) - 1; i >= 0; i-- {
		if appended[i].Role == domain.RoleAssistant && !appended[i].IsToolRequest() {
			answer = appended[i].Content
			break
		}
	}

	s.logger.Info("chat turn completed", "thread_id", threadID, "messages", len(appended))

	return &driving.ChatResponse{
		ThreadID:   threadID,
		Question:   question,
		AIResponse: answer,
	}, nil
}

// acquireThreadLock polls for the per-thread lock until acquired or the
// context expires, and returns the release func.
func (s *chatService) acquireThreadLock(ctx context.Context, threadID string) (func(), error) {
	name := "thread:" + threadID
	for {
		acquired, err := s.lock.Acquire(ctx, name, threadLockTTL)
		if err != nil {
			return nil, fmt.Errorf("%w: acquire thread lock: %v", domain.ErrChatTurn, err)
		}
		if acquired {
			return func() {
				if err := s.lock.Release(context.WithoutCancel(ctx), name); err != nil {
					s.logger.Warn("failed to release thread lock", "thread_id", threadID, "error", err)
				}
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: waiting for thread lock: %v", domain.ErrChatTurn, ctx.Err())
		case <-time.After(threadLockRetryDelay):
		}
	}
}
