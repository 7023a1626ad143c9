package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Orchestrator defaults.
const (
	// DefaultTrimBudget bounds how many thread messages reach a prompt.
	// Counted as messages, a deliberate proxy for tokens.
	DefaultTrimBudget = 1000

	// retrieveK is how many chunks a retrieval tool call returns.
	retrieveK = 3

	retrieveToolName = "retrieve"
)

// turnPhase is one state of the chat orchestration machine.
type turnPhase int

const (
	phaseModel turnPhase = iota
	phaseTools
	phaseGenerate
	phaseEnd
)

// retrieveArgs is the JSON argument payload of a retrieve tool call.
type retrieveArgs struct {
	Query string `json:"query"`
}

// Orchestrator is the retrieval-augmented generation state machine:
//
//	model -> tools -> generate -> end   (model requested retrieval)
//	model -> end                        (direct answer, generate not reached)
//
// Each phase is an explicit transition function over the turn state; within
// a turn, tools always completes before generate runs.
type Orchestrator struct {
	model      driven.ChatModel
	index      driven.VectorIndex
	trimBudget int
	logger     *slog.Logger
}

// OrchestratorConfig holds dependencies for the Orchestrator.
type OrchestratorConfig struct {
	Model       driven.ChatModel
	VectorIndex driven.VectorIndex
	TrimBudget  int
	Logger      *slog.Logger
}

// NewOrchestrator creates a chat orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	budget := cfg.TrimBudget
	if budget <= 0 {
		budget = DefaultTrimBudget
	}
	return &Orchestrator{
		model:      cfg.Model,
		index:      cfg.VectorIndex,
		trimBudget: budget,
		logger:     logger,
	}
}

// turnState accumulates messages across the phases of one turn.
type turnState struct {
	system   string
	messages []domain.Message // full history plus this turn's additions
	appended []domain.Message // produced this turn, persisted on success
}

func (st *turnState) add(m domain.Message) {
	st.messages = append(st.messages, m)
	st.appended = append(st.appended, m)
}

// RunTurn executes one conversational turn over the given history and
// returns the messages the turn produced, in order, starting with the user
// question. It never mutates history; the caller persists the returned
// messages only on success.
func (o *Orchestrator) RunTurn(ctx context.Context, system string, history []domain.Message, question string) ([]domain.Message, error) {
	st := &turnState{
		system:   system,
		messages: append(append([]domain.Message{}, history...), domain.UserMessage(question)),
	}
	st.appended = []domain.Message{st.messages[len(st.messages)-1]}

	phase := phaseModel
	for phase != phaseEnd {
		var err error
		switch phase {
		case phaseModel:
			phase, err = o.stepModel(ctx, st)
		case phaseTools:
			phase, err = o.stepTools(ctx, st)
		case phaseGenerate:
			phase, err = o.stepGenerate(ctx, st)
		default:
			err = fmt.Errorf("invalid orchestrator phase %d", phase)
		}
		if err != nil {
			return nil, err
		}
	}

	return st.appended, nil
}

// stepModel asks the model, with the retrieve tool bound, whether it needs
// context before answering. A tool-call response transitions to tools; a
// direct answer ends the turn without ever reaching generate.
func (o *Orchestrator) stepModel(ctx context.Context, st *turnState) (turnPhase, error) {
	// Context so far: any tool results already present in the thread.
	var parts []string
	for _, m := range st.messages {
		if m.Role == domain.RoleTool {
			parts = append(parts, m.Content)
		}
	}
	system := renderSystem(st.system, strings.Join(parts, "\n\n"))

	trimmed := domain.TrimMessages(st.messages, o.trimBudget)
	resp, err := o.model.Generate(ctx, system, trimmed, []driven.ToolDefinition{retrieveToolDefinition()})
	if err != nil {
		return phaseEnd, fmt.Errorf("model call: %w", err)
	}

	if len(resp.ToolCalls) > 0 {
		st.add(domain.Message{
			Role:      domain.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		return phaseTools, nil
	}

	st.add(domain.AssistantMessage(resp.Content))
	return phaseEnd, nil
}

// stepTools executes the requested retrieval calls and appends one tool
// result message per call. Always transitions to generate.
func (o *Orchestrator) stepTools(ctx context.Context, st *turnState) (turnPhase, error) {
	request := st.messages[len(st.messages)-1]
	for _, call := range request.ToolCalls {
		if call.Name != retrieveToolName {
			return phaseEnd, fmt.Errorf("model requested unknown tool %q", call.Name)
		}

		var args retrieveArgs
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return phaseEnd, fmt.Errorf("parse tool arguments: %w", err)
		}

		result, err := o.retrieve(ctx, args.Query)
		if err != nil {
			return phaseEnd, fmt.Errorf("retrieve tool: %w", err)
		}
		st.add(domain.ToolMessage(call.ID, result))
	}
	return phaseGenerate, nil
}

// stepGenerate produces the final answer from the freshly retrieved context
// and the genuine conversational turns.
func (o *Orchestrator) stepGenerate(ctx context.Context, st *turnState) (turnPhase, error) {
	// Context: the most recent contiguous run of tool results.
	var recent []string
	for i := len(st.messages) - 1; i >= 0; i-- {
		if st.messages[i].Role != domain.RoleTool {
			break
		}
		recent = append([]string{st.messages[i].Content}, recent...)
	}
	system := renderSystem(st.system, strings.Join(recent, "\n"))

	// Conversation: user turns and plain assistant answers; assistant
	// tool-call requests and tool results are scaffolding, not context.
	var conversation []domain.Message
	for _, m := range st.messages {
		if m.Role == domain.RoleUser || (m.Role == domain.RoleAssistant && !m.IsToolRequest()) {
			conversation = append(conversation, m)
		}
	}
	trimmed := domain.TrimMessages(conversation, o.trimBudget)

	resp, err := o.model.Generate(ctx, system, trimmed, nil)
	if err != nil {
		return phaseEnd, fmt.Errorf("generate call: %w", err)
	}

	st.add(domain.AssistantMessage(resp.Content))
	return phaseEnd, nil
}

// retrieve embeds the query, searches the vector index and serialises the
// matches as source/content lines.
func (o *Orchestrator) retrieve(ctx context.Context, query string) (string, error) {
	hits, err := o.index.SimilaritySearch(ctx, query, retrieveK)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(hits))
	for _, hit := range hits {
		content := hit.Content
		if content == "" {
			content = hit.ID
		}
		lines = append(lines, fmt.Sprintf("source: %s\ncontent: %s", hit.Source, content))
	}
	return strings.Join(lines, "\n"), nil
}

// renderSystem substitutes retrieved context into the system prompt.
func renderSystem(system, context string) string {
	if strings.Contains(system, "{context}") {
		return strings.ReplaceAll(system, "{context}", context)
	}
	if context == "" {
		return system
	}
	return system + "\n\nContext: " + context
}

func retrieveToolDefinition() driven.ToolDefinition {
	return driven.ToolDefinition{
		Name:        retrieveToolName,
		Description: "Retrieve information related to a query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
			"required": []string{"query"},
		},
	}
}
