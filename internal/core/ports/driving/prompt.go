package driving

import "context"

// PromptService exposes the system prompt configuration.
type PromptService interface {
	// GetPrompt returns the active system prompt, falling back to the
	// built-in default when none is configured.
	GetPrompt(ctx context.Context) (string, error)

	// SetPrompt replaces the active system prompt.
	SetPrompt(ctx context.Context, prompt string) error
}
