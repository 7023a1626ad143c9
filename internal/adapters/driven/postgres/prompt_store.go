package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// promptRowID is the fixed primary key of the singleton prompt row.
const promptRowID = "system_prompt"

// Verify interface compliance
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore implements driven.PromptStore using PostgreSQL
type PromptStore struct {
	db *DB
}

// NewPromptStore creates a new PromptStore
func NewPromptStore(db *DB) *PromptStore {
	return &PromptStore{db: db}
}

// Get retrieves the active prompt
func (s *PromptStore) Get(ctx context.Context) (*domain.SystemPrompt, error) {
	query := `SELECT prompt, updated_at FROM system_prompts WHERE id = $1`

	var p domain.SystemPrompt
	err := s.db.QueryRowContext(ctx, query, promptRowID).Scan(&p.Prompt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Set replaces the active prompt (insert-or-update)
func (s *PromptStore) Set(ctx context.Context, prompt string) error {
	query := `
		INSERT INTO system_prompts (id, prompt, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			prompt = EXCLUDED.prompt,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, promptRowID, prompt, time.Now().UTC())
	return err
}
