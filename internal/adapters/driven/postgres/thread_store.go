package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/harvora/context-core/internal/core/domain"
	"github.com/harvora/context-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore implements driven.ThreadStore using PostgreSQL.
// Messages are append-only; ordering within a thread follows the seq column.
type ThreadStore struct {
	db *DB
}

// NewThreadStore creates a new ThreadStore
func NewThreadStore(db *DB) *ThreadStore {
	return &ThreadStore{db: db}
}

// Messages returns the full ordered history of a thread
func (s *ThreadStore) Messages(ctx context.Context, threadID string) ([]domain.Message, error) {
	query := `
		SELECT role, content, tool_calls, tool_call_id, created_at
		FROM thread_messages
		WHERE thread_id = $1
		ORDER BY seq
	`

	rows, err := s.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			m             domain.Message
			toolCallsJSON []byte
			toolCallID    sql.NullString
		)
		if err := rows.Scan(&m.Role, &m.Content, &toolCallsJSON, &toolCallID, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(toolCallsJSON) > 0 {
			if err := json.Unmarshal(toolCallsJSON, &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("decode tool calls: %w", err)
			}
		}
		m.ToolCallID = toolCallID.String
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Append adds messages to the end of a thread in one transaction
func (s *ThreadStore) Append(ctx context.Context, threadID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO thread_messages (thread_id, role, content, tool_calls, tool_call_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range messages {
			var toolCallsJSON any
			if len(m.ToolCalls) > 0 {
				data, err := json.Marshal(m.ToolCalls)
				if err != nil {
					return fmt.Errorf("encode tool calls: %w", err)
				}
				toolCallsJSON = data
			}

			_, err = stmt.ExecContext(ctx,
				threadID,
				m.Role,
				m.Content,
				toolCallsJSON,
				NullString(m.ToolCallID),
				m.CreatedAt,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a thread and its history
func (s *ThreadStore) Delete(ctx context.Context, threadID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM thread_messages WHERE thread_id = $1`, threadID)
	return err
}
