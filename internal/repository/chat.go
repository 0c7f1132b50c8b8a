package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finwise/finance-service/internal/ledger"
	"github.com/finwise/finance-service/internal/models"
)

// CreateSession creates a new chat session
func (r *Repository) CreateSession(ctx context.Context, s *models.ChatSession) error {
	query := `
		INSERT INTO finance.chat_sessions (id, user_id, title, summary, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, s.ID, s.UserID, s.Title, s.Summary).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat session: %w", err)
	}
	return nil
}

// SessionByID retrieves a chat session owned by the user
func (r *Repository) SessionByID(ctx context.Context, userID int64, id string) (*models.ChatSession, error) {
	s := &models.ChatSession{}
	query := `
		SELECT id, user_id, title, summary, created_at
		FROM finance.chat_sessions
		WHERE id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, id, userID).
		Scan(&s.ID, &s.UserID, &s.Title, &s.Summary, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chat session %s: %w", id, ledger.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat session: %w", err)
	}
	return s, nil
}

// AppendMessage stores one chat turn
func (r *Repository) AppendMessage(ctx context.Context, m *models.ChatMessage) error {
	query := `
		INSERT INTO finance.chat_messages (session_id, role, content, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, m.SessionID, m.Role, m.Content).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// ListMessages returns the session's messages in order
func (r *Repository) ListMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, created_at
		FROM finance.chat_messages
		WHERE session_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
