package service

import (
	"context"

	"github.com/finwise/finance-service/internal/models"
	"github.com/google/uuid"
)

// CreateSession starts a new assistant conversation. A client-supplied ID is
// honored so the frontend can create sessions optimistically.
func (s *Service) CreateSession(ctx context.Context, id, title string) (*models.ChatSession, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.NewString()
	}
	if title == "" {
		title = "New conversation"
	}

	session := &models.ChatSession{
		ID:     id,
		UserID: userID,
		Title:  title,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.log.Infof("Chat session %s created for user %d", session.ID, userID)
	return session, nil
}

// Session returns one of the user's conversations
func (s *Service) Session(ctx context.Context, id string) (*models.ChatSession, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.SessionByID(ctx, userID, id)
}

// Messages returns a session's transcript in order
func (s *Service) Messages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	// Ownership check before exposing the transcript.
	if _, err := s.repo.SessionByID(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListMessages(ctx, sessionID)
}

// SendMessage appends the user's turn, asks the assistant for a reply and
// stores it.
func (s *Service) SendMessage(ctx context.Context, sessionID, content string) (*models.ChatMessage, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.SessionByID(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	history, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	userTurn := &models.ChatMessage{SessionID: sessionID, Role: "user", Content: content}
	if err := s.repo.AppendMessage(ctx, userTurn); err != nil {
		return nil, err
	}

	reply, err := s.assistant.Reply(ctx, history, content)
	if err != nil {
		s.log.Errorf("Assistant reply failed for session %s: %v", sessionID, err)
		reply = "Sorry, I could not process that right now. Please try again."
	}

	assistantTurn := &models.ChatMessage{SessionID: sessionID, Role: "assistant", Content: reply}
	if err := s.repo.AppendMessage(ctx, assistantTurn); err != nil {
		return nil, err
	}
	return assistantTurn, nil
}
