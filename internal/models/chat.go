package models

import "time"

// ChatSession groups the messages of one assistant conversation.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatMessage is a single turn in a session.
type ChatMessage struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // 'user' | 'assistant'
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
