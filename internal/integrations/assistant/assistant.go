// Package assistant connects the chat endpoints to an external
// OpenAI-compatible completion service. Response generation is out of scope
// here; this package only transports messages and falls back to canned
// replies when no service is configured.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finwise/finance-service/internal/config"
	"github.com/finwise/finance-service/internal/models"
)

// Assistant produces a reply given the conversation so far.
type Assistant interface {
	Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error)
}

const systemPrompt = "You are a personal finance assistant. Help the user with budgeting, " +
	"debt prioritization and payment planning. Keep answers brief and decline anything unrelated to finance."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client is an Assistant backed by an OpenAI-compatible chat completions
// endpoint.
type Client struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient initializes a new assistant client
func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiURL: cfg.AssistantURL,
		apiKey: cfg.AssistantAPIKey,
		model:  cfg.AssistantModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Reply sends the recent history and the new message to the completion
// service. The last 20 turns are included for context.
func (c *Client) Reply(ctx context.Context, history []models.ChatMessage, message string) (string, error) {
	msgs := []chatMessage{{Role: "system", Content: systemPrompt}}
	start := 0
	if len(history) > 20 {
		start = len(history) - 20
	}
	for _, m := range history[start:] {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: message})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs, MaxTokens: 400})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assistant returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode assistant response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assistant returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stub is a deterministic Assistant for deployments without an external
// service configured.
type Stub struct{}

// Reply matches a few common intents and otherwise asks for a finance topic.
func (Stub) Reply(_ context.Context, _ []models.ChatMessage, message string) (string, error) {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "hello"), strings.Contains(m, "hi"):
		return "Hello! I can help you manage your budget, prioritize payments, and track assets and liabilities. What would you like to know?", nil
	case strings.Contains(m, "recommend"), strings.Contains(m, "priority"):
		return "Check your recommendations page: liabilities are ranked by priority score and your monthly budget is allocated to the highest-ranked ones first.", nil
	case strings.Contains(m, "budget"), strings.Contains(m, "money"):
		return "Your payment budget is a configurable share of your monthly income. Update your salary and other income in your profile to refine it.", nil
	case strings.Contains(m, "help"):
		return "I can help with prioritizing debt payments, budget planning, and tracking your assets and liabilities. What specific area would you like assistance with?", nil
	default:
		return "I can only help with finance-related requests, like budgeting or payment planning.", nil
	}
}
