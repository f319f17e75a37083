package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Cadence/internal/config"
	"Cadence/internal/domain"
	"Cadence/internal/ports"
)

// OpenAIResponder generates replies through an OpenAI-compatible
// chat-completions endpoint. Custom endpoints cover DeepSeek-style
// providers that speak the same protocol.
type OpenAIResponder struct {
	endpoint   string
	model      string
	apiKey     string
	persona    string
	httpClient *http.Client
}

var _ ports.Responder = (*OpenAIResponder)(nil)

// NewOpenAIResponder builds a client from configuration.
func NewOpenAIResponder(cfg config.LLMConfig) *OpenAIResponder {
	return &OpenAIResponder{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		persona:  cfg.Persona,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Name identifies the provider inside the registry.
func (c *OpenAIResponder) Name() string {
	return "openai"
}

// Respond posts the persona, the history window and the user line as chat
// messages and returns the first choice's content.
func (c *OpenAIResponder) Respond(ctx context.Context, history []domain.ChatMessage, affect domain.AffectState, userText string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("openai responder misconfigured")
	}

	messages := make([]map[string]string, 0, len(history)+2)
	messages = append(messages, map[string]string{
		"role":    "system",
		"content": BuildSystemPrompt(c.persona, affect),
	})
	for _, msg := range history {
		messages = append(messages, map[string]string{
			"role":    string(msg.Role),
			"content": msg.Text,
		})
	}
	messages = append(messages, map[string]string{"role": "user", "content": userText})

	body, err := json.Marshal(map[string]any{
		"model":    c.model,
		"messages": messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("llm error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
