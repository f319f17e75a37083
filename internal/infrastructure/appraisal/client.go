package appraisal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"Cadence/internal/domain"
	"Cadence/internal/ports"
)

// Client talks to an external inference service that scores text into PAD
// deltas. It is the remote alternative to the keyword appraiser.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Appraiser = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Appraise sends the text for scoring and returns the impulse.
func (c *Client) Appraise(ctx context.Context, text string) (domain.AffectImpulse, error) {
	if c.endpoint == "" {
		return domain.AffectImpulse{}, fmt.Errorf("appraisal client misconfigured")
	}

	payload := map[string]any{"text": text}

	var parsed struct {
		Pleasure  float64 `json:"pleasure"`
		Arousal   float64 `json:"arousal"`
		Dominance float64 `json:"dominance"`
	}
	if err := c.post(ctx, "/appraise", payload, &parsed); err != nil {
		return domain.AffectImpulse{}, err
	}

	return domain.AffectImpulse{
		Pleasure:  parsed.Pleasure,
		Arousal:   parsed.Arousal,
		Dominance: parsed.Dominance,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
