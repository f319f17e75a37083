package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Chat identifies the conversation an update belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// IncomingMessage is the subset of a Telegram message the bot consumes.
type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	Text      string `json:"text"`
	Chat      Chat   `json:"chat"`
}

// Update is one long-poll result entry.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message"`
}

// Client talks to the Telegram bot API.
type Client struct {
	botToken string
	apiBase  string
	send     *http.Client
	poll     *http.Client
}

// NewClient registers the bot token.
func NewClient(botToken string) *Client {
	return &Client{
		botToken: botToken,
		apiBase:  "https://api.telegram.org",
		send:     &http.Client{Timeout: 5 * time.Second},
		poll:     &http.Client{Timeout: 40 * time.Second},
	}
}

// SendMessage posts a plain-text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("text", text)
	return c.call(ctx, c.send, "sendMessage", form, nil)
}

// SendChatAction arms a chat's composing indicator. Telegram clears it on
// its own after a few seconds or when the next message lands.
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	form := url.Values{}
	form.Set("chat_id", strconv.FormatInt(chatID, 10))
	form.Set("action", action)
	return c.call(ctx, c.send, "sendChatAction", form, nil)
}

// GetUpdates long-polls for incoming updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	form := url.Values{}
	form.Set("offset", strconv.FormatInt(offset, 10))
	form.Set("timeout", strconv.Itoa(int(timeout/time.Second)))

	var updates []Update
	if err := c.call(ctx, c.poll, "getUpdates", form, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, client *http.Client, method string, form url.Values, result any) error {
	if c.botToken == "" {
		return fmt.Errorf("telegram client misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	if result == nil {
		return nil
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram error: %s", envelope.Description)
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
