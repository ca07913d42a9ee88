package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

var apiBaseURL = "https://api.telegram.org/bot"

const timeout = 10 * time.Second

// APIError is returned when the Bot API answers with a non-2xx status
type APIError struct {
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	if e.Description != "" {
		msg += " Message: " + e.Description
	}
	return msg
}

// Client represents a Telegram Bot API client
type Client struct {
	botToken   string
	chatID     string
	httpClient *http.Client
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &Client{
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Notify delivers one formatted message to the channel
func (c *Client) Notify(ctx context.Context, message string) error {
	return c.SendMessage(ctx, message)
}

// SendMessage sends an HTML message to the configured chat
func (c *Client) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	url := fmt.Sprintf("%s%s/sendMessage", apiBaseURL, c.botToken)

	payload := map[string]interface{}{
		"chat_id":                  c.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	// The Bot API explains failures in a "description" field; anything else
	// still reports the status.
	body, err := io.ReadAll(resp.Body)
	if err == nil {
		var result struct {
			Description string `json:"description"`
		}
		if json.Unmarshal(body, &result) == nil {
			apiErr.Description = result.Description
		}
	}

	return apiErr
}
