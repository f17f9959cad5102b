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

const defaultBaseURL = "https://api.telegram.org"

// Update is one inbound item from getUpdates.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	Chat Chat   `json:"chat"`
	Text string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// Client is a minimal Telegram Bot API client covering what the bot needs:
// long-polling updates and sending messages with an optional reply keyboard.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint, for tests.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		// Generous timeout: getUpdates holds the connection open while polling.
		httpClient: &http.Client{Timeout: 50 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetUpdates long-polls for inbound updates past the given offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]Update, error) {
	payload := map[string]any{"timeout": timeoutSeconds}
	if offset != 0 {
		payload["offset"] = offset
	}

	var result []Update
	if err := c.call(ctx, "getUpdates", payload, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SendMessage sends text to a chat. Options, when present, are rendered as a
// one-time reply keyboard with one option per row.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, options []string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if len(options) > 0 {
		rows := make([][]string, 0, len(options))
		for _, opt := range options {
			rows = append(rows, []string{opt})
		}
		payload["reply_markup"] = map[string]any{
			"keyboard":          rows,
			"one_time_keyboard": true,
			"resize_keyboard":   true,
		}
	}

	return c.call(ctx, "sendMessage", payload, nil)
}

// Notify satisfies the buyer-notification contract with a plain message.
func (c *Client) Notify(ctx context.Context, sessionID int64, text string) error {
	return c.SendMessage(ctx, sessionID, text, nil)
}

func (c *Client) call(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope struct {
		OK          bool            `json:"ok"`
		Description string          `json:"description"`
		Result      json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&envelope); err != nil {
		return fmt.Errorf("telegram %s: decode response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s: %s", method, envelope.Description)
	}
	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}
