package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL             = "https://api.telegram.org"
	parseModeHTML              = "HTML"
	responseBodyReadLimit int64 = 2048
)

var (
	errBotTokenRequired = errors.New("telegram bot token is required")
	errChatIDRequired   = errors.New("telegram chat id is required")
)

// Client wraps the Telegram Bot API calls used for operator alerts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	chatID     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the Bot API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the Telegram client for the configured bot and chat.
func NewClient(botToken, chatID string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(botToken) == "" {
		return nil, errBotTokenRequired
	}
	if strings.TrimSpace(chatID) == "" {
		return nil, errChatIDRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		botToken:   strings.TrimSpace(botToken),
		chatID:     strings.TrimSpace(chatID),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// InlineButton is a single button on an inline keyboard. Exactly one of URL
// or CallbackData should be set.
type InlineButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// InlineKeyboard is a grid of buttons attached to a message.
type InlineKeyboard struct {
	InlineKeyboard [][]InlineButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	Text        string          `json:"text"`
	ParseMode   string          `json:"parse_mode"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

type sendPhotoRequest struct {
	ChatID      string          `json:"chat_id"`
	Photo       string          `json:"photo"`
	Caption     string          `json:"caption"`
	ParseMode   string          `json:"parse_mode"`
	ReplyMarkup *InlineKeyboard `json:"reply_markup,omitempty"`
}

type answerCallbackRequest struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendMessage posts an HTML-formatted text message to the configured chat.
func (c *Client) SendMessage(ctx context.Context, text string, keyboard *InlineKeyboard) error {
	payload := sendMessageRequest{
		ChatID:      c.chatID,
		Text:        text,
		ParseMode:   parseModeHTML,
		ReplyMarkup: keyboard,
	}
	return c.call(ctx, "sendMessage", payload)
}

// SendPhoto posts a photo by URL with an HTML caption. Telegram fetches the
// photo server-side, so the URL must be reachable from outside (a signed URL
// qualifies).
func (c *Client) SendPhoto(ctx context.Context, photoURL, caption string, keyboard *InlineKeyboard) error {
	payload := sendPhotoRequest{
		ChatID:      c.chatID,
		Photo:       photoURL,
		Caption:     caption,
		ParseMode:   parseModeHTML,
		ReplyMarkup: keyboard,
	}
	return c.call(ctx, "sendPhoto", payload)
}

// AnswerCallbackQuery acknowledges an inline button press so the Telegram
// client stops showing its loading spinner.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	payload := answerCallbackRequest{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}
	return c.call(ctx, "answerCallbackQuery", payload)
}

func (c *Client) call(ctx context.Context, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", method, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.botToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling telegram %s: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return fmt.Errorf("reading telegram %s response: %w", method, err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decoding telegram %s response: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s rejected: %s", method, parsed.Description)
	}
	return nil
}
