package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
)

const defaultTelegramAPI = "https://api.telegram.org"

// Telegram sends messages to a Telegram chat via the bot API.
type Telegram struct {
	botToken   string
	chatID     string
	apiBase    string
	httpClient *http.Client
}

// NewTelegram creates a Telegram channel. Returns nil when token or chat
// ID is unset, which disables the channel.
func NewTelegram(botToken, chatID string) *Telegram {
	if botToken == "" || chatID == "" {
		return nil
	}
	return &Telegram{
		botToken:   botToken,
		chatID:     chatID,
		apiBase:    defaultTelegramAPI,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Notifier.
func (t *Telegram) Name() string { return "telegram" }

// Send posts the message to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.apiBase, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}
