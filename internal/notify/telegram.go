// Package notify delivers operational alerts. Delivery is best effort:
// the daemons log send failures but never let them interrupt a sync
// cycle.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"mt5-bridge/internal/interfaces"
)

const telegramAPI = "https://api.telegram.org"

// Telegram posts messages to a chat via the Bot API. Construct with
// NewTelegram; a notifier with no credentials silently drops messages so
// callers never need to branch on configuration.
type Telegram struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ interfaces.Notifier = (*Telegram)(nil)

// NewTelegram reads TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID from the
// environment.
func NewTelegram() *Telegram {
	return &Telegram{
		botToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		chatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		baseURL:  telegramAPI,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether credentials are configured.
func (t *Telegram) Enabled() bool {
	return t.botToken != "" && t.chatID != ""
}

func (t *Telegram) Send(ctx context.Context, text string) error {
	if !t.Enabled() {
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}

// Noop discards every message. Used when notifications are disabled in
// config.
type Noop struct{}

var _ interfaces.Notifier = Noop{}

func (Noop) Send(context.Context, string) error { return nil }
