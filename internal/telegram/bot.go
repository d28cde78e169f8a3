// Package telegram sends operator notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"irishgrants/internal/logger"

	json "github.com/goccy/go-json"
)

const defaultAPIURL = "https://api.telegram.org"

// Bot posts messages to a single chat. A Bot without a token or chat is a no-op.
type Bot struct {
	Token   string
	ChatID  string
	Enabled bool

	apiURL string
	client *http.Client
}

// NewBot creates a bot for chatID. Notifications are skipped when either value is empty.
func NewBot(token, chatID string) *Bot {
	return &Bot{
		Token:   token,
		ChatID:  chatID,
		Enabled: token != "" && chatID != "",
		apiURL:  defaultAPIURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers text to the configured chat.
func (b *Bot) Send(ctx context.Context, text string) error {
	if !b.Enabled {
		return nil
	}
	body, err := json.Marshal(sendMessageRequest{ChatID: b.ChatID, Text: text, DisableWebPagePreview: true})
	if err != nil {
		return err
	}
	url := b.apiURL + "/bot" + b.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	var res apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&res); err != nil {
		return fmt.Errorf("telegram: status %d: %w", resp.StatusCode, err)
	}
	if !res.OK {
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, res.Description)
	}
	return nil
}

// Notify sends text in the background and logs failures.
func (b *Bot) Notify(text string) {
	if !b.Enabled {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := b.Send(ctx, text); err != nil {
			logger.Warn("telegram: notification failed", map[string]interface{}{"error": err.Error()})
		}
	}()
}
