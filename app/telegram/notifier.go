// Package telegram delivers fire-and-forget notifications through the
// Telegram Bot API. Failures never affect the polling loop.
package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const sendTimeout = 10 * time.Second

type Notifier struct {
	httpClient *http.Client
	apiBase    string
	botToken   string
	chatID     string
}

func NewNotifier(httpClient *http.Client, botToken, chatID string) *Notifier {
	return &Notifier{
		httpClient: httpClient,
		apiBase:    "https://api.telegram.org",
		botToken:   botToken,
		chatID:     chatID,
	}
}

// Enabled reports whether both credentials are configured. A disabled
// notifier silently drops messages.
func (n *Notifier) Enabled() bool {
	return n.botToken != "" && n.chatID != ""
}

// Notify sends one HTML-formatted message.
func (n *Notifier) Notify(ctx context.Context, message string) error {
	if !n.Enabled() {
		return nil
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	form := url.Values{
		"chat_id":    {n.chatID},
		"text":       {message},
		"parse_mode": {"HTML"},
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(timeoutCtx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("Telegram rejected notification: status %d, body %q", resp.StatusCode, body)
	}

	return nil
}
