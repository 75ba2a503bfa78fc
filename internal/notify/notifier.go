package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers a human-readable message about a domain event. It is an
// explicitly constructed, injected dependency; implementations must not hold
// process-global state.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// ConsoleNotifier logs messages instead of delivering them. Useful for local
// runs without a bot token.
type ConsoleNotifier struct{}

func (ConsoleNotifier) Notify(_ context.Context, subject, message string) error {
	slog.Info("Notification", "subject", subject, "message", message)
	return nil
}

// TelegramNotifier sends messages to a chat through the Telegram Bot API,
// retrying transient failures a bounded number of times.
type TelegramNotifier struct {
	token      string
	chatID     string
	client     *http.Client
	attempts   int
	retryDelay time.Duration
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		token:      token,
		chatID:     chatID,
		client:     &http.Client{Timeout: 10 * time.Second},
		attempts:   3,
		retryDelay: 2 * time.Second,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, subject, message string) error {
	body, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    fmt.Sprintf("%s\n%s", subject, message),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.token)

	var lastErr error
	for attempt := 1; attempt <= n.attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build telegram request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := n.client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode < 300 {
				return nil
			}
			lastErr = fmt.Errorf("telegram responded %s", resp.Status)
		} else {
			lastErr = err
		}

		slog.Warn("Telegram delivery failed", "attempt", attempt, "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(n.retryDelay * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("telegram delivery failed after %d attempts: %w", n.attempts, lastErr)
}
