package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"StockGuess/internal/recorder"
)

const (
	telegramBaseURL   = "https://api.telegram.org"
	defaultMaxRetries = 3
)

// TelegramNotifier announces finished games through the Telegram Bot API.
type TelegramNotifier struct {
	BaseURL    string
	BotToken   string
	ChatID     string
	MaxRetries int
	Client     *http.Client
	Backoff    func(attempt int) time.Duration
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BaseURL:    telegramBaseURL,
		BotToken:   botToken,
		ChatID:     chatID,
		MaxRetries: defaultMaxRetries,
		Client:     &http.Client{Timeout: 40 * time.Second, Transport: transport},
		Backoff:    func(attempt int) time.Duration { return time.Duration(1<<uint(attempt)) * time.Second },
	}
}

// Announce posts the result of a finished game.
func (t *TelegramNotifier) Announce(ctx context.Context, rec *recorder.GameRecord) error {
	return t.SendWithRetry(ctx, FormatGameResult(rec), t.MaxRetries)
}

// Send posts text to the configured chat once.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	return t.call(ctx, "sendMessage", map[string]any{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}, nil)
}

// SendWithRetry retries Send with exponential backoff, giving up after maxRetries extra attempts.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = t.Send(ctx, text)
		if lastErr == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		wait := t.Backoff(attempt)
		log.Printf("[WARN] telegram send failed (attempt %d/%d): %v, retrying in %v", attempt+1, maxRetries+1, lastErr, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("telegram: all %d attempts failed: %w", maxRetries+1, lastErr)
}

// call invokes a Bot API method and decodes its result into out when out is non-nil.
func (t *TelegramNotifier) call(ctx context.Context, method string, params map[string]any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal %s params: %w", method, err)
	}
	endpoint := fmt.Sprintf("%s/bot%s/%s", t.BaseURL, t.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: status %d, undecodable body: %w", method, resp.StatusCode, err)
	}
	if !env.OK {
		return fmt.Errorf("%s: status %d: %s", method, resp.StatusCode, env.Description)
	}
	if out != nil {
		if err := json.Unmarshal(env.Result, out); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}
