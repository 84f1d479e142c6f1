package notifier

import (
	"context"
	"log"
	"strings"
	"time"

	"StockGuess/internal/recorder"
)

const pollTimeoutSeconds = 30

// CommandHandler turns a chat command into a reply. An empty reply sends nothing.
type CommandHandler func(command string) string

type update struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
	} `json:"message"`
}

// LeaderboardCommands answers "/best TICKER" from the game journal.
func LeaderboardCommands(rec recorder.Recorder, limit int) CommandHandler {
	return func(command string) string {
		fields := strings.Fields(command)
		if len(fields) != 2 || fields[0] != "/best" {
			return "Available commands:\n• /best TICKER"
		}
		ticker := strings.ToUpper(fields[1])
		games, err := rec.BestScores(ticker, limit)
		if err != nil {
			log.Printf("[ERROR] leaderboard %s: %v", ticker, err)
			return "Leaderboard unavailable."
		}
		return FormatLeaderboard(ticker, games)
	}
}

// StartPolling long-polls getUpdates and replies to commands until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	offset := 0
	for {
		var updates []update
		err := t.call(ctx, "getUpdates", map[string]any{
			"offset":          offset,
			"timeout":         pollTimeoutSeconds,
			"allowed_updates": []string{"message"},
		}, &updates)
		if ctx.Err() != nil {
			log.Println("[INFO] telegram polling stopped")
			return
		}
		if err != nil {
			log.Printf("[WARN] telegram poll: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if u.Message == nil {
				continue
			}
			text := strings.TrimSpace(u.Message.Text)
			if !strings.HasPrefix(text, "/") {
				continue
			}
			log.Printf("[INFO] telegram command: %s", text)
			if reply := handler(text); reply != "" {
				if err := t.Send(ctx, reply); err != nil {
					log.Printf("[ERROR] telegram reply: %v", err)
				}
			}
		}
	}
}
