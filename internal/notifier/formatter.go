package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockGuess/internal/recorder"
)

// FormatGameResult formats a finished game for a Telegram message.
func FormatGameResult(rec *recorder.GameRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>%s</b> | start %s\n\n", html.EscapeString(rec.Ticker), rec.StartDate))
	b.WriteString(fmt.Sprintf("Score: %d / %d", rec.Score, rec.Guesses))
	if rec.Guesses > 0 {
		b.WriteString(fmt.Sprintf(" (%.0f%%)", float64(rec.Score)/float64(rec.Guesses)*100))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Last day revealed: %s\n", rec.LastDate))
	switch rec.Reason {
	case "exhausted":
		b.WriteString("Ran out of data ✅")
	default:
		b.WriteString("Game ended by player")
	}
	return b.String()
}

// FormatLeaderboard formats the best journaled scores for a ticker.
func FormatLeaderboard(ticker string, games []recorder.GameRecord) string {
	if len(games) == 0 {
		return fmt.Sprintf("No finished games for %s yet.", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🏆 <b>%s best scores</b>\n\n", html.EscapeString(ticker)))
	for i, g := range games {
		b.WriteString(fmt.Sprintf("%d. %d / %d from %s\n", i+1, g.Score, g.Guesses, g.StartDate))
	}
	return b.String()
}
