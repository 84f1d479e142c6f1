package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"StockGuess/internal/recorder"
)

func TestFormatGameResult(t *testing.T) {
	msg := FormatGameResult(&recorder.GameRecord{
		Ticker: "IBM", StartDate: "2024-03-01", LastDate: "2024-03-08",
		Guesses: 4, Score: 3, Reason: "ended",
	})
	for _, want := range []string{"<b>IBM</b>", "Score: 3 / 4", "(75%)", "2024-03-08", "ended by player"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	msg = FormatGameResult(&recorder.GameRecord{Ticker: "X", Reason: "exhausted"})
	if strings.Contains(msg, "%") || !strings.Contains(msg, "Ran out of data") {
		t.Errorf("unexpected message for zero guesses:\n%s", msg)
	}
}

func TestFormatLeaderboard(t *testing.T) {
	if got := FormatLeaderboard("AAPL", nil); !strings.Contains(got, "No finished games") {
		t.Errorf("unexpected empty leaderboard: %s", got)
	}
	got := FormatLeaderboard("AAPL", []recorder.GameRecord{
		{Score: 9, Guesses: 10, StartDate: "2024-01-02"},
		{Score: 5, Guesses: 6, StartDate: "2024-02-02"},
	})
	if !strings.Contains(got, "1. 9 / 10 from 2024-01-02") || !strings.Contains(got, "2. 5 / 6") {
		t.Errorf("unexpected leaderboard:\n%s", got)
	}
}

func TestAnnounce_PostsToChat(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	err := tn.Announce(context.Background(), &recorder.GameRecord{Ticker: "MSFT", Guesses: 2, Score: 1, Reason: "ended"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["chat_id"] != "42" || !strings.Contains(got["text"], "MSFT") {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestSendWithRetry_GivesUp(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	if err := tn.SendWithRetry(context.Background(), "hi", 0); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

type stubScores struct {
	recorder.NoopRecorder
	games []recorder.GameRecord
}

func (s *stubScores) BestScores(ticker string, limit int) ([]recorder.GameRecord, error) {
	return s.games, nil
}

func TestLeaderboardCommands(t *testing.T) {
	h := LeaderboardCommands(&stubScores{games: []recorder.GameRecord{{Ticker: "IBM", Score: 4, Guesses: 5}}}, 5)
	if got := h("/best ibm"); !strings.Contains(got, "IBM best scores") {
		t.Errorf("unexpected reply: %s", got)
	}
	if got := h("/help"); !strings.Contains(got, "/best TICKER") {
		t.Errorf("unexpected help reply: %s", got)
	}
}

func TestSendWithRetry_RecoversAfterFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
			return
		}
		w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	tn.Backoff = func(int) time.Duration { return 0 }
	if err := tn.SendWithRetry(context.Background(), "hi", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestStartPolling_RepliesToCommands(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var replies []string
	served := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			if served {
				w.Write([]byte(`{"ok":true,"result":[]}`))
				return
			}
			served = true
			w.Write([]byte(`{"ok":true,"result":[
				{"update_id":5,"message":{"text":"hello"}},
				{"update_id":6,"message":{"text":"/best ibm"}}]}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			replies = append(replies, body["text"].(string))
			w.Write([]byte(`{"ok":true,"result":{}}`))
			cancel()
		}
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.BaseURL = srv.URL
	done := make(chan struct{})
	go func() {
		tn.StartPolling(ctx, func(cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop after cancel")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(replies) != 1 || replies[0] != "got /best ibm" {
		t.Errorf("unexpected replies: %v", replies)
	}
}
