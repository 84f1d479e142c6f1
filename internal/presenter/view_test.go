package presenter

import (
	"errors"
	"testing"
	"time"

	"StockGuess/internal/collector"
	"StockGuess/internal/engine"
	"StockGuess/internal/model"

	"github.com/shopspring/decimal"
)

func obs(day int, price string) model.Observation {
	return model.Observation{
		Date:  time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		Price: decimal.RequireFromString(price),
	}
}

func TestView_LoadedResetsChart(t *testing.T) {
	v := NewView()
	v.Labels = append(v.Labels, "stale")
	v.Values = append(v.Values, 1)

	v.Apply(engine.Event{
		Kind: engine.EventLoaded, Ticker: "IBM",
		LeadIn:    model.Series{obs(1, "100"), obs(2, "101.5")},
		StartDate: "2024-05-02", CurrentDate: "2024-05-02", ControlsEnabled: true,
	})
	if len(v.Labels) != 2 || v.Labels[0] != "2024-05-01" || v.Values[1] != 101.5 {
		t.Errorf("unexpected chart: %v %v", v.Labels, v.Values)
	}
	if v.Status != "Make your prediction: Up or Down." || v.Level != LevelInfo {
		t.Errorf("unexpected status: %q (%s)", v.Status, v.Level)
	}
	if !v.ControlsEnabled || v.Ticker != "IBM" {
		t.Errorf("unexpected view: %+v", v)
	}
}

func TestView_RevealedAppendsPoint(t *testing.T) {
	v := NewView()
	v.Apply(engine.Event{Kind: engine.EventLoaded, Ticker: "IBM", LeadIn: model.Series{obs(1, "100")}, ControlsEnabled: true})

	v.Apply(engine.Event{
		Kind: engine.EventRevealed, Score: 1, CurrentDate: "2024-05-02", ControlsEnabled: true,
		Outcome: &model.GuessOutcome{Direction: model.Down, Actual: model.Down, Correct: true, Revealed: obs(2, "99.5")},
	})
	if v.Status != "Correct! 2024-05-02: 99.50 (Down)" || v.Level != LevelInfo {
		t.Errorf("unexpected status: %q", v.Status)
	}
	if len(v.Values) != 2 || v.Score != 1 || v.CurrentDate != "2024-05-02" {
		t.Errorf("unexpected view: %+v", v)
	}

	v.Apply(engine.Event{
		Kind: engine.EventRevealed, Score: 1, CurrentDate: "2024-05-03",
		Outcome: &model.GuessOutcome{Direction: model.Down, Actual: model.Up, Revealed: obs(3, "101")},
	})
	if v.Status != "Wrong. 2024-05-03: 101.00 (Up)" || v.Level != LevelWarn {
		t.Errorf("unexpected status: %q (%s)", v.Status, v.Level)
	}
}

func TestView_TerminalEvents(t *testing.T) {
	v := NewView()
	v.ControlsEnabled = true
	v.Apply(engine.Event{Kind: engine.EventExhausted})
	if v.ControlsEnabled || v.Status != "No more data to reveal for this symbol." {
		t.Errorf("unexpected exhausted view: %+v", v)
	}

	v.ControlsEnabled = true
	v.Apply(engine.Event{Kind: engine.EventEnded, Score: 7})
	if v.ControlsEnabled || v.Status != "Game ended. Final score: 7" {
		t.Errorf("unexpected ended view: %+v", v)
	}
}

func TestView_LoadFailedResetsDisplays(t *testing.T) {
	v := NewView()
	v.Apply(engine.Event{Kind: engine.EventLoaded, Ticker: "IBM", StartDate: "2024-05-01", CurrentDate: "2024-05-01", LeadIn: model.Series{obs(1, "1")}})

	v.Apply(engine.Event{Kind: engine.EventLoadFailed, Ticker: "IBM", Err: &collector.TransportError{StatusCode: 503}})
	if v.Ticker != Placeholder || v.StartDate != Placeholder || v.CurrentDate != Placeholder {
		t.Errorf("displays not reset: %+v", v)
	}
	if len(v.Labels) != 0 || v.Level != LevelError || v.Status != "Network error: 503" {
		t.Errorf("unexpected failed view: %+v", v)
	}
}

func TestStatusFor_Rejected(t *testing.T) {
	status, level := StatusFor(engine.Event{Kind: engine.EventRejected, Err: engine.ErrEmptyTicker})
	if status != "Please enter a ticker symbol." || level != LevelWarn {
		t.Errorf("unexpected status %q (%s)", status, level)
	}
	status, _ = StatusFor(engine.Event{Kind: engine.EventLoadFailed, Err: errors.New("boom")})
	if status != "Failed to load data." {
		t.Errorf("unexpected fallback status %q", status)
	}
}
