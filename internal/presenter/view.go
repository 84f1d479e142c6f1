package presenter

import (
	"fmt"

	"StockGuess/internal/engine"
	"StockGuess/internal/model"
)

// Placeholder is shown for a date or ticker that is not known yet.
const Placeholder = "—"

// Level is the severity attached to the status line.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// View is everything a client needs to draw the chart and the controls.
type View struct {
	Ticker          string    `json:"ticker"`
	StartDate       string    `json:"start_date"`
	CurrentDate     string    `json:"current_date"`
	Score           int       `json:"score"`
	ControlsEnabled bool      `json:"controls_enabled"`
	Status          string    `json:"status"`
	Level           Level     `json:"level"`
	Labels          []string  `json:"labels"`
	Values          []float64 `json:"values"`
}

// NewView returns an empty view with placeholders.
func NewView() *View {
	v := &View{}
	v.reset()
	return v
}

func (v *View) reset() {
	v.Ticker = Placeholder
	v.StartDate = Placeholder
	v.CurrentDate = Placeholder
	v.Score = 0
	v.ControlsEnabled = false
	v.Labels = []string{}
	v.Values = []float64{}
}

func (v *View) setStatus(level Level, text string) {
	v.Level = level
	v.Status = text
}

func (v *View) appendPoint(o model.Observation) {
	v.Labels = append(v.Labels, o.DateString())
	v.Values = append(v.Values, o.Price.InexactFloat64())
}

// Apply folds one event into the view.
func (v *View) Apply(ev engine.Event) {
	switch ev.Kind {
	case engine.EventLoaded:
		v.reset()
		v.Ticker = ev.Ticker
		v.StartDate = ev.StartDate
		v.CurrentDate = ev.CurrentDate
		v.Score = ev.Score
		v.ControlsEnabled = ev.ControlsEnabled
		for _, o := range ev.LeadIn {
			v.appendPoint(o)
		}
		v.setStatus(LevelInfo, "Make your prediction: Up or Down.")

	case engine.EventRevealed:
		if ev.Outcome == nil {
			return
		}
		v.appendPoint(ev.Outcome.Revealed)
		v.CurrentDate = ev.CurrentDate
		v.Score = ev.Score
		v.ControlsEnabled = ev.ControlsEnabled
		if ev.Outcome.Correct {
			v.setStatus(LevelInfo, "Correct! "+RevealText(ev.Outcome))
		} else {
			v.setStatus(LevelWarn, "Wrong. "+RevealText(ev.Outcome))
		}

	case engine.EventExhausted:
		v.ControlsEnabled = false
		v.setStatus(LevelWarn, "No more data to reveal for this symbol.")

	case engine.EventEnded:
		v.ControlsEnabled = false
		v.Score = ev.Score
		v.setStatus(LevelInfo, fmt.Sprintf("Game ended. Final score: %d", ev.Score))

	case engine.EventLoadFailed:
		v.reset()
		v.setStatus(LevelError, engine.StatusMessage(ev.Err))

	case engine.EventRejected:
		v.setStatus(LevelWarn, engine.StatusMessage(ev.Err))
	}
}

// ApplyAll folds events in order and returns the view.
func (v *View) ApplyAll(events []engine.Event) *View {
	for _, ev := range events {
		v.Apply(ev)
	}
	return v
}

// RevealText renders a revealed day as "date: price (Direction)".
func RevealText(o *model.GuessOutcome) string {
	return fmt.Sprintf("%s: %s (%s)", o.Revealed.DateString(), o.Revealed.Price.StringFixed(2), o.Actual.Label())
}

// StatusFor renders the status line an event alone would produce.
func StatusFor(ev engine.Event) (string, Level) {
	v := NewView()
	v.Apply(ev)
	return v.Status, v.Level
}
