package engine

import "StockGuess/internal/model"

// Message is an input to Controller.Dispatch.
type Message interface {
	isMessage()
}

// LoadRequested asks for a fresh game on Ticker.
type LoadRequested struct{ Ticker string }

// GuessSubmitted is the player's call on the next close.
type GuessSubmitted struct{ Direction model.Direction }

// SessionEnded is the player quitting the current game.
type SessionEnded struct{}

func (LoadRequested) isMessage()  {}
func (GuessSubmitted) isMessage() {}
func (SessionEnded) isMessage()   {}

// EventKind names what happened.
type EventKind string

const (
	EventLoaded     EventKind = "loaded"
	EventRevealed   EventKind = "revealed"
	EventExhausted  EventKind = "exhausted"
	EventEnded      EventKind = "ended"
	EventLoadFailed EventKind = "load_failed"
	EventRejected   EventKind = "rejected"
)

// Event is emitted by transitions for presenters and transports.
type Event struct {
	Kind            EventKind
	Ticker          string
	LeadIn          model.Series        // loaded
	Outcome         *model.GuessOutcome // revealed
	StartDate       string
	CurrentDate     string
	Score           int
	ControlsEnabled bool
	Err             error // load_failed, rejected
}
