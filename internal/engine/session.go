package engine

import "StockGuess/internal/model"

// State is the lifecycle stage of a controller's session.
type State int

const (
	StateIdle State = iota
	StateReady
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateExhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// Session is one game over one ticker's series. The zero value is Idle.
// Invariant: 0 <= StartIndex <= CursorIndex < len(Series).
type Session struct {
	Ticker      string
	Series      model.Series
	StartIndex  int
	CursorIndex int
	Score       int
	Running     bool
}

func (s Session) State() State {
	switch {
	case s.Series == nil:
		return StateIdle
	case s.Running:
		return StateReady
	default:
		return StateExhausted
	}
}

// Guesses is the number of reveals so far.
func (s Session) Guesses() int { return s.CursorIndex - s.StartIndex }

// Current is the most recently revealed observation.
func (s Session) Current() model.Observation { return s.Series[s.CursorIndex] }

// StartDay is the player's historical "present moment".
func (s Session) StartDay() model.Observation { return s.Series[s.StartIndex] }

// Start builds a Ready session at start and the event that announces it.
func Start(ticker string, series model.Series, start int, leadIn model.Series) (Session, Event) {
	s := Session{
		Ticker:      ticker,
		Series:      series,
		StartIndex:  start,
		CursorIndex: start,
		Running:     true,
	}
	return s, Event{
		Kind:            EventLoaded,
		Ticker:          ticker,
		LeadIn:          leadIn,
		StartDate:       s.StartDay().DateString(),
		CurrentDate:     s.StartDay().DateString(),
		ControlsEnabled: true,
	}
}

// Guess reveals the next trading day and scores dir against it.
// A session that is not running is returned unchanged with no events.
func Guess(s Session, dir model.Direction) (Session, []Event) {
	if !s.Running {
		return s, nil
	}
	next := s.CursorIndex + 1
	if next >= len(s.Series) {
		s.Running = false
		return s, []Event{exhausted(s)}
	}

	prev, obs := s.Series[s.CursorIndex], s.Series[next]
	// equal closes count as Down
	actual := model.Down
	if obs.Price.GreaterThan(prev.Price) {
		actual = model.Up
	}
	correct := dir == actual
	if correct {
		s.Score++
	}
	s.CursorIndex = next

	events := []Event{{
		Kind:   EventRevealed,
		Ticker: s.Ticker,
		Outcome: &model.GuessOutcome{
			Direction: dir,
			Actual:    actual,
			Correct:   correct,
			Revealed:  obs,
		},
		StartDate:       s.StartDay().DateString(),
		CurrentDate:     obs.DateString(),
		Score:           s.Score,
		ControlsEnabled: true,
	}}
	if s.CursorIndex == s.Series.Last() {
		s.Running = false
		events[0].ControlsEnabled = false
		events = append(events, exhausted(s))
	}
	return s, events
}

// End stops a running session. It is a no-op otherwise.
func End(s Session) (Session, []Event) {
	if !s.Running {
		return s, nil
	}
	s.Running = false
	return s, []Event{{
		Kind:        EventEnded,
		Ticker:      s.Ticker,
		StartDate:   s.StartDay().DateString(),
		CurrentDate: s.Current().DateString(),
		Score:       s.Score,
	}}
}

func exhausted(s Session) Event {
	return Event{
		Kind:        EventExhausted,
		Ticker:      s.Ticker,
		StartDate:   s.StartDay().DateString(),
		CurrentDate: s.Current().DateString(),
		Score:       s.Score,
	}
}
