package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"StockGuess/internal/collector"
	"StockGuess/internal/model"
	"StockGuess/internal/normalizer"
	"StockGuess/internal/recorder"
	"StockGuess/internal/selector"
)

// Finish reasons written to the journal.
const (
	ReasonExhausted = "exhausted"
	ReasonEnded     = "ended"
	ReasonAbandoned = "abandoned"
)

const announceTimeout = 30 * time.Second

// Announcer publishes a finished game's result. Optional.
type Announcer interface {
	Announce(ctx context.Context, rec *recorder.GameRecord) error
}

// Controller owns a single player's session and serializes every transition on it.
type Controller struct {
	Fetcher    collector.Fetcher
	Selector   *selector.Selector
	Recorder   recorder.Recorder
	Announcer  Announcer
	MinHistory int
	Now        func() time.Time

	// OnEvents, when set, receives every event batch in transition order.
	// It runs with the controller locked and must not call back into it.
	OnEvents func([]Event)

	mu      sync.Mutex
	session Session
	gen     uint64
	cancel  context.CancelFunc
}

// NewController creates a controller with the default history threshold.
func NewController(f collector.Fetcher, sel *selector.Selector, rec recorder.Recorder) *Controller {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Controller{
		Fetcher:    f,
		Selector:   sel,
		Recorder:   rec,
		MinHistory: model.MinViableLength,
		Now:        time.Now,
	}
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Dispatch applies msg and returns the events it produced.
func (c *Controller) Dispatch(ctx context.Context, msg Message) []Event {
	switch m := msg.(type) {
	case LoadRequested:
		return c.load(ctx, m.Ticker)
	case GuessSubmitted:
		return c.guess(ctx, m.Direction)
	case SessionEnded:
		return c.end(ctx)
	default:
		log.Printf("[WARN] controller: unknown message %T", msg)
		return nil
	}
}

func (c *Controller) load(ctx context.Context, raw string) []Event {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if ticker == "" {
		events := []Event{{Kind: EventRejected, Err: ErrEmptyTicker}}
		c.mu.Lock()
		c.emit(events)
		c.mu.Unlock()
		return events
	}

	// Discard the old session before fetching so guesses during the fetch are no-ops.
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.gen++
	gen := c.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	prev := c.session
	c.session = Session{}
	c.mu.Unlock()
	defer cancel()

	if prev.Running {
		c.finish(ctx, prev, ReasonAbandoned)
	}

	next, ev, err := c.prepare(fetchCtx, ticker)

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		log.Printf("[INFO] load %s superseded by a newer request", ticker)
		return nil
	}
	c.cancel = nil
	events := []Event{ev}
	if err == nil {
		c.session = next
	} else {
		events = []Event{{Kind: EventLoadFailed, Ticker: ticker, Err: err}}
	}
	c.emit(events)
	c.mu.Unlock()

	if err != nil {
		log.Printf("[WARN] load %s failed: %v", ticker, err)
		if rerr := c.Recorder.RecordLoadFailure(&recorder.LoadFailure{
			Ticker:  ticker,
			Kind:    ErrorKind(err),
			Message: err.Error(),
		}); rerr != nil {
			log.Printf("[ERROR] record load failure: %v", rerr)
		}
		return events
	}

	log.Printf("[INFO] loaded %s: %d observations, start %s", ticker, len(next.Series), ev.StartDate)
	return events
}

// prepare runs fetch, normalize, viability check and window selection. It touches no state.
func (c *Controller) prepare(ctx context.Context, ticker string) (Session, Event, error) {
	entries, err := c.Fetcher.FetchDaily(ctx, ticker)
	if err != nil {
		return Session{}, Event{}, fmt.Errorf("fetch %s from %s: %w", ticker, c.Fetcher.Name(), err)
	}
	series, err := normalizer.Normalize(entries)
	if err != nil {
		return Session{}, Event{}, fmt.Errorf("normalize %s: %w", ticker, err)
	}
	need := c.MinHistory
	if need <= 0 {
		need = model.MinViableLength
	}
	if len(series) < need {
		return Session{}, Event{}, &InsufficientHistoryError{Have: len(series), Need: need}
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	start, err := c.Selector.Select(series, now)
	if err != nil {
		return Session{}, Event{}, fmt.Errorf("select start for %s: %w", ticker, err)
	}
	s, ev := Start(ticker, series, start, c.Selector.LeadIn(series, start))
	return s, ev, nil
}

func (c *Controller) guess(ctx context.Context, dir model.Direction) []Event {
	c.mu.Lock()
	next, events := Guess(c.session, dir)
	finished := c.session.Running && !next.Running
	c.session = next
	c.emit(events)
	c.mu.Unlock()

	if finished {
		c.finish(ctx, next, ReasonExhausted)
	}
	return events
}

func (c *Controller) end(ctx context.Context) []Event {
	c.mu.Lock()
	next, events := End(c.session)
	finished := c.session.Running && !next.Running
	c.session = next
	c.emit(events)
	c.mu.Unlock()

	if finished {
		c.finish(ctx, next, ReasonEnded)
	}
	return events
}

// emit hands events to OnEvents. c.mu must be held.
func (c *Controller) emit(events []Event) {
	if c.OnEvents != nil && len(events) > 0 {
		c.OnEvents(events)
	}
}

// finish journals and announces a session that stopped running.
func (c *Controller) finish(ctx context.Context, s Session, reason string) {
	rec := &recorder.GameRecord{
		Ticker:    s.Ticker,
		StartDate: s.StartDay().DateString(),
		LastDate:  s.Current().DateString(),
		Guesses:   s.Guesses(),
		Score:     s.Score,
		Reason:    reason,
	}
	if err := c.Recorder.RecordGame(rec); err != nil {
		log.Printf("[ERROR] record game: %v", err)
	}
	if c.Announcer == nil || reason == ReasonAbandoned {
		return
	}
	// the player's request may finish before the announcement does
	go func() {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), announceTimeout)
		defer cancel()
		if err := c.Announcer.Announce(actx, rec); err != nil {
			log.Printf("[ERROR] announce result: %v", err)
		}
	}()
}

// Abandon cancels any in-flight load and retires the current session.
// A running session is journaled as abandoned.
func (c *Controller) Abandon(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	prev := c.session
	c.session = Session{}
	c.mu.Unlock()

	if prev.Running {
		c.finish(ctx, prev, ReasonAbandoned)
	}
}
