package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"StockGuess/internal/collector"
	"StockGuess/internal/engine"
	"StockGuess/internal/model"
)

func newTestFetcher() *collector.MockFetcher {
	return &collector.MockFetcher{Price: 100, Days: 200, Now: func() time.Time { return testNow }}
}

func TestRegistry_CreateGet(t *testing.T) {
	reg := NewRegistry(testFactory(&collector.MockFetcher{}))
	g := reg.Create()
	if reg.Len() != 1 {
		t.Fatalf("expected 1 game, got %d", reg.Len())
	}
	got, ok := reg.Get(g.ID)
	if !ok || got != g {
		t.Fatal("created game not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("unexpected game for unknown id")
	}
}

func TestRegistry_SweepEvictsIdle(t *testing.T) {
	reg := NewRegistry(testFactory(newTestFetcher()))
	stale := reg.Create()
	fresh := reg.Create()

	stale.Dispatch(context.Background(), engine.LoadRequested{Ticker: "IBM"})
	stale.mu.Lock()
	stale.lastSeen = time.Now().Add(-time.Hour)
	stale.mu.Unlock()

	if n := reg.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, ok := reg.Get(stale.ID); ok {
		t.Error("stale game still registered")
	}
	if _, ok := reg.Get(fresh.ID); !ok {
		t.Error("fresh game evicted")
	}
	if stale.Controller.Snapshot().State() != engine.StateIdle {
		t.Error("evicted controller should be abandoned")
	}
	select {
	case <-stale.Evicted():
	default:
		t.Error("evicted game not signalled")
	}
	select {
	case <-fresh.Evicted():
		t.Error("fresh game signalled as evicted")
	default:
	}
}

// assertViewMatchesSession checks the folded view against the controller's session.
func assertViewMatchesSession(t *testing.T, g *Game) {
	t.Helper()
	s := g.Controller.Snapshot()
	v := g.View()
	if v.Ticker != s.Ticker {
		t.Errorf("view ticker %s, session ticker %s", v.Ticker, s.Ticker)
	}
	if v.Score != s.Score {
		t.Errorf("view score %d, session score %d", v.Score, s.Score)
	}
	if v.CurrentDate != s.Current().DateString() {
		t.Errorf("view current date %s, session current date %s", v.CurrentDate, s.Current().DateString())
	}
	from := s.StartIndex - 7
	if from < 0 {
		from = 0
	}
	if want := s.StartIndex - from + 1 + s.Guesses(); len(v.Values) != want {
		t.Errorf("view has %d points, session implies %d", len(v.Values), want)
	}
	for i := 1; i < len(v.Labels); i++ {
		if v.Labels[i] <= v.Labels[i-1] {
			t.Fatalf("chart dates out of order: %s after %s", v.Labels[i], v.Labels[i-1])
		}
	}
}

func TestGame_GuessRacingLoadLeavesNoStaleView(t *testing.T) {
	g := NewRegistry(testFactory(newTestFetcher())).Create()
	ctx := context.Background()
	g.Dispatch(ctx, engine.LoadRequested{Ticker: "AAA"})
	for i := 0; i < 3; i++ {
		g.Dispatch(ctx, engine.GuessSubmitted{Direction: model.Down})
	}

	// Hold the view so the guess on AAA stalls mid-fold while a load for BBB queues behind it.
	g.mu.Lock()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		g.Dispatch(ctx, engine.GuessSubmitted{Direction: model.Down})
	}()
	time.Sleep(50 * time.Millisecond)
	go func() {
		defer wg.Done()
		g.Dispatch(ctx, engine.LoadRequested{Ticker: "BBB"})
	}()
	time.Sleep(50 * time.Millisecond)
	g.mu.Unlock()
	wg.Wait()

	if g.View().Ticker != "BBB" {
		t.Fatalf("expected BBB to win, view shows %s", g.View().Ticker)
	}
	assertViewMatchesSession(t, g)
}

func TestGame_ConcurrentDispatchKeepsViewConsistent(t *testing.T) {
	g := NewRegistry(testFactory(newTestFetcher())).Create()
	ctx := context.Background()
	g.Dispatch(ctx, engine.LoadRequested{Ticker: "AAA"})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 5 {
			case 0:
				g.Dispatch(ctx, engine.LoadRequested{Ticker: "BBB"})
			default:
				g.Dispatch(ctx, engine.GuessSubmitted{Direction: model.Up})
			}
		}(i)
	}
	wg.Wait()

	// a final load makes the session deterministic to compare against
	g.Dispatch(ctx, engine.LoadRequested{Ticker: "CCC"})
	g.Dispatch(ctx, engine.GuessSubmitted{Direction: model.Up})
	assertViewMatchesSession(t, g)
}
