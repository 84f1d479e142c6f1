package server

import (
	"context"
	"sync"
	"time"

	"StockGuess/internal/engine"
	"StockGuess/internal/presenter"

	"github.com/google/uuid"
)

// Game pairs one player's controller with the view its events fold into.
type Game struct {
	ID         string
	Controller *engine.Controller

	mu       sync.Mutex
	view     *presenter.View
	lastSeen time.Time

	evicted   chan struct{}
	evictOnce sync.Once
}

func newGame(ctrl *engine.Controller) *Game {
	g := &Game{
		ID:         uuid.NewString(),
		Controller: ctrl,
		view:       presenter.NewView(),
		lastSeen:   time.Now(),
		evicted:    make(chan struct{}),
	}
	ctrl.OnEvents = g.fold
	return g
}

// fold runs under the controller's lock, so the view sees events in transition order.
func (g *Game) fold(events []engine.Event) {
	g.mu.Lock()
	g.view.ApplyAll(events)
	g.mu.Unlock()
}

// Dispatch forwards msg to the controller and returns its events with the view after them.
func (g *Game) Dispatch(ctx context.Context, msg engine.Message) ([]engine.Event, presenter.View) {
	events := g.Controller.Dispatch(ctx, msg)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastSeen = time.Now()
	return events, g.snapshot()
}

// Evicted is closed once the registry drops the game.
func (g *Game) Evicted() <-chan struct{} { return g.evicted }

func (g *Game) evict() {
	g.evictOnce.Do(func() { close(g.evicted) })
}

// View returns a copy of the current view.
func (g *Game) View() presenter.View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() presenter.View {
	v := *g.view
	v.Labels = append([]string(nil), g.view.Labels...)
	v.Values = append([]float64(nil), g.view.Values...)
	return v
}

func (g *Game) touch() {
	g.mu.Lock()
	g.lastSeen = time.Now()
	g.mu.Unlock()
}

func (g *Game) idleSince() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastSeen
}

// Registry tracks live games by id.
type Registry struct {
	NewController func() *engine.Controller

	mu    sync.RWMutex
	games map[string]*Game
}

// NewRegistry creates an empty registry. factory builds one controller per game.
func NewRegistry(factory func() *engine.Controller) *Registry {
	return &Registry{
		NewController: factory,
		games:         make(map[string]*Game),
	}
}

// Create registers a new game and returns it.
func (r *Registry) Create() *Game {
	g := newGame(r.NewController())
	r.mu.Lock()
	r.games[g.ID] = g
	r.mu.Unlock()
	return g
}

// Get looks up a game and marks it as seen.
func (r *Registry) Get(id string) (*Game, bool) {
	r.mu.RLock()
	g, ok := r.games[id]
	r.mu.RUnlock()
	if ok {
		g.touch()
	}
	return g, ok
}

// Len returns the number of live games.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Sweep evicts games idle for longer than olderThan and returns how many were removed.
func (r *Registry) Sweep(olderThan time.Duration) int {
	cutoff := time.Now().Add(-olderThan)
	var evicted []*Game

	r.mu.Lock()
	for id, g := range r.games {
		if g.idleSince().Before(cutoff) {
			evicted = append(evicted, g)
			delete(r.games, id)
		}
	}
	r.mu.Unlock()

	for _, g := range evicted {
		g.evict()
		g.Controller.Abandon(context.Background())
	}
	return len(evicted)
}
