// internal/store/memory.go
//
// In-memory registry of live matches.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Update runs the caller's function under the write lock, so one intent
//     at a time touches any match.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/toy-store-tussle/internal/game"
)

// ErrNotFound is returned for unknown match IDs.
var ErrNotFound = errors.New("store: match not found")

// Store defines the interface for live match storage.
type Store interface {
	// Save adds or replaces a match.
	Save(ctx context.Context, g *game.Game) error

	// View calls fn with the match under a read lock.
	View(ctx context.Context, id string, fn func(*game.Game) error) error

	// Update calls fn with the match under the write lock.
	Update(ctx context.Context, id string, fn func(*game.Game) error) error

	// Len reports how many matches are held.
	Len() int
}

type memory struct {
	mu    sync.RWMutex          // guards games and every *game.Game in it
	games map[string]*game.Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

func (m *memory) View(ctx context.Context, id string, fn func(*game.Game) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Game) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return ErrNotFound
	}
	return fn(g)
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}
