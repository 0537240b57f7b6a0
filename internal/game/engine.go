// internal/game/engine.go
//
// Match controller for a single Toy Store Tussle match.
// Responsibilities:
//   - Create matches: fresh shuffled deck, empty board, full display.
//   - Hold the two players' focuses for the whole match.
//   - Funnel every user intent through Apply so each transition is atomic.
//   - Detect the full board, score both players, and decide the winner.
//
// Notes:
//   - Ordinary user missteps are absorbed: Apply returns changed=false, nil.
//   - Contract violations (off-board cell, missing slot) return errors.
//   - After the match ends only a StartNew intent changes anything.

package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// Game is the explicit state object for one match.
type Game struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	focuses [2]Focus
	board   Board
	pool    *Pool
	turn    Turn
	result  *Result
	table   Table
	seed    uint64 // 0 when shuffles come from the clock
	rng     *rand.Rand
}

// Option configures a Game at construction.
type Option func(*Game)

// WithFocuses sets the players' focuses; equal values are corrected.
func WithFocuses(p1, p2 Focus) Option {
	return func(g *Game) { g.focuses = AssignFocuses(string(p1), string(p2)) }
}

// WithSeed makes deck shuffles reproducible. A seeded match deals the same
// shuffle again when restarted with StartNew.
func WithSeed(seed uint64) Option {
	return func(g *Game) { g.seed = seed }
}

// WithTable overrides the size→points table.
func WithTable(t Table) Option {
	return func(g *Game) {
		if len(t) > 0 {
			g.table = t
		}
	}
}

// New constructs a match and deals the opening display.
func New(opts ...Option) *Game {
	g := &Game{
		ID:      uuid.NewString(),
		focuses: [2]Focus{FocusToy, FocusColor},
		table:   DefaultTable,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.seed == 0 {
		g.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	g.reset()
	return g
}

// reset rebuilds deck, board, display, and turn state. Focuses are untouched.
func (g *Game) reset() {
	if g.seed != 0 {
		g.rng = rand.New(rand.NewSource(g.seed))
	}
	g.board = Board{}
	g.pool = NewPool(g.rng)
	g.turn = newTurn(0)
	g.result = nil
	g.StartedAt = time.Now().UTC()
	g.FinishedAt = time.Time{}
}

func (g *Game) finish() {
	g.turn.state = placing{slot: -1}
	r := Decide(g.Score(0), g.Score(1))
	g.result = &r
	g.FinishedAt = time.Now().UTC()
}

// Intent is a user action the controller interprets.
type Intent interface {
	apply(g *Game) (bool, error)
}

// ClickCell is a click on board cell (Row, Col).
type ClickCell struct{ Cell }

// ClickSlot is a click on display slot Index.
type ClickSlot struct{ Index int }

// StartNew starts a fresh match in place with new focus choices.
type StartNew struct{ P1, P2 Focus }

func (in ClickCell) apply(g *Game) (bool, error) {
	if !g.board.InBounds(in.Cell) {
		return false, fmt.Errorf("click %v: %w", in.Cell, ErrOutOfBounds)
	}
	if g.result != nil {
		return false, nil
	}
	return g.clickCell(in.Cell)
}

func (in ClickSlot) apply(g *Game) (bool, error) {
	if g.result != nil {
		return false, nil
	}
	return g.clickSlot(in.Index)
}

func (in StartNew) apply(g *Game) (bool, error) {
	g.focuses = AssignFocuses(string(in.P1), string(in.P2))
	g.reset()
	return true, nil
}

// Apply interprets one intent and reports whether state changed.
func (g *Game) Apply(in Intent) (bool, error) {
	if in == nil {
		return false, ErrUnknownIntent
	}
	return in.apply(g)
}

// Score computes the live score for player 0 or 1.
func (g *Game) Score(player int) Score {
	return ScoreFor(&g.board, g.focuses[player&1], g.table)
}

func (g *Game) Focuses() [2]Focus { return g.focuses }
func (g *Game) Current() int { return g.turn.player }
func (g *Game) Phase() Phase { return g.turn.state.phase() }
func (g *Game) HasSlid() bool { return g.turn.slid }
func (g *Game) Finished() bool { return g.result != nil }
func (g *Game) Result() *Result { return g.result }

// Selected returns the board cell held for sliding, if any.
func (g *Game) Selected() (Cell, bool) {
	if st, ok := g.turn.state.(sliding); ok && st.held {
		return st.from, true
	}
	return Cell{}, false
}

// Destinations returns the valid slide targets for the held cell.
func (g *Game) Destinations() []Cell {
	if st, ok := g.turn.state.(sliding); ok {
		return append([]Cell(nil), st.dests...)
	}
	return nil
}

// SelectedSlot returns the held display slot, if any.
func (g *Game) SelectedSlot() (int, bool) {
	if st, ok := g.turn.state.(placing); ok && st.slot >= 0 {
		return st.slot, true
	}
	return 0, false
}

// Accounted is supply+display+board; it equals DeckSize at all times.
func (g *Game) Accounted() int { return g.pool.Remaining() + g.board.Count() }

// Result is the outcome of a finished match.
type Result struct {
	Winner   int      `json:"winner"` // 0 or 1; -1 on a draw
	Draw     bool     `json:"draw"`
	Headline string   `json:"headline"`
	Scores   [2]Score `json:"scores"`
}

// Decide compares two totals.
func Decide(s1, s2 Score) Result {
	r := Result{Scores: [2]Score{s1, s2}}
	switch {
	case s1.Total > s2.Total:
		r.Winner, r.Headline = 0, "Player 1 wins!"
	case s1.Total < s2.Total:
		r.Winner, r.Headline = 1, "Player 2 wins!"
	default:
		r.Winner, r.Draw, r.Headline = -1, true, "Draw!"
	}
	return r
}
