// internal/game/turn.go
//
// Per-turn state machine.
//
// A turn is either placing (optionally holding a display slot) or sliding
// (optionally holding a board cell and its destinations). Holding both kinds
// of selection at once is not representable. The slid flag is orthogonal and
// allows at most one slide per turn; only a placement ends the turn.

package game

import "fmt"

type turnState interface {
	phase() Phase
}

type placing struct {
	slot int // -1 when no display tile is held
}

func (placing) phase() Phase { return PhasePlace }

type sliding struct {
	from  Cell
	held  bool
	dests []Cell
}

func (sliding) phase() Phase { return PhaseSlide }

// Turn is the acting player plus their in-turn state.
type Turn struct {
	player int
	state  turnState
	slid   bool
}

func newTurn(player int) Turn {
	return Turn{player: player, state: placing{slot: -1}}
}

func (g *Game) selectForSlide(c Cell) sliding {
	return sliding{from: c, held: true, dests: ValidDestinations(&g.board, c)}
}

func (g *Game) clickCell(c Cell) (bool, error) {
	switch st := g.turn.state.(type) {
	case sliding:
		return g.clickSliding(st, c)
	case placing:
		return g.clickPlacing(st, c)
	}
	return false, nil
}

func (g *Game) clickPlacing(st placing, c Cell) (bool, error) {
	if g.board.occupied(c) {
		if g.turn.slid {
			return false, nil
		}
		g.turn.state = g.selectForSlide(c)
		return true, nil
	}
	if st.slot < 0 {
		return false, nil
	}
	t, ok := g.pool.Peek(st.slot)
	if !ok {
		g.turn.state = placing{slot: -1}
		return true, nil
	}
	if err := g.board.Place(c, t); err != nil {
		return false, err
	}
	if _, err := g.pool.Take(st.slot); err != nil {
		return false, err
	}
	if g.board.IsFull() {
		g.finish()
		return true, nil
	}
	g.turn = newTurn(1 - g.turn.player)
	return true, nil
}

func (g *Game) clickSliding(st sliding, c Cell) (bool, error) {
	// Not reachable through Apply: clickPlacing never reopens sliding once slid.
	if g.turn.slid {
		g.turn.state = placing{slot: -1}
		return true, nil
	}
	if g.board.occupied(c) && (!st.held || st.from != c) {
		g.turn.state = g.selectForSlide(c)
		return true, nil
	}
	if st.held && containsCell(st.dests, c) {
		if err := g.board.Move(st.from, c); err != nil {
			return false, err
		}
		g.turn.slid = true
		g.turn.state = placing{slot: -1}
		return true, nil
	}
	// anything else cancels the held tile but stays in slide
	g.turn.state = sliding{}
	return st.held, nil
}

func (g *Game) clickSlot(i int) (bool, error) {
	if i < 0 || i >= g.pool.DisplayLen() {
		return false, fmt.Errorf("select slot %d of %d: %w", i, g.pool.DisplayLen(), ErrBadSlot)
	}
	if p, ok := g.turn.state.(placing); ok && p.slot == i {
		g.turn.state = placing{slot: -1}
	} else {
		g.turn.state = placing{slot: i}
	}
	return true, nil
}
