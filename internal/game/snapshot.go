package game

// Snapshot is the read model handed to rendering collaborators.
type Snapshot struct {
	ID              string    `json:"matchId"`
	Board           [][]*Tile `json:"board"`
	Display         []Tile    `json:"display"`
	SupplyRemaining int       `json:"supplyRemaining"`
	Remaining       int       `json:"remaining"` // supply + display
	Placed          int       `json:"placed"`
	Total           int       `json:"total"`
	Current         int       `json:"current"`
	Phase           Phase     `json:"phase"`
	Selected        *Cell     `json:"selected"`
	Destinations    []Cell    `json:"validDests"`
	SelectedSlot    *int      `json:"selectedDisplay"`
	HasSlid         bool      `json:"hasSlidThisTurn"`
	Focuses         [2]Focus  `json:"focuses"`
	Scores          [2]Score  `json:"scores"`
	Finished        bool      `json:"finished"`
	Result          *Result   `json:"result,omitempty"`
	Status          string    `json:"status"`
}

// Snapshot copies the current state; later mutations do not affect it.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		ID:              g.ID,
		Board:           g.board.Rows(),
		Display:         g.pool.Display(),
		SupplyRemaining: g.pool.SupplyLen(),
		Remaining:       g.pool.Remaining(),
		Placed:          g.board.Count(),
		Total:           DeckSize,
		Current:         g.turn.player,
		Phase:           g.Phase(),
		Destinations:    g.Destinations(),
		HasSlid:         g.turn.slid,
		Focuses:         g.focuses,
		Scores:          [2]Score{g.Score(0), g.Score(1)},
		Finished:        g.result != nil,
		Status:          g.status(),
	}
	if s.Destinations == nil {
		s.Destinations = []Cell{}
	}
	if c, ok := g.Selected(); ok {
		s.Selected = &c
	}
	if i, ok := g.SelectedSlot(); ok {
		s.SelectedSlot = &i
	}
	if g.result != nil {
		r := *g.result
		s.Result = &r
	}
	return s
}

// status is the one-line hint for the acting player.
func (g *Game) status() string {
	if r := g.result; r != nil {
		return r.Headline
	}
	if g.Phase() == PhaseSlide {
		return "Optional: slide a tile, or select from display to place"
	}
	if _, ok := g.SelectedSlot(); ok {
		return "Place: click an empty cell"
	}
	if g.turn.slid {
		return "You already slid, place a tile"
	}
	return "Place: select a display tile"
}
