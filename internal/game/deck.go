// internal/game/deck.go
//
// Deck construction and the supply/display pool.
//
// The supply is a shuffled stack consumed from its end; the display is the
// bounded row of tiles the acting player may pick from. Tiles never return to
// either once placed, so supply+display+board always accounts for the deck.

package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// BuildDeck returns every (toy, color) pair once, type-major, unshuffled.
func BuildDeck() []Tile {
	d := make([]Tile, 0, DeckSize)
	for _, t := range Toys {
		for _, c := range Colors {
			d = append(d, Tile{Toy: t, Color: c})
		}
	}
	return d
}

// Shuffle permutes tiles in place with a uniform Fisher–Yates pass.
func Shuffle(tiles []Tile, rng *rand.Rand) {
	for i := len(tiles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
}

// Pool holds the undrawn supply and the face-up display.
type Pool struct {
	supply  []Tile
	display []Tile
}

// NewPool shuffles a fresh deck into the supply and fills the display.
func NewPool(rng *rand.Rand) *Pool {
	p := &Pool{supply: BuildDeck()}
	Shuffle(p.supply, rng)
	p.Refill()
	return p
}

// Draw moves one tile from the end of the supply into the display.
// It reports false, without error, when the supply is empty or the display full.
func (p *Pool) Draw() bool {
	if len(p.supply) == 0 || len(p.display) >= DisplayCapacity {
		return false
	}
	last := len(p.supply) - 1
	p.display = append(p.display, p.supply[last])
	p.supply = p.supply[:last]
	return true
}

// Refill draws until the display is full or the supply runs out.
func (p *Pool) Refill() {
	for p.Draw() {
	}
}

// Take removes display slot i (later slots shift left) and draws one replacement.
func (p *Pool) Take(i int) (Tile, error) {
	if i < 0 || i >= len(p.display) {
		return Tile{}, fmt.Errorf("take slot %d of %d: %w", i, len(p.display), ErrBadSlot)
	}
	t := p.display[i]
	p.display = append(p.display[:i], p.display[i+1:]...)
	p.Draw()
	return t, nil
}

// Peek returns the tile in display slot i.
func (p *Pool) Peek(i int) (Tile, bool) {
	if i < 0 || i >= len(p.display) {
		return Tile{}, false
	}
	return p.display[i], true
}

// Display returns a copy of the display row.
func (p *Pool) Display() []Tile { return append([]Tile(nil), p.display...) }

// DisplayLen is the number of tiles currently offered.
func (p *Pool) DisplayLen() int { return len(p.display) }

// SupplyLen is the number of tiles not yet drawn.
func (p *Pool) SupplyLen() int { return len(p.supply) }

// Remaining counts tiles not yet on the board.
func (p *Pool) Remaining() int { return len(p.supply) + len(p.display) }
