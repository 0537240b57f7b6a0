// internal/game/board.go
//
// Board is the fixed 6x6 grid. It is pure data: placement and movement
// enforce their preconditions by returning errors, and callers are expected
// to check IsEmpty first. Tiles are never removed, only relocated.

package game

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds   = errors.New("game: cell out of bounds")
	ErrOccupied      = errors.New("game: cell occupied")
	ErrEmptyCell     = errors.New("game: cell empty")
	ErrBadSlot       = errors.New("game: display slot out of range")
	ErrUnknownIntent = errors.New("game: unknown intent")
)

// orthogonal neighbor offsets: down, up, right, left.
var dirs = [4]Cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Board is the 6×6 grid of optional tiles.
type Board struct {
	cells  [BoardSize][BoardSize]*Tile
	placed int
}

// InBounds reports whether c lies on the board.
func (b *Board) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

// At returns the tile at c, if any.
func (b *Board) At(c Cell) (Tile, bool) {
	if !b.InBounds(c) || b.cells[c.Row][c.Col] == nil {
		return Tile{}, false
	}
	return *b.cells[c.Row][c.Col], true
}

// IsEmpty reports whether c is on the board and holds no tile.
func (b *Board) IsEmpty(c Cell) bool {
	return b.InBounds(c) && b.cells[c.Row][c.Col] == nil
}

func (b *Board) occupied(c Cell) bool {
	return b.InBounds(c) && b.cells[c.Row][c.Col] != nil
}

// Place puts t on an empty cell.
func (b *Board) Place(c Cell, t Tile) error {
	if !b.InBounds(c) {
		return fmt.Errorf("place at %v: %w", c, ErrOutOfBounds)
	}
	if b.cells[c.Row][c.Col] != nil {
		return fmt.Errorf("place at %v: %w", c, ErrOccupied)
	}
	b.cells[c.Row][c.Col] = &t
	b.placed++
	return nil
}

// Move relocates the tile at from onto the empty cell to.
func (b *Board) Move(from, to Cell) error {
	if !b.InBounds(from) || !b.InBounds(to) {
		return fmt.Errorf("move %v->%v: %w", from, to, ErrOutOfBounds)
	}
	if b.cells[from.Row][from.Col] == nil {
		return fmt.Errorf("move from %v: %w", from, ErrEmptyCell)
	}
	if b.cells[to.Row][to.Col] != nil {
		return fmt.Errorf("move to %v: %w", to, ErrOccupied)
	}
	b.cells[to.Row][to.Col] = b.cells[from.Row][from.Col]
	b.cells[from.Row][from.Col] = nil
	return nil
}

// IsFull is the sole end-of-game trigger.
func (b *Board) IsFull() bool { return b.placed == BoardSize*BoardSize }

// Count is the number of tiles on the board.
func (b *Board) Count() int { return b.placed }

// Rows returns a copy of the grid with nil for empty cells.
func (b *Board) Rows() [][]*Tile {
	out := make([][]*Tile, BoardSize)
	for r := range out {
		out[r] = make([]*Tile, BoardSize)
		for c, t := range b.cells[r] {
			if t != nil {
				cp := *t
				out[r][c] = &cp
			}
		}
	}
	return out
}
