// internal/game/score.go
//
// Connected-group scoring.
//
// A group is a maximal 4-connected set of tiles sharing the same value of the
// scored attribute. Groups are found with a BFS per unvisited tile, so each
// tile lands in exactly one group. Group size maps to points via a Table.

package game

import (
	"errors"
	"fmt"
	"sort"
)

// Table maps group size to points. Sizes below 2 never score; sizes above the
// largest listed size score as that largest size.
type Table map[int]int

// DefaultTable is the standard size→points table.
var DefaultTable = Table{2: 1, 3: 3, 4: 6, 5: 10, 6: 15}

// Points returns the award for a group of the given size.
func (t Table) Points(size int) int {
	if size < 2 {
		return 0
	}
	if p, ok := t[size]; ok {
		return p
	}
	top := 0
	for s := range t {
		if s > top {
			top = s
		}
	}
	if top > 0 && size > top {
		return t[top]
	}
	return 0
}

// Validate rejects tables that could award points to singletons or negatives.
func (t Table) Validate() error {
	if len(t) == 0 {
		return errors.New("score table is empty")
	}
	sizes := make([]int, 0, len(t))
	for s := range t {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	for _, s := range sizes {
		if s < 2 {
			return fmt.Errorf("score table: size %d is below 2", s)
		}
		if t[s] < 0 {
			return fmt.Errorf("score table: size %d has negative points", s)
		}
	}
	return nil
}

// Group is one scoring component.
type Group struct {
	Attr   string `json:"attr"`
	Size   int    `json:"size"`
	Points int    `json:"pts"`
}

// Score is a player's total and the groups behind it.
type Score struct {
	Focus  Focus   `json:"focus"`
	Total  int     `json:"total"`
	Groups []Group `json:"groups"`
}

// ScoreFor partitions the board's tiles into focus-matching groups and sums
// their points. Groups are reported in row-major order of their first tile.
func ScoreFor(b *Board, f Focus, table Table) Score {
	if table == nil {
		table = DefaultTable
	}
	s := Score{Focus: f, Groups: []Group{}}
	var seen [BoardSize][BoardSize]bool
	queue := make([]Cell, 0, BoardSize*BoardSize)

	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			start := Cell{r, c}
			t, ok := b.At(start)
			if !ok || seen[r][c] {
				continue
			}
			attr := t.Attr(f)
			seen[r][c] = true
			queue = append(queue[:0], start)
			size := 0
			for head := 0; head < len(queue); head++ {
				cur := queue[head]
				size++
				for _, d := range dirs {
					n := Cell{cur.Row + d.Row, cur.Col + d.Col}
					if !b.InBounds(n) || seen[n.Row][n.Col] {
						continue
					}
					if nt, ok := b.At(n); ok && nt.Attr(f) == attr {
						seen[n.Row][n.Col] = true
						queue = append(queue, n)
					}
				}
			}
			if size >= 2 {
				pts := table.Points(size)
				s.Total += pts
				s.Groups = append(s.Groups, Group{Attr: attr, Size: size, Points: pts})
			}
		}
	}
	return s
}
