package game

// ValidDestinations lists every empty cell reachable from c by a straight
// orthogonal slide. Each ray stops before the first occupied cell or the edge.
func ValidDestinations(b *Board, c Cell) []Cell {
	var out []Cell
	for _, d := range dirs {
		n := Cell{c.Row + d.Row, c.Col + d.Col}
		for b.IsEmpty(n) {
			out = append(out, n)
			n = Cell{n.Row + d.Row, n.Col + d.Col}
		}
	}
	return out
}

func containsCell(cells []Cell, c Cell) bool {
	for _, x := range cells {
		if x == c {
			return true
		}
	}
	return false
}
