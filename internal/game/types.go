// internal/game/types.go
//
// Core type definitions for the Toy Store Tussle engine.
// Defines:
//   - Toy / Color: the two tile attributes (six values each).
//   - Tile: an immutable (toy, color) pair.
//   - Focus: the attribute a player scores against for a whole match.
//   - Cell / Phase: board coordinates and the per-turn phase label.

package game

import "strings"

const (
	BoardSize       = 6
	DisplayCapacity = 6
	DeckSize        = len(Toys) * len(Colors)
)

// Toy is the toy-type attribute of a tile.
type Toy string

const (
	Robot  Toy = "Robot"
	Dino   Toy = "Dino"
	Car    Toy = "Car"
	Doll   Toy = "Doll"
	Puzzle Toy = "Puzzle"
	Ball   Toy = "Ball"
)

// Color is the color attribute of a tile.
type Color string

const (
	Orange Color = "Orange"
	Red    Color = "Red"
	Yellow Color = "Yellow"
	Green  Color = "Green"
	Blue   Color = "Blue"
	Purple Color = "Purple"
)

// Toys and Colors fix the deck order (type-major, color-minor).
var (
	Toys   = [...]Toy{Robot, Dino, Car, Doll, Puzzle, Ball}
	Colors = [...]Color{Orange, Red, Yellow, Green, Blue, Purple}
)

// Tile is a single game piece. Exactly one of each pair exists per deck.
type Tile struct {
	Toy   Toy   `json:"toy"`
	Color Color `json:"color"`
}

// Attr returns the tile's value for the given focus.
func (t Tile) Attr(f Focus) string {
	if f == FocusColor {
		return string(t.Color)
	}
	return string(t.Toy)
}

// Key is the "Toy|Color" form used by the asset manifest.
func (t Tile) Key() string { return string(t.Toy) + "|" + string(t.Color) }

// Focus selects which attribute groups are scored for a player.
type Focus string

const (
	FocusToy   Focus = "toy"
	FocusColor Focus = "color"
)

// Other returns the complementary focus.
func (f Focus) Other() Focus {
	if f == FocusColor {
		return FocusToy
	}
	return FocusColor
}

// Label is the human-facing name shown next to a player's score.
func (f Focus) Label() string {
	if f == FocusColor {
		return "Colors"
	}
	return "Toys"
}

// ParseFocus accepts the canonical names plus the aliases "type" and "genre".
// The empty string and unknown values report ok=false.
func ParseFocus(s string) (Focus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toy", "type", "genre":
		return FocusToy, true
	case "color", "colour":
		return FocusColor, true
	}
	return "", false
}

// AssignFocuses resolves the two players' focus choices for a match.
// Missing or unknown values fall back to toy for P1 and color for P2; if both
// end up equal, P2 is forced to the complement.
func AssignFocuses(p1, p2 string) [2]Focus {
	f1, ok := ParseFocus(p1)
	if !ok {
		f1 = FocusToy
	}
	f2, ok := ParseFocus(p2)
	if !ok {
		f2 = FocusColor
	}
	if f1 == f2 {
		f2 = f1.Other()
	}
	return [2]Focus{f1, f2}
}

// Cell addresses a board square.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Phase is the coarse label of the turn state.
type Phase string

const (
	PhasePlace Phase = "place"
	PhaseSlide Phase = "slide"
)
