// assets/icons.go
//
// Sprite manifest and preload barrier.
//
// Sprites live in ICON_DIR as _NNNN_<Toy>_<Color>.png, numbered by color
// column: Orange 0000..0005, Red 0006..0011, ... Purple 0030..0035, with toys
// in deck order inside each column.
//
// Loader checks every sprite once at startup. Missing files are logged and
// skipped (the browser draws a blank card), so Load only fails on a cancelled
// context. Ready() closes when loading is done and gates the HTTP API.

package assets

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/toy-store-tussle/internal/game"
)

// URLPrefix is where the browser expects sprites to be served.
const URLPrefix = "/assets/sliced"

var colorBase = map[game.Color]int{
	game.Orange: 0,
	game.Red:    6,
	game.Yellow: 12,
	game.Green:  18,
	game.Blue:   24,
	game.Purple: 30,
}

// Index returns the sprite number 0..35 for t, or -1 for an unknown tile.
func Index(t game.Tile) int {
	base, ok := colorBase[t.Color]
	if !ok {
		return -1
	}
	for i, toy := range game.Toys {
		if toy == t.Toy {
			return base + i
		}
	}
	return -1
}

// FileName is the sprite file for t.
func FileName(t game.Tile) string {
	return fmt.Sprintf("_%04d_%s_%s.png", Index(t), t.Toy, t.Color)
}

// Manifest maps every tile key ("Toy|Color") to its sprite URL.
func Manifest() map[string]string {
	m := make(map[string]string, game.DeckSize)
	for _, t := range game.BuildDeck() {
		m[t.Key()] = path.Join(URLPrefix, FileName(t))
	}
	return m
}

// Loader is a one-shot readiness barrier over the sprite directory.
type Loader struct {
	dir     string
	once    sync.Once
	done    chan struct{}
	mu      sync.Mutex
	missing []string
}

// NewLoader returns a Loader for dir. An empty dir skips the file checks.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, done: make(chan struct{})}
}

// Load checks each sprite and then releases Ready. Later calls are no-ops.
func (l *Loader) Load(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		err = l.load(ctx)
		if err == nil {
			close(l.done)
		}
	})
	return err
}

func (l *Loader) load(ctx context.Context) error {
	if l.dir == "" {
		log.Info().Msg("ICON_DIR not set; skipping sprite check")
		return nil
	}
	var missing []string
	for _, t := range game.BuildDeck() {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(l.dir, FileName(t))
		if _, err := os.Stat(p); err != nil {
			log.Warn().Str("sprite", p).Msg("missing sprite")
			missing = append(missing, FileName(t))
		}
	}
	l.mu.Lock()
	l.missing = missing
	l.mu.Unlock()
	log.Info().Str("dir", l.dir).Int("missing", len(missing)).Msg("sprites checked")
	return nil
}

// Ready is closed once Load has finished.
func (l *Loader) Ready() <-chan struct{} { return l.done }

// Missing lists sprite files that were not found.
func (l *Loader) Missing() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.missing...)
}
