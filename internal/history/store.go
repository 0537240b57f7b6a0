// internal/history/store.go
//
// Archive of finished match results.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Recording one row per finished match and listing the most recent.
//
// Only finished results are written here. Live match state stays in memory
// and is gone when the process exits.

package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/toy-store-tussle/internal/game"
)

//go:embed sql/*.sql
var migrations embed.FS

// tsLayout keeps stored timestamps fixed-width so they sort as text.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Recorder is what the HTTP layer needs from the archive.
type Recorder interface {
	Record(ctx context.Context, r Result) error
	Recent(ctx context.Context, limit int) ([]Result, error)
}

// Result is one archived match.
type Result struct {
	MatchID    string    `json:"matchId"`
	Focuses    [2]string `json:"focuses"`
	Scores     [2]int    `json:"scores"`
	Winner     int       `json:"winner"` // -1 on a draw
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// FromGame builds a Result from a finished match; ok is false otherwise.
func FromGame(g *game.Game) (Result, bool) {
	r := g.Result()
	if r == nil {
		return Result{}, false
	}
	f := g.Focuses()
	return Result{
		MatchID:    g.ID,
		Focuses:    [2]string{string(f[0]), string(f[1])},
		Scores:     [2]int{r.Scores[0].Total, r.Scores[1].Total},
		Winner:     r.Winner,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}, true
}

// Store is the SQLite-backed Recorder.
type Store struct{ db *sql.DB }

// Open opens (creating if missing) the database at dsn and migrates it.
func Open(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// migrate applies every embedded sql/*.sql file once, in lexical order.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// Record inserts a result. Recording the same finish twice is ignored.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO match_results
            (match_id, p1_focus, p2_focus, p1_score, p2_score, winner, started_at, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.MatchID, r.Focuses[0], r.Focuses[1], r.Scores[0], r.Scores[1], r.Winner,
		r.StartedAt.UTC().Format(tsLayout), r.FinishedAt.UTC().Format(tsLayout),
	)
	return err
}

// Recent lists results newest first. Default limit is 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT match_id, p1_focus, p2_focus, p1_score, p2_score, winner, started_at, finished_at
        FROM match_results
        ORDER BY finished_at DESC, created_at DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var started, finished string
		if err := rows.Scan(&r.MatchID, &r.Focuses[0], &r.Focuses[1], &r.Scores[0], &r.Scores[1],
			&r.Winner, &started, &finished); err != nil {
			return nil, err
		}
		r.StartedAt = mustParse(started)
		r.FinishedAt = mustParse(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// mustParse parses stored timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(tsLayout, s)
	return t
}

// Nop is the Recorder used when the archive is disabled.
type Nop struct{}

func (Nop) Record(context.Context, Result) error { return nil }

func (Nop) Recent(context.Context, int) ([]Result, error) { return []Result{}, nil }
