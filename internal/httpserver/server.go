// internal/httpserver/server.go
//
// HTTP server wiring for the Toy Store Tussle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Readiness gate: everything else answers 503 until sprites are checked.
//   - Match endpoints: POST /match/new, GET /match/{id}, POST /match/{id}/intent.
//   - Archive endpoint: GET /matches/recent (see routes_history.go).
//
// Notes:
//   - Every intent on a match runs inside store.Update, one at a time.
//   - User missteps come back as 200 with changed=false; contract violations
//     (off-board cells, missing display slots, unknown kinds) are 400s.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/toy-store-tussle/assets"
	"github.com/robalobadob/toy-store-tussle/internal/daily"
	"github.com/robalobadob/toy-store-tussle/internal/game"
	"github.com/robalobadob/toy-store-tussle/internal/history"
	"github.com/robalobadob/toy-store-tussle/internal/store"
)

// Options carries the server's tunables; zero values get defaults.
type Options struct {
	ClientOrigin  string
	TokenSecret   string
	TokenTTL      time.Duration
	SecureCookies bool
	Seed          uint64     // non-zero deals every new match from this seed
	DailySalt     string     // keys the daily deal
	Points        game.Table // nil uses game.DefaultTable
	Ready         <-chan struct{}
}

// Server bundles router, live match store, and results archive.
type Server struct {
	r       *chi.Mux
	store   store.Store
	history history.Recorder
	opts    Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, rec history.Recorder, opts Options) *Server {
	if rec == nil {
		rec = history.Nop{}
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.TokenSecret == "" {
		opts.TokenSecret = "dev_secret_change_me"
	}
	if opts.DailySalt == "" {
		opts.DailySalt = "local_dev_salt"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	if opts.Ready == nil {
		ready := make(chan struct{})
		close(ready)
		opts.Ready = ready
	}
	s := &Server{r: chi.NewRouter(), store: st, history: rec, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"toy-store-tussle","endpoints":["/health","/assets/manifest","POST /match/new","GET /match/{id}","POST /match/{id}/intent","/matches/recent"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireReady)

		r.Get("/assets/manifest", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(assets.Manifest())
		})
		r.Post("/match/new", s.handleNewMatch)
		r.Route("/match/{id}", func(r chi.Router) {
			r.Use(s.requireMatchToken)
			r.Get("/", s.handleGetMatch)
			r.Post("/intent", s.handleIntent)
		})
		s.mountHistory(r)
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireReady answers 503 until the asset preload has finished.
func (s *Server) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-s.opts.Ready:
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, `{"error":"warming_up"}`, http.StatusServiceUnavailable)
		}
	})
}

// requestLogger writes one debug line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ MATCH --------------------------------------

type newMatchReq struct {
	P1Focus string `json:"p1Focus"`
	P2Focus string `json:"p2Focus"`
	Daily   bool   `json:"daily"`
}
type newMatchRes struct {
	MatchID string        `json:"matchId"`
	Token   string        `json:"token"`
	Daily   string        `json:"daily,omitempty"` // YYYY-MM-DD of the daily deal
	State   game.Snapshot `json:"state"`
}

// gameOptions builds the per-match options from server config.
// A daily match takes its seed from today's date instead of Seed.
func (s *Server) gameOptions(f [2]game.Focus, dailySeed uint64) []game.Option {
	opts := []game.Option{game.WithFocuses(f[0], f[1]), game.WithTable(s.opts.Points)}
	switch {
	case dailySeed != 0:
		opts = append(opts, game.WithSeed(dailySeed))
	case s.opts.Seed != 0:
		opts = append(opts, game.WithSeed(s.opts.Seed))
	}
	return opts
}

// handleNewMatch deals a new match and issues its token.
// An empty body is allowed and gives the default focuses.
// {"daily":true} deals today's shared shuffle.
func (s *Server) handleNewMatch(w http.ResponseWriter, r *http.Request) {
	var req newMatchReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	var dateKey string
	var dailySeed uint64
	if req.Daily {
		now := time.Now()
		dateKey, dailySeed = daily.DateKey(now), daily.Seed(now, s.opts.DailySalt)
	}

	g := game.New(s.gameOptions(game.AssignFocuses(req.P1Focus, req.P2Focus), dailySeed)...)
	if err := s.store.Save(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("save match")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	tok, exp, err := s.signMatchToken(g.ID)
	if err != nil {
		log.Error().Err(err).Str("matchId", g.ID).Msg("sign match token")
		http.Error(w, `{"error":"sign_failed"}`, http.StatusInternalServerError)
		return
	}
	s.setMatchCookie(w, tok, exp)

	f := g.Focuses()
	log.Info().Str("matchId", g.ID).Str("p1", string(f[0])).Str("p2", string(f[1])).Str("daily", dateKey).Msg("match created")
	_ = json.NewEncoder(w).Encode(newMatchRes{MatchID: g.ID, Token: tok, Daily: dateKey, State: g.Snapshot()})
}

// handleGetMatch returns the read model.
func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	var snap game.Snapshot
	err := s.store.View(r.Context(), chi.URLParam(r, "id"), func(g *game.Game) error {
		snap = g.Snapshot()
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// intentReq is the body of POST /match/{id}/intent.
//
//	{"kind":"cell","row":2,"col":3}
//	{"kind":"slot","index":0}
//	{"kind":"new","p1Focus":"color","p2Focus":"toy"}
type intentReq struct {
	Kind    string `json:"kind"`
	Row     *int   `json:"row"`
	Col     *int   `json:"col"`
	Index   *int   `json:"index"`
	P1Focus string `json:"p1Focus"`
	P2Focus string `json:"p2Focus"`
}

type intentRes struct {
	Changed bool          `json:"changed"`
	State   game.Snapshot `json:"state"`
}

func (req intentReq) intent() (game.Intent, error) {
	switch req.Kind {
	case "cell":
		if req.Row == nil || req.Col == nil {
			return nil, errors.New("cell intent needs row and col")
		}
		return game.ClickCell{Cell: game.Cell{Row: *req.Row, Col: *req.Col}}, nil
	case "slot":
		if req.Index == nil {
			return nil, errors.New("slot intent needs index")
		}
		return game.ClickSlot{Index: *req.Index}, nil
	case "new":
		return game.StartNew{P1: game.Focus(req.P1Focus), P2: game.Focus(req.P2Focus)}, nil
	}
	return nil, game.ErrUnknownIntent
}

// handleIntent applies one intent and archives the result if it ended the match.
func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	var req intentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	in, err := req.intent()
	if err != nil {
		http.Error(w, `{"error":"bad_intent"}`, http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	var (
		res      intentRes
		finished *history.Result
	)
	err = s.store.Update(r.Context(), id, func(g *game.Game) error {
		wasOver := g.Finished()
		changed, err := g.Apply(in)
		if err != nil {
			return err
		}
		res = intentRes{Changed: changed, State: g.Snapshot()}
		if !wasOver {
			if hr, ok := history.FromGame(g); ok {
				finished = &hr
			}
		}
		return nil
	})
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if finished != nil {
		log.Info().Str("matchId", id).Ints("scores", finished.Scores[:]).Int("winner", finished.Winner).Msg("match finished")
		if err := s.history.Record(r.Context(), *finished); err != nil {
			log.Warn().Err(err).Str("matchId", id).Msg("record result")
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

// writeStoreError maps store and game errors to HTTP responses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
	case errors.Is(err, game.ErrOutOfBounds):
		log.Debug().Err(err).Msg("rejected intent")
		http.Error(w, `{"error":"out_of_bounds"}`, http.StatusBadRequest)
	case errors.Is(err, game.ErrBadSlot):
		log.Debug().Err(err).Msg("rejected intent")
		http.Error(w, `{"error":"bad_slot"}`, http.StatusBadRequest)
	default:
		log.Error().Err(err).Msg("match update")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
	}
}
