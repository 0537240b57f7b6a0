// internal/httpserver/routes_history.go
//
// HTTP routes for the finished-match archive.
//   - GET /matches/recent?limit=N → newest results first (default 20, max 100)
//
// With no DB_PATH configured the archive is history.Nop and the list is empty.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/toy-store-tussle/internal/history"
)

const maxRecent = 100

// mountHistory registers the /matches routes.
func (s *Server) mountHistory(r chi.Router) {
	r.Route("/matches", func(r chi.Router) {
		r.Get("/recent", s.handleRecent)
	})
}

// recentRes is returned by /matches/recent.
type recentRes struct {
	Results []history.Result `json:"results"`
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		limit = min(n, maxRecent)
	}

	rows, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list recent results")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(recentRes{Results: rows})
}
