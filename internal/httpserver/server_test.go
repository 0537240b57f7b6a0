package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/toy-store-tussle/internal/game"
	"github.com/robalobadob/toy-store-tussle/internal/history"
	"github.com/robalobadob/toy-store-tussle/internal/store"
)

// memRecorder collects results in memory.
type memRecorder struct {
	mu   sync.Mutex
	rows []history.Result
}

func (m *memRecorder) Record(_ context.Context, r history.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append([]history.Result{r}, m.rows...)
	return nil
}

func (m *memRecorder) Recent(_ context.Context, limit int) ([]history.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit > len(m.rows) {
		limit = len(m.rows)
	}
	return append([]history.Result{}, m.rows[:limit]...), nil
}

type testApp struct {
	srv *Server
	rec *memRecorder
}

func newTestApp(t *testing.T, opts Options) *testApp {
	t.Helper()
	rec := &memRecorder{}
	if opts.TokenSecret == "" {
		opts.TokenSecret = "test-secret"
	}
	return &testApp{srv: New(store.NewMemoryStore(), rec, opts), rec: rec}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	a.srv.Router().ServeHTTP(res, req)
	return res
}

func (a *testApp) newMatch(t *testing.T, body any) newMatchRes {
	t.Helper()
	res := a.do(http.MethodPost, "/match/new", body, "")
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var out newMatchRes
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

func (a *testApp) intent(t *testing.T, m newMatchRes, body map[string]any) intentRes {
	t.Helper()
	res := a.do(http.MethodPost, "/match/"+m.MatchID+"/intent", body, m.Token)
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	var out intentRes
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	return out
}

func TestHealthAndIndex(t *testing.T) {
	app := newTestApp(t, Options{})

	res := app.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"ok":true}`, res.Body.String())
	require.Equal(t, "application/json; charset=utf-8", res.Header().Get("Content-Type"))

	res = app.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "toy-store-tussle")
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApp(t, Options{ClientOrigin: "http://example.test"})
	res := app.do(http.MethodOptions, "/match/new", nil, "")
	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, "http://example.test", res.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", res.Header().Get("Access-Control-Allow-Credentials"))
}

func TestWarmingUp(t *testing.T) {
	ready := make(chan struct{})
	app := newTestApp(t, Options{Ready: ready})

	res := app.do(http.MethodPost, "/match/new", nil, "")
	require.Equal(t, http.StatusServiceUnavailable, res.Code)
	require.Contains(t, res.Body.String(), "warming_up")

	res = app.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, res.Code, "health answers while warming up")

	close(ready)
	res = app.do(http.MethodPost, "/match/new", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
}

func TestManifest(t *testing.T) {
	app := newTestApp(t, Options{})
	res := app.do(http.MethodGet, "/assets/manifest", nil, "")
	require.Equal(t, http.StatusOK, res.Code)

	var m map[string]string
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &m))
	require.Len(t, m, game.DeckSize)
	require.Equal(t, "/assets/sliced/_0007_Dino_Red.png", m["Dino|Red"])
}

func TestNewMatch(t *testing.T) {
	app := newTestApp(t, Options{})

	t.Run("defaults", func(t *testing.T) {
		res := app.do(http.MethodPost, "/match/new", nil, "")
		require.Equal(t, http.StatusOK, res.Code)

		var out newMatchRes
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
		require.NotEmpty(t, out.MatchID)
		require.NotEmpty(t, out.Token)
		require.Equal(t, out.MatchID, out.State.ID)
		require.Equal(t, [2]game.Focus{game.FocusToy, game.FocusColor}, out.State.Focuses)
		require.Len(t, out.State.Display, game.DisplayCapacity)
		require.Equal(t, game.DeckSize-game.DisplayCapacity, out.State.SupplyRemaining)
		require.Equal(t, game.PhasePlace, out.State.Phase)
		require.False(t, out.State.Finished)

		var cookie *http.Cookie
		for _, c := range res.Result().Cookies() {
			if c.Name == tokenCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.Equal(t, out.Token, cookie.Value)
		require.True(t, cookie.HttpOnly)
	})

	t.Run("focus aliases", func(t *testing.T) {
		out := app.newMatch(t, newMatchReq{P1Focus: "genre", P2Focus: "genre"})
		require.Equal(t, [2]game.Focus{game.FocusToy, game.FocusColor}, out.State.Focuses)

		out = app.newMatch(t, newMatchReq{P1Focus: "colour"})
		require.Equal(t, [2]game.Focus{game.FocusColor, game.FocusToy}, out.State.Focuses)
	})
}

func TestSeededMatchesDealTheSameDisplay(t *testing.T) {
	app := newTestApp(t, Options{Seed: 42})
	a := app.newMatch(t, nil)
	b := app.newMatch(t, nil)
	require.NotEqual(t, a.MatchID, b.MatchID)
	require.Equal(t, a.State.Display, b.State.Display)
}

func TestDailyDeal(t *testing.T) {
	app := newTestApp(t, Options{DailySalt: "salt"})
	a := app.newMatch(t, newMatchReq{Daily: true})
	b := app.newMatch(t, newMatchReq{Daily: true, P1Focus: "color"})
	require.NotEmpty(t, a.Daily)
	require.Equal(t, a.Daily, b.Daily)
	require.Equal(t, a.State.Display, b.State.Display)

	plain := app.newMatch(t, nil)
	require.Empty(t, plain.Daily)

	app.intent(t, a, map[string]any{"kind": "slot", "index": 0})
	app.intent(t, a, map[string]any{"kind": "cell", "row": 0, "col": 0})
	out := app.intent(t, a, map[string]any{"kind": "new"})
	require.True(t, out.Changed)
	require.Zero(t, out.State.Placed)
	require.Equal(t, a.State.Display, out.State.Display, "restarting a daily match redeals the day's shuffle")
}

func TestMatchTokenChecks(t *testing.T) {
	app := newTestApp(t, Options{})
	a := app.newMatch(t, nil)
	b := app.newMatch(t, nil)

	res := app.do(http.MethodGet, "/match/"+a.MatchID, nil, "")
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = app.do(http.MethodGet, "/match/"+a.MatchID, nil, "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = app.do(http.MethodGet, "/match/"+a.MatchID, nil, b.Token)
	require.Equal(t, http.StatusForbidden, res.Code)

	other := newTestApp(t, Options{TokenSecret: "another-secret"})
	forged, _, err := other.srv.signMatchToken(a.MatchID)
	require.NoError(t, err)
	res = app.do(http.MethodGet, "/match/"+a.MatchID, nil, forged)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = app.do(http.MethodGet, "/match/"+a.MatchID, nil, a.Token)
	require.Equal(t, http.StatusOK, res.Code)

	req := httptest.NewRequest(http.MethodGet, "/match/"+a.MatchID, nil)
	req.AddCookie(&http.Cookie{Name: tokenCookieName, Value: a.Token})
	rec := httptest.NewRecorder()
	app.srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "cookie works as well as the header")
}

func TestUnknownMatch(t *testing.T) {
	app := newTestApp(t, Options{})
	tok, _, err := app.srv.signMatchToken("missing")
	require.NoError(t, err)

	res := app.do(http.MethodGet, "/match/missing", nil, tok)
	require.Equal(t, http.StatusNotFound, res.Code)

	res = app.do(http.MethodPost, "/match/missing/intent", map[string]any{"kind": "slot", "index": 0}, tok)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestIntentFlow(t *testing.T) {
	app := newTestApp(t, Options{Seed: 7})
	m := app.newMatch(t, nil)

	// Clicking an empty cell with nothing selected changes nothing.
	out := app.intent(t, m, map[string]any{"kind": "cell", "row": 0, "col": 0})
	require.False(t, out.Changed)

	out = app.intent(t, m, map[string]any{"kind": "slot", "index": 2})
	require.True(t, out.Changed)
	require.NotNil(t, out.State.SelectedSlot)
	require.Equal(t, 2, *out.State.SelectedSlot)
	want := m.State.Display[2]

	out = app.intent(t, m, map[string]any{"kind": "cell", "row": 0, "col": 0})
	require.True(t, out.Changed)
	require.NotNil(t, out.State.Board[0][0])
	require.Equal(t, want, *out.State.Board[0][0])
	require.Equal(t, 1, out.State.Current)
	require.Equal(t, 1, out.State.Placed)
	require.Len(t, out.State.Display, game.DisplayCapacity)

	// Player 2 selects the placed tile to slide it.
	out = app.intent(t, m, map[string]any{"kind": "cell", "row": 0, "col": 0})
	require.True(t, out.Changed)
	require.Equal(t, game.PhaseSlide, out.State.Phase)
	require.NotEmpty(t, out.State.Destinations)

	res := app.do(http.MethodGet, "/match/"+m.MatchID, nil, m.Token)
	require.Equal(t, http.StatusOK, res.Code)
	var snap game.Snapshot
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &snap))
	require.Equal(t, game.PhaseSlide, snap.Phase)
}

func TestIntentErrors(t *testing.T) {
	app := newTestApp(t, Options{})
	m := app.newMatch(t, nil)
	path := "/match/" + m.MatchID + "/intent"

	cases := []struct {
		name string
		body any
		code string
	}{
		{"unknown kind", map[string]any{"kind": "dance"}, "bad_intent"},
		{"cell without col", map[string]any{"kind": "cell", "row": 1}, "bad_intent"},
		{"slot without index", map[string]any{"kind": "slot"}, "bad_intent"},
		{"off board", map[string]any{"kind": "cell", "row": 6, "col": 0}, "out_of_bounds"},
		{"negative cell", map[string]any{"kind": "cell", "row": 0, "col": -1}, "out_of_bounds"},
		{"missing slot", map[string]any{"kind": "slot", "index": game.DisplayCapacity}, "bad_slot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := app.do(http.MethodPost, path, tc.body, m.Token)
			require.Equal(t, http.StatusBadRequest, res.Code)
			require.Contains(t, res.Body.String(), tc.code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+m.Token)
	rec := httptest.NewRecorder()
	app.srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "bad_json")
}

func TestFullMatchIsArchivedOnce(t *testing.T) {
	app := newTestApp(t, Options{Seed: 3})
	m := app.newMatch(t, nil)

	var out intentRes
	for i := 0; i < game.BoardSize*game.BoardSize; i++ {
		app.intent(t, m, map[string]any{"kind": "slot", "index": 0})
		out = app.intent(t, m, map[string]any{"kind": "cell", "row": i / game.BoardSize, "col": i % game.BoardSize})
		require.True(t, out.Changed)
	}
	require.True(t, out.State.Finished)
	require.NotNil(t, out.State.Result)
	require.Equal(t, game.BoardSize*game.BoardSize, out.State.Placed)

	// Intents on a finished match are absorbed.
	again := app.intent(t, m, map[string]any{"kind": "slot", "index": 0})
	require.False(t, again.Changed)

	require.Len(t, app.rec.rows, 1)
	got := app.rec.rows[0]
	require.Equal(t, m.MatchID, got.MatchID)
	require.Equal(t, out.State.Result.Winner, got.Winner)
	require.Equal(t, [2]int{out.State.Scores[0].Total, out.State.Scores[1].Total}, got.Scores)

	res := app.do(http.MethodGet, "/matches/recent?limit=5", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	var recent recentRes
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &recent))
	require.Len(t, recent.Results, 1)
	require.Equal(t, m.MatchID, recent.Results[0].MatchID)

	// Restarting keeps the match ID and a fresh board.
	out = app.intent(t, m, map[string]any{"kind": "new", "p1Focus": "color"})
	require.True(t, out.Changed)
	require.False(t, out.State.Finished)
	require.Equal(t, m.MatchID, out.State.ID)
	require.Zero(t, out.State.Placed)
	require.Equal(t, [2]game.Focus{game.FocusColor, game.FocusToy}, out.State.Focuses)
}

func TestRecentLimits(t *testing.T) {
	app := newTestApp(t, Options{})

	res := app.do(http.MethodGet, "/matches/recent", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"results":[]}`, res.Body.String())

	for _, q := range []string{"0", "-2", "ten"} {
		res = app.do(http.MethodGet, "/matches/recent?limit="+q, nil, "")
		require.Equal(t, http.StatusBadRequest, res.Code, q)
	}
}

func TestNotFoundRoute(t *testing.T) {
	app := newTestApp(t, Options{})
	res := app.do(http.MethodGet, "/nope", nil, "")
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Contains(t, res.Body.String(), "not_found")
}
