package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchday/internal/domain/rating"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/platform/id"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/metrics"
	"github.com/riskibarqy/matchday/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	APIVersion string          `json:"apiVersion"`
	Data       map[string]any  `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

func newTestRouter(t *testing.T) (http.Handler, *metrics.Manager) {
	t.Helper()

	store := memory.NewStore()
	idGen := id.NewUUIDGenerator()
	ratingCfg := rating.DefaultConfig()
	manager := metrics.NewManager()
	logger := logging.NewNop()

	players := usecase.NewPlayerService(store.Players(), idGen, ratingCfg.Bounds)
	matches := usecase.NewMatchService(store.Matches(), store.Players(), idGen, "4-3-3")
	squads := usecase.NewSquadService(
		store.Matches(), store.Players(), store.Squads(), nil, manager, idGen,
		usecase.SquadConfig{DefaultFormation: "4-3-3", ShuffleAttempts: 3, WorkerPoolSize: 2},
		logger,
	)
	ballots, err := usecase.NewBallotService(
		store.Matches(), store.Players(), store.Squads(), store.Ballots(), ratingCfg, nil, manager, logger,
	)
	require.NoError(t, err)

	handler := NewHandler(players, matches, squads, ballots, logger)
	return NewRouter(handler, logger, RouterConfig{CORSAllowedOrigins: []string{"*"}, Metrics: manager}), manager
}

func call(t *testing.T, router http.Handler, method, path, body string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out envelope
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code, out
}

func registerPlayer(t *testing.T, router http.Handler, name, pos string, ovr int) string {
	t.Helper()
	code, body := call(t, router, http.MethodPost, "/v1/players",
		fmt.Sprintf(`{"name":%q,"position":%q,"rating":%d}`, name, pos, ovr))
	if code != http.StatusCreated {
		t.Fatalf("register %s: status %d %+v", name, code, body.Error)
	}
	return body.Data["id"].(string)
}

func TestMatchdayFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	gk := registerPlayer(t, router, "Kim (GK)", "GK", 70)
	cb := registerPlayer(t, router, "Lee", "CB", 65)
	st := registerPlayer(t, router, "Park", "ST", 80)
	rm := registerPlayer(t, router, "Choi", "RM", 60)
	uids := []string{gk, cb, st, rm}

	code, body := call(t, router, http.MethodGet, "/v1/players/"+gk, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Kim", body.Data["display_name"])

	code, body = call(t, router, http.MethodGet, "/v1/players/"+rm, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "RW", body.Data["canonical_position"])

	code, body = call(t, router, http.MethodPost, "/v1/matches",
		`{"title":"Saturday five-a-side","scheduled_at":"2026-05-02T18:00:00Z","formation_a":"4-4-2"}`)
	require.Equal(t, http.StatusCreated, code, "%+v", body.Error)
	matchID := body.Data["id"].(string)

	for _, uid := range uids {
		code, body = call(t, router, http.MethodPut, "/v1/matches/"+matchID+"/attendance",
			fmt.Sprintf(`{"player_id":%q,"attending":true}`, uid))
		require.Equal(t, http.StatusOK, code, "%+v", body.Error)
	}

	code, body = call(t, router, http.MethodPut, "/v1/matches/"+matchID+"/pins",
		fmt.Sprintf(`{"pins":{%q:"A"}}`, st))
	require.Equal(t, http.StatusOK, code, "%+v", body.Error)

	code, body = call(t, router, http.MethodPost, "/v1/matches/"+matchID+"/squad", `{"seed":42}`)
	require.Equal(t, http.StatusCreated, code, "%+v", body.Error)
	teamA := body.Data["team_a"].(map[string]any)
	teamB := body.Data["team_b"].(map[string]any)
	assert.Equal(t, "4-4-2", teamA["formation"])
	assert.Equal(t, "4-3-3", teamB["formation"])
	assert.Len(t, teamA["slots"], 11)

	code, _ = call(t, router, http.MethodGet, "/v1/matches/"+matchID+"/squad", "")
	require.Equal(t, http.StatusOK, code)

	code, body = call(t, router, http.MethodPost, "/v1/matches/"+matchID+"/complete", `{"score_a":3,"score_b":1}`)
	require.Equal(t, http.StatusOK, code, "%+v", body.Error)
	score := body.Data["score"].(map[string]any)
	assert.Equal(t, "win", score["result_a"])
	assert.Len(t, body.Data["eligible_voters"], 4)

	code, _ = call(t, router, http.MethodPut, "/v1/matches/"+matchID+"/attendance",
		fmt.Sprintf(`{"player_id":%q,"attending":false}`, cb))
	assert.Equal(t, http.StatusConflict, code, "attendance is frozen after completion")

	votes := fmt.Sprintf(`{"bomber":%q,"midfielder":%q,"defender":%q,"goalkeeper":%q}`, st, rm, cb, gk)
	for i, uid := range uids {
		code, body = call(t, router, http.MethodPost, "/v1/matches/"+matchID+"/ballots",
			fmt.Sprintf(`{"voter_id":%q,"votes":%s}`, uid, votes))
		require.Equal(t, http.StatusCreated, code, "%+v", body.Error)
		final := body.Data["final"].(bool)
		assert.Equal(t, i == len(uids)-1, final)

		if i == 0 {
			code, _ = call(t, router, http.MethodPost, "/v1/matches/"+matchID+"/ballots",
				fmt.Sprintf(`{"voter_id":%q,"votes":%s}`, uid, votes))
			assert.Equal(t, http.StatusConflict, code, "second ballot from the same voter")

			code, body = call(t, router, http.MethodGet, "/v1/matches/"+matchID+"/ballots/progress", "")
			require.Equal(t, http.StatusOK, code)
			assert.Len(t, body.Data["missing"], 3)
		}
		if final {
			deltas := body.Data["deltas"].(map[string]any)
			assert.Contains(t, deltas, st)
		}
	}

	code, body = call(t, router, http.MethodGet, "/v1/matches/"+matchID+"/ballots/progress", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body.Data["stats_calculated"])
	assert.Empty(t, body.Data["missing"])

	code, body = call(t, router, http.MethodGet, "/v1/players/"+st, "")
	require.Equal(t, http.StatusOK, code)
	stats := body.Data["stats"].(map[string]any)
	assert.Equal(t, 81.0, stats["SHO"])
}

func TestHandlerErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
		status string
	}{
		{name: "unknown match", method: http.MethodGet, path: "/v1/matches/nope", want: http.StatusNotFound, status: "NOT_FOUND"},
		{name: "unknown player", method: http.MethodGet, path: "/v1/players/nope", want: http.StatusNotFound, status: "NOT_FOUND"},
		{name: "unknown field", method: http.MethodPost, path: "/v1/players", body: `{"name":"A","club":"x"}`, want: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "missing body", method: http.MethodPost, path: "/v1/matches", want: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "rating out of range", method: http.MethodPost, path: "/v1/players", body: `{"name":"A","rating":120}`, want: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "unknown stat", method: http.MethodPost, path: "/v1/players", body: `{"name":"A","stats":{"SPD":70}}`, want: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "squad for unknown match", method: http.MethodPost, path: "/v1/matches/nope/squad", want: http.StatusNotFound, status: "NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := call(t, router, tc.method, tc.path, tc.body)
			if code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, code)
			}
			if body.Error == nil || body.Error.Status != tc.status {
				t.Fatalf("expected error status %s, got %+v", tc.status, body.Error)
			}
		})
	}
}

func TestBallotBeforeCompletionConflicts(t *testing.T) {
	router, _ := newTestRouter(t)

	uid := registerPlayer(t, router, "Solo", "CM", 60)
	_, body := call(t, router, http.MethodPost, "/v1/matches", `{"title":"Midweek","scheduled_at":"2026-05-06T19:00:00Z"}`)
	matchID := body.Data["id"].(string)

	code, _ := call(t, router, http.MethodPost, "/v1/matches/"+matchID+"/ballots",
		fmt.Sprintf(`{"voter_id":%q,"votes":{}}`, uid))
	assert.Equal(t, http.StatusConflict, code)
}

func TestMetricsEndpointRecordsRoutePattern(t *testing.T) {
	router, _ := newTestRouter(t)

	code, _ := call(t, router, http.MethodGet, "/v1/matches/unknown", "")
	require.Equal(t, http.StatusNotFound, code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	out := rec.Body.String()
	assert.Contains(t, out, `matchday_http_requests_total{method="GET",route="/v1/matches/{matchID}",status="404"} 1`)
}

func TestMapError(t *testing.T) {
	ctx := context.Background()

	aborted := crerr.Mark(crerr.Wrap(fmt.Errorf("boom"), "aggregate"), usecase.ErrAggregationAborted)
	assert.Equal(t, http.StatusServiceUnavailable, mapError(ctx, aborted).HTTPStatus)
	assert.Equal(t, http.StatusConflict, mapError(ctx, fmt.Errorf("%w: x", usecase.ErrConflict)).HTTPStatus)
	assert.Equal(t, http.StatusServiceUnavailable, mapError(ctx, fmt.Errorf("%w: nats", usecase.ErrDependencyUnavailable)).HTTPStatus)
	assert.Equal(t, http.StatusInternalServerError, mapError(ctx, fmt.Errorf("driver: bad connection")).HTTPStatus)

	rec := httptest.NewRecorder()
	writeError(ctx, rec, fmt.Errorf("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRecoverPanic(t *testing.T) {
	h := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
