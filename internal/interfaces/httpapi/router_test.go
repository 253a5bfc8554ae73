package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-engine/internal/domain/actor"
	"github.com/riskibarqy/tournament-engine/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/tournament-engine/internal/platform/id"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
	"github.com/riskibarqy/tournament-engine/internal/usecase"
)

type staticVerifier map[string]actor.Principal

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (actor.Principal, error) {
	p, ok := v[token]
	if !ok {
		return actor.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return p, nil
}

type envelope struct {
	APIVersion string          `json:"apiVersion"`
	Data       json.RawMessage  `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()

	repo := memory.NewTournamentRepository()
	seasons := memory.NewSeasonRepository(memory.SeedSeasons())
	ids := idgen.NewUUIDGenerator()
	logger := logging.NewNop()

	tournaments := usecase.NewTournamentService(repo, seasons, nil, ids, logger, 0)
	handler := NewHandler(Services{
		Seasons:     usecase.NewSeasonService(seasons, ids),
		Tournaments: tournaments,
		Clocks:      usecase.NewClockService(repo, seasons, nil, ids, logger),
		Ledger:      usecase.NewLedgerService(repo, seasons, nil, ids, logger),
		Tables:      usecase.NewTableService(repo, seasons, nil, ids, logger, 0),
		Boards:      usecase.NewLeaderboardService(repo, seasons, ids, logger),
	}, nil, logger)

	verifier := staticVerifier{
		"admin":      {UserID: "admin-1", Role: actor.RoleAdmin},
		"director":   {UserID: "director-1", Role: actor.RoleDirector},
		"director-2": {UserID: "director-2", Role: actor.RoleDirector},
		"viewer":     {UserID: "viewer-1", Role: actor.RoleViewer},
	}

	srv := httptest.NewServer(NewRouter(handler, verifier, logger, RouterConfig{}))
	t.Cleanup(srv.Close)
	return &apiClient{t: t, server: srv}
}

func (c *apiClient) do(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, err := sonic.Marshal(v)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(c.t, sonic.ConfigDefault.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, sonic.Unmarshal(env.Data, &out))
	return out
}

func (c *apiClient) createTournament(token string) tournamentDTO {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/v1/tournaments", token, map[string]any{
		"name":     "Thursday bounty",
		"seasonId": memory.SeasonIDDefault,
		"schedule": []map[string]any{
			{"number": 1, "smallBlind": 25, "bigBlind": 50, "durationMinutes": 20},
			{"number": 2, "smallBlind": 50, "bigBlind": 100, "durationMinutes": 20},
		},
		"buyIn": 2000,
	})
	require.Equal(c.t, http.StatusCreated, status, "create tournament: %+v", env.Error)
	return decodeData[tournamentDTO](c.t, env)
}

func TestRouter_TournamentFlow(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	item := api.createTournament("director")
	require.Equal(t, "PLANNED", item.Status)
	require.Equal(t, "director-1", item.OwnerID)
	base := "/v1/tournaments/" + item.ID

	status, _ := api.do(http.MethodPost, base+"/registration", "director", nil)
	require.Equal(t, http.StatusOK, status)

	for _, id := range []string{"alice", "bob", "carol"} {
		status, env := api.do(http.MethodPost, base+"/players", "director", map[string]string{"playerId": id})
		require.Equal(t, http.StatusCreated, status, "enroll %s: %+v", id, env.Error)
	}

	status, _ = api.do(http.MethodPost, base+"/start", "director", nil)
	require.Equal(t, http.StatusOK, status)

	status, env := api.do(http.MethodGet, base+"/results", "", nil)
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "FAILED_PRECONDITION", env.Error.Status)
	require.Equal(t, "tournamentNotFinished", env.Error.Errors[0].Reason)

	status, env = api.do(http.MethodPost, base+"/eliminations", "director", map[string]string{
		"eliminatedPlayerId": "carol",
		"eliminatorPlayerId": "alice",
	})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	first := decodeData[eliminationResultDTO](t, env)
	require.Equal(t, 3, first.Elimination.Rank)
	require.False(t, first.TournamentCompleted)

	status, env = api.do(http.MethodPost, base+"/eliminations", "director", map[string]string{
		"eliminatedPlayerId": "carol",
		"eliminatorPlayerId": "bob",
	})
	require.Equal(t, http.StatusConflict, status)
	require.Equal(t, "playerAlreadyEliminated", env.Error.Errors[0].Reason)

	status, env = api.do(http.MethodPost, base+"/eliminations", "director", map[string]string{
		"eliminatedPlayerId": "bob",
		"eliminatorPlayerId": "alice",
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, decodeData[eliminationResultDTO](t, env).TournamentCompleted)

	status, env = api.do(http.MethodGet, base+"/results", "", nil)
	require.Equal(t, http.StatusOK, status)
	board := decodeData[leaderboardDTO](t, env)
	require.Equal(t, "FINISHED", board.Status)
	require.Len(t, board.Entries, 3)
	require.Equal(t, "alice", board.Entries[0].Player.PlayerID)
	require.Equal(t, "WINNER", board.Entries[0].Player.State)
}

func TestRouter_AuthorizationFailures(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	item := api.createTournament("director")
	base := "/v1/tournaments/" + item.ID

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		status int
		code   string
	}{
		{name: "missing token", method: http.MethodPost, path: "/v1/tournaments", status: http.StatusUnauthorized, code: "UNAUTHENTICATED"},
		{name: "unknown token", method: http.MethodPost, path: base + "/start", token: "nope", status: http.StatusUnauthorized, code: "UNAUTHENTICATED"},
		{name: "viewer cannot create", method: http.MethodPost, path: "/v1/tournaments", token: "viewer", body: map[string]any{"name": "x", "seasonId": "default-season"}, status: http.StatusForbidden, code: "PERMISSION_DENIED"},
		{name: "other director cannot direct", method: http.MethodPost, path: base + "/registration", token: "director-2", status: http.StatusForbidden, code: "PERMISSION_DENIED"},
		{name: "director cannot create season", method: http.MethodPost, path: "/v1/seasons", token: "director", body: map[string]any{"name": "s"}, status: http.StatusForbidden, code: "PERMISSION_DENIED"},
		{name: "missing tournament", method: http.MethodPost, path: "/v1/tournaments/missing/start", token: "admin", status: http.StatusNotFound, code: "NOT_FOUND"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, env := api.do(tc.method, tc.path, tc.token, tc.body)
			require.Equal(t, tc.status, status)
			require.NotNil(t, env.Error)
			require.Equal(t, tc.code, env.Error.Status)
		})
	}

	status, _ := api.do(http.MethodPost, base+"/registration", "admin", nil)
	require.Equal(t, http.StatusOK, status, "admin may direct any tournament")
}

func TestRouter_RequestValidation(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	item := api.createTournament("director")
	base := "/v1/tournaments/" + item.ID

	status, env := api.do(http.MethodPost, base+"/players", "director", `{"playerId":"a","nickname":"x"}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_ARGUMENT", env.Error.Status)

	status, _ = api.do(http.MethodPost, base+"/players", "director", `{"displayName":"no id"}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, env = api.do(http.MethodPost, base+"/timer/rewind", "director", nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "invalidInput", env.Error.Errors[0].Reason)
}

func TestRouter_SeasonsAndPreview(t *testing.T) {
	t.Parallel()

	api := newAPI(t)

	status, env := api.do(http.MethodPost, "/v1/seasons", "admin", map[string]any{"name": "Autumn league"})
	require.Equal(t, http.StatusCreated, status, "%+v", env.Error)
	created := decodeData[seasonDTO](t, env)
	require.Equal(t, "Autumn league", created.Name)

	status, env = api.do(http.MethodGet, "/v1/seasons/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, created.ID, decodeData[seasonDTO](t, env).ID)

	status, env = api.do(http.MethodPost, "/v1/blinds/preview", "", map[string]any{"preset": "turbo"})
	require.Equal(t, http.StatusOK, status, "%+v", env.Error)
	preview := decodeData[schedulePreviewDTO](t, env)
	require.NotEmpty(t, preview.Levels)
	require.Positive(t, preview.PlayingLevels)

	status, env = api.do(http.MethodPost, "/v1/blinds/preview", "", map[string]any{"preset": "hyper"})
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, "INVALID_ARGUMENT", env.Error.Status)
}

func TestRouter_LiveRejectsUnknownTournament(t *testing.T) {
	t.Parallel()

	api := newAPI(t)
	status, env := api.do(http.MethodGet, "/v1/tournaments/missing/live", "", nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, "tournamentNotFound", env.Error.Errors[0].Reason)
}
