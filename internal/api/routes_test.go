package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/admin"
	"github.com/playmatatu/pegfall/internal/config"
	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/session"
	"github.com/playmatatu/pegfall/internal/store"
	"github.com/playmatatu/pegfall/internal/ws"
)

const adminToken = "admin-token"

type testServer struct {
	router *gin.Engine
	board  *store.MemoryHighScores
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	cfg := &config.Config{
		Environment:        "development",
		JWTSecret:          "api-secret",
		SessionTokenTTLMin: 10,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(log)
	go hub.Run(ctx)
	fanout := ws.NewFanout(nil, hub, log)

	board := store.NewMemoryHighScores()
	settings := store.NewMemorySettings()
	m, err := session.NewManager(game.DefaultTuning(),
		session.WithStores(board, settings),
		session.WithBroadcaster(hub),
		session.WithLeaderboardPublisher(fanout),
		session.WithTickInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(func() { m.Shutdown(context.Background()) })

	hash, err := admin.HashToken(adminToken)
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, Deps{
		Config:      cfg,
		Manager:     m,
		Leaderboard: board,
		Settings:    settings,
		Hub:         hub,
		Fanout:      fanout,
		Admin:       admin.NewVerifier(nil, hash, log),
		Log:         log,
	})
	return &testServer{router: router, board: board}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type createdSession struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

func (s *testServer) create(t *testing.T) createdSession {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/sessions", "", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out createdSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.SessionID)
	require.NotEmpty(t, out.Token)
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestConfigExposesPlayfield(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/v1/config", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ChuteThreshold int `json:"chute_threshold"`
		Playfield      struct {
			Width    float64 `json:"width"`
			Fixtures []struct {
				Tag string `json:"tag"`
			} `json:"fixtures"`
		} `json:"playfield"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 10, body.ChuteThreshold)
	assert.Equal(t, 600.0, body.Playfield.Width)
	require.NotEmpty(t, body.Playfield.Fixtures)
	assert.Equal(t, "peg", body.Playfield.Fixtures[0].Tag)
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	sess := s.create(t)
	base := "/api/v1/sessions/" + sess.SessionID

	w := s.do(http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, base, sess.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var live struct {
		Ended bool          `json:"ended"`
		Frame session.Frame `json:"frame"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &live))
	assert.False(t, live.Ended)
	assert.Equal(t, sess.SessionID, live.Frame.ID)
	assert.Equal(t, game.StateIdle, live.Frame.Snapshot.State)

	w = s.do(http.MethodPost, base+"/commands", sess.Token, session.Command{Type: session.CmdStart})
	require.Equal(t, http.StatusOK, w.Code)
	var res session.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Accepted)

	w = s.do(http.MethodPost, base+"/commands", sess.Token, session.Command{Type: session.CmdTriggerJackpot})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Accepted)

	w = s.do(http.MethodPost, base+"/commands", sess.Token, map[string]string{"type": "flipper"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, base, sess.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, base+"/commands", sess.Token, session.Command{Type: session.CmdFireCannon})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, base, sess.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTokenIsBoundToSession(t *testing.T) {
	s := newTestServer(t)
	a := s.create(t)
	b := s.create(t)

	w := s.do(http.MethodGet, "/api/v1/sessions/"+b.SessionID, a.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHighScores(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	for i, initials := range []string{"AAA", "BBB"} {
		_, err := s.board.AddHighScore(ctx, game.HighScoreEntry{Score: uint64(100 * (i + 1)), Initials: initials, Date: time.Now()})
		require.NoError(t, err)
	}

	w := s.do(http.MethodGet, "/api/v1/highscores", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		HighScores []game.HighScoreEntry `json:"high_scores"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.HighScores, 2)
	assert.Equal(t, "BBB", body.HighScores[0].Initials)
	assert.Equal(t, 1, body.HighScores[0].Rank)

	w = s.do(http.MethodGet, "/api/v1/highscores?limit=zero", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/highscores/check?score=150", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_high_score":true`)

	w = s.do(http.MethodGet, "/api/v1/highscores/check?score=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettings(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/settings/volume", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/v1/settings", "", map[string]string{"key": "volume", "value": "0.8"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/settings/volume", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":"0.8"`)

	w = s.do(http.MethodPut, "/api/v1/settings", "", map[string]string{"value": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/settings", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"volume":"0.8"`)
}

func TestAdminLeaderboardReset(t *testing.T) {
	s := newTestServer(t)
	_, err := s.board.AddHighScore(context.Background(), game.HighScoreEntry{Score: 10, Initials: "AAA", Date: time.Now()})
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/api/v1/admin/leaderboard/reset", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/leaderboard/reset", nil)
	req.Header.Set("X-Admin-Token", adminToken)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":1}`, rec.Body.String())

	top, err := s.board.TopScores(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.create(t)
	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pegfall_sessions_active")
}
