package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/game"
	"github.com/playmatatu/pegfall/internal/middleware"
	"github.com/playmatatu/pegfall/internal/session"
	"github.com/playmatatu/pegfall/internal/store"
)

const testSecret = "ws-secret"

func startHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := NewHub(zap.NewNop().Sugar())
	go h.Run(ctx)
	return h
}

func fakeClient(h *Hub, sessionID string) *Client {
	c := &Client{hub: h, sessionID: sessionID, send: make(chan []byte, 8)}
	h.register <- c
	return c
}

func waitRoom(t *testing.T, h *Hub, sessionID string, size int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.RoomSize(sessionID) == size }, time.Second, time.Millisecond)
}

func TestHubBroadcastsToRoom(t *testing.T) {
	h := startHub(t)
	a := fakeClient(h, "a")
	b := fakeClient(h, "b")
	waitRoom(t, h, "a", 1)
	waitRoom(t, h, "b", 1)

	h.Broadcast("a", session.Message{Type: "ping", Data: 1})

	select {
	case data := <-a.send:
		assert.JSONEq(t, `{"type":"ping","data":1}`, string(data))
	case <-time.After(time.Second):
		t.Fatal("room a did not receive the message")
	}
	assert.Empty(t, b.send)

	h.BroadcastAll(session.Message{Type: "all"})
	assert.Len(t, a.send, 1)
	assert.Len(t, b.send, 1)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := fakeClient(h, "a")
	waitRoom(t, h, "a", 1)

	h.unregister <- c
	waitRoom(t, h, "a", 0)
	_, ok := <-c.send
	assert.False(t, ok)
}

func TestFanoutWithoutRedisDeliversLocally(t *testing.T) {
	h := startHub(t)
	c := fakeClient(h, "a")
	waitRoom(t, h, "a", 1)

	f := NewFanout(nil, h, zap.NewNop().Sugar())
	require.NoError(t, f.PublishHighScore(context.Background(), game.HighScoreEntry{Score: 42, Initials: "ABC", Rank: 1}))

	var msg struct {
		Type string `json:"type"`
		Data struct {
			Type  string              `json:"type"`
			Entry game.HighScoreEntry `json:"entry"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-c.send, &msg))
	assert.Equal(t, session.MsgLeaderboard, msg.Type)
	assert.Equal(t, EventHighScore, msg.Data.Type)
	assert.Equal(t, uint64(42), msg.Data.Entry.Score)
	assert.Equal(t, 1, msg.Data.Entry.Rank)
}

func TestWebSocketCommands(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := startHub(t)
	m, err := session.NewManager(game.DefaultTuning(),
		session.WithStores(store.NewMemoryHighScores(), store.NewMemorySettings()),
		session.WithBroadcaster(h),
		session.WithTickInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	defer m.Shutdown(context.Background())

	r, err := m.Create(context.Background())
	require.NoError(t, err)
	token, _, err := middleware.IssueSessionToken(testSecret, r.ID(), time.Minute)
	require.NoError(t, err)

	router := gin.New()
	router.GET("/ws", middleware.RequireSessionToken(testSecret), HandleWebSocket(h, m))
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var first session.Message
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, session.MsgFrame, first.Type)
	waitRoom(t, h, r.ID(), 1)

	require.NoError(t, conn.WriteJSON(session.Command{Type: session.CmdStart}))
	res := readResult(t, conn)
	assert.Equal(t, session.CmdStart, res.Command)
	assert.True(t, res.Result.Accepted)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "flipper", "side": "sideways"}))
	var errMsg map[string]any
	for {
		require.NoError(t, conn.ReadJSON(&errMsg))
		if errMsg["type"] == "error" {
			break
		}
	}
	assert.NotEmpty(t, errMsg["message"])
}

// readResult skips broadcast traffic until the next command result.
func readResult(t *testing.T, conn *websocket.Conn) commandResult {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var res commandResult
		if json.Unmarshal(data, &res) == nil && res.Type == "command_result" {
			return res
		}
	}
}
