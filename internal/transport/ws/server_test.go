package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaswatnaman/Nirnay-112/internal/config"
	"github.com/shaswatnaman/Nirnay-112/internal/core"
	"github.com/shaswatnaman/Nirnay-112/internal/engine"
	"github.com/shaswatnaman/Nirnay-112/internal/intent"
	"github.com/shaswatnaman/Nirnay-112/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Store) {
	t.Helper()

	classifier := intent.New()
	store := session.NewStore(func(sessionID string) *engine.Session {
		return engine.NewSession(sessionID, core.SystemClock(), classifier, nil)
	})

	cfg := &config.ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		ShutdownTimeout: time.Second,
	}
	server := NewServer(context.Background(), cfg, store)

	ts := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/call"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCallFlow(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":       "start",
		"session_id": "call-1",
	}))

	var init outboundFrame
	require.NoError(t, conn.ReadJSON(&init))
	assert.Equal(t, "session_initialized", init.Type)
	assert.Equal(t, "call-1", init.SessionID)
	assert.NotEmpty(t, init.Greeting)

	if _, ok := store.Get("call-1"); !ok {
		t.Fatal("session not registered in the store")
	}

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":       "utterance",
		"transcript": "aag lagi hai MG Road par",
	}))

	var decision outboundFrame
	require.NoError(t, conn.ReadJSON(&decision))
	assert.Equal(t, "decision", decision.Type)
	require.NotNil(t, decision.Decision)
	assert.NotEmpty(t, decision.Decision.NextPrompt)
	assert.NotEmpty(t, decision.Decision.Urgency.Level)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "summary"}))
	var summary outboundFrame
	require.NoError(t, conn.ReadJSON(&summary))
	assert.Equal(t, "summary", summary.Type)
	require.NotNil(t, summary.Summary)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "end"}))
	var ended outboundFrame
	require.NoError(t, conn.ReadJSON(&ended))
	assert.Equal(t, "call_ended", ended.Type)
	require.NotNil(t, ended.Summary)

	// the handler removes the session once the connection winds down
	assert.Eventually(t, func() bool {
		_, ok := store.Get("call-1")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestUnknownFrameType(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "start"}))
	var init outboundFrame
	require.NoError(t, conn.ReadJSON(&init))
	assert.NotEmpty(t, init.SessionID, "server must assign a session id when none is given")

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	var errFrame outboundFrame
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Equal(t, "error", errFrame.Type)
	assert.Contains(t, errFrame.Message, "bogus")
}

func TestFirstUtteranceWithoutStart(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	// no start frame: the utterance itself opens the session
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type":       "utterance",
		"transcript": "gaadi ka accident hua hai",
	}))

	var init outboundFrame
	require.NoError(t, conn.ReadJSON(&init))
	assert.Equal(t, "session_initialized", init.Type)

	var decision outboundFrame
	require.NoError(t, conn.ReadJSON(&decision))
	assert.Equal(t, "decision", decision.Type)
	require.NotNil(t, decision.Decision)
}
