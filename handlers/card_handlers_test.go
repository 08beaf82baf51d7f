package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"codingcats/api/physics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialBoard(t *testing.T, cards int) *websocket.Conn {
	t.Helper()
	r := gin.New()
	r.GET("/ws", NewCardHandlers(cards, 5*time.Millisecond, "http://localhost:3000").Board)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads board messages until match returns true or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(boardMessage) bool) boardMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var m boardMessage
		require.NoError(t, conn.ReadJSON(&m))
		if match(m) {
			return m
		}
	}
}

func TestBoard_ToggleStartsGravityFrames(t *testing.T) {
	conn := dialBoard(t, 4)
	require.NoError(t, conn.WriteJSON(cardMessage{Type: "toggle"}))

	ticked := readUntil(t, conn, func(m boardMessage) bool {
		return m.Type == "frame" && m.Frame.Mode == physics.ModeGravity && m.Frame.Tick >= 2
	})
	assert.Len(t, ticked.Frame.Transforms, 4)
	for _, p := range ticked.Frame.Transforms {
		assert.LessOrEqual(t, p.X, physics.HalfWidth)
		assert.GreaterOrEqual(t, p.X, -physics.HalfWidth)
	}
}

func TestBoard_ClickEmitsFocusCue(t *testing.T) {
	conn := dialBoard(t, 3)
	require.NoError(t, conn.WriteJSON(cardMessage{Type: "click", Card: 2}))

	cue := readUntil(t, conn, func(m boardMessage) bool { return m.Type == "cue" })
	require.NotNil(t, cue.Cue)
	assert.Equal(t, physics.CueFocus, cue.Cue.Kind)
	assert.Equal(t, 2, cue.Cue.Card)
}

func TestBoard_UnknownMessageReportsError(t *testing.T) {
	conn := dialBoard(t, 1)
	require.NoError(t, conn.WriteJSON(cardMessage{Type: "shake"}))

	m := readUntil(t, conn, func(m boardMessage) bool { return m.Type == "error" })
	assert.Contains(t, m.Error, "shake")
}

func TestBoard_RejectsForeignOrigin(t *testing.T) {
	r := gin.New()
	r.GET("/ws", NewCardHandlers(1, time.Millisecond, "http://localhost:3000").Board)
	srv := httptest.NewServer(r)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://evil.example")
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
