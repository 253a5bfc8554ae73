package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

func TestHub_DeliversToRoomViewers(t *testing.T) {
	t.Parallel()

	hub := NewHub(nil, logging.NewNop())
	t.Cleanup(hub.Close)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		room := strings.TrimPrefix(r.URL.Path, "/")
		if err := hub.ServeWS(w, r, room); err != nil {
			t.Errorf("serve ws: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"/t-1", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	other, _, err := websocket.DefaultDialer.Dial(wsURL+"/t-2", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = other.Close() })

	require.Eventually(t, func() bool {
		return hub.Viewers("t-1") == 1 && hub.Viewers("t-2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Deliver(context.Background(), testEvent("e-1", tournament.EventTimerPaused)))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var got Envelope
	require.NoError(t, sonic.Unmarshal(raw, &got))
	require.Equal(t, "timer.paused", got.Type)

	_ = other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	require.Error(t, err, "viewer of another tournament must not receive the event")
}

func TestHub_ViewerLeavesOnDisconnect(t *testing.T) {
	t.Parallel()

	hub := NewHub([]string{"https://allowed.example"}, logging.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, "room")
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.Error(t, err)

	header.Set("Origin", "https://allowed.example")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Viewers("room") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Viewers("room") == 0 }, 2*time.Second, 10*time.Millisecond)
}
