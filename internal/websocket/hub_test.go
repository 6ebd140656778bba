package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/repository"
)

func TestHub_NotifyRoutesByStudy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, r.URL.Query().Get("study"), w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?study=s1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify(repository.Event{Type: repository.EventSaved, StudyID: "other", ActID: "x"})
	hub.Notify(repository.Event{Type: repository.EventSynced, StudyID: "s1", ActID: "a1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got repository.Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, repository.EventSynced, got.Type)
	assert.Equal(t, "a1", got.ActID)

	require.NoError(t, conn.WriteJSON(BaseMessage{Type: "PING", MsgID: "m1"}))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"PONG","msgId":"m1"}`, string(data))
}

func TestHub_NotifyWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	assert.NotPanics(t, func() {
		hub.Notify(repository.Event{Type: repository.EventSyncPass, StudyID: "s1"})
	})
	assert.Equal(t, 0, hub.Clients())
}
