package server

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"crypto-arbitrage-scanner/internal/arbitrage"
	"crypto-arbitrage-scanner/internal/notify"
)

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop())

	hub.OnCycle(context.Background(), arbitrage.CycleReport{})
	require.NoError(t, hub.Send(context.Background(), notify.TestAlert()))
	assert.Zero(t, hub.Clients())
	assert.Equal(t, "banner", hub.Name())
}

func TestHub_PushesToConnectedClient(t *testing.T) {
	srv := newTestServer(t, 0)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = srv.Listener(ln) }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+ln.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return srv.Hub().Clients() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Hub().Send(ctx, notify.TestAlert()))
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var msg hubMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "alert", msg.Type)
	assert.Equal(t, notify.TestAlert().Message(), msg.Message)
	require.NotNil(t, msg.Alert)
	assert.Equal(t, "TEST", msg.Alert.Asset)

	srv.Hub().OnCycle(ctx, arbitrage.CycleReport{Opportunities: srv.engine.Session().Opportunities()})
	_, data, err = conn.Read(ctx)
	require.NoError(t, err)
	var cycle hubMessage
	require.NoError(t, json.Unmarshal(data, &cycle))
	assert.Equal(t, "cycle", cycle.Type)
	require.NotNil(t, cycle.Cycle)
	assert.Len(t, cycle.Cycle.Opportunities, 2)

	conn.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return srv.Hub().Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}
