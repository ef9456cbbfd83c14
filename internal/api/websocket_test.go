package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"grimm.is/sincelast/internal/logging"
	"grimm.is/sincelast/internal/state"
)

func newTestWSManager(t *testing.T) (*WSManager, context.CancelFunc) {
	t.Helper()

	st, err := state.NewSQLiteStore(state.Options{
		Path: filepath.Join(t.TempDir(), "ws.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := logging.New(logging.Config{Level: logging.LevelError})
	return NewWSManager(ctx, st, logger), cancel
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWSManagerShutdownClosesClients(t *testing.T) {
	m, cancel := newTestWSManager(t)

	ts := httptest.NewServer(http.HandlerFunc(m.HandleWS))
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	waitFor(t, func() bool { return m.ClientCount() == 1 }, "client never registered")

	cancel()

	waitFor(t, func() bool { return m.ClientCount() == 0 }, "shutdown left clients registered")

	// The server side hung up; the read must fail rather than block.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	require.Error(t, err)
}

func TestWSManagerConnectAfterShutdown(t *testing.T) {
	m, cancel := newTestWSManager(t)

	ts := httptest.NewServer(http.HandlerFunc(m.HandleWS))
	defer ts.Close()

	cancel()
	waitFor(t, func() bool {
		select {
		case <-m.done:
			return true
		default:
			return false
		}
	}, "manager never shut down")

	// A late connection is turned away instead of deadlocking the
	// handler on the register channel.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return // Upgrade itself may fail once the manager is gone.
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, readErr := conn.ReadMessage()
	require.Error(t, readErr)
	require.Equal(t, 0, m.ClientCount())
}
