package netclient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/server"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialServer connects an unstarted client to a fresh game server.
func dialServer(t *testing.T) *Client {
	t.Helper()
	srv := server.New(server.Options{
		Rules:            game.DefaultRules(),
		Seed:             3,
		StartingPowerUps: 1,
		TokenSecret:      []byte("secret"),
	}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := New("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", "")
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func connect(t *testing.T) (*Client, chan tea.Msg) {
	t.Helper()
	c := dialServer(t)

	msgs := make(chan tea.Msg, 64)
	c.SetHandler(func(m tea.Msg) { msgs <- m })
	c.Start()
	return c, msgs
}

// next waits for the first message of type T.
func next[T tea.Msg](t *testing.T, msgs chan tea.Msg) T {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case m := <-msgs:
			if v, ok := m.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestClientReceivesIDAndState(t *testing.T) {
	_, msgs := connect(t)

	conn := next[ConnectedMsg](t, msgs)
	assert.NotEmpty(t, conn.PlayerID)
	assert.NotEmpty(t, conn.Token)

	st := next[StateMsg](t, msgs)
	assert.Equal(t, 8, st.State.Size)
}

func TestClientCommandsReachServer(t *testing.T) {
	c, msgs := connect(t)
	next[StateMsg](t, msgs)

	require.NoError(t, c.Send(engine.StartDrag{PieceIndex: 0}))
	st := next[StateMsg](t, msgs)
	require.NotNil(t, st.State.Drag)
	assert.Equal(t, 0, st.State.Drag.PieceIndex)

	require.NoError(t, c.Send(engine.CancelDrag{}))
	st = next[StateMsg](t, msgs)
	assert.Nil(t, st.State.Drag)
}

func TestSendAfterClose(t *testing.T) {
	c, msgs := connect(t)
	next[ConnectedMsg](t, msgs)
	c.Close()
	assert.ErrorIs(t, c.Send(engine.Restart{}), ErrClosed)
}

func TestCloseFlushesQueuedCommands(t *testing.T) {
	type frame struct {
		text string
		err  error
	}
	frames := make(chan frame, 16)
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				frames <- frame{err: err}
				return
			}
			frames <- frame{text: string(msg)}
		}
	}))
	t.Cleanup(ts.Close)

	c, err := New("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", "")
	require.NoError(t, err)
	c.SetHandler(func(tea.Msg) {})
	c.Start()

	require.NoError(t, c.Send(engine.StartDrag{PieceIndex: 1}))
	require.NoError(t, c.Send(engine.EndDrag{}))
	c.Close()

	var got []string
	timeout := time.After(5 * time.Second)
	for {
		select {
		case f := <-frames:
			if f.err != nil {
				assert.True(t, websocket.IsCloseError(f.err, websocket.CloseNormalClosure), "got %v", f.err)
				require.Len(t, got, 2)
				assert.Contains(t, got[0], `"start_drag"`)
				assert.Contains(t, got[1], `"end_drag"`)
				return
			}
			got = append(got, f.text)
		case <-timeout:
			t.Fatal("timed out waiting for the close frame")
		}
	}
}

func TestCloseBeforeStart(t *testing.T) {
	c := dialServer(t)
	c.Close()
	c.Close()
	c.Start()
	assert.ErrorIs(t, c.Send(engine.CancelDrag{}), ErrClosed)
}
