// Package netclient connects the terminal client to a remote game server.
package netclient

import (
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16384
)

var ErrClosed = errors.New("connection closed")

// ServerMsg is a tea.Msg that wraps an incoming server message.
type ServerMsg struct {
	Type protocol.MessageType
	Raw  json.RawMessage
}

// ConnectedMsg is sent when the client connects and receives its PlayerID.
type ConnectedMsg struct {
	PlayerID string
	Token    string
}

// StateMsg carries a fresh game snapshot.
type StateMsg struct {
	State protocol.StatePayload
}

// DisconnectedMsg is sent when the WebSocket connection is lost.
type DisconnectedMsg struct {
	Err error
}

// Client manages the WebSocket connection to the game server.
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	sendCh  chan []byte
	deliver func(tea.Msg)
	done    chan struct{}
	closed  bool
	started bool
	flushed chan struct{}
}

// New creates a Client connected to serverURL. A non-empty token resumes a
// previous game.
func New(serverURL, token string) (*Client, error) {
	if token != "" {
		u, err := url.Parse(serverURL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
		serverURL = u.String()
	}

	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:   conn,
		sendCh:  make(chan []byte, 256),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
	}

	return c, nil
}

// SetProgram sets the bubbletea program so the client can send messages to it.
func (c *Client) SetProgram(p *tea.Program) {
	c.SetHandler(p.Send)
}

// SetHandler routes incoming messages to fn.
func (c *Client) SetHandler(fn func(tea.Msg)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deliver = fn
}

func (c *Client) handler() func(tea.Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deliver
}

// Start launches the read and write pumps.
func (c *Client) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.started {
		return
	}
	c.started = true
	go c.writePump()
	go c.readPump()
}

// Send encodes cmd and queues it for the server. Pointer samples are dropped
// when the queue is full; every other command waits for room.
func (c *Client) Send(cmd engine.Command) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	env, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	if _, sample := cmd.(engine.UpdateDrag); sample {
		select {
		case c.sendCh <- data:
		case <-c.done:
			return ErrClosed
		default:
			log.Printf("client send channel full, dropping pointer sample")
		}
		return nil
	}
	select {
	case c.sendCh <- data:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Close shuts down the client connection. Commands queued before Close are
// written before the close frame.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.done)
	started := c.started
	c.mu.Unlock()

	if started {
		<-c.flushed
		return
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.conn.Close()
}

// readPump reads messages from the WebSocket and hands them to the handler.
func (c *Client) readPump() {
	var readErr error
	defer func() {
		if fn := c.handler(); fn != nil {
			fn(DisconnectedMsg{Err: readErr})
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("readPump error: %v", err)
				readErr = err
			}
			return
		}

		var env protocol.RawEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("client unmarshal error: %v", err)
			continue
		}

		fn := c.handler()
		if fn == nil {
			continue
		}

		// Dispatch special messages vs. generic ServerMsg
		switch env.Type {
		case protocol.MsgAssignID:
			var payload protocol.AssignIDPayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				fn(ConnectedMsg{PlayerID: payload.PlayerID, Token: payload.Token})
			}
		case protocol.MsgState:
			var payload protocol.StatePayload
			if json.Unmarshal(env.Payload, &payload) == nil {
				fn(StateMsg{State: payload})
			}
		default:
			fn(ServerMsg{Type: env.Type, Raw: env.Payload})
		}
	}
}

// writePump writes messages from sendCh to the WebSocket. It is the only
// writer of data frames; on Close it flushes the queue and sends the close
// frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.flushed)
	}()

	for {
		select {
		case msg := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.flush()
			return
		}
	}
}

func (c *Client) flush() {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	for {
		select {
		case msg := <-c.sendCh:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		default:
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
