package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/inventory"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 16384
	saveTimeout    = 5 * time.Second
)

// Player is one connected client and the game it drives. The session is
// owned by proc; it is only touched from proc's listeners or after proc
// has stopped.
type Player struct {
	ID     string
	conn   *websocket.Conn
	sendCh chan []byte

	session *game.Session
	ledger  *inventory.Ledger
	proc    *engine.Processor

	mu     sync.Mutex
	closed bool
}

func newPlayer(id string, conn *websocket.Conn, session *game.Session, ledger *inventory.Ledger, opts ...engine.Option) *Player {
	return &Player{
		ID:      id,
		conn:    conn,
		sendCh:  make(chan []byte, 256),
		session: session,
		ledger:  ledger,
		proc:    engine.New(session, ledger, opts...),
	}
}

// writePump sends messages from sendCh to the WebSocket.
func (p *Player) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// send marshals an envelope and queues it.
func (p *Player) send(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("marshal error for player %s: %v", p.ID, err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.sendCh <- data:
	default:
		log.Printf("send channel full for player %s, dropping %s", p.ID, env.Type)
	}
}

func (p *Player) sendState(seq uint64, v game.View) {
	p.send(protocol.Envelope{
		Type:    protocol.MsgState,
		Payload: protocol.NewState(seq, v, p.ledger.Counts()),
	})
}

func (p *Player) sendError(err error) {
	p.send(protocol.Envelope{
		Type:    protocol.MsgError,
		Payload: protocol.ErrorPayload{Message: err.Error()},
	})
}

// closeSend stops the write pump once every queued message is written.
func (p *Player) closeSend() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.sendCh)
	}
}

// disconnect sends a going-away close frame and drops the connection, which
// ends readPump. Safe to call from any goroutine.
func (p *Player) disconnect() {
	p.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(writeWait))
	p.conn.Close()
}

// readPump reads client messages and posts them to the processor until the
// connection drops.
func (p *Player) readPump() {
	p.conn.SetReadLimit(maxMessageSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error for %s: %v", p.ID, err)
			}
			return
		}

		var env protocol.RawEnvelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("unmarshal error from %s: %v", p.ID, err)
			p.sendError(err)
			continue
		}
		cmd, err := protocol.DecodeCommand(env)
		if err != nil {
			log.Printf("bad message from %s: %v", p.ID, err)
			p.sendError(err)
			continue
		}
		if err := p.proc.Post(cmd); err != nil {
			return
		}
	}
}

// save writes the game and inventory. Callers must own the session.
func (p *Player) save(st Store) {
	if st == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := st.SaveGame(ctx, p.ID, p.session.Save()); err != nil {
		log.Printf("save game for %s: %v", p.ID, err)
	}
	if err := st.SaveInventory(ctx, p.ID, p.ledger.Counts()); err != nil {
		log.Printf("save inventory for %s: %v", p.ID, err)
	}
}
