// Package server hosts one block puzzle game per WebSocket connection.
// Games are persisted on disconnect and on game over, and a resume token
// brings a returning player back to the same game.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/engine"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/game"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/inventory"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/player"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/protocol"
	"github.com/alexlanpowell/blocktopia-v0-sub000/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Store is the persistence the server needs; *store.DB satisfies it.
type Store interface {
	SaveGame(ctx context.Context, playerID string, g game.SavedGame) error
	LoadGame(ctx context.Context, playerID string) (game.SavedGame, error)
	BestScore(ctx context.Context, playerID string) (int, error)
	SaveInventory(ctx context.Context, playerID string, counts map[game.PowerUpKind]int) error
	LoadInventory(ctx context.Context, playerID string) (map[game.PowerUpKind]int, error)
}

type Options struct {
	Rules            game.Rules
	Seed             int64
	StartingPowerUps int
	TokenSecret      []byte
	Debug            bool
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	opts    Options
	store   Store
	games   atomic.Int64
	players *player.Registry[*Player]
	wg      sync.WaitGroup
	closing atomic.Bool
}

// New creates a server. st may be nil, in which case nothing is persisted.
func New(opts Options, st Store) *Server {
	return &Server{
		opts:    opts,
		store:   st,
		players: player.NewRegistry[*Player](),
	}
}

// Handler serves /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleConnection)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// PlayerCount reports the number of connected players.
func (s *Server) PlayerCount() int {
	return s.players.Count()
}

// Wait blocks until every connection has been cleaned up and saved.
func (s *Server) Wait() {
	s.wg.Wait()
}

// Close disconnects every player. Each connection then saves its game and
// releases its ID as on a normal disconnect; Wait returns once they have.
// Connections that arrive after Close are refused.
func (s *Server) Close() {
	s.closing.Store(true)
	s.players.Each(func(_ string, p *Player) {
		p.disconnect()
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		json.NewEncoder(w).Encode(protocol.ErrorResponse{Error: "method not allowed"})
		return
	}
	queued := 0
	s.players.Each(func(_ string, p *Player) {
		queued += p.proc.Pending()
	})
	json.NewEncoder(w).Encode(protocol.HealthResponse{
		Status:  "ok",
		Players: s.PlayerCount(),
		Queued:  queued,
	})
}

// resolvePlayerID returns the player named by a valid token, or a new ID.
// A player already connected elsewhere gets a new ID.
func (s *Server) resolvePlayerID(token string) string {
	if token != "" {
		id, err := parseToken(s.opts.TokenSecret, token)
		if err != nil {
			log.Printf("ignoring resume token: %v", err)
		} else {
			if _, busy := s.players.Get(id); !busy {
				return id
			}
			log.Printf("player %s is already connected, assigning a new ID", id)
		}
	}
	return uuid.NewString()
}

// newSession builds the player's game, restoring saved state when present.
func (s *Server) newSession(ctx context.Context, id string) (*game.Session, *inventory.Ledger) {
	seed := s.opts.Seed + s.games.Add(1)
	session := game.NewSession(s.opts.Rules, seed)
	ledger := inventory.New(s.opts.StartingPowerUps)
	if s.store == nil {
		return session, ledger
	}

	if saved, err := s.store.LoadGame(ctx, id); err == nil {
		if err := session.Restore(saved); err != nil {
			log.Printf("discarding saved game for %s: %v", id, err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("load game for %s: %v", id, err)
	}
	if best, err := s.store.BestScore(ctx, id); err == nil {
		session.SetBestScore(best)
	} else {
		log.Printf("load best score for %s: %v", id, err)
	}
	if counts, err := s.store.LoadInventory(ctx, id); err == nil {
		ledger = inventory.FromCounts(counts)
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("load inventory for %s: %v", id, err)
	}
	return session, ledger
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade error: %v", err)
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()

	id := s.resolvePlayerID(r.URL.Query().Get("token"))
	token, err := issueToken(s.opts.TokenSecret, id)
	if err != nil {
		log.Printf("token for %s: %v", id, err)
	}

	session, ledger := s.newSession(r.Context(), id)
	var opts []engine.Option
	if s.opts.Debug {
		opts = append(opts, engine.WithLogger(log.Printf))
	}
	p := newPlayer(id, conn, session, ledger, opts...)
	p.proc.Subscribe(func(ev engine.Event) {
		if env, ok := protocol.ResultEnvelope(ev.Result); ok {
			p.send(env)
		}
		p.sendState(ev.Seq, ev.View)
		if pl := ev.Result.Placement; pl != nil && pl.GameOver {
			p.save(s.store)
		}
	})

	if !s.players.Claim(id, p) {
		log.Printf("player %s connected twice, closing the newer connection", id)
		conn.Close()
		return
	}
	if s.closing.Load() {
		s.players.Release(id)
		p.disconnect()
		return
	}
	log.Printf("Player %s connected", id)

	p.send(protocol.Envelope{
		Type:    protocol.MsgAssignID,
		Payload: protocol.AssignIDPayload{PlayerID: id, Token: token},
	})
	p.sendState(0, p.proc.View())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.proc.Run(ctx)
		close(done)
	}()
	go p.writePump()

	// Read pump (blocking)
	p.readPump()

	cancel()
	<-done
	p.save(s.store)
	p.closeSend()

	s.players.Release(id)
	log.Printf("Player %s disconnected", id)
}
