package net

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/calebmorrow/loreduel/internal/carddata"
	"github.com/calebmorrow/loreduel/internal/game"
	"github.com/calebmorrow/loreduel/internal/log"
)

const matchTimeout = 2 * time.Hour

// Server pairs websocket clients into matches. The first joiner waits; the
// second completes the match and the game runs on its own goroutine until a
// result or a dropped connection.
type Server struct {
	catalog *carddata.Catalog
	seed    func() int64

	mu      sync.Mutex
	waiting *client
}

func NewServer(catalog *carddata.Catalog, seed func() int64) *Server {
	return &Server{catalog: catalog, seed: seed}
}

// client is one connected player.
type client struct {
	ws      *websocket.Conn
	sendMu  sync.Mutex
	chooser *RemoteChooser
	name    string
	deck    string
	seat    int
}

func (c *client) send(m *Message) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	c := &client{ws: ws}

	join, err := s.readJoin(r.Context(), c)
	if err != nil {
		ws.Close(websocket.StatusPolicyViolation, "expected join")
		return
	}
	c.name = join.Name
	c.deck = join.Deck
	if err := s.checkDeck(join.Deck); err != nil {
		c.send(&Message{Type: MsgError, Error: err.Error()})
		ws.Close(websocket.StatusPolicyViolation, "unknown deck")
		return
	}

	s.mu.Lock()
	if s.waiting == nil {
		s.waiting = c
		s.mu.Unlock()
		c.seat = 0
		c.send(&Message{Type: MsgWelcome, Seat: 0})
		// The connection is parked until an opponent arrives; the match
		// goroutine takes over reads from there.
		return
	}
	opponent := s.waiting
	s.waiting = nil
	s.mu.Unlock()

	c.seat = 1
	c.send(&Message{Type: MsgWelcome, Seat: 1})
	go s.runMatch(opponent, c)
}

func (s *Server) checkDeck(name string) error {
	for _, d := range s.catalog.DeckNames() {
		if d == name {
			return nil
		}
	}
	return fmt.Errorf("unknown deck %q", name)
}

func (s *Server) readJoin(ctx context.Context, c *client) (*JoinPayload, error) {
	_, data, err := c.ws.Read(ctx)
	if err != nil {
		return nil, err
	}
	m, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if m.Type != MsgJoin || m.Join == nil {
		return nil, fmt.Errorf("expected %s, got %s", MsgJoin, m.Type)
	}
	return m.Join, nil
}

// broadcastLogger mirrors every event to both clients on top of the usual
// in-memory record.
type broadcastLogger struct {
	log.MemoryLogger
	clients []*client
}

func (b *broadcastLogger) Log(e log.GameEvent) {
	b.MemoryLogger.Log(e)
	line := EncodeEvent(e)
	for _, c := range b.clients {
		c.send(&Message{Type: MsgEvent, Event: line})
	}
}

func (s *Server) runMatch(c0, c1 *client) {
	ctx, cancel := context.WithTimeout(context.Background(), matchTimeout)
	defer cancel()

	clients := []*client{c0, c1}
	logger := &broadcastLogger{clients: clients}
	c0.chooser = NewRemoteChooser(0, c0.send)
	c1.chooser = NewRemoteChooser(1, c1.send)

	g := game.NewGame(logger, c0.chooser, c1.chooser, s.seed())
	g.Players[0].Name = c0.name
	g.Players[1].Name = c1.name
	for seat, c := range clients {
		if err := s.catalog.BuildDeck(g, seat, c.deck); err != nil {
			c.send(&Message{Type: MsgError, Error: err.Error()})
			return
		}
	}
	g.Start()

	// A dropped connection cancels the match: the blocked chooser wakes
	// on ctx and the engine returns an error.
	for _, c := range clients {
		go s.readLoop(ctx, cancel, c)
	}

	winner, err := g.Run(ctx, 200)
	if err != nil {
		stdlog.Printf("match %s vs %s aborted: %v", c0.name, c1.name, err)
		for _, c := range clients {
			c.send(&Message{Type: MsgError, Error: "match aborted"})
			c.ws.Close(websocket.StatusNormalClosure, "aborted")
		}
		return
	}
	for _, c := range clients {
		c.send(&Message{Type: MsgState, State: BuildGameView(g, c.seat)})
		c.send(&Message{Type: MsgResult, Winner: winner})
		c.ws.Close(websocket.StatusNormalClosure, "game over")
	}
}

func (s *Server) readLoop(ctx context.Context, cancel context.CancelFunc, c *client) {
	defer cancel()
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return
		}
		m, err := Unmarshal(data)
		if err != nil {
			c.send(&Message{Type: MsgError, Error: "malformed message"})
			continue
		}
		switch m.Type {
		case MsgAction:
			if m.Action != nil {
				c.chooser.DeliverAction(m.Action.Index, m.Action.Targets)
			}
		case MsgChoice:
			if m.Choice != nil {
				c.chooser.DeliverChoice(m.Choice)
			}
		case MsgConfirm:
			if m.Confirm != nil {
				c.chooser.DeliverConfirm(m.Confirm.Yes)
			}
		default:
			c.send(&Message{Type: MsgError, Error: "unexpected message " + m.Type})
		}
	}
}
