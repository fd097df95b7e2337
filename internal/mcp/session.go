// Package mcp exposes a match to an agent over the Model Context Protocol.
// The agent plays one seat through tool calls; the other seat is driven by
// the built-in bot, so a single stdio process hosts a complete game.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/calebmorrow/loreduel/internal/carddata"
	"github.com/calebmorrow/loreduel/internal/game"
	"github.com/calebmorrow/loreduel/internal/log"
	lnet "github.com/calebmorrow/loreduel/internal/net"
)

// DecisionType identifies what kind of decision the engine is waiting for.
type DecisionType string

const (
	DecisionChooseAction  DecisionType = "choose_action"
	DecisionResolveChoice DecisionType = "resolve_choice"
	DecisionConfirm       DecisionType = "confirm"
	DecisionGameOver      DecisionType = "game_over"
)

// PendingDecision is one blocked engine decision plus the state snapshot
// taken at the moment the engine blocked.
type PendingDecision struct {
	Type    DecisionType
	State   *lnet.GameView
	Actions []lnet.ActionView
	Choice  *game.ChoiceRequest
	Prompt  string
}

// Responses fed back from tool handlers to the blocked chooser.

type actionResponse struct {
	Index   int
	Targets []game.InstanceID
}

type choiceResponse struct {
	Resp *game.ChoiceResponse
}

type confirmResponse struct {
	Yes bool
}

// ToolResponse is the JSON envelope returned by every tool.
type ToolResponse struct {
	Events   []string       `json:"events"`
	State    *lnet.GameView `json:"state,omitempty"`
	Pending  *PendingView   `json:"pending,omitempty"`
	GameOver bool           `json:"game_over"`
	Winner   int            `json:"winner,omitempty"`
	Result   string         `json:"result,omitempty"`
}

// PendingView renders the pending decision for the tool response JSON.
type PendingView struct {
	Type    DecisionType        `json:"type"`
	Actions []lnet.ActionView   `json:"actions,omitempty"`
	Choice  *game.ChoiceRequest `json:"choice,omitempty"`
	Prompt  string              `json:"prompt,omitempty"`
}

// GameSession is one running match. The engine goroutine blocks inside the
// AgentChooser; tool handlers unblock it and wait for the next decision.
type GameSession struct {
	game      *game.Game
	agent     *AgentChooser
	agentSeat int

	pendingCh      chan *PendingDecision
	currentPending *PendingDecision

	mu       sync.Mutex
	events   []string
	gameOver bool
	winner   int
	result   string
}

// sessionLogger records events in memory and mirrors each one into the
// session's line buffer for the next tool response.
type sessionLogger struct {
	log.MemoryLogger
	sess *GameSession
}

func (l *sessionLogger) Log(e log.GameEvent) {
	l.MemoryLogger.Log(e)
	l.sess.appendEvent(log.FormatEvent(e))
}

// NewGameSession builds a game from two catalog decks and starts it on its
// own goroutine. The agent sits at agentSeat; the bot takes the other seat.
func NewGameSession(catalog *carddata.Catalog, agentDeck, botDeck string, agentSeat int, seed int64) (*GameSession, error) {
	sess := &GameSession{
		agentSeat: agentSeat,
		pendingCh: make(chan *PendingDecision, 1),
		winner:    -1,
	}
	sess.agent = NewAgentChooser(agentSeat, sess)
	logger := &sessionLogger{sess: sess}

	choosers := [2]game.Chooser{game.NewBot(), game.NewBot()}
	choosers[agentSeat] = sess.agent
	g := game.NewGame(logger, choosers[0], choosers[1], seed)
	g.Players[agentSeat].Name = "agent"
	g.Players[1-agentSeat].Name = "bot"
	if err := catalog.BuildDeck(g, agentSeat, agentDeck); err != nil {
		return nil, fmt.Errorf("agent deck: %w", err)
	}
	if err := catalog.BuildDeck(g, 1-agentSeat, botDeck); err != nil {
		return nil, fmt.Errorf("bot deck: %w", err)
	}
	g.Start()
	sess.game = g

	go func() {
		winner, err := g.Run(context.Background(), 200)
		result := g.Result()
		if err != nil {
			result = fmt.Sprintf("error: %v", err)
		}

		sess.mu.Lock()
		sess.gameOver = true
		sess.winner = winner
		sess.result = result
		sess.mu.Unlock()

		sess.pendingCh <- &PendingDecision{
			Type:  DecisionGameOver,
			State: lnet.BuildGameView(g, agentSeat),
		}
	}()

	return sess, nil
}

// appendEvent adds a line to the session's event buffer. Thread-safe.
func (s *GameSession) appendEvent(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, line)
}

// drainEvents returns accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []string{}
	}
	return events
}

// waitForPending blocks until the engine reaches its next decision, then
// bundles it with the events accrued since the last tool call.
func (s *GameSession) waitForPending() *ToolResponse {
	pending := <-s.pendingCh
	s.currentPending = pending

	resp := &ToolResponse{Events: s.drainEvents(), State: pending.State}
	if pending.Type == DecisionGameOver {
		s.mu.Lock()
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		s.mu.Unlock()
		return resp
	}
	resp.Pending = &PendingView{
		Type:    pending.Type,
		Actions: pending.Actions,
		Choice:  pending.Choice,
		Prompt:  pending.Prompt,
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
