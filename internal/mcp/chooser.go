package mcp

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/game"
	lnet "github.com/calebmorrow/loreduel/internal/net"
)

// AgentChooser implements game.Chooser by publishing each decision to the
// session's pending channel and blocking until a tool handler answers.
type AgentChooser struct {
	seat       int
	session    *GameSession
	responseCh chan any
}

func NewAgentChooser(seat int, session *GameSession) *AgentChooser {
	return &AgentChooser{
		seat:       seat,
		session:    session,
		responseCh: make(chan any),
	}
}

func (c *AgentChooser) ChooseAction(ctx context.Context, g *game.Game, player int, actions []game.Action) (game.Action, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:    DecisionChooseAction,
		State:   lnet.BuildGameView(g, c.seat),
		Actions: lnet.BuildActionViews(g, actions),
	}
	select {
	case resp := <-c.responseCh:
		ar, ok := resp.(actionResponse)
		if !ok {
			return game.Action{}, fmt.Errorf("expected an action response")
		}
		if ar.Index < 0 || ar.Index >= len(actions) {
			return game.Action{}, fmt.Errorf("action index %d out of range", ar.Index)
		}
		a := actions[ar.Index]
		a.Targets = ar.Targets
		return a, nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

func (c *AgentChooser) Choose(ctx context.Context, req *game.ChoiceRequest) (*game.ChoiceResponse, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:   DecisionResolveChoice,
		State:  lnet.BuildGameView(c.session.game, c.seat),
		Choice: req,
	}
	select {
	case resp := <-c.responseCh:
		cr, ok := resp.(choiceResponse)
		if !ok {
			return nil, fmt.Errorf("expected a choice response")
		}
		return cr.Resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *AgentChooser) Confirm(ctx context.Context, player int, prompt string) (bool, error) {
	c.session.pendingCh <- &PendingDecision{
		Type:   DecisionConfirm,
		State:  lnet.BuildGameView(c.session.game, c.seat),
		Prompt: prompt,
	}
	select {
	case resp := <-c.responseCh:
		yr, ok := resp.(confirmResponse)
		if !ok {
			return false, fmt.Errorf("expected a confirm response")
		}
		return yr.Yes, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
