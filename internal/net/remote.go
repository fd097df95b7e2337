package net

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/game"
)

// RemoteChooser adapts a connected client to the game.Chooser interface.
// The engine goroutine blocks in these methods; the connection's read loop
// feeds answers through the Deliver methods.
type RemoteChooser struct {
	seat int
	send func(*Message) error

	actions  chan actionPick
	choices  chan *game.ChoiceResponse
	confirms chan bool
}

// actionPick is one answered action request: the offered-list index plus any
// pre-named effect targets.
type actionPick struct {
	index   int
	targets []game.InstanceID
}

func NewRemoteChooser(seat int, send func(*Message) error) *RemoteChooser {
	return &RemoteChooser{
		seat:     seat,
		send:     send,
		actions:  make(chan actionPick, 1),
		choices:  make(chan *game.ChoiceResponse, 1),
		confirms: make(chan bool, 1),
	}
}

func (r *RemoteChooser) ChooseAction(ctx context.Context, g *game.Game, player int, actions []game.Action) (game.Action, error) {
	if err := r.send(&Message{Type: MsgState, State: BuildGameView(g, r.seat)}); err != nil {
		return game.Action{}, err
	}
	if err := r.send(&Message{Type: MsgActionRequest, Actions: BuildActionViews(g, actions)}); err != nil {
		return game.Action{}, err
	}
	select {
	case pick := <-r.actions:
		if pick.index < 0 || pick.index >= len(actions) {
			return game.Action{}, fmt.Errorf("action index %d out of range", pick.index)
		}
		a := actions[pick.index]
		a.Targets = pick.targets
		return a, nil
	case <-ctx.Done():
		return game.Action{}, ctx.Err()
	}
}

func (r *RemoteChooser) Choose(ctx context.Context, req *game.ChoiceRequest) (*game.ChoiceResponse, error) {
	if err := r.send(&Message{Type: MsgChoiceRequest, ChoiceRequest: req}); err != nil {
		return nil, err
	}
	select {
	case resp := <-r.choices:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *RemoteChooser) Confirm(ctx context.Context, player int, prompt string) (bool, error) {
	if err := r.send(&Message{Type: MsgConfirmAsk, Prompt: prompt}); err != nil {
		return false, err
	}
	select {
	case yes := <-r.confirms:
		return yes, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// DeliverAction hands a client's action pick to the blocked engine. A
// duplicate answer while none is awaited is dropped.
func (r *RemoteChooser) DeliverAction(idx int, targets []game.InstanceID) {
	select {
	case r.actions <- actionPick{index: idx, targets: targets}:
	default:
	}
}

func (r *RemoteChooser) DeliverChoice(resp *game.ChoiceResponse) {
	select {
	case r.choices <- resp:
	default:
	}
}

func (r *RemoteChooser) DeliverConfirm(yes bool) {
	select {
	case r.confirms <- yes:
	default:
	}
}
