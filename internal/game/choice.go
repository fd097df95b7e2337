package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ChoiceOption is one candidate in a choice request. Invalid candidates are
// included so a client can show the full set with the reason each one is
// unavailable.
type ChoiceOption struct {
	EntityID InstanceID `json:"entityId"`
	Label    string     `json:"label"`
	Valid    bool       `json:"valid"`
	Reason   string     `json:"reason,omitempty"`
}

// ChoiceRequest asks a player to pick between Min and Max of the valid
// options. The ID correlates the eventual response; a game has at most one
// outstanding request at a time.
type ChoiceRequest struct {
	ID           uuid.UUID      `json:"id"`
	Player       int            `json:"player"`
	Prompt       string         `json:"prompt"`
	Options      []ChoiceOption `json:"options"`
	Min          int            `json:"min"`
	Max          int            `json:"max"`
	AllowDecline bool           `json:"allowDecline"`
}

// ValidCount returns how many options are selectable.
func (r *ChoiceRequest) ValidCount() int {
	n := 0
	for _, o := range r.Options {
		if o.Valid {
			n++
		}
	}
	return n
}

// ChoiceResponse answers a request. Declined is only legal when the request
// allowed it; declining is a recorded decision, not a cancellation, so the
// surrounding resolution continues past the declined step.
type ChoiceResponse struct {
	RequestID uuid.UUID    `json:"requestId"`
	Chosen    []InstanceID `json:"chosen"`
	Declined  bool         `json:"declined"`
}

// Chooser makes decisions for one player. Implementations block until a
// decision is available: the bot answers immediately, a remote player
// answers when their client responds, an agent answers through a tool call.
type Chooser interface {
	// ChooseAction picks the next main-phase action. The engine only offers
	// legal actions.
	ChooseAction(ctx context.Context, g *Game, player int, actions []Action) (Action, error)
	// Choose answers a choice request.
	Choose(ctx context.Context, req *ChoiceRequest) (*ChoiceResponse, error)
	// Confirm answers a yes/no question ("you may ...").
	Confirm(ctx context.Context, player int, prompt string) (bool, error)
}

// requestChoice sends a request to the player's chooser and validates the
// response. It enforces the single-outstanding-request invariant and
// rejects malformed responses rather than guessing intent.
func (g *Game) requestChoice(ctx context.Context, req *ChoiceRequest) (*ChoiceResponse, error) {
	if g.pending != nil {
		return nil, fmt.Errorf("choice %s already outstanding", g.pending.ID)
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	g.pending = req
	defer func() { g.pending = nil }()

	resp, err := g.choosers[req.Player].Choose(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("choice %s: %w", req.ID, err)
	}
	if err := validateResponse(req, resp); err != nil {
		return nil, fmt.Errorf("choice %s: %w", req.ID, err)
	}
	return resp, nil
}

// PendingChoice returns the outstanding request, if any. Used by transports
// to re-send the prompt after a reconnect.
func (g *Game) PendingChoice() *ChoiceRequest {
	return g.pending
}

func validateResponse(req *ChoiceRequest, resp *ChoiceResponse) error {
	if resp == nil {
		return fmt.Errorf("nil response")
	}
	if resp.RequestID != req.ID {
		return fmt.Errorf("response for %s, want %s", resp.RequestID, req.ID)
	}
	if resp.Declined {
		if !req.AllowDecline {
			return fmt.Errorf("decline not allowed")
		}
		return nil
	}
	if len(resp.Chosen) < req.Min || len(resp.Chosen) > req.Max {
		return fmt.Errorf("chose %d options, want %d to %d", len(resp.Chosen), req.Min, req.Max)
	}
	valid := make(map[InstanceID]bool, len(req.Options))
	for _, o := range req.Options {
		if o.Valid {
			valid[o.EntityID] = true
		}
	}
	seen := make(map[InstanceID]bool, len(resp.Chosen))
	for _, id := range resp.Chosen {
		if !valid[id] {
			return fmt.Errorf("option %d is not selectable", id)
		}
		if seen[id] {
			return fmt.Errorf("option %d chosen twice", id)
		}
		seen[id] = true
	}
	return nil
}
