package game

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// openingHandSize is the number of cards drawn at setup.
const openingHandSize = 7

// maxActionsPerTurn bounds the main phase so a misbehaving chooser cannot
// spin the loop forever.
const maxActionsPerTurn = 200

// Start shuffles both decks and draws opening hands. Player 0 goes first.
func (g *Game) Start() {
	for p := 0; p < 2; p++ {
		g.Shuffle(p)
		deck := g.Players[p].Deck
		for i := 0; i < openingHandSize && len(deck) > 0; i++ {
			id := deck[len(deck)-1]
			deck = deck[:len(deck)-1]
			g.Players[p].Hand = append(g.Players[p].Hand, id)
			g.Card(id).Zone = ZoneHand
		}
		g.Players[p].Deck = deck
	}
	g.Turn = 0
	g.Active = 1 // RunTurn flips to 0 on the first turn
}

// RunTurn plays one full turn for the next player: cleanup, ready, set,
// draw, main phase, end step.
func (g *Game) RunTurn(ctx context.Context) error {
	if g.over {
		return nil
	}
	g.Turn++
	g.Active = 1 - g.Active
	active := g.Active
	p := g.Players[active]
	g.Logger.Log(log.NewTurnEvent(g.Turn, active))

	// Timed effects anchored to this player expire before anything
	// readies or draws, so "until the start of your next turn" never
	// bleeds into the turn's first action.
	g.scheduler.ExpireAtTurnStart(active)

	for _, ci := range g.InPlay(active) {
		g.Ready(ci)
	}
	for _, id := range p.Inkwell {
		if ci := g.Card(id); ci != nil {
			ci.Exerted = false
		}
	}
	p.InkedThisTurn = false

	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerTurnStart, Player: active})
	if g.over {
		return nil
	}

	// The starting player skips their first draw.
	if g.Turn > 1 {
		g.DrawCards(ctx, active, 1)
		if g.over {
			return nil
		}
	}

	if err := g.mainPhase(ctx, active); err != nil {
		return err
	}
	if g.over {
		return nil
	}

	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerTurnEnd, Player: active})
	g.scheduler.ExpireEndOfTurn()
	g.Logger.Log(log.NewTurnEndEvent(g.Turn, active))
	return nil
}

func (g *Game) mainPhase(ctx context.Context, active int) error {
	for i := 0; i < maxActionsPerTurn; i++ {
		if g.over {
			return nil
		}
		actions := g.LegalActions(active)
		action, err := g.choosers[active].ChooseAction(ctx, g, active, actions)
		if err != nil {
			return fmt.Errorf("turn %d: choose action: %w", g.Turn, err)
		}
		if action.Kind == ActionEndTurn {
			return nil
		}
		if err := g.Apply(ctx, active, action); err != nil {
			return fmt.Errorf("turn %d: %s: %w", g.Turn, action, err)
		}
	}
	return nil
}

// Run plays turns until the game ends or maxTurns is reached. A game
// hitting the cap goes to whoever has more lore, ties to the last player
// to act.
func (g *Game) Run(ctx context.Context, maxTurns int) (int, error) {
	for !g.over && g.Turn < maxTurns {
		if err := g.RunTurn(ctx); err != nil {
			return -1, err
		}
		if err := ctx.Err(); err != nil {
			return -1, err
		}
	}
	if !g.over {
		winner := 1 - g.Active
		if g.Players[g.Active].Lore >= g.Players[1-g.Active].Lore {
			winner = g.Active
		}
		g.declareWinner(winner, fmt.Sprintf("turn limit at %d lore", g.Players[winner].Lore))
	}
	return g.winner, nil
}
