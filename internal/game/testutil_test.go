package game

import (
	"context"
	"fmt"
	"testing"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// ScriptedChoice is one scripted answer to a choice request.
type ScriptedChoice struct {
	Pick    []InstanceID
	Decline bool
}

// ScriptedChooser replays scripted decisions and records every request it
// receives. Unscripted decisions fall back to first-valid / accept, so
// tests only script the decisions they assert on.
type ScriptedChooser struct {
	Actions  []Action
	Choices  []ScriptedChoice
	Confirms []bool

	Requests       []*ChoiceRequest
	ConfirmPrompts []string
}

func (s *ScriptedChooser) ChooseAction(ctx context.Context, g *Game, player int, actions []Action) (Action, error) {
	if len(s.Actions) == 0 {
		return Action{Kind: ActionEndTurn}, nil
	}
	a := s.Actions[0]
	s.Actions = s.Actions[1:]
	return a, nil
}

func (s *ScriptedChooser) Choose(ctx context.Context, req *ChoiceRequest) (*ChoiceResponse, error) {
	s.Requests = append(s.Requests, req)
	if len(s.Choices) > 0 {
		c := s.Choices[0]
		s.Choices = s.Choices[1:]
		return &ChoiceResponse{RequestID: req.ID, Chosen: c.Pick, Declined: c.Decline}, nil
	}
	var chosen []InstanceID
	for _, o := range req.Options {
		if len(chosen) == req.Min {
			break
		}
		if o.Valid {
			chosen = append(chosen, o.EntityID)
		}
	}
	return &ChoiceResponse{RequestID: req.ID, Chosen: chosen}, nil
}

func (s *ScriptedChooser) Confirm(ctx context.Context, player int, prompt string) (bool, error) {
	s.ConfirmPrompts = append(s.ConfirmPrompts, prompt)
	if len(s.Confirms) == 0 {
		return true, nil
	}
	yes := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return yes, nil
}

// makeChar builds a character definition with parsed abilities.
func makeChar(name string, cost, strength, willpower, lore int, text string, subtypes ...string) *Card {
	c := &Card{
		Name:      name,
		Type:      ability.CardTypeCharacter,
		Subtypes:  subtypes,
		Cost:      cost,
		Inkable:   true,
		Strength:  strength,
		Willpower: willpower,
		Lore:      lore,
		Text:      text,
	}
	c.Abilities = ability.Parse(text, c.Meta())
	return c
}

// makeAction builds an action card definition.
func makeAction(name string, cost int, text string, subtypes ...string) *Card {
	c := &Card{
		Name:     name,
		Type:     ability.CardTypeAction,
		Subtypes: subtypes,
		Cost:     cost,
		Inkable:  true,
		Text:     text,
	}
	c.Abilities = ability.Parse(text, c.Meta())
	return c
}

// vanilla is a plain character with no ability text.
func vanilla(name string, cost, strength, willpower, lore int) *Card {
	return makeChar(name, cost, strength, willpower, lore, "")
}

// newTestGame builds a game with two scripted choosers and a memory logger.
func newTestGame(t *testing.T) (*Game, *ScriptedChooser, *ScriptedChooser, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	p1 := &ScriptedChooser{}
	p2 := &ScriptedChooser{}
	g := NewGame(logger, p1, p2, 42)
	g.Turn = 1
	g.Active = 0
	return g, p1, p2, logger
}

// putInPlay creates an instance of def for the player directly in play,
// registered and dry, as if played on an earlier turn.
func putInPlay(t *testing.T, g *Game, player int, def *Card) *CardInstance {
	t.Helper()
	ci := g.AddToDeck(player, def)
	if err := g.MoveCard(ci.ID, ZonePlay); err != nil {
		t.Fatalf("put in play: %v", err)
	}
	ci.TurnPlayed = g.Turn - 1
	g.registry.RegisterCard(ci.ID)
	g.registry.Recalculate()
	return ci
}

// putInHand creates an instance of def in the player's hand.
func putInHand(t *testing.T, g *Game, player int, def *Card) *CardInstance {
	t.Helper()
	ci := g.AddToDeck(player, def)
	if err := g.MoveCard(ci.ID, ZoneHand); err != nil {
		t.Fatalf("put in hand: %v", err)
	}
	return ci
}

// giveInk fills the player's inkwell with n ready cards.
func giveInk(t *testing.T, g *Game, player, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		def := vanilla(fmt.Sprintf("Ink %d", i), 1, 0, 1, 0)
		ci := g.AddToDeck(player, def)
		if err := g.MoveCard(ci.ID, ZoneInkwell); err != nil {
			t.Fatalf("give ink: %v", err)
		}
	}
}

// stackDeck adds n vanilla cards to the player's deck.
func stackDeck(t *testing.T, g *Game, player, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		g.AddToDeck(player, vanilla(fmt.Sprintf("Filler %d", i), 1, 1, 1, 1))
	}
}

// assertZoneConservation checks that every known instance appears in
// exactly one zone slice.
func assertZoneConservation(t *testing.T, g *Game) {
	t.Helper()
	seen := make(map[InstanceID]int)
	for p := 0; p < 2; p++ {
		pl := g.Players[p]
		for _, zone := range [][]InstanceID{pl.Deck, pl.Hand, pl.Play, pl.Inkwell, pl.Discard, pl.Exile} {
			for _, id := range zone {
				seen[id]++
			}
		}
	}
	for id, ci := range g.cards {
		if seen[id] != 1 {
			t.Errorf("instance %s appears in %d zones, want 1", ci, seen[id])
		}
	}
	if len(seen) != len(g.cards) {
		t.Errorf("%d instances in zones, %d in card table", len(seen), len(g.cards))
	}
}
