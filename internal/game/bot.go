package game

import (
	"context"

	"github.com/calebmorrow/loreduel/internal/ability"
)

// Bot is a deterministic heuristic Chooser, good enough to drive
// simulations and to stand in for a disconnected player. It inks early,
// develops its board, takes favorable challenges and quests with whatever
// is left.
type Bot struct{}

func NewBot() *Bot {
	return &Bot{}
}

// ChooseAction picks by fixed priority: ink, play the most expensive
// affordable card, challenge when the trade is good, quest, activate, end.
func (b *Bot) ChooseAction(ctx context.Context, g *Game, player int, actions []Action) (Action, error) {
	if a, ok := b.pickInk(g, actions); ok {
		return a, nil
	}
	if a, ok := b.pickPlay(g, actions); ok {
		return a, nil
	}
	if a, ok := b.pickChallenge(g, actions); ok {
		return a, nil
	}
	for _, a := range actions {
		if a.Kind == ActionQuest {
			return a, nil
		}
	}
	for _, a := range actions {
		if a.Kind == ActionActivate {
			return a, nil
		}
	}
	return Action{Kind: ActionEndTurn}, nil
}

func (b *Bot) pickInk(g *Game, actions []Action) (Action, bool) {
	// Stop inking at seven: past that the ink rarely pays for itself.
	for _, a := range actions {
		if a.Kind != ActionInk {
			continue
		}
		ci := g.Card(a.CardID)
		if ci == nil {
			continue
		}
		if len(g.Players[ci.Owner].Inkwell) >= 7 {
			return Action{}, false
		}
		return a, true
	}
	return Action{}, false
}

func (b *Bot) pickPlay(g *Game, actions []Action) (Action, bool) {
	best := Action{}
	bestCost := -1
	for _, a := range actions {
		if a.Kind != ActionPlay && a.Kind != ActionSing {
			continue
		}
		ci := g.Card(a.CardID)
		if ci == nil {
			continue
		}
		cost := ci.BaseCost
		if a.Kind == ActionSing {
			cost++ // singing saves ink; prefer it over paying
		}
		if cost > bestCost {
			best, bestCost = a, cost
		}
	}
	return best, bestCost >= 0
}

// pickChallenge takes a challenge only when it banishes the defender
// without losing the attacker, or trades up in cost.
func (b *Bot) pickChallenge(g *Game, actions []Action) (Action, bool) {
	for _, a := range actions {
		if a.Kind != ActionChallenge {
			continue
		}
		atk, def := g.Card(a.CardID), g.Card(a.TargetID)
		if atk == nil || def == nil {
			continue
		}
		atkStr := atk.Strength()
		if bonus, ok := atk.KeywordValue(ability.KeywordChallenger); ok {
			atkStr += bonus
		}
		kills := def.Damage+atkStr >= def.Willpower()
		dies := atk.Damage+def.Strength() >= atk.Willpower()
		if kills && (!dies || def.BaseCost >= atk.BaseCost) {
			return a, true
		}
	}
	return Action{}, false
}

// Choose picks the first Min valid options: harmless for self-directed
// prompts and predictable for tests.
func (b *Bot) Choose(ctx context.Context, req *ChoiceRequest) (*ChoiceResponse, error) {
	n := req.Min
	if n == 0 {
		n = 1
	}
	var chosen []InstanceID
	for _, o := range req.Options {
		if len(chosen) == n {
			break
		}
		if o.Valid {
			chosen = append(chosen, o.EntityID)
		}
	}
	if len(chosen) < req.Min {
		if req.AllowDecline {
			return &ChoiceResponse{RequestID: req.ID, Declined: true}, nil
		}
		chosen = nil
	}
	return &ChoiceResponse{RequestID: req.ID, Chosen: chosen}, nil
}

// Confirm always accepts optional effects.
func (b *Bot) Confirm(ctx context.Context, player int, prompt string) (bool, error) {
	return true, nil
}
