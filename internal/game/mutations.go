package game

import (
	"context"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// DealDamage marks damage on a character, applying Resist at application
// time, and banishes it if damage reaches willpower. Returns the damage
// actually marked.
func (g *Game) DealDamage(ctx context.Context, target *CardInstance, amount int, reason string) int {
	if resist, ok := target.KeywordValue(ability.KeywordResist); ok {
		amount -= resist
	}
	if amount <= 0 {
		return 0
	}
	target.Damage += amount
	g.Logger.Log(log.NewDamageEvent(g.Turn, target.Owner, target.Def.Name, amount, target.Damage))
	if target.Damage >= target.Willpower() {
		g.Banish(ctx, target, reason)
	} else {
		// Damage state feeds "while damaged" statics.
		g.registry.Recalculate()
	}
	return amount
}

// HealDamage removes up to amount damage from a character.
func (g *Game) HealDamage(target *CardInstance, amount int) {
	healed := min(amount, target.Damage)
	if healed <= 0 {
		return
	}
	target.Damage -= healed
	g.Logger.Log(log.NewHealEvent(g.Turn, target.Owner, target.Def.Name, healed))
	g.registry.Recalculate()
}

// Banish moves a character from play to its owner's discard. Banished
// triggers are collected before the move so the departing card's own
// ability still fires, and run after so they resolve against the board as
// it is once the card is gone.
func (g *Game) Banish(ctx context.Context, ci *CardInstance, reason string) {
	if ci.Zone != ZonePlay {
		return
	}
	firings := g.registry.Collect(TriggerEvent{
		Kind:      ability.TriggerBanished,
		SubjectID: ci.ID,
		Player:    ci.Owner,
	})
	g.Logger.Log(log.NewBanishEvent(g.Turn, ci.Owner, ci.Def.Name, reason))
	g.MoveCard(ci.ID, ZoneDiscard)
	g.registry.Run(ctx, firings)
}

// ReturnToHand bounces a character from play to its owner's hand.
func (g *Game) ReturnToHand(ci *CardInstance) {
	if ci.Zone != ZonePlay {
		return
	}
	g.Logger.Log(log.NewReturnToHandEvent(g.Turn, ci.Owner, ci.Def.Name))
	g.MoveCard(ci.ID, ZoneHand)
}

// RecoverCard returns a card from the discard to its owner's hand.
func (g *Game) RecoverCard(ci *CardInstance) {
	if ci.Zone != ZoneDiscard {
		return
	}
	g.Logger.Log(log.NewReturnToHandEvent(g.Turn, ci.Owner, ci.Def.Name))
	g.MoveCard(ci.ID, ZoneHand)
}

// IntoInkwell puts a character from play into its owner's inkwell.
func (g *Game) IntoInkwell(ci *CardInstance) {
	if ci.Zone != ZonePlay {
		return
	}
	g.Logger.Log(log.NewIntoInkwellEvent(g.Turn, ci.Owner, ci.Def.Name))
	g.MoveCard(ci.ID, ZoneInkwell)
}

// DrawCards draws n cards. Drawing from an empty deck loses the game
// immediately; remaining draws are abandoned.
func (g *Game) DrawCards(ctx context.Context, player, n int) {
	for i := 0; i < n; i++ {
		if !g.drawOne(ctx, player) {
			return
		}
	}
}

func (g *Game) drawOne(ctx context.Context, player int) bool {
	p := g.Players[player]
	if len(p.Deck) == 0 {
		g.declareWinner(1-player, p.Name+" decked out")
		return false
	}
	id := p.Deck[len(p.Deck)-1]
	ci := g.Card(id)
	g.MoveCard(id, ZoneHand)
	g.Logger.Log(log.NewDrawEvent(g.Turn, player, ci.Def.Name))
	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerCardDrawn, SubjectID: id, Player: player})
	return !g.over
}

// Discard moves a hand card to the discard.
func (g *Game) Discard(player int, id InstanceID) {
	ci := g.Card(id)
	if ci == nil || ci.Zone != ZoneHand {
		return
	}
	g.Logger.Log(log.NewDiscardEvent(g.Turn, player, ci.Def.Name))
	g.MoveCard(id, ZoneDiscard)
}

// DiscardByOpponentEffect discards a hand card chosen by its owner under
// an opposing effect. Same movement as Discard, distinct event.
func (g *Game) DiscardByOpponentEffect(player int, id InstanceID) {
	ci := g.Card(id)
	if ci == nil || ci.Zone != ZoneHand {
		return
	}
	g.Logger.Log(log.NewOpponentDiscardEvent(g.Turn, player, ci.Def.Name))
	g.MoveCard(id, ZoneDiscard)
}

// GainLore adds lore and checks the win threshold.
func (g *Game) GainLore(player, amount int) {
	if amount <= 0 {
		return
	}
	p := g.Players[player]
	p.Lore += amount
	g.Logger.Log(log.NewLoreGainedEvent(g.Turn, player, amount, p.Lore))
	if p.Lore >= LoreToWin {
		g.declareWinner(player, "reached 20 lore")
	}
}

// LoseLore removes lore, stopping at zero.
func (g *Game) LoseLore(player, amount int) {
	p := g.Players[player]
	lost := min(amount, p.Lore)
	if lost <= 0 {
		return
	}
	p.Lore -= lost
	g.Logger.Log(log.NewLoreLostEvent(g.Turn, player, lost, p.Lore))
}

// Ready unexerts a character.
func (g *Game) Ready(ci *CardInstance) {
	if !ci.Exerted {
		return
	}
	ci.Exerted = false
	g.Logger.Log(log.NewReadyEvent(g.Turn, ci.Owner, ci.Def.Name))
}

// Exert exerts a character.
func (g *Game) Exert(ci *CardInstance, reason string) {
	if ci.Exerted {
		return
	}
	ci.Exerted = true
	g.Logger.Log(log.NewExertEvent(g.Turn, ci.Owner, ci.Def.Name, reason))
}

// Boost stacks the top n cards of the owner's deck face down beneath the
// character. Stacked cards sit outside the normal zones in the exile slice
// and fall to the discard when the character leaves play.
func (g *Game) Boost(ci *CardInstance, n int) {
	p := g.Players[ci.Owner]
	moved := 0
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		id := p.Deck[len(p.Deck)-1]
		g.MoveCard(id, ZoneExile)
		ci.Under = append(ci.Under, id)
		moved++
	}
	if moved > 0 {
		g.Logger.Log(log.NewBoostEvent(g.Turn, ci.Owner, ci.Def.Name, moved))
		g.registry.Recalculate()
	}
}
