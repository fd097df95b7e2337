package game

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// resolveAbility runs one triggered or activated ability end to end:
// condition, cost check, optional confirmation, cost payment, then the
// effect chain. The order is fixed so a player is never prompted for an
// ability they cannot pay for, and never pays for an ability they then
// decline.
func (g *Game) resolveAbility(ctx context.Context, sourceID InstanceID, controller int, ab *ability.Ability, subjectID InstanceID) error {
	if ab.IsNoop() {
		return nil
	}
	if !g.evalCondition(ab.Condition, sourceID, controller) {
		return nil
	}
	source := g.Card(sourceID)
	if source == nil {
		return fmt.Errorf("source instance %d is gone", sourceID)
	}
	if ab.Cost != nil && !g.canPayCost(source, controller, ab.Cost) {
		return nil
	}
	if ab.Optional {
		yes, err := g.choosers[controller].Confirm(ctx, controller, confirmPrompt(source, ab))
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !yes {
			return nil
		}
	}
	if ab.Cost != nil {
		if err := g.payCost(ctx, source, controller, ab.Cost); err != nil {
			return fmt.Errorf("pay cost: %w", err)
		}
	}

	tc := &targetCtx{sourceID: sourceID, controller: controller, subjectID: subjectID}
	for _, eff := range ab.Effects {
		if err := g.executeEffect(ctx, tc, eff); err != nil {
			return err
		}
		if g.over {
			return nil
		}
	}
	return nil
}

func confirmPrompt(source *CardInstance, ab *ability.Ability) string {
	name := ab.Name
	if name == "" {
		name = source.Def.Name
	}
	return fmt.Sprintf("%s: %s", name, ab.RawText)
}

// executeEffect runs one effect node. The switch covers every effect kind
// the parser can produce; an unknown kind is an error, never a silent skip.
func (g *Game) executeEffect(ctx context.Context, tc *targetCtx, eff ability.Effect) error {
	switch eff.Kind {
	case ability.EffectNone:
		return nil

	case ability.EffectDealDamage:
		amount := g.effectAmount(tc, eff)
		targets, err := g.resolveTargets(ctx, tc, eff.Target, fmt.Sprintf("Deal %d damage to:", amount))
		if err != nil {
			return err
		}
		for _, id := range targets {
			if ci := g.Card(id); ci != nil {
				g.DealDamage(ctx, ci, amount, "damage effect")
			}
		}
		return nil

	case ability.EffectHealDamage:
		targets, err := g.resolveTargets(ctx, tc, eff.Target, fmt.Sprintf("Remove up to %d damage from:", eff.Amount))
		if err != nil {
			return err
		}
		for _, id := range targets {
			if ci := g.Card(id); ci != nil {
				g.HealDamage(ci, eff.Amount)
			}
		}
		return nil

	case ability.EffectBanish:
		targets, err := g.resolveTargets(ctx, tc, eff.Target, "Banish:")
		if err != nil {
			return err
		}
		for _, id := range targets {
			if ci := g.Card(id); ci != nil {
				g.Banish(ctx, ci, "banish effect")
			}
		}
		return nil

	case ability.EffectReturnToHand:
		targets, err := g.resolveTargets(ctx, tc, eff.Target, "Return to hand:")
		if err != nil {
			return err
		}
		for _, id := range targets {
			ci := g.Card(id)
			if ci == nil {
				continue
			}
			switch ci.Zone {
			case ZonePlay:
				g.ReturnToHand(ci)
			case ZoneDiscard:
				g.RecoverCard(ci)
			}
		}
		return nil

	case ability.EffectIntoInkwell:
		targets, err := g.resolveTargets(ctx, tc, eff.Target, "Put into inkwell:")
		if err != nil {
			return err
		}
		for _, id := range targets {
			if ci := g.Card(id); ci != nil {
				g.IntoInkwell(ci)
			}
		}
		return nil

	case ability.EffectDrawCards:
		g.DrawCards(ctx, tc.controller, eff.Amount)
		return nil

	case ability.EffectDrawUntil:
		// Hand size is measured at resolution time, not when the ability
		// was put on the stack.
		n := eff.Amount - len(g.Players[tc.controller].Hand)
		if n > 0 {
			g.DrawCards(ctx, tc.controller, n)
		}
		return nil

	case ability.EffectDiscardCards:
		chosen, err := g.chooseFromHand(ctx, tc.controller, eff.Amount, "Discard:", nil)
		if err != nil {
			return err
		}
		for _, id := range chosen {
			g.Discard(tc.controller, id)
		}
		return nil

	case ability.EffectOpponentDiscardsChosen:
		opp := 1 - tc.controller
		chosen, err := g.chooseFromHand(ctx, opp, eff.Amount, "Choose a card to discard:", nil)
		if err != nil {
			return err
		}
		for _, id := range chosen {
			g.DiscardByOpponentEffect(opp, id)
		}
		return nil

	case ability.EffectModifyStat:
		source := g.Card(tc.sourceID)
		if source == nil {
			return fmt.Errorf("stat effect source %d is gone", tc.sourceID)
		}
		amount := g.effectAmount(tc, eff)
		targets, err := g.resolveTargets(ctx, tc, eff.Target,
			fmt.Sprintf("Give %+d %s to:", amount, eff.Stat))
		if err != nil {
			return err
		}
		for _, id := range targets {
			ci := g.Card(id)
			if ci == nil {
				continue
			}
			g.scheduler.AddStatMod(source, tc.controller, id, eff.Stat, amount, eff.Duration)
			g.Logger.Log(log.NewStatChangeEvent(g.Turn, ci.Owner, ci.Def.Name, eff.Stat.String(), amount))
		}
		if len(targets) > 0 {
			g.registry.Recalculate()
		}
		return nil

	case ability.EffectGrantKeyword:
		source := g.Card(tc.sourceID)
		if source == nil {
			return fmt.Errorf("keyword effect source %d is gone", tc.sourceID)
		}
		targets, err := g.resolveTargets(ctx, tc, eff.Target,
			fmt.Sprintf("Give %s to:", eff.Keyword))
		if err != nil {
			return err
		}
		for _, id := range targets {
			ci := g.Card(id)
			if ci == nil {
				continue
			}
			g.scheduler.AddKeyword(source, tc.controller, id, eff.Keyword, eff.Value, eff.Duration)
			g.Logger.Log(log.NewKeywordGrantedEvent(g.Turn, ci.Owner, ci.Def.Name, eff.Keyword.String()))
		}
		if len(targets) > 0 {
			g.registry.Recalculate()
		}
		return nil

	case ability.EffectGainLore:
		g.GainLore(tc.controller, g.effectAmount(tc, eff))
		return nil

	case ability.EffectLoseLore:
		g.LoseLore(1-tc.controller, eff.Amount)
		return nil

	case ability.EffectReadyCharacter:
		targets, err := g.resolveTargets(ctx, tc, eff.Target, "Ready:")
		if err != nil {
			return err
		}
		for _, id := range targets {
			if ci := g.Card(id); ci != nil {
				g.Ready(ci)
			}
		}
		return nil

	case ability.EffectExertCharacter:
		targets, err := g.resolveTargets(ctx, tc, eff.Target, "Exert:")
		if err != nil {
			return err
		}
		for _, id := range targets {
			if ci := g.Card(id); ci != nil {
				g.Exert(ci, "effect")
			}
		}
		return nil

	case ability.EffectCostReduction:
		source := g.Card(tc.sourceID)
		if source == nil {
			return fmt.Errorf("cost reduction source %d is gone", tc.sourceID)
		}
		g.scheduler.AddCostReduction(source, tc.controller, eff.Filter, eff.Amount, eff.Duration, true)
		return nil

	case ability.EffectPlayForFree:
		return g.playForFree(ctx, tc, eff)

	case ability.EffectRestrictPlay:
		source := g.Card(tc.sourceID)
		if source == nil {
			return fmt.Errorf("restriction source %d is gone", tc.sourceID)
		}
		g.scheduler.AddRestriction(source, tc.controller, eff.Restrict, eff.Duration)
		return nil

	case ability.EffectBoost:
		if src := g.Card(tc.sourceID); src != nil && src.Zone == ZonePlay {
			g.Boost(src, eff.Amount)
		}
		return nil

	case ability.EffectConditional:
		branch := eff.Then
		if !g.evalCondition(eff.Cond, tc.sourceID, tc.controller) {
			branch = eff.Else
		}
		for _, sub := range branch {
			if err := g.executeEffect(ctx, tc, sub); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unhandled effect kind %v", eff.Kind)
	}
}

// effectAmount computes the concrete amount of an effect: a stat snapshot
// from the source, or the literal amount times a board count.
func (g *Game) effectAmount(tc *targetCtx, eff ability.Effect) int {
	if eff.AmountFromSource != nil {
		src := g.Card(tc.sourceID)
		if src == nil {
			return 0
		}
		switch *eff.AmountFromSource {
		case ability.StatStrength:
			return src.Strength()
		case ability.StatWillpower:
			return src.Willpower()
		case ability.StatLore:
			return src.Lore()
		}
		return 0
	}
	if eff.Per != nil {
		return eff.Amount * g.countMatching(*eff.Per, tc.sourceID, tc.controller)
	}
	return eff.Amount
}

// playForFree lets the controller play an eligible hand card without paying
// its ink cost. Declinable: the rest of the ability already resolved.
func (g *Game) playForFree(ctx context.Context, tc *targetCtx, eff ability.Effect) error {
	player := tc.controller
	eligible := func(ci *CardInstance) bool {
		if eff.MaxCost > 0 && ci.BaseCost > eff.MaxCost {
			return false
		}
		return g.matchesFilter(eff.Filter, tc.sourceID, player, ci)
	}
	var options []ChoiceOption
	valid := 0
	for _, id := range g.Players[player].Hand {
		ci := g.Card(id)
		if ci == nil {
			continue
		}
		o := ChoiceOption{EntityID: id, Label: ci.Def.Name, Valid: eligible(ci)}
		if !o.Valid {
			o.Reason = "not eligible"
		} else {
			valid++
		}
		options = append(options, o)
	}
	if valid == 0 {
		return nil
	}
	resp, err := g.requestChoice(ctx, &ChoiceRequest{
		Player: player, Prompt: "Play for free:", Options: options,
		Min: 1, Max: 1, AllowDecline: true,
	})
	if err != nil {
		return err
	}
	if resp.Declined {
		return nil
	}
	return g.playFromHand(ctx, player, resp.Chosen[0], true, nil)
}

// canPayCost checks affordability without prompting. Runs before any
// confirmation so a player never gets asked about an ability they cannot
// pay for.
func (g *Game) canPayCost(source *CardInstance, controller int, cost *ability.ActivationCost) bool {
	p := g.Players[controller]
	if cost.Ink > 0 && p.ReadyInk(g) < cost.Ink {
		return false
	}
	if cost.ExertSelf && (source.Zone != ZonePlay || source.Exerted) {
		return false
	}
	if cost.DiscardCount > len(p.Hand) {
		return false
	}
	return true
}

// payCost pays an already-checked cost. Ink payment exerts ready inkwell
// cards in order; the discard part prompts for which cards.
func (g *Game) payCost(ctx context.Context, source *CardInstance, controller int, cost *ability.ActivationCost) error {
	if cost.ExertSelf {
		g.Exert(source, "ability cost")
	}
	if err := g.spendInk(controller, cost.Ink); err != nil {
		return err
	}
	if cost.DiscardCount > 0 {
		chosen, err := g.chooseFromHand(ctx, controller, cost.DiscardCount, "Discard to pay:", nil)
		if err != nil {
			return err
		}
		for _, id := range chosen {
			g.Discard(controller, id)
		}
	}
	return nil
}

// spendInk exerts n ready inkwell cards.
func (g *Game) spendInk(player, n int) error {
	if n == 0 {
		return nil
	}
	p := g.Players[player]
	for _, id := range p.Inkwell {
		if n == 0 {
			break
		}
		ci := g.Card(id)
		if ci != nil && !ci.Exerted {
			ci.Exerted = true
			n--
		}
	}
	if n > 0 {
		return fmt.Errorf("player %d short %d ink", player, n)
	}
	return nil
}
