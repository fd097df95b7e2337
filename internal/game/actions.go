package game

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// ActionKind names a main-phase action.
type ActionKind int

const (
	ActionEndTurn ActionKind = iota
	ActionInk
	ActionPlay
	ActionSing
	ActionQuest
	ActionChallenge
	ActionActivate
)

func (k ActionKind) String() string {
	switch k {
	case ActionInk:
		return "ink"
	case ActionPlay:
		return "play"
	case ActionSing:
		return "sing"
	case ActionQuest:
		return "quest"
	case ActionChallenge:
		return "challenge"
	case ActionActivate:
		return "activate"
	default:
		return "end turn"
	}
}

// Action is one legal main-phase move, fully specified: the engine only
// offers actions it will accept.
type Action struct {
	Kind         ActionKind
	CardID       InstanceID
	TargetID     InstanceID // challenge defender
	SingerID     InstanceID // character exerted to sing a song
	AbilityIndex int        // activated ability index into the definition

	// Targets optionally pre-names the targets of the played card's effects
	// (play and sing actions). Pre-named targets are validated against the
	// same candidate rules as a prompt but skip the choice round trip; a
	// chooser that leaves them empty is prompted per effect as usual.
	Targets []InstanceID
}

func (a Action) String() string {
	switch a.Kind {
	case ActionChallenge:
		return fmt.Sprintf("challenge %d -> %d", a.CardID, a.TargetID)
	case ActionActivate:
		return fmt.Sprintf("activate %d[%d]", a.CardID, a.AbilityIndex)
	case ActionSing:
		return fmt.Sprintf("sing %d with %d", a.CardID, a.SingerID)
	case ActionEndTurn:
		return "end turn"
	default:
		return fmt.Sprintf("%s %d", a.Kind, a.CardID)
	}
}

// LegalActions enumerates every action the player may take right now.
func (g *Game) LegalActions(player int) []Action {
	p := g.Players[player]
	actions := []Action{{Kind: ActionEndTurn}}

	if !p.InkedThisTurn {
		for _, id := range p.Hand {
			if ci := g.Card(id); ci != nil && ci.Def.Inkable {
				actions = append(actions, Action{Kind: ActionInk, CardID: id})
			}
		}
	}

	ink := p.ReadyInk(g)
	for _, id := range p.Hand {
		ci := g.Card(id)
		if ci == nil {
			continue
		}
		if restricted, _ := g.playRestricted(player, ci.Def.Type); restricted {
			continue
		}
		if g.PlayCost(player, ci) <= ink {
			actions = append(actions, Action{Kind: ActionPlay, CardID: id})
		}
		if ci.Def.Type == ability.CardTypeAction && ci.Def.HasSubtype("Song") {
			for _, singer := range g.InPlay(player) {
				if g.canSing(singer, ci) {
					actions = append(actions, Action{Kind: ActionSing, CardID: id, SingerID: singer.ID})
				}
			}
		}
	}

	for _, ci := range g.InPlay(player) {
		if g.canQuest(ci) {
			actions = append(actions, Action{Kind: ActionQuest, CardID: ci.ID})
		}
		if g.canChallengeWith(ci) {
			for _, def := range g.challengeTargets(ci) {
				actions = append(actions, Action{Kind: ActionChallenge, CardID: ci.ID, TargetID: def.ID})
			}
		}
		for i := range ci.Def.Abilities {
			a := &ci.Def.Abilities[i]
			if a.Kind == ability.KindActivated && !a.Unparsed && g.canActivate(ci, a) {
				actions = append(actions, Action{Kind: ActionActivate, CardID: ci.ID, AbilityIndex: i})
			}
		}
	}
	return actions
}

// Apply executes a main-phase action. Callers pass actions obtained from
// LegalActions; anything else gets an error, not partial state change.
func (g *Game) Apply(ctx context.Context, player int, a Action) error {
	switch a.Kind {
	case ActionEndTurn:
		return nil
	case ActionInk:
		return g.InkCard(player, a.CardID)
	case ActionPlay:
		return g.playFromHand(ctx, player, a.CardID, false, a.Targets)
	case ActionSing:
		return g.Sing(ctx, player, a.CardID, a.SingerID, a.Targets)
	case ActionQuest:
		return g.Quest(ctx, player, a.CardID)
	case ActionChallenge:
		return g.Challenge(ctx, player, a.CardID, a.TargetID)
	case ActionActivate:
		return g.ActivateAbility(ctx, player, a.CardID, a.AbilityIndex)
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}

// InkCard puts a hand card into the inkwell, once per turn.
func (g *Game) InkCard(player int, id InstanceID) error {
	p := g.Players[player]
	ci := g.Card(id)
	if ci == nil || ci.Zone != ZoneHand || ci.Owner != player {
		return fmt.Errorf("ink: card %d not in hand", id)
	}
	if !ci.Def.Inkable {
		return fmt.Errorf("ink: %s is not inkable", ci.Def.Name)
	}
	if p.InkedThisTurn {
		return fmt.Errorf("ink: already inked this turn")
	}
	g.MoveCard(id, ZoneInkwell)
	p.InkedThisTurn = true
	g.Logger.Log(log.NewInkEvent(g.Turn, player, ci.Def.Name, len(p.Inkwell)))
	return nil
}

// PlayCost computes the ink cost of playing an instance: base cost minus
// scheduled discounts minus static discounts from the player's own board,
// floored at zero.
func (g *Game) PlayCost(player int, ci *CardInstance) int {
	cost := ci.BaseCost
	cost -= g.scheduler.CostReduction(player, ci)
	for _, src := range g.InPlay(player) {
		for i := range src.Def.Abilities {
			a := &src.Def.Abilities[i]
			if a.Kind != ability.KindStatic || a.Unparsed {
				continue
			}
			if !g.evalCondition(a.Condition, src.ID, src.Owner) {
				continue
			}
			for _, eff := range a.Effects {
				if eff.Kind == ability.EffectCostReduction && g.matchesFilter(eff.Filter, src.ID, player, ci) {
					cost -= eff.Amount
				}
			}
		}
	}
	return max(cost, 0)
}

// playRestricted reports whether the player is currently barred from
// playing the card type, combining scheduled restrictions with static ones
// on the opposing board.
func (g *Game) playRestricted(player int, t ability.CardType) (bool, string) {
	if restricted, source := g.scheduler.PlayRestricted(player, t); restricted {
		return true, source
	}
	for _, src := range g.InPlay(1 - player) {
		for i := range src.Def.Abilities {
			a := &src.Def.Abilities[i]
			if a.Kind != ability.KindStatic || a.Unparsed {
				continue
			}
			if !g.evalCondition(a.Condition, src.ID, src.Owner) {
				continue
			}
			for _, eff := range a.Effects {
				if eff.Kind == ability.EffectRestrictPlay && restrictCovers(eff.Restrict, t) {
					return true, src.Def.Name
				}
			}
		}
	}
	return false, ""
}

// playFromHand plays a card, paying its ink cost unless free. Characters
// and items enter play and register their triggers; actions resolve and go
// to the discard.
func (g *Game) playFromHand(ctx context.Context, player int, id InstanceID, free bool, preselected []InstanceID) error {
	ci := g.Card(id)
	if ci == nil || ci.Zone != ZoneHand || ci.Owner != player {
		return fmt.Errorf("play: card %d not in hand", id)
	}
	if restricted, source := g.playRestricted(player, ci.Def.Type); restricted {
		g.Logger.Log(log.NewPlayRestrictedEvent(g.Turn, player, ci.Def.Name, source))
		return fmt.Errorf("play: %s restricted by %s", ci.Def.Name, source)
	}
	cost := 0
	if !free {
		cost = g.PlayCost(player, ci)
		// Affordability is checked before any ink is exerted so a rejected
		// play leaves the inkwell untouched.
		if ready := g.Players[player].ReadyInk(g); ready < cost {
			return fmt.Errorf("play: %s costs %d, only %d ink ready", ci.Def.Name, cost, ready)
		}
		if err := g.spendInk(player, cost); err != nil {
			return err
		}
		g.scheduler.ConsumeReductions(player, ci)
	}
	g.Logger.Log(log.NewPlayCardEvent(g.Turn, player, ci.Def.Name, cost))
	return g.enterOrResolve(ctx, player, ci, preselected)
}

// Sing plays a song by exerting a capable singer instead of paying ink.
func (g *Game) Sing(ctx context.Context, player int, songID, singerID InstanceID, preselected []InstanceID) error {
	song := g.Card(songID)
	singer := g.Card(singerID)
	if song == nil || song.Zone != ZoneHand || song.Owner != player {
		return fmt.Errorf("sing: song %d not in hand", songID)
	}
	if singer == nil || !g.canSing(singer, song) {
		return fmt.Errorf("sing: %d cannot sing %s", singerID, song.Def.Name)
	}
	if restricted, source := g.playRestricted(player, song.Def.Type); restricted {
		g.Logger.Log(log.NewPlayRestrictedEvent(g.Turn, player, song.Def.Name, source))
		return fmt.Errorf("sing: %s restricted by %s", song.Def.Name, source)
	}
	g.Exert(singer, "sings "+song.Def.Name)
	g.Logger.Log(log.NewPlayCardEvent(g.Turn, player, song.Def.Name, 0))
	return g.enterOrResolve(ctx, player, song, preselected)
}

func (g *Game) canSing(singer *CardInstance, song *CardInstance) bool {
	if singer.Zone != ZonePlay || singer.Exerted || !singer.IsDry(g.Turn) {
		return false
	}
	value, ok := singer.KeywordValue(ability.KeywordSinger)
	if !ok {
		value = singer.BaseCost
	}
	return value >= song.BaseCost
}

// enterOrResolve finishes a play after payment: board entry for characters
// and items, direct resolution for actions. Play triggers for the rest of
// the board fire in both cases.
func (g *Game) enterOrResolve(ctx context.Context, player int, ci *CardInstance, preselected []InstanceID) error {
	if ci.Def.Type == ability.CardTypeAction {
		g.MoveCard(ci.ID, ZoneDiscard)
		for i := range ci.Def.Abilities {
			a := &ci.Def.Abilities[i]
			if a.Kind != ability.KindTriggered || a.Trigger == nil || a.Trigger.Kind != ability.TriggerPlay {
				continue
			}
			if err := g.resolveActionCard(ctx, ci, player, a, preselected); err != nil {
				g.Logger.Log(log.NewAbilityErrorEvent(g.Turn, player, ci.Def.Name, abilityName(a), err))
			}
		}
		g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerPlay, SubjectID: ci.ID, Player: player})
		return nil
	}

	g.MoveCard(ci.ID, ZonePlay)
	ci.TurnPlayed = g.Turn
	g.registry.RegisterCard(ci.ID)
	g.registry.Recalculate()
	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerPlay, SubjectID: ci.ID, Player: player})
	return nil
}

// resolveActionCard resolves an action card's body with any targets the
// player named up front.
func (g *Game) resolveActionCard(ctx context.Context, ci *CardInstance, player int, a *ability.Ability, preselected []InstanceID) error {
	defer func() {
		if p := recover(); p != nil {
			g.Logger.Log(log.NewAbilityErrorEvent(g.Turn, player, ci.Def.Name, abilityName(a), fmt.Errorf("panic: %v", p)))
		}
	}()
	if a.IsNoop() {
		g.Logger.Log(log.NewUnparsedAbilityEvent(ci.Def.Name, a.RawText))
		return nil
	}
	if !g.evalCondition(a.Condition, ci.ID, player) {
		return nil
	}
	tc := &targetCtx{sourceID: ci.ID, controller: player, preselected: preselected}
	for _, eff := range a.Effects {
		if err := g.executeEffect(ctx, tc, eff); err != nil {
			return err
		}
		if g.over {
			return nil
		}
	}
	return nil
}

// canQuest: in play, ready, dry, and not Reckless.
func (g *Game) canQuest(ci *CardInstance) bool {
	return ci.Zone == ZonePlay &&
		ci.Def.Type == ability.CardTypeCharacter &&
		!ci.Exerted &&
		ci.IsDry(g.Turn) &&
		!ci.HasKeyword(ability.KeywordReckless)
}

// Quest exerts a character for its lore value, then runs quest triggers and
// the Support flow.
func (g *Game) Quest(ctx context.Context, player int, id InstanceID) error {
	ci := g.Card(id)
	if ci == nil || ci.Owner != player || !g.canQuest(ci) {
		return fmt.Errorf("quest: %d cannot quest", id)
	}
	ci.Exerted = true
	lore := ci.Lore()
	g.Logger.Log(log.NewQuestEvent(g.Turn, player, ci.Def.Name, lore, g.Players[player].Lore+lore))
	g.GainLore(player, lore)
	if g.over {
		return nil
	}
	if ci.HasKeyword(ability.KeywordSupport) {
		if err := g.supportFlow(ctx, ci); err != nil {
			g.Logger.Log(log.NewAbilityErrorEvent(g.Turn, player, ci.Def.Name, "Support", err))
		}
	}
	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerQuests, SubjectID: id, Player: player})
	return nil
}

// supportFlow offers to add the questing character's strength to another of
// its player's characters for the turn.
func (g *Game) supportFlow(ctx context.Context, ci *CardInstance) error {
	tc := &targetCtx{sourceID: ci.ID, controller: ci.Owner}
	spec := ability.TargetSpec{
		Kind: ability.TargetChosenCharacter,
		Filter: ability.Filter{
			Subject: ability.SubjectYours, CardType: ability.CardTypeCharacter, ExcludeSelf: true,
		},
	}
	options := g.characterOptions(tc, spec.Filter)
	hasValid := false
	for _, o := range options {
		if o.Valid {
			hasValid = true
			break
		}
	}
	if !hasValid {
		return nil
	}
	yes, err := g.choosers[ci.Owner].Confirm(ctx, ci.Owner,
		fmt.Sprintf("Support: add %s's strength to another character this turn?", ci.Def.Name))
	if err != nil || !yes {
		return err
	}
	targets, err := g.resolveTargets(ctx, tc, spec, "Support:")
	if err != nil || len(targets) == 0 {
		return err
	}
	target := g.Card(targets[0])
	if target == nil {
		return nil
	}
	amount := ci.Strength()
	g.scheduler.AddStatMod(ci, ci.Owner, target.ID, ability.StatStrength, amount, ability.DurationEndOfTurn)
	g.Logger.Log(log.NewStatChangeEvent(g.Turn, target.Owner, target.Def.Name, "strength", amount))
	g.registry.Recalculate()
	return nil
}

// canChallengeWith: in play, ready, and dry or Rush.
func (g *Game) canChallengeWith(ci *CardInstance) bool {
	if ci.Zone != ZonePlay || ci.Def.Type != ability.CardTypeCharacter || ci.Exerted {
		return false
	}
	return ci.IsDry(g.Turn) || ci.HasKeyword(ability.KeywordRush)
}

// challengeTargets lists legal defenders for an attacker: exerted opposing
// characters, narrowed by Bodyguard and Evasive.
func (g *Game) challengeTargets(attacker *CardInstance) []*CardInstance {
	opp := 1 - attacker.Owner
	var exerted, bodyguards []*CardInstance
	for _, ci := range g.InPlay(opp) {
		if ci.Def.Type != ability.CardTypeCharacter || !ci.Exerted {
			continue
		}
		if ci.HasKeyword(ability.KeywordEvasive) && !attacker.HasKeyword(ability.KeywordEvasive) {
			continue
		}
		exerted = append(exerted, ci)
		if ci.HasKeyword(ability.KeywordBodyguard) {
			bodyguards = append(bodyguards, ci)
		}
	}
	if len(bodyguards) > 0 {
		return bodyguards
	}
	return exerted
}

// Challenge resolves a challenge: triggers first, then simultaneous damage
// from strength values snapshotted after the triggers.
func (g *Game) Challenge(ctx context.Context, player int, attackerID, defenderID InstanceID) error {
	attacker := g.Card(attackerID)
	if attacker == nil || attacker.Owner != player || !g.canChallengeWith(attacker) {
		return fmt.Errorf("challenge: %d cannot challenge", attackerID)
	}
	defender := g.Card(defenderID)
	legal := false
	for _, t := range g.challengeTargets(attacker) {
		if t.ID == defenderID {
			legal = true
			break
		}
	}
	if defender == nil || !legal {
		return fmt.Errorf("challenge: %d is not a legal defender", defenderID)
	}

	attacker.Exerted = true
	g.Logger.Log(log.NewChallengeEvent(g.Turn, player, attacker.Def.Name, defender.Def.Name))
	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerChallenges, SubjectID: attackerID, Player: player})
	g.registry.EmitEvent(ctx, TriggerEvent{Kind: ability.TriggerIsChallenged, SubjectID: defenderID, Player: 1 - player})
	if g.over {
		return nil
	}

	// Both may have been banished or bounced by a trigger.
	atkStr, defStr := 0, 0
	if attacker.Zone == ZonePlay {
		atkStr = attacker.Strength()
		if bonus, ok := attacker.KeywordValue(ability.KeywordChallenger); ok {
			atkStr += bonus
		}
	}
	if defender.Zone == ZonePlay {
		defStr = defender.Strength()
	}
	if defender.Zone == ZonePlay && atkStr > 0 {
		g.DealDamage(ctx, defender, atkStr, "challenged by "+attacker.Def.Name)
	}
	if attacker.Zone == ZonePlay && defStr > 0 {
		g.DealDamage(ctx, attacker, defStr, "challenged "+defender.Def.Name)
	}
	return nil
}

// canActivate checks an activated ability's cost affordability and the
// drying rule for exert costs.
func (g *Game) canActivate(ci *CardInstance, a *ability.Ability) bool {
	if a.Cost == nil {
		return false
	}
	if a.Cost.ExertSelf && ci.Def.Type == ability.CardTypeCharacter && !ci.IsDry(g.Turn) {
		return false
	}
	return g.canPayCost(ci, ci.Owner, a.Cost)
}

// ActivateAbility pays for and resolves an activated ability on a card in
// play.
func (g *Game) ActivateAbility(ctx context.Context, player int, id InstanceID, abilityIdx int) error {
	ci := g.Card(id)
	if ci == nil || ci.Zone != ZonePlay || ci.Owner != player {
		return fmt.Errorf("activate: card %d not in play", id)
	}
	if abilityIdx < 0 || abilityIdx >= len(ci.Def.Abilities) {
		return fmt.Errorf("activate: ability index %d out of range", abilityIdx)
	}
	a := &ci.Def.Abilities[abilityIdx]
	if a.Kind != ability.KindActivated {
		return fmt.Errorf("activate: %s is not activated", abilityName(a))
	}
	if !g.canActivate(ci, a) {
		return fmt.Errorf("activate: cannot pay for %s", abilityName(a))
	}
	g.Logger.Log(log.NewAbilityActivatedEvent(g.Turn, player, ci.Def.Name, abilityName(a)))
	return g.resolveAbility(ctx, id, player, a, 0)
}
