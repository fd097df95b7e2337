package game

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
)

// targetCtx carries what target resolution needs to know about the effect
// being resolved: whose ability it is and, for chained effects, which
// instance fired the trigger.
type targetCtx struct {
	sourceID   InstanceID
	controller int
	subjectID  InstanceID
	// preselected holds targets the player already named when they took
	// the action. They are validated against the same rules as a prompt
	// but skip the round trip.
	preselected []InstanceID
}

// resolveTargets resolves a target spec to concrete instance IDs, prompting
// the controller when the spec requires a choice. An empty result with a nil
// error means the effect has nothing to apply to and is skipped without a
// prompt.
func (g *Game) resolveTargets(ctx context.Context, tc *targetCtx, t ability.TargetSpec, prompt string) ([]InstanceID, error) {
	switch t.Kind {
	case ability.TargetNone, ability.TargetAllPlayers, ability.TargetChosenOpponent:
		// Player-directed effects carry no instance targets.
		return nil, nil
	case ability.TargetSelf:
		if ci := g.Card(tc.sourceID); ci != nil && ci.Zone == ZonePlay {
			return []InstanceID{tc.sourceID}, nil
		}
		return nil, nil
	case ability.TargetTriggerSource:
		// The triggering instance is addressed by ID; if it has since moved
		// again it resolves in its current zone only if still in play.
		if ci := g.Card(tc.subjectID); ci != nil && ci.Zone == ZonePlay {
			return []InstanceID{tc.subjectID}, nil
		}
		return nil, nil
	case ability.TargetAllCharacters:
		var out []InstanceID
		for _, ci := range g.AllInPlay() {
			if ci.Def.Type != ability.CardTypeCharacter {
				continue
			}
			if g.matchesFilter(t.Filter, tc.sourceID, tc.controller, ci) {
				out = append(out, ci.ID)
			}
		}
		return out, nil
	case ability.TargetChosenCharacter:
		return g.chooseCharacter(ctx, tc, t, prompt)
	case ability.TargetZoneCards:
		return g.chooseZoneCard(ctx, tc, t, prompt)
	default:
		return nil, fmt.Errorf("unhandled target kind %v", t.Kind)
	}
}

// chooseCharacter builds the full candidate set, invalid options included
// with reasons, and asks the controller to pick one. A single valid
// candidate still goes through the request so clients see a uniform flow.
func (g *Game) chooseCharacter(ctx context.Context, tc *targetCtx, t ability.TargetSpec, prompt string) ([]InstanceID, error) {
	options := g.characterOptions(tc, t.Filter)

	valid := 0
	for _, o := range options {
		if o.Valid {
			valid++
		}
	}
	if valid == 0 {
		return nil, nil
	}

	if len(tc.preselected) > 0 {
		return g.validatePreselected(tc.preselected, options)
	}

	req := &ChoiceRequest{
		Player:  tc.controller,
		Prompt:  prompt,
		Options: options,
		Min:     1,
		Max:     1,
	}
	resp, err := g.requestChoice(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Declined {
		return nil, nil
	}
	return resp.Chosen, nil
}

// characterOptions lists every in-play character as an option, marking the
// ones the filter or a protection keyword rules out.
func (g *Game) characterOptions(tc *targetCtx, f ability.Filter) []ChoiceOption {
	var options []ChoiceOption
	for _, ci := range g.AllInPlay() {
		if ci.Def.Type != ability.CardTypeCharacter {
			continue
		}
		o := ChoiceOption{EntityID: ci.ID, Label: ci.String(), Valid: true}
		switch {
		case !g.matchesFilter(f, tc.sourceID, tc.controller, ci):
			o.Valid = false
			o.Reason = filterReason(f, tc, ci)
		case ci.Owner != tc.controller && ci.HasKeyword(ability.KeywordWard):
			o.Valid = false
			o.Reason = "has Ward"
		}
		options = append(options, o)
	}
	return options
}

// filterReason names the first filter clause the candidate fails, for the
// option's Reason field.
func filterReason(f ability.Filter, tc *targetCtx, ci *CardInstance) string {
	switch {
	case f.Subject == ability.SubjectYours && ci.Owner != tc.controller:
		return "not yours"
	case f.Subject == ability.SubjectOpposing && ci.Owner == tc.controller:
		return "not opposing"
	case f.Subtype != "" && !ci.Def.HasSubtype(f.Subtype):
		return fmt.Sprintf("not a %s", f.Subtype)
	case f.MaxCost > 0 && ci.BaseCost > f.MaxCost:
		return fmt.Sprintf("cost above %d", f.MaxCost)
	case f.DamagedOnly && !ci.IsDamaged():
		return "not damaged"
	case f.ExertedOnly && !ci.Exerted:
		return "not exerted"
	case f.ExcludeSelf && ci.ID == tc.sourceID:
		return "can't choose itself"
	default:
		return "not a legal target"
	}
}

// chooseZoneCard picks one card from the controller's named hidden zone.
// Same transparency rules as board targeting: every card in the zone is
// listed, with a reason on the ones the filter rules out.
func (g *Game) chooseZoneCard(ctx context.Context, tc *targetCtx, t ability.TargetSpec, prompt string) ([]InstanceID, error) {
	p := g.Players[tc.controller]
	var ids []InstanceID
	switch t.Zone {
	case "discard":
		ids = p.Discard
	case "hand":
		ids = p.Hand
	default:
		return nil, fmt.Errorf("unhandled target zone %q", t.Zone)
	}

	var options []ChoiceOption
	valid := 0
	for _, id := range ids {
		ci := g.Card(id)
		if ci == nil {
			continue
		}
		o := ChoiceOption{EntityID: id, Label: ci.Def.Name, Valid: true}
		if !g.matchesFilter(t.Filter, tc.sourceID, tc.controller, ci) {
			o.Valid = false
			o.Reason = filterReason(t.Filter, tc, ci)
		} else {
			valid++
		}
		options = append(options, o)
	}
	if valid == 0 {
		return nil, nil
	}

	if len(tc.preselected) > 0 {
		return g.validatePreselected(tc.preselected, options)
	}

	resp, err := g.requestChoice(ctx, &ChoiceRequest{
		Player:  tc.controller,
		Prompt:  prompt,
		Options: options,
		Min:     1,
		Max:     1,
	})
	if err != nil {
		return nil, err
	}
	if resp.Declined {
		return nil, nil
	}
	return resp.Chosen, nil
}

func (g *Game) validatePreselected(chosen []InstanceID, options []ChoiceOption) ([]InstanceID, error) {
	byID := make(map[InstanceID]ChoiceOption, len(options))
	for _, o := range options {
		byID[o.EntityID] = o
	}
	for _, id := range chosen {
		o, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("target %d is not a candidate", id)
		}
		if !o.Valid {
			return nil, fmt.Errorf("target %s: %s", o.Label, o.Reason)
		}
	}
	return chosen, nil
}

// chooseFromHand prompts a player to pick n of their own hand cards, for
// discard costs and opponent-chooses-discard effects. Fewer cards than n in
// hand means all of them.
func (g *Game) chooseFromHand(ctx context.Context, player int, n int, prompt string, filter func(*CardInstance) bool) ([]InstanceID, error) {
	var options []ChoiceOption
	valid := 0
	for _, id := range g.Players[player].Hand {
		ci := g.Card(id)
		if ci == nil {
			continue
		}
		o := ChoiceOption{EntityID: id, Label: ci.Def.Name, Valid: true}
		if filter != nil && !filter(ci) {
			o.Valid = false
			o.Reason = "not eligible"
		}
		if o.Valid {
			valid++
		}
		options = append(options, o)
	}
	if valid == 0 {
		return nil, nil
	}
	if n > valid {
		n = valid
	}
	req := &ChoiceRequest{
		Player:  player,
		Prompt:  prompt,
		Options: options,
		Min:     n,
		Max:     n,
	}
	resp, err := g.requestChoice(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.Chosen, nil
}
