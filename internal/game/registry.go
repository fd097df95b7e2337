package game

import (
	"context"
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// TriggerEvent is one game occurrence broadcast to registered listeners.
// SubjectID is the instance the event is about (the card played, banished,
// questing...); zero for turn boundary events.
type TriggerEvent struct {
	Kind      ability.TriggerKind
	SubjectID InstanceID
	// Player is the acting player: who played/drew the card, whose turn
	// started or ended.
	Player int
}

// listener pairs a registered card instance with one of its triggered
// abilities. The registry stores IDs, never instance pointers: a listener
// whose card has left play resolves to nothing at dispatch time.
type listener struct {
	cardID     InstanceID
	abilityIdx int
}

// Registry is the per-game ability registry. Cards register their triggered
// abilities when they enter play and unregister when they leave; static
// abilities are discovered by scanning the board during recalculation, so
// they need no registration bookkeeping.
type Registry struct {
	g         *Game
	listeners []listener
}

func NewRegistry(g *Game) *Registry {
	return &Registry{g: g}
}

// RegisterCard registers the instance's triggered abilities. Registration
// order is board arrival order, which is also dispatch order.
func (r *Registry) RegisterCard(id InstanceID) {
	ci := r.g.Card(id)
	if ci == nil {
		return
	}
	for i := range ci.Def.Abilities {
		a := &ci.Def.Abilities[i]
		if a.Kind == ability.KindTriggered && !a.Unparsed {
			r.listeners = append(r.listeners, listener{cardID: id, abilityIdx: i})
		}
	}
}

// UnregisterCard removes all listeners for the instance.
func (r *Registry) UnregisterCard(id InstanceID) {
	kept := r.listeners[:0]
	for _, l := range r.listeners {
		if l.cardID != id {
			kept = append(kept, l)
		}
	}
	r.listeners = kept
}

// Listeners returns the number of registered listeners. Test hook.
func (r *Registry) Listeners() int {
	return len(r.listeners)
}

// firing is a matched listener captured at collect time, so the set of
// abilities that fire is fixed before any of them resolves.
type firing struct {
	cardID     InstanceID
	controller int
	ab         *ability.Ability
	event      TriggerEvent
}

// Collect returns the listeners that match the event, in registration
// order, without executing them. Callers that change state between the
// event and its triggers (banishing most of all) collect first, mutate,
// then run.
func (r *Registry) Collect(ev TriggerEvent) []firing {
	var out []firing
	for _, l := range r.listeners {
		ci := r.g.Card(l.cardID)
		if ci == nil || ci.Zone != ZonePlay {
			continue
		}
		a := &ci.Def.Abilities[l.abilityIdx]
		if !r.matches(a.Trigger, ci, ev) {
			continue
		}
		out = append(out, firing{cardID: l.cardID, controller: ci.Owner, ab: a, event: ev})
	}
	return out
}

// matches evaluates a trigger spec against an event, relative to the
// listening card.
func (r *Registry) matches(t *ability.TriggerSpec, owner *CardInstance, ev TriggerEvent) bool {
	if t == nil || t.Kind != ev.Kind {
		return false
	}
	switch ev.Kind {
	case ability.TriggerTurnStart, ability.TriggerTurnEnd:
		return !t.SelfTurnOnly || ev.Player == owner.Owner
	case ability.TriggerCardDrawn:
		return ev.Player == owner.Owner
	default:
		subject := r.g.Card(ev.SubjectID)
		return r.g.matchesFilter(t.Filter, owner.ID, owner.Owner, subject)
	}
}

// Run executes collected firings in order. Each firing is isolated: a panic
// or error in one ability is logged and the rest still run. Nothing escapes
// to the turn loop.
func (r *Registry) Run(ctx context.Context, firings []firing) {
	for _, f := range firings {
		r.runOne(ctx, f)
	}
}

func (r *Registry) runOne(ctx context.Context, f firing) {
	defer func() {
		if p := recover(); p != nil {
			ci := r.g.Card(f.cardID)
			name := "?"
			if ci != nil {
				name = ci.Def.Name
			}
			r.g.Logger.Log(log.NewAbilityErrorEvent(r.g.Turn, f.controller, name, abilityName(f.ab),
				fmt.Errorf("panic: %v", p)))
		}
	}()
	ci := r.g.Card(f.cardID)
	if ci == nil {
		return
	}
	r.g.Logger.Log(log.NewAbilityTriggeredEvent(r.g.Turn, f.controller, ci.Def.Name, abilityName(f.ab)))
	if err := r.g.resolveAbility(ctx, f.cardID, f.controller, f.ab, f.event.SubjectID); err != nil {
		r.g.Logger.Log(log.NewAbilityErrorEvent(r.g.Turn, f.controller, ci.Def.Name, abilityName(f.ab), err))
	}
}

// EmitEvent collects and runs in one step, for events where no state change
// separates cause and resolution.
func (r *Registry) EmitEvent(ctx context.Context, ev TriggerEvent) {
	r.Run(ctx, r.Collect(ev))
}

func abilityName(a *ability.Ability) string {
	if a.Name != "" {
		return a.Name
	}
	return a.RawText
}

// Recalculate rebuilds every in-play instance's current stats and granted
// keywords from scratch: reset to base, apply timed effects, apply static
// abilities. It never reads a current stat as input, so running it any
// number of times on the same state yields the same result.
func (r *Registry) Recalculate() {
	for p := 0; p < 2; p++ {
		for _, ci := range r.g.InPlay(p) {
			ci.resetCurrent()
		}
	}
	r.g.scheduler.applyTimed()
	r.applyStatics()
}

// applyStatics applies every in-play static ability whose condition holds.
// Conditions read board composition and damage, never current stats, so
// order between statics cannot matter.
func (r *Registry) applyStatics() {
	for _, src := range r.g.AllInPlay() {
		for i := range src.Def.Abilities {
			a := &src.Def.Abilities[i]
			if a.Kind != ability.KindStatic || a.Unparsed {
				continue
			}
			if !r.g.evalCondition(a.Condition, src.ID, src.Owner) {
				continue
			}
			for _, eff := range a.Effects {
				r.applyStaticEffect(src, eff)
			}
		}
	}
}

func (r *Registry) applyStaticEffect(src *CardInstance, eff ability.Effect) {
	switch eff.Kind {
	case ability.EffectModifyStat, ability.EffectGrantKeyword:
	default:
		// Restrictions and cost reductions are evaluated on demand by the
		// legality and cost queries, not written into instances.
		return
	}
	amount := eff.Amount
	if eff.Per != nil {
		amount = eff.Amount * r.g.countMatching(*eff.Per, src.ID, src.Owner)
	}
	for _, target := range r.staticTargets(src, eff.Target) {
		switch eff.Kind {
		case ability.EffectModifyStat:
			target.addStat(eff.Stat, amount)
		case ability.EffectGrantKeyword:
			target.grantKeyword(eff.Keyword, eff.Value)
		}
	}
}

// staticTargets resolves a static effect's target set. Statics never
// prompt; their targets are always self or a filtered board sweep.
func (r *Registry) staticTargets(src *CardInstance, t ability.TargetSpec) []*CardInstance {
	switch t.Kind {
	case ability.TargetSelf:
		return []*CardInstance{src}
	case ability.TargetAllCharacters:
		var out []*CardInstance
		for _, ci := range r.g.AllInPlay() {
			if ci.Def.Type != ability.CardTypeCharacter {
				continue
			}
			if r.g.matchesFilter(t.Filter, src.ID, src.Owner, ci) {
				out = append(out, ci)
			}
		}
		return out
	default:
		return nil
	}
}
