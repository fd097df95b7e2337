package game

import (
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// activeKind tags the payload of a scheduled effect.
type activeKind int

const (
	activeStatMod activeKind = iota
	activeKeyword
	activeRestrict
	activeCostReduction
)

// ActiveEffect is a timed modification created by a resolved effect. It
// outlives its source: banishing the card that created it does not end it
// early. Expiry is anchored to the creating player, not to turn parity, so
// "until the start of your next turn" survives the opponent's whole turn.
type ActiveEffect struct {
	ID           int
	SourceName   string
	SourceCardID InstanceID
	AnchorPlayer int
	CreatedTurn  int
	Duration     ability.Duration

	kind     activeKind
	TargetID InstanceID
	Stat     ability.Stat
	Amount   int
	Keyword  ability.Keyword
	Value    int
	Restrict ability.RestrictWhat
	// Filter scopes a cost reduction to eligible cards. Consumable
	// reductions ("the next character you play") are removed on use.
	Filter     ability.Filter
	Consumable bool
}

// Desc renders the effect for expiry logs.
func (e *ActiveEffect) Desc() string {
	switch e.kind {
	case activeStatMod:
		sign := "+"
		if e.Amount < 0 {
			sign = ""
		}
		return fmt.Sprintf("%s%d %s from %s", sign, e.Amount, e.Stat, e.SourceName)
	case activeKeyword:
		return fmt.Sprintf("%s from %s", e.Keyword, e.SourceName)
	case activeRestrict:
		return fmt.Sprintf("can't play %s (from %s)", e.Restrict, e.SourceName)
	default:
		return fmt.Sprintf("cost reduction from %s", e.SourceName)
	}
}

// EffectScheduler owns all timed effects in a game and expires them at turn
// boundaries. Cleanup runs at the start of a turn before readying and
// drawing, so an "until the start of your next turn" buff is already gone
// when that turn's first action happens.
type EffectScheduler struct {
	g       *Game
	effects []*ActiveEffect
	nextID  int
}

func NewEffectScheduler(g *Game) *EffectScheduler {
	return &EffectScheduler{g: g}
}

// Active returns the live timed effects. Test and view hook.
func (s *EffectScheduler) Active() []*ActiveEffect {
	return s.effects
}

func (s *EffectScheduler) add(e *ActiveEffect) *ActiveEffect {
	s.nextID++
	e.ID = s.nextID
	e.CreatedTurn = s.g.Turn
	s.effects = append(s.effects, e)
	return e
}

// AddStatMod schedules a timed stat change on a specific instance.
func (s *EffectScheduler) AddStatMod(source *CardInstance, anchor int, target InstanceID, stat ability.Stat, amount int, d ability.Duration) {
	s.add(&ActiveEffect{
		SourceName: source.Def.Name, SourceCardID: source.ID,
		AnchorPlayer: anchor, Duration: d,
		kind: activeStatMod, TargetID: target, Stat: stat, Amount: amount,
	})
}

// AddKeyword schedules a timed keyword grant on a specific instance.
func (s *EffectScheduler) AddKeyword(source *CardInstance, anchor int, target InstanceID, kw ability.Keyword, value int, d ability.Duration) {
	s.add(&ActiveEffect{
		SourceName: source.Def.Name, SourceCardID: source.ID,
		AnchorPlayer: anchor, Duration: d,
		kind: activeKeyword, TargetID: target, Keyword: kw, Value: value,
	})
}

// AddRestriction schedules a play restriction on the anchor's opponents.
func (s *EffectScheduler) AddRestriction(source *CardInstance, anchor int, what ability.RestrictWhat, d ability.Duration) {
	s.add(&ActiveEffect{
		SourceName: source.Def.Name, SourceCardID: source.ID,
		AnchorPlayer: anchor, Duration: d,
		kind: activeRestrict, Restrict: what,
	})
}

// AddCostReduction schedules an ink discount for the anchor's future plays.
func (s *EffectScheduler) AddCostReduction(source *CardInstance, anchor int, f ability.Filter, amount int, d ability.Duration, consumable bool) {
	s.add(&ActiveEffect{
		SourceName: source.Def.Name, SourceCardID: source.ID,
		AnchorPlayer: anchor, Duration: d,
		kind: activeCostReduction, Filter: f, Amount: amount, Consumable: consumable,
	})
}

// applyTimed writes stat and keyword payloads onto their targets during
// recalculation. Amounts were fixed at creation, so application order
// cannot change the outcome.
func (s *EffectScheduler) applyTimed() {
	for _, e := range s.effects {
		ci := s.g.Card(e.TargetID)
		if ci == nil || ci.Zone != ZonePlay {
			continue
		}
		switch e.kind {
		case activeStatMod:
			ci.addStat(e.Stat, e.Amount)
		case activeKeyword:
			ci.grantKeyword(e.Keyword, e.Value)
		}
	}
}

// DropEffectsTargeting removes effects aimed at an instance that left play.
// A character returning to hand comes back clean.
func (s *EffectScheduler) DropEffectsTargeting(id InstanceID) {
	kept := s.effects[:0]
	for _, e := range s.effects {
		if (e.kind == activeStatMod || e.kind == activeKeyword) && e.TargetID == id {
			continue
		}
		kept = append(kept, e)
	}
	s.effects = kept
}

// ExpireEndOfTurn removes "this turn" effects. Runs at the end of every
// turn; such effects can only have been created during the ending turn.
func (s *EffectScheduler) ExpireEndOfTurn() {
	s.expire(func(e *ActiveEffect) bool {
		return e.Duration == ability.DurationEndOfTurn
	})
}

// ExpireAtTurnStart removes effects whose anchor player is starting a turn.
// An effect created during the opponent's turn still waits for its own
// player's turn to come around.
func (s *EffectScheduler) ExpireAtTurnStart(player int) {
	s.expire(func(e *ActiveEffect) bool {
		return e.Duration == ability.DurationUntilSourceNextTurnStart &&
			e.AnchorPlayer == player && e.CreatedTurn < s.g.Turn
	})
}

func (s *EffectScheduler) expire(pred func(*ActiveEffect) bool) {
	kept := s.effects[:0]
	expired := false
	for _, e := range s.effects {
		if pred(e) {
			s.g.Logger.Log(log.NewEffectExpiredEvent(s.g.Turn, e.AnchorPlayer, e.Desc()))
			expired = true
			continue
		}
		kept = append(kept, e)
	}
	s.effects = kept
	if expired {
		s.g.registry.Recalculate()
	}
}

// PlayRestricted reports whether the player is currently forbidden from
// playing the given card type, and by what.
func (s *EffectScheduler) PlayRestricted(player int, t ability.CardType) (bool, string) {
	for _, e := range s.effects {
		if e.kind != activeRestrict || e.AnchorPlayer == player {
			continue
		}
		if restrictCovers(e.Restrict, t) {
			return true, e.SourceName
		}
	}
	return false, ""
}

func restrictCovers(r ability.RestrictWhat, t ability.CardType) bool {
	switch r {
	case ability.RestrictActions:
		return t == ability.CardTypeAction
	case ability.RestrictCharacters:
		return t == ability.CardTypeCharacter
	}
	return false
}

// CostReduction returns the total scheduled discount for the player playing
// the definition. Static discounts from in-play cards are added by the
// cost query in the action layer.
func (s *EffectScheduler) CostReduction(player int, instance *CardInstance) int {
	total := 0
	for _, e := range s.effects {
		if e.kind != activeCostReduction || e.AnchorPlayer != player {
			continue
		}
		if s.g.matchesFilter(e.Filter, e.SourceCardID, player, instance) {
			total += e.Amount
		}
	}
	return total
}

// ConsumeReductions removes consumable discounts that just applied to a
// play.
func (s *EffectScheduler) ConsumeReductions(player int, instance *CardInstance) {
	kept := s.effects[:0]
	for _, e := range s.effects {
		if e.kind == activeCostReduction && e.AnchorPlayer == player && e.Consumable &&
			s.g.matchesFilter(e.Filter, e.SourceCardID, player, instance) {
			continue
		}
		kept = append(kept, e)
	}
	s.effects = kept
}
