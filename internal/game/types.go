// Package game implements the match engine: zones, turn structure, the
// ability registry and the effect executor. All cross-references between
// game entities go through instance IDs resolved against live state, never
// through stored pointers, so a banished character can never be mutated
// through a stale reference.
package game

import (
	"fmt"

	"github.com/calebmorrow/loreduel/internal/ability"
)

// Zone names a card location. A card instance is in exactly one zone.
type Zone int

const (
	ZoneDeck Zone = iota
	ZoneHand
	ZonePlay
	ZoneInkwell
	ZoneDiscard
	ZoneExile
)

func (z Zone) String() string {
	switch z {
	case ZoneDeck:
		return "deck"
	case ZoneHand:
		return "hand"
	case ZonePlay:
		return "play"
	case ZoneInkwell:
		return "inkwell"
	case ZoneDiscard:
		return "discard"
	case ZoneExile:
		return "exile"
	default:
		return "unknown"
	}
}

// Card is an immutable card definition. Abilities are parsed once when the
// catalog is built; instances share the definition.
type Card struct {
	Name      string
	Type      ability.CardType
	Subtypes  []string
	Cost      int
	Inkable   bool
	Strength  int
	Willpower int
	Lore      int
	Text      string
	Abilities []ability.Ability
}

// HasSubtype reports whether the definition carries the given subtype.
func (c *Card) HasSubtype(s string) bool {
	for _, st := range c.Subtypes {
		if st == s {
			return true
		}
	}
	return false
}

// Meta returns the parser-facing view of the definition.
func (c *Card) Meta() ability.CardMeta {
	return ability.CardMeta{Name: c.Name, Type: c.Type, Subtypes: c.Subtypes}
}

// InstanceID identifies one card instance within a single game. IDs are
// allocated sequentially per game and never reused.
type InstanceID int

// grantedKeyword is a keyword attached by an effect rather than printed on
// the card. Rebuilt from active effects during recalculation.
type grantedKeyword struct {
	Keyword ability.Keyword
	Value   int
}

// CardInstance is one physical copy of a card in a game. Base stats are
// written once at creation and never modified afterward; current stats are
// derived values owned entirely by Recalculate.
type CardInstance struct {
	ID    InstanceID
	Def   *Card
	Owner int
	Zone  Zone

	// Base stats, copied from the definition at creation. Write-once.
	BaseStrength  int
	BaseWillpower int
	BaseLore      int
	BaseCost      int

	// Current stats, recomputed from base plus active modifications.
	// Never read as input to recalculation.
	curStrength  int
	curWillpower int
	curLore      int

	Damage  int
	Exerted bool
	// TurnPlayed gates questing and challenging: a character is drying the
	// turn it enters play unless it has Rush (challenging only).
	TurnPlayed int

	// Under holds face-down cards stacked beneath this character. Each
	// grants +1 willpower; they go to the discard when the character
	// leaves play.
	Under []InstanceID

	granted []grantedKeyword
}

// NewCardInstance creates an instance of a definition. Stats snapshot the
// definition at creation time.
func NewCardInstance(id InstanceID, def *Card, owner int) *CardInstance {
	ci := &CardInstance{
		ID:            id,
		Def:           def,
		Owner:         owner,
		Zone:          ZoneDeck,
		BaseStrength:  def.Strength,
		BaseWillpower: def.Willpower,
		BaseLore:      def.Lore,
		BaseCost:      def.Cost,
	}
	ci.resetCurrent()
	return ci
}

// resetCurrent restores current stats to base values. The first step of
// every recalculation.
func (ci *CardInstance) resetCurrent() {
	ci.curStrength = ci.BaseStrength
	ci.curWillpower = ci.BaseWillpower
	ci.curLore = ci.BaseLore
	ci.granted = ci.granted[:0]
}

// addStat applies a stat delta during recalculation.
func (ci *CardInstance) addStat(s ability.Stat, delta int) {
	switch s {
	case ability.StatStrength:
		ci.curStrength += delta
	case ability.StatWillpower:
		ci.curWillpower += delta
	case ability.StatLore:
		ci.curLore += delta
	}
}

// Strength returns the current strength, clamped to zero on read. The
// underlying value stays negative so a later positive modifier restores it
// correctly.
func (ci *CardInstance) Strength() int {
	return max(ci.curStrength, 0)
}

// Willpower returns current willpower including cards stacked beneath.
func (ci *CardInstance) Willpower() int {
	return max(ci.curWillpower+len(ci.Under), 0)
}

// Lore returns the current lore value, clamped to zero.
func (ci *CardInstance) Lore() int {
	return max(ci.curLore, 0)
}

// HasKeyword reports whether the instance has the keyword, printed or
// granted.
func (ci *CardInstance) HasKeyword(k ability.Keyword) bool {
	_, ok := ci.KeywordValue(k)
	return ok
}

// KeywordValue returns the summed value of a keyword across printed and
// granted sources, and whether the instance has it at all.
func (ci *CardInstance) KeywordValue(k ability.Keyword) (int, bool) {
	total, found := 0, false
	for i := range ci.Def.Abilities {
		a := &ci.Def.Abilities[i]
		if a.Kind == ability.KindKeyword && a.Keyword == k {
			total += a.KeywordValue
			found = true
		}
	}
	for _, g := range ci.granted {
		if g.Keyword == k {
			total += g.Value
			found = true
		}
	}
	return total, found
}

// grantKeyword attaches a keyword during recalculation.
func (ci *CardInstance) grantKeyword(k ability.Keyword, value int) {
	ci.granted = append(ci.granted, grantedKeyword{Keyword: k, Value: value})
}

// IsDamaged reports whether the instance has any damage marked on it.
func (ci *CardInstance) IsDamaged() bool {
	return ci.Damage > 0
}

// IsDry reports whether the character can act this turn: it must have been
// in play since the start of the turn. Rush bypasses this for challenging
// only, which callers check separately.
func (ci *CardInstance) IsDry(turn int) bool {
	return ci.TurnPlayed < turn
}

func (ci *CardInstance) String() string {
	return fmt.Sprintf("%s#%d", ci.Def.Name, ci.ID)
}
