package game

import (
	"fmt"
	"math/rand"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

// LoreToWin is the lore total that ends the game.
const LoreToWin = 20

// Player holds one player's zones and lore. Zones store instance IDs; the
// instances themselves live in the game's card table.
type Player struct {
	Name string
	Lore int

	Deck    []InstanceID
	Hand    []InstanceID
	Play    []InstanceID
	Inkwell []InstanceID
	Discard []InstanceID
	Exile   []InstanceID

	// InkedThisTurn enforces the one-card-per-turn inkwell limit.
	InkedThisTurn bool
}

// zone returns the slice backing the given zone.
func (p *Player) zone(z Zone) *[]InstanceID {
	switch z {
	case ZoneDeck:
		return &p.Deck
	case ZoneHand:
		return &p.Hand
	case ZonePlay:
		return &p.Play
	case ZoneInkwell:
		return &p.Inkwell
	case ZoneDiscard:
		return &p.Discard
	default:
		return &p.Exile
	}
}

// ReadyInk counts unexerted inkwell cards.
func (p *Player) ReadyInk(g *Game) int {
	n := 0
	for _, id := range p.Inkwell {
		if ci := g.Card(id); ci != nil && !ci.Exerted {
			n++
		}
	}
	return n
}

// Game is one match between two players. It owns the card table, the
// ability registry, the effect scheduler and the choice pipeline. A Game is
// not safe for concurrent use; callers serialize on the turn loop.
type Game struct {
	Players [2]*Player
	Turn    int
	Active  int
	Logger  log.EventLogger

	cards  map[InstanceID]*CardInstance
	nextID InstanceID

	registry  *Registry
	scheduler *EffectScheduler
	choosers  [2]Chooser
	pending   *ChoiceRequest

	rng    *rand.Rand
	winner int
	over   bool
	reason string
}

// NewGame builds an empty game with the given loggers and choosers. Decks
// are added with AddToDeck before Start.
func NewGame(logger log.EventLogger, p1, p2 Chooser, seed int64) *Game {
	g := &Game{
		Players: [2]*Player{
			{Name: "P1"},
			{Name: "P2"},
		},
		Logger:   logger,
		cards:    make(map[InstanceID]*CardInstance),
		choosers: [2]Chooser{p1, p2},
		rng:      rand.New(rand.NewSource(seed)),
		winner:   -1,
	}
	g.registry = NewRegistry(g)
	g.scheduler = NewEffectScheduler(g)
	return g
}

// AddToDeck creates an instance of the definition in the player's deck.
func (g *Game) AddToDeck(player int, def *Card) *CardInstance {
	g.nextID++
	ci := NewCardInstance(g.nextID, def, player)
	g.cards[ci.ID] = ci
	g.Players[player].Deck = append(g.Players[player].Deck, ci.ID)
	return ci
}

// Card resolves an instance ID against the card table. Returns nil for
// unknown IDs; callers treat nil as "no longer addressable".
func (g *Game) Card(id InstanceID) *CardInstance {
	return g.cards[id]
}

// Registry returns the game's ability registry.
func (g *Game) Registry() *Registry {
	return g.registry
}

// Scheduler returns the game's timed-effect scheduler.
func (g *Game) Scheduler() *EffectScheduler {
	return g.scheduler
}

// Chooser returns the decision interface for a player.
func (g *Game) Chooser(player int) Chooser {
	return g.choosers[player]
}

// Over reports whether the game has ended, with the winner index.
func (g *Game) Over() (bool, int) {
	return g.over, g.winner
}

// Result returns the human-readable reason the game ended, or "" while it
// is still running.
func (g *Game) Result() string {
	return g.reason
}

// MoveCard moves an instance from its current zone to the destination zone
// of its owner. The instance appears in exactly one zone before and after;
// moving to the zone it is already in is a no-op.
func (g *Game) MoveCard(id InstanceID, to Zone) error {
	ci := g.Card(id)
	if ci == nil {
		return fmt.Errorf("move card: unknown instance %d", id)
	}
	if ci.Zone == to {
		return nil
	}
	p := g.Players[ci.Owner]
	from := p.zone(ci.Zone)
	found := false
	for i, zid := range *from {
		if zid == id {
			*from = append((*from)[:i], (*from)[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("move card: %s not in its recorded zone %s", ci, ci.Zone)
	}
	wasInPlay := ci.Zone == ZonePlay
	ci.Zone = to
	*p.zone(to) = append(*p.zone(to), id)

	if wasInPlay {
		g.onLeavePlay(ci)
	}
	return nil
}

// onLeavePlay clears play-only state when a character leaves the board:
// damage, exertion, cards stacked beneath (which go to the discard), and
// its registry listeners. Timed effects it sourced keep running until their
// natural expiry.
func (g *Game) onLeavePlay(ci *CardInstance) {
	ci.Damage = 0
	ci.Exerted = false
	under := ci.Under
	ci.Under = nil
	for _, id := range under {
		g.MoveCard(id, ZoneDiscard)
	}
	g.registry.UnregisterCard(ci.ID)
	g.scheduler.DropEffectsTargeting(ci.ID)
	g.registry.Recalculate()
}

// InPlay returns the instances in play for the given player, in board order.
func (g *Game) InPlay(player int) []*CardInstance {
	var out []*CardInstance
	for _, id := range g.Players[player].Play {
		if ci := g.Card(id); ci != nil {
			out = append(out, ci)
		}
	}
	return out
}

// AllInPlay returns every instance in play, active player's board first.
func (g *Game) AllInPlay() []*CardInstance {
	out := g.InPlay(g.Active)
	return append(out, g.InPlay(1-g.Active)...)
}

// Shuffle randomizes a player's deck.
func (g *Game) Shuffle(player int) {
	deck := g.Players[player].Deck
	g.rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	g.Logger.Log(log.NewShuffleEvent(g.Turn, player))
}

// matchesFilter evaluates a declarative filter for a candidate, relative to
// the ability's source instance and controller.
func (g *Game) matchesFilter(f ability.Filter, sourceID InstanceID, controller int, candidate *CardInstance) bool {
	if candidate == nil {
		return false
	}
	switch f.Subject {
	case ability.SubjectSelf:
		if candidate.ID != sourceID {
			return false
		}
	case ability.SubjectYours:
		if candidate.Owner != controller {
			return false
		}
	case ability.SubjectOpposing:
		if candidate.Owner == controller {
			return false
		}
	}
	if f.CardType != ability.CardTypeAny && candidate.Def.Type != f.CardType {
		return false
	}
	if f.Subtype != "" && !candidate.Def.HasSubtype(f.Subtype) {
		return false
	}
	if f.MaxCost > 0 && candidate.BaseCost > f.MaxCost {
		return false
	}
	if f.DamagedOnly && !candidate.IsDamaged() {
		return false
	}
	if f.ExertedOnly && !candidate.Exerted {
		return false
	}
	if f.ExcludeSelf && candidate.ID == sourceID {
		return false
	}
	return true
}

// countMatching counts in-play instances matching the filter.
func (g *Game) countMatching(f ability.Filter, sourceID InstanceID, controller int) int {
	n := 0
	for _, ci := range g.AllInPlay() {
		if g.matchesFilter(f, sourceID, controller, ci) {
			n++
		}
	}
	return n
}

// evalCondition evaluates an ability condition against live state.
func (g *Game) evalCondition(c *ability.Condition, sourceID InstanceID, controller int) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case ability.CondControlCount:
		return g.countMatching(c.Filter, sourceID, controller) >= c.AtLeast
	case ability.CondSelfDamaged:
		src := g.Card(sourceID)
		return src != nil && src.IsDamaged()
	case ability.CondSelfUndamaged:
		src := g.Card(sourceID)
		return src != nil && !src.IsDamaged()
	case ability.CondHandAtLeast:
		return len(g.Players[controller].Hand) >= c.AtLeast
	case ability.CondOnYourTurn:
		return g.Active == controller
	default:
		return true
	}
}

// declareWinner ends the game. The first declared result sticks.
func (g *Game) declareWinner(winner int, reason string) {
	if g.over {
		return
	}
	g.over = true
	g.winner = winner
	g.reason = reason
	g.Logger.Log(log.NewWinEvent(g.Turn, winner, reason))
}
