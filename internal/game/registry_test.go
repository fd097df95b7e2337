package game

import (
	"context"
	"testing"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

func TestRegisterUnregisterListeners(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := putInPlay(t, g, 0, makeChar("Listener", 2, 2, 2, 1,
		"Whenever this character quests, gain 1 lore.\nWhen this character is banished, draw a card."))

	if g.registry.Listeners() != 2 {
		t.Fatalf("listeners = %d, want 2", g.registry.Listeners())
	}
	g.MoveCard(ci.ID, ZoneHand)
	if g.registry.Listeners() != 0 {
		t.Errorf("listeners after leaving play = %d, want 0", g.registry.Listeners())
	}
}

func TestRecalculateIdempotent(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	putInPlay(t, g, 0, makeChar("Captain", 3, 2, 4, 1, "Your other characters get +1 strength."))
	ci := putInPlay(t, g, 0, vanilla("Recruit", 1, 1, 1, 1))
	src := putInPlay(t, g, 0, vanilla("Source", 1, 1, 1, 1))
	g.scheduler.AddStatMod(src, 0, ci.ID, ability.StatStrength, 2, ability.DurationEndOfTurn)

	g.registry.Recalculate()
	want := ci.Strength()
	for i := 0; i < 5; i++ {
		g.registry.Recalculate()
		if got := ci.Strength(); got != want {
			t.Fatalf("recalc %d: strength = %d, want %d", i, got, want)
		}
	}
	if want != 4 {
		t.Errorf("strength = %d, want 1+1+2", want)
	}
}

func TestVillainLordCountsOtherCopies(t *testing.T) {
	def := makeChar("Scheming Lord", 4, 2, 3, 1,
		"This character gets +1 lore for each other Villain character you control.", "Villain")

	g, _, _, _ := newTestGame(t)
	a := putInPlay(t, g, 0, def)
	b := putInPlay(t, g, 0, def)

	// "Other" excludes each instance itself, so symmetric copies still
	// count each other.
	if a.Lore() != 2 || b.Lore() != 2 {
		t.Errorf("lore = %d/%d, want 2/2", a.Lore(), b.Lore())
	}

	c := putInPlay(t, g, 0, makeChar("Minion", 1, 1, 1, 1, "", "Villain"))
	if a.Lore() != 3 {
		t.Errorf("lore = %d, want 3 with a third villain", a.Lore())
	}

	g.Banish(context.Background(), c, "test")
	if a.Lore() != 2 {
		t.Errorf("lore = %d, want 2 after the third villain left", a.Lore())
	}
}

func TestStaticConditionTogglesWithState(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := putInPlay(t, g, 0, makeChar("Berserker", 3, 2, 4, 1,
		"While this character is damaged, this character gets +2 strength."))

	if ci.Strength() != 2 {
		t.Fatalf("strength = %d, want base 2", ci.Strength())
	}
	g.DealDamage(context.Background(), ci, 1, "test")
	g.registry.Recalculate()
	if ci.Strength() != 4 {
		t.Errorf("strength = %d, want 4 while damaged", ci.Strength())
	}
	g.HealDamage(ci, 1)
	g.registry.Recalculate()
	if ci.Strength() != 2 {
		t.Errorf("strength = %d, want 2 when healed", ci.Strength())
	}
}

func TestTeamBuffExcludesSourceButNotCopies(t *testing.T) {
	def := makeChar("Banner Bearer", 2, 1, 2, 1, "Your other characters get +1 strength.")
	g, _, _, _ := newTestGame(t)
	a := putInPlay(t, g, 0, def)
	b := putInPlay(t, g, 0, def)
	enemy := putInPlay(t, g, 1, vanilla("Enemy", 2, 2, 2, 1))

	// Each copy buffs the other but not itself.
	if a.Strength() != 2 || b.Strength() != 2 {
		t.Errorf("strength = %d/%d, want 2/2", a.Strength(), b.Strength())
	}
	if enemy.Strength() != 2 {
		t.Errorf("opposing strength = %d, want unbuffed 2", enemy.Strength())
	}
}

func TestTriggerPanicIsolatedPerAbility(t *testing.T) {
	g, _, _, logger := newTestGame(t)
	// Registered listener whose source definition is corrupted to force a
	// panic inside resolution.
	bad := putInPlay(t, g, 0, makeChar("Bad", 2, 2, 2, 1,
		"Whenever this character quests, gain 1 lore."))
	bad.Def.Abilities[0].Effects = nil
	bad.Def.Abilities[0].Kind = ability.KindTriggered
	bad.Def.Abilities[0].Effects = []ability.Effect{{Kind: ability.EffectKind(99)}}

	good := putInPlay(t, g, 0, makeChar("Good", 2, 2, 2, 1,
		"Whenever one of your characters quests, gain 1 lore."))
	_ = good

	ev := TriggerEvent{Kind: ability.TriggerQuests, SubjectID: bad.ID, Player: 0}
	g.registry.EmitEvent(context.Background(), ev)

	if len(logger.EventsOfKind(log.EventAbilityError)) == 0 {
		t.Error("want an ability error event for the broken ability")
	}
	if g.Players[0].Lore != 1 {
		t.Errorf("lore = %d, want 1: the healthy listener still runs", g.Players[0].Lore)
	}
}

func TestUnparsedAbilityNeverRegisters(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	putInPlay(t, g, 0, makeChar("Mystery", 2, 2, 2, 1,
		"Reverse the polarity of the neutron flow."))
	if g.registry.Listeners() != 0 {
		t.Errorf("listeners = %d, unparsed text must stay inert", g.registry.Listeners())
	}
}

func TestTriggerFilterScopesBySide(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	putInPlay(t, g, 0, makeChar("Watcher", 2, 2, 2, 1,
		"Whenever an opposing character is banished, gain 1 lore."))
	own := putInPlay(t, g, 0, vanilla("Own", 1, 1, 1, 1))
	theirs := putInPlay(t, g, 1, vanilla("Theirs", 1, 1, 1, 1))

	g.Banish(context.Background(), own, "test")
	if g.Players[0].Lore != 0 {
		t.Errorf("lore = %d, own banish must not trigger", g.Players[0].Lore)
	}
	g.Banish(context.Background(), theirs, "test")
	if g.Players[0].Lore != 1 {
		t.Errorf("lore = %d, want 1 after opposing banish", g.Players[0].Lore)
	}
}
