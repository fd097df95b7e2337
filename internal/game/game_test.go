package game

import (
	"context"
	"testing"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/log"
)

func TestMoveCardConservation(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := g.AddToDeck(0, vanilla("Wanderer", 2, 2, 2, 1))

	for _, z := range []Zone{ZoneHand, ZonePlay, ZoneDiscard, ZoneHand, ZoneInkwell} {
		if err := g.MoveCard(ci.ID, z); err != nil {
			t.Fatalf("move to %s: %v", z, err)
		}
		if ci.Zone != z {
			t.Fatalf("zone = %s, want %s", ci.Zone, z)
		}
		assertZoneConservation(t, g)
	}
}

func TestMoveCardSameZoneIsNoop(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := g.AddToDeck(0, vanilla("Wanderer", 2, 2, 2, 1))
	if err := g.MoveCard(ci.ID, ZoneDeck); err != nil {
		t.Fatalf("same-zone move: %v", err)
	}
	assertZoneConservation(t, g)
}

func TestMoveCardUnknownInstance(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	if err := g.MoveCard(999, ZoneHand); err == nil {
		t.Fatal("want error for unknown instance")
	}
}

func TestBaseStatsImmutableUnderBuffs(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	buffer := putInPlay(t, g, 0, makeChar("Captain", 3, 2, 4, 1, "Your other characters get +1 strength."))
	ci := putInPlay(t, g, 0, vanilla("Recruit", 1, 1, 1, 1))

	g.scheduler.AddStatMod(buffer, 0, ci.ID, ability.StatStrength, 3, ability.DurationEndOfTurn)
	g.registry.Recalculate()

	if ci.Strength() != 5 {
		t.Errorf("strength = %d, want 5", ci.Strength())
	}
	if ci.BaseStrength != 1 || ci.BaseWillpower != 1 {
		t.Errorf("base stats changed: %d/%d", ci.BaseStrength, ci.BaseWillpower)
	}
}

func TestStrengthClampsAtZeroOnRead(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	src := putInPlay(t, g, 0, vanilla("Source", 1, 1, 1, 1))
	ci := putInPlay(t, g, 0, vanilla("Weakling", 1, 1, 3, 1))

	g.scheduler.AddStatMod(src, 0, ci.ID, ability.StatStrength, -3, ability.DurationEndOfTurn)
	g.registry.Recalculate()
	if ci.Strength() != 0 {
		t.Fatalf("strength = %d, want clamp to 0", ci.Strength())
	}

	// A later +1 lands on the true negative value, not on the clamp.
	g.scheduler.AddStatMod(src, 0, ci.ID, ability.StatStrength, 1, ability.DurationEndOfTurn)
	g.registry.Recalculate()
	if ci.Strength() != 0 {
		t.Errorf("strength = %d, want 0 (-3+1 is still negative)", ci.Strength())
	}
}

func TestInkCardOncePerTurn(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	a := putInHand(t, g, 0, vanilla("First", 1, 1, 1, 1))
	b := putInHand(t, g, 0, vanilla("Second", 1, 1, 1, 1))

	if err := g.InkCard(0, a.ID); err != nil {
		t.Fatalf("first ink: %v", err)
	}
	if err := g.InkCard(0, b.ID); err == nil {
		t.Fatal("second ink in a turn should fail")
	}
	if g.Players[0].ReadyInk(g) != 1 {
		t.Errorf("ready ink = %d, want 1", g.Players[0].ReadyInk(g))
	}
}

func TestPlayCharacterEntersPlayAndRegisters(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	giveInk(t, g, 0, 3)
	ci := putInHand(t, g, 0, makeChar("Scout", 2, 2, 2, 1,
		"Whenever this character quests, gain 1 lore."))

	if err := g.playFromHand(context.Background(), 0, ci.ID, false, nil); err != nil {
		t.Fatalf("play: %v", err)
	}
	if ci.Zone != ZonePlay {
		t.Errorf("zone = %s, want play", ci.Zone)
	}
	if ci.TurnPlayed != g.Turn {
		t.Errorf("turn played = %d, want %d", ci.TurnPlayed, g.Turn)
	}
	if g.registry.Listeners() != 1 {
		t.Errorf("listeners = %d, want 1", g.registry.Listeners())
	}
	if g.Players[0].ReadyInk(g) != 1 {
		t.Errorf("ready ink = %d, want 1 after paying 2", g.Players[0].ReadyInk(g))
	}
	assertZoneConservation(t, g)
}

func TestPlayActionResolvesAndDiscards(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	giveInk(t, g, 0, 2)
	stackDeck(t, g, 0, 3)
	card := putInHand(t, g, 0, makeAction("Inspiration", 1, "Draw two cards."))

	if err := g.playFromHand(context.Background(), 0, card.ID, false, nil); err != nil {
		t.Fatalf("play: %v", err)
	}
	if card.Zone != ZoneDiscard {
		t.Errorf("zone = %s, want discard", card.Zone)
	}
	if len(g.Players[0].Hand) != 2 {
		t.Errorf("hand = %d, want 2", len(g.Players[0].Hand))
	}
	assertZoneConservation(t, g)
}

func TestUnaffordablePlayLeavesInkUntouched(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	giveInk(t, g, 0, 2)
	card := putInHand(t, g, 0, vanilla("Titan", 5, 5, 5, 2))

	if err := g.Apply(context.Background(), 0, Action{Kind: ActionPlay, CardID: card.ID}); err == nil {
		t.Fatal("unaffordable play should fail")
	}
	if got := g.Players[0].ReadyInk(g); got != 2 {
		t.Errorf("ready ink = %d, a refused play must not exert ink", got)
	}
	if card.Zone != ZoneHand {
		t.Errorf("zone = %s, want hand", card.Zone)
	}
}

func TestQuestGainsLoreAndExerts(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := putInPlay(t, g, 0, vanilla("Quester", 2, 1, 2, 3))

	if err := g.Quest(context.Background(), 0, ci.ID); err != nil {
		t.Fatalf("quest: %v", err)
	}
	if g.Players[0].Lore != 3 {
		t.Errorf("lore = %d, want 3", g.Players[0].Lore)
	}
	if !ci.Exerted {
		t.Error("quester should be exerted")
	}
	if err := g.Quest(context.Background(), 0, ci.ID); err == nil {
		t.Error("exerted character should not quest again")
	}
}

func TestRecklessCannotQuest(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := putInPlay(t, g, 0, makeChar("Brawler", 2, 3, 3, 1, "Reckless"))
	if g.canQuest(ci) {
		t.Error("Reckless characters must not quest")
	}
}

func TestChallengeTradesDamageSimultaneously(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	atk := putInPlay(t, g, 0, vanilla("Attacker", 3, 3, 4, 1))
	def := putInPlay(t, g, 1, vanilla("Defender", 3, 2, 4, 1))
	def.Exerted = true

	if err := g.Challenge(context.Background(), 0, atk.ID, def.ID); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if def.Damage != 3 {
		t.Errorf("defender damage = %d, want 3", def.Damage)
	}
	if atk.Damage != 2 {
		t.Errorf("attacker damage = %d, want 2", atk.Damage)
	}
	if !atk.Exerted {
		t.Error("attacker should be exerted")
	}
}

func TestChallengeRequiresExertedDefender(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	atk := putInPlay(t, g, 0, vanilla("Attacker", 3, 3, 3, 1))
	def := putInPlay(t, g, 1, vanilla("Defender", 3, 2, 2, 1))

	if err := g.Challenge(context.Background(), 0, atk.ID, def.ID); err == nil {
		t.Fatal("ready defender should not be challengeable")
	}
}

func TestEvasiveOnlyChallengedByEvasive(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ground := putInPlay(t, g, 0, vanilla("Ground", 2, 2, 2, 1))
	flyer := putInPlay(t, g, 0, makeChar("Flyer", 3, 2, 2, 1, "Evasive"))
	def := putInPlay(t, g, 1, makeChar("Sprite", 2, 1, 3, 1, "Evasive"))
	def.Exerted = true

	if targets := g.challengeTargets(ground); len(targets) != 0 {
		t.Errorf("ground attacker sees %d targets, want 0", len(targets))
	}
	if targets := g.challengeTargets(flyer); len(targets) != 1 {
		t.Errorf("evasive attacker sees %d targets, want 1", len(targets))
	}
}

func TestBodyguardMustBeChallengedFirst(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	atk := putInPlay(t, g, 0, vanilla("Attacker", 3, 3, 3, 1))
	guard := putInPlay(t, g, 1, makeChar("Guard", 3, 2, 4, 1, "Bodyguard"))
	squishy := putInPlay(t, g, 1, vanilla("Squishy", 1, 1, 1, 2))
	guard.Exerted = true
	squishy.Exerted = true

	targets := g.challengeTargets(atk)
	if len(targets) != 1 || targets[0].ID != guard.ID {
		t.Errorf("targets = %v, want only the bodyguard", targets)
	}
}

func TestChallengerBonusAppliesWhenAttacking(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	atk := putInPlay(t, g, 0, makeChar("Duelist", 3, 1, 3, 1, "Challenger +2"))
	def := putInPlay(t, g, 1, vanilla("Wall", 3, 0, 4, 1))
	def.Exerted = true

	if err := g.Challenge(context.Background(), 0, atk.ID, def.ID); err != nil {
		t.Fatalf("challenge: %v", err)
	}
	if def.Damage != 3 {
		t.Errorf("defender damage = %d, want 1+2", def.Damage)
	}
}

func TestResistReducesDamageAtApplication(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := putInPlay(t, g, 0, makeChar("Stalwart", 4, 2, 5, 1, "Resist +2"))

	g.DealDamage(context.Background(), ci, 3, "test")
	if ci.Damage != 1 {
		t.Errorf("damage = %d, want 1 after Resist +2", ci.Damage)
	}
	g.DealDamage(context.Background(), ci, 2, "test")
	if ci.Damage != 1 {
		t.Errorf("damage = %d, fully resisted hit should mark nothing", ci.Damage)
	}
}

func TestBanishOnLethalDamage(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	ci := putInPlay(t, g, 1, vanilla("Fragile", 1, 1, 2, 1))

	g.DealDamage(context.Background(), ci, 2, "test")
	if ci.Zone != ZoneDiscard {
		t.Errorf("zone = %s, want discard", ci.Zone)
	}
	if ci.Damage != 0 || ci.Exerted {
		t.Error("play state should reset on leaving play")
	}
	assertZoneConservation(t, g)
}

func TestLoreWinEndsGame(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	g.GainLore(0, LoreToWin)
	over, winner := g.Over()
	if !over || winner != 0 {
		t.Fatalf("over=%v winner=%d, want win for P1", over, winner)
	}
}

func TestDeckOutLosesGame(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	g.DrawCards(context.Background(), 0, 1)
	over, winner := g.Over()
	if !over || winner != 1 {
		t.Fatalf("over=%v winner=%d, want P2 to win on deck-out", over, winner)
	}
}

func TestLoseLoreStopsAtZero(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	g.GainLore(0, 2)
	g.LoseLore(0, 5)
	if g.Players[0].Lore != 0 {
		t.Errorf("lore = %d, want 0", g.Players[0].Lore)
	}
}

func TestBoostAddsWillpowerAndFallsOffOnBanish(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	stackDeck(t, g, 0, 4)
	ci := putInPlay(t, g, 0, vanilla("Stacker", 3, 2, 2, 1))

	g.Boost(ci, 2)
	if ci.Willpower() != 4 {
		t.Errorf("willpower = %d, want 2+2", ci.Willpower())
	}
	if len(g.Players[0].Deck) != 2 {
		t.Errorf("deck = %d, want 2", len(g.Players[0].Deck))
	}

	g.Banish(context.Background(), ci, "test")
	if len(g.Players[0].Discard) != 3 {
		t.Errorf("discard = %d, want character plus 2 stacked cards", len(g.Players[0].Discard))
	}
	assertZoneConservation(t, g)
}

func TestEventLogRecordsVisibleActions(t *testing.T) {
	g, _, _, logger := newTestGame(t)
	ci := putInPlay(t, g, 0, vanilla("Quester", 2, 1, 2, 2))
	if err := g.Quest(context.Background(), 0, ci.ID); err != nil {
		t.Fatalf("quest: %v", err)
	}
	if n := len(logger.EventsOfKind(log.EventQuest)); n != 1 {
		t.Errorf("quest events = %d, want 1", n)
	}
	if n := len(logger.EventsOfKind(log.EventLoreGained)); n != 1 {
		t.Errorf("lore events = %d, want 1", n)
	}
}
