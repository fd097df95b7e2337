package ability

import (
	"testing"
)

func charMeta(name string, subtypes ...string) CardMeta {
	return CardMeta{Name: name, Type: CardTypeCharacter, Subtypes: subtypes}
}

func parseOne(t *testing.T, text string, meta CardMeta) Ability {
	t.Helper()
	abilities := Parse(text, meta)
	if len(abilities) != 1 {
		t.Fatalf("want 1 ability, got %d: %+v", len(abilities), abilities)
	}
	return abilities[0]
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		text  string
		kw    Keyword
		value int
	}{
		{"Evasive", KeywordEvasive, 0},
		{"Rush", KeywordRush, 0},
		{"Ward (Opponents can't choose this character except to challenge.)", KeywordWard, 0},
		{"Bodyguard", KeywordBodyguard, 0},
		{"Resist +2", KeywordResist, 2},
		{"Challenger +3", KeywordChallenger, 3},
		{"Singer 5", KeywordSinger, 5},
	}
	for _, tt := range tests {
		a := parseOne(t, tt.text, charMeta("Test"))
		if a.Kind != KindKeyword {
			t.Errorf("%q: kind = %v, want keyword", tt.text, a.Kind)
		}
		if a.Keyword != tt.kw || a.KeywordValue != tt.value {
			t.Errorf("%q: got %v/%d, want %v/%d", tt.text, a.Keyword, a.KeywordValue, tt.kw, tt.value)
		}
	}
}

func TestParseKeywordList(t *testing.T) {
	abilities := Parse("Evasive, Rush", charMeta("Test"))
	if len(abilities) != 2 {
		t.Fatalf("want 2 abilities, got %d", len(abilities))
	}
	if abilities[0].Keyword != KeywordEvasive || abilities[1].Keyword != KeywordRush {
		t.Errorf("got %v, %v", abilities[0].Keyword, abilities[1].Keyword)
	}
}

func TestParseOnPlayTrigger(t *testing.T) {
	a := parseOne(t, "When you play this character, deal 2 damage to chosen character.", charMeta("Test"))
	if a.Kind != KindTriggered {
		t.Fatalf("kind = %v, want triggered", a.Kind)
	}
	if a.Trigger.Kind != TriggerPlay || a.Trigger.Filter.Subject != SubjectSelf {
		t.Errorf("trigger = %+v", a.Trigger)
	}
	if len(a.Effects) != 1 {
		t.Fatalf("want 1 effect, got %d", len(a.Effects))
	}
	eff := a.Effects[0]
	if eff.Kind != EffectDealDamage || eff.Amount != 2 {
		t.Errorf("effect = %+v", eff)
	}
	if eff.Target.Kind != TargetChosenCharacter {
		t.Errorf("target = %v", eff.Target.Kind)
	}
}

func TestParseNamedAbility(t *testing.T) {
	a := parseOne(t, "FEED THE POOR When you play this character, each opponent loses 1 lore.", charMeta("Test"))
	if a.Name != "FEED THE POOR" {
		t.Errorf("name = %q", a.Name)
	}
	if a.Unparsed {
		t.Fatalf("should have parsed: %+v", a)
	}
	if a.Effects[0].Kind != EffectLoseLore {
		t.Errorf("effect = %v", a.Effects[0].Kind)
	}
}

func TestParseOptionalPaidTrigger(t *testing.T) {
	a := parseOne(t, "Whenever this character quests, you may pay 2 Ink to draw a card.", charMeta("Test"))
	if !a.Optional {
		t.Error("want Optional")
	}
	if a.Cost == nil || a.Cost.Ink != 2 {
		t.Errorf("cost = %+v", a.Cost)
	}
	if a.Trigger.Kind != TriggerQuests {
		t.Errorf("trigger = %v", a.Trigger.Kind)
	}
	if a.Effects[0].Kind != EffectDrawCards || a.Effects[0].Amount != 1 {
		t.Errorf("effect = %+v", a.Effects[0])
	}
}

func TestParseBanishTriggerWithChain(t *testing.T) {
	a := parseOne(t, "When this character is banished, draw a card, then discard a card.", charMeta("Test"))
	if a.Trigger.Kind != TriggerBanished {
		t.Fatalf("trigger = %v", a.Trigger.Kind)
	}
	if len(a.Effects) != 2 {
		t.Fatalf("want 2 chained effects, got %d", len(a.Effects))
	}
	if a.Effects[0].Kind != EffectDrawCards || a.Effects[1].Kind != EffectDiscardCards {
		t.Errorf("chain = %v, %v", a.Effects[0].Kind, a.Effects[1].Kind)
	}
}

func TestParseActivatedAbility(t *testing.T) {
	a := parseOne(t, "Exert, 1 Ink — Deal 1 damage to chosen character.", charMeta("Test"))
	if a.Kind != KindActivated {
		t.Fatalf("kind = %v, want activated", a.Kind)
	}
	if !a.Cost.ExertSelf || a.Cost.Ink != 1 {
		t.Errorf("cost = %+v", a.Cost)
	}
	if a.Effects[0].Kind != EffectDealDamage {
		t.Errorf("effect = %v", a.Effects[0].Kind)
	}
}

func TestParseActivatedDiscardCost(t *testing.T) {
	a := parseOne(t, "Exert, Discard a card — Draw a card.", CardMeta{Name: "Test", Type: CardTypeItem})
	if a.Kind != KindActivated {
		t.Fatalf("kind = %v", a.Kind)
	}
	if a.Cost.DiscardCount != 1 || !a.Cost.ExertSelf {
		t.Errorf("cost = %+v", a.Cost)
	}
}

func TestParseStaticWhileCondition(t *testing.T) {
	a := parseOne(t, "While this character is damaged, this character gets +2 strength.", charMeta("Test"))
	if a.Kind != KindStatic {
		t.Fatalf("kind = %v, want static", a.Kind)
	}
	if a.Condition == nil || a.Condition.Kind != CondSelfDamaged {
		t.Errorf("condition = %+v", a.Condition)
	}
	eff := a.Effects[0]
	if eff.Kind != EffectModifyStat || eff.Amount != 2 || eff.Stat != StatStrength {
		t.Errorf("effect = %+v", eff)
	}
	if eff.Target.Kind != TargetSelf {
		t.Errorf("target = %v", eff.Target.Kind)
	}
}

func TestParseStaticPerCount(t *testing.T) {
	a := parseOne(t, "This character gets +1 lore for each other Villain character you control.", charMeta("Test", "Villain"))
	if a.Kind != KindStatic {
		t.Fatalf("kind = %v, want static", a.Kind)
	}
	eff := a.Effects[0]
	if eff.Per == nil {
		t.Fatal("want Per filter")
	}
	if eff.Per.Subtype != "Villain" || !eff.Per.ExcludeSelf {
		t.Errorf("per = %+v", eff.Per)
	}
	if eff.Stat != StatLore || eff.Amount != 1 {
		t.Errorf("effect = %+v", eff)
	}
}

func TestParseStaticTeamBuff(t *testing.T) {
	a := parseOne(t, "Your other characters get +1 strength.", charMeta("Test"))
	if a.Kind != KindStatic {
		t.Fatalf("kind = %v", a.Kind)
	}
	eff := a.Effects[0]
	if eff.Target.Kind != TargetAllCharacters || !eff.Target.Filter.ExcludeSelf {
		t.Errorf("target = %+v", eff.Target)
	}
}

func TestParseStaticKeywordGrant(t *testing.T) {
	a := parseOne(t, "Your characters gain Ward.", charMeta("Test"))
	if a.Kind != KindStatic {
		t.Fatalf("kind = %v", a.Kind)
	}
	eff := a.Effects[0]
	if eff.Kind != EffectGrantKeyword || eff.Keyword != KeywordWard {
		t.Errorf("effect = %+v", eff)
	}
}

func TestParseTemporaryBuff(t *testing.T) {
	a := parseOne(t, "Chosen character gets +2 strength this turn.", CardMeta{Name: "Test", Type: CardTypeAction})
	if a.Unparsed {
		t.Fatalf("should have parsed")
	}
	eff := a.Effects[0]
	if eff.Duration != DurationEndOfTurn {
		t.Errorf("duration = %v", eff.Duration)
	}
	if eff.Amount != 2 || eff.Stat != StatStrength {
		t.Errorf("effect = %+v", eff)
	}
}

func TestParseUntilNextTurnDuration(t *testing.T) {
	a := parseOne(t, "Chosen character gains Evasive until the start of your next turn.", CardMeta{Name: "Test", Type: CardTypeAction})
	eff := a.Effects[0]
	if eff.Kind != EffectGrantKeyword || eff.Keyword != KeywordEvasive {
		t.Fatalf("effect = %+v", eff)
	}
	if eff.Duration != DurationUntilSourceNextTurnStart {
		t.Errorf("duration = %v", eff.Duration)
	}
}

func TestParseActionBody(t *testing.T) {
	a := parseOne(t, "Deal 3 damage to chosen damaged character.", CardMeta{Name: "Test", Type: CardTypeAction})
	if a.Trigger == nil || a.Trigger.Kind != TriggerPlay {
		t.Fatalf("actions resolve on play: %+v", a.Trigger)
	}
	eff := a.Effects[0]
	if !eff.Target.Filter.DamagedOnly {
		t.Errorf("filter = %+v", eff.Target.Filter)
	}
}

func TestParseTargetFilters(t *testing.T) {
	tests := []struct {
		phrase string
		check  func(TargetSpec) bool
	}{
		{"chosen character", func(ts TargetSpec) bool { return ts.Kind == TargetChosenCharacter && ts.Filter.Subject == SubjectAny }},
		{"chosen opposing character", func(ts TargetSpec) bool { return ts.Filter.Subject == SubjectOpposing }},
		{"chosen character of yours", func(ts TargetSpec) bool { return ts.Filter.Subject == SubjectYours }},
		{"chosen character with cost 3 or less", func(ts TargetSpec) bool { return ts.Filter.MaxCost == 3 }},
		{"chosen exerted character", func(ts TargetSpec) bool { return ts.Filter.ExertedOnly }},
		{"each opposing character", func(ts TargetSpec) bool { return ts.Kind == TargetAllCharacters && ts.Filter.Subject == SubjectOpposing }},
		{"this character", func(ts TargetSpec) bool { return ts.Kind == TargetSelf }},
	}
	for _, tt := range tests {
		ts, ok := parseTargetPhrase(tt.phrase)
		if !ok {
			t.Errorf("%q: did not parse", tt.phrase)
			continue
		}
		if !tt.check(ts) {
			t.Errorf("%q: got %+v", tt.phrase, ts)
		}
	}
}

func TestParseConditionalEffect(t *testing.T) {
	a := parseOne(t, "When you play this character, if you have 2 or more other Villain characters in play, gain 2 lore.", charMeta("Test", "Villain"))
	if a.Condition == nil || a.Condition.Kind != CondControlCount {
		t.Fatalf("condition = %+v", a.Condition)
	}
	if a.Condition.AtLeast != 2 || a.Condition.Filter.Subtype != "Villain" || !a.Condition.Filter.ExcludeSelf {
		t.Errorf("condition = %+v", a.Condition)
	}
	if a.Effects[0].Kind != EffectGainLore {
		t.Errorf("effect = %v", a.Effects[0].Kind)
	}
}

func TestParseDrawUntil(t *testing.T) {
	a := parseOne(t, "Draw cards until you have 7 cards in your hand.", CardMeta{Name: "Test", Type: CardTypeAction})
	if a.Effects[0].Kind != EffectDrawUntil || a.Effects[0].Amount != 7 {
		t.Errorf("effect = %+v", a.Effects[0])
	}
}

func TestParseOpponentDiscard(t *testing.T) {
	a := parseOne(t, "Each opponent chooses and discards a card.", CardMeta{Name: "Test", Type: CardTypeAction})
	if a.Effects[0].Kind != EffectOpponentDiscardsChosen || a.Effects[0].Amount != 1 {
		t.Errorf("effect = %+v", a.Effects[0])
	}
}

func TestParseReturnToHand(t *testing.T) {
	a := parseOne(t, "Return chosen character with cost 2 or less to their player's hand.", CardMeta{Name: "Test", Type: CardTypeAction})
	eff := a.Effects[0]
	if eff.Kind != EffectReturnToHand || eff.Target.Filter.MaxCost != 2 {
		t.Errorf("effect = %+v", eff)
	}
}

func TestParseReturnFromDiscard(t *testing.T) {
	a := parseOne(t, "Return a character card from your discard to your hand.", CardMeta{Name: "Test", Type: CardTypeAction})
	eff := a.Effects[0]
	if eff.Kind != EffectReturnToHand || eff.Target.Kind != TargetZoneCards {
		t.Fatalf("effect = %+v", eff)
	}
	if eff.Target.Zone != "discard" || eff.Target.Filter.CardType != CardTypeCharacter {
		t.Errorf("target = %+v", eff.Target)
	}
	if eff.Target.Filter.Subject != SubjectYours {
		t.Errorf("filter = %+v", eff.Target.Filter)
	}
}

func TestParseTriggerSourceChain(t *testing.T) {
	a := parseOne(t, "Whenever this character challenges, banish it.", charMeta("Test"))
	if a.Unparsed {
		t.Fatalf("should have parsed")
	}
	if a.Effects[0].Target.Kind != TargetTriggerSource {
		t.Errorf("target = %v", a.Effects[0].Target.Kind)
	}
}

func TestParseRestrictPlay(t *testing.T) {
	a := parseOne(t, "Opponents can't play actions until the start of your next turn.", CardMeta{Name: "Test", Type: CardTypeAction})
	eff := a.Effects[0]
	if eff.Kind != EffectRestrictPlay || eff.Restrict != RestrictActions {
		t.Fatalf("effect = %+v", eff)
	}
	if eff.Duration != DurationUntilSourceNextTurnStart {
		t.Errorf("duration = %v", eff.Duration)
	}
}

func TestParseUnrecognizedTextIsNoop(t *testing.T) {
	texts := []string{
		"Reverse the polarity of the neutron flow.",
		"When you play this character, do something the grammar has never seen.",
		"While the moon is full, chaos reigns supreme.",
	}
	for _, text := range texts {
		a := parseOne(t, text, charMeta("Test"))
		if !a.Unparsed {
			t.Errorf("%q: want unparsed no-op, got %+v", text, a)
		}
		if !a.IsNoop() {
			t.Errorf("%q: unparsed ability must be a no-op", text)
		}
		if a.RawText != text {
			t.Errorf("%q: raw text not preserved: %q", text, a.RawText)
		}
	}
}

func TestParsePartialFailureFailsWholeBlock(t *testing.T) {
	// One recognizable clause plus one unknown clause: dropping the unknown
	// half would change legal play, so the whole block goes inert.
	a := parseOne(t, "When you play this character, draw a card, then transmogrify everything.", charMeta("Test"))
	if !a.Unparsed {
		t.Errorf("want whole block unparsed, got %+v", a)
	}
}

func TestParseMultipleBlocks(t *testing.T) {
	text := "Evasive\nWhenever this character quests, gain 1 lore."
	abilities := Parse(text, charMeta("Test"))
	if len(abilities) != 2 {
		t.Fatalf("want 2 abilities, got %d", len(abilities))
	}
	if abilities[0].Kind != KindKeyword || abilities[1].Kind != KindTriggered {
		t.Errorf("kinds = %v, %v", abilities[0].Kind, abilities[1].Kind)
	}
}

func TestParseDamageFromSourceStat(t *testing.T) {
	a := parseOne(t, "Exert — Deal damage to chosen character equal to this character's strength.", charMeta("Test"))
	eff := a.Effects[0]
	if eff.AmountFromSource == nil || *eff.AmountFromSource != StatStrength {
		t.Errorf("effect = %+v", eff)
	}
}

func TestParseDeterminism(t *testing.T) {
	text := "BE PREPARED When you play this character, you may banish chosen character."
	first := Parse(text, charMeta("Test"))
	for i := 0; i < 5; i++ {
		again := Parse(text, charMeta("Test"))
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d != %d", i, len(again), len(first))
		}
		if again[0].Optional != first[0].Optional || again[0].Name != first[0].Name {
			t.Errorf("run %d: parse not deterministic", i)
		}
	}
}
