package ability

import (
	"regexp"
	"strconv"
	"strings"
)

// CardMeta is the card-level context the parser needs: classification only,
// never stats. Parsing is deterministic and side-effect free.
type CardMeta struct {
	Name     string
	Type     CardType
	Subtypes []string
}

// Parse converts one card's ability text into an ordered list of parsed
// abilities. It never fails: a block the grammar does not recognize becomes
// a no-op ability with Unparsed set, so the card stays playable with correct
// numeric stats but inert text. Callers are expected to log unparsed blocks.
func Parse(text string, meta CardMeta) []Ability {
	var out []Ability
	for _, b := range splitBlocks(text) {
		out = append(out, parseBlock(b, meta)...)
	}
	return out
}

// block is one semantic ability block: an optional all-caps name plus body.
type block struct {
	name string
	body string
	raw  string
}

var (
	reminderRe  = regexp.MustCompile(`\s*\([^)]*\)`)
	namedRe     = regexp.MustCompile(`^([A-Z][A-Z0-9 ',!?.-]*[A-Z0-9!?])\s+(?:—\s+)?([A-Z{].*)$`)
	multiWSRe   = regexp.MustCompile(`\s+`)
	numberWords = map[string]int{
		"a": 1, "an": 1, "one": 1, "two": 2, "three": 3,
		"four": 4, "five": 5, "six": 6, "seven": 7,
	}
)

// splitBlocks splits ability text into blocks, one per line, stripping
// reminder text in parentheses.
func splitBlocks(text string) []block {
	var blocks []block
	for _, line := range strings.Split(text, "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		body := multiWSRe.ReplaceAllString(reminderRe.ReplaceAllString(raw, ""), " ")
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		b := block{body: body, raw: raw}
		if m := namedRe.FindStringSubmatch(body); m != nil && !looksLikeKeywordLine(body) && !strings.Contains(m[1], "—") {
			b.name = strings.TrimSpace(m[1])
			b.body = strings.TrimSpace(m[2])
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// parseBlock classifies a block by surface pattern and parses it. A block
// can yield several abilities (a comma-separated keyword line).
func parseBlock(b block, meta CardMeta) []Ability {
	if abilities, ok := parseKeywordLine(b); ok {
		return abilities
	}
	if a, ok := parseActivated(b, meta); ok {
		return []Ability{a}
	}
	if a, ok := parseTriggered(b, meta); ok {
		return []Ability{a}
	}
	if a, ok := parseStatic(b, meta); ok {
		return []Ability{a}
	}
	// Actions resolve their body on play: an imperative block with no
	// trigger phrase is an on-play triggered ability.
	if meta.Type == CardTypeAction {
		if a, ok := parseOnPlayBody(b, meta); ok {
			return []Ability{a}
		}
	}
	return []Ability{noop(b)}
}

// noop builds the inert ability that stands in for unrecognized text.
func noop(b block) Ability {
	return Ability{
		Kind:     KindTriggered,
		Name:     b.name,
		RawText:  b.raw,
		Unparsed: true,
	}
}

// --- Keywords ---

var keywordValueRe = regexp.MustCompile(`^(Resist|Challenger)\s*\+(\d+)$`)
var singerRe = regexp.MustCompile(`^Singer\s+(\d+)$`)

var plainKeywords = map[string]Keyword{
	"evasive":   KeywordEvasive,
	"rush":      KeywordRush,
	"ward":      KeywordWard,
	"bodyguard": KeywordBodyguard,
	"support":   KeywordSupport,
	"reckless":  KeywordReckless,
}

func looksLikeKeywordLine(body string) bool {
	_, ok := parseKeywordLine(block{body: body, raw: body})
	return ok
}

// parseKeywordLine parses "Evasive", "Resist +2", "Challenger +3", "Singer 5"
// or a comma-separated list of those.
func parseKeywordLine(b block) ([]Ability, bool) {
	var out []Ability
	for _, part := range strings.Split(b.body, ",") {
		part = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "."))
		if part == "" {
			return nil, false
		}
		a := Ability{Kind: KindKeyword, RawText: b.raw}
		if kw, ok := plainKeywords[strings.ToLower(part)]; ok {
			a.Keyword = kw
		} else if m := keywordValueRe.FindStringSubmatch(part); m != nil {
			if m[1] == "Resist" {
				a.Keyword = KeywordResist
			} else {
				a.Keyword = KeywordChallenger
			}
			a.KeywordValue = atoi(m[2])
		} else if m := singerRe.FindStringSubmatch(part); m != nil {
			a.Keyword = KeywordSinger
			a.KeywordValue = atoi(m[1])
		} else {
			return nil, false
		}
		out = append(out, a)
	}
	return out, len(out) > 0
}

// --- Activated abilities ---

// Cost prefix before an em dash: "Exert", "2 Ink", "Exert, 1 Ink",
// "Exert, Discard a card", "Banish this item".
var activatedRe = regexp.MustCompile(`^(.+?)\s+—\s+(.+)$`)
var inkCostRe = regexp.MustCompile(`^(\d+) Ink$`)
var discardCostRe = regexp.MustCompile(`^(?i)discard (a|an|one|two|three|\d+) cards?$`)

func parseActivated(b block, meta CardMeta) (Ability, bool) {
	m := activatedRe.FindStringSubmatch(b.body)
	if m == nil {
		return Ability{}, false
	}
	cost, ok := parseActivationCost(m[1])
	if !ok {
		return Ability{}, false
	}
	a := Ability{
		Kind:    KindActivated,
		Name:    b.name,
		RawText: b.raw,
		Cost:    cost,
	}
	if !parseAbilityBody(&a, m[2], meta) {
		return noop(b), true
	}
	return a, true
}

func parseActivationCost(s string) (*ActivationCost, bool) {
	cost := &ActivationCost{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.EqualFold(part, "Exert"):
			cost.ExertSelf = true
		case inkCostRe.MatchString(part):
			cost.Ink = atoi(inkCostRe.FindStringSubmatch(part)[1])
		case discardCostRe.MatchString(part):
			n, _ := amount(discardCostRe.FindStringSubmatch(part)[1])
			cost.DiscardCount = n
		default:
			return nil, false
		}
	}
	if cost.Free() {
		return nil, false
	}
	return cost, true
}

// --- Triggered abilities ---

type triggerPattern struct {
	re    *regexp.Regexp
	build func(m []string, meta CardMeta) TriggerSpec
}

var triggerPatterns = []triggerPattern{
	{
		re: regexp.MustCompile(`^(?i)when you play this (character|item)$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerPlay, Filter: Filter{Subject: SubjectSelf}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever you play (?:a|an|another) ([a-z]+)(?: (character|card))?$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			f := Filter{Subject: SubjectYours}
			switch strings.ToLower(m[1]) {
			case "character":
				f.CardType = CardTypeCharacter
			case "action":
				f.CardType = CardTypeAction
			case "item":
				f.CardType = CardTypeItem
			default:
				// subtype filter, e.g. "whenever you play a song" or
				// "whenever you play a Villain character"
				f.Subtype = titleWord(m[1])
			}
			return TriggerSpec{Kind: TriggerPlay, Filter: f}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)when this character is banished$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerBanished, Filter: Filter{Subject: SubjectSelf}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever one of your (other )?characters is banished$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerBanished, Filter: Filter{
				Subject: SubjectYours, CardType: CardTypeCharacter, ExcludeSelf: m[1] != "",
			}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever an opposing character is banished$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerBanished, Filter: Filter{Subject: SubjectOpposing, CardType: CardTypeCharacter}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever this character quests$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerQuests, Filter: Filter{Subject: SubjectSelf}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever one of your (other )?characters quests$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerQuests, Filter: Filter{
				Subject: SubjectYours, CardType: CardTypeCharacter, ExcludeSelf: m[1] != "",
			}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever this character challenges(?: another character)?$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerChallenges, Filter: Filter{Subject: SubjectSelf}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever this character is challenged$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerIsChallenged, Filter: Filter{Subject: SubjectSelf}}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)at the start of your turn$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerTurnStart, SelfTurnOnly: true}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)at the end of your turn$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerTurnEnd, SelfTurnOnly: true}
		},
	},
	{
		re: regexp.MustCompile(`^(?i)whenever you draw a card$`),
		build: func(m []string, meta CardMeta) TriggerSpec {
			return TriggerSpec{Kind: TriggerCardDrawn, Filter: Filter{Subject: SubjectYours}}
		},
	},
}

// parseTriggered parses "<trigger clause>, <body>". The leading clause must
// match a known trigger pattern; everything after the first comma is the
// ability body (which may itself contain optionality, payment, conditions
// and chains).
func parseTriggered(b block, meta CardMeta) (Ability, bool) {
	lower := strings.ToLower(b.body)
	if !strings.HasPrefix(lower, "when") && !strings.HasPrefix(lower, "at the") {
		return Ability{}, false
	}
	idx := strings.Index(b.body, ", ")
	if idx < 0 {
		return noop(b), true
	}
	clause, body := b.body[:idx], b.body[idx+2:]
	for _, tp := range triggerPatterns {
		m := tp.re.FindStringSubmatch(clause)
		if m == nil {
			continue
		}
		spec := tp.build(m, meta)
		a := Ability{
			Kind:    KindTriggered,
			Name:    b.name,
			RawText: b.raw,
			Trigger: &spec,
		}
		if !parseAbilityBody(&a, body, meta) {
			return noop(b), true
		}
		return a, true
	}
	// Recognizably a trigger, but an unknown phrasing: inert, not an error.
	return noop(b), true
}

// --- Static abilities ---

var (
	whileRe = regexp.MustCompile(`^(?i)while (.+?), (.+)$`)
	// "Your other characters get +1 strength." / "Opposing characters get -1 lore."
	staticGetsRe = regexp.MustCompile(`^(?i)(this character|your (?:other )?characters|opposing characters) (?:get|gets) ([+-]\d+) (strength|willpower|lore)(?: for each (.+?) you control)?\.?$`)
	staticGainRe = regexp.MustCompile(`^(?i)(this character|your (?:other )?characters|opposing characters) (?:gain|gains|has|have) (.+?)\.?$`)
	// "Opponents can't play actions." / "Opponents pay 1 Ink more to play actions."
	staticRestrictRe = regexp.MustCompile(`^(?i)opponents can't play (actions|characters)\.?$`)
	costLessRe       = regexp.MustCompile(`^(?i)you pay (\d+) Ink less to play (.+?)\.?$`)
	perFilterRe      = regexp.MustCompile(`^(?i)(other )?([A-Za-z]+) characters?$`)
)

func parseStatic(b block, meta CardMeta) (Ability, bool) {
	body := b.body
	a := Ability{Kind: KindStatic, Name: b.name, RawText: b.raw, Duration: DurationWhileCondition}

	if m := whileRe.FindStringSubmatch(body); m != nil {
		cond, ok := parseCondition(m[1])
		if !ok {
			return noop(b), true
		}
		a.Condition = cond
		body = m[2]
	}

	if eff, ok := parseStaticEffect(body); ok {
		a.Effects = []Effect{eff}
		return a, true
	}
	if a.Condition != nil {
		// A recognized "While ..." clause with an unknown body stays inert.
		return noop(b), true
	}
	return Ability{}, false
}

func parseStaticEffect(body string) (Effect, bool) {
	if m := staticGetsRe.FindStringSubmatch(body); m != nil {
		eff := Effect{
			Kind:     EffectModifyStat,
			Target:   staticSubjectTarget(m[1]),
			Amount:   atoiSigned(m[2]),
			Stat:     statByName(m[3]),
			Duration: DurationWhileCondition,
		}
		if m[4] != "" {
			per, ok := parsePerFilter(m[4])
			if !ok {
				return Effect{}, false
			}
			eff.Per = per
		}
		return eff, true
	}
	if m := staticGainRe.FindStringSubmatch(body); m != nil {
		kws, ok := parseKeywordLine(block{body: m[2], raw: m[2]})
		if !ok || len(kws) != 1 {
			return Effect{}, false
		}
		return Effect{
			Kind:     EffectGrantKeyword,
			Target:   staticSubjectTarget(m[1]),
			Keyword:  kws[0].Keyword,
			Value:    kws[0].KeywordValue,
			Duration: DurationWhileCondition,
		}, true
	}
	if m := staticRestrictRe.FindStringSubmatch(body); m != nil {
		what := RestrictActions
		if strings.EqualFold(m[1], "characters") {
			what = RestrictCharacters
		}
		return Effect{Kind: EffectRestrictPlay, Restrict: what, Duration: DurationWhileCondition}, true
	}
	if m := costLessRe.FindStringSubmatch(body); m != nil {
		filter, ok := parsePlayFilter(m[2])
		if !ok {
			return Effect{}, false
		}
		return Effect{
			Kind:     EffectCostReduction,
			Amount:   atoi(m[1]),
			Filter:   filter,
			Duration: DurationWhileCondition,
		}, true
	}
	return Effect{}, false
}

func staticSubjectTarget(subject string) TargetSpec {
	switch strings.ToLower(subject) {
	case "this character":
		return TargetSpec{Kind: TargetSelf}
	case "your characters":
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectYours}}
	case "your other characters":
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectYours, ExcludeSelf: true}}
	default: // "opposing characters"
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectOpposing}}
	}
}

// parsePerFilter parses the "for each X you control" counter, e.g.
// "other Villain character". "Other" excludes the source instance only;
// symmetric copies still count each other.
func parsePerFilter(s string) (*Filter, bool) {
	m := perFilterRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, false
	}
	f := &Filter{Subject: SubjectYours, CardType: CardTypeCharacter, ExcludeSelf: m[1] != ""}
	if !strings.EqualFold(m[2], "character") && !strings.EqualFold(m[2], "characters") {
		f.Subtype = titleWord(m[2])
	}
	return f, true
}

// parsePlayFilter parses what a cost reduction or play-for-free applies to:
// "characters", "actions", "items", "Villain characters".
func parsePlayFilter(s string) (Filter, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "characters":
		return Filter{Subject: SubjectYours, CardType: CardTypeCharacter}, true
	case "actions":
		return Filter{Subject: SubjectYours, CardType: CardTypeAction}, true
	case "items":
		return Filter{Subject: SubjectYours, CardType: CardTypeItem}, true
	}
	if m := perFilterRe.FindStringSubmatch(s); m != nil {
		f, ok := parsePerFilter(s)
		if !ok {
			return Filter{}, false
		}
		return *f, true
	}
	return Filter{}, false
}

// --- Ability bodies (triggered/activated/action) ---

var (
	youMayRe = regexp.MustCompile(`^(?i)you may (.+)$`)
	payToRe  = regexp.MustCompile(`^(?i)pay (\d+) Ink to (.+)$`)
	leadIfRe = regexp.MustCompile(`^(?i)if (.+?), (.+)$`)
)

func parseOnPlayBody(b block, meta CardMeta) (Ability, bool) {
	a := Ability{
		Kind:    KindTriggered,
		Name:    b.name,
		RawText: b.raw,
		Trigger: &TriggerSpec{Kind: TriggerPlay, Filter: Filter{Subject: SubjectSelf}},
	}
	if !parseAbilityBody(&a, b.body, meta) {
		return noop(b), true
	}
	return a, true
}

// parseAbilityBody parses the executable part of an ability: optionality
// ("you may"), payment ("pay N Ink to"), a leading condition ("if ..., ...")
// and the ordered effect list. Optionality and chaining each map to explicit
// structure; silently dropping either changes legal play, so any
// unrecognized clause fails the whole block into a no-op.
func parseAbilityBody(a *Ability, body string, meta CardMeta) bool {
	body = strings.TrimSuffix(strings.TrimSpace(body), ".")

	if m := youMayRe.FindStringSubmatch(body); m != nil {
		a.Optional = true
		body = m[1]
	}
	if m := payToRe.FindStringSubmatch(body); m != nil {
		ink := atoi(m[1])
		if a.Cost == nil {
			a.Cost = &ActivationCost{}
		}
		a.Cost.Ink += ink
		body = m[2]
	}
	if m := leadIfRe.FindStringSubmatch(body); m != nil {
		if cond, ok := parseCondition(m[1]); ok {
			a.Condition = cond
			body = m[2]
		}
	}

	effects, ok := parseEffectList(body)
	if !ok {
		return false
	}
	a.Effects = effects
	return true
}

var thenSplitRe = regexp.MustCompile(`(?i)\.\s*then[, ]\s*|,\s*then\s+`)

// parseEffectList splits chained effects ("X, then Y" / "X. Then Y.") and
// sentence sequences into ordered effect nodes.
func parseEffectList(body string) ([]Effect, bool) {
	var clauses []string
	for _, chunk := range thenSplitRe.Split(body, -1) {
		for _, sentence := range strings.Split(chunk, ". ") {
			sentence = strings.TrimSuffix(strings.TrimSpace(sentence), ".")
			if sentence != "" {
				clauses = append(clauses, sentence)
			}
		}
	}
	if len(clauses) == 0 {
		return nil, false
	}
	var effects []Effect
	for _, clause := range clauses {
		eff, ok := parseEffectClause(clause)
		if !ok {
			return nil, false
		}
		effects = append(effects, eff)
	}
	return effects, true
}

type effectPattern struct {
	re    *regexp.Regexp
	build func(m []string) (Effect, bool)
}

var effectPatterns = []effectPattern{
	{
		re: regexp.MustCompile(`^(?i)deal (\d+) damage to (.+)$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[2])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectDealDamage, Amount: atoi(m[1]), Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)deal damage to (.+?) equal to this character's (strength|lore)$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			st := statByName(m[2])
			return Effect{Kind: EffectDealDamage, AmountFromSource: &st, Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)remove up to (\d+) damage from (.+)$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[2])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectHealDamage, Amount: atoi(m[1]), Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)banish (.+)$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectBanish, Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)return (?:a|an|one) ([a-z]+) card from your discard to your hand$`),
		build: func(m []string) (Effect, bool) {
			f := Filter{Subject: SubjectYours}
			switch strings.ToLower(m[1]) {
			case "character":
				f.CardType = CardTypeCharacter
			case "action":
				f.CardType = CardTypeAction
			case "item":
				f.CardType = CardTypeItem
			default:
				f.Subtype = titleWord(m[1])
			}
			return Effect{
				Kind:   EffectReturnToHand,
				Target: TargetSpec{Kind: TargetZoneCards, Zone: "discard", Filter: f},
			}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)return (.+?) to (?:their player's|its player's|your) hand$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectReturnToHand, Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)put (.+?) into (?:their player's|its player's|your) inkwell$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectIntoInkwell, Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)draw (a|an|one|two|three|\d+) cards?$`),
		build: func(m []string) (Effect, bool) {
			n, ok := amount(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectDrawCards, Amount: n}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)draw cards until you have (\d+) cards? in your hand$`),
		build: func(m []string) (Effect, bool) {
			return Effect{Kind: EffectDrawUntil, Amount: atoi(m[1])}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)discard (a|an|one|two|three|\d+) cards?$`),
		build: func(m []string) (Effect, bool) {
			n, ok := amount(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectDiscardCards, Amount: n}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)each opponent chooses and discards (a|an|one|two|\d+) cards?$`),
		build: func(m []string) (Effect, bool) {
			n, ok := amount(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectOpponentDiscardsChosen, Amount: n}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)gain (\d+) lore$`),
		build: func(m []string) (Effect, bool) {
			return Effect{Kind: EffectGainLore, Amount: atoi(m[1])}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)each opponent loses (\d+) lore$`),
		build: func(m []string) (Effect, bool) {
			return Effect{Kind: EffectLoseLore, Amount: atoi(m[1]), Target: TargetSpec{Kind: TargetAllPlayers, Filter: Filter{Subject: SubjectOpposing}}}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)ready (.+)$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectReadyCharacter, Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)exert (.+)$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectExertCharacter, Target: t}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)(.+?) (?:get|gets) ([+-]\d+) (strength|willpower|lore)( .+)?$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			dur, rest := parseDurationSuffix(m[4])
			if rest != "" {
				return Effect{}, false
			}
			return Effect{
				Kind:     EffectModifyStat,
				Target:   t,
				Amount:   atoiSigned(m[2]),
				Stat:     statByName(m[3]),
				Duration: dur,
			}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)(.+?) (?:gain|gains) (.+?)( this turn| until the start of your next turn| until your next turn)?$`),
		build: func(m []string) (Effect, bool) {
			t, ok := parseTargetPhrase(m[1])
			if !ok {
				return Effect{}, false
			}
			kws, ok := parseKeywordLine(block{body: m[2], raw: m[2]})
			if !ok || len(kws) != 1 {
				return Effect{}, false
			}
			dur, _ := parseDurationSuffix(m[3])
			return Effect{
				Kind:     EffectGrantKeyword,
				Target:   t,
				Keyword:  kws[0].Keyword,
				Value:    kws[0].KeywordValue,
				Duration: dur,
			}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)you pay (\d+) Ink less for the next (.+?) you play( this turn)?$`),
		build: func(m []string) (Effect, bool) {
			f, ok := parsePlayFilter(m[2] + "s")
			if !ok {
				return Effect{}, false
			}
			dur := DurationEndOfTurn
			if m[3] == "" {
				dur = DurationUntilSourceNextTurnStart
			}
			return Effect{Kind: EffectCostReduction, Amount: atoi(m[1]), Filter: f, Duration: dur}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)play a (character|action|item) with cost (\d+) or less for free$`),
		build: func(m []string) (Effect, bool) {
			f, ok := parsePlayFilter(m[1] + "s")
			if !ok {
				return Effect{}, false
			}
			return Effect{Kind: EffectPlayForFree, Filter: f, MaxCost: atoi(m[2])}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)opponents can't play (actions|characters)( this turn| until the start of your next turn| until your next turn)?$`),
		build: func(m []string) (Effect, bool) {
			what := RestrictActions
			if strings.EqualFold(m[1], "characters") {
				what = RestrictCharacters
			}
			dur, _ := parseDurationSuffix(m[2])
			if dur == DurationPermanent {
				dur = DurationUntilSourceNextTurnStart
			}
			return Effect{Kind: EffectRestrictPlay, Restrict: what, Duration: dur}, true
		},
	},
	{
		re: regexp.MustCompile(`^(?i)put the top (card|\d+ cards) of your deck face down beneath this character$`),
		build: func(m []string) (Effect, bool) {
			n := 1
			if m[1] != "card" {
				n = atoi(strings.Fields(m[1])[0])
			}
			return Effect{Kind: EffectBoost, Amount: n}, true
		},
	},
}

// parseEffectClause parses one effect step, including the duration suffix
// and inline conditionals ("if you ..., X. Otherwise, Y").
func parseEffectClause(clause string) (Effect, bool) {
	clause = strings.TrimSpace(clause)

	if m := leadIfRe.FindStringSubmatch(clause); m != nil {
		if cond, ok := parseCondition(m[1]); ok {
			rest := m[2]
			var elsePart string
			if i := strings.Index(strings.ToLower(rest), ". otherwise, "); i >= 0 {
				elsePart = rest[i+len(". otherwise, "):]
				rest = rest[:i]
			}
			thenEffects, ok := parseEffectList(rest)
			if !ok {
				return Effect{}, false
			}
			eff := Effect{Kind: EffectConditional, Cond: cond, Then: thenEffects}
			if elsePart != "" {
				elseEffects, ok := parseEffectList(elsePart)
				if !ok {
					return Effect{}, false
				}
				eff.Else = elseEffects
			}
			return eff, true
		}
	}

	// Strip a trailing duration cue before pattern matching, except for
	// patterns that consume their own duration suffix.
	base, dur := clause, DurationPermanent
	if d, stripped, ok := stripDurationSuffix(clause); ok {
		base, dur = stripped, d
	}

	for _, ep := range effectPatterns {
		if m := ep.re.FindStringSubmatch(clause); m != nil {
			if eff, ok := ep.build(m); ok {
				return eff, true
			}
		}
		if base != clause {
			if m := ep.re.FindStringSubmatch(base); m != nil {
				if eff, ok := ep.build(m); ok {
					if eff.Duration == DurationPermanent {
						eff.Duration = dur
					}
					return eff, true
				}
			}
		}
	}
	return Effect{}, false
}

// --- Conditions ---

var (
	controlCountRe = regexp.MustCompile(`^(?i)you have (\d+) or more (other )?(?:([A-Za-z]+) )?characters in play$`)
	handAtLeastRe  = regexp.MustCompile(`^(?i)you have (\d+) or more cards in your hand$`)
)

func parseCondition(s string) (*Condition, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ","))
	if m := controlCountRe.FindStringSubmatch(s); m != nil {
		c := &Condition{
			Kind:    CondControlCount,
			AtLeast: atoi(m[1]),
			Filter:  Filter{Subject: SubjectYours, CardType: CardTypeCharacter, ExcludeSelf: m[2] != ""},
		}
		if m[3] != "" {
			c.Filter.Subtype = titleWord(m[3])
		}
		return c, true
	}
	if m := handAtLeastRe.FindStringSubmatch(s); m != nil {
		return &Condition{Kind: CondHandAtLeast, AtLeast: atoi(m[1])}, true
	}
	switch strings.ToLower(s) {
	case "this character is damaged":
		return &Condition{Kind: CondSelfDamaged}, true
	case "this character has no damage", "this character is undamaged":
		return &Condition{Kind: CondSelfUndamaged}, true
	case "it's your turn":
		return &Condition{Kind: CondOnYourTurn}, true
	}
	return nil, false
}

// --- Targets ---

var chosenRe = regexp.MustCompile(`^(?i)chosen (damaged |exerted )?(opposing )?(?:([A-Za-z]+) )?character(?: of yours)?( with cost (\d+) or less)?$`)

func parseTargetPhrase(s string) (TargetSpec, bool) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	switch lower {
	case "this character", "this item":
		return TargetSpec{Kind: TargetSelf}, true
	case "it", "that character", "that card":
		return TargetSpec{Kind: TargetTriggerSource}, true
	case "chosen opponent":
		return TargetSpec{Kind: TargetChosenOpponent}, true
	case "each opponent":
		return TargetSpec{Kind: TargetAllPlayers, Filter: Filter{Subject: SubjectOpposing}}, true
	case "each character", "all characters":
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectAny, CardType: CardTypeCharacter}}, true
	case "each opposing character", "all opposing characters":
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectOpposing, CardType: CardTypeCharacter}}, true
	case "your characters", "each of your characters":
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectYours, CardType: CardTypeCharacter}}, true
	case "your other characters":
		return TargetSpec{Kind: TargetAllCharacters, Filter: Filter{Subject: SubjectYours, CardType: CardTypeCharacter, ExcludeSelf: true}}, true
	}

	if m := chosenRe.FindStringSubmatch(s); m != nil {
		f := Filter{Subject: SubjectAny, CardType: CardTypeCharacter}
		if strings.TrimSpace(strings.ToLower(m[1])) == "damaged" {
			f.DamagedOnly = true
		}
		if strings.TrimSpace(strings.ToLower(m[1])) == "exerted" {
			f.ExertedOnly = true
		}
		if m[2] != "" {
			f.Subject = SubjectOpposing
		}
		if strings.Contains(lower, "of yours") {
			f.Subject = SubjectYours
		}
		if m[3] != "" {
			f.Subtype = titleWord(m[3])
		}
		if m[5] != "" {
			f.MaxCost = atoi(m[5])
		}
		return TargetSpec{Kind: TargetChosenCharacter, Filter: f}, true
	}
	return TargetSpec{}, false
}

// --- Durations ---

var durationSuffixes = []struct {
	suffix string
	dur    Duration
}{
	{" this turn", DurationEndOfTurn},
	{" for the rest of this turn", DurationEndOfTurn},
	{" until the start of your next turn", DurationUntilSourceNextTurnStart},
	{" until your next turn", DurationUntilSourceNextTurnStart},
}

func stripDurationSuffix(s string) (Duration, string, bool) {
	lower := strings.ToLower(s)
	for _, ds := range durationSuffixes {
		if strings.HasSuffix(lower, ds.suffix) {
			return ds.dur, strings.TrimSpace(s[:len(s)-len(ds.suffix)]), true
		}
	}
	return DurationPermanent, s, false
}

func parseDurationSuffix(s string) (Duration, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DurationPermanent, ""
	}
	if d, rest, ok := stripDurationSuffix(" " + s); ok {
		return d, rest
	}
	return DurationPermanent, s
}

// --- Helpers ---

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoiSigned(s string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(s, "+"))
	return n
}

func amount(word string) (int, bool) {
	if n, ok := numberWords[strings.ToLower(word)]; ok {
		return n, true
	}
	n, err := strconv.Atoi(word)
	if err != nil {
		return 0, false
	}
	return n, true
}

func titleWord(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func statByName(s string) Stat {
	switch strings.ToLower(s) {
	case "strength":
		return StatStrength
	case "willpower":
		return StatWillpower
	case "lore":
		return StatLore
	default:
		return StatCost
	}
}
