// Package ability defines the parsed representation of card ability text:
// ability definitions, effect AST nodes, target specifications, triggers,
// conditions and durations. The package is pure data plus a pure parser; it
// never touches game state.
package ability

// AbilityKind classifies one ability block on a card.
type AbilityKind int

const (
	KindKeyword AbilityKind = iota
	KindTriggered
	KindStatic
	KindActivated
)

func (k AbilityKind) String() string {
	switch k {
	case KindKeyword:
		return "keyword"
	case KindTriggered:
		return "triggered"
	case KindStatic:
		return "static"
	case KindActivated:
		return "activated"
	default:
		return "unknown"
	}
}

// Keyword enumerates the closed set of evergreen keywords.
type Keyword int

const (
	KeywordNone Keyword = iota
	KeywordEvasive
	KeywordRush
	KeywordWard
	KeywordBodyguard
	KeywordSupport
	KeywordReckless
	KeywordResist     // carries a value
	KeywordChallenger // carries a value
	KeywordSinger     // carries a value
)

func (k Keyword) String() string {
	switch k {
	case KeywordEvasive:
		return "Evasive"
	case KeywordRush:
		return "Rush"
	case KeywordWard:
		return "Ward"
	case KeywordBodyguard:
		return "Bodyguard"
	case KeywordSupport:
		return "Support"
	case KeywordReckless:
		return "Reckless"
	case KeywordResist:
		return "Resist"
	case KeywordChallenger:
		return "Challenger"
	case KeywordSinger:
		return "Singer"
	default:
		return ""
	}
}

// Duration classifies how long a modification lasts.
type Duration int

const (
	DurationPermanent Duration = iota
	DurationEndOfTurn
	// DurationUntilSourceNextTurnStart expires at the start of the turn
	// belonging to the effect's anchoring player, not at the next turn
	// boundary. "Until your next turn" and "until the start of your next
	// turn" both parse to this value.
	DurationUntilSourceNextTurnStart
	// DurationWhileCondition has no independent expiry; the effect vanishes
	// when its condition re-evaluates false during recalculation.
	DurationWhileCondition
)

func (d Duration) String() string {
	switch d {
	case DurationPermanent:
		return "permanent"
	case DurationEndOfTurn:
		return "end of turn"
	case DurationUntilSourceNextTurnStart:
		return "until source's next turn start"
	case DurationWhileCondition:
		return "while condition holds"
	default:
		return "unknown"
	}
}

// Stat names a numeric character stat.
type Stat int

const (
	StatStrength Stat = iota
	StatWillpower
	StatLore
	StatCost
)

func (s Stat) String() string {
	switch s {
	case StatStrength:
		return "strength"
	case StatWillpower:
		return "willpower"
	case StatLore:
		return "lore"
	case StatCost:
		return "cost"
	default:
		return "unknown"
	}
}

// --- Triggers ---

// TriggerKind names the game event a triggered ability listens for.
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerPlay             // a card matching the filter is played
	TriggerBanished         // a character matching the filter is banished
	TriggerQuests           // a character matching the filter quests
	TriggerChallenges       // a character matching the filter challenges
	TriggerIsChallenged     // a character matching the filter is challenged
	TriggerTurnStart
	TriggerTurnEnd
	TriggerCardDrawn
)

func (t TriggerKind) String() string {
	switch t {
	case TriggerPlay:
		return "play"
	case TriggerBanished:
		return "banished"
	case TriggerQuests:
		return "quests"
	case TriggerChallenges:
		return "challenges"
	case TriggerIsChallenged:
		return "is challenged"
	case TriggerTurnStart:
		return "turn start"
	case TriggerTurnEnd:
		return "turn end"
	case TriggerCardDrawn:
		return "card drawn"
	default:
		return "none"
	}
}

// Subject scopes a trigger filter or target filter to a side of the board.
type Subject int

const (
	SubjectSelf Subject = iota // the card carrying the ability
	SubjectYours               // cards you control (includes self unless excluded)
	SubjectOpposing
	SubjectAny
)

func (s Subject) String() string {
	switch s {
	case SubjectSelf:
		return "self"
	case SubjectYours:
		return "yours"
	case SubjectOpposing:
		return "opposing"
	case SubjectAny:
		return "any"
	default:
		return "unknown"
	}
}

// TriggerSpec describes when a triggered ability fires.
type TriggerSpec struct {
	Kind TriggerKind
	// Filter restricts which event subject fires the trigger (e.g. "this
	// character", "one of your characters", "an opposing character").
	Filter Filter
	// SelfTurnOnly restricts turn-start/turn-end triggers to the source
	// player's own turns.
	SelfTurnOnly bool
}

// --- Filters ---

// CardType mirrors the card types used across the engine. Defined here so
// filters stay expressible without importing game state.
type CardType int

const (
	CardTypeAny CardType = iota
	CardTypeCharacter
	CardTypeAction
	CardTypeItem
)

func (t CardType) String() string {
	switch t {
	case CardTypeCharacter:
		return "character"
	case CardTypeAction:
		return "action"
	case CardTypeItem:
		return "item"
	default:
		return "any"
	}
}

// Filter is a declarative predicate over card instances. Zero value matches
// everything on the relevant side.
type Filter struct {
	Subject     Subject
	CardType    CardType
	Subtype     string // e.g. "Villain", "Ally", "Song"
	MaxCost     int    // 0 = no cost bound
	DamagedOnly bool
	ExertedOnly bool
	// ExcludeSelf is set when the text says "other": the source instance
	// never matches, but symmetric copies of the same card do.
	ExcludeSelf bool
}

// --- Targets ---

// TargetKind names the shape of a target specification.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetSelf
	TargetChosenCharacter
	TargetAllCharacters
	TargetChosenOpponent
	TargetAllPlayers
	TargetTriggerSource // the entity that fired the trigger (chained target)
	TargetZoneCards     // cards in a specific zone (e.g. your discard)
)

func (t TargetKind) String() string {
	switch t {
	case TargetSelf:
		return "self"
	case TargetChosenCharacter:
		return "chosen character"
	case TargetAllCharacters:
		return "all characters"
	case TargetChosenOpponent:
		return "chosen opponent"
	case TargetAllPlayers:
		return "all players"
	case TargetTriggerSource:
		return "trigger source"
	case TargetZoneCards:
		return "zone cards"
	default:
		return "none"
	}
}

// TargetSpec declares who or what an effect applies to. It is never resolved
// eagerly; resolution happens at execution time against live state.
type TargetSpec struct {
	Kind   TargetKind
	Filter Filter
	Zone   string // for TargetZoneCards: "hand", "discard", "deck"
}

// --- Conditions ---

// ConditionKind names a condition evaluated against live state.
type ConditionKind int

const (
	CondNone ConditionKind = iota
	CondControlCount       // you control at least N cards matching the filter
	CondSelfDamaged
	CondSelfUndamaged
	CondHandAtLeast
	CondOnYourTurn
)

func (c ConditionKind) String() string {
	switch c {
	case CondControlCount:
		return "control count"
	case CondSelfDamaged:
		return "self damaged"
	case CondSelfUndamaged:
		return "self undamaged"
	case CondHandAtLeast:
		return "hand at least"
	case CondOnYourTurn:
		return "on your turn"
	default:
		return "none"
	}
}

// Condition guards an ability or a single effect node. Evaluated at
// execution time (triggered/activated) or continuously (static).
type Condition struct {
	Kind    ConditionKind
	Filter  Filter // for CondControlCount
	AtLeast int    // for CondControlCount / CondHandAtLeast
}

// --- Effects ---

// EffectKind tags an effect AST node. The executor switches exhaustively
// over this set; an unhandled kind is an execution error, never a silent
// skip.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectDealDamage
	EffectHealDamage
	EffectBanish
	EffectReturnToHand
	EffectIntoInkwell
	EffectDrawCards
	EffectDrawUntil
	EffectDiscardCards
	EffectOpponentDiscardsChosen
	EffectModifyStat
	EffectGrantKeyword
	EffectGainLore
	EffectLoseLore
	EffectReadyCharacter
	EffectExertCharacter
	EffectCostReduction
	EffectPlayForFree
	EffectRestrictPlay
	EffectBoost
	EffectConditional
)

func (e EffectKind) String() string {
	switch e {
	case EffectDealDamage:
		return "deal damage"
	case EffectHealDamage:
		return "heal damage"
	case EffectBanish:
		return "banish"
	case EffectReturnToHand:
		return "return to hand"
	case EffectIntoInkwell:
		return "into inkwell"
	case EffectDrawCards:
		return "draw cards"
	case EffectDrawUntil:
		return "draw until"
	case EffectDiscardCards:
		return "discard cards"
	case EffectOpponentDiscardsChosen:
		return "opponent discards chosen"
	case EffectModifyStat:
		return "modify stat"
	case EffectGrantKeyword:
		return "grant keyword"
	case EffectGainLore:
		return "gain lore"
	case EffectLoseLore:
		return "lose lore"
	case EffectReadyCharacter:
		return "ready character"
	case EffectExertCharacter:
		return "exert character"
	case EffectCostReduction:
		return "cost reduction"
	case EffectPlayForFree:
		return "play for free"
	case EffectRestrictPlay:
		return "restrict play"
	case EffectBoost:
		return "boost"
	case EffectConditional:
		return "conditional"
	default:
		return "none"
	}
}

// RestrictWhat names what a play restriction forbids.
type RestrictWhat int

const (
	RestrictActions RestrictWhat = iota
	RestrictCharacters
)

func (r RestrictWhat) String() string {
	if r == RestrictActions {
		return "actions"
	}
	return "characters"
}

// Effect is one executable step within an ability. Kind-specific parameters
// share the struct; unused fields are zero. Nodes nest through Then/Else
// (conditionals); sibling steps chain through Ability.Effects order.
type Effect struct {
	Kind   EffectKind
	Target TargetSpec

	Amount  int     // damage, heal, draw, discard, lore, stat delta, reduction
	Stat    Stat    // for EffectModifyStat
	Keyword Keyword // for EffectGrantKeyword
	Value   int     // keyword value (Resist +N, Challenger +N)

	// AmountFromSource, when set, overrides Amount with the source
	// character's current value of the named stat at execution time.
	AmountFromSource *Stat
	// Per multiplies Amount by the count of cards matching the filter at
	// evaluation time ("for each other Villain character you control").
	Per *Filter

	Duration Duration // for stat/keyword/cost/restriction effects

	Filter   Filter       // for cost reduction / play-for-free eligibility
	MaxCost  int          // for EffectPlayForFree
	Restrict RestrictWhat // for EffectRestrictPlay

	// EffectConditional: evaluate Cond against live state, then execute
	// exactly one of Then/Else in order.
	Cond *Condition
	Then []Effect
	Else []Effect
}

// ActivationCost is the price of an activated ability.
type ActivationCost struct {
	Ink       int
	ExertSelf bool
	// DiscardCount cards must be discarded from hand as part of the cost.
	DiscardCount int
}

// Free reports whether the cost is empty.
func (c ActivationCost) Free() bool {
	return c.Ink == 0 && !c.ExertSelf && c.DiscardCount == 0
}

// Ability is the parsed form of one ability block on a card. Produced once
// per card instance at creation and immutable thereafter.
type Ability struct {
	Kind    AbilityKind
	Name    string // ability name from the card text, if any
	RawText string // the original block, kept for logs and UI

	Keyword      Keyword
	KeywordValue int

	Trigger   *TriggerSpec    // KindTriggered only
	Cost      *ActivationCost // KindActivated only
	Condition *Condition      // gates the whole ability
	Duration  Duration
	Optional  bool // "you may": requires a confirmation before any targeting

	Effects []Effect // ordered; executed depth-first, left-to-right

	// Unparsed marks a block the parser did not recognize. The ability is a
	// behavioral no-op; the card stays playable with correct numeric stats.
	Unparsed bool
}

// IsNoop reports whether the ability does nothing when executed.
func (a *Ability) IsNoop() bool {
	return a.Unparsed || (a.Kind != KindKeyword && len(a.Effects) == 0)
}
