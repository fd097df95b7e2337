package log

// EventKind enumerates all observable game events.
type EventKind int

const (
	EventNewTurn EventKind = iota
	EventTurnEnd
	EventDraw
	EventInk
	EventPlayCard
	EventQuest
	EventChallenge
	EventDamage
	EventHeal
	EventBanish
	EventReturnToHand
	EventIntoInkwell
	EventExile
	EventDiscard
	EventOpponentDiscard
	EventLoreGained
	EventLoreLost
	EventReady
	EventExert
	EventStatChange
	EventKeywordGranted
	EventAbilityTriggered
	EventAbilityActivated
	EventAbilityError
	EventUnparsedAbility
	EventEffectExpired
	EventPlayRestricted
	EventBoost
	EventShuffle
	EventWin
)

func (e EventKind) String() string {
	switch e {
	case EventNewTurn:
		return "NewTurn"
	case EventTurnEnd:
		return "TurnEnd"
	case EventDraw:
		return "Draw"
	case EventInk:
		return "Ink"
	case EventPlayCard:
		return "PlayCard"
	case EventQuest:
		return "Quest"
	case EventChallenge:
		return "Challenge"
	case EventDamage:
		return "Damage"
	case EventHeal:
		return "Heal"
	case EventBanish:
		return "Banish"
	case EventReturnToHand:
		return "ReturnToHand"
	case EventIntoInkwell:
		return "IntoInkwell"
	case EventExile:
		return "Exile"
	case EventDiscard:
		return "Discard"
	case EventOpponentDiscard:
		return "OpponentDiscard"
	case EventLoreGained:
		return "LoreGained"
	case EventLoreLost:
		return "LoreLost"
	case EventReady:
		return "Ready"
	case EventExert:
		return "Exert"
	case EventStatChange:
		return "StatChange"
	case EventKeywordGranted:
		return "KeywordGranted"
	case EventAbilityTriggered:
		return "AbilityTriggered"
	case EventAbilityActivated:
		return "AbilityActivated"
	case EventAbilityError:
		return "AbilityError"
	case EventUnparsedAbility:
		return "UnparsedAbility"
	case EventEffectExpired:
		return "EffectExpired"
	case EventPlayRestricted:
		return "PlayRestricted"
	case EventBoost:
		return "Boost"
	case EventShuffle:
		return "Shuffle"
	case EventWin:
		return "Win"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a match.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based)
	Player  int       // acting player (0 or 1)
	Kind    EventKind // event kind
	Card    string    // card name (if applicable)
	Details string    // human-readable detail string
}
