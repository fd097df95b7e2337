package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging game events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	return l.events
}

// EventsOfKind returns all events matching the given kind.
func (l *MemoryLogger) EventsOfKind(k EventKind) []GameEvent {
	var result []GameEvent
	for _, e := range l.events {
		if e.Kind == k {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// playerName returns "P1" or "P2" for display.
func playerName(p int) string {
	return fmt.Sprintf("P%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	return fmt.Sprintf("T%-2d %-18s| %s", e.Turn, e.Kind, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewTurnEvent(turn, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventNewTurn,
		Details: fmt.Sprintf("=== Turn %d (%s) ===", turn, playerName(player)),
	}
}

func NewTurnEndEvent(turn, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventTurnEnd,
		Details: fmt.Sprintf("%s ends their turn", playerName(player)),
	}
}

func NewDrawEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("%s draws %s", playerName(player), cardName),
	}
}

func NewInkEvent(turn, player int, cardName string, inkTotal int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventInk,
		Card:    cardName,
		Details: fmt.Sprintf("%s inks %s (%d ink)", playerName(player), cardName, inkTotal),
	}
}

func NewPlayCardEvent(turn, player int, cardName string, cost int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventPlayCard,
		Card:    cardName,
		Details: fmt.Sprintf("%s plays %s (cost %d)", playerName(player), cardName, cost),
	}
}

func NewQuestEvent(turn, player int, cardName string, lore, total int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventQuest,
		Card:    cardName,
		Details: fmt.Sprintf("%s quests with %s (+%d lore, %d total)", playerName(player), cardName, lore, total),
	}
}

func NewChallengeEvent(turn, player int, attacker, defender string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventChallenge,
		Card:    attacker,
		Details: fmt.Sprintf("%s challenges: %s → %s", playerName(player), attacker, defender),
	}
}

func NewDamageEvent(turn, player int, cardName string, amount, total int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventDamage,
		Card:    cardName,
		Details: fmt.Sprintf("%s takes %d damage (%d total)", cardName, amount, total),
	}
}

func NewHealEvent(turn, player int, cardName string, amount int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventHeal,
		Card:    cardName,
		Details: fmt.Sprintf("%s heals %d damage", cardName, amount),
	}
}

func NewBanishEvent(turn, player int, cardName, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventBanish,
		Card:    cardName,
		Details: fmt.Sprintf("%s is banished (%s)", cardName, reason),
	}
}

func NewReturnToHandEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventReturnToHand,
		Card:    cardName,
		Details: fmt.Sprintf("%s is returned to %s's hand", cardName, playerName(player)),
	}
}

func NewIntoInkwellEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventIntoInkwell,
		Card:    cardName,
		Details: fmt.Sprintf("%s is put into %s's inkwell", cardName, playerName(player)),
	}
}

func NewExileEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventExile,
		Card:    cardName,
		Details: fmt.Sprintf("%s is exiled", cardName),
	}
}

func NewDiscardEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("%s discards %s", playerName(player), cardName),
	}
}

func NewOpponentDiscardEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventOpponentDiscard,
		Card:    cardName,
		Details: fmt.Sprintf("%s discards %s to an opposing effect", playerName(player), cardName),
	}
}

func NewLoreGainedEvent(turn, player int, amount, total int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventLoreGained,
		Details: fmt.Sprintf("%s gains %d lore (%d total)", playerName(player), amount, total),
	}
}

func NewLoreLostEvent(turn, player int, amount, total int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventLoreLost,
		Details: fmt.Sprintf("%s loses %d lore (%d total)", playerName(player), amount, total),
	}
}

func NewReadyEvent(turn, player int, cardName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventReady,
		Card:    cardName,
		Details: fmt.Sprintf("%s readies", cardName),
	}
}

func NewExertEvent(turn, player int, cardName, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventExert,
		Card:    cardName,
		Details: fmt.Sprintf("%s is exerted (%s)", cardName, reason),
	}
}

func NewStatChangeEvent(turn, player int, cardName, stat string, amount int) GameEvent {
	sign := "+"
	if amount < 0 {
		sign = ""
	}
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventStatChange,
		Card:    cardName,
		Details: fmt.Sprintf("%s gets %s%d %s", cardName, sign, amount, stat),
	}
}

func NewKeywordGrantedEvent(turn, player int, cardName, keyword string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventKeywordGranted,
		Card:    cardName,
		Details: fmt.Sprintf("%s gains %s", cardName, keyword),
	}
}

func NewAbilityTriggeredEvent(turn, player int, cardName, abilityName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventAbilityTriggered,
		Card:    cardName,
		Details: fmt.Sprintf("%s triggers %s", cardName, abilityName),
	}
}

func NewAbilityActivatedEvent(turn, player int, cardName, abilityName string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventAbilityActivated,
		Card:    cardName,
		Details: fmt.Sprintf("%s activates %s of %s", playerName(player), abilityName, cardName),
	}
}

func NewAbilityErrorEvent(turn, player int, cardName, abilityName string, err error) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventAbilityError,
		Card:    cardName,
		Details: fmt.Sprintf("%s (%s) failed to resolve: %v", abilityName, cardName, err),
	}
}

func NewUnparsedAbilityEvent(cardName, text string) GameEvent {
	return GameEvent{
		Kind:    EventUnparsedAbility,
		Card:    cardName,
		Details: fmt.Sprintf("%s has unparsed ability text: %q", cardName, text),
	}
}

func NewEffectExpiredEvent(turn, player int, desc string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventEffectExpired,
		Details: fmt.Sprintf("effect expires: %s", desc),
	}
}

func NewPlayRestrictedEvent(turn, player int, cardName, source string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventPlayRestricted,
		Card:    cardName,
		Details: fmt.Sprintf("%s can't play %s (%s)", playerName(player), cardName, source),
	}
}

func NewBoostEvent(turn, player int, cardName string, count int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventBoost,
		Card:    cardName,
		Details: fmt.Sprintf("%s stacks %d card(s) beneath %s", playerName(player), count, cardName),
	}
}

func NewShuffleEvent(turn, player int) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  player,
		Kind:    EventShuffle,
		Details: fmt.Sprintf("%s shuffled their deck", playerName(player)),
	}
}

func NewWinEvent(turn, winner int, reason string) GameEvent {
	return GameEvent{
		Turn:    turn,
		Player:  winner,
		Kind:    EventWin,
		Details: fmt.Sprintf("%s wins! (%s)", playerName(winner), reason),
	}
}
