// Package net exposes a match over websockets: JSON state views, the
// choice protocol and a two-seat match server.
package net

import (
	"encoding/json"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/game"
	"github.com/calebmorrow/loreduel/internal/log"
)

// Message types, client to server.
const (
	MsgJoin    = "join"
	MsgAction  = "action"
	MsgChoice  = "choice"
	MsgConfirm = "confirm"
)

// Message types, server to client.
const (
	MsgWelcome       = "welcome"
	MsgState         = "state"
	MsgActionRequest = "action_request"
	MsgChoiceRequest = "choice_request"
	MsgConfirmAsk    = "confirm_request"
	MsgEvent         = "event"
	MsgResult        = "result"
	MsgError         = "error"
)

// Message is the wire envelope. Exactly one payload field is set, matching
// Type.
type Message struct {
	Type string `json:"type"`

	Join    *JoinPayload         `json:"join,omitempty"`
	Action  *ActionPayload       `json:"action,omitempty"`
	Choice  *game.ChoiceResponse `json:"choice,omitempty"`
	Confirm *ConfirmPayload      `json:"confirm,omitempty"`

	Seat          int                 `json:"seat,omitempty"`
	State         *GameView           `json:"state,omitempty"`
	Actions       []ActionView        `json:"actions,omitempty"`
	ChoiceRequest *game.ChoiceRequest `json:"choiceRequest,omitempty"`
	Prompt        string              `json:"prompt,omitempty"`
	Event         string              `json:"event,omitempty"`
	Winner        int                 `json:"winner,omitempty"`
	Reason        string              `json:"reason,omitempty"`
	Error         string              `json:"error,omitempty"`
}

type JoinPayload struct {
	Name string `json:"name"`
	Deck string `json:"deck"`
}

// ActionPayload mirrors game.Action for the wire.
type ActionPayload struct {
	Index int `json:"index"` // index into the offered action list
	// Targets optionally pre-names effect targets for play and sing
	// actions; the engine validates them like a prompted choice but skips
	// the round trip.
	Targets []game.InstanceID `json:"targets,omitempty"`
}

type ConfirmPayload struct {
	Yes bool `json:"yes"`
}

// ActionView is one offered action, rendered for the client.
type ActionView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// CardView is the client-visible state of one card instance.
type CardView struct {
	ID        game.InstanceID `json:"id"`
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Cost      int             `json:"cost"`
	Strength  int             `json:"strength"`
	Willpower int             `json:"willpower"`
	Lore      int             `json:"lore"`
	Damage    int             `json:"damage"`
	Exerted   bool            `json:"exerted"`
	Keywords  []string        `json:"keywords,omitempty"`
	Text      string          `json:"text,omitempty"`
}

// PlayerView is one side of the board. Hidden zones are counts; the
// viewer's own hand is listed in full.
type PlayerView struct {
	Name      string     `json:"name"`
	Lore      int        `json:"lore"`
	DeckCount int        `json:"deckCount"`
	HandCount int        `json:"handCount"`
	Hand      []CardView `json:"hand,omitempty"`
	Play      []CardView `json:"play"`
	InkReady  int        `json:"inkReady"`
	InkTotal  int        `json:"inkTotal"`
	Discard   []CardView `json:"discard"`
}

// GameView is a full snapshot from one player's perspective.
type GameView struct {
	Turn    int           `json:"turn"`
	Active  int           `json:"active"`
	You     int           `json:"you"`
	Players [2]PlayerView `json:"players"`
}

func cardView(g *game.Game, id game.InstanceID) CardView {
	ci := g.Card(id)
	if ci == nil {
		return CardView{ID: id}
	}
	return CardView{
		ID:        ci.ID,
		Name:      ci.Def.Name,
		Type:      ci.Def.Type.String(),
		Cost:      ci.BaseCost,
		Strength:  ci.Strength(),
		Willpower: ci.Willpower(),
		Lore:      ci.Lore(),
		Damage:    ci.Damage,
		Exerted:   ci.Exerted,
		Keywords:  keywordNames(ci),
		Text:      ci.Def.Text,
	}
}

func cardViews(g *game.Game, ids []game.InstanceID) []CardView {
	out := make([]CardView, 0, len(ids))
	for _, id := range ids {
		out = append(out, cardView(g, id))
	}
	return out
}

// BuildGameView snapshots the game as seen by the viewer seat.
func BuildGameView(g *game.Game, viewer int) *GameView {
	view := &GameView{Turn: g.Turn, Active: g.Active, You: viewer}
	for p := 0; p < 2; p++ {
		pl := g.Players[p]
		pv := PlayerView{
			Name:      pl.Name,
			Lore:      pl.Lore,
			DeckCount: len(pl.Deck),
			HandCount: len(pl.Hand),
			Play:      cardViews(g, pl.Play),
			InkReady:  pl.ReadyInk(g),
			InkTotal:  len(pl.Inkwell),
			Discard:   cardViews(g, pl.Discard),
		}
		if p == viewer {
			pv.Hand = cardViews(g, pl.Hand)
		}
		view.Players[p] = pv
	}
	return view
}

// BuildActionViews renders an offered action list.
func BuildActionViews(g *game.Game, actions []game.Action) []ActionView {
	out := make([]ActionView, len(actions))
	for i, a := range actions {
		out[i] = ActionView{Index: i, Kind: a.Kind.String(), Text: describeAction(g, a)}
	}
	return out
}

func describeAction(g *game.Game, a game.Action) string {
	name := func(id game.InstanceID) string {
		if ci := g.Card(id); ci != nil {
			return ci.Def.Name
		}
		return "?"
	}
	switch a.Kind {
	case game.ActionEndTurn:
		return "End turn"
	case game.ActionInk:
		return "Ink " + name(a.CardID)
	case game.ActionPlay:
		return "Play " + name(a.CardID)
	case game.ActionSing:
		return "Sing " + name(a.CardID) + " with " + name(a.SingerID)
	case game.ActionQuest:
		return "Quest with " + name(a.CardID)
	case game.ActionChallenge:
		return "Challenge " + name(a.TargetID) + " with " + name(a.CardID)
	case game.ActionActivate:
		ci := g.Card(a.CardID)
		label := name(a.CardID)
		if ci != nil && a.AbilityIndex < len(ci.Def.Abilities) {
			if n := ci.Def.Abilities[a.AbilityIndex].Name; n != "" {
				label += ": " + n
			}
		}
		return "Activate " + label
	default:
		return a.String()
	}
}

// EncodeEvent renders a log event as its wire line.
func EncodeEvent(e log.GameEvent) string {
	return log.FormatEvent(e)
}

// keywordNames lists a card's effective keywords for display.
func keywordNames(ci *game.CardInstance) []string {
	var out []string
	for kw := ability.KeywordEvasive; kw <= ability.KeywordSinger; kw++ {
		if ci.HasKeyword(kw) {
			out = append(out, kw.String())
		}
	}
	return out
}

// Marshal encodes a message for the wire.
func Marshal(m *Message) ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal decodes a wire message.
func Unmarshal(data []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
