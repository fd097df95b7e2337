package net

import (
	"testing"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/game"
	"github.com/calebmorrow/loreduel/internal/log"
)

func viewTestGame(t *testing.T) *game.Game {
	t.Helper()
	g := game.NewGame(log.NewMemoryLogger(), game.NewBot(), game.NewBot(), 7)

	hero := &game.Card{Name: "Hero", Type: ability.CardTypeCharacter, Cost: 3, Strength: 2, Willpower: 3, Lore: 1}
	scout := &game.Card{Name: "Scout", Type: ability.CardTypeCharacter, Cost: 1, Strength: 1, Willpower: 1, Lore: 1,
		Text: "Evasive (Only characters with Evasive can challenge this character.)"}
	scout.Abilities = ability.Parse(scout.Text, scout.Meta())

	h := g.AddToDeck(0, hero)
	if err := g.MoveCard(h.ID, game.ZonePlay); err != nil {
		t.Fatal(err)
	}
	s := g.AddToDeck(1, scout)
	if err := g.MoveCard(s.ID, game.ZonePlay); err != nil {
		t.Fatal(err)
	}
	inHand := g.AddToDeck(0, hero)
	if err := g.MoveCard(inHand.ID, game.ZoneHand); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGameViewHidesOpponentHand(t *testing.T) {
	g := viewTestGame(t)

	v := BuildGameView(g, 1)
	if v.You != 1 {
		t.Fatalf("You = %d, want 1", v.You)
	}
	if len(v.Players[0].Hand) != 0 {
		t.Errorf("opponent hand listed: %v", v.Players[0].Hand)
	}
	if v.Players[0].HandCount != 1 {
		t.Errorf("opponent hand count = %d, want 1", v.Players[0].HandCount)
	}

	own := BuildGameView(g, 0)
	if len(own.Players[0].Hand) != 1 || own.Players[0].Hand[0].Name != "Hero" {
		t.Errorf("own hand = %v, want the held Hero", own.Players[0].Hand)
	}
}

func TestCardViewCarriesKeywords(t *testing.T) {
	g := viewTestGame(t)

	v := BuildGameView(g, 0)
	board := v.Players[1].Play
	if len(board) != 1 {
		t.Fatalf("opponent board = %d cards, want 1", len(board))
	}
	if len(board[0].Keywords) != 1 || board[0].Keywords[0] != "Evasive" {
		t.Errorf("keywords = %v, want [Evasive]", board[0].Keywords)
	}
}

func TestActionViewsDescribeActions(t *testing.T) {
	g := viewTestGame(t)
	hero := g.Players[0].Play[0]

	views := BuildActionViews(g, []game.Action{
		{Kind: game.ActionQuest, CardID: hero},
		{Kind: game.ActionEndTurn},
	})
	if views[0].Text != "Quest with Hero" {
		t.Errorf("quest text = %q", views[0].Text)
	}
	if views[1].Index != 1 || views[1].Text != "End turn" {
		t.Errorf("end turn view = %+v", views[1])
	}
}

func TestMessageRoundTrip(t *testing.T) {
	m := &Message{Type: MsgAction, Action: &ActionPayload{Index: 3, Targets: []game.InstanceID{7, 9}}}
	data, err := Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != MsgAction || got.Action == nil || got.Action.Index != 3 {
		t.Errorf("round trip = %+v", got)
	}
	if len(got.Action.Targets) != 2 || got.Action.Targets[0] != 7 || got.Action.Targets[1] != 9 {
		t.Errorf("targets = %v, want [7 9]", got.Action.Targets)
	}
}
