package game

import (
	"context"
	"testing"

	"github.com/calebmorrow/loreduel/internal/log"
)

func buildBotDeck(g *Game, player int) {
	defs := []*Card{
		vanilla("Pathfinder", 1, 1, 2, 1),
		vanilla("Sellsword", 2, 2, 2, 1),
		makeChar("Skirmisher", 2, 2, 1, 1, "Rush"),
		makeChar("Sky Dancer", 3, 2, 2, 2, "Evasive"),
		makeChar("Shieldmate", 3, 2, 4, 1, "Bodyguard"),
		makeChar("Bannerman", 3, 2, 3, 1, "Your other characters get +1 strength."),
		makeChar("Chronicler", 3, 1, 3, 1, "Whenever this character quests, you may pay 2 Ink to draw a card."),
		makeChar("Avenger", 4, 3, 3, 2, "When this character is banished, draw a card."),
		vanilla("Vanguard", 4, 4, 4, 2),
		vanilla("Colossus", 6, 6, 6, 3),
	}
	for i := 0; i < 3; i++ {
		for _, d := range defs {
			g.AddToDeck(player, d)
		}
	}
}

func TestFullBotGameTerminates(t *testing.T) {
	logger := log.NewMemoryLogger()
	g := NewGame(logger, NewBot(), NewBot(), 7)
	buildBotDeck(g, 0)
	buildBotDeck(g, 1)
	g.Start()

	winner, err := g.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if winner != 0 && winner != 1 {
		t.Fatalf("winner = %d", winner)
	}
	if len(logger.EventsOfKind(log.EventWin)) != 1 {
		t.Errorf("want exactly one win event")
	}
	assertZoneConservation(t, g)
}

func TestBotGameDeterministicForSeed(t *testing.T) {
	play := func() []log.GameEvent {
		logger := log.NewMemoryLogger()
		g := NewGame(logger, NewBot(), NewBot(), 99)
		buildBotDeck(g, 0)
		buildBotDeck(g, 1)
		g.Start()
		if _, err := g.Run(context.Background(), 100); err != nil {
			t.Fatalf("run: %v", err)
		}
		return logger.Events()
	}
	a, b := play(), play()
	if len(a) != len(b) {
		t.Fatalf("event counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Details != b[i].Details {
			t.Fatalf("event %d differs:\n%s\n%s", i, a[i].Details, b[i].Details)
		}
	}
}

func TestFirstPlayerSkipsFirstDraw(t *testing.T) {
	logger := log.NewMemoryLogger()
	g := NewGame(logger, &ScriptedChooser{}, &ScriptedChooser{}, 1)
	for i := 0; i < 10; i++ {
		g.AddToDeck(0, vanilla("A", 1, 1, 1, 1))
		g.AddToDeck(1, vanilla("B", 1, 1, 1, 1))
	}
	g.Start()

	if err := g.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn 1: %v", err)
	}
	if len(g.Players[0].Hand) != 7 {
		t.Errorf("P1 hand = %d, want 7 (no draw on the first turn)", len(g.Players[0].Hand))
	}
	if err := g.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if len(g.Players[1].Hand) != 8 {
		t.Errorf("P2 hand = %d, want 8", len(g.Players[1].Hand))
	}
}

func TestTurnStartReadiesBoardAndInk(t *testing.T) {
	logger := log.NewMemoryLogger()
	g := NewGame(logger, &ScriptedChooser{}, &ScriptedChooser{}, 1)
	for i := 0; i < 10; i++ {
		g.AddToDeck(0, vanilla("A", 1, 1, 1, 1))
		g.AddToDeck(1, vanilla("B", 1, 1, 1, 1))
	}
	g.Start()
	if err := g.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn 1: %v", err)
	}

	ci := putInPlay(t, g, 0, vanilla("Tired", 2, 2, 2, 1))
	ci.Exerted = true
	giveInk(t, g, 0, 2)
	for _, id := range g.Players[0].Inkwell {
		g.Card(id).Exerted = true
	}

	// P2's turn passes, then P1's turn readies everything.
	if err := g.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn 2: %v", err)
	}
	if err := g.RunTurn(context.Background()); err != nil {
		t.Fatalf("turn 3: %v", err)
	}
	if ci.Exerted {
		t.Error("character should ready at turn start")
	}
	if g.Players[0].ReadyInk(g) != 2 {
		t.Errorf("ready ink = %d, want 2", g.Players[0].ReadyInk(g))
	}
}
