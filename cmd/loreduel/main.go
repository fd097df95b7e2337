package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/calebmorrow/loreduel/internal/carddata"
	"github.com/calebmorrow/loreduel/internal/game"
	"github.com/calebmorrow/loreduel/internal/log"
	lnet "github.com/calebmorrow/loreduel/internal/net"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "sim":
		runSim(os.Args[2:])
	case "decks":
		runDecks()
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  loreduel serve [--addr ADDR]")
	fmt.Println("  loreduel join [--addr URL] [--name NAME] [--deck NAME]")
	fmt.Println("  loreduel sim [--deck1 NAME] [--deck2 NAME] [--seed N] [--turns N]")
	fmt.Println("  loreduel decks")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve   Start a websocket match server; clients join in pairs")
	fmt.Println("  join    Connect to a match server and play in the terminal")
	fmt.Println("  sim     Play two bots against each other, logging to stdout")
	fmt.Println("  decks   List the prebuilt deck names")
}

func loadCatalog() *carddata.Catalog {
	catalog, err := carddata.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return catalog
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":9000", "address to listen on")
	fs.Parse(args)

	catalog := loadCatalog()
	srv := lnet.NewServer(catalog, func() int64 { return rand.Int63() })

	fmt.Printf("listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, srv); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "ws://localhost:9000", "server URL to connect to")
	name := fs.String("name", "player", "display name")
	deck := fs.String("deck", "Emberguard", "deck name (see 'loreduel decks')")
	fs.Parse(args)

	if err := lnet.Connect(context.Background(), *addr, *name, *deck); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSim(args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	deck1 := fs.String("deck1", "Emberguard", "deck for player 0")
	deck2 := fs.String("deck2", "Shadowcourt", "deck for player 1")
	seed := fs.Int64("seed", 0, "RNG seed; 0 uses the clock")
	turns := fs.Int("turns", 200, "turn cap")
	fs.Parse(args)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	catalog := loadCatalog()
	g := game.NewGame(log.NewTextLogger(os.Stdout), game.NewBot(), game.NewBot(), *seed)
	g.Players[0].Name = *deck1
	g.Players[1].Name = *deck2
	if err := catalog.BuildDeck(g, 0, *deck1); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := catalog.BuildDeck(g, 1, *deck2); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	g.Start()

	winner, err := g.Run(context.Background(), *turns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("winner: player %d (%s), %s\n", winner, g.Players[winner].Name, g.Result())
}

func runDecks() {
	catalog := loadCatalog()
	for _, name := range catalog.DeckNames() {
		fmt.Println(name)
	}
}
