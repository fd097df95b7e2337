// Package carddata loads the embedded card catalog and prebuilt decks.
// Ability text is parsed once at load; the same definitions back every game.
package carddata

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calebmorrow/loreduel/internal/ability"
	"github.com/calebmorrow/loreduel/internal/game"
)

//go:embed cards.yaml
var cardsYAML []byte

//go:embed decks.yaml
var decksYAML []byte

type cardSpec struct {
	Name      string   `yaml:"name"`
	Type      string   `yaml:"type"`
	Subtypes  []string `yaml:"subtypes"`
	Cost      int      `yaml:"cost"`
	Inkable   bool     `yaml:"inkable"`
	Strength  int      `yaml:"strength"`
	Willpower int      `yaml:"willpower"`
	Lore      int      `yaml:"lore"`
	Text      string   `yaml:"text"`
}

type deckSpec struct {
	Name  string `yaml:"name"`
	Cards []struct {
		Name  string `yaml:"name"`
		Count int    `yaml:"count"`
	} `yaml:"cards"`
}

// Catalog is the loaded card set plus deck lists.
type Catalog struct {
	byName map[string]*game.Card
	decks  map[string][]string // deck name -> expanded card names
}

// Load parses the embedded catalog. It fails on malformed YAML, duplicate
// names, unknown card types or decks referencing missing cards; unparsed
// ability text is allowed (the card plays as a vanilla) and is reported by
// UnparsedTexts instead.
func Load() (*Catalog, error) {
	var specs []cardSpec
	if err := yaml.Unmarshal(cardsYAML, &specs); err != nil {
		return nil, fmt.Errorf("cards.yaml: %w", err)
	}
	c := &Catalog{
		byName: make(map[string]*game.Card, len(specs)),
		decks:  make(map[string][]string),
	}
	for _, s := range specs {
		if _, dup := c.byName[s.Name]; dup {
			return nil, fmt.Errorf("cards.yaml: duplicate card %q", s.Name)
		}
		t, err := cardType(s.Type)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", s.Name, err)
		}
		def := &game.Card{
			Name:      s.Name,
			Type:      t,
			Subtypes:  s.Subtypes,
			Cost:      s.Cost,
			Inkable:   s.Inkable,
			Strength:  s.Strength,
			Willpower: s.Willpower,
			Lore:      s.Lore,
			Text:      strings.TrimSpace(s.Text),
		}
		def.Abilities = ability.Parse(def.Text, def.Meta())
		c.byName[s.Name] = def
	}

	var decks []deckSpec
	if err := yaml.Unmarshal(decksYAML, &decks); err != nil {
		return nil, fmt.Errorf("decks.yaml: %w", err)
	}
	for _, d := range decks {
		var names []string
		for _, entry := range d.Cards {
			if _, ok := c.byName[entry.Name]; !ok {
				return nil, fmt.Errorf("deck %q: unknown card %q", d.Name, entry.Name)
			}
			for i := 0; i < entry.Count; i++ {
				names = append(names, entry.Name)
			}
		}
		c.decks[d.Name] = names
	}
	return c, nil
}

func cardType(s string) (ability.CardType, error) {
	switch s {
	case "character":
		return ability.CardTypeCharacter, nil
	case "action":
		return ability.CardTypeAction, nil
	case "item":
		return ability.CardTypeItem, nil
	default:
		return ability.CardTypeAny, fmt.Errorf("unknown card type %q", s)
	}
}

// Get returns a card definition by name.
func (c *Catalog) Get(name string) (*game.Card, bool) {
	def, ok := c.byName[name]
	return def, ok
}

// Names returns all card names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DeckNames returns all deck names, sorted.
func (c *Catalog) DeckNames() []string {
	names := make([]string, 0, len(c.decks))
	for n := range c.decks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BuildDeck adds a named deck's cards to the player's deck zone.
func (c *Catalog) BuildDeck(g *game.Game, player int, deckName string) error {
	names, ok := c.decks[deckName]
	if !ok {
		return fmt.Errorf("unknown deck %q", deckName)
	}
	for _, name := range names {
		g.AddToDeck(player, c.byName[name])
	}
	return nil
}

// UnparsedTexts reports every catalog ability block the parser rejected,
// keyed "card: text". A lint for set editors; the engine itself treats
// unparsed blocks as inert.
func (c *Catalog) UnparsedTexts() []string {
	var out []string
	for _, name := range c.Names() {
		def := c.byName[name]
		for _, a := range def.Abilities {
			if a.Unparsed {
				out = append(out, fmt.Sprintf("%s: %s", name, a.RawText))
			}
		}
	}
	return out
}
