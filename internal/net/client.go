package net

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/coder/websocket"

	"github.com/calebmorrow/loreduel/internal/game"
)

// Client connects to a match server and provides a terminal REPL.
type Client struct {
	ws   *websocket.Conn
	seat int
}

// Connect dials a server, joins with the given name and deck, and runs the
// REPL until the match ends.
func Connect(ctx context.Context, addr, name, deck string) error {
	ws, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer ws.Close(websocket.StatusNormalClosure, "done")

	c := &Client{ws: ws}
	if err := c.send(&Message{Type: MsgJoin, Join: &JoinPayload{Name: name, Deck: deck}}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Println("Connected. Waiting for an opponent...")
	return c.runREPL(ctx)
}

func (c *Client) send(m *Message) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return c.ws.Write(context.Background(), websocket.MessageText, data)
}

func (c *Client) runREPL(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			return fmt.Errorf("read message: %w", err)
		}
		m, err := Unmarshal(data)
		if err != nil {
			return fmt.Errorf("decode message: %w", err)
		}

		switch m.Type {
		case MsgWelcome:
			c.seat = m.Seat
			fmt.Printf("You are player %d.\n", m.Seat)

		case MsgEvent:
			fmt.Println(m.Event)

		case MsgState:
			c.renderState(m.State)

		case MsgActionRequest:
			c.renderActions(m.Actions)
			idx := readNumber(reader, len(m.Actions))
			if err := c.send(&Message{Type: MsgAction, Action: &ActionPayload{Index: idx}}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case MsgChoiceRequest:
			resp := c.readChoice(reader, m.ChoiceRequest)
			if err := c.send(&Message{Type: MsgChoice, Choice: resp}); err != nil {
				return fmt.Errorf("send choice: %w", err)
			}

		case MsgConfirmAsk:
			fmt.Printf("\n%s (y/n): ", m.Prompt)
			yes := readYesNo(reader)
			if err := c.send(&Message{Type: MsgConfirm, Confirm: &ConfirmPayload{Yes: yes}}); err != nil {
				return fmt.Errorf("send confirm: %w", err)
			}

		case MsgResult:
			fmt.Println()
			if m.Winner == c.seat {
				fmt.Println("You win!")
			} else {
				fmt.Println("You lose.")
			}
			return nil

		case MsgError:
			fmt.Printf("server: %s\n", m.Error)
		}
	}
}

func (c *Client) renderState(v *GameView) {
	if v == nil {
		return
	}
	opp := v.Players[1-v.You]
	you := v.Players[v.You]

	fmt.Println()
	fmt.Printf("=== Turn %d", v.Turn)
	if v.Active == v.You {
		fmt.Print(" (your turn)")
	}
	fmt.Println(" ===")
	fmt.Printf("%s: %d lore, hand %d, deck %d, ink %d/%d\n",
		opp.Name, opp.Lore, opp.HandCount, opp.DeckCount, opp.InkReady, opp.InkTotal)
	renderBoard("  ", opp.Play)
	fmt.Println("---")
	renderBoard("  ", you.Play)
	fmt.Printf("%s: %d lore, deck %d, ink %d/%d\n",
		you.Name, you.Lore, you.DeckCount, you.InkReady, you.InkTotal)
	if len(you.Hand) > 0 {
		fmt.Print("Hand: ")
		for i, cv := range you.Hand {
			fmt.Printf("[%d] %s (%d)  ", i+1, cv.Name, cv.Cost)
		}
		fmt.Println()
	}
}

func renderBoard(indent string, cards []CardView) {
	for _, cv := range cards {
		state := ""
		if cv.Exerted {
			state = " exerted"
		}
		if cv.Damage > 0 {
			state += fmt.Sprintf(" %d dmg", cv.Damage)
		}
		kw := ""
		if len(cv.Keywords) > 0 {
			kw = " [" + strings.Join(cv.Keywords, ", ") + "]"
		}
		fmt.Printf("%s%s %d/%d L%d%s%s\n", indent, cv.Name, cv.Strength, cv.Willpower, cv.Lore, state, kw)
	}
}

func (c *Client) renderActions(actions []ActionView) {
	fmt.Println("\nActions:")
	for _, a := range actions {
		fmt.Printf("  %d) %s\n", a.Index+1, a.Text)
	}
}

// readChoice renders a choice request and reads a legal answer. Invalid
// options are shown with their reason but cannot be picked.
func (c *Client) readChoice(reader *bufio.Reader, req *game.ChoiceRequest) *game.ChoiceResponse {
	fmt.Printf("\n%s (select %d", req.Prompt, req.Min)
	if req.Max != req.Min {
		fmt.Printf("-%d", req.Max)
	}
	fmt.Print(")")
	if req.AllowDecline {
		fmt.Print(" or 'pass'")
	}
	fmt.Println()
	for i, o := range req.Options {
		if o.Valid {
			fmt.Printf("  %d) %s\n", i+1, o.Label)
		} else {
			fmt.Printf("  -) %s (%s)\n", o.Label, o.Reason)
		}
	}

	for {
		fmt.Print("> ")
		line, _ := reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if req.AllowDecline && (line == "pass" || line == "p") {
			return &game.ChoiceResponse{RequestID: req.ID, Declined: true}
		}

		parts := strings.Fields(line)
		if len(parts) < req.Min || len(parts) > req.Max {
			fmt.Printf("Enter %d-%d numbers separated by spaces\n", req.Min, req.Max)
			continue
		}
		var chosen []game.InstanceID
		ok := true
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > len(req.Options) || !req.Options[n-1].Valid {
				fmt.Println("Pick from the numbered options")
				ok = false
				break
			}
			chosen = append(chosen, req.Options[n-1].EntityID)
		}
		if ok {
			return &game.ChoiceResponse{RequestID: req.ID, Chosen: chosen}
		}
	}
}

func readNumber(reader *bufio.Reader, count int) int {
	for {
		fmt.Print("> ")
		line, _ := reader.ReadString('\n')
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 1 || n > count {
			fmt.Printf("Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1
	}
}

func readYesNo(reader *bufio.Reader) bool {
	for {
		line, _ := reader.ReadString('\n')
		switch strings.TrimSpace(strings.ToLower(line)) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			fmt.Print("Enter y or n: ")
		}
	}
}
