package mcp

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/calebmorrow/loreduel/internal/carddata"
	"github.com/calebmorrow/loreduel/internal/game"
)

// activeSession is the singleton game session (one per stdio process).
var activeSession *GameSession

// catalog backs every session, set by main.
var catalog *carddata.Catalog

// SetCatalog installs the card catalog used by start_game.
func SetCatalog(c *carddata.Catalog) {
	catalog = c
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(listDecksTool(), handleListDecks)
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(takeActionTool(), handleTakeAction)
	s.AddTool(resolveChoiceTool(), handleResolveChoice)
	s.AddTool(answerConfirmTool(), handleAnswerConfirm)
	s.AddTool(getGameStateTool(), handleGetGameState)
}

// --- Tool definitions ---

func listDecksTool() mcp.Tool {
	return mcp.NewTool("list_decks",
		mcp.WithDescription("List the prebuilt deck names available to start_game."),
	)
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new match against the built-in bot. Returns the initial state and the first pending decision."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Deck name for the agent (see list_decks)")),
		mcp.WithString("bot_deck", mcp.Description("Deck name for the bot; defaults to the agent's deck")),
		mcp.WithNumber("seat", mcp.Description("Which seat the agent takes: 0 = goes first (default), 1 = goes second")),
		mcp.WithNumber("seed", mcp.Description("RNG seed for shuffles; 0 picks an arbitrary seed")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the pending action list. Use when the pending decision type is 'choose_action'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the actions list")),
		mcp.WithString("targets", mcp.Description("Space-separated card instance ids pre-naming the effect targets of a play or sing action; leave empty to be prompted per effect")),
	)
}

func resolveChoiceTool() mcp.Tool {
	return mcp.NewTool("resolve_choice",
		mcp.WithDescription("Answer the pending choice request. Use when the pending decision type is 'resolve_choice'. "+
			"Pick only options marked valid; invalid ones are listed with the reason they cannot be chosen."),
		mcp.WithString("indices", mcp.Description("Space-separated 0-based indices into the options list (e.g. '0 2')")),
		mcp.WithBoolean("decline", mcp.Description("Decline the whole choice instead of picking; only legal when the request allows it")),
	)
}

func answerConfirmTool() mcp.Tool {
	return mcp.NewTool("answer_confirm",
		mcp.WithDescription("Answer a yes/no question ('you may ...'). Use when the pending decision type is 'confirm'."),
		mcp.WithBoolean("yes", mcp.Required(), mcp.Description("true to accept, false to decline")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current state snapshot, accumulated events and pending decision without answering. Read-only."),
	)
}

// --- Tool handlers ---

func handleListDecks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if catalog == nil {
		return mcp.NewToolResultError("No catalog loaded."), nil
	}
	return mcp.NewToolResultText(strings.Join(catalog.DeckNames(), "\n")), nil
}

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}
	if catalog == nil {
		return mcp.NewToolResultError("No catalog loaded."), nil
	}

	deck := request.GetString("deck", "")
	botDeck := request.GetString("bot_deck", deck)
	seat := request.GetInt("seat", 0)
	seed := int64(request.GetInt("seed", 0))
	if seat != 0 && seat != 1 {
		return mcp.NewToolResultError("seat must be 0 or 1"), nil
	}
	if seed == 0 {
		seed = 1
	}

	sess, err := NewGameSession(catalog, deck, botDeck, seat, seed)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	activeSession = sess

	return mcp.NewToolResultText(respondJSON(sess.waitForPending())), nil
}

func handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOfType(DecisionChooseAction)
	if errResult != nil {
		return errResult, nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}
	var targets []game.InstanceID
	for _, p := range strings.Fields(request.GetString("targets", "")) {
		id, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid target id '%s': must be an integer.", p), nil
		}
		targets = append(targets, game.InstanceID(id))
	}

	sess.agent.responseCh <- actionResponse{Index: index, Targets: targets}
	return finish(sess), nil
}

func handleResolveChoice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, pending, errResult := pendingOfType(DecisionResolveChoice)
	if errResult != nil {
		return errResult, nil
	}
	req := pending.Choice

	if request.GetBool("decline", false) {
		if !req.AllowDecline {
			return mcp.NewToolResultError("This choice cannot be declined."), nil
		}
		sess.agent.responseCh <- choiceResponse{Resp: &game.ChoiceResponse{RequestID: req.ID, Declined: true}}
		return finish(sess), nil
	}

	var chosen []game.InstanceID
	seen := make(map[int]bool)
	for _, p := range strings.Fields(request.GetString("indices", "")) {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return mcp.NewToolResultErrorf("Invalid index '%s': must be an integer.", p), nil
		}
		if idx < 0 || idx >= len(req.Options) {
			return mcp.NewToolResultErrorf("Index %d out of range. Must be 0-%d.", idx, len(req.Options)-1), nil
		}
		if seen[idx] {
			return mcp.NewToolResultErrorf("Index %d listed twice.", idx), nil
		}
		seen[idx] = true
		opt := req.Options[idx]
		if !opt.Valid {
			return mcp.NewToolResultErrorf("Option %d (%s) is not selectable: %s", idx, opt.Label, opt.Reason), nil
		}
		chosen = append(chosen, opt.EntityID)
	}
	if len(chosen) < req.Min || len(chosen) > req.Max {
		return mcp.NewToolResultErrorf("Must select between %d and %d option(s), got %d.", req.Min, req.Max, len(chosen)), nil
	}

	sess.agent.responseCh <- choiceResponse{Resp: &game.ChoiceResponse{RequestID: req.ID, Chosen: chosen}}
	return finish(sess), nil
}

func handleAnswerConfirm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess, _, errResult := pendingOfType(DecisionConfirm)
	if errResult != nil {
		return errResult, nil
	}

	sess.agent.responseCh <- confirmResponse{Yes: request.GetBool("yes", false)}
	return finish(sess), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}
	sess := activeSession

	sess.mu.Lock()
	gameOver := sess.gameOver
	winner := sess.winner
	result := sess.result
	sess.mu.Unlock()

	resp := &ToolResponse{
		Events:   sess.drainEvents(),
		GameOver: gameOver,
		Winner:   winner,
		Result:   result,
	}
	if pending := sess.currentPending; pending != nil {
		resp.State = pending.State
		if pending.Type != DecisionGameOver {
			resp.Pending = &PendingView{
				Type:    pending.Type,
				Actions: pending.Actions,
				Choice:  pending.Choice,
				Prompt:  pending.Prompt,
			}
		}
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// pendingOfType checks that a session is running and its pending decision
// matches the tool being called.
func pendingOfType(want DecisionType) (*GameSession, *PendingDecision, *mcp.CallToolResult) {
	if activeSession == nil {
		return nil, nil, mcp.NewToolResultError("No game is running. Use start_game first.")
	}
	sess := activeSession
	pending := sess.currentPending
	if pending == nil {
		return nil, nil, mcp.NewToolResultError("No pending decision.")
	}
	if pending.Type == DecisionGameOver {
		return nil, nil, mcp.NewToolResultError("The game is over. Use start_game for a new match.")
	}
	if pending.Type != want {
		return nil, nil, mcp.NewToolResultErrorf("Wrong tool: pending decision is '%s', not '%s'.", pending.Type, want)
	}
	return sess, pending, nil
}

// finish waits for the engine's next decision and clears the session if the
// game ended.
func finish(sess *GameSession) *mcp.CallToolResult {
	resp := sess.waitForPending()
	if resp.GameOver {
		activeSession = nil
	}
	return mcp.NewToolResultText(respondJSON(resp))
}
