package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/inconshreveable/log15/v3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
)

// Server exposes the game service as MCP tools
type Server struct {
	service   service.GameService
	mcpServer *server.MCPServer
	log       log15.Logger
}

// NewServer creates an MCP server backed by svc
func NewServer(svc service.GameService, version string) *Server {
	s := &Server{
		service: svc,
		log:     log15.New("module", "mcp"),
	}

	s.mcpServer = server.NewMCPServer(
		"MiniDungeon",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`MiniDungeon - MCP Interface

GAME OBJECTIVE:
Guide the player (P) through two dungeon levels. Find the ladder (L) on each
level; climbing the ladder on level 2 wins the game. You have 10 HP and 100
steps for the whole run.

AVAILABLE TOOLS:
- create_session: Start a new game (optional preset, difficulty, seed)
- list_sessions / get_session: Inspect running games
- game_state: Map, HP, score and steps
- move: Single move (up/down/left/right) - requires intent explanation
- bulk_move: Up to 50 moves at once - requires intent explanation
- reset_game: Replay the same dungeon from the start
- move_history: View past moves
- list_configs: Available presets
- game_instructions: Full rules and legend
- describe_cell: Details about one grid cell

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	s.registerTools()
	return s
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio blocks serving MCP over stdin/stdout until the client disconnects
func (s *Server) ServeStdio() error {
	s.log.Info("serving MCP over stdio")
	return server.ServeStdio(s.mcpServer)
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	// Session management
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional preset, difficulty and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Preset to use (optional, see list_configs)",
				},
				"difficulty": map[string]interface{}{
					"type":        "integer",
					"minimum":     engine.MinDifficulty,
					"maximum":     engine.MaxDifficulty,
					"description": "Override the preset difficulty (number of ranged mutants on level 1)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Override the preset seed; the same seed always builds the same dungeon",
				},
			},
		},
	}, s.handleCreateSession)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListSessions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, s.handleGetSession)

	// Game operations
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, s.handleGameState)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell in a direction",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, s.handleMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple moves in sequence, stopping at the first blocked move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"up", "down", "left", "right"},
					},
					"maxItems":    engine.MaxBulkMoves,
					"description": "Array of moves",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, s.handleBulkMove)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Restart the session with the same preset and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, s.handleReset)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get move history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest first (asc) or newest first (desc, default)",
				},
			},
			Required: []string{"session_id"},
		},
	}, s.handleMoveHistory)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListConfigs)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleGameInstructions)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell in the grid: wall, item and whether a ranged mutant can shoot at it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell to describe (0-based, 0 is the top)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell to describe (0-based, 0 is the left)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, s.handleDescribeCell)
}

// Argument helpers. JSON numbers arrive as float64 and some clients send
// everything as strings, so values are coerced rather than asserted.

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func stringArg(args map[string]interface{}, key string) string {
	return strings.TrimSpace(cast.ToString(args[key]))
}

func requiredString(args map[string]interface{}, key string) (string, error) {
	v := stringArg(args, key)
	if v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}

// int64Arg returns ok=false when the argument is absent. Strings are always
// decimal: "010" is ten, not octal eight.
func int64Arg(args map[string]interface{}, key string) (int64, bool, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}
	var v int64
	var err error
	if str, isString := raw.(string); isString {
		v, err = strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	} else {
		v, err = cast.ToInt64E(raw)
	}
	if err != nil {
		return 0, false, fmt.Errorf("argument %q must be an integer: %w", key, err)
	}
	return v, true, nil
}

func intArg(args map[string]interface{}, key string) (int, bool, error) {
	v, ok, err := int64Arg(args, key)
	return int(v), ok, err
}

func boolArg(args map[string]interface{}, key string) bool {
	return cast.ToBool(args[key])
}

// Tool handlers

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	req := service.CreateSessionRequest{ConfigName: stringArg(args, "config_name")}

	difficulty, ok, err := intArg(args, "difficulty")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		req.Difficulty = &difficulty
	}
	seed, ok, err := int64Arg(args, "seed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		req.Seed = &seed
	}

	info, err := s.service.CreateSession(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s (difficulty %d, seed %d)\n\n%s",
		info.ID, info.ConfigName, info.GameConfig.Difficulty, info.GameConfig.Seed,
		formatGameState(info.GameState))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessions, err := s.service.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", len(sessions))
	for _, info := range sessions {
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, Level %d, %s)\n",
			info.ID, info.ConfigName, info.CreatedAt.Format("15:04:05"),
			info.GameState.Level, info.GameState.Status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requiredString(arguments(request), "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	info, err := s.service.GetSession(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(info)), nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requiredString(arguments(request), "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.service.GetGameState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(state)), nil
}

func (s *Server) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	direction, err := requiredString(args, "direction")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if intent := stringArg(args, "intent"); intent != "" {
		s.log.Debug("move intent", "session", sessionID, "intent", intent)
	}

	if boolArg(args, "reset") {
		if _, err := s.service.Reset(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := s.service.Move(ctx, sessionID, direction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMoveResult(result)), nil
}

func (s *Server) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args["moves"] == nil {
		return mcp.NewToolResultError("missing required argument \"moves\""), nil
	}
	// a plain string is split on whitespace
	moves, err := cast.ToStringSliceE(args["moves"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("argument \"moves\" must be a list of directions: %v", err)), nil
	}
	if len(moves) == 0 {
		return mcp.NewToolResultError("missing required argument \"moves\""), nil
	}
	if intent := stringArg(args, "intent"); intent != "" {
		s.log.Debug("bulk move intent", "session", sessionID, "intent", intent)
	}

	if boolArg(args, "reset") {
		if _, err := s.service.Reset(ctx, sessionID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := s.service.BulkMove(ctx, sessionID, moves)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, result)), nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := requiredString(arguments(request), "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	state, err := s.service.Reset(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result := fmt.Sprintf("Game reset (seed %d)\n\n%s", state.Seed, formatGameState(state))
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	opts := service.HistoryOptions{Order: stringArg(args, "order")}
	if opts.Page, _, err = intArg(args, "page"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if opts.Limit, _, err = intArg(args, "limit"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	history, err := s.service.GetMoveHistory(ctx, sessionID, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatHistory(history)), nil
}

func (s *Server) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configs, err := s.service.ListConfigs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Difficulty: %d", config.ConfigID, config.Name, config.Description, config.Difficulty)
		if config.Seed != 0 {
			fmt.Fprintf(&b, ", Seed: %d", config.Seed)
		}
		b.WriteString("\n\n")
	}
	return mcp.NewToolResultText(b.String()), nil
}

const instructions = `MiniDungeon - Complete Instructions

GAME OBJECTIVE:
Climb down two dungeon levels. Reach the ladder (L) on level 1 to descend to
level 2, then reach the ladder on level 2 to escape and win.

RESOURCES:
• HP: you start with 10 (the maximum). Reaching 0 HP loses the game.
• Steps: 100 for the whole run. Every successful move costs one step;
  blocked moves are free. Using the last step without winning loses the game.
• Score: collected from gold and defeated mutants.

GRID LEGEND:
• P - Player (your current position)
• # - Wall (impassable). The outer ring of the 10x10 grid is wall.
• . - Empty floor
• E - Entry (where you arrived on this level)
• L - Ladder (descend, or escape from level 2)
• G - Gold (+2 score, picked up)
• H - Health potion (+4 HP up to the maximum, consumed)
• T - Trap (-2 HP, stays armed and hurts every time you step on it)
• M - Melee mutant (-2 HP and +2 score when you fight it, then it is gone)
• R - Ranged mutant (+2 score when you step on it, then it is gone)

RANGED MUTANTS:
After every successful move, each ranged mutant in the same row or column
within 2 cells of your new position fires once. Walls do not block shots.
Each shot hits for 2 HP half of the time. A mutant you step onto still fires
before it is defeated.

LEVELS:
• Level 1 starts at row 9, column 1 (bottom left). Level 2 starts at row 8,
  column 8. HP, score and steps carry over between levels.
• Level 2 raises the difficulty by 2 and adds 2 more ranged mutants on top,
  so it holds four more ranged mutants than level 1 (while space allows).

COORDINATES:
Positions are (row, col), 0-based from the top-left corner. Up decreases the
row, left decreases the column.

API USAGE BEST PRACTICES:
- Use game_state to read the map before planning
- Use describe_cell to check what a cell holds and whether it is under fire
- Use bulk_move (up to 50 moves) for efficient routes; it stops at the first
  blocked move or when the game ends
- reset_game replays the exact same dungeon

Good luck in the dungeon!`

func (s *Server) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

func (s *Server) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, err := requiredString(args, "session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	row, okRow, err := intArg(args, "row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, okCol, err := intArg(args, "col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	state, err := s.service.GetGameState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if row < 0 || row >= engine.GridSize || col < 0 || col >= engine.GridSize {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates (%d,%d) are out of bounds. Grid size is %dx%d (0-%d for both row and col)",
			row, col, engine.GridSize, engine.GridSize, engine.GridSize-1)), nil
	}

	return mcp.NewToolResultText(describeCell(state, engine.Position{Row: row, Col: col})), nil
}

func describeCell(state *engine.GameState, pos engine.Position) string {
	cell := state.Grid[pos.Row][pos.Col]

	var description string
	switch {
	case cell.Wall:
		description = "Wall - IMPASSABLE"
	case cell.Symbol == "":
		description = "Empty floor"
	default:
		kind, _ := engine.ItemBySymbol(cell.Symbol)
		description = itemDescriptions[kind]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cell at position %s:\n", pos)
	b.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(&b, "Character: %s\n", state.Glyph(pos.Row, pos.Col))
	if cell.Item != "" {
		fmt.Fprintf(&b, "Item: %s\n", cell.Item)
	}
	fmt.Fprintf(&b, "Passable: %v\n", !cell.Wall)
	fmt.Fprintf(&b, "Description: %s\n", description)
	fmt.Fprintf(&b, "Distance from player: %d\n", engine.ManhattanDistance(state.Player.Position, pos))
	if pos == state.Player.Position {
		b.WriteString("You are standing here.\n")
	}
	if shooters := rangedThreats(state, pos); shooters > 0 && !cell.Wall {
		fmt.Fprintf(&b, "⚠️ Under fire from %d ranged mutant(s) when you stand here\n", shooters)
	}
	return b.String()
}

var itemDescriptions = map[engine.ItemKind]string{
	engine.Entry:        "Entry point of this level",
	engine.Ladder:       "Ladder - descend to the next level, or escape from the last one",
	engine.Gold:         "Gold - +2 score, picked up",
	engine.HealthPotion: "Health potion - restores up to 4 HP",
	engine.Trap:         "Trap - costs 2 HP every time you step here",
	engine.MeleeMutant:  "Melee mutant - costs 2 HP, gives 2 score, then disappears",
	engine.RangedMutant: "Ranged mutant - shoots along its row and column up to 2 cells; stepping here defeats it for 2 score",
}

// rangedThreats counts ranged mutants able to shoot at pos
func rangedThreats(state *engine.GameState, pos engine.Position) int {
	symbol := engine.RangedMutant.Symbol()
	count := 0
	for row := range state.Grid {
		for col, cell := range state.Grid[row] {
			if cell.Symbol != symbol {
				continue
			}
			m := engine.Position{Row: row, Col: col}
			if m.Row != pos.Row && m.Col != pos.Col {
				continue
			}
			if d := engine.ManhattanDistance(m, pos); d > 0 && d <= 2 {
				count++
			}
		}
	}
	return count
}
