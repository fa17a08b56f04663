package engine

import (
	"fmt"
	"strings"
)

// CellView is the renderer-facing description of a cell
type CellView struct {
	Wall   bool   `json:"wall"`
	Symbol string `json:"symbol,omitempty"`
	Item   string `json:"item,omitempty"`
}

func newCellView(c Cell) CellView {
	return CellView{Wall: c.Wall, Symbol: c.Item.Symbol(), Item: c.Item.Name()}
}

// GameState is a detached snapshot of a game. Mutating it has no effect on the engine.
type GameState struct {
	Grid                [][]CellView      `json:"grid"`
	Player              PlayerInfo        `json:"player"`
	Level               int               `json:"level"`
	Difficulty          int               `json:"difficulty"`
	EffectiveDifficulty int               `json:"effective_difficulty"`
	Steps               int               `json:"steps"`
	MaxSteps            int               `json:"max_steps"`
	Status              Status            `json:"status"`
	GameOver            bool              `json:"game_over"`
	Victory             bool              `json:"victory"`
	Seed                int64             `json:"seed,omitempty"`
	Messages            []string          `json:"messages"`
	TotalMoves          int               `json:"total_moves"`
	LastMove            *MoveHistoryEntry `json:"last_move,omitempty"`
}

func newGameState(e *GameEngine) *GameState {
	grid := make([][]CellView, GridSize)
	for row := range grid {
		grid[row] = make([]CellView, GridSize)
		for col := range grid[row] {
			grid[row][col] = newCellView(e.grid.cells[row][col])
		}
	}
	return &GameState{
		Grid:                grid,
		Player:              e.player.info(),
		Level:               e.level,
		Difficulty:          e.difficulty,
		EffectiveDifficulty: e.EffectiveDifficulty(),
		Steps:               e.steps,
		MaxSteps:            e.maxSteps,
		Status:              e.status,
		GameOver:            e.status != Playing,
		Victory:             e.status == Won,
		Seed:                e.seed,
		Messages:            e.Messages(),
		TotalMoves:          len(e.history),
		LastMove:            e.GetLastMove(),
	}
}

// Glyph returns the map character for the cell at (row, col): the player,
// a wall '#', an item symbol or '.' for open floor
func (gs *GameState) Glyph(row, col int) string {
	if gs.Player.Position == (Position{Row: row, Col: col}) {
		return PlayerSymbol
	}
	cell := gs.Grid[row][col]
	switch {
	case cell.Wall:
		return WallSymbol
	case cell.Symbol != "":
		return cell.Symbol
	default:
		return FloorSymbol
	}
}

const (
	PlayerSymbol = "P"
	WallSymbol   = "#"
	FloorSymbol  = "."
)

// Render draws the grid as text, one row per line
func (gs *GameState) Render() string {
	var b strings.Builder
	for row := range gs.Grid {
		for col := range gs.Grid[row] {
			b.WriteString(gs.Glyph(row, col))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StatusLine summarises the player's progress on one line
func (gs *GameState) StatusLine() string {
	return fmt.Sprintf("Level %d | HP: %d/%d | Score: %d | Steps: %d/%d",
		gs.Level, gs.Player.HP, gs.Player.MaxHP, gs.Player.Score, gs.Steps, gs.MaxSteps)
}
