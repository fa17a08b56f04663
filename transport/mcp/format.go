package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
)

// Formatting helpers

// messageTail is how many log entries game_state shows
const messageTail = 5

func formatSessionInfo(info *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s (difficulty %d, seed %d)\nCreated: %s\n\n%s",
		info.ID, info.ConfigName, info.GameConfig.Difficulty, info.GameConfig.Seed,
		info.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(info.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Position: %s | %s | Moves: %d\n\n",
		state.Player.Position, state.StatusLine(), state.TotalMoves)

	if v := formatLocal3x3(state); v != "" {
		b.WriteString("Local 3x3:\n")
		b.WriteString(v)
		b.WriteString("\n")
	}

	b.WriteString(state.Render())

	switch {
	case state.Victory:
		b.WriteString("\n🎉 VICTORY!")
	case state.GameOver:
		b.WriteString("\n💀 GAME OVER")
	}

	if n := len(state.Messages); n > 0 {
		start := n - messageTail
		if start < 0 {
			start = 0
		}
		b.WriteString("\n\nRecent messages:\n")
		for _, msg := range state.Messages[start:] {
			fmt.Fprintf(&b, ">>> %s\n", msg)
		}
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move failed\n")
	}

	if result.Step != nil {
		b.WriteString(formatStepLine(result.Step))
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "Blocked: attempted (%d,%d) %s\n", a.Row, a.Col, a.Reason)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

// formatStepLine renders a single compact step line
func formatStepLine(s *service.StepInfo) string {
	item := s.Item
	if item == "" {
		item = "floor"
	}
	line := fmt.Sprintf("%d. %s %s→%s item=%s hp=%d→%d score=%d→%d",
		s.Idx, s.Dir, s.From, s.To, item, s.HPBefore, s.HPAfter, s.ScoreBefore, s.ScoreAfter)
	switch {
	case s.Victory:
		line += " ESCAPED"
	case s.LevelUp:
		line += fmt.Sprintf(" → level %d", s.Level)
	}
	return line + "\n"
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	level := 0
	if result.GameState != nil {
		level = result.GameState.Level
	}
	fmt.Fprintf(&b, "Session: %s • Level %d\n", sessionID, level)

	fmt.Fprintf(&b, "Executed %d/%d moves\n", result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Only the first %d moves were considered\n", result.Limit)
	}
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s\n", result.StoppedReason)
	}
	fmt.Fprintf(&b, "HP: %d→%d | Score: %+d | %s→%s\n",
		result.StartHP, result.EndHP, result.ScoreDelta, result.StartPos, result.EndPos)

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for i := range result.Steps {
			b.WriteString(formatStepLine(&result.Steps[i]))
		}
	}

	if a := result.AttemptedTo; a != nil {
		fmt.Fprintf(&b, "\nBlocked on move %d: attempted (%d,%d) %s\n", result.StoppedOnMove, a.Row, a.Col, a.Reason)
	}
	if result.GameOver {
		fmt.Fprintf(&b, "\nGame over: %s\n", result.GameOverCode)
	}

	if len(result.PossibleMoves) > 0 {
		b.WriteString("\nPossible moves: ")
		b.WriteString(strings.Join(result.PossibleMoves, ","))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

// formatLocal3x3 renders a 3x3 character window centered on the player
func formatLocal3x3(state *engine.GameState) string {
	if state == nil || len(state.Grid) == 0 {
		return ""
	}
	pos := state.Player.Position
	var b strings.Builder
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			row, col := pos.Row+dr, pos.Col+dc
			if row < 0 || col < 0 || row >= len(state.Grid) || col >= len(state.Grid[row]) {
				b.WriteString(engine.WallSymbol) // out-of-bounds reads as wall
				continue
			}
			b.WriteString(state.Glyph(row, col))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d) — Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		b.WriteString("(no moves)\n")
		return b.String()
	}
	for _, move := range history.Moves {
		status := "✓"
		if !move.Success {
			status = "✗"
		}
		fmt.Fprintf(&b, "%d. %s %s %s→%s [Level %d, HP: %d, Score: %d]\n",
			move.MoveNumber, move.Action, status, move.FromPosition, move.ToPosition,
			move.Level, move.HP, move.Score)
	}
	return b.String()
}
