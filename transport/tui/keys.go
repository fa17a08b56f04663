package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/minidungeon/game/engine"
)

// Command is a player request decoded from a key press
type Command uint8

const (
	CmdNone Command = iota
	CmdUp
	CmdDown
	CmdLeft
	CmdRight
	CmdReset
	CmdHelp
	CmdQuit
)

// commandFor maps a key event to a command. Arrows, vi keys (hjkl) and
// wasd all move.
func commandFor(ev *tcell.EventKey) Command {
	switch ev.Key() {
	case tcell.KeyUp:
		return CmdUp
	case tcell.KeyDown:
		return CmdDown
	case tcell.KeyLeft:
		return CmdLeft
	case tcell.KeyRight:
		return CmdRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return CmdQuit
	case tcell.KeyRune:
	default:
		return CmdNone
	}

	switch ev.Rune() {
	case 'k', 'K', 'w', 'W':
		return CmdUp
	case 'j', 'J', 's', 'S':
		return CmdDown
	case 'h', 'H', 'a', 'A':
		return CmdLeft
	case 'l', 'L', 'd', 'D':
		return CmdRight
	case 'r', 'R':
		return CmdReset
	case '?':
		return CmdHelp
	case 'q', 'Q':
		return CmdQuit
	}
	return CmdNone
}

// direction returns the move a command stands for
func (c Command) direction() (engine.Direction, bool) {
	switch c {
	case CmdUp:
		return engine.Up, true
	case CmdDown:
		return engine.Down, true
	case CmdLeft:
		return engine.Left, true
	case CmdRight:
		return engine.Right, true
	}
	return 0, false
}
