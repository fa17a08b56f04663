package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/wricardo/minidungeon/game/engine"
)

// Canvas is the drawing surface. tcell.Screen satisfies it.
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

// Layout
const (
	gridTop   = 2
	gridLeft  = 1
	cellWidth = 2 // glyph plus a space so the map reads square
	hudLeft   = gridLeft + engine.GridSize*cellWidth + 3
	hpBarSize = engine.MaxHP
)

var (
	styleDefault = tcell.StyleDefault
	styleTitle   = tcell.StyleDefault.Bold(true)
	styleDim     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleWin     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleLose    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

var glyphStyles = map[string]tcell.Style{
	engine.PlayerSymbol:          tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	engine.WallSymbol:            styleDim,
	engine.FloorSymbol:           styleDim,
	engine.Entry.Symbol():        tcell.StyleDefault.Foreground(tcell.ColorBlue),
	engine.Ladder.Symbol():       tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
	engine.Gold.Symbol():         tcell.StyleDefault.Foreground(tcell.ColorGold),
	engine.HealthPotion.Symbol(): tcell.StyleDefault.Foreground(tcell.ColorGreen),
	engine.Trap.Symbol():         tcell.StyleDefault.Foreground(tcell.ColorFuchsia),
	engine.MeleeMutant.Symbol():  tcell.StyleDefault.Foreground(tcell.ColorOrangeRed),
	engine.RangedMutant.Symbol(): tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true),
}

var helpLines = []string{
	"Move: arrows, hjkl or wasd",
	"r: restart same dungeon",
	"?: toggle help   q: quit",
	"",
	"P you   # wall   E entry",
	"L ladder   G gold",
	"H potion   T trap",
	"M melee mutant",
	"R ranged mutant",
}

// putText writes s starting at (x, y) and returns the column after it.
// Wide runes take two columns; text past the right edge is dropped.
func putText(c Canvas, x, y int, s string, st tcell.Style) int {
	sw, sh := c.Size()
	if y < 0 || y >= sh {
		return x
	}
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > sw {
			break
		}
		c.SetContent(x, y, r, nil, st)
		if w == 2 {
			c.SetContent(x+1, y, ' ', nil, st)
		}
		x += w
	}
	return x
}

// hpBar renders HP as a fixed-width bar
func hpBar(hp, maxHP int) string {
	if maxHP <= 0 {
		return ""
	}
	filled := hp * hpBarSize / maxHP
	if filled < 0 {
		filled = 0
	}
	if filled > hpBarSize {
		filled = hpBarSize
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", hpBarSize-filled) + "]"
}

func clearCanvas(c Canvas) {
	w, h := c.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c.SetContent(x, y, ' ', nil, styleDefault)
		}
	}
}

// drawGrid draws the map with the player on top
func drawGrid(c Canvas, state *engine.GameState) {
	for row := range state.Grid {
		for col := range state.Grid[row] {
			glyph := state.Glyph(row, col)
			st, ok := glyphStyles[glyph]
			if !ok {
				st = styleDefault
			}
			putText(c, gridLeft+col*cellWidth, gridTop+row, glyph, st)
		}
	}
}

// drawHUD draws the stats column to the right of the map and returns the
// first free row
func drawHUD(c Canvas, state *engine.GameState, showHelp bool) int {
	y := gridTop
	line := func(s string, st tcell.Style) {
		putText(c, hudLeft, y, s, st)
		y++
	}

	line(fmt.Sprintf("Level %d/%d", state.Level, engine.FinalLevel), styleTitle)
	hpStyle := styleDefault
	if state.Player.HP <= engine.MaxHP/4 {
		hpStyle = styleLose
	}
	line(fmt.Sprintf("HP    %s %d/%d", hpBar(state.Player.HP, state.Player.MaxHP), state.Player.HP, state.Player.MaxHP), hpStyle)
	line(fmt.Sprintf("Score %d", state.Player.Score), styleDefault)
	line(fmt.Sprintf("Steps %d/%d", state.Steps, state.MaxSteps), styleDefault)
	line(fmt.Sprintf("Pos   %s", state.Player.Position), styleDim)
	y++

	if showHelp {
		for _, h := range helpLines {
			line(h, styleDim)
		}
	} else {
		line("? for help", styleDim)
	}
	return y
}

// Draw renders the whole game view. preset names the session's preset and
// notice is a transient status line (may be empty).
func Draw(c Canvas, state *engine.GameState, preset, notice string, showHelp bool) {
	clearCanvas(c)
	if state == nil {
		putText(c, 0, 0, "No game", styleDefault)
		return
	}

	putText(c, gridLeft, 0, "MiniDungeon", styleTitle)
	if preset != "" {
		putText(c, gridLeft+len("MiniDungeon")+1, 0, "· "+preset, styleDim)
	}

	drawGrid(c, state)
	hudEnd := drawHUD(c, state, showHelp)

	y := max(gridTop+engine.GridSize+1, hudEnd)
	switch {
	case state.Victory:
		putText(c, gridLeft, y, fmt.Sprintf("YOU WON! Final score: %d  (r: replay, q: quit)", state.Player.Score), styleWin)
		y++
	case state.GameOver:
		putText(c, gridLeft, y, fmt.Sprintf("GAME OVER! Final score: %d  (r: replay, q: quit)", state.Player.Score), styleLose)
		y++
	}
	if notice != "" {
		putText(c, gridLeft, y, notice, styleLose)
		y++
	}

	// message tail fills the rest of the screen
	_, h := c.Size()
	room := h - y
	if room <= 0 {
		return
	}
	messages := state.Messages
	if len(messages) > room {
		messages = messages[len(messages)-room:]
	}
	for _, msg := range messages {
		putText(c, gridLeft, y, "> "+msg, styleDefault)
		y++
	}
}
