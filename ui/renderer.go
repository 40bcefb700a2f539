package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/wricardo/tile2048/game/engine"
)

const (
	boardTop = 2
	helpText = "arrows/wasd move  r reset  q quit"
)

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the title, the board, a status line and the last message.
func (r *Renderer) Render(state *engine.GameState, message string) {
	r.screen.Clear()

	title := fmt.Sprintf("tile2048 - %s (reach %d)", state.ConfigName, state.WinValue)
	r.drawText(0, 0, title, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))

	y := r.drawBoard(state.Grid, boardTop)

	status := fmt.Sprintf("Max tile: %d  Moves: %d", state.MaxTile, state.CurrentMovesCount)
	switch state.Phase {
	case engine.PhaseWon:
		status += "  [won]"
	case engine.PhaseLost:
		status += "  [lost]"
	}
	r.drawText(0, y+1, status, tcell.StyleDefault)

	if message != "" {
		r.RenderMessage(message, y+2)
	}
	r.drawText(0, y+4, helpText, tcell.StyleDefault.Foreground(tcell.ColorDarkGray))

	r.screen.Show()
}

// drawBoard draws the bordered table with colored tiles and returns the row
// below it.
func (r *Renderer) drawBoard(g engine.Grid, top int) int {
	lines := strings.Split(strings.TrimSuffix(engine.RenderGrid(g), "\n"), "\n")
	width := engine.CellWidth(g)
	borderStyle := tcell.StyleDefault.Foreground(tcell.ColorGray)

	for i, line := range lines {
		y := top + i
		if i%2 == 0 {
			r.drawText(0, y, line, borderStyle)
			continue
		}
		row := g[i/2]
		for x, ch := range line {
			style := borderStyle
			if ch != '|' {
				style = tileStyle(row[(x-1)/(width+1)])
			}
			r.screen.SetContent(x, y, ch, style)
		}
	}
	return top + len(lines)
}

// tileStyle returns the style of a tile, brighter as the value grows.
func tileStyle(value int) tcell.Style {
	switch {
	case value == 0:
		return tcell.StyleDefault
	case value <= 4:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite)
	case value <= 16:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange)
	case value <= 64:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case value <= 512:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	}
}

// RenderMessage displays a message on the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	r.drawText(0, y, msg, tcell.StyleDefault.Foreground(tcell.ColorWhite))
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		r.screen.SetContent(x, y, ch, style)
		x++
	}
}
