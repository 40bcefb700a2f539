package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/tile2048/game/engine"
)

// QuitToken ends a console game without a result
const QuitToken = "q"

// Game runs one game on a line-oriented terminal: it renders the grid, reads a
// direction per line and applies it until the game is won, lost, or the input ends.
type Game struct {
	engine *engine.GameEngine
	in     *bufio.Scanner
	out    io.Writer
}

// NewGame wires an engine to an input and an output stream
func NewGame(eng *engine.GameEngine, in io.Reader, out io.Writer) *Game {
	return &Game{
		engine: eng,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

// Run plays until the game reaches a terminal phase, the player quits or the
// input is exhausted. It returns the phase the game ended in; a quit or EOF
// leaves the phase at Playing.
func (g *Game) Run(ctx context.Context) (engine.Phase, error) {
	config := g.engine.GetConfig()
	g.println(config.WelcomeText())

	for {
		if err := ctx.Err(); err != nil {
			return g.engine.Phase(), err
		}

		state := g.engine.GetState()
		g.print(engine.RenderGrid(state.Grid))

		switch state.Phase {
		case engine.PhaseWon:
			g.println(config.VictoryText())
			return state.Phase, nil
		case engine.PhaseLost:
			g.println(config.Messages.GameOver)
			return state.Phase, nil
		}

		g.print(config.Messages.Prompt)
		if !g.in.Scan() {
			g.println("")
			if err := g.in.Err(); err != nil {
				return state.Phase, fmt.Errorf("read input: %w", err)
			}
			log.Debug("input closed, leaving game")
			return state.Phase, nil
		}

		line := g.in.Text()
		if strings.EqualFold(strings.TrimSpace(line), QuitToken) {
			log.Debug("player quit")
			return state.Phase, nil
		}

		direction, err := engine.ParseToken(line)
		if err != nil {
			g.println(config.Messages.InvalidInput)
			continue
		}

		changed, err := g.engine.Move(direction)
		if err != nil {
			return g.engine.Phase(), err
		}
		if !changed {
			g.println(config.Messages.CantMove)
			continue
		}
		log.WithFields(log.Fields{
			"direction": direction.String(),
			"max_tile":  g.engine.MaxTile(),
		}).Debug("move applied")
	}
}

func (g *Game) print(s string) {
	fmt.Fprint(g.out, s)
}

func (g *Game) println(s string) {
	fmt.Fprintln(g.out, s)
}
