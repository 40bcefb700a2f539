package ui

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/tile2048/game/engine"
	"github.com/wricardo/tile2048/telemetry"
)

// App is the interactive full-screen game.
type App struct {
	screen   *Screen
	renderer *Renderer
	engine   *engine.GameEngine
	tracer   trace.Tracer
	message  string
	running  bool
}

// NewApp creates a new app playing eng on screen.
func NewApp(screen *Screen, eng *engine.GameEngine) *App {
	return &App{
		screen:   screen,
		renderer: NewRenderer(screen),
		engine:   eng,
		tracer:   telemetry.Tracer("tui"),
		message:  eng.GetConfig().WelcomeText(),
		running:  true,
	}
}

// Run executes the main loop until the player quits or ctx is canceled. The
// caller owns the screen and closes it afterwards.
func (a *App) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, a.screen.Interrupt)
	defer stop()

	for a.running {
		if err := ctx.Err(); err != nil {
			return err
		}

		a.renderer.Render(a.engine.GetState(), a.message)

		if err := a.handleInput(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Phase returns the phase of the game being played
func (a *App) Phase() engine.Phase {
	return a.engine.Phase()
}

// handleInput processes a single input event.
func (a *App) handleInput(ctx context.Context) error {
	switch ev := a.screen.PollEvent().(type) {
	case *tcell.EventKey:
		return a.handleKeyEvent(ctx, ev)
	case *tcell.EventResize:
		a.screen.Sync()
	case nil:
		// the screen was finalized
		a.running = false
	}
	return nil
}

// handleKeyEvent processes keyboard input.
func (a *App) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false
		return nil
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			a.running = false
			return nil
		case 'r', 'R':
			return a.reset(ctx)
		}
	}

	if dir, ok := directionForKey(ev.Key(), ev.Rune()); ok {
		return a.tryMove(ctx, dir)
	}
	return nil
}

// directionForKey maps arrow keys and w/a/s/d to directions.
func directionForKey(key tcell.Key, ch rune) (engine.Direction, bool) {
	switch key {
	case tcell.KeyUp:
		return engine.Up, true
	case tcell.KeyDown:
		return engine.Down, true
	case tcell.KeyLeft:
		return engine.Left, true
	case tcell.KeyRight:
		return engine.Right, true
	case tcell.KeyRune:
		dir, err := engine.ParseToken(string(ch))
		return dir, err == nil
	}
	return 0, false
}

// tryMove applies one move; moves after the game ended only repeat the result.
func (a *App) tryMove(ctx context.Context, dir engine.Direction) error {
	config := a.engine.GetConfig()

	_, span := a.tracer.Start(ctx, "tui.move")
	defer span.End()
	span.SetAttributes(attribute.String("direction", dir.String()))

	changed, err := a.engine.Move(dir)
	switch {
	case errors.Is(err, engine.ErrGameOver):
		a.message = a.endMessage() + " Press r to play again."
		return nil
	case err != nil:
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.Bool("changed", changed),
		attribute.String("phase", string(a.engine.Phase())),
	)

	switch {
	case a.engine.Phase().IsTerminal():
		a.message = a.endMessage()
	case !changed:
		a.message = config.Messages.CantMove
	default:
		a.message = ""
	}
	return nil
}

func (a *App) reset(ctx context.Context) error {
	_, span := a.tracer.Start(ctx, "tui.reset")
	defer span.End()

	if _, err := a.engine.Reset(); err != nil {
		span.RecordError(err)
		return err
	}
	a.message = a.engine.GetConfig().WelcomeText()
	return nil
}

func (a *App) endMessage() string {
	if a.engine.Phase() == engine.PhaseWon {
		return a.engine.GetConfig().VictoryText()
	}
	return a.engine.GetConfig().Messages.GameOver
}
