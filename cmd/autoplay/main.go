// Command autoplay plays games against a running tile2048 server through its
// REST API. It keeps resetting the session until the corner strategy reaches
// the winning tile or the attempts run out.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile2048/game/engine"
)

// errNoVictory is returned when every attempt ended without reaching the winning tile
var errNoVictory = errors.New("no attempt reached the winning tile")

// settings are the knobs of one autoplay run
type settings struct {
	configID    string
	sessionID   string
	maxMoves    int
	maxAttempts int
	bulk        int
	delay       time.Duration
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play tile2048 games through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "game server URL", Value: "http://localhost:8080"},
			&cli.StringFlag{Name: "config", Usage: "variant to play (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.IntFlag{Name: "max-moves", Usage: "maximum moves per attempt", Value: 5000},
			&cli.IntFlag{Name: "max-attempts", Usage: "maximum attempts before giving up", Value: 10},
			&cli.IntFlag{Name: "bulk", Usage: "send moves in batches of this size (0 = one at a time)"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between requests"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("v") {
				log.SetLevel(log.DebugLevel)
			}

			serverURL := cmd.String("url")
			log.Infof("Connecting to game server at %s", serverURL)

			return run(ctx, NewClient(serverURL), settings{
				configID:    cmd.String("config"),
				sessionID:   cmd.String("continue"),
				maxMoves:    int(cmd.Int("max-moves")),
				maxAttempts: int(cmd.Int("max-attempts")),
				bulk:        min(int(cmd.Int("bulk")), engine.MaxBulkMoves),
				delay:       cmd.Duration("delay"),
			})
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// run plays attempts until a victory, returning errNoVictory when none is reached
func run(ctx context.Context, client *Client, cfg settings) error {
	state, err := openSession(ctx, client, cfg)
	if err != nil {
		return err
	}
	log.Infof("Grid size: %dx%d, target: %d", state.Grid.Size(), state.Grid.Size(), state.WinValue)

	strategy := NewCornerStrategy()
	best := 0

	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		state, err = client.Reset(ctx)
		if err != nil {
			return fmt.Errorf("failed to reset game: %w", err)
		}
		strategy.Reset()

		log.Infof("=== Attempt %d/%d ===", attempt, cfg.maxAttempts)

		var moves int
		state, moves, err = playAttempt(ctx, client, strategy, state, cfg)
		if err != nil {
			return err
		}
		best = max(best, state.MaxTile)

		log.WithFields(log.Fields{
			"attempt":  attempt,
			"moves":    moves,
			"max_tile": state.MaxTile,
			"phase":    state.Phase,
		}).Info("Attempt finished")

		if state.Phase == engine.PhaseWon {
			log.Infof("VICTORY! Reached %d in attempt %d with %d moves (session %s)",
				state.WinValue, attempt, moves, client.SessionID())
			return nil
		}
	}

	log.Infof("Best tile after %d attempts: %d (session %s)", cfg.maxAttempts, best, client.SessionID())
	return errNoVictory
}

// openSession resumes cfg.sessionID when given, falling back to a new session
func openSession(ctx context.Context, client *Client, cfg settings) (*engine.GameState, error) {
	if cfg.sessionID != "" {
		state, err := client.Resume(ctx, cfg.sessionID)
		if err == nil {
			log.Infof("Resuming session: %s", client.SessionID())
			return state, nil
		}
		log.Warnf("Failed to resume session (may be expired): %v", err)
	}

	state, err := client.CreateSession(ctx, cfg.configID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Infof("Session created: %s", client.SessionID())
	return state, nil
}

// playAttempt moves until the game ends, the strategy is stuck or maxMoves
// is reached. It returns the final state and the number of moves sent.
func playAttempt(ctx context.Context, client *Client, strategy *CornerStrategy, state *engine.GameState, cfg settings) (*engine.GameState, int, error) {
	moves := 0
	for !state.Phase.IsTerminal() && moves < cfg.maxMoves {
		if err := ctx.Err(); err != nil {
			return state, moves, err
		}

		if cfg.bulk > 1 {
			batch := strategy.NextMoves(state.Grid, min(cfg.bulk, cfg.maxMoves-moves))
			result, err := client.BulkMove(ctx, batch)
			if err != nil {
				return state, moves, err
			}
			state = result.GameState
			moves += result.MovesExecuted
			log.Debugf("Bulk: %d executed, %d blocked, max tile %d", result.MovesExecuted, result.MovesBlocked, result.EndMaxTile)
		} else {
			direction, ok := strategy.NextMove(state.Grid)
			if !ok {
				log.Warn("No direction changes the board")
				break
			}
			result, err := client.Move(ctx, direction)
			if err != nil {
				return state, moves, err
			}
			state = result.GameState
			moves++
		}

		if moves%100 == 0 {
			log.Debugf("Moves: %d, max tile: %d", moves, state.MaxTile)
		}
		if cfg.delay > 0 {
			time.Sleep(cfg.delay)
		}
	}
	return state, moves, nil
}
