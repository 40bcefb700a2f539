package engine

import (
	"errors"
	"fmt"
)

var ErrGameOver = errors.New("game is over")

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() (*GameState, error)
	Phase() Phase
	Outcome() Outcome
	IsGameOver() bool
	IsVictory() bool
	MaxTile() int

	// Movement operations
	Move(direction Direction) (bool, error)
	CanMove(direction Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() *GameConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It owns one grid and moves it
// through the Setup, Playing, Won and Lost phases.
type GameEngine struct {
	state  *GameState
	config *GameConfig
	rng    RandomSource
}

// NewEngine creates a new game engine with the provided configuration and runs Setup.
// A nil rng is replaced by a randomly seeded source.
func NewEngine(config *GameConfig, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRandomSource(0)
	}

	state, err := InitGameStateFromConfig(config, rng)
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  state,
		rng:    rng,
	}, nil
}

// NewEngineWithDefaults creates a new game engine for the classic variant
func NewEngineWithDefaults(rng RandomSource) *GameEngine {
	eng, err := NewEngine(DefaultConfig(), rng)
	if err != nil {
		// the built-in variant always validates
		panic(err)
	}
	return eng
}

// NewEngineFromGrid creates an engine positioned on an existing grid, skipping
// the random Setup tiles. The grid must match the configured size.
func NewEngineFromGrid(config *GameConfig, grid Grid, rng RandomSource) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if err := ValidateGrid(grid); err != nil {
		return nil, err
	}
	if grid.Size() != config.GridSize {
		return nil, fmt.Errorf("%w: grid is %dx%d, config expects %dx%d",
			ErrInvalidGrid, grid.Size(), grid.Size(), config.GridSize, config.GridSize)
	}
	if rng == nil {
		rng = NewRandomSource(0)
	}

	state := &GameState{
		Grid:         grid.Clone(),
		Phase:        PhasePlaying,
		Outcome:      InProgress,
		WinValue:     config.WinValue,
		ConfigName:   config.Name,
		Message:      config.WelcomeText(),
		MoveHistory:  []MoveHistoryEntry{},
		CurrentMoves: []MoveHistoryEntry{},
	}
	state.refresh(config)

	return &GameEngine{config: config, state: state, rng: rng}, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Reset starts a new game with the same configuration
func (e *GameEngine) Reset() (*GameState, error) {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	state, err := InitGameStateFromConfig(e.config, e.rng)
	if err != nil {
		return nil, err
	}

	state.MoveHistory = prevHistory
	state.TotalMoves = prevTotal
	state.CurrentMoves = []MoveHistoryEntry{}
	state.CurrentMovesCount = 0

	e.state = state
	return e.state, nil
}

// Phase returns the state machine phase
func (e *GameEngine) Phase() Phase {
	return e.state.Phase
}

// Outcome returns the outcome derived from the current grid
func (e *GameEngine) Outcome() Outcome {
	return e.state.Outcome
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// IsVictory returns whether the player has won
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// MaxTile returns the largest tile on the board
func (e *GameEngine) MaxTile() int {
	return e.state.MaxTile
}

// Move plays one turn. It returns true when the board changed, in which case a
// new tile has been spawned and the phase re-evaluated. A move that changes
// nothing is recorded but spawns nothing. Moves after the game ended fail with
// ErrGameOver.
func (e *GameEngine) Move(direction Direction) (bool, error) {
	if !direction.IsValid() {
		return false, fmt.Errorf("%w: %s", ErrInvalidDirection, direction)
	}
	if e.state.Phase.IsTerminal() {
		return false, ErrGameOver
	}

	next := Move(e.state.Grid, direction)
	if next.Equal(e.state.Grid) {
		e.state.Message = e.config.Messages.CantMove
		e.state.addMoveToHistory(direction, false, nil, 0)
		return false, nil
	}

	// a changing move always leaves at least one empty cell
	spawned, pos, err := SpawnTile(next, e.rng, e.config.SpawnValues)
	if err != nil {
		return false, fmt.Errorf("spawn after moving %s: %w", direction, err)
	}

	e.state.Grid = spawned
	e.state.Message = fmt.Sprintf("Moved %s", direction)
	e.state.refresh(e.config)
	e.state.addMoveToHistory(direction, true, &pos, spawned[pos.Y][pos.X])

	return true, nil
}

// CanMove checks if a move in the given direction would change the board
func (e *GameEngine) CanMove(direction Direction) bool {
	if e.state.Phase.IsTerminal() || !direction.IsValid() {
		return false
	}
	return !Move(e.state.Grid, direction).Equal(e.state.Grid)
}

// GetPossibleMoves returns all directions that would change the board
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range AllDirections {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}
