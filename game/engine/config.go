package engine

import (
	"fmt"
	"strings"
	"time"
)

// Messages holds the text shown to the player at each game event
type Messages struct {
	Welcome      string `json:"welcome" yaml:"welcome"`
	Victory      string `json:"victory" yaml:"victory"`
	GameOver     string `json:"game_over" yaml:"game_over"`
	InvalidInput string `json:"invalid_input" yaml:"invalid_input"`
	CantMove     string `json:"cant_move" yaml:"cant_move"`
	Prompt       string `json:"prompt" yaml:"prompt"`
}

// GameConfig describes a game variant: board dimension, winning tile and spawn values
type GameConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	GridSize    int      `json:"grid_size" yaml:"grid_size"`
	WinValue    int      `json:"win_value" yaml:"win_value"`
	SpawnValues []int    `json:"spawn_values" yaml:"spawn_values"`
	Messages    Messages `json:"messages" yaml:"messages"`
}

// DefaultMessages returns the stock player-facing texts
func DefaultMessages() Messages {
	return Messages{
		Welcome:      "Welcome to %d! Use W (up), A (left), S (down), D (right) to move. Reach the %d tile to win!",
		Victory:      "Congratulations! You reached %d!",
		GameOver:     "Game over. No moves left.",
		InvalidInput: "Invalid input. Use W, A, S or D.",
		CantMove:     "Cannot move in that direction!",
		Prompt:       "Enter direction (W/A/S/D): ",
	}
}

// DefaultConfig returns the classic 4x4 variant played to 2048
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Classic 4x4 board, reach 2048",
		GridSize:    DefaultGridSize,
		WinValue:    DefaultWinValue,
		SpawnValues: append([]int(nil), DefaultSpawnValues...),
		Messages:    DefaultMessages(),
	}
}

// ApplyDefaults fills unset messages and spawn values
func (c *GameConfig) ApplyDefaults() {
	if len(c.SpawnValues) == 0 {
		c.SpawnValues = append([]int(nil), DefaultSpawnValues...)
	}
	d := DefaultMessages()
	if c.Messages.Welcome == "" {
		c.Messages.Welcome = d.Welcome
	}
	if c.Messages.Victory == "" {
		c.Messages.Victory = d.Victory
	}
	if c.Messages.GameOver == "" {
		c.Messages.GameOver = d.GameOver
	}
	if c.Messages.InvalidInput == "" {
		c.Messages.InvalidInput = d.InvalidInput
	}
	if c.Messages.CantMove == "" {
		c.Messages.CantMove = d.CantMove
	}
	if c.Messages.Prompt == "" {
		c.Messages.Prompt = d.Prompt
	}
}

// Clone returns a deep copy of the config
func (c *GameConfig) Clone() *GameConfig {
	out := *c
	out.SpawnValues = append([]int(nil), c.SpawnValues...)
	return &out
}

// WelcomeText renders the welcome message for this variant
func (c *GameConfig) WelcomeText() string {
	return fillWinValue(c.Messages.Welcome, c.WinValue)
}

// VictoryText renders the victory message for this variant
func (c *GameConfig) VictoryText() string {
	return fillWinValue(c.Messages.Victory, c.WinValue)
}

// fillWinValue substitutes every %d verb in msg with the win value
func fillWinValue(msg string, winValue int) string {
	n := strings.Count(msg, "%d")
	if n == 0 {
		return msg
	}
	args := make([]any, n)
	for i := range args {
		args[i] = winValue
	}
	return fmt.Sprintf(msg, args...)
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}

	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("config validation: grid_size must be between %d and %d, got %d", MinGridSize, MaxGridSize, config.GridSize)
	}

	if len(config.SpawnValues) == 0 {
		return fmt.Errorf("config validation: spawn_values must not be empty")
	}
	maxSpawn := 0
	for _, v := range config.SpawnValues {
		if v < 2 || !isPowerOfTwo(v) {
			return fmt.Errorf("config validation: spawn value %d must be a power of two >= 2", v)
		}
		if v > maxSpawn {
			maxSpawn = v
		}
	}

	if !isPowerOfTwo(config.WinValue) {
		return fmt.Errorf("config validation: win_value must be a power of two, got %d", config.WinValue)
	}
	if config.WinValue <= maxSpawn {
		return fmt.Errorf("config validation: win_value %d must be greater than every spawn value (max %d)", config.WinValue, maxSpawn)
	}

	// Validate winnability - the board must be able to hold the winning tile
	if reachable := MaxReachableTile(config.GridSize, maxSpawn); config.WinValue > reachable {
		return fmt.Errorf("config validation: win_value %d is unreachable on a %dx%d board (max tile %d)",
			config.WinValue, config.GridSize, config.GridSize, reachable)
	}

	return nil
}

// InitGameStateFromConfig runs the Setup phase: an empty grid seeded with two tiles
func InitGameStateFromConfig(config *GameConfig, rng RandomSource) (*GameState, error) {
	if config == nil {
		config = DefaultConfig()
	}

	grid := NewGrid(config.GridSize)
	state := &GameState{
		Grid:              grid,
		Phase:             PhaseSetup,
		Outcome:           InProgress,
		WinValue:          config.WinValue,
		ConfigName:        config.Name,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}

	for i := 0; i < 2; i++ {
		next, _, err := SpawnTile(state.Grid, rng, config.SpawnValues)
		if err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
		state.Grid = next
	}

	state.Phase = PhasePlaying
	state.Message = config.WelcomeText()
	state.refresh(config)
	return state, nil
}

// refresh recomputes the derived fields after the grid changed and moves the
// phase to Won or Lost when the grid calls for it
func (gs *GameState) refresh(config *GameConfig) {
	gs.MaxTile = MaxTile(gs.Grid)
	gs.Outcome = EvaluateOutcome(gs.Grid, config.WinValue)

	switch gs.Outcome {
	case Won:
		gs.Phase = PhaseWon
		gs.GameOver = true
		gs.Victory = true
		gs.Message = config.VictoryText()
	case Lost:
		gs.Phase = PhaseLost
		gs.GameOver = true
		gs.Victory = false
		gs.Message = config.Messages.GameOver
	}

	gs.PossibleMoves = nil
	if !gs.GameOver {
		for _, d := range AllDirections {
			if !Move(gs.Grid, d).Equal(gs.Grid) {
				gs.PossibleMoves = append(gs.PossibleMoves, d.String())
			}
		}
	}
}

// addMoveToHistory records a move in both the cumulative and the current history
func (gs *GameState) addMoveToHistory(d Direction, changed bool, spawned *Position, spawnedValue int) {
	entry := MoveHistoryEntry{
		Direction:    d.String(),
		Changed:      changed,
		SpawnedAt:    spawned,
		SpawnedValue: spawnedValue,
		MaxTile:      gs.MaxTile,
		Timestamp:    time.Now().Unix(),
		MoveNumber:   gs.TotalMoves + 1,
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
