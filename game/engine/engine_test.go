package engine

import (
	"errors"
	"testing"
)

func createTestConfig() *GameConfig {
	config := DefaultConfig()
	config.Name = "Engine Test Config"
	config.Description = "Configuration for engine integration tests"
	return config
}

// createTinyConfig is a 2x2 board played to 8, small enough to reach both endings
func createTinyConfig() *GameConfig {
	config := DefaultConfig()
	config.Name = "tiny"
	config.GridSize = 2
	config.WinValue = 8
	return config
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config, NewRandomSource(1))
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	state := engine.GetState()
	if state.Phase != PhasePlaying {
		t.Errorf("Expected phase %s after setup, got %s", PhasePlaying, state.Phase)
	}
	if CountTiles(state.Grid) != 2 {
		t.Errorf("Expected 2 tiles after setup, got %d", CountTiles(state.Grid))
	}
	for _, row := range state.Grid {
		for _, v := range row {
			if v != 0 && v != 2 && v != 4 {
				t.Errorf("Unexpected setup tile %d", v)
			}
		}
	}
	if engine.IsGameOver() {
		t.Error("Expected game not to be over initially")
	}
	if engine.IsVictory() {
		t.Error("Expected game not to be victory initially")
	}
	if state.ConfigName != config.Name {
		t.Errorf("Expected config name %s, got %s", config.Name, state.ConfigName)
	}
	if state.Message == "" {
		t.Error("Expected welcome message")
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.GridSize = 1

	_, err := NewEngine(config, nil)
	if err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults(NewRandomSource(3))

	if engine.GetConfig().GridSize != DefaultGridSize {
		t.Errorf("Expected grid size %d, got %d", DefaultGridSize, engine.GetConfig().GridSize)
	}
	if engine.GetState().WinValue != DefaultWinValue {
		t.Errorf("Expected win value %d, got %d", DefaultWinValue, engine.GetState().WinValue)
	}
}

func TestNewEngine_SameSeedSameGame(t *testing.T) {
	a, err := NewEngine(createTestConfig(), NewRandomSource(11))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine(createTestConfig(), NewRandomSource(11))
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range []Direction{Left, Up, Right, Down, Left, Left} {
		a.Move(d)
		b.Move(d)
	}

	if !a.GetState().Grid.Equal(b.GetState().Grid) {
		t.Errorf("Expected equal seeds to replay the same game:\n%v\n%v", a.GetState().Grid, b.GetState().Grid)
	}
}

func TestNewEngineFromGrid_SizeMismatch(t *testing.T) {
	_, err := NewEngineFromGrid(createTestConfig(), NewGrid(3), nil)
	if !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("Expected ErrInvalidGrid, got %v", err)
	}
}

func TestEngine_MoveSpawnsAfterChange(t *testing.T) {
	grid := Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	rng := &scriptedSource{draws: []int{0, 0}}
	engine, err := NewEngineFromGrid(createTestConfig(), grid, rng)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	changed, err := engine.Move(Left)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !changed {
		t.Fatal("Expected move left to change the board")
	}

	expected := Grid{
		{4, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	if !engine.GetState().Grid.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, engine.GetState().Grid)
	}

	last := engine.GetLastMove()
	if last == nil {
		t.Fatal("Expected a history entry")
	}
	if last.Direction != "left" || !last.Changed {
		t.Errorf("Unexpected history entry %+v", last)
	}
	if last.SpawnedAt == nil || *last.SpawnedAt != (Position{X: 1, Y: 0}) || last.SpawnedValue != 2 {
		t.Errorf("Expected spawn of 2 at (1,0), got %+v", last)
	}
	if grid[0][0] != 2 {
		t.Error("Engine mutated the caller's grid")
	}
}

func TestEngine_NoOpMoveDoesNotSpawn(t *testing.T) {
	grid := Grid{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	engine, err := NewEngineFromGrid(createTestConfig(), grid, NewRandomSource(5))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	changed, err := engine.Move(Left)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if changed {
		t.Error("Expected move left to be a no-op")
	}
	if !engine.GetState().Grid.Equal(grid) {
		t.Errorf("Expected grid to stay unchanged, got %v", engine.GetState().Grid)
	}
	if engine.GetState().Message != engine.GetConfig().Messages.CantMove {
		t.Errorf("Expected cant-move message, got %q", engine.GetState().Message)
	}
	if engine.GetState().TotalMoves != 1 {
		t.Errorf("Expected the rejected move to be recorded, got %d moves", engine.GetState().TotalMoves)
	}
}

func TestEngine_CanMove(t *testing.T) {
	grid := Grid{
		{2, 4, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	engine, err := NewEngineFromGrid(createTestConfig(), grid, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		direction Direction
		expected  bool
	}{
		{Left, false},
		{Up, false},
		{Right, true},
		{Down, true},
		{Direction(9), false},
	}

	for _, test := range tests {
		if result := engine.CanMove(test.direction); result != test.expected {
			t.Errorf("CanMove(%s): expected %v, got %v", test.direction, test.expected, result)
		}
	}

	possible := engine.GetPossibleMoves()
	if len(possible) != 2 {
		t.Errorf("Expected 2 possible moves, got %v", possible)
	}
}

func TestEngine_VictoryScenario(t *testing.T) {
	grid := Grid{
		{1024, 1024, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	engine, err := NewEngineFromGrid(createTestConfig(), grid, NewRandomSource(8))
	if err != nil {
		t.Fatal(err)
	}

	changed, err := engine.Move(Left)
	if err != nil || !changed {
		t.Fatalf("Expected winning move to succeed, changed=%v err=%v", changed, err)
	}

	if engine.Phase() != PhaseWon {
		t.Errorf("Expected phase %s, got %s", PhaseWon, engine.Phase())
	}
	if engine.Outcome() != Won || !engine.IsVictory() || !engine.IsGameOver() {
		t.Error("Expected a won, finished game")
	}
	if engine.MaxTile() != DefaultWinValue {
		t.Errorf("Expected max tile %d, got %d", DefaultWinValue, engine.MaxTile())
	}

	_, err = engine.Move(Right)
	if !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver after victory, got %v", err)
	}
}

func TestEngine_GameOverScenario(t *testing.T) {
	grid := Grid{
		{2, 4},
		{0, 4},
	}
	// first empty cell, first spawn value: the board fills up as [[2,4],[4,2]]
	rng := &scriptedSource{draws: []int{0, 0}}
	engine, err := NewEngineFromGrid(createTinyConfig(), grid, rng)
	if err != nil {
		t.Fatal(err)
	}

	changed, err := engine.Move(Left)
	if err != nil || !changed {
		t.Fatalf("Expected move to succeed, changed=%v err=%v", changed, err)
	}

	expected := Grid{
		{2, 4},
		{4, 2},
	}
	if !engine.GetState().Grid.Equal(expected) {
		t.Fatalf("Expected %v, got %v", expected, engine.GetState().Grid)
	}
	if engine.Phase() != PhaseLost {
		t.Errorf("Expected phase %s, got %s", PhaseLost, engine.Phase())
	}
	if engine.IsVictory() {
		t.Error("Expected no victory")
	}
	if len(engine.GetPossibleMoves()) != 0 {
		t.Errorf("Expected no possible moves, got %v", engine.GetPossibleMoves())
	}
	if engine.GetState().Message != engine.GetConfig().Messages.GameOver {
		t.Errorf("Expected game over message, got %q", engine.GetState().Message)
	}
}

func TestEngine_InvalidDirection(t *testing.T) {
	engine := NewEngineWithDefaults(NewRandomSource(1))

	_, err := engine.Move(Direction(42))
	if !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
	if engine.GetState().TotalMoves != 0 {
		t.Error("Invalid direction must not be recorded")
	}
}

func TestEngine_Reset(t *testing.T) {
	engine := NewEngineWithDefaults(NewRandomSource(21))

	for _, d := range []Direction{Left, Right, Up, Down} {
		engine.Move(d)
	}
	movesBefore := engine.GetState().TotalMoves
	if movesBefore != 4 {
		t.Fatalf("Expected 4 recorded moves, got %d", movesBefore)
	}

	state, err := engine.Reset()
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if CountTiles(state.Grid) != 2 {
		t.Errorf("Expected 2 tiles after reset, got %d", CountTiles(state.Grid))
	}
	if state.Phase != PhasePlaying {
		t.Errorf("Expected phase %s after reset, got %s", PhasePlaying, state.Phase)
	}
	if state.TotalMoves != movesBefore || len(state.MoveHistory) != movesBefore {
		t.Errorf("Expected cumulative history to survive reset, got %d", state.TotalMoves)
	}
	if state.CurrentMovesCount != 0 || len(state.CurrentMoves) != 0 {
		t.Error("Expected current segment to be cleared")
	}
}

func TestEngine_StateConsistency(t *testing.T) {
	engine := NewEngineWithDefaults(NewRandomSource(77))

	for i := 0; i < 300 && !engine.IsGameOver(); i++ {
		d := AllDirections[i%len(AllDirections)]
		before := engine.GetState().Grid.Clone()
		changed, err := engine.Move(d)
		if err != nil {
			t.Fatalf("Move %d failed: %v", i, err)
		}

		after := engine.GetState().Grid
		if err := ValidateGrid(after); err != nil {
			t.Fatalf("Move %d produced an invalid grid: %v", i, err)
		}
		if changed {
			if CountTiles(after) != CountTiles(Move(before, d))+1 {
				t.Fatalf("Move %d: expected exactly one spawned tile", i)
			}
		} else if !after.Equal(before) {
			t.Fatalf("Move %d: no-op move changed the grid", i)
		}
	}
}
