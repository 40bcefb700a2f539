package engine

import (
	"encoding/json"
	"testing"
)

func TestPhase_IsTerminal(t *testing.T) {
	tests := []struct {
		phase    Phase
		terminal bool
	}{
		{PhaseSetup, false},
		{PhasePlaying, false},
		{PhaseWon, true},
		{PhaseLost, true},
	}

	for _, tt := range tests {
		if tt.phase.IsTerminal() != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.phase, tt.phase.IsTerminal(), tt.terminal)
		}
	}
}

func TestGameState_JSONFieldNames(t *testing.T) {
	state := &GameState{
		Grid:     Grid{{2, 0}, {0, 4}},
		Phase:    PhasePlaying,
		Outcome:  InProgress,
		WinValue: 8,
		MaxTile:  4,
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"grid", "phase", "outcome", "win_value", "max_tile", "game_over", "victory"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("Expected JSON field %q in %s", key, data)
		}
	}
	if fields["phase"] != "playing" {
		t.Errorf("Expected phase to serialize as \"playing\", got %v", fields["phase"])
	}
}

func TestGameState_Snapshot(t *testing.T) {
	engine := NewEngineWithDefaults(NewRandomSource(4))
	engine.Move(Left)
	engine.Move(Right)

	snap := engine.GetState().Snapshot()
	grid := snap.Grid.Clone()
	moves := snap.TotalMoves

	for i := 0; i < 10 && !engine.IsGameOver(); i++ {
		engine.Move(AllDirections[i%4])
	}

	if !snap.Grid.Equal(grid) {
		t.Error("Snapshot grid changed after later moves")
	}
	if snap.TotalMoves != moves || len(snap.MoveHistory) != moves {
		t.Error("Snapshot history changed after later moves")
	}

	var nilState *GameState
	if nilState.Snapshot() != nil {
		t.Error("Expected nil snapshot of nil state")
	}
}
