package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wricardo/tile2048/game/engine"
)

// scriptedSource replays fixed draws; exhausted draws yield 0
type scriptedSource struct {
	draws []int
	next  int
}

func (s *scriptedSource) IntN(n int) int {
	if s.next >= len(s.draws) {
		return 0
	}
	v := s.draws[s.next] % n
	s.next++
	return v
}

func newTestGame(t *testing.T, config *engine.GameConfig, grid engine.Grid, input string) (*Game, *bytes.Buffer) {
	t.Helper()
	eng, err := engine.NewEngineFromGrid(config, grid, &scriptedSource{})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	var out bytes.Buffer
	return NewGame(eng, strings.NewReader(input), &out), &out
}

func tinyConfig() *engine.GameConfig {
	config := engine.DefaultConfig()
	config.Name = "tiny"
	config.GridSize = 2
	config.WinValue = 8
	return config
}

func TestGame_Run(t *testing.T) {
	messages := engine.DefaultMessages()

	tests := []struct {
		name      string
		config    *engine.GameConfig
		grid      engine.Grid
		input     string
		wantPhase engine.Phase
		wantText  []string
		boards    int
	}{
		{
			name:   "winning move",
			config: engine.DefaultConfig(),
			grid: engine.Grid{
				{1024, 1024, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			input:     "a\n",
			wantPhase: engine.PhaseWon,
			wantText:  []string{"Congratulations! You reached 2048!", "|2048 |"},
			boards:    2,
		},
		{
			name:   "losing move",
			config: tinyConfig(),
			grid: engine.Grid{
				{2, 4},
				{0, 4},
			},
			input:     "A\n",
			wantPhase: engine.PhaseLost,
			wantText:  []string{messages.GameOver},
			boards:    2,
		},
		{
			name:   "invalid input keeps playing",
			config: engine.DefaultConfig(),
			grid: engine.Grid{
				{2, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 2},
			},
			input:     "x\nq\n",
			wantPhase: engine.PhasePlaying,
			wantText:  []string{messages.InvalidInput},
			boards:    2,
		},
		{
			name:   "blocked move",
			config: engine.DefaultConfig(),
			grid: engine.Grid{
				{2, 4, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
			},
			input:     "a\nQ\n",
			wantPhase: engine.PhasePlaying,
			wantText:  []string{messages.CantMove},
			boards:    2,
		},
		{
			name:   "end of input",
			config: engine.DefaultConfig(),
			grid: engine.Grid{
				{2, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 2},
			},
			input:     "",
			wantPhase: engine.PhasePlaying,
			wantText:  []string{messages.Prompt},
			boards:    1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, out := newTestGame(t, tt.config, tt.grid, tt.input)

			phase, err := game.Run(context.Background())
			if err != nil {
				t.Fatalf("Run returned error: %v", err)
			}
			if phase != tt.wantPhase {
				t.Errorf("Expected phase %s, got %s", tt.wantPhase, phase)
			}

			output := out.String()
			if !strings.HasPrefix(output, tt.config.WelcomeText()) {
				t.Errorf("Expected output to start with the welcome text, got %q", output)
			}
			for _, want := range tt.wantText {
				if !strings.Contains(output, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, output)
				}
			}

			border := strings.Repeat("-", tt.config.GridSize*6+1) + "\n"
			if got := strings.Count(output, border) / (tt.config.GridSize + 1); got != tt.boards {
				t.Errorf("Expected %d rendered boards, got %d", tt.boards, got)
			}
		})
	}
}

func TestGame_InvalidInputDoesNotChangeBoard(t *testing.T) {
	grid := engine.Grid{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	}
	eng, err := engine.NewEngineFromGrid(engine.DefaultConfig(), grid, &scriptedSource{})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := NewGame(eng, strings.NewReader("north\n\n42\nup\nLeft\nſ\n"), &out).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !eng.GetState().Grid.Equal(grid) {
		t.Errorf("Invalid input changed the board: %v", eng.GetState().Grid)
	}
	if eng.GetState().TotalMoves != 0 {
		t.Errorf("Invalid input was recorded as a move")
	}
	if got := strings.Count(out.String(), engine.DefaultMessages().InvalidInput); got != 6 {
		t.Errorf("Expected 6 invalid input messages, got %d", got)
	}
}

func TestGame_AppliedMoveSpawnsTile(t *testing.T) {
	grid := engine.Grid{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	eng, err := engine.NewEngineFromGrid(engine.DefaultConfig(), grid, &scriptedSource{draws: []int{0, 0}})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := NewGame(eng, strings.NewReader("a\n"), &out).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	expected := engine.Grid{
		{4, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	if !eng.GetState().Grid.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, eng.GetState().Grid)
	}
	if !strings.Contains(out.String(), "|  4  |  2  |") {
		t.Errorf("Expected the moved board to be rendered, got:\n%s", out.String())
	}
}

func TestGame_ContextCanceled(t *testing.T) {
	game, _ := newTestGame(t, engine.DefaultConfig(), engine.Grid{
		{2, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 2},
	}, "a\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := game.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
