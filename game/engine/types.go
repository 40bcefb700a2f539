package engine

// Phase is the position of a game in its state machine
type Phase string

const (
	PhaseSetup   Phase = "setup"
	PhasePlaying Phase = "playing"
	PhaseWon     Phase = "won"
	PhaseLost    Phase = "lost"
)

// IsTerminal reports whether no further moves are accepted in this phase
func (p Phase) IsTerminal() bool {
	return p == PhaseWon || p == PhaseLost
}

// Outcome is the result of a game derived from its grid alone
type Outcome string

const (
	InProgress Outcome = "in_progress"
	Won        Outcome = "won"
	Lost       Outcome = "lost"
)

const (
	// Defaults of the classic variant
	DefaultGridSize = 4
	DefaultWinValue = 2048

	// Validation constants
	MinGridSize  = 2
	MaxGridSize  = 8
	MaxBulkMoves = 50
)

// DefaultSpawnValues are chosen uniformly when a tile spawns (50/50 between 2 and 4)
var DefaultSpawnValues = []int{2, 4}

// Position represents x,y coordinates; X is the column and Y the row
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GameState represents the complete game state
type GameState struct {
	Grid        Grid               `json:"grid"`
	Phase       Phase              `json:"phase"`
	Outcome     Outcome            `json:"outcome"`
	WinValue    int                `json:"win_value"`
	MaxTile     int                `json:"max_tile"`
	Message     string             `json:"message"`
	GameOver    bool               `json:"game_over"`
	Victory     bool               `json:"victory"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Direction    string    `json:"direction"`
	Changed      bool      `json:"changed"`
	SpawnedAt    *Position `json:"spawned_at,omitempty"`
	SpawnedValue int       `json:"spawned_value,omitempty"`
	MaxTile      int       `json:"max_tile"`
	Timestamp    int64     `json:"timestamp"`
	MoveNumber   int       `json:"move_number"`
}

// Snapshot returns a deep copy of the state that later moves cannot change
func (gs *GameState) Snapshot() *GameState {
	if gs == nil {
		return nil
	}
	out := *gs
	out.Grid = gs.Grid.Clone()
	out.MoveHistory = append([]MoveHistoryEntry(nil), gs.MoveHistory...)
	out.CurrentMoves = append([]MoveHistoryEntry(nil), gs.CurrentMoves...)
	out.PossibleMoves = append([]string(nil), gs.PossibleMoves...)
	return &out
}
