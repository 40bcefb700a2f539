package service

import (
	"context"
	"time"

	"github.com/wricardo/tile2048/game/engine"
)

// GameService is the transport-neutral surface shared by the HTTP API, the
// WebSocket hub and the MCP tools. Session IDs are matched case-insensitively.
// Direction strings accept the w/a/s/d tokens and the full direction names.
type GameService interface {
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Move and BulkMove start a fresh game first when reset is set.
	// BulkMove executes at most engine.MaxBulkMoves directions.
	Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager stores sessions by ID. An empty ID on Create asks the store
// to generate one.
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager resolves variant names to validated configurations.
// GetDefault is used when a session is created without a variant name.
type ConfigManager interface {
	GetDefault() *engine.GameConfig
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session pairs one engine with the variant it was started from
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
