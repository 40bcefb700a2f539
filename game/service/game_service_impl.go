package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/tile2048/game/engine"
	"github.com/wricardo/tile2048/telemetry"
)

// Option customizes a game service
type Option func(*gameServiceImpl)

// WithTracer replaces the tracer used for move spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *gameServiceImpl) {
		s.tracer = tracer
	}
}

// gameServiceImpl implements the GameService interface. A single lock
// serializes every engine access, so engines need no locking of their own.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	tracer   trace.Tracer
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		tracer:   telemetry.Tracer("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	if configName != "" {
		var err error
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			availableConfigs, listErr := s.configs.ListConfigs()
			if listErr == nil && len(availableConfigs) > 0 {
				configIDs := make([]string, 0, len(availableConfigs))
				for _, cfg := range availableConfigs {
					configIDs = append(configIDs, cfg.ConfigID)
				}
				return nil, fmt.Errorf("config '%s': %w. Available configs: %v", configName, err, configIDs)
			}
			return nil, fmt.Errorf("config '%s': %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Prefer the identifier the caller used over the display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState().Snapshot(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information. Touching the access time is a
// write, so it takes the exclusive lock.
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}

	return result, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     s.getConfigID(sess.Config.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Snapshot(),
		GameConfig:     sess.Config,
	}
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	return nil
}

// Move executes a single move for a session. A move that leaves the board
// unchanged succeeds with Success false; an unknown direction or a finished
// game is an error.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	_, span := s.tracer.Start(ctx, "service.move")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("direction", direction),
		attribute.Bool("reset", reset),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("session %s: %w", sessionID, err))
	}
	s.sessions.UpdateLastAccessed(sessionID)

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, spanError(span, err)
	}

	events := []GameEvent{}
	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, spanError(span, fmt.Errorf("reset: %w", err))
		}
		events = append(events, resetEvent())
	}

	changed, err := sess.Engine.Move(dir)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("move %s: %w", dir, err))
	}

	state := sess.Engine.GetState()
	step := buildStep(sess.Engine, 1, dir, changed)
	events = append(events, moveEvents(sess.Engine, step)...)

	span.SetAttributes(
		attribute.Bool("changed", changed),
		attribute.String("phase", string(state.Phase)),
		attribute.Int("max_tile", state.MaxTile),
	)

	return &MoveResult{
		Success:   changed,
		GameState: state.Snapshot(),
		Message:   state.Message,
		Events:    events,
		Step:      &step,
	}, nil
}

// BulkMove executes multiple moves in sequence. It stops at the first invalid
// direction or once the game is over; blocked moves are recorded and skipped.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.bulk_move")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("requested", len(moves)),
		attribute.Bool("reset", reset),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, spanError(span, fmt.Errorf("session %s: %w", sessionID, err))
	}
	s.sessions.UpdateLastAccessed(sessionID)

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		if _, err := sess.Engine.Reset(); err != nil {
			return nil, spanError(span, fmt.Errorf("reset: %w", err))
		}
		result.Events = append(result.Events, resetEvent())
	}
	result.StartMaxTile = sess.Engine.MaxTile()

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, token := range moves {
		if sess.Engine.IsGameOver() {
			result.StopReasonCode = terminalCode(sess.Engine)
			result.StoppedReason = fmt.Sprintf("game ended before move %d", i+1)
			result.StoppedOnMove = i + 1
			break
		}

		dir, err := engine.ParseDirection(token)
		if err != nil {
			result.Success = false
			result.StopReasonCode = StopInvalidDirection
			result.StoppedReason = fmt.Sprintf("move %d: invalid direction %q", i+1, token)
			result.StoppedOnMove = i + 1
			break
		}

		changed, err := s.tracedMove(ctx, sess, dir)
		if err != nil {
			return nil, spanError(span, fmt.Errorf("move %d (%s): %w", i+1, dir, err))
		}

		result.MovesExecuted++
		if changed {
			result.MovesChanged++
		} else {
			result.MovesBlocked++
		}

		step := buildStep(sess.Engine, i+1, dir, changed)
		result.Steps = append(result.Steps, step)
		result.Events = append(result.Events, moveEvents(sess.Engine, step)...)
	}

	state := sess.Engine.GetState()
	result.GameState = state.Snapshot()
	result.EndMaxTile = state.MaxTile
	result.GameOver = state.GameOver
	result.Victory = state.Victory
	result.Message = state.Message
	result.PossibleMoves = append([]string(nil), state.PossibleMoves...)

	// The last executed move may have ended the game
	if result.GameOver && result.StopReasonCode == "" {
		result.StopReasonCode = terminalCode(sess.Engine)
	}

	span.SetAttributes(
		attribute.Int("executed", result.MovesExecuted),
		attribute.Int("changed", result.MovesChanged),
		attribute.String("phase", string(state.Phase)),
		attribute.String("stop_reason", result.StopReasonCode),
	)

	return result, nil
}

// tracedMove applies one move of a bulk request inside its own span
func (s *gameServiceImpl) tracedMove(ctx context.Context, sess *Session, dir engine.Direction) (bool, error) {
	_, span := s.tracer.Start(ctx, "service.move")
	defer span.End()

	changed, err := sess.Engine.Move(dir)
	if err != nil {
		return false, spanError(span, err)
	}
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("direction", dir.String()),
		attribute.Bool("changed", changed),
		attribute.String("phase", string(sess.Engine.Phase())),
	)
	return changed, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state, err := sess.Engine.Reset()
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return state.Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState().Snapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := make([]engine.MoveHistoryEntry, 0, opts.Limit)
	if start < total {
		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// buildStep summarizes the move the engine just recorded
func buildStep(eng *engine.GameEngine, idx int, dir engine.Direction, changed bool) StepInfo {
	step := StepInfo{
		Idx:      idx,
		Dir:      dir.String(),
		Changed:  changed,
		MaxTile:  eng.MaxTile(),
		Victory:  eng.IsVictory(),
		GameOver: eng.IsGameOver(),
	}
	if last := eng.GetLastMove(); last != nil && changed {
		step.SpawnedAt = last.SpawnedAt
		step.SpawnedValue = last.SpawnedValue
	}
	return step
}

// moveEvents generates the events of one move
func moveEvents(eng *engine.GameEngine, step StepInfo) []GameEvent {
	now := time.Now()

	if !step.Changed {
		return []GameEvent{{
			Type:      EventBlocked,
			Message:   fmt.Sprintf("%s: %s", step.Dir, eng.GetConfig().Messages.CantMove),
			Timestamp: now,
		}}
	}

	events := []GameEvent{{
		Type:      EventMove,
		Message:   fmt.Sprintf("Moved %s", step.Dir),
		Timestamp: now,
	}}
	if step.SpawnedAt != nil {
		events = append(events, GameEvent{
			Type:      EventSpawn,
			Message:   fmt.Sprintf("New %d tile at (%d,%d)", step.SpawnedValue, step.SpawnedAt.X, step.SpawnedAt.Y),
			Timestamp: now,
			Position:  step.SpawnedAt,
		})
	}

	switch {
	case step.Victory:
		events = append(events, GameEvent{
			Type:      EventVictory,
			Message:   eng.GetConfig().VictoryText(),
			Timestamp: now,
		})
	case step.GameOver:
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   eng.GetConfig().Messages.GameOver,
			Timestamp: now,
		})
	}

	return events
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      EventReset,
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

func terminalCode(eng *engine.GameEngine) string {
	if eng.IsVictory() {
		return StopVictory
	}
	return StopGameOver
}

// spanError marks the span failed and passes err through
func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
