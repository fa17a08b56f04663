package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inconshreveable/log15/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/telemetry"
)

// SessionTTL is how long an untouched session survives. Expired sessions
// are pruned whenever a new one is created.
const SessionTTL = 24 * time.Hour

// ErrInvalidRequest marks caller mistakes such as out of range overrides
var ErrInvalidRequest = errors.New("invalid request")

// eventTypes classifies message log entries, first match wins
var eventTypes = []struct {
	prefix string
	kind   string
}{
	{"You picked up gold", "gold"},
	{"You drank a health potion", "health_potion"},
	{"You fell into a trap", "trap"},
	{"You fought a melee mutant", "melee_mutant"},
	{"You defeated a ranged mutant", "ranged_mutant"},
	{"A ranged mutant attacked", "ranged_attack"},
	{"Advancing to Level", "level_up"},
	{"Level ", "level_start"},
	{"Congratulations", "victory"},
	{"You died", "game_over"},
	{"You ran out of steps", "game_over"},
	{"You tried to move", "blocked"},
	{"You moved", "move"},
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
	log      log15.Logger
	tracer   trace.Tracer
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      log15.New("module", "service"),
		tracer:   telemetry.Tracer("service"),
	}
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func sessionAttrs(sessionID string, state *engine.GameState) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("session.id", sessionID),
		attribute.Int("game.level", state.Level),
		attribute.Int("game.steps", state.Steps),
		attribute.String("game.status", state.Status.String()),
		attribute.Int("player.hp", state.Player.HP),
		attribute.Int("player.score", state.Player.Score),
	}
}

// resolveConfig loads the named preset (or the default) and applies overrides to a copy
func (s *gameServiceImpl) resolveConfig(req CreateSessionRequest) (*engine.GameConfig, error) {
	var base *engine.GameConfig
	if req.ConfigName != "" {
		loaded, err := s.configs.LoadConfig(req.ConfigName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config '%s' (available: %s): %w",
				req.ConfigName, strings.Join(s.configIDs(), ", "), err)
		}
		base = loaded
	} else {
		base = s.configs.GetDefault()
	}
	if base == nil {
		base = engine.DefaultGameConfig()
	}

	config := *base
	if req.Difficulty != nil {
		config.Difficulty = *req.Difficulty
	}
	if req.Seed != nil {
		config.Seed = *req.Seed
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return &config, nil
}

func (s *gameServiceImpl) configIDs() []string {
	configs, err := s.configs.ListConfigs()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(configs))
	for _, c := range configs {
		ids = append(ids, c.ConfigID)
	}
	return ids
}

func newSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.Config.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// touch looks a session up and marks it as used. Callers hold the write lock,
// since LastAccessedAt is read by every reader of the session.
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	if err := s.sessions.UpdateLastAccessed(sessionID); err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	_, span := s.tracer.Start(ctx, "game.create_session",
		trace.WithAttributes(attribute.String("game.config", req.ConfigName)))
	defer span.End()

	config, err := s.resolveConfig(req)
	if err != nil {
		return nil, failSpan(span, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pruned := s.sessions.CleanupExpiredSessions(SessionTTL); pruned > 0 {
		s.log.Info("pruned idle sessions", "count", pruned)
	}

	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("failed to create session: %w", err))
	}

	info := newSessionInfo(sess)
	span.SetAttributes(sessionAttrs(sess.ID, info.GameState)...)
	span.SetAttributes(
		attribute.Int("game.difficulty", sess.Config.Difficulty),
		attribute.Int64("game.seed", sess.Config.Seed),
	)
	s.log.Info("session created", "session", sess.ID, "config", sess.Config.Name,
		"difficulty", sess.Config.Difficulty, "seed", sess.Config.Seed)
	return info, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return newSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, newSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	s.log.Info("session deleted", "session", sessionID)
	return nil
}

// stepInfo describes one recorded move. before is the player as the move found
// it and levelBefore the level it started on.
func stepInfo(entry engine.MoveHistoryEntry, idx int, before engine.PlayerInfo, levelBefore int) StepInfo {
	return StepInfo{
		Idx:         idx,
		Dir:         entry.Action.String(),
		From:        entry.FromPosition,
		To:          entry.ToPosition,
		Item:        entry.Item,
		HPBefore:    before.HP,
		HPAfter:     entry.HP,
		ScoreBefore: before.Score,
		ScoreAfter:  entry.Score,
		Level:       entry.Level,
		Success:     entry.Success,
		LevelUp:     entry.Level > levelBefore,
	}
}

func attemptInfo(eng engine.Engine, target engine.Position) *AttemptInfo {
	attempt := &AttemptInfo{Row: target.Row, Col: target.Col, Reason: "game_over"}
	if eng.IsGameOver() {
		return attempt
	}
	cell, inBounds := eng.CellAt(target)
	switch {
	case !inBounds:
		attempt.Reason = "boundary"
	case cell.Wall:
		attempt.Reason = "wall"
	}
	return attempt
}

func extractEvents(messages []string, pos engine.Position) []GameEvent {
	now := time.Now()
	events := make([]GameEvent, 0, len(messages))
	for _, msg := range messages {
		kind := "info"
		for _, et := range eventTypes {
			if strings.HasPrefix(msg, et.prefix) {
				kind = et.kind
				break
			}
		}
		events = append(events, GameEvent{Type: kind, Message: msg, Timestamp: now, Position: pos})
	}
	return events
}

func gameOverCode(state *engine.GameState) string {
	switch {
	case state.Status == engine.Won:
		return "victory"
	case state.Status == engine.Lost && state.Player.HP <= 0:
		return "died"
	case state.Status == engine.Lost:
		return "out_of_steps"
	}
	return ""
}

func directionNames(dirs []engine.Direction) []string {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = d.String()
	}
	return names
}

// Move executes a single move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	_, span := s.tracer.Start(ctx, "game.move", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("move.direction", direction),
	))
	defer span.End()

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, failSpan(span, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	eng := sess.Engine
	before, level, mark := eng.Player(), eng.Level(), eng.MessageCount()
	target := before.Position.Add(dir)

	var info StepInfo
	var attempted *AttemptInfo
	if eng.MovePlayer(dir) {
		info = stepInfo(*eng.GetLastMove(), 1, before, level)
		info.Victory = eng.IsVictory()
	} else {
		attempted = attemptInfo(eng, target)
	}
	messages := eng.MessagesSince(mark)
	state := eng.GetState()

	result := &MoveResult{
		Success:     info.Success,
		Direction:   dir.String(),
		GameState:   state,
		NewMessages: messages,
		Events:      extractEvents(messages, state.Player.Position),
	}
	if len(messages) > 0 {
		result.Message = messages[len(messages)-1]
	}
	if info.Success {
		result.Step = &info
	} else {
		result.AttemptedTo = attempted
	}

	span.SetAttributes(sessionAttrs(sessionID, state)...)
	span.SetAttributes(attribute.Bool("move.success", info.Success))
	s.log.Debug("move", "session", sessionID, "dir", dir, "success", info.Success,
		"pos", state.Player.Position, "hp", state.Player.HP, "score", state.Player.Score)
	if info.Success && state.GameOver {
		s.log.Info("game finished", "session", sessionID, "status", state.Status,
			"score", state.Player.Score, "steps", state.Steps)
	}

	return result, nil
}

// BulkMove executes moves in order, stopping at the first blocked move,
// unknown direction or end of game
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string) (*BulkMoveResult, error) {
	_, span := s.tracer.Start(ctx, "game.bulk_move", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.Int("move.requested", len(moves)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	eng := sess.Engine
	start := eng.Player()
	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Success:        true,
		StartPos:       start.Position,
		StartHP:        start.HP,
		NewMessages:    []string{},
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	// Directions are parsed up front; the moves before the first bad one still run
	dirs := make([]engine.Direction, 0, len(moves))
	var parseErr error
	for _, move := range moves {
		dir, err := engine.ParseDirection(move)
		if err != nil {
			parseErr = err
			break
		}
		dirs = append(dirs, dir)
	}

	mark, recorded, level := eng.MessageCount(), len(eng.GetMoveHistory()), eng.Level()
	outcomes := eng.BulkMove(dirs)
	result.NewMessages = append(result.NewMessages, eng.MessagesSince(mark)...)

	before := start
	for i, entry := range eng.GetMoveHistory()[recorded:] {
		info := stepInfo(entry, i+1, before, level)
		if !entry.Success {
			attempted := attemptInfo(eng, entry.FromPosition.Add(entry.Action))
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, entry.Action)
			result.StopReasonCode = "blocked_" + attempted.Reason
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attempted
			break
		}
		result.MovesExecuted++
		result.Steps = append(result.Steps, info)
		before = engine.PlayerInfo{HP: entry.HP, Score: entry.Score}
		level = entry.Level
	}
	if n := len(result.Steps); n > 0 && eng.IsVictory() {
		result.Steps[n-1].Victory = true
	}

	switch next := len(outcomes) + 1; {
	case result.StopReasonCode != "":
	case eng.IsGameOver() && (len(outcomes) < len(dirs) || parseErr != nil):
		result.StoppedReason = "game_over"
		result.StopReasonCode = "game_over"
		result.StoppedOnMove = next
	case parseErr != nil:
		result.Success = false
		result.StoppedReason = fmt.Sprintf("move %d: %v", next, parseErr)
		result.StopReasonCode = "invalid_direction"
		result.StoppedOnMove = next
	}

	state := eng.GetState()
	result.GameState = state
	result.EndPos = state.Player.Position
	result.EndHP = state.Player.HP
	result.ScoreDelta = state.Player.Score - start.Score
	result.GameOver = state.GameOver
	result.Events = extractEvents(result.NewMessages, state.Player.Position)
	result.PossibleMoves = directionNames(eng.GetPossibleMoves())

	if state.GameOver {
		result.GameOverCode = gameOverCode(state)
		if result.StopReasonCode == "" {
			result.StopReasonCode = result.GameOverCode
		}
	}

	span.SetAttributes(sessionAttrs(sessionID, state)...)
	span.SetAttributes(
		attribute.Int("move.executed", result.MovesExecuted),
		attribute.String("move.stop_reason", result.StopReasonCode),
	)
	s.log.Debug("bulk move", "session", sessionID, "requested", result.RequestedMoves,
		"executed", result.MovesExecuted, "stop", result.StopReasonCode)
	if state.GameOver && result.MovesExecuted > 0 {
		s.log.Info("game finished", "session", sessionID, "status", state.Status,
			"score", state.Player.Score, "steps", state.Steps)
	}

	return result, nil
}

// Reset starts the session over with the same preset and seed
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	_, span := s.tracer.Start(ctx, "game.reset", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, failSpan(span, err)
	}

	eng, err := engine.NewEngine(sess.Config)
	if err != nil {
		return nil, failSpan(span, fmt.Errorf("failed to reset session: %w", err))
	}
	sess.Engine = eng

	s.log.Info("session reset", "session", sessionID, "seed", sess.Config.Seed)
	return eng.GetState(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMessages returns the message log entries from index since onward
func (s *gameServiceImpl) GetMessages(ctx context.Context, sessionID string, since int) (*MessagesResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	count := sess.Engine.MessageCount()
	if since < 0 {
		since = 0
	}
	if since > count {
		since = count
	}
	return &MessagesResponse{
		Messages: sess.Engine.MessagesSince(since),
		Since:    since,
		Next:     count,
	}, nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

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

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
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

// ListConfigs returns available game presets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig returns a preset by name
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}
