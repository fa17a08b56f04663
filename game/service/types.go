package service

import (
	"time"

	"github.com/wricardo/minidungeon/game/engine"
)

// CreateSessionRequest selects a preset and optionally overrides its values
type CreateSessionRequest struct {
	ConfigName string `json:"config_name,omitempty"`
	Difficulty *int   `json:"difficulty,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool              `json:"success"`
	Direction   string            `json:"direction"`
	GameState   *engine.GameState `json:"game_state"`
	Message     string            `json:"message"`
	NewMessages []string          `json:"new_messages"`
	Events      []GameEvent       `json:"events,omitempty"`
	Step        *StepInfo         `json:"step,omitempty"`
	AttemptedTo *AttemptInfo      `json:"attempted_to,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	NewMessages    []string          `json:"new_messages"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked_boundary|blocked_wall|invalid_direction|game_over|victory|died|out_of_steps
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos   engine.Position `json:"start_pos"`
	EndPos     engine.Position `json:"end_pos"`
	StartHP    int             `json:"start_hp"`
	EndHP      int             `json:"end_hp"`
	ScoreDelta int             `json:"score_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	GameOver      bool     `json:"game_over"`
	GameOverCode  string   `json:"game_over_code,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int             `json:"idx"`
	Dir         string          `json:"dir"`
	From        engine.Position `json:"from"`
	To          engine.Position `json:"to"`
	Item        string          `json:"item,omitempty"` // what was on the target cell before moving
	HPBefore    int             `json:"hp_before"`
	HPAfter     int             `json:"hp_after"`
	ScoreBefore int             `json:"score_before"`
	ScoreAfter  int             `json:"score_after"`
	Level       int             `json:"level"`
	Success     bool            `json:"success"`
	LevelUp     bool            `json:"level_up,omitempty"`
	Victory     bool            `json:"victory,omitempty"`
}

// AttemptInfo details the target cell of a blocked move
type AttemptInfo struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Reason string `json:"reason"` // "boundary" or "wall"
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // see eventTypes
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position"`
}

// MessagesResponse is a slice of the message log starting at Since
type MessagesResponse struct {
	Messages []string `json:"messages"`
	Since    int      `json:"since"`
	Next     int      `json:"next"` // pass as since to fetch only newer entries
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game preset
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  int    `json:"difficulty"`
	Seed        int64  `json:"seed,omitempty"`
	Source      string `json:"source"` // "builtin" or "custom"
}
