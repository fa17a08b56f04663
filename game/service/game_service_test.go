package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
	"github.com/wricardo/minidungeon/game/session"
)

var errConfigNotFound = errors.New("configuration not found")

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": {Name: "classic", Description: "Default", Difficulty: 3, Seed: 99},
			"calm":    {Name: "calm", Description: "No ranged mutants", Difficulty: 0, Seed: quietSeed()},
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, ok := m.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errConfigNotFound, name)
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var infos []*service.ConfigInfo
	for _, id := range []string{"calm", "classic"} {
		c := m.configs[id]
		infos = append(infos, &service.ConfigInfo{ConfigID: id, Name: c.Name, Description: c.Description, Difficulty: c.Difficulty})
	}
	return infos, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

// quietSeed returns the first seed whose level 1 at difficulty 0 leaves the
// cell above the entry empty
func quietSeed() int64 {
	for seed := int64(1); ; seed++ {
		if cell, _ := engine.NewWithSeed(0, seed).CellAt(engine.Position{Row: 8, Col: 1}); cell.Symbol == "" {
			return seed
		}
	}
}

func newTestService() service.GameService {
	return service.NewGameService(session.NewManager(), NewMockConfigManager())
}

// createCalmSession starts a session on the difficulty 0 preset
func createCalmSession(t *testing.T, svc service.GameService) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), service.CreateSessionRequest{ConfigName: "calm"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	t.Run("default config", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, service.CreateSessionRequest{})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.ConfigName != "classic" {
			t.Errorf("Expected classic config, got %q", info.ConfigName)
		}
		if info.GameState == nil || info.GameState.Status != engine.Playing {
			t.Fatal("Expected a playing game state")
		}
		if info.GameState.Player.Position != (engine.Position{Row: 9, Col: 1}) {
			t.Errorf("Expected start at (9,1), got %v", info.GameState.Player.Position)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, service.CreateSessionRequest{
			ConfigName: "classic",
			Difficulty: intPtr(6),
			Seed:       int64Ptr(1234),
		})
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if info.GameConfig.Difficulty != 6 || info.GameConfig.Seed != 1234 {
			t.Errorf("Expected overrides applied, got %+v", info.GameConfig)
		}
		if info.GameState.Difficulty != 6 {
			t.Errorf("Expected engine difficulty 6, got %d", info.GameState.Difficulty)
		}
	})

	t.Run("overrides do not leak into the preset", func(t *testing.T) {
		cfg, _ := svc.LoadConfig(ctx, "classic")
		if cfg.Difficulty != 3 {
			t.Errorf("Expected preset difficulty unchanged, got %d", cfg.Difficulty)
		}
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, service.CreateSessionRequest{Difficulty: intPtr(11)})
		if !errors.Is(err, service.ErrInvalidRequest) {
			t.Errorf("Expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("unknown config lists alternatives", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "nope"})
		if !errors.Is(err, errConfigNotFound) {
			t.Fatalf("Expected wrapped not found error, got %v", err)
		}
		if !strings.Contains(err.Error(), "calm, classic") {
			t.Errorf("Expected available configs in error, got %v", err)
		}
	})
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createCalmSession(t, svc)

	t.Run("blocked by boundary", func(t *testing.T) {
		result, err := svc.Move(ctx, info.ID, "down")
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if result.Success {
			t.Fatal("Expected move down from the entry to fail")
		}
		if result.AttemptedTo == nil || result.AttemptedTo.Reason != "boundary" {
			t.Errorf("Expected boundary attempt, got %+v", result.AttemptedTo)
		}
		if result.Message != "You tried to move down but hit the boundary." {
			t.Errorf("Unexpected message %q", result.Message)
		}
		if len(result.Events) != 1 || result.Events[0].Type != "blocked" {
			t.Errorf("Expected one blocked event, got %+v", result.Events)
		}
	})

	t.Run("blocked by wall", func(t *testing.T) {
		result, err := svc.Move(ctx, info.ID, "l")
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if result.Success || result.AttemptedTo == nil || result.AttemptedTo.Reason != "wall" {
			t.Errorf("Expected wall block, got %+v", result)
		}
	})

	t.Run("moves up", func(t *testing.T) {
		result, err := svc.Move(ctx, info.ID, "UP")
		if err != nil {
			t.Fatalf("Move failed: %v", err)
		}
		if !result.Success || result.Step == nil {
			t.Fatalf("Expected successful step, got %+v", result)
		}
		if result.Step.From != (engine.Position{Row: 9, Col: 1}) {
			t.Errorf("Unexpected from %v", result.Step.From)
		}
		if result.Direction != "up" {
			t.Errorf("Expected direction up, got %q", result.Direction)
		}
		if result.GameState.Steps != 1 {
			t.Errorf("Expected 1 step, got %d", result.GameState.Steps)
		}
		if got := result.NewMessages[len(result.NewMessages)-1]; got != "You moved up one step." {
			t.Errorf("Unexpected last message %q", got)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := svc.Move(ctx, info.ID, "sideways")
		if !errors.Is(err, engine.ErrUnknownDirection) {
			t.Errorf("Expected ErrUnknownDirection, got %v", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.Move(ctx, "missing", "up")
		if !errors.Is(err, session.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()

	t.Run("stops on wall", func(t *testing.T) {
		svc := newTestService()
		info := createCalmSession(t, svc)

		result, err := svc.BulkMove(ctx, info.ID, []string{"up", "left", "up"})
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if result.Success {
			t.Error("Expected bulk move to report failure")
		}
		if result.StopReasonCode != "blocked_wall" || result.StoppedOnMove != 2 {
			t.Errorf("Expected blocked_wall on move 2, got %q on %d", result.StopReasonCode, result.StoppedOnMove)
		}
		if result.MovesExecuted != 1 || len(result.Steps) != 1 {
			t.Errorf("Expected 1 executed move, got %d", result.MovesExecuted)
		}
		if result.AttemptedTo == nil || result.AttemptedTo.Col != 0 {
			t.Errorf("Unexpected attempt %+v", result.AttemptedTo)
		}
	})

	t.Run("reports each step", func(t *testing.T) {
		svc := newTestService()
		info := createCalmSession(t, svc)

		result, err := svc.BulkMove(ctx, info.ID, []string{"up"})
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if !result.Success || result.StopReasonCode != "" || len(result.Steps) != 1 {
			t.Fatalf("Expected one clean step, got %+v", result)
		}
		step := result.Steps[0]
		if step.Idx != 1 || step.Dir != "up" || !step.Success || step.LevelUp || step.Victory {
			t.Errorf("Unexpected step %+v", step)
		}
		if step.From != (engine.Position{Row: 9, Col: 1}) || step.To != (engine.Position{Row: 8, Col: 1}) {
			t.Errorf("Expected (9,1)->(8,1), got %v->%v", step.From, step.To)
		}
		if step.Item != "" || step.HPBefore != result.StartHP || step.HPAfter != result.EndHP {
			t.Errorf("Expected an empty cell with no damage, got %+v", step)
		}
		if result.EndPos != step.To || result.ScoreDelta != 0 {
			t.Errorf("Unexpected end %v delta %d", result.EndPos, result.ScoreDelta)
		}
	})

	t.Run("invalid direction", func(t *testing.T) {
		svc := newTestService()
		info := createCalmSession(t, svc)

		result, err := svc.BulkMove(ctx, info.ID, []string{"up", "jump"})
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if result.StopReasonCode != "invalid_direction" || result.StoppedOnMove != 2 {
			t.Errorf("Expected invalid_direction on move 2, got %q on %d", result.StopReasonCode, result.StoppedOnMove)
		}
	})

	t.Run("truncates long requests", func(t *testing.T) {
		svc := newTestService()
		info := createCalmSession(t, svc)

		moves := make([]string, engine.MaxBulkMoves+10)
		for i := range moves {
			moves[i] = "down"
		}
		result, err := svc.BulkMove(ctx, info.ID, moves)
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if !result.Truncated || result.Limit != engine.MaxBulkMoves || result.RequestedMoves != len(moves) {
			t.Errorf("Expected truncation to %d, got %+v", engine.MaxBulkMoves, result)
		}
	})

	t.Run("game over", func(t *testing.T) {
		svc := newTestService()
		info := createCalmSession(t, svc)

		// Step off the entry, then pace up and down until the steps run out
		// or something on the board ends the game first.
		result, err := svc.BulkMove(ctx, info.ID, []string{"up"})
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		for i := 0; i < 10 && !result.GameOver; i++ {
			moves := make([]string, 0, engine.MaxBulkMoves)
			for len(moves) < engine.MaxBulkMoves {
				moves = append(moves, "up", "down")
			}
			result, err = svc.BulkMove(ctx, info.ID, moves)
			if err != nil {
				t.Fatalf("BulkMove failed: %v", err)
			}
		}
		if !result.GameOver {
			t.Fatal("Expected the game to end")
		}
		if result.GameOverCode != "died" && result.GameOverCode != "out_of_steps" && result.GameOverCode != "victory" {
			t.Errorf("Unexpected game over code %q", result.GameOverCode)
		}

		after, err := svc.BulkMove(ctx, info.ID, []string{"up"})
		if err != nil {
			t.Fatalf("BulkMove failed: %v", err)
		}
		if after.StopReasonCode != "game_over" || after.MovesExecuted != 0 {
			t.Errorf("Expected game_over stop with no moves, got %q %d", after.StopReasonCode, after.MovesExecuted)
		}
	})
}

func TestGameService_GetMessages(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createCalmSession(t, svc)

	all, err := svc.GetMessages(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(all.Messages) != 1 || all.Messages[0] != "Level 1 started! Difficulty: 0" {
		t.Errorf("Unexpected messages %v", all.Messages)
	}

	svc.Move(ctx, info.ID, "down")
	newer, err := svc.GetMessages(ctx, info.ID, all.Next)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(newer.Messages) != 1 || newer.Since != 1 || newer.Next != 2 {
		t.Errorf("Unexpected response %+v", newer)
	}

	past, _ := svc.GetMessages(ctx, info.ID, 500)
	if len(past.Messages) != 0 || past.Since != past.Next {
		t.Errorf("Expected empty tail, got %+v", past)
	}
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createCalmSession(t, svc)

	svc.Move(ctx, info.ID, "down")
	svc.Move(ctx, info.ID, "up")
	svc.Move(ctx, info.ID, "down")

	t.Run("desc default", func(t *testing.T) {
		resp, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Limit: 2})
		if err != nil {
			t.Fatalf("GetMoveHistory failed: %v", err)
		}
		if resp.TotalMoves != 3 || resp.TotalPages != 2 || !resp.HasNext || resp.HasPrevious {
			t.Errorf("Unexpected pagination %+v", resp)
		}
		if len(resp.Moves) != 2 || resp.Moves[0].MoveNumber != 3 || resp.Moves[1].MoveNumber != 2 {
			t.Errorf("Expected moves 3 and 2, got %+v", resp.Moves)
		}
	})

	t.Run("asc second page", func(t *testing.T) {
		resp, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 2, Limit: 2, Order: "asc"})
		if err != nil {
			t.Fatalf("GetMoveHistory failed: %v", err)
		}
		if len(resp.Moves) != 1 || resp.Moves[0].MoveNumber != 3 || !resp.HasPrevious || resp.HasNext {
			t.Errorf("Unexpected page %+v", resp)
		}
	})

	t.Run("page past the end", func(t *testing.T) {
		resp, err := svc.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 9, Limit: 2})
		if err != nil {
			t.Fatalf("GetMoveHistory failed: %v", err)
		}
		if len(resp.Moves) != 0 {
			t.Errorf("Expected no moves, got %d", len(resp.Moves))
		}
	})
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createCalmSession(t, svc)
	original := info.GameState.Render()

	svc.BulkMove(ctx, info.ID, []string{"up", "up", "right"})

	state, err := svc.Reset(ctx, info.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if state.Steps != 0 || state.Player.Position != (engine.Position{Row: 9, Col: 1}) {
		t.Errorf("Expected fresh game, got steps %d at %v", state.Steps, state.Player.Position)
	}
	if state.Render() != original {
		t.Error("Expected reset to reproduce the same dungeon")
	}

	if _, err := svc.Reset(ctx, "missing"); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_ListAndDeleteSessions(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	a := createCalmSession(t, svc)
	createCalmSession(t, svc)

	sessions, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	if err := svc.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := svc.GetSession(ctx, a.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected deleted session to be gone, got %v", err)
	}
	if err := svc.DeleteSession(ctx, a.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestGameService_Configs(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 2 {
		t.Errorf("Expected 2 configs, got %d", len(configs))
	}
	if _, err := svc.LoadConfig(ctx, "calm"); err != nil {
		t.Errorf("LoadConfig failed: %v", err)
	}
}

func TestGameService_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	info := createCalmSession(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				switch (i + j) % 5 {
				case 0:
					if _, err := svc.GetSession(ctx, info.ID); err != nil {
						t.Errorf("GetSession failed: %v", err)
					}
				case 1:
					if _, err := svc.GetGameState(ctx, info.ID); err != nil {
						t.Errorf("GetGameState failed: %v", err)
					}
				case 2:
					if _, err := svc.ListSessions(ctx); err != nil {
						t.Errorf("ListSessions failed: %v", err)
					}
				case 3:
					if _, err := svc.GetMessages(ctx, info.ID, 0); err != nil {
						t.Errorf("GetMessages failed: %v", err)
					}
				default:
					if _, err := svc.Move(ctx, info.ID, "up"); err != nil {
						t.Errorf("Move failed: %v", err)
					}
				}
			}
		}(i)
	}
	wg.Wait()

	after, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if after.LastAccessedAt.Before(info.LastAccessedAt) {
		t.Errorf("Expected last access to move forward, got %v before %v", after.LastAccessedAt, info.LastAccessedAt)
	}
}
