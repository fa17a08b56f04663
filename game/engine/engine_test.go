package engine

import (
	"math/rand"
	"strings"
	"testing"
)

// fixedSource makes every coin flip land the same way. Only swap it in after
// construction; rand.Shuffle never terminates on a constant source.
type fixedSource int64

func (s fixedSource) Int63() int64 { return int64(s) }
func (s fixedSource) Seed(int64)   {}

var (
	alwaysHit  = rand.New(fixedSource(0))
	alwaysMiss = rand.New(fixedSource(1 << 32))
)

// newTestEngine returns a seeded engine with every item except the entry removed
func newTestEngine(t *testing.T, difficulty int) *GameEngine {
	t.Helper()
	e := NewWithSeed(difficulty, 42)
	clearItems(e)
	return e
}

func clearItems(e *GameEngine) {
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if e.grid.cells[row][col].Item != Entry {
				e.grid.cells[row][col].Item = NoItem
			}
		}
	}
}

func lastMessage(e *GameEngine) string {
	if len(e.messages) == 0 {
		return ""
	}
	return e.messages[len(e.messages)-1]
}

func TestNewWithSeed(t *testing.T) {
	e := NewWithSeed(3, 7)

	if got := e.Player().Position; got != (Position{Row: 9, Col: 1}) {
		t.Errorf("Expected start position (9,1), got %v", got)
	}
	if e.Player().HP != MaxHP {
		t.Errorf("Expected hp %d, got %d", MaxHP, e.Player().HP)
	}
	if e.Player().Score != 0 {
		t.Errorf("Expected score 0, got %d", e.Player().Score)
	}
	if e.Level() != 1 || e.Steps() != 0 || e.MaxSteps() != 100 {
		t.Errorf("Unexpected counters: level=%d steps=%d maxSteps=%d", e.Level(), e.Steps(), e.MaxSteps())
	}
	if e.Status() != Playing {
		t.Errorf("Expected status playing, got %v", e.Status())
	}
	if e.Seed() != 7 {
		t.Errorf("Expected seed 7, got %d", e.Seed())
	}
	msgs := e.Messages()
	if len(msgs) != 1 || msgs[0] != "Level 1 started! Difficulty: 3" {
		t.Errorf("Unexpected start messages: %v", msgs)
	}
}

func TestNew_NilRandomSource(t *testing.T) {
	e := New(2, nil)
	if e.Seed() == 0 {
		t.Error("Expected a generated seed when no random source is given")
	}
	if e.Status() != Playing {
		t.Errorf("Expected status playing, got %v", e.Status())
	}
}

func TestNew_InjectedRandomSource(t *testing.T) {
	a := New(4, rand.New(rand.NewSource(99)))
	b := New(4, rand.New(rand.NewSource(99)))
	if a.GetState().Render() != b.GetState().Render() {
		t.Error("Expected identical layouts from identically seeded sources")
	}
	if a.Seed() != 0 {
		t.Errorf("Expected seed 0 for an injected source, got %d", a.Seed())
	}
}

func TestNewEngine(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		e, err := NewEngine(&GameConfig{Name: "t", Description: "d", Difficulty: 5, Seed: 11})
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		if e.Difficulty() != 5 || e.Seed() != 11 {
			t.Errorf("Expected difficulty 5 seed 11, got %d %d", e.Difficulty(), e.Seed())
		}
	})

	t.Run("zero seed picks one", func(t *testing.T) {
		e, err := NewEngine(&GameConfig{Name: "t", Description: "d", Difficulty: 1})
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		if e.Seed() == 0 {
			t.Error("Expected a generated seed")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if _, err := NewEngine(&GameConfig{Difficulty: 42}); err == nil {
			t.Error("Expected error for invalid config")
		}
	})
}

func TestDifficultyClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 0},
		{0, 0},
		{6, 6},
		{10, 10},
		{25, 10},
	}
	for _, tt := range tests {
		if got := NewWithSeed(tt.in, 1).Difficulty(); got != tt.want {
			t.Errorf("difficulty %d: expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestGridLayout(t *testing.T) {
	e := NewWithSeed(3, 5)
	state := e.GetState()

	if len(state.Grid) != GridSize {
		t.Fatalf("Expected %d rows, got %d", GridSize, len(state.Grid))
	}
	entry := Position{Row: 9, Col: 1}
	for row := 0; row < GridSize; row++ {
		if len(state.Grid[row]) != GridSize {
			t.Fatalf("Expected %d columns in row %d, got %d", GridSize, row, len(state.Grid[row]))
		}
		for col := 0; col < GridSize; col++ {
			pos := Position{Row: row, Col: col}
			perimeter := row == 0 || col == 0 || row == GridSize-1 || col == GridSize-1
			cell := state.Grid[row][col]
			switch {
			case pos == entry:
				if !cell.Wall || cell.Symbol != "E" {
					t.Errorf("Expected entry on the outer wall at %v, got %+v", pos, cell)
				}
			case perimeter:
				if !cell.Wall {
					t.Errorf("Expected wall at %v", pos)
				}
			default:
				if cell.Wall {
					t.Errorf("Unexpected interior wall at %v", pos)
				}
			}
		}
	}
}

func TestItemPlacementQuotas(t *testing.T) {
	for _, difficulty := range []int{0, 3, 10} {
		e := NewWithSeed(difficulty, int64(difficulty)+100)
		want := map[ItemKind]int{
			Entry:        1,
			Ladder:       1,
			Trap:         5,
			Gold:         5,
			MeleeMutant:  3,
			RangedMutant: difficulty,
			HealthPotion: 2,
		}
		for kind, n := range want {
			if got := len(e.grid.Find(kind)); got != n {
				t.Errorf("difficulty %d: expected %d %s, got %d", difficulty, n, kind, got)
			}
		}
	}
}

func TestLevelTwoPlacement(t *testing.T) {
	if got := len(newGrid().interiorPositions(entryPosition(1))); got != 64 {
		t.Errorf("Expected 64 free cells on level 1, got %d", got)
	}
	free := newGrid().interiorPositions(entryPosition(2))
	if len(free) != 63 {
		t.Errorf("Expected 63 free cells on level 2, got %d", len(free))
	}
	for _, pos := range free {
		if pos == entryPosition(2) {
			t.Fatal("Expected the level 2 entry to be excluded from placement")
		}
	}

	for seed := int64(1); seed <= 20; seed++ {
		e := NewWithSeed(3, seed)
		clearItems(e)
		e.grid.setItem(Position{Row: 8, Col: 1}, Ladder)
		e.MovePlayer(Up)

		if got := e.grid.Cell(Position{Row: 8, Col: 8}).Item; got != Entry {
			t.Fatalf("seed %d: expected entry at (8,8), got %v", seed, got)
		}
		items := 0
		for _, pos := range free {
			if e.grid.Cell(pos).HasItem() {
				items++
			}
		}
		// ladder, traps, gold, melee, ranged (5+2) and potions
		if want := 1 + 5 + 5 + 3 + 7 + 2; items != want {
			t.Errorf("seed %d: expected %d placed items, got %d", seed, want, items)
		}
	}
}

func TestSameSeedSameDungeon(t *testing.T) {
	a := NewWithSeed(4, 1234)
	b := NewWithSeed(4, 1234)
	if a.GetState().Render() != b.GetState().Render() {
		t.Error("Expected identical layouts for identical seeds")
	}

	moves := []Direction{Up, Up, Right, Right, Up, Left, Up, Right}
	a.BulkMove(moves)
	b.BulkMove(moves)
	if a.Player() != b.Player() {
		t.Errorf("Expected identical players, got %+v and %+v", a.Player(), b.Player())
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	e := newTestEngine(t, 0)
	msgs := e.Messages()
	msgs[0] = "tampered"
	if e.Messages()[0] == "tampered" {
		t.Error("Messages should return a copy")
	}

	e.MovePlayer(Up)
	since := e.MessagesSince(1)
	if len(since) != 1 || since[0] != "You moved up one step." {
		t.Errorf("Unexpected messages since 1: %v", since)
	}
	if got := e.MessagesSince(99); len(got) != 0 {
		t.Errorf("Expected no messages past the end, got %v", got)
	}
	if got := e.MessagesSince(-3); len(got) != e.MessageCount() {
		t.Errorf("Expected full log for negative index, got %d entries", len(got))
	}
}

func TestGetStateIsDetached(t *testing.T) {
	e := newTestEngine(t, 0)
	state := e.GetState()
	state.Grid[5][5].Wall = true
	state.Player.HP = 0

	if e.grid.Cell(Position{Row: 5, Col: 5}).Wall {
		t.Error("Mutating the snapshot changed the grid")
	}
	if e.Player().HP != MaxHP {
		t.Error("Mutating the snapshot changed the player")
	}
}

func TestRender(t *testing.T) {
	e := newTestEngine(t, 0)
	e.grid.setItem(Position{Row: 8, Col: 1}, Gold)

	lines := strings.Split(strings.TrimSuffix(e.GetState().Render(), "\n"), "\n")
	if len(lines) != GridSize {
		t.Fatalf("Expected %d lines, got %d", GridSize, len(lines))
	}
	if lines[0] != "##########" {
		t.Errorf("Unexpected top row %q", lines[0])
	}
	if lines[8] != "#G.......#" {
		t.Errorf("Unexpected row 8 %q", lines[8])
	}
	if lines[9] != "#P########" {
		t.Errorf("Unexpected bottom row %q", lines[9])
	}
}

func TestStatusLine(t *testing.T) {
	e := newTestEngine(t, 0)
	want := "Level 1 | HP: 10/10 | Score: 0 | Steps: 0/100"
	if got := e.GetState().StatusLine(); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
