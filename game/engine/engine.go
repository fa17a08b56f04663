package engine

import (
	"fmt"
	"math/rand"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state
	GetState() *GameState
	Status() Status
	IsGameOver() bool
	IsVictory() bool
	Level() int
	Difficulty() int
	EffectiveDifficulty() int
	Steps() int
	MaxSteps() int
	Seed() int64
	Player() PlayerInfo

	// Movement operations
	MovePlayer(dir Direction) bool
	BulkMove(dirs []Direction) []bool
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Grid inspection
	CellAt(pos Position) (CellView, bool)

	// Message log
	Messages() []string
	MessagesSince(n int) []string
	MessageCount() int

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. It is not safe for concurrent use.
type GameEngine struct {
	grid       *Grid
	player     *Player
	entry      Position
	level      int
	difficulty int
	steps      int
	maxSteps   int
	status     Status
	seed       int64
	rng        *rand.Rand
	messages   []string
	history    []MoveHistoryEntry
}

var _ Engine = (*GameEngine)(nil)

// New creates a game at level 1. A nil rng is replaced by a time-seeded one.
// The difficulty is clamped to [MinDifficulty, MaxDifficulty].
func New(difficulty int, rng *rand.Rand) *GameEngine {
	if rng == nil {
		seed := time.Now().UnixNano()
		return NewWithSeed(difficulty, seed)
	}
	return newEngine(difficulty, 0, rng)
}

// NewWithSeed creates a game whose item placement and combat rolls are
// fully determined by seed
func NewWithSeed(difficulty int, seed int64) *GameEngine {
	return newEngine(difficulty, seed, rand.New(rand.NewSource(seed)))
}

// NewEngine creates a new game engine with the provided configuration.
// A zero seed picks a random one, which is then reported by Seed.
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewWithSeed(config.Difficulty, seed), nil
}

func newEngine(difficulty int, seed int64, rng *rand.Rand) *GameEngine {
	e := &GameEngine{
		level:      1,
		difficulty: clampDifficulty(difficulty),
		maxSteps:   MaxSteps,
		status:     Playing,
		seed:       seed,
		rng:        rng,
	}
	e.initializeLevel()
	return e
}

func clampDifficulty(d int) int {
	if d < MinDifficulty {
		return MinDifficulty
	}
	if d > MaxDifficulty {
		return MaxDifficulty
	}
	return d
}

// entryPosition returns where the player arrives on a level
func entryPosition(level int) Position {
	if level == 1 {
		return Position{Row: GridSize - 1, Col: 1}
	}
	return Position{Row: GridSize - 2, Col: GridSize - 2}
}

func (e *GameEngine) initializeLevel() {
	e.grid = newGrid()
	e.entry = entryPosition(e.level)
	e.grid.setItem(e.entry, Entry)

	if e.player == nil {
		e.player = newPlayer(e.entry)
	} else {
		e.player.SetPosition(e.entry)
	}

	e.placeItemsRandomly()
	e.addMessage(fmt.Sprintf("Level %d started! Difficulty: %d", e.level, e.EffectiveDifficulty()))
}

// placeItemsRandomly shuffles the free interior cells once and fills them in
// quota order. Ranged mutants scale with difficulty and are capped by the
// cells left over.
func (e *GameEngine) placeItemsRandomly() {
	free := e.grid.interiorPositions(e.entry)
	e.rng.Shuffle(len(free), func(i, j int) {
		free[i], free[j] = free[j], free[i]
	})

	next := 0
	place := func(kind ItemKind, quota int) {
		for i := 0; i < quota && next < len(free); i++ {
			e.grid.setItem(free[next], kind)
			next++
		}
	}

	place(Ladder, 1)
	place(Trap, trapQuota)
	place(Gold, goldQuota)
	place(MeleeMutant, meleeMutantQuota)
	place(RangedMutant, min(e.EffectiveDifficulty(), len(free)-next))
	place(HealthPotion, healthPotionQuota)
}

// advanceLevel is reached only through a ladder
func (e *GameEngine) advanceLevel() {
	if e.level >= FinalLevel {
		e.status = Won
		e.addMessage("Congratulations! You escaped the dungeon!")
		return
	}
	e.level++
	e.difficulty += advanceDifficultyStep
	e.addMessage(fmt.Sprintf("Advancing to Level %d!", e.level))
	e.initializeLevel()
}

func (e *GameEngine) addMessage(msg string) {
	e.messages = append(e.messages, msg)
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	return newGameState(e)
}

func (e *GameEngine) Status() Status   { return e.status }
func (e *GameEngine) IsGameOver() bool { return e.status != Playing }
func (e *GameEngine) IsVictory() bool  { return e.status == Won }
func (e *GameEngine) Level() int       { return e.level }
func (e *GameEngine) Steps() int       { return e.steps }
func (e *GameEngine) MaxSteps() int    { return e.maxSteps }

// Seed returns the seed the engine was built from, or 0 for an injected source
func (e *GameEngine) Seed() int64 { return e.seed }

// Difficulty returns the base difficulty, which grows when a level is cleared
func (e *GameEngine) Difficulty() int { return e.difficulty }

// EffectiveDifficulty is the value used for placing ranged mutants on the current level
func (e *GameEngine) EffectiveDifficulty() int {
	if e.level == 2 {
		return e.difficulty + levelTwoRangedBonus
	}
	return e.difficulty
}

// Player returns a copy of the player's state
func (e *GameEngine) Player() PlayerInfo {
	return e.player.info()
}

// CellAt describes the cell at pos; ok is false when pos is off the grid
func (e *GameEngine) CellAt(pos Position) (CellView, bool) {
	if !e.grid.InBounds(pos) {
		return CellView{}, false
	}
	return newCellView(e.grid.Cell(pos)), true
}

// Messages returns a copy of the full message log
func (e *GameEngine) Messages() []string {
	return e.MessagesSince(0)
}

// MessagesSince returns a copy of the log entries from index n onward
func (e *GameEngine) MessagesSince(n int) []string {
	if n < 0 {
		n = 0
	}
	if n > len(e.messages) {
		n = len(e.messages)
	}
	out := make([]string, len(e.messages)-n)
	copy(out, e.messages[n:])
	return out
}

func (e *GameEngine) MessageCount() int {
	return len(e.messages)
}

// GetMoveHistory returns a copy of every move attempted while the game was running
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	out := make([]MoveHistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// GetLastMove returns the most recent move, or nil before the first one
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}
