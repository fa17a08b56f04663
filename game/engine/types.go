package engine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	GridSize      = 10
	MaxHP         = 10
	MaxSteps      = 100
	MinDifficulty = 0
	MaxDifficulty = 10
	FinalLevel    = 2
	MaxBulkMoves  = 50

	// Placement quotas, consumed in this order after the ladder
	trapQuota         = 5
	goldQuota         = 5
	meleeMutantQuota  = 3
	healthPotionQuota = 2

	// advanceDifficultyStep is added to the base difficulty on leaving level 1
	advanceDifficultyStep = 2
	// levelTwoRangedBonus is added on top of the base difficulty when placing
	// ranged mutants on level 2
	levelTwoRangedBonus = 2
	rangedAttackReach   = 2
)

// ErrUnknownDirection is returned when a direction string cannot be parsed
var ErrUnknownDirection = errors.New("unknown direction")

// Position is a (row, col) grid coordinate. Row grows downward.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the neighbouring position in the given direction
func (p Position) Add(d Direction) Position {
	dRow, dCol := d.Delta()
	return Position{Row: p.Row + dRow, Col: p.Col + dCol}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Direction is one of the four orthogonal moves
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var directionInfo = [...]struct {
	name       string
	dRow, dCol int
}{
	Up:    {"up", -1, 0},
	Down:  {"down", 1, 0},
	Left:  {"left", 0, -1},
	Right: {"right", 0, 1},
}

// Directions lists every direction in a stable order
func Directions() []Direction {
	return []Direction{Up, Down, Left, Right}
}

// Valid reports whether d is one of the four known directions
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

// Delta returns the row and column offsets for one step
func (d Direction) Delta() (int, int) {
	if !d.Valid() {
		return 0, 0
	}
	info := directionInfo[d]
	return info.dRow, info.dCol
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionInfo[d].name
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts full names ("up") and single letters ("u"), case-insensitive
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "u", "up":
		return Up, nil
	case "d", "down":
		return Down, nil
	case "l", "left":
		return Left, nil
	case "r", "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// Status is the lifecycle of a game. Once a move ends with the game over, the
// status never changes again.
type Status int

const (
	Playing Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case Playing:
		return "playing"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "playing":
		*s = Playing
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

// MoveHistoryEntry represents a single move attempt in the game history
type MoveHistoryEntry struct {
	Action       Direction `json:"action"`
	FromPosition Position  `json:"from_position"`
	ToPosition   Position  `json:"to_position"`
	Item         string    `json:"item,omitempty"` // item on the target cell before the move
	Level        int       `json:"level"`
	HP           int       `json:"hp"`
	Score        int       `json:"score"`
	Timestamp    int64     `json:"timestamp"`
	Success      bool      `json:"success"`
	MoveNumber   int       `json:"move_number"`
}
