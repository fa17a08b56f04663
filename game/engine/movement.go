package engine

import (
	"fmt"
	"time"
)

// MovePlayer attempts to move the player one cell in dir. It returns false
// without touching the game when the game is over or the target is a wall or
// off the grid.
func (e *GameEngine) MovePlayer(dir Direction) bool {
	if e.status != Playing || !dir.Valid() {
		return false
	}

	from := e.player.Position()
	to := from.Add(dir)

	if !e.grid.InBounds(to) {
		e.addMessage(fmt.Sprintf("You tried to move %s but hit the boundary.", dir))
		e.recordMove(dir, from, from, "", false)
		return false
	}
	if e.grid.Cell(to).Wall {
		e.addMessage(fmt.Sprintf("You tried to move %s but hit a wall.", dir))
		e.recordMove(dir, from, from, "", false)
		return false
	}

	// the item as it was before this move resolved it
	item := e.grid.Cell(to).Item.Name()

	e.player.SetPosition(to)
	e.steps++

	// Ranged mutants shoot before the target cell is resolved, so a mutant
	// the player is stepping onto still gets its shot.
	e.resolveRangedAttacks()

	grid := e.grid
	if kind := grid.Cell(to).Item; kind != NoItem && kind != Entry {
		kind.Interact(e.player, e)
		if kind.Consumed() {
			grid.removeItem(to)
		}
	}

	e.addMessage(fmt.Sprintf("You moved %s one step.", dir))
	e.checkGameEnd()
	e.recordMove(dir, from, e.player.Position(), item, true)
	return true
}

// resolveRangedAttacks lets every ranged mutant in the same row or column
// within reach take one shot with even odds
func (e *GameEngine) resolveRangedAttacks() {
	target := e.player.Position()
	for _, mutant := range e.grid.Find(RangedMutant) {
		if !inLineOfFire(mutant, target) {
			continue
		}
		if e.rng.Intn(2) == 0 {
			e.player.TakeDamage(rangedDamage)
			e.addMessage(fmt.Sprintf("A ranged mutant attacked and you lost %d HP!", rangedDamage))
		} else {
			e.addMessage("A ranged mutant attacked, but missed!")
		}
	}
}

// inLineOfFire ignores walls and other items between the two cells
func inLineOfFire(from, to Position) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	d := ManhattanDistance(from, to)
	return d > 0 && d <= rangedAttackReach
}

// checkGameEnd runs after every successful move, including the one that
// reaches the final ladder: dying or using the last step on that move still
// loses. Death wins over running out of steps.
func (e *GameEngine) checkGameEnd() {
	if !e.player.IsAlive() {
		e.status = Lost
		e.addMessage("You died! Game Over.")
		return
	}
	if e.steps >= e.maxSteps {
		e.status = Lost
		e.addMessage("You ran out of steps! Game Over.")
	}
}

func (e *GameEngine) recordMove(dir Direction, from, to Position, item string, success bool) {
	e.history = append(e.history, MoveHistoryEntry{
		Action:       dir,
		FromPosition: from,
		ToPosition:   to,
		Item:         item,
		Level:        e.level,
		HP:           e.player.HP(),
		Score:        e.player.Score(),
		Timestamp:    time.Now().Unix(),
		Success:      success,
		MoveNumber:   len(e.history) + 1,
	})
}

// CanMove reports whether a move in dir would succeed right now
func (e *GameEngine) CanMove(dir Direction) bool {
	if e.status != Playing || !dir.Valid() {
		return false
	}
	to := e.player.Position().Add(dir)
	return e.grid.InBounds(to) && !e.grid.Cell(to).Wall
}

// GetPossibleMoves returns the directions that would currently succeed
func (e *GameEngine) GetPossibleMoves() []Direction {
	var moves []Direction
	for _, dir := range Directions() {
		if e.CanMove(dir) {
			moves = append(moves, dir)
		}
	}
	return moves
}

// BulkMove executes moves in order and stops at the first blocked move or
// once the game is over. The result has one entry per attempted move.
func (e *GameEngine) BulkMove(dirs []Direction) []bool {
	results := make([]bool, 0, len(dirs))
	for _, dir := range dirs {
		if e.IsGameOver() {
			break
		}
		ok := e.MovePlayer(dir)
		results = append(results, ok)
		if !ok {
			break
		}
	}
	return results
}
