package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dr := from.Row - to.Row
	if dr < 0 {
		dr = -dr
	}
	dc := from.Col - to.Col
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// FindNearest finds the closest cell holding kind in state and returns its
// position and distance from the player
func FindNearest(state *GameState, kind ItemKind) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	symbol := kind.Symbol()
	if symbol == "" {
		return nearest, minDistance, false
	}

	for row := range state.Grid {
		for col, cell := range state.Grid[row] {
			if cell.Symbol != symbol {
				continue
			}
			pos := Position{Row: row, Col: col}
			distance := ManhattanDistance(state.Player.Position, pos)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearest = pos
			}
		}
	}

	return nearest, minDistance, minDistance >= 0
}

// CountItems counts the cells holding kind in a snapshot
func CountItems(state *GameState, kind ItemKind) int {
	count := 0
	symbol := kind.Symbol()
	for _, row := range state.Grid {
		for _, cell := range row {
			if symbol != "" && cell.Symbol == symbol {
				count++
			}
		}
	}
	return count
}

// ThreatenedCells counts open interior cells that at least one ranged mutant can shoot at
func ThreatenedCells(state *GameState) int {
	var mutants []Position
	for row := range state.Grid {
		for col, cell := range state.Grid[row] {
			if cell.Symbol == RangedMutant.Symbol() {
				mutants = append(mutants, Position{Row: row, Col: col})
			}
		}
	}

	count := 0
	for row := range state.Grid {
		for col, cell := range state.Grid[row] {
			if cell.Wall {
				continue
			}
			pos := Position{Row: row, Col: col}
			for _, m := range mutants {
				if inLineOfFire(m, pos) {
					count++
					break
				}
			}
		}
	}
	return count
}
