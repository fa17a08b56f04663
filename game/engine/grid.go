package engine

// Cell is one square of the dungeon
type Cell struct {
	Wall bool
	Item ItemKind
}

// HasItem reports whether anything other than an empty floor sits in the cell
func (c Cell) HasItem() bool {
	return c.Item != NoItem
}

// Grid is the fixed-size dungeon floor for one level
type Grid struct {
	cells [GridSize][GridSize]Cell
}

// newGrid returns an empty floor with the outer ring walled
func newGrid() *Grid {
	g := &Grid{}
	for i := 0; i < GridSize; i++ {
		g.cells[0][i].Wall = true
		g.cells[GridSize-1][i].Wall = true
		g.cells[i][0].Wall = true
		g.cells[i][GridSize-1].Wall = true
	}
	return g
}

// InBounds reports whether pos lies on the grid
func (g *Grid) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < GridSize && pos.Col >= 0 && pos.Col < GridSize
}

// Cell returns a copy of the cell at pos. Out of bounds positions read as walls.
func (g *Grid) Cell(pos Position) Cell {
	if !g.InBounds(pos) {
		return Cell{Wall: true}
	}
	return g.cells[pos.Row][pos.Col]
}

func (g *Grid) setItem(pos Position, kind ItemKind) {
	g.cells[pos.Row][pos.Col].Item = kind
}

func (g *Grid) removeItem(pos Position) {
	g.cells[pos.Row][pos.Col].Item = NoItem
}

// interiorPositions lists every non-perimeter cell in row-major order, minus exclude
func (g *Grid) interiorPositions(exclude Position) []Position {
	positions := make([]Position, 0, (GridSize-2)*(GridSize-2))
	for row := 1; row < GridSize-1; row++ {
		for col := 1; col < GridSize-1; col++ {
			pos := Position{Row: row, Col: col}
			if pos == exclude {
				continue
			}
			positions = append(positions, pos)
		}
	}
	return positions
}

// Find returns the positions holding kind, scanning row by row
func (g *Grid) Find(kind ItemKind) []Position {
	var found []Position
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if g.cells[row][col].Item == kind {
				found = append(found, Position{Row: row, Col: col})
			}
		}
	}
	return found
}
