package engine

import (
	"math"
	"testing"
)

func TestItemCatalog(t *testing.T) {
	tests := []struct {
		kind     ItemKind
		symbol   string
		name     string
		consumed bool
	}{
		{Entry, "E", "Entry", false},
		{Ladder, "L", "Ladder", false},
		{Gold, "G", "Gold", true},
		{HealthPotion, "H", "Health Potion", true},
		{Trap, "T", "Trap", false},
		{MeleeMutant, "M", "Melee Mutant", true},
		{RangedMutant, "R", "Ranged Mutant", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.kind.Symbol() != tt.symbol {
				t.Errorf("Expected symbol %q, got %q", tt.symbol, tt.kind.Symbol())
			}
			if tt.kind.Name() != tt.name {
				t.Errorf("Expected name %q, got %q", tt.name, tt.kind.Name())
			}
			if tt.kind.Consumed() != tt.consumed {
				t.Errorf("Expected consumed %v, got %v", tt.consumed, tt.kind.Consumed())
			}
			if got, ok := ItemBySymbol(tt.symbol); !ok || got != tt.kind {
				t.Errorf("ItemBySymbol(%q): expected %v, got %v", tt.symbol, tt.kind, got)
			}
		})
	}

	if len(ItemKinds()) != len(tests) {
		t.Errorf("Expected %d item kinds, got %d", len(tests), len(ItemKinds()))
	}
	if NoItem.Symbol() != "" || NoItem.String() != "none" {
		t.Error("Expected NoItem to have no symbol")
	}
	if ItemKind(99).Consumed() || ItemKind(99).Symbol() != "" {
		t.Error("Expected unknown kinds to behave like an empty cell")
	}
}

func TestEntryDoesNothing(t *testing.T) {
	e := newTestEngine(t, 0)
	before := e.MessageCount()
	Entry.Interact(e.player, e)
	if e.MessageCount() != before || e.Player().HP != MaxHP || e.Player().Score != 0 {
		t.Error("Expected entry interaction to have no effect")
	}
}

func TestPlayerHealthClamps(t *testing.T) {
	p := newPlayer(Position{Row: 1, Col: 1})

	if got := p.Heal(5); got != 0 || p.HP() != MaxHP {
		t.Errorf("Expected no healing at full hp, healed %d hp %d", got, p.HP())
	}
	if got := p.TakeDamage(3); got != 3 || p.HP() != 7 {
		t.Errorf("Expected 3 damage to hp 7, got %d hp %d", got, p.HP())
	}
	if got := p.TakeDamage(50); got != 7 || p.HP() != 0 {
		t.Errorf("Expected damage clamped to 7 and hp 0, got %d hp %d", got, p.HP())
	}
	if p.IsAlive() {
		t.Error("Expected player with 0 hp to be dead")
	}
	if got := p.Heal(4); got != 4 || p.HP() != 4 {
		t.Errorf("Expected heal 4 to hp 4, got %d hp %d", got, p.HP())
	}
	if got := p.TakeDamage(-2); got != 0 || p.HP() != 4 {
		t.Errorf("Expected negative damage ignored, got %d hp %d", got, p.HP())
	}
}

func TestPlayerScore(t *testing.T) {
	p := newPlayer(Position{})
	p.AddScore(2)
	p.AddScore(2)
	if p.Score() != 4 {
		t.Errorf("Expected score 4, got %d", p.Score())
	}

	p.score = math.MaxInt - 1
	p.AddScore(2)
	if p.Score() != math.MaxInt {
		t.Errorf("Expected saturated score, got %d", p.Score())
	}
}

func TestFindNearestAndCount(t *testing.T) {
	e := newTestEngine(t, 0)
	e.grid.setItem(Position{Row: 2, Col: 2}, Gold)
	e.grid.setItem(Position{Row: 7, Col: 1}, Gold)

	state := e.GetState()
	pos, dist, ok := FindNearest(state, Gold)
	if !ok || pos != (Position{Row: 7, Col: 1}) || dist != 2 {
		t.Errorf("Expected nearest gold at (7,1) distance 2, got %v %d %v", pos, dist, ok)
	}
	if CountItems(state, Gold) != 2 {
		t.Errorf("Expected 2 gold, got %d", CountItems(state, Gold))
	}
	if _, _, ok := FindNearest(state, Ladder); ok {
		t.Error("Expected no ladder")
	}
}

func TestThreatenedCells(t *testing.T) {
	e := newTestEngine(t, 0)
	e.grid.setItem(Position{Row: 4, Col: 4}, RangedMutant)

	// two cells each way along the row and column
	if got := ThreatenedCells(e.GetState()); got != 8 {
		t.Errorf("Expected 8 threatened cells, got %d", got)
	}
}
