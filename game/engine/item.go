package engine

import "fmt"

// ItemKind identifies what occupies a cell. The zero value means the cell is empty.
type ItemKind int

const (
	NoItem ItemKind = iota
	Entry
	Ladder
	Gold
	HealthPotion
	Trap
	MeleeMutant
	RangedMutant
)

const (
	goldScore    = 2
	potionHeal   = 4
	trapDamage   = 2
	meleeDamage  = 2
	mutantScore  = 2
	rangedDamage = 2
)

type itemSpec struct {
	symbol   string
	name     string
	consumed bool
	interact func(p *Player, e *GameEngine)
}

var catalog = [...]itemSpec{
	NoItem:       {symbol: "", name: "", interact: noInteraction},
	Entry:        {symbol: "E", name: "Entry", interact: noInteraction},
	Ladder:       {symbol: "L", name: "Ladder", interact: climbLadder},
	Gold:         {symbol: "G", name: "Gold", consumed: true, interact: pickUpGold},
	HealthPotion: {symbol: "H", name: "Health Potion", consumed: true, interact: drinkPotion},
	Trap:         {symbol: "T", name: "Trap", interact: springTrap},
	MeleeMutant:  {symbol: "M", name: "Melee Mutant", consumed: true, interact: fightMelee},
	RangedMutant: {symbol: "R", name: "Ranged Mutant", consumed: true, interact: defeatRanged},
}

// ItemKinds returns every placeable kind, Entry included
func ItemKinds() []ItemKind {
	return []ItemKind{Entry, Ladder, Gold, HealthPotion, Trap, MeleeMutant, RangedMutant}
}

func (k ItemKind) valid() bool {
	return k >= NoItem && int(k) < len(catalog)
}

func (k ItemKind) spec() itemSpec {
	if !k.valid() {
		return catalog[NoItem]
	}
	return catalog[k]
}

// Symbol is the single-letter map glyph
func (k ItemKind) Symbol() string { return k.spec().symbol }

// Name is the display name
func (k ItemKind) Name() string { return k.spec().name }

// Consumed reports whether the item leaves the grid after interacting with it
func (k ItemKind) Consumed() bool { return k.spec().consumed }

func (k ItemKind) String() string {
	if k == NoItem {
		return "none"
	}
	if !k.valid() {
		return fmt.Sprintf("item(%d)", int(k))
	}
	return k.Name()
}

// Interact applies the item's effect to the player
func (k ItemKind) Interact(p *Player, e *GameEngine) {
	k.spec().interact(p, e)
}

// ItemBySymbol looks up a kind from its map glyph
func ItemBySymbol(symbol string) (ItemKind, bool) {
	for _, k := range ItemKinds() {
		if k.Symbol() == symbol {
			return k, true
		}
	}
	return NoItem, false
}

func noInteraction(*Player, *GameEngine) {}

func climbLadder(_ *Player, e *GameEngine) {
	e.advanceLevel()
}

func pickUpGold(p *Player, e *GameEngine) {
	p.AddScore(goldScore)
	e.addMessage(fmt.Sprintf("You picked up gold! (+%d score)", goldScore))
}

func drinkPotion(p *Player, e *GameEngine) {
	healed := p.Heal(potionHeal)
	e.addMessage(fmt.Sprintf("You drank a health potion! (+%d HP)", healed))
}

// Traps stay on the grid and fire again on every visit.
func springTrap(p *Player, e *GameEngine) {
	p.TakeDamage(trapDamage)
	e.addMessage(fmt.Sprintf("You fell into a trap! (-%d HP)", trapDamage))
}

func fightMelee(p *Player, e *GameEngine) {
	p.TakeDamage(meleeDamage)
	p.AddScore(mutantScore)
	e.addMessage(fmt.Sprintf("You fought a melee mutant! (-%d HP, +%d score)", meleeDamage, mutantScore))
}

func defeatRanged(p *Player, e *GameEngine) {
	p.AddScore(mutantScore)
	e.addMessage(fmt.Sprintf("You defeated a ranged mutant! (+%d score)", mutantScore))
}
