package engine

import "math"

// Player is the single adventurer of a game. It persists across levels.
type Player struct {
	pos   Position
	hp    int
	score int
}

// PlayerInfo is a read-only copy of the player's state
type PlayerInfo struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Position Position `json:"position"`
	HP       int      `json:"hp"`
	MaxHP    int      `json:"max_hp"`
	Score    int      `json:"score"`
}

func newPlayer(pos Position) *Player {
	return &Player{pos: pos, hp: MaxHP}
}

func (p *Player) Position() Position { return p.pos }
func (p *Player) HP() int            { return p.hp }
func (p *Player) MaxHP() int         { return MaxHP }
func (p *Player) Score() int         { return p.score }
func (p *Player) IsAlive() bool      { return p.hp > 0 }

// SetPosition moves the player without any game rules applied
func (p *Player) SetPosition(pos Position) {
	p.pos = pos
}

// AddScore adds n points, saturating instead of overflowing. Score never drops below zero.
func (p *Player) AddScore(n int) {
	switch {
	case n > 0 && p.score > math.MaxInt-n:
		p.score = math.MaxInt
	case p.score+n < 0:
		p.score = 0
	default:
		p.score += n
	}
}

// TakeDamage lowers hp by n, stopping at zero, and returns the damage dealt
func (p *Player) TakeDamage(n int) int {
	if n <= 0 {
		return 0
	}
	if n > p.hp {
		n = p.hp
	}
	p.hp -= n
	return n
}

// Heal raises hp by n, stopping at MaxHP, and returns the amount healed
func (p *Player) Heal(n int) int {
	if n <= 0 {
		return 0
	}
	if n > MaxHP-p.hp {
		n = MaxHP - p.hp
	}
	p.hp += n
	return n
}

func (p *Player) info() PlayerInfo {
	return PlayerInfo{
		X:        p.pos.Row,
		Y:        p.pos.Col,
		Position: p.pos,
		HP:       p.hp,
		MaxHP:    MaxHP,
		Score:    p.score,
	}
}
