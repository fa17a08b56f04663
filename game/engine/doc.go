// Package engine provides the core game logic for MiniDungeon.
//
// The engine package implements the game mechanics including:
//   - A fixed 10x10 grid with a walled perimeter and two levels
//   - Random item placement driven by an injected random source
//   - Movement, ranged mutant attacks and item interactions
//   - Win and loss detection and an append-only message log
//   - Preset loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState is a detached snapshot for renderers,
// and GameConfig is a named preset loaded from YAML.
//
// Usage:
//
//	eng := engine.NewWithSeed(3, 42)
//
//	// Move the player
//	if !eng.MovePlayer(engine.Up) {
//		fmt.Println(eng.Messages()[eng.MessageCount()-1])
//	}
//	state := eng.GetState()
//	fmt.Print(state.Render())
//
// Game Rules:
//
// The player starts on the bottom-left cell of the outer wall with 10 HP and
// has 100 steps to find the ladder on level 1 and then the ladder on level 2.
// Gold and mutants give score, potions heal, traps hurt every time they are
// stepped on, and ranged mutants shoot from up to two cells away along a row
// or column. The game is lost when HP reaches zero or the steps run out, even
// on the move that climbs the final ladder.
package engine
