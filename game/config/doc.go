// Package config provides preset management for MiniDungeon.
//
// The config package handles:
//   - Loading game presets from YAML files
//   - Built-in presets embedded in the binary
//   - Optional override directory that shadows built-in presets
//   - Default preset selection and listing
//
// Preset Format:
//
//	name: classic
//	description: Two levels with a handful of ranged mutants
//	difficulty: 3   # 0..10, number of ranged mutants on level 1
//	seed: 0         # optional, fixes the layout when non-zero
//
// Built-in presets: classic, daily, easy, hard, nightmare.
//
// Usage:
//
//	manager, err := config.NewManager(os.Getenv("CONFIG_DIR"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("hard")
package config
