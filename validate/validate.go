// Command validate checks dungeon preset YAML files in a directory
// (default: the built-in presets under ../game/config/presets). It checks:
//   - YAML structure, with unknown keys rejected
//   - Required fields (name, description)
//   - Difficulty range and non-negative seed
//   - That the preset name matches its file name
//
// Every problem in a file is reported, not just the first.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/wricardo/minidungeon/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages contains informational notes; otherwise it
// lists the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	config, err := engine.LoadGameConfig(filePath)
	var pathErr *fs.PathError
	switch {
	case errors.As(err, &pathErr):
		result.Valid = false
		result.Messages = append(result.Messages, fmt.Sprintf("Failed to read file: %v", pathErr))
		return result
	case err != nil:
		result.Valid = false
		// LoadGameConfig prefixes the path; the problems sit one level down
		for _, e := range multierr.Errors(errors.Unwrap(err)) {
			result.Messages = append(result.Messages, strings.TrimPrefix(e.Error(), "config validation: "))
		}
		return result
	}

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if config.Name != stem {
		result.Valid = false
		result.Messages = append(result.Messages,
			fmt.Sprintf("name %q does not match file name %q", config.Name, stem))
		return result
	}

	result.Messages = append(result.Messages, describePreset(config)...)
	return result
}

// describePreset summarizes what a valid preset will generate
func describePreset(config *engine.GameConfig) []string {
	// level 2 raises the base difficulty and adds the same step again
	notes := []string{
		fmt.Sprintf("✓ difficulty %d: %d ranged mutants on level 1, %d on level 2",
			config.Difficulty, config.Difficulty, config.Difficulty+4),
	}
	if config.Seed != 0 {
		state := engine.NewWithSeed(config.Difficulty, config.Seed).GetState()
		_, dist, _ := engine.FindNearest(state, engine.Ladder)
		notes = append(notes, fmt.Sprintf("✓ fixed seed %d: ladder %d steps from the entry", config.Seed, dist))
	} else {
		notes = append(notes, "✓ random layout each game")
	}
	return notes
}

// presetFiles lists the YAML files in dir in name order
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every preset in the directory given as the first argument,
// printing a concise report and exiting non-zero if any are invalid.
func main() {
	configDir := "../game/config/presets"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := presetFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No preset files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Messages {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, msg := range result.Messages {
				fmt.Println("  ❌ " + msg)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
