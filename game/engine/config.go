package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// GameConfig is a named game preset
type GameConfig struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Difficulty  int    `yaml:"difficulty" json:"difficulty"`
	// Seed fixes the dungeon layout and combat rolls; 0 means random
	Seed int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// ValidateGameConfig reports every problem with config at once
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return errors.New("config validation: config is nil")
	}

	var err error
	if strings.TrimSpace(config.Name) == "" {
		err = multierr.Append(err, errors.New("config validation: name is required"))
	}
	if strings.TrimSpace(config.Description) == "" {
		err = multierr.Append(err, errors.New("config validation: description is required"))
	}
	if config.Difficulty < MinDifficulty || config.Difficulty > MaxDifficulty {
		err = multierr.Append(err, fmt.Errorf("config validation: difficulty must be between %d and %d, got %d",
			MinDifficulty, MaxDifficulty, config.Difficulty))
	}
	if config.Seed < 0 {
		err = multierr.Append(err, fmt.Errorf("config validation: seed must not be negative, got %d", config.Seed))
	}
	return err
}

// DecodeGameConfig reads one YAML preset and validates it. Unknown keys are rejected.
func DecodeGameConfig(r io.Reader) (*GameConfig, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var config GameConfig
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig reads and validates a YAML preset from disk
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	config, err := DecodeGameConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// DefaultGameConfig is used when no preset is available
func DefaultGameConfig() *GameConfig {
	return &GameConfig{
		Name:        "classic",
		Description: "Two levels, a handful of ranged mutants",
		Difficulty:  3,
	}
}
