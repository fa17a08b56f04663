package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/inconshreveable/log15/v3"

	"github.com/wricardo/minidungeon/game/engine"
	"github.com/wricardo/minidungeon/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

//go:embed presets/*.yaml
var builtinPresets embed.FS

const (
	builtinDir    = "presets"
	defaultPreset = "classic"
)

var presetExtensions = []string{".yaml", ".yml"}

type source struct {
	name   string
	fsys   fs.FS
	prefix string
}

// Manager handles preset loading and caching. Presets in the override
// directory shadow the built-in ones of the same name.
type Manager struct {
	configDir     string
	sources       []source
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
	log           log15.Logger
}

// NewManager creates a new configuration manager. An empty configDir uses
// only the built-in presets.
func NewManager(configDir string) (*Manager, error) {
	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.GameConfig),
		log:       log15.New("module", "config"),
	}

	if configDir != "" {
		info, err := os.Stat(configDir)
		if err != nil || !info.IsDir() {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
		m.sources = append(m.sources, source{name: "custom", fsys: os.DirFS(configDir)})
	}
	m.sources = append(m.sources, source{name: "builtin", fsys: builtinPresets, prefix: builtinDir})

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// presetName strips a known extension from a filename or name
func presetName(name string) string {
	for _, ext := range presetExtensions {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	return name
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = presetName(strings.TrimSpace(name))
	if name == "" || strings.ContainsAny(name, `/\`) || !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	data, src, err := m.readPreset(name)
	if err != nil {
		return nil, err
	}

	config, err := engine.DecodeGameConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %v", ErrInvalidConfig, name, src, err)
	}

	m.log.Debug("loaded preset", "name", name, "source", src, "difficulty", config.Difficulty)
	m.configs[name] = config
	return config, nil
}

func (m *Manager) readPreset(name string) ([]byte, string, error) {
	for _, src := range m.sources {
		for _, ext := range presetExtensions {
			data, err := fs.ReadFile(src.fsys, path.Join(src.prefix, name+ext))
			if err == nil {
				return data, src.name, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, "", fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}
	return nil, "", fmt.Errorf("%w: %q", ErrConfigNotFound, name)
}

// ListConfigs returns information about all available configurations, sorted by name
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	seen := make(map[string]bool)
	var configs []*service.ConfigInfo

	for _, src := range m.sources {
		dir := src.prefix
		if dir == "" {
			dir = "."
		}
		entries, err := fs.ReadDir(src.fsys, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}

		for _, entry := range entries {
			name := presetName(entry.Name())
			if entry.IsDir() || name == entry.Name() || seen[name] {
				continue
			}

			config, err := m.LoadConfig(name)
			if err != nil {
				// Skip invalid configs
				m.log.Warn("skipping preset", "file", entry.Name(), "err", err)
				continue
			}
			seen[name] = true

			configs = append(configs, &service.ConfigInfo{
				Filename:    entry.Name(),
				ConfigID:    name,
				Name:        config.Name,
				Description: config.Description,
				Difficulty:  config.Difficulty,
				Seed:        config.Seed,
				Source:      src.name,
			})
		}
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})
	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached preset and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig prefers the classic preset, then the first valid one,
// then the engine's built-in default
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(defaultPreset)
	if err != nil {
		configs, listErr := m.ListConfigs()
		switch {
		case listErr != nil:
			return listErr
		case len(configs) == 0:
			config = engine.DefaultGameConfig()
		default:
			if config, err = m.LoadConfig(configs[0].ConfigID); err != nil {
				return err
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}
