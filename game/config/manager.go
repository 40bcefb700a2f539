package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/tile2048/game/engine"
	"github.com/wricardo/tile2048/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// DefaultVariant is the variant used when none is requested
const DefaultVariant = "classic"

// configExtensions are tried in order when resolving a variant name to a file
var configExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles game configuration loading and caching. Variants come from
// the built-in set and, when a directory is configured, from JSON or YAML files
// in it. A file shadows the built-in variant of the same name.
type Manager struct {
	configDir     string
	defaultConfig *engine.GameConfig
	builtins      map[string]*engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager. An empty configDir serves the
// built-in variants only.
func NewManager(configDir string) (*Manager, error) {
	if configDir != "" {
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("config directory does not exist: %s", configDir)
		}
	}

	m := &Manager{
		configDir: configDir,
		builtins:  BuiltinConfigs(),
		configs:   make(map[string]*engine.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// BuiltinConfigs returns the variants that are always available
func BuiltinConfigs() map[string]*engine.GameConfig {
	classic := engine.DefaultConfig()

	mini := engine.DefaultConfig()
	mini.Name = "mini"
	mini.Description = "Small 3x3 board, reach 256"
	mini.GridSize = 3
	mini.WinValue = 256

	large := engine.DefaultConfig()
	large.Name = "large"
	large.Description = "Roomy 5x5 board, reach 4096"
	large.GridSize = 5
	large.WinValue = 4096

	return map[string]*engine.GameConfig{
		classic.Name: classic,
		mini.Name:    mini,
		large.Name:   large,
	}
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name = configID(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrConfigNotFound)
	}

	m.mu.RLock()
	// Check cache first
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

	config, err := m.readConfigFile(name)
	if errors.Is(err, ErrConfigNotFound) {
		builtin, ok := m.builtins[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, name)
		}
		config, err = builtin.Clone(), nil
	}
	if err != nil {
		return nil, err
	}

	m.configs[name] = config
	return config, nil
}

// readConfigFile looks for name.json, name.yaml and name.yml in the config directory
func (m *Manager) readConfigFile(name string) (*engine.GameConfig, error) {
	if m.configDir == "" {
		return nil, ErrConfigNotFound
	}

	for _, ext := range configExtensions {
		configPath := filepath.Join(m.configDir, name+ext)

		data, err := os.ReadFile(configPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		config, err := parseConfig(data, ext)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filepath.Base(configPath), err)
		}
		if config.Name == "" {
			config.Name = name
		}
		config.ApplyDefaults()

		if err := engine.ValidateGameConfig(config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		return config, nil
	}

	return nil, ErrConfigNotFound
}

// parseConfig decodes a variant in the format implied by its file extension
func parseConfig(data []byte, ext string) (*engine.GameConfig, error) {
	var config engine.GameConfig
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}
	return &config, nil
}

// ListConfigs returns information about all available configurations, sorted by ID
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	if m.configDir != "" {
		entries, err := os.ReadDir(m.configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read config directory: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !hasConfigExtension(entry.Name()) {
				continue
			}

			name := configID(entry.Name())
			if seen[name] {
				continue
			}

			// Try to load the config to get details
			config, err := m.LoadConfig(name)
			if err != nil {
				// Skip invalid configs
				continue
			}

			seen[name] = true
			configs = append(configs, newConfigInfo(name, entry.Name(), "file", config))
		}
	}

	for name := range m.builtins {
		if seen[name] {
			continue
		}
		config, err := m.LoadConfig(name)
		if err != nil {
			continue
		}
		configs = append(configs, newConfigInfo(name, "", "builtin", config))
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ConfigID < configs[j].ConfigID
	})

	return configs, nil
}

func newConfigInfo(id, filename, source string, config *engine.GameConfig) *service.ConfigInfo {
	return &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id, // This is the identifier to use for session creation
		Name:        config.Name,
		Description: config.Description,
		GridSize:    config.GridSize,
		WinValue:    config.WinValue,
		SpawnValues: append([]int(nil), config.SpawnValues...),
		Source:      source,
	}
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

// Register adds a validated in-memory variant under id, replacing any cached one.
// Unset messages and spawn values get their defaults.
func (m *Manager) Register(id string, config *engine.GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	id = configID(id)
	if id == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.builtins[id] = config
	m.configs[id] = config
	return nil
}

// loadDefaultConfig resolves the classic variant, from a file if one shadows it
func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(DefaultVariant)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig fills the defaults a file would get, validates the configuration
// and writes it to the config directory. A name ending in .yaml or .yml is
// written as YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if m.configDir == "" {
		return fmt.Errorf("no config directory configured")
	}
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	config = config.Clone()
	config.ApplyDefaults()
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := configID(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: invalid config name %q", ErrInvalidConfig, name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	var (
		data []byte
		err  error
	)
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		ext = ".json"
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, id+ext)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// ApplyOverrides returns a copy of config with the board size and winning tile
// replaced where they are non-zero. The result is validated.
func ApplyOverrides(config *engine.GameConfig, gridSize, winValue int) (*engine.GameConfig, error) {
	if gridSize == 0 && winValue == 0 {
		return config, nil
	}

	out := config.Clone()
	if gridSize != 0 {
		out.GridSize = gridSize
	}
	if winValue != 0 {
		out.WinValue = winValue
	}
	out.Name = fmt.Sprintf("%s-%dx%d-%d", config.Name, out.GridSize, out.GridSize, out.WinValue)

	if err := engine.ValidateGameConfig(out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return out, nil
}

// configID strips a known file extension from name
func configID(name string) string {
	name = strings.TrimSpace(name)
	for _, ext := range configExtensions {
		if strings.HasSuffix(strings.ToLower(name), ext) {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

func hasConfigExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, known := range configExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
