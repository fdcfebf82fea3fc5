package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete pdfsift configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// IndexConfig configures the indexing pipeline.
type IndexConfig struct {
	// Workers is the number of concurrent extraction workers.
	Workers int `yaml:"workers" json:"workers"`

	// BatchSize is the maximum number of line records committed per
	// transaction. The writer also flushes early whenever the queue drains.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// QueueSize is the capacity of the bounded write queue. Workers block
	// when it fills, which bounds memory during large runs.
	QueueSize int `yaml:"queue_size" json:"queue_size"`

	// Suffix is the document filename suffix to index, matched
	// case-insensitively.
	Suffix string `yaml:"suffix" json:"suffix"`

	// FollowSymlinks enables following symbolic links during the scan.
	FollowSymlinks bool `yaml:"follow_symlinks" json:"follow_symlinks"`
}

// StoreConfig configures the index store.
type StoreConfig struct {
	// Path is the store location. Relative paths resolve against the
	// working directory. For the sqlite backend this is the database file;
	// for bleve it is the index directory.
	Path string `yaml:"path" json:"path"`

	// Backend selects the store backend.
	// Options: "sqlite" (default) or "bleve" (single-process).
	Backend string `yaml:"backend" json:"backend"`
}

// SearchConfig configures query behavior.
type SearchConfig struct {
	// MaxResults caps the number of matches returned. 0 means unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// CacheSize is the number of query results kept in the LRU cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// LoggingConfig configures file logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Index: IndexConfig{
			Workers:   6,
			BatchSize: 500,
			QueueSize: 1024,
			Suffix:    ".pdf",
		},
		Store: StoreConfig{
			Path:    "pdf_search.db",
			Backend: "sqlite",
		},
		Search: SearchConfig{
			MaxResults: 0,
			CacheSize:  128,
		},
		Logging: LoggingConfig{
			Level:     "info",
			File:      "", // Empty uses the default ~/.pdfsift/logs path
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// GetUserConfigPath returns the path to the user/global configuration file.
// It follows XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/pdfsift/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/pdfsift/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pdfsift", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback - should rarely happen
		return filepath.Join(os.TempDir(), ".config", "pdfsift", "config.yaml")
	}
	return filepath.Join(home, ".config", "pdfsift", "config.yaml")
}

// loadUserConfig loads the user/global configuration file if it exists.
// Returns nil config and nil error if the file doesn't exist (that's OK).
func loadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()

	if !fileExists(configPath) {
		return nil, nil // No user config is fine
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, fmt.Errorf("failed to load user config from %s: %w", configPath, err)
	}

	return cfg, nil
}

// Load loads configuration for a run rooted at the specified directory.
// It applies configuration in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User/global config (~/.config/pdfsift/config.yaml)
//  3. Project config (.pdfsift.yaml in dir)
//  4. Environment variables (PDFSIFT_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	// Step 1: Load user/global config (if exists)
	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	// Step 2: Load project config (overrides user config)
	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	// Step 3: Apply environment variable overrides (highest precedence)
	cfg.applyEnvOverrides()

	// Step 4: Validate the final configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load configuration from .pdfsift.yaml or .pdfsift.yml.
func (c *Config) loadFromFile(dir string) error {
	// Try .yaml first (takes precedence)
	yamlPath := filepath.Join(dir, ".pdfsift.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	// Try .yml as fallback
	ymlPath := filepath.Join(dir, ".pdfsift.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine - use defaults
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Use a temporary struct for parsing to detect type errors
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Merge parsed values with defaults (only non-zero values)
	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	// Index
	if other.Index.Workers != 0 {
		c.Index.Workers = other.Index.Workers
	}
	if other.Index.BatchSize != 0 {
		c.Index.BatchSize = other.Index.BatchSize
	}
	if other.Index.QueueSize != 0 {
		c.Index.QueueSize = other.Index.QueueSize
	}
	if other.Index.Suffix != "" {
		c.Index.Suffix = other.Index.Suffix
	}
	if other.Index.FollowSymlinks {
		c.Index.FollowSymlinks = true
	}

	// Store
	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}
	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}

	// Search
	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.CacheSize != 0 {
		c.Search.CacheSize = other.Search.CacheSize
	}

	// Logging
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Logging.MaxSizeMB != 0 {
		c.Logging.MaxSizeMB = other.Logging.MaxSizeMB
	}
	if other.Logging.MaxFiles != 0 {
		c.Logging.MaxFiles = other.Logging.MaxFiles
	}
}

// applyEnvOverrides applies PDFSIFT_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PDFSIFT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.Workers = n
		}
	}
	if v := os.Getenv("PDFSIFT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.BatchSize = n
		}
	}
	if v := os.Getenv("PDFSIFT_QUEUE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.QueueSize = n
		}
	}
	if v := os.Getenv("PDFSIFT_FOLLOW_SYMLINKS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Index.FollowSymlinks = b
		}
	}
	if v := os.Getenv("PDFSIFT_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("PDFSIFT_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("PDFSIFT_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("PDFSIFT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// FindProjectRoot finds the project root directory.
// It looks for a .git directory or .pdfsift.yaml/.yml file by walking up
// the directory tree. Returns the starting directory if none is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	currentDir := absDir
	for {
		if dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		if fileExists(filepath.Join(currentDir, ".pdfsift.yaml")) ||
			fileExists(filepath.Join(currentDir, ".pdfsift.yml")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, return original directory
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Index.Workers <= 0 {
		return fmt.Errorf("index.workers must be positive, got %d", c.Index.Workers)
	}
	if c.Index.BatchSize <= 0 {
		return fmt.Errorf("index.batch_size must be positive, got %d", c.Index.BatchSize)
	}
	if c.Index.QueueSize <= 0 {
		return fmt.Errorf("index.queue_size must be positive, got %d", c.Index.QueueSize)
	}
	if !strings.HasPrefix(c.Index.Suffix, ".") {
		return fmt.Errorf("index.suffix must start with a dot, got %s", c.Index.Suffix)
	}

	if c.Store.Path == "" {
		return fmt.Errorf("store.path must not be empty")
	}
	validBackends := map[string]bool{"sqlite": true, "bleve": true}
	if !validBackends[strings.ToLower(c.Store.Backend)] {
		return fmt.Errorf("store.backend must be 'sqlite' or 'bleve', got %s", c.Store.Backend)
	}

	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be non-negative, got %d", c.Search.MaxResults)
	}
	if c.Search.CacheSize < 0 {
		return fmt.Errorf("search.cache_size must be non-negative, got %d", c.Search.CacheSize)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

