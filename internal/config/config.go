package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"docseek/internal/chunker"
	"docseek/internal/corpus"
	"docseek/internal/domain"
	"docseek/internal/retrieval"
)

const (
	EnvConfigPath = "DOCSEEK_CONFIG"
	EnvLogLevel   = "DOCSEEK_LOG_LEVEL"
)

// CacheConfig sizes the LRU cache of search responses.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

// SummarizerConfig bounds ingest summaries.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Segmentation chunker.Config    `yaml:"segmentation"`
	Search       retrieval.Options `yaml:"search"`
	Corpus       corpus.Config     `yaml:"corpus"`
	Cache        CacheConfig       `yaml:"cache"`
	Summarizer   SummarizerConfig  `yaml:"summarizer"`
	Log          LogConfig         `yaml:"log"`
}

// Load reads a config from path over the defaults. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries $DOCSEEK_CONFIG, ./docseek.yaml, then ~/.config/docseek/config.yaml.
// If none exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		cfg, err := Load(p)
		return cfg, p, err
	}
	cwdPath := "docseek.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docseek", "config.yaml"), nil
}

func Default() *AppConfig {
	return &AppConfig{
		Segmentation: chunker.DefaultConfig(),
		Search:       retrieval.DefaultOptions(),
		Corpus:       corpus.Config{Type: corpus.TypeMemory},
		Cache:        CacheConfig{Enabled: true, Size: 256},
		Summarizer:   SummarizerConfig{MaxSentences: 3},
		Log:          LogConfig{Level: "info"},
	}
}

func applyEnv(cfg *AppConfig) {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Log.Level = lvl
	}
}

// Validate checks every section. Errors wrap domain.ErrInvalidConfig.
func (c *AppConfig) Validate() error {
	if err := c.Segmentation.Validate(); err != nil {
		return fmt.Errorf("segmentation: %w", err)
	}
	if err := c.Corpus.Validate(); err != nil {
		return err
	}
	switch {
	case c.Search.Threshold < 0 || c.Search.Threshold > 100:
		return fmt.Errorf("%w: search.threshold must be within [0, 100], got %g", domain.ErrInvalidConfig, c.Search.Threshold)
	case c.Search.MaxResults <= 0:
		return fmt.Errorf("%w: search.max_results must be > 0, got %d", domain.ErrInvalidConfig, c.Search.MaxResults)
	case c.Search.StrategyTimeout <= 0:
		return fmt.Errorf("%w: search.strategy_timeout must be > 0", domain.ErrInvalidConfig)
	case c.Cache.Enabled && c.Cache.Size <= 0:
		return fmt.Errorf("%w: cache.size must be > 0 when enabled", domain.ErrInvalidConfig)
	case c.Corpus.Type == corpus.TypeSQLite && c.Corpus.SQLite.Path == "":
		return fmt.Errorf("%w: corpus.sqlite.path is required", domain.ErrInvalidConfig)
	}
	return nil
}

// CacheSize is the effective cache capacity, zero when disabled.
func (c *AppConfig) CacheSize() int {
	if !c.Cache.Enabled {
		return 0
	}
	return c.Cache.Size
}
