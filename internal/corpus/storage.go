// Package corpus selects the chunk store backing retrieval.
package corpus

import (
	"context"
	"fmt"

	"docseek/internal/corpus/memory"
	"docseek/internal/corpus/sqlite"
	"docseek/internal/domain"
)

const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
)

// Config picks the corpus backend.
type Config struct {
	Type   string       `yaml:"type"`
	SQLite SQLiteConfig `yaml:"sqlite"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

func (c Config) Validate() error {
	switch c.Type {
	case TypeMemory, TypeSQLite:
		return nil
	}
	return fmt.Errorf("%w: corpus type %q, want %q or %q", domain.ErrInvalidConfig, c.Type, TypeMemory, TypeSQLite)
}

// Open constructs the configured corpus.
func Open(ctx context.Context, cfg Config) (domain.Corpus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Type {
	case TypeSQLite:
		return sqlite.Open(ctx, cfg.SQLite.Path)
	default:
		return memory.New()
	}
}
