package chunker

import (
	"fmt"

	"docseek/internal/domain"
)

const (
	DefaultMinTokens         = 600
	DefaultMaxTokens         = 1200
	DefaultOverlapPercentage = 12.5
)

// Config bounds chunk sizes in estimated tokens.
type Config struct {
	MinTokens         int     `yaml:"min_tokens"`
	MaxTokens         int     `yaml:"max_tokens"`
	OverlapPercentage float64 `yaml:"overlap_percentage"`
}

// DefaultConfig returns 600/1200 tokens with 12.5% overlap.
func DefaultConfig() Config {
	return Config{
		MinTokens:         DefaultMinTokens,
		MaxTokens:         DefaultMaxTokens,
		OverlapPercentage: DefaultOverlapPercentage,
	}
}

// Validate reports a configuration that cannot be segmented with.
func (c Config) Validate() error {
	switch {
	case c.MaxTokens <= 0:
		return fmt.Errorf("%w: max_tokens must be > 0, got %d", domain.ErrInvalidConfig, c.MaxTokens)
	case c.MinTokens < 0:
		return fmt.Errorf("%w: min_tokens must be >= 0, got %d", domain.ErrInvalidConfig, c.MinTokens)
	case c.MinTokens > c.MaxTokens:
		return fmt.Errorf("%w: min_tokens %d exceeds max_tokens %d", domain.ErrInvalidConfig, c.MinTokens, c.MaxTokens)
	case c.OverlapPercentage < 0 || c.OverlapPercentage >= 100:
		return fmt.Errorf("%w: overlap_percentage must be in [0,100), got %g", domain.ErrInvalidConfig, c.OverlapPercentage)
	}
	return nil
}
