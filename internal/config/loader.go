package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if CLIPSCORE_CONFIG is set
//  3. env (prefix CLIPSCORE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("CLIPSCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: CLIPSCORE_ADDR, CLIPSCORE_BATCH_SIZE, ...
	// Map env keys like CLIPSCORE_BATCH_SIZE -> batch_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("CLIPSCORE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "clipscore_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.BatchSize < 1 {
		return nil, fmt.Errorf("%w: batch_size must be positive", ErrInvalidConfig)
	}
	if cfg.BatchDelayMS < 0 {
		return nil, fmt.Errorf("%w: batch_delay_ms must not be negative", ErrInvalidConfig)
	}
	if cfg.VerifyConcurrency < 1 {
		return nil, fmt.Errorf("%w: verify_concurrency must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
