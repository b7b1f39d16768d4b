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
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if MATCHPOINT_CONFIG is set
//  3. env (prefix MATCHPOINT_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("MATCHPOINT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: MATCHPOINT_TABLE_NAME, MATCHPOINT_STORE_BACKEND, ...
	// Keys map to the koanf tags on the struct; underscores are preserved.
	envProvider := env.Provider("MATCHPOINT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "matchpoint_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	switch cfg.StoreBackend {
	case BackendDynamo, BackendMemory:
	default:
		return nil, fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, cfg.StoreBackend)
	}
	if cfg.StoreBackend == BackendDynamo && cfg.TableName == "" {
		return nil, fmt.Errorf("%w: table_name must not be empty", ErrInvalidConfig)
	}
	if cfg.DefaultMaxCourts < 0 {
		return nil, fmt.Errorf("%w: default_max_courts must be 0 or greater", ErrInvalidConfig)
	}
	return &cfg, nil
}
