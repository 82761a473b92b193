package main

import (
	"context"
	"os"

	"github.com/okian/launchdash/internal/config"
)

const configEnvHint = "$" + config.EnvConfigFile

// loadConfig resolves the process configuration and applies the global
// flag overrides on top of it.
func loadConfig(ctx context.Context) (*config.Config, error) {
	if globalFlags.config != "" {
		if err := os.Setenv(config.EnvConfigFile, globalFlags.config); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if globalFlags.dataPath != "" {
		cfg.DataPath = globalFlags.dataPath
	}
	return cfg, nil
}
