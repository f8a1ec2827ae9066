package main

import (
	"fmt"

	"github.com/newthinker/swingscan/internal/config"
	"github.com/newthinker/swingscan/internal/logger"
	"go.uber.org/zap"
)

// setup loads and validates the configuration and builds the logger
func setup() (*config.Config, *zap.Logger, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}

	opts := logger.Options{Development: debug, Format: cfg.Log.Format}
	if !debug {
		opts.Level = cfg.Log.Level
	}
	log, err := logger.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, log, nil
}
