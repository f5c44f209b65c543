// Package cli holds what every ivc subcommand needs to start: configuration, a
// logger and the component container.
package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"interview-capture/internal/app"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/config"
)

// Verbose switches the logger to development output
var Verbose bool

// Bootstrap loads the configuration and builds the logger
func Bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(Verbose || !cfg.IsProduction())
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

// Container bootstraps and wires every component. The returned func releases
// them and flushes the logger.
func Container(ctx context.Context) (*app.Container, func(), error) {
	cfg, logger, err := Bootstrap()
	if err != nil {
		return nil, nil, err
	}
	c, cleanup, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return c, func() {
		cleanup()
		logger.Sync()
	}, nil
}
