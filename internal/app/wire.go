//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"interview-capture/internal/config"
)

// InitializeContainer is the wire injector for Build. Regenerate wire_gen.go with
// `wire ./internal/app` after changing ProviderSet.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
