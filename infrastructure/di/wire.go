//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"dispatch/application/ports"
	"dispatch/infrastructure/config"
	"dispatch/infrastructure/observability"
	"dispatch/interfaces/http/rest"
	"dispatch/pkg/inject"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Level   zap.AtomicLevel
	Logger  *zap.Logger
	Metrics *observability.Collector
	Tracing *observability.TracerProvider
	Engine  *inject.Engine
	Store   ports.ItemStore
	Router  *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideAtomicLevel,
	ProvideLogger,
	ProvideCollector,
	ProvideTracerProvider,
	ProvideEngine,
	ProvideJWTValidator,
	ProvideErrorHandler,
	ProvideItemStore,
	ProvideApp,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
