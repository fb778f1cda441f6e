package di

import (
	"context"
	"strings"
	"time"

	"dispatch/application/demo"
	"dispatch/application/ports"
	"dispatch/infrastructure/config"
	"dispatch/infrastructure/observability"
	"dispatch/infrastructure/persistence/dynamodb"
	"dispatch/infrastructure/persistence/memory"
	"dispatch/interfaces/http/rest"
	"dispatch/pkg/auth"
	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// ProvideAtomicLevel creates the log level shared by the logger and the
// config watcher.
func ProvideAtomicLevel(cfg *config.Config) zap.AtomicLevel {
	return zap.NewAtomicLevelAt(cfg.ZapLevel())
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, error) {
	return config.NewLogger(cfg, level)
}

// ProvideCollector creates the Prometheus collector, or nil when metrics are
// disabled.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector(strings.ReplaceAll(cfg.ServiceName, "-", "_"))
}

// ProvideTracerProvider starts the OTLP exporter when tracing is enabled.
// The cleanup flushes pending spans.
func ProvideTracerProvider(cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	if !cfg.EnableTracing {
		return nil, func() {}, nil
	}
	tp, err := observability.InitTracing(cfg.ServiceName, cfg.Environment, cfg.OTLPEndpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideEngine creates the dependency resolution engine shared by every
// route group.
func ProvideEngine(cfg *config.Config, logger *zap.Logger, collector *observability.Collector, tp *observability.TracerProvider) *inject.Engine {
	opts := []inject.EngineOption{
		inject.WithLogger(logger.Named("inject")),
		inject.WithMaxDepth(cfg.MaxResolveDepth),
	}
	if collector != nil {
		opts = append(opts, inject.WithObserver(collector))
	}
	if tp != nil {
		opts = append(opts, inject.WithTracer(tp.Tracer()))
	}
	if cfg.LiteralMetadata {
		opts = append(opts, inject.WithLiteralMetadata())
	}
	return inject.NewEngine(opts...)
}

// ProvideJWTValidator creates the token validator, or nil when no secret is
// configured.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if cfg.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideErrorHandler creates the error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.DebugErrors)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideItemStore creates the DynamoDB item store when a table is
// configured and the in-memory store otherwise.
func ProvideItemStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.ItemStore, error) {
	if cfg.DynamoDBTable == "" {
		logger.Info("No DynamoDB table configured, using in-memory item store")
		return memory.NewItemStore(), nil
	}
	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := dynamodb.WithCircuitBreaker(
		awsdynamodb.NewFromConfig(awsCfg),
		dynamodb.DefaultBreakerConfig(cfg.DynamoDBTable),
		logger,
	)
	return dynamodb.NewItemStore(client, cfg.DynamoDBTable, logger), nil
}

// ProvideApp builds the application's route tree.
func ProvideApp(
	cfg *config.Config,
	store ports.ItemStore,
	engine *inject.Engine,
	errs *apperrors.ErrorHandler,
	logger *zap.Logger,
) *rest.RouteGroup {
	app := demo.NewApp(store, engine, errs, logger, demo.Options{SingleFlight: cfg.SingleFlight})
	return app.Routes()
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	app *rest.RouteGroup,
	errs *apperrors.ErrorHandler,
	validator *auth.JWTValidator,
	collector *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(app, errs, validator, collector, cfg.CORSOrigins, logger)
}
