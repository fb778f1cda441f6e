package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`
	ServiceName   string `yaml:"service_name" validate:"required"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Dependency resolution
	MaxResolveDepth int  `yaml:"max_resolve_depth" validate:"gte=0"`
	SingleFlight    bool `yaml:"single_flight"`
	LiteralMetadata bool `yaml:"literal_metadata"`
	DebugErrors     bool `yaml:"debug_errors"`

	// Observability
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
	OTLPEndpoint  string `yaml:"otlp_endpoint" validate:"required_if=EnableTracing true"`

	// Authentication
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	// CORS
	CORSOrigins []string `yaml:"cors_origins"`

	// AWS configuration
	AWSRegion     string `yaml:"aws_region" validate:"required"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	IsLambda      bool   `yaml:"-"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ServerAddress:   ":8080",
		Environment:     "development",
		ServiceName:     "dispatch",
		LogLevel:        "info",
		MaxResolveDepth: 32,
		JWTIssuer:       "dispatch",
		CORSOrigins:     []string{"http://localhost:3000"},
		AWSRegion:       "us-west-2",
	}
}

// LoadConfig loads defaults, then the YAML file named by CONFIG_FILE if set,
// then environment variables.
func LoadConfig() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_FILE")).Load()
}

// applyEnv overlays environment variables on c.
func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.MaxResolveDepth = getEnvInt("MAX_RESOLVE_DEPTH", c.MaxResolveDepth)
	c.SingleFlight = getEnvBool("SINGLE_FLIGHT", c.SingleFlight)
	c.LiteralMetadata = getEnvBool("LITERAL_METADATA", c.LiteralMetadata)
	c.DebugErrors = getEnvBool("DEBUG_ERRORS", c.DebugErrors)

	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLPEndpoint)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		c.CORSOrigins = strings.Split(origins, ",")
	}

	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.DynamoDBTable))
	c.IsLambda = os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

var validate = validator.New()

// Validate checks struct tags and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ZapLevel returns the configured log level.
func (c *Config) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// NewLogger builds the production or development zap logger for c, with
// its level controlled by level.
func NewLogger(c *Config, level zap.AtomicLevel) (*zap.Logger, error) {
	var zc zap.Config
	if c.IsDevelopment() {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	level.SetLevel(c.ZapLevel())
	zc.Level = level
	return zc.Build(zap.Fields(zap.String("service", c.ServiceName)))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
