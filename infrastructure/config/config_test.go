package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dispatch/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 32, cfg.MaxResolveDepth)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
server_address: ":9090"
log_level: debug
max_resolve_depth: 4
single_flight: true
cors_origins: ["https://a.example", "https://b.example"]
`)
	t.Setenv("LOG_LEVEL", "warn")

	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, zapcore.WarnLevel, cfg.ZapLevel())
	assert.Equal(t, 4, cfg.MaxResolveDepth)
	assert.True(t, cfg.SingleFlight)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"defaults", path, "environment"}, loader.Sources())
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	loader := config.NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"defaults", "environment"}, loader.Sources())
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "unknown log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "unknown environment", mutate: func(c *config.Config) { c.Environment = "qa" }, wantErr: true},
		{name: "negative depth", mutate: func(c *config.Config) { c.MaxResolveDepth = -1 }, wantErr: true},
		{name: "tracing without endpoint", mutate: func(c *config.Config) { c.EnableTracing = true }, wantErr: true},
		{name: "tracing with endpoint", mutate: func(c *config.Config) {
			c.EnableTracing = true
			c.OTLPEndpoint = "localhost:4317"
		}},
		{name: "production without secret", mutate: func(c *config.Config) { c.Environment = "production" }, wantErr: true},
		{name: "production with secret", mutate: func(c *config.Config) {
			c.Environment = "production"
			c.JWTSecret = "s3cret"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWatcherReloadsLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\n")

	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(cfg.ZapLevel())
	w, err := config.NewWatcher(loader, cfg, level, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	changed := make(chan *config.Config, 1)
	w.OnChange(func(c *config.Config) {
		select {
		case changed <- c:
		default:
		}
	})

	writeFile(t, path, "log_level: debug\n")

	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 5*time.Second, 20*time.Millisecond)
	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange callback not invoked")
	}
	assert.Equal(t, "debug", w.Config().LogLevel)
}

func TestWatcherKeepsConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "log_level: info\n")

	loader := config.NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)

	level := zap.NewAtomicLevelAt(cfg.ZapLevel())
	w, err := config.NewWatcher(loader, cfg, level, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	writeFile(t, path, "log_level: loud\n")
	assert.Error(t, w.Reload())
	assert.Equal(t, "info", w.Config().LogLevel)
	assert.Equal(t, zapcore.InfoLevel, level.Level())
}

func TestNewWatcherRequiresFile(t *testing.T) {
	_, err := config.NewWatcher(config.NewLoader(""), config.Default(), zap.NewAtomicLevel(), zap.NewNop())
	assert.Error(t, err)
}
