package di_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"dispatch/infrastructure/config"
	"dispatch/infrastructure/di"
	"dispatch/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeContainer(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"
	cfg.EnableMetrics = true
	cfg.JWTSecret = "s3cret"

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &memory.ItemStore{}, container.Store)
	assert.NotNil(t, container.Metrics)
	assert.Nil(t, container.Tracing)

	h := container.Router.Setup()
	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get("/request-dependency")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, test!", rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dispatch_dependency_resolutions_total")
}

func TestInitializeContainerWithoutOptionalServices(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "error"

	container, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, container.Metrics)
	h := container.Router.Setup()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"routes":19`)
}
