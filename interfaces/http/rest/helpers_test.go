package rest_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"go.uber.org/zap"
)

type ctxKey struct{}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serveRequest(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}

type countingObserver struct {
	mu       sync.Mutex
	resolved int
}

func (o *countingObserver) ObserveResolve(*inject.Descriptor, string, time.Duration, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolved++
}

func (o *countingObserver) ObserveCacheHit(*inject.Descriptor) {}

func newErrorHandler() *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(nopLogger(), false)
}
