package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"dispatch/interfaces/http/rest"
	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewResults(t *testing.T) {
	g := rest.NewRouteGroup("")
	g.Get("/none", func(w http.ResponseWriter) { w.WriteHeader(http.StatusAccepted) })
	g.Get("/error", func() error { return apperrors.NewNotFoundError("thing") })
	g.Get("/nil-error", func() error { return nil })
	g.Get("/nil-responder", func() rest.Responder { return nil })
	g.Get("/no-content", func() rest.Responder { return rest.NoContent() })
	g.Get("/pair", func() (rest.Responder, error) {
		return rest.JSON(map[string]int{"n": 1}).WithStatus(http.StatusCreated), nil
	})
	g.Get("/pair-error", func() (rest.Responder, error) { return nil, errors.New("boom") })
	g.Get("/text", func() *rest.TextResponse { return rest.Text("teapot").WithStatus(http.StatusTeapot) })
	h := g.Handler()

	tests := []struct {
		target string
		status int
		body   string
	}{
		{"/none", http.StatusAccepted, ""},
		{"/nil-error", http.StatusNoContent, ""},
		{"/nil-responder", http.StatusNoContent, ""},
		{"/no-content", http.StatusNoContent, ""},
		{"/pair", http.StatusCreated, "{\"n\":1}\n"},
		{"/text", http.StatusTeapot, "teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tt.target)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}

	t.Run("/error", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/error")
		assert.Equal(t, http.StatusNotFound, rec.Code)

		var body apperrors.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body.Type)
		assert.Equal(t, "thing not found", body.Message)
	})

	t.Run("/pair-error", func(t *testing.T) {
		rec := serve(t, h, http.MethodGet, "/pair-error")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "boom")
	})
}

func TestViewPreparedValues(t *testing.T) {
	g := rest.NewRouteGroup("")
	g.Get("/values", func(r *http.Request, ctx context.Context, w http.ResponseWriter) rest.Responder {
		w.Header().Set("X-Path", r.URL.Path)
		return rest.Text(ctx.Value(ctxKey{}).(string))
	})

	req := newRequest(http.MethodGet, "/values")
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "from context"))
	rec := serveRequest(g.Handler(), req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "from context", rec.Body.String())
	assert.Equal(t, "/values", rec.Header().Get("X-Path"))
}

func TestViewResolutionErrors(t *testing.T) {
	g := rest.NewRouteGroup("", rest.WithErrorHandler(apperrors.NewErrorHandler(nopLogger(), false)))
	g.Get("/missing-state", echo, inject.Param("s", rest.StateValue[string]("absent")))
	g.Get("/unprepared", func(c *http.Client) rest.Responder { return hello() })
	h := g.Handler()

	rec := serve(t, h, http.MethodGet, "/missing-state")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(inject.KindDependencyRequiresValue), body.Code)
	assert.Equal(t, "s", body.Details["param"])

	rec = serve(t, h, http.MethodGet, "/unprepared")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DEPENDENCY", body.Type)
	assert.Equal(t, "An internal error occurred", body.Message)
}

func TestViewUsesGroupEngine(t *testing.T) {
	observer := &countingObserver{}
	engine := inject.NewEngine(inject.WithObserver(observer))

	g := rest.NewRouteGroup("", rest.WithEngine(engine))
	g.Get("/", echo, inject.Param("s", inject.Annotated[string](inject.Value("v"))))

	rec := serve(t, g.Handler(), http.MethodGet, "/")
	assert.Equal(t, "v", rec.Body.String())
	assert.Equal(t, 1, observer.resolved)
}
