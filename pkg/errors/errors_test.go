package errors_test

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resolveErr(t *testing.T, fn any, params ...inject.Parameter) error {
	t.Helper()
	sig, err := inject.Inspect(fn, params...)
	require.NoError(t, err)
	_, err = sig.Resolve(context.Background(), nil)
	require.Error(t, err)
	return err
}

func TestFromInjection(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, apperrors.FromInjection(nil))
	})

	t.Run("required value missing is a validation error", func(t *testing.T) {
		err := resolveErr(t, func(s *string) {},
			inject.Param("name", inject.Annotated[*string](inject.Value((*string)(nil)))))

		appErr := apperrors.FromInjection(err)
		assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
		assert.True(t, apperrors.IsValidation(appErr))
		assert.False(t, apperrors.IsUnauthorized(appErr))
		assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
		assert.Equal(t, string(inject.KindDependencyRequiresValue), appErr.Code)
		assert.Equal(t, "name", appErr.Details["param"])
		assert.ErrorIs(t, appErr, inject.ErrDependencyRequiresValue)
	})

	t.Run("unresolvable plain parameter is a server error", func(t *testing.T) {
		err := resolveErr(t, func(c *http.Client) {}, inject.Param("client", nil))

		appErr := apperrors.FromInjection(err)
		assert.Equal(t, apperrors.ErrorTypeDependency, appErr.Type)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
		assert.Equal(t, string(inject.KindDependencyNotFound), appErr.Code)
	})

	t.Run("resolver app errors pass through", func(t *testing.T) {
		forbidden := apperrors.NewForbiddenError("admins only")
		err := resolveErr(t, func(s string) {}, inject.Param("s", inject.Annotated[string](
			inject.MustFactory(func() (string, error) { return "", forbidden }),
		)))

		assert.Same(t, forbidden, apperrors.FromInjection(err))
	})

	t.Run("foreign errors become internal", func(t *testing.T) {
		appErr := apperrors.FromInjection(stderrors.New("disk on fire"))
		assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
		assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	})
}

func TestWrap(t *testing.T) {
	assert.NoError(t, apperrors.Wrap(nil, "ignored"))

	wrapped := apperrors.Wrap(apperrors.NewNotFoundError("item"), "loading")
	assert.True(t, apperrors.IsNotFound(wrapped))
	assert.Equal(t, "NOT_FOUND: loading: item not found", wrapped.Error())

	wrapped = apperrors.Wrap(apperrors.NewUnauthorizedError(""), "checking token")
	assert.True(t, apperrors.IsUnauthorized(wrapped))
	assert.False(t, apperrors.IsValidation(wrapped))

	cause := stderrors.New("boom")
	wrapped = apperrors.Wrapf(cause, "step %d", 2)
	assert.True(t, apperrors.IsInternal(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		err         error
		wantStatus  int
		wantType    string
		wantMessage string
	}{
		{
			name:        "app error",
			err:         apperrors.NewUnauthorizedError(""),
			wantStatus:  http.StatusUnauthorized,
			wantType:    "UNAUTHORIZED",
			wantMessage: "unauthorized",
		},
		{
			name:        "foreign error hidden",
			err:         fmt.Errorf("secret: %w", stderrors.New("db password wrong")),
			wantStatus:  http.StatusInternalServerError,
			wantType:    "INTERNAL",
			wantMessage: "An internal error occurred",
		},
		{
			name:        "foreign error shown in debug",
			debug:       true,
			err:         stderrors.New("db password wrong"),
			wantStatus:  http.StatusInternalServerError,
			wantType:    "INTERNAL",
			wantMessage: "db password wrong",
		},
		{
			name:        "engine wiring error hidden",
			err:         &inject.Error{Kind: inject.KindMissingContext, Param: "user", Message: "no request"},
			wantStatus:  http.StatusInternalServerError,
			wantType:    "DEPENDENCY",
			wantMessage: "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := apperrors.NewErrorHandler(zap.NewNop(), tt.debug)
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-Request-ID", "req-1")
			rec := httptest.NewRecorder()

			h.Handle(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.True(t, body.Error)
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, "req-1", body.RequestID)
		})
	}
}

func TestErrorHandlerMiddlewareRecoversPanics(t *testing.T) {
	h := apperrors.NewErrorHandler(zap.NewNop(), false)
	handler := h.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: kaboom")
}
