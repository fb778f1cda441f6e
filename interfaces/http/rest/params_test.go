package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"dispatch/interfaces/http/rest"
	apperrors "dispatch/pkg/errors"
	"dispatch/pkg/inject"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pathGroup() http.Handler {
	g := rest.NewRouteGroup("")
	g.Get("/int/{id}", func(id int) rest.Responder {
		return rest.Text(strconv.Itoa(id * 2))
	}, inject.Param("id", rest.FromPath[int]()))

	g.Get("/named/{key}", echo, inject.Param("value", rest.FromPath[string]("key")))

	g.Get("/uuid/{id}", func(id uuid.UUID) rest.Responder {
		return rest.Text(id.String())
	}, inject.Param("id", rest.FromPath[uuid.UUID]()))

	g.Get("/rule/{slug}", echo, inject.Param("slug", rest.FromPath[string](rest.Validate("alpha"))))

	g.Get("/bool/{flag}", func(flag bool) rest.Responder {
		return rest.Text(strconv.FormatBool(!flag))
	}, inject.Param("flag", rest.FromPath[bool]()))

	optional := func(v *int) rest.Responder {
		if v == nil {
			return rest.Text("None")
		}
		return rest.Text(strconv.Itoa(*v))
	}
	g.Get("/opt", optional, inject.Param("v", inject.Optional(rest.FromPath[*int]())))
	g.Get("/opt/{v}", optional, inject.Param("v", inject.Optional(rest.FromPath[*int]())))

	g.Get("/required", echo, inject.Param("value", rest.FromPath[string]()))

	g.Get("/resolver/{segment}", echo, inject.Param("value", inject.Annotated[string](rest.PathParam("segment"))))
	return g.Handler()
}

func TestFromPath(t *testing.T) {
	h := pathGroup()
	id := uuid.New()

	tests := []struct {
		name   string
		target string
		status int
		body   string
		code   string
	}{
		{name: "int", target: "/int/21", status: http.StatusOK, body: "42"},
		{name: "int invalid", target: "/int/abc", status: http.StatusBadRequest, code: "INVALID_PATH_PARAM"},
		{name: "segment name option", target: "/named/k1", status: http.StatusOK, body: "k1"},
		{name: "uuid", target: "/uuid/" + id.String(), status: http.StatusOK, body: id.String()},
		{name: "uuid invalid", target: "/uuid/nope", status: http.StatusBadRequest, code: "INVALID_PATH_PARAM"},
		{name: "rule passes", target: "/rule/abc", status: http.StatusOK, body: "abc"},
		{name: "rule fails", target: "/rule/ab1", status: http.StatusBadRequest, code: "INVALID_PATH_PARAM"},
		{name: "bool", target: "/bool/true", status: http.StatusOK, body: "false"},
		{name: "optional absent", target: "/opt", status: http.StatusOK, body: "None"},
		{name: "optional present", target: "/opt/5", status: http.StatusOK, body: "5"},
		{name: "required absent", target: "/required", status: http.StatusBadRequest, code: string(inject.KindDependencyRequiresValue)},
		{name: "explicit resolver name", target: "/resolver/seg", status: http.StatusOK, body: "seg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, h, http.MethodGet, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code == "" {
				assert.Equal(t, tt.body, rec.Body.String())
				return
			}
			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "VALIDATION", body.Type)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestPathParamWithoutRequest(t *testing.T) {
	sig, err := inject.Inspect(func(id int) {}, inject.Param("id", rest.FromPath[int]()))
	require.NoError(t, err)

	_, err = sig.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, inject.ErrMissingContext)
}
