package demo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dispatch/interfaces/http/rest"
	"dispatch/pkg/inject"
)

// User is the user a middleware attaches to the request state.
type User struct {
	Username string `json:"username"`
}

const userStateKey = "user"

// CurrentUser provides the user set by ProvideUser.
var CurrentUser = rest.StateValue[*User](userStateKey)

func unixTime() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// CurrentTime is computed on every request.
var CurrentTime = inject.Annotated[float64](inject.MustFactory(unixTime))

// CachedCurrentTime is computed once and reused.
var CachedCurrentTime = inject.Annotated[float64](inject.MustFactory(unixTime, inject.Cached()))

// Variable is a static value.
var Variable = inject.Annotated[string](inject.Value("value"))

// ParentValue is the dependency of ChildValue.
var ParentValue = inject.Annotated[string](inject.Value("parent"))

func childValue(parent string) string {
	return "child: " + parent
}

// ChildValue is a factory depending on another dependency.
var ChildValue = inject.Annotated[string](inject.MustFactory(childValue,
	inject.WithParams(inject.Param("parent_value", ParentValue)),
))

func asyncValue() <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- "async value"
	}()
	return ch
}

// AsyncValue is produced by a factory that completes later.
var AsyncValue = inject.Annotated[string](inject.MustFactory(asyncValue))

func complexFactory(r *http.Request, spec *inject.Descriptor) string {
	return fmt.Sprintf("%s, param: %s, type: %s", r.URL.Path, spec.Name, spec.Type)
}

// ComplexValue depends on the request and on the descriptor it resolves.
var ComplexValue = inject.Annotated[string](inject.MustFactory(complexFactory,
	inject.WithParams(inject.Param("request", nil), inject.Param("spec", nil)),
))

// CustomResolverValue uses a resolver that is neither a value nor a factory.
var CustomResolverValue = inject.Annotated[string](inject.ResolverFunc(
	func(_ context.Context, d *inject.Descriptor, _ inject.Values) (any, error) {
		return "resolved from " + d.Name, nil
	},
))
