package rest

import (
	"net/http"

	"dispatch/pkg/auth"
	"dispatch/pkg/common"
	"dispatch/pkg/inject"
)

// FromRequest annotates a parameter of type T computed from the current
// request.
func FromRequest[T any](fn func(*http.Request) T) inject.Annotation {
	return inject.Annotated[T](inject.MustContextExtractor[*http.Request](fn))
}

// StateValue annotates a parameter read from the request state under key.
// A missing key is absent.
func StateValue[T any](key string) inject.Annotation {
	return inject.Annotated[T](inject.MustContextExtractor[*http.Request](func(r *http.Request) any {
		return common.GetState(r.Context())[key]
	}))
}

// CurrentClaims resolves the claims stored by the Authenticate middleware.
// Wrap it in inject.Optional for routes that allow anonymous access.
var CurrentClaims = FromRequest(func(r *http.Request) *auth.Claims {
	return auth.ClaimsFromContext(r.Context())
})

// RequestID resolves the id assigned by the RequestID middleware.
var RequestID = FromRequest(func(r *http.Request) string {
	return common.ExtractRequestID(r)
})
