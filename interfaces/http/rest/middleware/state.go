package middleware

import (
	"net/http"

	"dispatch/pkg/common"
)

// ProvideState sets key in the request state for everything below it.
func ProvideState(key string, value any) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(common.WithState(r.Context(), key, value)))
		})
	}
}
