package middleware

import (
	"net/http"
	"time"

	"dispatch/pkg/common"

	"github.com/google/uuid"
)

// RequestID takes the request id from the X-Request-ID header or generates
// one, and exposes it in the context and the response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := common.WithRequestID(r.Context(), requestID)
		ctx = common.WithStartTime(ctx, time.Now())
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
