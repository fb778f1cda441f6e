package middleware

import (
	"errors"
	"net/http"
	"strings"

	"dispatch/pkg/auth"
	"dispatch/pkg/common"
	apperrors "dispatch/pkg/errors"

	"go.uber.org/zap"
)

// Authenticate validates the bearer token of each request and stores its
// claims in the context. Requests without an Authorization header pass
// through anonymously unless required is set; an invalid token is always
// rejected.
func Authenticate(validator *auth.JWTValidator, errs *apperrors.ErrorHandler, logger *zap.Logger, required bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				if required {
					errs.Handle(w, r, apperrors.NewUnauthorizedError("Missing authorization header"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				errs.Handle(w, r, apperrors.NewUnauthorizedError("Invalid authorization header format"))
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				logger.Debug("Token rejected", zap.Error(err))
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					errs.Handle(w, r, apperrors.NewUnauthorizedError("Token has expired"))
				case errors.Is(err, auth.ErrInvalidSignature):
					errs.Handle(w, r, apperrors.NewUnauthorizedError("Invalid token signature"))
				default:
					errs.Handle(w, r, apperrors.NewUnauthorizedError("Invalid token"))
				}
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = common.WithUserID(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
