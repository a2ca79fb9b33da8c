package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"moneyflow/internal/auth"
	"moneyflow/internal/errors"
)

// AuthMiddleware verifies the bearer token and exposes the user id to
// downstream handlers via the request context.
func AuthMiddleware(tokens *auth.TokenProvider) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, errors.ErrUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, errors.NewAppError(errors.Unauthorized, "invalid authorization header"))
				return
			}

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				writeError(w, errors.NewAppError(errors.Unauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
