package controller

import (
	"context"
	"net/http"
	"strings"
)

// Authenticator validates a bearer token and returns the context to continue with.
type Authenticator func(ctx context.Context, token string) (context.Context, error)

// WithBearerAuth returns a middleware that requires an "Authorization: Bearer"
// header accepted by auth. Failures are answered by onError. A nil auth
// disables the check.
func WithBearerAuth(auth Authenticator, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if auth == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				token = ""
			}

			ctx, err := auth(r.Context(), strings.TrimSpace(token))
			if err != nil {
				onError(w, r, err)

				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
