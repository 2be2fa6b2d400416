package middleware

import (
	"context"
	"net/http"
	"strings"

	"nomina/internal/auth"
	"nomina/internal/requestctx"
)

// Auth parses a bearer token when one is present and stores the caller
// identity in the request context. Requests without a valid token pass
// through untouched; route guards and handlers decide what requires
// authentication.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := requestctx.WithIdentity(r.Context(), auth.Identity{
				Email: claims.Email,
				Role:  claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (auth.Identity, bool) {
	return requestctx.GetIdentity(ctx)
}
