package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// OwnerTokenKey is the context key for the caller's bearer token.
const OwnerTokenKey contextKey = "ownerToken"

// RequireToken ensures a bearer token is present and injects it into the
// request context. The token is treated as an opaque string: it is never
// decoded or verified, and its raw value is the caller identity used for
// ownership checks downstream.
func RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		ctx := context.WithValue(r.Context(), OwnerTokenKey, parts[1])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerToken returns the bearer token stored by RequireToken, or "" when the
// request did not pass through it.
func OwnerToken(ctx context.Context) string {
	token, _ := ctx.Value(OwnerTokenKey).(string)
	return token
}
