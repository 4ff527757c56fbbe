package httpx

import (
	"catalogapi/internal/auth"
	"catalogapi/internal/platform/crypto"
	"net/http"
	"strings"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the token subject and roles in the request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Bearer token required", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := crypto.ParseToken(secret, token)
			if err != nil {
				JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token", nil)
				return
			}

			recordUserID(r, claims.Sub)
			ctx := ContextWithUser(r.Context(), claims.Sub, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize answers 403 unless the authenticated caller satisfies policy.
// It must run after AuthMiddleware.
func Authorize(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !policy.Allows(RolesFrom(r)) {
				JSONError(w, r, http.StatusForbidden, "FORBIDDEN", "Requires "+policy.String(), nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
