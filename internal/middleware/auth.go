package middleware

import (
	"net/http"
	"os"
	"strings"

	"tajabazar-be/internal/httpx"
	"tajabazar-be/internal/utils"

	"github.com/golang-jwt/jwt/v5"
)

// Secret shared with the auth service that issues tokens.
var jwtKey = []byte(os.Getenv("SECRET_KEY"))

// AuthMiddleware extracts user identity from a bearer token when present.
// Requests without a valid token pass through anonymously; route-level
// guards decide whether identity is required.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			return jwtKey, nil
		})

		if err != nil || !token.Valid {
			next.ServeHTTP(w, r)
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			uid, _ := claims["user_id"].(float64)
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)

			ctx := utils.SetUserContext(r.Context(), uint(uid), email, role)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without an authenticated user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects requests from non-administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			httpx.WriteError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !utils.IsAdmin(r.Context()) {
			httpx.WriteError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
