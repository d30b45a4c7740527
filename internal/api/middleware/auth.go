package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/888Greys/rag-ai/internal/api"
)

type contextKey string

const UserEmailKey contextKey = "user_email"

// AuthValidator resolves a bearer token to a user email.
type AuthValidator interface {
	Validate(ctx context.Context, token string) (string, error)
}

// BearerAuth authenticates requests with an `Authorization: Bearer`
// header and stores the resolved user email in the request context.
func BearerAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			email, err := validator.Validate(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api token")
				return
			}

			ctx := context.WithValue(r.Context(), UserEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserEmail returns the authenticated user's email from context.
func GetUserEmail(ctx context.Context) string {
	email, _ := ctx.Value(UserEmailKey).(string)
	return email
}
