package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/grandline/server/internal/api/apierr"
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/services/auth"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

// Auth creates authentication middleware. Requests with no token at all
// get 401; requests carrying a token that fails verification get 403.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			userID, err := authService.VerifyToken(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// GetUserID returns the authenticated user ID from the request context
func GetUserID(ctx context.Context) model.UserID {
	userID, _ := ctx.Value(userIDContextKey).(model.UserID)
	return userID
}

// MustGetUserID returns the authenticated user ID or panics
func MustGetUserID(ctx context.Context) model.UserID {
	userID := GetUserID(ctx)
	if userID == "" {
		panic("no user in context - auth middleware not applied?")
	}
	return userID
}
