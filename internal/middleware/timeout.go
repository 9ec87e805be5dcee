package middleware

import (
	"context"
	"net/http"
	"time"
)

// Timeout creates middleware that bounds each request's context deadline.
// Handlers and stores observe the deadline through ctx; slow work fails
// with context.DeadlineExceeded instead of holding the connection open.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
