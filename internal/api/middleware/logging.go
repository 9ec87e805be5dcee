package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/grandline/server/internal/middleware"
)

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}

// Timeout creates middleware that bounds each request's context deadline
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return middleware.Timeout(d)
}
