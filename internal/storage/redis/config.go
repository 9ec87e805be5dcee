package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// ReceiptTTL bounds how long purchase receipts are kept for
	// idempotent replay
	ReceiptTTL time.Duration

	// PurchaseRetries bounds the optimistic-locking retry loop for
	// concurrent purchases against the same character
	PurchaseRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:             "redis://localhost:6379",
		PoolSize:        10,
		MinIdleConns:    2,
		ReceiptTTL:      24 * time.Hour,
		PurchaseRetries: 16,
	}
}
