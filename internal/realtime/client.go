package realtime

import (
	"time"

	"github.com/grandline/server/internal/model"
)

const (
	// Buffer size for outgoing messages
	sendBufferSize = 256

	// Time between keepalive pings
	pingPeriod = 30 * time.Second
)

// Client represents one connected websocket peer
type Client struct {
	hub         *Hub
	userID      model.UserID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new realtime client for an authenticated user
func NewClient(hub *Hub, userID model.UserID) *Client {
	return &Client{
		hub:         hub,
		userID:      userID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}
