package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/grandline/server/internal/model"
)

// TokenVerifier resolves a bearer token to the user it was issued for
type TokenVerifier interface {
	VerifyToken(token string) (model.UserID, error)
}

type wsUserIDContextKey struct{}

func contextWithUserID(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, wsUserIDContextKey{}, userID)
}

// Gateway upgrades authenticated HTTP requests to websocket connections
// and attaches them to the hub. Requests without a valid bearer token are
// refused before the upgrade happens.
type Gateway struct {
	hub      *Hub
	verifier TokenVerifier
	logger   *slog.Logger
}

// NewGateway creates a new websocket gateway
func NewGateway(hub *Hub, verifier TokenVerifier, logger *slog.Logger) *Gateway {
	return &Gateway{
		hub:      hub,
		verifier: verifier,
		logger:   logger.With(slog.String("component", "realtime")),
	}
}

// ServeHTTP authenticates the request and hands it to the websocket upgrader
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := tokenFromRequest(r)
	if token == "" {
		g.logger.Warn("websocket rejected - missing token",
			slog.String("remote_addr", r.RemoteAddr))
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	userID, err := g.verifier.VerifyToken(token)
	if err != nil {
		g.logger.Warn("websocket rejected - invalid token",
			slog.String("remote_addr", r.RemoteAddr))
		http.Error(w, "invalid or expired token", http.StatusForbidden)
		return
	}

	r = r.WithContext(contextWithUserID(r.Context(), userID))
	websocket.Handler(g.handleConn).ServeHTTP(w, r)
}

func (g *Gateway) handleConn(conn *websocket.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	var userID model.UserID
	if req := conn.Request(); req != nil {
		if resolved, ok := req.Context().Value(wsUserIDContextKey{}).(model.UserID); ok {
			userID = resolved
		}
	}

	client := NewClient(g.hub, userID)
	g.hub.Register(client)
	defer g.hub.Unregister(client)

	// Drain inbound frames so the connection surfaces closure; the
	// protocol is server-push only
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		var discard string
		for {
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if err := websocket.Message.Send(conn, string(message)); err != nil {
				return
			}

		case <-ticker.C:
			if err := websocket.Message.Send(conn, `{"type":"ping"}`); err != nil {
				return
			}

		case <-readClosed:
			return
		}
	}
}

// tokenFromRequest pulls the bearer token from the Authorization header,
// falling back to a token query parameter for browser websocket clients
// that cannot set headers on the upgrade request.
func tokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
