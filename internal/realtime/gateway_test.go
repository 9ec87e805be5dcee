package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/testutil"
)

type stubVerifier struct {
	valid  string
	userID model.UserID
}

func (v *stubVerifier) VerifyToken(token string) (model.UserID, error) {
	if token == v.valid {
		return v.userID, nil
	}
	return "", errors.New("invalid token")
}

func newTestGateway(t *testing.T) (*Gateway, *Hub) {
	t.Helper()
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	t.Cleanup(hub.Close)

	verifier := &stubVerifier{valid: "good-token", userID: "user-1"}
	return NewGateway(hub, verifier, testutil.NopLogger()), hub
}

func TestGateway_RejectsMissingToken(t *testing.T) {
	gateway, _ := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	gateway.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGateway_RejectsInvalidToken(t *testing.T) {
	gateway, _ := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	gateway.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestGateway_RejectsMalformedAuthorizationHeader(t *testing.T) {
	gateway, _ := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	gateway.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGateway_AcceptsBearerHeaderAndDeliversEvents(t *testing.T) {
	gateway, hub := newTestGateway(t)

	server := httptest.NewServer(gateway)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	cfg, err := websocket.NewConfig(wsURL, server.URL)
	if err != nil {
		t.Fatalf("websocket.NewConfig: %v", err)
	}
	cfg.Header = http.Header{"Authorization": []string{"Bearer good-token"}}

	conn, err := websocket.DialConfig(cfg)
	if err != nil {
		t.Fatalf("websocket.DialConfig: %v", err)
	}
	defer conn.Close()

	// Wait for the gateway to register the connection with the hub
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.Publish(model.Event{
		Type:        model.EventCharacterMoved,
		Timestamp:   time.Now(),
		CharacterID: "char-1",
		Payload:     model.CharacterMovedPayload{Region: "East Blue", X: 6, Y: 9},
	})

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var raw string
	if err := websocket.Message.Receive(conn, &raw); err != nil {
		t.Fatalf("receiving event: %v", err)
	}

	var event model.Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("unmarshalling event: %v", err)
	}
	if event.Type != model.EventCharacterMoved {
		t.Errorf("event type = %q, want %q", event.Type, model.EventCharacterMoved)
	}
	if event.CharacterID != "char-1" {
		t.Errorf("event character_id = %q, want %q", event.CharacterID, "char-1")
	}
}

func TestGateway_AcceptsTokenQueryParameter(t *testing.T) {
	gateway, hub := newTestGateway(t)

	server := httptest.NewServer(gateway)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=good-token"
	conn, err := websocket.Dial(wsURL, "", server.URL)
	if err != nil {
		t.Fatalf("websocket.Dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGateway_UnregistersOnDisconnect(t *testing.T) {
	gateway, hub := newTestGateway(t)

	server := httptest.NewServer(gateway)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?token=good-token"
	conn, err := websocket.Dial(wsURL, "", server.URL)
	if err != nil {
		t.Fatalf("websocket.Dial: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never unregistered after disconnect")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		query    string
		expected string
	}{
		{name: "bearer header", header: "Bearer abc123", expected: "abc123"},
		{name: "header wins over query", header: "Bearer abc123", query: "other", expected: "abc123"},
		{name: "query fallback", query: "abc123", expected: "abc123"},
		{name: "non-bearer scheme", header: "Basic dXNlcg==", expected: ""},
		{name: "no credentials", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/ws"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := tokenFromRequest(req); got != tt.expected {
				t.Errorf("tokenFromRequest() = %q, want %q", got, tt.expected)
			}
		})
	}
}
