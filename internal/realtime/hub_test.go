package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/testutil"
)

func TestHub_RegisterAndPublish(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "user-1")
	hub.Register(client)

	// Give the hub time to process registration
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Publish(model.Event{
		Type:        model.EventCharacterMoved,
		CharacterID: "char-1",
		Payload:     model.CharacterMovedPayload{Region: "East Blue", X: 6, Y: 9},
	})

	select {
	case msg := <-client.send:
		var event struct {
			Type        string `json:"type"`
			CharacterID string `json:"character_id"`
		}
		if err := json.Unmarshal(msg, &event); err != nil {
			t.Fatalf("client received malformed event: %v", err)
		}
		if event.Type != string(model.EventCharacterMoved) {
			t.Errorf("event type = %q, want %q", event.Type, model.EventCharacterMoved)
		}
		if event.CharacterID != "char-1" {
			t.Errorf("event character_id = %q, want %q", event.CharacterID, "char-1")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client did not receive event")
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client := NewClient(hub, "user-1")
	hub.Register(client)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount() = %d, want 1", hub.ClientCount())
	}

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after unregister, want 0", hub.ClientCount())
	}

	// The hub closes the client's channel on unregister
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected client send channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client send channel was not closed")
	}
}

func TestHub_PublishToMultipleClients(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	client1 := NewClient(hub, "user-1")
	client2 := NewClient(hub, "user-2")
	client3 := NewClient(hub, "user-3")

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 3 {
		t.Errorf("ClientCount() = %d, want 3", hub.ClientCount())
	}

	hub.Publish(model.Event{Type: model.EventCharacterMoved, CharacterID: "char-1"})

	for i, client := range []*Client{client1, client2, client3} {
		select {
		case <-client.send:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("client %d did not receive event", i+1)
		}
	}
}

func TestHub_RegisterAfterCloseDoesNotBlock(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()

	hub.Close()

	// A connection that finished its auth check during shutdown must not
	// hang on registration
	done := make(chan struct{})
	go func() {
		defer close(done)
		client := NewClient(hub, "user-1")
		hub.Register(client)
		hub.Unregister(client)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Register blocked after hub shutdown")
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	go hub.Run()

	client := NewClient(hub, "user-1")
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.Close()
	time.Sleep(10 * time.Millisecond)

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected client send channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("client send channel was not closed after hub shutdown")
	}
}
