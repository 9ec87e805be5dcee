package model

import "time"

// EventType identifies the type of realtime event
type EventType string

const (
	EventCharacterMoved EventType = "character_moved"
)

// Event is the structure broadcast over the realtime channel
type Event struct {
	Type        EventType   `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	CharacterID CharacterID `json:"character_id"`
	Payload     any         `json:"payload,omitempty"`
}

// CharacterMovedPayload contains data for character moved events
type CharacterMovedPayload struct {
	Region string `json:"region"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	AtPort bool   `json:"at_port"`
}
