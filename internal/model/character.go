package model

import "time"

// CharacterID uniquely identifies a character
type CharacterID string

// Faction classifies a character's allegiance, chosen once at creation
type Faction string

const (
	FactionPirate       Faction = "PIRATE"
	FactionMarine       Faction = "MARINE"
	FactionBountyHunter Faction = "BOUNTY_HUNTER"
)

// ParseFaction validates a faction string
func ParseFaction(s string) (Faction, error) {
	switch Faction(s) {
	case FactionPirate, FactionMarine, FactionBountyHunter:
		return Faction(s), nil
	default:
		return "", ErrInvalidFaction
	}
}

// Character is the single playable avatar owned by a user
type Character struct {
	ID         CharacterID
	UserID     UserID // unique: one character per user
	Name       string
	Faction    Faction
	Level      int
	Experience int
	Berries    int // currency balance, never negative
	Health     int
	Stamina    int
	MapRegion  string
	X          int
	Y          int
	CreatedAt  time.Time

	// Associations present in the data model but unused by gameplay yet
	DevilFruit *DevilFruit
	Crew       *Crew
}

// DevilFruit is a special ability a character may hold
type DevilFruit struct {
	ID          string
	Name        string
	Description string
}

// Crew is a group of characters sailing together
type Crew struct {
	ID   string
	Name string
}

// Starting stats for a freshly created character
const (
	StartingLevel   = 1
	StartingBerries = 500
	StartingHealth  = 100
	StartingStamina = 100
	StartingRegion  = "East Blue"
	StartingX       = 6
	StartingY       = 10
)
