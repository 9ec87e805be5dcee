package model

import "time"

// ItemID uniquely identifies a catalog item
type ItemID string

// ItemType classifies what an item does
type ItemType string

const (
	ItemTypeWeapon     ItemType = "WEAPON"
	ItemTypeConsumable ItemType = "CONSUMABLE"
	ItemTypeKeyItem    ItemType = "KEY_ITEM"
)

// Item is a catalog entity. Seeded once at startup; read-only at runtime.
type Item struct {
	ID          ItemID
	Name        string // unique
	Description string
	Type        ItemType
	EffectValue int
	Price       int
}

// InventoryLine records how many of an item a character owns.
// Unique per (character, item) pair; quantity is always >= 1.
type InventoryLine struct {
	CharacterID CharacterID
	ItemID      ItemID
	Quantity    int
	Item        *Item // populated on reads joined with the catalog
}

// PurchaseResult is the outcome of a completed purchase
type PurchaseResult struct {
	Berries int // balance after deduction
	Line    *InventoryLine
}

// PurchaseReceipt records a completed purchase for idempotent replay.
// Keyed by (character, client-supplied idempotency key).
type PurchaseReceipt struct {
	CharacterID    CharacterID
	IdempotencyKey string
	Berries        int
	ItemID         ItemID
	LineQuantity   int
	CreatedAt      time.Time
}
