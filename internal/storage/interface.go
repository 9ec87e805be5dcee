package storage

import (
	"context"

	"github.com/grandline/server/internal/model"
)

// Store defines the interface for data persistence
type Store interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Character operations
	SaveCharacter(ctx context.Context, char *model.Character) error
	GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error)
	GetCharacterByUser(ctx context.Context, userID model.UserID) (*model.Character, error)
	UpdateCharacterPosition(ctx context.Context, id model.CharacterID, region string, x, y int) error

	// Item catalog operations
	SaveItem(ctx context.Context, item *model.Item) error
	GetItem(ctx context.Context, id model.ItemID) (*model.Item, error)
	GetItemByName(ctx context.Context, name string) (*model.Item, error)
	ListItems(ctx context.Context) ([]*model.Item, error)

	// Inventory operations
	ListInventory(ctx context.Context, characterID model.CharacterID) ([]*model.InventoryLine, error)

	// Purchase executes the balance deduction and the inventory upsert as a
	// single atomic unit: either both commit or neither does, and two
	// concurrent purchases for the same character must serialize so the
	// second sees the first's deduction before its affordability check.
	// Returns model.ErrInsufficientBerries when the balance cannot cover
	// totalCost, model.ErrItemNotFound and model.ErrCharacterNotFound when
	// the ids do not resolve.
	//
	// When idemKey is non-empty a receipt is written inside the same unit;
	// replaying the same (character, key) returns the recorded result
	// without mutating anything.
	Purchase(ctx context.Context, characterID model.CharacterID, itemID model.ItemID, quantity, totalCost int, idemKey string) (*model.PurchaseResult, error)

	// Close releases any underlying connections or file handles
	Close() error
}
