package shop

import (
	"context"
	"log/slog"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// MaxPurchaseQuantity bounds a single purchase. It also keeps
// price*quantity well inside int range, so the total cost handed to the
// store can never overflow negative and sneak past the affordability
// check.
const MaxPurchaseQuantity = 10_000

// Service exposes the item catalog, character inventories and purchases
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// New creates a new shop service
func New(store storage.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Inventory is a character's inventory together with its currency balance
type Inventory struct {
	Lines   []*model.InventoryLine
	Berries int
}

// Catalog returns all purchasable items
func (s *Service) Catalog(ctx context.Context) ([]*model.Item, error) {
	return s.store.ListItems(ctx)
}

// GetInventory returns the user's inventory lines joined with item details
// plus the current berries balance
func (s *Service) GetInventory(ctx context.Context, userID model.UserID) (*Inventory, error) {
	char, err := s.store.GetCharacterByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.store.ListInventory(ctx, char.ID)
	if err != nil {
		return nil, err
	}

	return &Inventory{Lines: lines, Berries: char.Berries}, nil
}

// Buy purchases quantity of an item for the user's character. The balance
// deduction and the inventory mutation commit together or not at all; the
// store serializes concurrent purchases for the same character.
//
// idemKey is an optional client-supplied idempotency key: replaying a
// purchase with the same key returns the original result without charging
// again.
func (s *Service) Buy(ctx context.Context, userID model.UserID, itemID model.ItemID, quantity int, idemKey string) (*model.PurchaseResult, error) {
	if quantity <= 0 || quantity > MaxPurchaseQuantity {
		return nil, model.ErrInvalidQuantity
	}

	char, err := s.store.GetCharacterByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// The catalog is read-only at runtime, so the price read here cannot
	// go stale before the transactional write below
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	totalCost := item.Price * quantity

	result, err := s.store.Purchase(ctx, char.ID, itemID, quantity, totalCost, idemKey)
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase completed",
		slog.String("character_id", string(char.ID)),
		slog.String("item", item.Name),
		slog.Int("quantity", quantity),
		slog.Int("total_cost", totalCost),
		slog.Int("berries_after", result.Berries))

	return result, nil
}
