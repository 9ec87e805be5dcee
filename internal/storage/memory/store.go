package memory

import (
	"context"
	"sync"
	"time"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// Store is an in-memory implementation of the storage interface.
// A single mutex guards all maps, which also serializes purchases.
type Store struct {
	mu sync.RWMutex

	users            map[model.UserID]*model.User
	usernameIndex    map[string]model.UserID
	characters       map[model.CharacterID]*model.Character
	characterByUser  map[model.UserID]model.CharacterID
	items            map[model.ItemID]*model.Item
	itemNameIndex    map[string]model.ItemID
	inventory        map[lineKey]*model.InventoryLine
	purchaseReceipts map[receiptKey]*model.PurchaseReceipt
}

type lineKey struct {
	characterID model.CharacterID
	itemID      model.ItemID
}

type receiptKey struct {
	characterID model.CharacterID
	idemKey     string
}

// New creates a new in-memory store instance
func New() *Store {
	return &Store{
		users:            make(map[model.UserID]*model.User),
		usernameIndex:    make(map[string]model.UserID),
		characters:       make(map[model.CharacterID]*model.Character),
		characterByUser:  make(map[model.UserID]model.CharacterID),
		items:            make(map[model.ItemID]*model.Item),
		itemNameIndex:    make(map[string]model.ItemID),
		inventory:        make(map[lineKey]*model.InventoryLine),
		purchaseReceipts: make(map[receiptKey]*model.PurchaseReceipt),
	}
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// Close is a no-op; the in-memory store holds no external resources
func (s *Store) Close() error {
	return nil
}

// User operations

func (s *Store) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.usernameIndex[user.Username]; ok && existing != user.ID {
		return model.ErrUsernameTaken
	}
	u := *user
	s.users[user.ID] = &u
	s.usernameIndex[user.Username] = user.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// Character operations

func (s *Store) SaveCharacter(ctx context.Context, char *model.Character) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.characterByUser[char.UserID]; ok && existing != char.ID {
		return model.ErrCharacterExists
	}
	c := *char
	s.characters[char.ID] = &c
	s.characterByUser[char.UserID] = char.ID
	return nil
}

func (s *Store) GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	char, ok := s.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	c := *char
	return &c, nil
}

func (s *Store) GetCharacterByUser(ctx context.Context, userID model.UserID) (*model.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.characterByUser[userID]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	char, ok := s.characters[id]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	c := *char
	return &c, nil
}

func (s *Store) UpdateCharacterPosition(ctx context.Context, id model.CharacterID, region string, x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	char, ok := s.characters[id]
	if !ok {
		return model.ErrCharacterNotFound
	}
	char.MapRegion = region
	char.X = x
	char.Y = y
	return nil
}

// Item catalog operations

func (s *Store) SaveItem(ctx context.Context, item *model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Upsert by name: re-seeding must not create duplicate catalog entries
	if existingID, ok := s.itemNameIndex[item.Name]; ok && existingID != item.ID {
		i := *item
		i.ID = existingID
		s.items[existingID] = &i
		return nil
	}
	i := *item
	s.items[item.ID] = &i
	s.itemNameIndex[item.Name] = item.ID
	return nil
}

func (s *Store) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	i := *item
	return &i, nil
}

func (s *Store) GetItemByName(ctx context.Context, name string) (*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.itemNameIndex[name]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	item := s.items[id]
	i := *item
	return &i, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]*model.Item, 0, len(s.items))
	for _, item := range s.items {
		i := *item
		items = append(items, &i)
	}
	return items, nil
}

// Inventory operations

func (s *Store) ListInventory(ctx context.Context, characterID model.CharacterID) ([]*model.InventoryLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lines []*model.InventoryLine
	for key, line := range s.inventory {
		if key.characterID != characterID {
			continue
		}
		l := *line
		if item, ok := s.items[key.itemID]; ok {
			i := *item
			l.Item = &i
		}
		lines = append(lines, &l)
	}
	return lines, nil
}

// Purchase executes the deduction and upsert under the store mutex
func (s *Store) Purchase(ctx context.Context, characterID model.CharacterID, itemID model.ItemID, quantity, totalCost int, idemKey string) (*model.PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idemKey != "" {
		if receipt, ok := s.purchaseReceipts[receiptKey{characterID, idemKey}]; ok {
			return s.resultFromReceipt(receipt), nil
		}
	}

	char, ok := s.characters[characterID]
	if !ok {
		return nil, model.ErrCharacterNotFound
	}
	item, ok := s.items[itemID]
	if !ok {
		return nil, model.ErrItemNotFound
	}
	if char.Berries < totalCost {
		return nil, model.ErrInsufficientBerries
	}

	char.Berries -= totalCost

	key := lineKey{characterID, itemID}
	line, ok := s.inventory[key]
	if ok {
		line.Quantity += quantity
	} else {
		line = &model.InventoryLine{
			CharacterID: characterID,
			ItemID:      itemID,
			Quantity:    quantity,
		}
		s.inventory[key] = line
	}

	if idemKey != "" {
		s.purchaseReceipts[receiptKey{characterID, idemKey}] = &model.PurchaseReceipt{
			CharacterID:    characterID,
			IdempotencyKey: idemKey,
			Berries:        char.Berries,
			ItemID:         itemID,
			LineQuantity:   line.Quantity,
			CreatedAt:      time.Now(),
		}
	}

	itemCopy := *item
	return &model.PurchaseResult{
		Berries: char.Berries,
		Line: &model.InventoryLine{
			CharacterID: characterID,
			ItemID:      itemID,
			Quantity:    line.Quantity,
			Item:        &itemCopy,
		},
	}, nil
}

func (s *Store) resultFromReceipt(receipt *model.PurchaseReceipt) *model.PurchaseResult {
	line := &model.InventoryLine{
		CharacterID: receipt.CharacterID,
		ItemID:      receipt.ItemID,
		Quantity:    receipt.LineQuantity,
	}
	if item, ok := s.items[receipt.ItemID]; ok {
		i := *item
		line.Item = &i
	}
	return &model.PurchaseResult{Berries: receipt.Berries, Line: line}
}
