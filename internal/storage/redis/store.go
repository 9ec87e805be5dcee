package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// Store is a Redis-backed implementation of the storage interface
type Store struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis store instance
func New(cfg Config) (*Store, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client, cfg: cfg}, nil
}

// NewWithClient creates a Redis store with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

// User operations

func (s *Store) SaveUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	idxKey := usernameIndexKey(user.Username)

	// WATCH the username index so two concurrent registrations of the
	// same username cannot both commit
	save := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, idxKey).Result()
		if err == nil && current != string(user.ID) {
			return model.ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(user.ID), data, 0)
			pipe.Set(ctx, idxKey, string(user.ID), 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.PurchaseRetries; i++ {
		err := s.client.Watch(ctx, save, idxKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func (s *Store) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	userID, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return s.GetUser(ctx, model.UserID(userID))
}

// Character operations

func (s *Store) SaveCharacter(ctx context.Context, char *model.Character) error {
	data, err := json.Marshal(char)
	if err != nil {
		return err
	}

	idxKey := characterByUserIndexKey(char.UserID)

	// WATCH the per-user index so concurrent creations for one user
	// cannot both commit
	save := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, idxKey).Result()
		if err == nil && current != string(char.ID) {
			return model.ErrCharacterExists
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, characterKey(char.ID), data, 0)
			pipe.Set(ctx, idxKey, string(char.ID), 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.PurchaseRetries; i++ {
		err := s.client.Watch(ctx, save, idxKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

func (s *Store) GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	data, err := s.client.Get(ctx, characterKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCharacterNotFound
		}
		return nil, err
	}

	var char model.Character
	if err := json.Unmarshal(data, &char); err != nil {
		return nil, err
	}
	return &char, nil
}

func (s *Store) GetCharacterByUser(ctx context.Context, userID model.UserID) (*model.Character, error) {
	charID, err := s.client.Get(ctx, characterByUserIndexKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCharacterNotFound
		}
		return nil, err
	}
	return s.GetCharacter(ctx, model.CharacterID(charID))
}

func (s *Store) UpdateCharacterPosition(ctx context.Context, id model.CharacterID, region string, x, y int) error {
	key := characterKey(id)

	// WATCH the character so a concurrent purchase cannot be lost by this
	// read-modify-write
	update := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrCharacterNotFound
			}
			return err
		}

		var char model.Character
		if err := json.Unmarshal(data, &char); err != nil {
			return err
		}
		char.MapRegion = region
		char.X = x
		char.Y = y

		updated, err := json.Marshal(&char)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < s.cfg.PurchaseRetries; i++ {
		err := s.client.Watch(ctx, update, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// Item catalog operations

func (s *Store) SaveItem(ctx context.Context, item *model.Item) error {
	// Upsert by name: a re-seeded item keeps its original id
	if existingID, err := s.client.Get(ctx, itemNameIndexKey(item.Name)).Result(); err == nil {
		i := *item
		i.ID = model.ItemID(existingID)
		item = &i
	} else if !errors.Is(err, redis.Nil) {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, itemKey(item.ID), data, 0)
	pipe.Set(ctx, itemNameIndexKey(item.Name), string(item.ID), 0)
	pipe.SAdd(ctx, itemSetKey(), string(item.ID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	data, err := s.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}

	var item model.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetItemByName(ctx context.Context, name string) (*model.Item, error) {
	itemID, err := s.client.Get(ctx, itemNameIndexKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrItemNotFound
		}
		return nil, err
	}
	return s.GetItem(ctx, model.ItemID(itemID))
}

func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	ids, err := s.client.SMembers(ctx, itemSetKey()).Result()
	if err != nil {
		return nil, err
	}

	items := make([]*model.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(ctx, model.ItemID(id))
		if err != nil {
			if errors.Is(err, model.ErrItemNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Inventory operations

func (s *Store) ListInventory(ctx context.Context, characterID model.CharacterID) ([]*model.InventoryLine, error) {
	fields, err := s.client.HGetAll(ctx, inventoryKey(characterID)).Result()
	if err != nil {
		return nil, err
	}

	var lines []*model.InventoryLine
	for itemID, qty := range fields {
		quantity, err := parseQuantity(qty)
		if err != nil {
			return nil, err
		}
		item, err := s.GetItem(ctx, model.ItemID(itemID))
		if err != nil {
			// Drop lines whose catalog entry no longer resolves rather
			// than surfacing a half-joined line
			if errors.Is(err, model.ErrItemNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, &model.InventoryLine{
			CharacterID: characterID,
			ItemID:      model.ItemID(itemID),
			Quantity:    quantity,
			Item:        item,
		})
	}
	return lines, nil
}

// Purchase runs the deduction and upsert with optimistic locking: the
// character key is WATCHed, so if a concurrent purchase commits first the
// exec fails and the affordability check re-runs against the new balance.
func (s *Store) Purchase(ctx context.Context, characterID model.CharacterID, itemID model.ItemID, quantity, totalCost int, idemKey string) (*model.PurchaseResult, error) {
	if idemKey != "" {
		result, err := s.getReceipt(ctx, characterID, idemKey)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, model.ErrReceiptNotFound) {
			return nil, err
		}
	}

	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	charKey := characterKey(characterID)
	var result *model.PurchaseResult

	purchase := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, charKey).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrCharacterNotFound
			}
			return err
		}

		var char model.Character
		if err := json.Unmarshal(data, &char); err != nil {
			return err
		}
		if char.Berries < totalCost {
			return model.ErrInsufficientBerries
		}
		char.Berries -= totalCost

		updated, err := json.Marshal(&char)
		if err != nil {
			return err
		}

		var incr *redis.IntCmd
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, charKey, updated, 0)
			incr = pipe.HIncrBy(ctx, inventoryKey(characterID), string(itemID), int64(quantity))
			return nil
		})
		if err != nil {
			return err
		}

		line := &model.InventoryLine{
			CharacterID: characterID,
			ItemID:      itemID,
			Quantity:    int(incr.Val()),
			Item:        item,
		}
		result = &model.PurchaseResult{Berries: char.Berries, Line: line}

		if idemKey != "" {
			return s.saveReceipt(ctx, &model.PurchaseReceipt{
				CharacterID:    characterID,
				IdempotencyKey: idemKey,
				Berries:        char.Berries,
				ItemID:         itemID,
				LineQuantity:   line.Quantity,
				CreatedAt:      time.Now(),
			})
		}
		return nil
	}

	for i := 0; i < s.cfg.PurchaseRetries; i++ {
		err := s.client.Watch(ctx, purchase, charKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, redis.TxFailedErr
}

func (s *Store) saveReceipt(ctx context.Context, receipt *model.PurchaseReceipt) error {
	data, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, receiptKey(receipt.CharacterID, receipt.IdempotencyKey), data, s.cfg.ReceiptTTL).Err()
}

func (s *Store) getReceipt(ctx context.Context, characterID model.CharacterID, idemKey string) (*model.PurchaseResult, error) {
	data, err := s.client.Get(ctx, receiptKey(characterID, idemKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrReceiptNotFound
		}
		return nil, err
	}

	var receipt model.PurchaseReceipt
	if err := json.Unmarshal(data, &receipt); err != nil {
		return nil, err
	}

	line := &model.InventoryLine{
		CharacterID: receipt.CharacterID,
		ItemID:      receipt.ItemID,
		Quantity:    receipt.LineQuantity,
	}
	if item, err := s.GetItem(ctx, receipt.ItemID); err == nil {
		line.Item = item
	}
	return &model.PurchaseResult{Berries: receipt.Berries, Line: line}, nil
}

func parseQuantity(s string) (int, error) {
	return strconv.Atoi(s)
}
