package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/storage"
)

// Store is a SQLite-backed implementation of the storage interface.
// The relational schema carries the uniqueness constraints the domain
// requires: usernames, one character per user, one inventory line per
// (character, item) pair.
type Store struct {
	db *sql.DB
}

// New opens (and if needed initializes) a SQLite database at path
func New(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	// SQLite supports a single writer; one connection serializes purchases
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements the interface
var _ storage.Store = (*Store)(nil)

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS characters (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id),
		name TEXT NOT NULL,
		faction TEXT NOT NULL,
		level INTEGER NOT NULL,
		experience INTEGER NOT NULL,
		berries INTEGER NOT NULL CHECK (berries >= 0),
		health INTEGER NOT NULL,
		stamina INTEGER NOT NULL,
		map_region TEXT NOT NULL,
		x_coord INTEGER NOT NULL,
		y_coord INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL,
		type TEXT NOT NULL,
		effect_value INTEGER NOT NULL,
		price INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS inventory_lines (
		character_id TEXT NOT NULL REFERENCES characters(id),
		item_id TEXT NOT NULL REFERENCES items(id),
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		PRIMARY KEY (character_id, item_id)
	);
	CREATE TABLE IF NOT EXISTS purchase_receipts (
		character_id TEXT NOT NULL,
		idempotency_key TEXT NOT NULL,
		berries INTEGER NOT NULL,
		item_id TEXT NOT NULL,
		line_quantity INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		PRIMARY KEY (character_id, idempotency_key)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// User operations

func (s *Store) SaveUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET password_hash = excluded.password_hash`,
		string(user.ID), user.Username, user.PasswordHash, user.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM users WHERE id = ?`,
		string(id))
	return scanUser(row)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM users WHERE username = ?`,
		username)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var id string
	err := row.Scan(&id, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = model.UserID(id)
	return &u, nil
}

// Character operations

func (s *Store) SaveCharacter(ctx context.Context, char *model.Character) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO characters
			(id, user_id, name, faction, level, experience, berries, health,
			 stamina, map_region, x_coord, y_coord, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(char.ID), string(char.UserID), char.Name, string(char.Faction),
		char.Level, char.Experience, char.Berries, char.Health,
		char.Stamina, char.MapRegion, char.X, char.Y, char.CreatedAt)
	if isUniqueViolation(err) {
		return model.ErrCharacterExists
	}
	if err != nil {
		return fmt.Errorf("save character: %w", err)
	}
	return nil
}

const characterColumns = `id, user_id, name, faction, level, experience,
	berries, health, stamina, map_region, x_coord, y_coord, created_at`

func (s *Store) GetCharacter(ctx context.Context, id model.CharacterID) (*model.Character, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = ?`, string(id))
	return scanCharacter(row)
}

func (s *Store) GetCharacterByUser(ctx context.Context, userID model.UserID) (*model.Character, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE user_id = ?`, string(userID))
	return scanCharacter(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (*model.Character, error) {
	var c model.Character
	var id, userID, faction string
	err := row.Scan(&id, &userID, &c.Name, &faction, &c.Level, &c.Experience,
		&c.Berries, &c.Health, &c.Stamina, &c.MapRegion, &c.X, &c.Y, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCharacterNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan character: %w", err)
	}
	c.ID = model.CharacterID(id)
	c.UserID = model.UserID(userID)
	c.Faction = model.Faction(faction)
	return &c, nil
}

func (s *Store) UpdateCharacterPosition(ctx context.Context, id model.CharacterID, region string, x, y int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET map_region = ?, x_coord = ?, y_coord = ? WHERE id = ?`,
		region, x, y, string(id))
	if err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return model.ErrCharacterNotFound
	}
	return nil
}

// Item catalog operations

func (s *Store) SaveItem(ctx context.Context, item *model.Item) error {
	// Upsert by name so re-seeding the catalog is idempotent
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, description, type, effect_value, price)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			description = excluded.description,
			type = excluded.type,
			effect_value = excluded.effect_value,
			price = excluded.price`,
		string(item.ID), item.Name, item.Description, string(item.Type),
		item.EffectValue, item.Price)
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id model.ItemID) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, effect_value, price
		FROM items WHERE id = ?`, string(id))
	return scanItem(row)
}

func (s *Store) GetItemByName(ctx context.Context, name string) (*model.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, type, effect_value, price
		FROM items WHERE name = ?`, name)
	return scanItem(row)
}

func scanItem(row rowScanner) (*model.Item, error) {
	var i model.Item
	var id, itemType string
	err := row.Scan(&id, &i.Name, &i.Description, &itemType, &i.EffectValue, &i.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	i.ID = model.ItemID(id)
	i.Type = model.ItemType(itemType)
	return &i, nil
}

func (s *Store) ListItems(ctx context.Context) ([]*model.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, type, effect_value, price
		FROM items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Inventory operations

func (s *Store) ListInventory(ctx context.Context, characterID model.CharacterID) ([]*model.InventoryLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.character_id, l.item_id, l.quantity,
		       i.id, i.name, i.description, i.type, i.effect_value, i.price
		FROM inventory_lines l
		JOIN items i ON i.id = l.item_id
		WHERE l.character_id = ?
		ORDER BY i.name`, string(characterID))
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []*model.InventoryLine
	for rows.Next() {
		var l model.InventoryLine
		var i model.Item
		var charID, itemID, joinedID, itemType string
		if err := rows.Scan(&charID, &itemID, &l.Quantity,
			&joinedID, &i.Name, &i.Description, &itemType, &i.EffectValue, &i.Price); err != nil {
			return nil, fmt.Errorf("scan inventory line: %w", err)
		}
		l.CharacterID = model.CharacterID(charID)
		l.ItemID = model.ItemID(itemID)
		i.ID = model.ItemID(joinedID)
		i.Type = model.ItemType(itemType)
		l.Item = &i
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

// Purchase runs the deduction and upsert in one transaction. The balance
// check happens inside the conditional UPDATE so two concurrent purchases
// cannot both pass an affordability check against a stale read.
func (s *Store) Purchase(ctx context.Context, characterID model.CharacterID, itemID model.ItemID, quantity, totalCost int, idemKey string) (*model.PurchaseResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if idemKey != "" {
		result, err := s.replayReceipt(ctx, tx, characterID, idemKey)
		if err == nil {
			return result, tx.Commit()
		}
		if !errors.Is(err, model.ErrReceiptNotFound) {
			return nil, err
		}
	}

	item, err := scanItem(tx.QueryRowContext(ctx, `
		SELECT id, name, description, type, effect_value, price
		FROM items WHERE id = ?`, string(itemID)))
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE characters SET berries = berries - ?
		WHERE id = ? AND berries >= ?`,
		totalCost, string(characterID), totalCost)
	if err != nil {
		return nil, fmt.Errorf("deduct berries: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("deduct berries: %w", err)
	}
	if rows == 0 {
		// Distinguish a missing character from an unaffordable purchase
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM characters WHERE id = ?`, string(characterID)).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCharacterNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("check character: %w", err)
		}
		return nil, model.ErrInsufficientBerries
	}

	var lineQuantity int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO inventory_lines (character_id, item_id, quantity)
		VALUES (?, ?, ?)
		ON CONFLICT(character_id, item_id) DO UPDATE SET
			quantity = quantity + excluded.quantity
		RETURNING quantity`,
		string(characterID), string(itemID), quantity).Scan(&lineQuantity)
	if err != nil {
		return nil, fmt.Errorf("upsert inventory line: %w", err)
	}

	var berries int
	if err := tx.QueryRowContext(ctx,
		`SELECT berries FROM characters WHERE id = ?`, string(characterID)).Scan(&berries); err != nil {
		return nil, fmt.Errorf("read balance: %w", err)
	}

	if idemKey != "" {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO purchase_receipts
				(character_id, idempotency_key, berries, item_id, line_quantity, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			string(characterID), idemKey, berries, string(itemID), lineQuantity, time.Now()); err != nil {
			return nil, fmt.Errorf("save receipt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	return &model.PurchaseResult{
		Berries: berries,
		Line: &model.InventoryLine{
			CharacterID: characterID,
			ItemID:      itemID,
			Quantity:    lineQuantity,
			Item:        item,
		},
	}, nil
}

func (s *Store) replayReceipt(ctx context.Context, tx *sql.Tx, characterID model.CharacterID, idemKey string) (*model.PurchaseResult, error) {
	var berries, lineQuantity int
	var itemID string
	err := tx.QueryRowContext(ctx, `
		SELECT berries, item_id, line_quantity FROM purchase_receipts
		WHERE character_id = ? AND idempotency_key = ?`,
		string(characterID), idemKey).Scan(&berries, &itemID, &lineQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read receipt: %w", err)
	}

	item, err := scanItem(tx.QueryRowContext(ctx, `
		SELECT id, name, description, type, effect_value, price
		FROM items WHERE id = ?`, itemID))
	if err != nil && !errors.Is(err, model.ErrItemNotFound) {
		return nil, err
	}

	return &model.PurchaseResult{
		Berries: berries,
		Line: &model.InventoryLine{
			CharacterID: characterID,
			ItemID:      model.ItemID(itemID),
			Quantity:    lineQuantity,
			Item:        item,
		},
	}, nil
}
