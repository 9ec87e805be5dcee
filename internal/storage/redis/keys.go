package redis

import (
	"fmt"

	"github.com/grandline/server/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "glgame"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> user_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// characterKey returns the Redis key for a Character
func characterKey(id model.CharacterID) string {
	return fmt.Sprintf("%s:character:%s", keyPrefix, id)
}

// characterByUserIndexKey returns the Redis key for the user -> character index
func characterByUserIndexKey(userID model.UserID) string {
	return fmt.Sprintf("%s:idx:character_by_user:%s", keyPrefix, userID)
}

// itemKey returns the Redis key for an Item
func itemKey(id model.ItemID) string {
	return fmt.Sprintf("%s:item:%s", keyPrefix, id)
}

// itemNameIndexKey returns the Redis key for the item name -> item_id index
func itemNameIndexKey(name string) string {
	return fmt.Sprintf("%s:idx:item_name:%s", keyPrefix, name)
}

// itemSetKey returns the Redis key for the SET of all item ids
func itemSetKey() string {
	return fmt.Sprintf("%s:items", keyPrefix)
}

// inventoryKey returns the Redis key for a character's inventory HASH
// (field: item id, value: quantity)
func inventoryKey(characterID model.CharacterID) string {
	return fmt.Sprintf("%s:inventory:%s", keyPrefix, characterID)
}

// receiptKey returns the Redis key for a purchase receipt
func receiptKey(characterID model.CharacterID, idemKey string) string {
	return fmt.Sprintf("%s:receipt:%s:%s", keyPrefix, characterID, idemKey)
}
