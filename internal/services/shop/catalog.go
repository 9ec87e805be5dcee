package shop

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/grandline/server/internal/model"
)

// defaultCatalog is the stock carried by every village shop
var defaultCatalog = []model.Item{
	{
		Name:        "Wooden Sword",
		Description: "A sturdy practice blade. Better than bare fists.",
		Type:        model.ItemTypeWeapon,
		EffectValue: 5,
		Price:       150,
	},
	{
		Name:        "Flintlock Pistol",
		Description: "A single-shot pistol favoured by pirates of the East Blue.",
		Type:        model.ItemTypeWeapon,
		EffectValue: 12,
		Price:       500,
	},
	{
		Name:        "Mystery Meat",
		Description: "Smells questionable, restores health regardless.",
		Type:        model.ItemTypeConsumable,
		EffectValue: 50,
		Price:       50,
	},
	{
		Name:        "Ship Log Pose",
		Description: "A navigational compass that locks onto the next island.",
		Type:        model.ItemTypeKeyItem,
		EffectValue: 0,
		Price:       1000,
	},
}

// EnsureCatalog seeds the default item catalog into the store. Items are
// upserted by name, so running it on every startup is safe and keeps IDs
// stable across restarts for backends with durable storage.
func (s *Service) EnsureCatalog(ctx context.Context) error {
	for _, item := range defaultCatalog {
		existing, err := s.store.GetItemByName(ctx, item.Name)
		if err == nil {
			item.ID = existing.ID
		} else {
			item.ID = model.ItemID(uuid.NewString())
		}

		if err := s.store.SaveItem(ctx, &item); err != nil {
			return fmt.Errorf("seeding item %q: %w", item.Name, err)
		}
	}
	return nil
}
