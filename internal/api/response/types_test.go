package response

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/services/shop"
)

func TestInventoryResponseSkipsUnresolvedItems(t *testing.T) {
	inv := &shop.Inventory{
		Berries: 350,
		Lines: []*model.InventoryLine{
			{
				CharacterID: "char-1",
				ItemID:      "item-1",
				Quantity:    2,
				Item:        &model.Item{ID: "item-1", Name: "Wooden Sword", Type: model.ItemTypeWeapon, Price: 150},
			},
			{
				// Item lookup failed upstream; the line must not panic
				// or render half-empty
				CharacterID: "char-1",
				ItemID:      "item-gone",
				Quantity:    1,
				Item:        nil,
			},
		},
	}

	resp := InventoryResponseFromModel(inv)

	assert.Equal(t, 350, resp.Berries)
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, "Wooden Sword", resp.Items[0].Item.Name)
	assert.Equal(t, 2, resp.Items[0].Quantity)
}
