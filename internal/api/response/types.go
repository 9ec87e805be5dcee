package response

import (
	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/services/auth"
	"github.com/grandline/server/internal/services/shop"
	"github.com/grandline/server/internal/services/worldmap"
)

// User represents an account in API responses
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:       string(u.ID),
		Username: u.Username,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// AuthResponseFromCredentials creates an AuthResponse from issued credentials
func AuthResponseFromCredentials(c *auth.Credentials) AuthResponse {
	return AuthResponse{
		User:  UserFromModel(c.User),
		Token: c.Token,
	}
}

// Character represents a character in API responses
type Character struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Faction    string `json:"faction"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	Berries    int    `json:"berries"`
	Health     int    `json:"health"`
	Stamina    int    `json:"stamina"`
	MapRegion  string `json:"map_region"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
}

// CharacterFromModel converts model.Character
func CharacterFromModel(c *model.Character) Character {
	return Character{
		ID:         string(c.ID),
		Name:       c.Name,
		Faction:    string(c.Faction),
		Level:      c.Level,
		Experience: c.Experience,
		Berries:    c.Berries,
		Health:     c.Health,
		Stamina:    c.Stamina,
		MapRegion:  c.MapRegion,
		X:          c.X,
		Y:          c.Y,
	}
}

// Item represents a catalog item in API responses
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	EffectValue int    `json:"effect_value"`
	Price       int    `json:"price"`
}

// ItemFromModel converts model.Item
func ItemFromModel(i *model.Item) Item {
	return Item{
		ID:          string(i.ID),
		Name:        i.Name,
		Description: i.Description,
		Type:        string(i.Type),
		EffectValue: i.EffectValue,
		Price:       i.Price,
	}
}

// ShopResponse lists all purchasable items
type ShopResponse struct {
	Items []Item `json:"items"`
}

// ShopResponseFromModel converts a catalog listing
func ShopResponseFromModel(items []*model.Item) ShopResponse {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = ItemFromModel(item)
	}
	return ShopResponse{Items: out}
}

// InventoryLine represents one owned item stack
type InventoryLine struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

// InventoryResponse is a character's inventory plus its berries balance
type InventoryResponse struct {
	Berries int             `json:"berries"`
	Items   []InventoryLine `json:"items"`
}

// InventoryResponseFromModel converts a joined inventory listing.
// Lines whose item details did not resolve are omitted rather than
// rendered half-empty.
func InventoryResponseFromModel(inv *shop.Inventory) InventoryResponse {
	lines := make([]InventoryLine, 0, len(inv.Lines))
	for _, line := range inv.Lines {
		if line.Item == nil {
			continue
		}
		lines = append(lines, InventoryLine{
			Item:     ItemFromModel(line.Item),
			Quantity: line.Quantity,
		})
	}
	return InventoryResponse{Berries: inv.Berries, Items: lines}
}

// BuyResponse is the outcome of a completed purchase
type BuyResponse struct {
	Berries  int    `json:"berries"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// BuyResponseFromModel converts a purchase result
func BuyResponseFromModel(result *model.PurchaseResult) BuyResponse {
	return BuyResponse{
		Berries:  result.Berries,
		ItemID:   string(result.Line.ItemID),
		Quantity: result.Line.Quantity,
	}
}

// MapResponse is the tile grid for a map region
type MapResponse struct {
	Region string  `json:"region"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Tiles  [][]int `json:"tiles"`
}

// MapResponseFromModel converts model.TileMap
func MapResponseFromModel(m *model.TileMap) MapResponse {
	tiles := make([][]int, len(m.Tiles))
	width := 0
	for y, row := range m.Tiles {
		tiles[y] = make([]int, len(row))
		for x, tile := range row {
			tiles[y][x] = int(tile)
		}
		if len(row) > width {
			width = len(row)
		}
	}
	return MapResponse{
		Region: m.Region,
		Width:  width,
		Height: len(m.Tiles),
		Tiles:  tiles,
	}
}

// MoveResponse reports where a character ended up after a move
type MoveResponse struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	AtPort bool `json:"at_port"`
}

// MoveResponseFromModel converts a move outcome
func MoveResponseFromModel(outcome *worldmap.MoveOutcome) MoveResponse {
	return MoveResponse{
		X:      outcome.Position.X,
		Y:      outcome.Position.Y,
		AtPort: outcome.AtPort,
	}
}
