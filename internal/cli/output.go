package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case Character:
		o.printCharacter(v)
	case Shop:
		o.printShop(v)
	case Inventory:
		o.printInventory(v)
	case BuyResult:
		o.printBuyResult(v)
	case TileMap:
		o.printTileMap(v)
	case MoveResult:
		o.printMoveResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResult combines the account and its token
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Character response type
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

// Item response type
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	EffectValue int    `json:"effect_value"`
	Price       int    `json:"price"`
}

// Shop response type
type Shop struct {
	Items []Item `json:"items"`
}

// InventoryLine response type
type InventoryLine struct {
	Item     Item `json:"item"`
	Quantity int  `json:"quantity"`
}

// Inventory response type
type Inventory struct {
	Berries int             `json:"berries"`
	Items   []InventoryLine `json:"items"`
}

// BuyResult response type
type BuyResult struct {
	Berries  int    `json:"berries"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// TileMap response type
type TileMap struct {
	Region string  `json:"region"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Tiles  [][]int `json:"tiles"`
}

// MoveResult response type
type MoveResult struct {
	X      int  `json:"x"`
	Y      int  `json:"y"`
	AtPort bool `json:"at_port"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("User: %s (%s)\n", a.User.Username, a.User.ID)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printCharacter(c Character) {
	fmt.Printf("Character: %s (%s)\n", c.Name, c.ID)
	fmt.Printf("Faction: %s\n", c.Faction)
	fmt.Printf("Level: %d (%d exp)\n", c.Level, c.Experience)
	fmt.Printf("Berries: %d\n", c.Berries)
	fmt.Printf("Health: %d  Stamina: %d\n", c.Health, c.Stamina)
	fmt.Printf("Location: %s (%d, %d)\n", c.MapRegion, c.X, c.Y)
}

func (o *Output) printShop(s Shop) {
	fmt.Printf("Shop (%d items):\n", len(s.Items))
	for _, item := range s.Items {
		fmt.Printf("  %-18s %6d berries  [%s]  %s\n", item.Name, item.Price, item.Type, item.ID)
	}
}

func (o *Output) printInventory(i Inventory) {
	fmt.Printf("Berries: %d\n", i.Berries)
	if len(i.Items) == 0 {
		fmt.Println("Inventory is empty")
		return
	}
	fmt.Printf("Inventory (%d stacks):\n", len(i.Items))
	for _, line := range i.Items {
		fmt.Printf("  %dx %s [%s]\n", line.Quantity, line.Item.Name, line.Item.Type)
	}
}

func (o *Output) printBuyResult(b BuyResult) {
	fmt.Printf("Bought! Now holding %d of item %s\n", b.Quantity, b.ItemID)
	fmt.Printf("Berries remaining: %d\n", b.Berries)
}

// tileGlyphs maps tile codes to single display characters
var tileGlyphs = []rune{'~', '≈', '.', ',', 'T', '=', '#', 'P'}

func (o *Output) printTileMap(m TileMap) {
	fmt.Printf("Region: %s (%dx%d)\n", m.Region, m.Width, m.Height)
	for _, row := range m.Tiles {
		for _, tile := range row {
			glyph := '?'
			if tile >= 0 && tile < len(tileGlyphs) {
				glyph = tileGlyphs[tile]
			}
			fmt.Printf("%c ", glyph)
		}
		fmt.Println()
	}
}

func (o *Output) printMoveResult(m MoveResult) {
	fmt.Printf("Moved to (%d, %d)\n", m.X, m.Y)
	if m.AtPort {
		fmt.Println("You are standing at the port. The sea awaits!")
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
