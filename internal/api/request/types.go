package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateCharacterRequest is the request body for creating a character
type CreateCharacterRequest struct {
	Name    string `json:"name"`
	Faction string `json:"faction"`
}

// BuyRequest is the request body for purchasing an item
type BuyRequest struct {
	ItemID         string `json:"item_id"`
	Quantity       int    `json:"quantity,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// MoveRequest is the request body for moving a character one tile
type MoveRequest struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}
