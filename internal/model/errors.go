package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username is already taken")

	// Character errors
	ErrCharacterNotFound = errors.New("no character found for this user")
	ErrCharacterExists   = errors.New("user already has a character")
	ErrInvalidFaction    = errors.New("invalid faction")

	// Shop errors
	ErrItemNotFound        = errors.New("item not found")
	ErrInvalidQuantity     = errors.New("quantity must be positive")
	ErrInsufficientBerries = errors.New("not enough berries")

	// Map errors
	ErrInvalidMove = errors.New("move must be a single step in one direction")
	ErrBlocked     = errors.New("target tile is blocked or out of bounds")

	// Receipt errors
	ErrReceiptNotFound = errors.New("purchase receipt not found")
)
