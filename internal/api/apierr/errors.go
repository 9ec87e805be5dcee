package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grandline/server/internal/model"
	"github.com/grandline/server/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeCharacterNotFound   = "CHARACTER_NOT_FOUND"
	CodeCharacterExists     = "CHARACTER_EXISTS"
	CodeInvalidFaction      = "INVALID_FACTION"
	CodeItemNotFound        = "ITEM_NOT_FOUND"
	CodeInsufficientBerries = "INSUFFICIENT_BERRIES"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInvalidMove         = "INVALID_MOVE"
	CodeBlocked             = "BLOCKED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrCharacterNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCharacterNotFound, "Character not found"}}
	case errors.Is(err, model.ErrCharacterExists):
		return &httpError{http.StatusConflict, APIError{CodeCharacterExists, "Character already exists for this account"}}
	case errors.Is(err, model.ErrInvalidFaction):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidFaction, "Faction must be PIRATE, MARINE or BOUNTY_HUNTER"}}
	case errors.Is(err, model.ErrItemNotFound):
		return &httpError{http.StatusBadRequest, APIError{CodeItemNotFound, "Unknown item"}}
	case errors.Is(err, model.ErrInvalidQuantity):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidQuantity, "Quantity must be between 1 and 10000"}}
	case errors.Is(err, model.ErrInsufficientBerries):
		return &httpError{http.StatusBadRequest, APIError{CodeInsufficientBerries, "Not enough berries"}}
	case errors.Is(err, model.ErrInvalidMove):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidMove, "Moves must be a single step up, down, left or right"}}
	case errors.Is(err, model.ErrBlocked):
		return &httpError{http.StatusBadRequest, APIError{CodeBlocked, "That tile cannot be walked on"}}
	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username already exists"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Unknown user"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, auth.ErrMissingFields):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, "Username and password are required"}}
	case errors.Is(err, auth.ErrInvalidToken):
		return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Invalid or expired token"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error for rejected tokens
func NewForbiddenError() error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, "Invalid or expired token"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
