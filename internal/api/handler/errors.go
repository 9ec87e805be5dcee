package handler

import (
	"net/http"

	"github.com/grandline/server/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeUnauthorized        = apierr.CodeUnauthorized
	CodeForbidden           = apierr.CodeForbidden
	CodeUsernameTaken       = apierr.CodeUsernameTaken
	CodeInvalidCredentials  = apierr.CodeInvalidCredentials
	CodeCharacterNotFound   = apierr.CodeCharacterNotFound
	CodeCharacterExists     = apierr.CodeCharacterExists
	CodeInvalidFaction      = apierr.CodeInvalidFaction
	CodeItemNotFound        = apierr.CodeItemNotFound
	CodeInsufficientBerries = apierr.CodeInsufficientBerries
	CodeInvalidQuantity     = apierr.CodeInvalidQuantity
	CodeInvalidMove         = apierr.CodeInvalidMove
	CodeBlocked             = apierr.CodeBlocked
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
