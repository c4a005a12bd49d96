package services

import "errors"

// Error kinds returned by the service layer. Controllers translate these to
// HTTP statuses with errors.Is; the wrapped message is what the caller sees.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation error")
	ErrService      = errors.New("external service error")
)
