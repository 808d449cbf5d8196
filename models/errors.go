package models

import "errors"

// Domain errors returned by services and repositories. Callers match them with
// errors.Is; handlers map them to HTTP statuses.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingEmail       = errors.New("identity assertion has no email")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyBooked      = errors.New("service already booked")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateCNPJ      = errors.New("cnpj already registered")
)
