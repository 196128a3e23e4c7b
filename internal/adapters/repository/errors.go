package repository

import "errors"

// Sentinel kinds for draft store errors.
var (
	ErrDuplicatePick     = errors.New("pick number already taken")
	ErrPickNotFound      = errors.New("pick not found")
	ErrInvalidPickNumber = errors.New("pick number must not be negative")
	ErrUnknownBackend    = errors.New("unknown draft backend")
)
