package models

import "errors"

// Custom errors
var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateKey       = errors.New("duplicate key violation")
	ErrInvalidID          = errors.New("invalid ID format")
	ErrEmptyDescription   = errors.New("leg description is required")
	ErrInvalidOdds        = errors.New("american odds must be non-zero with magnitude >= 100")
	ErrInvalidStake       = errors.New("stake must be positive")
	ErrNoLegs             = errors.New("at least one leg is required")
	ErrInvalidDecimalOdds = errors.New("decimal odds must be greater than 1")
)
