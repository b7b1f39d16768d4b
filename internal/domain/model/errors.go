package model

import "errors"

// Sentinel kinds for model validation errors.
var (
	ErrLevelOutOfRange    = errors.New("level must be between 1 and 5")
	ErrUnknownPairingMode = errors.New("mode must be RANDOM or BALANCED")
	ErrInvalidFoursome    = errors.New("invalid foursome")
)
