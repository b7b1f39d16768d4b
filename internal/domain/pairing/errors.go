package pairing

import "errors"

// Sentinel kinds for pairing errors.
var (
	ErrNotEnoughPlayers = errors.New("not enough available players for a doubles match")
)
