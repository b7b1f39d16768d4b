package app

import (
	"errors"
	"fmt"
)

// Sentinel kinds for engine domain-state and validation errors.
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchNotPending    = errors.New("match not in PENDING state")
	ErrMatchAlreadyScored = errors.New("match already scored")
	ErrInvalidCourtCount  = errors.New("total courts must be 0 or greater")
	ErrInvalidRound       = errors.New("round number must be 1 or greater")
)

// CourtsFullError is returned when admission control finds every court
// occupied by an ACTIVE match.
type CourtsFullError struct {
	MaxCourts int
}

func (e *CourtsFullError) Error() string {
	return fmt.Sprintf("all %d courts are full", e.MaxCourts)
}
