// Package model contains domain records passed between layers.
package model

import (
	"fmt"
	"sort"
	"strings"
)

// Player skill level bounds.
const (
	MinLevel = 1
	MaxLevel = 5
)

// MatchStatus tracks a match through its lifecycle. Transitions are
// monotonic: PENDING -> ACTIVE -> COMPLETED, with no way back.
type MatchStatus string

const (
	MatchPending   MatchStatus = "PENDING"
	MatchActive    MatchStatus = "ACTIVE"
	MatchCompleted MatchStatus = "COMPLETED"
)

// PairingMode selects how eligible players are grouped into foursomes.
type PairingMode string

const (
	PairingRandom   PairingMode = "RANDOM"
	PairingBalanced PairingMode = "BALANCED"
)

// ParsePairingMode normalizes and validates a pairing mode string.
func ParsePairingMode(s string) (PairingMode, error) {
	switch PairingMode(strings.ToUpper(strings.TrimSpace(s))) {
	case PairingRandom:
		return PairingRandom, nil
	case PairingBalanced:
		return PairingBalanced, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPairingMode, s)
	}
}

// TournamentConfig is the per-tournament configuration record.
type TournamentConfig struct {
	Name         string
	MaxCourts    int
	CurrentRound int
	PairingMode  PairingMode
}

// Player is a registered tournament participant with cumulative stats.
type Player struct {
	ID     string
	Name   string
	Level  int
	Wins   int
	Losses int
	Score  int
}

// ValidateLevel rejects skill levels outside the 1..5 range.
func ValidateLevel(level int) error {
	if level < MinLevel || level > MaxLevel {
		return fmt.Errorf("%w: %d", ErrLevelOutOfRange, level)
	}
	return nil
}

// PlayerRef is a player reference stamped onto a match. The name is
// denormalized at creation time and never refreshed afterwards.
type PlayerRef struct {
	ID   string
	Name string
}

// Match is one doubles match: two teams of two players.
type Match struct {
	ID        string
	Round     int
	Status    MatchStatus
	IsRematch bool

	TeamAP1 PlayerRef
	TeamAP2 PlayerRef
	TeamBP1 PlayerRef
	TeamBP2 PlayerRef

	// Scores are meaningful only once Status is COMPLETED.
	TeamAScore int
	TeamBScore int
}

// NewMatch assembles a PENDING match, rejecting malformed foursomes
// (missing or duplicate player ids) before anything is persisted.
func NewMatch(id string, round int, rematch bool, a1, a2, b1, b2 PlayerRef) (Match, error) {
	ids := []string{a1.ID, a2.ID, b1.ID, b2.ID}
	seen := make(map[string]struct{}, len(ids))
	for _, pid := range ids {
		if pid == "" {
			return Match{}, fmt.Errorf("%w: empty player id", ErrInvalidFoursome)
		}
		if _, dup := seen[pid]; dup {
			return Match{}, fmt.Errorf("%w: duplicate player id %s", ErrInvalidFoursome, pid)
		}
		seen[pid] = struct{}{}
	}
	return Match{
		ID:        id,
		Round:     round,
		Status:    MatchPending,
		IsRematch: rematch,
		TeamAP1:   a1,
		TeamAP2:   a2,
		TeamBP1:   b1,
		TeamBP2:   b2,
	}, nil
}

// PlayerIDs returns the four participant ids in team order.
func (m Match) PlayerIDs() [4]string {
	return [4]string{m.TeamAP1.ID, m.TeamAP2.ID, m.TeamBP1.ID, m.TeamBP2.ID}
}

// DisplayName renders the match using the names frozen at creation time.
func (m Match) DisplayName() string {
	return fmt.Sprintf("(D) %s/%s vs %s/%s",
		m.TeamAP1.Name, m.TeamAP2.Name, m.TeamBP1.Name, m.TeamBP2.Name)
}

// Fingerprint identifies the unordered four-player set of the match.
func (m Match) Fingerprint() Fingerprint {
	ids := m.PlayerIDs()
	return FingerprintOf(ids[0], ids[1], ids[2], ids[3])
}

// Fingerprint is a canonical identity for an unordered set of player ids.
// Two matches with the same four players produce equal fingerprints
// regardless of team assignment.
type Fingerprint string

// FingerprintOf builds a Fingerprint from player ids.
func FingerprintOf(ids ...string) Fingerprint {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return Fingerprint(strings.Join(sorted, "|"))
}
