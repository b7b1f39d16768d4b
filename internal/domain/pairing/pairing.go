// Package pairing partitions eligible players into doubles foursomes.
package pairing

import (
	"math/rand"
	"sort"
	"time"

	"github.com/okian/matchpoint/internal/domain/model"
)

// playersPerMatch is the fixed doubles match shape: two teams of two.
const playersPerMatch = 4

// Team is a two-player side of a doubles match.
type Team struct {
	P1 model.Player
	P2 model.Player
}

// Foursome is two teams drawn for one match, with an advisory rematch flag.
type Foursome struct {
	TeamA     Team
	TeamB     Team
	IsRematch bool
}

// PlayerIDs returns the four participant ids.
func (f Foursome) PlayerIDs() []string {
	return []string{f.TeamA.P1.ID, f.TeamA.P2.ID, f.TeamB.P1.ID, f.TeamB.P2.ID}
}

// Fingerprint identifies the unordered player set of the foursome.
func (f Foursome) Fingerprint() model.Fingerprint {
	return model.FingerprintOf(f.PlayerIDs()...)
}

// Result is the outcome of one pairing pass.
type Result struct {
	Foursomes []Foursome
	Byes      []model.Player
}

// History is the set of player-set fingerprints from completed matches,
// consulted to flag rematches.
type History map[model.Fingerprint]struct{}

// HistoryFromMatches collects fingerprints of COMPLETED matches only.
func HistoryFromMatches(matches []model.Match) History {
	h := make(History)
	for _, m := range matches {
		if m.Status != model.MatchCompleted {
			continue
		}
		h[m.Fingerprint()] = struct{}{}
	}
	return h
}

// Seen reports whether the fingerprint was played to completion before.
func (h History) Seen(fp model.Fingerprint) bool {
	_, ok := h[fp]
	return ok
}

// Former forms foursomes from eligible players under a pairing mode.
type Former struct {
	rng *rand.Rand
}

// NewFormer creates a Former. Pass WithRand for deterministic output.
func NewFormer(opts ...Option) *Former {
	f := &Former{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // shuffle, not security
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Form partitions players into foursomes plus byes.
//
// Byes are the count-mod-4 lowest-level players, removed before grouping
// (ties broken by incoming order). The input slice is never mutated.
// Callers are responsible for passing only eligible players.
func (f *Former) Form(players []model.Player, mode model.PairingMode, played History) (Result, error) {
	if len(players) < playersPerMatch {
		return Result{}, ErrNotEnoughPlayers
	}

	pool := make([]model.Player, len(players))
	copy(pool, players)

	var byes []model.Player
	if n := len(pool) % playersPerMatch; n != 0 {
		sort.SliceStable(pool, func(i, j int) bool {
			return pool[i].Level < pool[j].Level
		})
		byes = append(byes, pool[:n]...)
		pool = pool[n:]
	}

	var foursomes []Foursome
	switch mode {
	case model.PairingRandom:
		foursomes = f.formRandom(pool)
	default:
		foursomes = f.formBalanced(pool)
	}

	for i := range foursomes {
		foursomes[i].IsRematch = played.Seen(foursomes[i].Fingerprint())
	}

	return Result{Foursomes: foursomes, Byes: byes}, nil
}

// formRandom shuffles the pool uniformly and chunks it into groups of 4:
// the first two players of each group form team A, the last two team B.
func (f *Former) formRandom(pool []model.Player) []Foursome {
	f.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	out := make([]Foursome, 0, len(pool)/playersPerMatch)
	for i := 0; i+playersPerMatch <= len(pool); i += playersPerMatch {
		out = append(out, Foursome{
			TeamA: Team{P1: pool[i], P2: pool[i+1]},
			TeamB: Team{P1: pool[i+2], P2: pool[i+3]},
		})
	}
	return out
}

// formBalanced sorts by level descending and pairs highest with lowest,
// second-highest with second-lowest, and so on, yielding teams of roughly
// equal combined skill. The team list is shuffled to avoid deterministic
// seeding order, then consecutive team pairs become foursomes. A trailing
// unpaired team is left out of this round's pairing.
func (f *Former) formBalanced(pool []model.Player) []Foursome {
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].Level > pool[j].Level
	})

	var teams []Team
	for l, r := 0, len(pool)-1; l < r; l, r = l+1, r-1 {
		teams = append(teams, Team{P1: pool[l], P2: pool[r]})
	}

	f.rng.Shuffle(len(teams), func(i, j int) {
		teams[i], teams[j] = teams[j], teams[i]
	})

	out := make([]Foursome, 0, len(teams)/2)
	for i := 0; i+1 < len(teams); i += 2 {
		out = append(out, Foursome{TeamA: teams[i], TeamB: teams[i+1]})
	}
	return out
}
