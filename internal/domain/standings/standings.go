// Package standings renders a deterministic ranked snapshot of a
// tournament. It is a pure read over state fetched elsewhere; nothing
// here mutates.
package standings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/matchpoint/internal/domain/model"
)

// Snapshot carries everything needed to render standings.
type Snapshot struct {
	TournamentID string
	MaxCourts    int
	CurrentRound int
	PairingMode  model.PairingMode
	Players      []model.Player
	Active       []model.Match
	Pending      []model.Match
}

// RankPlayers returns players ordered by score descending, ties broken
// by wins descending, stable beyond that. The input is not mutated.
func RankPlayers(players []model.Player) []model.Player {
	ranked := make([]model.Player, len(players))
	copy(ranked, players)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Wins > ranked[j].Wins
	})
	return ranked
}

// Render produces the standings text: header, ranked player table, and
// the ACTIVE and PENDING match lists. Empty sections render an explicit
// placeholder rather than an empty table.
func (s Snapshot) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Tournament: %s\n", s.TournamentID)
	fmt.Fprintf(&b, "Courts in use: %d/%d\n", len(s.Active), s.MaxCourts)
	fmt.Fprintf(&b, "Current Round: %d\n", s.CurrentRound)
	fmt.Fprintf(&b, "Pairing Mode: %s\n", s.PairingMode)

	b.WriteString("\n## Player Standings\n")
	ranked := RankPlayers(s.Players)
	if len(ranked) == 0 {
		b.WriteString("No players yet.")
	} else {
		b.WriteString("Rank | Name (Lvl) | Score | W-L\n")
		b.WriteString("---- | ----------- | ------ | ----")
		for i, p := range ranked {
			fmt.Fprintf(&b, "\n%d | %s (L%d) | %d | %d-%d",
				i+1, p.Name, p.Level, p.Score, p.Wins, p.Losses)
		}
	}

	writeMatchSection(&b, "Active Matches", s.Active)
	writeMatchSection(&b, "Pending Matches", s.Pending)

	return b.String()
}

func writeMatchSection(b *strings.Builder, title string, matches []model.Match) {
	fmt.Fprintf(b, "\n\n## %s", title)
	if len(matches) == 0 {
		b.WriteString("\nNone")
		return
	}
	for _, m := range matches {
		fmt.Fprintf(b, "\n- %s (R%d)", m.DisplayName(), m.Round)
	}
}
