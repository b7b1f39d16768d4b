// Package scoring turns a final match score into outcome points and
// cumulative player stat deltas.
package scoring

import "github.com/okian/matchpoint/internal/domain/model"

// Outcome points awarded per player.
const (
	WinPoints  = 3
	DrawPoints = 1
	LossPoints = 0
)

// Winner names the winning side of a completed match.
type Winner string

const (
	WinnerTeamA Winner = "Team A"
	WinnerTeamB Winner = "Team B"
	WinnerNone  Winner = "" // draw
)

// Outcome is the decided result of a match.
type Outcome struct {
	TeamAPoints int
	TeamBPoints int
	Winner      Winner
	Draw        bool
}

// Decide determines the outcome from the raw team scores: the higher
// score wins (3 points vs 0), equal scores draw (1 point each).
func Decide(scoreA, scoreB int) Outcome {
	switch {
	case scoreA > scoreB:
		return Outcome{TeamAPoints: WinPoints, TeamBPoints: LossPoints, Winner: WinnerTeamA}
	case scoreB > scoreA:
		return Outcome{TeamAPoints: LossPoints, TeamBPoints: WinPoints, Winner: WinnerTeamB}
	default:
		return Outcome{TeamAPoints: DrawPoints, TeamBPoints: DrawPoints, Winner: WinnerNone, Draw: true}
	}
}

// PlayerDelta is the stat increment applied to one participant.
type PlayerDelta struct {
	PlayerID string
	WinInc   int
	LossInc  int
	ScoreInc int
}

// Deltas expands an outcome into the four per-player stat increments.
// Winners gain a win and their outcome points, losers a loss; a draw
// increments neither wins nor losses but adds a point to everyone.
func Deltas(m model.Match, o Outcome) []PlayerDelta {
	deltas := make([]PlayerDelta, 0, 4)
	for _, ref := range []model.PlayerRef{m.TeamAP1, m.TeamAP2} {
		deltas = append(deltas, delta(ref.ID, o.TeamAPoints, o.TeamBPoints))
	}
	for _, ref := range []model.PlayerRef{m.TeamBP1, m.TeamBP2} {
		deltas = append(deltas, delta(ref.ID, o.TeamBPoints, o.TeamAPoints))
	}
	return deltas
}

func delta(playerID string, own, opponent int) PlayerDelta {
	d := PlayerDelta{PlayerID: playerID, ScoreInc: own}
	if own > opponent {
		d.WinInc = 1
	}
	if opponent > own {
		d.LossInc = 1
	}
	return d
}
