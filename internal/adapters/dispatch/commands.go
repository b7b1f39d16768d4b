package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/matchpoint/internal/app"
	"github.com/okian/matchpoint/internal/domain/model"
	"github.com/okian/matchpoint/internal/domain/pairing"
)

func (r *Registry) register() {
	r.commands = make(map[string]Command)

	r.add(Command{
		Name:  "create_tournament",
		Usage: "create_tournament [name=<name>] [total_courts=<n>]",
		Run:   r.createTournament,
	})
	r.add(Command{
		Name:  "add_player",
		Usage: "add_player tournament_id=<id> name=<name> level=<1-5>",
		Run:   r.addPlayer,
	})
	r.add(Command{
		Name:  "set_court_capacity",
		Usage: "set_court_capacity tournament_id=<id> total_courts=<n>",
		Run:   r.setCourtCapacity,
	})
	r.add(Command{
		Name:  "set_round",
		Usage: "set_round tournament_id=<id> round_number=<n>",
		Run:   r.setRound,
	})
	r.add(Command{
		Name:  "set_pairing_mode",
		Usage: "set_pairing_mode tournament_id=<id> mode=<RANDOM|BALANCED>",
		Run:   r.setPairingMode,
	})
	r.add(Command{
		Name:  "create_doubles_matches",
		Usage: "create_doubles_matches tournament_id=<id>",
		Run:   r.createDoublesMatches,
	})
	r.add(Command{
		Name:  "start_match",
		Usage: "start_match tournament_id=<id> match_id=<id>",
		Run:   r.startMatch,
	})
	r.add(Command{
		Name:  "report_score",
		Usage: "report_score tournament_id=<id> match_id=<id> team_a_score=<n> team_b_score=<n>",
		Run:   r.reportScore,
	})
	r.add(Command{
		Name:  "get_standings",
		Usage: "get_standings tournament_id=<id>",
		Run:   r.getStandings,
	})
	r.add(Command{
		Name:  "list_commands",
		Usage: "list_commands",
		Run:   r.listCommands,
	})
}

func (r *Registry) createTournament(ctx context.Context, args Args) string {
	courts, err := args.IntDefault("total_courts", r.defaultCourts)
	if err != nil {
		return errorText(err)
	}
	id, err := app.CreateTournament(ctx, r.store, args.Get("name"), courts)
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Tournament created: %s with %d courts.", id, courts)
}

func (r *Registry) addPlayer(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	name, err := args.Require("name")
	if err != nil {
		return errorText(err)
	}
	level, err := args.Int("level")
	if err != nil {
		return errorText(err)
	}
	p, err := r.engine(tid).AddPlayer(ctx, name, level)
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Player '%s' (Level %d) added with ID %s.", p.Name, p.Level, p.ID)
}

func (r *Registry) setCourtCapacity(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	courts, err := args.Int("total_courts")
	if err != nil {
		return errorText(err)
	}
	if err := r.engine(tid).SetMaxCourts(ctx, courts); err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Success: Court capacity set to %d.", courts)
}

func (r *Registry) setRound(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	round, err := args.Int("round_number")
	if err != nil {
		return errorText(err)
	}
	if err := r.engine(tid).SetCurrentRound(ctx, round); err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Success: Current round set to %d.", round)
}

func (r *Registry) setPairingMode(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	mode, err := args.Require("mode")
	if err != nil {
		return errorText(err)
	}
	parsed, err := r.engine(tid).SetPairingMode(ctx, mode)
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("Success: Pairing mode set to %s.", parsed)
}

func (r *Registry) createDoublesMatches(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	result, err := r.engine(tid).CreateDoublesMatches(ctx)
	if err != nil {
		return errorText(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Created %d matches (%s mode):", len(result.Matches), result.Mode)
	rematches := 0
	for _, m := range result.Matches {
		fmt.Fprintf(&b, "\n%s (ID: %s) - Round %d", m.DisplayName(), m.ID, m.Round)
		if m.IsRematch {
			b.WriteString(" (WARNING: REMATCH)")
			rematches++
		}
	}
	if rematches > 0 {
		fmt.Fprintf(&b, "\n\nWarning: %d match(es) are rematches.", rematches)
	}
	if len(result.Byes) > 0 {
		fmt.Fprintf(&b, "\nPlayers with bye: %s", strings.Join(result.Byes, ", "))
	}
	if len(result.Failures) > 0 {
		fmt.Fprintf(&b, "\nError: failed to persist %d match(es): %s",
			len(result.Failures), strings.Join(result.Failures, "; "))
	}
	return b.String()
}

func (r *Registry) startMatch(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	matchID, err := args.Require("match_id")
	if err != nil {
		return errorText(err)
	}
	m, err := r.engine(tid).StartMatch(ctx, matchID)
	if err != nil {
		return matchErrorText(err, matchID)
	}
	return fmt.Sprintf("Match started: %s", m.DisplayName())
}

func (r *Registry) reportScore(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	matchID, err := args.Require("match_id")
	if err != nil {
		return errorText(err)
	}
	scoreA, err := args.Int("team_a_score")
	if err != nil {
		return errorText(err)
	}
	scoreB, err := args.Int("team_b_score")
	if err != nil {
		return errorText(err)
	}
	result, err := r.engine(tid).ReportScore(ctx, matchID, scoreA, scoreB)
	if err != nil {
		return matchErrorText(err, matchID)
	}
	name := result.Match.DisplayName()
	if result.Outcome.Draw {
		return fmt.Sprintf("Draw reported: %s (%d-%d)", name, scoreA, scoreB)
	}
	return fmt.Sprintf("%s wins: %s (%d-%d)", result.Outcome.Winner, name, scoreA, scoreB)
}

func (r *Registry) getStandings(ctx context.Context, args Args) string {
	tid, err := args.Require("tournament_id")
	if err != nil {
		return errorText(err)
	}
	snapshot, err := r.engine(tid).Standings(ctx)
	if err != nil {
		return errorText(err)
	}
	return snapshot.Render()
}

func (r *Registry) listCommands(_ context.Context, _ Args) string {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, cmd := range r.Commands() {
		fmt.Fprintf(&b, "\n  %s", cmd.Usage)
	}
	return b.String()
}

// errorText frames a failure as the command surface's flat string form.
func errorText(err error) string {
	var courtsFull *app.CourtsFullError
	switch {
	case errors.As(err, &courtsFull):
		return fmt.Sprintf("Error: All %d courts are full.", courtsFull.MaxCourts)
	case errors.Is(err, model.ErrLevelOutOfRange):
		return "Error: Level must be between 1 and 5."
	case errors.Is(err, model.ErrUnknownPairingMode):
		return "Error: Mode must be 'RANDOM' or 'BALANCED'."
	case errors.Is(err, app.ErrInvalidCourtCount):
		return "Error: Total courts must be 0 or greater."
	case errors.Is(err, app.ErrInvalidRound):
		return "Error: Round number must be 1 or greater."
	case errors.Is(err, pairing.ErrNotEnoughPlayers):
		return "Error: Not enough available players for a doubles match (need 4)."
	default:
		return fmt.Sprintf("Error: %s.", err.Error())
	}
}

// matchErrorText adds match-id context for the match lifecycle commands.
func matchErrorText(err error, matchID string) string {
	switch {
	case errors.Is(err, app.ErrMatchNotFound):
		return fmt.Sprintf("Error: Match ID %s not found.", matchID)
	case errors.Is(err, app.ErrMatchNotPending):
		return "Error: Match not in PENDING state."
	case errors.Is(err, app.ErrMatchAlreadyScored):
		return "Error: Match already scored."
	default:
		return errorText(err)
	}
}
