package app_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/okian/matchpoint/internal/adapters/repository"
	"github.com/okian/matchpoint/internal/app"
	"github.com/okian/matchpoint/internal/domain/model"
	"github.com/okian/matchpoint/internal/domain/pairing"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestEngine(ctx context.Context, t *testing.T, store repository.Store, courts int) *app.Engine {
	t.Helper()
	id, err := app.CreateTournament(ctx, store, "Test Open", courts)
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return app.New(store, id, app.WithRand(rand.New(rand.NewSource(7)))) //nolint:gosec // deterministic test seed
}

func addPlayers(ctx context.Context, t *testing.T, e *app.Engine, levels ...int) {
	t.Helper()
	for i, level := range levels {
		if _, err := e.AddPlayer(ctx, fmt.Sprintf("Player%02d", i), level); err != nil {
			t.Fatalf("add player %d: %v", i, err)
		}
	}
}

var errStoreDown = errors.New("store unavailable")

// faultyStore fails writes on keys carrying a chosen sort-key prefix,
// optionally after letting a number of them through first.
type faultyStore struct {
	repository.Store
	failPutPrefix    string
	putBudget        int
	failUpdatePrefix string
}

func (s *faultyStore) Put(ctx context.Context, it repository.Item) error {
	if s.failPutPrefix != "" && strings.HasPrefix(repository.KeyOf(it).SK, s.failPutPrefix) {
		if s.putBudget <= 0 {
			return errStoreDown
		}
		s.putBudget--
	}
	return s.Store.Put(ctx, it)
}

func (s *faultyStore) Update(ctx context.Context, key repository.Key, expr string, names map[string]string, values map[string]any) error {
	if s.failUpdatePrefix != "" && strings.HasPrefix(key.SK, s.failUpdatePrefix) {
		return errStoreDown
	}
	return s.Store.Update(ctx, key, expr, names, values)
}

func TestCreateTournament(t *testing.T) {
	Convey("Given a store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()

		Convey("When creating a tournament", func() {
			id, err := app.CreateTournament(ctx, store, "", 5)

			Convey("Then the id has the T_ prefix and config defaults apply", func() {
				So(err, ShouldBeNil)
				So(id, ShouldStartWith, "T_")
				So(id, ShouldHaveLength, 10)

				cfg, err := app.New(store, id).Config(ctx)
				So(err, ShouldBeNil)
				So(cfg.MaxCourts, ShouldEqual, 5)
				So(cfg.CurrentRound, ShouldEqual, 1)
				So(cfg.PairingMode, ShouldEqual, model.PairingBalanced)
				So(cfg.Name, ShouldEqual, "Tournament "+id)
			})
		})

		Convey("When creating with a negative court count", func() {
			_, err := app.CreateTournament(ctx, store, "Bad", -1)

			Convey("Then it is rejected before any write", func() {
				So(err, ShouldWrap, app.ErrInvalidCourtCount)
			})
		})
	})
}

func TestConfigSetters(t *testing.T) {
	Convey("Given a tournament", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 3)

		Convey("When updating settings with valid values", func() {
			So(engine.SetMaxCourts(ctx, 0), ShouldBeNil)
			So(engine.SetCurrentRound(ctx, 4), ShouldBeNil)
			mode, err := engine.SetPairingMode(ctx, "random")
			So(err, ShouldBeNil)
			So(mode, ShouldEqual, model.PairingRandom)

			Convey("Then the config reflects them", func() {
				cfg, err := engine.Config(ctx)
				So(err, ShouldBeNil)
				So(cfg.MaxCourts, ShouldEqual, 0)
				So(cfg.CurrentRound, ShouldEqual, 4)
				So(cfg.PairingMode, ShouldEqual, model.PairingRandom)
			})
		})

		Convey("When updating settings with invalid values", func() {
			Convey("Then each is rejected without mutation", func() {
				So(engine.SetMaxCourts(ctx, -2), ShouldWrap, app.ErrInvalidCourtCount)
				So(engine.SetCurrentRound(ctx, 0), ShouldWrap, app.ErrInvalidRound)
				_, err := engine.SetPairingMode(ctx, "SWISS")
				So(err, ShouldWrap, model.ErrUnknownPairingMode)

				cfg, err := engine.Config(ctx)
				So(err, ShouldBeNil)
				So(cfg.MaxCourts, ShouldEqual, 3)
				So(cfg.CurrentRound, ShouldEqual, 1)
				So(cfg.PairingMode, ShouldEqual, model.PairingBalanced)
			})
		})
	})
}

func TestAddPlayer(t *testing.T) {
	Convey("Given a tournament", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 3)

		Convey("When adding players at every valid level", func() {
			for level := model.MinLevel; level <= model.MaxLevel; level++ {
				p, err := engine.AddPlayer(ctx, fmt.Sprintf("L%d", level), level)
				So(err, ShouldBeNil)
				So(p.ID, ShouldNotBeEmpty)
			}

			Convey("Then every stored player starts with zeroed stats", func() {
				players, err := engine.Players(ctx)
				So(err, ShouldBeNil)
				So(players, ShouldHaveLength, 5)
				for _, p := range players {
					So(p.Wins, ShouldEqual, 0)
					So(p.Losses, ShouldEqual, 0)
					So(p.Score, ShouldEqual, 0)
				}
			})
		})

		Convey("When adding a player with an out-of-range level", func() {
			_, err := engine.AddPlayer(ctx, "Too Good", 6)

			Convey("Then it fails and nothing is stored", func() {
				So(err, ShouldWrap, model.ErrLevelOutOfRange)
				players, err := engine.Players(ctx)
				So(err, ShouldBeNil)
				So(players, ShouldBeEmpty)
			})
		})
	})
}

func TestCreateDoublesMatches(t *testing.T) {
	Convey("Given a tournament with registered players", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 3)

		Convey("When fewer than four players are available", func() {
			addPlayers(ctx, t, engine, 3, 3, 3)
			_, err := engine.CreateDoublesMatches(ctx)

			Convey("Then pairing fails with the domain error", func() {
				So(err, ShouldWrap, pairing.ErrNotEnoughPlayers)
			})
		})

		Convey("When eight players are available", func() {
			addPlayers(ctx, t, engine, 1, 2, 3, 4, 5, 1, 2, 3)
			So(engine.SetCurrentRound(ctx, 2), ShouldBeNil)
			result, err := engine.CreateDoublesMatches(ctx)

			Convey("Then two PENDING matches stamped with the current round exist", func() {
				So(err, ShouldBeNil)
				So(result.Matches, ShouldHaveLength, 2)
				So(result.Byes, ShouldBeEmpty)

				matches, err := engine.Matches(ctx)
				So(err, ShouldBeNil)
				So(matches, ShouldHaveLength, 2)
				for _, m := range matches {
					So(m.Status, ShouldEqual, model.MatchPending)
					So(m.Round, ShouldEqual, 2)
				}
			})

			Convey("Then a second pairing pass finds nobody available", func() {
				So(err, ShouldBeNil)
				_, err := engine.CreateDoublesMatches(ctx)
				So(err, ShouldWrap, pairing.ErrNotEnoughPlayers)
			})
		})

		Convey("When nine players are available", func() {
			addPlayers(ctx, t, engine, 5, 4, 3, 2, 5, 4, 3, 2, 1)
			result, err := engine.CreateDoublesMatches(ctx)

			Convey("Then the lowest-skill player sits out as a bye", func() {
				So(err, ShouldBeNil)
				So(result.Matches, ShouldHaveLength, 2)
				So(result.Byes, ShouldResemble, []string{"Player08"})
			})
		})
	})
}

func TestCourtAdmission(t *testing.T) {
	Convey("Given a tournament with a single court", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 1)
		addPlayers(ctx, t, engine, 1, 2, 3, 4, 5, 1, 2, 3)

		result, err := engine.CreateDoublesMatches(ctx)
		So(err, ShouldBeNil)
		So(result.Matches, ShouldHaveLength, 2)
		matchA, matchB := result.Matches[0].ID, result.Matches[1].ID

		Convey("When starting the first match", func() {
			started, err := engine.StartMatch(ctx, matchA)

			Convey("Then it becomes ACTIVE", func() {
				So(err, ShouldBeNil)
				So(started.Status, ShouldEqual, model.MatchActive)
			})

			Convey("And starting a second match fails while the court is taken", func() {
				So(err, ShouldBeNil)
				_, err := engine.StartMatch(ctx, matchB)
				var full *app.CourtsFullError
				So(err, ShouldHaveSameTypeAs, full)
				So(err.Error(), ShouldContainSubstring, "1 courts are full")
			})

			Convey("And completing the first match frees the court", func() {
				So(err, ShouldBeNil)
				_, err := engine.ReportScore(ctx, matchA, 6, 4)
				So(err, ShouldBeNil)

				started, err := engine.StartMatch(ctx, matchB)
				So(err, ShouldBeNil)
				So(started.Status, ShouldEqual, model.MatchActive)
			})
		})

		Convey("When starting an unknown match", func() {
			_, err := engine.StartMatch(ctx, "nope")

			Convey("Then it reports not found", func() {
				So(err, ShouldWrap, app.ErrMatchNotFound)
			})
		})

		Convey("When starting an already ACTIVE match", func() {
			_, err := engine.StartMatch(ctx, matchA)
			So(err, ShouldBeNil)
			So(engine.SetMaxCourts(ctx, 2), ShouldBeNil)

			_, err = engine.StartMatch(ctx, matchA)

			Convey("Then it reports the state conflict", func() {
				So(err, ShouldWrap, app.ErrMatchNotPending)
			})
		})
	})
}

func TestReportScore(t *testing.T) {
	Convey("Given a tournament with one pending match", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 3)
		addPlayers(ctx, t, engine, 2, 3, 4, 5)

		result, err := engine.CreateDoublesMatches(ctx)
		So(err, ShouldBeNil)
		So(result.Matches, ShouldHaveLength, 1)
		match := result.Matches[0]

		teamA := map[string]struct{}{match.TeamAP1.ID: {}, match.TeamAP2.ID: {}}

		Convey("When team A wins 3-1", func() {
			report, err := engine.ReportScore(ctx, match.ID, 3, 1)

			Convey("Then the match completes with both raw scores", func() {
				So(err, ShouldBeNil)
				So(report.Match.Status, ShouldEqual, model.MatchCompleted)
				So(report.Match.TeamAScore, ShouldEqual, 3)
				So(report.Match.TeamBScore, ShouldEqual, 1)
				So(report.Outcome.Draw, ShouldBeFalse)
			})

			Convey("Then winners gain a win and 3 points, losers a loss", func() {
				So(err, ShouldBeNil)
				players, err := engine.Players(ctx)
				So(err, ShouldBeNil)
				for _, p := range players {
					if _, won := teamA[p.ID]; won {
						So(p.Wins, ShouldEqual, 1)
						So(p.Losses, ShouldEqual, 0)
						So(p.Score, ShouldEqual, 3)
					} else {
						So(p.Wins, ShouldEqual, 0)
						So(p.Losses, ShouldEqual, 1)
						So(p.Score, ShouldEqual, 0)
					}
				}
			})

			Convey("Then reporting again is rejected without double counting", func() {
				So(err, ShouldBeNil)
				_, err := engine.ReportScore(ctx, match.ID, 5, 0)
				So(err, ShouldWrap, app.ErrMatchAlreadyScored)

				players, err := engine.Players(ctx)
				So(err, ShouldBeNil)
				for _, p := range players {
					So(p.Wins+p.Losses, ShouldEqual, 1)
				}
			})
		})

		Convey("When the match draws 2-2", func() {
			report, err := engine.ReportScore(ctx, match.ID, 2, 2)

			Convey("Then everyone gains a point and no wins or losses", func() {
				So(err, ShouldBeNil)
				So(report.Outcome.Draw, ShouldBeTrue)
				So(report.Match.TeamAScore, ShouldEqual, 2)
				So(report.Match.TeamBScore, ShouldEqual, 2)

				players, err := engine.Players(ctx)
				So(err, ShouldBeNil)
				for _, p := range players {
					So(p.Wins, ShouldEqual, 0)
					So(p.Losses, ShouldEqual, 0)
					So(p.Score, ShouldEqual, 1)
				}
			})
		})

		Convey("When reporting an unknown match", func() {
			_, err := engine.ReportScore(ctx, "nope", 1, 0)

			Convey("Then it reports not found", func() {
				So(err, ShouldWrap, app.ErrMatchNotFound)
			})
		})
	})
}

func TestCreateDoublesMatchesPersistenceFailure(t *testing.T) {
	Convey("Given a store that fails after persisting one match", t, func() {
		ctx := context.Background()
		backing := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, backing, 3)
		addPlayers(ctx, t, engine, 1, 2, 3, 4, 5, 1, 2, 3)

		faulty := &faultyStore{Store: backing, failPutPrefix: "MATCH#", putBudget: 1}
		flaky := app.New(faulty, engine.ID(), app.WithRand(rand.New(rand.NewSource(7)))) //nolint:gosec // deterministic test seed

		Convey("When pairing eight players into two matches", func() {
			result, err := flaky.CreateDoublesMatches(ctx)

			Convey("Then the surviving match is kept and the failure reported", func() {
				So(err, ShouldBeNil)
				So(result.Matches, ShouldHaveLength, 1)
				So(result.Failures, ShouldHaveLength, 1)
				So(result.Failures[0], ShouldStartWith, "(D) ")

				matches, err := engine.Matches(ctx)
				So(err, ShouldBeNil)
				So(matches, ShouldHaveLength, 1)
				So(matches[0].ID, ShouldEqual, result.Matches[0].ID)
			})
		})
	})
}

func TestReportScorePartialFailure(t *testing.T) {
	Convey("Given a pending match and a store that rejects player updates", t, func() {
		ctx := context.Background()
		backing := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, backing, 3)
		addPlayers(ctx, t, engine, 2, 3, 4, 5)

		result, err := engine.CreateDoublesMatches(ctx)
		So(err, ShouldBeNil)
		So(result.Matches, ShouldHaveLength, 1)
		match := result.Matches[0]

		faulty := &faultyStore{Store: backing, failUpdatePrefix: "PLAYER#"}
		flaky := app.New(faulty, engine.ID())

		Convey("When reporting the score", func() {
			_, err := flaky.ReportScore(ctx, match.ID, 3, 1)

			Convey("Then the failure is surfaced without rolling back the match", func() {
				So(err, ShouldWrap, errStoreDown)
				So(err.Error(), ShouldContainSubstring, "apply player stats")

				matches, err := engine.Matches(ctx)
				So(err, ShouldBeNil)
				So(matches[0].Status, ShouldEqual, model.MatchCompleted)
				So(matches[0].TeamAScore, ShouldEqual, 3)
				So(matches[0].TeamBScore, ShouldEqual, 1)

				players, err := engine.Players(ctx)
				So(err, ShouldBeNil)
				for _, p := range players {
					So(p.Wins+p.Losses+p.Score, ShouldEqual, 0)
				}
			})

			Convey("Then a second report is rejected as already scored", func() {
				So(err, ShouldNotBeNil)
				_, err := engine.ReportScore(ctx, match.ID, 3, 1)
				So(err, ShouldWrap, app.ErrMatchAlreadyScored)
			})
		})
	})
}

func TestRematchDetection(t *testing.T) {
	Convey("Given four players who already played to completion", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 3)
		addPlayers(ctx, t, engine, 2, 3, 4, 5)

		first, err := engine.CreateDoublesMatches(ctx)
		So(err, ShouldBeNil)
		So(first.Matches, ShouldHaveLength, 1)
		So(first.Matches[0].IsRematch, ShouldBeFalse)

		_, err = engine.ReportScore(ctx, first.Matches[0].ID, 4, 2)
		So(err, ShouldBeNil)

		Convey("When the same four players are paired again", func() {
			second, err := engine.CreateDoublesMatches(ctx)

			Convey("Then the new match carries the rematch flag", func() {
				So(err, ShouldBeNil)
				So(second.Matches, ShouldHaveLength, 1)
				So(second.Matches[0].IsRematch, ShouldBeTrue)
			})

			Convey("Then the first match record stays unflagged", func() {
				So(err, ShouldBeNil)
				matches, err := engine.Matches(ctx)
				So(err, ShouldBeNil)
				for _, m := range matches {
					if m.ID == first.Matches[0].ID {
						So(m.IsRematch, ShouldBeFalse)
					}
				}
			})
		})
	})
}

func TestStandings(t *testing.T) {
	Convey("Given a tournament mid-flight", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		engine := newTestEngine(ctx, t, store, 2)
		addPlayers(ctx, t, engine, 1, 2, 3, 4, 5, 1, 2, 3)

		result, err := engine.CreateDoublesMatches(ctx)
		So(err, ShouldBeNil)
		So(result.Matches, ShouldHaveLength, 2)
		_, err = engine.StartMatch(ctx, result.Matches[0].ID)
		So(err, ShouldBeNil)

		Convey("When building standings", func() {
			snapshot, err := engine.Standings(ctx)

			Convey("Then the snapshot reflects live state", func() {
				So(err, ShouldBeNil)
				So(snapshot.TournamentID, ShouldEqual, engine.ID())
				So(snapshot.MaxCourts, ShouldEqual, 2)
				So(snapshot.Players, ShouldHaveLength, 8)
				So(snapshot.Active, ShouldHaveLength, 1)
				So(snapshot.Pending, ShouldHaveLength, 1)
			})

			Convey("Then the rendered text shows court usage", func() {
				So(err, ShouldBeNil)
				So(snapshot.Render(), ShouldContainSubstring, "Courts in use: 1/2")
			})
		})
	})
}
