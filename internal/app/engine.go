// Package app provides the per-tournament engine facade composing the
// pairing, lifecycle, scoring, and standings logic over the item store.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/matchpoint/internal/adapters/repository"
	"github.com/okian/matchpoint/internal/domain/model"
	"github.com/okian/matchpoint/internal/domain/pairing"
	"github.com/okian/matchpoint/internal/domain/scoring"
	"github.com/okian/matchpoint/internal/domain/standings"
	"github.com/okian/matchpoint/pkg/logger"
	"github.com/okian/matchpoint/pkg/metrics"
)

// Tournament configuration defaults.
const (
	defaultMaxCourts = 3
	defaultRound     = 1
)

// Engine is the per-tournament facade. It holds no tournament state
// between calls; everything lives in the store.
type Engine struct {
	store repository.Store
	id    string
	pk    string
	rng   *rand.Rand
	log   logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRand sets the random source used for pairing, allowing
// deterministic output in tests.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs an Engine for one tournament.
func New(store repository.Store, tournamentID string, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		id:    tournamentID,
		pk:    tournamentPK(tournamentID),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // pairing shuffle, not security
		log:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ID returns the tournament id this engine operates on.
func (e *Engine) ID() string { return e.id }

// CreateTournament seeds a new tournament's CONFIG record and returns
// its generated id.
func CreateTournament(ctx context.Context, store repository.Store, name string, totalCourts int) (string, error) {
	if totalCourts < 0 {
		return "", ErrInvalidCourtCount
	}
	id := "T_" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if name == "" {
		name = "Tournament " + id
	}
	it := configItem(tournamentPK(id), name, totalCourts, defaultRound, model.PairingBalanced)
	if err := store.Put(ctx, it); err != nil {
		return "", fmt.Errorf("create tournament: %w", err)
	}
	return id, nil
}

// Config fetches the tournament configuration, applying defaults for a
// missing record or missing fields.
func (e *Engine) Config(ctx context.Context) (model.TournamentConfig, error) {
	it, err := e.store.Get(ctx, repository.Key{PK: e.pk, SK: configSortKey})
	if errors.Is(err, repository.ErrNotFound) {
		return configFromItem(repository.Item{}), nil
	}
	if err != nil {
		return model.TournamentConfig{}, fmt.Errorf("fetch config: %w", err)
	}
	return configFromItem(it), nil
}

// SetMaxCourts updates the court capacity. Capacity zero is allowed and
// simply admits no matches.
func (e *Engine) SetMaxCourts(ctx context.Context, totalCourts int) error {
	if totalCourts < 0 {
		return ErrInvalidCourtCount
	}
	return e.updateConfig(ctx, "SET max_courts = :c", map[string]any{":c": totalCourts})
}

// SetCurrentRound updates the round stamped onto newly created matches.
func (e *Engine) SetCurrentRound(ctx context.Context, round int) error {
	if round < defaultRound {
		return ErrInvalidRound
	}
	return e.updateConfig(ctx, "SET current_round = :r", map[string]any{":r": round})
}

// SetPairingMode updates the pairing policy.
func (e *Engine) SetPairingMode(ctx context.Context, mode string) (model.PairingMode, error) {
	parsed, err := model.ParsePairingMode(mode)
	if err != nil {
		return "", err
	}
	if err := e.updateConfig(ctx, "SET pairing_mode = :m", map[string]any{":m": string(parsed)}); err != nil {
		return "", err
	}
	return parsed, nil
}

func (e *Engine) updateConfig(ctx context.Context, expr string, values map[string]any) error {
	key := repository.Key{PK: e.pk, SK: configSortKey}
	if err := e.store.Update(ctx, key, expr, nil, values); err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	return nil
}

// AddPlayer registers a player with zeroed cumulative stats.
func (e *Engine) AddPlayer(ctx context.Context, name string, level int) (model.Player, error) {
	if err := model.ValidateLevel(level); err != nil {
		return model.Player{}, err
	}
	p := model.Player{
		ID:    uuid.NewString(),
		Name:  name,
		Level: level,
	}
	if err := e.store.Put(ctx, playerItem(e.pk, p)); err != nil {
		return model.Player{}, fmt.Errorf("add player: %w", err)
	}
	metrics.RecordPlayerRegistered()
	e.log.Info(ctx, "player added",
		logger.String("tournament", e.id),
		logger.String("player", p.ID),
		logger.Int("level", level),
	)
	return p, nil
}

// Players returns all registered players ranked by score then wins.
func (e *Engine) Players(ctx context.Context) ([]model.Player, error) {
	items, err := e.store.QueryByTypePrefix(ctx, e.pk, playerType)
	if err != nil {
		return nil, fmt.Errorf("fetch players: %w", err)
	}
	players := make([]model.Player, 0, len(items))
	for _, it := range items {
		players = append(players, playerFromItem(it))
	}
	return standings.RankPlayers(players), nil
}

// Matches returns all matches ordered by round then id.
func (e *Engine) Matches(ctx context.Context) ([]model.Match, error) {
	items, err := e.store.QueryByTypePrefix(ctx, e.pk, matchType)
	if err != nil {
		return nil, fmt.Errorf("fetch matches: %w", err)
	}
	matches := make([]model.Match, 0, len(items))
	for _, it := range items {
		matches = append(matches, matchFromItem(it))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Round != matches[j].Round {
			return matches[i].Round < matches[j].Round
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

func filterByStatus(matches []model.Match, status model.MatchStatus) []model.Match {
	var out []model.Match
	for _, m := range matches {
		if m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

// availablePlayers returns players not referenced by any PENDING or
// ACTIVE match, along with the full match list for reuse.
func (e *Engine) availablePlayers(ctx context.Context) ([]model.Player, []model.Match, error) {
	players, err := e.Players(ctx)
	if err != nil {
		return nil, nil, err
	}
	matches, err := e.Matches(ctx)
	if err != nil {
		return nil, nil, err
	}

	busy := make(map[string]struct{})
	for _, m := range matches {
		if m.Status != model.MatchPending && m.Status != model.MatchActive {
			continue
		}
		for _, pid := range m.PlayerIDs() {
			busy[pid] = struct{}{}
		}
	}

	var available []model.Player
	for _, p := range players {
		if _, ok := busy[p.ID]; !ok {
			available = append(available, p)
		}
	}
	return available, matches, nil
}

// CreateMatchesResult reports one pairing pass: the matches created, the
// bye players left out, and any per-match persistence failures.
type CreateMatchesResult struct {
	Mode     model.PairingMode
	Round    int
	Matches  []model.Match
	Byes     []string
	Failures []string
}

// CreateDoublesMatches partitions currently-available players into
// PENDING matches under the configured pairing mode. A persistence
// failure for one match is reported but does not roll back matches
// already created.
func (e *Engine) CreateDoublesMatches(ctx context.Context) (CreateMatchesResult, error) {
	mu := tournamentLocks.get(e.id)
	mu.Lock()
	defer mu.Unlock()

	cfg, err := e.Config(ctx)
	if err != nil {
		return CreateMatchesResult{}, err
	}
	available, matches, err := e.availablePlayers(ctx)
	if err != nil {
		return CreateMatchesResult{}, err
	}

	former := pairing.NewFormer(pairing.WithRand(e.rng))
	formed, err := former.Form(available, cfg.PairingMode, pairing.HistoryFromMatches(matches))
	if err != nil {
		return CreateMatchesResult{}, err
	}

	result := CreateMatchesResult{Mode: cfg.PairingMode, Round: cfg.CurrentRound}
	for _, p := range formed.Byes {
		result.Byes = append(result.Byes, p.Name)
	}

	for _, f := range formed.Foursomes {
		m, err := model.NewMatch(uuid.NewString(), cfg.CurrentRound, f.IsRematch,
			ref(f.TeamA.P1), ref(f.TeamA.P2), ref(f.TeamB.P1), ref(f.TeamB.P2))
		if err != nil {
			return CreateMatchesResult{}, err
		}
		if err := e.store.Put(ctx, matchItem(e.pk, m)); err != nil {
			e.log.Error(ctx, "persist match failed",
				logger.String("tournament", e.id),
				logger.String("match", m.ID),
				logger.Error(err),
			)
			result.Failures = append(result.Failures, m.DisplayName())
			continue
		}
		metrics.RecordMatchCreated()
		if m.IsRematch {
			metrics.RecordRematchWarning()
		}
		result.Matches = append(result.Matches, m)
	}

	e.log.Info(ctx, "matches created",
		logger.String("tournament", e.id),
		logger.Int("count", len(result.Matches)),
		logger.Int("byes", len(result.Byes)),
	)
	return result, nil
}

func ref(p model.Player) model.PlayerRef {
	return model.PlayerRef{ID: p.ID, Name: p.Name}
}

// StartMatch admits a PENDING match onto a court. Courts are a counting
// semaphore over ACTIVE matches; there is no court identity.
func (e *Engine) StartMatch(ctx context.Context, matchID string) (model.Match, error) {
	mu := tournamentLocks.get(e.id)
	mu.Lock()
	defer mu.Unlock()

	cfg, err := e.Config(ctx)
	if err != nil {
		return model.Match{}, err
	}
	matches, err := e.Matches(ctx)
	if err != nil {
		return model.Match{}, err
	}
	active := filterByStatus(matches, model.MatchActive)
	if len(active) >= cfg.MaxCourts {
		return model.Match{}, &CourtsFullError{MaxCourts: cfg.MaxCourts}
	}

	m, err := e.getMatch(ctx, matchID)
	if err != nil {
		return model.Match{}, err
	}
	if m.Status != model.MatchPending {
		return model.Match{}, fmt.Errorf("match %s: %w", matchID, ErrMatchNotPending)
	}

	key := repository.Key{PK: e.pk, SK: matchSK(matchID)}
	err = e.store.Update(ctx, key, "SET #st = :s",
		map[string]string{"#st": "status"},
		map[string]any{":s": string(model.MatchActive)},
	)
	if err != nil {
		return model.Match{}, fmt.Errorf("start match: %w", err)
	}

	metrics.RecordMatchStarted()
	metrics.UpdateCourtsInUse(e.id, len(active)+1)
	e.log.Info(ctx, "match started",
		logger.String("tournament", e.id),
		logger.String("match", matchID),
	)
	m.Status = model.MatchActive
	return m, nil
}

func (e *Engine) getMatch(ctx context.Context, matchID string) (model.Match, error) {
	it, err := e.store.Get(ctx, repository.Key{PK: e.pk, SK: matchSK(matchID)})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Match{}, fmt.Errorf("match %s: %w", matchID, ErrMatchNotFound)
	}
	if err != nil {
		return model.Match{}, fmt.Errorf("fetch match: %w", err)
	}
	return matchFromItem(it), nil
}

// ReportResult is the outcome of a completed score report.
type ReportResult struct {
	Match   model.Match
	Outcome scoring.Outcome
}

// ReportScore finalizes a match: stores both raw scores, transitions it
// to COMPLETED, and applies each player's stat increments. The match
// update and the four player updates are independent writes; a failure
// partway through is surfaced but not rolled back.
func (e *Engine) ReportScore(ctx context.Context, matchID string, scoreA, scoreB int) (ReportResult, error) {
	mu := tournamentLocks.get(e.id)
	mu.Lock()
	defer mu.Unlock()

	m, err := e.getMatch(ctx, matchID)
	if err != nil {
		return ReportResult{}, err
	}
	if m.Status == model.MatchCompleted {
		return ReportResult{}, fmt.Errorf("match %s: %w", matchID, ErrMatchAlreadyScored)
	}

	outcome := scoring.Decide(scoreA, scoreB)

	matchKey := repository.Key{PK: e.pk, SK: matchSK(matchID)}
	err = e.store.Update(ctx, matchKey,
		"SET #st = :s, teamA_score = :sA, teamB_score = :sB",
		map[string]string{"#st": "status"},
		map[string]any{
			":s":  string(model.MatchCompleted),
			":sA": scoreA,
			":sB": scoreB,
		},
	)
	if err != nil {
		return ReportResult{}, fmt.Errorf("complete match: %w", err)
	}

	var applyErrs []error
	for _, d := range scoring.Deltas(m, outcome) {
		key := repository.Key{PK: e.pk, SK: playerSK(d.PlayerID)}
		err := e.store.Update(ctx, key, "ADD wins :w, losses :l, score :s", nil, map[string]any{
			":w": d.WinInc,
			":l": d.LossInc,
			":s": d.ScoreInc,
		})
		if err != nil {
			e.log.Error(ctx, "apply player stats failed",
				logger.String("tournament", e.id),
				logger.String("player", d.PlayerID),
				logger.Error(err),
			)
			applyErrs = append(applyErrs, fmt.Errorf("player %s: %w", d.PlayerID, err))
		}
	}
	if len(applyErrs) > 0 {
		return ReportResult{}, fmt.Errorf("apply player stats: %w", errors.Join(applyErrs...))
	}

	metrics.RecordMatchCompleted()
	if outcome.Draw {
		metrics.RecordDraw()
	}
	if matches, err := e.Matches(ctx); err == nil {
		metrics.UpdateCourtsInUse(e.id, len(filterByStatus(matches, model.MatchActive)))
	}
	e.log.Info(ctx, "score reported",
		logger.String("tournament", e.id),
		logger.String("match", matchID),
		logger.Int("score_a", scoreA),
		logger.Int("score_b", scoreB),
		logger.Bool("draw", outcome.Draw),
	)

	m.Status = model.MatchCompleted
	m.TeamAScore = scoreA
	m.TeamBScore = scoreB
	return ReportResult{Match: m, Outcome: outcome}, nil
}

// Standings assembles the ranked snapshot of the tournament.
func (e *Engine) Standings(ctx context.Context) (standings.Snapshot, error) {
	cfg, err := e.Config(ctx)
	if err != nil {
		return standings.Snapshot{}, err
	}
	players, err := e.Players(ctx)
	if err != nil {
		return standings.Snapshot{}, err
	}
	matches, err := e.Matches(ctx)
	if err != nil {
		return standings.Snapshot{}, err
	}
	return standings.Snapshot{
		TournamentID: e.id,
		MaxCourts:    cfg.MaxCourts,
		CurrentRound: cfg.CurrentRound,
		PairingMode:  cfg.PairingMode,
		Players:      players,
		Active:       filterByStatus(matches, model.MatchActive),
		Pending:      filterByStatus(matches, model.MatchPending),
	}, nil
}
