package app

import (
	"github.com/okian/matchpoint/internal/adapters/repository"
	"github.com/okian/matchpoint/internal/domain/model"
)

// Persisted single-table layout: one partition per tournament, items
// disambiguated by a type-tagged sort key.
const (
	tournamentPKPrefix = "TOURNAMENT#"
	configSortKey      = "CONFIG"
	playerType         = "PLAYER"
	matchType          = "MATCH"
)

func tournamentPK(id string) string { return tournamentPKPrefix + id }
func playerSK(id string) string     { return playerType + "#" + id }
func matchSK(id string) string      { return matchType + "#" + id }

func playerItem(pk string, p model.Player) repository.Item {
	return repository.Item{
		repository.AttrPK: pk,
		repository.AttrSK: playerSK(p.ID),
		"player_id":       p.ID,
		"name":            p.Name,
		"level":           p.Level,
		"wins":            p.Wins,
		"losses":          p.Losses,
		"score":           p.Score,
	}
}

func playerFromItem(it repository.Item) model.Player {
	return model.Player{
		ID:     itemString(it, "player_id"),
		Name:   itemString(it, "name"),
		Level:  itemInt(it, "level"),
		Wins:   itemInt(it, "wins"),
		Losses: itemInt(it, "losses"),
		Score:  itemInt(it, "score"),
	}
}

func matchItem(pk string, m model.Match) repository.Item {
	return repository.Item{
		repository.AttrPK: pk,
		repository.AttrSK: matchSK(m.ID),
		"match_id":        m.ID,
		"match_type":      "DOUBLES",
		"status":          string(m.Status),
		"round_number":    m.Round,
		"is_rematch":      m.IsRematch,
		"tA_p1_id":        m.TeamAP1.ID,
		"tA_p1_name":      m.TeamAP1.Name,
		"tA_p2_id":        m.TeamAP2.ID,
		"tA_p2_name":      m.TeamAP2.Name,
		"tB_p1_id":        m.TeamBP1.ID,
		"tB_p1_name":      m.TeamBP1.Name,
		"tB_p2_id":        m.TeamBP2.ID,
		"tB_p2_name":      m.TeamBP2.Name,
	}
}

func matchFromItem(it repository.Item) model.Match {
	return model.Match{
		ID:         itemString(it, "match_id"),
		Round:      itemInt(it, "round_number"),
		Status:     model.MatchStatus(itemString(it, "status")),
		IsRematch:  itemBool(it, "is_rematch"),
		TeamAP1:    model.PlayerRef{ID: itemString(it, "tA_p1_id"), Name: itemString(it, "tA_p1_name")},
		TeamAP2:    model.PlayerRef{ID: itemString(it, "tA_p2_id"), Name: itemString(it, "tA_p2_name")},
		TeamBP1:    model.PlayerRef{ID: itemString(it, "tB_p1_id"), Name: itemString(it, "tB_p1_name")},
		TeamBP2:    model.PlayerRef{ID: itemString(it, "tB_p2_id"), Name: itemString(it, "tB_p2_name")},
		TeamAScore: itemInt(it, "teamA_score"),
		TeamBScore: itemInt(it, "teamB_score"),
	}
}

func configItem(pk, name string, maxCourts, round int, mode model.PairingMode) repository.Item {
	return repository.Item{
		repository.AttrPK: pk,
		repository.AttrSK: configSortKey,
		"tournament_name": name,
		"max_courts":      maxCourts,
		"current_round":   round,
		"pairing_mode":    string(mode),
	}
}

// configFromItem decodes the CONFIG record, falling back to defaults for
// missing fields so a tournament never observes an invalid configuration.
func configFromItem(it repository.Item) model.TournamentConfig {
	cfg := model.TournamentConfig{
		Name:         itemString(it, "tournament_name"),
		MaxCourts:    defaultMaxCourts,
		CurrentRound: defaultRound,
		PairingMode:  model.PairingBalanced,
	}
	if _, ok := it["max_courts"]; ok {
		cfg.MaxCourts = itemInt(it, "max_courts")
	}
	if _, ok := it["current_round"]; ok {
		cfg.CurrentRound = itemInt(it, "current_round")
	}
	if mode, err := model.ParsePairingMode(itemString(it, "pairing_mode")); err == nil {
		cfg.PairingMode = mode
	}
	return cfg
}

// Item value accessors. Numeric attributes come back as int from the
// memory store and float64 from DynamoDB decoding.

func itemString(it repository.Item, key string) string {
	s, _ := it[key].(string)
	return s
}

func itemInt(it repository.Item, key string) int {
	switch n := it[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func itemBool(it repository.Item, key string) bool {
	b, _ := it[key].(bool)
	return b
}
