package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/models"
)

// starPointsPerGame is the season scoring floor that marks a teammate as a
// "star" for the absence aggregator. The determination is intentionally
// blunt; the upstream roster feed decides who is actually out.
const starPointsPerGame = 20.0

// chStatColumns maps statistic keys to player_games columns. Only keys in
// this table can be aggregated league-wide; anything else is a caller bug.
var chStatColumns = map[string]string{
	models.StatPoints:            "points",
	models.StatRebounds:          "rebounds",
	models.StatAssists:           "assists",
	models.StatSteals:            "steals",
	models.StatBlocks:            "blocks",
	models.StatTurnovers:         "turnovers",
	models.StatThreePointersMade: "threes_made",
}

// LeagueStore answers league-wide aggregate queries (defense ranks, pace,
// rest) from ClickHouse and roster/injury state from Postgres.
type LeagueStore struct {
	ch     driver.Conn
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewLeagueStore(ch driver.Conn, pg PgPool, logger *zap.SugaredLogger) *LeagueStore {
	return &LeagueStore{ch: ch, pg: pg, logger: logger}
}

// DefenseVsPosition returns stat allowed per game to one position, keyed by
// defending team id.
func (s *LeagueStore) DefenseVsPosition(ctx context.Context, statName, position, season string) (map[string]float64, error) {
	col, ok := chStatColumns[statName]
	if !ok {
		return nil, fmt.Errorf("unknown stat key: %s", statName)
	}

	rows, err := s.ch.Query(ctx, fmt.Sprintf(`
		SELECT opponent_team_id, sum(%s) / uniq(game_id) AS allowed
		FROM courtsight.player_games
		WHERE season = ? AND position = ? AND minutes > 0
		GROUP BY opponent_team_id
	`, col), season, position)
	if err != nil {
		return nil, fmt.Errorf("defense vs position: %w", err)
	}
	defer rows.Close()
	return scanAllowed(rows)
}

// TeamDefense returns stat allowed per game overall, keyed by team id.
func (s *LeagueStore) TeamDefense(ctx context.Context, statName, season string) (map[string]float64, error) {
	col, ok := chStatColumns[statName]
	if !ok {
		return nil, fmt.Errorf("unknown stat key: %s", statName)
	}

	rows, err := s.ch.Query(ctx, fmt.Sprintf(`
		SELECT opponent_team_id, sum(%s) / uniq(game_id) AS allowed
		FROM courtsight.player_games
		WHERE season = ? AND minutes > 0
		GROUP BY opponent_team_id
	`, col), season)
	if err != nil {
		return nil, fmt.Errorf("team defense: %w", err)
	}
	defer rows.Close()
	return scanAllowed(rows)
}

func scanAllowed(rows driver.Rows) (map[string]float64, error) {
	allowed := make(map[string]float64)
	for rows.Next() {
		var teamID string
		var perGame float64
		if err := rows.Scan(&teamID, &perGame); err != nil {
			continue
		}
		allowed[teamID] = perGame
	}
	return allowed, rows.Err()
}

// TeamPace returns a team's average possessions per 48 for the season.
func (s *LeagueStore) TeamPace(ctx context.Context, teamID, season string) (float64, error) {
	var pace float64
	err := s.ch.QueryRow(ctx, `
		SELECT avg(pace)
		FROM courtsight.team_games
		WHERE team_id = ? AND season = ?
	`, teamID, season).Scan(&pace)
	if err != nil {
		return 0, fmt.Errorf("team pace for %s: %w", teamID, err)
	}
	if pace <= 0 {
		return 0, fmt.Errorf("no pace data for team %s in %s", teamID, season)
	}
	return pace, nil
}

// LeaguePace returns the league-wide average possessions per 48.
func (s *LeagueStore) LeaguePace(ctx context.Context, season string) (float64, error) {
	var pace float64
	err := s.ch.QueryRow(ctx, `
		SELECT avg(pace)
		FROM courtsight.team_games
		WHERE season = ?
	`, season).Scan(&pace)
	if err != nil {
		return 0, fmt.Errorf("league pace: %w", err)
	}
	if pace <= 0 {
		return 0, fmt.Errorf("no league pace data for season %s", season)
	}
	return pace, nil
}

// LastGameDate resolves a team's most recent completed game strictly before
// asOf. ok is false when the team has no prior game on record.
func (s *LeagueStore) LastGameDate(ctx context.Context, teamID string, asOf time.Time) (time.Time, bool, error) {
	var last time.Time
	var count uint64
	err := s.ch.QueryRow(ctx, `
		SELECT max(game_date), count()
		FROM courtsight.team_games
		WHERE team_id = ? AND game_date < ?
	`, teamID, asOf).Scan(&last, &count)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last game for %s: %w", teamID, err)
	}
	if count == 0 {
		return time.Time{}, false, nil
	}
	return last, true, nil
}

// AbsentStars lists teammates of a player who clear the star scoring floor
// and are currently ruled out, along with the games they already missed this
// season. Roster and injury status come from Postgres; the missed-game set
// from ClickHouse.
func (s *LeagueStore) AbsentStars(ctx context.Context, playerID, teamID, season string) ([]models.StarAbsence, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT p.id, p.name
		FROM players p
		JOIN season_averages sa ON sa.player_id = p.id AND sa.season = $3
		JOIN injuries i ON i.player_id = p.id
		WHERE p.team_id = $2
		  AND p.id != $1
		  AND sa.points_per_game >= $4
		  AND i.status = 'out'
	`, playerID, teamID, season, starPointsPerGame)
	if err != nil {
		return nil, fmt.Errorf("absent stars: %w", err)
	}
	defer rows.Close()

	type star struct{ id, name string }
	var stars []star
	for rows.Next() {
		var st star
		if err := rows.Scan(&st.id, &st.name); err != nil {
			continue
		}
		stars = append(stars, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(stars) == 0 {
		return nil, nil
	}

	out := make([]models.StarAbsence, 0, len(stars))
	for _, st := range stars {
		missed, err := s.missedGames(ctx, st.id, teamID, season)
		if err != nil {
			s.logger.Debugw("missed game lookup failed", "star", st.id, "error", err)
			continue
		}
		out = append(out, models.StarAbsence{PlayerName: st.name, MissedGameIDs: missed})
	}
	return out, nil
}

// missedGames returns the team's game ids the given player has no played row
// for this season.
func (s *LeagueStore) missedGames(ctx context.Context, playerID, teamID, season string) ([]string, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT DISTINCT game_id
		FROM courtsight.player_games
		WHERE team_id = ? AND season = ?
		  AND game_id NOT IN (
			SELECT game_id FROM courtsight.player_games
			WHERE player_id = ? AND season = ? AND minutes > 0
		  )
	`, teamID, season, playerID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
