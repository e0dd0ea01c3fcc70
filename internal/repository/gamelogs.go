package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/models"
)

// GameLogStore fetches historical per-game stat rows from ClickHouse. A
// circuit breaker wraps every query: when the store is struggling, fetches
// fail fast and the engine degrades the affected candidates to
// insufficient-data instead of piling load on a sick database.
type GameLogStore struct {
	ch      driver.Conn
	breaker *gobreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewGameLogStore(ch driver.Conn, logger *zap.SugaredLogger) *GameLogStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "clickhouse-gamelogs",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &GameLogStore{ch: ch, breaker: breaker, logger: logger}
}

// GameLogs returns a player's finalized game rows strictly before asOf,
// newest first, at most limit rows.
func (s *GameLogStore) GameLogs(ctx context.Context, playerID string, asOf time.Time, limit int) ([]models.HistoricalGame, error) {
	if limit <= 0 {
		limit = 50
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.queryGameLogs(ctx, playerID, asOf, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("game logs for %s: %w", playerID, err)
	}
	return out.([]models.HistoricalGame), nil
}

func (s *GameLogStore) queryGameLogs(ctx context.Context, playerID string, asOf time.Time, limit int) ([]models.HistoricalGame, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT
			game_id, game_date, opponent_abbr, opponent_team_id,
			is_home, season, game_type, team_id, minutes,
			points, rebounds, assists, steals, blocks, turnovers, threes_made,
			result, score
		FROM courtsight.player_games
		WHERE player_id = ? AND game_date < ?
		ORDER BY game_date DESC
		LIMIT ?
	`, playerID, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := []models.HistoricalGame{}
	for rows.Next() {
		var (
			g                                    models.HistoricalGame
			isHome                               uint8
			pts, reb, ast, stl, blk, tov, threes float64
		)
		if err := rows.Scan(
			&g.GameID, &g.Date, &g.OpponentAbbr, &g.OpponentTeamID,
			&isHome, &g.Season, &g.GameType, &g.TeamID, &g.MinutesPlayed,
			&pts, &reb, &ast, &stl, &blk, &tov, &threes,
			&g.Result, &g.Score,
		); err != nil {
			s.logger.Warnw("skipping malformed game row", "player", playerID, "error", err)
			continue
		}
		g.IsHome = isHome == 1
		g.Stats = map[string]float64{
			models.StatPoints:            pts,
			models.StatRebounds:          reb,
			models.StatAssists:           ast,
			models.StatSteals:            stl,
			models.StatBlocks:            blk,
			models.StatTurnovers:         tov,
			models.StatThreePointersMade: threes,
		}
		games = append(games, g)
	}
	return games, rows.Err()
}
