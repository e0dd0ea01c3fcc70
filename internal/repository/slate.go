package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/models"
)

// SlateStore resolves the candidate universe from Postgres: every active
// prediction the selected models have published for a slate date.
type SlateStore struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewSlateStore(pg PgPool, logger *zap.SugaredLogger) *SlateStore {
	return &SlateStore{pg: pg, logger: logger}
}

// Slate returns the active prediction rows for a date across the selected
// models, joined with the player and upcoming-game context the engine needs.
// Individual malformed rows are skipped; only the query itself failing
// surfaces as an error (and aborts the scan as a retryable failure).
func (s *SlateStore) Slate(ctx context.Context, date time.Time, modelIDs []string) ([]models.SlateCandidate, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT
			pr.player_id, p.name, p.position, pr.model_id, pr.stat_name,
			pr.predicted, COALESCE(pr.line, 0), COALESCE(pr.usage_rate, 0),
			pr.confidence,
			g.id, g.game_date, g.season, g.game_type,
			CASE WHEN g.home_team_id = p.team_id THEN g.away_team_id ELSE g.home_team_id END,
			CASE WHEN g.home_team_id = p.team_id THEN at.abbr ELSE ht.abbr END,
			(g.home_team_id = p.team_id),
			p.team_id
		FROM predictions pr
		JOIN players p ON p.id = pr.player_id
		JOIN games g ON g.id = pr.game_id
		JOIN teams ht ON ht.id = g.home_team_id
		JOIN teams at ON at.id = g.away_team_id
		WHERE g.game_date = $1
		  AND pr.model_id = ANY($2)
		  AND pr.active = true
		ORDER BY pr.player_id, pr.stat_name, pr.model_id
	`, date, modelIDs)
	if err != nil {
		return nil, fmt.Errorf("query slate: %w", err)
	}
	defer rows.Close()

	candidates := []models.SlateCandidate{}
	for rows.Next() {
		var (
			c       models.SlateCandidate
			confRaw []byte
			isHome  bool
		)
		if err := rows.Scan(
			&c.PlayerID, &c.PlayerName, &c.Position, &c.ModelID, &c.StatName,
			&c.Predicted, &c.Line, &c.UsageRate,
			&confRaw,
			&c.Game.GameID, &c.Game.Date, &c.Game.Season, &c.Game.GameType,
			&c.Game.OpponentID, &c.Game.OpponentAbbr,
			&isHome,
			&c.Game.TeamID,
		); err != nil {
			s.logger.Warnw("skipping malformed slate row", "error", err)
			continue
		}
		c.Game.IsHome = isHome
		c.Game.HomeSet = true

		if len(confRaw) > 0 {
			var conf models.Confidence
			if err := json.Unmarshal(confRaw, &conf); err == nil {
				c.Confidence = &conf
			}
		}
		if !models.IsValidStat(c.StatName) {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}
