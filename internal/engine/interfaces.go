package engine

import (
	"context"
	"time"

	"github.com/courtsight/picks-api/internal/models"
)

// GameLogSource answers point queries for a player's historical game rows,
// newest-first, bounded by limit.
type GameLogSource interface {
	GameLogs(ctx context.Context, playerID string, asOf time.Time, limit int) ([]models.HistoricalGame, error)
}

// SlateSource resolves the candidate universe: every active prediction for a
// date across the selected models.
type SlateSource interface {
	Slate(ctx context.Context, date time.Time, modelIDs []string) ([]models.SlateCandidate, error)
}

// LeagueSource answers the league-wide queries the signal aggregators need.
type LeagueSource interface {
	// DefenseVsPosition returns stat allowed per game to a position, keyed by
	// team id, for every team with data.
	DefenseVsPosition(ctx context.Context, statName, position, season string) (map[string]float64, error)
	// TeamDefense returns stat allowed per game overall, keyed by team id.
	TeamDefense(ctx context.Context, statName, season string) (map[string]float64, error)
	// TeamPace returns possessions per 48 for one team, and LeaguePace the
	// league-wide average.
	TeamPace(ctx context.Context, teamID, season string) (float64, error)
	LeaguePace(ctx context.Context, season string) (float64, error)
	// LastGameDate resolves a team's most recent completed game strictly
	// before asOf. Returns ok=false when no prior game exists.
	LastGameDate(ctx context.Context, teamID string, asOf time.Time) (time.Time, bool, error)
	// AbsentStars lists currently-out teammates of a player who meet the
	// external star threshold (season scoring), with the game ids they missed.
	AbsentStars(ctx context.Context, playerID, teamID, season string) ([]models.StarAbsence, error)
}

// ProgressFunc receives stage names and 0-100 percentages during a scan.
type ProgressFunc func(stage string, percent int)
