package engine

import (
	"context"
	"errors"
	"time"

	"github.com/courtsight/picks-api/internal/models"
)

// mockLogs implements GameLogSource for testing
type mockLogs struct {
	GameLogsFunc func(ctx context.Context, playerID string, asOf time.Time, limit int) ([]models.HistoricalGame, error)
}

func (m *mockLogs) GameLogs(ctx context.Context, playerID string, asOf time.Time, limit int) ([]models.HistoricalGame, error) {
	if m.GameLogsFunc != nil {
		return m.GameLogsFunc(ctx, playerID, asOf, limit)
	}
	return nil, nil
}

// mockSlate implements SlateSource for testing
type mockSlate struct {
	SlateFunc func(ctx context.Context, date time.Time, modelIDs []string) ([]models.SlateCandidate, error)
}

func (m *mockSlate) Slate(ctx context.Context, date time.Time, modelIDs []string) ([]models.SlateCandidate, error) {
	if m.SlateFunc != nil {
		return m.SlateFunc(ctx, date, modelIDs)
	}
	return nil, nil
}

var errUnavailable = errors.New("data unavailable")

// mockLeague implements LeagueSource for testing. Unset funcs report
// unavailable so signal gates fail closed by default.
type mockLeague struct {
	DefenseVsPositionFunc func(ctx context.Context, statName, position, season string) (map[string]float64, error)
	TeamDefenseFunc       func(ctx context.Context, statName, season string) (map[string]float64, error)
	TeamPaceFunc          func(ctx context.Context, teamID, season string) (float64, error)
	LeaguePaceFunc        func(ctx context.Context, season string) (float64, error)
	LastGameDateFunc      func(ctx context.Context, teamID string, asOf time.Time) (time.Time, bool, error)
	AbsentStarsFunc       func(ctx context.Context, playerID, teamID, season string) ([]models.StarAbsence, error)
}

func (m *mockLeague) DefenseVsPosition(ctx context.Context, statName, position, season string) (map[string]float64, error) {
	if m.DefenseVsPositionFunc != nil {
		return m.DefenseVsPositionFunc(ctx, statName, position, season)
	}
	return nil, errUnavailable
}

func (m *mockLeague) TeamDefense(ctx context.Context, statName, season string) (map[string]float64, error) {
	if m.TeamDefenseFunc != nil {
		return m.TeamDefenseFunc(ctx, statName, season)
	}
	return nil, errUnavailable
}

func (m *mockLeague) TeamPace(ctx context.Context, teamID, season string) (float64, error) {
	if m.TeamPaceFunc != nil {
		return m.TeamPaceFunc(ctx, teamID, season)
	}
	return 0, errUnavailable
}

func (m *mockLeague) LeaguePace(ctx context.Context, season string) (float64, error) {
	if m.LeaguePaceFunc != nil {
		return m.LeaguePaceFunc(ctx, season)
	}
	return 0, errUnavailable
}

func (m *mockLeague) LastGameDate(ctx context.Context, teamID string, asOf time.Time) (time.Time, bool, error) {
	if m.LastGameDateFunc != nil {
		return m.LastGameDateFunc(ctx, teamID, asOf)
	}
	return time.Time{}, false, errUnavailable
}

func (m *mockLeague) AbsentStars(ctx context.Context, playerID, teamID, season string) ([]models.StarAbsence, error) {
	if m.AbsentStarsFunc != nil {
		return m.AbsentStarsFunc(ctx, playerID, teamID, season)
	}
	return nil, errUnavailable
}
