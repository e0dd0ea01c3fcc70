package engine

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/models"
)

// Tunable floors for the aggregators. Below these sample sizes the signal
// reports insufficient data instead of a delta.
const (
	// MinAbsentGames is the minimum games played without a star teammate
	// before an absence delta is quantified.
	MinAbsentGames = 3
	// MinPlayoffGames is the minimum playoff sample before a playoff
	// experience delta is reported.
	MinPlayoffGames = 5
	// PaceNeutralBandPct is the absolute % difference from league average
	// inside which a matchup is bucketed neutral.
	PaceNeutralBandPct = 2.0
)

// Signals computes the independent matchup and context aggregators. Each
// method degrades to an explicit insufficient-data result on any fetch
// failure or thin sample; none of them ever returns an error that could
// abort a scan.
type Signals struct {
	league LeagueSource
	logger *zap.SugaredLogger
}

func NewSignals(league LeagueSource, logger *zap.SugaredLogger) *Signals {
	return &Signals{league: league, logger: logger}
}

// OpponentDefense ranks the upcoming opponent's stat-allowed among all teams,
// versus a position when one is given, overall otherwise. Rank 1 allows the
// least. Requires the full league table; partial data is insufficient.
func (s *Signals) OpponentDefense(ctx context.Context, statName, position, season, opponentID string) models.DefenseSignal {
	var (
		allowed map[string]float64
		err     error
	)
	if position != "" {
		allowed, err = s.league.DefenseVsPosition(ctx, statName, position, season)
	} else {
		allowed, err = s.league.TeamDefense(ctx, statName, season)
	}
	if err != nil || len(allowed) < 2 {
		if err != nil {
			s.logger.Debugw("defense lookup failed", "stat", statName, "position", position, "error", err)
		}
		return models.DefenseSignal{Insufficient: true, Position: position}
	}

	perGame, ok := allowed[opponentID]
	if !ok {
		return models.DefenseSignal{Insufficient: true, Position: position}
	}

	values := make([]float64, 0, len(allowed))
	for _, v := range allowed {
		values = append(values, v)
	}
	sort.Float64s(values)

	rank := 1
	for _, v := range values {
		if v < perGame {
			rank++
		}
	}

	direction := "allows fewer"
	if rank > len(values)/2 {
		direction = "allows more"
	}

	return models.DefenseSignal{
		Rank:      rank,
		TeamCount: len(values),
		PerGame:   perGame,
		Position:  position,
		Direction: direction,
	}
}

// StarAbsence compares a player's production in games their star teammates
// missed against games they played. The star determination is external; this
// only measures the split. Fewer than MinAbsentGames without the stars still
// names the absentees but flags the delta as unavailable.
func (s *Signals) StarAbsence(ctx context.Context, playerID, statName string, cx models.GameContext, games []models.HistoricalGame) models.AbsenceSignal {
	stars, err := s.league.AbsentStars(ctx, playerID, cx.TeamID, cx.Season)
	if err != nil {
		s.logger.Debugw("absent star lookup failed", "player", playerID, "error", err)
		return models.AbsenceSignal{Insufficient: true}
	}
	if len(stars) == 0 {
		return models.AbsenceSignal{Insufficient: true}
	}

	missed := make(map[string]bool)
	names := make([]string, 0, len(stars))
	for _, star := range stars {
		names = append(names, star.PlayerName)
		for _, id := range star.MissedGameIDs {
			missed[id] = true
		}
	}

	var withoutSum, withSum float64
	var without, with int
	for _, g := range games {
		if missed[g.GameID] {
			withoutSum += g.Stat(statName)
			without++
		} else {
			withSum += g.Stat(statName)
			with++
		}
	}

	sig := models.AbsenceSignal{AbsentStars: names, GamesWithout: without}
	if without < MinAbsentGames || with == 0 {
		sig.Insufficient = true
		return sig
	}

	sig.AvgWithout = withoutSum / float64(without)
	sig.AvgWith = withSum / float64(with)
	sig.Delta = sig.AvgWithout - sig.AvgWith
	return sig
}

// RestDays reports days since the previous game for both sides as of the
// target date. Either side is nil when no prior game resolves.
func (s *Signals) RestDays(ctx context.Context, cx models.GameContext) models.RestSignal {
	sig := models.RestSignal{}
	sig.TeamRestDays = s.restFor(ctx, cx.TeamID, cx.Date)
	sig.OpponentRestDays = s.restFor(ctx, cx.OpponentID, cx.Date)
	return sig
}

func (s *Signals) restFor(ctx context.Context, teamID string, asOf time.Time) *int {
	if teamID == "" {
		return nil
	}
	last, ok, err := s.league.LastGameDate(ctx, teamID, asOf)
	if err != nil || !ok {
		if err != nil {
			s.logger.Debugw("last game lookup failed", "team", teamID, "error", err)
		}
		return nil
	}
	days := int(asOf.Sub(last).Hours()/24) - 1
	if days < 0 {
		days = 0
	}
	return &days
}

// PlayoffExperience compares playoff to regular-season production from the
// player's own game log. Only meaningful when the upcoming game is a playoff
// game; otherwise, and below the playoff floor, the signal is insufficient.
func (s *Signals) PlayoffExperience(statName string, cx models.GameContext, games []models.HistoricalGame) models.PlayoffSignal {
	if cx.GameType != models.GameTypePlayoff {
		return models.PlayoffSignal{Insufficient: true}
	}

	var playoffSum, regularSum float64
	var playoff, regular int
	for _, g := range games {
		if g.GameType == models.GameTypePlayoff {
			playoffSum += g.Stat(statName)
			playoff++
		} else {
			regularSum += g.Stat(statName)
			regular++
		}
	}

	sig := models.PlayoffSignal{PlayoffGames: playoff}
	if playoff < MinPlayoffGames || regular == 0 {
		sig.Insufficient = true
		return sig
	}

	sig.PlayoffAvg = playoffSum / float64(playoff)
	sig.RegularAvg = regularSum / float64(regular)
	sig.Delta = sig.PlayoffAvg - sig.RegularAvg
	return sig
}

// Pace buckets the matchup's expected possessions-per-48 against league
// average. The matchup pace is the mean of both teams; differences inside
// the neutral band report neutral.
func (s *Signals) Pace(ctx context.Context, cx models.GameContext) models.PaceSignal {
	teamPace, err1 := s.league.TeamPace(ctx, cx.TeamID, cx.Season)
	oppPace, err2 := s.league.TeamPace(ctx, cx.OpponentID, cx.Season)
	leaguePace, err3 := s.league.LeaguePace(ctx, cx.Season)
	if err1 != nil || err2 != nil || err3 != nil || leaguePace <= 0 {
		return models.PaceSignal{Insufficient: true}
	}

	matchup := (teamPace + oppPace) / 2
	pctDiff := (matchup - leaguePace) / leaguePace * 100

	bucket := models.PaceNeutral
	if math.Abs(pctDiff) >= PaceNeutralBandPct {
		if pctDiff > 0 {
			bucket = models.PaceFaster
		} else {
			bucket = models.PaceSlower
		}
	}

	return models.PaceSignal{
		Bucket:       bucket,
		PctDiff:      pctDiff,
		TeamPace:     teamPace,
		OpponentPace: oppPace,
		LeaguePace:   leaguePace,
	}
}
