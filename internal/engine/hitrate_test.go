package engine

import (
	"testing"

	"github.com/courtsight/picks-api/internal/models"
)

func ptsGame(n int, pts float64) models.HistoricalGame {
	return models.HistoricalGame{
		GameID:        "g" + string(rune('0'+n)),
		Date:          day(n),
		MinutesPlayed: 30,
		Stats:         map[string]float64{models.StatPoints: pts},
	}
}

func TestHitsTieBreak(t *testing.T) {
	// A push counts for the over and against the under.
	g := ptsGame(1, 20)
	if !Hits(g, models.StatPoints, 20, models.DirectionOver) {
		t.Error("over at the exact line must hit")
	}
	if Hits(g, models.StatPoints, 20, models.DirectionUnder) {
		t.Error("under at the exact line must miss")
	}
}

func TestEvaluate(t *testing.T) {
	// Newest first: d3=25, d2=18, d1=22.
	sample := []models.HistoricalGame{ptsGame(3, 25), ptsGame(2, 18), ptsGame(1, 22)}

	tests := []struct {
		name       string
		games      []models.HistoricalGame
		line       float64
		direction  string
		wantRate   int
		wantHits   int
		wantStreak int
	}{
		{
			name:       "over 20 on three games",
			games:      sample,
			line:       20,
			direction:  models.DirectionOver,
			wantRate:   67, // round(100*2/3)
			wantHits:   2,
			wantStreak: 1, // d3 hits, d2 breaks it
		},
		{
			name:       "under 20 on three games",
			games:      sample,
			line:       20,
			direction:  models.DirectionUnder,
			wantRate:   33,
			wantHits:   1,
			wantStreak: 0, // newest game misses
		},
		{
			name:       "L2 truncated sample",
			games:      sample[:2],
			line:       20,
			direction:  models.DirectionOver,
			wantRate:   50,
			wantHits:   1,
			wantStreak: 1,
		},
		{
			name:       "empty sample reports zero not NaN",
			games:      nil,
			line:       20,
			direction:  models.DirectionOver,
			wantRate:   0,
			wantHits:   0,
			wantStreak: 0,
		},
		{
			name: "unbroken streak counts the whole sample",
			games: []models.HistoricalGame{
				ptsGame(3, 25), ptsGame(2, 21), ptsGame(1, 30),
			},
			line:       20,
			direction:  models.DirectionOver,
			wantRate:   100,
			wantHits:   3,
			wantStreak: 3,
		},
		{
			name: "streak stops at first miss even with later hits",
			games: []models.HistoricalGame{
				ptsGame(4, 25), ptsGame(3, 10), ptsGame(2, 28), ptsGame(1, 30),
			},
			line:       20,
			direction:  models.DirectionOver,
			wantRate:   75,
			wantHits:   3,
			wantStreak: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.games, models.StatPoints, tt.line, tt.direction)
			if res.Stats.HitRate != tt.wantRate {
				t.Errorf("hit rate = %d, want %d", res.Stats.HitRate, tt.wantRate)
			}
			if res.Stats.Hits != tt.wantHits {
				t.Errorf("hits = %d, want %d", res.Stats.Hits, tt.wantHits)
			}
			if res.Stats.CurrentStreak != tt.wantStreak {
				t.Errorf("streak = %d, want %d", res.Stats.CurrentStreak, tt.wantStreak)
			}
			if res.Stats.Hits+res.Stats.Misses != res.Stats.SampleSize {
				t.Errorf("hits+misses = %d, want sample size %d",
					res.Stats.Hits+res.Stats.Misses, res.Stats.SampleSize)
			}
		})
	}
}

func TestEvaluateRateBounds(t *testing.T) {
	// Hit rate stays in [0,100] for any sample and line.
	lines := []float64{-5, 0, 10.5, 20, 19.5, 100}
	sample := []models.HistoricalGame{ptsGame(3, 25), ptsGame(2, 0), ptsGame(1, 22)}
	for _, line := range lines {
		for _, dir := range []string{models.DirectionOver, models.DirectionUnder} {
			res := Evaluate(sample, models.StatPoints, line, dir)
			if res.Stats.HitRate < 0 || res.Stats.HitRate > 100 {
				t.Errorf("line %.1f %s: hit rate %d out of bounds", line, dir, res.Stats.HitRate)
			}
		}
	}
}

func TestEvaluateMissingStatKey(t *testing.T) {
	// A game without the stat key counts as 0: an under hit, an over miss.
	g := models.HistoricalGame{GameID: "g1", Date: day(1), MinutesPlayed: 12}
	res := Evaluate([]models.HistoricalGame{g}, models.StatBlocks, 0.5, models.DirectionUnder)
	if res.Stats.Hits != 1 {
		t.Errorf("missing stat under 0.5: hits = %d, want 1", res.Stats.Hits)
	}
	res = Evaluate([]models.HistoricalGame{g}, models.StatBlocks, 0.5, models.DirectionOver)
	if res.Stats.Hits != 0 {
		t.Errorf("missing stat over 0.5: hits = %d, want 0", res.Stats.Hits)
	}
}
