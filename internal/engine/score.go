package engine

import (
	"sort"

	"github.com/courtsight/picks-api/internal/models"
)

// ScoreWeights configures the composite strength formula. The formula is
// deliberately simple and tunable:
//
//	strength = HitRate*hitRate + Streak*min(streak, StreakCap) + Sample*min(sampleSize, SampleCap)
//
// Monotonic in hit rate and streak length; the small sample term breaks ties
// between otherwise equal candidates in favor of the larger sample.
type ScoreWeights struct {
	HitRate   float64
	Streak    float64
	StreakCap int
	Sample    float64
	SampleCap int
}

// DefaultScoreWeights keeps hit rate dominant, rewards streaks meaningfully,
// and uses sample size as a light tie-breaker.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		HitRate:   1.0,
		Streak:    3.0,
		StreakCap: 10,
		Sample:    0.1,
		SampleCap: 50,
	}
}

// Strength computes the composite sort score for one result.
func (w ScoreWeights) Strength(hs models.HitStats) float64 {
	streak := hs.CurrentStreak
	if w.StreakCap > 0 && streak > w.StreakCap {
		streak = w.StreakCap
	}
	sample := hs.SampleSize
	if w.SampleCap > 0 && sample > w.SampleCap {
		sample = w.SampleCap
	}
	return w.HitRate*float64(hs.HitRate) + w.Streak*float64(streak) + w.Sample*float64(sample)
}

// SortResults orders results by strength descending, then sample size
// descending, then player name ascending so identical inputs always produce
// identical orderings.
func SortResults(results []models.PickResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Strength != b.Strength {
			return a.Strength > b.Strength
		}
		if a.Recent.SampleSize != b.Recent.SampleSize {
			return a.Recent.SampleSize > b.Recent.SampleSize
		}
		if a.PlayerName != b.PlayerName {
			return a.PlayerName < b.PlayerName
		}
		return a.StatName < b.StatName
	})
}
