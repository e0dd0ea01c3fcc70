package engine

import (
	"math"

	"github.com/courtsight/picks-api/internal/models"
)

// Hits reports whether one game satisfies the line in the given direction.
// Over is inclusive of the exact line, under is strictly below it; a push
// counts for the over. This asymmetry is the tie-break policy and must hold
// exactly.
func Hits(g models.HistoricalGame, statName string, line float64, direction string) bool {
	v := g.Stat(statName)
	if direction == models.DirectionUnder {
		return v < line
	}
	return v >= line
}

// EvalResult carries the hit/miss partition alongside the aggregate numbers.
type EvalResult struct {
	Stats  models.HitStats
	Hits   []models.HistoricalGame
	Misses []models.HistoricalGame
}

// Evaluate computes hit rate and current streak for a sample. The sample is
// assumed newest-first (the pipeline guarantees it); the streak counts
// consecutive hits from the most recent game backward and stops at the first
// miss. An empty sample reports a 0 hit rate, never NaN.
func Evaluate(games []models.HistoricalGame, statName string, line float64, direction string) EvalResult {
	res := EvalResult{}
	streakAlive := true

	for _, g := range games {
		if Hits(g, statName, line, direction) {
			res.Hits = append(res.Hits, g)
			if streakAlive {
				res.Stats.CurrentStreak++
			}
		} else {
			res.Misses = append(res.Misses, g)
			streakAlive = false
		}
	}

	res.Stats.SampleSize = len(games)
	res.Stats.Hits = len(res.Hits)
	res.Stats.Misses = len(res.Misses)
	if len(games) > 0 {
		res.Stats.HitRate = int(math.Round(100 * float64(len(res.Hits)) / float64(len(games))))
	}
	return res
}
