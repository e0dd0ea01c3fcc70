package engine

import (
	"sort"

	"github.com/courtsight/picks-api/internal/models"
)

// FilterOptions selects which contextual filters apply to a game sample.
// Filters that compare against the upcoming game read their values from the
// GameContext; when the context value is missing the filter is skipped so an
// unresolved slate never empties a sample.
type FilterOptions struct {
	ExcludeDNP      bool
	MinMinutes      float64
	H2HOnly         bool
	HomeAwayOnly    bool
	CurrentTeamOnly bool
	ThisSeasonOnly  bool
	Window          models.TimeWindow
}

// ApplyFilters runs the fixed-order filter chain over a game list and returns
// the surviving sample. The input is never mutated; order of application is
// part of the contract (window truncation always runs last, after a
// newest-first sort).
func ApplyFilters(games []models.HistoricalGame, opts FilterOptions, cx models.GameContext) []models.HistoricalGame {
	out := make([]models.HistoricalGame, 0, len(games))

	for _, g := range games {
		if opts.ExcludeDNP && g.MinutesPlayed <= 0 {
			continue
		}
		if opts.MinMinutes > 0 && g.MinutesPlayed < opts.MinMinutes {
			continue
		}
		if opts.H2HOnly && cx.OpponentAbbr != "" && g.OpponentAbbr != cx.OpponentAbbr {
			continue
		}
		if opts.HomeAwayOnly && cx.HomeSet && g.IsHome != cx.IsHome {
			continue
		}
		if opts.CurrentTeamOnly && cx.TeamID != "" && g.TeamID != cx.TeamID {
			continue
		}
		if opts.ThisSeasonOnly && cx.Season != "" && g.Season != cx.Season {
			continue
		}
		out = append(out, g)
	}

	// Newest first before the window cut.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})

	if n := opts.Window.Size(); n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
