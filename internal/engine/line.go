package engine

import (
	"strings"
	"unicode"

	"github.com/courtsight/picks-api/internal/models"
)

// favorableMargins is the fixed per-stat shift applied in favorable mode: the
// line moves toward making the pick easier to hit (down for overs, up for
// unders). Volume stats move a full point, low-count stats half.
var favorableMargins = map[string]float64{
	models.StatPoints:            1.0,
	models.StatRebounds:          0.5,
	models.StatAssists:           0.5,
	models.StatSteals:            0.5,
	models.StatBlocks:            0.5,
	models.StatTurnovers:         0.5,
	models.StatThreePointersMade: 0.5,
}

// ResolveLine picks the base line for a candidate per the configured method
// and applies the line adjustment. In prediction mode a posted book line
// takes precedence over the raw model output, so the agreement gate always
// measures the prediction against an independent number. Sample is the
// candidate's filtered recent games, used for the rolling-average method; an
// empty sample falls back to the base line so the line is never zero by
// accident.
func ResolveLine(f models.PickFinderFilters, c models.SlateCandidate, direction string, sample []models.HistoricalGame) float64 {
	line := c.Predicted
	if c.Line > 0 {
		line = c.Line
	}

	if f.LineMethod == models.LineMethodAverage && len(sample) > 0 {
		var sum float64
		for _, g := range sample {
			sum += g.Stat(c.StatName)
		}
		line = sum / float64(len(sample))
	}

	switch f.LineAdjustment {
	case models.LineAdjustFavorable:
		m := favorableMargins[c.StatName]
		if direction == models.DirectionUnder {
			line += m
		} else {
			line -= m
		}
	case models.LineAdjustCustom:
		if mod, ok := f.CustomLineMods[c.StatName]; ok {
			line += mod
		}
	}
	return line
}

// statLabels maps statistic keys to their display labels. Additions belong
// here, not in the fallback heuristic.
var statLabels = map[string]string{
	models.StatPoints:            "Points",
	models.StatRebounds:          "Rebounds",
	models.StatAssists:           "Assists",
	models.StatSteals:            "Steals",
	models.StatBlocks:            "Blocks",
	models.StatTurnovers:         "Turnovers",
	models.StatThreePointersMade: "Three-Pointers Made",
}

// StatLabel returns the display label for a statistic key. Unknown keys fall
// back to a deterministic camelCase split with title casing, so a newly
// introduced upstream key renders legibly without a code change.
func StatLabel(key string) string {
	if label, ok := statLabels[key]; ok {
		return label
	}

	var sb strings.Builder
	for i, r := range key {
		if i == 0 {
			sb.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			sb.WriteByte(' ')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
