package models

import "time"

// Statistic keys tracked per game. These are the only keys the engine
// evaluates lines against.
const (
	StatPoints            = "points"
	StatRebounds          = "rebounds"
	StatAssists           = "assists"
	StatSteals            = "steals"
	StatBlocks            = "blocks"
	StatTurnovers         = "turnovers"
	StatThreePointersMade = "threePointersMade"
)

// StatKeys lists every supported statistic in display order.
var StatKeys = []string{
	StatPoints,
	StatRebounds,
	StatAssists,
	StatSteals,
	StatBlocks,
	StatTurnovers,
	StatThreePointersMade,
}

// IsValidStat reports whether key is one of the supported statistics.
func IsValidStat(key string) bool {
	for _, k := range StatKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Game types
const (
	GameTypeRegular = "regular_season"
	GameTypePlayoff = "playoff"
)

// HistoricalGame is one player's finalized box line for one past game.
// Rows are immutable: the ingestion pipeline writes them once and this
// service only reads them.
type HistoricalGame struct {
	GameID         string             `json:"game_id"`
	Date           time.Time          `json:"date"`
	OpponentAbbr   string             `json:"opponent_abbr"`
	OpponentTeamID string             `json:"opponent_team_id"`
	IsHome         bool               `json:"is_home"`
	Season         string             `json:"season"`
	GameType       string             `json:"game_type"`
	TeamID         string             `json:"team_id"` // player's team at the time
	MinutesPlayed  float64            `json:"minutes_played"`
	Stats          map[string]float64 `json:"stats"`
	Result         string             `json:"result"` // "W" or "L"
	Score          string             `json:"score"`
}

// Stat returns the value for a statistic key, 0 when the key is absent.
func (g HistoricalGame) Stat(key string) float64 {
	if g.Stats == nil {
		return 0
	}
	return g.Stats[key]
}

// TimeWindow is a lookback token over a newest-first game list.
type TimeWindow string

const (
	WindowL5  TimeWindow = "L5"
	WindowL10 TimeWindow = "L10"
	WindowL20 TimeWindow = "L20"
	WindowL50 TimeWindow = "L50"
	WindowAll TimeWindow = "All"
)

// Size returns the number of games a window keeps, or 0 for All (no cap).
func (w TimeWindow) Size() int {
	switch w {
	case WindowL5:
		return 5
	case WindowL10:
		return 10
	case WindowL20:
		return 20
	case WindowL50:
		return 50
	default:
		return 0
	}
}

// Valid reports whether the token is a known window.
func (w TimeWindow) Valid() bool {
	switch w {
	case WindowL5, WindowL10, WindowL20, WindowL50, WindowAll:
		return true
	}
	return false
}
