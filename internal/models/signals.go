package models

// Signal aggregator outputs. Every aggregator degrades to an explicit
// insufficient-data state instead of reporting misleading zeros; gates treat
// that state as a failure when enabled.

// DefenseSignal ranks the upcoming opponent's defense against one statistic,
// either overall or versus a position.
type DefenseSignal struct {
	Insufficient bool    `json:"insufficient"`
	Rank         int     `json:"rank"`      // 1 = allows the least of the stat
	TeamCount    int     `json:"team_count"`
	PerGame      float64 `json:"per_game"` // stat allowed per game
	Position     string  `json:"position,omitempty"`
	Direction    string  `json:"direction,omitempty"` // "allows more" | "allows fewer"
}

// StarAbsence names a star teammate who is currently out, with the games
// they already missed this season.
type StarAbsence struct {
	PlayerName    string   `json:"player_name"`
	MissedGameIDs []string `json:"missed_game_ids"`
}

// AbsenceSignal quantifies a player's production shift when star teammates
// sit. Delta is only populated with at least three games without the stars.
type AbsenceSignal struct {
	Insufficient bool     `json:"insufficient"`
	AbsentStars  []string `json:"absent_stars,omitempty"`
	GamesWithout int      `json:"games_without"`
	AvgWithout   float64  `json:"avg_without"`
	AvgWith      float64  `json:"avg_with"`
	Delta        float64  `json:"delta"`
}

// RestSignal reports days since each side's previous game. A nil value means
// the prior game could not be resolved.
type RestSignal struct {
	TeamRestDays     *int `json:"team_rest_days"`
	OpponentRestDays *int `json:"opponent_rest_days"`
}

// PlayoffSignal compares playoff versus regular-season production. Only
// meaningful for an upcoming playoff game, and only with enough playoff
// sample.
type PlayoffSignal struct {
	Insufficient bool    `json:"insufficient"`
	PlayoffGames int     `json:"playoff_games"`
	PlayoffAvg   float64 `json:"playoff_avg"`
	RegularAvg   float64 `json:"regular_avg"`
	Delta        float64 `json:"delta"`
}

// Pace buckets
const (
	PaceFaster  = "faster"
	PaceSlower  = "slower"
	PaceNeutral = "neutral"
)

// PaceSignal compares the matchup's possessions-per-48 to league average.
type PaceSignal struct {
	Insufficient bool    `json:"insufficient"`
	Bucket       string  `json:"bucket"`
	PctDiff      float64 `json:"pct_diff"` // signed % vs league average
	TeamPace     float64 `json:"team_pace"`
	OpponentPace float64 `json:"opponent_pace"`
	LeaguePace   float64 `json:"league_pace"`
}

// MatchupReport bundles every aggregator output for one player against one
// upcoming game, for the player detail pane.
type MatchupReport struct {
	PlayerID string        `json:"player_id"`
	StatName string        `json:"stat_name"`
	Game     GameContext   `json:"game"`
	Defense  DefenseSignal `json:"defense"`
	Absence  AbsenceSignal `json:"absence"`
	Rest     RestSignal    `json:"rest"`
	Playoff  PlayoffSignal `json:"playoff"`
	Pace     PaceSignal    `json:"pace"`
}
