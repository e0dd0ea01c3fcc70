package models

import "time"

// GameContext is the upcoming game a candidate is evaluated against. The
// filter pipeline needs these values to apply its contextual filters; any
// zero field disables the matching filter rather than emptying the sample.
type GameContext struct {
	GameID       string    `json:"game_id"`
	Date         time.Time `json:"date"`
	Season       string    `json:"season"`
	GameType     string    `json:"game_type"`
	TeamID       string    `json:"team_id"`
	OpponentID   string    `json:"opponent_id"`
	OpponentAbbr string    `json:"opponent_abbr"`
	IsHome       bool      `json:"is_home"`
	HomeSet      bool      `json:"home_set"` // false when home/away is unresolved
}

// SlateCandidate is one active (player, game, stat) prediction on the slate,
// as produced by the upstream model. The engine derives pick candidates from
// these rows.
type SlateCandidate struct {
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Position   string      `json:"position"`
	ModelID    string      `json:"model_id"`
	StatName   string      `json:"stat_name"`
	Predicted  float64     `json:"predicted"`
	Line       float64     `json:"line"` // book line when available, else 0
	UsageRate  float64     `json:"usage_rate"`
	Confidence *Confidence `json:"confidence,omitempty"`
	Game       GameContext `json:"game"`
}

// Confidence is the upstream model's reliability breakdown for one
// prediction. This service never computes it, only reads the calibrated
// percentage for the minimum-confidence gate and passes the components
// through for display.
type Confidence struct {
	Percent     int                `json:"percent"` // calibrated 0-100
	RawScore    float64            `json:"raw_score"`
	Components  map[string]float64 `json:"components,omitempty"`  // model agreement, consistency, completeness, experience, stability
	Adjustments map[string]float64 `json:"adjustments,omitempty"` // signed: opponent defense, injury recovery, playoff, back-to-back
}

// HitStats is the output of the hit-rate calculator over one sample.
type HitStats struct {
	SampleSize    int `json:"sample_size"`
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	HitRate       int `json:"hit_rate"` // integer-rounded 0-100, 0 on empty sample
	CurrentStreak int `json:"current_streak"`
}

// PickResult is one ranked search output. Only candidates that passed every
// enabled gate become results.
type PickResult struct {
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	GameID     string  `json:"game_id"`
	ModelID    string  `json:"model_id"`
	StatName   string  `json:"stat_name"`
	Line       float64 `json:"line"`
	Direction  string  `json:"direction"`
	Predicted  float64 `json:"predicted"`

	Recent HitStats  `json:"recent"`
	Split  *HitStats `json:"split,omitempty"` // home/away sub-sample, when enabled
	H2H    *HitStats `json:"h2h,omitempty"`   // head-to-head sub-sample, when enabled

	Signals    []string `json:"signals,omitempty"` // human-readable gates that passed
	Confidence int      `json:"confidence"`
	Strength   float64  `json:"strength"`
}

// Trend is the narrower streak/recent-form output of FindTrends.
type Trend struct {
	PlayerID   string   `json:"player_id"`
	PlayerName string   `json:"player_name"`
	GameID     string   `json:"game_id"`
	StatName   string   `json:"stat_name"`
	Line       float64  `json:"line"`
	Direction  string   `json:"direction"`
	Recent     HitStats `json:"recent"`
	Label      string   `json:"label"` // e.g. "Over 24.5 points in 7 straight"
}
