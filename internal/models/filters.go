package models

// Direction of a pick against its line.
const (
	DirectionOver  = "over"
	DirectionUnder = "under"
	DirectionBoth  = "both" // filter input only, never on a result
)

// Line resolution methods
const (
	LineMethodAverage    = "average"    // player's rolling average over the window
	LineMethodPrediction = "prediction" // upstream AI prediction value
)

// Line adjustment modes
const (
	LineAdjustStandard  = "standard"
	LineAdjustFavorable = "favorable"
	LineAdjustCustom    = "custom"
)

// AI agreement levels
const (
	AgreementDisabled   = "disabled"
	AgreementSimple     = "simple"
	AgreementStrong     = "strong"      // prediction beats the line by >= 2
	AgreementVeryStrong = "very-strong" // >= 4
)

// Usage-rate roles
const (
	UsageAny  = "any"
	UsageHigh = "high-usage" // usage rate >= 25%
)

// PickFinderFilters is the full configuration driving a search. Sections with
// an Enabled flag impose no constraint when disabled; they are skipped, not
// zero-valued.
type PickFinderFilters struct {
	// Stat / direction / line selection
	StatType       string             `json:"stat_type"`  // a StatKeys entry or "all"
	OverUnder      string             `json:"over_under"` // over | under | both
	LineMethod     string             `json:"line_method"`
	LineAdjustment string             `json:"line_adjustment"`
	CustomLineMods map[string]float64 `json:"custom_line_mods,omitempty"` // per-stat shift, custom mode only

	// Recent performance
	TimeWindow         TimeWindow `json:"time_window"`
	HitRateEnabled     bool       `json:"hit_rate_enabled"`
	HitRateMode        string     `json:"hit_rate_mode"` // "percent" | "count"
	HitRateThreshold   int        `json:"hit_rate_threshold"`
	HitRateCount       int        `json:"hit_rate_count"`
	ConsecutiveEnabled bool       `json:"consecutive_enabled"`
	ConsecutiveHits    int        `json:"consecutive_hits"`

	// Context split (home/away) sub-filter
	SplitEnabled          bool       `json:"split_enabled"`
	SplitTimeWindow       TimeWindow `json:"split_time_window"`
	SplitHitRateThreshold int        `json:"split_hit_rate_threshold"`
	SplitConsecutiveHits  int        `json:"split_consecutive_hits"`

	// Head-to-head sub-filter
	H2HEnabled          bool       `json:"h2h_enabled"`
	H2HTimeWindow       TimeWindow `json:"h2h_time_window"`
	H2HHitRateThreshold int        `json:"h2h_hit_rate_threshold"`
	H2HMinGames         int        `json:"h2h_min_games"`

	// Sample hygiene
	ExcludeDNP      bool    `json:"exclude_dnp"`
	MinMinutes      float64 `json:"min_minutes"`
	CurrentTeamOnly bool    `json:"current_team_only"`
	ThisSeasonOnly  bool    `json:"this_season_only"`

	// Matchup gates
	DefenseRankEnabled     bool `json:"defense_rank_enabled"`
	DefenseRankCutoff      int  `json:"defense_rank_cutoff"` // opponent must rank this or worse defending the stat
	TeamDefenseRankEnabled bool `json:"team_defense_rank_enabled"`
	TeamDefenseRankCutoff  int  `json:"team_defense_rank_cutoff"`
	PaceEnabled            bool `json:"pace_enabled"`
	RequireFasterPace      bool `json:"require_faster_pace"`

	// AI gates
	AgreementLevel       string `json:"agreement_level"`
	MinConfidenceEnabled bool   `json:"min_confidence_enabled"`
	MinConfidence        int    `json:"min_confidence"` // calibrated 0-100

	// Reliability gates
	MinutesFilterEnabled bool       `json:"minutes_filter_enabled"`
	MinutesWindow        TimeWindow `json:"minutes_window"`
	MinAvgMinutes        float64    `json:"min_avg_minutes"`
	UsageRole            string     `json:"usage_role"`
	ExcludeTiredVsRested bool       `json:"exclude_tired_vs_rested"`
}

// DefaultFilters returns the baseline configuration: every optional gate off,
// sensible windows. Presets merge over this.
func DefaultFilters() PickFinderFilters {
	return PickFinderFilters{
		StatType:        "all",
		OverUnder:       DirectionBoth,
		LineMethod:      LineMethodPrediction,
		LineAdjustment:  LineAdjustStandard,
		TimeWindow:      WindowL10,
		HitRateMode:     "percent",
		SplitTimeWindow: WindowL10,
		H2HTimeWindow:   WindowAll,
		H2HMinGames:     1,
		ExcludeDNP:      true,
		MinutesWindow:   WindowL10,
		AgreementLevel:  AgreementDisabled,
		UsageRole:       UsageAny,
	}
}

// clampInt bounds v into [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize clamps every threshold into its valid range and repairs unknown
// tokens with defaults. The engine always normalizes before a scan so a bad
// configuration can never overflow a window or divide by zero.
func (f PickFinderFilters) Normalize() PickFinderFilters {
	def := DefaultFilters()

	if f.StatType != "all" && !IsValidStat(f.StatType) {
		f.StatType = def.StatType
	}
	switch f.OverUnder {
	case DirectionOver, DirectionUnder, DirectionBoth:
	default:
		f.OverUnder = def.OverUnder
	}
	switch f.LineMethod {
	case LineMethodAverage, LineMethodPrediction:
	default:
		f.LineMethod = def.LineMethod
	}
	switch f.LineAdjustment {
	case LineAdjustStandard, LineAdjustFavorable, LineAdjustCustom:
	default:
		f.LineAdjustment = def.LineAdjustment
	}
	switch f.AgreementLevel {
	case AgreementDisabled, AgreementSimple, AgreementStrong, AgreementVeryStrong:
	default:
		f.AgreementLevel = def.AgreementLevel
	}
	switch f.UsageRole {
	case UsageAny, UsageHigh:
	default:
		f.UsageRole = def.UsageRole
	}
	if !f.TimeWindow.Valid() {
		f.TimeWindow = def.TimeWindow
	}
	if !f.SplitTimeWindow.Valid() {
		f.SplitTimeWindow = def.SplitTimeWindow
	}
	if !f.H2HTimeWindow.Valid() {
		f.H2HTimeWindow = def.H2HTimeWindow
	}
	if !f.MinutesWindow.Valid() {
		f.MinutesWindow = def.MinutesWindow
	}

	// Percentage thresholds live in 40-100; counts are bounded by their window.
	f.HitRateThreshold = clampInt(f.HitRateThreshold, 40, 100)
	f.SplitHitRateThreshold = clampInt(f.SplitHitRateThreshold, 40, 100)
	f.H2HHitRateThreshold = clampInt(f.H2HHitRateThreshold, 40, 100)
	f.MinConfidence = clampInt(f.MinConfidence, 0, 100)

	if n := f.TimeWindow.Size(); n > 0 {
		if f.HitRateCount > n {
			f.HitRateCount = n
		}
		if f.ConsecutiveHits > n {
			f.ConsecutiveHits = n
		}
	}
	if f.HitRateCount < 0 {
		f.HitRateCount = 0
	}
	if f.ConsecutiveHits < 0 {
		f.ConsecutiveHits = 0
	}
	if n := f.SplitTimeWindow.Size(); n > 0 && f.SplitConsecutiveHits > n {
		f.SplitConsecutiveHits = n
	}
	if f.SplitConsecutiveHits < 0 {
		f.SplitConsecutiveHits = 0
	}
	if f.H2HMinGames < 1 {
		f.H2HMinGames = 1
	}
	if f.MinMinutes < 0 {
		f.MinMinutes = 0
	}
	if f.MinAvgMinutes < 0 {
		f.MinAvgMinutes = 0
	}
	if f.DefenseRankCutoff < 0 {
		f.DefenseRankCutoff = 0
	}
	if f.TeamDefenseRankCutoff < 0 {
		f.TeamDefenseRankCutoff = 0
	}

	return f
}

// Stats returns the statistic keys the configuration selects.
func (f PickFinderFilters) Stats() []string {
	if f.StatType == "all" || f.StatType == "" {
		return StatKeys
	}
	return []string{f.StatType}
}

// Directions returns the directions the configuration selects.
func (f PickFinderFilters) Directions() []string {
	switch f.OverUnder {
	case DirectionOver:
		return []string{DirectionOver}
	case DirectionUnder:
		return []string{DirectionUnder}
	default:
		return []string{DirectionOver, DirectionUnder}
	}
}
