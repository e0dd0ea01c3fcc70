package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/courtsight/picks-api/internal/models"
)

// Scan stages reported through the progress callback.
const (
	StageSlate    = "resolving-slate"
	StageEvaluate = "evaluating-candidates"
	StageRank     = "ranking"
)

const (
	defaultLookback  = 50 // game-log rows fetched per player
	defaultBatchSize = 25 // candidates between cancellation checks
	defaultFanout    = 8  // concurrent candidate evaluations per batch
	highUsageFloor   = 25.0
)

// Engine is the pick-finder search and ranking orchestrator. It owns no
// state between scans; every scan is a pure function of the data sources and
// the filter configuration, so identical inputs produce identical ordered
// results.
type Engine struct {
	logs    GameLogSource
	slate   SlateSource
	signals *Signals
	weights ScoreWeights
	logger  *zap.SugaredLogger

	lookback  int
	batchSize int
	fanout    int
}

type Option func(*Engine)

// WithScoreWeights overrides the composite strength formula.
func WithScoreWeights(w ScoreWeights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithBatchSize sets the cancellation-check granularity.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithLookback sets how many game-log rows are fetched per player.
func WithLookback(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.lookback = n
		}
	}
}

func New(logs GameLogSource, slate SlateSource, signals *Signals, logger *zap.SugaredLogger, opts ...Option) *Engine {
	e := &Engine{
		logs:      logs,
		slate:     slate,
		signals:   signals,
		weights:   DefaultScoreWeights(),
		logger:    logger,
		lookback:  defaultLookback,
		batchSize: defaultBatchSize,
		fanout:    defaultFanout,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// FindPicks scans every active prediction on the slate against the filter
// configuration and returns the surviving candidates ranked by strength.
//
// Cancellation is cooperative: the context is checked between candidate
// batches; a canceled scan returns (nil, nil) with no partial results and
// no error. Per-candidate failures reject that candidate only. Only a failure
// to fetch the slate itself surfaces as an error.
func (e *Engine) FindPicks(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string, onProgress ProgressFunc) ([]models.PickResult, error) {
	filters = filters.Normalize()
	report := func(stage string, pct int) {
		if onProgress != nil {
			onProgress(stage, pct)
		}
	}

	report(StageSlate, 0)
	candidates, err := e.slate.Slate(ctx, date, modelIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve slate: %w", err)
	}
	report(StageSlate, 100)

	type task struct {
		cand      models.SlateCandidate
		direction string
	}
	var tasks []task
	stats := filters.Stats()
	dirs := filters.Directions()
	for _, c := range candidates {
		if !statSelected(stats, c.StatName) {
			continue
		}
		for _, d := range dirs {
			tasks = append(tasks, task{cand: c, direction: d})
		}
	}

	e.logger.Infow("pick scan started",
		"date", date.Format("2006-01-02"),
		"models", modelIDs,
		"slate", len(candidates),
		"candidates", len(tasks),
	)

	results := make([]*models.PickResult, len(tasks))
	for start := 0; start < len(tasks); start += e.batchSize {
		if ctx.Err() != nil {
			e.logger.Infow("pick scan canceled", "evaluated", start, "total", len(tasks))
			return nil, nil
		}

		end := start + e.batchSize
		if end > len(tasks) {
			end = len(tasks)
		}

		g := new(errgroup.Group)
		g.SetLimit(e.fanout)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				results[i] = e.evaluate(ctx, filters, tasks[i].cand, tasks[i].direction)
				return nil
			})
		}
		g.Wait()

		// A cancel landing mid-batch stops progress reports too.
		if ctx.Err() != nil {
			e.logger.Infow("pick scan canceled", "evaluated", end, "total", len(tasks))
			return nil, nil
		}
		report(StageEvaluate, end*100/len(tasks))
	}
	if ctx.Err() != nil {
		return nil, nil
	}
	if len(tasks) == 0 {
		report(StageEvaluate, 100)
	}

	report(StageRank, 0)
	picks := make([]models.PickResult, 0, len(tasks))
	for _, r := range results {
		if r != nil {
			r.Strength = e.weights.Strength(r.Recent)
			picks = append(picks, *r)
		}
	}
	SortResults(picks)
	report(StageRank, 100)

	e.logger.Infow("pick scan finished", "candidates", len(tasks), "picks", len(picks))
	return picks, nil
}

func statSelected(stats []string, name string) bool {
	for _, s := range stats {
		if s == name {
			return true
		}
	}
	return false
}

// evaluate runs one candidate through every enabled gate. A nil return means
// the candidate was rejected; any internal error also rejects (fail closed),
// never aborts the scan.
func (e *Engine) evaluate(ctx context.Context, f models.PickFinderFilters, c models.SlateCandidate, direction string) *models.PickResult {
	games, err := e.logs.GameLogs(ctx, c.PlayerID, c.Game.Date, e.lookback)
	if err != nil {
		e.logger.Debugw("game log fetch failed, rejecting candidate",
			"player", c.PlayerID, "stat", c.StatName, "error", err)
		return nil
	}

	baseOpts := FilterOptions{
		ExcludeDNP:      f.ExcludeDNP,
		MinMinutes:      f.MinMinutes,
		CurrentTeamOnly: f.CurrentTeamOnly,
		ThisSeasonOnly:  f.ThisSeasonOnly,
		Window:          f.TimeWindow,
	}
	recent := ApplyFilters(games, baseOpts, c.Game)
	line := ResolveLine(f, c, direction, recent)

	result := &models.PickResult{
		PlayerID:   c.PlayerID,
		PlayerName: c.PlayerName,
		GameID:     c.Game.GameID,
		ModelID:    c.ModelID,
		StatName:   c.StatName,
		Line:       line,
		Direction:  direction,
		Predicted:  c.Predicted,
	}

	// Recent-form gates.
	recentEval := Evaluate(recent, c.StatName, line, direction)
	result.Recent = recentEval.Stats
	if f.HitRateEnabled {
		switch f.HitRateMode {
		case "count":
			if recentEval.Stats.Hits < f.HitRateCount {
				return nil
			}
		default:
			if recentEval.Stats.HitRate < f.HitRateThreshold {
				return nil
			}
		}
		result.Signals = append(result.Signals,
			fmt.Sprintf("%d%% hit rate over %s", recentEval.Stats.HitRate, string(f.TimeWindow)))
	}
	if f.ConsecutiveEnabled {
		if recentEval.Stats.CurrentStreak < f.ConsecutiveHits {
			return nil
		}
		result.Signals = append(result.Signals,
			fmt.Sprintf("%d straight %ss", recentEval.Stats.CurrentStreak, direction))
	}

	// Home/away split sub-sample, own window and thresholds.
	if f.SplitEnabled {
		opts := baseOpts
		opts.HomeAwayOnly = true
		opts.Window = f.SplitTimeWindow
		split := Evaluate(ApplyFilters(games, opts, c.Game), c.StatName, line, direction)
		if split.Stats.SampleSize == 0 ||
			split.Stats.HitRate < f.SplitHitRateThreshold ||
			split.Stats.CurrentStreak < f.SplitConsecutiveHits {
			return nil
		}
		s := split.Stats
		result.Split = &s
		venue := "away"
		if c.Game.HomeSet && c.Game.IsHome {
			venue = "home"
		}
		result.Signals = append(result.Signals,
			fmt.Sprintf("%d%% %s hit rate", s.HitRate, venue))
	}

	// Head-to-head sub-sample.
	if f.H2HEnabled {
		opts := baseOpts
		opts.H2HOnly = true
		opts.Window = f.H2HTimeWindow
		h2h := Evaluate(ApplyFilters(games, opts, c.Game), c.StatName, line, direction)
		if h2h.Stats.SampleSize < f.H2HMinGames || h2h.Stats.HitRate < f.H2HHitRateThreshold {
			return nil
		}
		s := h2h.Stats
		result.H2H = &s
		result.Signals = append(result.Signals,
			fmt.Sprintf("%d-%d vs %s", s.Hits, s.Misses, c.Game.OpponentAbbr))
	}

	if !e.matchupGates(ctx, f, c, direction, result) {
		return nil
	}
	if !agreementGate(f, c, line, direction) {
		return nil
	}
	if f.MinConfidenceEnabled {
		if c.Confidence == nil || c.Confidence.Percent < f.MinConfidence {
			return nil
		}
		result.Confidence = c.Confidence.Percent
	} else if c.Confidence != nil {
		result.Confidence = c.Confidence.Percent
	}
	if !e.reliabilityGates(ctx, f, c, games, result) {
		return nil
	}

	return result
}

// matchupGates applies the defense, team defense and pace gates. An enabled
// gate whose signal reports insufficient data fails closed.
func (e *Engine) matchupGates(ctx context.Context, f models.PickFinderFilters, c models.SlateCandidate, direction string, result *models.PickResult) bool {
	var (
		posDef  models.DefenseSignal
		teamDef models.DefenseSignal
		pace    models.PaceSignal
	)

	g, gctx := errgroup.WithContext(ctx)
	if f.DefenseRankEnabled {
		g.Go(func() error {
			posDef = e.signals.OpponentDefense(gctx, c.StatName, c.Position, c.Game.Season, c.Game.OpponentID)
			return nil
		})
	}
	if f.TeamDefenseRankEnabled {
		g.Go(func() error {
			teamDef = e.signals.OpponentDefense(gctx, c.StatName, "", c.Game.Season, c.Game.OpponentID)
			return nil
		})
	}
	if f.PaceEnabled {
		g.Go(func() error {
			pace = e.signals.Pace(gctx, c.Game)
			return nil
		})
	}
	g.Wait()

	if f.DefenseRankEnabled {
		if !defenseGate(posDef, f.DefenseRankCutoff, direction) {
			return false
		}
		result.Signals = append(result.Signals,
			fmt.Sprintf("%s %s to %s (rank %d/%d)", c.Game.OpponentAbbr, posDef.Direction, c.Position, posDef.Rank, posDef.TeamCount))
	}
	if f.TeamDefenseRankEnabled {
		if !defenseGate(teamDef, f.TeamDefenseRankCutoff, direction) {
			return false
		}
	}
	if f.PaceEnabled {
		if pace.Insufficient {
			return false
		}
		if f.RequireFasterPace {
			if pace.Bucket != models.PaceFaster {
				return false
			}
		} else if pace.Bucket == models.PaceSlower {
			return false
		}
		result.Signals = append(result.Signals, fmt.Sprintf("%s pace matchup", pace.Bucket))
	}
	return true
}

// defenseGate checks the rank cutoff directionally: an over wants the
// opponent among the cutoff-worst defenses of the stat, an under among the
// cutoff-best. Rank 1 allows the least.
func defenseGate(sig models.DefenseSignal, cutoff int, direction string) bool {
	if sig.Insufficient {
		return false
	}
	if cutoff <= 0 {
		return true
	}
	if direction == models.DirectionUnder {
		return sig.Rank <= cutoff
	}
	return sig.Rank > sig.TeamCount-cutoff
}

// agreementGate checks the AI-agreement level against the resolved line.
func agreementGate(f models.PickFinderFilters, c models.SlateCandidate, line float64, direction string) bool {
	var margin float64
	switch f.AgreementLevel {
	case models.AgreementDisabled:
		return true
	case models.AgreementSimple:
		margin = 0
	case models.AgreementStrong:
		margin = 2
	case models.AgreementVeryStrong:
		margin = 4
	}
	if direction == models.DirectionUnder {
		return c.Predicted <= line-margin
	}
	return c.Predicted >= line+margin
}

// reliabilityGates applies minutes, usage and tired-vs-rested checks.
func (e *Engine) reliabilityGates(ctx context.Context, f models.PickFinderFilters, c models.SlateCandidate, games []models.HistoricalGame, result *models.PickResult) bool {
	if f.MinutesFilterEnabled {
		sample := ApplyFilters(games, FilterOptions{ExcludeDNP: true, Window: f.MinutesWindow}, c.Game)
		if len(sample) == 0 {
			return false
		}
		var sum float64
		for _, g := range sample {
			sum += g.MinutesPlayed
		}
		if sum/float64(len(sample)) < f.MinAvgMinutes {
			return false
		}
	}

	if f.UsageRole == models.UsageHigh && c.UsageRate < highUsageFloor {
		return false
	}

	if f.ExcludeTiredVsRested {
		rest := e.signals.RestDays(ctx, c.Game)
		// Unresolvable rest fails closed like every other enabled gate.
		if rest.TeamRestDays == nil || rest.OpponentRestDays == nil {
			return false
		}
		if *rest.TeamRestDays == 0 && *rest.OpponentRestDays >= 2 {
			return false
		}
	}
	return true
}

// FindTrends is the narrower recent-form scan: it shares the slate, filter
// pipeline and hit-rate calculator with FindPicks but skips the matchup, AI
// and reliability gates entirely. Results are ordered by streak length, then
// hit rate, then player name.
func (e *Engine) FindTrends(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error) {
	f := filters.Normalize()

	candidates, err := e.slate.Slate(ctx, date, modelIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve slate: %w", err)
	}

	stats := f.Stats()
	dirs := f.Directions()
	var trends []models.Trend

	for _, c := range candidates {
		if ctx.Err() != nil {
			return nil, nil
		}
		if !statSelected(stats, c.StatName) {
			continue
		}

		games, err := e.logs.GameLogs(ctx, c.PlayerID, c.Game.Date, e.lookback)
		if err != nil {
			continue
		}
		sample := ApplyFilters(games, FilterOptions{
			ExcludeDNP:      f.ExcludeDNP,
			MinMinutes:      f.MinMinutes,
			CurrentTeamOnly: f.CurrentTeamOnly,
			ThisSeasonOnly:  f.ThisSeasonOnly,
			Window:          f.TimeWindow,
		}, c.Game)

		for _, d := range dirs {
			line := ResolveLine(f, c, d, sample)
			eval := Evaluate(sample, c.StatName, line, d)
			if f.HitRateEnabled && eval.Stats.HitRate < f.HitRateThreshold {
				continue
			}
			if f.ConsecutiveEnabled && eval.Stats.CurrentStreak < f.ConsecutiveHits {
				continue
			}
			if eval.Stats.SampleSize == 0 {
				continue
			}
			trends = append(trends, models.Trend{
				PlayerID:   c.PlayerID,
				PlayerName: c.PlayerName,
				GameID:     c.Game.GameID,
				StatName:   c.StatName,
				Line:       line,
				Direction:  d,
				Recent:     eval.Stats,
				Label:      trendLabel(c.StatName, line, d, eval.Stats),
			})
		}
	}

	sort.SliceStable(trends, func(i, j int) bool {
		a, b := trends[i], trends[j]
		if a.Recent.CurrentStreak != b.Recent.CurrentStreak {
			return a.Recent.CurrentStreak > b.Recent.CurrentStreak
		}
		if a.Recent.HitRate != b.Recent.HitRate {
			return a.Recent.HitRate > b.Recent.HitRate
		}
		return a.PlayerName < b.PlayerName
	})
	return trends, nil
}

func trendLabel(statName string, line float64, direction string, hs models.HitStats) string {
	verb := "Over"
	if direction == models.DirectionUnder {
		verb = "Under"
	}
	if hs.CurrentStreak >= 2 {
		return fmt.Sprintf("%s %.1f %s in %d straight", verb, line, StatLabel(statName), hs.CurrentStreak)
	}
	return fmt.Sprintf("%s %.1f %s in %d of last %d", verb, line, StatLabel(statName), hs.Hits, hs.SampleSize)
}
