// Package worker manages long-running pick scans. A scan moves through
// loading -> results (or canceled/failed); progress is sampled by pollers
// rather than pushed. Canceling stops the engine between candidate batches
// and discards partial work.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/engine"
	"github.com/courtsight/picks-api/internal/models"
)

// Prometheus metrics
var (
	scansStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsight_scans_started_total",
		Help: "Total number of pick scans started",
	})

	scansCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsight_scans_completed_total",
		Help: "Total number of pick scans completed with results",
	})

	scansCanceled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsight_scans_canceled_total",
		Help: "Total number of pick scans canceled by the caller",
	})

	scansFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsight_scans_failed_total",
		Help: "Total number of pick scans that failed to resolve the slate",
	})

	scanCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courtsight_scan_cache_hits_total",
		Help: "Total number of scans served from the result cache",
	})

	activeScans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "courtsight_scans_active",
		Help: "Number of scans currently running",
	})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "courtsight_scan_duration_seconds",
		Help:    "Duration of completed pick scans",
		Buckets: prometheus.DefBuckets,
	})
)

// Scan states
const (
	StateLoading  = "loading"
	StateResults  = "results"
	StateCanceled = "canceled"
	StateFailed   = "failed"
)

// finishedScanTTL bounds how long a terminal scan stays pollable.
const finishedScanTTL = time.Hour

// PickScanner runs the actual search. Satisfied by *engine.Engine.
type PickScanner interface {
	FindPicks(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string, onProgress engine.ProgressFunc) ([]models.PickResult, error)
}

// ResultCache stores completed scans keyed by slate and model set.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]models.PickResult, bool)
	Put(ctx context.Context, key string, picks []models.PickResult) error
}

// Scan is the pollable state of one search.
type Scan struct {
	ID         string              `json:"id"`
	State      string              `json:"state"`
	Stage      string              `json:"stage,omitempty"`
	Percent    int                 `json:"percent"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
	Results    []models.PickResult `json:"results,omitempty"`
	Error      string              `json:"error,omitempty"`

	cancel context.CancelFunc
}

// Manager tracks in-flight and recently finished scans.
type Manager struct {
	engine PickScanner
	cache  ResultCache
	logger *zap.SugaredLogger

	mu    sync.RWMutex
	scans map[string]*Scan
}

func NewManager(eng PickScanner, cache ResultCache, logger *zap.Logger) *Manager {
	return &Manager{
		engine: eng,
		cache:  cache,
		logger: logger.Sugar(),
		scans:  make(map[string]*Scan),
	}
}

// Start launches a scan and returns its id immediately. A cached result for
// the same (date, model set) completes the scan without touching the engine;
// the caller cannot tell the difference beyond how fast it finishes.
func (m *Manager) Start(date time.Time, filters models.PickFinderFilters, modelIDs []string, cacheKey string) *Scan {
	ctx, cancel := context.WithCancel(context.Background())
	scan := &Scan{
		ID:        uuid.NewString(),
		State:     StateLoading,
		StartedAt: time.Now().UTC(),
		cancel:    cancel,
	}

	m.mu.Lock()
	m.pruneLocked()
	m.scans[scan.ID] = scan
	m.mu.Unlock()

	scansStarted.Inc()
	activeScans.Inc()

	go m.run(ctx, scan, date, filters, modelIDs, cacheKey)
	return scan
}

func (m *Manager) run(ctx context.Context, scan *Scan, date time.Time, filters models.PickFinderFilters, modelIDs []string, cacheKey string) {
	defer activeScans.Dec()
	start := time.Now()

	if m.cache != nil && cacheKey != "" {
		if picks, ok := m.cache.Get(ctx, cacheKey); ok {
			scanCacheHits.Inc()
			scansCompleted.Inc()
			m.finish(scan, StateResults, picks, "")
			return
		}
	}

	onProgress := func(stage string, percent int) {
		m.mu.Lock()
		scan.Stage = stage
		scan.Percent = percent
		m.mu.Unlock()
	}

	picks, err := m.engine.FindPicks(ctx, date, filters, modelIDs, onProgress)
	switch {
	case err != nil:
		scansFailed.Inc()
		m.logger.Errorw("scan failed", "scan", scan.ID, "error", err)
		m.finish(scan, StateFailed, nil, err.Error())
	case ctx.Err() != nil:
		scansCanceled.Inc()
		m.finish(scan, StateCanceled, nil, "")
	default:
		scansCompleted.Inc()
		scanDuration.Observe(time.Since(start).Seconds())
		if m.cache != nil && cacheKey != "" {
			if cerr := m.cache.Put(context.Background(), cacheKey, picks); cerr != nil {
				m.logger.Warnw("failed to cache scan results", "scan", scan.ID, "error", cerr)
			}
		}
		m.finish(scan, StateResults, picks, "")
	}
}

func (m *Manager) finish(scan *Scan, state string, picks []models.PickResult, errMsg string) {
	now := time.Now().UTC()
	m.mu.Lock()
	scan.State = state
	scan.Results = picks
	scan.Error = errMsg
	scan.FinishedAt = &now
	scan.Percent = 100
	scan.Stage = ""
	m.mu.Unlock()
}

// Get returns a snapshot of one scan, ok=false for an unknown id.
func (m *Manager) Get(id string) (Scan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	scan, ok := m.scans[id]
	if !ok {
		return Scan{}, false
	}
	snap := *scan
	snap.cancel = nil
	return snap, true
}

// Cancel requests cooperative cancellation. The in-flight candidate batch
// finishes; no partial results are retained. Canceling a finished scan is a
// no-op that still reports true for a known id.
func (m *Manager) Cancel(id string) bool {
	m.mu.RLock()
	scan, ok := m.scans[id]
	m.mu.RUnlock()
	if !ok {
		return false
	}
	scan.cancel()
	return true
}

// Drop removes a scan record, the results -> constructor reset. The
// underlying caches are untouched, so a follow-up scan with the same slate
// does not re-fetch anything.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if scan, ok := m.scans[id]; ok {
		scan.cancel()
		delete(m.scans, id)
	}
}

// pruneLocked drops terminal scans past their pollable TTL. Caller holds mu.
func (m *Manager) pruneLocked() {
	cutoff := time.Now().UTC().Add(-finishedScanTTL)
	for id, scan := range m.scans {
		if scan.FinishedAt != nil && scan.FinishedAt.Before(cutoff) {
			delete(m.scans, id)
		}
	}
}
