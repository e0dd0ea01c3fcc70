package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/engine"
	"github.com/courtsight/picks-api/internal/models"
	"github.com/courtsight/picks-api/internal/repository"
	"github.com/courtsight/picks-api/internal/worker"
)

// Mocks

type MockScanner struct {
	Picks []models.PickResult
	Err   error
}

func (m *MockScanner) FindPicks(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string, onProgress engine.ProgressFunc) ([]models.PickResult, error) {
	return m.Picks, m.Err
}

type MockTrends struct {
	TrendsFunc func(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error)
}

func (m *MockTrends) FindTrends(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error) {
	if m.TrendsFunc != nil {
		return m.TrendsFunc(ctx, date, filters, modelIDs)
	}
	return nil, nil
}

type MockGameLogs struct {
	Games []models.HistoricalGame
	Err   error
}

func (m *MockGameLogs) GameLogs(ctx context.Context, playerID string, asOf time.Time, limit int) ([]models.HistoricalGame, error) {
	return m.Games, m.Err
}

type MockSignals struct {
	Defense models.DefenseSignal
	Absence models.AbsenceSignal
	Rest    models.RestSignal
	Playoff models.PlayoffSignal
	PaceSig models.PaceSignal
}

func (m *MockSignals) OpponentDefense(ctx context.Context, statName, position, season, opponentID string) models.DefenseSignal {
	return m.Defense
}

func (m *MockSignals) StarAbsence(ctx context.Context, playerID, statName string, cx models.GameContext, games []models.HistoricalGame) models.AbsenceSignal {
	return m.Absence
}

func (m *MockSignals) RestDays(ctx context.Context, cx models.GameContext) models.RestSignal {
	return m.Rest
}

func (m *MockSignals) PlayoffExperience(statName string, cx models.GameContext, games []models.HistoricalGame) models.PlayoffSignal {
	return m.Playoff
}

func (m *MockSignals) Pace(ctx context.Context, cx models.GameContext) models.PaceSignal {
	return m.PaceSig
}

type MockPresets struct {
	SaveFunc   func(ctx context.Context, name string, filters models.PickFinderFilters) error
	LoadFunc   func(ctx context.Context, name string) (*repository.Preset, error)
	ListFunc   func(ctx context.Context) ([]repository.Preset, error)
	DeleteFunc func(ctx context.Context, name string) error
}

func (m *MockPresets) Save(ctx context.Context, name string, filters models.PickFinderFilters) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, name, filters)
	}
	return nil
}

func (m *MockPresets) Load(ctx context.Context, name string) (*repository.Preset, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, name)
	}
	return nil, errors.New("not found")
}

func (m *MockPresets) List(ctx context.Context) ([]repository.Preset, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []repository.Preset{}, nil
}

func (m *MockPresets) Delete(ctx context.Context, name string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, name)
	}
	return nil
}

func testHandler(t *testing.T, cfg Config) *Handler {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Scans == nil {
		cfg.Scans = worker.NewManager(&MockScanner{}, nil, zap.NewNop())
	}
	if cfg.Trends == nil {
		cfg.Trends = &MockTrends{}
	}
	if cfg.GameLogs == nil {
		cfg.GameLogs = &MockGameLogs{}
	}
	if cfg.Signals == nil {
		cfg.Signals = &MockSignals{}
	}
	if cfg.Presets == nil {
		cfg.Presets = &MockPresets{}
	}
	return New(cfg)
}

// Tests

func TestStartPickSearch_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{
			name:           "Valid Request",
			body:           `{"date": "2026-02-01", "model_ids": ["m1"]}`,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "Valid Request With Filters",
			body:           `{"date": "2026-02-01", "model_ids": ["m1", "m2"], "filters": {"hit_rate_enabled": true, "hit_rate_threshold": 70}}`,
			expectedStatus: http.StatusAccepted,
		},
		{
			name:           "Invalid JSON",
			body:           `{not json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Date",
			body:           `{"model_ids": ["m1"]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Bad Date Format",
			body:           `{"date": "02/01/2026", "model_ids": ["m1"]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Empty Model List",
			body:           `{"date": "2026-02-01", "model_ids": []}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(t, Config{})

			req := httptest.NewRequest("POST", "/api/v1/pickfinder/search", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.StartPickSearch(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusAccepted {
				var resp models.StartScanResponse
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("bad response body: %v", err)
				}
				if resp.ScanID == "" {
					t.Error("expected a scan id")
				}
			}
		})
	}
}

func TestScanLifecycle(t *testing.T) {
	scans := worker.NewManager(&MockScanner{Picks: []models.PickResult{{PlayerName: "Alice"}}}, nil, zap.NewNop())
	h := testHandler(t, Config{Scans: scans})

	r := chi.NewRouter()
	r.Post("/pickfinder/search", h.StartPickSearch)
	r.Get("/pickfinder/scans/{scanId}", h.GetScan)
	r.Delete("/pickfinder/scans/{scanId}", h.CancelScan)

	// Start
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/pickfinder/search",
		strings.NewReader(`{"date": "2026-02-01", "model_ids": ["m1"]}`)))
	if w.Code != http.StatusAccepted {
		t.Fatalf("start: expected 202, got %d", w.Code)
	}
	var started models.StartScanResponse
	json.Unmarshal(w.Body.Bytes(), &started)

	// Poll until the scan finishes
	deadline := time.Now().Add(2 * time.Second)
	var scan worker.Scan
	for time.Now().Before(deadline) {
		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/pickfinder/scans/"+started.ScanID, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("poll: expected 200, got %d", w.Code)
		}
		json.Unmarshal(w.Body.Bytes(), &scan)
		if scan.State != worker.StateLoading {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if scan.State != worker.StateResults {
		t.Fatalf("scan state = %s, want results", scan.State)
	}
	if len(scan.Results) != 1 || scan.Results[0].PlayerName != "Alice" {
		t.Errorf("scan results = %+v", scan.Results)
	}

	// Cancel discards the record
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/pickfinder/scans/"+started.ScanID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/pickfinder/scans/"+started.ScanID, nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("poll after cancel: expected 404, got %d", w.Code)
	}
}

func TestGetScan_Unknown(t *testing.T) {
	h := testHandler(t, Config{})

	r := chi.NewRouter()
	r.Get("/pickfinder/scans/{scanId}", h.GetScan)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/pickfinder/scans/no-such-scan", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetTrends_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		mockTrends     func(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error)
		expectedStatus int
	}{
		{
			name:  "Happy Path",
			query: "date=2026-02-01&models=m1,m2&min_streak=5",
			mockTrends: func(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error) {
				if len(modelIDs) != 2 {
					return nil, errors.New("model ids not parsed")
				}
				if !filters.ConsecutiveEnabled || filters.ConsecutiveHits != 5 {
					return nil, errors.New("min_streak not applied")
				}
				return []models.Trend{{PlayerName: "Alice"}}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Date",
			query:          "models=m1",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Models",
			query:          "date=2026-02-01",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "Scan Failure",
			query: "date=2026-02-01&models=m1",
			mockTrends: func(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error) {
				return nil, errors.New("clickhouse down")
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHandler(t, Config{Trends: &MockTrends{TrendsFunc: tt.mockTrends}})

			req := httptest.NewRequest("GET", "/api/v1/trends?"+tt.query, nil)
			w := httptest.NewRecorder()

			h.GetTrends(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetTrends_EmptyIsArray(t *testing.T) {
	h := testHandler(t, Config{})

	req := httptest.NewRequest("GET", "/api/v1/trends?date=2026-02-01&models=m1", nil)
	w := httptest.NewRecorder()
	h.GetTrends(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty trends must encode as [], got %s", body)
	}
}

func TestGetPlayerGameLog(t *testing.T) {
	games := []models.HistoricalGame{
		{GameID: "g1", Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC), MinutesPlayed: 30, OpponentAbbr: "BOS"},
		{GameID: "g2", Date: time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), MinutesPlayed: 0, OpponentAbbr: "NYK"},
	}
	h := testHandler(t, Config{GameLogs: &MockGameLogs{Games: games}})

	r := chi.NewRouter()
	r.Get("/players/{playerId}/games", h.GetPlayerGameLog)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/players/p1/games?exclude_dnp=true", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var out []models.HistoricalGame
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(out) != 1 || out[0].GameID != "g1" {
		t.Errorf("exclude_dnp must drop zero-minute games, got %+v", out)
	}
}

func TestGetPlayerGameLog_FetchError(t *testing.T) {
	h := testHandler(t, Config{GameLogs: &MockGameLogs{Err: errors.New("clickhouse down")}})

	r := chi.NewRouter()
	r.Get("/players/{playerId}/games", h.GetPlayerGameLog)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/players/p1/games", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

func TestGetMatchupReport_TableDriven(t *testing.T) {
	base := "stat=points&date=2026-02-01&team=t-lal&opponent=t-bos&season=2025-26"
	tests := []struct {
		name           string
		query          string
		expectedStatus int
	}{
		{"Happy Path", base, http.StatusOK},
		{"Unknown Stat", "stat=fantasyScore&date=2026-02-01&team=t-lal&opponent=t-bos&season=2025-26", http.StatusBadRequest},
		{"Bad Date", "stat=points&date=yesterday&team=t-lal&opponent=t-bos&season=2025-26", http.StatusBadRequest},
		{"Missing Opponent", "stat=points&date=2026-02-01&team=t-lal&season=2025-26", http.StatusBadRequest},
	}

	signals := &MockSignals{
		Defense: models.DefenseSignal{Rank: 28, TeamCount: 30, Direction: "allows more"},
		PaceSig: models.PaceSignal{Bucket: models.PaceFaster, PctDiff: 3.1},
		Absence: models.AbsenceSignal{Insufficient: true, AbsentStars: []string{"Star Guard"}},
	}
	h := testHandler(t, Config{Signals: signals})

	r := chi.NewRouter()
	r.Get("/players/{playerId}/matchup", h.GetMatchupReport)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/players/p1/matchup?"+tt.query, nil))
			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedStatus == http.StatusOK {
				var report models.MatchupReport
				if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
					t.Fatalf("bad response body: %v", err)
				}
				if report.Defense.Rank != 28 || report.Pace.Bucket != models.PaceFaster {
					t.Errorf("report = %+v, want the aggregator outputs passed through", report)
				}
				if !report.Absence.Insufficient {
					t.Error("insufficient absence data must stay flagged, not zeroed")
				}
			}
		})
	}
}

func TestSavePreset_TableDriven(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		saveErr        error
		expectedStatus int
	}{
		{
			name:           "Valid",
			body:           `{"name": "my hot hand", "filters": {"consecutive_enabled": true, "consecutive_hits": 3}}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Missing Name",
			body:           `{"filters": {}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Store Failure",
			body:           `{"name": "doomed", "filters": {}}`,
			saveErr:        errors.New("postgres down"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presets := &MockPresets{SaveFunc: func(ctx context.Context, name string, filters models.PickFinderFilters) error {
				return tt.saveErr
			}}
			h := testHandler(t, Config{Presets: presets})

			req := httptest.NewRequest("PUT", "/api/v1/presets", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.SavePreset(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	h := testHandler(t, Config{})

	r := chi.NewRouter()
	r.Get("/presets/{name}", h.GetPreset)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/presets/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h := testHandler(t, Config{})

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
