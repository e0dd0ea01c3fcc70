package handlers

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/engine"
	"github.com/courtsight/picks-api/internal/models"
	"github.com/courtsight/picks-api/internal/repository"
	"github.com/courtsight/picks-api/internal/worker"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// TrendFinder is the narrower recent-form scan. Satisfied by *engine.Engine.
type TrendFinder interface {
	FindTrends(ctx context.Context, date time.Time, filters models.PickFinderFilters, modelIDs []string) ([]models.Trend, error)
}

// MatchupSignals exposes the signal aggregators. Satisfied by
// *engine.Signals.
type MatchupSignals interface {
	OpponentDefense(ctx context.Context, statName, position, season, opponentID string) models.DefenseSignal
	StarAbsence(ctx context.Context, playerID, statName string, cx models.GameContext, games []models.HistoricalGame) models.AbsenceSignal
	RestDays(ctx context.Context, cx models.GameContext) models.RestSignal
	PlayoffExperience(statName string, cx models.GameContext, games []models.HistoricalGame) models.PlayoffSignal
	Pace(ctx context.Context, cx models.GameContext) models.PaceSignal
}

// PresetStore persists named filter configurations.
type PresetStore interface {
	Save(ctx context.Context, name string, filters models.PickFinderFilters) error
	Load(ctx context.Context, name string) (*repository.Preset, error)
	List(ctx context.Context) ([]repository.Preset, error)
	Delete(ctx context.Context, name string) error
}

type Config struct {
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger
	// Services
	Scans    *worker.Manager
	Trends   TrendFinder
	GameLogs engine.GameLogSource
	Signals  MatchupSignals
	Presets  PresetStore
}

type Handler struct {
	pg        *pgxpool.Pool
	ch        driver.Conn
	redis     *redis.Client
	logger    *zap.SugaredLogger
	validator *validator.Validate
	scans     *worker.Manager
	trends    TrendFinder
	gameLogs  engine.GameLogSource
	signals   MatchupSignals
	presets   PresetStore
}

func New(cfg Config) *Handler {
	return &Handler{
		pg:        cfg.Postgres,
		ch:        cfg.ClickHouse,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
		scans:     cfg.Scans,
		trends:    cfg.Trends,
		gameLogs:  cfg.GameLogs,
		signals:   cfg.Signals,
		presets:   cfg.Presets,
	}
}
