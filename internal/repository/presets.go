package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/models"
)

// PresetStore persists named filter configurations as opaque JSON blobs in
// Postgres. Loading merges the stored blob over the current defaults, so a
// preset saved before a new filter field existed still loads with that field
// defaulted instead of zeroed.
type PresetStore struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewPresetStore(pg PgPool, logger *zap.SugaredLogger) *PresetStore {
	return &PresetStore{pg: pg, logger: logger}
}

// Preset is one saved configuration.
type Preset struct {
	Name      string                   `json:"name"`
	Filters   models.PickFinderFilters `json:"filters"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Save upserts a preset blob.
func (s *PresetStore) Save(ctx context.Context, name string, filters models.PickFinderFilters) error {
	blob, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("marshal preset: %w", err)
	}
	_, err = s.pg.Exec(ctx, `
		INSERT INTO filter_presets (name, config, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET config = EXCLUDED.config, updated_at = NOW()
	`, name, blob)
	if err != nil {
		return fmt.Errorf("save preset %q: %w", name, err)
	}
	return nil
}

// Load fetches one preset merged over defaults.
func (s *PresetStore) Load(ctx context.Context, name string) (*Preset, error) {
	var blob []byte
	var updatedAt time.Time
	err := s.pg.QueryRow(ctx,
		`SELECT config, updated_at FROM filter_presets WHERE name = $1`, name,
	).Scan(&blob, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("load preset %q: %w", name, err)
	}

	filters, err := MergeFilters(blob)
	if err != nil {
		return nil, fmt.Errorf("decode preset %q: %w", name, err)
	}
	return &Preset{Name: name, Filters: filters, UpdatedAt: updatedAt}, nil
}

// List returns every saved preset, newest first, each merged over defaults.
// Blobs that no longer decode are skipped rather than failing the listing.
func (s *PresetStore) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.pg.Query(ctx,
		`SELECT name, config, updated_at FROM filter_presets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	presets := []Preset{}
	for rows.Next() {
		var name string
		var blob []byte
		var updatedAt time.Time
		if err := rows.Scan(&name, &blob, &updatedAt); err != nil {
			continue
		}
		filters, err := MergeFilters(blob)
		if err != nil {
			s.logger.Warnw("skipping undecodable preset", "name", name, "error", err)
			continue
		}
		presets = append(presets, Preset{Name: name, Filters: filters, UpdatedAt: updatedAt})
	}
	return presets, rows.Err()
}

// Delete removes a preset by name.
func (s *PresetStore) Delete(ctx context.Context, name string) error {
	_, err := s.pg.Exec(ctx, `DELETE FROM filter_presets WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	return nil
}

// MergeFilters decodes a stored blob over the default configuration: fields
// present in the blob win, missing fields keep their defaults. The result is
// normalized so stale presets can never violate threshold bounds.
func MergeFilters(blob []byte) (models.PickFinderFilters, error) {
	filters := models.DefaultFilters()
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &filters); err != nil {
			return models.PickFinderFilters{}, err
		}
	}
	return filters.Normalize(), nil
}
