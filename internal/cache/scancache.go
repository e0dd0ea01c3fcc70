// Package cache implements the scan result cache: completed pick scans are
// stored in Redis keyed by (slate date, sorted model set) so reopening the
// same search does not rerun the full slate evaluation. Callers cannot tell
// a cache hit from a live scan.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/courtsight/picks-api/internal/models"
)

// RetentionUnlimited disables expiry-based eviction.
const RetentionUnlimited = 0

// ValidRetentionDays are the selectable retention windows, in days.
var ValidRetentionDays = []int{7, 14, 30, 60, 90, RetentionUnlimited}

type ScanCache struct {
	client    *redis.Client
	retention time.Duration // 0 = unlimited
	logger    *zap.SugaredLogger
}

// NewScanCache builds a cache with the given retention in days; values
// outside ValidRetentionDays fall back to 30.
func NewScanCache(client *redis.Client, retentionDays int, logger *zap.SugaredLogger) *ScanCache {
	valid := false
	for _, d := range ValidRetentionDays {
		if retentionDays == d {
			valid = true
			break
		}
	}
	if !valid {
		logger.Warnw("invalid cache retention, using 30 days", "requested", retentionDays)
		retentionDays = 30
	}
	return &ScanCache{
		client:    client,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// Key builds the canonical cache key: the model list is sorted so the same
// selection always maps to the same entry regardless of request order.
func Key(date time.Time, modelIDs []string) string {
	sorted := make([]string, len(modelIDs))
	copy(sorted, modelIDs)
	sort.Strings(sorted)
	return fmt.Sprintf("pickscan:%s:%s", date.Format("2006-01-02"), strings.Join(sorted, ","))
}

type entry struct {
	Picks    []models.PickResult `json:"picks"`
	CachedAt time.Time           `json:"cached_at"`
}

// Put stores a completed scan's results.
func (c *ScanCache) Put(ctx context.Context, key string, picks []models.PickResult) error {
	data, err := json.Marshal(entry{Picks: picks, CachedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal scan cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.retention).Err(); err != nil {
		return fmt.Errorf("store scan cache entry: %w", err)
	}
	c.logger.Debugw("scan cached", "key", key, "picks", len(picks))
	return nil
}

// Get returns the cached results for a key, ok=false on a miss. Redis errors
// are logged and reported as misses so a cache outage never blocks a scan.
func (c *ScanCache) Get(ctx context.Context, key string) ([]models.PickResult, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warnw("scan cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warnw("dropping undecodable scan cache entry", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil, false
	}
	return e.Picks, true
}

// Invalidate removes one entry.
func (c *ScanCache) Invalidate(ctx context.Context, key string) {
	c.client.Del(ctx, key)
}

// Sweep deletes entries whose slate date fell out of the retention window.
// TTLs already bound entry age; the sweep additionally drops entries for
// stale dates that were re-written recently (each Put refreshes the TTL).
// Run on a schedule.
func (c *ScanCache) Sweep(ctx context.Context) (int, error) {
	if c.retention == RetentionUnlimited {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-c.retention)

	var removed int
	iter := c.client.Scan(ctx, 0, "pickscan:*", 500).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		parts := strings.SplitN(key, ":", 3)
		if len(parts) < 3 {
			continue
		}
		date, err := time.Parse("2006-01-02", parts[1])
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			if err := c.client.Del(ctx, key).Err(); err == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("sweep scan cache: %w", err)
	}
	if removed > 0 {
		c.logger.Infow("scan cache swept", "removed", removed)
	}
	return removed, nil
}
