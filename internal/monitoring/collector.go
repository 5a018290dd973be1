package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/shortreel/acquire-cli/internal/model"
	"github.com/shortreel/acquire-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of acquisition health.
type MetricsSnapshot struct {
	// Run metrics (within lookback window).
	RunsTotal    int     `json:"runs_total"`
	RunsComplete int     `json:"runs_complete"`
	RunsFailed   int     `json:"runs_failed"`
	RunsQueued   int     `json:"runs_queued"`
	RunFailRate  float64 `json:"run_fail_rate"`

	// Asset metrics aggregated over the window's completed runs.
	AssetsFetched     int     `json:"assets_fetched"`
	AssetsUnique      int     `json:"assets_unique"`
	DuplicatesRemoved int     `json:"duplicates_removed"`
	DuplicateRate     float64 `json:"duplicate_rate"`
	StoreErrors       int     `json:"store_errors"`

	// FailedSourceCounts maps source name to the number of runs in which
	// it failed. Persistent offenders float to the top.
	FailedSourceCounts map[string]int `json:"failed_source_counts,omitempty"`

	// AssetsStoredTotal is the all-time asset count in the store, not
	// windowed.
	AssetsStoredTotal int `json:"assets_stored_total"`

	// Metadata.
	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the run store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot of acquisition metrics over the given lookback
// window.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		LookbackHours: lookbackHours,
		CollectedAt:   time.Now().UTC(),
	}

	cutoff := time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)

	runs, err := c.store.ListRuns(ctx, store.RunFilter{
		CreatedAfter: cutoff,
		Limit:        10000,
	})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list runs")
	}

	snap.RunsTotal = len(runs)
	failedSources := make(map[string]int)

	for _, r := range runs {
		switch r.Status {
		case model.RunStatusComplete:
			snap.RunsComplete++
		case model.RunStatusFailed:
			snap.RunsFailed++
		case model.RunStatusQueued:
			snap.RunsQueued++
		}
		if r.Result == nil {
			continue
		}
		snap.AssetsFetched += r.Result.Statistics.TotalFetched
		snap.AssetsUnique += r.Result.Statistics.TotalUnique
		snap.DuplicatesRemoved += r.Result.Statistics.DuplicatesRemoved
		snap.StoreErrors += r.Result.StoreErrors
		for _, name := range r.Result.Statistics.FailedSources {
			failedSources[name]++
		}
	}

	if finished := snap.RunsComplete + snap.RunsFailed; finished > 0 {
		snap.RunFailRate = float64(snap.RunsFailed) / float64(finished)
	}
	if snap.AssetsFetched > 0 {
		snap.DuplicateRate = float64(snap.DuplicatesRemoved) / float64(snap.AssetsFetched)
	}
	if len(failedSources) > 0 {
		snap.FailedSourceCounts = failedSources
	}

	total, err := c.store.CountAssets(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: count assets")
	}
	snap.AssetsStoredTotal = total

	return snap, nil
}
