package pipeline

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shortreel/acquire-cli/internal/fingerprint"
	"github.com/shortreel/acquire-cli/internal/model"
)

// DuplicateRecord keeps one discarded asset, excluded from the output set
// but retained whole so it stays inspectable for debugging and statistics.
type DuplicateRecord struct {
	Asset       model.Asset `json:"asset"`
	DuplicateOf string      `json:"duplicate_of"`
	Similarity  float64     `json:"similarity"`
}

type acceptedEntry struct {
	fingerprint string
	assetID     string
}

// Deduplicator collapses near-duplicate assets against a running registry of
// accepted fingerprints. First-seen wins: the earlier asset in the input
// order is canonical. The registry belongs to one run; it is never shared.
type Deduplicator struct {
	threshold float64
	workers   int
	accepted  []acceptedEntry
	discarded []DuplicateRecord
}

// NewDeduplicator creates a deduplicator with an empty registry.
func NewDeduplicator(threshold float64, workers int) *Deduplicator {
	if threshold <= 0 {
		threshold = 0.9
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Deduplicator{threshold: threshold, workers: workers}
}

// NewDeduplicatorWithSeed pre-populates the registry so a caller can carry
// accepted fingerprints across runs.
func NewDeduplicatorWithSeed(threshold float64, workers int, seed map[string]string) *Deduplicator {
	d := NewDeduplicator(threshold, workers)
	for assetID, fp := range seed {
		d.accepted = append(d.accepted, acceptedEntry{fingerprint: fp, assetID: assetID})
	}
	return d
}

// Dedup filters the candidate list down to unique assets, preserving
// relative order. Fingerprint computation is parallel; the registry scan is
// a single sequential pass, the only stage with shared mutable state.
func (d *Deduplicator) Dedup(ctx context.Context, assets []model.Asset) []model.Asset {
	d.computeFingerprints(ctx, assets)

	unique := make([]model.Asset, 0, len(assets))
	for i := range assets {
		asset := &assets[i]

		// An asset with no computable fingerprint is unique by default and
		// never enters the registry.
		if asset.Fingerprint == "" {
			unique = append(unique, *asset)
			continue
		}

		if match, sim := d.findDuplicate(asset.Fingerprint); match != nil {
			d.discarded = append(d.discarded, DuplicateRecord{
				Asset:       *asset,
				DuplicateOf: match.assetID,
				Similarity:  sim,
			})
			zap.L().Debug("dedup: discarding near-duplicate",
				zap.String("asset", asset.ID),
				zap.String("duplicate_of", match.assetID),
				zap.Float64("similarity", sim),
			)
			continue
		}

		d.accepted = append(d.accepted, acceptedEntry{fingerprint: asset.Fingerprint, assetID: asset.ID})
		unique = append(unique, *asset)
	}
	return unique
}

// Discarded returns the duplicates removed so far this run.
func (d *Deduplicator) Discarded() []DuplicateRecord {
	return d.discarded
}

// RegistrySize returns the number of accepted fingerprints.
func (d *Deduplicator) RegistrySize() int {
	return len(d.accepted)
}

// findDuplicate scans the whole registry linearly. O(n) per asset is a
// deliberate tradeoff at catalog scale; a bucketed index may replace it
// without changing the similarity contract.
func (d *Deduplicator) findDuplicate(fp string) (*acceptedEntry, float64) {
	for i := range d.accepted {
		if sim := fingerprint.Similarity(fp, d.accepted[i].fingerprint); sim > d.threshold {
			return &d.accepted[i], sim
		}
	}
	return nil, 0
}

// computeFingerprints fills in missing fingerprints in parallel. Assets
// whose perceptual fingerprint fails fall back to a URL hash, degrading to
// exact-match detection; assets with nothing to hash stay unfingerprinted.
func (d *Deduplicator) computeFingerprints(ctx context.Context, assets []model.Asset) {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i := range assets {
		asset := &assets[i]
		if asset.Fingerprint != "" {
			continue
		}
		g.Go(func() error {
			fp, err := fingerprint.Compute(asset)
			if err != nil {
				if asset.URL == "" {
					zap.L().Warn("dedup: asset has no fingerprintable content, treating as unique",
						zap.String("asset", asset.ID),
					)
					return nil
				}
				zap.L().Debug("dedup: fingerprint failed, falling back to url hash",
					zap.String("asset", asset.ID),
					zap.Error(err),
				)
				fp = fingerprint.URLHash(asset.URL)
			}
			asset.Fingerprint = fp
			return nil
		})
	}
	_ = g.Wait()
}
