package pipeline

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/shortreel/acquire-cli/internal/connector"
	"github.com/shortreel/acquire-cli/internal/model"
)

// FetchResult is the flattened output of one acquisition fan-out.
type FetchResult struct {
	// Assets is the concatenation of all successful task results. Order is
	// task completion order and carries no guarantee beyond "best-effort
	// first-seen" for the dedup stage downstream.
	Assets []model.Asset

	// FailedSources lists sources where at least one category task failed,
	// sorted, each name at most once.
	FailedSources []string

	// PerSource counts fetched assets by source name.
	PerSource map[string]int
}

// Orchestrator fans the source catalog out into concurrent per-category
// fetch tasks with per-source throttling and per-task failure isolation.
type Orchestrator struct {
	connectors    *connector.Registry
	maxConcurrent int
}

// NewOrchestrator creates an orchestrator over the given connector registry.
// maxConcurrent bounds in-flight fetch tasks across all sources.
func NewOrchestrator(connectors *connector.Registry, maxConcurrent int) *Orchestrator {
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	return &Orchestrator{connectors: connectors, maxConcurrent: maxConcurrent}
}

// Run fetches every (usable source, category) pair concurrently. A failing
// task records its source in FailedSources and contributes zero assets;
// sibling tasks are never cancelled. Sources that require auth without a
// resolved credential are skipped entirely, not failed.
func (o *Orchestrator) Run(ctx context.Context, sources []model.SourceDescriptor) *FetchResult {
	result := &FetchResult{PerSource: make(map[string]int)}

	var mu sync.Mutex
	failed := make(map[string]bool)

	// errgroup for structured shutdown only; task errors are swallowed at
	// the task boundary so one bad source never aborts the batch.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	for _, src := range sources {
		if !src.Usable() {
			zap.L().Info("orchestrator: skipping source without credential",
				zap.String("source", src.Name),
			)
			continue
		}

		conn, err := o.connectors.For(src.Family)
		if err != nil {
			zap.L().Warn("orchestrator: no connector for source",
				zap.String("source", src.Name),
				zap.String("family", string(src.Family)),
			)
			mu.Lock()
			failed[src.Name] = true
			mu.Unlock()
			continue
		}

		// One limiter per source: categories of the same source fetch
		// concurrently but space their requests by the source's delay.
		limiter := sourceLimiter(src)

		for _, category := range src.Categories {
			src, category := src, category
			g.Go(func() error {
				start := time.Now()
				assets, fetchErr := o.fetchOne(gCtx, conn, limiter, src, category)

				mu.Lock()
				defer mu.Unlock()
				if fetchErr != nil {
					failed[src.Name] = true
					zap.L().Warn("orchestrator: fetch task failed",
						zap.String("source", src.Name),
						zap.String("category", category),
						zap.Duration("elapsed", time.Since(start)),
						zap.Error(fetchErr),
					)
					return nil
				}
				result.Assets = append(result.Assets, assets...)
				result.PerSource[src.Name] += len(assets)
				zap.L().Debug("orchestrator: fetch task complete",
					zap.String("source", src.Name),
					zap.String("category", category),
					zap.Int("assets", len(assets)),
					zap.Duration("elapsed", time.Since(start)),
				)
				return nil
			})
		}
	}

	_ = g.Wait()

	for name := range failed {
		result.FailedSources = append(result.FailedSources, name)
	}
	sort.Strings(result.FailedSources)

	zap.L().Info("orchestrator: fan-out complete",
		zap.Int("assets", len(result.Assets)),
		zap.Int("failed_sources", len(result.FailedSources)),
	)
	return result
}

func (o *Orchestrator) fetchOne(ctx context.Context, conn connector.Connector, limiter *rate.Limiter, src model.SourceDescriptor, category string) ([]model.Asset, error) {
	// Honor the per-source inter-request delay. A caller timeout firing
	// while waiting surfaces as a task failure, same as a fetch error.
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return conn.Fetch(ctx, src, category, src.MaxItemsPerCategory)
}

func sourceLimiter(src model.SourceDescriptor) *rate.Limiter {
	if src.RateLimitDelaySeconds <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Duration(src.RateLimitDelaySeconds*float64(time.Second))), 1)
}
