package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/shortreel/acquire-cli/internal/config"
	"github.com/shortreel/acquire-cli/internal/connector"
	"github.com/shortreel/acquire-cli/internal/model"
	"github.com/shortreel/acquire-cli/internal/registry"
	"github.com/shortreel/acquire-cli/internal/store"
)

// Pipeline drives one acquisition run: fetch, dedup, enrich, store.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	sources  *registry.Registry
	orch     *Orchestrator
	tagger   Tagger
	assessor QualityAssessor
	embedder Embedder
	seed     map[string]string
}

// RunOutput is what a completed (or partially failed) run hands back to the
// caller: the surviving assets plus the durable summary.
type RunOutput struct {
	RunID  string
	Assets []model.Asset
	Result model.RunResult
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	sources *registry.Registry,
	connectors *connector.Registry,
	tagger Tagger,
	assessor QualityAssessor,
	embedder Embedder,
) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		sources:  sources,
		orch:     NewOrchestrator(connectors, cfg.Acquire.MaxConcurrentFetches),
		tagger:   tagger,
		assessor: assessor,
		embedder: embedder,
	}
}

// WithFingerprintSeed pre-loads the dedup registry, so assets already seen in
// earlier runs are rejected as duplicates in this one.
func (p *Pipeline) WithFingerprintSeed(seed map[string]string) *Pipeline {
	p.seed = seed
	return p
}

// Run executes the full acquisition pipeline once.
func (p *Pipeline) Run(ctx context.Context) (*RunOutput, error) {
	if p.cfg.Acquire.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.Acquire.TimeoutSecs)*time.Second)
		defer cancel()
	}

	log := zap.L()
	log.Info("pipeline: starting acquisition run")

	run, err := p.store.CreateRun(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}

	out := &RunOutput{RunID: run.ID}

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) *model.PhaseResult {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		if fnErr != nil {
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		} else {
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		out.Result.Phases = append(out.Result.Phases, *phaseResult)
		return phaseResult
	}

	// ===== Phase 1: Fetch fan-out =====
	setStatus(model.RunStatusFetching)
	var fetched *FetchResult
	trackPhase("fetch", func() (*model.PhaseResult, error) {
		fetched = p.orch.Run(ctx, p.sources.All())
		return &model.PhaseResult{
			Metadata: map[string]any{
				"fetched":        len(fetched.Assets),
				"failed_sources": fetched.FailedSources,
				"per_source":     fetched.PerSource,
			},
		}, nil
	})

	// Zero assets is not an error: even a run where every source failed
	// completes with empty statistics, and callers read FailedSources to
	// tell partial coverage from a dry run.

	// ===== Phase 2: Dedup =====
	setStatus(model.RunStatusDeduping)
	dedup := NewDeduplicatorWithSeed(
		p.cfg.Dedup.SimilarityThreshold,
		p.cfg.Dedup.FingerprintWorkers,
		p.seed,
	)
	var unique []model.Asset
	trackPhase("dedup", func() (*model.PhaseResult, error) {
		unique = dedup.Dedup(ctx, fetched.Assets)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"unique":    len(unique),
				"discarded": len(dedup.Discarded()),
			},
		}, nil
	})

	// ===== Phase 3: Enrich =====
	setStatus(model.RunStatusEnriching)
	enricher := NewEnricher(p.tagger, p.assessor, p.embedder, EnrichOptions{
		Concurrency:  p.cfg.Enrich.Concurrency,
		MaxTags:      p.cfg.Enrich.MaxTags,
		TagThreshold: p.cfg.Enrich.TagThreshold,
		NeutralScore: p.cfg.Enrich.NeutralQualityScore,
	})
	var embeddings map[string][]float32
	trackPhase("enrich", func() (*model.PhaseResult, error) {
		unique, embeddings = enricher.Enrich(ctx, unique)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"enriched":   len(unique),
				"embeddings": len(embeddings),
			},
		}, nil
	})

	// ===== Phase 4: Store =====
	// Storage failures are recorded, never fatal: the caller still gets the
	// surviving assets and their statistics.
	setStatus(model.RunStatusStoring)
	trackPhase("store", func() (*model.PhaseResult, error) {
		storeResult, storeErr := p.store.StoreAssets(ctx, run.ID, unique, embeddings)
		out.Result.Stored = storeResult.Stored
		out.Result.StoreDuplicates = storeResult.Duplicates
		out.Result.StoreErrors = storeResult.Errors
		if storeErr != nil {
			return &model.PhaseResult{
				Metadata: map[string]any{"stored": storeResult.Stored},
			}, storeErr
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"stored":     storeResult.Stored,
				"duplicates": storeResult.Duplicates,
				"errors":     storeResult.Errors,
			},
		}, nil
	})

	// ===== Phase 5: Statistics =====
	out.Assets = unique
	out.Result.Statistics = BuildStatistics(len(fetched.Assets), unique, fetched.FailedSources)
	p.finish(ctx, run.ID, out, model.RunStatusComplete)

	log.Info("pipeline: run complete",
		zap.String("run", run.ID),
		zap.Int("fetched", out.Result.Statistics.TotalFetched),
		zap.Int("unique", out.Result.Statistics.TotalUnique),
		zap.Int("duplicates_removed", out.Result.Statistics.DuplicatesRemoved),
		zap.Strings("failed_sources", out.Result.Statistics.FailedSources),
	)
	return out, nil
}

func (p *Pipeline) finish(ctx context.Context, runID string, out *RunOutput, status model.RunStatus) {
	if err := p.store.UpdateRunResult(ctx, runID, &out.Result); err != nil {
		zap.L().Warn("pipeline: failed to persist run result", zap.Error(err))
	}
	if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
		zap.L().Warn("pipeline: failed to update final status", zap.Error(err))
	}
}
