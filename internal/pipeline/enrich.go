package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shortreel/acquire-cli/internal/model"
)

// EnrichOptions tunes the enrichment stage.
type EnrichOptions struct {
	Concurrency  int
	MaxTags      int
	TagThreshold float64
	NeutralScore float64
}

func (o EnrichOptions) withDefaults() EnrichOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
	if o.MaxTags <= 0 {
		o.MaxTags = 10
	}
	if o.NeutralScore <= 0 {
		o.NeutralScore = 0.85
	}
	return o
}

// Enricher annotates unique assets with tags, a quality score, and
// optionally an embedding vector. It never removes an asset: every failure
// degrades to a documented default.
type Enricher struct {
	tagger   Tagger
	assessor QualityAssessor
	embedder Embedder
	opts     EnrichOptions
}

// NewEnricher builds an enricher. embedder may be nil.
func NewEnricher(tagger Tagger, assessor QualityAssessor, embedder Embedder, opts EnrichOptions) *Enricher {
	return &Enricher{
		tagger:   tagger,
		assessor: assessor,
		embedder: embedder,
		opts:     opts.withDefaults(),
	}
}

// Enrich processes assets independently in parallel and returns the same
// assets annotated, plus embedding vectors keyed by asset id. Input and
// output lengths are always equal.
func (e *Enricher) Enrich(ctx context.Context, assets []model.Asset) ([]model.Asset, map[string][]float32) {
	out := make([]model.Asset, len(assets))
	embeddings := make(map[string][]float32)
	var embMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)

	for i := range assets {
		i := i
		g.Go(func() error {
			asset := assets[i]
			e.enrichOne(gCtx, &asset)

			if e.embedder != nil {
				if vec, err := e.embedder.Embed(gCtx, &asset); err == nil {
					embMu.Lock()
					embeddings[asset.ID] = vec
					embMu.Unlock()
				} else {
					zap.L().Debug("enrich: embedding failed",
						zap.String("asset", asset.ID),
						zap.Error(err),
					)
				}
			}

			out[i] = asset
			return nil
		})
	}
	_ = g.Wait()

	return out, embeddings
}

func (e *Enricher) enrichOne(ctx context.Context, asset *model.Asset) {
	tags, err := e.tagger.GenerateTags(ctx, asset, e.opts.MaxTags, e.opts.TagThreshold)
	if err != nil || len(tags) == 0 {
		if err != nil {
			zap.L().Warn("enrich: tagging failed, using fallback tags",
				zap.String("asset", asset.ID),
				zap.Error(err),
			)
		}
		tags = model.FallbackTags(asset.MediaKind)
	}
	if len(tags) > e.opts.MaxTags {
		tags = tags[:e.opts.MaxTags]
	}
	asset.Tags = tags

	report, err := e.assessor.AssessQuality(ctx, asset)
	if err != nil || report == nil {
		if err != nil {
			zap.L().Warn("enrich: quality assessment failed, using neutral score",
				zap.String("asset", asset.ID),
				zap.Error(err),
			)
		}
		asset.QualityScore = e.opts.NeutralScore
		return
	}

	asset.QualityScore = report.CompositeScore
	if report.TechnicalScore > 0 {
		asset.SetMeta("quality_technical", report.TechnicalScore)
	}
	if report.VisualScore > 0 {
		asset.SetMeta("quality_visual", report.VisualScore)
	}
	if report.AudioScore > 0 {
		asset.SetMeta("quality_audio", report.AudioScore)
	}
	if len(report.Issues) > 0 {
		asset.SetMeta("quality_issues", report.Issues)
	}
}
