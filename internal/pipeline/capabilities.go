package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/shortreel/acquire-cli/internal/model"
	"github.com/shortreel/acquire-cli/pkg/claudetag"
	"github.com/shortreel/acquire-cli/pkg/mediainsight"
)

// Tagger produces semantic tags for an asset.
type Tagger interface {
	GenerateTags(ctx context.Context, asset *model.Asset, topK int, threshold float64) ([]string, error)
}

// QualityReport is the outcome of a quality assessment.
type QualityReport struct {
	CompositeScore float64
	TechnicalScore float64
	VisualScore    float64
	AudioScore     float64
	Issues         []string
}

// QualityAssessor scores an asset's production quality.
type QualityAssessor interface {
	AssessQuality(ctx context.Context, asset *model.Asset) (*QualityReport, error)
}

// Embedder produces an embedding vector for an asset. Optional: a nil
// Embedder disables embedding collection.
type Embedder interface {
	Embed(ctx context.Context, asset *model.Asset) ([]float32, error)
}

// FallbackTagger always succeeds, returning the media-kind fallback tag set.
// Selected at construction time when tagging is disabled; the enrichment
// stage also falls back to it per-asset when the real tagger errors.
type FallbackTagger struct{}

func (FallbackTagger) GenerateTags(_ context.Context, asset *model.Asset, _ int, _ float64) ([]string, error) {
	return model.FallbackTags(asset.MediaKind), nil
}

// NeutralAssessor always succeeds with a fixed neutral score.
type NeutralAssessor struct {
	Score float64
}

func (a NeutralAssessor) AssessQuality(_ context.Context, _ *model.Asset) (*QualityReport, error) {
	return &QualityReport{CompositeScore: a.Score}, nil
}

// InsightTagger adapts the media-insight client to the Tagger capability.
type InsightTagger struct {
	Client mediainsight.Client
}

func (t InsightTagger) GenerateTags(ctx context.Context, asset *model.Asset, topK int, threshold float64) ([]string, error) {
	resp, err := t.Client.Tags(ctx, mediainsight.TagRequest{
		AssetRef:  asset.Ref(),
		MediaKind: string(asset.MediaKind),
		TopK:      topK,
		Threshold: threshold,
	})
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(resp.Tags))
	for _, t := range resp.Tags {
		if t.Confidence >= threshold {
			tags = append(tags, t.Label)
		}
	}
	if len(tags) == 0 {
		return nil, eris.New("pipeline: tagger returned no tags above threshold")
	}
	return tags, nil
}

// InsightAssessor adapts the media-insight client to QualityAssessor.
type InsightAssessor struct {
	Client mediainsight.Client
}

func (a InsightAssessor) AssessQuality(ctx context.Context, asset *model.Asset) (*QualityReport, error) {
	resp, err := a.Client.Quality(ctx, mediainsight.QualityRequest{
		AssetRef:  asset.Ref(),
		MediaKind: string(asset.MediaKind),
	})
	if err != nil {
		return nil, err
	}
	return &QualityReport{
		CompositeScore: resp.CompositeScore,
		TechnicalScore: resp.TechnicalScore,
		VisualScore:    resp.VisualScore,
		AudioScore:     resp.AudioScore,
		Issues:         resp.Issues,
	}, nil
}

// InsightEmbedder adapts the media-insight client to Embedder.
type InsightEmbedder struct {
	Client mediainsight.Client
}

func (e InsightEmbedder) Embed(ctx context.Context, asset *model.Asset) ([]float32, error) {
	resp, err := e.Client.Embedding(ctx, mediainsight.EmbeddingRequest{AssetRef: asset.Ref()})
	if err != nil {
		return nil, err
	}
	return resp.Vector, nil
}

// ClaudeTagger adapts the metadata-based Anthropic tagger to Tagger.
type ClaudeTagger struct {
	Client claudetag.Client
}

func (t ClaudeTagger) GenerateTags(ctx context.Context, asset *model.Asset, topK int, _ float64) ([]string, error) {
	tags, err := t.Client.SuggestTags(ctx, asset.Title, string(asset.MediaKind), asset.Metadata, topK)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, eris.New("pipeline: claude tagger returned no tags")
	}
	return tags, nil
}
