package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/shortreel/acquire-cli/internal/model"
)

// --- Connector stubs ---

// stubConnector returns canned assets per source name, or an error for
// sources listed in fail.
type stubConnector struct {
	family model.ConnectorFamily
	assets map[string][]model.Asset
	fail   map[string]bool

	mu    sync.Mutex
	calls []string
}

func newStubConnector(family model.ConnectorFamily) *stubConnector {
	return &stubConnector{
		family: family,
		assets: make(map[string][]model.Asset),
		fail:   make(map[string]bool),
	}
}

func (c *stubConnector) Family() model.ConnectorFamily { return c.family }

func (c *stubConnector) Fetch(_ context.Context, src model.SourceDescriptor, category string, _ int) ([]model.Asset, error) {
	c.mu.Lock()
	c.calls = append(c.calls, src.Name+"/"+category)
	c.mu.Unlock()

	if c.fail[src.Name] {
		return nil, eris.Errorf("stub: source %s is down", src.Name)
	}
	return c.assets[src.Name], nil
}

// --- Capability stubs ---

type stubTagger struct {
	tags []string
	err  error
}

func (t stubTagger) GenerateTags(context.Context, *model.Asset, int, float64) ([]string, error) {
	return t.tags, t.err
}

type stubAssessor struct {
	report *QualityReport
	err    error
}

func (a stubAssessor) AssessQuality(context.Context, *model.Asset) (*QualityReport, error) {
	return a.report, a.err
}

type stubEmbedder struct {
	vec []float32
	err error
}

func (e stubEmbedder) Embed(context.Context, *model.Asset) ([]float32, error) {
	return e.vec, e.err
}

// --- Asset helpers ---

func videoAsset(id, url, title string) model.Asset {
	return model.Asset{
		ID:        id,
		Source:    "stub",
		MediaKind: model.KindVideo,
		URL:       url,
		Title:     title,
	}
}
