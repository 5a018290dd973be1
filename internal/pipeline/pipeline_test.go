package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortreel/acquire-cli/internal/config"
	"github.com/shortreel/acquire-cli/internal/connector"
	"github.com/shortreel/acquire-cli/internal/model"
	"github.com/shortreel/acquire-cli/internal/registry"
	"github.com/shortreel/acquire-cli/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Acquire: config.AcquireConfig{MaxConcurrentFetches: 4, TimeoutSecs: 30},
		Dedup:   config.DedupConfig{SimilarityThreshold: 0.9, FingerprintWorkers: 2},
		Enrich:  config.EnrichConfig{Concurrency: 2, MaxTags: 10, NeutralQualityScore: 0.85},
	}
}

func testStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "acquire.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestPipeline_FullRun(t *testing.T) {
	stub := newStubConnector(model.FamilyAPI)
	for i := 0; i < 10; i++ {
		stub.assets["alpha"] = append(stub.assets["alpha"],
			videoAsset(fmt.Sprintf("alpha:%d", i), fmt.Sprintf("https://alpha.example/%d.mp4", i), fmt.Sprintf("clip %d", i)))
	}
	// beta re-lists three of alpha's clips under its own ids.
	for i := 0; i < 7; i++ {
		stub.assets["beta"] = append(stub.assets["beta"],
			videoAsset(fmt.Sprintf("beta:%d", i), fmt.Sprintf("https://beta.example/%d.mp4", i), fmt.Sprintf("track %d", i)))
	}
	for i := 0; i < 3; i++ {
		stub.assets["beta"] = append(stub.assets["beta"],
			videoAsset(fmt.Sprintf("beta:dup%d", i), fmt.Sprintf("https://alpha.example/%d.mp4", i), fmt.Sprintf("clip %d", i)))
	}
	stub.fail["gamma"] = true

	connectors := connector.NewRegistry()
	connectors.Register(stub)

	sources := registry.LoadFrom([]model.SourceDescriptor{
		apiSource("alpha", "nature"),
		apiSource("beta", "nature"),
		apiSource("gamma", "nature"),
	})

	st := testStore(t)
	p := New(testConfig(), st, sources, connectors,
		stubTagger{tags: []string{"city", "traffic", "timelapse"}},
		NeutralAssessor{Score: 0.85},
		nil,
	)

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 20, out.Result.Statistics.TotalFetched)
	assert.Equal(t, 17, out.Result.Statistics.TotalUnique)
	assert.Equal(t, 3, out.Result.Statistics.DuplicatesRemoved)
	assert.Equal(t, 17, out.Result.Statistics.TaggedCount)
	assert.Equal(t, []string{"gamma"}, out.Result.Statistics.FailedSources)
	assert.Len(t, out.Assets, 17)
	assert.Equal(t, 17, out.Result.Stored)
	assert.Zero(t, out.Result.StoreErrors)

	// Every asset came out enriched.
	for _, a := range out.Assets {
		assert.Equal(t, []string{"city", "traffic", "timelapse"}, a.Tags)
		assert.InDelta(t, 0.85, a.QualityScore, 1e-9)
	}

	// The run record carries the final state and all four phases.
	run, err := st.GetRun(context.Background(), out.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 17, run.Result.Statistics.TotalUnique)

	phaseNames := make([]string, 0, len(out.Result.Phases))
	for _, ph := range out.Result.Phases {
		phaseNames = append(phaseNames, ph.Name)
		assert.Equal(t, model.PhaseStatusComplete, ph.Status)
	}
	assert.Equal(t, []string{"fetch", "dedup", "enrich", "store"}, phaseNames)

	count, err := st.CountAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, count)
}

func TestPipeline_AllSourcesFailed(t *testing.T) {
	stub := newStubConnector(model.FamilyAPI)
	stub.fail["alpha"] = true
	stub.fail["beta"] = true

	connectors := connector.NewRegistry()
	connectors.Register(stub)

	sources := registry.LoadFrom([]model.SourceDescriptor{
		apiSource("alpha", "nature"),
		apiSource("beta", "nature"),
	})

	st := testStore(t)
	p := New(testConfig(), st, sources, connectors, FallbackTagger{}, NeutralAssessor{Score: 0.85}, nil)

	out, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Empty(t, out.Assets)
	assert.Equal(t, 0, out.Result.Statistics.TotalFetched)
	assert.Equal(t, 0, out.Result.Statistics.TotalUnique)
	assert.Equal(t, []string{"alpha", "beta"}, out.Result.Statistics.FailedSources)

	run, getErr := st.GetRun(context.Background(), out.RunID)
	require.NoError(t, getErr)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 0, run.Result.Statistics.TotalUnique)
}

func TestPipeline_SeededDedupAcrossRuns(t *testing.T) {
	stub := newStubConnector(model.FamilyAPI)
	stub.assets["alpha"] = []model.Asset{
		videoAsset("alpha:1", "https://alpha.example/1.mp4", "clip 1"),
		videoAsset("alpha:2", "https://alpha.example/2.mp4", "clip 2"),
	}

	connectors := connector.NewRegistry()
	connectors.Register(stub)

	sources := registry.LoadFrom([]model.SourceDescriptor{apiSource("alpha", "nature")})
	st := testStore(t)

	first := New(testConfig(), st, sources, connectors, FallbackTagger{}, NeutralAssessor{Score: 0.85}, nil)
	firstOut, err := first.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, firstOut.Assets, 2)

	seed := make(map[string]string, len(firstOut.Assets))
	for _, a := range firstOut.Assets {
		seed[a.ID] = a.Fingerprint
	}

	second := New(testConfig(), st, sources, connectors, FallbackTagger{}, NeutralAssessor{Score: 0.85}, nil).
		WithFingerprintSeed(seed)
	secondOut, err := second.Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, secondOut.Assets)
	assert.Equal(t, 2, secondOut.Result.Statistics.DuplicatesRemoved)
}
