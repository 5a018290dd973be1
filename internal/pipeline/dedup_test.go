package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortreel/acquire-cli/internal/fingerprint"
	"github.com/shortreel/acquire-cli/internal/model"
)

func fingerprinted(id, fp string) model.Asset {
	a := videoAsset(id, "https://stub/"+id+".mp4", id)
	a.Fingerprint = fp
	return a
}

func TestDedup_EmptyInput(t *testing.T) {
	d := NewDeduplicator(0.9, 2)
	unique := d.Dedup(context.Background(), nil)

	assert.Empty(t, unique)
	assert.Empty(t, d.Discarded())
}

func TestDedup_ExactDuplicatesCollapse(t *testing.T) {
	d := NewDeduplicator(0.9, 2)

	// Same URL and title from two sources hash to the same fingerprint.
	a := videoAsset("pexels:1", "https://cdn.example.com/clip.mp4", "City Traffic")
	b := videoAsset("pixabay:9", "https://cdn.example.com/clip.mp4", "City Traffic")
	c := videoAsset("pexels:2", "https://cdn.example.com/other.mp4", "Ocean Waves")

	unique := d.Dedup(context.Background(), []model.Asset{a, b, c})

	require.Len(t, unique, 2)
	assert.Equal(t, "pexels:1", unique[0].ID) // first seen wins
	assert.Equal(t, "pexels:2", unique[1].ID)

	discarded := d.Discarded()
	require.Len(t, discarded, 1)
	assert.Equal(t, "pixabay:9", discarded[0].Asset.ID)
	assert.Equal(t, "pexels:1", discarded[0].DuplicateOf)
	assert.InDelta(t, 1.0, discarded[0].Similarity, 1e-9)

	// The losing asset is kept whole, not reduced to its id.
	assert.Equal(t, "https://cdn.example.com/clip.mp4", discarded[0].Asset.URL)
	assert.Equal(t, "City Traffic", discarded[0].Asset.Title)
}

func TestDedup_NearDuplicateBoundary(t *testing.T) {
	base := fingerprint.VideoMarker + "0000000000000000"
	oneBit := fingerprint.VideoMarker + "0000000000000001"   // 63/64 similar
	sevenBits := fingerprint.VideoMarker + "000000000000007f" // 57/64 similar

	d := NewDeduplicator(0.9, 2)
	unique := d.Dedup(context.Background(), []model.Asset{
		fingerprinted("a", base),
		fingerprinted("b", oneBit),
		fingerprinted("c", sevenBits),
	})

	require.Len(t, unique, 2)
	assert.Equal(t, "a", unique[0].ID)
	assert.Equal(t, "c", unique[1].ID)

	discarded := d.Discarded()
	require.Len(t, discarded, 1)
	assert.Equal(t, "b", discarded[0].Asset.ID)
	assert.Greater(t, discarded[0].Similarity, 0.9)
}

func TestDedup_DifferentMarkersNeverSimilar(t *testing.T) {
	d := NewDeduplicator(0.9, 2)
	unique := d.Dedup(context.Background(), []model.Asset{
		fingerprinted("v", fingerprint.VideoMarker+"00000000000000ff"),
		fingerprinted("a", fingerprint.AudioMarker+"00000000000000ff"),
	})

	assert.Len(t, unique, 2)
	assert.Empty(t, d.Discarded())
}

func TestDedup_UnfingerprintableAssetIsUnique(t *testing.T) {
	blank := model.Asset{ID: "blank:1", MediaKind: model.KindVideo}

	d := NewDeduplicator(0.9, 2)
	unique := d.Dedup(context.Background(), []model.Asset{blank, blank})

	// Nothing to hash means unique by default, and the registry never
	// sees it, so even a literal repeat survives.
	assert.Len(t, unique, 2)
	assert.Zero(t, d.RegistrySize())
}

func TestDedup_SeededRegistryRejectsKnownAssets(t *testing.T) {
	known := videoAsset("pexels:1", "https://cdn.example.com/clip.mp4", "City Traffic")
	fp, err := fingerprint.Compute(&known)
	require.NoError(t, err)

	d := NewDeduplicatorWithSeed(0.9, 2, map[string]string{"pexels:1": fp})
	unique := d.Dedup(context.Background(), []model.Asset{
		videoAsset("pixabay:5", "https://cdn.example.com/clip.mp4", "City Traffic"),
	})

	assert.Empty(t, unique)
	require.Len(t, d.Discarded(), 1)
	assert.Equal(t, "pexels:1", d.Discarded()[0].DuplicateOf)
}

func TestDedup_FetchedMinusUniqueEqualsRemoved(t *testing.T) {
	assets := make([]model.Asset, 0, 20)
	for i := 0; i < 17; i++ {
		id := fmt.Sprintf("src:%d", i)
		assets = append(assets, videoAsset(id, fmt.Sprintf("https://cdn.example.com/%d.mp4", i), id))
	}
	// Three repeats of already-listed content.
	assets = append(assets,
		videoAsset("dup:0", "https://cdn.example.com/0.mp4", "src:0"),
		videoAsset("dup:1", "https://cdn.example.com/1.mp4", "src:1"),
		videoAsset("dup:2", "https://cdn.example.com/2.mp4", "src:2"),
	)

	d := NewDeduplicator(0.9, 4)
	unique := d.Dedup(context.Background(), assets)

	assert.Len(t, unique, 17)
	assert.Len(t, d.Discarded(), 3)
	assert.Equal(t, len(assets)-len(unique), len(d.Discarded()))
	assert.LessOrEqual(t, len(unique), len(assets))
}
