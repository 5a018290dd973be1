package model

import "time"

// MediaKind distinguishes the two asset families the pipeline handles.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// Valid reports whether the kind is one of the known media kinds.
func (k MediaKind) Valid() bool {
	return k == KindVideo || k == KindAudio
}

// Asset is a single media clip discovered by a source connector.
// Connectors create assets, the deduplicator sets Fingerprint, and the
// enrichment stage fills in Tags and QualityScore.
type Asset struct {
	ID              string         `json:"id"`
	Source          string         `json:"source"`
	MediaKind       MediaKind      `json:"media_kind"`
	URL             string         `json:"url"`
	LocalPath       string         `json:"local_path,omitempty"`
	Title           string         `json:"title,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	QualityScore    float64        `json:"quality_score,omitempty"`
	Fingerprint     string         `json:"fingerprint,omitempty"`
	FileSizeBytes   int64          `json:"file_size_bytes,omitempty"`
	DurationSeconds float64        `json:"duration_seconds,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// Ref returns the retrieval location used by enrichment capabilities:
// the local path when the asset has been downloaded, the remote URL otherwise.
func (a *Asset) Ref() string {
	if a.LocalPath != "" {
		return a.LocalPath
	}
	return a.URL
}

// SetMeta lazily initializes the metadata map and sets a key.
func (a *Asset) SetMeta(key string, value any) {
	if a.Metadata == nil {
		a.Metadata = make(map[string]any)
	}
	a.Metadata[key] = value
}

// FallbackTags returns the minimal tag set attached when tagging is disabled
// or fails. An asset carrying exactly this set counts as untagged in
// RunStatistics.
func FallbackTags(kind MediaKind) []string {
	switch kind {
	case KindAudio:
		return []string{"audio", "background"}
	default:
		return []string{"video", "stock-footage"}
	}
}

// HasEnrichedTags reports whether the asset carries more than the fallback
// tag set for its media kind.
func (a *Asset) HasEnrichedTags() bool {
	return len(a.Tags) > len(FallbackTags(a.MediaKind))
}
