// Package mediainsight is the HTTP client for the media-insight service,
// which produces semantic tags, quality assessments, and embedding vectors
// for a media asset reference.
package mediainsight

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.mediainsight.dev/v1"

// Client performs tagging, quality, and embedding calls.
type Client interface {
	Tags(ctx context.Context, req TagRequest) (*TagResponse, error)
	Quality(ctx context.Context, req QualityRequest) (*QualityResponse, error)
	Embedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error)
}

// TagRequest is the request body for POST /tags.
type TagRequest struct {
	AssetRef  string  `json:"asset_ref"`
	MediaKind string  `json:"media_kind"`
	TopK      int     `json:"top_k"`
	Threshold float64 `json:"threshold"`
}

// TagResponse is the response from POST /tags.
type TagResponse struct {
	Tags []ScoredTag `json:"tags"`
}

// ScoredTag is a tag with its model confidence.
type ScoredTag struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// QualityRequest is the request body for POST /quality.
type QualityRequest struct {
	AssetRef  string `json:"asset_ref"`
	MediaKind string `json:"media_kind"`
}

// QualityResponse is the response from POST /quality.
type QualityResponse struct {
	CompositeScore float64  `json:"composite_score"`
	TechnicalScore float64  `json:"technical_score"`
	VisualScore    float64  `json:"visual_score"`
	AudioScore     float64  `json:"audio_score"`
	Issues         []string `json:"issues,omitempty"`
}

// EmbeddingRequest is the request body for POST /embeddings.
type EmbeddingRequest struct {
	AssetRef string `json:"asset_ref"`
}

// EmbeddingResponse is the response from POST /embeddings.
type EmbeddingResponse struct {
	Vector []float32 `json:"vector"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a media-insight API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Tags(ctx context.Context, req TagRequest) (*TagResponse, error) {
	var resp TagResponse
	if err := c.post(ctx, "/tags", req, &resp); err != nil {
		return nil, eris.Wrap(err, "mediainsight: tags")
	}
	return &resp, nil
}

func (c *httpClient) Quality(ctx context.Context, req QualityRequest) (*QualityResponse, error) {
	var resp QualityResponse
	if err := c.post(ctx, "/quality", req, &resp); err != nil {
		return nil, eris.Wrap(err, "mediainsight: quality")
	}
	return &resp, nil
}

func (c *httpClient) Embedding(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	var resp EmbeddingResponse
	if err := c.post(ctx, "/embeddings", req, &resp); err != nil {
		return nil, eris.Wrap(err, "mediainsight: embedding")
	}
	return &resp, nil
}

func (c *httpClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("POST %s returned %d: %s", path, resp.StatusCode, truncate(raw, 200))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "decode response from %s", path)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
