package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/shortreel/acquire-cli/internal/resilience"
)

// maxBodyBytes caps feed/page downloads; media files themselves are never
// pulled through this fetcher.
const maxBodyBytes = 8 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
}

// HTTPFetcher implements Fetcher using net/http with per-host rate limiting
// and transient-error retries.
type HTTPFetcher struct {
	client *http.Client
	opts   HTTPOptions

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = 3
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "acquire-cli/1.0"
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// SetHostLimit installs a per-host limiter. Connectors use this to honor a
// source's inter-request delay at the transport level as well.
func (f *HTTPFetcher) SetHostLimit(host string, limit rate.Limit, burst int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limiters[host] = rate.NewLimiter(limit, burst)
}

func (f *HTTPFetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limiters[host]
}

// Get fetches the URL, retrying transient failures.
func (f *HTTPFetcher) Get(ctx context.Context, rawURL string, opts ...RequestOption) ([]byte, error) {
	var reqOpts requestOptions
	for _, o := range opts {
		o(&reqOpts)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}

	if lim := f.limiterFor(u.Host); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrapf(err, "fetcher: rate wait for %s", u.Host)
		}
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.MaxAttempts = f.opts.MaxRetries

	return resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]byte, error) {
		return f.getOnce(ctx, rawURL, reqOpts)
	})
}

func (f *HTTPFetcher) getOnce(ctx context.Context, rawURL string, reqOpts requestOptions) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: build request %s", rawURL)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	for k, v := range reqOpts.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: GET %s", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("fetcher: GET %s returned %d", rawURL, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			zap.L().Debug("fetcher: transient status", zap.String("url", rawURL), zap.Int("status", resp.StatusCode))
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: read body %s", rawURL)
	}
	return body, nil
}
