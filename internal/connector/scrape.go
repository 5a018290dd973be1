package connector

import (
	"context"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/shortreel/acquire-cli/internal/fetcher"
	"github.com/shortreel/acquire-cli/internal/model"
)

// Media URL extraction patterns. og:video/og:audio meta tags first, then raw
// links to media files.
var (
	ogMediaRe   = regexp.MustCompile(`(?i)<meta[^>]+property="og:(?:video|audio)(?::url)?"[^>]+content="([^"]+)"`)
	mediaHrefRe = regexp.MustCompile(`(?i)(?:href|src)="([^"]+\.(?:mp4|webm|mov|mp3|wav|ogg|flac)(?:\?[^"]*)?)"`)
	titleRe     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

// ScrapeConnector extracts media links from the listing pages of sources
// without an API.
type ScrapeConnector struct {
	fetcher fetcher.Fetcher
}

// NewScrapeConnector creates the scrape-family connector.
func NewScrapeConnector(f fetcher.Fetcher) *ScrapeConnector {
	return &ScrapeConnector{fetcher: f}
}

func (c *ScrapeConnector) Family() model.ConnectorFamily {
	return model.FamilyScrape
}

func (c *ScrapeConnector) Fetch(ctx context.Context, src model.SourceDescriptor, category string, maxItems int) ([]model.Asset, error) {
	endpoint := expandEndpoint(src.Endpoint, url.PathEscape(category), maxItems)

	body, err := c.fetcher.Get(ctx, endpoint)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape connector: fetch %s/%s", src.Name, category)
	}

	page := string(body)
	pageTitle := extractTitle(page)

	seen := make(map[string]bool)
	var assets []model.Asset
	for _, mediaURL := range extractMediaURLs(page, endpoint) {
		if len(assets) >= maxItems {
			break
		}
		if seen[mediaURL] {
			continue
		}
		seen[mediaURL] = true

		asset := model.Asset{
			ID:        qualifyID(src.Name, path.Base(strings.SplitN(mediaURL, "?", 2)[0])),
			Source:    src.Name,
			MediaKind: src.MediaKind,
			URL:       mediaURL,
			Title:     pageTitle,
			CreatedAt: time.Now().UTC(),
		}
		asset.SetMeta("category", category)
		asset.SetMeta("listing_url", endpoint)
		assets = append(assets, asset)
	}
	return assets, nil
}

// extractMediaURLs pulls og-meta and direct media links from a page,
// resolving relative URLs against the listing page.
func extractMediaURLs(page, pageURL string) []string {
	base, _ := url.Parse(pageURL)

	var out []string
	for _, re := range []*regexp.Regexp{ogMediaRe, mediaHrefRe} {
		for _, m := range re.FindAllStringSubmatch(page, -1) {
			raw := strings.TrimSpace(m[1])
			u, err := url.Parse(raw)
			if err != nil {
				continue
			}
			if base != nil {
				u = base.ResolveReference(u)
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				continue
			}
			out = append(out, u.String())
		}
	}
	return out
}

func extractTitle(page string) string {
	m := titleRe.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
