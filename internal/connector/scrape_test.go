package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortreel/acquire-cli/internal/fetcher"
	"github.com/shortreel/acquire-cli/internal/model"
)

const testPage = `<html>
<head>
	<title> Free Nature Clips </title>
	<meta property="og:video" content="https://cdn.test/featured.mp4" />
</head>
<body>
	<a href="/clips/forest.mp4">Forest</a>
	<a href="https://cdn.test/river.webm?dl=1">River</a>
	<a href="/clips/forest.mp4">Forest again</a>
	<a href="/about.html">About</a>
	<img src="/thumbs/forest.jpg" />
</body>
</html>`

func TestScrapeConnector_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	src := model.SourceDescriptor{
		Name:      "coverr",
		MediaKind: model.KindVideo,
		Family:    model.FamilyScrape,
		Endpoint:  srv.URL + "/videos?q={category}",
	}

	c := NewScrapeConnector(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	assets, err := c.Fetch(context.Background(), src, "nature", 10)
	require.NoError(t, err)

	// og:video, relative forest.mp4 (deduped), absolute river.webm.
	require.Len(t, assets, 3)
	assert.Equal(t, "https://cdn.test/featured.mp4", assets[0].URL)
	assert.Equal(t, "coverr:featured.mp4", assets[0].ID)
	assert.Equal(t, srv.URL+"/clips/forest.mp4", assets[1].URL)
	assert.Equal(t, "https://cdn.test/river.webm?dl=1", assets[2].URL)
	assert.Equal(t, "coverr:river.webm", assets[2].ID)

	for _, a := range assets {
		assert.Equal(t, "Free Nature Clips", a.Title)
		assert.Equal(t, "nature", a.Metadata["category"])
	}
}

func TestScrapeConnector_MaxItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testPage))
	}))
	defer srv.Close()

	src := model.SourceDescriptor{
		Name:      "coverr",
		MediaKind: model.KindVideo,
		Endpoint:  srv.URL + "/videos?q={category}",
	}

	c := NewScrapeConnector(fetcher.NewHTTPFetcher(fetcher.HTTPOptions{}))
	assets, err := c.Fetch(context.Background(), src, "nature", 1)
	require.NoError(t, err)
	assert.Len(t, assets, 1)
}

func TestExtractMediaURLs_SkipsNonHTTP(t *testing.T) {
	page := `<a href="ftp://old.test/clip.mp4">x</a><a href="https://ok.test/clip.mp4">y</a>`
	urls := extractMediaURLs(page, "https://listing.test/page")
	require.Len(t, urls, 1)
	assert.Equal(t, "https://ok.test/clip.mp4", urls[0])
}
