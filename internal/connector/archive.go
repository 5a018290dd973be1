package connector

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/shortreel/acquire-cli/internal/fetcher"
	"github.com/shortreel/acquire-cli/internal/model"
)

var archiveExtensions = map[model.MediaKind][]string{
	model.KindVideo: {".mp4", ".webm", ".mov", ".avi", ".mpeg"},
	model.KindAudio: {".mp3", ".wav", ".ogg", ".flac", ".aiff"},
}

// ArchiveConnector lists public FTP archive directories. Each category maps
// to a subdirectory of the source endpoint.
type ArchiveConnector struct {
	lister fetcher.ArchiveLister
}

// NewArchiveConnector creates the archive-family connector.
func NewArchiveConnector(l fetcher.ArchiveLister) *ArchiveConnector {
	return &ArchiveConnector{lister: l}
}

func (c *ArchiveConnector) Family() model.ConnectorFamily {
	return model.FamilyArchive
}

func (c *ArchiveConnector) Fetch(ctx context.Context, src model.SourceDescriptor, category string, maxItems int) ([]model.Asset, error) {
	dirURL := expandEndpoint(src.Endpoint, category, maxItems)

	files, err := c.lister.ListDir(ctx, dirURL)
	if err != nil {
		return nil, eris.Wrapf(err, "archive connector: list %s/%s", src.Name, category)
	}

	base, err := url.Parse(dirURL)
	if err != nil {
		return nil, eris.Wrapf(err, "archive connector: parse endpoint %s", dirURL)
	}

	var assets []model.Asset
	for _, file := range files {
		if len(assets) >= maxItems {
			break
		}
		if !kindMatches(src.MediaKind, file.Name) {
			continue
		}
		asset := model.Asset{
			ID:            qualifyID(src.Name, file.Name),
			Source:        src.Name,
			MediaKind:     src.MediaKind,
			URL:           base.Scheme + "://" + base.Host + file.Path,
			Title:         titleFromFilename(file.Name),
			FileSizeBytes: file.SizeBytes,
			CreatedAt:     time.Now().UTC(),
		}
		asset.SetMeta("category", category)
		assets = append(assets, asset)
	}
	return assets, nil
}

func kindMatches(kind model.MediaKind, filename string) bool {
	lower := strings.ToLower(filename)
	for _, ext := range archiveExtensions[kind] {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// titleFromFilename turns "city_traffic-01.mp4" into "city traffic 01".
func titleFromFilename(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	stem = strings.NewReplacer("_", " ", "-", " ").Replace(stem)
	return strings.Join(strings.Fields(stem), " ")
}
