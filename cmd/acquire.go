package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shortreel/acquire-cli/internal/connector"
	"github.com/shortreel/acquire-cli/internal/fetcher"
	"github.com/shortreel/acquire-cli/internal/pipeline"
	"github.com/shortreel/acquire-cli/internal/registry"
	"github.com/shortreel/acquire-cli/pkg/claudetag"
	"github.com/shortreel/acquire-cli/pkg/mediainsight"
)

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Run one acquisition pass over the source catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		sources, err := registry.Load(cfg.Catalog.OverlayPath)
		if err != nil {
			return eris.Wrap(err, "load source catalog")
		}
		zap.L().Info("catalog loaded",
			zap.Int("sources", sources.Len()),
			zap.Int("usable", len(sources.Usable())),
		)

		p := pipeline.New(cfg, st, sources, buildConnectors(), buildTagger(), buildAssessor(), buildEmbedder())

		out, err := p.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "acquisition run")
		}

		zap.L().Info("acquisition complete",
			zap.String("run", out.RunID),
			zap.Int("fetched", out.Result.Statistics.TotalFetched),
			zap.Int("unique", out.Result.Statistics.TotalUnique),
			zap.Int("stored", out.Result.Stored),
		)

		// Print the run summary JSON to stdout.
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Result)
	},
}

func buildConnectors() *connector.Registry {
	httpFetcher := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Fetcher.UserAgent,
		Timeout:    time.Duration(cfg.Fetcher.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Fetcher.MaxRetries,
	})
	ftpFetcher := fetcher.NewFTPFetcher(time.Duration(cfg.Fetcher.TimeoutSecs) * time.Second)

	reg := connector.NewRegistry()
	reg.Register(connector.NewAPIConnector(httpFetcher))
	reg.Register(connector.NewScrapeConnector(httpFetcher))
	reg.Register(connector.NewArchiveConnector(ftpFetcher))
	return reg
}

// buildTagger picks the richest tagger the configuration allows: the media
// insight service, then the metadata-only Claude tagger, then fallback tags.
func buildTagger() pipeline.Tagger {
	if cfg.Enrich.DisableTagging {
		return pipeline.FallbackTagger{}
	}
	if cfg.MediaInsight.Key != "" {
		client := mediainsight.NewClient(cfg.MediaInsight.Key, mediainsight.WithBaseURL(cfg.MediaInsight.BaseURL))
		return pipeline.InsightTagger{Client: client}
	}
	if cfg.Anthropic.Key != "" {
		return pipeline.ClaudeTagger{Client: claudetag.NewClient(cfg.Anthropic.Key, cfg.Anthropic.Model)}
	}
	zap.L().Warn("no tagging service configured, assets get fallback tags only")
	return pipeline.FallbackTagger{}
}

func buildAssessor() pipeline.QualityAssessor {
	if !cfg.Enrich.DisableQuality && cfg.MediaInsight.Key != "" {
		client := mediainsight.NewClient(cfg.MediaInsight.Key, mediainsight.WithBaseURL(cfg.MediaInsight.BaseURL))
		return pipeline.InsightAssessor{Client: client}
	}
	return pipeline.NeutralAssessor{Score: cfg.Enrich.NeutralQualityScore}
}

func buildEmbedder() pipeline.Embedder {
	if cfg.Enrich.DisableEmbeddings || cfg.MediaInsight.Key == "" {
		return nil
	}
	client := mediainsight.NewClient(cfg.MediaInsight.Key, mediainsight.WithBaseURL(cfg.MediaInsight.BaseURL))
	return pipeline.InsightEmbedder{Client: client}
}

func init() {
	rootCmd.AddCommand(acquireCmd)
}
