package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/shortreel/acquire-cli/internal/model"
	"github.com/shortreel/acquire-cli/internal/registry"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the source catalog and credential status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sources, err := registry.Load(cfg.Catalog.OverlayPath)
		if err != nil {
			return eris.Wrap(err, "load source catalog")
		}

		kind, _ := cmd.Flags().GetString("kind")
		all := sources.All()
		if kind != "" {
			filtered := all[:0]
			for _, s := range all {
				if string(s.MediaKind) == kind {
					filtered = append(filtered, s)
				}
			}
			all = filtered
		}

		formatSourcesList(os.Stdout, all)
		return nil
	},
}

func init() {
	sourcesCmd.Flags().String("kind", "", "filter by media kind (video, audio)")
	rootCmd.AddCommand(sourcesCmd)
}

func formatSourcesList(out io.Writer, sources []model.SourceDescriptor) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKIND\tFAMILY\tCATEGORIES\tAUTH\tSTATUS")

	for _, s := range sources {
		auth := "-"
		status := "ready"
		if s.RequiresAuth {
			auth = s.CredentialEnv
			if s.Credential == "" {
				status = "missing credential"
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Name, s.MediaKind, s.Family, strings.Join(s.Categories, ","), auth, status,
		)
	}
	_ = w.Flush()
}
