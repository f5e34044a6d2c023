// Package catalog provides the catalog command.
package catalog

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/specgate/cmd/application"
	"github.com/agentstation/specgate/internal/cmd/output"
	"github.com/agentstation/specgate/internal/discovery"
	"github.com/agentstation/specgate/pkg/catalog"
	"github.com/agentstation/specgate/pkg/logging"
)

// NewCommand creates the catalog command.
func NewCommand(app application.Application) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "catalog [container]",
		GroupID: "management",
		Short:   "Show the reference catalog built from the source documents",
		Args:    cobra.MaximumNArgs(1),
		Example: `  specgate catalog
  specgate catalog ./repo -o json
  specgate catalog --examples 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			format, err := output.ParseFormat(string(output.DetectFormat(app.OutputFormat())))
			if err != nil {
				return err
			}

			s, err := app.Settings(root)
			if err != nil {
				return err
			}
			docs, err := discovery.Resolve(s.Root, s.Patterns())
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), app.Logger())
			ctx = logging.WithRunID(ctx, app.RunID())
			cat, err := catalog.NewLoader(docs.Sources).Load(ctx)
			if err != nil {
				return err
			}

			summary := output.SummarizeCatalog(docs, cat, limit)
			return output.FormatCatalog(cmd.OutOrStdout(), summary, format, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "examples", 5, "identifiers listed per kind")
	return cmd
}
