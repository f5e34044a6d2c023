// Package watch provides the watch command.
package watch

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/specgate/cmd/application"
	"github.com/agentstation/specgate/cmd/specgate/cmd/check"
	"github.com/agentstation/specgate/internal/cmd/emoji"
	"github.com/agentstation/specgate/internal/discovery"
	fswatch "github.com/agentstation/specgate/internal/watch"
	"github.com/agentstation/specgate/pkg/constants"
	"github.com/agentstation/specgate/pkg/logging"
)

// NewCommand creates the watch command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		flags    check.Flags
		debounce = constants.WatchDebounce
	)

	cmd := &cobra.Command{
		Use:     "watch [container]",
		GroupID: "core",
		Short:   "Rerun the gate whenever the workbook or a source changes",
		Args:    cobra.MaximumNArgs(1),
		Long: `Watch runs the gate once, then again each time the workbook or one of the
source documents is saved. Runs are sequential; a burst of saves triggers
one run. Gate failures and fatal errors are reported and watching
continues until interrupted.

With --repair each run repairs the workbook. The repair's own write
triggers one more run, which finds nothing to change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
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
			out := cmd.OutOrStdout()

			run := func(ctx context.Context) error {
				res, err := check.Execute(ctx, app, root, &flags, out)
				if err != nil {
					fmt.Fprintf(out, "%s %v\n", emoji.Error, err)
					return err
				}
				return res.Err()
			}

			w, err := fswatch.New(docs.Paths(), fswatch.WithDebounce(debounce))
			if err != nil {
				return err
			}
			defer w.Close()

			_ = run(ctx)
			fmt.Fprintf(out, "%s watching %d files, press Ctrl+C to stop\n", emoji.Info, len(w.Files()))
			return w.Run(ctx, run)
		},
	}
	cmd.Flags().BoolVar(&flags.Repair, "repair", false, "repair the workbook on every run")
	cmd.Flags().BoolVar(&flags.NoPublish, "no-publish", false, "do not write the validation-result sheet after a repair")
	cmd.Flags().DurationVar(&debounce, "debounce", debounce, "quiet period before a rerun")
	return cmd
}
