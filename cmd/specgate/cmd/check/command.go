package check

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/specgate/cmd/application"
)

// NewCommand creates the check command.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "check [container]",
		GroupID: "core",
		Short:   "Verify cross-document referential integrity",
		Args:    cobra.MaximumNArgs(1),
		Long: `Check loads the reference catalog from the requirements registry, the
feature registry, the API catalog and the DB catalog, then verifies every
screen sheet of the UI/UX workbook against it.

The gate report, the plain-text summary and, when configured, the metrics
textfile are written on every run. With --repair the workbook is fixed in
place, re-verified against freshly loaded documents and the change log is
written as well.

Exit status is 0 when no hard-gating check failed, 1 when one did and 2 on
a fatal error, in which case no report is written.`,
		Example: `  specgate check                        # Check the current directory
  specgate check ./repo --repair        # Repair, then verify again
  specgate check --report out/gate.json --summary out/gate.txt
  specgate check --metrics out/specgate.prom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := Execute(cmd.Context(), app, root(args), flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return res.Err()
		},
	}
	flags = addFlags(cmd, true)
	return cmd
}

// NewRepairCommand creates the repair command, an alias of check --repair.
func NewRepairCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "repair [container]",
		GroupID: "core",
		Short:   "Repair the workbook and verify it again",
		Args:    cobra.MaximumNArgs(1),
		Long: `Repair applies the idempotent workbook fixes (screen ID field, missing
sections, constraints table, placeholder backfill, error code catalog,
table of contents, validation-result sheet) and verifies the result.

Running it twice leaves the workbook unchanged. Same as check --repair.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.Repair = true
			res, err := Execute(cmd.Context(), app, root(args), flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return res.Err()
		},
	}
	flags = addFlags(cmd, false)
	return cmd
}

func root(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}
