package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/specgate/cmd/specgate/cmd/catalog"
	"github.com/agentstation/specgate/cmd/specgate/cmd/check"
	"github.com/agentstation/specgate/cmd/specgate/cmd/watch"
)

// CreateCheckCommand creates the check command with app dependencies.
func (a *App) CreateCheckCommand() *cobra.Command {
	return check.NewCommand(a)
}

// CreateRepairCommand creates the repair command with app dependencies.
func (a *App) CreateRepairCommand() *cobra.Command {
	return check.NewRepairCommand(a)
}

// CreateWatchCommand creates the watch command with app dependencies.
func (a *App) CreateWatchCommand() *cobra.Command {
	return watch.NewCommand(a)
}

// CreateCatalogCommand creates the catalog command with app dependencies.
func (a *App) CreateCatalogCommand() *cobra.Command {
	return catalog.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("specgate %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
