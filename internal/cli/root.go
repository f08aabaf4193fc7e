// Package cli implements the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beaconhq/beacon/internal/async"
	"github.com/beaconhq/beacon/internal/config"
	"github.com/beaconhq/beacon/internal/handler"
	"github.com/beaconhq/beacon/internal/ui"
)

var (
	// Global flags
	databaseFileFlag string
	configPathFlag   string
	noColor          bool

	// Resolved values
	resolvedDatabasePath string
	cfg                  *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "beacon",
	Short: "Beacon - a local task planner for humans and agents",
	Long: `Beacon is a local, single-user task planner. Plans group ordered steps;
each step carries a status, optional acceptance criteria, and a result
recorded when it is done.

The same core backs two front ends: this CLI and an MCP server
('beacon serve') that AI assistants drive over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip database resolution for commands that don't touch it.
		switch cmd.Name() {
		case "help", "version", "completion":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !noColor {
			ui.ConfigureTheme(cfg.UI.Accent)
		}

		resolvedDatabasePath, err = config.ResolveDatabasePath(databaseFileFlag, cfg)
		if err != nil {
			return fmt.Errorf("failed to resolve database path: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseFileFlag, "database-file", "", "Path to the database file")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colors and markdown rendering")
}

func loadGlobalConfig() (*config.Config, error) {
	if configPathFlag != "" {
		return config.LoadFrom(configPathFlag)
	}
	return config.Load()
}

// newHandler builds the handler stack over the resolved database path.
func newHandler() *handler.Handler {
	return handler.New(async.New(resolvedDatabasePath))
}
