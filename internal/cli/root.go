// Package cli implements the library command line: the API server plus
// maintenance commands that run against the same database.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/entrypoint"
)

var (
	version = "dev"

	flagNoColor  bool
	flagDatabase string
)

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Lend books and keep the inventory consistent",
	Long: `library runs the lending API and the maintenance tasks around it.

Configuration comes from environment variables (DATABASE_PATH, AUTH_MODE,
RECONCILE_SCHEDULE, ...). Run without a subcommand to start the server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.NoColor = color.NoColor || flagNoColor
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(0)
	},
}

// SetVersion records the build version reported by the server.
func SetVersion(v string) {
	version = v
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&flagDatabase, "db", "", "Database path (overrides DATABASE_PATH)")

	rootCmd.AddCommand(
		newServeCmd(),
		newReconcileCmd(),
		newCreateUserCmd(),
		newSeedCmd(),
	)
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig() *config.Config {
	cfg := config.NewConfig()
	if flagDatabase != "" {
		cfg.Database.Path = flagDatabase
	}
	return cfg
}

// openServices wires the application against the configured database.
func openServices() (*entrypoint.Services, error) {
	return entrypoint.Build(loadConfig())
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}
