package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/library/internal/entrypoint"
)

func newServeCmd() *cobra.Command {
	var port int32

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}
	cmd.Flags().Int32Var(&port, "port", 0, "Port to listen on (overrides PORT)")
	return cmd
}

// runServe blocks until the server receives SIGINT or SIGTERM.
func runServe(port int32) error {
	cfg := loadConfig()
	if port > 0 {
		cfg.HTTP.Port = port
	}
	entrypoint.Run(cfg, version)
	return nil
}
