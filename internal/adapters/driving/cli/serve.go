package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/casefind/internal/adapters/driving/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API on the configured address and serves it until
interrupted. Query, case search, ingestion and case listing are all
exposed over the API.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ensureEngine(ctx); err != nil {
		return err
	}

	server := api.NewServer(engine, log, cfg.ServerAddr, cfg.DataDir, cfg.AllowedOrigins)
	return server.Start(ctx)
}
