package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Slack events server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		application, err := app.New(ctx, resolveConfigPath())
		if err != nil {
			return err
		}

		runErr := application.Start(ctx)
		shutdownErr := application.Shutdown()
		if runErr != nil {
			return runErr
		}
		return shutdownErr
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
