package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "slack-agent-bridge", app.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
