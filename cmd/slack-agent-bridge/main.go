package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config/config.yaml"

var configPath string

var rootCmd = &cobra.Command{
	Use:           "slack-agent-bridge",
	Short:         "Relay Slack app mentions to a conversational agent",
	Long:          `slack-agent-bridge receives Slack app_mention events and answers each one in its thread with a reply from an AI agent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default $CONFIG_PATH or "+defaultConfigPath+")")
}

// resolveConfigPath applies --config, then CONFIG_PATH, then the default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return defaultConfigPath
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
