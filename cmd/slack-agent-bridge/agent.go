package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/agents"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/app"
)

var agentPersona string

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Work with agent personas directly",
}

var agentRunCmd = &cobra.Command{
	Use:   "run [prompt...]",
	Short: "Send one prompt to an agent and print its reply",
	Long:  `Send one prompt to an agent and print its reply. The prompt is read from stdin when no arguments are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.Join(args, " ")
		if prompt == "" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			prompt = string(data)
		}
		prompt = strings.TrimSpace(prompt)
		if prompt == "" {
			return errors.New("empty prompt")
		}

		return app.RunAgentOnce(cmd.Context(), resolveConfigPath(), agentPersona, prompt, cmd.OutOrStdout())
	},
}

var agentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available personas",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range agents.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	agentRunCmd.Flags().StringVar(&agentPersona, "persona", os.Getenv("AGENT_PERSONA"), "persona to run (default from config)")
	agentCmd.AddCommand(agentRunCmd, agentListCmd)
	rootCmd.AddCommand(agentCmd)
}
