package agents

import "github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"

// SlackBotAgentName is the default persona.
const SlackBotAgentName = "slack_bot_agent"

const slackBotInstruction = "" +
	"You are acting as a Slack Bot. All your responses must be formatted using Slack-compatible Markdown.\n" +
	"\n" +
	"### Formatting Rules\n" +
	"- **Headings / emphasis**: Use `*bold*` for section titles or important words.\n" +
	"- *Italics*: Use `_underscores_` for emphasis when needed.\n" +
	"- Lists: Use `-` for unordered lists, and `1.` for ordered lists.\n" +
	"- Code snippets: Use triple backticks (```) for multi-line code blocks, and backticks (`) for inline code.\n" +
	"- Links: Use `<https://example.com|display text>` format.\n" +
	"- Blockquotes: Use `>` at the beginning of a line.\n" +
	"\n" +
	"Always structure your response clearly, using these rules so it renders correctly in Slack."

// NewSlackBotAgent returns the general-purpose assistant that formats its
// answers as Slack mrkdwn and may search the web.
func NewSlackBotAgent(model string) *entity.AgentDefinition {
	return &entity.AgentDefinition{
		Name:        SlackBotAgentName,
		Model:       model,
		Description: "Answers Slack mentions with Slack-formatted markdown.",
		Instruction: slackBotInstruction,
		Tools:       []string{"google_search"},
	}
}
