package slack

import (
	"strings"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/logger"
)

// LogAdapter routes slack-go's internal debug output into the structured logger.
// It satisfies the Output(int, string) error contract of slack.OptionLog and
// socketmode.OptionLog.
type LogAdapter struct {
	logger logger.Logger
}

// NewLogAdapter creates a new adapter.
func NewLogAdapter(l logger.Logger) *LogAdapter {
	return &LogAdapter{logger: l}
}

func (a *LogAdapter) Output(_ int, s string) error {
	a.logger.Debug(strings.TrimSpace(s), "component", "slack-go")
	return nil
}
