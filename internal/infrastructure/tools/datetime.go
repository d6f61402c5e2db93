package tools

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/infrastructure/agentruntime"
)

const (
	// DateTimeToolName is the name the model calls the tool by.
	DateTimeToolName = "get_current_datetime"

	// DefaultTimezone applies when the model omits the timezone.
	DefaultTimezone = "America/Los_Angeles"

	dateTimeLayout = "2006-01-02 15:04:05"
)

// CurrentDateTime reports the wall-clock time in an IANA timezone.
type CurrentDateTime struct {
	now func() time.Time
}

// NewCurrentDateTime creates the tool.
func NewCurrentDateTime() *CurrentDateTime {
	return &CurrentDateTime{now: time.Now}
}

func (t *CurrentDateTime) Name() string {
	return DateTimeToolName
}

func (t *CurrentDateTime) Description() string {
	return "Gets the current date and time for a given timezone."
}

func (t *CurrentDateTime) Parameters() *agentruntime.Schema {
	return &agentruntime.Schema{
		Type: "object",
		Properties: map[string]*agentruntime.Schema{
			"timezone": {
				Type:        "string",
				Description: `The timezone to get the current time from. Defaults to "America/Los_Angeles".`,
			},
		},
	}
}

// Call returns {"current_datetime": "YYYY-MM-DD HH:MM:SS"} or, for an unknown
// zone, {"error": "Unknown timezone: <tz>"}. Bad input is a result, not an error.
func (t *CurrentDateTime) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	tz, _ := args["timezone"].(string)
	if tz == "" {
		tz = DefaultTimezone
	}

	loc, err := time.LoadLocation(tz)
	// LoadLocation accepts "" and "Local", which are not IANA names.
	if err != nil || tz == "Local" {
		return map[string]any{"error": fmt.Sprintf("Unknown timezone: %s", tz)}, nil
	}

	return map[string]any{"current_datetime": t.now().In(loc).Format(dateTimeLayout)}, nil
}
