package entity

import (
	"fmt"
	"strings"
)

const (
	// NoResponsePlaceholder is used when the backend finishes without text.
	NoResponsePlaceholder = "(no response)"

	agentErrorPrefix = "Error from Agent: "
)

// RunResult is the outcome of one backend run: either reply text or an error
// message. Both variants produce a reply.
type RunResult struct {
	text   string
	errMsg string
	failed bool
}

// Ok creates a successful result. Blank text becomes NoResponsePlaceholder.
func Ok(text string) RunResult {
	text = strings.TrimSpace(text)
	if text == "" {
		text = NoResponsePlaceholder
	}
	return RunResult{text: text}
}

// Err creates a failed result from an error.
func Err(err error) RunResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return RunResult{errMsg: msg, failed: true}
}

// IsErr reports whether the run failed.
func (r RunResult) IsErr() bool {
	return r.failed
}

// ErrorMessage returns the failure message, empty for successful runs.
func (r RunResult) ErrorMessage() string {
	return r.errMsg
}

// ReplyText returns the text to post back to Slack.
func (r RunResult) ReplyText() string {
	if r.failed {
		return fmt.Sprintf("%s%s", agentErrorPrefix, r.errMsg)
	}
	return r.text
}
