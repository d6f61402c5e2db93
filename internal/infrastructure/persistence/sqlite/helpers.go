package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// timeToString converts time.Time to a sortable UTC string.
func timeToString(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by SQL defaults use plain RFC3339.
		return time.Parse(time.RFC3339, s)
	}
	return t, nil
}

// marshalContent converts message content to JSON for storage.
func marshalContent(c *entity.Content) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal content: %w", err)
	}
	return string(data), nil
}

// unmarshalContent converts stored JSON back to message content.
func unmarshalContent(s string) (*entity.Content, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var c entity.Content
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	return &c, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyError checks if the error is a SQLite foreign key constraint violation.
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
