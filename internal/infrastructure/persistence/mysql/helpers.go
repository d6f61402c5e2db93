package mysql

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/entity"
	"github.com/qj0r9j0vc2/slack-agent-bridge/internal/domain/repository"
)

const (
	errDupEntry        = 1062 // ER_DUP_ENTRY
	errNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// mapError maps MySQL errors to domain repository errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case errDupEntry:
			return repository.ErrAlreadyExists
		case errNoReferencedRow:
			return repository.ErrNotFound
		}
	}

	return err
}

// marshalContent converts message content to JSON for storage.
func marshalContent(c *entity.Content) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshaling content: %w", err)
	}
	return string(data), nil
}

// unmarshalContent converts stored JSON back to message content.
func unmarshalContent(data string) (*entity.Content, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	var c entity.Content
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshaling content: %w", err)
	}
	return &c, nil
}
