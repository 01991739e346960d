package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is an ordered list of strings persisted as a JSON array in a
// TEXT column, so the same schema works on sqlite and postgres.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("string list: unsupported source type %T", src)
	}

	var items []string
	err := json.Unmarshal(raw, &items)
	if err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}
