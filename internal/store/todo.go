package store

import (
	"fmt"
	"strconv"
)

// Todo is a stored todo item.
type Todo struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// NewTodo holds the fields of a todo that has not been inserted yet.
type NewTodo struct {
	Text   string `json:"text"`
	Active bool   `json:"active"`
}

// normalizeActive maps the stored active column to a bool.
// Drivers hand BOOLEAN columns back as bool or as an integer flag depending on
// the declared type handling, so both are accepted.
func normalizeActive(raw any) (bool, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case []byte:
		return parseFlag(string(v))
	case string:
		return parseFlag(v)
	default:
		return false, fmt.Errorf("unexpected active value of type %T", raw)
	}
}

func parseFlag(s string) (bool, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n != 0, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("unexpected active value %q", s)
	}
	return b, nil
}
