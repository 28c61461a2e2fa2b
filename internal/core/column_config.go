package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ColumnConfig holds the typed settings of a column. Keys this version does
// not understand are kept in Extra and written back unchanged.
type ColumnConfig struct {
	// Choices is the ordered option set of choice and multiple_choice columns.
	Choices []string

	// DefaultValue is a literal or a symbolic token such as "today" or
	// "+3 days". Nil means no default.
	DefaultValue any

	Extra map[string]json.RawMessage
}

// IsZero reports whether the config carries nothing.
func (c ColumnConfig) IsZero() bool {
	return c.Choices == nil && c.DefaultValue == nil && len(c.Extra) == 0
}

// MarshalJSON writes known fields alongside preserved unknown keys.
// An empty config is written as null.
func (c ColumnConfig) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("null"), nil
	}

	fields := make(map[string]json.RawMessage, len(c.Extra)+2)
	for k, v := range c.Extra {
		fields[k] = v
	}
	if c.Choices != nil {
		raw, err := json.Marshal(c.Choices)
		if err != nil {
			return nil, err
		}
		fields["choices"] = raw
	}
	if c.DefaultValue != nil {
		raw, err := json.Marshal(c.DefaultValue)
		if err != nil {
			return nil, fmt.Errorf("default_value: %w", err)
		}
		fields["default_value"] = raw
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(k)
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(fields[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON splits known fields from the rest.
func (c *ColumnConfig) UnmarshalJSON(data []byte) error {
	*c = ColumnConfig{}
	if len(bytes.TrimSpace(data)) == 0 || string(bytes.TrimSpace(data)) == "null" {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("column config: %w", err)
	}

	if raw, ok := fields["choices"]; ok {
		delete(fields, "choices")
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &c.Choices); err != nil {
				return fmt.Errorf("column config choices: %w", err)
			}
		}
	}
	if raw, ok := fields["default_value"]; ok {
		delete(fields, "default_value")
		if err := json.Unmarshal(raw, &c.DefaultValue); err != nil {
			return fmt.Errorf("column config default_value: %w", err)
		}
	}

	if len(fields) > 0 {
		c.Extra = fields
	}
	return nil
}
