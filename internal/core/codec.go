package core

// codec.go maps caller values to and from StoredValue cells.
//
// Encode is the direct write path: a value that cannot be coerced to a
// numeric column is a *ConversionError. EncodeImport is the CSV path: it
// never fails, falling back to raw text instead. Decode reads the slot the
// column type selects, and for choice columns walks the fallback chain
// wrapper value, raw JSON, text slot.

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex matches integers, decimals and scientific notation once
// currency symbols and separators are gone. NaN, Inf and hex are rejected.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var errNotNumeric = errors.New("not a number")

// DefaultCurrencySymbols are the prefixes recognised as currency.
const DefaultCurrencySymbols = "$€£¥"

// parseNumber parses a trimmed decimal string.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return 0, errNotNumeric
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, errNotNumeric
	}
	return f, nil
}

// stripChars removes every rune of chars from s.
func stripChars(s, chars string) string {
	if !strings.ContainsAny(s, chars) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, s)
}

// Encode converts a caller value to a cell for column type t.
func Encode(value any, t ColumnType) (StoredValue, error) {
	if value == nil {
		return EmptyValue(), nil
	}

	switch t.Category() {
	case StorageNumber:
		return encodeNumber(value, t)
	case StorageBoolean:
		return BooleanValue(truthy(value)), nil
	case StorageJSON:
		return encodeJSON(value, t)
	default:
		return TextValue(stringify(value)), nil
	}
}

func encodeNumber(value any, t ColumnType) (StoredValue, error) {
	switch v := value.(type) {
	case float64:
		return NumberValue(v), nil
	case float32:
		return NumberValue(float64(v)), nil
	case int:
		return NumberValue(float64(v)), nil
	case int64:
		return NumberValue(float64(v)), nil
	case json.Number:
		f, err := parseNumber(v.String())
		if err != nil {
			return EmptyValue(), &ConversionError{Type: t, Value: value, Err: err}
		}
		return NumberValue(f), nil
	case bool:
		if v {
			return NumberValue(1), nil
		}
		return NumberValue(0), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return EmptyValue(), nil
		}
		f, err := parseNumber(v)
		if err != nil {
			return EmptyValue(), &ConversionError{Type: t, Value: value, Err: err}
		}
		return NumberValue(f), nil
	}
	return EmptyValue(), &ConversionError{Type: t, Value: value, Err: errNotNumeric}
}

// truthy applies the boolean coercion rule: textual input is true when it is
// non-empty and not numerically zero.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return false
		}
		if f, err := parseNumber(s); err == nil {
			return f != 0
		}
		return true
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	}
	return true
}

func encodeJSON(value any, t ColumnType) (StoredValue, error) {
	if m, ok := value.(map[string]any); ok {
		raw, err := json.Marshal(m)
		if err != nil {
			return EmptyValue(), fmt.Errorf("encode %s value: %w", t, err)
		}
		return JSONValue(raw), nil
	}

	if s, ok := value.(string); ok && t == TypeMultipleChoice {
		value = CanonicalMultiChoice(s)
	}

	raw, err := json.Marshal(map[string]any{"value": value})
	if err != nil {
		return EmptyValue(), fmt.Errorf("encode %s value: %w", t, err)
	}
	return JSONValue(raw), nil
}

// stringify renders a scalar for the text slot. Structured values are
// written as JSON.
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	case map[string]any, []any:
		raw, err := json.Marshal(v)
		if err == nil {
			return string(raw)
		}
	}
	return fmt.Sprint(value)
}

// Decode returns the caller-facing value of a cell for column type t, or
// nil when the type's slot is empty.
func Decode(v StoredValue, t ColumnType) any {
	switch t.Category() {
	case StorageNumber:
		if f, ok := v.Number(); ok {
			return f
		}
		return nil

	case StorageBoolean:
		if b, ok := v.Boolean(); ok {
			return b
		}
		return nil

	case StorageJSON:
		if t.HasChoices() {
			return decodeChoice(v, t)
		}
		if raw, ok := v.JSON(); ok {
			var out any
			if err := json.Unmarshal(raw, &out); err == nil {
				return out
			}
		}
		return nil

	default:
		if s, ok := v.Text(); ok {
			return s
		}
		return nil
	}
}

// decodeChoice walks wrapper value, raw JSON, then the text slot. The text
// slot holds rows written by CSV import and rows whose column type changed
// after entry.
func decodeChoice(v StoredValue, t ColumnType) any {
	var out any
	if raw, ok := v.JSON(); ok {
		if err := json.Unmarshal(raw, &out); err == nil && out != nil {
			if obj, ok := out.(map[string]any); ok {
				if inner, ok := obj["value"]; ok {
					out = inner
				}
			}
			return canonicalIfMulti(out, t)
		}
	}
	if s, ok := v.Text(); ok {
		return canonicalIfMulti(s, t)
	}
	return nil
}

func canonicalIfMulti(v any, t ColumnType) any {
	if s, ok := v.(string); ok && t == TypeMultipleChoice {
		return CanonicalMultiChoice(s)
	}
	return v
}

// multiChoiceTokens splits an array-like string into its options:
// surrounding brackets removed, tokens trimmed of whitespace and quotes,
// empty tokens dropped.
func multiChoiceTokens(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CanonicalMultiChoice returns the canonical text form of a multiple_choice
// value: options comma-joined without spaces. It is idempotent.
func CanonicalMultiChoice(s string) string {
	return strings.Join(multiChoiceTokens(s), ",")
}

// EncodeImport converts one raw CSV cell. An exactly empty cell yields an
// empty value. Unparseable numbers fall back to raw text and set fellBack;
// unparseable ratings are dropped.
func EncodeImport(raw string, t ColumnType, currencySymbols string) (v StoredValue, fellBack bool) {
	if raw == "" {
		return EmptyValue(), false
	}

	switch t {
	case TypeNumber:
		if f, err := parseNumber(stripChars(raw, "$,")); err == nil {
			return NumberValue(f), false
		}
		return TextValue(raw), true

	case TypeCurrency:
		if f, err := parseNumber(stripChars(raw, currencySymbols+",")); err == nil {
			return NumberValue(f), false
		}
		return TextValue(raw), true

	case TypeRating:
		if f, err := parseNumber(raw); err == nil {
			return NumberValue(f), false
		}
		return EmptyValue(), true

	case TypeBoolean:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "yes", "1", "y":
			return BooleanValue(true), false
		}
		return BooleanValue(false), false

	case TypeChoice:
		return TextValue(strings.TrimSpace(raw)), false

	case TypeMultipleChoice:
		return TextValue(CanonicalMultiChoice(raw)), false
	}

	return TextValue(raw), false
}
