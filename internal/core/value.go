package core

import (
	"encoding/json"
	"fmt"
)

// ValueKind tags which slot of a StoredValue is populated.
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindText
	KindNumber
	KindBoolean
	KindJSON
)

// StoredValue is one cell: at most one of text, number, boolean or JSON.
// The zero value is an empty cell.
type StoredValue struct {
	kind ValueKind
	text string
	num  float64
	b    bool
	raw  json.RawMessage
}

// EmptyValue returns an empty cell.
func EmptyValue() StoredValue { return StoredValue{} }

// TextValue returns a cell holding s in the text slot.
func TextValue(s string) StoredValue { return StoredValue{kind: KindText, text: s} }

// NumberValue returns a cell holding f in the number slot.
func NumberValue(f float64) StoredValue { return StoredValue{kind: KindNumber, num: f} }

// BooleanValue returns a cell holding b in the boolean slot.
func BooleanValue(b bool) StoredValue { return StoredValue{kind: KindBoolean, b: b} }

// JSONValue returns a cell holding a copy of raw in the JSON slot.
func JSONValue(raw []byte) StoredValue {
	return StoredValue{kind: KindJSON, raw: append(json.RawMessage(nil), raw...)}
}

func (v StoredValue) Kind() ValueKind { return v.kind }

func (v StoredValue) IsEmpty() bool { return v.kind == KindEmpty }

// Text returns the text slot.
func (v StoredValue) Text() (string, bool) { return v.text, v.kind == KindText }

// Number returns the number slot.
func (v StoredValue) Number() (float64, bool) { return v.num, v.kind == KindNumber }

// Boolean returns the boolean slot.
func (v StoredValue) Boolean() (bool, bool) { return v.b, v.kind == KindBoolean }

// JSON returns the raw JSON slot.
func (v StoredValue) JSON() (json.RawMessage, bool) { return v.raw, v.kind == KindJSON }

// Equal compares kind and slot contents. JSON is compared byte for byte.
func (v StoredValue) Equal(o StoredValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindBoolean:
		return v.b == o.b
	case KindJSON:
		return string(v.raw) == string(o.raw)
	}
	return true
}

func (v StoredValue) String() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("Text(%q)", v.text)
	case KindNumber:
		return fmt.Sprintf("Number(%g)", v.num)
	case KindBoolean:
		return fmt.Sprintf("Boolean(%t)", v.b)
	case KindJSON:
		return fmt.Sprintf("JSON(%s)", v.raw)
	}
	return "Empty"
}

// Slots flattens the value to four nullable columns for relational storage.
func (v StoredValue) Slots() (text *string, num *float64, b *bool, raw *string) {
	switch v.kind {
	case KindText:
		s := v.text
		text = &s
	case KindNumber:
		f := v.num
		num = &f
	case KindBoolean:
		bb := v.b
		b = &bb
	case KindJSON:
		s := string(v.raw)
		raw = &s
	}
	return text, num, b, raw
}

// FromSlots rebuilds a value from nullable storage columns. Writers set a
// single slot; JSON null counts as unset.
func FromSlots(text *string, num *float64, b *bool, raw *string) StoredValue {
	switch {
	case raw != nil && *raw != "" && *raw != "null":
		return JSONValue([]byte(*raw))
	case num != nil:
		return NumberValue(*num)
	case b != nil:
		return BooleanValue(*b)
	case text != nil:
		return TextValue(*text)
	}
	return EmptyValue()
}
