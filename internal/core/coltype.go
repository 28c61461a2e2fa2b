package core

import (
	"fmt"
	"sort"
)

// ColumnType is the semantic type of a column.
type ColumnType string

const (
	TypeText           ColumnType = "text"
	TypeNumber         ColumnType = "number"
	TypeCurrency       ColumnType = "currency"
	TypeDate           ColumnType = "date"
	TypeDatetime       ColumnType = "datetime"
	TypeChoice         ColumnType = "choice"
	TypeMultipleChoice ColumnType = "multiple_choice"
	TypeBoolean        ColumnType = "boolean"
	TypeHyperlink      ColumnType = "hyperlink"
	TypeImage          ColumnType = "image"
	TypeAttachment     ColumnType = "attachment"
	TypeRating         ColumnType = "rating"
	TypePerson         ColumnType = "person"
	TypeLocation       ColumnType = "location"
)

// StorageCategory names the physical slot a column type's values occupy.
type StorageCategory int

const (
	StorageText StorageCategory = iota
	StorageNumber
	StorageBoolean
	StorageJSON
)

func (c StorageCategory) String() string {
	switch c {
	case StorageNumber:
		return "NUMBER"
	case StorageBoolean:
		return "BOOLEAN"
	case StorageJSON:
		return "JSON"
	default:
		return "TEXT"
	}
}

// columnTypes is the closed registry of known column types.
var columnTypes = map[ColumnType]StorageCategory{
	TypeText:           StorageText,
	TypeDate:           StorageText,
	TypeDatetime:       StorageText,
	TypeHyperlink:      StorageText,
	TypePerson:         StorageText,
	TypeLocation:       StorageText,
	TypeNumber:         StorageNumber,
	TypeCurrency:       StorageNumber,
	TypeRating:         StorageNumber,
	TypeBoolean:        StorageBoolean,
	TypeChoice:         StorageJSON,
	TypeMultipleChoice: StorageJSON,
	TypeImage:          StorageJSON,
	TypeAttachment:     StorageJSON,
}

// ParseColumnType validates a type name against the registry.
func ParseColumnType(name string) (ColumnType, error) {
	t := ColumnType(name)
	if _, ok := columnTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumnType, name)
	}
	return t, nil
}

// Category returns the storage category for t. Unknown types map to
// StorageText so values written under a newer type stay readable.
func (t ColumnType) Category() StorageCategory {
	if c, ok := columnTypes[t]; ok {
		return c
	}
	return StorageText
}

// HasChoices reports whether columns of this type carry a choices list.
func (t ColumnType) HasChoices() bool {
	return t == TypeChoice || t == TypeMultipleChoice
}

// AllColumnTypes returns every registered type, sorted by name.
func AllColumnTypes() []ColumnType {
	out := make([]ColumnType, 0, len(columnTypes))
	for t := range columnTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
