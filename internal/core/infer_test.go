package core

import (
	"reflect"
	"testing"
)

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name         string
		values       []string
		wantType     ColumnType
		wantDistinct []string
	}{
		{"all empty", []string{"", "  ", ""}, TypeText, nil},
		{
			"array-like majority",
			[]string{"1,2,3", "4,5,6", "x"},
			TypeMultipleChoice,
			[]string{"1", "2", "3", "4", "5", "6", "x"},
		},
		{
			"bracketed lists",
			[]string{"[b, a]", "['c']", "[a]"},
			TypeMultipleChoice,
			[]string{"a", "b", "c"},
		},
		{"array-like at exactly half is not multiple", []string{"a,b", "c", "d,e", "f", "g,h", "i"}, TypeText, nil},
		{"boolean", []string{"true", "false", "yes"}, TypeBoolean, nil},
		{"boolean mixed case", []string{"Y", "n", "TRUE", "0"}, TypeBoolean, nil},
		{"currency", []string{"$10.00", "$25.50", "$3.00"}, TypeCurrency, nil},
		{"currency if any value has symbol", []string{"10", "£20", "30.5"}, TypeCurrency, nil},
		{"rating", []string{"1", "2", "3", "4", "5"}, TypeRating, nil},
		{"number beyond rating bound", []string{"1", "2", "3", "4", "5", "6"}, TypeNumber, nil},
		{"number with decimals", []string{"1.5", "2", "3"}, TypeNumber, nil},
		{"thousands separators read as array-like", []string{"1,000", "2,500", "300"}, TypeMultipleChoice, []string{"000", "1", "2", "300", "500"}},
		{"date iso", []string{"2024-01-15", "2024-02-20", "2024-03-01"}, TypeDate, nil},
		{"datetime iso", []string{"2024-01-15T10:30:00", "2024-02-20T10:30:00", "2024-03-01T10:30:00"}, TypeDatetime, nil},
		{"date month name", []string{"15 January 2024", "3 Feb 2024", "20 march 2024"}, TypeDate, nil},
		{"hyperlink", []string{"https://a.io", "http://b.io/x"}, TypeHyperlink, nil},
		{
			"choice at bound",
			[]string{"a", "b", "c", "a", "b", "c", "a", "b", "c", "a"},
			TypeChoice,
			[]string{"a", "b", "c"},
		},
		{
			"too many distinct for choice",
			[]string{"a", "b", "c", "d", "e", "f", "g", "h", "a", "b"},
			TypeText,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotDistinct := InferColumnType(tt.values, DefaultInferOptions())
			if gotType != tt.wantType {
				t.Errorf("InferColumnType() type = %s, want %s", gotType, tt.wantType)
			}
			if !reflect.DeepEqual(gotDistinct, tt.wantDistinct) {
				t.Errorf("InferColumnType() distinct = %v, want %v", gotDistinct, tt.wantDistinct)
			}
		})
	}
}

func TestInferColumnType_Deterministic(t *testing.T) {
	values := []string{"red", "blue", "red", "green", "blue", "red", "red", "blue", "green", "red"}
	firstType, firstDistinct := InferColumnType(values, DefaultInferOptions())
	for i := 0; i < 20; i++ {
		gotType, gotDistinct := InferColumnType(values, DefaultInferOptions())
		if gotType != firstType || !reflect.DeepEqual(gotDistinct, firstDistinct) {
			t.Fatalf("run %d: got (%s, %v), want (%s, %v)", i, gotType, gotDistinct, firstType, firstDistinct)
		}
	}
}

func TestInferColumnType_CustomCurrencySymbols(t *testing.T) {
	opts := InferOptions{CurrencySymbols: "₹"}
	if got, _ := InferColumnType([]string{"₹100", "₹250"}, opts); got != TypeCurrency {
		t.Errorf("with ₹ symbol got %s, want currency", got)
	}
	if got, _ := InferColumnType([]string{"$100", "$250"}, opts); got == TypeCurrency {
		t.Errorf("$ should not be currency when only ₹ is configured")
	}
}
