package core

import (
	"testing"
	"time"
)

func TestBuildImportBundle(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	req := &MaterializeRequest{
		ListName: "Orders",
		Columns: []ImportColumn{
			{Name: "Item", Type: TypeText},
			{Name: "Cost", Type: TypeNumber},
			{Name: "Stars", Type: TypeRating},
			{Name: "Size", Type: TypeChoice},
		},
		Data: []map[string]string{
			{"Item": "Mug", "Cost": "$1,200", "Stars": "5", "Size": " L "},
			{"Item": "Cap", "Cost": "free", "Stars": "great", "Size": "S"},
			{"Item": "", "Cost": "", "Stars": "", "Size": "L"},
		},
	}

	b, fallbacks, err := BuildImportBundle(req, now, DefaultCurrencySymbols)
	if err != nil {
		t.Fatalf("BuildImportBundle() error = %v", err)
	}

	if b.List.Name != "Orders" || b.List.Icon == "" || !b.List.CreatedAt.Equal(now) {
		t.Errorf("list = %+v", b.List)
	}
	if len(b.Views) != 1 || !b.Views[0].IsDefault || b.Views[0].ViewType != ViewGrid {
		t.Errorf("views = %+v", b.Views)
	}
	if len(b.Items) != 3 || b.Items[2].Position != 2 {
		t.Errorf("items = %+v", b.Items)
	}
	if fallbacks != 2 {
		t.Errorf("fallbacks = %d, want 2", fallbacks)
	}

	size := b.Columns[3]
	if got := size.Config.Choices; len(got) != 2 || got[0] != "L" || got[1] != "S" {
		t.Errorf("Size choices = %v, want [L S]", got)
	}

	byItem := map[string]map[string]StoredValue{}
	for _, c := range b.Cells {
		if byItem[c.ItemID] == nil {
			byItem[c.ItemID] = map[string]StoredValue{}
		}
		byItem[c.ItemID][c.ColumnID] = c.Value
	}

	first := byItem[b.Items[0].ID]
	if !first[b.Columns[1].ID].Equal(NumberValue(1200)) {
		t.Errorf("Cost = %v, want Number(1200)", first[b.Columns[1].ID])
	}
	if !first[b.Columns[3].ID].Equal(TextValue("L")) {
		t.Errorf("Size = %v, want Text(L)", first[b.Columns[3].ID])
	}

	second := byItem[b.Items[1].ID]
	if !second[b.Columns[1].ID].Equal(TextValue("free")) {
		t.Errorf("bad Cost should fall back to text, got %v", second[b.Columns[1].ID])
	}
	if _, ok := second[b.Columns[2].ID]; ok {
		t.Error("bad rating should be skipped")
	}

	if third := byItem[b.Items[2].ID]; len(third) != 1 {
		t.Errorf("empty cells should not be stored: %v", third)
	}
}

func TestBuildImportBundle_DuplicateColumns(t *testing.T) {
	req := &MaterializeRequest{
		ListName: "x",
		Columns:  []ImportColumn{{Name: "a", Type: TypeText}, {Name: "a", Type: TypeText}},
	}
	if _, _, err := BuildImportBundle(req, time.Now(), DefaultCurrencySymbols); !IsValidation(err) {
		t.Errorf("BuildImportBundle() error = %v, want validation error", err)
	}
}
