package core

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	importedListIcon = "📋"
	importViewName   = "Grid View"
	defaultViewName  = "All Items"
)

// MaterializeResult summarises a CSV materialization.
type MaterializeResult struct {
	ListID         string `json:"list_id"`
	Name           string `json:"name"`
	ColumnsCreated int    `json:"columns_created"`
	RowsCreated    int    `json:"rows_created"`
	Fallbacks      int    `json:"-"`
}

// BuildImportBundle turns a materialize request into a list with columns, a
// default grid view, items and cells. Cells go through EncodeImport, so a
// bad cell never fails the import; the number of raw-text fallbacks is
// returned alongside.
func BuildImportBundle(req *MaterializeRequest, now time.Time, currencySymbols string) (*ListBundle, int, error) {
	seen := make(map[string]bool, len(req.Columns))
	for _, c := range req.Columns {
		if seen[c.Name] {
			return nil, 0, &ValidationError{Field: "columns", Value: c.Name, Message: "duplicate column name"}
		}
		seen[c.Name] = true
	}

	list := List{
		ID:          uuid.NewString(),
		Name:        req.ListName,
		Description: req.ListDescription,
		Icon:        importedListIcon,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	b := &ListBundle{
		List:    list,
		Columns: make([]Column, len(req.Columns)),
		Views:   []View{newDefaultView(list.ID, importViewName, now)},
		Items:   make([]Item, 0, len(req.Data)),
	}

	for i, ic := range req.Columns {
		col := Column{
			ID:        uuid.NewString(),
			ListID:    list.ID,
			Name:      ic.Name,
			Type:      ic.Type,
			Position:  i,
			CreatedAt: now,
		}
		if ic.Type.HasChoices() {
			col.Config.Choices = collectChoices(req.Data, ic.Name, ic.Type)
		}
		b.Columns[i] = col
	}

	fallbacks := 0
	for pos, row := range req.Data {
		item := Item{
			ID:        uuid.NewString(),
			ListID:    list.ID,
			Position:  pos,
			CreatedAt: now,
			UpdatedAt: now,
		}
		b.Items = append(b.Items, item)

		for _, col := range b.Columns {
			v, fellBack := EncodeImport(row[col.Name], col.Type, currencySymbols)
			if fellBack {
				fallbacks++
			}
			if v.IsEmpty() {
				continue
			}
			b.Cells = append(b.Cells, Cell{ItemID: item.ID, ColumnID: col.ID, Value: v})
		}
	}

	return b, fallbacks, nil
}

// collectChoices scans every row for a column's distinct options.
func collectChoices(rows []map[string]string, name string, t ColumnType) []string {
	set := make(map[string]struct{})
	for _, row := range rows {
		raw := row[name]
		if raw == "" {
			continue
		}
		if t == TypeMultipleChoice {
			for _, tok := range multiChoiceTokens(raw) {
				set[tok] = struct{}{}
			}
			continue
		}
		if v := strings.TrimSpace(raw); v != "" {
			set[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func newDefaultView(listID, name string, now time.Time) View {
	return View{
		ID:        uuid.NewString(),
		ListID:    listID,
		Name:      name,
		ViewType:  ViewGrid,
		IsDefault: true,
		Position:  0,
		CreatedAt: now,
	}
}

// newColumn builds a column from caller input.
func newColumn(listID string, in ColumnInput, position int, now time.Time) (Column, error) {
	if _, err := ParseColumnType(string(in.Type)); err != nil {
		return Column{}, fmt.Errorf("column %q: %w", in.Name, err)
	}
	return Column{
		ID:         uuid.NewString(),
		ListID:     listID,
		Name:       in.Name,
		Type:       in.Type,
		Position:   position,
		IsRequired: in.IsRequired,
		Config:     in.Config,
		CreatedAt:  now,
	}, nil
}
