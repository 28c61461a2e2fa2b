package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"not found", NotFoundError("list", "abc"), "LST001"},
		{"unknown column type", fmt.Errorf("column %q: %w", "x", ErrUnknownColumnType), "COL001"},
		{"duplicate column", &ValidationError{Field: "columns", Message: "duplicate column name"}, "COL002"},
		{"invalid number", &ConversionError{Type: TypeNumber, Value: "abc", Err: errors.New("bad")}, "VAL001"},
		{"empty csv", NewValidationError("CSV file is empty"), "FILE003"},
		{"invalid csv", NewValidationError("invalid csv: bare quote"), "FILE002"},
		{"file too large", ErrFileTooLarge, "FILE001"},
		{"too many imports", ErrTooManyImports, "IMP001"},
		{"deadline", errors.New("create list: context deadline exceeded"), "IMP003"},
		{"unique constraint", errors.New("UNIQUE constraint failed: item_values.item_id"), "DB001"},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), "DB004"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyImports)
	if !strings.Contains(got, "(Code: IMP001)") {
		t.Errorf("FormatUserError() = %q, want code IMP001", got)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(NotFoundError("item", "1")) {
		t.Error("IsUserFacing(not found) = false")
	}
	if IsUserFacing(errors.New("boom")) {
		t.Error("IsUserFacing(boom) = true")
	}
}
