package core

// validation.go holds the request types accepted by Service and their
// go-playground/validator rules. Validate converts the first failing field
// into a *ValidationError.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("coltype", func(fl validator.FieldLevel) bool {
		_, err := ParseColumnType(fl.Field().String())
		return err == nil
	})
	_ = requestValidate.RegisterValidation("viewtype", func(fl validator.FieldLevel) bool {
		switch ViewType(fl.Field().String()) {
		case ViewGrid, ViewGallery, ViewCalendar, ViewBoard:
			return true
		}
		return false
	})
	requestValidate.RegisterTagNameFunc(jsonFieldName)
}

// ColumnInput defines a column when creating a list or adding a column.
type ColumnInput struct {
	Name       string       `json:"name" validate:"required,max=255"`
	Type       ColumnType   `json:"column_type" validate:"required,coltype"`
	IsRequired bool         `json:"is_required"`
	Config     ColumnConfig `json:"config"`
}

// CreateListRequest creates an empty list, optionally with columns.
type CreateListRequest struct {
	Name        string        `json:"name" validate:"required,max=255"`
	Description string        `json:"description"`
	Icon        string        `json:"icon"`
	Color       string        `json:"color"`
	Columns     []ColumnInput `json:"columns" validate:"dive"`
}

// UpdateListRequest changes list metadata. Nil fields are left alone.
type UpdateListRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	Color       *string `json:"color"`
	IsFavorite  *bool   `json:"is_favorite"`
}

// UpdateColumnRequest changes a column. Nil fields are left alone.
type UpdateColumnRequest struct {
	Name       *string       `json:"name" validate:"omitempty,min=1,max=255"`
	Type       *ColumnType   `json:"column_type" validate:"omitempty,coltype"`
	IsRequired *bool         `json:"is_required"`
	Config     *ColumnConfig `json:"config"`
}

// ReorderColumnsRequest lists column IDs in their new order.
type ReorderColumnsRequest struct {
	ColumnIDs []string `json:"column_ids" validate:"required,min=1,dive,required"`
}

// CreateViewRequest adds a view to a list.
type CreateViewRequest struct {
	Name     string         `json:"name" validate:"required,max=255"`
	ViewType ViewType       `json:"view_type" validate:"required,viewtype"`
	Config   map[string]any `json:"config"`
}

// UpdateViewRequest changes a view. Nil fields are left alone.
type UpdateViewRequest struct {
	Name      *string        `json:"name" validate:"omitempty,min=1,max=255"`
	Config    map[string]any `json:"config"`
	IsDefault *bool          `json:"is_default"`
}

// ItemValuesRequest carries cell values keyed by column ID.
type ItemValuesRequest struct {
	Values map[string]any `json:"values"`
}

// ImportColumn is one column of a CSV materialization.
type ImportColumn struct {
	Name string     `json:"name" validate:"required,max=255"`
	Type ColumnType `json:"column_type" validate:"required,coltype"`
}

// MaterializeRequest creates a list from previewed CSV data.
type MaterializeRequest struct {
	ListName        string              `json:"list_name" validate:"required,max=255"`
	ListDescription string              `json:"list_description"`
	HasHeaderRow    bool                `json:"has_header_row"`
	Columns         []ImportColumn      `json:"columns" validate:"required,min=1,dive"`
	Data            []map[string]string `json:"data"`
}

// Validate checks req against its validate tags.
func Validate(req any) error {
	err := requestValidate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := verrs[0]
	ve := &ValidationError{
		Field:   fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:],
		Value:   fmt.Sprint(fe.Value()),
		Message: describeTag(fe),
	}
	if fe.Tag() == "coltype" {
		_, ve.Err = ParseColumnType(ve.Value)
	}
	return ve
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field is empty"
	case "coltype":
		return fmt.Sprintf("unknown column type %q", fe.Value())
	case "viewtype":
		return "view type must be one of grid, gallery, calendar, board"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

// jsonFieldName reports fields by their JSON name.
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}
