package core

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtinTemplatesYAML []byte

// TemplateColumn is a column definition inside a template.
type TemplateColumn struct {
	Name     string         `yaml:"name" json:"name"`
	Type     ColumnType     `yaml:"type" json:"type"`
	Required bool           `yaml:"required" json:"required"`
	Config   map[string]any `yaml:"config" json:"config,omitempty"`
}

// Template is a built-in list blueprint.
type Template struct {
	ID          string           `yaml:"id" json:"id"`
	Name        string           `yaml:"name" json:"name"`
	Description string           `yaml:"description" json:"description"`
	Icon        string           `yaml:"icon" json:"icon"`
	Category    string           `yaml:"category" json:"category"`
	Columns     []TemplateColumn `yaml:"columns" json:"columns"`
	IsBuiltin   bool             `yaml:"-" json:"is_builtin"`
}

// TemplateCatalog holds templates by ID.
type TemplateCatalog struct {
	byID  map[string]Template
	order []string
}

// LoadTemplates parses a YAML template list. Column types are checked
// against the registry.
func LoadTemplates(data []byte) (*TemplateCatalog, error) {
	var list []Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	cat := &TemplateCatalog{byID: make(map[string]Template, len(list))}
	for _, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has no id", t.Name)
		}
		if _, dup := cat.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		for _, c := range t.Columns {
			if _, err := ParseColumnType(string(c.Type)); err != nil {
				return nil, fmt.Errorf("template %s column %q: %w", t.ID, c.Name, err)
			}
		}
		t.IsBuiltin = true
		cat.byID[t.ID] = t
		cat.order = append(cat.order, t.ID)
	}
	return cat, nil
}

// BuiltinTemplates returns the embedded catalog.
func BuiltinTemplates() *TemplateCatalog {
	cat, err := LoadTemplates(builtinTemplatesYAML)
	if err != nil {
		panic(err)
	}
	return cat
}

// List returns templates in declaration order, optionally filtered by
// category.
func (c *TemplateCatalog) List(category string) []Template {
	out := make([]Template, 0, len(c.order))
	for _, id := range c.order {
		t := c.byID[id]
		if category == "" || t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Get returns a template by ID.
func (c *TemplateCatalog) Get(id string) (Template, error) {
	t, ok := c.byID[id]
	if !ok {
		return Template{}, NotFoundError("template", id)
	}
	return t, nil
}

// Categories returns the distinct categories, sorted.
func (c *TemplateCatalog) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range c.byID {
		if t.Category != "" && !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}
