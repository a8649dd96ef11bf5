package fieldkind

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/fieldagent/fieldagent/internal/model"
	"github.com/fieldagent/fieldagent/internal/registry"
	"github.com/fieldagent/fieldagent/internal/schema"
)

// tableColumnTypes are the column types the engine's table field accepts.
var tableColumnTypes = map[string]bool{
	"singleline":  true,
	"multiline":   true,
	"number":      true,
	"checkbox":    true,
	"color":       true,
	"date":        true,
	"time":        true,
	"lightswitch": true,
	"select":      true,
	"email":       true,
	"url":         true,
}

func tableDefinitions() []registry.Definition {
	return []registry.Definition{
		{
			Kind:        "table",
			EngineClass: schema.ClassTable,
			DisplayName: "Table",
			Summary:     "Repeating rows of typed columns.",
			Settings: []registry.SettingDoc{
				{Name: "columns", Type: "array", Description: "Column list; each needs a heading, optional handle, type, width."},
				{Name: "defaults", Type: "array", Description: "Initial row values."},
				{Name: "minRows", Type: "integer"},
				{Name: "maxRows", Type: "integer"},
				{Name: "addRowLabel", Type: "string"},
			},
			Factory: func(fctx *registry.Context, cfg model.FieldConfig) (*schema.Field, error) {
				field := baseField(cfg, "table", schema.ClassTable)
				columns, err := prepareColumns(cfg.GetSlice("columns"))
				if err != nil {
					return nil, fmt.Errorf("field %q: %w", cfg.Handle(), err)
				}
				field.SetSetting("columns", columns)
				setIfPresent(field, cfg, "defaults", "minRows", "maxRows", "addRowLabel")
				return field, nil
			},
			Updater:   registry.GenericUpdater,
			Validator: validateColumns,
		},
	}
}

// prepareColumns normalizes the column list into the engine's keyed form
// (col1, col2, ...). A bare string is shorthand for a singleline column
// with that heading; a missing handle is generated from the heading; a
// missing or unknown type falls back to singleline.
func prepareColumns(raw []any) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("columns must not be empty")
	}
	out := make(map[string]any, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, item := range raw {
		var col map[string]any
		switch v := item.(type) {
		case string:
			col = map[string]any{"heading": v}
		case map[string]any:
			col = v
		default:
			return nil, fmt.Errorf("column %d must be an object or a heading string", i)
		}
		heading, _ := col["heading"].(string)
		if heading == "" {
			return nil, fmt.Errorf("column %d has no heading", i)
		}
		handle, _ := col["handle"].(string)
		if handle == "" {
			handle = columnHandle(heading)
		}
		if seen[handle] {
			handle = fmt.Sprintf("%s%d", handle, i+1)
		}
		seen[handle] = true

		colType, _ := col["type"].(string)
		if !tableColumnTypes[colType] {
			colType = "singleline"
		}
		normalized := map[string]any{
			"heading": heading,
			"handle":  handle,
			"type":    colType,
		}
		if width, ok := col["width"]; ok {
			normalized["width"] = width
		}
		out[fmt.Sprintf("col%d", i+1)] = normalized
	}
	return out, nil
}

// columnHandle derives a camelCase handle from a column heading, e.g.
// "First Name" becomes "firstName". Non-alphanumeric runs act as word
// boundaries; a handle that would start with a digit gets a "col" prefix.
func columnHandle(heading string) string {
	var words []string
	var current strings.Builder
	for _, r := range heading {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	if len(words) == 0 {
		return "col"
	}

	var sb strings.Builder
	for i, word := range words {
		runes := []rune(strings.ToLower(word))
		if i > 0 {
			runes[0] = unicode.ToUpper(runes[0])
		}
		sb.WriteString(string(runes))
	}
	handle := sb.String()
	if unicode.IsDigit(rune(handle[0])) {
		handle = "col" + handle
	}
	return handle
}

func validateColumns(cfg model.FieldConfig) error {
	_, err := prepareColumns(cfg.GetSlice("columns"))
	return err
}
