package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fieldagent/fieldagent/internal/schema"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// noRowsNil converts sql.ErrNoRows into the (nil, nil) miss contract.
func noRowsNil[T any](v *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// scanField scans a single row into a schema.Field.
// The row must contain columns in the order defined by fieldColumns.
func scanField(row scannable) (*schema.Field, error) {
	var f schema.Field
	var (
		instructions sql.NullString
		settings     []byte
	)

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Handle,
		&f.Kind,
		&f.EngineClass,
		&instructions,
		&f.Searchable,
		&settings,
	)
	if err != nil {
		return nil, err
	}

	f.Instructions = instructions.String
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &f.Settings); err != nil {
			return nil, fmt.Errorf("unmarshal field settings: %w", err)
		}
	}
	return &f, nil
}

// scanFields scans multiple rows into a slice of schema.Field pointers.
func scanFields(rows *sql.Rows) ([]*schema.Field, error) {
	var fields []*schema.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fields, nil
}

// scanEntryType scans a single row into a schema.EntryType.
func scanEntryType(row scannable) (*schema.EntryType, error) {
	var et schema.EntryType
	var (
		titleFormat sql.NullString
		layout      []byte
	)

	err := row.Scan(
		&et.ID,
		&et.Name,
		&et.Handle,
		&et.HasTitleField,
		&titleFormat,
		&layout,
	)
	if err != nil {
		return nil, err
	}

	et.TitleFormat = titleFormat.String
	if len(layout) > 0 {
		if err := json.Unmarshal(layout, &et.Layout); err != nil {
			return nil, fmt.Errorf("unmarshal entry type layout: %w", err)
		}
	}
	return &et, nil
}

// scanEntryTypes scans multiple rows into a slice of schema.EntryType pointers.
func scanEntryTypes(rows *sql.Rows) ([]*schema.EntryType, error) {
	var entryTypes []*schema.EntryType
	for rows.Next() {
		et, err := scanEntryType(rows)
		if err != nil {
			return nil, err
		}
		entryTypes = append(entryTypes, et)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entryTypes, nil
}

// scanSection scans a single row into a schema.Section.
func scanSection(row scannable) (*schema.Section, error) {
	var sec schema.Section
	var (
		secType    string
		entryTypes []byte
		uriFormat  sql.NullString
		template   sql.NullString
	)

	err := row.Scan(
		&sec.ID,
		&sec.Name,
		&sec.Handle,
		&secType,
		&entryTypes,
		&sec.EnableVersioning,
		&sec.MaxLevels,
		&sec.HasURLs,
		&uriFormat,
		&template,
	)
	if err != nil {
		return nil, err
	}

	sec.Type = schema.SectionType(secType)
	sec.URIFormat = uriFormat.String
	sec.Template = template.String
	if len(entryTypes) > 0 {
		if err := json.Unmarshal(entryTypes, &sec.EntryTypeHandles); err != nil {
			return nil, fmt.Errorf("unmarshal section entry types: %w", err)
		}
	}
	return &sec, nil
}

// scanSections scans multiple rows into a slice of schema.Section pointers.
func scanSections(rows *sql.Rows) ([]*schema.Section, error) {
	var sections []*schema.Section
	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, err
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// scanCategoryGroup scans a single row into a schema.CategoryGroup.
func scanCategoryGroup(row scannable) (*schema.CategoryGroup, error) {
	var g schema.CategoryGroup
	var (
		uriFormat sql.NullString
		template  sql.NullString
	)

	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Handle,
		&g.MaxLevels,
		&g.HasURLs,
		&uriFormat,
		&template,
	)
	if err != nil {
		return nil, err
	}

	g.URIFormat = uriFormat.String
	g.Template = template.String
	return &g, nil
}

// scanCategoryGroups scans multiple rows into a slice of schema.CategoryGroup pointers.
func scanCategoryGroups(rows *sql.Rows) ([]*schema.CategoryGroup, error) {
	var groups []*schema.CategoryGroup
	for rows.Next() {
		g, err := scanCategoryGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// scanTagGroup scans a single row into a schema.TagGroup.
func scanTagGroup(row scannable) (*schema.TagGroup, error) {
	var g schema.TagGroup
	if err := row.Scan(&g.ID, &g.Name, &g.Handle); err != nil {
		return nil, err
	}
	return &g, nil
}

// scanTagGroups scans multiple rows into a slice of schema.TagGroup pointers.
func scanTagGroups(rows *sql.Rows) ([]*schema.TagGroup, error) {
	var groups []*schema.TagGroup
	for rows.Next() {
		g, err := scanTagGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}

// marshalJSONB serializes v for a JSONB column; nil maps and slices become
// SQL NULL rather than the JSON literal "null".
func marshalJSONB(v any) ([]byte, error) {
	switch val := v.(type) {
	case map[string]any:
		if val == nil {
			return nil, nil
		}
	case []string:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
