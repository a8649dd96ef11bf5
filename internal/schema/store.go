package schema

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Store is the persistence contract for schema artifacts. Lookups return
// (nil, nil) on a miss so callers can distinguish "absent" from "lookup
// failed". Save methods validate and persist; a validation failure is
// reported as a *SaveError carrying every attribute/message pair.
type Store interface {
	// Fields
	SaveField(ctx context.Context, field *Field) error
	DeleteField(ctx context.Context, handle string) error
	FieldByHandle(ctx context.Context, handle string) (*Field, error)
	FieldByID(ctx context.Context, id int64) (*Field, error)
	ListFields(ctx context.Context) ([]*Field, error)

	// Entry types
	SaveEntryType(ctx context.Context, entryType *EntryType) error
	DeleteEntryType(ctx context.Context, handle string) error
	EntryTypeByHandle(ctx context.Context, handle string) (*EntryType, error)
	EntryTypeByID(ctx context.Context, id int64) (*EntryType, error)
	ListEntryTypes(ctx context.Context) ([]*EntryType, error)

	// Sections
	SaveSection(ctx context.Context, section *Section) error
	DeleteSection(ctx context.Context, handle string) error
	SectionByHandle(ctx context.Context, handle string) (*Section, error)
	ListSections(ctx context.Context) ([]*Section, error)

	// Category and tag groups
	SaveCategoryGroup(ctx context.Context, group *CategoryGroup) error
	DeleteCategoryGroup(ctx context.Context, handle string) error
	CategoryGroupByHandle(ctx context.Context, handle string) (*CategoryGroup, error)
	ListCategoryGroups(ctx context.Context) ([]*CategoryGroup, error)
	SaveTagGroup(ctx context.Context, group *TagGroup) error
	DeleteTagGroup(ctx context.Context, handle string) error
	TagGroupByHandle(ctx context.Context, handle string) (*TagGroup, error)
	ListTagGroups(ctx context.Context) ([]*TagGroup, error)

	// Usage lookups, consumed by rollback in-use protection.
	SectionEntryCount(ctx context.Context, handle string) (int64, error)
	EntryTypeEntryCount(ctx context.Context, handle string) (int64, error)
	FieldContentCount(ctx context.Context, handle string) (int64, error)
	CategoryGroupItemCount(ctx context.Context, handle string) (int64, error)
	TagGroupItemCount(ctx context.Context, handle string) (int64, error)

	// RefreshFields forces the store's field index to reload so artifacts
	// saved moments ago become visible to subsequent lookups.
	RefreshFields(ctx context.Context) error

	// RebuildProjectConfig rebuilds the store's schema-config projection
	// from persisted state, clearing any orphaned references.
	RebuildProjectConfig(ctx context.Context) error

	// Lifecycle
	Close() error
}

// SaveError reports a rejected save with per-attribute validation messages.
type SaveError struct {
	Artifact string              // e.g. "field", "section"
	Handle   string
	Errors   map[string][]string // attribute -> messages
}

// Error formats every attribute/message pair so nothing is lost when the
// executor records the failure.
func (e *SaveError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("%s %q: save failed", e.Artifact, e.Handle)
	}
	attrs := make([]string, 0, len(e.Errors))
	for attr := range e.Errors {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	var parts []string
	for _, attr := range attrs {
		for _, msg := range e.Errors[attr] {
			parts = append(parts, attr+": "+msg)
		}
	}
	return fmt.Sprintf("%s %q validation failed: %s", e.Artifact, e.Handle, strings.Join(parts, ", "))
}
