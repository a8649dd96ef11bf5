// Package discovery answers read-only questions about the current schema:
// what exists, which handles are free, and a compact project summary the
// planner feeds to the model so generated plans reference real artifacts.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/fieldagent/fieldagent/internal/schema"
)

// Service performs schema lookups against a store.
type Service struct {
	store schema.Store
}

// New returns a discovery service over the store.
func New(store schema.Store) *Service {
	return &Service{store: store}
}

// Fields lists every field.
func (s *Service) Fields(ctx context.Context) ([]*schema.Field, error) {
	return s.store.ListFields(ctx)
}

// Sections lists every section.
func (s *Service) Sections(ctx context.Context) ([]*schema.Section, error) {
	return s.store.ListSections(ctx)
}

// EntryTypes lists every entry type.
func (s *Service) EntryTypes(ctx context.Context) ([]*schema.EntryType, error) {
	return s.store.ListEntryTypes(ctx)
}

// EntryTypeFields resolves the fields referenced by an entry type's
// layout, in layout order. Layout references to fields that no longer
// exist are skipped.
func (s *Service) EntryTypeFields(ctx context.Context, handle string) ([]*schema.Field, error) {
	entryType, err := s.store.EntryTypeByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if entryType == nil {
		return nil, fmt.Errorf("entry type %q not found", handle)
	}
	var fields []*schema.Field
	for _, fieldHandle := range entryType.Layout.FieldHandles() {
		field, err := s.store.FieldByHandle(ctx, fieldHandle)
		if err != nil {
			return nil, err
		}
		if field == nil {
			continue
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// Availability reports whether a handle can be used, and what stands in
// the way if not.
type Availability struct {
	Handle    string   `json:"handle"`
	Available bool     `json:"available"`
	Reserved  bool     `json:"reserved"`
	TakenBy   []string `json:"takenBy,omitempty"` // artifact kinds holding the handle
}

// CheckHandle reports handle availability across every artifact namespace.
func (s *Service) CheckHandle(ctx context.Context, handle string) (*Availability, error) {
	avail := &Availability{Handle: handle}
	if schema.IsReservedHandle(handle) {
		avail.Reserved = true
	}

	checks := []struct {
		kind   string
		lookup func() (bool, error)
	}{
		{"field", func() (bool, error) {
			f, err := s.store.FieldByHandle(ctx, handle)
			return f != nil, err
		}},
		{"entryType", func() (bool, error) {
			et, err := s.store.EntryTypeByHandle(ctx, handle)
			return et != nil, err
		}},
		{"section", func() (bool, error) {
			sec, err := s.store.SectionByHandle(ctx, handle)
			return sec != nil, err
		}},
		{"categoryGroup", func() (bool, error) {
			g, err := s.store.CategoryGroupByHandle(ctx, handle)
			return g != nil, err
		}},
		{"tagGroup", func() (bool, error) {
			g, err := s.store.TagGroupByHandle(ctx, handle)
			return g != nil, err
		}},
	}
	for _, check := range checks {
		taken, err := check.lookup()
		if err != nil {
			return nil, fmt.Errorf("checking %s handle %q: %w", check.kind, handle, err)
		}
		if taken {
			avail.TakenBy = append(avail.TakenBy, check.kind)
		}
	}
	avail.Available = !avail.Reserved && len(avail.TakenBy) == 0
	return avail, nil
}

// ProjectContext is the schema snapshot handed to the planner.
type ProjectContext struct {
	Fields         []*schema.Field
	EntryTypes     []*schema.EntryType
	Sections       []*schema.Section
	CategoryGroups []*schema.CategoryGroup
	TagGroups      []*schema.TagGroup
}

// Project assembles the full schema snapshot.
func (s *Service) Project(ctx context.Context) (*ProjectContext, error) {
	var pc ProjectContext
	var err error
	if pc.Fields, err = s.store.ListFields(ctx); err != nil {
		return nil, fmt.Errorf("listing fields: %w", err)
	}
	if pc.EntryTypes, err = s.store.ListEntryTypes(ctx); err != nil {
		return nil, fmt.Errorf("listing entry types: %w", err)
	}
	if pc.Sections, err = s.store.ListSections(ctx); err != nil {
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	if pc.CategoryGroups, err = s.store.ListCategoryGroups(ctx); err != nil {
		return nil, fmt.Errorf("listing category groups: %w", err)
	}
	if pc.TagGroups, err = s.store.ListTagGroups(ctx); err != nil {
		return nil, fmt.Errorf("listing tag groups: %w", err)
	}
	return &pc, nil
}

// Render produces the plain-text summary embedded in planner prompts.
func (pc *ProjectContext) Render() string {
	var sb strings.Builder
	sb.WriteString("Existing fields:\n")
	if len(pc.Fields) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, f := range pc.Fields {
		fmt.Fprintf(&sb, "  - %s (%s): %s\n", f.Handle, f.Kind, f.Name)
	}
	sb.WriteString("Existing entry types:\n")
	if len(pc.EntryTypes) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, et := range pc.EntryTypes {
		fmt.Fprintf(&sb, "  - %s: %s [fields: %s]\n", et.Handle, et.Name, strings.Join(et.Layout.FieldHandles(), ", "))
	}
	sb.WriteString("Existing sections:\n")
	if len(pc.Sections) == 0 {
		sb.WriteString("  (none)\n")
	}
	for _, sec := range pc.Sections {
		fmt.Fprintf(&sb, "  - %s (%s): entry types %s\n", sec.Handle, sec.Type, strings.Join(sec.EntryTypeHandles, ", "))
	}
	if len(pc.CategoryGroups) > 0 {
		sb.WriteString("Category groups:\n")
		for _, g := range pc.CategoryGroups {
			fmt.Fprintf(&sb, "  - %s: %s\n", g.Handle, g.Name)
		}
	}
	if len(pc.TagGroups) > 0 {
		sb.WriteString("Tag groups:\n")
		for _, g := range pc.TagGroups {
			fmt.Fprintf(&sb, "  - %s: %s\n", g.Handle, g.Name)
		}
	}
	return sb.String()
}
