// Package memory implements schema.Store in memory. It backs local dry
// runs and tests, and can simulate the field-index visibility lag real
// engines exhibit between a save and the next index refresh.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fieldagent/fieldagent/internal/schema"
)

// Store is an in-memory schema.Store.
type Store struct {
	mu sync.Mutex

	nextID int64

	fields       map[string]*fieldEntry
	entryTypes   map[string]*schema.EntryType
	sections     map[string]*schema.Section
	catGroups    map[string]*schema.CategoryGroup
	tagGroups    map[string]*schema.TagGroup

	// visibilityLag is the number of RefreshFields calls a newly saved
	// field stays invisible to handle lookups for.
	visibilityLag int

	// entry/content counts keyed by handle, settable by tests to mark
	// artifacts as in use.
	sectionEntries   map[string]int64
	entryTypeEntries map[string]int64
	fieldContent     map[string]int64
	categoryItems    map[string]int64
	tagItems         map[string]int64

	// usageErr, when set, makes every usage lookup fail. Tests use it to
	// exercise the rollback fail-open/fail-closed policies.
	usageErr error

	refreshCalls int
	rebuildCalls int
}

type fieldEntry struct {
	field *schema.Field
	// refreshesLeft is how many RefreshFields calls must happen before
	// the field becomes visible to handle lookups.
	refreshesLeft int
}

// Compile-time check that Store implements schema.Store.
var _ schema.Store = (*Store)(nil)

// New returns an empty in-memory store with no visibility lag.
func New() *Store {
	return &Store{
		fields:           make(map[string]*fieldEntry),
		entryTypes:       make(map[string]*schema.EntryType),
		sections:         make(map[string]*schema.Section),
		catGroups:        make(map[string]*schema.CategoryGroup),
		tagGroups:        make(map[string]*schema.TagGroup),
		sectionEntries:   make(map[string]int64),
		entryTypeEntries: make(map[string]int64),
		fieldContent:     make(map[string]int64),
		categoryItems:    make(map[string]int64),
		tagItems:         make(map[string]int64),
	}
}

// SetVisibilityLag makes newly saved fields invisible to FieldByHandle
// until RefreshFields has been called n more times.
func (s *Store) SetVisibilityLag(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visibilityLag = n
}

// SetUsageError makes all usage lookups return err until reset with nil.
func (s *Store) SetUsageError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usageErr = err
}

// SetSectionEntryCount marks a section as containing n entries.
func (s *Store) SetSectionEntryCount(handle string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sectionEntries[handle] = n
}

// SetEntryTypeEntryCount marks an entry type as used by n entries.
func (s *Store) SetEntryTypeEntryCount(handle string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entryTypeEntries[handle] = n
}

// SetFieldContentCount marks a field's content column as holding n values.
func (s *Store) SetFieldContentCount(handle string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fieldContent[handle] = n
}

// SetCategoryGroupItemCount marks a category group as holding n categories.
func (s *Store) SetCategoryGroupItemCount(handle string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryItems[handle] = n
}

// SetTagGroupItemCount marks a tag group as holding n tags.
func (s *Store) SetTagGroupItemCount(handle string, n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagItems[handle] = n
}

// RefreshCalls returns how many times RefreshFields has been invoked.
func (s *Store) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// RebuildCalls returns how many times RebuildProjectConfig has been invoked.
func (s *Store) RebuildCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildCalls
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// SaveField inserts or updates a field. A new field with a handle already
// claimed by a different field is rejected with a *schema.SaveError.
func (s *Store) SaveField(ctx context.Context, field *schema.Field) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if field.Handle == "" {
		return &schema.SaveError{Artifact: "field", Handle: field.Handle, Errors: map[string][]string{
			"handle": {"cannot be blank"},
		}}
	}
	if existing, ok := s.fields[field.Handle]; ok && existing.field.ID != field.ID {
		return &schema.SaveError{Artifact: "field", Handle: field.Handle, Errors: map[string][]string{
			"handle": {fmt.Sprintf("handle %q is already taken", field.Handle)},
		}}
	}

	if field.ID == 0 {
		field.ID = s.allocID()
	}
	cp := cloneField(field)
	s.fields[field.Handle] = &fieldEntry{field: cp, refreshesLeft: s.visibilityLag}
	return nil
}

func (s *Store) DeleteField(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fields[handle]; !ok {
		return fmt.Errorf("field %q not found", handle)
	}
	delete(s.fields, handle)
	return nil
}

// FieldByHandle returns the field, or (nil, nil) when absent or not yet
// visible due to the configured refresh lag.
func (s *Store) FieldByHandle(ctx context.Context, handle string) (*schema.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.fields[handle]
	if !ok || entry.refreshesLeft > 0 {
		return nil, nil
	}
	return cloneField(entry.field), nil
}

func (s *Store) FieldByID(ctx context.Context, id int64) (*schema.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.fields {
		if entry.field.ID == id {
			return cloneField(entry.field), nil
		}
	}
	return nil, nil
}

func (s *Store) ListFields(ctx context.Context) ([]*schema.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.Field, 0, len(s.fields))
	for _, entry := range s.fields {
		if entry.refreshesLeft > 0 {
			continue
		}
		out = append(out, cloneField(entry.field))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (s *Store) SaveEntryType(ctx context.Context, entryType *schema.EntryType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryType.Handle == "" {
		return &schema.SaveError{Artifact: "entry type", Handle: entryType.Handle, Errors: map[string][]string{
			"handle": {"cannot be blank"},
		}}
	}
	if existing, ok := s.entryTypes[entryType.Handle]; ok && existing.ID != entryType.ID {
		return &schema.SaveError{Artifact: "entry type", Handle: entryType.Handle, Errors: map[string][]string{
			"handle": {fmt.Sprintf("handle %q is already taken", entryType.Handle)},
		}}
	}
	if entryType.ID == 0 {
		entryType.ID = s.allocID()
	}
	cp := *entryType
	s.entryTypes[entryType.Handle] = &cp
	return nil
}

func (s *Store) DeleteEntryType(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entryTypes[handle]; !ok {
		return fmt.Errorf("entry type %q not found", handle)
	}
	delete(s.entryTypes, handle)
	return nil
}

func (s *Store) EntryTypeByHandle(ctx context.Context, handle string) (*schema.EntryType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	et, ok := s.entryTypes[handle]
	if !ok {
		return nil, nil
	}
	cp := *et
	return &cp, nil
}

func (s *Store) EntryTypeByID(ctx context.Context, id int64) (*schema.EntryType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, et := range s.entryTypes {
		if et.ID == id {
			cp := *et
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) ListEntryTypes(ctx context.Context) ([]*schema.EntryType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.EntryType, 0, len(s.entryTypes))
	for _, et := range s.entryTypes {
		cp := *et
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (s *Store) SaveSection(ctx context.Context, section *schema.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if section.Handle == "" {
		return &schema.SaveError{Artifact: "section", Handle: section.Handle, Errors: map[string][]string{
			"handle": {"cannot be blank"},
		}}
	}
	if len(section.EntryTypeHandles) == 0 {
		return &schema.SaveError{Artifact: "section", Handle: section.Handle, Errors: map[string][]string{
			"entryTypes": {"a section needs at least one entry type"},
		}}
	}
	if existing, ok := s.sections[section.Handle]; ok && existing.ID != section.ID {
		return &schema.SaveError{Artifact: "section", Handle: section.Handle, Errors: map[string][]string{
			"handle": {fmt.Sprintf("handle %q is already taken", section.Handle)},
		}}
	}
	if section.ID == 0 {
		section.ID = s.allocID()
	}
	cp := *section
	cp.EntryTypeHandles = append([]string(nil), section.EntryTypeHandles...)
	s.sections[section.Handle] = &cp
	return nil
}

func (s *Store) DeleteSection(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sections[handle]; !ok {
		return fmt.Errorf("section %q not found", handle)
	}
	delete(s.sections, handle)
	return nil
}

func (s *Store) SectionByHandle(ctx context.Context, handle string) (*schema.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[handle]
	if !ok {
		return nil, nil
	}
	cp := *sec
	cp.EntryTypeHandles = append([]string(nil), sec.EntryTypeHandles...)
	return &cp, nil
}

func (s *Store) ListSections(ctx context.Context) ([]*schema.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		cp := *sec
		cp.EntryTypeHandles = append([]string(nil), sec.EntryTypeHandles...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (s *Store) SaveCategoryGroup(ctx context.Context, group *schema.CategoryGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.Handle == "" {
		return &schema.SaveError{Artifact: "category group", Handle: group.Handle, Errors: map[string][]string{
			"handle": {"cannot be blank"},
		}}
	}
	if existing, ok := s.catGroups[group.Handle]; ok && existing.ID != group.ID {
		return &schema.SaveError{Artifact: "category group", Handle: group.Handle, Errors: map[string][]string{
			"handle": {fmt.Sprintf("handle %q is already taken", group.Handle)},
		}}
	}
	if group.ID == 0 {
		group.ID = s.allocID()
	}
	cp := *group
	s.catGroups[group.Handle] = &cp
	return nil
}

func (s *Store) DeleteCategoryGroup(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.catGroups[handle]; !ok {
		return fmt.Errorf("category group %q not found", handle)
	}
	delete(s.catGroups, handle)
	return nil
}

func (s *Store) CategoryGroupByHandle(ctx context.Context, handle string) (*schema.CategoryGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.catGroups[handle]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (s *Store) ListCategoryGroups(ctx context.Context) ([]*schema.CategoryGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.CategoryGroup, 0, len(s.catGroups))
	for _, g := range s.catGroups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (s *Store) SaveTagGroup(ctx context.Context, group *schema.TagGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.Handle == "" {
		return &schema.SaveError{Artifact: "tag group", Handle: group.Handle, Errors: map[string][]string{
			"handle": {"cannot be blank"},
		}}
	}
	if existing, ok := s.tagGroups[group.Handle]; ok && existing.ID != group.ID {
		return &schema.SaveError{Artifact: "tag group", Handle: group.Handle, Errors: map[string][]string{
			"handle": {fmt.Sprintf("handle %q is already taken", group.Handle)},
		}}
	}
	if group.ID == 0 {
		group.ID = s.allocID()
	}
	cp := *group
	s.tagGroups[group.Handle] = &cp
	return nil
}

func (s *Store) DeleteTagGroup(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tagGroups[handle]; !ok {
		return fmt.Errorf("tag group %q not found", handle)
	}
	delete(s.tagGroups, handle)
	return nil
}

func (s *Store) TagGroupByHandle(ctx context.Context, handle string) (*schema.TagGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.tagGroups[handle]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (s *Store) ListTagGroups(ctx context.Context) ([]*schema.TagGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*schema.TagGroup, 0, len(s.tagGroups))
	for _, g := range s.tagGroups {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out, nil
}

func (s *Store) SectionEntryCount(ctx context.Context, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usageErr != nil {
		return 0, s.usageErr
	}
	return s.sectionEntries[handle], nil
}

func (s *Store) EntryTypeEntryCount(ctx context.Context, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usageErr != nil {
		return 0, s.usageErr
	}
	return s.entryTypeEntries[handle], nil
}

func (s *Store) FieldContentCount(ctx context.Context, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usageErr != nil {
		return 0, s.usageErr
	}
	return s.fieldContent[handle], nil
}

func (s *Store) CategoryGroupItemCount(ctx context.Context, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usageErr != nil {
		return 0, s.usageErr
	}
	return s.categoryItems[handle], nil
}

func (s *Store) TagGroupItemCount(ctx context.Context, handle string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usageErr != nil {
		return 0, s.usageErr
	}
	return s.tagItems[handle], nil
}

// RefreshFields makes one refresh pass over the field index, advancing any
// fields still waiting out the visibility lag.
func (s *Store) RefreshFields(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCalls++
	for _, entry := range s.fields {
		if entry.refreshesLeft > 0 {
			entry.refreshesLeft--
		}
	}
	return nil
}

func (s *Store) RebuildProjectConfig(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildCalls++
	return nil
}

func (s *Store) Close() error { return nil }

func cloneField(f *schema.Field) *schema.Field {
	cp := *f
	if f.Settings != nil {
		cp.Settings = make(map[string]any, len(f.Settings))
		for k, v := range f.Settings {
			cp.Settings[k] = v
		}
	}
	return &cp
}
