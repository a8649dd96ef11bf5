// Package schema defines the content-model artifacts (fields, entry types,
// sections, groups) and the persistence contract the rest of the system
// builds against. The store owns saved records; the services in this repo
// only construct and configure artifacts and ask for them to be saved.
package schema

// Field is a custom field instance. Kind is the logical field-kind
// identifier (e.g. "dropdown"); EngineClass is the concrete engine
// implementation backing it. Per-kind configuration lives in Settings.
type Field struct {
	ID           int64          `json:"id,omitempty"`
	Name         string         `json:"name"`
	Handle       string         `json:"handle"`
	Kind         string         `json:"kind"`
	EngineClass  string         `json:"engineClass"`
	Instructions string         `json:"instructions,omitempty"`
	Searchable   bool           `json:"searchable,omitempty"`
	Settings     map[string]any `json:"settings,omitempty"`
}

// Setting returns a settings value, or nil when unset.
func (f *Field) Setting(key string) any {
	if f.Settings == nil {
		return nil
	}
	return f.Settings[key]
}

// SetSetting assigns a settings value, allocating the map on first use.
func (f *Field) SetSetting(key string, value any) {
	if f.Settings == nil {
		f.Settings = make(map[string]any)
	}
	f.Settings[key] = value
}

// EntryType is a named, reusable content shape: a set of fields arranged in
// a layout, usable by one or more sections.
type EntryType struct {
	ID            int64  `json:"id,omitempty"`
	Name          string `json:"name"`
	Handle        string `json:"handle"`
	HasTitleField bool   `json:"hasTitleField"`
	TitleFormat   string `json:"titleFormat,omitempty"`
	Layout        Layout `json:"layout"`
}

// Layout is an entry type's content-editing layout: one or more named tabs
// of positioned elements.
type Layout struct {
	Tabs []Tab `json:"tabs"`
}

// Tab is a named group of layout elements.
type Tab struct {
	Name     string          `json:"name"`
	Elements []LayoutElement `json:"elements"`
}

// ElementType discriminates layout elements.
type ElementType string

const (
	ElementTitle ElementType = "title"
	ElementField ElementType = "field"
)

// LayoutElement is one positioned item in a layout: either the built-in
// title element or a reference to a custom field.
type LayoutElement struct {
	Type         ElementType `json:"type"`
	FieldHandle  string      `json:"fieldHandle,omitempty"`
	FieldID      int64       `json:"fieldId,omitempty"`
	Required     bool        `json:"required,omitempty"`
	Instructions string      `json:"instructions,omitempty"`
	Width        int         `json:"width,omitempty"` // percent; 0 means full
}

// FieldHandles returns the handles of all field elements in the layout, in
// layout order.
func (l Layout) FieldHandles() []string {
	var handles []string
	for _, tab := range l.Tabs {
		for _, el := range tab.Elements {
			if el.Type == ElementField {
				handles = append(handles, el.FieldHandle)
			}
		}
	}
	return handles
}

// HasField reports whether the layout references the given field handle.
func (l Layout) HasField(handle string) bool {
	for _, tab := range l.Tabs {
		for _, el := range tab.Elements {
			if el.Type == ElementField && el.FieldHandle == handle {
				return true
			}
		}
	}
	return false
}

// SectionType is the kind of content container a section is.
type SectionType string

const (
	SectionSingle    SectionType = "single"
	SectionChannel   SectionType = "channel"
	SectionStructure SectionType = "structure"
)

// IsValid checks whether the section type is a known value.
func (t SectionType) IsValid() bool {
	switch t {
	case SectionSingle, SectionChannel, SectionStructure:
		return true
	}
	return false
}

// Section is a named container of content items associated with one or
// more entry types.
type Section struct {
	ID               int64       `json:"id,omitempty"`
	Name             string      `json:"name"`
	Handle           string      `json:"handle"`
	Type             SectionType `json:"type"`
	EntryTypeHandles []string    `json:"entryTypes"`
	EnableVersioning bool        `json:"enableVersioning"`
	MaxLevels        int         `json:"maxLevels,omitempty"` // structure only
	HasURLs          bool        `json:"hasUrls"`
	URIFormat        string      `json:"uriFormat,omitempty"`
	Template         string      `json:"template,omitempty"`
}

// CategoryGroup is a hierarchical taxonomy container.
type CategoryGroup struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	MaxLevels int    `json:"maxLevels,omitempty"`
	HasURLs   bool   `json:"hasUrls"`
	URIFormat string `json:"uriFormat,omitempty"`
	Template  string `json:"template,omitempty"`
}

// TagGroup is a flat taxonomy container.
type TagGroup struct {
	ID     int64  `json:"id,omitempty"`
	Name   string `json:"name"`
	Handle string `json:"handle"`
}
