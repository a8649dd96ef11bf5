package model

import (
	"encoding/json"
	"fmt"
)

// OpType is the kind of change an operation performs.
type OpType string

const (
	OpCreate OpType = "create"
	OpModify OpType = "modify"
	OpDelete OpType = "delete"
)

// String returns the string representation of the operation type.
func (t OpType) String() string {
	return string(t)
}

// IsValid checks whether the operation type is a known value.
func (t OpType) IsValid() bool {
	switch t {
	case OpCreate, OpModify, OpDelete:
		return true
	}
	return false
}

// Target identifies the kind of schema artifact an operation acts on.
type Target string

const (
	TargetField         Target = "field"
	TargetEntryType     Target = "entryType"
	TargetSection       Target = "section"
	TargetCategoryGroup Target = "categoryGroup"
	TargetTagGroup      Target = "tagGroup"
)

// String returns the string representation of the target.
func (t Target) String() string {
	return string(t)
}

// IsValid checks whether the target is a known value.
func (t Target) IsValid() bool {
	switch t {
	case TargetField, TargetEntryType, TargetSection, TargetCategoryGroup, TargetTagGroup:
		return true
	}
	return false
}

// PlanDocument is the operations plan as produced by the planner and
// consumed by the executor. Operations execute exactly once, in list order.
type PlanDocument struct {
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Operations  []Operation `json:"operations"`
}

// Operation is a single create/modify/delete action within a plan.
// It is constructed from parsed plan JSON and never mutated after that.
type Operation struct {
	Type     OpType         `json:"type"`
	Target   Target         `json:"target"`
	TargetID string         `json:"targetId,omitempty"` // required for modify/delete
	Create   *CreatePayload `json:"create,omitempty"`
	Modify   *ModifyPayload `json:"modify,omitempty"`
	Delete   *DeletePayload `json:"delete,omitempty"`
}

// CreatePayload carries the configuration for a create operation.
// Exactly one member matching the operation's target is set.
type CreatePayload struct {
	Field         FieldConfig      `json:"field,omitempty"`
	EntryType     *EntryTypeConfig `json:"entryType,omitempty"`
	Section       *SectionConfig   `json:"section,omitempty"`
	CategoryGroup *GroupConfig     `json:"categoryGroup,omitempty"`
	TagGroup      *GroupConfig     `json:"tagGroup,omitempty"`
}

// ModifyPayload carries an ordered list of modification actions.
type ModifyPayload struct {
	Actions []ModifyAction `json:"actions"`
}

// DeletePayload carries deletion options. Direct deletes are intentionally
// not executed (see executor); the payload is retained for plan round-trips.
type DeletePayload struct {
	Force   bool `json:"force,omitempty"`
	Cascade bool `json:"cascade,omitempty"`
}

// ModifyAction is one action within a modify operation. The planner emits
// both the nested field reference form and the flat fieldHandle form, so
// both are accepted.
type ModifyAction struct {
	Action          string         `json:"action"`
	Field           *FieldRef      `json:"field,omitempty"`
	FieldHandle     string         `json:"fieldHandle,omitempty"`
	EntryTypeHandle string         `json:"entryTypeHandle,omitempty"`
	EntryType       *HandleRef     `json:"entryType,omitempty"`
	Updates         map[string]any `json:"updates,omitempty"`
}

// ResolveFieldHandle returns the field handle from either accepted form.
func (a ModifyAction) ResolveFieldHandle() string {
	if a.Field != nil && a.Field.Handle != "" {
		return a.Field.Handle
	}
	return a.FieldHandle
}

// ResolveEntryTypeHandle returns the entry type handle from either form.
func (a ModifyAction) ResolveEntryTypeHandle() string {
	if a.EntryType != nil && a.EntryType.Handle != "" {
		return a.EntryType.Handle
	}
	return a.EntryTypeHandle
}

// FieldRef references a field within an entry type layout.
type FieldRef struct {
	Handle   string `json:"handle"`
	Required bool   `json:"required,omitempty"`
}

// HandleRef references an artifact by handle.
type HandleRef struct {
	Handle string `json:"handle"`
}

// EntryTypeConfig describes an entry type to create.
type EntryTypeConfig struct {
	Name          string     `json:"name"`
	Handle        string     `json:"handle"`
	HasTitleField *bool      `json:"hasTitleField,omitempty"` // nil means true
	TitleFormat   string     `json:"titleFormat,omitempty"`
	TabName       string     `json:"tabName,omitempty"`
	Fields        []FieldRef `json:"fields,omitempty"`
}

// TitleEnabled reports whether the entry type should carry a title field.
func (c *EntryTypeConfig) TitleEnabled() bool {
	return c.HasTitleField == nil || *c.HasTitleField
}

// SectionConfig describes a section to create.
type SectionConfig struct {
	Name             string           `json:"name"`
	Handle           string           `json:"handle"`
	Type             string           `json:"type,omitempty"` // single, channel, structure
	EntryTypes       []EntryTypeRef   `json:"entryTypes,omitempty"`
	EnableVersioning *bool            `json:"enableVersioning,omitempty"`
	MaxLevels        int              `json:"maxLevels,omitempty"` // structure only
	HasURLs          *bool            `json:"hasUrls,omitempty"`
	URI              string           `json:"uri,omitempty"`
	Template         string           `json:"template,omitempty"`
	DefaultEntryType *EntryTypeConfig `json:"defaultEntryType,omitempty"`
}

// EntryTypeRef references an entry type by handle. Plans may express the
// reference as a bare string or as an object with a handle key.
type EntryTypeRef struct {
	Handle string `json:"handle"`
}

// UnmarshalJSON accepts both "handle" and {"handle": "handle"}.
func (r *EntryTypeRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Handle = s
		return nil
	}
	var obj struct {
		Handle string `json:"handle"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("entry type reference must be a string or an object with a handle: %w", err)
	}
	r.Handle = obj.Handle
	return nil
}

// MarshalJSON writes the object form.
func (r EntryTypeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Handle string `json:"handle"`
	}{Handle: r.Handle})
}

// GroupConfig describes a category or tag group to create.
type GroupConfig struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	HasURLs   bool   `json:"hasUrls,omitempty"`
	URI       string `json:"uri,omitempty"`
	Template  string `json:"template,omitempty"`
	MaxLevels int    `json:"maxLevels,omitempty"`
}

// OpResult is the per-operation outcome returned for every batch run.
// A failed operation never aborts its siblings; callers render partial
// success from the full result list.
type OpResult struct {
	Index     int           `json:"index"`
	Operation Operation     `json:"operation"`
	Success   bool          `json:"success"`
	Message   string        `json:"message"`
	Created   *ArtifactRef  `json:"created,omitempty"`
	Modified  *ModifiedRef  `json:"modified,omitempty"`
	Blocks    *BlockSummary `json:"blocks,omitempty"`
	Error     *ErrorDetail  `json:"error,omitempty"`
}

// ArtifactRef identifies a created artifact by handle; the numeric ID is
// informational and resolution at rollback time goes through the handle.
type ArtifactRef struct {
	Type   string `json:"type"`
	Handle string `json:"handle"`
	Name   string `json:"name,omitempty"`
	ID     int64  `json:"id,omitempty"`
}

// ModifiedRef summarizes the changes a modify operation applied.
type ModifiedRef struct {
	Type    string   `json:"type"`
	Handle  string   `json:"handle"`
	Changes []string `json:"changes"`
}

// BlockSummary reports nested artifacts created while building a
// matrix or content block field.
type BlockSummary struct {
	Fields     []ArtifactRef `json:"fields,omitempty"`
	EntryTypes []ArtifactRef `json:"entryTypes,omitempty"`
}

// ErrorDetail carries diagnostics for a failed operation.
type ErrorDetail struct {
	Kind     string `json:"kind,omitempty"`
	Location string `json:"location,omitempty"`
}
